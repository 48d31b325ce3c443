package audit

import (
	"fmt"
	"strings"
)

// Query selects audit records whose document contains a path.
type Query struct {
	path   string
	offset int
	limit  int
}

// NewQuery validates and creates a Query.
// path must start with "/"; a trailing "/" is ignored and "/" alone matches every record.
// offset >= 0; 1 <= limit <= maxLimit.
func NewQuery(path string, offset, limit, maxLimit int) (Query, error) {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, PathSeparator) {
		return Query{}, fmt.Errorf("query path must start with %q, got %q", PathSeparator, path)
	}
	if strings.Contains(path, "|") {
		return Query{}, fmt.Errorf("query path must not contain \"|\"")
	}
	if strings.Contains(path, "//") {
		return Query{}, fmt.Errorf("query path must not contain empty segments")
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, PathSeparator)
	}
	if offset < 0 {
		return Query{}, fmt.Errorf("offset must not be negative, got %d", offset)
	}
	if limit <= 0 {
		return Query{}, fmt.Errorf("limit must be positive, got %d", limit)
	}
	if maxLimit > 0 && limit > maxLimit {
		return Query{}, fmt.Errorf("limit must not exceed %d, got %d", maxLimit, limit)
	}
	return Query{path: path, offset: offset, limit: limit}, nil
}

// Path returns the normalized document path.
func (q Query) Path() string { return q.path }

// Offset returns how many matches to skip.
func (q Query) Offset() int { return q.offset }

// Limit returns the page size.
func (q Query) Limit() int { return q.limit }

// MatchesAll reports whether the query selects every record.
func (q Query) MatchesAll() bool { return q.path == PathSeparator }
