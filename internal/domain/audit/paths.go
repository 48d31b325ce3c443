package audit

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// PathSeparator joins path segments.
const PathSeparator = "/"

// pathReplacer strips characters that cannot appear in an indexed path tag.
var pathReplacer = strings.NewReplacer("|", "_", "/", "_")

// Paths returns every element path present in a JSON document, sorted.
// Object keys form segments after SanitizeSegment. Array elements are
// reachable both by index and transparently, so {"users":[{"name":"a"}]}
// yields /users, /users/0, /users/0/name and /users/name. Every key of the
// tree built from the same document is therefore a matching query.
func Paths(document json.RawMessage) ([]string, error) {
	var v any
	if err := json.Unmarshal(document, &v); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	seen := make(map[string]struct{})
	collectPaths(v, "", seen)

	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

func collectPaths(v any, prefix string, seen map[string]struct{}) {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			p := prefix + PathSeparator + SanitizeSegment(k)
			seen[p] = struct{}{}
			collectPaths(child, p, seen)
		}
	case []any:
		for i, child := range t {
			p := prefix + PathSeparator + strconv.Itoa(i)
			seen[p] = struct{}{}
			collectPaths(child, p, seen)
			collectPaths(child, prefix, seen)
		}
	}
}

// SanitizeSegment makes a single object key safe for use as a path segment.
func SanitizeSegment(key string) string {
	if key == "" {
		return "_"
	}
	return pathReplacer.Replace(key)
}
