package db

// TagFilter restricts a search to entries whose TAG field contains Value.
type TagFilter struct {
	Field string
	Value string
}

// ListQuery is the input for a paginated FT.SEARCH.
// An empty Filters slice matches every entry in the index.
type ListQuery struct {
	IndexName    string
	Filters      []TagFilter
	Offset       int
	Limit        int
	ReturnFields []string
	SortBy       string
	SortDesc     bool
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}
