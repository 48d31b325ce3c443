// Package presentation holds request-scoped view models.
package presentation

import "time"

// Record is one row of the home page: who changed what and when, plus the
// FancyTree snippet of the document's first node.
type Record struct {
	ID        string
	Actor     string
	Timestamp time.Time
	Snippet   string
}

// Suggestions is the payload of the suggestions endpoint.
type Suggestions struct {
	Items []string `json:"items"`
}
