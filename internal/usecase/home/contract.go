package home

import (
	"context"

	domaudit "github.com/thoughtstream/auditweb/internal/domain/audit"
)

// Searcher finds audit records by document path.
type Searcher interface {
	Search(ctx context.Context, path string, offset, limit int) ([]domaudit.Record, error)
}
