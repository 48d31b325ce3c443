package search

import (
	"context"

	domaudit "github.com/thoughtstream/auditweb/internal/domain/audit"
)

// Repository defines the storage contract for audit record search.
type Repository interface {
	Search(ctx context.Context, q domaudit.Query) (records []domaudit.Record, total int, err error)
}
