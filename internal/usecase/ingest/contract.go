package ingest

import (
	"context"

	domaudit "github.com/thoughtstream/auditweb/internal/domain/audit"
)

// Repository defines the storage contract for audit records.
type Repository interface {
	Save(ctx context.Context, rec *domaudit.Record) (created bool, err error)
	Get(ctx context.Context, id string) (domaudit.Record, error)
	Delete(ctx context.Context, id string) error
}
