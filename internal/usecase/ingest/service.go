package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/thoughtstream/auditweb/internal/domain"
	domaudit "github.com/thoughtstream/auditweb/internal/domain/audit"
	"github.com/thoughtstream/auditweb/internal/metrics"
)

// Input is an audit record as submitted by a client.
// Zero ID and Timestamp are filled in by the service.
type Input struct {
	ID        string
	Actor     string
	Timestamp time.Time
	Document  json.RawMessage
}

// Service records and fetches audit records.
type Service struct {
	repo  Repository
	now   func() time.Time
	newID func() string
}

// New creates an ingest service.
func New(repo Repository) *Service {
	return &Service{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Record validates and stores an audit record. Returns true if created.
func (s *Service) Record(ctx context.Context, in Input) (domaudit.Record, bool, error) {
	id := in.ID
	if id == "" {
		id = s.newID()
	}
	ts := in.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}

	rec, err := domaudit.New(id, in.Actor, ts, in.Document)
	if err != nil {
		return domaudit.Record{}, false, fmt.Errorf("%w: %w", domain.ErrInvalidRecord, err)
	}

	created, err := s.repo.Save(ctx, &rec)
	if err != nil {
		return domaudit.Record{}, false, fmt.Errorf("save record %s: %w", id, err)
	}

	if created {
		metrics.RecordsSavedTotal.WithLabelValues("created").Inc()
	} else {
		metrics.RecordsSavedTotal.WithLabelValues("updated").Inc()
	}
	return rec, created, nil
}

// Get returns a stored record by ID.
func (s *Service) Get(ctx context.Context, id string) (domaudit.Record, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return domaudit.Record{}, fmt.Errorf("get record %s: %w", id, err)
	}
	return rec, nil
}

// Delete removes a stored record. A missing record yields domain.ErrNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	return nil
}
