package home

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/thoughtstream/auditweb/internal/domain"
	domaudit "github.com/thoughtstream/auditweb/internal/domain/audit"
	"github.com/thoughtstream/auditweb/internal/domain/presentation"
	"github.com/thoughtstream/auditweb/internal/domain/tree"
	"github.com/thoughtstream/auditweb/internal/logger"
	"github.com/thoughtstream/auditweb/internal/metrics"
)

// Page is the home view model.
type Page struct {
	Query    string
	Results  []presentation.Record
	Degraded bool
}

// Service builds the home page from the most recent matching audit records.
type Service struct {
	search Searcher
	query  string
	limit  int
	logger *zap.Logger
}

// New creates a home page service that always runs query with the given limit from offset 0.
func New(search Searcher, query string, limit int, logger *zap.Logger) *Service {
	return &Service{search: search, query: query, limit: limit, logger: logger}
}

// Build runs the fixed query and maps every hit to a presentation record.
// Search failures yield an empty, degraded page; per-record transform
// failures yield a record with an empty snippet. Build never fails.
func (s *Service) Build(ctx context.Context) Page {
	log := logger.FromContextOr(ctx, s.logger)
	page := Page{Query: s.query, Results: []presentation.Record{}}

	records, err := s.search.Search(ctx, s.query, 0, s.limit)
	if err != nil {
		log.Error("Home search failed",
			zap.String("query", s.query),
			zap.Bool("unavailable", errors.Is(err, domain.ErrSearchUnavailable)),
			zap.Error(err),
		)
		page.Degraded = true
		return page
	}

	page.Results = make([]presentation.Record, 0, len(records))
	for i := range records {
		page.Results = append(page.Results, toPresentation(log, &records[i]))
	}
	return page
}

func toPresentation(log *zap.Logger, rec *domaudit.Record) presentation.Record {
	out := presentation.Record{
		ID:        rec.ID(),
		Actor:     rec.Actor(),
		Timestamp: rec.Timestamp(),
	}

	snippet, err := Snippet(rec.Document())
	switch {
	case errors.Is(err, domain.ErrMalformedDocument):
		metrics.TransformTotal.WithLabelValues(metrics.TransformMalformed).Inc()
		log.Warn("Skipping malformed audit document", zap.String("id", rec.ID()), zap.Error(err))
	case errors.Is(err, domain.ErrEmptyTransformResult):
		metrics.TransformTotal.WithLabelValues(metrics.TransformEmpty).Inc()
		log.Warn("Audit document produced no nodes", zap.String("id", rec.ID()))
	case err != nil:
		metrics.TransformTotal.WithLabelValues(metrics.TransformMalformed).Inc()
		log.Warn("Audit document snippet failed", zap.String("id", rec.ID()), zap.Error(err))
	default:
		metrics.TransformTotal.WithLabelValues(metrics.TransformOK).Inc()
		out.Snippet = snippet
	}
	return out
}

// Snippet transforms a raw document and encodes its first node.
func Snippet(raw []byte) (string, error) {
	nodes, err := tree.Transform(raw)
	if err != nil {
		return "", err
	}
	first, ok := nodes.First()
	if !ok {
		return "", domain.ErrEmptyTransformResult
	}
	snippet, err := first.Snippet()
	if err != nil {
		return "", fmt.Errorf("encode node: %w", err)
	}
	return snippet, nil
}
