package search

import (
	"context"
	"fmt"
	"time"

	"github.com/thoughtstream/auditweb/internal/domain"
	domaudit "github.com/thoughtstream/auditweb/internal/domain/audit"
	"github.com/thoughtstream/auditweb/internal/metrics"
)

// Page is one page of search results plus the total match count.
type Page struct {
	Records []domaudit.Record
	Total   int
	Offset  int
	Limit   int
}

// Service looks up audit records by document path.
type Service struct {
	repo     Repository
	maxLimit int
}

// New creates a search service. maxLimit <= 0 disables the page size cap.
func New(repo Repository, maxLimit int) *Service {
	return &Service{repo: repo, maxLimit: maxLimit}
}

// Search returns records whose document contains path, newest first.
func (s *Service) Search(ctx context.Context, path string, offset, limit int) ([]domaudit.Record, error) {
	page, err := s.SearchPage(ctx, path, offset, limit)
	if err != nil {
		return nil, err
	}
	return page.Records, nil
}

// SearchPage is Search plus the total number of matches.
func (s *Service) SearchPage(ctx context.Context, path string, offset, limit int) (Page, error) {
	q, err := domaudit.NewQuery(path, offset, limit, s.maxLimit)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}

	start := time.Now()
	records, total, err := s.repo.Search(ctx, q)
	metrics.SearchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return Page{}, fmt.Errorf("%w: %w", domain.ErrSearchUnavailable, err)
	}
	metrics.SearchRequestsTotal.WithLabelValues("ok").Inc()

	return Page{Records: records, Total: total, Offset: q.Offset(), Limit: q.Limit()}, nil
}
