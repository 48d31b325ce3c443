package search

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/thoughtstream/auditweb/internal/domain"
	domaudit "github.com/thoughtstream/auditweb/internal/domain/audit"
	"github.com/thoughtstream/auditweb/internal/metrics"
)

// --- Mocks ---

type mockRepo struct {
	records []domaudit.Record
	total   int
	err     error
	lastQ   domaudit.Query
	calls   int
}

func (m *mockRepo) Search(_ context.Context, q domaudit.Query) ([]domaudit.Record, int, error) {
	m.calls++
	m.lastQ = q
	return m.records, m.total, m.err
}

func rec(id string, ms int64) domaudit.Record {
	return domaudit.Reconstruct(id, "actor-"+id, time.UnixMilli(ms).UTC(), json.RawMessage(`{"user":{}}`))
}

// --- Tests ---

func TestSearch_PassesQueryThrough(t *testing.T) {
	repo := &mockRepo{records: []domaudit.Record{rec("b", 2), rec("a", 1)}, total: 2}
	svc := New(repo, 100)

	got, err := svc.Search(context.Background(), "/user", 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID() != "b" || got[1].ID() != "a" {
		t.Fatalf("unexpected records: %+v", got)
	}
	if repo.lastQ.Path() != "/user" || repo.lastQ.Offset() != 0 || repo.lastQ.Limit() != 10 {
		t.Errorf("query = %s %d %d", repo.lastQ.Path(), repo.lastQ.Offset(), repo.lastQ.Limit())
	}
}

func TestSearchPage_ReturnsTotal(t *testing.T) {
	repo := &mockRepo{records: []domaudit.Record{rec("a", 1)}, total: 42}
	svc := New(repo, 100)

	page, err := svc.SearchPage(context.Background(), "/user/", 20, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 42 || page.Offset != 20 || page.Limit != 5 {
		t.Errorf("page = %+v", page)
	}
	if repo.lastQ.Path() != "/user" {
		t.Errorf("path not normalized: %q", repo.lastQ.Path())
	}
}

func TestSearch_InvalidQuery(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		offset int
		limit  int
	}{
		{"relative path", "user", 0, 10},
		{"negative offset", "/user", -1, 10},
		{"zero limit", "/user", 0, 0},
		{"limit above max", "/user", 0, 101},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mockRepo{}
			svc := New(repo, 100)

			_, err := svc.Search(context.Background(), tc.path, tc.offset, tc.limit)
			if !errors.Is(err, domain.ErrInvalidQuery) {
				t.Fatalf("expected ErrInvalidQuery, got %v", err)
			}
			if repo.calls != 0 {
				t.Error("repository must not be called for invalid queries")
			}
		})
	}
}

func TestSearch_StoreFailureIsUnavailable(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	svc := New(&mockRepo{err: cause}, 100)

	before := testutil.ToFloat64(metrics.SearchRequestsTotal.WithLabelValues("error"))

	_, err := svc.Search(context.Background(), "/user", 0, 10)
	if !errors.Is(err, domain.ErrSearchUnavailable) {
		t.Fatalf("expected ErrSearchUnavailable, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to stay in the chain")
	}

	after := testutil.ToFloat64(metrics.SearchRequestsTotal.WithLabelValues("error"))
	if after != before+1 {
		t.Errorf("error counter = %f, want %f", after, before+1)
	}
}

func TestSearch_EmptyResult(t *testing.T) {
	svc := New(&mockRepo{}, 100)

	got, err := svc.Search(context.Background(), "/user", 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no records, got %d", len(got))
	}
}
