package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/thoughtstream/auditweb/internal/db"
	domaudit "github.com/thoughtstream/auditweb/internal/domain/audit"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn        func(ctx context.Context, key string, fields map[string]string) error
	hgetAllFn     func(ctx context.Context, key string) (map[string]string, error)
	existsFn      func(ctx context.Context, key string) (bool, error)
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
	searchListFn  func(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
	delFn         func(ctx context.Context, key string) error
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error) {
	if m.searchListFn != nil {
		return m.searchListFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return db.ErrKeyNotFound
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "auditweb:", "AuditObjects", "defCollection"), ms
}

func testRecord(t *testing.T) domaudit.Record {
	t.Helper()
	rec, err := domaudit.New(
		"rec-1", "alice",
		time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		json.RawMessage(`{"user":{"name":"bob","roles":["admin"]}}`),
	)
	if err != nil {
		t.Fatalf("testRecord: %v", err)
	}
	return rec
}

func testQuery(t *testing.T, path string) domaudit.Query {
	t.Helper()
	q, err := domaudit.NewQuery(path, 0, 10, 100)
	if err != nil {
		t.Fatalf("testQuery: %v", err)
	}
	return q
}
