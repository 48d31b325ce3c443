package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/thoughtstream/auditweb/internal/db"
	"github.com/thoughtstream/auditweb/internal/domain"
	domaudit "github.com/thoughtstream/auditweb/internal/domain/audit"
)

// store is the consumer interface for audit records (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
	Del(ctx context.Context, key string) error
}

// Repo implements the audit record repository on top of hashes and an FT index.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates an audit repository. Keys live under <prefix><database>:<collection>:.
func New(s store, prefix, database, collection string) *Repo {
	return &Repo{
		store:     s,
		keyPrefix: fmt.Sprintf("%s%s:%s:", prefix, database, collection),
	}
}

// IndexName returns the FT index that covers this repository's records.
func (r *Repo) IndexName() string {
	return r.keyPrefix + "idx"
}

// EnsureIndex creates the FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.IndexName())
	if err != nil {
		return fmt.Errorf("check index %s: %w", r.IndexName(), err)
	}
	if exists {
		return nil
	}

	def, err := db.NewIndex(r.IndexName()).
		OnHash().
		Prefix(r.keyPrefix).
		Tag(fieldWho).
		SortableNumeric(fieldWhen).
		TagWithOpts(fieldPaths, pathsSeparator, true).
		Build()
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		// Another replica may have won the race.
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", r.IndexName(), err)
	}
	return nil
}

// IndexReady reports whether the FT index exists.
func (r *Repo) IndexReady(ctx context.Context) (bool, error) {
	ok, err := r.store.IndexExists(ctx, r.IndexName())
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", r.IndexName(), err)
	}
	return ok, nil
}

// Save creates or replaces a record. Returns true if created.
func (r *Repo) Save(ctx context.Context, rec *domaudit.Record) (bool, error) {
	key := r.recordKey(rec.ID())

	fields, err := buildHashFields(rec)
	if err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrInvalidRecord, err)
	}

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}

	if err := r.store.HSet(ctx, key, fields); err != nil {
		return false, fmt.Errorf("hset %s: %w", key, err)
	}

	return !exists, nil
}

// Get returns a record by ID.
func (r *Repo) Get(ctx context.Context, id string) (domaudit.Record, error) {
	key := r.recordKey(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domaudit.Record{}, domain.ErrNotFound
		}
		return domaudit.Record{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	return parseHashFields(id, m), nil
}

// Search returns records whose document contains q.Path(), newest first.
func (r *Repo) Search(ctx context.Context, q domaudit.Query) ([]domaudit.Record, int, error) {
	res, err := r.store.SearchList(ctx, &db.ListQuery{
		IndexName:    r.IndexName(),
		Filters:      pathFilters(q),
		Offset:       q.Offset(),
		Limit:        q.Limit(),
		ReturnFields: returnFields,
		SortBy:       fieldWhen,
		SortDesc:     true,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("search %s: %w", q.Path(), err)
	}
	if res == nil {
		return nil, 0, nil
	}

	records := make([]domaudit.Record, 0, len(res.Entries))
	for _, e := range res.Entries {
		records = append(records, parseHashFields(r.extractID(e.Key), e.Fields))
	}
	return records, res.Total, nil
}

// Delete removes a record by ID. The FT index drops it on its own.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := r.recordKey(id)
	if err := r.store.Del(ctx, key); err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

func pathFilters(q domaudit.Query) []db.TagFilter {
	if q.MatchesAll() {
		return nil
	}
	return []db.TagFilter{{Field: fieldPaths, Value: q.Path()}}
}

func (r *Repo) recordKey(id string) string {
	return r.keyPrefix + id
}

func (r *Repo) extractID(key string) string {
	return strings.TrimPrefix(key, r.keyPrefix)
}
