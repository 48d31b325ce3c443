// Package auditweb is an embeddable client for the audit object store. It
// talks to the same Redis index as the auditweb server, so records written
// here show up on its home page.
package auditweb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/thoughtstream/auditweb/internal/db"
	dbRedis "github.com/thoughtstream/auditweb/internal/db/redis"
	"github.com/thoughtstream/auditweb/internal/domain"
	domaudit "github.com/thoughtstream/auditweb/internal/domain/audit"
	"github.com/thoughtstream/auditweb/internal/domain/tree"
	auditrepo "github.com/thoughtstream/auditweb/internal/repository/audit"
	ingestuc "github.com/thoughtstream/auditweb/internal/usecase/ingest"
	searchuc "github.com/thoughtstream/auditweb/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Errors returned by the client. Match with errors.Is.
var (
	ErrNotFound          = domain.ErrNotFound
	ErrInvalidQuery      = domain.ErrInvalidQuery
	ErrInvalidRecord     = domain.ErrInvalidRecord
	ErrSearchUnavailable = domain.ErrSearchUnavailable
)

// Record is a stored audit object.
type Record struct {
	ID        string
	Actor     string
	Timestamp time.Time
	Document  json.RawMessage
}

// SearchResult is one page of matching records, newest first.
type SearchResult struct {
	Records []Record
	Total   int
}

// Node is a FancyTree node built from a document.
type Node = tree.Node

// Client is the auditweb SDK entry point.
type Client struct {
	store     db.Store
	ingestSvc *ingestuc.Service
	searchSvc *searchuc.Service
}

// New creates a Client, connects to the database and ensures the search index exists.
func New(opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("auditweb: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("auditweb: create redis store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("auditweb: database not ready: %w", err)
	}

	c, err := wireClient(ctx, store, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func wireClient(ctx context.Context, store db.Store, cfg *clientConfig) (*Client, error) {
	repo := auditrepo.New(store, cfg.keyPrefix, cfg.database, cfg.collection)
	if err := repo.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("auditweb: ensure index: %w", err)
	}

	return &Client{
		store:     store,
		ingestSvc: ingestuc.New(repo),
		searchSvc: searchuc.New(repo, cfg.maxLimit),
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Save stores a record. Empty ID and zero Timestamp are filled in.
// Returns the stored record and whether it was newly created.
func (c *Client) Save(ctx context.Context, r Record) (Record, bool, error) {
	rec, created, err := c.ingestSvc.Record(ctx, ingestuc.Input{
		ID:        r.ID,
		Actor:     r.Actor,
		Timestamp: r.Timestamp,
		Document:  r.Document,
	})
	if err != nil {
		return Record{}, false, err
	}
	return fromDomain(&rec), created, nil
}

// Get returns a record by ID.
func (c *Client) Get(ctx context.Context, id string) (Record, error) {
	rec, err := c.ingestSvc.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	return fromDomain(&rec), nil
}

// Delete removes a record by ID.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.ingestSvc.Delete(ctx, id)
}

// Search returns records whose document contains path, e.g. "/user".
func (c *Client) Search(ctx context.Context, path string, offset, limit int) (SearchResult, error) {
	page, err := c.searchSvc.SearchPage(ctx, path, offset, limit)
	if err != nil {
		return SearchResult{}, err
	}
	out := SearchResult{Records: make([]Record, 0, len(page.Records)), Total: page.Total}
	for i := range page.Records {
		out.Records = append(out.Records, fromDomain(&page.Records[i]))
	}
	return out, nil
}

// Tree converts a document into FancyTree nodes.
func Tree(document json.RawMessage) ([]Node, error) {
	nodes, err := tree.Transform(document)
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

func fromDomain(rec *domaudit.Record) Record {
	return Record{
		ID:        rec.ID(),
		Actor:     rec.Actor(),
		Timestamp: rec.Timestamp(),
		Document:  rec.Document(),
	}
}
