package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"time"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// MaxDocumentSize is the maximum raw document size in bytes.
const MaxDocumentSize = 512 * 1024

// MaxActorLength bounds the actor field.
const MaxActorLength = 256

// Record is a stored audit object: who changed what, when, and the document snapshot.
// Immutable value object.
type Record struct {
	id        string
	actor     string
	timestamp time.Time
	document  json.RawMessage
}

// New validates and creates a Record.
// ID: ^[a-zA-Z0-9_.-]+$, 1-128 chars. Actor: non-empty. Timestamp: non-zero.
// Document: a JSON object or array, at most MaxDocumentSize bytes.
func New(id, actor string, timestamp time.Time, document json.RawMessage) (Record, error) {
	if id == "" {
		return Record{}, fmt.Errorf("record ID is required")
	}
	if len(id) > 128 {
		return Record{}, fmt.Errorf("record ID too long (max 128)")
	}
	if !idRegex.MatchString(id) {
		return Record{}, fmt.Errorf("record ID must be alphanumeric with dots, underscores and hyphens")
	}
	if actor == "" {
		return Record{}, fmt.Errorf("actor is required")
	}
	if len(actor) > MaxActorLength {
		return Record{}, fmt.Errorf("actor too long (max %d)", MaxActorLength)
	}
	if timestamp.IsZero() {
		return Record{}, fmt.Errorf("timestamp is required")
	}
	if len(document) > MaxDocumentSize {
		return Record{}, fmt.Errorf("document too large (max %d bytes)", MaxDocumentSize)
	}
	if !json.Valid(document) {
		return Record{}, fmt.Errorf("document must be valid JSON")
	}
	trimmed := bytes.TrimSpace(document)
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		return Record{}, fmt.Errorf("document must be a JSON object or array")
	}

	return Record{
		id:        id,
		actor:     actor,
		timestamp: timestamp.UTC().Truncate(time.Millisecond),
		document:  append(json.RawMessage(nil), trimmed...),
	}, nil
}

// Reconstruct creates a Record without validation (storage hydration).
func Reconstruct(id, actor string, timestamp time.Time, document json.RawMessage) Record {
	return Record{id: id, actor: actor, timestamp: timestamp, document: document}
}

// ID returns the record identifier.
func (r *Record) ID() string { return r.id }

// Actor returns who performed the audited change.
func (r *Record) Actor() string { return r.actor }

// Timestamp returns when the change happened.
func (r *Record) Timestamp() time.Time { return r.timestamp }

// Document returns the raw stored document. Callers must not modify it.
func (r *Record) Document() json.RawMessage { return r.document }
