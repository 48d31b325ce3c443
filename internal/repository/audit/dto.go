package audit

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	domaudit "github.com/thoughtstream/auditweb/internal/domain/audit"
)

// Hash field names. The double underscore keeps them apart from any user data.
const (
	fieldID       = "__id"
	fieldWho      = "__who"
	fieldWhen     = "__when"
	fieldPaths    = "__paths"
	fieldDocument = "__document"
)

// pathsSeparator joins document paths inside the __paths TAG field.
const pathsSeparator = "|"

// returnFields are fetched for every search hit. __paths is only needed for filtering.
var returnFields = []string{fieldID, fieldWho, fieldWhen, fieldDocument}

// buildHashFields converts a Record into a flat map[string]string for HSET.
func buildHashFields(rec *domaudit.Record) (map[string]string, error) {
	paths, err := domaudit.Paths(rec.Document())
	if err != nil {
		return nil, fmt.Errorf("extract paths: %w", err)
	}

	return map[string]string{
		fieldID:       rec.ID(),
		fieldWho:      rec.Actor(),
		fieldWhen:     strconv.FormatInt(rec.Timestamp().UnixMilli(), 10),
		fieldPaths:    strings.Join(paths, pathsSeparator),
		fieldDocument: string(rec.Document()),
	}, nil
}

// parseHashFields converts a flat hash map back into a Record.
// fallbackID is used when the hash predates the __id field.
func parseHashFields(fallbackID string, m map[string]string) domaudit.Record {
	id := m[fieldID]
	if id == "" {
		id = fallbackID
	}

	var ts time.Time
	if ms, err := strconv.ParseInt(m[fieldWhen], 10, 64); err == nil {
		ts = time.UnixMilli(ms).UTC()
	}

	return domaudit.Reconstruct(id, m[fieldWho], ts, json.RawMessage(m[fieldDocument]))
}
