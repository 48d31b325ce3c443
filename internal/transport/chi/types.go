package chi

import (
	"encoding/json"
	"time"

	"github.com/thoughtstream/auditweb/internal/domain/tree"
)

// ErrorCode is the machine-readable error code in API error responses.
type ErrorCode string

// Error codes returned by the JSON API.
const (
	ErrorCodeBadRequest        ErrorCode = "bad_request"
	ErrorCodeValidationFailed  ErrorCode = "validation_failed"
	ErrorCodeNotFound          ErrorCode = "not_found"
	ErrorCodeSearchUnavailable ErrorCode = "search_unavailable"
	ErrorCodeUnauthorized      ErrorCode = "unauthorized"
	ErrorCodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the body of every API error.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// AuditResponse is an audit record as returned by the API.
type AuditResponse struct {
	ID        string          `json:"id"`
	Actor     string          `json:"actor"`
	Timestamp time.Time       `json:"timestamp"`
	Document  json.RawMessage `json:"document"`
	Nodes     []tree.Node     `json:"nodes,omitempty"`
}

// AuditListResponse is one page of search results.
type AuditListResponse struct {
	Items  []AuditResponse `json:"items"`
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Limit  int             `json:"limit"`
}

// AuditRequest is the body of POST /api/v1/audits and PUT /api/v1/audits/{id}.
// ID is ignored on PUT; the path parameter wins.
type AuditRequest struct {
	ID        string          `json:"id,omitempty"`
	Actor     string          `json:"actor"`
	Timestamp *time.Time      `json:"timestamp,omitempty"`
	Document  json.RawMessage `json:"document"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
