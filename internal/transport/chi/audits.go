package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	domaudit "github.com/thoughtstream/auditweb/internal/domain/audit"
	"github.com/thoughtstream/auditweb/internal/domain/tree"
	"github.com/thoughtstream/auditweb/internal/logger"
	ingestuc "github.com/thoughtstream/auditweb/internal/usecase/ingest"
)

// maxBodyBytes leaves room for the JSON envelope around a maximum-size document.
const maxBodyBytes = 2 * domaudit.MaxDocumentSize

// ListAudits handles GET /api/v1/audits?q=&offset=&limit=.
func (s *Server) ListAudits(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	path := query.Get("q")
	if path == "" {
		path = s.opts.DefaultQuery
	}
	offset, err := intParam(query.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "offset must be an integer")
		return
	}
	limit, err := intParam(query.Get("limit"), s.opts.DefaultLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "limit must be an integer")
		return
	}

	page, err := s.search.SearchPage(r.Context(), path, offset, limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]AuditResponse, 0, len(page.Records))
	for i := range page.Records {
		items = append(items, auditToResponse(&page.Records[i]))
	}

	writeJSON(w, http.StatusOK, AuditListResponse{
		Items:  items,
		Total:  page.Total,
		Offset: page.Offset,
		Limit:  page.Limit,
	})
}

// GetAudit handles GET /api/v1/audits/{id}.
func (s *Server) GetAudit(w http.ResponseWriter, r *http.Request) {
	rec, err := s.ingest.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := auditToResponse(&rec)
	nodes, err := tree.Transform(rec.Document())
	if err != nil {
		logger.FromContextOr(r.Context(), s.logger).Warn("Stored document does not transform",
			zap.String("id", rec.ID()), zap.Error(err))
	}
	resp.Nodes = nodes

	writeJSON(w, http.StatusOK, resp)
}

// DeleteAudit handles DELETE /api/v1/audits/{id}.
func (s *Server) DeleteAudit(w http.ResponseWriter, r *http.Request) {
	if err := s.ingest.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateAudit handles POST /api/v1/audits.
func (s *Server) CreateAudit(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAuditRequest(w, r)
	if !ok {
		return
	}
	s.saveAudit(w, r, req.ID, req)
}

// PutAudit handles PUT /api/v1/audits/{id}.
func (s *Server) PutAudit(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAuditRequest(w, r)
	if !ok {
		return
	}
	s.saveAudit(w, r, chi.URLParam(r, "id"), req)
}

func (s *Server) saveAudit(w http.ResponseWriter, r *http.Request, id string, req AuditRequest) {
	in := ingestuc.Input{
		ID:       id,
		Actor:    req.Actor,
		Document: req.Document,
	}
	if req.Timestamp != nil {
		in.Timestamp = *req.Timestamp
	}

	rec, created, err := s.ingest.Record(r.Context(), in)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, auditToResponse(&rec))
}

func decodeAuditRequest(w http.ResponseWriter, r *http.Request) (AuditRequest, bool) {
	var req AuditRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrorCodeBadRequest, "request body too large")
			return AuditRequest{}, false
		}
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return AuditRequest{}, false
	}
	return req, true
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func auditToResponse(rec *domaudit.Record) AuditResponse {
	return AuditResponse{
		ID:        rec.ID(),
		Actor:     rec.Actor(),
		Timestamp: rec.Timestamp().UTC().Truncate(time.Millisecond),
		Document:  rec.Document(),
	}
}
