package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/thoughtstream/auditweb/internal/domain"
	"github.com/thoughtstream/auditweb/internal/logger"
	healthuc "github.com/thoughtstream/auditweb/internal/usecase/health"
	homeuc "github.com/thoughtstream/auditweb/internal/usecase/home"
	ingestuc "github.com/thoughtstream/auditweb/internal/usecase/ingest"
	searchuc "github.com/thoughtstream/auditweb/internal/usecase/search"
	suggestionuc "github.com/thoughtstream/auditweb/internal/usecase/suggestion"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Options holds request defaults for the JSON search API.
type Options struct {
	DefaultQuery string
	DefaultLimit int
}

// Server serves the home page, the suggestions endpoint and the audit API.
type Server struct {
	home          *homeuc.Service
	suggestions   *suggestionuc.Service
	search        *searchuc.Service
	ingest        *ingestuc.Service
	health        *healthuc.Service
	views         *views
	opts          Options
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates the HTTP server. Fails only if the embedded views do not parse.
func NewServer(
	home *homeuc.Service,
	suggestions *suggestionuc.Service,
	search *searchuc.Service,
	ingest *ingestuc.Service,
	health *healthuc.Service,
	opts Options,
	logger *zap.Logger,
) (*Server, error) {
	v, err := loadViews()
	if err != nil {
		return nil, err
	}

	s := &Server{
		home:        home,
		suggestions: suggestions,
		search:      search,
		ingest:      ingest,
		health:      health,
		views:       v,
		opts:        opts,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		detailHandler(domain.ErrInvalidQuery, http.StatusBadRequest, ErrorCodeBadRequest),
		detailHandler(domain.ErrInvalidRecord, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrSearchUnavailable, http.StatusServiceUnavailable, ErrorCodeSearchUnavailable),
	}
	return s, nil
}

// Register mounts all routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/", s.Home)
	r.Get("/json", s.Suggestions)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1/audits", func(r chi.Router) {
		r.Get("/", s.ListAudits)
		r.Post("/", s.CreateAudit)
		r.Get("/{id}", s.GetAudit)
		r.Put("/{id}", s.PutAudit)
		r.Delete("/{id}", s.DeleteAudit)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})
}

// Home handles GET /. Request parameters are ignored.
func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	page := s.home.Build(r.Context())

	err := s.views.render(w, "home", map[string]any{
		"resultList": page.Results,
		"query":      page.Query,
		"degraded":   page.Degraded,
	})
	if err != nil {
		logger.FromContextOr(r.Context(), s.logger).Error("render home", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// Suggestions handles GET /json.
func (s *Server) Suggestions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.suggestions.List())
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrInvalidQuery,
		domain.ErrInvalidRecord,
		domain.ErrSearchUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// detailHandler is sentinelHandler for validation errors, whose full chain
// describes the offending input and is safe to show.
func detailHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, _ string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
