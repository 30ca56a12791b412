// Package chi serves the user search API over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"

	"github.com/tutorbook/tutorbook/internal/domain"
	"github.com/tutorbook/tutorbook/internal/domain/appt"
	"github.com/tutorbook/tutorbook/internal/domain/org"
	"github.com/tutorbook/tutorbook/internal/domain/search/query"
	"github.com/tutorbook/tutorbook/internal/domain/user"
	"github.com/tutorbook/tutorbook/internal/logger"
	"github.com/tutorbook/tutorbook/internal/metrics"
	healthuc "github.com/tutorbook/tutorbook/internal/usecase/health"
)

const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// userSearcher is implemented by usecase/search.Service.
type userSearcher interface {
	ListUsers(ctx context.Context, q *query.Query, token string) ([]user.Record, error)
}

// indexer is implemented by usecase/indexing.Service.
type indexer interface {
	GetUser(ctx context.Context, id string) (user.User, error)
	IndexUser(ctx context.Context, u *user.User) error
	DeleteUser(ctx context.Context, id string) error
	PutOrg(ctx context.Context, o *org.Org) error
	IndexAppt(ctx context.Context, a *appt.Appt) error
	DeleteAppt(ctx context.Context, id string) error
}

// healthChecker is implemented by usecase/health.Service.
type healthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server holds the HTTP handlers.
type Server struct {
	search        userSearcher
	indexing      indexer
	health        healthChecker
	paging        PagingConfig
	validate      *validator.Validate
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search userSearcher,
	indexing indexer,
	health healthChecker,
	paging PagingConfig,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:   search,
		indexing: indexing,
		health:   health,
		paging:   paging,
		validate: newValidator(),
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidRecord, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrUnauthenticated, http.StatusUnauthorized, ErrorCodeUnauthorized),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, ErrorCodeRateLimited),
		sentinelHandler(domain.ErrNotImplemented, http.StatusNotImplemented, ErrorCodeNotImplemented),
	}
	return s
}

// Routes mounts the API on r. Index writes require one of apiKeys.
func (s *Server) Routes(r chi.Router, apiKeys []string) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Get("/api/users", s.ListUsers)

	r.Route("/api/index", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiKeys))
		r.Get("/users/{id}", s.GetUser)
		r.Put("/users/{id}", s.IndexUser)
		r.Delete("/users/{id}", s.DeleteUser)
		r.Put("/orgs/{id}", s.PutOrg)
		r.Put("/appts/{id}", s.IndexAppt)
		r.Delete("/appts/{id}", s.DeleteAppt)
	})
}

// ListUsers handles GET /api/users. The optional bearer token identifies the
// caller; an invalid one is treated as anonymous.
func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	params, err := bindListUsersParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	q, err := s.toQuery(&params)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	records, err := s.search.ListUsers(r.Context(), &q, bearerToken(r))
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// GetUser handles GET /api/index/users/{id}. The stored profile is returned
// in full; this route is for indexing clients, not end users.
func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	u, err := s.indexing.GetUser(r.Context(), id)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// IndexUser handles PUT /api/index/users/{id}.
func (s *Server) IndexUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	var u user.User
	if !decodeBody(w, r, &u) {
		return
	}
	if u.ID == "" {
		u.ID = id
	}
	if u.ID != id {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "body id does not match path id")
		return
	}

	if err := s.indexing.IndexUser(r.Context(), &u); err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteUser handles DELETE /api/index/users/{id}.
func (s *Server) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	if err := s.indexing.DeleteUser(r.Context(), id); err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PutOrg handles PUT /api/index/orgs/{id}.
func (s *Server) PutOrg(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	var o org.Org
	if !decodeBody(w, r, &o) {
		return
	}
	if o.ID == "" {
		o.ID = id
	}
	if o.ID != id {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "body id does not match path id")
		return
	}

	if err := s.indexing.PutOrg(r.Context(), &o); err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// IndexAppt handles PUT /api/index/appts/{id}.
func (s *Server) IndexAppt(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	var a appt.Appt
	if !decodeBody(w, r, &a) {
		return
	}
	if a.ID == "" {
		a.ID = id
	}
	if a.ID != id {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "body id does not match path id")
		return
	}

	if err := s.indexing.IndexAppt(r.Context(), &a); err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAppt handles DELETE /api/index/appts/{id}.
func (s *Server) DeleteAppt(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	if err := s.indexing.DeleteAppt(r.Context(), id); err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	metrics.Handler().ServeHTTP(w, r)
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, fmt.Sprintf("invalid id: %v", err))
		return "", false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dest); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
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
		domain.ErrInvalidQuery,
		domain.ErrInvalidRecord,
		domain.ErrNotFound,
		domain.ErrUnauthenticated,
		domain.ErrRateLimited,
		domain.ErrNotImplemented,
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

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	log := logger.FromContextOr(ctx, s.logger)
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
