// Package http exposes the trace service over HTTP: one endpoint to produce
// a trace, plus retrieval, health, and metrics.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	xqsim "github.com/seitsubo413/XQsim-library"
	"github.com/seitsubo413/XQsim-library/internal/logging"
	"github.com/seitsubo413/XQsim-library/pkg/domain"
	"github.com/seitsubo413/XQsim-library/pkg/ports"
)

// TraceService is the part of the library surface the transport needs.
type TraceService interface {
	ProduceTrace(ctx context.Context, req xqsim.TraceRequest) (*domain.TraceResult, error)
	InProgress() bool
	Limits() xqsim.Limits
}

// Server binds the trace service and an optional result store to routes.
type Server struct {
	service TraceService
	store   ports.TraceStore
	metrics *Metrics
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithStore attaches a result store; without one, retrieval endpoints
// return 404 for everything and results are response-only.
func WithStore(store ports.TraceStore) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithLogger sets the server's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics attaches a metrics set registered elsewhere.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// NewServer creates a Server over the trace service.
func NewServer(service TraceService, opts ...Option) *Server {
	s := &Server{
		service: service,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/trace", s.handleTrace)
	r.Get("/health", s.handleHealth)
	r.Get("/traces", s.handleList)
	r.Get("/traces/{id}", s.handleGet)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

type traceRequest struct {
	QASM   string `json:"qasm"`
	Config string `json:"config,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`

	// Partial carries everything captured before a simulator fault.
	Partial *domain.TraceResult `json:"partial,omitempty"`
}

func (s *Server) handleTrace(w http.ResponseWriter, r *http.Request) {
	var body traceRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		s.metrics.observe("bad_request", 0)
		return
	}

	started := time.Now()
	res, err := s.service.ProduceTrace(r.Context(), xqsim.TraceRequest{
		QASM:   body.QASM,
		Config: body.Config,
	})
	if err != nil {
		status, kind := classify(err)
		s.logger.Warn("trace request failed", "kind", kind, "err", err)
		s.writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind, Partial: res})
		s.metrics.observe(kind, time.Since(started))
		return
	}
	s.metrics.observe("ok", time.Since(started))

	if s.store != nil && res.Compiled.JobName != "" {
		if err := s.store.Save(r.Context(), res.Compiled.JobName, res); err != nil {
			// The caller still gets their result; only retrieval suffers.
			s.logger.Warn("failed to persist trace result", "id", res.Compiled.JobName, "err", err)
		}
	}

	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	limits := s.service.Limits()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"in_progress": s.service.InProgress(),
		"limits": map[string]int{
			"max_qasm_size_bytes": limits.MaxQASMSizeBytes,
			"max_qubits":          limits.MaxQubits,
			"max_gates":           limits.MaxGates,
		},
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeJSON(w, http.StatusOK, map[string]any{"traces": []string{}})
		return
	}
	ids, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"traces": ids})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if s.store == nil {
		s.writeError(w, http.StatusNotFound, "not_found", "no trace store configured")
		return
	}
	res, err := s.store.Load(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrTraceNotFound) {
			s.writeError(w, http.StatusNotFound, "not_found", "unknown trace "+id)
			return
		}
		s.writeError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// classify maps pipeline errors to transport status codes. Simulator faults
// are client-visible 400s: the circuit drove the backend into a state it
// cannot simulate, and retrying the same input will fault again.
func classify(err error) (int, string) {
	var verr *domain.ValidationError
	var terr *domain.TimeoutError
	var fault *domain.SimulationFault
	switch {
	case errors.Is(err, domain.ErrBusy):
		return http.StatusTooManyRequests, "busy"
	case errors.As(err, &verr):
		return http.StatusBadRequest, "validation"
	case errors.As(err, &terr):
		return http.StatusGatewayTimeout, "timeout"
	case errors.As(err, &fault):
		return http.StatusBadRequest, "simulation_fault"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, kind, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg, Kind: kind})
}
