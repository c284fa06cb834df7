// Package http exposes the orchestration engine over a JSON HTTP API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/attestra/veritor/internal/logging"
	"github.com/attestra/veritor/pkg/domain"
)

// Engine defines the pipeline surface the HTTP adapter drives.
type Engine interface {
	Run(ctx context.Context, query, threadID string) (*domain.ExecutionState, error)
	LoadThread(ctx context.Context, threadID string) (*domain.CheckpointSnapshot, error)
	ListThreads(ctx context.Context) ([]string, error)
}

// QueryRequest is the body of POST /v1/query.
type QueryRequest struct {
	Query    string `json:"query"`
	ThreadID string `json:"thread_id,omitempty"`
}

// QueryResponse is the external answer contract. Everything an operator needs
// to audit the answer travels with it; the server-side error log does not.
type QueryResponse struct {
	Response       string            `json:"response"`
	Sources        []domain.Source   `json:"sources"`
	Confidence     float64           `json:"confidence"`
	DocumentsFound int               `json:"documents_found"`
	Intent         string            `json:"intent"`
	AgentUsed      string            `json:"agent_used"`
	ProcessingTime float64           `json:"processing_time"`
	TraceID        string            `json:"trace_id"`
	NodeHistory    []domain.NodeName `json:"node_history"`
	UsedFallback   bool              `json:"used_fallback"`
}

// ThreadResponse is the body of GET /v1/threads/{id}.
type ThreadResponse struct {
	ThreadID  string    `json:"thread_id"`
	TurnCount int       `json:"turn_count"`
	SavedAt   time.Time `json:"saved_at"`
	LastQuery string    `json:"last_query"`
	LastTrace string    `json:"last_trace_id"`
}

// Server wires the engine into chi handlers.
type Server struct {
	engine   Engine
	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMetrics exposes the gatherer under GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// NewHandler builds the HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{
		engine: engine,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.health)
	r.Post("/v1/query", s.query)
	r.Get("/v1/threads", s.listThreads)
	r.Get("/v1/threads/{id}", s.getThread)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) query(w http.ResponseWriter, r *http.Request) {
	var body QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		s.logger.Warn("query: invalid request body", "err", err)
		return
	}

	state, err := s.engine.Run(r.Context(), body.Query, body.ThreadID)
	if err != nil {
		// Only caller cancellation reaches here; everything else terminates
		// inside the pipeline with a safe response.
		http.Error(w, "request canceled", statusForRunError(err))
		s.logger.Warn("query: run aborted", "err", err)
		return
	}

	resp := QueryResponse{
		Response:       state.FinalResponse,
		Sources:        state.Sources,
		Confidence:     state.Confidence,
		DocumentsFound: state.DocumentsFound,
		Intent:         state.Intent,
		AgentUsed:      state.SelectedAgent,
		ProcessingTime: state.CompletedAt.Sub(state.StartedAt).Seconds(),
		TraceID:        state.TraceID,
		NodeHistory:    state.NodeHistory,
		UsedFallback:   state.UsedFallback,
	}
	if resp.Sources == nil {
		resp.Sources = []domain.Source{}
	}

	writeJSON(w, http.StatusOK, resp, s.logger)
}

func (s *Server) getThread(w http.ResponseWriter, r *http.Request) {
	threadID := chi.URLParam(r, "id")

	snap, err := s.engine.LoadThread(r.Context(), threadID)
	if err != nil {
		if errors.Is(err, domain.ErrSnapshotNotFound) {
			http.Error(w, "thread not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load thread", http.StatusInternalServerError)
		s.logger.Error("thread load failed", "thread_id", threadID, "err", err)
		return
	}

	writeJSON(w, http.StatusOK, ThreadResponse{
		ThreadID:  snap.ThreadID,
		TurnCount: snap.TurnCount,
		SavedAt:   snap.SavedAt,
		LastQuery: snap.State.Query,
		LastTrace: snap.State.TraceID,
	}, s.logger)
}

func (s *Server) listThreads(w http.ResponseWriter, r *http.Request) {
	threads, err := s.engine.ListThreads(r.Context())
	if err != nil {
		http.Error(w, "failed to list threads", http.StatusInternalServerError)
		s.logger.Error("thread list failed", "err", err)
		return
	}
	if threads == nil {
		threads = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"threads": threads}, s.logger)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.logger)
}

func statusForRunError(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	// 499 in nginx terms; the closest standard status.
	return http.StatusRequestTimeout
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "err", err)
	}
}
