package veritor

import (
	"context"
	"log/slog"
	"time"

	"github.com/attestra/veritor/internal/logging"
	"github.com/attestra/veritor/internal/router"
	"github.com/attestra/veritor/internal/rules"
	"github.com/attestra/veritor/internal/runtime"
	"github.com/attestra/veritor/pkg/domain"
	"github.com/attestra/veritor/pkg/ports"
	"github.com/attestra/veritor/pkg/session"
)

// Version is the library version, reported by the CLI and the MCP server.
const Version = "0.1.0"

// Answer is the external result contract. It carries the composed response
// plus the audit trail a caller needs to judge it; the server-side error log
// stays internal.
type Answer struct {
	Response       string            `json:"response"`
	Sources        []domain.Source   `json:"sources"`
	Confidence     float64           `json:"confidence"`
	DocumentsFound int               `json:"documents_found"`
	Intent         string            `json:"intent"`
	AgentUsed      string            `json:"agent_used"`
	ProcessingTime time.Duration     `json:"processing_time"`
	TraceID        string            `json:"trace_id"`
	NodeHistory    []domain.NodeName `json:"node_history"`
	UsedFallback   bool              `json:"used_fallback"`
}

// Engine is the high-level entry point for the veritor library. It wraps the
// internal runtime behind a question-in, answer-out API.
type Engine struct {
	runtime  *runtime.Engine
	registry *router.Registry
	rules    *rules.RuleSet
	store    ports.CheckpointStore
	locker   ports.DistributedLocker
	hooks    domain.LifecycleHooks
	logger   *slog.Logger

	runtimeOpts []runtime.EngineOption
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithRules replaces the embedded default rule set.
func WithRules(rs *rules.RuleSet) Option {
	return func(e *Engine) {
		e.rules = rs
	}
}

// WithAgent registers a specialized agent for an intent.
func WithAgent(intent string, agent ports.Agent) Option {
	return func(e *Engine) {
		e.registry.Register(intent, agent)
	}
}

// WithCheckpointStore enables conversation continuity on top of a store.
func WithCheckpointStore(store ports.CheckpointStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithDistributedLocker adds cross-replica locking for checkpoint writes.
// It only takes effect together with WithCheckpointStore.
func WithDistributedLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMaxAttempts sets the agent retry ceiling.
func WithMaxAttempts(n int) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithMaxAttempts(n))
	}
}

// WithConfidenceFloor sets the minimum acceptable agent confidence.
func WithConfidenceFloor(floor float64) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithConfidenceFloor(floor))
	}
}

// WithAttemptTimeout bounds a single agent invocation.
func WithAttemptTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithAttemptTimeout(d))
	}
}

// New initializes an Engine around a default agent. The default agent handles
// every query that no specialized agent claims, so answering is total.
func New(defaultAgentID string, defaultAgent ports.Agent, opts ...Option) *Engine {
	eng := &Engine{
		registry: router.NewRegistry(defaultAgentID, defaultAgent),
		rules:    rules.Default(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(eng)
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
	}
	if eng.store != nil {
		sessionOpts := []session.Option{session.WithLogger(eng.logger)}
		if eng.locker != nil {
			sessionOpts = append(sessionOpts, session.WithLocker(eng.locker))
		}
		runtimeOpts = append(runtimeOpts, runtime.WithSessions(
			session.NewManager(eng.store, sessionOpts...)))
	}
	runtimeOpts = append(runtimeOpts, eng.runtimeOpts...)

	eng.runtime = runtime.NewEngine(eng.registry, eng.rules, runtimeOpts...)
	return eng
}

// Ask answers a question. A non-empty threadID links the question into a
// conversation whose state survives across calls (requires a checkpoint
// store). The error is non-nil only on caller cancellation; every other
// failure mode terminates in a safe answer.
func (e *Engine) Ask(ctx context.Context, query, threadID string) (*Answer, error) {
	state, err := e.runtime.Run(ctx, query, threadID)
	if err != nil {
		return nil, err
	}

	answer := &Answer{
		Response:       state.FinalResponse,
		Sources:        state.Sources,
		Confidence:     state.Confidence,
		DocumentsFound: state.DocumentsFound,
		Intent:         state.Intent,
		AgentUsed:      state.SelectedAgent,
		ProcessingTime: state.CompletedAt.Sub(state.StartedAt),
		TraceID:        state.TraceID,
		NodeHistory:    state.NodeHistory,
		UsedFallback:   state.UsedFallback,
	}
	if answer.Sources == nil {
		answer.Sources = []domain.Source{}
	}
	return answer, nil
}

// Runtime exposes the underlying engine for transports that need the full
// execution state, like the HTTP and MCP adapters.
func (e *Engine) Runtime() *runtime.Engine {
	return e.runtime
}

// Thread returns the latest checkpoint of a conversation thread.
func (e *Engine) Thread(ctx context.Context, threadID string) (*domain.CheckpointSnapshot, error) {
	return e.runtime.LoadThread(ctx, threadID)
}

// Threads lists conversation threads with an active checkpoint.
func (e *Engine) Threads(ctx context.Context) ([]string, error) {
	return e.runtime.ListThreads(ctx)
}
