// Package runtime implements the orchestration state machine: input
// validation, intent detection, agent routing, bounded-retry execution,
// evidence validation and response composition.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/attestra/veritor/internal/intent"
	"github.com/attestra/veritor/internal/logging"
	"github.com/attestra/veritor/internal/router"
	"github.com/attestra/veritor/internal/rules"
	"github.com/attestra/veritor/pkg/domain"
	"github.com/attestra/veritor/pkg/session"
)

const (
	// DefaultMaxAttempts is the retry ceiling for agent execution.
	DefaultMaxAttempts = 3
	// DefaultConfidenceFloor is the minimum acceptable agent confidence.
	DefaultConfidenceFloor = 0.5
	// DefaultAttemptTimeout bounds a single agent invocation, so the overall
	// worst case is MaxAttempts * AttemptTimeout.
	DefaultAttemptTimeout = 30 * time.Second
)

// Engine is the orchestration core. It owns its collaborators explicitly so
// multiple isolated instances can exist side by side (no package state).
type Engine struct {
	registry   *router.Registry
	rules      *rules.RuleSet
	classifier *intent.Classifier
	sessions   *session.Manager

	hooks  domain.LifecycleHooks
	logger *slog.Logger

	maxAttempts     int
	confidenceFloor float64
	attemptTimeout  time.Duration
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithLogger sets a structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithSessions enables conversation continuity via a checkpoint session
// manager. Without it, thread IDs are accepted but nothing is persisted.
func WithSessions(sessions *session.Manager) EngineOption {
	return func(e *Engine) {
		e.sessions = sessions
	}
}

// WithMaxAttempts sets the agent retry ceiling.
func WithMaxAttempts(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

// WithConfidenceFloor sets the minimum acceptable agent confidence.
func WithConfidenceFloor(floor float64) EngineOption {
	return func(e *Engine) {
		e.confidenceFloor = floor
	}
}

// WithAttemptTimeout bounds a single agent invocation. Zero disables the
// per-attempt timeout.
func WithAttemptTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.attemptTimeout = d
	}
}

// NewEngine creates an orchestration engine over a registry of agents and a
// compiled rule set.
func NewEngine(registry *router.Registry, ruleSet *rules.RuleSet, opts ...EngineOption) *Engine {
	e := &Engine{
		registry:        registry,
		rules:           ruleSet,
		classifier:      intent.New(ruleSet),
		logger:          logging.NewNop(),
		maxAttempts:     DefaultMaxAttempts,
		confidenceFloor: DefaultConfidenceFloor,
		attemptTimeout:  DefaultAttemptTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the full pipeline for one query. It always produces a state
// with a non-empty FinalResponse, except on caller cancellation, where the
// partial state is discarded and the context error returned. A checkpoint is
// written only on clean termination of a request carrying a thread ID.
func (e *Engine) Run(ctx context.Context, query, threadID string) (*domain.ExecutionState, error) {
	state := domain.NewState(query, threadID)

	if err := e.drive(ctx, state); err != nil {
		return nil, err
	}
	state.CompletedAt = time.Now()

	e.logger.Info("pipeline terminated",
		"trace_id", state.TraceID,
		"intent", state.Intent,
		"agent", state.SelectedAgent,
		"attempts", state.AttemptCount,
		"validated", state.Validated,
		"fallback", state.UsedFallback,
	)

	e.checkpoint(ctx, state)
	return state, nil
}

// LoadThread returns the latest checkpoint for a conversation thread.
func (e *Engine) LoadThread(ctx context.Context, threadID string) (*domain.CheckpointSnapshot, error) {
	if e.sessions == nil {
		return nil, domain.ErrSnapshotNotFound
	}
	return e.sessions.Load(ctx, threadID)
}

// ListThreads returns the thread IDs with an active checkpoint.
func (e *Engine) ListThreads(ctx context.Context) ([]string, error) {
	if e.sessions == nil {
		return nil, nil
	}
	return e.sessions.List(ctx)
}

// drive walks the state machine to a terminal node. It owns every history
// append: each node is visited right after its enter event, so the recorded
// transitions are checkable against domain.ValidSuccessors in one place.
// Any panic at a node boundary is contained and routed through the error
// handler; only context cancellation propagates to the caller.
func (e *Engine) drive(ctx context.Context, state *domain.ExecutionState) (err error) {
	defer func() {
		if r := recover(); r != nil {
			state.LogError(fmt.Sprintf("system error: %v", r))
			e.logger.Error("node panicked, containing fault",
				"trace_id", state.TraceID, "panic", fmt.Sprintf("%v", r))
			// The containment edge exists from every non-terminal node. A
			// panic past a terminal visit is recorded in the error log only,
			// keeping the history free of transitions outside the table.
			if domain.IsValidTransition(lastNode(state), domain.NodeErrorHandler) {
				state.Visit(domain.NodeErrorHandler)
			}
			e.handleError(state)
			err = nil
		}
	}()

	// INPUT_VALIDATION: annotates, never rejects.
	e.emitNodeEnter(ctx, state, domain.NodeInputValidation)
	state.Visit(domain.NodeInputValidation)
	issues := e.validateInput(state)
	e.emitNodeLeave(ctx, state, domain.NodeInputValidation, "")
	if len(issues) > 0 {
		e.logger.Warn("input issues recorded", "trace_id", state.TraceID, "issues", issues)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// INTENT_DETECTION
	e.emitNodeEnter(ctx, state, domain.NodeIntentDetection)
	state.Visit(domain.NodeIntentDetection)
	result := e.classifier.Classify(state.Query)
	state.Intent = result.Intent
	state.IntentConfidence = result.Confidence
	state.IntentEntities = result.Entities
	e.emitNodeLeave(ctx, state, domain.NodeIntentDetection, "")
	if err := ctx.Err(); err != nil {
		return err
	}

	// ROUTE_SELECTION: total, the default agent guarantees coverage.
	e.emitNodeEnter(ctx, state, domain.NodeRouteSelection)
	state.Visit(domain.NodeRouteSelection)
	state.SelectedAgent = e.registry.Route(state.Intent, state.IntentConfidence)
	e.emitNodeLeave(ctx, state, domain.NodeRouteSelection, "")

	// AGENT_EXECUTION <-> RESPONSE_VALIDATION loop.
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		e.emitNodeEnter(ctx, state, domain.NodeAgentExecution)
		state.Visit(domain.NodeAgentExecution)
		attemptErr := e.executeAttempt(ctx, state)
		decision := afterExecution(state, attemptErr)
		e.emitNodeLeave(ctx, state, domain.NodeAgentExecution, decision.String())

		// A canceled caller takes precedence over retry accounting.
		if err := ctx.Err(); err != nil {
			return err
		}

		switch decision {
		case domain.DecisionRetry:
			continue
		case domain.DecisionError:
			e.emitNodeEnter(ctx, state, domain.NodeErrorHandler)
			state.Visit(domain.NodeErrorHandler)
			e.handleError(state)
			e.emitNodeLeave(ctx, state, domain.NodeErrorHandler, "")
			return nil
		}

		e.emitNodeEnter(ctx, state, domain.NodeResponseValidation)
		state.Visit(domain.NodeResponseValidation)
		issues := e.validateResponse(state)
		decision = afterValidation(state, issues)
		e.emitNodeLeave(ctx, state, domain.NodeResponseValidation, decision.String())

		switch decision {
		case domain.DecisionSuccess:
			e.emitNodeEnter(ctx, state, domain.NodeCompose)
			state.Visit(domain.NodeCompose)
			e.composeFinal(state, state.RawResponse)
			e.emitNodeLeave(ctx, state, domain.NodeCompose, "")
			return nil
		case domain.DecisionFallback:
			e.emitNodeEnter(ctx, state, domain.NodeFallback)
			state.Visit(domain.NodeFallback)
			body := e.composeFallback(ctx, state, issues)
			e.emitNodeLeave(ctx, state, domain.NodeFallback, "")

			e.emitNodeEnter(ctx, state, domain.NodeCompose)
			state.Visit(domain.NodeCompose)
			e.composeFinal(state, body)
			e.emitNodeLeave(ctx, state, domain.NodeCompose, "")
			return nil
		case domain.DecisionRetry:
			continue
		}
	}
}

// lastNode returns the most recent history entry, or "" before any visit.
func lastNode(state *domain.ExecutionState) domain.NodeName {
	if len(state.NodeHistory) == 0 {
		return ""
	}
	return state.NodeHistory[len(state.NodeHistory)-1]
}

// checkpoint persists the terminated state for its thread, best effort. The
// per-thread lock in the session manager guarantees single-writer semantics
// for concurrent turns of the same conversation.
func (e *Engine) checkpoint(ctx context.Context, state *domain.ExecutionState) {
	if state.ThreadID == "" || e.sessions == nil {
		return
	}

	err := e.sessions.Checkpoint(ctx, state)
	if err != nil {
		e.logger.Warn("failed to checkpoint thread",
			"thread_id", state.ThreadID, "trace_id", state.TraceID, "err", err)
	}
}
