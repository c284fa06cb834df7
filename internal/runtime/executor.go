package runtime

import (
	"context"
	"strings"
	"time"

	"github.com/attestra/veritor/pkg/domain"
)

// executeAttempt performs exactly one agent invocation. It increments the
// attempt counter and, on success, copies the agent output into the state.
// A nil return means a non-empty response was produced; any failure comes
// back as *domain.AgentFailure.
func (e *Engine) executeAttempt(ctx context.Context, state *domain.ExecutionState) error {
	state.AttemptCount++

	agent, err := e.registry.Get(state.SelectedAgent)
	if err != nil {
		// Routing guarantees a registered agent; reaching this is a wiring bug.
		failure := &domain.AgentFailure{AgentID: state.SelectedAgent, Attempt: state.AttemptCount, Err: err}
		state.LogError(failure.Error())
		return failure
	}

	attemptCtx := ctx
	var cancel context.CancelFunc
	if e.attemptTimeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, e.attemptTimeout)
		defer cancel()
	}

	e.emitAgentCall(ctx, state)
	started := time.Now()

	result, err := agent.Process(attemptCtx, state.Query)

	duration := time.Since(started)

	if err == nil && (result == nil || strings.TrimSpace(result.Response) == "") {
		err = domain.ErrEmptyAgentResponse
	}
	if err != nil {
		e.emitAgentReturn(ctx, state, duration, true)
		failure := &domain.AgentFailure{AgentID: state.SelectedAgent, Attempt: state.AttemptCount, Err: err}
		state.LogError(failure.Error())
		return failure
	}

	e.emitAgentReturn(ctx, state, duration, false)

	state.RawResponse = result.Response
	state.Sources = append([]domain.Source(nil), result.Sources...)
	state.DocumentsFound = result.DocumentsFound
	state.Confidence = clamp01(result.Confidence)

	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
