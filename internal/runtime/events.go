package runtime

import (
	"context"
	"time"

	"github.com/attestra/veritor/pkg/domain"
)

func (e *Engine) emitNodeEnter(ctx context.Context, state *domain.ExecutionState, node domain.NodeName) {
	if e.hooks.OnNodeEnter == nil {
		return
	}
	e.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
		EventBase: base(domain.EventNodeEnter, state.TraceID),
		Node:      node,
	})
}

func (e *Engine) emitNodeLeave(ctx context.Context, state *domain.ExecutionState, node domain.NodeName, decision string) {
	if e.hooks.OnNodeLeave == nil {
		return
	}
	e.hooks.OnNodeLeave(ctx, &domain.NodeEvent{
		EventBase: base(domain.EventNodeLeave, state.TraceID),
		Node:      node,
		Decision:  decision,
	})
}

func (e *Engine) emitAgentCall(ctx context.Context, state *domain.ExecutionState) {
	if e.hooks.OnAgentCall == nil {
		return
	}
	e.hooks.OnAgentCall(ctx, &domain.AgentEvent{
		EventBase: base(domain.EventAgentCall, state.TraceID),
		AgentID:   state.SelectedAgent,
		Attempt:   state.AttemptCount,
	})
}

func (e *Engine) emitAgentReturn(ctx context.Context, state *domain.ExecutionState, duration time.Duration, isError bool) {
	if e.hooks.OnAgentReturn == nil {
		return
	}
	e.hooks.OnAgentReturn(ctx, &domain.AgentEvent{
		EventBase: base(domain.EventAgentReturn, state.TraceID),
		AgentID:   state.SelectedAgent,
		Attempt:   state.AttemptCount,
		Duration:  duration,
		IsError:   isError,
	})
}

func (e *Engine) emitFallback(ctx context.Context, state *domain.ExecutionState, topic string) {
	if e.hooks.OnFallback == nil {
		return
	}
	e.hooks.OnFallback(ctx, &domain.FallbackEvent{
		EventBase: base(domain.EventFallback, state.TraceID),
		Intent:    state.Intent,
		Topic:     topic,
		Reason:    state.FallbackReason,
	})
}

func base(t domain.EventType, traceID string) domain.EventBase {
	return domain.EventBase{
		Timestamp: time.Now(),
		Type:      t,
		TraceID:   traceID,
	}
}
