package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter   EventType = "node_enter"
	EventNodeLeave   EventType = "node_leave"
	EventAgentCall   EventType = "agent_call"
	EventAgentReturn EventType = "agent_return"
	EventFallback    EventType = "fallback"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	TraceID   string    `json:"trace_id"`
}

// NodeEvent represents entry to or exit from a pipeline node.
type NodeEvent struct {
	EventBase
	Node     NodeName `json:"node"`
	Decision string   `json:"decision,omitempty"` // set on leave
}

// AgentEvent represents one agent invocation attempt.
type AgentEvent struct {
	EventBase
	AgentID  string        `json:"agent_id"`
	Attempt  int           `json:"attempt"`
	Duration time.Duration `json:"duration,omitempty"` // set on return
	IsError  bool          `json:"is_error,omitempty"`
}

// FallbackEvent records that validation could not be satisfied and a canned
// response was served instead.
type FallbackEvent struct {
	EventBase
	Intent string `json:"intent"`
	Topic  string `json:"topic,omitempty"`
	Reason string `json:"reason"`
}

// LifecycleHooks defines callbacks for engine observability. All hooks are
// optional and must not block; they run synchronously on the request path.
type LifecycleHooks struct {
	OnNodeEnter   func(context.Context, *NodeEvent)
	OnNodeLeave   func(context.Context, *NodeEvent)
	OnAgentCall   func(context.Context, *AgentEvent)
	OnAgentReturn func(context.Context, *AgentEvent)
	OnFallback    func(context.Context, *FallbackEvent)
}

// MergeHooks fans one event out to every hook set in order.
func MergeHooks(sets ...LifecycleHooks) LifecycleHooks {
	var merged LifecycleHooks
	for _, h := range sets {
		merged = mergePair(merged, h)
	}
	return merged
}

func mergePair(a, b LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnNodeEnter:   chainNode(a.OnNodeEnter, b.OnNodeEnter),
		OnNodeLeave:   chainNode(a.OnNodeLeave, b.OnNodeLeave),
		OnAgentCall:   chainAgent(a.OnAgentCall, b.OnAgentCall),
		OnAgentReturn: chainAgent(a.OnAgentReturn, b.OnAgentReturn),
		OnFallback:    chainFallback(a.OnFallback, b.OnFallback),
	}
}

func chainNode(a, b func(context.Context, *NodeEvent)) func(context.Context, *NodeEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, ev *NodeEvent) {
		a(ctx, ev)
		b(ctx, ev)
	}
}

func chainAgent(a, b func(context.Context, *AgentEvent)) func(context.Context, *AgentEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, ev *AgentEvent) {
		a(ctx, ev)
		b(ctx, ev)
	}
}

func chainFallback(a, b func(context.Context, *FallbackEvent)) func(context.Context, *FallbackEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, ev *FallbackEvent) {
		a(ctx, ev)
		b(ctx, ev)
	}
}
