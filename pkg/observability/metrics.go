// Package observability exposes pipeline telemetry as Prometheus collectors
// wired through the engine's lifecycle hooks.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/attestra/veritor/pkg/domain"
)

// Metrics holds the collectors for one engine instance.
type Metrics struct {
	nodeVisits    *prometheus.CounterVec
	agentAttempts *prometheus.CounterVec
	agentDuration *prometheus.HistogramVec
	fallbacks     *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		nodeVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "veritor",
			Name:      "node_visits_total",
			Help:      "Pipeline node visits, including repeated visits from retries.",
		}, []string{"node"}),
		agentAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "veritor",
			Name:      "agent_attempts_total",
			Help:      "Agent invocations by agent ID and outcome.",
		}, []string{"agent", "outcome"}),
		agentDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "veritor",
			Name:      "agent_duration_seconds",
			Help:      "Wall-clock duration of a single agent invocation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"agent"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "veritor",
			Name:      "fallbacks_total",
			Help:      "Fallback responses served, by classified intent and detected topic.",
		}, []string{"intent", "topic"}),
	}
	reg.MustRegister(m.nodeVisits, m.agentAttempts, m.agentDuration, m.fallbacks)
	return m
}

// NodeVisits exposes the node visit counter, mainly for assertions.
func (m *Metrics) NodeVisits() *prometheus.CounterVec { return m.nodeVisits }

// AgentAttempts exposes the agent attempt counter.
func (m *Metrics) AgentAttempts() *prometheus.CounterVec { return m.agentAttempts }

// Fallbacks exposes the fallback counter.
func (m *Metrics) Fallbacks() *prometheus.CounterVec { return m.fallbacks }

// Hooks returns lifecycle hooks feeding these collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, ev *domain.NodeEvent) {
			m.nodeVisits.WithLabelValues(string(ev.Node)).Inc()
		},
		OnAgentReturn: func(_ context.Context, ev *domain.AgentEvent) {
			outcome := "success"
			if ev.IsError {
				outcome = "error"
			}
			m.agentAttempts.WithLabelValues(ev.AgentID, outcome).Inc()
			m.agentDuration.WithLabelValues(ev.AgentID).Observe(ev.Duration.Seconds())
		},
		OnFallback: func(_ context.Context, ev *domain.FallbackEvent) {
			m.fallbacks.WithLabelValues(ev.Intent, ev.Topic).Inc()
		},
	}
}
