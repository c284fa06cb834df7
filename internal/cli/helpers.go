package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/attestra/veritor/internal/logging"
	"github.com/attestra/veritor/pkg/domain"
)

// NewSignalContext returns a context cancelled on SIGINT or SIGTERM.
func NewSignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// CreateLogger configures the application logger from the config level.
// Debug overrides the configured level.
func CreateLogger(level string, debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	parsed, err := logging.ParseLevel(level)
	if err != nil {
		parsed = slog.LevelInfo
	}
	return logging.New(parsed)
}

// DebugHooks logs every lifecycle event at debug level.
func DebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.Debug("Enter node", "node", e.Node, "trace_id", e.TraceID)
		},
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			logger.Debug("Leave node", "node", e.Node, "decision", e.Decision)
		},
		OnAgentCall: func(ctx context.Context, e *domain.AgentEvent) {
			logger.Debug("Agent call", "agent", e.AgentID, "attempt", e.Attempt)
		},
		OnAgentReturn: func(ctx context.Context, e *domain.AgentEvent) {
			if e.IsError {
				logger.Debug("Agent return (error)", "agent", e.AgentID, "attempt", e.Attempt, "duration", e.Duration)
			} else {
				logger.Debug("Agent return (success)", "agent", e.AgentID, "duration", e.Duration)
			}
		},
		OnFallback: func(ctx context.Context, e *domain.FallbackEvent) {
			logger.Debug("Fallback served", "intent", e.Intent, "topic", e.Topic, "reason", e.Reason)
		},
	}
}
