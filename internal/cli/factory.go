package cli

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	backend "github.com/redis/go-redis/v9"

	"github.com/attestra/veritor/internal/router"
	"github.com/attestra/veritor/internal/rules"
	"github.com/attestra/veritor/internal/runtime"
	"github.com/attestra/veritor/pkg/adapters/agenthttp"
	"github.com/attestra/veritor/pkg/adapters/memory"
	redisadapter "github.com/attestra/veritor/pkg/adapters/redis"
	"github.com/attestra/veritor/pkg/domain"
	"github.com/attestra/veritor/pkg/persistence/middleware"
	"github.com/attestra/veritor/pkg/ports"
	"github.com/attestra/veritor/pkg/session"
)

// offlineAgent answers when no retrieval backend is configured. It reports
// zero documents, so every query terminates in an honest fallback rather
// than a fabricated answer.
type offlineAgent struct{}

func (offlineAgent) Process(ctx context.Context, query string) (*ports.AgentResult, error) {
	return &ports.AgentResult{
		Response:       "No retrieval backend is configured, so the question cannot be answered from documents.",
		DocumentsFound: 0,
		Confidence:     0,
	}, nil
}

// BuildEngine assembles a fully wired engine from the configuration. The
// returned cleanup function releases external connections and is safe to call
// on a partially failed build.
func BuildEngine(cfg Config, logger *slog.Logger, hooks ...domain.LifecycleHooks) (*runtime.Engine, func(), error) {
	cleanup := func() {}

	ruleSet, err := loadRules(cfg.RulesPath)
	if err != nil {
		return nil, cleanup, err
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		return nil, cleanup, err
	}

	sessions, cleanup, err := buildSessions(cfg, logger)
	if err != nil {
		return nil, cleanup, err
	}

	opts := []runtime.EngineOption{
		runtime.WithLogger(logger),
		runtime.WithSessions(sessions),
	}
	if len(hooks) > 0 {
		opts = append(opts, runtime.WithLifecycleHooks(domain.MergeHooks(hooks...)))
	}
	if cfg.MaxAttempts > 0 {
		opts = append(opts, runtime.WithMaxAttempts(cfg.MaxAttempts))
	}
	if cfg.ConfidenceFloor > 0 {
		opts = append(opts, runtime.WithConfidenceFloor(cfg.ConfidenceFloor))
	}
	if cfg.AttemptTimeout > 0 {
		opts = append(opts, runtime.WithAttemptTimeout(cfg.AttemptTimeout.Std()))
	}

	return runtime.NewEngine(registry, ruleSet, opts...), cleanup, nil
}

func loadRules(path string) (*rules.RuleSet, error) {
	if path == "" {
		return rules.Default(), nil
	}
	ruleSet, err := rules.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules from %s: %w", path, err)
	}
	return ruleSet, nil
}

func buildRegistry(cfg Config) (*router.Registry, error) {
	if len(cfg.Agents) == 0 {
		return router.NewRegistry(cfg.DefaultAgent, offlineAgent{}), nil
	}

	agents := make(map[string]ports.Agent, len(cfg.Agents))
	for intent, ac := range cfg.Agents {
		var opts []agenthttp.Option
		if ac.APIKey != "" {
			opts = append(opts, agenthttp.WithHeader("X-Api-Key", ac.APIKey))
		}
		agents[intent] = agenthttp.New(ac.Endpoint, opts...)
	}

	registry := router.NewRegistry(cfg.DefaultAgent, agents[cfg.DefaultAgent])
	for intent, agent := range agents {
		if intent == cfg.DefaultAgent {
			continue
		}
		registry.Register(intent, agent)
	}
	return registry, nil
}

func buildSessions(cfg Config, logger *slog.Logger) (*session.Manager, func(), error) {
	if cfg.RedisURL == "" {
		store, err := secureStore(cfg, memory.NewStore())
		if err != nil {
			return nil, func() {}, err
		}
		return session.NewManager(store, session.WithLogger(logger)), func() {}, nil
	}

	redisOpts, err := backend.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, func() {}, fmt.Errorf("invalid redis_url: %w", err)
	}
	client := backend.NewClient(redisOpts)
	cleanup := func() { _ = client.Close() }

	store, err := secureStore(cfg, redisadapter.NewFromClient(client))
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}

	manager := session.NewManager(
		store,
		session.WithLocker(redisadapter.NewLocker(client, "veritor:lock:")),
		session.WithLogger(logger),
	)
	return manager, cleanup, nil
}

// secureStore layers the configured persistence middleware over a raw store:
// PII patterns scrub the snapshot first, then the encryption middleware seals
// it, so a leaked key still never exposes the masked fields.
func secureStore(cfg Config, store ports.CheckpointStore) (ports.CheckpointStore, error) {
	var mws []middleware.Middleware

	if len(cfg.PIIPatterns) > 0 {
		for _, p := range cfg.PIIPatterns {
			if _, err := regexp.Compile(p); err != nil {
				return nil, fmt.Errorf("invalid pii pattern %q: %w", p, err)
			}
		}
		mws = append(mws, middleware.NewPIIMiddleware(cfg.PIIPatterns))
	}

	if cfg.EncryptionKey != "" {
		key, err := cfg.encryptionKey()
		if err != nil {
			return nil, err
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}

	if len(mws) == 0 {
		return store, nil
	}
	return middleware.Chain(store, mws...), nil
}
