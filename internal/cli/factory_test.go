package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attestra/veritor/internal/logging"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "general", cfg.DefaultAgent)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoadConfig_Overrides(t *testing.T) {
	path := writeFile(t, "config.yaml", `
listen: ":9090"
log_level: debug
max_attempts: 5
confidence_floor: 0.7
attempt_timeout: 10s
default_agent: allowance
agents:
  allowance:
    endpoint: http://localhost:9000/query
    api_key: secret
  general:
    endpoint: http://localhost:9001/query
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 0.7, cfg.ConfidenceFloor)
	assert.Equal(t, 10*time.Second, cfg.AttemptTimeout.Std())
	assert.Equal(t, "allowance", cfg.DefaultAgent)
	assert.Equal(t, "secret", cfg.Agents["allowance"].APIKey)
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"default agent missing": `
agents:
  allowance:
    endpoint: http://localhost:9000
`,
		"agent without endpoint": `
default_agent: general
agents:
  general:
    api_key: oops
`,
		"confidence out of range": `confidence_floor: 1.5`,
		"negative attempts":       `max_attempts: -1`,
		"key not base64":          `encryption_key: "not base64!!"`,
		"key too short":           `encryption_key: "c2hvcnQ="`,
		"bad pii pattern":         `pii_patterns: ["[unclosed"]`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeFile(t, "config.yaml", content))
			assert.Error(t, err)
		})
	}
}

func TestBuildEngine_OfflineDefaults(t *testing.T) {
	engine, cleanup, err := BuildEngine(DefaultConfig(), logging.NewNop())
	require.NoError(t, err)
	defer cleanup()

	// Without a retrieval backend, a query still terminates with an honest
	// fallback response.
	state, err := engine.Run(context.Background(), "What is the daily allowance?", "")
	require.NoError(t, err)
	assert.True(t, state.UsedFallback)
	assert.NotEmpty(t, state.FinalResponse)
}

func TestBuildEngine_CustomRules(t *testing.T) {
	rulesPath := writeFile(t, "rules.yaml", `
normalizer: 2.0
intents:
  - name: parking
    patterns:
      - pattern: '(?i)\bparking\b'
        weight: 2
fallbacks:
  - intent: parking
    text: No verified parking rules found (insufficient information).
`)

	cfg := DefaultConfig()
	cfg.RulesPath = rulesPath

	engine, cleanup, err := BuildEngine(cfg, logging.NewNop())
	require.NoError(t, err)
	defer cleanup()

	state, err := engine.Run(context.Background(), "Is parking reimbursed?", "")
	require.NoError(t, err)
	assert.Equal(t, "parking", state.Intent)
}

func TestBuildEngine_BadRulesPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RulesPath = "/nonexistent/rules.yaml"

	_, cleanup, err := BuildEngine(cfg, logging.NewNop())
	defer cleanup()
	assert.Error(t, err)
}

func TestBuildEngine_EncryptedCheckpointsRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EncryptionKey = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))

	engine, cleanup, err := BuildEngine(cfg, logging.NewNop())
	require.NoError(t, err)
	defer cleanup()

	ctx := context.Background()
	_, err = engine.Run(ctx, "What is the daily allowance?", "thread-1")
	require.NoError(t, err)

	// Loading back through the middleware chain decrypts transparently.
	snap, err := engine.LoadThread(ctx, "thread-1")
	require.NoError(t, err)
	require.NotNil(t, snap.State)
	assert.Equal(t, "What is the daily allowance?", snap.State.Query)
	assert.Empty(t, snap.Sealed)
}

func TestBuildEngine_PIIPatternsScrubCheckpoints(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PIIPatterns = []string{`[\w.]+@[\w.]+`}

	engine, cleanup, err := BuildEngine(cfg, logging.NewNop())
	require.NoError(t, err)
	defer cleanup()

	ctx := context.Background()
	state, err := engine.Run(ctx, "What may jane.doe@example.com claim?", "thread-1")
	require.NoError(t, err)

	// The live state keeps the original query; only the checkpoint is masked.
	assert.Contains(t, state.Query, "jane.doe@example.com")

	snap, err := engine.LoadThread(ctx, "thread-1")
	require.NoError(t, err)
	assert.NotContains(t, snap.State.Query, "jane.doe@example.com")
	assert.Contains(t, snap.State.Query, "***")
}

func TestBuildEngine_InvalidEncryptionKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EncryptionKey = "too-short"

	_, cleanup, err := BuildEngine(cfg, logging.NewNop())
	defer cleanup()
	assert.Error(t, err)
}

func TestBuildEngine_BadRedisURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RedisURL = "://not-a-url"

	_, cleanup, err := BuildEngine(cfg, logging.NewNop())
	defer cleanup()
	assert.Error(t, err)
}
