// Package agenthttp adapts a remote retrieval service into the Agent port.
// The wire shape is deliberately loose: the remote side answers with a JSON
// object and the adapter maps whatever fields it recognizes, so retrieval
// backends can evolve without breaking the engine.
package agenthttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/attestra/veritor/pkg/ports"
)

const defaultTimeout = 25 * time.Second

// maxBodySize caps how much of a remote answer is read. 4 MiB is far beyond
// any sane retrieval payload.
const maxBodySize = 4 << 20

// Agent calls a remote retrieval endpoint over HTTP.
type Agent struct {
	endpoint string
	client   *http.Client
	headers  map[string]string
}

// Option configures the agent.
type Option func(*Agent)

// WithClient overrides the HTTP client, e.g. for custom TLS or tracing.
func WithClient(client *http.Client) Option {
	return func(a *Agent) { a.client = client }
}

// WithHeader adds a static header to every request, e.g. an API key.
func WithHeader(key, value string) Option {
	return func(a *Agent) { a.headers[key] = value }
}

// New creates an agent for a retrieval endpoint.
func New(endpoint string, opts ...Option) *Agent {
	a := &Agent{
		endpoint: endpoint,
		client:   &http.Client{Timeout: defaultTimeout},
		headers:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Process sends the query to the remote service and maps the reply into an
// AgentResult. The per-attempt deadline of the engine travels in ctx.
func (a *Agent) Process(ctx context.Context, query string) (*ports.AgentResult, error) {
	payload, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range a.headers {
		req.Header.Set(k, v)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("retrieval request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read retrieval response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("retrieval service returned status %d", resp.StatusCode)
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("retrieval response is not a JSON object: %w", err)
	}

	result, err := decodeResult(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to map retrieval response: %w", err)
	}
	return result, nil
}

// decodeResult maps a loose JSON object onto the AgentResult shape. Unknown
// fields are ignored; recognized fields are converted leniently (a quoted
// number still counts).
func decodeResult(raw map[string]any) (*ports.AgentResult, error) {
	var result ports.AgentResult
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &result,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, err
	}
	return &result, nil
}
