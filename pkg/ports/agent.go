package ports

import (
	"context"

	"github.com/attestra/veritor/pkg/domain"
)

// AgentResult is the contract an agent must satisfy. How the answer is
// computed (retrieval, ranking, generation) is entirely the agent's business.
type AgentResult struct {
	Response       string          `json:"response" mapstructure:"response"`
	Sources        []domain.Source `json:"sources,omitempty" mapstructure:"sources"`
	DocumentsFound int             `json:"documents_found" mapstructure:"documents_found"`
	Confidence     float64         `json:"confidence" mapstructure:"confidence"`
}

// Agent is an external answer-generation capability. Process must be safe to
// invoke repeatedly with the same query: the executor retries failed or empty
// invocations without any compensation logic.
type Agent interface {
	Process(ctx context.Context, query string) (*AgentResult, error)
}

// AgentFunc adapts a plain function to the Agent interface.
type AgentFunc func(ctx context.Context, query string) (*AgentResult, error)

func (f AgentFunc) Process(ctx context.Context, query string) (*AgentResult, error) {
	return f(ctx, query)
}
