package runtime

import (
	"context"
	"strings"

	"github.com/attestra/veritor/pkg/domain"
)

// composeFallback selects a canned response from the catalog. This is the
// anti-hallucination boundary of the whole system: whatever text leaves here
// is either a curated catalog entry or an explicit insufficient-information
// message, never a synthesized value.
func (e *Engine) composeFallback(ctx context.Context, state *domain.ExecutionState, issues []domain.ValidationIssue) string {
	topic := e.rules.Catalog().DetectTopic(state.Query)
	text := e.rules.Catalog().Lookup(state.Intent, topic)

	state.UsedFallback = true
	state.FallbackReason = summarizeIssues(issues)

	e.emitFallback(ctx, state, topic)

	return text
}

// summarizeIssues flattens validator findings into the fallback_reason field.
func summarizeIssues(issues []domain.ValidationIssue) string {
	if len(issues) == 0 {
		return "validation could not be satisfied"
	}
	parts := make([]string, 0, len(issues))
	for _, issue := range issues {
		parts = append(parts, issue.Error())
	}
	return strings.Join(parts, "; ")
}
