package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attestra/veritor/internal/router"
	"github.com/attestra/veritor/internal/rules"
	"github.com/attestra/veritor/pkg/domain"
	"github.com/attestra/veritor/pkg/ports"
)

func testEngine(opts ...EngineOption) *Engine {
	noop := ports.AgentFunc(func(ctx context.Context, query string) (*ports.AgentResult, error) {
		return &ports.AgentResult{Response: "unused"}, nil
	})
	return NewEngine(router.NewRegistry("general", noop), rules.Default(), opts...)
}

func issueRules(issues []domain.ValidationIssue) []string {
	out := make([]string, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.Rule)
	}
	return out
}

func TestValidateResponse_CleanAnswerPasses(t *testing.T) {
	e := testEngine()
	state := &domain.ExecutionState{
		Intent:         "allowance",
		RawResponse:    "The daily allowance is 28,00 EUR per full day.",
		DocumentsFound: 4,
		Confidence:     0.8,
	}

	issues := e.validateResponse(state)

	assert.Empty(t, issues)
	assert.True(t, state.Validated)
	assert.Equal(t, []string{"28,00"}, state.EvidenceFound)
	assert.Empty(t, state.ValidationErrors)
}

func TestValidateResponse_ShortResponseIsTechnical(t *testing.T) {
	e := testEngine()
	state := &domain.ExecutionState{
		Intent:         "general",
		RawResponse:    "ok",
		DocumentsFound: 2,
		Confidence:     0.9,
	}

	issues := e.validateResponse(state)

	require.Len(t, issues, 1)
	assert.Equal(t, "response_length", issues[0].Rule)
	assert.Equal(t, domain.IssueTechnical, issues[0].Class)
	assert.False(t, domain.AnyContent(issues))
	assert.True(t, domain.AllTechnical(issues))
}

func TestValidateResponse_MissingEvidenceIsContent(t *testing.T) {
	e := testEngine()
	state := &domain.ExecutionState{
		Intent:         "allowance",
		RawResponse:    "Allowances exist for business trips in general.",
		DocumentsFound: 2,
		Confidence:     0.9,
	}

	issues := e.validateResponse(state)

	require.Len(t, issues, 1)
	assert.Equal(t, "evidence_required", issues[0].Rule)
	assert.Equal(t, domain.IssueContent, issues[0].Class)
	assert.Empty(t, state.EvidenceFound)
}

func TestValidateResponse_NoDocumentsAndLowConfidence(t *testing.T) {
	e := testEngine()
	state := &domain.ExecutionState{
		Intent:         "general",
		RawResponse:    "Here is a plausible sounding but unsupported answer.",
		DocumentsFound: 0,
		Confidence:     0.1,
	}

	issues := e.validateResponse(state)

	assert.ElementsMatch(t, []string{"documents_found", "confidence_floor"}, issueRules(issues))
	assert.True(t, domain.AnyContent(issues))
	assert.False(t, state.Validated)
}

func TestValidateResponse_MalformedMarkers(t *testing.T) {
	e := testEngine()
	state := &domain.ExecutionState{
		Intent:         "general",
		RawResponse:    "Your allowance is {{amount}} per day.",
		DocumentsFound: 3,
		Confidence:     0.9,
	}

	issues := e.validateResponse(state)

	assert.Contains(t, issueRules(issues), "malformed_output")
}

func TestValidateResponse_AccumulatesAllFailures(t *testing.T) {
	e := testEngine()
	state := &domain.ExecutionState{
		Intent:         "allowance",
		RawResponse:    "{{x}}",
		DocumentsFound: 0,
		Confidence:     0,
	}

	issues := e.validateResponse(state)

	assert.ElementsMatch(t,
		[]string{"response_length", "evidence_required", "documents_found", "confidence_floor", "malformed_output"},
		issueRules(issues))
	assert.Len(t, state.ValidationErrors, len(issues))
}

func TestValidateResponse_RetryDoesNotLeakPreviousFindings(t *testing.T) {
	e := testEngine()
	state := &domain.ExecutionState{
		Intent:         "allowance",
		RawResponse:    "The rate is 28,00 EUR.",
		DocumentsFound: 3,
		Confidence:     0.9,
	}

	require.Empty(t, e.validateResponse(state))
	require.Equal(t, []string{"28,00"}, state.EvidenceFound)

	// Second attempt produced a worse answer; the earlier evidence and error
	// strings must not survive into this pass.
	state.RawResponse = "Allowances exist, broadly speaking, for travel."
	issues := e.validateResponse(state)

	require.Len(t, issues, 1)
	assert.Empty(t, state.EvidenceFound)
	assert.Len(t, state.ValidationErrors, 1)
}

func TestValidateResponse_ConfidenceFloorIsConfigurable(t *testing.T) {
	e := testEngine(WithConfidenceFloor(0.9))
	state := &domain.ExecutionState{
		Intent:         "general",
		RawResponse:    "A sufficiently long unremarkable answer.",
		DocumentsFound: 5,
		Confidence:     0.85,
	}

	issues := e.validateResponse(state)

	assert.Equal(t, []string{"confidence_floor"}, issueRules(issues))
}
