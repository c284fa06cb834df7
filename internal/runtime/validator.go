package runtime

import (
	"fmt"
	"strings"

	"github.com/attestra/veritor/pkg/domain"
)

// minResponseLength is the shortest raw response considered non-trivial.
const minResponseLength = 10

// malformedMarkers are fragments that indicate the agent emitted template
// scaffolding or injected markup instead of an answer.
var malformedMarkers = []string{
	"{{",
	"}}",
	"[insert",
	"[placeholder",
	"<placeholder",
	"<script",
	"lorem ipsum",
	"null null",
	"undefined",
}

// validateResponse applies the evidence rules to the agent output, records
// findings on the state and returns the classified issues. Rules run in
// order and all failures accumulate; evaluation never short-circuits so the
// caller sees the complete picture.
func (e *Engine) validateResponse(state *domain.ExecutionState) []domain.ValidationIssue {
	var issues []domain.ValidationIssue
	response := state.RawResponse

	// A fresh pass owns the evidence and error fields; stale findings from a
	// retried attempt must not leak into this one.
	state.EvidenceFound = nil

	// Rule 1 (technical): non-trivial length.
	if len(strings.TrimSpace(response)) < minResponseLength {
		issues = append(issues, domain.ValidationIssue{
			Rule:    "response_length",
			Class:   domain.IssueTechnical,
			Message: fmt.Sprintf("response shorter than %d characters", minResponseLength),
		})
	}

	// Rule 2 (content): required evidence patterns for the intent.
	if patterns := e.rules.EvidenceFor(state.Intent); len(patterns) > 0 {
		var evidence []string
		for _, re := range patterns {
			if match := re.FindString(response); match != "" {
				evidence = append(evidence, match)
			}
		}
		if len(evidence) == 0 {
			issues = append(issues, domain.ValidationIssue{
				Rule:    "evidence_required",
				Class:   domain.IssueContent,
				Message: fmt.Sprintf("no required evidence pattern for intent %q matched", state.Intent),
			})
		} else {
			state.EvidenceFound = append(state.EvidenceFound, evidence...)
		}
	}

	// Rule 3 (content): retrieval actually found something trustworthy.
	if state.DocumentsFound <= 0 {
		issues = append(issues, domain.ValidationIssue{
			Rule:    "documents_found",
			Class:   domain.IssueContent,
			Message: "agent found no supporting documents",
		})
	}
	if state.Confidence < e.confidenceFloor {
		issues = append(issues, domain.ValidationIssue{
			Rule:    "confidence_floor",
			Class:   domain.IssueContent,
			Message: fmt.Sprintf("agent confidence %.2f below floor %.2f", state.Confidence, e.confidenceFloor),
		})
	}

	// Rule 4 (technical): malformed-output markers.
	lowered := strings.ToLower(response)
	for _, marker := range malformedMarkers {
		if strings.Contains(lowered, marker) {
			issues = append(issues, domain.ValidationIssue{
				Rule:    "malformed_output",
				Class:   domain.IssueTechnical,
				Message: fmt.Sprintf("response contains malformed-output marker %q", marker),
			})
			break
		}
	}

	state.Validated = len(issues) == 0
	state.ValidationErrors = state.ValidationErrors[:0]
	for _, issue := range issues {
		state.ValidationErrors = append(state.ValidationErrors, issue.Error())
		state.LogError("validation: " + issue.Error())
	}

	return issues
}
