package runtime

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/attestra/veritor/pkg/domain"
)

func TestAfterExecution(t *testing.T) {
	failure := errors.New("agent exploded")

	cases := []struct {
		name     string
		attempts int
		max      int
		err      error
		want     domain.Decision
	}{
		{"success goes to validation", 1, 3, nil, domain.DecisionValidate},
		{"failure with attempts left retries", 1, 3, failure, domain.DecisionRetry},
		{"failure on last attempt errors", 3, 3, failure, domain.DecisionError},
		{"success on last attempt still validates", 3, 3, nil, domain.DecisionValidate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			state := &domain.ExecutionState{AttemptCount: tc.attempts, MaxAttempts: tc.max}
			assert.Equal(t, tc.want, afterExecution(state, tc.err))
		})
	}
}

func TestAfterValidation(t *testing.T) {
	content := domain.ValidationIssue{Rule: "documents_found", Class: domain.IssueContent}
	technical := domain.ValidationIssue{Rule: "response_length", Class: domain.IssueTechnical}

	cases := []struct {
		name     string
		attempts int
		max      int
		issues   []domain.ValidationIssue
		want     domain.Decision
	}{
		{"clean validation succeeds", 1, 3, nil, domain.DecisionSuccess},
		{"content issue falls back immediately", 1, 3, []domain.ValidationIssue{content}, domain.DecisionFallback},
		{"mixed issues fall back immediately", 1, 3, []domain.ValidationIssue{technical, content}, domain.DecisionFallback},
		{"technical issue with attempts left retries", 1, 3, []domain.ValidationIssue{technical}, domain.DecisionRetry},
		{"technical issue on last attempt falls back", 3, 3, []domain.ValidationIssue{technical}, domain.DecisionFallback},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			state := &domain.ExecutionState{AttemptCount: tc.attempts, MaxAttempts: tc.max}
			assert.Equal(t, tc.want, afterValidation(state, tc.issues))
		})
	}
}

func TestDecisions_ArePureFunctionsOfState(t *testing.T) {
	state := &domain.ExecutionState{AttemptCount: 2, MaxAttempts: 3}
	issues := []domain.ValidationIssue{{Rule: "response_length", Class: domain.IssueTechnical}}

	first := afterValidation(state, issues)
	second := afterValidation(state, issues)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, state.AttemptCount, "transition function must not mutate state")
}
