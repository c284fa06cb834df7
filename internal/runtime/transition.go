package runtime

import (
	"github.com/attestra/veritor/pkg/domain"
)

// The transition functions below are the single source of truth for pipeline
// branching. They are pure: same state and same node outcome always produce
// the same decision. No other code may duplicate this logic.

// afterExecution decides where to go once an agent invocation returned.
// attemptErr is nil only when the agent produced a non-empty response.
func afterExecution(state *domain.ExecutionState, attemptErr error) domain.Decision {
	if attemptErr == nil {
		return domain.DecisionValidate
	}
	if state.AttemptsRemaining() {
		return domain.DecisionRetry
	}
	return domain.DecisionError
}

// afterValidation decides where to go once the response validator ran.
//
// Content issues mean the agent had nothing trustworthy to say; retrying an
// idempotent call will not conjure evidence, so any content issue routes to
// fallback immediately. Purely technical issues suggest a malfunction worth
// retrying while attempts remain; once the budget is exhausted the fallback
// still answers safely rather than erroring out.
func afterValidation(state *domain.ExecutionState, issues []domain.ValidationIssue) domain.Decision {
	if len(issues) == 0 {
		return domain.DecisionSuccess
	}
	if !state.AttemptsRemaining() || domain.AnyContent(issues) {
		return domain.DecisionFallback
	}
	return domain.DecisionRetry
}
