package runtime

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/attestra/veritor/pkg/domain"
)

// maxQueryLength bounds input size to keep downstream retrieval cost sane.
const maxQueryLength = 4000

// injectionMarkers are substrings a legitimate domain question never
// contains. Their presence is recorded, not fatal: downstream stages fail
// gracefully instead of aborting the pipeline.
var injectionMarkers = []string{
	"<script",
	"</script",
	"<iframe",
	"javascript:",
	"os.system",
	"subprocess.",
	"eval(",
	"exec(",
	"${",
	"{{",
}

// validateInput annotates the state with input issues and performs the
// entry-node side effects: trace ID assignment and attempt budget
// initialization. It never rejects a request.
func (e *Engine) validateInput(state *domain.ExecutionState) []string {
	state.TraceID = uuid.NewString()
	state.MaxAttempts = e.maxAttempts
	state.AttemptCount = 0

	var issues []string

	trimmed := strings.TrimSpace(state.Query)
	switch {
	case trimmed == "":
		issues = append(issues, "query is empty")
	case utf8.RuneCountInString(trimmed) > maxQueryLength:
		issues = append(issues, fmt.Sprintf("query exceeds %d characters", maxQueryLength))
	}

	if trimmed != "" && !containsLetter(trimmed) {
		issues = append(issues, "query contains no alphabetic token")
	}

	lowered := strings.ToLower(trimmed)
	for _, marker := range injectionMarkers {
		if strings.Contains(lowered, marker) {
			issues = append(issues, fmt.Sprintf("query contains suspicious marker %q", marker))
		}
	}

	for _, issue := range issues {
		state.LogError("input: " + issue)
	}

	return issues
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
