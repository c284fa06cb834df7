package domain

import (
	"errors"
	"fmt"
)

// ErrSnapshotNotFound is returned when a thread ID has no persisted checkpoint.
var ErrSnapshotNotFound = errors.New("checkpoint snapshot not found")

// ErrEmptyAgentResponse is returned when an agent succeeds but produces no
// text. The executor treats it exactly like an agent failure.
var ErrEmptyAgentResponse = errors.New("agent returned an empty response")

// AgentFailure wraps an error raised by an agent invocation, carrying the
// agent ID and the attempt on which it occurred.
type AgentFailure struct {
	AgentID string
	Attempt int
	Err     error
}

func (f *AgentFailure) Error() string {
	return fmt.Sprintf("agent %s failed on attempt %d: %v", f.AgentID, f.Attempt, f.Err)
}

func (f *AgentFailure) Unwrap() error {
	return f.Err
}

// IssueClass partitions validation failures into the two kinds the transition
// function cares about. Content issues mean the agent had nothing trustworthy
// to say (fallback territory); technical issues mean the agent likely
// malfunctioned (retry territory).
type IssueClass int

const (
	IssueContent IssueClass = iota
	IssueTechnical
)

func (c IssueClass) String() string {
	if c == IssueContent {
		return "content"
	}
	return "technical"
}

// ValidationIssue is a single finding of the response validator.
type ValidationIssue struct {
	Rule    string
	Class   IssueClass
	Message string
}

func (i ValidationIssue) Error() string {
	return fmt.Sprintf("%s: %s", i.Rule, i.Message)
}

// AnyContent reports whether at least one issue is content-related.
func AnyContent(issues []ValidationIssue) bool {
	for _, i := range issues {
		if i.Class == IssueContent {
			return true
		}
	}
	return false
}

// AllTechnical reports whether every issue is technical. An empty slice is
// vacuously technical-only but callers check for emptiness first.
func AllTechnical(issues []ValidationIssue) bool {
	for _, i := range issues {
		if i.Class != IssueTechnical {
			return false
		}
	}
	return true
}
