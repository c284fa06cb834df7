package domain

import "time"

// Source is an opaque evidence payload contributed by an agent. The engine
// never interprets it beyond passing it through to the caller.
type Source struct {
	Title      string  `json:"title" yaml:"title" mapstructure:"title"`
	Origin     string  `json:"origin" yaml:"origin" mapstructure:"origin"`
	Excerpt    string  `json:"excerpt,omitempty" yaml:"excerpt,omitempty" mapstructure:"excerpt"`
	Score      float64 `json:"score" yaml:"score" mapstructure:"score"`
	Confidence float64 `json:"confidence" yaml:"confidence" mapstructure:"confidence"`
}

// ExecutionState is the single mutable record threaded through every node of
// the pipeline. One ExecutionState exists per request; it is created at
// request entry, mutated node by node, and discarded after the response is
// returned (modulo an optional checkpoint).
type ExecutionState struct {
	Query    string `json:"query"`
	ThreadID string `json:"thread_id,omitempty"`
	// TraceID is assigned once by input validation and immutable thereafter.
	TraceID string `json:"trace_id"`

	Intent           string              `json:"intent,omitempty"`
	IntentConfidence float64             `json:"intent_confidence"`
	IntentEntities   map[string][]string `json:"intent_entities,omitempty"`

	SelectedAgent string `json:"selected_agent,omitempty"`
	// AttemptCount never exceeds MaxAttempts.
	AttemptCount int `json:"attempt_count"`
	MaxAttempts  int `json:"max_attempts"`

	RawResponse    string   `json:"raw_response,omitempty"`
	Sources        []Source `json:"sources,omitempty"`
	DocumentsFound int      `json:"documents_found"`
	Confidence     float64  `json:"confidence"`

	Validated        bool     `json:"validated"`
	ValidationErrors []string `json:"validation_errors,omitempty"`
	EvidenceFound    []string `json:"evidence_found,omitempty"`

	UsedFallback   bool   `json:"used_fallback"`
	FallbackReason string `json:"fallback_reason,omitempty"`

	// FinalResponse is non-empty once the pipeline terminates, on every path.
	FinalResponse string `json:"final_response,omitempty"`

	// NodeHistory is append-only; every node appends its own name exactly
	// once per visit, so retries show up as repeated entries.
	NodeHistory []NodeName `json:"node_history"`
	ErrorLog    []string   `json:"error_log,omitempty"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
}

// NewState creates a clean execution state for a query.
// Trace ID and attempt budget are assigned by the input validation node.
func NewState(query, threadID string) *ExecutionState {
	return &ExecutionState{
		Query:          query,
		ThreadID:       threadID,
		IntentEntities: make(map[string][]string),
		NodeHistory:    []NodeName{},
		StartedAt:      time.Now(),
	}
}

// Visit appends a node to the history.
func (s *ExecutionState) Visit(node NodeName) {
	s.NodeHistory = append(s.NodeHistory, node)
}

// LogError appends a message to the server-side error log. Entries recorded
// here never cross the external boundary.
func (s *ExecutionState) LogError(msg string) {
	s.ErrorLog = append(s.ErrorLog, msg)
}

// AttemptsRemaining reports whether the agent may be invoked again.
func (s *ExecutionState) AttemptsRemaining() bool {
	return s.AttemptCount < s.MaxAttempts
}

// Clone returns a copy of the state with deep-copied slices and maps, safe
// for persistence while the original keeps being mutated.
func (s *ExecutionState) Clone() *ExecutionState {
	if s == nil {
		return nil
	}
	next := *s

	next.IntentEntities = make(map[string][]string, len(s.IntentEntities))
	for k, v := range s.IntentEntities {
		next.IntentEntities[k] = append([]string(nil), v...)
	}
	next.Sources = append([]Source(nil), s.Sources...)
	next.ValidationErrors = append([]string(nil), s.ValidationErrors...)
	next.EvidenceFound = append([]string(nil), s.EvidenceFound...)
	next.NodeHistory = append([]NodeName(nil), s.NodeHistory...)
	next.ErrorLog = append([]string(nil), s.ErrorLog...)

	return &next
}
