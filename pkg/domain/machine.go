package domain

// NodeName identifies a node of the orchestration state machine.
type NodeName string

const (
	NodeInputValidation    NodeName = "INPUT_VALIDATION"
	NodeIntentDetection    NodeName = "INTENT_DETECTION"
	NodeRouteSelection     NodeName = "ROUTE_SELECTION"
	NodeAgentExecution     NodeName = "AGENT_EXECUTION"
	NodeResponseValidation NodeName = "RESPONSE_VALIDATION"
	NodeFallback           NodeName = "FALLBACK"
	NodeCompose            NodeName = "COMPOSE"
	NodeErrorHandler       NodeName = "ERROR_HANDLER"
)

// Decision is the closed set of transition outcomes. It replaces the
// string-literal branch outcomes of ad hoc pipelines so that an invalid
// outcome is unrepresentable.
type Decision int

const (
	DecisionValidate Decision = iota
	DecisionRetry
	DecisionSuccess
	DecisionFallback
	DecisionError
)

// String returns the lowercase label used in logs.
func (d Decision) String() string {
	switch d {
	case DecisionValidate:
		return "validate"
	case DecisionRetry:
		return "retry"
	case DecisionSuccess:
		return "success"
	case DecisionFallback:
		return "fallback"
	case DecisionError:
		return "error"
	default:
		return "unknown"
	}
}

// ValidSuccessors maps each node to the nodes it may hand off to. The table
// is the reference for history checks in tests and for the engine's own
// transition assertions; the transition logic itself lives in the runtime.
// Every non-terminal node carries an edge to the error handler: it is not
// regular control flow but the containment path for a node that panics.
var ValidSuccessors = map[NodeName][]NodeName{
	NodeInputValidation:    {NodeIntentDetection, NodeErrorHandler},
	NodeIntentDetection:    {NodeRouteSelection, NodeErrorHandler},
	NodeRouteSelection:     {NodeAgentExecution, NodeErrorHandler},
	NodeAgentExecution:     {NodeAgentExecution, NodeResponseValidation, NodeErrorHandler},
	NodeResponseValidation: {NodeAgentExecution, NodeFallback, NodeCompose, NodeErrorHandler},
	NodeFallback:           {NodeCompose, NodeErrorHandler},
	NodeCompose:            {},
	NodeErrorHandler:       {},
}

// IsValidTransition reports whether from may hand off to to.
func IsValidTransition(from, to NodeName) bool {
	for _, n := range ValidSuccessors[from] {
		if n == to {
			return true
		}
	}
	return false
}
