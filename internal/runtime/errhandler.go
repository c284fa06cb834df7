package runtime

import (
	"fmt"

	"github.com/attestra/veritor/pkg/domain"
)

// handleError terminates the pipeline with a safe, templated message. The
// only internal detail that crosses the boundary is the trace ID; exception
// text and the error log stay in server-side telemetry.
func (e *Engine) handleError(state *domain.ExecutionState) {
	state.FinalResponse = fmt.Sprintf(
		"The question could not be processed at this time. "+
			"Please try again later or contact support with reference %s.",
		state.TraceID,
	)

	e.logger.Error("pipeline terminated on error path",
		"trace_id", state.TraceID,
		"agent", state.SelectedAgent,
		"attempts", state.AttemptCount,
		"error_log", state.ErrorLog,
	)
}
