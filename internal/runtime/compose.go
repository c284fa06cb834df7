package runtime

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/attestra/veritor/pkg/domain"
)

// footerSeparator delimits the answer body from the observability footer.
const footerSeparator = "\n\n---\n"

// Footer is the parsed form of the metadata footer appended to every
// composed response.
type Footer struct {
	AgentUsed      string
	DocumentsFound int
	Confidence     float64
	UsedFallback   bool
	TraceID        string
}

// composeFinal assembles the final response: the body (validated agent
// output or fallback text) plus a footer that is a pure function of the
// state. Same state, byte-identical footer.
func (e *Engine) composeFinal(state *domain.ExecutionState, body string) {
	state.FinalResponse = strings.TrimSpace(body) + footerSeparator + FormatFooter(state)
}

// FormatFooter renders the deterministic metadata footer for a state.
func FormatFooter(state *domain.ExecutionState) string {
	return fmt.Sprintf("agent: %s | documents: %d | confidence: %.2f | fallback: %t | trace: %s",
		state.SelectedAgent,
		state.DocumentsFound,
		state.Confidence,
		state.UsedFallback,
		state.TraceID,
	)
}

// ParseFooter extracts the metadata footer back out of a final response.
// It is the inverse of composeFinal's footer for any terminated state.
func ParseFooter(finalResponse string) (Footer, error) {
	idx := strings.LastIndex(finalResponse, footerSeparator)
	if idx < 0 {
		return Footer{}, fmt.Errorf("response carries no metadata footer")
	}
	line := strings.TrimSpace(finalResponse[idx+len(footerSeparator):])

	var f Footer
	for _, field := range strings.Split(line, " | ") {
		key, value, ok := strings.Cut(field, ": ")
		if !ok {
			return Footer{}, fmt.Errorf("malformed footer field %q", field)
		}
		var err error
		switch key {
		case "agent":
			f.AgentUsed = value
		case "documents":
			f.DocumentsFound, err = strconv.Atoi(value)
		case "confidence":
			f.Confidence, err = strconv.ParseFloat(value, 64)
		case "fallback":
			f.UsedFallback, err = strconv.ParseBool(value)
		case "trace":
			f.TraceID = value
		default:
			return Footer{}, fmt.Errorf("unknown footer field %q", key)
		}
		if err != nil {
			return Footer{}, fmt.Errorf("malformed footer field %q: %w", field, err)
		}
	}
	return f, nil
}
