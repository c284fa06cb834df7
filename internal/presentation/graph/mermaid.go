// Package graph renders the pipeline state machine as a Mermaid flowchart,
// optionally overlaying the path a finished request actually took.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/attestra/veritor/pkg/domain"
)

// Overlay highlights the nodes a concrete request visited.
type Overlay struct {
	VisitedNodes []domain.NodeName
	CurrentNode  domain.NodeName
}

// nodeOrder fixes the emission order so the output is stable across runs.
var nodeOrder = []domain.NodeName{
	domain.NodeInputValidation,
	domain.NodeIntentDetection,
	domain.NodeRouteSelection,
	domain.NodeAgentExecution,
	domain.NodeResponseValidation,
	domain.NodeFallback,
	domain.NodeCompose,
	domain.NodeErrorHandler,
}

// GenerateMermaid produces Mermaid flowchart syntax for the state machine.
// Shapes carry meaning:
// - Entry: ((Circle))
// - Terminal nodes: [[Subroutine]]
// - Everything else: [Rectangle]
// Retry self-loops are drawn dotted.
func GenerateMermaid(overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range nodeOrder {
		safeID := sanitizeMermaidID(string(node))

		opener, closer := "[", "]"
		switch {
		case node == domain.NodeInputValidation:
			opener, closer = "((", "))" // Circle
		case len(domain.ValidSuccessors[node]) == 0:
			opener, closer = "[[", "]]" // Subroutine
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, node, closer))

		successors := append([]domain.NodeName(nil), domain.ValidSuccessors[node]...)
		sort.Slice(successors, func(i, j int) bool { return successors[i] < successors[j] })
		for _, to := range successors {
			arrow := "-->"
			if to == node {
				arrow = "-. \"retry\" .->"
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, arrow, sanitizeMermaidID(string(to))))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text for contrast on light and dark themes alike
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(string(id))
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}

		if overlay.CurrentNode != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(string(overlay.CurrentNode))))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	return s
}
