// Package veritor answers domain questions from a validated retrieval
// pipeline. Every answer is either backed by evidence that passed the
// configured validation rules, served from a curated fallback catalog, or an
// explicit error message; the engine never invents facts.
//
// The pipeline is a fixed state machine: input validation, intent detection,
// agent routing, bounded-retry execution, evidence validation and response
// composition. Conversation continuity, distributed locking and transports
// (HTTP, MCP, CLI) are layered on top through adapters.
//
// Minimal usage:
//
//	agent := ports.AgentFunc(func(ctx context.Context, query string) (*ports.AgentResult, error) {
//		// call your retrieval backend here
//		return &ports.AgentResult{Response: "...", DocumentsFound: 3, Confidence: 0.9}, nil
//	})
//
//	engine := veritor.New("general", agent)
//	answer, err := engine.Ask(ctx, "What is the daily allowance?", "")
package veritor
