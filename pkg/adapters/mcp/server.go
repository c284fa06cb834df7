// Package mcp exposes the engine as a Model Context Protocol server, so MCP
// clients can ask regulation questions as a tool call.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/attestra/veritor/internal/logging"
	"github.com/attestra/veritor/pkg/domain"
)

// AskResponse is the structured payload returned by the ask tool. It mirrors
// the HTTP answer contract so every transport reports the same fields.
type AskResponse struct {
	Response       string            `json:"response" jsonschema_description:"The validated answer, or a fallback message"`
	Sources        []domain.Source   `json:"sources" jsonschema_description:"Evidence documents backing the answer"`
	Confidence     float64           `json:"confidence" jsonschema_description:"Retrieval confidence in [0,1]"`
	DocumentsFound int               `json:"documents_found" jsonschema_description:"Number of supporting documents"`
	Intent         string            `json:"intent" jsonschema_description:"Classified question intent"`
	AgentUsed      string            `json:"agent_used" jsonschema_description:"Agent that produced the answer"`
	TraceID        string            `json:"trace_id" jsonschema_description:"Correlation ID for support requests"`
	NodeHistory    []domain.NodeName `json:"node_history" jsonschema_description:"Pipeline nodes visited, in order"`
	UsedFallback   bool              `json:"used_fallback" jsonschema_description:"True when a curated fallback was served"`
}

// Engine defines the pipeline surface the MCP server drives.
type Engine interface {
	Run(ctx context.Context, query, threadID string) (*domain.ExecutionState, error)
	LoadThread(ctx context.Context, threadID string) (*domain.CheckpointSnapshot, error)
	ListThreads(ctx context.Context) ([]string, error)
}

// Server wraps the engine and exposes it as an MCP server.
type Server struct {
	engine    Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server instance for the engine.
func NewServer(engine Engine, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		engine:    engine,
		logger:    logger,
		mcpServer: server.NewMCPServer("veritor-mcp", version),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: ask
	askTool := mcp.NewTool("ask",
		mcp.WithDescription("Ask a travel-expense regulation question and get a source-validated answer."),
		mcp.WithString("query", mcp.Required(), mcp.Description("The question to answer")),
		mcp.WithString("thread_id", mcp.Description("Conversation thread ID for multi-turn continuity (optional)")),
		mcp.WithOutputSchema[AskResponse](),
	)
	s.mcpServer.AddTool(askTool, mcp.NewStructuredToolHandler(s.handleAsk))

	// TOOL: get_thread
	threadTool := mcp.NewTool("get_thread",
		mcp.WithDescription("Inspect the latest checkpoint of a conversation thread."),
		mcp.WithString("thread_id", mcp.Required(), mcp.Description("Thread ID to look up")),
	)
	s.mcpServer.AddTool(threadTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		threadID, err := request.RequireString("thread_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		snap, err := s.engine.LoadThread(ctx, threadID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("thread lookup failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(snap)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: list_threads
	s.mcpServer.AddTool(mcp.NewTool("list_threads",
		mcp.WithDescription("List conversation threads with an active checkpoint."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		threads, err := s.engine.ListThreads(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(threads)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleAsk(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (AskResponse, error) {
	query, _ := args["query"].(string)
	threadID, _ := args["thread_id"].(string)

	state, err := s.engine.Run(ctx, query, threadID)
	if err != nil {
		s.logger.Warn("MCP ask: run aborted", "err", err)
		return AskResponse{}, fmt.Errorf("ask failed: %w", err)
	}

	resp := AskResponse{
		Response:       state.FinalResponse,
		Sources:        state.Sources,
		Confidence:     state.Confidence,
		DocumentsFound: state.DocumentsFound,
		Intent:         state.Intent,
		AgentUsed:      state.SelectedAgent,
		TraceID:        state.TraceID,
		NodeHistory:    state.NodeHistory,
		UsedFallback:   state.UsedFallback,
	}
	if resp.Sources == nil {
		resp.Sources = []domain.Source{}
	}
	return resp, nil
}
