// Package mcp exposes the expression engine over the Model Context
// Protocol so agents can evaluate expressions and inspect beans in a
// long-lived scope session.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/domain"
)

// LookupResponse is the structured result of the lookup_bean tool.
type LookupResponse struct {
	Found bool   `json:"found" jsonschema_description:"Whether the name is bound in any scope"`
	Scope string `json:"scope,omitempty" jsonschema_description:"Scope the binding was found in"`
	Value any    `json:"value,omitempty" jsonschema_description:"The bound value"`
}

// EvalResponse is the structured result of the eval_expression tool.
type EvalResponse struct {
	Value any `json:"value" jsonschema_description:"The evaluation result"`
}

// Server exposes one evaluation context over MCP. All tool calls share
// the same scopes, so beans set by one call are visible to the next.
type Server struct {
	app       *arbor.App
	evalCtx   *arbor.Context
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server over app. The evaluation context is
// created once and lives for the duration of the server.
func NewServer(app *arbor.App) *Server {
	s := &Server{
		app:       app,
		evalCtx:   app.NewContext(),
		mcpServer: server.NewMCPServer("arbor-mcp", arbor.Version),
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
		s.app.Logger().Info("MCP server listening (SSE)", "address", addr)
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
		slog.Debug("CORS Middleware", "method", r.Method, "path", r.URL.Path)
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: eval_expression
	evalTool := mcp.NewTool("eval_expression",
		mcp.WithDescription("Evaluate a value expression (e.g. 'user.name' or 'price * 1.2') against the scopes."),
		mcp.WithString("src", mcp.Required(), mcp.Description("The expression source")),
		mcp.WithString("kind", mcp.Description("Expected result kind: string, int, float, or bool (optional)")),
		mcp.WithOutputSchema[EvalResponse](),
	)
	s.mcpServer.AddTool(evalTool, mcp.NewStructuredToolHandler(s.handleEval))

	// TOOL: set_bean
	setTool := mcp.NewTool("set_bean",
		mcp.WithDescription("Bind a value through a value expression. The value is a JSON document."),
		mcp.WithString("src", mcp.Required(), mcp.Description("The target expression, e.g. 'user' or 'user.name'")),
		mcp.WithString("value", mcp.Required(), mcp.Description("JSON-encoded value to bind")),
	)
	s.mcpServer.AddTool(setTool, s.handleSet)

	// TOOL: lookup_bean
	lookupTool := mcp.NewTool("lookup_bean",
		mcp.WithDescription("Look up a bean by name across the scopes, reporting which scope holds it."),
		mcp.WithString("name", mcp.Required(), mcp.Description("The bean name")),
		mcp.WithOutputSchema[LookupResponse](),
	)
	s.mcpServer.AddTool(lookupTool, mcp.NewStructuredToolHandler(s.handleLookup))

	// TOOL: remove_bean
	removeTool := mcp.NewTool("remove_bean",
		mcp.WithDescription("Remove a bean binding. Removing an unbound name is a no-op."),
		mcp.WithString("name", mcp.Required(), mcp.Description("The bean name")),
	)
	s.mcpServer.AddTool(removeTool, s.handleRemove)

	// TOOL: invoke_method
	invokeTool := mcp.NewTool("invoke_method",
		mcp.WithDescription("Invoke a method expression (e.g. 'form.save') with optional JSON-array arguments."),
		mcp.WithString("src", mcp.Required(), mcp.Description("The method expression source")),
		mcp.WithString("args", mcp.Description("JSON array of arguments (optional)")),
	)
	s.mcpServer.AddTool(invokeTool, s.handleInvoke)

	// TOOL: runtime_info
	s.mcpServer.AddTool(mcp.NewTool("runtime_info",
		mcp.WithDescription("Get the implementation metadata."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, _ := json.Marshal(arbor.Info())
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleEval(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (EvalResponse, error) {
	src, _ := args["src"].(string)
	kindName, _ := args["kind"].(string)

	kind, err := parseKind(kindName)
	if err != nil {
		return EvalResponse{}, err
	}

	val, err := arbor.ResolveBean(s.evalCtx, src, kind)
	if err != nil {
		return EvalResponse{}, fmt.Errorf("eval failed: %w", err)
	}
	return EvalResponse{Value: val}, nil
}

func (s *Server) handleSet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	src := request.GetString("src", "")
	raw := request.GetString("value", "")

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid value JSON: %v", err)), nil
	}

	if err := arbor.SetExpressionValue(s.evalCtx, value, src); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("set failed: %v", err)), nil
	}
	return mcp.NewToolResultText("ok"), nil
}

func (s *Server) handleLookup(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (LookupResponse, error) {
	name, _ := args["name"].(string)

	val, scope, ok, err := s.evalCtx.Resolution().Lookup(name)
	if err != nil {
		return LookupResponse{}, fmt.Errorf("lookup failed: %w", err)
	}
	if !ok {
		return LookupResponse{Found: false}, nil
	}
	return LookupResponse{Found: true, Scope: scope.String(), Value: val}, nil
}

func (s *Server) handleRemove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("name", "")

	if err := arbor.RemoveBean(s.evalCtx, name); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("remove failed: %v", err)), nil
	}
	return mcp.NewToolResultText("ok"), nil
}

func (s *Server) handleInvoke(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	src := request.GetString("src", "")
	rawArgs := request.GetString("args", "")

	var callArgs []any
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &callArgs); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid args JSON: %v", err)), nil
		}
	}

	me, err := arbor.CreateMethodExpression(s.evalCtx, src, nil, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("parse failed: %v", err)), nil
	}

	out, err := me.Invoke(s.evalCtx.Resolution(), callArgs...)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invoke failed: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(map[string]any{"result": out})
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func parseKind(name string) (reflect.Kind, error) {
	switch name {
	case "":
		return reflect.Invalid, nil
	case "string":
		return reflect.String, nil
	case "int":
		return reflect.Int, nil
	case "float":
		return reflect.Float64, nil
	case "bool":
		return reflect.Bool, nil
	}
	return reflect.Invalid, fmt.Errorf("unknown kind %q: %w", name, domain.ErrSignatureMismatch)
}
