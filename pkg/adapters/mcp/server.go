// Package mcp exposes a live weft graph as Model Context Protocol tools and resources.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/internal/presentation/graph"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/aretw0/weft/pkg/schema"
)

const (
	graphURI = "weft://graph"
	typesURI = "weft://types"
)

// OutputResponse is the structured result of get_output.
type OutputResponse struct {
	NodeID string           `json:"node_id" jsonschema_description:"The node that was read"`
	Value  any              `json:"value" jsonschema_description:"The current output, null when the node has not computed"`
	State  domain.NodeState `json:"state" jsonschema_description:"Lifecycle state of the node"`
}

// GraphResponse is the structured result of get_graph.
type GraphResponse struct {
	Nodes       []domain.NodeView   `json:"nodes" jsonschema_description:"Every node with inputs, output and state"`
	Connections []domain.Connection `json:"connections" jsonschema_description:"Every edge in creation order"`
}

// Server exposes a weft engine as an MCP server.
type Server struct {
	engine    ports.GraphEngine
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.GraphEngine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine:    engine,
		logger:    logger,
		mcpServer: server.NewMCPServer("weft-mcp", strings.TrimSpace(weft.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP server over SSE on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		baseURL = "http://" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop MCP server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_types",
		mcp.WithDescription("List every node type with its ports and default config."),
	), s.handleListTypes)

	s.mcpServer.AddTool(mcp.NewTool("create_node",
		mcp.WithDescription("Create a node of the given type. An empty id is generated."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Node type tag, e.g. Add")),
		mcp.WithString("id", mcp.Description("Node id (optional)")),
		mcp.WithString("config", mcp.Description("JSON object overriding the default config")),
	), s.handleCreateNode)

	s.mcpServer.AddTool(mcp.NewTool("remove_node",
		mcp.WithDescription("Remove a node and every connection touching it."),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Node id")),
	), s.handleRemoveNode)

	s.mcpServer.AddTool(mcp.NewTool("set_input",
		mcp.WithDescription("Set an input port. The value is read according to the port type."),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Node id")),
		mcp.WithString("port", mcp.Required(), mcp.Description("Input port name")),
		mcp.WithString("value", mcp.Required(), mcp.Description("Value, e.g. 3, true, [1,2] or \"text\"")),
	), s.handleSetInput)

	s.mcpServer.AddTool(mcp.NewTool("clear_input",
		mcp.WithDescription("Reset an input port to unpopulated."),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Node id")),
		mcp.WithString("port", mcp.Required(), mcp.Description("Input port name")),
	), s.handleClearInput)

	s.mcpServer.AddTool(mcp.NewTool("set_config",
		mcp.WithDescription("Merge a JSON object into a node's config."),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Node id")),
		mcp.WithString("config", mcp.Required(), mcp.Description("JSON object patch")),
	), s.handleSetConfig)

	s.mcpServer.AddTool(mcp.NewTool("connect",
		mcp.WithDescription("Wire the output of source into an input port of target."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Source node id")),
		mcp.WithString("target", mcp.Required(), mcp.Description("Target node id")),
		mcp.WithString("port", mcp.Required(), mcp.Description("Target input port")),
	), s.handleConnect)

	s.mcpServer.AddTool(mcp.NewTool("disconnect",
		mcp.WithDescription("Remove a connection and clear the freed input."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Source node id")),
		mcp.WithString("target", mcp.Required(), mcp.Description("Target node id")),
		mcp.WithString("port", mcp.Required(), mcp.Description("Target input port")),
	), s.handleDisconnect)

	s.mcpServer.AddTool(mcp.NewTool("get_output",
		mcp.WithDescription("Read the current output of a node."),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Node id")),
		mcp.WithBoolean("wait", mcp.Description("Wait for in-flight async computes first")),
		mcp.WithOutputSchema[OutputResponse](),
	), mcp.NewStructuredToolHandler(s.handleGetOutput))

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get every node and connection of the live graph."),
		mcp.WithOutputSchema[GraphResponse](),
	), mcp.NewStructuredToolHandler(s.handleGetGraph))

	s.mcpServer.AddTool(mcp.NewTool("get_mermaid",
		mcp.WithDescription("Render the live graph as a Mermaid flowchart."),
	), s.handleGetMermaid)

	s.mcpServer.AddTool(mcp.NewTool("evaluate",
		mcp.WithDescription("Run a node type's compute once, outside the graph."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Node type tag")),
		mcp.WithString("inputs", mcp.Description("JSON object of port values")),
		mcp.WithString("config", mcp.Description("JSON object of config overrides")),
	), s.handleEvaluate)
}

func (s *Server) handleListTypes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	defs := s.engine.Registry().Definitions()
	type typeInfo struct {
		Type          string            `json:"type"`
		Description   string            `json:"description,omitempty"`
		Inputs        []domain.PortSpec `json:"inputs"`
		Output        domain.PortSpec   `json:"output"`
		DefaultConfig domain.Config     `json:"default_config,omitempty"`
		ConfigSchema  schema.Schema     `json:"config_schema,omitempty"`
		Async         bool              `json:"async,omitempty"`
	}
	out := make([]typeInfo, 0, len(defs))
	for _, d := range defs {
		out = append(out, typeInfo{
			Type:          d.Type,
			Description:   d.Description,
			Inputs:        d.Inputs,
			Output:        d.Output,
			DefaultConfig: d.DefaultConfig,
			ConfigSchema:  d.ConfigSchema,
			Async:         d.Async,
		})
	}
	return jsonResult(out)
}

func (s *Server) handleCreateNode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typ, err := request.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cfg, err := decodeObject(request.GetString("config", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("config: %v", err)), nil
	}
	id, err := s.engine.CreateNode(ctx, typ, request.GetString("id", ""), cfg)
	if err != nil {
		return s.toolError("create_node", err), nil
	}
	return mcp.NewToolResultText(id), nil
}

func (s *Server) handleRemoveNode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("node_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.engine.RemoveNode(ctx, id); err != nil {
		return s.toolError("remove_node", err), nil
	}
	return mcp.NewToolResultText("removed " + id), nil
}

func (s *Server) handleSetInput(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, port, err := requireNodePort(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	literal, err := request.RequireString("value")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	view, err := s.engine.Node(ctx, id)
	if err != nil {
		return s.toolError("set_input", err), nil
	}
	v, err := s.engine.Registry().ParseInput(view.Type, port, literal)
	if err != nil {
		return s.toolError("set_input", err), nil
	}
	if err := s.engine.SetInputRaw(ctx, id, port, v); err != nil {
		return s.toolError("set_input", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s.%s set", id, port)), nil
}

func (s *Server) handleClearInput(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, port, err := requireNodePort(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.engine.ClearInput(ctx, id, port); err != nil {
		return s.toolError("clear_input", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s.%s cleared", id, port)), nil
}

func (s *Server) handleSetConfig(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("node_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := request.RequireString("config")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	patch, err := decodeObject(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("config: %v", err)), nil
	}
	if err := s.engine.SetConfig(ctx, id, patch); err != nil {
		return s.toolError("set_config", err), nil
	}
	return mcp.NewToolResultText(id + " configured"), nil
}

func (s *Server) handleConnect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c, err := requireConnection(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.engine.Connect(ctx, c.Source, c.Target, c.Port); err != nil {
		return s.toolError("connect", err), nil
	}
	return mcp.NewToolResultText("connected " + c.String()), nil
}

func (s *Server) handleDisconnect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c, err := requireConnection(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.engine.Disconnect(ctx, c); err != nil {
		return s.toolError("disconnect", err), nil
	}
	return mcp.NewToolResultText("disconnected " + c.String()), nil
}

func (s *Server) handleGetOutput(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (OutputResponse, error) {
	id, _ := args["node_id"].(string)
	if id == "" {
		return OutputResponse{}, errors.New("node_id is required")
	}
	if wait, _ := args["wait"].(bool); wait {
		if err := s.engine.WaitIdle(ctx); err != nil {
			return OutputResponse{}, fmt.Errorf("wait failed: %w", err)
		}
	}
	v, state, err := s.engine.Output(ctx, id)
	if err != nil {
		return OutputResponse{}, err
	}
	return OutputResponse{NodeID: id, Value: domain.RawValue(v), State: state}, nil
}

func (s *Server) handleGetGraph(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (GraphResponse, error) {
	views, err := s.engine.Nodes(ctx)
	if err != nil {
		return GraphResponse{}, fmt.Errorf("inspect failed: %w", err)
	}
	conns, err := s.engine.Connections(ctx)
	if err != nil {
		return GraphResponse{}, fmt.Errorf("inspect failed: %w", err)
	}
	return GraphResponse{Nodes: views, Connections: conns}, nil
}

func (s *Server) handleGetMermaid(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.engine.Snapshot(ctx)
	if err != nil {
		return s.toolError("get_mermaid", err), nil
	}
	views, err := s.engine.Nodes(ctx)
	if err != nil {
		return s.toolError("get_mermaid", err), nil
	}
	return mcp.NewToolResultText(graph.GenerateMermaid(snap, s.engine.Registry(), &graph.Overlay{Views: views})), nil
}

func (s *Server) handleEvaluate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typ, err := request.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	inputs, err := decodeObject(request.GetString("inputs", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("inputs: %v", err)), nil
	}
	cfg, err := decodeObject(request.GetString("config", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("config: %v", err)), nil
	}
	v, err := s.engine.Registry().Evaluate(ctx, typ, inputs, cfg)
	if err != nil {
		return s.toolError("evaluate", err), nil
	}
	return jsonResult(domain.RawValue(v))
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(graphURI, "Current Graph Snapshot",
		mcp.WithResourceDescription("Nodes, free inputs and connections of the live graph"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		snap, err := s.engine.Snapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot graph: %w", err)
		}
		return jsonResource(graphURI, snap)
	})

	s.mcpServer.AddResource(mcp.NewResource(typesURI, "Node Types",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonResource(typesURI, s.engine.Registry().Types())
	})
}

func (s *Server) toolError(tool string, err error) *mcp.CallToolResult {
	s.logger.Debug("MCP tool failed", "tool", tool, "error", err)
	return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", tool, err))
}

func requireNodePort(request mcp.CallToolRequest) (string, string, error) {
	id, err := request.RequireString("node_id")
	if err != nil {
		return "", "", err
	}
	port, err := request.RequireString("port")
	if err != nil {
		return "", "", err
	}
	return id, port, nil
}

func requireConnection(request mcp.CallToolRequest) (domain.Connection, error) {
	var c domain.Connection
	var err error
	if c.Source, err = request.RequireString("source"); err != nil {
		return c, err
	}
	if c.Target, err = request.RequireString("target"); err != nil {
		return c, err
	}
	if c.Port, err = request.RequireString("port"); err != nil {
		return c, err
	}
	return c, nil
}

func decodeObject(s string) (map[string]any, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, err
	}
	return m, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(b)), nil
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: "application/json", Text: string(b)},
	}, nil
}
