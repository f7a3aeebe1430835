package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/vine"
	"github.com/aretw0/vine/internal/logging"
	"github.com/aretw0/vine/internal/runtime"
	"github.com/aretw0/vine/pkg/domain"
	"github.com/aretw0/vine/pkg/gui"
	"github.com/aretw0/vine/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// CapabilitiesURI is the resource holding the script capability reference.
const CapabilitiesURI = "vine://capabilities"

// StatusResponse reports the outcome of a control tool.
type StatusResponse struct {
	Status     string `json:"status" jsonschema_description:"What the host did with the request"`
	AutoReload *bool  `json:"auto_reload,omitempty" jsonschema_description:"Resulting auto-reload flag"`
}

// ShapeResponse aligns with the HTTP adapter's PUT /shape response.
type ShapeResponse struct {
	Snapshot domain.Snapshot      `json:"snapshot" jsonschema_description:"Host state after the call"`
	Changed  *domain.SnapshotDiff `json:"changed,omitempty" jsonschema_description:"Fields the call changed"`
}

// FrameResponse carries the last drawn GUI frame.
type FrameResponse struct {
	Number  uint64     `json:"number" jsonschema_description:"Frame number"`
	Outline string     `json:"outline,omitempty" jsonschema_description:"Indented plain-text view of the frame"`
	Frame   *gui.Frame `json:"frame,omitempty" jsonschema_description:"Full recorded frame"`
}

// Server wraps a host and exposes it as an MCP Server.
type Server struct {
	host      ports.HostController
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(host ports.HostController, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		host:      host,
		logger:    logger,
		mcpServer: server.NewMCPServer("vine-mcp", vine.Version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, for transports and tests.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

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
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
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
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("host_status",
		mcp.WithDescription("Report whether a script is loaded, its generation, the auto-reload flag and the last error."),
		mcp.WithOutputSchema[domain.HostStatus](),
	), mcp.NewStructuredToolHandler(s.handleStatus))

	s.mcpServer.AddTool(mcp.NewTool("force_reload",
		mcp.WithDescription("Reload the script on the next frame, ignoring the auto-reload flag. A broken script keeps the previous one running."),
		mcp.WithOutputSchema[StatusResponse](),
	), mcp.NewStructuredToolHandler(s.handleForceReload))

	s.mcpServer.AddTool(mcp.NewTool("set_auto_reload",
		mcp.WithDescription("Enable or disable reloading when the script changes. Omit 'enabled' to toggle."),
		mcp.WithBoolean("enabled", mcp.Description("New auto-reload value (optional)")),
		mcp.WithOutputSchema[StatusResponse](),
	), mcp.NewStructuredToolHandler(s.handleSetAutoReload))

	s.mcpServer.AddTool(mcp.NewTool("get_shape",
		mcp.WithDescription("Read the managed shape and background colour."),
		mcp.WithOutputSchema[domain.Snapshot](),
	), mcp.NewStructuredToolHandler(s.handleGetShape))

	s.mcpServer.AddTool(mcp.NewTool("set_shape",
		mcp.WithDescription("Update the managed shape. Every field is optional."),
		mcp.WithNumber("x", mcp.Description("Horizontal position")),
		mcp.WithNumber("y", mcp.Description("Vertical position")),
		mcp.WithNumber("size", mcp.Description("Edge length or diameter; values <= 0 become 1")),
		mcp.WithString("color", mcp.Description("JSON array [r, g, b] or [r, g, b, a] with components in 0..1")),
		mcp.WithString("background", mcp.Description("JSON array [r, g, b] or [r, g, b, a] with components in 0..1")),
		mcp.WithOutputSchema[ShapeResponse](),
	), mcp.NewStructuredToolHandler(s.handleSetShape))

	s.mcpServer.AddTool(mcp.NewTool("interact",
		mcp.WithDescription("Simulate a GUI interaction on the next frame, targeting a widget by label."),
		mcp.WithString("action", mcp.Required(), mcp.Description("One of click, set, hover, open")),
		mcp.WithString("label", mcp.Required(), mcp.Description("Widget label")),
		mcp.WithString("window", mcp.Description("Restrict the match to this window (optional)")),
		mcp.WithString("value", mcp.Description("JSON value for 'set' and 'open' (optional)")),
		mcp.WithOutputSchema[StatusResponse](),
	), mcp.NewStructuredToolHandler(s.handleInteract))

	s.mcpServer.AddTool(mcp.NewTool("last_frame",
		mcp.WithDescription("Return the most recent GUI frame, as an outline (default) or as full JSON."),
		mcp.WithString("format", mcp.Description("'outline' or 'json'")),
		mcp.WithOutputSchema[FrameResponse](),
	), mcp.NewStructuredToolHandler(s.handleLastFrame))
}

func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.HostStatus, error) {
	return s.host.Status(), nil
}

func (s *Server) handleForceReload(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StatusResponse, error) {
	if err := s.host.RequestReload(ctx); err != nil {
		return StatusResponse{}, fmt.Errorf("reload failed: %w", err)
	}
	return StatusResponse{Status: "scheduled"}, nil
}

func (s *Server) handleSetAutoReload(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StatusResponse, error) {
	var enabled *bool
	if v, ok := args["enabled"].(bool); ok {
		enabled = &v
	}
	result, err := s.host.SetAutoReload(ctx, enabled)
	if err != nil {
		return StatusResponse{}, fmt.Errorf("set auto-reload failed: %w", err)
	}
	return StatusResponse{Status: "ok", AutoReload: &result}, nil
}

func (s *Server) handleGetShape(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.Snapshot, error) {
	snap, err := s.host.Scene(ctx)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("get shape failed: %w", err)
	}
	return snap, nil
}

func (s *Server) handleSetShape(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ShapeResponse, error) {
	raw := make(map[string]any)
	x, hasX := args["x"]
	y, hasY := args["y"]
	switch {
	case hasX && hasY:
		raw["position"] = []any{x, y}
	case hasX || hasY:
		before, err := s.host.Scene(ctx)
		if err != nil {
			return ShapeResponse{}, fmt.Errorf("set shape failed: %w", err)
		}
		if before.Shape == nil {
			return ShapeResponse{}, fmt.Errorf("set shape failed: the host has no shape")
		}
		pos := before.Shape.Position
		if hasX {
			raw["position"] = []any{x, pos.Y}
		} else {
			raw["position"] = []any{pos.X, y}
		}
	}
	if size, ok := args["size"]; ok {
		raw["size"] = size
	}
	for _, key := range []string{"color", "background"} {
		str, ok := args[key].(string)
		if !ok || str == "" {
			continue
		}
		var comps []any
		if err := json.Unmarshal([]byte(str), &comps); err != nil {
			return ShapeResponse{}, fmt.Errorf("%s must be a JSON array: %w", key, err)
		}
		raw[key] = comps
	}

	patch, err := domain.DecodeShapePatch(raw)
	if err != nil {
		return ShapeResponse{}, err
	}
	before, err := s.host.Scene(ctx)
	if err != nil {
		return ShapeResponse{}, fmt.Errorf("set shape failed: %w", err)
	}
	after, err := s.host.PatchScene(ctx, patch)
	if err != nil {
		return ShapeResponse{}, fmt.Errorf("set shape failed: %w", err)
	}
	return ShapeResponse{Snapshot: after, Changed: domain.Diff(&before, &after)}, nil
}

func (s *Server) handleInteract(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StatusResponse, error) {
	in := gui.Interaction{}
	action, _ := args["action"].(string)
	in.Action = gui.Action(action)
	in.Label, _ = args["label"].(string)
	in.Window, _ = args["window"].(string)
	if raw, ok := args["value"].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.Value); err != nil {
			// Not JSON: pass the text through for text inputs
			in.Value = raw
		}
	}
	if err := in.Validate(); err != nil {
		return StatusResponse{}, err
	}
	if err := s.host.Interact(ctx, in); err != nil {
		s.logger.Warn("MCP interact rejected", "err", err)
		return StatusResponse{}, fmt.Errorf("interact failed: %w", err)
	}
	return StatusResponse{Status: "queued"}, nil
}

func (s *Server) handleLastFrame(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (FrameResponse, error) {
	frame := s.host.LastFrame()
	if frame == nil {
		return FrameResponse{}, fmt.Errorf("no frame has been drawn yet")
	}
	if format, _ := args["format"].(string); format == "json" {
		return FrameResponse{Number: frame.Number, Frame: frame}, nil
	}
	return FrameResponse{Number: frame.Number, Outline: frame.Outline()}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(CapabilitiesURI, "Script capability reference",
		mcp.WithMIMEType("text/markdown"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      CapabilitiesURI,
				MIMEType: "text/markdown",
				Text:     runtime.DefaultTable().Reference(),
			},
		}, nil
	})
}
