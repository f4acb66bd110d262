// Package mcp exposes the remote control of a running installation as MCP tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/fernspiel"
	"github.com/aretw0/fernspiel/internal/logging"
	"github.com/aretw0/fernspiel/pkg/book"
	"github.com/aretw0/fernspiel/pkg/domain"
	"github.com/aretw0/fernspiel/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const statusURI = "fernspiel://status"

// Server exposes a ports.Control as an MCP server.
type Server struct {
	control   ports.Control
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(control ports.Control, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		control:   control,
		logger:    logger,
		mcpServer: server.NewMCPServer("fernspiel-mcp", strings.TrimSpace(fernspiel.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
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

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_status",
		mcp.WithDescription("Get the book and state the installation is currently in."),
		mcp.WithOutputSchema[ports.Status](),
	), mcp.NewStructuredToolHandler(s.handleStatus))

	s.mcpServer.AddTool(mcp.NewTool("dial",
		mcp.WithDescription("Send an input to the phone as if the caller produced it."),
		mcp.WithString("symbol", mcp.Required(), mcp.Description("A digit 0-9, pick_up or hang_up")),
	), s.handleDial)

	s.mcpServer.AddTool(mcp.NewTool("reset",
		mcp.WithDescription("Restart the current book from its initial state."),
	), s.handleReset)

	s.mcpServer.AddTool(mcp.NewTool("load_book",
		mcp.WithDescription("Replace the running book. A rejected book leaves the installation unchanged."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to a book document or zip archive")),
	), s.handleLoadBook)
}

func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (ports.Status, error) {
	st, err := s.control.Status(ctx)
	if err != nil {
		return ports.Status{}, fmt.Errorf("status failed: %w", err)
	}
	return st, nil
}

func (s *Server) handleDial(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol, err := request.RequireString("symbol")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in, err := domain.ParseInput(symbol)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.control.Dial(ctx, in); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("dial failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("queued %s", in)), nil
}

func (s *Server) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.control.Reset(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reset failed: %v", err)), nil
	}
	return s.statusResult(ctx)
}

func (s *Server) handleLoadBook(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	b, err := book.Load(path)
	if err != nil {
		return mcp.NewToolResultError(describe(err)), nil
	}
	if err := s.control.Switch(ctx, b); err != nil {
		s.logger.Warn("MCP load_book: Book rejected", "path", path, "err", err)
		return mcp.NewToolResultError(describe(err)), nil
	}
	return s.statusResult(ctx)
}

func (s *Server) statusResult(ctx context.Context) (*mcp.CallToolResult, error) {
	st, err := s.control.Status(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("status failed: %v", err)), nil
	}
	data, err := json.Marshal(st)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(statusURI, "Installation Status",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		st, err := s.control.Status(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read status: %w", err)
		}
		data, _ := json.Marshal(st)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      statusURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

// describe lists every validation problem of a rejected book.
func describe(err error) string {
	details := book.ValidationErrors(err)
	if len(details) == 0 {
		return err.Error()
	}
	lines := make([]string, 0, len(details)+1)
	lines = append(lines, "book rejected:")
	for _, d := range details {
		lines = append(lines, "- "+d.Error())
	}
	return strings.Join(lines, "\n")
}

