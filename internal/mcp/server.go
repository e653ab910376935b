// Package mcpserver exposes stored symbols to AI agents over the Model
// Context Protocol: tools to create, import, export and clear symbols, and
// resources for reading them.
package mcpserver

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wattline/wattline/backend-go/internal/symbol"
)

const (
	serverName    = "wattline-mcp"
	serverVersion = "1.0.0"
)

type Server struct {
	mcp     *server.MCPServer
	symbols *symbol.Service
}

func New(symbols *symbol.Service) *Server {
	s := &Server{symbols: symbols}
	s.mcp = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	s.registerSymbolTools()
	s.registerResources()
	return s
}

// ServeStdio runs the server on stdin/stdout until the input closes.
func (s *Server) ServeStdio() error {
	slog.Info("mcp server starting on stdio")
	return server.ServeStdio(s.mcp)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func boolPtr(v bool) *bool { return &v }
