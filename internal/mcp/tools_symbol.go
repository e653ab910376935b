package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wattline/wattline/backend-go/internal/document"
	"github.com/wattline/wattline/backend-go/internal/export"
)

func (s *Server) registerSymbolTools() {
	s.mcp.AddTool(mcp.NewTool("list_symbols",
		mcp.WithDescription("List stored symbols with their IDs, shape counts, and origins"),
	), s.handleListSymbols)

	s.mcp.AddTool(mcp.NewTool("create_symbol",
		mcp.WithDescription("Create a new symbol, empty or from a template ("+strings.Join(document.TemplateNames(), ", ")+")"),
		mcp.WithString("template", mcp.Description("Template name (optional)")),
	), s.handleCreateSymbol)

	s.mcp.AddTool(mcp.NewTool("list_symbol_shapes",
		mcp.WithDescription("List the shapes of a symbol with their IDs, kinds, and geometry"),
		mcp.WithString("symbolId", mcp.Description("Symbol ID"), mcp.Required()),
	), s.handleListSymbolShapes)

	s.mcp.AddTool(mcp.NewTool("import_path_data",
		mcp.WithDescription("Append shapes parsed from SVG path data (M, L, Q, C, Z commands, absolute coordinates) to a symbol"),
		mcp.WithString("symbolId", mcp.Description("Symbol ID"), mcp.Required()),
		mcp.WithString("pathData", mcp.Description("SVG path data, e.g. 'M 0 0 L 20 0'"), mcp.Required()),
	), s.handleImportPathData)

	s.mcp.AddTool(mcp.NewTool("export_symbol",
		mcp.WithDescription("Export a symbol as combined path data, annotated path data, or an SVG document"),
		mcp.WithString("symbolId", mcp.Description("Symbol ID"), mcp.Required()),
		mcp.WithString("format", mcp.Description("combined (default), annotated, or svg")),
		mcp.WithBoolean("relative", mcp.Description("Coordinates relative to the symbol origin (default true)")),
	), s.handleExportSymbol)

	s.mcp.AddTool(mcp.NewTool("clear_symbol",
		mcp.WithDescription("DESTRUCTIVE: Remove every shape from a symbol"),
		mcp.WithString("symbolId", mcp.Description("Symbol ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleClearSymbol)
}

func (s *Server) handleListSymbols(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.symbols.List(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResult(list)
}

func (s *Server) handleCreateSymbol(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sum, err := s.symbols.Create(ctx, req.GetString("template", ""))
	if err != nil {
		return nil, err
	}
	return jsonResult(sum)
}

type shapeSummary struct {
	Index int            `json:"index"`
	ID    string         `json:"id"`
	Kind  document.Kind  `json:"kind"`
	Shape document.Shape `json:"shape"`
}

func (s *Server) handleListSymbolShapes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbolID := req.GetString("symbolId", "")
	if symbolID == "" {
		return nil, fmt.Errorf("symbolId is required")
	}
	doc, err := s.symbols.Get(ctx, symbolID)
	if err != nil {
		return nil, err
	}

	shapes := make([]shapeSummary, len(doc.Shapes))
	for i, sh := range doc.Shapes {
		shapes[i] = shapeSummary{Index: i + 1, ID: sh.Common().ID, Kind: sh.Kind(), Shape: sh}
	}
	return jsonResult(map[string]any{
		"symbolId": symbolID,
		"origin":   doc.Origin,
		"shapes":   shapes,
	})
}

func (s *Server) handleImportPathData(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbolID := req.GetString("symbolId", "")
	pathData := req.GetString("pathData", "")
	if symbolID == "" || pathData == "" {
		return nil, fmt.Errorf("symbolId and pathData are required")
	}
	res, err := s.symbols.Import(ctx, symbolID, pathData)
	if err != nil {
		return nil, err
	}
	return jsonResult(res)
}

func (s *Server) handleExportSymbol(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbolID := req.GetString("symbolId", "")
	if symbolID == "" {
		return nil, fmt.Errorf("symbolId is required")
	}
	format, err := export.ParseFormat(req.GetString("format", ""))
	if err != nil {
		return nil, err
	}
	res, err := s.symbols.Export(ctx, symbolID, export.Options{
		Format:   format,
		Relative: req.GetBool("relative", true),
	})
	if err != nil {
		return nil, err
	}
	if res.Body == "" {
		return textResult("(symbol is empty)"), nil
	}
	return textResult(res.Body), nil
}

func (s *Server) handleClearSymbol(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbolID := req.GetString("symbolId", "")
	if symbolID == "" {
		return nil, fmt.Errorf("symbolId is required")
	}
	if err := s.symbols.Clear(ctx, symbolID); err != nil {
		return nil, err
	}
	return textResult("Symbol cleared"), nil
}
