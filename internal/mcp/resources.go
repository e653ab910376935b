package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wattline/wattline/backend-go/internal/document"
	"github.com/wattline/wattline/backend-go/internal/export"
)

const (
	templatesURI     = "wattline://templates"
	symbolURIPrefix  = "wattline://symbol/"
	symbolSVGSuffix  = "/svg"
	symbolURIPattern = "wattline://symbol/{symbolId}"
)

func (s *Server) registerResources() {
	s.mcp.AddResource(mcp.NewResource(
		templatesURI,
		"Symbol Templates",
		mcp.WithMIMEType("application/json"),
	), s.handleTemplatesResource)

	// ── wattline://symbol/{symbolId} ────────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			symbolURIPattern,
			"Symbol Document",
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.handleSymbolResource,
	)

	// ── wattline://symbol/{symbolId}/svg ────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			symbolURIPattern+symbolSVGSuffix,
			"Symbol SVG Preview",
			mcp.WithTemplateMIMEType("image/svg+xml"),
		),
		s.handleSymbolResource,
	)
}

func (s *Server) handleTemplatesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, _ := json.MarshalIndent(document.TemplateNames(), "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      templatesURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleSymbolResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	symbolID, svg := symbolIDFromURI(uri)
	if symbolID == "" {
		return nil, fmt.Errorf("could not extract symbolId from URI: %s", uri)
	}

	if svg {
		res, err := s.symbols.Export(ctx, symbolID, export.Options{Format: export.FormatSVG, Relative: true})
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: uri, MIMEType: res.ContentType, Text: res.Body},
		}, nil
	}

	doc, err := s.symbols.Get(ctx, symbolID)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: "application/json", Text: string(data)},
	}, nil
}

// symbolIDFromURI extracts the id from wattline://symbol/{id} and reports
// whether the SVG preview was requested.
func symbolIDFromURI(uri string) (string, bool) {
	rest, ok := strings.CutPrefix(uri, symbolURIPrefix)
	if !ok {
		return "", false
	}
	if id, ok := strings.CutSuffix(rest, symbolSVGSuffix); ok {
		return id, true
	}
	if strings.Contains(rest, "/") {
		return "", false
	}
	return rest, false
}
