package export

import (
	"fmt"
	"strings"

	"github.com/wattline/wattline/backend-go/internal/engine"
)

// Format names an export output.
type Format string

const (
	FormatCombined  Format = "combined"
	FormatAnnotated Format = "annotated"
	FormatSVG       Format = "svg"
)

// ParseFormat accepts a format name case-insensitively. The empty string
// selects FormatCombined.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCombined, nil
	case FormatCombined, FormatAnnotated, FormatSVG:
		return f, nil
	default:
		return "", fmt.Errorf("invalid format %q: must be combined, annotated, or svg", s)
	}
}

// Options controls one export.
type Options struct {
	Format   Format
	Relative bool // coordinates relative to the document origin
	Width    float64
	Height   float64
}

// Result is rendered export output.
type Result struct {
	Body        string
	ContentType string
	Extension   string
}

// Default canvas size for SVG exports that do not name one.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// Render exports the engine's document.
func Render(e *engine.Engine, opts Options) (Result, error) {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	switch opts.Format {
	case FormatCombined, "":
		return Result{Body: e.ExportCombined(opts.Relative), ContentType: "text/plain; charset=utf-8", Extension: ".txt"}, nil
	case FormatAnnotated:
		return Result{Body: e.ExportAnnotated(opts.Relative), ContentType: "text/plain; charset=utf-8", Extension: ".txt"}, nil
	case FormatSVG:
		return Result{Body: e.ExportSVG(opts.Relative, opts.Width, opts.Height), ContentType: "image/svg+xml", Extension: ".svg"}, nil
	default:
		return Result{}, fmt.Errorf("invalid format %q", opts.Format)
	}
}
