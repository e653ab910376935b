package export

import (
	"strings"
	"testing"

	"github.com/wattline/wattline/backend-go/internal/document"
	"github.com/wattline/wattline/backend-go/internal/engine"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatCombined, false},
		{"combined", FormatCombined, false},
		{" Annotated ", FormatAnnotated, false},
		{"SVG", FormatSVG, false},
		{"png", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func loadedEngine() *engine.Engine {
	e := engine.NewEngine()
	e.LoadDocument(document.Document{
		Shapes: []document.Shape{document.NewLine(10, 10, 30, 10)},
		Origin: document.Point{X: 10, Y: 10},
	})
	return e
}

func TestRender(t *testing.T) {
	e := loadedEngine()

	tests := []struct {
		name        string
		opts        Options
		wantBody    string
		contentType string
	}{
		{"relative combined", Options{Format: FormatCombined, Relative: true}, "M 0 0 L 20 0", "text/plain; charset=utf-8"},
		{"absolute combined", Options{Format: FormatCombined}, "M 10 10 L 30 10", "text/plain; charset=utf-8"},
		{"svg default canvas", Options{Format: FormatSVG, Relative: true}, `viewBox="-400 -300 800 600"`, "image/svg+xml"},
		{"svg sized canvas", Options{Format: FormatSVG, Relative: true, Width: 200, Height: 100}, `viewBox="-100 -50 200 100"`, "image/svg+xml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Render(e, tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(res.Body, tt.wantBody) {
				t.Errorf("body = %q, want it to contain %q", res.Body, tt.wantBody)
			}
			if res.ContentType != tt.contentType {
				t.Errorf("content type = %q, want %q", res.ContentType, tt.contentType)
			}
		})
	}

	if _, err := Render(e, Options{Format: "png"}); err == nil {
		t.Error("expected an error for an unknown format")
	}
}
