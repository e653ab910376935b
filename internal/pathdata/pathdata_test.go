package pathdata

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/wattline/wattline/backend-go/internal/document"
	"github.com/wattline/wattline/backend-go/internal/geom"
)

var ignoreID = cmpopts.IgnoreFields(document.Base{}, "ID")

func TestShape(t *testing.T) {
	tests := []struct {
		name   string
		shape  document.Shape
		origin document.Point
		want   string
	}{
		{"rect", document.NewRect(10, 20, 30, 40), document.Point{}, "M 10 20 h 30 v 40 h -30 z"},
		{"circle", document.NewCircle(0, 0, 10, 10), document.Point{}, "M -10 0 A 10 10 0 1 0 10 0 A 10 10 0 1 0 -10 0"},
		{"line relative to origin", document.NewLine(5, 5, 15, 5), document.Point{X: 5, Y: 5}, "M 0 0 L 10 0"},
		{"arrow", document.NewArrow(0, 0, 100, 0), document.Point{}, "M 0 0 L 100 0 L 91 5 M 100 0 L 91 -5"},
		{"curve", document.NewCurve(0, 0, 50, -40, 100, 0), document.Point{}, "M 0 0 Q 50 -40 100 0"},
		{"rounding", document.NewLine(0.4, -0.4, 9.6, 2.5), document.Point{}, "M 0 0 L 10 3"},
		{"text", document.NewText(0, 0, "L1"), document.Point{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Shape(tt.shape, tt.origin); got != tt.want {
				t.Errorf("Shape() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCombinedSkipsText(t *testing.T) {
	shapes := []document.Shape{
		document.NewLine(0, 0, 10, 0),
		document.NewText(0, 0, "x"),
		document.NewLine(0, 10, 10, 10),
	}
	want := "M 0 0 L 10 0 M 0 10 L 10 10"
	if got := Combined(shapes, document.Point{}); got != want {
		t.Errorf("Combined() = %q, want %q", got, want)
	}
}

func TestAnnotated(t *testing.T) {
	r := document.NewRect(0, 0, 10, 10)
	txt := document.NewText(0, 0, "x")
	got := Annotated([]document.Shape{r, txt}, document.Point{})

	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	want := []string{
		"// #1 rect " + r.ID,
		"M 0 0 h 10 v 10 h -10 z",
		"// #2 text " + txt.ID,
		"// (no path data)",
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("Annotated mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTripLosslessSubset(t *testing.T) {
	original := []document.Shape{
		document.NewRect(10.4, 20.6, 30.2, 40.7),
		document.NewLine(0, 0, 50, -25),
		document.NewCurve(0, 0, 50, -40, 100, 0),
	}
	parsed, err := Parse(Combined(original, document.Point{}))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	// The rect comes back as its four edges.
	if len(parsed) != 6 {
		t.Fatalf("got %d shapes, want 6", len(parsed))
	}

	within1 := cmpopts.EquateApprox(0, 1)
	wantBox, _ := geom.BoundingBox(original[:1])
	gotBox, _ := geom.BoundingBox(parsed[:4])
	if diff := cmp.Diff(wantBox, gotBox, within1); diff != "" {
		t.Errorf("rect bounds (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(original[1:], parsed[4:], ignoreID, within1); diff != "" {
		t.Errorf("line and curve (-want +got):\n%s", diff)
	}

	wantAll, _ := geom.BoundingBox(original)
	gotAll, _ := geom.BoundingBox(parsed)
	if diff := cmp.Diff(wantAll, gotAll, within1); diff != "" {
		t.Errorf("document bounds (-want +got):\n%s", diff)
	}
}

func TestRoundTripArcIsApproximate(t *testing.T) {
	c := document.NewCircle(100, 50, 30, 20)
	parsed, err := Parse(Shape(c, document.Point{}))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(parsed) != 1 {
		t.Fatalf("got %d shapes, want one circle", len(parsed))
	}
	got, ok := parsed[0].(*document.Circle)
	if !ok {
		t.Fatalf("got %T, want *document.Circle", parsed[0])
	}
	if diff := cmp.Diff(c, got, ignoreID, cmpopts.EquateApprox(0, 1)); diff != "" {
		t.Errorf("circle (-want +got):\n%s", diff)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		d    string
		want []document.Shape
	}{
		{
			name: "absolute with close",
			d:    "M 0 0 L 10 0 L 10 10 Z",
			want: []document.Shape{
				document.NewLine(0, 0, 10, 0),
				document.NewLine(10, 0, 10, 10),
				document.NewLine(10, 10, 0, 0),
			},
		},
		{
			name: "relative box",
			d:    "m 10 10 l 5 0 v 5 h -5 z",
			want: []document.Shape{
				document.NewLine(10, 10, 15, 10),
				document.NewLine(15, 10, 15, 15),
				document.NewLine(15, 15, 10, 15),
				document.NewLine(10, 15, 10, 10),
			},
		},
		{
			name: "implicit line-to after move",
			d:    "M 0 0 10 0 10 10",
			want: []document.Shape{
				document.NewLine(0, 0, 10, 0),
				document.NewLine(10, 0, 10, 10),
			},
		},
		{
			name: "close on already closed subpath",
			d:    "M0 0 L10 0 L0 0 Z",
			want: []document.Shape{
				document.NewLine(0, 0, 10, 0),
				document.NewLine(10, 0, 0, 0),
			},
		},
		{
			name: "compact separators",
			d:    "M0,0L10-5",
			want: []document.Shape{document.NewLine(0, 0, 10, -5)},
		},
		{
			name: "relative quadratic",
			d:    "M 10 10 q 5 -10 10 0",
			want: []document.Shape{document.NewCurve(10, 10, 15, 0, 20, 10)},
		},
		{
			name: "arc uses chord midpoint",
			d:    "M 0 0 A 5 5 0 0 1 10 0",
			want: []document.Shape{document.NewCircle(5, 0, 5, 5)},
		},
		{
			name: "empty",
			d:    "   ",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.d)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.d, err)
			}
			if diff := cmp.Diff(tt.want, got, ignoreID); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.d, diff)
			}
		})
	}
}

func TestParseMalformedKeepsPartialResults(t *testing.T) {
	tests := []struct {
		name      string
		d         string
		wantCount int
	}{
		{"unknown command", "M 0 0 L 10 0 X 5 5 L 20 0", 2},
		{"short operands", "M 0 0 L 10 0 L 20", 1},
		{"stray text", "M 0 0 L 10 0 # L 0 0", 2},
		{"number first", "5 M 0 0 L 1 1", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.d)
			if err == nil {
				t.Fatal("expected an error")
			}
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("error %v is not a *SyntaxError", err)
			}
			if len(got) != tt.wantCount {
				t.Errorf("got %d shapes, want %d", len(got), tt.wantCount)
			}
		})
	}
}

func TestParseAssignsFreshIDs(t *testing.T) {
	got, err := Parse("M 0 0 L 1 0 L 1 1 L 0 1 Z")
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]bool{}
	for _, s := range got {
		id := s.Common().ID
		if !strings.HasPrefix(id, "shape_") {
			t.Errorf("id %q lacks the shape prefix", id)
		}
		if seen[id] {
			t.Errorf("duplicate id %q", id)
		}
		seen[id] = true
		if s.Common().Stroke != document.DefaultStroke {
			t.Errorf("stroke = %q, want default", s.Common().Stroke)
		}
	}
}

func TestSVGViewBox(t *testing.T) {
	shapes := []document.Shape{document.NewRect(0, 0, 10, 10)}

	withOrigin := SVG(shapes, SVGOptions{Origin: &document.Point{X: 5, Y: 5}, Width: 200, Height: 100})
	if !strings.Contains(withOrigin, `viewBox="-100 -50 200 100"`) {
		t.Errorf("origin viewBox missing in:\n%s", withOrigin)
	}
	if !strings.Contains(withOrigin, `d="M -5 -5 h 10 v 10 h -10 z"`) {
		t.Errorf("path not relative to origin in:\n%s", withOrigin)
	}

	auto := SVG(shapes, SVGOptions{Width: 200, Height: 100})
	if !strings.Contains(auto, `viewBox="-10 -10 30 30"`) {
		t.Errorf("padded viewBox missing in:\n%s", auto)
	}

	empty := SVG(nil, SVGOptions{Width: 200, Height: 100})
	if !strings.Contains(empty, `viewBox="0 0 200 100"`) {
		t.Errorf("empty viewBox missing in:\n%s", empty)
	}
}

func TestSVGRoundTrip(t *testing.T) {
	r := document.NewRect(0, 0, 40, 20)
	r.Rotation = 45
	label := document.NewText(5, 30, "A&B")
	doc := SVG([]document.Shape{r, label, document.NewCircle(60, 10, 10, 10)}, SVGOptions{})

	got, err := ParseSVGDocument(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseSVGDocument: %v", err)
	}
	// rect edges (4) + text + circle
	if len(got) != 6 {
		t.Fatalf("got %d shapes, want 6:\n%s", len(got), doc)
	}
	txt, ok := got[4].(*document.Text)
	if !ok {
		t.Fatalf("shape 4 is %T, want text", got[4])
	}
	if txt.Text != "A&B" || txt.X != 5 || txt.Y != 30 {
		t.Errorf("text = %+v", txt)
	}
	if _, ok := got[5].(*document.Circle); !ok {
		t.Errorf("shape 5 is %T, want circle", got[5])
	}
}

func TestParseSVGDocumentElements(t *testing.T) {
	const src = `<svg xmlns="http://www.w3.org/2000/svg">
  <rect x="1" y="2" width="3" height="4" stroke="#ff0000" transform="rotate(30 2 4)"/>
  <ellipse cx="10" cy="10" rx="5" ry="2"/>
  <line x1="0" y1="0" x2="5" y2="5" stroke-width="3"/>
  <path d="M 0 0 L 1 1 Q"/>
</svg>`
	got, err := ParseSVGDocument(strings.NewReader(src))
	if err == nil {
		t.Fatal("expected the truncated path to be reported")
	}

	rect := document.NewRect(1, 2, 3, 4)
	rect.Stroke = "#ff0000"
	rect.Rotation = 30
	line := document.NewLine(0, 0, 5, 5)
	line.StrokeWidth = 3
	want := []document.Shape{
		rect,
		document.NewCircle(10, 10, 5, 2),
		line,
		document.NewLine(0, 0, 1, 1),
	}
	if diff := cmp.Diff(want, got, ignoreID); diff != "" {
		t.Errorf("ParseSVGDocument mismatch (-want +got):\n%s", diff)
	}
}
