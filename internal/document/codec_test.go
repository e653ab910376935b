package document

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDocumentRoundTrip(t *testing.T) {
	text := NewText(5, 6, "L1")
	text.Rotation = 90
	doc := Document{
		Shapes: []Shape{
			NewRect(0, 0, 20, 10),
			NewCircle(1, 2, 3, 4),
			NewLine(0, 0, 1, 1),
			NewArrow(0, 0, 10, 0),
			NewCurve(0, 0, 5, -5, 10, 0),
			text,
		},
		Origin: Point{X: 7, Y: -3},
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	var got Document
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(doc, got); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

func TestUnmarshalNormalizesLegacyShapes(t *testing.T) {
	var doc Document
	err := json.Unmarshal([]byte(`{"shapes":[
		{"type":"line","id":"shape_a","x1":0,"y1":0,"x2":5,"y2":0},
		{"type":"text","id":"shape_b","x":1,"y":2,"text":"N","strokeWidth":0.2}
	]}`), &doc)
	if err != nil {
		t.Fatal(err)
	}

	want := Document{Shapes: []Shape{
		&Line{Base: Base{ID: "shape_a", Stroke: DefaultStroke, StrokeWidth: 1, Fill: DefaultFill}, X2: 5},
		&Text{Base: Base{ID: "shape_b", Stroke: DefaultStroke, StrokeWidth: 1, Fill: DefaultFill}, X: 1, Y: 2, Text: "N", FontSize: DefaultFontSize},
	}}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("decoded (-want +got):\n%s", diff)
	}
}

func TestUnmarshalRepairsGeometryAndIDs(t *testing.T) {
	var doc Document
	err := json.Unmarshal([]byte(`{"shapes":[
		{"type":"rect","id":"dup","x":50,"y":20,"width":-40,"height":-10},
		{"type":"circle","id":"dup","rx":-3,"ry":4},
		{"type":"line","x2":5}
	]}`), &doc)
	if err != nil {
		t.Fatal(err)
	}

	rect := doc.Shapes[0].(*Rect)
	if rect.X != 10 || rect.Y != 10 || rect.Width != 40 || rect.Height != 10 {
		t.Errorf("rect = %+v, want x=10 y=10 40x10", *rect)
	}
	circle := doc.Shapes[1].(*Circle)
	if circle.RX != 3 || circle.RY != 4 {
		t.Errorf("circle radii = %v, %v; want 3, 4", circle.RX, circle.RY)
	}

	if rect.ID != "dup" {
		t.Errorf("first shape id = %q, want it kept", rect.ID)
	}
	seen := map[string]bool{}
	for i, s := range doc.Shapes {
		id := s.Common().ID
		if id == "" || seen[id] {
			t.Errorf("shape %d has empty or repeated id %q", i, id)
		}
		seen[id] = true
	}
	if !strings.HasPrefix(circle.ID, "shape_") {
		t.Errorf("reassigned id = %q, want shape_ prefix", circle.ID)
	}
}

func TestAssignIDs(t *testing.T) {
	existing := []Shape{NewLine(0, 0, 1, 0)}
	copied := existing[0].Clone()
	fresh := NewRect(0, 0, 1, 1)
	freshID := fresh.ID

	if n := AssignIDs(existing, []Shape{copied, fresh}); n != 1 {
		t.Errorf("AssignIDs replaced %d ids, want 1", n)
	}
	if copied.Common().ID == existing[0].Common().ID {
		t.Error("copied shape still shares its id with the existing one")
	}
	if fresh.ID != freshID {
		t.Errorf("unique id changed from %q to %q", freshID, fresh.ID)
	}
}

func TestUnmarshalShapeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unknown type", `[{"type":"hexagon"}]`, `unknown shape type "hexagon"`},
		{"bad field", `[{"type":"rect","x":"wide"}]`, "decode rect shape"},
		{"not a list", `{"type":"rect"}`, "decode shape list"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalShapes([]byte(tt.input))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestTemplatesBuildFreshShapes(t *testing.T) {
	if diff := cmp.Diff([]string{"lamp", "socket", "switch"}, TemplateNames()); diff != "" {
		t.Errorf("TemplateNames (-want +got):\n%s", diff)
	}
	for name, build := range Templates {
		a, b := build(), build()
		if len(a.Shapes) == 0 {
			t.Errorf("%s: template is empty", name)
			continue
		}
		if a.Shapes[0].Common().ID == b.Shapes[0].Common().ID {
			t.Errorf("%s: templates share shape ids", name)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	doc := Document{Shapes: []Shape{NewRect(0, 0, 10, 10)}}
	c := doc.Clone()
	c.Shapes[0].(*Rect).X = 99
	if doc.Shapes[0].(*Rect).X != 0 {
		t.Error("Clone shares shapes with the original")
	}

	s, i := doc.Find(doc.Shapes[0].Common().ID)
	if s == nil || i != 0 {
		t.Errorf("Find = %v, %d", s, i)
	}
	if s, i := doc.Find("shape_missing"); s != nil || i != -1 {
		t.Errorf("Find(missing) = %v, %d", s, i)
	}
}
