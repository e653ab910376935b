package geom

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/wattline/wattline/backend-go/internal/document"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestSnap(t *testing.T) {
	tests := []struct {
		v, grid float64
		enabled bool
		want    float64
	}{
		{205, 10, true, 200},
		{123, 10, true, 120},
		{7, 10, true, 10},
		{-7, 10, true, -10},
		{14.9, 5, true, 15},
		{13, 10, false, 13},
		{13, 0, true, 13},
	}
	for _, tt := range tests {
		if got := Snap(tt.v, tt.grid, tt.enabled); got != tt.want {
			t.Errorf("Snap(%v, %v, %v) = %v, want %v", tt.v, tt.grid, tt.enabled, got, tt.want)
		}
	}
}

func TestSnapIdempotent(t *testing.T) {
	for _, g := range []float64{1, 2.5, 5, 10, 16, 25} {
		for v := -500.0; v <= 500; v += 0.75 {
			once := Snap(v, g, true)
			if twice := Snap(once, g, true); twice != once {
				t.Fatalf("Snap not idempotent for v=%v g=%v: %v then %v", v, g, once, twice)
			}
		}
	}
}

func TestToLogical(t *testing.T) {
	vp := Viewport{Left: 0, Top: 0, Width: 800, Height: 600}
	origin := document.Point{X: 10, Y: 20}

	tests := []struct {
		pixel document.Point
		want  document.Point
	}{
		{document.Point{X: 400, Y: 300}, document.Point{X: 10, Y: 20}},
		{document.Point{X: 500, Y: 300}, document.Point{X: 60, Y: 20}},
		{document.Point{X: 400, Y: 200}, document.Point{X: 10, Y: -30}},
	}
	for _, tt := range tests {
		got := ToLogical(tt.pixel, vp, origin, 2)
		if diff := cmp.Diff(tt.want, got, approx); diff != "" {
			t.Errorf("ToLogical(%v) mismatch (-want +got):\n%s", tt.pixel, diff)
		}
		back := ToScreen(got, vp, origin, 2)
		if diff := cmp.Diff(tt.pixel, back, approx); diff != "" {
			t.Errorf("ToScreen round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestToLogicalOffsetViewport(t *testing.T) {
	vp := Viewport{Left: 100, Top: 50, Width: 200, Height: 100}
	got := ToLogical(document.Point{X: 200, Y: 100}, vp, document.Point{}, 1)
	if diff := cmp.Diff(document.Point{}, got, approx); diff != "" {
		t.Errorf("viewport centre should map to origin (-want +got):\n%s", diff)
	}
}

func TestShapeBounds(t *testing.T) {
	text := document.NewText(0, 20, "abc")
	text.FontSize = 10

	tests := []struct {
		name  string
		shape document.Shape
		want  Bounds
	}{
		{"rect", document.NewRect(1, 2, 10, 20), Bounds{1, 2, 11, 22}},
		{"circle", document.NewCircle(0, 0, 5, 3), Bounds{-5, -3, 5, 3}},
		{"line", document.NewLine(10, 10, -10, 0), Bounds{-10, 0, 10, 10}},
		{"arrow", document.NewArrow(0, 0, 30, -5), Bounds{0, -5, 30, 0}},
		{"curve", document.NewCurve(0, 0, 50, -40, 100, 0), Bounds{0, -40, 100, 0}},
		{"text", text, Bounds{0, 10, 18, 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ShapeBounds(tt.shape), approx); diff != "" {
				t.Errorf("bounds mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestShapeBoundsCoversEveryKind(t *testing.T) {
	for _, k := range document.Kinds {
		s, err := document.NewShape(k, document.Point{X: 3, Y: 4})
		if err != nil {
			t.Fatalf("NewShape(%s): %v", k, err)
		}
		// Must not panic for any kind.
		_ = ShapeBounds(s)
		_ = Center(s)
		_ = Anchor(s)
		TranslateShape(s, 1, 1)
		_ = DistanceToShape(s, document.Point{})
	}
}

func TestBoundingBox(t *testing.T) {
	if _, ok := BoundingBox(nil); ok {
		t.Fatal("empty list should report ok=false")
	}
	shapes := []document.Shape{
		document.NewRect(0, 0, 10, 10),
		document.NewCircle(50, 50, 5, 5),
	}
	got, ok := BoundingBox(shapes)
	if !ok {
		t.Fatal("expected ok")
	}
	if diff := cmp.Diff(Bounds{0, 0, 55, 55}, got); diff != "" {
		t.Errorf("BoundingBox mismatch (-want +got):\n%s", diff)
	}
}

func TestRotationAngle(t *testing.T) {
	c := document.Point{}
	tests := []struct {
		pointer document.Point
		want    float64
	}{
		{document.Point{X: 0, Y: -10}, 0},
		{document.Point{X: 10, Y: 0}, 90},
		{document.Point{X: 0, Y: 10}, 180},
		{document.Point{X: -10, Y: 0}, 270},
		{document.Point{X: 10, Y: -10}, 45},
	}
	for _, tt := range tests {
		if got := RotationAngle(c, tt.pointer); got != tt.want {
			t.Errorf("RotationAngle(%v) = %v, want %v", tt.pointer, got, tt.want)
		}
	}
}

func TestArrowHead(t *testing.T) {
	left, right := ArrowHead(document.Point{}, document.Point{X: 10, Y: 0}, 10)
	dx := 10 - 10*math.Cos(math.Pi/6)
	if diff := cmp.Diff(document.Point{X: dx, Y: 5}, left, approx); diff != "" {
		t.Errorf("left barb (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(document.Point{X: dx, Y: -5}, right, approx); diff != "" {
		t.Errorf("right barb (-want +got):\n%s", diff)
	}
}

func TestDistanceToShape(t *testing.T) {
	rotated := document.NewRect(0, 0, 20, 10)
	rotated.Rotation = 90

	tests := []struct {
		name  string
		shape document.Shape
		p     document.Point
		want  float64
	}{
		{"rect inside", document.NewRect(0, 0, 10, 10), document.Point{X: 5, Y: 5}, 0},
		{"rect corner", document.NewRect(0, 0, 10, 10), document.Point{X: 13, Y: 14}, 5},
		{"circle inside", document.NewCircle(0, 0, 10, 10), document.Point{X: 3, Y: 3}, 0},
		{"circle outside", document.NewCircle(0, 0, 10, 10), document.Point{X: 15, Y: 0}, 5},
		{"line", document.NewLine(0, 0, 10, 0), document.Point{X: 5, Y: 3}, 3},
		{"line past end", document.NewLine(0, 0, 10, 0), document.Point{X: 13, Y: 4}, 5},
		{"rotated rect", rotated, document.Point{X: 10, Y: -4}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, DistanceToShape(tt.shape, tt.p), approx); diff != "" {
				t.Errorf("distance mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMatrixInvert(t *testing.T) {
	m := RotateAbout(30, document.Point{X: 5, Y: -2}).Multiply(Scale(2, 3))
	if !m.Multiply(m.Invert()).IsIdentity() {
		t.Errorf("m * m^-1 is not identity: %v", m.Multiply(m.Invert()))
	}
}
