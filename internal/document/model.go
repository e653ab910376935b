package document

import (
	"fmt"

	"github.com/wattline/wattline/backend-go/internal/typeid"
)

// Point is a position in logical units. Logical units are independent of zoom
// and of the grid size.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Kind is the type tag of a shape.
type Kind string

const (
	KindRect   Kind = "rect"
	KindCircle Kind = "circle"
	KindLine   Kind = "line"
	KindArrow  Kind = "arrow"
	KindCurve  Kind = "curve"
	KindText   Kind = "text"
)

// Kinds lists every shape kind in a stable order.
var Kinds = []Kind{KindRect, KindCircle, KindLine, KindArrow, KindCurve, KindText}

const (
	DefaultStroke      = "#000000"
	DefaultStrokeWidth = 2.0
	DefaultFill        = "none"
	DefaultFontSize    = 16.0
	DefaultText        = "Text"

	// MinSize is the smallest width, height or radius an interactive resize
	// can produce.
	MinSize = 5.0
)

// Base holds the fields shared by every shape.
type Base struct {
	ID          string  `json:"id"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
	Fill        string  `json:"fill"`
	Rotation    float64 `json:"rotation,omitempty"` // degrees, about the shape centre
}

// Common returns the shared fields of a shape.
func (b *Base) Common() *Base { return b }

// Shape is the closed set of drawable shapes. The set is sealed by an
// unexported method; every consumer dispatches with a type switch over the
// six concrete types and reports anything else through Unhandled.
type Shape interface {
	Kind() Kind
	Common() *Base
	Clone() Shape
	isShape()
}

// Rect is an axis-aligned rectangle before rotation; (X, Y) is the top-left corner.
type Rect struct {
	Base
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Circle is an ellipse with independent radii.
type Circle struct {
	Base
	CX float64 `json:"cx"`
	CY float64 `json:"cy"`
	RX float64 `json:"rx"`
	RY float64 `json:"ry"`
}

// Line is a straight segment.
type Line struct {
	Base
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Arrow is a segment with an arrowhead at (X2, Y2). The head is derived from
// the segment angle whenever it is drawn or exported.
type Arrow struct {
	Base
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Curve is a quadratic Bézier segment.
type Curve struct {
	Base
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	QX float64 `json:"qx"`
	QY float64 `json:"qy"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Text is a single-line label; (X, Y) is the start of the baseline.
type Text struct {
	Base
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Text     string  `json:"text"`
	FontSize float64 `json:"fontSize"`
}

func (*Rect) Kind() Kind   { return KindRect }
func (*Circle) Kind() Kind { return KindCircle }
func (*Line) Kind() Kind   { return KindLine }
func (*Arrow) Kind() Kind  { return KindArrow }
func (*Curve) Kind() Kind  { return KindCurve }
func (*Text) Kind() Kind   { return KindText }

func (*Rect) isShape()   {}
func (*Circle) isShape() {}
func (*Line) isShape()   {}
func (*Arrow) isShape()  {}
func (*Curve) isShape()  {}
func (*Text) isShape()   {}

func (r *Rect) Clone() Shape   { c := *r; return &c }
func (c *Circle) Clone() Shape { d := *c; return &d }
func (l *Line) Clone() Shape   { c := *l; return &c }
func (a *Arrow) Clone() Shape  { c := *a; return &c }
func (c *Curve) Clone() Shape  { d := *c; return &d }
func (t *Text) Clone() Shape   { c := *t; return &c }

// Unhandled is the panic value for a type switch that met a shape outside the
// sealed set. It can only fire if a new kind is added without updating a
// consumer.
func Unhandled(s Shape) string {
	return fmt.Sprintf("document: unhandled shape type %T", s)
}

// Document is an ordered shape list plus the logical origin. Order is
// insertion order and doubles as z-order.
type Document struct {
	Shapes []Shape `json:"shapes"`
	Origin Point   `json:"origin"`
}

// CloneShapes deep-copies a shape list.
func CloneShapes(shapes []Shape) []Shape {
	if shapes == nil {
		return nil
	}
	out := make([]Shape, len(shapes))
	for i, s := range shapes {
		out[i] = s.Clone()
	}
	return out
}

// Clone deep-copies the document.
func (d Document) Clone() Document {
	return Document{Shapes: CloneShapes(d.Shapes), Origin: d.Origin}
}

// Find returns the shape with the given id and its index, or (nil, -1).
func (d *Document) Find(id string) (Shape, int) {
	for i, s := range d.Shapes {
		if s.Common().ID == id {
			return s, i
		}
	}
	return nil, -1
}

func newBase() Base {
	return Base{
		ID:          typeid.NewShapeID(),
		Stroke:      DefaultStroke,
		StrokeWidth: DefaultStrokeWidth,
		Fill:        DefaultFill,
	}
}

// NewRect creates a rectangle with a fresh id and default styling.
func NewRect(x, y, width, height float64) *Rect {
	return &Rect{Base: newBase(), X: x, Y: y, Width: width, Height: height}
}

// NewCircle creates an ellipse with a fresh id and default styling.
func NewCircle(cx, cy, rx, ry float64) *Circle {
	return &Circle{Base: newBase(), CX: cx, CY: cy, RX: rx, RY: ry}
}

// NewLine creates a line with a fresh id and default styling.
func NewLine(x1, y1, x2, y2 float64) *Line {
	return &Line{Base: newBase(), X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// NewArrow creates an arrow with a fresh id and default styling.
func NewArrow(x1, y1, x2, y2 float64) *Arrow {
	return &Arrow{Base: newBase(), X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// NewCurve creates a quadratic curve with a fresh id and default styling.
func NewCurve(x1, y1, qx, qy, x2, y2 float64) *Curve {
	return &Curve{Base: newBase(), X1: x1, Y1: y1, QX: qx, QY: qy, X2: x2, Y2: y2}
}

// NewText creates a text label with a fresh id and default styling.
func NewText(x, y float64, text string) *Text {
	b := newBase()
	b.Fill = DefaultStroke
	return &Text{Base: b, X: x, Y: y, Text: text, FontSize: DefaultFontSize}
}

// NewShape creates a zero-size shape of the given kind anchored at p.
func NewShape(kind Kind, p Point) (Shape, error) {
	switch kind {
	case KindRect:
		return NewRect(p.X, p.Y, 0, 0), nil
	case KindCircle:
		return NewCircle(p.X, p.Y, 0, 0), nil
	case KindLine:
		return NewLine(p.X, p.Y, p.X, p.Y), nil
	case KindArrow:
		return NewArrow(p.X, p.Y, p.X, p.Y), nil
	case KindCurve:
		return NewCurve(p.X, p.Y, p.X, p.Y, p.X, p.Y), nil
	case KindText:
		return NewText(p.X, p.Y, DefaultText), nil
	default:
		return nil, fmt.Errorf("unknown shape kind: %s", kind)
	}
}
