package engine

import (
	"math"
	"strings"

	"github.com/wattline/wattline/backend-go/internal/document"
	"github.com/wattline/wattline/backend-go/internal/geom"
)

// Handle names an interactive control point of the single selected shape.
// Resize handles are compass directions naming the edges they move.
type Handle string

const (
	HandleN  Handle = "n"
	HandleS  Handle = "s"
	HandleE  Handle = "e"
	HandleW  Handle = "w"
	HandleNE Handle = "ne"
	HandleNW Handle = "nw"
	HandleSE Handle = "se"
	HandleSW Handle = "sw"

	HandleRotate Handle = "rotate"

	HandleStart   Handle = "start"
	HandleEnd     Handle = "end"
	HandleControl Handle = "control"
)

const (
	// RotateHandleOffset is the distance of the rotation handle above the
	// top edge, in logical units.
	RotateHandleOffset = 20.0

	// CurveBias is the perpendicular offset of a new curve's control point
	// from the chord midpoint.
	CurveBias = 40.0
)

func (h Handle) isNode() bool {
	return h == HandleStart || h == HandleEnd || h == HandleControl
}

// HandlePos is a handle and its position in logical coordinates.
type HandlePos struct {
	Handle Handle         `json:"handle"`
	Point  document.Point `json:"point"`
}

// Handles returns the handles of s, rotated with the shape. Rects expose
// eight resize handles, circles four axis handles, and both plus text get a
// rotation handle. Lines and arrows expose start and end nodes; curves add
// their control point.
func Handles(s document.Shape) []HandlePos {
	var hs []HandlePos
	switch v := s.(type) {
	case *document.Rect:
		b := geom.ShapeBounds(v)
		c := b.Center()
		hs = []HandlePos{
			{HandleNW, document.Point{X: b.MinX, Y: b.MinY}},
			{HandleN, document.Point{X: c.X, Y: b.MinY}},
			{HandleNE, document.Point{X: b.MaxX, Y: b.MinY}},
			{HandleE, document.Point{X: b.MaxX, Y: c.Y}},
			{HandleSE, document.Point{X: b.MaxX, Y: b.MaxY}},
			{HandleS, document.Point{X: c.X, Y: b.MaxY}},
			{HandleSW, document.Point{X: b.MinX, Y: b.MaxY}},
			{HandleW, document.Point{X: b.MinX, Y: c.Y}},
			{HandleRotate, document.Point{X: c.X, Y: b.MinY - RotateHandleOffset}},
		}
	case *document.Circle:
		hs = []HandlePos{
			{HandleN, document.Point{X: v.CX, Y: v.CY - v.RY}},
			{HandleE, document.Point{X: v.CX + v.RX, Y: v.CY}},
			{HandleS, document.Point{X: v.CX, Y: v.CY + v.RY}},
			{HandleW, document.Point{X: v.CX - v.RX, Y: v.CY}},
			{HandleRotate, document.Point{X: v.CX, Y: v.CY - v.RY - RotateHandleOffset}},
		}
	case *document.Text:
		b := geom.ShapeBounds(v)
		hs = []HandlePos{
			{HandleRotate, document.Point{X: b.Center().X, Y: b.MinY - RotateHandleOffset}},
		}
	case *document.Line:
		hs = []HandlePos{
			{HandleStart, document.Point{X: v.X1, Y: v.Y1}},
			{HandleEnd, document.Point{X: v.X2, Y: v.Y2}},
		}
	case *document.Arrow:
		hs = []HandlePos{
			{HandleStart, document.Point{X: v.X1, Y: v.Y1}},
			{HandleEnd, document.Point{X: v.X2, Y: v.Y2}},
		}
	case *document.Curve:
		hs = []HandlePos{
			{HandleStart, document.Point{X: v.X1, Y: v.Y1}},
			{HandleControl, document.Point{X: v.QX, Y: v.QY}},
			{HandleEnd, document.Point{X: v.X2, Y: v.Y2}},
		}
	default:
		panic(document.Unhandled(s))
	}

	if m := geom.Transform(s); !m.IsIdentity() {
		for i := range hs {
			hs[i].Point = m.Apply(hs[i].Point)
		}
	}
	return hs
}

func hasHandle(s document.Shape, h Handle) bool {
	for _, hp := range Handles(s) {
		if hp.Handle == h {
			return true
		}
	}
	return false
}

// resize moves the edges named by h to p, holding the opposite edges, and
// clamps every dimension to document.MinSize. p is in the shape's
// unrotated frame.
func resize(s document.Shape, h Handle, p document.Point) {
	switch v := s.(type) {
	case *document.Rect:
		dir := string(h)
		left, top := v.X, v.Y
		right, bottom := v.X+v.Width, v.Y+v.Height
		if strings.Contains(dir, "e") {
			right = p.X
		}
		if strings.Contains(dir, "w") {
			left = p.X
		}
		if strings.Contains(dir, "s") {
			bottom = p.Y
		}
		if strings.Contains(dir, "n") {
			top = p.Y
		}
		if right-left < document.MinSize {
			if strings.Contains(dir, "w") {
				left = right - document.MinSize
			} else {
				right = left + document.MinSize
			}
		}
		if bottom-top < document.MinSize {
			if strings.Contains(dir, "n") {
				top = bottom - document.MinSize
			} else {
				bottom = top + document.MinSize
			}
		}
		v.X, v.Y = left, top
		v.Width, v.Height = right-left, bottom-top
	case *document.Circle:
		switch h {
		case HandleN, HandleS:
			v.RY = math.Abs(p.Y - v.CY)
		case HandleE, HandleW:
			v.RX = math.Abs(p.X - v.CX)
		}
		v.RX = max(v.RX, document.MinSize)
		v.RY = max(v.RY, document.MinSize)
	case *document.Line, *document.Arrow, *document.Curve, *document.Text:
		// no resize handles
	default:
		panic(document.Unhandled(s))
	}
}

// moveNode overwrites the endpoint or control point named by h.
func moveNode(s document.Shape, h Handle, p document.Point) {
	switch v := s.(type) {
	case *document.Line:
		switch h {
		case HandleStart:
			v.X1, v.Y1 = p.X, p.Y
		case HandleEnd:
			v.X2, v.Y2 = p.X, p.Y
		}
	case *document.Arrow:
		switch h {
		case HandleStart:
			v.X1, v.Y1 = p.X, p.Y
		case HandleEnd:
			v.X2, v.Y2 = p.X, p.Y
		}
	case *document.Curve:
		switch h {
		case HandleStart:
			v.X1, v.Y1 = p.X, p.Y
		case HandleControl:
			v.QX, v.QY = p.X, p.Y
		case HandleEnd:
			v.X2, v.Y2 = p.X, p.Y
		}
	case *document.Rect, *document.Circle, *document.Text:
		// no node handles
	default:
		panic(document.Unhandled(s))
	}
}

// curveControl places a new curve's control point CurveBias units off the
// chord midpoint, to the left of the direction of travel.
func curveControl(a, b document.Point) document.Point {
	mid := geom.Midpoint(a, b)
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return mid
	}
	return document.Point{X: mid.X + dy/l*CurveBias, Y: mid.Y - dx/l*CurveBias}
}

// sameShape reports whether two shapes hold identical values.
func sameShape(a, b document.Shape) bool {
	switch x := a.(type) {
	case *document.Rect:
		y, ok := b.(*document.Rect)
		return ok && *x == *y
	case *document.Circle:
		y, ok := b.(*document.Circle)
		return ok && *x == *y
	case *document.Line:
		y, ok := b.(*document.Line)
		return ok && *x == *y
	case *document.Arrow:
		y, ok := b.(*document.Arrow)
		return ok && *x == *y
	case *document.Curve:
		y, ok := b.(*document.Curve)
		return ok && *x == *y
	case *document.Text:
		y, ok := b.(*document.Text)
		return ok && *x == *y
	default:
		panic(document.Unhandled(a))
	}
}
