package geom

import (
	"math"
	"unicode/utf8"

	"github.com/wattline/wattline/backend-go/internal/document"
)

// TextWidthFactor is the per-character width of text as a fraction of the
// font size. Text is not measured; this heuristic is good enough for bounds.
const TextWidthFactor = 0.6

// TextWidth estimates the rendered width of a text shape.
func TextWidth(t *document.Text) float64 {
	return float64(utf8.RuneCountInString(t.Text)) * t.FontSize * TextWidthFactor
}

// ShapeBounds returns the unrotated bounding box of one shape. The control
// point of a curve is included, so curve bounds are loose but never too small.
func ShapeBounds(s document.Shape) Bounds {
	switch v := s.(type) {
	case *document.Rect:
		return Bounds{MinX: v.X, MinY: v.Y, MaxX: v.X + v.Width, MaxY: v.Y + v.Height}
	case *document.Circle:
		return Bounds{MinX: v.CX - v.RX, MinY: v.CY - v.RY, MaxX: v.CX + v.RX, MaxY: v.CY + v.RY}
	case *document.Line:
		b, _ := BoundsOf(document.Point{X: v.X1, Y: v.Y1}, document.Point{X: v.X2, Y: v.Y2})
		return b
	case *document.Arrow:
		b, _ := BoundsOf(document.Point{X: v.X1, Y: v.Y1}, document.Point{X: v.X2, Y: v.Y2})
		return b
	case *document.Curve:
		b, _ := BoundsOf(
			document.Point{X: v.X1, Y: v.Y1},
			document.Point{X: v.QX, Y: v.QY},
			document.Point{X: v.X2, Y: v.Y2},
		)
		return b
	case *document.Text:
		return Bounds{MinX: v.X, MinY: v.Y - v.FontSize, MaxX: v.X + TextWidth(v), MaxY: v.Y}
	default:
		panic(document.Unhandled(s))
	}
}

// WorldBounds returns the bounding box of a shape after its rotation.
func WorldBounds(s document.Shape) Bounds {
	b := ShapeBounds(s)
	if r := s.Common().Rotation; r != 0 {
		return b.Transform(RotateAbout(r, b.Center()))
	}
	return b
}

// BoundingBox returns the combined bounds of all shapes. ok is false for an
// empty list.
func BoundingBox(shapes []document.Shape) (b Bounds, ok bool) {
	var acc accumulator
	for _, s := range shapes {
		acc.union(ShapeBounds(s))
	}
	return acc.b, acc.ok
}

// Center returns the centroid used as the rotation pivot of a shape.
func Center(s document.Shape) document.Point {
	switch v := s.(type) {
	case *document.Circle:
		return document.Point{X: v.CX, Y: v.CY}
	case *document.Rect, *document.Line, *document.Arrow, *document.Curve, *document.Text:
		return ShapeBounds(v).Center()
	default:
		panic(document.Unhandled(s))
	}
}

// Transform returns the render transform of a shape: its rotation about the
// centre, or the identity.
func Transform(s document.Shape) Matrix2D {
	r := s.Common().Rotation
	if r == 0 {
		return Identity()
	}
	return RotateAbout(r, Center(s))
}

// Anchor returns the reference position of a shape used when dragging:
// the top-left corner of a rect, the centre of a circle, the start point of
// line-like shapes and the baseline start of text.
func Anchor(s document.Shape) document.Point {
	switch v := s.(type) {
	case *document.Rect:
		return document.Point{X: v.X, Y: v.Y}
	case *document.Circle:
		return document.Point{X: v.CX, Y: v.CY}
	case *document.Line:
		return document.Point{X: v.X1, Y: v.Y1}
	case *document.Arrow:
		return document.Point{X: v.X1, Y: v.Y1}
	case *document.Curve:
		return document.Point{X: v.X1, Y: v.Y1}
	case *document.Text:
		return document.Point{X: v.X, Y: v.Y}
	default:
		panic(document.Unhandled(s))
	}
}

// TranslateShape moves a shape in place by (dx, dy).
func TranslateShape(s document.Shape, dx, dy float64) {
	switch v := s.(type) {
	case *document.Rect:
		v.X += dx
		v.Y += dy
	case *document.Circle:
		v.CX += dx
		v.CY += dy
	case *document.Line:
		v.X1 += dx
		v.Y1 += dy
		v.X2 += dx
		v.Y2 += dy
	case *document.Arrow:
		v.X1 += dx
		v.Y1 += dy
		v.X2 += dx
		v.Y2 += dy
	case *document.Curve:
		v.X1 += dx
		v.Y1 += dy
		v.QX += dx
		v.QY += dy
		v.X2 += dx
		v.Y2 += dy
	case *document.Text:
		v.X += dx
		v.Y += dy
	default:
		panic(document.Unhandled(s))
	}
}

// DistanceToShape returns how far p lies from the drawn geometry of a shape,
// in the shape's unrotated frame. Filled rects and circles report zero for
// interior points; outlines report the distance to the stroke.
func DistanceToShape(s document.Shape, p document.Point) float64 {
	if r := s.Common().Rotation; r != 0 {
		p = RotateAbout(r, Center(s)).Invert().Apply(p)
	}

	switch v := s.(type) {
	case *document.Rect, *document.Text:
		return ShapeBounds(v).distanceOutside(p)
	case *document.Circle:
		if v.RX <= 0 || v.RY <= 0 {
			return Distance(p, document.Point{X: v.CX, Y: v.CY})
		}
		nx, ny := (p.X-v.CX)/v.RX, (p.Y-v.CY)/v.RY
		n := math.Sqrt(nx*nx + ny*ny)
		if n <= 1 {
			return 0
		}
		return (n - 1) * min(v.RX, v.RY)
	case *document.Line:
		return DistanceToSegment(p, document.Point{X: v.X1, Y: v.Y1}, document.Point{X: v.X2, Y: v.Y2})
	case *document.Arrow:
		return DistanceToSegment(p, document.Point{X: v.X1, Y: v.Y1}, document.Point{X: v.X2, Y: v.Y2})
	case *document.Curve:
		return distanceToCurve(v, p)
	default:
		panic(document.Unhandled(s))
	}
}

func (b Bounds) distanceOutside(p document.Point) float64 {
	dx := max(b.MinX-p.X, 0, p.X-b.MaxX)
	dy := max(b.MinY-p.Y, 0, p.Y-b.MaxY)
	return Distance(document.Point{}, document.Point{X: dx, Y: dy})
}

// distanceToCurve approximates the curve by a polyline of 16 segments.
func distanceToCurve(c *document.Curve, p document.Point) float64 {
	const steps = 16
	p0 := document.Point{X: c.X1, Y: c.Y1}
	q := document.Point{X: c.QX, Y: c.QY}
	p1 := document.Point{X: c.X2, Y: c.Y2}

	best := Distance(p, p0)
	prev := p0
	for i := 1; i <= steps; i++ {
		next := QuadPoint(p0, q, p1, float64(i)/steps)
		best = min(best, DistanceToSegment(p, prev, next))
		prev = next
	}
	return best
}
