// Package geom is the geometry kernel of the symbol editor: coordinate
// transforms, snapping, distance and angle math, and per-shape bounds. Every
// function is pure.
package geom

import (
	"math"

	"github.com/wattline/wattline/backend-go/internal/document"
)

// Viewport is the on-screen rectangle of the canvas in physical pixels.
type Viewport struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ViewMatrix maps logical coordinates to pixels: the origin lands on the
// centre of the viewport and distances scale by zoom.
func ViewMatrix(vp Viewport, origin document.Point, zoom float64) Matrix2D {
	if zoom <= 0 {
		zoom = 1
	}
	cx := vp.Left + vp.Width/2
	cy := vp.Top + vp.Height/2
	return Translate(cx, cy).
		Multiply(Scale(zoom, zoom)).
		Multiply(Translate(-origin.X, -origin.Y))
}

// ToLogical maps a pointer position in pixels to logical space.
func ToLogical(pointer document.Point, vp Viewport, origin document.Point, zoom float64) document.Point {
	return ViewMatrix(vp, origin, zoom).Invert().Apply(pointer)
}

// ToScreen maps a logical point to pixels.
func ToScreen(p document.Point, vp Viewport, origin document.Point, zoom float64) document.Point {
	return ViewMatrix(vp, origin, zoom).Apply(p)
}

// Snap quantizes v to the nearest multiple of gridSize when enabled. Ties go
// to the even multiple, which keeps the result stable under repeated snapping.
func Snap(v, gridSize float64, enabled bool) float64 {
	if !enabled || gridSize <= 0 {
		return v
	}
	return math.RoundToEven(v/gridSize) * gridSize
}

// SnapPoint snaps each axis independently.
func SnapPoint(p document.Point, gridSize float64, enabled bool) document.Point {
	return document.Point{X: Snap(p.X, gridSize, enabled), Y: Snap(p.Y, gridSize, enabled)}
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b document.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Angle returns the direction from a to b in radians.
func Angle(a, b document.Point) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X)
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b document.Point) document.Point {
	return document.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// Sub returns a - b.
func Sub(a, b document.Point) document.Point {
	return document.Point{X: a.X - b.X, Y: a.Y - b.Y}
}

// Add returns a + b.
func Add(a, b document.Point) document.Point {
	return document.Point{X: a.X + b.X, Y: a.Y + b.Y}
}

// RotationAngle returns the rotation in whole degrees, normalized to
// [0, 360), that points a shape's top edge at the pointer when rotating
// around center.
func RotationAngle(center, pointer document.Point) float64 {
	deg := math.Atan2(pointer.Y-center.Y, pointer.X-center.X)*180/math.Pi + 90
	deg = math.Round(deg)
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// ArrowHead returns the two barb points of an arrowhead at tip for a segment
// coming from tail. length is the barb length; the barbs sit at ±30°.
func ArrowHead(tail, tip document.Point, length float64) (document.Point, document.Point) {
	angle := Angle(tail, tip)
	const spread = math.Pi / 6
	left := document.Point{
		X: tip.X - length*math.Cos(angle-spread),
		Y: tip.Y - length*math.Sin(angle-spread),
	}
	right := document.Point{
		X: tip.X - length*math.Cos(angle+spread),
		Y: tip.Y - length*math.Sin(angle+spread),
	}
	return left, right
}

// DistanceToSegment returns the distance from p to the segment a-b.
func DistanceToSegment(p, a, b document.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return Distance(p, a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return Distance(p, document.Point{X: a.X + t*dx, Y: a.Y + t*dy})
}

// QuadPoint evaluates a quadratic Bézier at t.
func QuadPoint(p0, q, p1 document.Point, t float64) document.Point {
	u := 1 - t
	return document.Point{
		X: u*u*p0.X + 2*u*t*q.X + t*t*p1.X,
		Y: u*u*p0.Y + 2*u*t*q.Y + t*t*p1.Y,
	}
}
