package geom

import "github.com/wattline/wattline/backend-go/internal/document"

// Bounds is an axis-aligned bounding box in logical units. A zero-size box
// is valid: a click-only rectangle has MinX == MaxX.
type Bounds struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

// BoundsOf returns the smallest box holding all points. ok is false when no
// points are given.
func BoundsOf(points ...document.Point) (b Bounds, ok bool) {
	var acc accumulator
	for _, p := range points {
		acc.add(p)
	}
	return acc.b, acc.ok
}

func (b Bounds) Width() float64  { return b.MaxX - b.MinX }
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Center returns the centre point of the box.
func (b Bounds) Center() document.Point {
	return document.Point{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
}

// Contains reports whether p lies inside the box or on its edge.
func (b Bounds) Contains(p document.Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Union returns the smallest box containing both boxes.
func (b Bounds) Union(other Bounds) Bounds {
	return Bounds{
		MinX: min(b.MinX, other.MinX),
		MinY: min(b.MinY, other.MinY),
		MaxX: max(b.MaxX, other.MaxX),
		MaxY: max(b.MaxY, other.MaxY),
	}
}

// Pad grows the box by d on every side.
func (b Bounds) Pad(d float64) Bounds {
	return Bounds{MinX: b.MinX - d, MinY: b.MinY - d, MaxX: b.MaxX + d, MaxY: b.MaxY + d}
}

// Transform maps the four corners through m and returns their bounding box.
func (b Bounds) Transform(m Matrix2D) Bounds {
	out, _ := BoundsOf(
		m.Apply(document.Point{X: b.MinX, Y: b.MinY}),
		m.Apply(document.Point{X: b.MaxX, Y: b.MinY}),
		m.Apply(document.Point{X: b.MaxX, Y: b.MaxY}),
		m.Apply(document.Point{X: b.MinX, Y: b.MaxY}),
	)
	return out
}

type accumulator struct {
	b  Bounds
	ok bool
}

func (a *accumulator) add(p document.Point) {
	if !a.ok {
		a.b = Bounds{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
		a.ok = true
		return
	}
	a.b.MinX = min(a.b.MinX, p.X)
	a.b.MinY = min(a.b.MinY, p.Y)
	a.b.MaxX = max(a.b.MaxX, p.X)
	a.b.MaxY = max(a.b.MaxY, p.Y)
}

func (a *accumulator) union(b Bounds) {
	if !a.ok {
		a.b, a.ok = b, true
		return
	}
	a.b = a.b.Union(b)
}
