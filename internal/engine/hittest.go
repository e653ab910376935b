package engine

import (
	"github.com/wattline/wattline/backend-go/internal/document"
	"github.com/wattline/wattline/backend-go/internal/geom"
)

// HitTolerance is the pick radius in screen pixels.
const HitTolerance = 6.0

// HitTest finds what lies under p for callers that cannot report element
// identity. Priority matches pointer-down: node handles, then resize and
// rotate handles (single selection only), then the topmost shape body.
// A miss returns the zero Target.
func (e *Engine) HitTest(p document.Point) Target {
	tol := HitTolerance / e.zoom

	if s, ok := e.single(); ok {
		hs := Handles(s)
		for _, h := range hs {
			if h.Handle.isNode() && geom.Distance(h.Point, p) <= tol {
				return Target{ShapeID: s.Common().ID, Handle: h.Handle}
			}
		}
		for _, h := range hs {
			if !h.Handle.isNode() && geom.Distance(h.Point, p) <= tol {
				return Target{ShapeID: s.Common().ID, Handle: h.Handle}
			}
		}
	}

	// Front to back: later shapes paint over earlier ones.
	for i := len(e.doc.Shapes) - 1; i >= 0; i-- {
		s := e.doc.Shapes[i]
		if geom.DistanceToShape(s, p) <= tol+s.Common().StrokeWidth/2 {
			return Target{ShapeID: s.Common().ID}
		}
	}
	return Target{}
}

// SelectionBounds returns the combined world bounds of the selection. ok is
// false when nothing is selected.
func (e *Engine) SelectionBounds() (geom.Bounds, bool) {
	var out geom.Bounds
	found := false
	for _, s := range e.doc.Shapes {
		if !e.isSelected(s.Common().ID) {
			continue
		}
		b := geom.WorldBounds(s)
		if !found {
			out, found = b, true
			continue
		}
		out = out.Union(b)
	}
	return out, found
}
