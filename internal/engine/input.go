package engine

import (
	"strings"

	"github.com/wattline/wattline/backend-go/internal/document"
	"github.com/wattline/wattline/backend-go/internal/geom"
)

// Target identifies the element a pointer went down on, as reported by the
// renderer. An empty ShapeID means the canvas background.
type Target struct {
	ShapeID string `json:"shapeId,omitempty"`
	Handle  Handle `json:"handle,omitempty"`
}

// PointerEvent is a pointer position in logical coordinates. Adapters
// convert from pixels with geom.ToLogical before calling the engine.
type PointerEvent struct {
	Point document.Point `json:"point"`
	Shift bool           `json:"shift,omitempty"`
	// Target is the element under the pointer when the renderer knows it.
	// When nil the engine hit-tests geometrically.
	Target *Target `json:"target,omitempty"`
}

// KeyEvent is a key press. Key follows the DOM KeyboardEvent.key values.
type KeyEvent struct {
	Key         string `json:"key"`
	Ctrl        bool   `json:"ctrl,omitempty"`
	Meta        bool   `json:"meta,omitempty"`
	Shift       bool   `json:"shift,omitempty"`
	InTextInput bool   `json:"inTextInput,omitempty"`
}

var toolKeys = map[string]Tool{
	"v": ToolSelect,
	"r": ToolRect,
	"c": ToolCircle,
	"l": ToolLine,
	"a": ToolArrow,
	"q": ToolCurve,
	"t": ToolText,
}

// PointerDown starts a gesture. With the select tool the target decides
// between node editing, resizing or rotating, dragging, and clearing the
// selection, in that order of priority. Any other tool starts drawing.
func (e *Engine) PointerDown(ev PointerEvent) {
	if e.mode != ModeIdle {
		e.endGesture()
	}
	if e.tool != ToolSelect {
		e.beginDraw(ev.Point)
		return
	}

	var t Target
	if ev.Target != nil {
		t = *ev.Target
	} else {
		t = e.HitTest(ev.Point)
	}

	if t.Handle != "" {
		if s, ok := e.single(); ok && s.Common().ID == t.ShapeID && hasHandle(s, t.Handle) {
			e.beginHandle(s, t.Handle)
			return
		}
	}

	if t.ShapeID == "" {
		if !ev.Shift {
			e.selection = make(map[string]struct{})
		}
		return
	}

	s, _ := e.doc.Find(t.ShapeID)
	if s == nil {
		return
	}
	id := s.Common().ID
	switch {
	case ev.Shift && e.isSelected(id):
		delete(e.selection, id)
		return
	case ev.Shift:
		e.selection[id] = struct{}{}
	case !e.isSelected(id):
		e.selection = map[string]struct{}{id: {}}
	}

	e.mode = ModeDragging
	e.refID = id
	e.downAt = ev.Point
	e.grab = geom.Sub(ev.Point, geom.Anchor(s))
	e.pending = e.capture()
}

// PointerMove updates the gesture in progress.
func (e *Engine) PointerMove(ev PointerEvent) {
	switch e.mode {
	case ModeDrawing:
		e.updateDraft(e.snapPoint(ev.Point))
	case ModeDragging:
		e.drag(ev.Point)
	case ModeResizing, ModeRotating, ModeEditingNode:
		e.editHandle(ev.Point)
	}
}

// PointerUp ends the gesture. A drawing is committed and becomes the sole
// selection.
func (e *Engine) PointerUp(ev PointerEvent) {
	if e.mode == ModeDrawing {
		e.updateDraft(e.snapPoint(ev.Point))
		e.commitDraft()
	} else {
		e.PointerMove(ev)
	}
	e.endGesture()
}

// Blur ends the gesture like a pointer-up at the last known position.
func (e *Engine) Blur() {
	if e.mode == ModeDrawing {
		e.commitDraft()
	}
	e.endGesture()
}

// HandleKey applies a keyboard shortcut and reports whether it was consumed.
// Keys typed into a text input are left alone.
func (e *Engine) HandleKey(ev KeyEvent) bool {
	if ev.InTextInput {
		return false
	}
	key := strings.ToLower(ev.Key)

	if ev.Ctrl || ev.Meta {
		switch key {
		case "a":
			e.SelectAll()
			return true
		case "z":
			e.Undo()
			return true
		}
		return false
	}

	switch key {
	case "delete", "backspace":
		e.DeleteSelection()
		return true
	case "escape":
		e.endGesture()
		e.selection = make(map[string]struct{})
		return true
	case "g":
		e.ToggleGrid()
		return true
	case "s":
		e.ToggleSnap()
		return true
	}
	if t, ok := toolKeys[key]; ok {
		_ = e.SetTool(t)
		return true
	}
	return false
}

func (e *Engine) snapPoint(p document.Point) document.Point {
	return geom.SnapPoint(p, e.gridSize, e.snap)
}

// capture deep-copies the shapes for a history entry pushed later.
func (e *Engine) capture() []document.Shape {
	snap := document.CloneShapes(e.doc.Shapes)
	if snap == nil {
		snap = []document.Shape{}
	}
	return snap
}

// commitPending pushes the snapshot taken at pointer-down. It runs on the
// first real mutation of a gesture so gestures that change nothing leave no
// history entry.
func (e *Engine) commitPending() {
	if e.pending != nil {
		e.history.Push(e.pending)
		e.pending = nil
	}
	e.changed = true
}

func (e *Engine) endGesture() {
	if e.changed {
		e.notify()
	}
	e.resetGesture()
}

func (e *Engine) resetGesture() {
	e.mode = ModeIdle
	e.draft = nil
	e.refID = ""
	e.handle = ""
	e.pending = nil
	e.changed = false
}

// --- Drawing ---

func (e *Engine) beginDraw(p document.Point) {
	p = e.snapPoint(p)
	s, err := document.NewShape(document.Kind(e.tool), p)
	if err != nil {
		return
	}
	if e.tool == ToolText {
		e.snapshot()
		e.doc.Shapes = append(e.doc.Shapes, s)
		e.selection = map[string]struct{}{s.Common().ID: {}}
		e.notify()
		return
	}
	e.mode = ModeDrawing
	e.draft = s
	e.anchor = p
	e.pending = e.capture()
}

func (e *Engine) updateDraft(p document.Point) {
	a := e.anchor
	switch d := e.draft.(type) {
	case *document.Rect:
		d.X, d.Y = min(a.X, p.X), min(a.Y, p.Y)
		d.Width, d.Height = max(a.X, p.X)-d.X, max(a.Y, p.Y)-d.Y
	case *document.Circle:
		r := geom.Distance(a, p)
		d.RX, d.RY = r, r
	case *document.Line:
		d.X2, d.Y2 = p.X, p.Y
	case *document.Arrow:
		d.X2, d.Y2 = p.X, p.Y
	case *document.Curve:
		d.X2, d.Y2 = p.X, p.Y
		q := curveControl(a, p)
		d.QX, d.QY = q.X, q.Y
	case *document.Text, nil:
	default:
		panic(document.Unhandled(d))
	}
}

func (e *Engine) commitDraft() {
	if e.draft == nil {
		return
	}
	e.commitPending()
	e.doc.Shapes = append(e.doc.Shapes, e.draft)
	e.selection = map[string]struct{}{e.draft.Common().ID: {}}
	e.draft = nil
}

// --- Dragging ---

// drag moves the selection so the reference shape's anchor sits at the
// snapped pointer minus the grab offset. The delta is derived from the
// reference shape's current geometry on every move, never accumulated.
func (e *Engine) drag(p document.Point) {
	ref, _ := e.doc.Find(e.refID)
	if ref == nil {
		e.resetGesture()
		return
	}
	if p == e.downAt && e.pending != nil {
		// A click without movement must not snap the selection.
		return
	}
	target := e.snapPoint(geom.Sub(p, e.grab))
	delta := geom.Sub(target, geom.Anchor(ref))
	if delta == (document.Point{}) {
		return
	}
	e.commitPending()
	for _, s := range e.doc.Shapes {
		if e.isSelected(s.Common().ID) {
			geom.TranslateShape(s, delta.X, delta.Y)
		}
	}
}

// --- Handles ---

func (e *Engine) beginHandle(s document.Shape, h Handle) {
	switch {
	case h.isNode():
		e.mode = ModeEditingNode
	case h == HandleRotate:
		e.mode = ModeRotating
	default:
		e.mode = ModeResizing
	}
	e.refID = s.Common().ID
	e.handle = h
	e.pivot = geom.Center(s)
	e.pending = e.capture()
}

// editHandle applies a resize, rotation or node move. Resizing snaps the
// pointer; node edits use it as is.
func (e *Engine) editHandle(p document.Point) {
	s, _ := e.doc.Find(e.refID)
	if s == nil {
		e.resetGesture()
		return
	}
	before := s.Clone()

	switch e.mode {
	case ModeResizing:
		resize(s, e.handle, e.unrotate(s, e.snapPoint(p)))
	case ModeRotating:
		s.Common().Rotation = geom.RotationAngle(geom.Center(s), p)
	case ModeEditingNode:
		moveNode(s, e.handle, e.unrotate(s, p))
	}

	if !sameShape(before, s) {
		e.commitPending()
	}
}

// unrotate maps p into the unrotated frame of s around the pivot captured
// when the gesture began.
func (e *Engine) unrotate(s document.Shape, p document.Point) document.Point {
	r := s.Common().Rotation
	if r == 0 {
		return p
	}
	return geom.RotateAbout(r, e.pivot).Invert().Apply(p)
}
