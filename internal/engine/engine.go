package engine

import (
	"fmt"

	"github.com/wattline/wattline/backend-go/internal/document"
	"github.com/wattline/wattline/backend-go/internal/geom"
	"github.com/wattline/wattline/backend-go/internal/pathdata"
)

// Tool is the active editor tool. Drawing tools share their name with the
// shape kind they create.
type Tool string

const (
	ToolSelect Tool = "select"
	ToolRect   Tool = "rect"
	ToolCircle Tool = "circle"
	ToolLine   Tool = "line"
	ToolArrow  Tool = "arrow"
	ToolCurve  Tool = "curve"
	ToolText   Tool = "text"
)

// Valid reports whether t names a known tool.
func (t Tool) Valid() bool {
	switch t {
	case ToolSelect, ToolRect, ToolCircle, ToolLine, ToolArrow, ToolCurve, ToolText:
		return true
	}
	return false
}

// Mode is the state of the manipulation state machine.
type Mode string

const (
	ModeIdle        Mode = "idle"
	ModeDrawing     Mode = "drawing"
	ModeDragging    Mode = "dragging"
	ModeResizing    Mode = "resizing"
	ModeRotating    Mode = "rotating"
	ModeEditingNode Mode = "editingNode"
)

const (
	DefaultGridSize = 10.0
	MinZoom         = 0.1
	MaxZoom         = 10.0

	// MigrationThreshold is how far from (0,0) the content centroid of a
	// loaded document must be before its origin is moved onto it.
	MigrationThreshold = 50.0
)

// Engine owns one editing session: the document, the selection, view
// settings, undo history and the transient state of the gesture in progress.
// It is not safe for concurrent use; callers serialize events.
type Engine struct {
	doc document.Document

	tool        Tool
	selection   map[string]struct{}
	zoom        float64
	gridSize    float64
	gridVisible bool
	snap        bool
	history     *History

	// Gesture state, reset on pointer-up.
	mode    Mode
	draft   document.Shape
	anchor  document.Point // snapped drawing anchor
	refID   string         // drag reference shape, or the shape under a handle
	downAt  document.Point // pointer at pointer-down
	grab    document.Point // pointer minus reference anchor at pointer-down
	handle  Handle
	pivot   document.Point // rotation centre of the handled shape at pointer-down
	pending []document.Shape
	changed bool

	overlay  string
	migrated bool
	onChange func(document.Document)
}

// NewEngine creates an engine with an empty document.
func NewEngine() *Engine {
	return &Engine{
		doc:         document.Document{Shapes: []document.Shape{}},
		tool:        ToolSelect,
		selection:   make(map[string]struct{}),
		zoom:        1,
		gridSize:    DefaultGridSize,
		gridVisible: true,
		snap:        true,
		history:     NewHistory(DefaultHistoryLimit),
		mode:        ModeIdle,
	}
}

// OnChange registers fn to receive a copy of the document whenever its
// shapes or origin change. Changes made during a gesture are reported when
// the gesture ends.
func (e *Engine) OnChange(fn func(document.Document)) {
	e.onChange = fn
}

func (e *Engine) notify() {
	e.changed = false
	if e.onChange != nil {
		e.onChange(e.doc.Clone())
	}
}

// --- Document ---

// LoadDocument replaces the session document. Selection, history and any
// gesture are reset and the origin migration becomes eligible again.
func (e *Engine) LoadDocument(doc document.Document) {
	e.doc = doc.Clone()
	if e.doc.Shapes == nil {
		e.doc.Shapes = []document.Shape{}
	}
	document.AssignIDs(nil, e.doc.Shapes)
	e.selection = make(map[string]struct{})
	e.history.Clear()
	e.resetGesture()
	e.migrated = false
}

// Layout runs the one-shot legacy origin migration for the loaded document.
// A non-empty document with a zero origin whose content centroid lies more
// than MigrationThreshold units from (0,0) gets its origin moved onto that
// centroid. Later calls do nothing until the next LoadDocument. Callers run it
// only for documents that were stored without an origin. It reports whether
// the origin changed.
func (e *Engine) Layout() bool {
	if e.migrated {
		return false
	}
	e.migrated = true

	if len(e.doc.Shapes) == 0 || e.doc.Origin != (document.Point{}) {
		return false
	}
	b, ok := geom.BoundingBox(e.doc.Shapes)
	if !ok {
		return false
	}
	c := b.Center()
	if geom.Distance(c, document.Point{}) <= MigrationThreshold {
		return false
	}
	e.doc.Origin = c
	e.notify()
	return true
}

// Document returns a deep copy of the current document.
func (e *Engine) Document() document.Document {
	return e.doc.Clone()
}

// Shape returns a copy of the shape with the given id.
func (e *Engine) Shape(id string) (document.Shape, bool) {
	s, _ := e.doc.Find(id)
	if s == nil {
		return nil, false
	}
	return s.Clone(), true
}

// --- View settings ---

func (e *Engine) Tool() Tool               { return e.tool }
func (e *Engine) Mode() Mode               { return e.mode }
func (e *Engine) Zoom() float64            { return e.zoom }
func (e *Engine) GridSize() float64        { return e.gridSize }
func (e *Engine) GridVisible() bool        { return e.gridVisible }
func (e *Engine) SnapEnabled() bool        { return e.snap }
func (e *Engine) Origin() document.Point   { return e.doc.Origin }
func (e *Engine) ReferenceOverlay() string { return e.overlay }
func (e *Engine) History() *History        { return e.history }

// SetReferenceOverlay sets path data drawn as a dashed guide. It is never
// converted into shapes.
func (e *Engine) SetReferenceOverlay(d string) { e.overlay = d }

// SetTool switches the active tool. An unfinished drawing is discarded.
func (e *Engine) SetTool(t Tool) error {
	if !t.Valid() {
		return fmt.Errorf("unknown tool: %s", t)
	}
	if e.mode == ModeDrawing {
		e.resetGesture()
	}
	e.tool = t
	return nil
}

// SetZoom sets the zoom factor, clamped to [MinZoom, MaxZoom].
func (e *Engine) SetZoom(z float64) {
	e.zoom = min(max(z, MinZoom), MaxZoom)
}

// SetGridSize sets the snapping grid. Non-positive sizes are ignored.
func (e *Engine) SetGridSize(g float64) {
	if g > 0 {
		e.gridSize = g
	}
}

func (e *Engine) SetGridVisible(v bool) { e.gridVisible = v }
func (e *Engine) SetSnap(v bool)        { e.snap = v }
func (e *Engine) ToggleGrid()           { e.gridVisible = !e.gridVisible }
func (e *Engine) ToggleSnap()           { e.snap = !e.snap }

// SetHistoryLimit replaces the undo history with an empty one of the given
// capacity.
func (e *Engine) SetHistoryLimit(n int) {
	e.history = NewHistory(n)
}

// SetOrigin moves the logical origin. Shapes are not moved.
func (e *Engine) SetOrigin(p document.Point) {
	if e.doc.Origin == p {
		return
	}
	e.doc.Origin = p
	e.notify()
}

// --- Selection ---

// Selection returns the selected ids in document order.
func (e *Engine) Selection() []string {
	ids := make([]string, 0, len(e.selection))
	for _, s := range e.doc.Shapes {
		if _, ok := e.selection[s.Common().ID]; ok {
			ids = append(ids, s.Common().ID)
		}
	}
	return ids
}

// SetSelection replaces the selection. Unknown ids are dropped.
func (e *Engine) SetSelection(ids []string) {
	e.selection = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if s, _ := e.doc.Find(id); s != nil {
			e.selection[id] = struct{}{}
		}
	}
}

// SelectAll selects every shape.
func (e *Engine) SelectAll() {
	for _, s := range e.doc.Shapes {
		e.selection[s.Common().ID] = struct{}{}
	}
}

func (e *Engine) isSelected(id string) bool {
	_, ok := e.selection[id]
	return ok
}

// single returns the only selected shape.
func (e *Engine) single() (document.Shape, bool) {
	if len(e.selection) != 1 {
		return nil, false
	}
	for id := range e.selection {
		if s, _ := e.doc.Find(id); s != nil {
			return s, true
		}
	}
	return nil, false
}

// --- Edits ---

// snapshot records the current shapes in history before a mutation.
func (e *Engine) snapshot() {
	e.history.Push(document.CloneShapes(e.doc.Shapes))
}

// Undo restores the most recent snapshot and clears the selection. It
// reports false when there is nothing to undo.
func (e *Engine) Undo() bool {
	prev, ok := e.history.Pop()
	if !ok {
		return false
	}
	e.resetGesture()
	if prev == nil {
		prev = []document.Shape{}
	}
	e.doc.Shapes = prev
	e.selection = make(map[string]struct{})
	e.notify()
	return true
}

// Import parses path data and appends the resulting shapes. Shapes parsed
// before a syntax error are still imported; the error is returned alongside
// the count.
func (e *Engine) Import(d string) (int, error) {
	shapes, err := pathdata.Parse(d)
	e.AddShapes(shapes)
	return len(shapes), err
}

// AddShapes appends shapes as one undoable step.
func (e *Engine) AddShapes(shapes []document.Shape) {
	if len(shapes) == 0 {
		return
	}
	added := document.CloneShapes(shapes)
	document.AssignIDs(e.doc.Shapes, added)
	e.snapshot()
	e.doc.Shapes = append(e.doc.Shapes, added...)
	e.notify()
}

// DeleteSelection removes the selected shapes.
func (e *Engine) DeleteSelection() bool {
	if len(e.selection) == 0 {
		return false
	}
	e.snapshot()
	kept := make([]document.Shape, 0, len(e.doc.Shapes))
	for _, s := range e.doc.Shapes {
		if !e.isSelected(s.Common().ID) {
			kept = append(kept, s)
		}
	}
	e.doc.Shapes = kept
	e.selection = make(map[string]struct{})
	e.notify()
	return true
}

// ClearAll removes every shape.
func (e *Engine) ClearAll() bool {
	if len(e.doc.Shapes) == 0 {
		return false
	}
	e.resetGesture()
	e.snapshot()
	e.doc.Shapes = []document.Shape{}
	e.selection = make(map[string]struct{})
	e.notify()
	return true
}

// StylePatch carries optional style changes for the selection.
type StylePatch struct {
	Stroke      *string  `json:"stroke,omitempty"`
	StrokeWidth *float64 `json:"strokeWidth,omitempty"`
	Fill        *string  `json:"fill,omitempty"`
	FontSize    *float64 `json:"fontSize,omitempty"`
}

// SetStyle applies p to every selected shape as one undoable step. Stroke
// widths below 1 and non-positive font sizes are ignored.
func (e *Engine) SetStyle(p StylePatch) bool {
	before := document.CloneShapes(e.doc.Shapes)
	changed := false
	for _, s := range e.doc.Shapes {
		if !e.isSelected(s.Common().ID) {
			continue
		}
		b := s.Common()
		if p.Stroke != nil && *p.Stroke != "" && b.Stroke != *p.Stroke {
			b.Stroke = *p.Stroke
			changed = true
		}
		if p.StrokeWidth != nil && *p.StrokeWidth >= 1 && b.StrokeWidth != *p.StrokeWidth {
			b.StrokeWidth = *p.StrokeWidth
			changed = true
		}
		if p.Fill != nil && *p.Fill != "" && b.Fill != *p.Fill {
			b.Fill = *p.Fill
			changed = true
		}
		if t, ok := s.(*document.Text); ok && p.FontSize != nil && *p.FontSize > 0 && t.FontSize != *p.FontSize {
			t.FontSize = *p.FontSize
			changed = true
		}
	}
	if changed {
		e.history.Push(before)
		e.notify()
	}
	return changed
}

// UpdateText replaces the content of a text shape. Missing ids and non-text
// shapes are ignored.
func (e *Engine) UpdateText(id, text string) bool {
	s, _ := e.doc.Find(id)
	t, ok := s.(*document.Text)
	if !ok || t.Text == text {
		return false
	}
	e.snapshot()
	t.Text = text
	e.notify()
	return true
}

// --- Export ---

func (e *Engine) exportOrigin(relative bool) document.Point {
	if relative {
		return e.doc.Origin
	}
	return document.Point{}
}

// ExportCombined returns all path data as one string.
func (e *Engine) ExportCombined(relative bool) string {
	return pathdata.Combined(e.doc.Shapes, e.exportOrigin(relative))
}

// ExportAnnotated returns the labelled per-shape listing.
func (e *Engine) ExportAnnotated(relative bool) string {
	return pathdata.Annotated(e.doc.Shapes, e.exportOrigin(relative))
}

// ExportSVG returns a standalone SVG document. Relative export centres a
// width x height viewBox on the origin; absolute export fits the content.
func (e *Engine) ExportSVG(relative bool, width, height float64) string {
	opts := pathdata.SVGOptions{Width: width, Height: height}
	if relative {
		o := e.doc.Origin
		opts.Origin = &o
	}
	return pathdata.SVG(e.doc.Shapes, opts)
}
