package engine

import (
	"encoding/json"

	"github.com/wattline/wattline/backend-go/internal/document"
	"github.com/wattline/wattline/backend-go/internal/geom"
	"github.com/wattline/wattline/backend-go/internal/pathdata"
)

// PathCommand is one path segment: the command letter followed by its
// absolute operands, e.g. {"M", x, y}.
type PathCommand []interface{}

// DrawCommand represents a single drawing operation for the frontend to execute.
// The frontend receives a list of these and executes them on a Canvas2D context
// after applying the view transform.
type DrawCommand struct {
	Op          string        `json:"op"`                  // "path", "text", "guide", "handle"
	ShapeID     string        `json:"shapeId,omitempty"`   // For hit correlation
	Handle      Handle        `json:"handle,omitempty"`    // Handle name for "handle" ops
	Draft       bool          `json:"draft,omitempty"`     // Shape being drawn, not yet committed
	Transform   []float64     `json:"transform,omitempty"` // [a, b, c, d, e, f] rotation about the centre
	Path        []PathCommand `json:"path,omitempty"`      // Path data for "path" ops
	D           string        `json:"d,omitempty"`         // Raw path data for "guide" ops
	X           float64       `json:"x,omitempty"`         // Text baseline or handle centre
	Y           float64       `json:"y,omitempty"`
	Text        string        `json:"text,omitempty"`
	FontSize    float64       `json:"fontSize,omitempty"`
	Size        float64       `json:"size,omitempty"`        // Handle side length in logical units
	Fill        string        `json:"fill,omitempty"`        // Fill color
	Stroke      string        `json:"stroke,omitempty"`      // Stroke color
	StrokeWidth float64       `json:"strokeWidth,omitempty"` // Stroke width
	Dash        []float64     `json:"dash,omitempty"`        // Line dash pattern
}

// Frame is everything the frontend needs to paint the canvas.
type Frame struct {
	Commands    []DrawCommand  `json:"commands"`
	Origin      document.Point `json:"origin"`
	Zoom        float64        `json:"zoom"`
	GridSize    float64        `json:"gridSize"`
	GridVisible bool           `json:"gridVisible"`
	Snap        bool           `json:"snap"`
	Tool        Tool           `json:"tool"`
	Mode        Mode           `json:"mode"`
	Selection   []string       `json:"selection"`
	CanUndo     bool           `json:"canUndo"`
}

const (
	// HandleSize is the on-screen side length of a handle in pixels.
	HandleSize = 8.0

	GuideColor  = "#3b82f6"
	HandleColor = "#2563eb"
)

var guideDash = []float64{6, 4}

// Render compiles the current state into a frame. Commands are in painter's
// order: shapes with derived arrowheads, the draft shape, the reference
// overlay, then the handles of a single selection.
func (e *Engine) Render() Frame {
	commands := make([]DrawCommand, 0, len(e.doc.Shapes))
	for _, s := range e.doc.Shapes {
		commands = compileShape(s, false, commands)
	}
	if e.draft != nil {
		commands = compileShape(e.draft, true, commands)
	}
	if e.overlay != "" {
		commands = append(commands, DrawCommand{
			Op:          "guide",
			D:           e.overlay,
			Stroke:      GuideColor,
			StrokeWidth: 1,
			Dash:        guideDash,
		})
	}
	if s, ok := e.single(); ok && e.mode != ModeDrawing {
		for _, h := range Handles(s) {
			commands = append(commands, DrawCommand{
				Op:          "handle",
				ShapeID:     s.Common().ID,
				Handle:      h.Handle,
				X:           h.Point.X,
				Y:           h.Point.Y,
				Size:        HandleSize / e.zoom,
				Fill:        "#ffffff",
				Stroke:      HandleColor,
				StrokeWidth: 1 / e.zoom,
			})
		}
	}

	return Frame{
		Commands:    commands,
		Origin:      e.doc.Origin,
		Zoom:        e.zoom,
		GridSize:    e.gridSize,
		GridVisible: e.gridVisible,
		Snap:        e.snap,
		Tool:        e.tool,
		Mode:        e.mode,
		Selection:   e.Selection(),
		CanUndo:     e.history.Len() > 0,
	}
}

// compileShape appends the draw commands of one shape. Arrowheads are
// derived here and never stored.
func compileShape(s document.Shape, draft bool, commands []DrawCommand) []DrawCommand {
	base := s.Common()
	var transform []float64
	if m := geom.Transform(s); !m.IsIdentity() {
		transform = m.ToSlice()
	}

	cmd := DrawCommand{
		Op:          "path",
		ShapeID:     base.ID,
		Draft:       draft,
		Transform:   transform,
		Fill:        base.Fill,
		Stroke:      base.Stroke,
		StrokeWidth: base.StrokeWidth,
	}

	switch v := s.(type) {
	case *document.Rect:
		cmd.Path = []PathCommand{
			{"M", v.X, v.Y},
			{"L", v.X + v.Width, v.Y},
			{"L", v.X + v.Width, v.Y + v.Height},
			{"L", v.X, v.Y + v.Height},
			{"Z"},
		}
	case *document.Circle:
		cmd.Path = ellipsePath(v.CX, v.CY, v.RX, v.RY)
	case *document.Line:
		cmd.Path = []PathCommand{{"M", v.X1, v.Y1}, {"L", v.X2, v.Y2}}
	case *document.Arrow:
		cmd.Path = []PathCommand{{"M", v.X1, v.Y1}, {"L", v.X2, v.Y2}}
		tip := document.Point{X: v.X2, Y: v.Y2}
		left, right := geom.ArrowHead(document.Point{X: v.X1, Y: v.Y1}, tip, pathdata.ArrowHeadLength)
		commands = append(commands, cmd)
		cmd = DrawCommand{
			Op:          "path",
			ShapeID:     base.ID,
			Draft:       draft,
			Transform:   transform,
			Fill:        base.Stroke,
			Stroke:      base.Stroke,
			StrokeWidth: base.StrokeWidth,
			Path: []PathCommand{
				{"M", tip.X, tip.Y},
				{"L", left.X, left.Y},
				{"L", right.X, right.Y},
				{"Z"},
			},
		}
	case *document.Curve:
		cmd.Path = []PathCommand{{"M", v.X1, v.Y1}, {"Q", v.QX, v.QY, v.X2, v.Y2}}
	case *document.Text:
		cmd.Op = "text"
		cmd.X, cmd.Y = v.X, v.Y
		cmd.Text = v.Text
		cmd.FontSize = v.FontSize
	default:
		panic(document.Unhandled(s))
	}
	return append(commands, cmd)
}

// ellipsePath approximates an ellipse with four cubic Bézier arcs.
func ellipsePath(cx, cy, rx, ry float64) []PathCommand {
	// k = 4 * (sqrt(2) - 1) / 3
	const k = 0.5522847498
	kx, ky := rx*k, ry*k
	return []PathCommand{
		{"M", cx + rx, cy},
		{"C", cx + rx, cy + ky, cx + kx, cy + ry, cx, cy + ry},
		{"C", cx - kx, cy + ry, cx - rx, cy + ky, cx - rx, cy},
		{"C", cx - rx, cy - ky, cx - kx, cy - ry, cx, cy - ry},
		{"C", cx + kx, cy - ry, cx + rx, cy - ky, cx + rx, cy},
		{"Z"},
	}
}

// FrameToJSON serializes a frame to JSON.
func FrameToJSON(f Frame) (string, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return "{}", err
	}
	return string(data), nil
}
