// Package pathdata converts shapes to and from SVG path data: per-shape
// command strings, combined and annotated listings, standalone SVG documents,
// and a parser that turns arbitrary path data back into editable shapes.
package pathdata

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wattline/wattline/backend-go/internal/document"
	"github.com/wattline/wattline/backend-go/internal/geom"
)

// ArrowHeadLength is the barb length of an exported arrowhead in logical units.
const ArrowHeadLength = 10

// writer accumulates path commands with coordinates shifted by origin and
// rounded to integers.
type writer struct {
	sb     strings.Builder
	origin document.Point
}

func (w *writer) cmd(c byte) {
	if w.sb.Len() > 0 {
		w.sb.WriteByte(' ')
	}
	w.sb.WriteByte(c)
}

func (w *writer) num(v float64) {
	w.sb.WriteByte(' ')
	w.sb.WriteString(formatInt(v))
}

// pt writes an absolute point relative to the origin.
func (w *writer) pt(x, y float64) {
	w.num(x - w.origin.X)
	w.num(y - w.origin.Y)
}

func formatInt(v float64) string {
	r := math.Round(v)
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// Shape returns the path data of one shape with coordinates expressed
// relative to origin. Text has no path data and yields "".
func Shape(s document.Shape, origin document.Point) string {
	w := &writer{origin: origin}
	switch v := s.(type) {
	case *document.Rect:
		w.cmd('M')
		w.pt(v.X, v.Y)
		w.cmd('h')
		w.num(v.Width)
		w.cmd('v')
		w.num(v.Height)
		w.cmd('h')
		w.num(-v.Width)
		w.cmd('z')
	case *document.Circle:
		w.cmd('M')
		w.pt(v.CX-v.RX, v.CY)
		w.arc(v.RX, v.RY, v.CX+v.RX, v.CY)
		w.arc(v.RX, v.RY, v.CX-v.RX, v.CY)
	case *document.Line:
		w.cmd('M')
		w.pt(v.X1, v.Y1)
		w.cmd('L')
		w.pt(v.X2, v.Y2)
	case *document.Arrow:
		tail := document.Point{X: v.X1, Y: v.Y1}
		tip := document.Point{X: v.X2, Y: v.Y2}
		left, right := geom.ArrowHead(tail, tip, ArrowHeadLength)
		w.cmd('M')
		w.pt(tail.X, tail.Y)
		w.cmd('L')
		w.pt(tip.X, tip.Y)
		w.cmd('L')
		w.pt(left.X, left.Y)
		w.cmd('M')
		w.pt(tip.X, tip.Y)
		w.cmd('L')
		w.pt(right.X, right.Y)
	case *document.Curve:
		w.cmd('M')
		w.pt(v.X1, v.Y1)
		w.cmd('Q')
		w.pt(v.QX, v.QY)
		w.pt(v.X2, v.Y2)
	case *document.Text:
		return ""
	default:
		panic(document.Unhandled(s))
	}
	return w.sb.String()
}

func (w *writer) arc(rx, ry, x, y float64) {
	w.cmd('A')
	w.num(rx)
	w.num(ry)
	w.sb.WriteString(" 0 1 0")
	w.pt(x, y)
}

// Combined joins the path data of every shape into one string.
func Combined(shapes []document.Shape, origin document.Point) string {
	parts := make([]string, 0, len(shapes))
	for _, s := range shapes {
		if d := Shape(s, origin); d != "" {
			parts = append(parts, d)
		}
	}
	return strings.Join(parts, " ")
}

// Annotated lists the path data of every shape, each preceded by a label
// line carrying its 1-based index, kind and id.
func Annotated(shapes []document.Shape, origin document.Point) string {
	var sb strings.Builder
	for i, s := range shapes {
		fmt.Fprintf(&sb, "// #%d %s %s\n", i+1, s.Kind(), s.Common().ID)
		if d := Shape(s, origin); d != "" {
			sb.WriteString(d)
		} else {
			sb.WriteString("// (no path data)")
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
