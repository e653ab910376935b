package pathdata

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/wattline/wattline/backend-go/internal/document"
	"github.com/wattline/wattline/backend-go/internal/geom"
)

// ViewBoxPadding is added around the content bounds when an SVG document is
// exported without an origin.
const ViewBoxPadding = 10

// SVGOptions controls standalone document export.
type SVGOptions struct {
	// Origin, when set, becomes (0,0) of the exported coordinates and the
	// centre of a Width x Height viewBox. When nil the viewBox is the padded
	// bounding box of the content in absolute coordinates.
	Origin *document.Point
	Width  float64
	Height float64
}

// SVG renders shapes as a standalone SVG document.
func SVG(shapes []document.Shape, opts SVGOptions) string {
	var origin document.Point
	var vb geom.Bounds
	if opts.Origin != nil {
		origin = *opts.Origin
		vb = geom.Bounds{MinX: -opts.Width / 2, MinY: -opts.Height / 2, MaxX: opts.Width / 2, MaxY: opts.Height / 2}
	} else if b, ok := geom.BoundingBox(shapes); ok {
		vb = b.Pad(ViewBoxPadding)
	} else {
		vb = geom.Bounds{MaxX: opts.Width, MaxY: opts.Height}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s %s %s %s" width="%s" height="%s">`,
		formatInt(vb.MinX), formatInt(vb.MinY), formatInt(vb.Width()), formatInt(vb.Height()),
		formatInt(vb.Width()), formatInt(vb.Height()))
	sb.WriteByte('\n')

	for _, s := range shapes {
		base := s.Common()
		transform := ""
		if base.Rotation != 0 {
			c := geom.Center(s)
			transform = fmt.Sprintf(` transform="rotate(%s %s %s)"`,
				strconv.FormatFloat(base.Rotation, 'f', -1, 64), formatInt(c.X-origin.X), formatInt(c.Y-origin.Y))
		}

		switch v := s.(type) {
		case *document.Text:
			fmt.Fprintf(&sb, `  <text x="%s" y="%s" font-size="%s" fill="%s"%s>`,
				formatInt(v.X-origin.X), formatInt(v.Y-origin.Y),
				strconv.FormatFloat(v.FontSize, 'f', -1, 64), attr(v.Fill), transform)
			_ = xml.EscapeText(&sb, []byte(v.Text))
			sb.WriteString("</text>\n")
		case *document.Rect, *document.Circle, *document.Line, *document.Arrow, *document.Curve:
			fmt.Fprintf(&sb, `  <path d="%s" stroke="%s" stroke-width="%s" fill="%s"%s/>`,
				Shape(v, origin), attr(base.Stroke),
				strconv.FormatFloat(base.StrokeWidth, 'f', -1, 64), attr(base.Fill), transform)
			sb.WriteByte('\n')
		default:
			panic(document.Unhandled(s))
		}
	}
	sb.WriteString("</svg>\n")
	return sb.String()
}

func attr(v string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(v))
	return sb.String()
}

type svgStyle struct {
	Stroke      string `xml:"stroke,attr"`
	StrokeWidth string `xml:"stroke-width,attr"`
	Fill        string `xml:"fill,attr"`
	Transform   string `xml:"transform,attr"`
}

type svgRect struct {
	X      float64 `xml:"x,attr"`
	Y      float64 `xml:"y,attr"`
	Width  float64 `xml:"width,attr"`
	Height float64 `xml:"height,attr"`
	svgStyle
}

type svgCircle struct {
	CX float64 `xml:"cx,attr"`
	CY float64 `xml:"cy,attr"`
	R  float64 `xml:"r,attr"`
	RX float64 `xml:"rx,attr"`
	RY float64 `xml:"ry,attr"`
	svgStyle
}

type svgLine struct {
	X1 float64 `xml:"x1,attr"`
	Y1 float64 `xml:"y1,attr"`
	X2 float64 `xml:"x2,attr"`
	Y2 float64 `xml:"y2,attr"`
	svgStyle
}

type svgText struct {
	X        float64 `xml:"x,attr"`
	Y        float64 `xml:"y,attr"`
	FontSize string  `xml:"font-size,attr"`
	Body     string  `xml:",chardata"`
	svgStyle
}

var rotateRe = regexp.MustCompile(`rotate\(\s*([-+]?[\d.]+(?:[eE][-+]?\d+)?)`)

// apply copies presentation attributes onto a shape. Unknown or empty
// attributes keep the defaults.
func (st svgStyle) apply(s document.Shape) {
	b := s.Common()
	if st.Stroke != "" {
		b.Stroke = st.Stroke
	}
	if st.Fill != "" {
		b.Fill = st.Fill
	}
	if w, err := strconv.ParseFloat(st.StrokeWidth, 64); err == nil && w >= 1 {
		b.StrokeWidth = w
	}
	if m := rotateRe.FindStringSubmatch(st.Transform); m != nil {
		if deg, err := strconv.ParseFloat(m[1], 64); err == nil {
			b.Rotation = deg
		}
	}
}

// ParseSVGDocument reads an SVG document and converts its path, rect,
// circle, ellipse, line and text elements into shapes in document order.
// Path data problems are reported like Parse does: the shapes decoded so far
// are returned together with the joined errors. Rotation is only carried over
// for single-element shapes; paths are split into segments.
func ParseSVGDocument(r io.Reader) ([]document.Shape, error) {
	dec := xml.NewDecoder(r)
	var shapes []document.Shape
	var errs []error

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return shapes, fmt.Errorf("read svg: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "path":
			var p struct {
				D string `xml:"d,attr"`
				svgStyle
			}
			if err := dec.DecodeElement(&p, &start); err != nil {
				return shapes, fmt.Errorf("decode path: %w", err)
			}
			parsed, perr := Parse(p.D)
			if perr != nil {
				errs = append(errs, perr)
			}
			p.svgStyle.Transform = ""
			for _, s := range parsed {
				p.svgStyle.apply(s)
			}
			shapes = append(shapes, parsed...)
		case "rect":
			var e svgRect
			if err := dec.DecodeElement(&e, &start); err != nil {
				return shapes, fmt.Errorf("decode rect: %w", err)
			}
			s := document.NewRect(e.X, e.Y, e.Width, e.Height)
			e.apply(s)
			shapes = append(shapes, s)
		case "circle", "ellipse":
			var e svgCircle
			if err := dec.DecodeElement(&e, &start); err != nil {
				return shapes, fmt.Errorf("decode %s: %w", start.Name.Local, err)
			}
			rx, ry := e.RX, e.RY
			if start.Name.Local == "circle" {
				rx, ry = e.R, e.R
			}
			s := document.NewCircle(e.CX, e.CY, rx, ry)
			e.apply(s)
			shapes = append(shapes, s)
		case "line":
			var e svgLine
			if err := dec.DecodeElement(&e, &start); err != nil {
				return shapes, fmt.Errorf("decode line: %w", err)
			}
			s := document.NewLine(e.X1, e.Y1, e.X2, e.Y2)
			e.apply(s)
			shapes = append(shapes, s)
		case "text":
			var e svgText
			if err := dec.DecodeElement(&e, &start); err != nil {
				return shapes, fmt.Errorf("decode text: %w", err)
			}
			s := document.NewText(e.X, e.Y, strings.TrimSpace(e.Body))
			if fs, err := strconv.ParseFloat(strings.TrimSuffix(e.FontSize, "px"), 64); err == nil && fs > 0 {
				s.FontSize = fs
			}
			e.apply(s)
			shapes = append(shapes, s)
		}
	}

	return shapes, errors.Join(errs...)
}
