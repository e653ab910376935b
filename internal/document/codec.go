package document

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/wattline/wattline/backend-go/internal/typeid"
)

// MarshalShape encodes a shape as a JSON object carrying a "type" tag.
func MarshalShape(s Shape) ([]byte, error) {
	switch v := s.(type) {
	case *Rect:
		return json.Marshal(struct {
			Type Kind `json:"type"`
			*Rect
		}{KindRect, v})
	case *Circle:
		return json.Marshal(struct {
			Type Kind `json:"type"`
			*Circle
		}{KindCircle, v})
	case *Line:
		return json.Marshal(struct {
			Type Kind `json:"type"`
			*Line
		}{KindLine, v})
	case *Arrow:
		return json.Marshal(struct {
			Type Kind `json:"type"`
			*Arrow
		}{KindArrow, v})
	case *Curve:
		return json.Marshal(struct {
			Type Kind `json:"type"`
			*Curve
		}{KindCurve, v})
	case *Text:
		return json.Marshal(struct {
			Type Kind `json:"type"`
			*Text
		}{KindText, v})
	default:
		return nil, fmt.Errorf("marshal shape: %s", Unhandled(s))
	}
}

// UnmarshalShape decodes a tagged shape object.
func UnmarshalShape(data []byte) (Shape, error) {
	var tag struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("decode shape tag: %w", err)
	}

	var s Shape
	switch tag.Type {
	case KindRect:
		s = &Rect{}
	case KindCircle:
		s = &Circle{}
	case KindLine:
		s = &Line{}
	case KindArrow:
		s = &Arrow{}
	case KindCurve:
		s = &Curve{}
	case KindText:
		s = &Text{}
	default:
		return nil, fmt.Errorf("unknown shape type %q", tag.Type)
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("decode %s shape: %w", tag.Type, err)
	}
	normalize(s)
	return s, nil
}

// normalize repairs style fields that older payloads leave out and turns
// negative box extents into their positive equivalents.
func normalize(s Shape) {
	b := s.Common()
	if b.ID == "" {
		b.ID = typeid.NewShapeID()
	}
	if b.Stroke == "" {
		b.Stroke = DefaultStroke
	}
	if b.StrokeWidth < 1 {
		b.StrokeWidth = 1
	}
	if b.Fill == "" {
		b.Fill = DefaultFill
	}
	switch v := s.(type) {
	case *Rect:
		if v.Width < 0 {
			v.X, v.Width = v.X+v.Width, -v.Width
		}
		if v.Height < 0 {
			v.Y, v.Height = v.Y+v.Height, -v.Height
		}
	case *Circle:
		v.RX, v.RY = math.Abs(v.RX), math.Abs(v.RY)
	case *Text:
		if v.FontSize <= 0 {
			v.FontSize = DefaultFontSize
		}
	}
}

// AssignIDs gives a fresh id to every shape in shapes whose id is empty or
// already used by taken or by an earlier shape in the list. It reports how
// many ids were replaced.
func AssignIDs(taken, shapes []Shape) int {
	seen := make(map[string]struct{}, len(taken)+len(shapes))
	for _, s := range taken {
		seen[s.Common().ID] = struct{}{}
	}
	n := 0
	for _, s := range shapes {
		b := s.Common()
		if _, dup := seen[b.ID]; dup || b.ID == "" {
			b.ID = typeid.NewShapeID()
			n++
		}
		seen[b.ID] = struct{}{}
	}
	return n
}

// MarshalShapes encodes a shape list as a JSON array.
func MarshalShapes(shapes []Shape) ([]byte, error) {
	raw := make([]json.RawMessage, 0, len(shapes))
	for _, s := range shapes {
		data, err := MarshalShape(s)
		if err != nil {
			return nil, err
		}
		raw = append(raw, data)
	}
	return json.Marshal(raw)
}

// UnmarshalShapes decodes a JSON array of tagged shapes. Duplicate ids are
// replaced so that every shape in the result is addressable.
func UnmarshalShapes(data []byte) ([]Shape, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode shape list: %w", err)
	}
	shapes := make([]Shape, 0, len(raw))
	for i, r := range raw {
		s, err := UnmarshalShape(r)
		if err != nil {
			return nil, fmt.Errorf("shape %d: %w", i, err)
		}
		shapes = append(shapes, s)
	}
	AssignIDs(nil, shapes)
	return shapes, nil
}

func (d Document) MarshalJSON() ([]byte, error) {
	shapes, err := MarshalShapes(d.Shapes)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Shapes json.RawMessage `json:"shapes"`
		Origin Point           `json:"origin"`
	}{shapes, d.Origin})
}

func (d *Document) UnmarshalJSON(data []byte) error {
	var wire struct {
		Shapes json.RawMessage `json:"shapes"`
		Origin *Point          `json:"origin"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	d.Shapes = nil
	if len(wire.Shapes) > 0 && string(wire.Shapes) != "null" {
		shapes, err := UnmarshalShapes(wire.Shapes)
		if err != nil {
			return err
		}
		d.Shapes = shapes
	}
	d.Origin = Point{}
	if wire.Origin != nil {
		d.Origin = *wire.Origin
	}
	return nil
}
