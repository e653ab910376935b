package document

import "sort"

// Templates are starter glyphs for common installation symbols, keyed by name.
// Each call builds a fresh document with new shape ids.
var Templates = map[string]func() *Document{
	"socket": NewSocketSymbol,
	"switch": NewSwitchSymbol,
	"lamp":   NewLampSymbol,
}

// TemplateNames returns the template keys in sorted order.
func TemplateNames() []string {
	names := make([]string, 0, len(Templates))
	for name := range Templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewSocketSymbol builds a single socket outlet: a ring split by a contact
// bar, with a feed line below.
func NewSocketSymbol() *Document {
	body := NewCircle(0, 0, 20, 20)
	feed := NewLine(0, 20, 0, 50)
	bar := NewLine(-20, 0, 20, 0)
	return &Document{Shapes: []Shape{body, bar, feed}}
}

// NewSwitchSymbol builds a single-pole switch: a pivot dot, a contact arm
// drawn at an angle and the fixed contact.
func NewSwitchSymbol() *Document {
	pivot := NewCircle(0, 0, 5, 5)
	pivot.Fill = DefaultStroke
	arm := NewLine(0, 0, 30, -20)
	contact := NewLine(30, -20, 40, -20)
	feed := NewLine(-30, 0, -5, 0)
	return &Document{Shapes: []Shape{feed, pivot, arm, contact}}
}

// NewLampSymbol builds a lamp: a circle crossed by two diagonals plus a label.
func NewLampSymbol() *Document {
	ring := NewCircle(0, 0, 25, 25)
	d1 := NewLine(-18, -18, 18, 18)
	d2 := NewLine(-18, 18, 18, -18)
	label := NewText(30, -30, "L1")
	return &Document{Shapes: []Shape{ring, d1, d2, label}}
}
