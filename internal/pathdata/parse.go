package pathdata

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/wattline/wattline/backend-go/internal/document"
)

// SyntaxError describes one malformed command in path data.
type SyntaxError struct {
	Offset  int    // byte offset of the command letter or stray text
	Command string // command letter, empty for stray text
	Msg     string
}

func (e *SyntaxError) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("pathdata: offset %d: %s", e.Offset, e.Msg)
	}
	return fmt.Sprintf("pathdata: %s at offset %d: %s", e.Command, e.Offset, e.Msg)
}

var (
	tokenRe  = regexp.MustCompile(`[A-Za-z]|[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`)
	ignoreRe = regexp.MustCompile(`^[\s,]*$`)
)

// arity is the operand count of one repetition of each supported command.
var arity = map[byte]int{
	'M': 2, 'L': 2, 'H': 1, 'V': 1, 'Q': 4, 'A': 7, 'Z': 0,
}

type command struct {
	letter byte
	offset int
	args   []float64
}

// tokenize groups path data into commands with their numeric operands.
// Text that is neither a letter nor a number is reported and skipped.
func tokenize(d string) ([]command, []error) {
	var cmds []command
	var errs []error
	last := 0
	for _, loc := range tokenRe.FindAllStringIndex(d, -1) {
		if gap := d[last:loc[0]]; !ignoreRe.MatchString(gap) {
			errs = append(errs, &SyntaxError{Offset: last, Msg: fmt.Sprintf("unexpected %q", strings.TrimSpace(gap))})
		}
		last = loc[1]

		tok := d[loc[0]:loc[1]]
		if c := tok[0]; (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
			cmds = append(cmds, command{letter: c, offset: loc[0]})
			continue
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			errs = append(errs, &SyntaxError{Offset: loc[0], Msg: fmt.Sprintf("bad number %q", tok)})
			continue
		}
		if len(cmds) == 0 {
			errs = append(errs, &SyntaxError{Offset: loc[0], Msg: "number before first command"})
			continue
		}
		cmds[len(cmds)-1].args = append(cmds[len(cmds)-1].args, v)
	}
	if gap := d[last:]; !ignoreRe.MatchString(gap) {
		errs = append(errs, &SyntaxError{Offset: last, Msg: fmt.Sprintf("unexpected %q", strings.TrimSpace(gap))})
	}
	return cmds, errs
}

// parser walks commands keeping the current point and subpath start.
type parser struct {
	cur, start document.Point
	shapes     []document.Shape
	// lastArc is the circle emitted by the previous command when that
	// command was an arc; an identical follow-up arc is folded into it.
	lastArc *document.Circle
}

// Parse converts path data into shapes. M moves the current point (further
// pairs are implicit line-tos), L, H and V emit lines, Q emits curves, and
// Z emits a closing line when the subpath is open. An arc A is approximated
// by a circle centred on the chord midpoint with the arc's radii; its
// rotation and flags are read but not used. Consecutive arcs resolving to
// the same circle produce one shape, so an exported circle re-imports as one.
//
// Every shape gets a fresh id and default styling. Malformed commands are
// skipped; the shapes built so far are returned along with the joined
// *SyntaxError values.
func Parse(d string) ([]document.Shape, error) {
	cmds, errs := tokenize(d)
	p := &parser{}
	for _, c := range cmds {
		if err := p.exec(c); err != nil {
			errs = append(errs, err)
		}
	}
	return p.shapes, errors.Join(errs...)
}

func (p *parser) exec(c command) error {
	upper := c.letter &^ 0x20
	rel := c.letter != upper
	n, ok := arity[upper]
	if !ok {
		p.lastArc = nil
		return &SyntaxError{Offset: c.offset, Command: string(c.letter), Msg: "unsupported command"}
	}

	if n == 0 {
		p.lastArc = nil
		p.close()
		if len(c.args) > 0 {
			return &SyntaxError{Offset: c.offset, Command: string(c.letter), Msg: "unexpected operands"}
		}
		return nil
	}

	if len(c.args) == 0 {
		p.lastArc = nil
		return &SyntaxError{Offset: c.offset, Command: string(c.letter), Msg: "missing operands"}
	}

	for i := 0; i+n <= len(c.args); i += n {
		a := c.args[i : i+n]
		letter := upper
		if upper == 'M' && i > 0 {
			letter = 'L'
		}
		p.step(letter, rel, a)
	}
	if rem := len(c.args) % n; rem != 0 {
		return &SyntaxError{
			Offset:  c.offset,
			Command: string(c.letter),
			Msg:     fmt.Sprintf("expected %d operands per segment, %d left over", n, rem),
		}
	}
	return nil
}

func (p *parser) target(rel bool, x, y float64) document.Point {
	if rel {
		return document.Point{X: p.cur.X + x, Y: p.cur.Y + y}
	}
	return document.Point{X: x, Y: y}
}

func (p *parser) step(letter byte, rel bool, a []float64) {
	if letter != 'A' {
		p.lastArc = nil
	}
	switch letter {
	case 'M':
		p.cur = p.target(rel, a[0], a[1])
		p.start = p.cur
	case 'L':
		p.lineTo(p.target(rel, a[0], a[1]))
	case 'H':
		to := document.Point{X: a[0], Y: p.cur.Y}
		if rel {
			to.X += p.cur.X
		}
		p.lineTo(to)
	case 'V':
		to := document.Point{X: p.cur.X, Y: a[0]}
		if rel {
			to.Y += p.cur.Y
		}
		p.lineTo(to)
	case 'Q':
		q := p.target(rel, a[0], a[1])
		to := p.target(rel, a[2], a[3])
		p.shapes = append(p.shapes, document.NewCurve(p.cur.X, p.cur.Y, q.X, q.Y, to.X, to.Y))
		p.cur = to
	case 'A':
		to := p.target(rel, a[5], a[6])
		p.arcTo(math.Abs(a[0]), math.Abs(a[1]), to)
	}
}

func (p *parser) lineTo(to document.Point) {
	p.shapes = append(p.shapes, document.NewLine(p.cur.X, p.cur.Y, to.X, to.Y))
	p.cur = to
}

func (p *parser) arcTo(rx, ry float64, to document.Point) {
	cx := (p.cur.X + to.X) / 2
	cy := (p.cur.Y + to.Y) / 2
	p.cur = to
	if c := p.lastArc; c != nil && near(c.CX, cx) && near(c.CY, cy) && near(c.RX, rx) && near(c.RY, ry) {
		return
	}
	c := document.NewCircle(cx, cy, rx, ry)
	p.shapes = append(p.shapes, c)
	p.lastArc = c
}

func (p *parser) close() {
	if p.cur != p.start {
		p.lineTo(p.start)
	}
	p.cur = p.start
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }
