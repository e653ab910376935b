package live

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/wattline/wattline/backend-go/internal/document"
	"github.com/wattline/wattline/backend-go/internal/engine"
	"github.com/wattline/wattline/backend-go/internal/export"
	"github.com/wattline/wattline/backend-go/internal/geom"
	"github.com/wattline/wattline/backend-go/internal/store"
)

var errUnknownType = errors.New("unknown message type")

// Room is the editing session of one symbol. It owns the engine and the
// autosaver; the engine's change notifications feed the autosaver.
type Room struct {
	symbolID string
	opts     Options

	mu       sync.Mutex
	engine   *engine.Engine
	autosave *store.Autosaver
	viewport geom.Viewport
	editor   *Client
	seq      int64
	migrated bool
}

func newRoom(symbolID string, rec store.Record, s store.Store, opts Options) *Room {
	doc := rec.Document()

	e := engine.NewEngine()
	e.SetHistoryLimit(opts.HistoryLimit)
	e.SetGridSize(opts.GridSize)
	e.LoadDocument(doc)

	saver := store.NewAutosaver(s, symbolID, opts.AutosaveDelay)
	saver.Prime(doc)
	e.OnChange(saver.Schedule)

	r := &Room{
		symbolID: symbolID,
		opts:     opts,
		engine:   e,
		autosave: saver,
		viewport: geom.Viewport{Width: opts.CanvasWidth, Height: opts.CanvasHeight},
	}
	if rec.Legacy() {
		r.migrated = e.Layout()
	}
	return r
}

// close flushes the pending autosave and stops further writes.
func (r *Room) close() {
	r.autosave.Stop()
}

func (r *Room) welcome(clientID string) []*Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	payload, _ := json.Marshal(WelcomePayload{
		ClientID: clientID,
		SymbolID: r.symbolID,
		Origin:   r.engine.Origin(),
		Migrated: r.migrated,
	})
	return []*Message{
		{Type: TypeWelcome, SymbolID: r.symbolID, ClientID: clientID, Payload: payload},
		r.frame(),
	}
}

// handle applies one client message and returns the replies.
func (r *Room) handle(msg *Message) []*Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	reply, err := r.apply(msg)
	if err != nil {
		slog.Warn("rejected message", "type", msg.Type, "symbol", r.symbolID, "error", err)
		return []*Message{errorMessage(err)}
	}
	return reply
}

func (r *Room) apply(msg *Message) ([]*Message, error) {
	e := r.engine

	switch msg.Type {
	case TypeViewport:
		vp, err := decode[ViewportPayload](msg.Payload)
		if err != nil {
			return nil, err
		}
		r.viewport = vp

	case TypePointerDown, TypePointerMove, TypePointerUp:
		p, err := decode[PointerPayload](msg.Payload)
		if err != nil {
			return nil, err
		}
		ev := engine.PointerEvent{Point: r.toLogical(p.X, p.Y), Shift: p.Shift, Target: p.Target}
		switch msg.Type {
		case TypePointerDown:
			e.PointerDown(ev)
		case TypePointerMove:
			e.PointerMove(ev)
		default:
			e.PointerUp(ev)
		}

	case TypeBlur:
		e.Blur()

	case TypeKey:
		k, err := decode[KeyPayload](msg.Payload)
		if err != nil {
			return nil, err
		}
		e.HandleKey(k)

	case TypeToolSet:
		t, err := decode[ToolPayload](msg.Payload)
		if err != nil {
			return nil, err
		}
		if err := e.SetTool(t.Tool); err != nil {
			return nil, err
		}

	case TypeZoomSet:
		z, err := decode[ZoomPayload](msg.Payload)
		if err != nil {
			return nil, err
		}
		e.SetZoom(z.Zoom)

	case TypeGridSet:
		g, err := decode[GridPayload](msg.Payload)
		if err != nil {
			return nil, err
		}
		if g.Visible != nil {
			e.SetGridVisible(*g.Visible)
		}
		if g.Size != nil {
			e.SetGridSize(*g.Size)
		}

	case TypeSnapSet:
		s, err := decode[SnapPayload](msg.Payload)
		if err != nil {
			return nil, err
		}
		e.SetSnap(s.Enabled)

	case TypeOriginSet:
		o, err := decode[OriginPayload](msg.Payload)
		if err != nil {
			return nil, err
		}
		e.SetOrigin(o)

	case TypeOverlaySet:
		p, err := decode[PathDataPayload](msg.Payload)
		if err != nil {
			return nil, err
		}
		e.SetReferenceOverlay(p.PathData)

	case TypeImport:
		p, err := decode[PathDataPayload](msg.Payload)
		if err != nil {
			return nil, err
		}
		n, perr := e.Import(p.PathData)
		res := ImportResultPayload{Imported: n}
		if perr != nil {
			res.Errors = append(res.Errors, perr.Error())
		}
		payload, _ := json.Marshal(res)
		return []*Message{{Type: TypeImportResult, Payload: payload}, r.frame()}, nil

	case TypeStyleSet:
		s, err := decode[StylePayload](msg.Payload)
		if err != nil {
			return nil, err
		}
		e.SetStyle(s)

	case TypeTextSet:
		t, err := decode[TextPayload](msg.Payload)
		if err != nil {
			return nil, err
		}
		e.UpdateText(t.ShapeID, t.Text)

	case TypeSelectSet:
		s, err := decode[SelectPayload](msg.Payload)
		if err != nil {
			return nil, err
		}
		e.SetSelection(s.IDs)

	case TypeDelete:
		e.DeleteSelection()

	case TypeClear:
		e.ClearAll()

	case TypeUndo:
		e.Undo()

	case TypeExport:
		req, err := decode[ExportRequestPayload](msg.Payload)
		if err != nil {
			return nil, err
		}
		format, err := export.ParseFormat(req.Format)
		if err != nil {
			return nil, err
		}
		relative := req.Relative == nil || *req.Relative
		res, err := export.Render(e, export.Options{
			Format:   format,
			Relative: relative,
			Width:    r.opts.CanvasWidth,
			Height:   r.opts.CanvasHeight,
		})
		if err != nil {
			return nil, err
		}
		payload, _ := json.Marshal(ExportPayload{Format: string(format), ContentType: res.ContentType, Body: res.Body})
		return []*Message{{Type: TypeExport, Payload: payload}}, nil

	default:
		return nil, fmt.Errorf("%w: %q", errUnknownType, msg.Type)
	}

	return []*Message{r.frame()}, nil
}

func (r *Room) toLogical(x, y float64) document.Point {
	return geom.ToLogical(document.Point{X: x, Y: y}, r.viewport, r.engine.Origin(), r.engine.Zoom())
}

func (r *Room) frame() *Message {
	r.seq++
	payload, err := json.Marshal(r.engine.Render())
	if err != nil {
		return errorMessage(fmt.Errorf("render frame: %w", err))
	}
	return &Message{Type: TypeFrame, SymbolID: r.symbolID, Seq: r.seq, Payload: payload}
}

func errorMessage(err error) *Message {
	payload, _ := json.Marshal(ErrorPayload{Message: err.Error()})
	return &Message{Type: TypeError, Payload: payload}
}

func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, errors.New("missing payload")
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("invalid payload: %w", err)
	}
	return v, nil
}
