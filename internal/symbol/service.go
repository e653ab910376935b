package symbol

import (
	"context"
	"errors"
	"fmt"

	"github.com/wattline/wattline/backend-go/internal/document"
	"github.com/wattline/wattline/backend-go/internal/engine"
	"github.com/wattline/wattline/backend-go/internal/export"
	"github.com/wattline/wattline/backend-go/internal/store"
	"github.com/wattline/wattline/backend-go/internal/typeid"
)

var (
	ErrNotFound        = store.ErrNotFound
	ErrInvalidID       = errors.New("invalid symbol id")
	ErrUnknownTemplate = errors.New("unknown template")
	// ErrBusy means a live session is editing the symbol.
	ErrBusy = errors.New("symbol is being edited")
)

// Summary describes a stored symbol.
type Summary struct {
	ID     string         `json:"id"`
	Shapes int            `json:"shapes"`
	Origin document.Point `json:"origin"`
}

// ImportResult reports a path data import. Errors lists syntax problems in
// the input; shapes before and after them are still imported.
type ImportResult struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors,omitempty"`
}

type Service struct {
	store        store.Store
	historyLimit int
	gridSize     float64
	busy         func(symbolID string) bool
}

func NewService(s store.Store) *Service {
	return &Service{
		store:        s,
		historyLimit: engine.DefaultHistoryLimit,
		gridSize:     engine.DefaultGridSize,
	}
}

// SetEditorDefaults configures engines opened by the service.
func (s *Service) SetEditorDefaults(historyLimit int, gridSize float64) {
	s.historyLimit = historyLimit
	s.gridSize = gridSize
}

// SetBusyCheck installs the check that rejects writes while a live session
// owns the symbol.
func (s *Service) SetBusyCheck(busy func(symbolID string) bool) {
	s.busy = busy
}

// Create stores a new symbol, empty or from a named template.
func (s *Service) Create(ctx context.Context, template string) (*Summary, error) {
	doc := document.Document{Shapes: []document.Shape{}}
	if template != "" {
		build, ok := document.Templates[template]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, template)
		}
		doc = *build()
	}

	id := typeid.NewSymbolID()
	if err := s.store.Save(ctx, id, doc); err != nil {
		return nil, fmt.Errorf("create symbol: %w", err)
	}
	return &Summary{ID: id, Shapes: len(doc.Shapes), Origin: doc.Origin}, nil
}

// List summarizes every stored symbol.
func (s *Service) List(ctx context.Context) ([]Summary, error) {
	ids, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	out := make([]Summary, 0, len(ids))
	for _, id := range ids {
		rec, err := s.store.Load(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load symbol %s: %w", id, err)
		}
		doc := rec.Document()
		out = append(out, Summary{ID: id, Shapes: len(doc.Shapes), Origin: doc.Origin})
	}
	return out, nil
}

// Open loads a symbol into a detached engine. Documents stored without an
// origin go through the origin migration.
func (s *Service) Open(ctx context.Context, symbolID string) (*engine.Engine, error) {
	if err := typeid.Validate(symbolID, typeid.PrefixSymbol); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidID, err)
	}
	rec, err := s.store.Load(ctx, symbolID)
	if err != nil {
		return nil, err
	}

	e := engine.NewEngine()
	e.SetHistoryLimit(s.historyLimit)
	e.SetGridSize(s.gridSize)
	e.LoadDocument(rec.Document())
	if rec.Legacy() {
		e.Layout()
	}
	return e, nil
}

// Get returns the symbol's document, with legacy origins migrated.
func (s *Service) Get(ctx context.Context, symbolID string) (document.Document, error) {
	e, err := s.Open(ctx, symbolID)
	if err != nil {
		return document.Document{}, err
	}
	return e.Document(), nil
}

// Replace overwrites an existing symbol's document.
func (s *Service) Replace(ctx context.Context, symbolID string, doc document.Document) error {
	return s.edit(ctx, symbolID, func(e *engine.Engine) error {
		e.LoadDocument(doc)
		return nil
	})
}

// Import parses path data and appends the shapes to the symbol.
func (s *Service) Import(ctx context.Context, symbolID, pathData string) (*ImportResult, error) {
	res := &ImportResult{}
	err := s.edit(ctx, symbolID, func(e *engine.Engine) error {
		n, perr := e.Import(pathData)
		res.Imported = n
		res.Errors = errorLines(perr)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// AddShapes appends already-built shapes, such as those read from an
// uploaded SVG file.
func (s *Service) AddShapes(ctx context.Context, symbolID string, shapes []document.Shape) (int, error) {
	err := s.edit(ctx, symbolID, func(e *engine.Engine) error {
		e.AddShapes(shapes)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(shapes), nil
}

// Clear removes every shape and keeps the origin.
func (s *Service) Clear(ctx context.Context, symbolID string) error {
	return s.edit(ctx, symbolID, func(e *engine.Engine) error {
		e.ClearAll()
		return nil
	})
}

// Export renders the symbol in the requested format.
func (s *Service) Export(ctx context.Context, symbolID string, opts export.Options) (export.Result, error) {
	e, err := s.Open(ctx, symbolID)
	if err != nil {
		return export.Result{}, err
	}
	return export.Render(e, opts)
}

func (s *Service) edit(ctx context.Context, symbolID string, fn func(e *engine.Engine) error) error {
	if s.busy != nil && s.busy(symbolID) {
		return ErrBusy
	}
	e, err := s.Open(ctx, symbolID)
	if err != nil {
		return err
	}
	if err := fn(e); err != nil {
		return err
	}
	if err := s.store.Save(ctx, symbolID, e.Document()); err != nil {
		return fmt.Errorf("save symbol: %w", err)
	}
	return nil
}

// errorLines flattens a joined error into its messages.
func errorLines(err error) []string {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}
