// Package store persists symbol documents. Every backend keeps the document
// as the JSON produced by document.Document; older payloads that are a bare
// shape array are still accepted on load.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/wattline/wattline/backend-go/internal/document"
)

var ErrNotFound = errors.New("symbol not found")

// Record is a loaded document. Origin is nil when the stored payload did not
// carry one, which is how legacy documents are recognised.
type Record struct {
	Shapes []document.Shape
	Origin *document.Point
}

// Legacy reports whether the stored payload predates the origin field. Only
// legacy documents are eligible for origin migration.
func (r Record) Legacy() bool { return r.Origin == nil }

// Document converts the record into an editable document. A missing origin
// becomes (0,0).
func (r Record) Document() document.Document {
	doc := document.Document{Shapes: r.Shapes}
	if doc.Shapes == nil {
		doc.Shapes = []document.Shape{}
	}
	if r.Origin != nil {
		doc.Origin = *r.Origin
	}
	return doc
}

// Store loads and saves documents by symbol id.
type Store interface {
	Load(ctx context.Context, key string) (Record, error)
	Save(ctx context.Context, key string, doc document.Document) error
	// List returns the stored symbol ids in creation order.
	List(ctx context.Context) ([]string, error)
	Close() error
}

// Pruner is implemented by stores that keep snapshot history.
type Pruner interface {
	// Prune keeps the newest keep snapshots of every symbol and reports how
	// many were removed.
	Prune(ctx context.Context, keep int) (int64, error)
}

// Options selects and configures a backend.
type Options struct {
	Driver      string // "postgres", "sqlite" or "memory"
	DatabaseURL string
	SQLitePath  string
}

// Open connects the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(opts.Driver) {
	case "postgres", "postgresql", "pg":
		return NewPostgres(ctx, opts.DatabaseURL)
	case "sqlite", "sqlite3":
		return NewSQLite(opts.SQLitePath)
	case "memory", "":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}

// encode renders a document in the stored JSON form.
func encode(doc document.Document) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// decode parses a stored payload. A JSON array is the legacy form: shapes
// only, no origin.
func decode(data []byte) (Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Record{}, errors.New("decode document: empty payload")
	}

	if trimmed[0] == '[' {
		shapes, err := document.UnmarshalShapes(trimmed)
		if err != nil {
			return Record{}, fmt.Errorf("decode legacy document: %w", err)
		}
		return Record{Shapes: shapes}, nil
	}

	var wire struct {
		Shapes json.RawMessage `json:"shapes"`
		Origin *document.Point `json:"origin"`
	}
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return Record{}, fmt.Errorf("decode document: %w", err)
	}
	rec := Record{Origin: wire.Origin}
	if len(wire.Shapes) > 0 && string(wire.Shapes) != "null" {
		shapes, err := document.UnmarshalShapes(wire.Shapes)
		if err != nil {
			return Record{}, fmt.Errorf("decode document: %w", err)
		}
		rec.Shapes = shapes
	}
	return rec, nil
}
