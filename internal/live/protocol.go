package live

import (
	"encoding/json"

	"github.com/wattline/wattline/backend-go/internal/document"
	"github.com/wattline/wattline/backend-go/internal/engine"
	"github.com/wattline/wattline/backend-go/internal/geom"
)

type Message struct {
	Type     string          `json:"type"`
	SymbolID string          `json:"symbolId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

const (
	// Connection
	TypeWelcome    = "welcome"
	TypeError      = "error"
	TypeSymbolBusy = "symbol.busy"

	// Server to client
	TypeFrame        = "frame"
	TypeExport       = "export"
	TypeImportResult = "import.result"

	// Pointer and keyboard input
	TypeViewport    = "viewport"
	TypePointerDown = "pointer.down"
	TypePointerMove = "pointer.move"
	TypePointerUp   = "pointer.up"
	TypeBlur        = "blur"
	TypeKey         = "key"

	// Editor settings
	TypeToolSet    = "tool.set"
	TypeZoomSet    = "zoom.set"
	TypeGridSet    = "grid.set"
	TypeSnapSet    = "snap.set"
	TypeOriginSet  = "origin.set"
	TypeOverlaySet = "overlay.set"

	// Document edits
	TypeImport    = "import"
	TypeStyleSet  = "style.set"
	TypeTextSet   = "text.set"
	TypeSelectSet = "select.set"
	TypeDelete    = "delete"
	TypeClear     = "clear"
	TypeUndo      = "undo"
)

type WelcomePayload struct {
	ClientID string         `json:"clientId"`
	SymbolID string         `json:"symbolId"`
	Origin   document.Point `json:"origin"`
	// Migrated is set when the stored document had no origin and one was
	// derived from its content.
	Migrated bool `json:"migrated,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// ViewportPayload is the canvas rectangle in physical pixels.
type ViewportPayload = geom.Viewport

// PointerPayload carries a pointer position in physical pixels. Target is
// the element the renderer reports under the pointer, if any.
type PointerPayload struct {
	X      float64        `json:"x"`
	Y      float64        `json:"y"`
	Shift  bool           `json:"shift,omitempty"`
	Target *engine.Target `json:"target,omitempty"`
}

type KeyPayload = engine.KeyEvent

type ToolPayload struct {
	Tool engine.Tool `json:"tool"`
}

type ZoomPayload struct {
	Zoom float64 `json:"zoom"`
}

type GridPayload struct {
	Visible *bool    `json:"visible,omitempty"`
	Size    *float64 `json:"size,omitempty"`
}

type SnapPayload struct {
	Enabled bool `json:"enabled"`
}

type OriginPayload = document.Point

type PathDataPayload struct {
	PathData string `json:"pathData"`
}

type StylePayload = engine.StylePatch

type TextPayload struct {
	ShapeID string `json:"shapeId"`
	Text    string `json:"text"`
}

type SelectPayload struct {
	IDs []string `json:"ids"`
}

type ExportRequestPayload struct {
	Format   string `json:"format"`
	Relative *bool  `json:"relative,omitempty"`
}

type ExportPayload struct {
	Format      string `json:"format"`
	ContentType string `json:"contentType"`
	Body        string `json:"body"`
}

type ImportResultPayload struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors,omitempty"`
}
