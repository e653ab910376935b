package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wattline/wattline/backend-go/internal/engine"
	"github.com/wattline/wattline/backend-go/internal/store"
	"github.com/wattline/wattline/backend-go/internal/typeid"
)

// Source opens a symbol in a detached engine.
type Source interface {
	Open(ctx context.Context, symbolID string) (*engine.Engine, error)
}

type Handler struct {
	source        Source
	width, height float64
}

// NewHandler creates an export handler. width and height size the viewBox of
// relative SVG exports.
func NewHandler(source Source, width, height float64) *Handler {
	return &Handler{source: source, width: width, height: height}
}

// Export handles GET /api/symbols/{symbolId}/export?format=&relative=&download=.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	symbolID := mux.Vars(r)["symbolId"]
	q := r.URL.Query()

	format, err := ParseFormat(q.Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	relative := true
	if v := q.Get("relative"); v != "" {
		relative, err = strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "invalid relative flag: must be true or false", http.StatusBadRequest)
			return
		}
	}

	e, err := h.source.Open(r.Context(), symbolID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "symbol not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, typeid.ErrInvalid) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("open symbol for export", "symbol", symbolID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	res, err := Render(e, Options{Format: format, Relative: relative, Width: h.width, Height: h.height})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", res.ContentType)
	if download, _ := strconv.ParseBool(q.Get("download")); download {
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s%s"`, sanitize(symbolID), res.Extension))
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(res.Body))
}

func sanitize(name string) string {
	if name == "" {
		return "symbol"
	}
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
}
