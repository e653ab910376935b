package asset

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wattline/wattline/backend-go/internal/document"
	"github.com/wattline/wattline/backend-go/internal/pathdata"
	"github.com/wattline/wattline/backend-go/internal/store"
	"github.com/wattline/wattline/backend-go/internal/typeid"
)

const maxUploadSize = 2 << 20 // 2MB

// Importer appends shapes to a stored symbol.
type Importer interface {
	AddShapes(ctx context.Context, symbolID string, shapes []document.Shape) (int, error)
}

// UploadResponse is returned from the upload endpoint.
type UploadResponse struct {
	ID       string   `json:"id"`
	URL      string   `json:"url"`
	Name     string   `json:"name"`
	Imported int      `json:"imported"`
	Errors   []string `json:"errors,omitempty"`
}

// Handler serves asset upload and retrieval endpoints.
type Handler struct {
	dir      string // directory to store asset files
	importer Importer
}

// NewHandler creates a new asset handler that stores files in dir.
func NewHandler(dir string, importer Importer) *Handler {
	// Ensure directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		slog.Error("create asset dir", "error", err, "dir", dir)
	}
	return &Handler{dir: dir, importer: importer}
}

// Upload handles POST /api/symbols/{symbolId}/assets (multipart form with a
// "file" field holding an SVG document). The file is kept as a reference
// asset and its drawable elements are appended to the symbol.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	symbolID := mux.Vars(r)["symbolId"]

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "file too large (max 2MB)", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/svg+xml") && !strings.EqualFold(filepath.Ext(header.Filename), ".svg") {
		http.Error(w, "only SVG files are supported", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read file", http.StatusBadRequest)
		return
	}

	shapes, perr := pathdata.ParseSVGDocument(bytes.NewReader(data))
	if len(shapes) == 0 && perr != nil {
		http.Error(w, "invalid svg: "+perr.Error(), http.StatusBadRequest)
		return
	}

	assetID := typeid.NewAssetID()
	filename := assetID + ".svg"
	filePath := filepath.Join(h.dir, filename)
	if err := copyFile(filePath, bytes.NewReader(data)); err != nil {
		slog.Error("create asset file", "error", err)
		http.Error(w, "failed to save file", http.StatusInternalServerError)
		return
	}

	imported, err := h.importer.AddShapes(r.Context(), symbolID, shapes)
	if err != nil {
		h.Delete(assetID)
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "symbol not found", http.StatusNotFound)
			return
		}
		slog.Error("import svg shapes", "symbol", symbolID, "error", err)
		http.Error(w, "failed to import shapes", http.StatusInternalServerError)
		return
	}

	resp := UploadResponse{
		ID:       assetID,
		URL:      fmt.Sprintf("/assets/%s", filename),
		Name:     header.Filename,
		Imported: imported,
	}
	if perr != nil {
		resp.Errors = strings.Split(perr.Error(), "\n")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// Serve returns an http.Handler that serves stored asset files with caching headers.
func (h *Handler) Serve() http.Handler {
	fs := http.FileServer(http.Dir(h.dir))
	return http.StripPrefix("/assets/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Asset IDs are unique, so files are immutable
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		fs.ServeHTTP(w, r)
	}))
}

// Delete removes an asset file from disk.
func (h *Handler) Delete(assetID string) error {
	path := filepath.Join(h.dir, assetID+".svg")
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("asset not found: %s", assetID)
	}
	return nil
}

// copyFile copies src reader to a file at dst path.
func copyFile(dst string, src io.Reader) error {
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, src)
	return err
}
