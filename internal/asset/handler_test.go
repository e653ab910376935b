package asset

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"

	"github.com/wattline/wattline/backend-go/internal/document"
	"github.com/wattline/wattline/backend-go/internal/store"
)

type fakeImporter struct {
	got map[string][]document.Shape
}

func (f *fakeImporter) AddShapes(_ context.Context, symbolID string, shapes []document.Shape) (int, error) {
	if symbolID == "sym_missing" {
		return 0, store.ErrNotFound
	}
	f.got[symbolID] = append(f.got[symbolID], shapes...)
	return len(shapes), nil
}

func uploadRequest(t *testing.T, symbolID, filename, contentType, body string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte(body))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/symbols/"+symbolID+"/assets", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func router(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/symbols/{symbolId}/assets", h.Upload).Methods("POST")
	r.PathPrefix("/assets/").Handler(h.Serve()).Methods("GET")
	return r
}

const symbolSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100">
  <circle cx="50" cy="50" r="20"/>
  <path d="M 30 50 L 70 50"/>
  <text x="75" y="30" font-size="12">L1</text>
</svg>`

func TestUploadImportsShapes(t *testing.T) {
	dir := t.TempDir()
	imp := &fakeImporter{got: make(map[string][]document.Shape)}
	r := router(NewHandler(dir, imp))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, "sym_a", "lamp.svg", "image/svg+xml", symbolSVG))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var resp UploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Imported != 3 || len(imp.got["sym_a"]) != 3 {
		t.Errorf("imported %d shapes, want 3", resp.Imported)
	}
	if _, err := os.Stat(filepath.Join(dir, resp.ID+".svg")); err != nil {
		t.Errorf("asset file not stored: %v", err)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, resp.URL, nil))
	if rec.Code != http.StatusOK || !bytes.Contains(rec.Body.Bytes(), []byte("<circle")) {
		t.Errorf("serving %s: status %d", resp.URL, rec.Code)
	}
}

func TestUploadRejects(t *testing.T) {
	tests := []struct {
		name        string
		symbolID    string
		filename    string
		contentType string
		body        string
		want        int
	}{
		{"not svg", "sym_a", "photo.png", "image/png", "\x89PNG", http.StatusBadRequest},
		{"no drawable elements", "sym_a", "x.svg", "image/svg+xml", "<svg><path d=\"Z 1\"/></svg>", http.StatusBadRequest},
		{"missing symbol", "sym_missing", "x.svg", "image/svg+xml", symbolSVG, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			r := router(NewHandler(dir, &fakeImporter{got: make(map[string][]document.Shape)}))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, uploadRequest(t, tt.symbolID, tt.filename, tt.contentType, tt.body))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			entries, _ := os.ReadDir(dir)
			if len(entries) != 0 {
				t.Errorf("rejected upload left %d files", len(entries))
			}
		})
	}
}
