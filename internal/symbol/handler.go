package symbol

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wattline/wattline/backend-go/internal/document"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Template string `json:"template"`
}

type importRequest struct {
	PathData string `json:"pathData"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	}

	sym, err := h.service.Create(r.Context(), req.Template)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sym)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	symbols, err := h.service.List(r.Context())
	if err != nil {
		slog.Error("list symbols failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, symbols)
}

func (h *Handler) Templates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, document.TemplateNames())
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	symbolID := mux.Vars(r)["symbolId"]

	doc, err := h.service.Get(r.Context(), symbolID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	symbolID := mux.Vars(r)["symbolId"]

	var doc document.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid document: " + err.Error()})
		return
	}

	if err := h.service.Replace(r.Context(), symbolID, doc); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	symbolID := mux.Vars(r)["symbolId"]

	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.PathData == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "pathData is required"})
		return
	}

	res, err := h.service.Import(r.Context(), symbolID, req.PathData)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	symbolID := mux.Vars(r)["symbolId"]

	if err := h.service.Clear(r.Context(), symbolID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, ErrInvalidID):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrUnknownTemplate):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrBusy):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "symbol is open in an editing session"})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
