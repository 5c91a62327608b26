package handlers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jjudge-oj/contacts/internal/logging"
	"github.com/jjudge-oj/contacts/internal/services"
)

// ExportHandler provides HTTP handlers for contact exports.
type ExportHandler struct {
	exportService *services.ExportService
}

func NewExportHandler(exportService *services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// ExportRouter registers export routes. The router must already be behind
// RequireAuth.
func ExportRouter(r chi.Router, exportService *services.ExportService) {
	handler := NewExportHandler(exportService)

	r.Post("/contacts/exports", handler.CreateExport)
	r.Get("/contacts/exports/{exportID}", handler.DownloadExport)
	r.Delete("/contacts/exports/{exportID}", handler.DeleteExport)
}

func (h *ExportHandler) CreateExport(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	export, err := h.exportService.Create(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err, "export")
		return
	}
	writeData(w, http.StatusCreated, export)
}

// DownloadExport streams the stored document as is.
func (h *ExportHandler) DownloadExport(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	rc, err := h.exportService.Open(r.Context(), user.ID, chi.URLParam(r, "exportID"))
	if err != nil {
		writeServiceError(w, r, err, "export")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		logging.FromContext(r.Context()).WithError(err).Warn("stream export")
	}
}

func (h *ExportHandler) DeleteExport(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.exportService.Delete(r.Context(), user.ID, chi.URLParam(r, "exportID")); err != nil {
		writeServiceError(w, r, err, "export")
		return
	}
	writeData(w, http.StatusOK, true)
}
