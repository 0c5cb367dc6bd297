package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
)

// DocumentHandler serves the rendered document API.
type DocumentHandler struct {
	documents interfaces.DocumentService
	logger    arbor.ILogger
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documents interfaces.DocumentService, logger arbor.ILogger) *DocumentHandler {
	return &DocumentHandler{
		documents: documents,
		logger:    logger,
	}
}

// ListHandler handles GET /api/documents. Optional query parameters:
// template_id filters by template, limit bounds the result count.
func (h *DocumentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	templateID := r.URL.Query().Get("template_id")
	limit := QueryInt(r, "limit", 50)

	docs, err := h.documents.ListDocuments(r.Context(), templateID, limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"count":     len(docs),
	})
}

// GetHandler handles GET /api/documents/{id}
func (h *DocumentHandler) GetHandler(w http.ResponseWriter, r *http.Request, id string) {
	doc, err := h.documents.GetDocument(r.Context(), id)
	if err != nil {
		h.writeDocumentError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, doc)
}

// DownloadHandler handles GET /api/documents/{id}/download, serving the
// rendered HTML as an attachment.
func (h *DocumentHandler) DownloadHandler(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	doc, err := h.documents.GetDocument(r.Context(), id)
	if err != nil {
		h.writeDocumentError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename()))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(doc.HTML))
}

// DeleteHandler handles DELETE /api/documents/{id}
func (h *DocumentHandler) DeleteHandler(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.documents.DeleteDocument(r.Context(), id); err != nil {
		h.writeDocumentError(w, err)
		return
	}
	WriteSuccess(w, "document deleted")
}

func (h *DocumentHandler) writeDocumentError(w http.ResponseWriter, err error) {
	if errors.Is(err, interfaces.ErrDocumentNotFound) {
		WriteError(w, http.StatusNotFound, "document not found")
		return
	}
	WriteError(w, http.StatusInternalServerError, err.Error())
}
