package handlers

import (
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
	"github.com/ternarybob/folio/internal/services/render"
)

// TemplateHandler serves the template management and generation API.
type TemplateHandler struct {
	documents interfaces.DocumentService
	logger    arbor.ILogger
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(documents interfaces.DocumentService, logger arbor.ILogger) *TemplateHandler {
	return &TemplateHandler{
		documents: documents,
		logger:    logger,
	}
}

type templatePayload struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Body        string                  `json:"body"`
	Sources     []models.TemplateSource `json:"sources"`
	Active      *bool                   `json:"active"`
}

type generatePayload struct {
	Variables map[string]string `json:"variables"`
}

// ListHandler handles GET /api/templates
func (h *TemplateHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	templates, err := h.documents.ListTemplates(r.Context(), UserID(r))
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"templates": templates,
		"count":     len(templates),
	})
}

// CreateHandler handles POST /api/templates
func (h *TemplateHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var payload templatePayload
	if err := DecodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	template := &models.Template{
		UserID:      UserID(r),
		Name:        payload.Name,
		Description: payload.Description,
		Body:        payload.Body,
		Sources:     payload.Sources,
		Active:      payload.Active == nil || *payload.Active,
	}

	if err := h.documents.SaveTemplate(r.Context(), template); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusCreated, template)
}

// GetHandler handles GET /api/templates/{id}
func (h *TemplateHandler) GetHandler(w http.ResponseWriter, r *http.Request, id string) {
	template, err := h.documents.GetTemplate(r.Context(), id)
	if err != nil {
		h.writeTemplateError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, template)
}

// UpdateHandler handles PUT /api/templates/{id}
func (h *TemplateHandler) UpdateHandler(w http.ResponseWriter, r *http.Request, id string) {
	existing, err := h.documents.GetTemplate(r.Context(), id)
	if err != nil {
		h.writeTemplateError(w, err)
		return
	}

	var payload templatePayload
	if err := DecodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	existing.Name = payload.Name
	existing.Description = payload.Description
	existing.Body = payload.Body
	existing.Sources = payload.Sources
	if payload.Active != nil {
		existing.Active = *payload.Active
	}

	if err := h.documents.SaveTemplate(r.Context(), existing); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, existing)
}

// DeleteHandler handles DELETE /api/templates/{id}
func (h *TemplateHandler) DeleteHandler(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.documents.DeleteTemplate(r.Context(), id); err != nil {
		h.writeTemplateError(w, err)
		return
	}
	WriteSuccess(w, "template deleted")
}

// TokensHandler handles GET /api/templates/{id}/tokens, returning the
// distinct placeholder tokens found in the template body.
func (h *TemplateHandler) TokensHandler(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	template, err := h.documents.GetTemplate(r.Context(), id)
	if err != nil {
		h.writeTemplateError(w, err)
		return
	}

	tokens := render.ExtractTokens(template.Body)
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"template_id": template.ID,
		"tokens":      tokens,
		"count":       len(tokens),
	})
}

// GenerateHandler handles POST /api/templates/{id}/generate, rendering the
// template and persisting the result.
func (h *TemplateHandler) GenerateHandler(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var payload generatePayload
	if err := DecodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	doc, err := h.documents.Generate(r.Context(), id, payload.Variables)
	if err != nil {
		h.writeTemplateError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, doc)
}

func (h *TemplateHandler) writeTemplateError(w http.ResponseWriter, err error) {
	if errors.Is(err, interfaces.ErrTemplateNotFound) {
		WriteError(w, http.StatusNotFound, "template not found")
		return
	}
	WriteError(w, http.StatusInternalServerError, err.Error())
}
