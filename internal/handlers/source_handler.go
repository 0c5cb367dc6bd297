package handlers

import (
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

// SourceHandler serves the data source management API.
type SourceHandler struct {
	sources    interfaces.SourceService
	datapoints interfaces.DataPointStorage
	cache      interfaces.CacheService
	logger     arbor.ILogger
}

// NewSourceHandler creates a new SourceHandler.
func NewSourceHandler(sources interfaces.SourceService, datapoints interfaces.DataPointStorage, cache interfaces.CacheService, logger arbor.ILogger) *SourceHandler {
	return &SourceHandler{
		sources:    sources,
		datapoints: datapoints,
		cache:      cache,
		logger:     logger,
	}
}

// sourcePayload is the request body for create/update. The API key arrives
// in plaintext and is never echoed back.
type sourcePayload struct {
	Name     string                 `json:"name"`
	Type     string                 `json:"type"`
	Endpoint string                 `json:"endpoint"`
	APIKey   string                 `json:"api_key"`
	Config   map[string]interface{} `json:"config"`
	Active   *bool                  `json:"active"`
}

// ListHandler handles GET /api/sources
func (h *SourceHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	sources, err := h.sources.ListSources(r.Context(), UserID(r))
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sources": sources,
		"count":   len(sources),
	})
}

// CreateHandler handles POST /api/sources
func (h *SourceHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var payload sourcePayload
	if err := DecodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	source := &models.DataSource{
		UserID:   UserID(r),
		Name:     payload.Name,
		Type:     payload.Type,
		Endpoint: payload.Endpoint,
		APIKey:   payload.APIKey,
		Config:   payload.Config,
		Active:   payload.Active == nil || *payload.Active,
	}

	if err := h.sources.CreateSource(r.Context(), source); err != nil {
		h.writeSourceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, source)
}

// GetHandler handles GET /api/sources/{id}
func (h *SourceHandler) GetHandler(w http.ResponseWriter, r *http.Request, id string) {
	source, err := h.sources.GetSource(r.Context(), id)
	if err != nil {
		h.writeSourceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, source)
}

// UpdateHandler handles PUT /api/sources/{id}
func (h *SourceHandler) UpdateHandler(w http.ResponseWriter, r *http.Request, id string) {
	var payload sourcePayload
	if err := DecodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	source := &models.DataSource{
		ID:       id,
		UserID:   UserID(r),
		Name:     payload.Name,
		Type:     payload.Type,
		Endpoint: payload.Endpoint,
		APIKey:   payload.APIKey,
		Config:   payload.Config,
		Active:   payload.Active == nil || *payload.Active,
	}

	if err := h.sources.UpdateSource(r.Context(), source); err != nil {
		h.writeSourceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, source)
}

// DeleteHandler handles DELETE /api/sources/{id}
func (h *SourceHandler) DeleteHandler(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.sources.DeleteSource(r.Context(), id); err != nil {
		h.writeSourceError(w, err)
		return
	}
	WriteSuccess(w, "data source deleted")
}

// DataPointsHandler handles GET /api/sources/{id}/datapoints, returning the
// source's cached revision history, newest first.
func (h *SourceHandler) DataPointsHandler(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	if _, err := h.sources.GetSource(r.Context(), id); err != nil {
		h.writeSourceError(w, err)
		return
	}

	points, err := h.datapoints.ListBySource(r.Context(), id)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"datapoints": points,
		"count":      len(points),
	})
}

// RefreshHandler handles POST /api/sources/{id}/refresh, forcing a fetch
// regardless of schedule. The cached value is returned when the fetch
// succeeds or the cache is still fresh.
func (h *SourceHandler) RefreshHandler(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	source, err := h.sources.GetSource(r.Context(), id)
	if err != nil {
		h.writeSourceError(w, err)
		return
	}

	value, err := h.cache.GetOrFetch(r.Context(), source, "default", map[string]string{})
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"source_id": source.ID,
		"value":     value,
	})
}

func (h *SourceHandler) writeSourceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, interfaces.ErrSourceNotFound):
		WriteError(w, http.StatusNotFound, "data source not found")
	case errors.Is(err, interfaces.ErrDuplicateName):
		WriteError(w, http.StatusConflict, "a data source with that name already exists")
	default:
		WriteError(w, http.StatusBadRequest, err.Error())
	}
}
