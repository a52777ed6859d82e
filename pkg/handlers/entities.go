package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/refdata-io/reconcile-engine/pkg/models"
	"github.com/refdata-io/reconcile-engine/pkg/services"
)

// EntityRequest for POST and PUT on entities.
type EntityRequest struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// EntityListResponse for GET /api/datasets/{dataset}/entities
type EntityListResponse struct {
	Entities []*models.Entity `json:"entities"`
	Total    int              `json:"total"`
}

// EntitiesHandler handles entity HTTP requests.
type EntitiesHandler struct {
	datasetService services.DatasetService
	entityService  services.EntityService
	logger         *zap.Logger
}

// NewEntitiesHandler creates a new entities handler.
func NewEntitiesHandler(
	datasetService services.DatasetService,
	entityService services.EntityService,
	logger *zap.Logger,
) *EntitiesHandler {
	return &EntitiesHandler{
		datasetService: datasetService,
		entityService:  entityService,
		logger:         logger,
	}
}

// RegisterRoutes registers the entity handler's routes on the given mux.
func (h *EntitiesHandler) RegisterRoutes(mux *http.ServeMux, auth AuthMiddleware) {
	base := "/api/datasets/{dataset}/entities"

	mux.HandleFunc("POST "+base, auth(h.Create))
	mux.HandleFunc("GET "+base, auth(h.List))
	mux.HandleFunc("GET "+base+"/{eid}", auth(h.Get))
	mux.HandleFunc("PUT "+base+"/{eid}", auth(h.Update))
	mux.HandleFunc("DELETE "+base+"/{eid}", auth(h.Delete))
}

// Create handles POST /api/datasets/{dataset}/entities
func (h *EntitiesHandler) Create(w http.ResponseWriter, r *http.Request) {
	dataset, ok := h.resolveDataset(w, r)
	if !ok {
		return
	}

	var req EntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	entity, err := h.entityService.Create(r.Context(), dataset.ID, req.Name, req.Type)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: entity}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/datasets/{dataset}/entities
func (h *EntitiesHandler) List(w http.ResponseWriter, r *http.Request) {
	dataset, ok := h.resolveDataset(w, r)
	if !ok {
		return
	}

	entities, err := h.entityService.List(r.Context(), dataset.ID)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	response := EntityListResponse{
		Entities: entities,
		Total:    len(entities),
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/datasets/{dataset}/entities/{eid}
func (h *EntitiesHandler) Get(w http.ResponseWriter, r *http.Request) {
	dataset, ok := h.resolveDataset(w, r)
	if !ok {
		return
	}
	entityID, ok := ParseEntityID(w, r, h.logger)
	if !ok {
		return
	}

	entity, err := h.entityService.Get(r.Context(), dataset.ID, entityID)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: entity}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PUT /api/datasets/{dataset}/entities/{eid}
func (h *EntitiesHandler) Update(w http.ResponseWriter, r *http.Request) {
	dataset, ok := h.resolveDataset(w, r)
	if !ok {
		return
	}
	entityID, ok := ParseEntityID(w, r, h.logger)
	if !ok {
		return
	}

	var req EntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	entity, err := h.entityService.Update(r.Context(), dataset.ID, entityID, req.Name, req.Type)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: entity}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/datasets/{dataset}/entities/{eid}
func (h *EntitiesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	dataset, ok := h.resolveDataset(w, r)
	if !ok {
		return
	}
	entityID, ok := ParseEntityID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.entityService.Delete(r.Context(), dataset.ID, entityID); err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "entity deleted"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *EntitiesHandler) resolveDataset(w http.ResponseWriter, r *http.Request) (*models.Dataset, bool) {
	name, ok := ParseDatasetName(w, r, h.logger)
	if !ok {
		return nil, false
	}

	dataset, err := h.datasetService.Get(r.Context(), name)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return nil, false
	}
	return dataset, true
}
