package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/refdata-io/reconcile-engine/pkg/middleware"
	"github.com/refdata-io/reconcile-engine/pkg/models"
	"github.com/refdata-io/reconcile-engine/pkg/services"
)

// AliasRequest for POST and PUT on aliases.
type AliasRequest struct {
	Value string          `json:"value"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// LinkAliasRequest for POST /api/datasets/{dataset}/aliases/{aid}/link
type LinkAliasRequest struct {
	EntityID uuid.UUID `json:"entity_id"`
}

// AliasListResponse for GET /api/datasets/{dataset}/aliases
type AliasListResponse struct {
	Aliases []*models.Alias `json:"aliases"`
	Total   int             `json:"total"`
}

// AliasesHandler handles alias HTTP requests.
type AliasesHandler struct {
	datasetService services.DatasetService
	aliasService   services.AliasService
	logger         *zap.Logger
}

// NewAliasesHandler creates a new aliases handler.
func NewAliasesHandler(
	datasetService services.DatasetService,
	aliasService services.AliasService,
	logger *zap.Logger,
) *AliasesHandler {
	return &AliasesHandler{
		datasetService: datasetService,
		aliasService:   aliasService,
		logger:         logger,
	}
}

// RegisterRoutes registers the alias handler's routes on the given mux.
func (h *AliasesHandler) RegisterRoutes(mux *http.ServeMux, auth AuthMiddleware) {
	base := "/api/datasets/{dataset}/aliases"

	mux.HandleFunc("POST "+base, auth(h.Create))
	mux.HandleFunc("GET "+base, auth(h.List))
	mux.HandleFunc("GET "+base+"/{aid}", auth(h.Get))
	mux.HandleFunc("PUT "+base+"/{aid}", auth(h.Update))
	mux.HandleFunc("DELETE "+base+"/{aid}", auth(h.Delete))
	mux.HandleFunc("POST "+base+"/{aid}/link", auth(h.Link))
	mux.HandleFunc("DELETE "+base+"/{aid}/link", auth(h.Unlink))
}

// Create handles POST /api/datasets/{dataset}/aliases
func (h *AliasesHandler) Create(w http.ResponseWriter, r *http.Request) {
	dataset, ok := h.resolveDataset(w, r)
	if !ok {
		return
	}

	var req AliasRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	caller := middleware.CallerFromContext(r.Context())
	alias, err := h.aliasService.Create(r.Context(), dataset.ID, req.Value, req.Data, caller)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: alias}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/datasets/{dataset}/aliases
// Supports an optional ?q= substring filter on the raw value.
func (h *AliasesHandler) List(w http.ResponseWriter, r *http.Request) {
	dataset, ok := h.resolveDataset(w, r)
	if !ok {
		return
	}

	aliases, err := h.aliasService.List(r.Context(), dataset.ID, r.URL.Query().Get("q"))
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	response := AliasListResponse{
		Aliases: aliases,
		Total:   len(aliases),
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/datasets/{dataset}/aliases/{aid}
func (h *AliasesHandler) Get(w http.ResponseWriter, r *http.Request) {
	dataset, ok := h.resolveDataset(w, r)
	if !ok {
		return
	}
	aliasID, ok := ParseAliasID(w, r, h.logger)
	if !ok {
		return
	}

	alias, err := h.aliasService.Get(r.Context(), dataset.ID, aliasID)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: alias}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PUT /api/datasets/{dataset}/aliases/{aid}
func (h *AliasesHandler) Update(w http.ResponseWriter, r *http.Request) {
	dataset, ok := h.resolveDataset(w, r)
	if !ok {
		return
	}
	aliasID, ok := ParseAliasID(w, r, h.logger)
	if !ok {
		return
	}

	var req AliasRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	caller := middleware.CallerFromContext(r.Context())
	alias, err := h.aliasService.Update(r.Context(), dataset.ID, aliasID, req.Value, req.Data, caller)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: alias}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/datasets/{dataset}/aliases/{aid}
func (h *AliasesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	dataset, ok := h.resolveDataset(w, r)
	if !ok {
		return
	}
	aliasID, ok := ParseAliasID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.aliasService.Delete(r.Context(), dataset.ID, aliasID); err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "alias deleted"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Link handles POST /api/datasets/{dataset}/aliases/{aid}/link
func (h *AliasesHandler) Link(w http.ResponseWriter, r *http.Request) {
	dataset, ok := h.resolveDataset(w, r)
	if !ok {
		return
	}
	aliasID, ok := ParseAliasID(w, r, h.logger)
	if !ok {
		return
	}

	var req LinkAliasRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EntityID == uuid.Nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Request must carry a valid entity_id"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	caller := middleware.CallerFromContext(r.Context())
	if err := h.aliasService.Link(r.Context(), dataset.ID, aliasID, req.EntityID, caller); err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "alias linked"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Unlink handles DELETE /api/datasets/{dataset}/aliases/{aid}/link
func (h *AliasesHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	dataset, ok := h.resolveDataset(w, r)
	if !ok {
		return
	}
	aliasID, ok := ParseAliasID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.aliasService.Unlink(r.Context(), dataset.ID, aliasID); err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "alias unlinked"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *AliasesHandler) resolveDataset(w http.ResponseWriter, r *http.Request) (*models.Dataset, bool) {
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
