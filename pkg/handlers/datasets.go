package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/refdata-io/reconcile-engine/pkg/models"
	"github.com/refdata-io/reconcile-engine/pkg/services"
)

// AuthMiddleware wraps a handler with caller authentication.
type AuthMiddleware func(http.HandlerFunc) http.HandlerFunc

// CreateDatasetRequest for POST /api/datasets
type CreateDatasetRequest struct {
	Name  string `json:"name"`
	Label string `json:"label,omitempty"`
}

// DatasetListResponse for GET /api/datasets
type DatasetListResponse struct {
	Datasets []*models.Dataset `json:"datasets"`
	Total    int               `json:"total"`
}

// DatasetsHandler handles dataset HTTP requests.
type DatasetsHandler struct {
	datasetService services.DatasetService
	logger         *zap.Logger
}

// NewDatasetsHandler creates a new datasets handler.
func NewDatasetsHandler(datasetService services.DatasetService, logger *zap.Logger) *DatasetsHandler {
	return &DatasetsHandler{
		datasetService: datasetService,
		logger:         logger,
	}
}

// RegisterRoutes registers the dataset handler's routes on the given mux.
func (h *DatasetsHandler) RegisterRoutes(mux *http.ServeMux, auth AuthMiddleware) {
	mux.HandleFunc("POST /api/datasets", auth(h.Create))
	mux.HandleFunc("GET /api/datasets", auth(h.List))
	mux.HandleFunc("GET /api/datasets/{dataset}", auth(h.Get))
	mux.HandleFunc("DELETE /api/datasets/{dataset}", auth(h.Delete))
}

// Create handles POST /api/datasets
func (h *DatasetsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDatasetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	dataset, err := h.datasetService.Create(r.Context(), req.Name, req.Label)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: dataset}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/datasets
func (h *DatasetsHandler) List(w http.ResponseWriter, r *http.Request) {
	datasets, err := h.datasetService.List(r.Context())
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	response := DatasetListResponse{
		Datasets: datasets,
		Total:    len(datasets),
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/datasets/{dataset}
func (h *DatasetsHandler) Get(w http.ResponseWriter, r *http.Request) {
	name, ok := ParseDatasetName(w, r, h.logger)
	if !ok {
		return
	}

	dataset, err := h.datasetService.Get(r.Context(), name)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: dataset}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/datasets/{dataset}
func (h *DatasetsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name, ok := ParseDatasetName(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.datasetService.Delete(r.Context(), name); err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "dataset deleted"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
