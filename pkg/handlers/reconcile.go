package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/refdata-io/reconcile-engine/pkg/logging"
	"github.com/refdata-io/reconcile-engine/pkg/match"
	"github.com/refdata-io/reconcile-engine/pkg/middleware"
	"github.com/refdata-io/reconcile-engine/pkg/services"
)

// MatchBatchRequest is a mapping of client-chosen query identifiers to
// queries. The response carries exactly the same identifiers.
type MatchBatchRequest struct {
	Queries map[string]match.Query `json:"queries"`
}

// ReconcileHandler handles batch match requests.
type ReconcileHandler struct {
	reconcileService services.ReconcileService
	logger           *zap.Logger
}

// NewReconcileHandler creates a new reconcile handler.
func NewReconcileHandler(reconcileService services.ReconcileService, logger *zap.Logger) *ReconcileHandler {
	return &ReconcileHandler{
		reconcileService: reconcileService,
		logger:           logger,
	}
}

// RegisterRoutes registers the reconcile handler's routes on the given mux.
func (h *ReconcileHandler) RegisterRoutes(mux *http.ServeMux, auth AuthMiddleware) {
	mux.HandleFunc("POST /api/datasets/{dataset}/match", auth(h.MatchBatch))
}

// MatchBatch handles POST /api/datasets/{dataset}/match
func (h *ReconcileHandler) MatchBatch(w http.ResponseWriter, r *http.Request) {
	name, ok := ParseDatasetName(w, r, h.logger)
	if !ok {
		return
	}

	var req MatchBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	caller := middleware.CallerFromContext(r.Context())
	results, err := h.reconcileService.MatchBatch(r.Context(), name, req.Queries, caller)
	if err != nil {
		h.logger.Error("Match batch failed",
			zap.String("dataset", name),
			zap.String("caller", caller),
			zap.String("error", logging.SanitizeError(err)))
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, results); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
