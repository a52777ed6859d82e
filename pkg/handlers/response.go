package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/refdata-io/reconcile-engine/pkg/apperrors"
)

// ApiResponse wraps data in the envelope expected by client tools.
type ApiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// WriteServiceError maps a service-layer error onto an HTTP error response.
func WriteServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	statusCode := http.StatusInternalServerError
	errorCode := "internal_error"

	switch {
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrUnknownDataset):
		statusCode = http.StatusNotFound
		errorCode = "not_found"
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrDuplicateAlias):
		statusCode = http.StatusConflict
		errorCode = "conflict"
	case errors.Is(err, apperrors.ErrValueTooLong):
		statusCode = http.StatusBadRequest
		errorCode = "invalid_value"
	case errors.Is(err, apperrors.ErrIndexUnavailable):
		// Retryable: the storage collaborator failed to supply alias data.
		statusCode = http.StatusServiceUnavailable
		errorCode = "index_unavailable"
	}

	if writeErr := ErrorResponse(w, statusCode, errorCode, err.Error()); writeErr != nil && logger != nil {
		logger.Error("Failed to write error response", zap.Error(writeErr))
	}
}
