// internal/handlers/respond.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phonedesk/phonedesk-be/internal/core/ports"
)

// envelope is the uniform response shape: {"success": true, "data": ...} on
// success, {"success": false, "message": "..."} on failure.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func respondJSON(w http.ResponseWriter, logger *slog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func respondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(envelope{Success: false, Message: message}); err != nil {
		logger.Error("failed to encode JSON error response",
			slog.String("error", err.Error()))
	}
}

// respondServiceError maps service errors onto the envelope: sentinel
// not-found becomes 404, validation failures 400, everything else 500.
func respondServiceError(w http.ResponseWriter, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		respondError(w, logger, http.StatusNotFound, "Record not found")
	case isValidationError(err):
		respondError(w, logger, http.StatusBadRequest, err.Error())
	default:
		respondError(w, logger, http.StatusInternalServerError, fallback)
	}
}

func isValidationError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "validation failed")
}
