// internal/handlers/lifecycle.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phonedesk/phonedesk-be/internal/core/ports"
	"github.com/phonedesk/phonedesk-be/internal/core/services"
)

// LifecycleHandler handles IMEI history HTTP requests
type LifecycleHandler struct {
	service ports.LifecycleService
	logger  *slog.Logger
}

// NewLifecycleHandler creates a new lifecycle handler
func NewLifecycleHandler(service ports.LifecycleService, logger *slog.Logger) *LifecycleHandler {
	return &LifecycleHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "lifecycle")),
	}
}

// GetHistory handles GET /api/v1/imei/{imei}
func (h *LifecycleHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	imei := r.PathValue("imei")

	history, err := h.service.History(ctx, imei)
	if err != nil {
		if errors.Is(err, services.ErrInvalidIMEI) {
			respondError(w, h.logger, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(ctx, "failed to resolve device history",
			slog.String("imei", imei),
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to resolve device history")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, history)
}
