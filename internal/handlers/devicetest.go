// internal/handlers/devicetest.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/phonedesk/phonedesk-be/internal/core/domain"
	"github.com/phonedesk/phonedesk-be/internal/core/ports"
)

// DeviceTestHandler handles diagnostic record HTTP requests
type DeviceTestHandler struct {
	service ports.DeviceTestService
	logger  *slog.Logger
}

// NewDeviceTestHandler creates a new device test handler
func NewDeviceTestHandler(service ports.DeviceTestService, logger *slog.Logger) *DeviceTestHandler {
	return &DeviceTestHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "devicetest")),
	}
}

// RecordTest handles POST /api/v1/tests
func (h *DeviceTestHandler) RecordTest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var test domain.DeviceTest
	if err := json.NewDecoder(r.Body).Decode(&test); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.RecordTest(ctx, &test); err != nil {
		h.logger.ErrorContext(ctx, "failed to record test",
			slog.String("imei", test.IMEI),
			slog.String("error", err.Error()))
		respondServiceError(w, h.logger, err, "Failed to record test")
		return
	}

	h.logger.InfoContext(ctx, "test recorded",
		slog.String("test_id", test.TestID.String()),
		slog.String("imei", test.IMEI),
		slog.String("result", string(test.Result)))

	respondJSON(w, h.logger, http.StatusCreated, test)
}

// ListTests handles GET /api/v1/tests
func (h *DeviceTestHandler) ListTests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := ports.TestListParams{
		Page:     1,
		PageSize: 50,
	}

	if page := r.URL.Query().Get("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil && p > 0 {
			params.Page = p
		}
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 {
			if l > 100 {
				params.PageSize = 100
			} else {
				params.PageSize = l
			}
		}
	}

	params.IMEI = r.URL.Query().Get("imei")
	params.Result = r.URL.Query().Get("result")

	result, err := h.service.List(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list tests",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to list tests")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}
