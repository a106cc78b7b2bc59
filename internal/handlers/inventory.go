// internal/handlers/inventory.go
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phonedesk/phonedesk-be/internal/core/domain"
	"github.com/phonedesk/phonedesk-be/internal/core/ports"
)

// InventoryHandler handles lot and device HTTP requests
type InventoryHandler struct {
	service ports.LedgerService
	logger  *slog.Logger
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(service ports.LedgerService, logger *slog.Logger) *InventoryHandler {
	return &InventoryHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "inventory")),
	}
}

// GetLot handles GET /api/v1/inventory/{id}
func (h *InventoryHandler) GetLot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	lotID, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid lot ID format")
		return
	}

	lot, err := h.service.GetLot(ctx, lotID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get lot",
			slog.String("lot_id", idStr),
			slog.String("error", err.Error()))
		respondServiceError(w, h.logger, err, "Failed to retrieve lot")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, lot)
}

// ListLots handles GET /api/v1/inventory
func (h *InventoryHandler) ListLots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := h.parseListParams(r)

	result, err := h.service.List(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list lots",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to list inventory")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

// CreateLot handles POST /api/v1/inventory
func (h *InventoryHandler) CreateLot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	lot := req.ToDomain()

	if err := h.service.SaveLot(ctx, lot); err != nil {
		h.logger.ErrorContext(ctx, "failed to create lot",
			slog.String("error", err.Error()))
		respondServiceError(w, h.logger, err, "Failed to create lot")
		return
	}

	h.logger.InfoContext(ctx, "lot created",
		slog.String("lot_id", lot.LotID.String()),
		slog.String("model", lot.Model))

	respondJSON(w, h.logger, http.StatusCreated, lot)
}

// UpdateLot handles PUT /api/v1/inventory/{id}
func (h *InventoryHandler) UpdateLot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	lotID, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid lot ID format")
		return
	}

	var req LotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	lot := req.ToDomain()

	if err := h.service.UpdateLot(ctx, lotID, lot); err != nil {
		h.logger.ErrorContext(ctx, "failed to update lot",
			slog.String("lot_id", idStr),
			slog.String("error", err.Error()))
		respondServiceError(w, h.logger, err, "Failed to update lot")
		return
	}

	updated, err := h.service.GetLot(ctx, lotID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to retrieve updated lot",
			slog.String("lot_id", idStr),
			slog.String("error", err.Error()))
		respondJSON(w, h.logger, http.StatusOK, map[string]string{"message": "Lot updated successfully"})
		return
	}

	h.logger.InfoContext(ctx, "lot updated", slog.String("lot_id", idStr))

	respondJSON(w, h.logger, http.StatusOK, updated)
}

// DeleteLot handles DELETE /api/v1/inventory/{id}
func (h *InventoryHandler) DeleteLot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	lotID, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid lot ID format")
		return
	}

	permanent := r.URL.Query().Get("permanent") == "true"

	if err := h.service.DeleteLot(ctx, lotID, permanent); err != nil {
		h.logger.ErrorContext(ctx, "failed to delete lot",
			slog.String("lot_id", idStr),
			slog.Bool("permanent", permanent),
			slog.String("error", err.Error()))
		respondServiceError(w, h.logger, err, "Failed to delete lot")
		return
	}

	h.logger.InfoContext(ctx, "lot deleted",
		slog.String("lot_id", idStr),
		slog.Bool("permanent", permanent))

	respondJSON(w, h.logger, http.StatusOK, map[string]any{
		"lot_id":    idStr,
		"permanent": permanent,
	})
}

// parseListParams parses query parameters for listing lots
func (h *InventoryHandler) parseListParams(r *http.Request) ports.LotListParams {
	params := ports.LotListParams{
		Page:      1,
		PageSize:  50,
		SortBy:    "created_at",
		SortOrder: "desc",
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

	params.Search = r.URL.Query().Get("search")
	params.Brand = r.URL.Query().Get("brand")
	params.Condition = r.URL.Query().Get("condition")

	if inStock := r.URL.Query().Get("in_stock"); inStock != "" {
		if val, err := strconv.ParseBool(inStock); err == nil {
			params.InStock = &val
		}
	}
	if lowStock := r.URL.Query().Get("low_stock"); lowStock != "" {
		if val, err := strconv.ParseBool(lowStock); err == nil {
			params.LowStock = &val
		}
	}

	if sortBy := r.URL.Query().Get("sort"); sortBy != "" {
		params.SortBy = sortBy
	}

	if order := r.URL.Query().Get("order"); order == "asc" || order == "desc" {
		params.SortOrder = order
	}

	return params
}

// Request/Response DTOs

// DeviceRequest is one device line inside a lot payload
type DeviceRequest struct {
	IMEI         string `json:"imei"`
	UnlockStatus string `json:"unlock_status,omitempty"`
	Condition    string `json:"condition,omitempty"`
	Grade        string `json:"grade,omitempty"`
}

// LotRequest represents the request body for creating or updating a lot
type LotRequest struct {
	Model             string          `json:"model"`
	Brand             string          `json:"brand,omitempty"`
	Quantity          int             `json:"quantity,omitempty"`
	CostPrice         decimal.Decimal `json:"cost_price"`
	RetailPrice       decimal.Decimal `json:"retail_price"`
	Storage           string          `json:"storage,omitempty"`
	Color             string          `json:"color,omitempty"`
	RAM               string          `json:"ram,omitempty"`
	LowStockThreshold int             `json:"low_stock_threshold,omitempty"`
	Devices           []DeviceRequest `json:"devices,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	SupplierInvoiceID *uuid.UUID      `json:"supplier_invoice_id,omitempty"`
}

// Validate validates the lot request
func (r *LotRequest) Validate() error {
	if r.Model == "" {
		return fmt.Errorf("model is required")
	}
	if r.CostPrice.IsNegative() {
		return fmt.Errorf("cost_price cannot be negative")
	}
	if r.RetailPrice.IsNegative() {
		return fmt.Errorf("retail_price cannot be negative")
	}
	for i, d := range r.Devices {
		if d.IMEI == "" {
			return fmt.Errorf("device %d: imei is required", i)
		}
	}
	return nil
}

// ToDomain converts the request to a domain model
func (r *LotRequest) ToDomain() *domain.ProductLot {
	lot := &domain.ProductLot{
		LotID:             uuid.New(),
		Model:             r.Model,
		Brand:             r.Brand,
		Quantity:          r.Quantity,
		CostPrice:         r.CostPrice,
		RetailPrice:       r.RetailPrice,
		Storage:           r.Storage,
		Color:             r.Color,
		RAM:               r.RAM,
		LowStockThreshold: r.LowStockThreshold,
		Notes:             r.Notes,
		SupplierInvoiceID: r.SupplierInvoiceID,
	}

	for _, d := range r.Devices {
		lot.Devices = append(lot.Devices, domain.Device{
			IMEI:         d.IMEI,
			UnlockStatus: domain.UnlockStatus(d.UnlockStatus),
			Condition:    domain.DeviceCondition(d.Condition),
			Grade:        d.Grade,
		})
	}

	return lot
}
