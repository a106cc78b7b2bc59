// internal/handlers/sale.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phonedesk/phonedesk-be/internal/core/domain"
	"github.com/phonedesk/phonedesk-be/internal/core/ports"
)

// SaleHandler handles sale HTTP requests
type SaleHandler struct {
	service   ports.SaleService
	customers ports.CustomerService
	logger    *slog.Logger
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(service ports.SaleService, customers ports.CustomerService, logger *slog.Logger) *SaleHandler {
	return &SaleHandler{
		service:   service,
		customers: customers,
		logger:    logger.With(slog.String("handler", "sale")),
	}
}

// CreateSale handles POST /api/v1/sales
func (h *SaleHandler) CreateSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	sale := req.ToDomain()

	created, err := h.service.CreateSale(ctx, sale)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create sale",
			slog.String("error", err.Error()))
		respondServiceError(w, h.logger, err, "Failed to create sale")
		return
	}

	h.logger.InfoContext(ctx, "sale created",
		slog.String("sale_id", created.SaleID.String()),
		slog.String("sale_number", created.SaleNumber))

	respondJSON(w, h.logger, http.StatusCreated, h.expandCustomer(ctx, created))
}

// expandCustomer resolves the sale's customer record for the create response.
// A failed lookup is logged and the sale returned without the expansion; the
// sale itself is already durable at this point.
func (h *SaleHandler) expandCustomer(ctx context.Context, sale *domain.Sale) CreateSaleResponse {
	resp := CreateSaleResponse{Sale: sale}
	if sale.CustomerID == nil || h.customers == nil {
		return resp
	}

	customer, err := h.customers.GetCustomer(ctx, *sale.CustomerID)
	if err != nil {
		h.logger.WarnContext(ctx, "customer expansion failed on sale create",
			slog.String("sale_id", sale.SaleID.String()),
			slog.String("customer_id", sale.CustomerID.String()),
			slog.String("error", err.Error()))
		return resp
	}
	resp.Customer = customer
	return resp
}

// GetSale handles GET /api/v1/sales/{id}
func (h *SaleHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	saleID, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid sale ID format")
		return
	}

	sale, err := h.service.GetSale(ctx, saleID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get sale",
			slog.String("sale_id", idStr),
			slog.String("error", err.Error()))
		respondServiceError(w, h.logger, err, "Failed to retrieve sale")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, sale)
}

// UpdateSale handles PUT /api/v1/sales/{id}
func (h *SaleHandler) UpdateSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	saleID, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid sale ID format")
		return
	}

	var patch ports.SalePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.service.UpdateSale(ctx, saleID, patch)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to update sale",
			slog.String("sale_id", idStr),
			slog.String("error", err.Error()))
		respondServiceError(w, h.logger, err, "Failed to update sale")
		return
	}

	h.logger.InfoContext(ctx, "sale updated", slog.String("sale_id", idStr))

	respondJSON(w, h.logger, http.StatusOK, updated)
}

// DeleteSale handles DELETE /api/v1/sales/{id}
func (h *SaleHandler) DeleteSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	saleID, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid sale ID format")
		return
	}

	if err := h.service.DeleteSale(ctx, saleID); err != nil {
		h.logger.ErrorContext(ctx, "failed to delete sale",
			slog.String("sale_id", idStr),
			slog.String("error", err.Error()))
		respondServiceError(w, h.logger, err, "Failed to delete sale")
		return
	}

	h.logger.InfoContext(ctx, "sale deleted", slog.String("sale_id", idStr))

	respondJSON(w, h.logger, http.StatusOK, map[string]string{"sale_id": idStr})
}

// ListSales handles GET /api/v1/sales
func (h *SaleHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := h.parseListParams(r)

	result, err := h.service.List(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list sales",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to list sales")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

// GetStats handles GET /api/v1/sales/stats
func (h *SaleHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.service.Stats(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get sales stats",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to get sales stats")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, stats)
}

func (h *SaleHandler) parseListParams(r *http.Request) ports.SaleListParams {
	params := ports.SaleListParams{
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

	params.Search = r.URL.Query().Get("search")
	params.Status = r.URL.Query().Get("status")

	if from := r.URL.Query().Get("date_from"); from != "" {
		if d, err := time.Parse("2006-01-02", from); err == nil {
			params.DateFrom = &d
		}
	}
	if to := r.URL.Query().Get("date_to"); to != "" {
		if d, err := time.Parse("2006-01-02", to); err == nil {
			params.DateTo = &d
		}
	}

	return params
}

// Request/Response DTOs

// SaleItemRequest is one line on a sale payload. A line carrying both a
// lot_id and an imei is consumed from inventory; anything else is manual.
type SaleItemRequest struct {
	LotID     *uuid.UUID      `json:"lot_id,omitempty"`
	IMEI      string          `json:"imei,omitempty"`
	Model     string          `json:"model"`
	Brand     string          `json:"brand,omitempty"`
	Storage   string          `json:"storage,omitempty"`
	Color     string          `json:"color,omitempty"`
	Condition string          `json:"condition,omitempty"`
	Grade     string          `json:"grade,omitempty"`
	CostPrice decimal.Decimal `json:"cost_price,omitempty"`
	SalePrice decimal.Decimal `json:"sale_price"`
}

// CreateSaleRequest represents the request body for creating a sale
type CreateSaleRequest struct {
	CustomerID    *uuid.UUID        `json:"customer_id,omitempty"`
	CustomerName  string            `json:"customer_name,omitempty"`
	Items         []SaleItemRequest `json:"items"`
	Discount      decimal.Decimal   `json:"discount,omitempty"`
	Tax           decimal.Decimal   `json:"tax,omitempty"`
	PaymentMethod string            `json:"payment_method,omitempty"`
	PaymentStatus string            `json:"payment_status,omitempty"`
	AmountPaid    decimal.Decimal   `json:"amount_paid,omitempty"`
	Status        string            `json:"status,omitempty"`
	SalesChannel  string            `json:"sales_channel,omitempty"`
	Shipping      *domain.Shipping  `json:"shipping,omitempty"`
	Costs         *domain.SaleCosts `json:"costs,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	CreatedBy     string            `json:"created_by,omitempty"`
}

// CreateSaleResponse is the 201 body: the persisted sale with its customer
// record expanded for display.
type CreateSaleResponse struct {
	*domain.Sale
	Customer *domain.Customer `json:"customer,omitempty"`
}

// Validate validates the create sale request
func (r *CreateSaleRequest) Validate() error {
	if len(r.Items) == 0 {
		return fmt.Errorf("at least one item is required")
	}
	for i, item := range r.Items {
		if item.Model == "" {
			return fmt.Errorf("item %d: model is required", i)
		}
		if item.SalePrice.IsNegative() {
			return fmt.Errorf("item %d: sale_price cannot be negative", i)
		}
	}
	if r.Discount.IsNegative() {
		return fmt.Errorf("discount cannot be negative")
	}
	if r.Tax.IsNegative() {
		return fmt.Errorf("tax cannot be negative")
	}
	return nil
}

// ToDomain converts the request to a domain model
func (r *CreateSaleRequest) ToDomain() *domain.Sale {
	sale := &domain.Sale{
		SaleID:        uuid.New(),
		CustomerID:    r.CustomerID,
		CustomerName:  r.CustomerName,
		Discount:      r.Discount,
		Tax:           r.Tax,
		PaymentMethod: r.PaymentMethod,
		PaymentStatus: domain.PaymentStatus(r.PaymentStatus),
		AmountPaid:    r.AmountPaid,
		Status:        domain.SaleStatus(r.Status),
		SalesChannel:  r.SalesChannel,
		Shipping:      r.Shipping,
		Costs:         r.Costs,
		Notes:         r.Notes,
		CreatedBy:     r.CreatedBy,
	}

	for _, item := range r.Items {
		sale.Items = append(sale.Items, domain.SaleItem{
			LotID:     item.LotID,
			IMEI:      item.IMEI,
			Model:     item.Model,
			Brand:     item.Brand,
			Storage:   item.Storage,
			Color:     item.Color,
			Condition: domain.DeviceCondition(item.Condition),
			Grade:     item.Grade,
			CostPrice: item.CostPrice,
			SalePrice: item.SalePrice,
		})
	}

	sale.ComputeTotals()
	return sale
}
