// internal/handlers/customer.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/phonedesk/phonedesk-be/internal/core/domain"
	"github.com/phonedesk/phonedesk-be/internal/core/ports"
)

// CustomerHandler handles customer HTTP requests
type CustomerHandler struct {
	service ports.CustomerService
	logger  *slog.Logger
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(service ports.CustomerService, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "customer")),
	}
}

// CreateCustomer handles POST /api/v1/customers
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var customer domain.Customer
	if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.SaveCustomer(ctx, &customer); err != nil {
		h.logger.ErrorContext(ctx, "failed to create customer",
			slog.String("error", err.Error()))
		respondServiceError(w, h.logger, err, "Failed to create customer")
		return
	}

	h.logger.InfoContext(ctx, "customer created",
		slog.String("customer_id", customer.CustomerID.String()),
		slog.String("name", customer.Name))

	respondJSON(w, h.logger, http.StatusCreated, customer)
}

// GetCustomer handles GET /api/v1/customers/{id}
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	customerID, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	customer, err := h.service.GetCustomer(ctx, customerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get customer",
			slog.String("customer_id", idStr),
			slog.String("error", err.Error()))
		respondServiceError(w, h.logger, err, "Failed to retrieve customer")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, customer)
}

// UpdateCustomer handles PUT /api/v1/customers/{id}
func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	customerID, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	var customer domain.Customer
	if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.UpdateCustomer(ctx, customerID, &customer); err != nil {
		h.logger.ErrorContext(ctx, "failed to update customer",
			slog.String("customer_id", idStr),
			slog.String("error", err.Error()))
		respondServiceError(w, h.logger, err, "Failed to update customer")
		return
	}

	updated, err := h.service.GetCustomer(ctx, customerID)
	if err != nil {
		respondJSON(w, h.logger, http.StatusOK, map[string]string{"message": "Customer updated successfully"})
		return
	}

	h.logger.InfoContext(ctx, "customer updated", slog.String("customer_id", idStr))

	respondJSON(w, h.logger, http.StatusOK, updated)
}

// DeleteCustomer handles DELETE /api/v1/customers/{id}
func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	customerID, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	if err := h.service.DeleteCustomer(ctx, customerID); err != nil {
		h.logger.ErrorContext(ctx, "failed to delete customer",
			slog.String("customer_id", idStr),
			slog.String("error", err.Error()))
		respondServiceError(w, h.logger, err, "Failed to delete customer")
		return
	}

	h.logger.InfoContext(ctx, "customer deleted", slog.String("customer_id", idStr))

	respondJSON(w, h.logger, http.StatusOK, map[string]string{"customer_id": idStr})
}

// ListCustomers handles GET /api/v1/customers
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := ports.CustomerListParams{
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
	params.Type = r.URL.Query().Get("type")

	result, err := h.service.List(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list customers",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to list customers")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}
