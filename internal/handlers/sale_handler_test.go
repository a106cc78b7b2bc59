// internal/handlers/sale_handler_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/phonedesk/phonedesk-be/internal/core/domain"
	"github.com/phonedesk/phonedesk-be/internal/core/ports"
	"github.com/phonedesk/phonedesk-be/internal/handlers"
	"github.com/phonedesk/phonedesk-be/test/helpers"
	"github.com/phonedesk/phonedesk-be/test/mocks"
)

func TestSaleHandler_CreateSale(t *testing.T) {
	tests := []struct {
		name           string
		payload        map[string]any
		setupMocks     func(*mocks.MockSaleService)
		expectedStatus int
		validateBody   func(*testing.T, []byte)
	}{
		{
			name: "creates_sale_and_returns_201",
			payload: map[string]any{
				"customer_name": "Walk-in",
				"items": []map[string]any{
					{"model": "iPhone 13", "imei": "490154203237518", "sale_price": "450.00"},
				},
			},
			setupMocks: func(m *mocks.MockSaleService) {
				m.EXPECT().
					CreateSale(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ any, sale *domain.Sale) (*domain.Sale, error) {
						require.Len(t, sale.Items, 1)
						assert.Equal(t, "iPhone 13", sale.Items[0].Model)
						sale.SaleNumber = "SL202608-0001"
						return sale, nil
					})
			},
			expectedStatus: http.StatusCreated,
			validateBody: func(t *testing.T, body []byte) {
				env := decodeEnvelope(t, body)
				assert.True(t, env.Success)

				var sale domain.Sale
				require.NoError(t, json.Unmarshal(env.Data, &sale))
				assert.Equal(t, "SL202608-0001", sale.SaleNumber)
			},
		},
		{
			name:           "rejects_sale_without_items",
			payload:        map[string]any{"customer_name": "Walk-in"},
			setupMocks:     func(m *mocks.MockSaleService) {},
			expectedStatus: http.StatusBadRequest,
			validateBody: func(t *testing.T, body []byte) {
				env := decodeEnvelope(t, body)
				assert.False(t, env.Success)
				assert.Equal(t, "at least one item is required", env.Message)
			},
		},
		{
			name: "rejects_negative_sale_price",
			payload: map[string]any{
				"items": []map[string]any{
					{"model": "iPhone 13", "sale_price": "-1.00"},
				},
			},
			setupMocks:     func(m *mocks.MockSaleService) {},
			expectedStatus: http.StatusBadRequest,
			validateBody: func(t *testing.T, body []byte) {
				env := decodeEnvelope(t, body)
				assert.False(t, env.Success)
				assert.Contains(t, env.Message, "sale_price cannot be negative")
			},
		},
		{
			name: "service_failure_maps_to_500",
			payload: map[string]any{
				"items": []map[string]any{
					{"model": "iPhone 13", "sale_price": "450.00"},
				},
			},
			setupMocks: func(m *mocks.MockSaleService) {
				m.EXPECT().
					CreateSale(gomock.Any(), gomock.Any()).
					Return(nil, fmt.Errorf("failed to save sale: connection refused"))
			},
			expectedStatus: http.StatusInternalServerError,
			validateBody: func(t *testing.T, body []byte) {
				env := decodeEnvelope(t, body)
				assert.False(t, env.Success)
				assert.Equal(t, "Failed to create sale", env.Message)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := mocks.NewMockSaleService(ctrl)
			tt.setupMocks(service)

			handler := handlers.NewSaleHandler(service, mocks.NewMockCustomerService(ctrl), helpers.TestLogger())

			body, err := json.Marshal(tt.payload)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.CreateSale(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			tt.validateBody(t, w.Body.Bytes())
		})
	}
}

func TestSaleHandler_CreateSale_ExpandsCustomer(t *testing.T) {
	customer := helpers.CreateTestCustomer()

	t.Run("201_body_carries_the_customer_record", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service := mocks.NewMockSaleService(ctrl)
		service.EXPECT().
			CreateSale(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, sale *domain.Sale) (*domain.Sale, error) {
				sale.SaleNumber = "SL202609-0003"
				return sale, nil
			})

		customers := mocks.NewMockCustomerService(ctrl)
		customers.EXPECT().
			GetCustomer(gomock.Any(), customer.CustomerID).
			Return(customer, nil)

		handler := handlers.NewSaleHandler(service, customers, helpers.TestLogger())

		payload := map[string]any{
			"customer_id": customer.CustomerID.String(),
			"items": []map[string]any{
				{"model": "iPhone 13", "sale_price": "450.00"},
			},
		}
		body, err := json.Marshal(payload)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.CreateSale(w, req)

		require.Equal(t, http.StatusCreated, w.Code)

		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Success)

		var resp struct {
			SaleNumber string           `json:"sale_number"`
			Customer   *domain.Customer `json:"customer"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.Equal(t, "SL202609-0003", resp.SaleNumber)
		require.NotNil(t, resp.Customer)
		assert.Equal(t, customer.CustomerID, resp.Customer.CustomerID)
		assert.Equal(t, customer.Name, resp.Customer.Name)
	})

	t.Run("failed_lookup_returns_the_sale_without_expansion", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service := mocks.NewMockSaleService(ctrl)
		service.EXPECT().
			CreateSale(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, sale *domain.Sale) (*domain.Sale, error) {
				return sale, nil
			})

		customers := mocks.NewMockCustomerService(ctrl)
		customers.EXPECT().
			GetCustomer(gomock.Any(), customer.CustomerID).
			Return(nil, fmt.Errorf("customer %s: %w", customer.CustomerID, ports.ErrNotFound))

		handler := handlers.NewSaleHandler(service, customers, helpers.TestLogger())

		payload := map[string]any{
			"customer_id": customer.CustomerID.String(),
			"items": []map[string]any{
				{"model": "iPhone 13", "sale_price": "450.00"},
			},
		}
		body, err := json.Marshal(payload)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.CreateSale(w, req)

		require.Equal(t, http.StatusCreated, w.Code)

		var raw map[string]any
		env := decodeEnvelope(t, w.Body.Bytes())
		require.NoError(t, json.Unmarshal(env.Data, &raw))
		_, hasCustomer := raw["customer"]
		assert.False(t, hasCustomer)
	})
}

func TestSaleHandler_CreateSale_CarriesCosts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := mocks.NewMockSaleService(ctrl)
	service.EXPECT().
		CreateSale(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, sale *domain.Sale) (*domain.Sale, error) {
			require.NotNil(t, sale.Costs)
			assert.True(t, sale.Costs.Shipping.Equal(decimal.RequireFromString("12.50")))
			assert.True(t, sale.Costs.Fees.Equal(decimal.RequireFromString("3.00")))
			return sale, nil
		})

	handler := handlers.NewSaleHandler(service, mocks.NewMockCustomerService(ctrl), helpers.TestLogger())

	payload := map[string]any{
		"items": []map[string]any{
			{"model": "iPhone 13", "sale_price": "450.00"},
		},
		"costs": map[string]any{"shipping": "12.50", "fees": "3.00"},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.CreateSale(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	env := decodeEnvelope(t, w.Body.Bytes())
	var sale domain.Sale
	require.NoError(t, json.Unmarshal(env.Data, &sale))
	require.NotNil(t, sale.Costs)
	assert.True(t, sale.Costs.Shipping.Equal(decimal.RequireFromString("12.50")))
}

func TestSaleHandler_UpdateSale(t *testing.T) {
	saleID := uuid.New()

	t.Run("decodes_patch_and_returns_updated_sale", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service := mocks.NewMockSaleService(ctrl)
		service.EXPECT().
			UpdateSale(gomock.Any(), saleID, gomock.Any()).
			DoAndReturn(func(_ any, _ uuid.UUID, patch ports.SalePatch) (*domain.Sale, error) {
				require.NotNil(t, patch.Status)
				assert.Equal(t, domain.SaleShipped, *patch.Status)
				assert.Nil(t, patch.Items)
				updated := helpers.CreateTestSale()
				updated.Status = domain.SaleShipped
				return updated, nil
			})

		handler := handlers.NewSaleHandler(service, mocks.NewMockCustomerService(ctrl), helpers.TestLogger())

		req := httptest.NewRequest(http.MethodPut, "/api/v1/sales/"+saleID.String(),
			bytes.NewReader([]byte(`{"status":"shipped"}`)))
		req.SetPathValue("id", saleID.String())
		w := httptest.NewRecorder()

		handler.UpdateSale(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Success)

		var sale domain.Sale
		require.NoError(t, json.Unmarshal(env.Data, &sale))
		assert.Equal(t, domain.SaleShipped, sale.Status)
	})

	t.Run("unknown_sale_maps_to_404", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service := mocks.NewMockSaleService(ctrl)
		service.EXPECT().
			UpdateSale(gomock.Any(), saleID, gomock.Any()).
			Return(nil, fmt.Errorf("failed to load sale: %w", ports.ErrNotFound))

		handler := handlers.NewSaleHandler(service, mocks.NewMockCustomerService(ctrl), helpers.TestLogger())

		req := httptest.NewRequest(http.MethodPut, "/api/v1/sales/"+saleID.String(),
			bytes.NewReader([]byte(`{"notes":"x"}`)))
		req.SetPathValue("id", saleID.String())
		w := httptest.NewRecorder()

		handler.UpdateSale(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSaleHandler_DeleteSale(t *testing.T) {
	saleID := uuid.New()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := mocks.NewMockSaleService(ctrl)
	service.EXPECT().
		DeleteSale(gomock.Any(), saleID).
		Return(nil)

	handler := handlers.NewSaleHandler(service, mocks.NewMockCustomerService(ctrl), helpers.TestLogger())

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/sales/"+saleID.String(), nil)
	req.SetPathValue("id", saleID.String())
	w := httptest.NewRecorder()

	handler.DeleteSale(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Success)
}

func TestSaleHandler_ListSales(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := mocks.NewMockSaleService(ctrl)
	service.EXPECT().
		List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, params ports.SaleListParams) (*ports.SaleListResult, error) {
			assert.Equal(t, "completed", params.Status)
			require.NotNil(t, params.DateFrom)
			assert.Equal(t, "2026-08-01", params.DateFrom.Format("2006-01-02"))
			return &ports.SaleListResult{
				Sales:      []*domain.Sale{helpers.CreateTestSale()},
				Page:       1,
				PageSize:   50,
				TotalCount: 1,
				TotalPages: 1,
			}, nil
		})

	handler := handlers.NewSaleHandler(service, mocks.NewMockCustomerService(ctrl), helpers.TestLogger())

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/sales?status=completed&date_from=2026-08-01", nil)
	w := httptest.NewRecorder()

	handler.ListSales(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSaleHandler_GetStats(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := mocks.NewMockSaleService(ctrl)
	service.EXPECT().
		Stats(gomock.Any()).
		Return(&ports.SalesStats{
			AllTime: ports.StatsBucket{
				Count:   12,
				Revenue: decimal.RequireFromString("5400.00"),
				Profit:  decimal.RequireFromString("1240.00"),
			},
		}, nil)

	handler := handlers.NewSaleHandler(service, mocks.NewMockCustomerService(ctrl), helpers.TestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales/stats", nil)
	w := httptest.NewRecorder()

	handler.GetStats(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Success)

	var stats ports.SalesStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.EqualValues(t, 12, stats.AllTime.Count)
}
