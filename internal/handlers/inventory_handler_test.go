// internal/handlers/inventory_handler_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/phonedesk/phonedesk-be/internal/core/domain"
	"github.com/phonedesk/phonedesk-be/internal/core/ports"
	"github.com/phonedesk/phonedesk-be/internal/handlers"
	"github.com/phonedesk/phonedesk-be/test/helpers"
	"github.com/phonedesk/phonedesk-be/test/mocks"
)

// responseEnvelope mirrors the uniform API response shape.
type responseEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

func decodeEnvelope(t *testing.T, body []byte) responseEnvelope {
	t.Helper()
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}

func TestInventoryHandler_GetLot(t *testing.T) {
	testLot := helpers.CreateTestLot()

	tests := []struct {
		name           string
		lotID          string
		setupMocks     func(*mocks.MockLedgerService)
		expectedStatus int
		validateBody   func(*testing.T, []byte)
	}{
		{
			name:  "successfully_retrieves_lot",
			lotID: testLot.LotID.String(),
			setupMocks: func(m *mocks.MockLedgerService) {
				m.EXPECT().
					GetLot(gomock.Any(), testLot.LotID).
					Return(testLot, nil)
			},
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, body []byte) {
				env := decodeEnvelope(t, body)
				assert.True(t, env.Success)

				var lot domain.ProductLot
				require.NoError(t, json.Unmarshal(env.Data, &lot))
				assert.Equal(t, testLot.LotID, lot.LotID)
				assert.Equal(t, testLot.Model, lot.Model)
			},
		},
		{
			name:           "invalid_uuid_format",
			lotID:          "not-a-uuid",
			setupMocks:     func(m *mocks.MockLedgerService) {},
			expectedStatus: http.StatusBadRequest,
			validateBody: func(t *testing.T, body []byte) {
				env := decodeEnvelope(t, body)
				assert.False(t, env.Success)
				assert.Equal(t, "Invalid lot ID format", env.Message)
			},
		},
		{
			name:  "lot_not_found",
			lotID: uuid.New().String(),
			setupMocks: func(m *mocks.MockLedgerService) {
				m.EXPECT().
					GetLot(gomock.Any(), gomock.Any()).
					Return(nil, fmt.Errorf("failed to get lot: %w", ports.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
			validateBody: func(t *testing.T, body []byte) {
				env := decodeEnvelope(t, body)
				assert.False(t, env.Success)
				assert.Equal(t, "Record not found", env.Message)
			},
		},
		{
			name:  "service_error_maps_to_500",
			lotID: uuid.New().String(),
			setupMocks: func(m *mocks.MockLedgerService) {
				m.EXPECT().
					GetLot(gomock.Any(), gomock.Any()).
					Return(nil, fmt.Errorf("connection refused"))
			},
			expectedStatus: http.StatusInternalServerError,
			validateBody: func(t *testing.T, body []byte) {
				env := decodeEnvelope(t, body)
				assert.False(t, env.Success)
				assert.Equal(t, "Failed to retrieve lot", env.Message)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := mocks.NewMockLedgerService(ctrl)
			tt.setupMocks(service)

			handler := handlers.NewInventoryHandler(service, helpers.TestLogger())

			req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory/"+tt.lotID, nil)
			req.SetPathValue("id", tt.lotID)
			w := httptest.NewRecorder()

			handler.GetLot(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			tt.validateBody(t, w.Body.Bytes())
		})
	}
}

func TestInventoryHandler_CreateLot(t *testing.T) {
	tests := []struct {
		name           string
		payload        map[string]any
		setupMocks     func(*mocks.MockLedgerService)
		expectedStatus int
	}{
		{
			name: "creates_lot_with_devices",
			payload: map[string]any{
				"model":        "iPhone 14",
				"brand":        "Apple",
				"cost_price":   "420.00",
				"retail_price": "560.00",
				"devices": []map[string]any{
					{"imei": "490154203237518", "condition": "used"},
				},
			},
			setupMocks: func(m *mocks.MockLedgerService) {
				m.EXPECT().
					SaveLot(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ any, lot *domain.ProductLot) error {
						assert.Equal(t, "iPhone 14", lot.Model)
						require.Len(t, lot.Devices, 1)
						assert.Equal(t, "490154203237518", lot.Devices[0].IMEI)
						return nil
					})
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "rejects_missing_model",
			payload: map[string]any{
				"cost_price": "420.00",
			},
			setupMocks:     func(m *mocks.MockLedgerService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "rejects_device_without_imei",
			payload: map[string]any{
				"model": "iPhone 14",
				"devices": []map[string]any{
					{"condition": "used"},
				},
			},
			setupMocks:     func(m *mocks.MockLedgerService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := mocks.NewMockLedgerService(ctrl)
			tt.setupMocks(service)

			handler := handlers.NewInventoryHandler(service, helpers.TestLogger())

			body, err := json.Marshal(tt.payload)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.CreateLot(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			env := decodeEnvelope(t, w.Body.Bytes())
			assert.Equal(t, tt.expectedStatus < 400, env.Success)
		})
	}
}

func TestInventoryHandler_DeleteLot(t *testing.T) {
	lotID := uuid.New()

	tests := []struct {
		name           string
		query          string
		setupMocks     func(*mocks.MockLedgerService)
		expectedStatus int
	}{
		{
			name:  "soft_delete_by_default",
			query: "",
			setupMocks: func(m *mocks.MockLedgerService) {
				m.EXPECT().
					DeleteLot(gomock.Any(), lotID, false).
					Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "permanent_delete_on_request",
			query: "?permanent=true",
			setupMocks: func(m *mocks.MockLedgerService) {
				m.EXPECT().
					DeleteLot(gomock.Any(), lotID, true).
					Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "not_found",
			query: "",
			setupMocks: func(m *mocks.MockLedgerService) {
				m.EXPECT().
					DeleteLot(gomock.Any(), lotID, false).
					Return(fmt.Errorf("failed to delete lot: %w", ports.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := mocks.NewMockLedgerService(ctrl)
			tt.setupMocks(service)

			handler := handlers.NewInventoryHandler(service, helpers.TestLogger())

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/inventory/"+lotID.String()+tt.query, nil)
			req.SetPathValue("id", lotID.String())
			w := httptest.NewRecorder()

			handler.DeleteLot(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestInventoryHandler_ListLots(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := mocks.NewMockLedgerService(ctrl)
	service.EXPECT().
		List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, params ports.LotListParams) (*ports.LotListResult, error) {
			assert.Equal(t, "iphone", params.Search)
			assert.Equal(t, 2, params.Page)
			assert.Equal(t, 100, params.PageSize)
			require.NotNil(t, params.InStock)
			assert.True(t, *params.InStock)
			return &ports.LotListResult{
				Lots:       []*domain.ProductLot{helpers.CreateTestLot()},
				Page:       2,
				PageSize:   100,
				TotalCount: 101,
				TotalPages: 2,
			}, nil
		})

	handler := handlers.NewInventoryHandler(service, helpers.TestLogger())

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/inventory?search=iphone&page=2&limit=500&in_stock=true", nil)
	w := httptest.NewRecorder()

	handler.ListLots(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Success)

	var result ports.LotListResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Len(t, result.Lots, 1)
	assert.EqualValues(t, 101, result.TotalCount)
}
