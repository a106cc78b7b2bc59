// internal/handlers/devicetest_handler_test.go
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

func TestDeviceTestHandler_RecordTest(t *testing.T) {
	tests := []struct {
		name           string
		payload        map[string]any
		setupMocks     func(*mocks.MockDeviceTestService)
		expectedStatus int
		validateBody   func(*testing.T, []byte)
	}{
		{
			name: "records_diagnostic_and_returns_201",
			payload: map[string]any{
				"imei":        "356938035643809",
				"model":       "iPhone 14 Pro",
				"result":      "passed",
				"battery_pct": 87,
				"checks":      map[string]string{"screen": "ok", "camera": "ok"},
			},
			setupMocks: func(m *mocks.MockDeviceTestService) {
				m.EXPECT().
					RecordTest(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ any, dt *domain.DeviceTest) error {
						assert.Equal(t, "356938035643809", dt.IMEI)
						assert.Equal(t, domain.TestPassed, dt.Result)
						assert.Equal(t, 87, dt.BatteryPct)
						dt.TestID = uuid.New()
						return nil
					})
			},
			expectedStatus: http.StatusCreated,
			validateBody: func(t *testing.T, body []byte) {
				env := decodeEnvelope(t, body)
				assert.True(t, env.Success)

				var test domain.DeviceTest
				require.NoError(t, json.Unmarshal(env.Data, &test))
				assert.NotEqual(t, uuid.Nil, test.TestID)
				assert.Equal(t, "ok", test.Checks["screen"])
			},
		},
		{
			name:    "missing_result_is_a_bad_request",
			payload: map[string]any{"imei": "356938035643809"},
			setupMocks: func(m *mocks.MockDeviceTestService) {
				m.EXPECT().
					RecordTest(gomock.Any(), gomock.Any()).
					Return(fmt.Errorf("validation failed: result is required"))
			},
			expectedStatus: http.StatusBadRequest,
			validateBody: func(t *testing.T, body []byte) {
				env := decodeEnvelope(t, body)
				assert.False(t, env.Success)
				assert.Contains(t, env.Message, "result is required")
			},
		},
		{
			name: "storage_failure_maps_to_500",
			payload: map[string]any{
				"imei":   "356938035643809",
				"result": "failed",
			},
			setupMocks: func(m *mocks.MockDeviceTestService) {
				m.EXPECT().
					RecordTest(gomock.Any(), gomock.Any()).
					Return(fmt.Errorf("failed to save test: connection refused"))
			},
			expectedStatus: http.StatusInternalServerError,
			validateBody: func(t *testing.T, body []byte) {
				env := decodeEnvelope(t, body)
				assert.False(t, env.Success)
				assert.Equal(t, "Failed to record test", env.Message)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := mocks.NewMockDeviceTestService(ctrl)
			tt.setupMocks(service)

			handler := handlers.NewDeviceTestHandler(service, helpers.TestLogger())

			body, err := json.Marshal(tt.payload)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/tests", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.RecordTest(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			tt.validateBody(t, w.Body.Bytes())
		})
	}
}

func TestDeviceTestHandler_RecordTest_InvalidJSON(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := mocks.NewMockDeviceTestService(ctrl)
	handler := handlers.NewDeviceTestHandler(service, helpers.TestLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tests",
		bytes.NewReader([]byte(`{"imei": `)))
	w := httptest.NewRecorder()

	handler.RecordTest(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	env := decodeEnvelope(t, w.Body.Bytes())
	assert.Equal(t, "Invalid request body", env.Message)
}

func TestDeviceTestHandler_ListTests(t *testing.T) {
	t.Run("passes_imei_and_result_filters", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service := mocks.NewMockDeviceTestService(ctrl)
		service.EXPECT().
			List(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, params ports.TestListParams) (*ports.TestListResult, error) {
				assert.Equal(t, "356938035643809", params.IMEI)
				assert.Equal(t, "failed", params.Result)
				assert.Equal(t, 2, params.Page)
				assert.Equal(t, 25, params.PageSize)
				return &ports.TestListResult{
					Tests:      []*domain.DeviceTest{helpers.CreateTestDeviceTest()},
					Page:       2,
					PageSize:   25,
					TotalCount: 26,
					TotalPages: 2,
				}, nil
			})

		handler := handlers.NewDeviceTestHandler(service, helpers.TestLogger())

		req := httptest.NewRequest(http.MethodGet,
			"/api/v1/tests?imei=356938035643809&result=failed&page=2&limit=25", nil)
		w := httptest.NewRecorder()

		handler.ListTests(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Success)

		var result ports.TestListResult
		require.NoError(t, json.Unmarshal(env.Data, &result))
		assert.Len(t, result.Tests, 1)
		assert.Equal(t, int64(26), result.TotalCount)
	})

	t.Run("list_failure_maps_to_500", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service := mocks.NewMockDeviceTestService(ctrl)
		service.EXPECT().
			List(gomock.Any(), gomock.Any()).
			Return(nil, fmt.Errorf("query timeout"))

		handler := handlers.NewDeviceTestHandler(service, helpers.TestLogger())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/tests", nil)
		w := httptest.NewRecorder()

		handler.ListTests(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "Failed to list tests", env.Message)
	})
}
