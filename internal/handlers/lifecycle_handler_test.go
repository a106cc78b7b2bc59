// internal/handlers/lifecycle_handler_test.go
package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/phonedesk/phonedesk-be/internal/core/domain"
	"github.com/phonedesk/phonedesk-be/internal/core/services"
	"github.com/phonedesk/phonedesk-be/internal/handlers"
	"github.com/phonedesk/phonedesk-be/test/helpers"
	"github.com/phonedesk/phonedesk-be/test/mocks"
)

func TestLifecycleHandler_GetHistory(t *testing.T) {
	const imei = "490154203237518"

	tests := []struct {
		name           string
		imei           string
		setupMocks     func(*mocks.MockLifecycleService)
		expectedStatus int
		validateBody   func(*testing.T, []byte)
	}{
		{
			name: "returns_full_timeline",
			imei: imei,
			setupMocks: func(m *mocks.MockLifecycleService) {
				m.EXPECT().
					History(gomock.Any(), imei).
					Return(&domain.DeviceHistory{
						IMEI:  imei,
						Found: true,
						Timeline: []domain.TimelineEvent{
							{
								Source: domain.SourceSale,
								Title:  "Sold to customer",
								Date:   time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
							},
							{
								Source: domain.SourceInventory,
								Title:  "Added to inventory",
								Date:   time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
							},
						},
					}, nil)
			},
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, body []byte) {
				env := decodeEnvelope(t, body)
				assert.True(t, env.Success)

				var history domain.DeviceHistory
				require.NoError(t, json.Unmarshal(env.Data, &history))
				assert.True(t, history.Found)
				require.Len(t, history.Timeline, 2)
				assert.Equal(t, domain.SourceSale, history.Timeline[0].Source)
			},
		},
		{
			name: "short_imei_is_a_bad_request",
			imei: "1234",
			setupMocks: func(m *mocks.MockLifecycleService) {
				m.EXPECT().
					History(gomock.Any(), "1234").
					Return(nil, services.ErrInvalidIMEI)
			},
			expectedStatus: http.StatusBadRequest,
			validateBody: func(t *testing.T, body []byte) {
				env := decodeEnvelope(t, body)
				assert.False(t, env.Success)
				assert.Equal(t, services.ErrInvalidIMEI.Error(), env.Message)
			},
		},
		{
			name: "unknown_imei_still_succeeds",
			imei: "99999999999",
			setupMocks: func(m *mocks.MockLifecycleService) {
				m.EXPECT().
					History(gomock.Any(), "99999999999").
					Return(&domain.DeviceHistory{IMEI: "99999999999", Found: false}, nil)
			},
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, body []byte) {
				env := decodeEnvelope(t, body)
				assert.True(t, env.Success)

				var history domain.DeviceHistory
				require.NoError(t, json.Unmarshal(env.Data, &history))
				assert.False(t, history.Found)
				assert.Empty(t, history.Timeline)
			},
		},
		{
			name: "lookup_failure_maps_to_500",
			imei: imei,
			setupMocks: func(m *mocks.MockLifecycleService) {
				m.EXPECT().
					History(gomock.Any(), imei).
					Return(nil, fmt.Errorf("cache backend down"))
			},
			expectedStatus: http.StatusInternalServerError,
			validateBody: func(t *testing.T, body []byte) {
				env := decodeEnvelope(t, body)
				assert.False(t, env.Success)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := mocks.NewMockLifecycleService(ctrl)
			tt.setupMocks(service)

			handler := handlers.NewLifecycleHandler(service, helpers.TestLogger())

			req := httptest.NewRequest(http.MethodGet, "/api/v1/imei/"+tt.imei, nil)
			req.SetPathValue("imei", tt.imei)
			w := httptest.NewRecorder()

			handler.GetHistory(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			tt.validateBody(t, w.Body.Bytes())
		})
	}
}
