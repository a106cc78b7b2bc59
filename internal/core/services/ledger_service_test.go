// internal/core/services/ledger_service_test.go
package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/phonedesk/phonedesk-be/internal/core/domain"
	"github.com/phonedesk/phonedesk-be/internal/core/ports"
	"github.com/phonedesk/phonedesk-be/internal/core/services"
	"github.com/phonedesk/phonedesk-be/test/helpers"
	"github.com/phonedesk/phonedesk-be/test/mocks"
)

func newLedgerService(t *testing.T) (*services.LedgerService, *mocks.MockLotRepository, *mocks.MockCacheRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)

	repo := mocks.NewMockLotRepository(ctrl)
	cache := mocks.NewMockCacheRepository(ctrl)
	cache.EXPECT().DeletePattern(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	return services.NewLedgerService(repo, cache, helpers.TestLogger()), repo, cache
}

func TestLedgerService_SaveLot(t *testing.T) {
	tests := []struct {
		name          string
		lot           *domain.ProductLot
		setupMocks    func(*mocks.MockLotRepository)
		expectedError bool
		errorContains string
	}{
		{
			name: "successful_save_with_valid_lot",
			lot:  helpers.CreateTestLot(),
			setupMocks: func(m *mocks.MockLotRepository) {
				m.EXPECT().
					Save(gomock.Any(), gomock.Any()).
					Return(nil)
			},
		},
		{
			name: "validation_fails_for_missing_model",
			lot: helpers.CreateTestLot(func(l *domain.ProductLot) {
				l.Model = ""
			}),
			setupMocks:    func(m *mocks.MockLotRepository) {},
			expectedError: true,
			errorContains: "model is required",
		},
		{
			name: "validation_fails_for_duplicate_imei",
			lot: helpers.CreateTestLot(func(l *domain.ProductLot) {
				l.Devices[1].IMEI = l.Devices[0].IMEI
			}),
			setupMocks:    func(m *mocks.MockLotRepository) {},
			expectedError: true,
			errorContains: "duplicate imei",
		},
		{
			name: "repository_save_error",
			lot:  helpers.CreateTestLot(),
			setupMocks: func(m *mocks.MockLotRepository) {
				m.EXPECT().
					Save(gomock.Any(), gomock.Any()).
					Return(assert.AnError)
			},
			expectedError: true,
			errorContains: "failed to save lot",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newLedgerService(t)
			tt.setupMocks(repo)

			err := svc.SaveLot(context.Background(), tt.lot)
			if tt.expectedError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, tt.lot.LotID.String(), "00000000-0000-0000-0000-000000000000")
		})
	}
}

func TestLedgerService_MarkSold(t *testing.T) {
	ctx := context.Background()

	t.Run("passes_unavailable_error_through_unwrapped", func(t *testing.T) {
		svc, repo, _ := newLedgerService(t)
		lot := helpers.CreateTestLot()

		repo.EXPECT().
			MarkDeviceSold(gomock.Any(), lot.LotID, "490154203237518", gomock.Any()).
			Return(ports.ErrDeviceUnavailable)

		err := svc.MarkSold(ctx, lot.LotID, "490154203237518", time.Now())
		require.ErrorIs(t, err, ports.ErrDeviceUnavailable)
	})

	t.Run("successful_claim", func(t *testing.T) {
		svc, repo, _ := newLedgerService(t)
		lot := helpers.CreateTestLot()
		soldAt := time.Now()

		repo.EXPECT().
			MarkDeviceSold(gomock.Any(), lot.LotID, "490154203237518", soldAt).
			Return(nil)

		require.NoError(t, svc.MarkSold(ctx, lot.LotID, "490154203237518", soldAt))
	})
}
