// internal/core/services/lifecycle_service_test.go
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

type lifecycleMocks struct {
	lots     *mocks.MockLotRepository
	sales    *mocks.MockSaleRepository
	invoices *mocks.MockInvoiceRepository
	tests    *mocks.MockDeviceTestRepository
}

func newLifecycleService(t *testing.T) (*services.LifecycleService, lifecycleMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := lifecycleMocks{
		lots:     mocks.NewMockLotRepository(ctrl),
		sales:    mocks.NewMockSaleRepository(ctrl),
		invoices: mocks.NewMockInvoiceRepository(ctrl),
		tests:    mocks.NewMockDeviceTestRepository(ctrl),
	}

	// cache nil: History goes straight to the repositories
	svc := services.NewLifecycleService(m.lots, m.sales, m.invoices, m.tests, nil, helpers.TestLogger())
	return svc, m
}

func TestLifecycleService_History(t *testing.T) {
	ctx := context.Background()
	const imei = "490154203237518"

	t.Run("rejects_short_identifiers", func(t *testing.T) {
		svc, _ := newLifecycleService(t)

		_, err := svc.History(ctx, "1234")
		require.ErrorIs(t, err, services.ErrInvalidIMEI)
	})

	t.Run("merges_all_sources_newest_first", func(t *testing.T) {
		svc, m := newLifecycleService(t)

		day1 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
		day2 := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
		day3 := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)

		lot := helpers.CreateTestLot(func(l *domain.ProductLot) { l.CreatedAt = day1 })
		device := &lot.Devices[0]

		m.lots.EXPECT().FindByDeviceIMEI(gomock.Any(), imei, false).Return(lot, device, nil)
		m.invoices.EXPECT().SearchByText(gomock.Any(), imei, 5).
			Return([]domain.SupplierInvoice{*helpers.CreateTestInvoice(func(inv *domain.SupplierInvoice) {
				inv.InvoiceDate = day1
			})}, nil)
		m.sales.EXPECT().FindByItemIMEI(gomock.Any(), imei, 5).
			Return([]domain.Sale{*helpers.CreateTestSale(func(s *domain.Sale) {
				s.CreatedAt = day3
			})}, nil)
		m.tests.EXPECT().FindByIMEI(gomock.Any(), imei, 10).
			Return([]domain.DeviceTest{*helpers.CreateTestDeviceTest(func(dt *domain.DeviceTest) {
				dt.TestedAt = day2
			})}, nil)

		history, err := svc.History(ctx, imei)
		require.NoError(t, err)

		assert.True(t, history.Found)
		require.NotNil(t, history.Lot)
		require.Len(t, history.Sales, 1)
		require.Len(t, history.Invoices, 1)
		require.Len(t, history.Tests, 1)

		require.NotEmpty(t, history.Timeline)
		assert.Equal(t, domain.SourceSale, history.Timeline[0].Source)
		assert.Equal(t, "450", history.Timeline[0].Details["sale_price"])
		assert.Equal(t, "100", history.Timeline[0].Details["profit"])
		for i := 1; i < len(history.Timeline); i++ {
			assert.False(t, history.Timeline[i-1].Date.Before(history.Timeline[i].Date),
				"timeline must be ordered newest first")
		}
	})

	t.Run("unknown_imei_reports_not_found", func(t *testing.T) {
		svc, m := newLifecycleService(t)

		m.lots.EXPECT().FindByDeviceIMEI(gomock.Any(), imei, false).
			Return(nil, nil, ports.ErrNotFound)
		m.invoices.EXPECT().SearchByText(gomock.Any(), imei, 5).Return(nil, nil)
		m.sales.EXPECT().FindByItemIMEI(gomock.Any(), imei, 5).Return(nil, nil)
		m.tests.EXPECT().FindByIMEI(gomock.Any(), imei, 10).Return(nil, nil)

		history, err := svc.History(ctx, imei)
		require.NoError(t, err)
		assert.False(t, history.Found)
		assert.Empty(t, history.Timeline)
	})

	t.Run("one_failing_source_does_not_blank_the_rest", func(t *testing.T) {
		svc, m := newLifecycleService(t)

		m.lots.EXPECT().FindByDeviceIMEI(gomock.Any(), imei, false).
			Return(nil, nil, assert.AnError)
		m.invoices.EXPECT().SearchByText(gomock.Any(), imei, 5).Return(nil, assert.AnError)
		m.sales.EXPECT().FindByItemIMEI(gomock.Any(), imei, 5).
			Return([]domain.Sale{*helpers.CreateTestSale()}, nil)
		m.tests.EXPECT().FindByIMEI(gomock.Any(), imei, 10).Return(nil, nil)

		history, err := svc.History(ctx, imei)
		require.NoError(t, err)
		assert.True(t, history.Found)
		require.Len(t, history.Sales, 1)
	})
}
