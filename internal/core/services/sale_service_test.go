// internal/core/services/sale_service_test.go
package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/phonedesk/phonedesk-be/internal/core/domain"
	"github.com/phonedesk/phonedesk-be/internal/core/ports"
	"github.com/phonedesk/phonedesk-be/internal/core/services"
	"github.com/phonedesk/phonedesk-be/test/helpers"
	"github.com/phonedesk/phonedesk-be/test/mocks"
)

type saleMocks struct {
	sales     *mocks.MockSaleRepository
	ledger    *mocks.MockLedgerService
	customers *mocks.MockCustomerService
	cache     *mocks.MockCacheRepository
}

func newSaleService(t *testing.T) (*services.SaleService, saleMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := saleMocks{
		sales:     mocks.NewMockSaleRepository(ctrl),
		ledger:    mocks.NewMockLedgerService(ctrl),
		customers: mocks.NewMockCustomerService(ctrl),
		cache:     mocks.NewMockCacheRepository(ctrl),
	}
	m.cache.EXPECT().DeletePattern(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	svc := services.NewSaleService(m.sales, m.ledger, m.customers, m.cache, helpers.TestLogger())
	return svc, m
}

func TestSaleService_CreateSale(t *testing.T) {
	ctx := context.Background()

	t.Run("consumes_inventory_and_copies_cost_price", func(t *testing.T) {
		svc, m := newSaleService(t)

		sale := helpers.CreateTestSale()
		lotID := *sale.Items[0].LotID
		imei := sale.Items[0].IMEI
		sale.Items[0].CostPrice = decimal.Zero

		lot := helpers.CreateTestLot(func(l *domain.ProductLot) {
			l.LotID = lotID
			l.CostPrice = decimal.NewFromFloat(350.00)
		})

		m.ledger.EXPECT().GetLot(gomock.Any(), lotID).Return(lot, nil)
		m.ledger.EXPECT().MarkSold(gomock.Any(), lotID, imei, gomock.Any()).Return(nil)
		m.sales.EXPECT().Count(gomock.Any()).Return(int64(6), nil)
		m.sales.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

		created, err := svc.CreateSale(ctx, sale)
		require.NoError(t, err)

		require.NotNil(t, created.Items[0].LotID)
		assert.True(t, created.Items[0].CostPrice.Equal(decimal.NewFromFloat(350.00)))
		assert.Equal(t, domain.FormatSaleNumber(created.CreatedAt, 7), created.SaleNumber)
		assert.Equal(t, domain.SaleCompleted, created.Status)
	})

	t.Run("falls_back_to_manual_line_when_device_already_sold", func(t *testing.T) {
		svc, m := newSaleService(t)

		sale := helpers.CreateTestSale()
		lotID := *sale.Items[0].LotID

		m.ledger.EXPECT().GetLot(gomock.Any(), lotID).Return(helpers.CreateTestLot(), nil)
		m.ledger.EXPECT().MarkSold(gomock.Any(), lotID, gomock.Any(), gomock.Any()).
			Return(ports.ErrDeviceUnavailable)
		m.sales.EXPECT().Count(gomock.Any()).Return(int64(0), nil)
		m.sales.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

		created, err := svc.CreateSale(ctx, sale)
		require.NoError(t, err)
		assert.Nil(t, created.Items[0].LotID, "unclaimable device should turn the line manual")
	})

	t.Run("falls_back_to_manual_line_when_lot_missing", func(t *testing.T) {
		svc, m := newSaleService(t)

		sale := helpers.CreateTestSale()
		lotID := *sale.Items[0].LotID

		m.ledger.EXPECT().GetLot(gomock.Any(), lotID).Return(nil, ports.ErrNotFound)
		m.sales.EXPECT().Count(gomock.Any()).Return(int64(0), nil)
		m.sales.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

		created, err := svc.CreateSale(ctx, sale)
		require.NoError(t, err)
		assert.Nil(t, created.Items[0].LotID)
	})

	t.Run("records_customer_purchase_without_shipping_cost", func(t *testing.T) {
		svc, m := newSaleService(t)

		customerID := uuid.New()
		sale := helpers.CreateTestSale(func(s *domain.Sale) {
			s.CustomerID = &customerID
			s.Items = []domain.SaleItem{
				{Model: "iPhone 13", SalePrice: decimal.NewFromFloat(300.00)},
			}
			s.Discount = decimal.NewFromFloat(20.00)
			s.Tax = decimal.NewFromFloat(10.00)
			s.Shipping = &domain.Shipping{Cost: decimal.NewFromFloat(50.00)}
			s.ComputeTotals()
		})

		m.sales.EXPECT().Count(gomock.Any()).Return(int64(0), nil)
		m.sales.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
		m.customers.EXPECT().
			RecordPurchase(gomock.Any(), customerID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, record domain.PurchaseRecord) error {
				assert.True(t, record.Amount.Equal(decimal.NewFromFloat(290.00)),
					"purchase amount should exclude shipping: got %s", record.Amount)
				return nil
			})

		_, err := svc.CreateSale(ctx, sale)
		require.NoError(t, err)
	})

	t.Run("stats_failure_surfaces_after_sale_is_saved", func(t *testing.T) {
		svc, m := newSaleService(t)

		customerID := uuid.New()
		sale := helpers.CreateTestSale(func(s *domain.Sale) {
			s.CustomerID = &customerID
			s.Items[0].LotID = nil
		})

		m.sales.EXPECT().Count(gomock.Any()).Return(int64(0), nil)
		m.sales.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
		m.customers.EXPECT().
			RecordPurchase(gomock.Any(), customerID, gomock.Any()).
			Return(errors.New("customer gone"))

		_, err := svc.CreateSale(ctx, sale)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "customer stats failed")
	})

	t.Run("validation_failure_touches_nothing", func(t *testing.T) {
		svc, _ := newSaleService(t)

		sale := helpers.CreateTestSale(func(s *domain.Sale) {
			s.Items = nil
		})

		_, err := svc.CreateSale(ctx, sale)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation failed")
	})
}

func TestSaleService_UpdateSale(t *testing.T) {
	ctx := context.Background()

	t.Run("recomputes_totals_when_items_change", func(t *testing.T) {
		svc, m := newSaleService(t)

		existing := helpers.CreateTestSale()
		m.sales.EXPECT().FindByID(gomock.Any(), existing.SaleID).Return(existing, nil)
		m.sales.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

		patch := ports.SalePatch{
			Items: []domain.SaleItem{
				{
					Model:     "iPhone 13",
					CostPrice: decimal.NewFromFloat(320.00),
					SalePrice: decimal.NewFromFloat(450.00),
				},
				{
					Model:     "Galaxy S23",
					CostPrice: decimal.NewFromFloat(300.00),
					SalePrice: decimal.NewFromFloat(380.00),
				},
			},
		}

		updated, err := svc.UpdateSale(ctx, existing.SaleID, patch)
		require.NoError(t, err)
		assert.True(t, updated.Subtotal.Equal(decimal.NewFromFloat(830.00)))
		assert.True(t, updated.TotalProfit.Equal(decimal.NewFromFloat(210.00)))
	})

	t.Run("customer_change_records_purchase_on_new_customer_only", func(t *testing.T) {
		svc, m := newSaleService(t)

		oldCustomer := uuid.New()
		newCustomer := uuid.New()
		existing := helpers.CreateTestSale(func(s *domain.Sale) {
			s.CustomerID = &oldCustomer
		})

		m.sales.EXPECT().FindByID(gomock.Any(), existing.SaleID).Return(existing, nil)
		m.sales.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		m.customers.EXPECT().
			RecordPurchase(gomock.Any(), newCustomer, gomock.Any()).
			Return(nil)

		_, err := svc.UpdateSale(ctx, existing.SaleID, ports.SalePatch{CustomerID: &newCustomer})
		require.NoError(t, err)
	})

	t.Run("not_found_passes_through", func(t *testing.T) {
		svc, m := newSaleService(t)

		id := uuid.New()
		m.sales.EXPECT().FindByID(gomock.Any(), id).Return(nil, ports.ErrNotFound)

		_, err := svc.UpdateSale(ctx, id, ports.SalePatch{})
		require.ErrorIs(t, err, ports.ErrNotFound)
	})
}

func TestSaleService_DeleteSale(t *testing.T) {
	ctx := context.Background()

	t.Run("returns_devices_to_stock", func(t *testing.T) {
		svc, m := newSaleService(t)

		sale := helpers.CreateTestSale()
		lotID := *sale.Items[0].LotID
		imei := sale.Items[0].IMEI

		m.sales.EXPECT().FindByID(gomock.Any(), sale.SaleID).Return(sale, nil)
		m.ledger.EXPECT().MarkUnsold(gomock.Any(), lotID, imei).Return(nil)
		m.sales.EXPECT().Delete(gomock.Any(), sale.SaleID).Return(nil)

		require.NoError(t, svc.DeleteSale(ctx, sale.SaleID))
	})

	t.Run("skips_devices_that_cannot_be_released", func(t *testing.T) {
		svc, m := newSaleService(t)

		sale := helpers.CreateTestSale()
		lotID := *sale.Items[0].LotID

		m.sales.EXPECT().FindByID(gomock.Any(), sale.SaleID).Return(sale, nil)
		m.ledger.EXPECT().MarkUnsold(gomock.Any(), lotID, gomock.Any()).
			Return(ports.ErrNotFound)
		m.sales.EXPECT().Delete(gomock.Any(), sale.SaleID).Return(nil)

		require.NoError(t, svc.DeleteSale(ctx, sale.SaleID),
			"an unreleasable device must not block deletion")
	})

	t.Run("never_touches_customer_statistics", func(t *testing.T) {
		svc, m := newSaleService(t)

		customerID := uuid.New()
		sale := helpers.CreateTestSale(func(s *domain.Sale) {
			s.CustomerID = &customerID
			s.Items[0].LotID = nil
		})

		m.sales.EXPECT().FindByID(gomock.Any(), sale.SaleID).Return(sale, nil)
		m.sales.EXPECT().Delete(gomock.Any(), sale.SaleID).Return(nil)
		// no RecordPurchase expectation: lifetime stats stay as they are

		require.NoError(t, svc.DeleteSale(ctx, sale.SaleID))
	})
}

func TestSaleService_Stats(t *testing.T) {
	ctx := context.Background()

	t.Run("serves_from_cache_wrapper", func(t *testing.T) {
		svc, m := newSaleService(t)

		want := &ports.SalesStats{
			AllTime: ports.StatsBucket{
				Count:   12,
				Revenue: decimal.NewFromFloat(5400.00),
				Profit:  decimal.NewFromFloat(1200.00),
			},
		}

		m.cache.EXPECT().
			GetOrSet(gomock.Any(), "sale_stats:summary", gomock.Any(), gomock.Any(), time.Minute).
			DoAndReturn(func(_ context.Context, _ string, dest any, fetch func() (any, error), _ time.Duration) error {
				v, err := fetch()
				if err != nil {
					return err
				}
				*dest.(*ports.SalesStats) = *v.(*ports.SalesStats)
				return nil
			})
		m.sales.EXPECT().Stats(gomock.Any()).Return(want, nil)

		got, err := svc.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(12), got.AllTime.Count)
		assert.True(t, got.AllTime.Revenue.Equal(want.AllTime.Revenue))
	})

	t.Run("falls_through_to_repository_on_cache_failure", func(t *testing.T) {
		svc, m := newSaleService(t)

		want := &ports.SalesStats{AllTime: ports.StatsBucket{Count: 3}}
		m.cache.EXPECT().
			GetOrSet(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("redis down"))
		m.sales.EXPECT().Stats(gomock.Any()).Return(want, nil)

		got, err := svc.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), got.AllTime.Count)
	})
}
