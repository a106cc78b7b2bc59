// internal/core/services/sale.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phonedesk/phonedesk-be/internal/core/domain"
	"github.com/phonedesk/phonedesk-be/internal/core/ports"
)

const statsCacheKey = "sale_stats:summary"
const statsCacheTTL = time.Minute

// SaleService orchestrates the sale lifecycle: inventory consumption on
// create, stock release on delete, and customer statistics after persist.
type SaleService struct {
	sales     ports.SaleRepository
	ledger    ports.LedgerService
	customers ports.CustomerService
	cache     ports.CacheRepository
	logger    *slog.Logger
	now       func() time.Time
}

var _ ports.SaleService = (*SaleService)(nil)

// NewSaleService creates a new sale service
func NewSaleService(
	sales ports.SaleRepository,
	ledger ports.LedgerService,
	customers ports.CustomerService,
	cache ports.CacheRepository,
	logger *slog.Logger,
) *SaleService {
	return &SaleService{
		sales:     sales,
		ledger:    ledger,
		customers: customers,
		cache:     cache,
		logger:    logger.With(slog.String("service", "sale")),
		now:       time.Now,
	}
}

// CreateSale validates, consumes inventory per line, persists the sale and
// then records customer statistics.
//
// Inventory consumption is best effort per line: a line whose device cannot
// be claimed (unknown lot, unknown IMEI, or lost race against a concurrent
// sale) degrades to a manual line and the sale proceeds. The statistics call
// runs strictly after the sale row is durable; if it fails the sale stays
// and the error surfaces to the caller.
func (s *SaleService) CreateSale(ctx context.Context, sale *domain.Sale) (*domain.Sale, error) {
	if err := sale.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	now := s.now()
	for i := range sale.Items {
		s.consumeInventory(ctx, &sale.Items[i], now)
	}

	number, err := s.allocateSaleNumber(ctx, now)
	if err != nil {
		return nil, err
	}
	sale.SaleNumber = number
	sale.CreatedAt = now
	sale.PrepareForStorage()

	if err := s.sales.Save(ctx, sale); err != nil {
		return nil, fmt.Errorf("failed to save sale: %w", err)
	}
	s.invalidate(ctx)

	s.logger.InfoContext(ctx, "sale created",
		slog.String("sale_id", sale.SaleID.String()),
		slog.String("sale_number", sale.SaleNumber),
		slog.Int("items", len(sale.Items)))

	if sale.CustomerID != nil && *sale.CustomerID != uuid.Nil {
		record := domain.PurchaseRecord{
			SaleID: sale.SaleID,
			Date:   sale.CreatedAt,
			Amount: sale.StatisticsAmount(),
			Items:  sale.ItemSummaries(),
		}
		if err := s.customers.RecordPurchase(ctx, *sale.CustomerID, record); err != nil {
			// the sale is already durable; the caller sees the stats failure
			return nil, fmt.Errorf("sale %s saved but customer stats failed: %w", sale.SaleID, err)
		}
	}

	return sale, nil
}

// consumeInventory claims the device behind an inventory-linked line and
// copies the lot's cost price onto it. Any miss turns the line manual.
func (s *SaleService) consumeInventory(ctx context.Context, item *domain.SaleItem, soldAt time.Time) {
	if !item.InventoryLinked() {
		return
	}

	lot, err := s.ledger.GetLot(ctx, *item.LotID)
	if err != nil {
		s.logger.WarnContext(ctx, "sale line lot lookup failed, falling back to manual line",
			slog.String("imei", item.IMEI),
			slog.Any("err", err))
		item.LotID = nil
		return
	}

	if err := s.ledger.MarkSold(ctx, *item.LotID, item.IMEI, soldAt); err != nil {
		s.logger.WarnContext(ctx, "device could not be claimed, falling back to manual line",
			slog.String("lot_id", item.LotID.String()),
			slog.String("imei", item.IMEI),
			slog.Any("err", err))
		item.LotID = nil
		return
	}

	item.CostPrice = lot.CostPrice
	if item.Model == "" {
		item.Model = lot.Model
	}
	if item.Brand == "" {
		item.Brand = lot.Brand
	}
	if item.Storage == "" {
		item.Storage = lot.Storage
	}
	if item.Color == "" {
		item.Color = lot.Color
	}
	if device := lot.DeviceByIMEI(item.IMEI); device != nil {
		if item.Condition == "" {
			item.Condition = device.Condition
		}
		if item.Grade == "" {
			item.Grade = device.Grade
		}
	}
}

// allocateSaleNumber derives the next number from the current sale count.
// Two concurrent creates can observe the same count and collide; the column
// is not unique and duplicates are tolerated, matching how numbers have
// always been issued here.
func (s *SaleService) allocateSaleNumber(ctx context.Context, at time.Time) (string, error) {
	count, err := s.sales.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to allocate sale number: %w", err)
	}
	return domain.FormatSaleNumber(at, count+1), nil
}

// UpdateSale applies a partial patch. Totals are recomputed whenever items,
// discount or tax appear in the patch. A customer change re-records the
// purchase against the new customer; the old customer's statistics are left
// as they are.
func (s *SaleService) UpdateSale(ctx context.Context, saleID uuid.UUID, patch ports.SalePatch) (*domain.Sale, error) {
	sale, err := s.sales.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	recompute := false
	customerChanged := false

	if patch.Items != nil {
		sale.Items = patch.Items
		recompute = true
	}
	if patch.Discount != nil {
		d, err := decimal.NewFromString(*patch.Discount)
		if err != nil {
			return nil, fmt.Errorf("validation failed: invalid discount: %w", err)
		}
		sale.Discount = d
		recompute = true
	}
	if patch.Tax != nil {
		t, err := decimal.NewFromString(*patch.Tax)
		if err != nil {
			return nil, fmt.Errorf("validation failed: invalid tax: %w", err)
		}
		sale.Tax = t
		recompute = true
	}
	if patch.CustomerID != nil && (sale.CustomerID == nil || *sale.CustomerID != *patch.CustomerID) {
		sale.CustomerID = patch.CustomerID
		customerChanged = true
	}
	if patch.CustomerName != nil {
		sale.CustomerName = *patch.CustomerName
	}
	if patch.Status != nil {
		sale.Status = *patch.Status
	}
	if patch.PaymentMethod != nil {
		sale.PaymentMethod = *patch.PaymentMethod
	}
	if patch.PaymentStatus != nil {
		sale.PaymentStatus = domain.PaymentStatus(*patch.PaymentStatus)
	}
	if patch.AmountPaid != nil {
		p, err := decimal.NewFromString(*patch.AmountPaid)
		if err != nil {
			return nil, fmt.Errorf("validation failed: invalid amount_paid: %w", err)
		}
		sale.AmountPaid = p
	}
	if patch.SalesChannel != nil {
		sale.SalesChannel = *patch.SalesChannel
	}
	if patch.Shipping != nil {
		sale.Shipping = patch.Shipping
	}
	if patch.Costs != nil {
		sale.Costs = patch.Costs
	}
	if patch.Notes != nil {
		sale.Notes = *patch.Notes
	}

	if err := sale.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if recompute {
		sale.ComputeTotals()
	}

	if err := s.sales.Update(ctx, sale); err != nil {
		return nil, fmt.Errorf("failed to update sale: %w", err)
	}
	s.invalidate(ctx)

	if customerChanged && sale.CustomerID != nil && *sale.CustomerID != uuid.Nil {
		record := domain.PurchaseRecord{
			SaleID: sale.SaleID,
			Date:   s.now(),
			Amount: sale.StatisticsAmount(),
			Items:  sale.ItemSummaries(),
		}
		if err := s.customers.RecordPurchase(ctx, *sale.CustomerID, record); err != nil {
			return nil, fmt.Errorf("sale %s updated but customer stats failed: %w", sale.SaleID, err)
		}
	}

	s.logger.InfoContext(ctx, "sale updated", slog.String("sale_id", saleID.String()))
	return sale, nil
}

// DeleteSale returns each claimed device to stock and removes the sale.
// Devices that cannot be released are logged and skipped; customer
// statistics are deliberately left untouched, they are lifetime figures.
func (s *SaleService) DeleteSale(ctx context.Context, saleID uuid.UUID) error {
	sale, err := s.sales.FindByID(ctx, saleID)
	if err != nil {
		return err
	}

	for i := range sale.Items {
		item := &sale.Items[i]
		if !item.InventoryLinked() {
			continue
		}
		if err := s.ledger.MarkUnsold(ctx, *item.LotID, item.IMEI); err != nil {
			s.logger.WarnContext(ctx, "failed to return device to stock, skipping",
				slog.String("lot_id", item.LotID.String()),
				slog.String("imei", item.IMEI),
				slog.Any("err", err))
		}
	}

	if err := s.sales.Delete(ctx, saleID); err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}
	s.invalidate(ctx)

	s.logger.InfoContext(ctx, "sale deleted",
		slog.String("sale_id", saleID.String()),
		slog.String("sale_number", sale.SaleNumber))
	return nil
}

// GetSale retrieves a sale by ID
func (s *SaleService) GetSale(ctx context.Context, saleID uuid.UUID) (*domain.Sale, error) {
	return s.sales.FindByID(ctx, saleID)
}

// List retrieves sales with filtering and pagination
func (s *SaleService) List(ctx context.Context, params ports.SaleListParams) (*ports.SaleListResult, error) {
	result, err := s.sales.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	return result, nil
}

// Stats returns the sales dashboard aggregates, cached briefly
func (s *SaleService) Stats(ctx context.Context) (*ports.SalesStats, error) {
	if s.cache == nil {
		return s.sales.Stats(ctx)
	}

	stats := &ports.SalesStats{}
	err := s.cache.GetOrSet(ctx, statsCacheKey, stats, func() (any, error) {
		return s.sales.Stats(ctx)
	}, statsCacheTTL)
	if err != nil {
		// cache trouble must not take the dashboard down
		if stats, statsErr := s.sales.Stats(ctx); statsErr == nil {
			return stats, nil
		}
		return nil, fmt.Errorf("failed to get sales stats: %w", err)
	}
	return stats, nil
}

func (s *SaleService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	for _, pattern := range []string{"sale_stats:*", "imei:*"} {
		if err := s.cache.DeletePattern(ctx, pattern); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.WarnContext(ctx, "cache invalidation failed",
				slog.String("pattern", pattern),
				slog.Any("err", err))
		}
	}
}
