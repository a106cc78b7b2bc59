// internal/core/services/lifecycle.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phonedesk/phonedesk-be/internal/core/domain"
	"github.com/phonedesk/phonedesk-be/internal/core/ports"
)

// ErrInvalidIMEI is returned for lookups with an implausibly short identifier.
var ErrInvalidIMEI = errors.New("imei must be at least 5 characters")

const historyCacheTTL = 5 * time.Minute

const (
	invoiceHistoryLimit = 5
	saleHistoryLimit    = 5
	testHistoryLimit    = 10
)

// LifecycleService assembles the cross-module history of a single IMEI:
// where it entered inventory, which supplier invoices mention it, the sales
// it appears on, and its diagnostic record.
type LifecycleService struct {
	lots     ports.LotRepository
	sales    ports.SaleRepository
	invoices ports.InvoiceRepository
	tests    ports.DeviceTestRepository
	cache    ports.CacheRepository
	logger   *slog.Logger
}

var _ ports.LifecycleService = (*LifecycleService)(nil)

// NewLifecycleService creates a new device lifecycle service
func NewLifecycleService(
	lots ports.LotRepository,
	sales ports.SaleRepository,
	invoices ports.InvoiceRepository,
	tests ports.DeviceTestRepository,
	cache ports.CacheRepository,
	logger *slog.Logger,
) *LifecycleService {
	return &LifecycleService{
		lots:     lots,
		sales:    sales,
		invoices: invoices,
		tests:    tests,
		cache:    cache,
		logger:   logger.With(slog.String("service", "lifecycle")),
	}
}

// History resolves everything known about one IMEI. Each source is queried
// independently; a source that errors is logged and simply contributes
// nothing, so a flaky table never blanks the whole timeline.
func (s *LifecycleService) History(ctx context.Context, imei string) (*domain.DeviceHistory, error) {
	if len(imei) < 5 {
		return nil, ErrInvalidIMEI
	}

	if s.cache == nil {
		return s.buildHistory(ctx, imei)
	}

	cacheKey := fmt.Sprintf("imei:%s:history", imei)
	history := &domain.DeviceHistory{}
	err := s.cache.GetOrSet(ctx, cacheKey, history, func() (any, error) {
		return s.buildHistory(ctx, imei)
	}, historyCacheTTL)
	if err != nil {
		return s.buildHistory(ctx, imei)
	}
	return history, nil
}

func (s *LifecycleService) buildHistory(ctx context.Context, imei string) (*domain.DeviceHistory, error) {
	history := &domain.DeviceHistory{IMEI: imei}
	var events []domain.TimelineEvent

	lot, device, err := s.lots.FindByDeviceIMEI(ctx, imei, false)
	switch {
	case err == nil:
		history.Lot = lot
		history.Device = device
		events = append(events, inventoryEvent(lot, device))
		if device.IsSold && device.SoldDate != nil {
			events = append(events, soldEvent(lot, device))
		}
	case !errors.Is(err, ports.ErrNotFound):
		s.logger.WarnContext(ctx, "inventory lookup failed during history build",
			slog.String("imei", imei), slog.Any("err", err))
	}

	invoices, err := s.invoices.SearchByText(ctx, imei, invoiceHistoryLimit)
	if err != nil {
		s.logger.WarnContext(ctx, "invoice search failed during history build",
			slog.String("imei", imei), slog.Any("err", err))
	}
	for i := range invoices {
		history.Invoices = append(history.Invoices, invoices[i])
		events = append(events, invoiceEvent(&invoices[i]))
	}

	sales, err := s.sales.FindByItemIMEI(ctx, imei, saleHistoryLimit)
	if err != nil {
		s.logger.WarnContext(ctx, "sale lookup failed during history build",
			slog.String("imei", imei), slog.Any("err", err))
	}
	for i := range sales {
		history.Sales = append(history.Sales, sales[i])
		events = append(events, saleEvent(&sales[i], imei))
	}

	tests, err := s.tests.FindByIMEI(ctx, imei, testHistoryLimit)
	if err != nil {
		s.logger.WarnContext(ctx, "test lookup failed during history build",
			slog.String("imei", imei), slog.Any("err", err))
	}
	for i := range tests {
		history.Tests = append(history.Tests, tests[i])
		events = append(events, testEvent(&tests[i]))
	}

	history.Found = history.Lot != nil ||
		len(history.Invoices) > 0 ||
		len(history.Sales) > 0 ||
		len(history.Tests) > 0
	history.Timeline = domain.MergeTimeline(events)

	return history, nil
}

func inventoryEvent(lot *domain.ProductLot, device *domain.Device) domain.TimelineEvent {
	return domain.TimelineEvent{
		Source:      domain.SourceInventory,
		Date:        lot.CreatedAt,
		Title:       "Added to inventory",
		Description: fmt.Sprintf("%s %s, lot of %d", lot.Brand, lot.Model, lot.Quantity),
		RefID:       lot.LotID.String(),
		Details: map[string]any{
			"condition": string(device.Condition),
			"grade":     device.Grade,
		},
	}
}

func soldEvent(lot *domain.ProductLot, device *domain.Device) domain.TimelineEvent {
	return domain.TimelineEvent{
		Source: domain.SourceInventory,
		Date:   *device.SoldDate,
		Title:  "Marked as sold",
		RefID:  lot.LotID.String(),
	}
}

func invoiceEvent(inv *domain.SupplierInvoice) domain.TimelineEvent {
	return domain.TimelineEvent{
		Source:      domain.SourceInvoice,
		Date:        inv.InvoiceDate,
		Title:       "Mentioned on supplier invoice",
		Description: inv.SupplierName,
		RefID:       inv.InvoiceID.String(),
		Details: map[string]any{
			"invoice_number": inv.InvoiceNumber,
			"total_amount":   inv.TotalAmount.String(),
		},
	}
}

func saleEvent(sale *domain.Sale, imei string) domain.TimelineEvent {
	event := domain.TimelineEvent{
		Source:      domain.SourceSale,
		Date:        sale.CreatedAt,
		Title:       "Sold to customer",
		Description: sale.CustomerName,
		RefID:       sale.SaleID.String(),
		Details: map[string]any{
			"sale_number": sale.SaleNumber,
			"status":      string(sale.Status),
		},
	}
	for i := range sale.Items {
		if sale.Items[i].IMEI == imei {
			event.Details["sale_price"] = sale.Items[i].SalePrice.String()
			event.Details["profit"] = sale.Items[i].Profit.String()
			break
		}
	}
	return event
}

func testEvent(test *domain.DeviceTest) domain.TimelineEvent {
	return domain.TimelineEvent{
		Source:      domain.SourceTest,
		Date:        test.TestedAt,
		Title:       "Diagnostic test",
		Description: fmt.Sprintf("Result: %s", test.Result),
		RefID:       test.TestID.String(),
		Details: map[string]any{
			"technician":  test.Technician,
			"battery_pct": test.BatteryPct,
		},
	}
}
