// test/benchmarks/helpers.go
package benchmarks

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phonedesk/phonedesk-be/internal/core/domain"
)

var benchModels = []string{
	"iPhone 13", "iPhone 14 Pro", "Galaxy S23", "Pixel 8", "Redmi Note 12",
}

// createBenchmarkLot builds a lot with the given number of device rows.
func createBenchmarkLot(numDevices int) *domain.ProductLot {
	lot := &domain.ProductLot{
		LotID:       uuid.New(),
		Model:       benchModels[numDevices%len(benchModels)],
		Brand:       "Apple",
		Quantity:    numDevices,
		CostPrice:   decimal.NewFromInt(380),
		RetailPrice: decimal.NewFromInt(520),
		Storage:     "128GB",
		Color:       "Midnight",
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	for i := 0; i < numDevices; i++ {
		lot.Devices = append(lot.Devices, domain.Device{
			IMEI:         fmt.Sprintf("4901542032%05d", i),
			UnlockStatus: domain.UnlockUnlocked,
			Condition:    domain.ConditionUsed,
			Grade:        "A",
		})
	}
	return lot
}

// createBenchmarkSale builds a sale with the given number of line items.
func createBenchmarkSale(numItems int) *domain.Sale {
	sale := &domain.Sale{
		SaleID:        uuid.New(),
		SaleNumber:    fmt.Sprintf("SL202608-%04d", numItems),
		CustomerName:  "Benchmark Buyer",
		PaymentStatus: domain.PaymentPaid,
		Status:        domain.SaleCompleted,
		Discount:      decimal.NewFromInt(10),
		Tax:           decimal.NewFromInt(25),
		CreatedAt:     time.Now(),
	}
	for i := 0; i < numItems; i++ {
		lotID := uuid.New()
		sale.Items = append(sale.Items, domain.SaleItem{
			LotID:     &lotID,
			IMEI:      fmt.Sprintf("3581234567%05d", i),
			Model:     benchModels[i%len(benchModels)],
			CostPrice: decimal.NewFromInt(380),
			SalePrice: decimal.NewFromInt(520),
		})
	}
	return sale
}

// createBenchmarkTimeline builds an unsorted event slice spanning all sources.
func createBenchmarkTimeline(numEvents int) []domain.TimelineEvent {
	sources := []domain.EventSource{
		domain.SourceInventory, domain.SourceInvoice, domain.SourceSale, domain.SourceTest,
	}
	events := make([]domain.TimelineEvent, 0, numEvents)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < numEvents; i++ {
		events = append(events, domain.TimelineEvent{
			Source: sources[i%len(sources)],
			Date:   base.Add(time.Duration((i*37)%numEvents) * time.Hour),
			Title:  fmt.Sprintf("event %d", i),
		})
	}
	return events
}
