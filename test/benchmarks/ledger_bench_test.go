package benchmarks

import (
	"context"
	"fmt"
	"testing"

	"github.com/phonedesk/phonedesk-be/internal/adapters/db"
	"github.com/phonedesk/phonedesk-be/internal/core/domain"
	"github.com/phonedesk/phonedesk-be/internal/core/ports"
	"github.com/phonedesk/phonedesk-be/test/helpers"
)

func BenchmarkLotOperations(b *testing.B) {
	// Setup
	testDB := helpers.SetupTestDB(&testing.T{})
	defer testDB.Database.Close()

	repo := db.NewLotRepository(testDB.Database, helpers.TestLogger())
	ctx := context.Background()

	b.Run("Save", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			lot := createBenchmarkLot(10)
			_ = repo.Save(ctx, lot)
		}
	})

	// Pre-create lots for read benchmarks
	var lots []*domain.ProductLot
	for i := 0; i < 100; i++ {
		lot := helpers.CreateTestLot(func(l *domain.ProductLot) {
			for j := range l.Devices {
				l.Devices[j].IMEI = fmt.Sprintf("86%03d54203%02d%03d", i, j, i)
			}
		})
		_ = repo.Save(ctx, lot)
		lots = append(lots, lot)
	}

	b.Run("FindByID", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			lot := lots[i%len(lots)]
			_, _ = repo.FindByID(ctx, lot.LotID)
		}
	})

	b.Run("FindByDeviceIMEI", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			lot := lots[i%len(lots)]
			if len(lot.Devices) == 0 {
				continue
			}
			_, _, _ = repo.FindByDeviceIMEI(ctx, lot.Devices[0].IMEI, false)
		}
	})

	b.Run("List", func(b *testing.B) {
		params := ports.LotListParams{
			Page:     1,
			PageSize: 50,
		}

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = repo.List(ctx, params)
		}
	})

	b.Run("Search", func(b *testing.B) {
		params := ports.LotListParams{
			Search:   "iphone",
			Page:     1,
			PageSize: 50,
		}

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = repo.List(ctx, params)
		}
	})
}

func BenchmarkSaleTotals(b *testing.B) {
	for _, size := range []int{1, 10, 100} {
		b.Run(fmt.Sprintf("items_%d", size), func(b *testing.B) {
			sale := createBenchmarkSale(size)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				sale.ComputeTotals()
			}
		})
	}
}

func BenchmarkMergeTimeline(b *testing.B) {
	for _, size := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("events_%d", size), func(b *testing.B) {
			events := createBenchmarkTimeline(size)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				scratch := make([]domain.TimelineEvent, len(events))
				copy(scratch, events)
				_ = domain.MergeTimeline(scratch)
			}
		})
	}
}

// Memory allocation benchmarks
func BenchmarkMemoryAllocation(b *testing.B) {
	b.Run("ProductLot", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = createBenchmarkLot(10)
		}
	})

	b.Run("LotListResult", func(b *testing.B) {
		lots := make([]*domain.ProductLot, 100)
		for i := range lots {
			lots[i] = helpers.CreateTestLot()
		}

		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = &ports.LotListResult{
				Lots:       lots,
				Page:       1,
				PageSize:   50,
				TotalCount: 100,
				TotalPages: 2,
			}
		}
	})
}
