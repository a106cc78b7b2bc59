// cmd/seeder/main.go
//
// Imports supplier stock lists (xlsx, one row per handset) into the
// lots and devices tables. Rows sharing model/storage/color/cost are
// grouped into a single lot.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"
)

// StockRow is one line of a supplier stock list.
type StockRow struct {
	Model        string
	Brand        string
	Storage      string
	Color        string
	RAM          string
	IMEI         string
	Condition    string
	Grade        string
	UnlockStatus string
	CostPrice    decimal.Decimal
	RetailPrice  decimal.Decimal
}

// LotGroup accumulates stock rows that belong to the same lot.
type LotGroup struct {
	LotID       uuid.UUID
	Model       string
	Brand       string
	Storage     string
	Color       string
	RAM         string
	CostPrice   decimal.Decimal
	RetailPrice decimal.Decimal
	Rows        []StockRow
}

func groupKey(r StockRow) string {
	return strings.Join([]string{
		strings.ToLower(r.Model),
		strings.ToLower(r.Storage),
		strings.ToLower(r.Color),
		r.CostPrice.String(),
	}, "|")
}

var nonDigitRe = regexp.MustCompile(`\D`)

// validIMEI checks length and the Luhn check digit.
func validIMEI(imei string) bool {
	if len(imei) != 15 {
		return false
	}
	sum := 0
	for i, ch := range imei {
		if ch < '0' || ch > '9' {
			return false
		}
		d := int(ch - '0')
		if i%2 == 1 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	return sum%10 == 0
}

// StockImporter parses stock lists and persists lots.
type StockImporter struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewStockImporter(db *pgxpool.Pool, logger *slog.Logger) *StockImporter {
	return &StockImporter{db: db, logger: logger}
}

// LoadStockList reads one xlsx stock list. Expected columns:
// model, brand, storage, color, ram, imei, condition, grade,
// unlock_status, cost_price, retail_price.
func (im *StockImporter) LoadStockList(path string) ([]StockRow, []string, error) {
	file, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open stock list: %w", err)
	}
	if len(file.Sheets) == 0 {
		return nil, nil, fmt.Errorf("no sheets found in stock list")
	}
	sheet := file.Sheets[0]

	var rows []StockRow
	var rejected []string

	rowIdx := 0
	err = sheet.ForEachRow(func(r *xlsx.Row) error {
		// Skip header
		if rowIdx == 0 {
			rowIdx++
			return nil
		}
		rowIdx++

		get := func(i int) string {
			c := r.GetCell(i)
			if c == nil {
				return ""
			}
			if s, err := c.FormattedValue(); err == nil {
				return strings.TrimSpace(s)
			}
			return strings.TrimSpace(c.String())
		}

		model := get(0)
		if model == "" {
			return nil
		}

		imei := nonDigitRe.ReplaceAllString(get(5), "")
		if !validIMEI(imei) {
			rejected = append(rejected, fmt.Sprintf("row %d: bad IMEI %q", rowIdx, get(5)))
			return nil
		}

		cost, err := decimal.NewFromString(strings.TrimPrefix(get(9), "$"))
		if err != nil {
			rejected = append(rejected, fmt.Sprintf("row %d: bad cost price %q", rowIdx, get(9)))
			return nil
		}
		retail, err := decimal.NewFromString(strings.TrimPrefix(get(10), "$"))
		if err != nil {
			retail = decimal.Zero
		}

		rows = append(rows, StockRow{
			Model:        model,
			Brand:        get(1),
			Storage:      get(2),
			Color:        get(3),
			RAM:          get(4),
			IMEI:         imei,
			Condition:    normalizeCondition(get(6)),
			Grade:        strings.ToUpper(get(7)),
			UnlockStatus: normalizeUnlock(get(8)),
			CostPrice:    cost,
			RetailPrice:  retail,
		})
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	im.logger.Info("loaded stock list",
		slog.String("file", filepath.Base(path)),
		slog.Int("rows", len(rows)),
		slog.Int("rejected", len(rejected)))
	return rows, rejected, nil
}

func normalizeCondition(s string) string {
	switch strings.ToLower(s) {
	case "new", "sealed", "brand new":
		return "new"
	case "refurb", "refurbished", "renewed":
		return "refurbished"
	default:
		return "used"
	}
}

func normalizeUnlock(s string) string {
	switch strings.ToLower(s) {
	case "locked":
		return "locked"
	case "carrier", "carrier locked", "carrier_locked":
		return "carrier_locked"
	default:
		return "unlocked"
	}
}

// GroupLots buckets stock rows into lots.
func (im *StockImporter) GroupLots(rows []StockRow) []*LotGroup {
	byKey := make(map[string]*LotGroup)
	var ordered []*LotGroup

	for _, row := range rows {
		key := groupKey(row)
		group, ok := byKey[key]
		if !ok {
			group = &LotGroup{
				LotID:       uuid.New(),
				Model:       row.Model,
				Brand:       row.Brand,
				Storage:     row.Storage,
				Color:       row.Color,
				RAM:         row.RAM,
				CostPrice:   row.CostPrice,
				RetailPrice: row.RetailPrice,
			}
			byKey[key] = group
			ordered = append(ordered, group)
		}
		group.Rows = append(group.Rows, row)
	}

	return ordered
}

// SaveLots persists the lot groups and their device rows in one transaction.
func (im *StockImporter) SaveLots(ctx context.Context, groups []*LotGroup) error {
	if len(groups) == 0 {
		return nil
	}

	tx, err := im.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	now := time.Now()

	for _, g := range groups {
		batch.Queue(`
			INSERT INTO lots (
				lot_id, model, brand, quantity, cost_price, retail_price,
				storage, color, ram, low_stock_threshold,
				notes, supplier_invoice_id, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULL, $12, $12)`,
			g.LotID, g.Model, g.Brand, len(g.Rows), g.CostPrice, g.RetailPrice,
			g.Storage, g.Color, g.RAM, 1, "imported by seeder", now,
		)
		for _, row := range g.Rows {
			batch.Queue(`
				INSERT INTO devices (lot_id, imei, unlock_status, condition, grade, is_sold, sold_date)
				VALUES ($1, $2, $3, $4, $5, false, NULL)
				ON CONFLICT (lot_id, imei) DO NOTHING`,
				g.LotID, row.IMEI, row.UnlockStatus, row.Condition, row.Grade,
			)
		}
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert stock: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	im.logger.Info("saved stock to database", slog.Int("lots", len(groups)))
	return nil
}

// SeederState tracks already imported stock lists between runs.
type SeederState struct {
	ProcessedFiles []string  `json:"processed_files"`
	ProcessedCount int       `json:"processed_count"`
	LastUpdate     time.Time `json:"last_update"`
}

func main() {
	var (
		stockDir  = flag.String("stock", "./stock", "Directory containing xlsx stock lists")
		stateFile = flag.String("state", "./.seed_state.json", "State file for tracking progress")
		logLevel  = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dryRun    = flag.Bool("dry-run", false, "Preview changes without modifying database")
		force     = flag.Bool("force", false, "Reprocess all stock lists")
	)
	flag.Parse()

	var slogLevel slog.Level
	switch *logLevel {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))
	slog.SetDefault(logger)

	dbURL := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("DB_USER", "phonedesk"),
		getEnv("DB_PASSWORD", "phonedesk_dev_2026"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "phonedesk"),
		getEnv("DB_SSL_MODE", "disable"),
	)

	ctx := context.Background()

	var db *pgxpool.Pool
	var err error

	if !*dryRun {
		db, err = pgxpool.New(ctx, dbURL)
		if err != nil {
			logger.Error("failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer db.Close()
	}

	importer := NewStockImporter(db, logger)

	var state SeederState
	if !*force {
		if stateData, err := os.ReadFile(*stateFile); err == nil {
			json.Unmarshal(stateData, &state)
		}
	}

	stockFiles, err := filepath.Glob(filepath.Join(*stockDir, "*.xlsx"))
	if err != nil {
		logger.Error("failed to find stock lists", slog.String("error", err.Error()))
		os.Exit(1)
	}

	totalFiles := 0
	totalLots := 0
	totalDevices := 0
	var failedFiles []string

	for i, stockFile := range stockFiles {
		name := filepath.Base(stockFile)
		fmt.Printf("PROGRESS: Processing %d/%d: %s\n", i+1, len(stockFiles), name)

		if !*force {
			processed := false
			for _, pf := range state.ProcessedFiles {
				if pf == name {
					processed = true
					break
				}
			}
			if processed {
				logger.Info("skipping already imported stock list", slog.String("file", name))
				continue
			}
		}

		rows, rejected, err := importer.LoadStockList(stockFile)
		if err != nil {
			logger.Error("failed to load stock list",
				slog.String("file", name),
				slog.String("error", err.Error()))
			failedFiles = append(failedFiles, name)
			continue
		}
		for _, reason := range rejected {
			fmt.Printf("WARNING: %s: %s\n", name, reason)
		}
		if len(rows) == 0 {
			logger.Warn("no usable rows in stock list", slog.String("file", name))
			failedFiles = append(failedFiles, fmt.Sprintf("%s (0 rows)", name))
			continue
		}

		groups := importer.GroupLots(rows)

		if !*dryRun {
			if err := importer.SaveLots(ctx, groups); err != nil {
				logger.Error("failed to save stock",
					slog.String("file", name),
					slog.String("error", err.Error()))
				failedFiles = append(failedFiles, name)
				continue
			}
		}

		fmt.Printf("SUCCESS: Imported %s - %d lots, %d devices\n", name, len(groups), len(rows))
		totalFiles++
		totalLots += len(groups)
		totalDevices += len(rows)

		state.ProcessedFiles = append(state.ProcessedFiles, name)
		state.ProcessedCount = len(state.ProcessedFiles)
		state.LastUpdate = time.Now()

		if !*dryRun {
			stateData, _ := json.MarshalIndent(state, "", "  ")
			os.WriteFile(*stateFile, stateData, 0644)
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("STOCK IMPORT SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Stock Lists Processed: %d\n", totalFiles)
	fmt.Printf("Lots Created: %d\n", totalLots)
	fmt.Printf("Devices Created: %d\n", totalDevices)

	if len(failedFiles) > 0 {
		fmt.Printf("\nFailed/Empty Files (%d):\n", len(failedFiles))
		for _, f := range failedFiles {
			fmt.Printf("  - %s\n", f)
		}
	}

	logger.Info("seed operation completed",
		slog.Int("files_processed", totalFiles),
		slog.Int("lots_created", totalLots),
		slog.Int("devices_created", totalDevices),
		slog.Int("failed_files", len(failedFiles)))

	if *dryRun {
		fmt.Println("\n[DRY RUN] No changes were made to the database")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
