// test/helpers/test_helpers.go
package helpers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/phonedesk/phonedesk-be/internal/adapters/db"
	"github.com/phonedesk/phonedesk-be/internal/core/domain"
	"github.com/phonedesk/phonedesk-be/internal/pkg/config"
)

// TestDB represents a test database instance
type TestDB struct {
	PgxPool  *pgxpool.Pool
	Database *db.Database
	Resource *dockertest.Resource
	Pool     *dockertest.Pool
	Config   *db.Config
}

// TestRedis represents a test Redis instance
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// TestLogger returns a test logger
func TestLogger() *slog.Logger {
	if testing.Verbose() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// SetupTestDB creates a PostgreSQL container for integration tests
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not connect to Docker")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=test_phonedesk",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL container")

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge resource: %s", err)
		}
	})

	dbConfig := &db.Config{
		Host:               "localhost",
		Port:               resource.GetPort("5432/tcp"),
		User:               "test",
		Password:           "test",
		Database:           "test_phonedesk",
		SSLMode:            "disable",
		MaxConnections:     5,
		MinConnections:     1,
		MaxConnLifetime:    time.Hour,
		MaxConnIdleTime:    time.Minute * 30,
		HealthCheckPeriod:  time.Minute,
		ConnectTimeout:     time.Second * 10,
		EnableQueryLogging: testing.Verbose(),
	}

	// Wait for database to be ready
	var database *db.Database
	err = pool.Retry(func() error {
		ctx := context.Background()
		var err error
		database, err = db.NewDatabase(ctx, dbConfig, TestLogger())
		if err != nil {
			return err
		}
		return database.Ping(ctx)
	})
	require.NoError(t, err, "Could not connect to PostgreSQL")

	ctx := context.Background()
	migrationConfig := &db.MigrationConfig{
		DatabaseURL: fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
			dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port,
			dbConfig.Database, dbConfig.SSLMode),
		SourcePath: "../../migrations",
		TableName:  "schema_migrations",
		SchemaName: "public",
	}

	err = db.RunMigrationsWithRetry(ctx, migrationConfig, TestLogger(), 3)
	require.NoError(t, err, "Could not run migrations")

	return &TestDB{
		PgxPool:  database.Pool(),
		Database: database,
		Resource: resource,
		Pool:     pool,
		Config:   dbConfig,
	}
}

// SetupTestRedis creates a mock Redis instance for testing
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return &TestRedis{
		Client: client,
		Server: mr,
	}
}

// SetupMockDB creates a mock database for unit testing
func SetupMockDB(t *testing.T) (sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create mock DB")

	t.Cleanup(func() {
		db.Close()
	})

	return mock, db
}

// LoadTestConfig returns a test configuration
func LoadTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "test-api",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
			Debug:       true,
		},
		Database: config.DatabaseConfig{
			Host:               "localhost",
			Port:               "5432",
			User:               "test",
			Password:           "test",
			Name:               "test_phonedesk",
			SSLMode:            "disable",
			MaxConnections:     10,
			MinConnections:     2,
			EnableQueryLogging: true,
		},
		Redis: config.RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			DB:       0,
			TTL:      time.Hour,
			PoolSize: 10,
		},
		Uploads: config.UploadsConfig{
			ScanMaxSizeMB:   25,
			ScanTimeout:     5 * time.Minute,
			TempDir:         "/tmp",
			ReconcileWindow: 30 * 24 * time.Hour,
		},
		Security: config.SecurityConfig{
			JWTSecret:         "test-secret",
			JWTExpiration:     24 * time.Hour,
			RateLimitRequests: 100,
			RateLimitDuration: time.Minute,
			AllowedOrigins:    []string{"*"},
			SecureHeaders:     false,
		},
		Server: config.ServerConfig{
			Host:         "localhost",
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
	}
}

// CreateTestLot creates a test product lot with two devices
func CreateTestLot(overrides ...func(*domain.ProductLot)) *domain.ProductLot {
	lot := &domain.ProductLot{
		LotID:             uuid.New(),
		Model:             "iPhone 13",
		Brand:             "Apple",
		Quantity:          2,
		CostPrice:         decimal.NewFromFloat(350.00),
		RetailPrice:       decimal.NewFromFloat(450.00),
		Storage:           "128GB",
		Color:             "Midnight",
		LowStockThreshold: 1,
		Devices: []domain.Device{
			{
				IMEI:         "490154203237518",
				UnlockStatus: domain.UnlockUnlocked,
				Condition:    domain.ConditionUsed,
				Grade:        "A",
			},
			{
				IMEI:         "356938035643809",
				UnlockStatus: domain.UnlockUnlocked,
				Condition:    domain.ConditionUsed,
				Grade:        "B",
			},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	for _, override := range overrides {
		override(lot)
	}

	return lot
}

// CreateTestLots creates multiple test lots with distinct models and IMEIs
func CreateTestLots(count int) []domain.ProductLot {
	lots := make([]domain.ProductLot, count)

	models := []string{"iPhone 13", "iPhone 14 Pro", "Galaxy S23", "Pixel 8", "Redmi Note 12"}
	brands := []string{"Apple", "Apple", "Samsung", "Google", "Xiaomi"}

	for i := 0; i < count; i++ {
		i := i
		lots[i] = *CreateTestLot(func(lot *domain.ProductLot) {
			lot.Model = models[i%len(models)]
			lot.Brand = brands[i%len(brands)]
			lot.CostPrice = decimal.NewFromFloat(float64(200 + i*50))
			lot.RetailPrice = decimal.NewFromFloat(float64(300 + i*50))
			lot.Devices = []domain.Device{
				{
					IMEI:         fmt.Sprintf("49015420323%04d", i),
					UnlockStatus: domain.UnlockUnlocked,
					Condition:    domain.ConditionUsed,
					Grade:        "A",
				},
			}
			lot.Quantity = 1
		})
	}

	return lots
}

// CreateTestSale creates a test sale with one inventory-linked line
func CreateTestSale(overrides ...func(*domain.Sale)) *domain.Sale {
	lotID := uuid.New()
	sale := &domain.Sale{
		SaleID:       uuid.New(),
		SaleNumber:   "SL202401-0001",
		CustomerName: "Walk-in",
		Items: []domain.SaleItem{
			{
				LotID:     &lotID,
				IMEI:      "490154203237518",
				Model:     "iPhone 13",
				Brand:     "Apple",
				CostPrice: decimal.NewFromFloat(350.00),
				SalePrice: decimal.NewFromFloat(450.00),
			},
		},
		Status:        domain.SaleCompleted,
		PaymentStatus: domain.PaymentPaid,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	sale.ComputeTotals()

	for _, override := range overrides {
		override(sale)
	}

	return sale
}

// CreateTestCustomer creates a test customer
func CreateTestCustomer(overrides ...func(*domain.Customer)) *domain.Customer {
	customer := &domain.Customer{
		CustomerID: uuid.New(),
		Name:       "Ada Osei",
		Phone:      "+233201234567",
		Type:       domain.CustomerRetail,
		TotalSpent: decimal.Zero,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	for _, override := range overrides {
		override(customer)
	}

	return customer
}

// CreateTestInvoice creates a test supplier invoice
func CreateTestInvoice(overrides ...func(*domain.SupplierInvoice)) *domain.SupplierInvoice {
	invoice := &domain.SupplierInvoice{
		InvoiceID:     uuid.New(),
		InvoiceNumber: "INV-2024-001",
		SupplierName:  "Dubai Phones FZE",
		InvoiceDate:   time.Now().AddDate(0, -1, 0),
		Products: []domain.InvoiceProduct{
			{
				Description: "iPhone 13 128GB Midnight",
				Model:       "iPhone 13",
				Quantity:    2,
				UnitPrice:   decimal.NewFromFloat(350.00),
				IMEIs:       []string{"490154203237518", "356938035643809"},
			},
		},
		TotalAmount: decimal.NewFromFloat(700.00),
		RawText:     "iPhone 13 128GB IMEI 490154203237518 356938035643809 total 700.00",
		Status:      "confirmed",
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	for _, override := range overrides {
		override(invoice)
	}

	return invoice
}

// CreateTestDeviceTest creates a test diagnostic record
func CreateTestDeviceTest(overrides ...func(*domain.DeviceTest)) *domain.DeviceTest {
	test := &domain.DeviceTest{
		TestID: uuid.New(),
		IMEI:   "490154203237518",
		Model:  "iPhone 13",
		Result: domain.TestPassed,
		Checks: map[string]string{
			"screen":  "ok",
			"battery": "ok",
			"camera":  "ok",
		},
		BatteryPct: 87,
		Technician: "kwame",
		TestedAt:   time.Now(),
		CreatedAt:  time.Now(),
	}

	for _, override := range overrides {
		override(test)
	}

	return test
}

// CompareLots compares two lots for testing
func CompareLots(t *testing.T, expected, actual *domain.ProductLot) {
	t.Helper()

	require.Equal(t, expected.Model, actual.Model)
	require.Equal(t, expected.Brand, actual.Brand)
	require.Equal(t, expected.Quantity, actual.Quantity)
	require.Equal(t, expected.Storage, actual.Storage)
	require.Equal(t, expected.Color, actual.Color)
	require.True(t, expected.CostPrice.Equal(actual.CostPrice))
	require.True(t, expected.RetailPrice.Equal(actual.RetailPrice))
	require.Len(t, actual.Devices, len(expected.Devices))
}

// LoadFixture loads a test fixture file
func LoadFixture(t *testing.T, filename string) []byte {
	t.Helper()

	path := fmt.Sprintf("../../test/fixtures/%s", filename)
	data, err := os.ReadFile(path)
	require.NoError(t, err, "Failed to load fixture: %s", filename)

	return data
}

// AssertEventuallyWithTimeout asserts that a condition is met within a timeout
func AssertEventuallyWithTimeout(t *testing.T, condition func() bool, timeout time.Duration, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Errorf("Condition not met within %v: %s", timeout, msg)
}

// TruncateAllTables truncates all tables in the test database
func TruncateAllTables(t *testing.T, db *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()
	tables := []string{
		"async_jobs",
		"device_tests",
		"supplier_invoices",
		"sales",
		"customers",
		"devices",
		"lots",
	}

	for _, table := range tables {
		_, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "Failed to truncate table: %s", table)
	}
}

// SeedTestLots seeds the database with lots and their devices
func SeedTestLots(t *testing.T, db *pgxpool.Pool, lots []domain.ProductLot) {
	t.Helper()

	ctx := context.Background()

	for _, lot := range lots {
		_, err := db.Exec(ctx, `
			INSERT INTO lots (
				lot_id, model, brand, quantity, cost_price, retail_price,
				storage, color, ram, low_stock_threshold, notes,
				supplier_invoice_id, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`,
			lot.LotID, lot.Model, lot.Brand, lot.Quantity, lot.CostPrice, lot.RetailPrice,
			lot.Storage, lot.Color, lot.RAM, lot.LowStockThreshold, lot.Notes,
			lot.SupplierInvoiceID, lot.CreatedAt, lot.UpdatedAt,
		)
		require.NoError(t, err, "Failed to seed lot")

		for _, device := range lot.Devices {
			_, err := db.Exec(ctx, `
				INSERT INTO devices (lot_id, imei, unlock_status, condition, grade, is_sold, sold_date)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`,
				lot.LotID, device.IMEI, device.UnlockStatus, device.Condition,
				device.Grade, device.IsSold, device.SoldDate,
			)
			require.NoError(t, err, "Failed to seed device")
		}
	}
}

// SeedTestSale seeds one sale row directly
func SeedTestSale(t *testing.T, db *pgxpool.Pool, sale *domain.Sale) {
	t.Helper()

	ctx := context.Background()

	items, err := json.Marshal(sale.Items)
	require.NoError(t, err, "Failed to marshal sale items")

	var shipping []byte
	if sale.Shipping != nil {
		shipping, err = json.Marshal(sale.Shipping)
		require.NoError(t, err, "Failed to marshal shipping")
	}

	_, err = db.Exec(ctx, `
		INSERT INTO sales (
			sale_id, sale_number, customer_id, customer_name, items,
			discount, tax, subtotal, total_amount, total_profit,
			payment_method, payment_status, amount_paid,
			status, sales_channel, shipping, notes, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`,
		sale.SaleID, sale.SaleNumber, sale.CustomerID, sale.CustomerName, items,
		sale.Discount, sale.Tax, sale.Subtotal, sale.TotalAmount, sale.TotalProfit,
		sale.PaymentMethod, sale.PaymentStatus, sale.AmountPaid,
		sale.Status, sale.SalesChannel, shipping, sale.Notes, sale.CreatedBy,
		sale.CreatedAt, sale.UpdatedAt,
	)
	require.NoError(t, err, "Failed to seed sale")
}

// CreateTempFile creates a temporary file for testing
func CreateTempFile(t *testing.T, content []byte, extension string) string {
	t.Helper()

	file, err := os.CreateTemp("", fmt.Sprintf("test-*%s", extension))
	require.NoError(t, err, "Failed to create temp file")

	_, err = file.Write(content)
	require.NoError(t, err, "Failed to write to temp file")

	file.Close()

	t.Cleanup(func() {
		os.Remove(file.Name())
	})

	return file.Name()
}
