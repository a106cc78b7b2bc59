// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/phonedesk/phonedesk-be/internal/adapters/db"
	redis_a "github.com/phonedesk/phonedesk-be/internal/adapters/redis_adapter"
	"github.com/phonedesk/phonedesk-be/internal/adapters/storage"
	"github.com/phonedesk/phonedesk-be/internal/core/ports"
	"github.com/phonedesk/phonedesk-be/internal/core/services"
	"github.com/phonedesk/phonedesk-be/internal/handlers"
	"github.com/phonedesk/phonedesk-be/internal/handlers/middleware"
	"github.com/phonedesk/phonedesk-be/internal/pkg/config"
	"github.com/phonedesk/phonedesk-be/internal/pkg/logger"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

func main() {
	// Initialize structured logger
	appLogger := logger.SetupLogger("debug", "json")
	slogger := appLogger.Logger

	slogger.Info("starting phonedesk api",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("go_version", GoVersion),
	)

	// Load configuration
	slogger.Info("loading configuration")
	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	appLogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger = appLogger.Logger
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("log_level", cfg.App.LogLevel),
	)

	// Create application context
	ctx := context.Background()

	// Initialize dependencies
	deps, err := initializeDependencies(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	// Run database migrations if enabled
	if cfg.App.Environment != "production" {
		if err := runMigrations(ctx, cfg, slogger); err != nil {
			slogger.Error("failed to run migrations", slog.String("error", err.Error()))
			// Don't exit in development, just warn
		}
	}

	// Setup HTTP server
	server := setupHTTPServer(cfg, deps, appLogger)

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		slogger.Info("starting HTTP server",
			slog.String("address", cfg.GetServerAddress()),
			slog.Bool("tls", cfg.Server.TLSEnabled),
		)

		if cfg.Server.TLSEnabled {
			serverErrors <- server.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			serverErrors <- server.ListenAndServe()
		}
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		slogger.Info("shutdown signal received",
			slog.String("signal", sig.String()),
		)

		// Create shutdown context with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		// Gracefully shutdown HTTP server
		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}

		// Stop Asynq client
		if deps.asynqClient != nil {
			if err := deps.asynqClient.Close(); err != nil {
				slogger.Error("failed to close Asynq client", slog.String("error", err.Error()))
			}
		}

		slogger.Info("server shutdown complete")
	}
}

// dependencies holds all application dependencies
type dependencies struct {
	database       ports.Database
	redisClient    *redis.Client
	redisCache     ports.CacheRepository
	asynqClient    *asynq.Client
	asynqInspector *asynq.Inspector

	inventoryHandler  *handlers.InventoryHandler
	saleHandler       *handlers.SaleHandler
	customerHandler   *handlers.CustomerHandler
	invoiceHandler    *handlers.InvoiceHandler
	deviceTestHandler *handlers.DeviceTestHandler
	lifecycleHandler  *handlers.LifecycleHandler
	exportHandler     *handlers.ExportHandler
	healthHandler     *handlers.HealthHandler
}

func (d *dependencies) cleanup() {
	if d.database != nil {
		d.database.Close()
	}
	if d.redisClient != nil {
		d.redisClient.Close()
	}
	if d.asynqClient != nil {
		d.asynqClient.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	// Initialize database connection
	logger.Info("connecting to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Name),
	)

	database, err := db.NewDatabase(ctx, &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     cfg.Database.MaxConnections,
		MinConnections:     cfg.Database.MinConnections,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.database = database

	// Initialize Redis client
	logger.Info("connecting to Redis",
		slog.String("host", cfg.Redis.Host),
		slog.String("port", cfg.Redis.Port),
	)

	redisOpts := &redis.Options{
		Addr:            fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password:        cfg.Redis.Password,
		DB:              cfg.Redis.DB,
		MaxRetries:      cfg.Redis.MaxRetries,
		MinRetryBackoff: cfg.Redis.MinRetryBackoff,
		MaxRetryBackoff: cfg.Redis.MaxRetryBackoff,
		DialTimeout:     cfg.Redis.DialTimeout,
		ReadTimeout:     cfg.Redis.ReadTimeout,
		WriteTimeout:    cfg.Redis.WriteTimeout,
		PoolSize:        cfg.Redis.PoolSize,
		MinIdleConns:    cfg.Redis.MinIdleConns,
		ConnMaxLifetime: cfg.Redis.MaxConnAge,
		PoolTimeout:     cfg.Redis.PoolTimeout,
		ConnMaxIdleTime: cfg.Redis.IdleTimeout,
	}

	redisClient := redis.NewClient(redisOpts)

	// Test Redis connection
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	deps.redisClient = redisClient

	// Create Redis cache wrapper
	deps.redisCache = redis_a.NewCache(redisClient, cfg.Redis.TTL, logger)

	// Initialize Asynq client
	logger.Info("initializing Asynq client")

	asynqRedisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}

	asynqClient := asynq.NewClient(asynqRedisOpt)
	deps.asynqClient = asynqClient

	asynqInspector := asynq.NewInspector(asynqRedisOpt)
	deps.asynqInspector = asynqInspector

	// Initialize object storage for invoice documents
	objectStore, err := storage.NewS3Store(ctx, &storage.S3Config{
		Region:          cfg.AWS.Region,
		Bucket:          cfg.AWS.S3Bucket,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		Endpoint:        cfg.AWS.S3Endpoint,
		UsePathStyle:    cfg.AWS.UsePathStyle,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object store: %w", err)
	}

	// Initialize repositories
	lotRepo := db.NewLotRepository(database, logger)
	saleRepo := db.NewSaleRepository(database, logger)
	customerRepo := db.NewCustomerRepository(database, logger)
	invoiceRepo := db.NewInvoiceRepository(database, logger)
	testRepo := db.NewDeviceTestRepository(database, logger)

	// Initialize services
	ledgerService := services.NewLedgerService(lotRepo, deps.redisCache, logger)
	customerService := services.NewCustomerService(customerRepo, logger)
	saleService := services.NewSaleService(saleRepo, ledgerService, customerService, deps.redisCache, logger)
	invoiceService := services.NewInvoiceService(invoiceRepo, objectStore, logger)
	testService := services.NewDeviceTestService(testRepo, logger)
	lifecycleService := services.NewLifecycleService(lotRepo, saleRepo, invoiceRepo, testRepo, deps.redisCache, logger)

	// Initialize handlers
	deps.inventoryHandler = handlers.NewInventoryHandler(ledgerService, logger)
	deps.saleHandler = handlers.NewSaleHandler(saleService, customerService, logger)
	deps.customerHandler = handlers.NewCustomerHandler(customerService, logger)
	deps.invoiceHandler = handlers.NewInvoiceHandler(
		invoiceService, objectStore, database, asynqClient, logger, cfg.Uploads.ScanMaxSizeMB)
	deps.deviceTestHandler = handlers.NewDeviceTestHandler(testService, logger)
	deps.lifecycleHandler = handlers.NewLifecycleHandler(lifecycleService, logger)
	deps.exportHandler = handlers.NewExportHandler(saleRepo, deps.redisCache, logger)
	deps.healthHandler = handlers.NewHealthHandler(
		database,
		redisClient,
		asynqInspector,
		cfg,
		logger,
	)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

func setupHTTPServer(cfg *config.Config, deps *dependencies, appLogger *logger.Logger) *http.Server {
	// Create new ServeMux using Go 1.22+ features
	mux := http.NewServeMux()

	// Setup middleware chain (applied in reverse order, innermost first)
	var handler http.Handler = mux

	handler = middleware.Compression(handler)
	handler = middleware.Timeout(cfg.Server.WriteTimeout)(handler)

	if cfg.Security.RateLimitRequests > 0 {
		handler = middleware.RateLimit(cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration)(handler)
	}

	if len(cfg.Security.AllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.Security.AllowedOrigins)(handler)
	}

	if cfg.Security.SecureHeaders {
		handler = middleware.SecureHeaders(handler)
	}

	handler = middleware.Logger(appLogger)(handler)
	handler = middleware.Recovery(appLogger.Logger)(handler)
	handler = middleware.RequestID(handler)

	// Register routes using Go 1.22 method-specific routing
	registerRoutes(mux, deps, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(appLogger.Handler(), slog.LevelError),
	}

	return server
}

func registerRoutes(mux *http.ServeMux, deps *dependencies, cfg *config.Config) {
	apiV1 := "/api/v1"

	// Health and readiness endpoints
	if cfg.Server.EnableHealthCheck {
		mux.HandleFunc("GET /health", deps.healthHandler.Health)
		mux.HandleFunc("GET /ready", deps.healthHandler.Readiness)
		mux.HandleFunc("GET "+apiV1+"/health", deps.healthHandler.Health)
	}

	// Inventory endpoints
	mux.HandleFunc("GET "+apiV1+"/inventory/{id}", deps.inventoryHandler.GetLot)
	mux.HandleFunc("GET "+apiV1+"/inventory", deps.inventoryHandler.ListLots)
	mux.HandleFunc("POST "+apiV1+"/inventory", deps.inventoryHandler.CreateLot)
	mux.HandleFunc("PUT "+apiV1+"/inventory/{id}", deps.inventoryHandler.UpdateLot)
	mux.HandleFunc("DELETE "+apiV1+"/inventory/{id}", deps.inventoryHandler.DeleteLot)

	// Sale endpoints. Stats registers before the {id} wildcard on purpose.
	mux.HandleFunc("GET "+apiV1+"/sales/stats", deps.saleHandler.GetStats)
	mux.HandleFunc("GET "+apiV1+"/sales/{id}", deps.saleHandler.GetSale)
	mux.HandleFunc("GET "+apiV1+"/sales", deps.saleHandler.ListSales)
	mux.HandleFunc("POST "+apiV1+"/sales", deps.saleHandler.CreateSale)
	mux.HandleFunc("PUT "+apiV1+"/sales/{id}", deps.saleHandler.UpdateSale)
	mux.HandleFunc("DELETE "+apiV1+"/sales/{id}", deps.saleHandler.DeleteSale)

	// Customer endpoints
	mux.HandleFunc("GET "+apiV1+"/customers/{id}", deps.customerHandler.GetCustomer)
	mux.HandleFunc("GET "+apiV1+"/customers", deps.customerHandler.ListCustomers)
	mux.HandleFunc("POST "+apiV1+"/customers", deps.customerHandler.CreateCustomer)
	mux.HandleFunc("PUT "+apiV1+"/customers/{id}", deps.customerHandler.UpdateCustomer)
	mux.HandleFunc("DELETE "+apiV1+"/customers/{id}", deps.customerHandler.DeleteCustomer)

	// Supplier invoice endpoints, including the async document scan flow
	mux.HandleFunc("POST "+apiV1+"/invoices/scan", deps.invoiceHandler.ScanInvoice)
	mux.HandleFunc("GET "+apiV1+"/invoices/scan/{jobId}", deps.invoiceHandler.ScanStatus)
	mux.HandleFunc("GET "+apiV1+"/invoices/{id}", deps.invoiceHandler.GetInvoice)
	mux.HandleFunc("GET "+apiV1+"/invoices", deps.invoiceHandler.ListInvoices)
	mux.HandleFunc("POST "+apiV1+"/invoices", deps.invoiceHandler.CreateInvoice)
	mux.HandleFunc("PUT "+apiV1+"/invoices/{id}", deps.invoiceHandler.UpdateInvoice)
	mux.HandleFunc("DELETE "+apiV1+"/invoices/{id}", deps.invoiceHandler.DeleteInvoice)

	// Diagnostic test endpoints
	mux.HandleFunc("POST "+apiV1+"/tests", deps.deviceTestHandler.RecordTest)
	mux.HandleFunc("GET "+apiV1+"/tests", deps.deviceTestHandler.ListTests)

	// IMEI lifecycle lookup
	mux.HandleFunc("GET "+apiV1+"/imei/{imei}", deps.lifecycleHandler.GetHistory)

	// Export endpoints
	mux.HandleFunc("GET "+apiV1+"/export/sales.xlsx", deps.exportHandler.ExportExcel)
	mux.HandleFunc("GET "+apiV1+"/export/sales.json", deps.exportHandler.ExportJSON)

	// pprof endpoints (development only)
	if cfg.Server.EnablePprof && cfg.IsDevelopment() {
		mux.HandleFunc("GET /debug/pprof/", http.DefaultServeMux.ServeHTTP)
	}
}

func runMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("running database migrations")

	migrationConfig := &db.MigrationConfig{
		DatabaseURL: cfg.GetDatabaseURL(),
		SourcePath:  cfg.Database.MigrationPath,
		TableName:   "schema_migrations",
		SchemaName:  "public",
	}

	return db.RunMigrationsWithRetry(ctx, migrationConfig, logger, 3)
}
