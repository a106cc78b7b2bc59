// internal/core/ports/repositories.go
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phonedesk/phonedesk-be/internal/core/domain"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDeviceUnavailable is returned by MarkDeviceSold when the device row
	// exists but is already sold, or does not exist at all. Callers fall back
	// to a manual sale line instead of failing.
	ErrDeviceUnavailable = errors.New("device not available")
)

// LotRepository is the persistence port for product lots and their devices.
type LotRepository interface {
	Save(ctx context.Context, lot *domain.ProductLot) error
	Update(ctx context.Context, lot *domain.ProductLot) error
	FindByID(ctx context.Context, lotID uuid.UUID) (*domain.ProductLot, error)
	// FindByDeviceIMEI returns the first lot carrying a device with this IMEI,
	// in query order. onlyAvailable restricts the match to unsold devices.
	FindByDeviceIMEI(ctx context.Context, imei string, onlyAvailable bool) (*domain.ProductLot, *domain.Device, error)
	List(ctx context.Context, params LotListParams) (*LotListResult, error)
	SoftDelete(ctx context.Context, lotID uuid.UUID) error
	Delete(ctx context.Context, lotID uuid.UUID) error

	// MarkDeviceSold flips a device to sold in one conditional statement; the
	// update only lands if the device is currently unsold. A lost race or a
	// missing row yields ErrDeviceUnavailable.
	MarkDeviceSold(ctx context.Context, lotID uuid.UUID, imei string, soldAt time.Time) error
	// MarkDeviceUnsold clears the sold flag regardless of current state.
	MarkDeviceUnsold(ctx context.Context, lotID uuid.UUID, imei string) error
	AvailableQuantity(ctx context.Context, lotID uuid.UUID) (int, error)
	// SoldWithoutSale lists devices flagged sold that no sale line references,
	// for the periodic reconciliation sweep.
	SoldWithoutSale(ctx context.Context, since time.Time) ([]OrphanedDevice, error)
}

// OrphanedDevice is a sold device row with no matching sale line.
type OrphanedDevice struct {
	LotID    uuid.UUID  `json:"lot_id"`
	IMEI     string     `json:"imei"`
	Model    string     `json:"model"`
	SoldDate *time.Time `json:"sold_date,omitempty"`
}

// LotListParams holds filters for listing lots
type LotListParams struct {
	Search    string
	Brand     string
	Condition string
	InStock   *bool
	LowStock  *bool
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// LotListResult holds one page of lots
type LotListResult struct {
	Lots       []*domain.ProductLot `json:"lots"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
	TotalCount int64                `json:"total_count"`
	TotalPages int                  `json:"total_pages"`
}

// SaleRepository is the persistence port for sales.
type SaleRepository interface {
	Save(ctx context.Context, sale *domain.Sale) error
	Update(ctx context.Context, sale *domain.Sale) error
	FindByID(ctx context.Context, saleID uuid.UUID) (*domain.Sale, error)
	Delete(ctx context.Context, saleID uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, params SaleListParams) (*SaleListResult, error)
	// FindByItemIMEI returns the most recent sales containing a line with this
	// IMEI, newest first.
	FindByItemIMEI(ctx context.Context, imei string, limit int) ([]domain.Sale, error)
	Stats(ctx context.Context) (*SalesStats, error)
}

// SaleListParams holds filters for listing sales
type SaleListParams struct {
	Search   string
	Status   string
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PageSize int
}

// SaleListResult holds one page of sales
type SaleListResult struct {
	Sales      []*domain.Sale `json:"sales"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalCount int64          `json:"total_count"`
	TotalPages int            `json:"total_pages"`
}

// StatsBucket is one aggregation window of the sales dashboard.
type StatsBucket struct {
	Count   int64           `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
	Profit  decimal.Decimal `json:"profit"`
}

// SalesStats aggregates revenue-bearing sales (completed, shipped, delivered).
type SalesStats struct {
	Today     StatsBucket `json:"today"`
	ThisMonth StatsBucket `json:"this_month"`
	AllTime   StatsBucket `json:"all_time"`
}

// CustomerRepository is the persistence port for customers.
type CustomerRepository interface {
	Save(ctx context.Context, customer *domain.Customer) error
	Update(ctx context.Context, customer *domain.Customer) error
	FindByID(ctx context.Context, customerID uuid.UUID) (*domain.Customer, error)
	List(ctx context.Context, params CustomerListParams) (*CustomerListResult, error)
	SoftDelete(ctx context.Context, customerID uuid.UUID) error

	// RecordPurchase bumps the purchase counters and appends the history entry
	// in a single statement, so partial stat updates cannot occur.
	RecordPurchase(ctx context.Context, customerID uuid.UUID, record domain.PurchaseRecord) error
}

// CustomerListParams holds filters for listing customers
type CustomerListParams struct {
	Search   string
	Type     string
	Page     int
	PageSize int
}

// CustomerListResult holds one page of customers
type CustomerListResult struct {
	Customers  []*domain.Customer `json:"customers"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalCount int64              `json:"total_count"`
	TotalPages int                `json:"total_pages"`
}

// InvoiceRepository is the persistence port for supplier invoices.
type InvoiceRepository interface {
	Save(ctx context.Context, invoice *domain.SupplierInvoice) error
	Update(ctx context.Context, invoice *domain.SupplierInvoice) error
	FindByID(ctx context.Context, invoiceID uuid.UUID) (*domain.SupplierInvoice, error)
	List(ctx context.Context, params InvoiceListParams) (*InvoiceListResult, error)
	Delete(ctx context.Context, invoiceID uuid.UUID) error
	// SearchByText returns the most recent invoices whose raw OCR text or
	// product descriptions contain the given substring, newest first.
	SearchByText(ctx context.Context, text string, limit int) ([]domain.SupplierInvoice, error)
}

// InvoiceListParams holds filters for listing invoices
type InvoiceListParams struct {
	Search   string
	Supplier string
	Page     int
	PageSize int
}

// InvoiceListResult holds one page of invoices
type InvoiceListResult struct {
	Invoices   []*domain.SupplierInvoice `json:"invoices"`
	Page       int                       `json:"page"`
	PageSize   int                       `json:"page_size"`
	TotalCount int64                     `json:"total_count"`
	TotalPages int                       `json:"total_pages"`
}

// DeviceTestRepository is the persistence port for diagnostic records.
type DeviceTestRepository interface {
	Save(ctx context.Context, test *domain.DeviceTest) error
	FindByIMEI(ctx context.Context, imei string, limit int) ([]domain.DeviceTest, error)
	List(ctx context.Context, params TestListParams) (*TestListResult, error)
}

// TestListParams holds filters for listing test records
type TestListParams struct {
	IMEI     string
	Result   string
	Page     int
	PageSize int
}

// TestListResult holds one page of test records
type TestListResult struct {
	Tests      []*domain.DeviceTest `json:"tests"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
	TotalCount int64                `json:"total_count"`
	TotalPages int                  `json:"total_pages"`
}
