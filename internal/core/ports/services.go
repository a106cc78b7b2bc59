// internal/core/ports/services.go
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/phonedesk/phonedesk-be/internal/core/domain"
)

// LedgerService is the application port for inventory lots and device state.
type LedgerService interface {
	SaveLot(ctx context.Context, lot *domain.ProductLot) error
	GetLot(ctx context.Context, lotID uuid.UUID) (*domain.ProductLot, error)
	UpdateLot(ctx context.Context, lotID uuid.UUID, lot *domain.ProductLot) error
	DeleteLot(ctx context.Context, lotID uuid.UUID, permanent bool) error
	List(ctx context.Context, params LotListParams) (*LotListResult, error)

	FindDeviceByIMEI(ctx context.Context, imei string, onlyAvailable bool) (*domain.ProductLot, *domain.Device, error)
	MarkSold(ctx context.Context, lotID uuid.UUID, imei string, soldAt time.Time) error
	MarkUnsold(ctx context.Context, lotID uuid.UUID, imei string) error
	AvailableQuantity(ctx context.Context, lotID uuid.UUID) (int, error)
}

// SaleService is the application port for the sale lifecycle.
type SaleService interface {
	CreateSale(ctx context.Context, sale *domain.Sale) (*domain.Sale, error)
	UpdateSale(ctx context.Context, saleID uuid.UUID, patch SalePatch) (*domain.Sale, error)
	DeleteSale(ctx context.Context, saleID uuid.UUID) error
	GetSale(ctx context.Context, saleID uuid.UUID) (*domain.Sale, error)
	List(ctx context.Context, params SaleListParams) (*SaleListResult, error)
	Stats(ctx context.Context) (*SalesStats, error)
}

// SalePatch carries the fields a sale update may change. Nil pointers leave
// the stored value untouched.
type SalePatch struct {
	CustomerID    *uuid.UUID         `json:"customer_id,omitempty"`
	CustomerName  *string            `json:"customer_name,omitempty"`
	Items         []domain.SaleItem  `json:"items,omitempty"`
	Discount      *string            `json:"discount,omitempty"`
	Tax           *string            `json:"tax,omitempty"`
	Status        *domain.SaleStatus `json:"status,omitempty"`
	PaymentMethod *string            `json:"payment_method,omitempty"`
	PaymentStatus *string            `json:"payment_status,omitempty"`
	AmountPaid    *string            `json:"amount_paid,omitempty"`
	SalesChannel  *string            `json:"sales_channel,omitempty"`
	Shipping      *domain.Shipping   `json:"shipping,omitempty"`
	Costs         *domain.SaleCosts  `json:"costs,omitempty"`
	Notes         *string            `json:"notes,omitempty"`
}

// CustomerService is the application port for customers and their statistics.
type CustomerService interface {
	SaveCustomer(ctx context.Context, customer *domain.Customer) error
	GetCustomer(ctx context.Context, customerID uuid.UUID) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, customerID uuid.UUID, customer *domain.Customer) error
	DeleteCustomer(ctx context.Context, customerID uuid.UUID) error
	List(ctx context.Context, params CustomerListParams) (*CustomerListResult, error)
	RecordPurchase(ctx context.Context, customerID uuid.UUID, record domain.PurchaseRecord) error
}

// InvoiceService is the application port for supplier invoices.
type InvoiceService interface {
	SaveInvoice(ctx context.Context, invoice *domain.SupplierInvoice) error
	GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*domain.SupplierInvoice, error)
	UpdateInvoice(ctx context.Context, invoiceID uuid.UUID, invoice *domain.SupplierInvoice) error
	DeleteInvoice(ctx context.Context, invoiceID uuid.UUID) error
	List(ctx context.Context, params InvoiceListParams) (*InvoiceListResult, error)
}

// DeviceTestService is the application port for diagnostic records.
type DeviceTestService interface {
	RecordTest(ctx context.Context, test *domain.DeviceTest) error
	List(ctx context.Context, params TestListParams) (*TestListResult, error)
}

// LifecycleService resolves the full history of one IMEI across inventory,
// supplier invoices, sales and diagnostic tests.
type LifecycleService interface {
	History(ctx context.Context, imei string) (*domain.DeviceHistory, error)
}
