// internal/core/domain/lot.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnlockStatus represents a device's carrier-lock state
type UnlockStatus string

const (
	UnlockUnlocked      UnlockStatus = "unlocked"
	UnlockLocked        UnlockStatus = "locked"
	UnlockCarrierLocked UnlockStatus = "carrier_locked"
)

// DeviceCondition represents a device's physical condition
type DeviceCondition string

const (
	ConditionNew         DeviceCondition = "new"
	ConditionRefurbished DeviceCondition = "refurbished"
	ConditionUsed        DeviceCondition = "used"
)

// Device is one physical unit inside a product lot, identified by IMEI.
// IMEI uniqueness holds only within the parent lot; two lots can carry
// the same IMEI and lookups across lots are best-effort first-match.
type Device struct {
	IMEI         string          `json:"imei"`
	UnlockStatus UnlockStatus    `json:"unlock_status"`
	Condition    DeviceCondition `json:"condition"`
	Grade        string          `json:"grade,omitempty"`
	IsSold       bool            `json:"is_sold"`
	SoldDate     *time.Time      `json:"sold_date,omitempty"`
}

// ProductLot represents one purchased SKU batch and owns its devices.
type ProductLot struct {
	LotID             uuid.UUID       `json:"lot_id"`
	Model             string          `json:"model"`
	Brand             string          `json:"brand"`
	Quantity          int             `json:"quantity"`
	CostPrice         decimal.Decimal `json:"cost_price"`
	RetailPrice       decimal.Decimal `json:"retail_price"`
	Storage           string          `json:"storage,omitempty"`
	Color             string          `json:"color,omitempty"`
	RAM               string          `json:"ram,omitempty"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	Devices           []Device        `json:"devices"`
	Notes             string          `json:"notes,omitempty"`
	SupplierInvoiceID *uuid.UUID      `json:"supplier_invoice_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	DeletedAt         *time.Time      `json:"deleted_at,omitempty"`
}

// Validate performs domain validation on the lot
func (l *ProductLot) Validate() error {
	if l.Model == "" {
		return fmt.Errorf("model is required")
	}
	if l.Quantity < 0 {
		return fmt.Errorf("quantity cannot be negative")
	}
	if l.CostPrice.IsNegative() {
		return fmt.Errorf("cost_price cannot be negative")
	}
	if l.RetailPrice.IsNegative() {
		return fmt.Errorf("retail_price cannot be negative")
	}
	seen := make(map[string]bool, len(l.Devices))
	for i := range l.Devices {
		d := &l.Devices[i]
		if d.IMEI == "" {
			return fmt.Errorf("device %d: imei is required", i)
		}
		if seen[d.IMEI] {
			return fmt.Errorf("duplicate imei in lot: %s", d.IMEI)
		}
		seen[d.IMEI] = true
		if d.UnlockStatus == "" {
			d.UnlockStatus = UnlockUnlocked
		}
		if d.Condition == "" {
			d.Condition = ConditionUsed
		}
	}
	return nil
}

// AvailableQuantity counts devices not yet sold. This is the authoritative
// in-stock number; the nominal Quantity field may drift from it and is
// never reconciled automatically.
func (l *ProductLot) AvailableQuantity() int {
	n := 0
	for i := range l.Devices {
		if !l.Devices[i].IsSold {
			n++
		}
	}
	return n
}

// DeviceByIMEI returns the first device matching imei, or nil.
func (l *ProductLot) DeviceByIMEI(imei string) *Device {
	for i := range l.Devices {
		if l.Devices[i].IMEI == imei {
			return &l.Devices[i]
		}
	}
	return nil
}

// LowStock reports whether available stock dropped to the lot's threshold.
func (l *ProductLot) LowStock() bool {
	return l.LowStockThreshold > 0 && l.AvailableQuantity() <= l.LowStockThreshold
}

// PrepareForStorage fills identifiers and timestamps before persisting
func (l *ProductLot) PrepareForStorage() {
	if l.LotID == uuid.Nil {
		l.LotID = uuid.New()
	}
	now := time.Now()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now
	if l.Quantity == 0 {
		l.Quantity = len(l.Devices)
	}
}
