// internal/core/domain/invoice.go
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceProduct is one line on a supplier invoice. IMEIs may be listed when
// the supplier itemizes units; otherwise only a quantity is known.
type InvoiceProduct struct {
	Description string          `json:"description"`
	Model       string          `json:"model,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	IMEIs       []string        `json:"imeis,omitempty"`
}

// SupplierInvoice is a purchase document from a supplier. RawText holds the
// OCR extraction when the invoice was scanned; it is searched by substring
// during IMEI lifecycle lookups.
type SupplierInvoice struct {
	InvoiceID     uuid.UUID        `json:"invoice_id"`
	InvoiceNumber string           `json:"invoice_number,omitempty"`
	SupplierName  string           `json:"supplier_name"`
	InvoiceDate   time.Time        `json:"invoice_date"`
	Products      []InvoiceProduct `json:"products"`
	TotalAmount   decimal.Decimal  `json:"total_amount"`
	RawText       string           `json:"raw_text,omitempty"`
	FileKey       string           `json:"file_key,omitempty"`
	Status        string           `json:"status,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Validate performs domain validation on the invoice
func (inv *SupplierInvoice) Validate() error {
	if inv.SupplierName == "" {
		return fmt.Errorf("supplier_name is required")
	}
	if inv.TotalAmount.IsNegative() {
		return fmt.Errorf("total_amount cannot be negative")
	}
	for i := range inv.Products {
		if inv.Products[i].Quantity < 0 {
			return fmt.Errorf("product %d: quantity cannot be negative", i)
		}
	}
	return nil
}

// MentionsIMEI reports whether imei appears anywhere on the invoice: in the
// raw OCR text, a product description, or an itemized IMEI list.
func (inv *SupplierInvoice) MentionsIMEI(imei string) bool {
	if imei == "" {
		return false
	}
	if strings.Contains(inv.RawText, imei) {
		return true
	}
	for i := range inv.Products {
		if strings.Contains(inv.Products[i].Description, imei) {
			return true
		}
		for _, id := range inv.Products[i].IMEIs {
			if id == imei {
				return true
			}
		}
	}
	return false
}

// PrepareForStorage fills identifiers and timestamps before persisting
func (inv *SupplierInvoice) PrepareForStorage() {
	if inv.InvoiceID == uuid.Nil {
		inv.InvoiceID = uuid.New()
	}
	if inv.InvoiceDate.IsZero() {
		inv.InvoiceDate = time.Now()
	}
	now := time.Now()
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now
	}
	inv.UpdatedAt = now
}
