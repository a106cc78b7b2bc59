// internal/core/domain/sale.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleStatus represents the lifecycle state of a sale
type SaleStatus string

const (
	SalePending    SaleStatus = "pending"
	SaleProcessing SaleStatus = "processing"
	SaleCompleted  SaleStatus = "completed"
	SaleShipped    SaleStatus = "shipped"
	SaleDelivered  SaleStatus = "delivered"
	SaleCancelled  SaleStatus = "cancelled"
	SaleRefunded   SaleStatus = "refunded"
)

// RevenueStatuses are the sale statuses that count toward revenue aggregates.
var RevenueStatuses = []SaleStatus{SaleCompleted, SaleShipped, SaleDelivered}

// PaymentStatus represents how much of a sale has been paid
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// SaleItem is one sold unit: either inventory-linked (LotID + IMEI consume a
// specific device) or manual (free-form cost/price entry).
type SaleItem struct {
	LotID     *uuid.UUID      `json:"lot_id,omitempty"`
	IMEI      string          `json:"imei,omitempty"`
	Model     string          `json:"model"`
	Brand     string          `json:"brand,omitempty"`
	Storage   string          `json:"storage,omitempty"`
	Color     string          `json:"color,omitempty"`
	Condition DeviceCondition `json:"condition,omitempty"`
	Grade     string          `json:"grade,omitempty"`
	CostPrice decimal.Decimal `json:"cost_price"`
	SalePrice decimal.Decimal `json:"sale_price"`
	Profit    decimal.Decimal `json:"profit"`
}

// InventoryLinked reports whether this line consumes a specific device.
func (i *SaleItem) InventoryLinked() bool {
	return i.LotID != nil && *i.LotID != uuid.Nil && i.IMEI != ""
}

// Shipping holds the shipping sub-document of a sale
type Shipping struct {
	TrackingNumber string          `json:"tracking_number,omitempty"`
	Carrier        string          `json:"carrier,omitempty"`
	Cost           decimal.Decimal `json:"cost"`
	Address        string          `json:"address,omitempty"`
}

// SaleCosts holds ancillary handling costs recorded against a sale (packaging,
// courier fees, platform commission). They narrow the real margin of the
// transaction but stay outside both the total amount and the customer-spend
// figure, which only reflect what the customer paid.
type SaleCosts struct {
	Shipping   decimal.Decimal `json:"shipping"`
	Fees       decimal.Decimal `json:"fees"`
	Other      decimal.Decimal `json:"other"`
	Commission decimal.Decimal `json:"commission"`
}

// Sale is one completed transaction.
type Sale struct {
	SaleID       uuid.UUID       `json:"sale_id"`
	SaleNumber   string          `json:"sale_number"`
	CustomerID   *uuid.UUID      `json:"customer_id,omitempty"`
	CustomerName string          `json:"customer_name"`
	Items        []SaleItem      `json:"items"`
	Discount     decimal.Decimal `json:"discount"`
	Tax          decimal.Decimal `json:"tax"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	TotalProfit  decimal.Decimal `json:"total_profit"`

	PaymentMethod string          `json:"payment_method,omitempty"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`

	Status       SaleStatus `json:"status"`
	SalesChannel string     `json:"sales_channel,omitempty"`
	Shipping     *Shipping  `json:"shipping,omitempty"`
	Costs        *SaleCosts `json:"costs,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	CreatedBy    string     `json:"created_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate performs domain validation on the sale
func (s *Sale) Validate() error {
	if len(s.Items) == 0 {
		return fmt.Errorf("at least one item is required")
	}
	for i := range s.Items {
		if s.Items[i].Model == "" {
			return fmt.Errorf("item %d: model is required", i)
		}
		if s.Items[i].SalePrice.IsNegative() {
			return fmt.Errorf("item %d: sale_price cannot be negative", i)
		}
	}
	if s.Discount.IsNegative() {
		return fmt.Errorf("discount cannot be negative")
	}
	if s.Tax.IsNegative() {
		return fmt.Errorf("tax cannot be negative")
	}
	return nil
}

// ComputeTotals recomputes every derived field from the line items:
// per-item profit, subtotal, total profit and the final amount. Derived
// fields are never trusted from client input.
func (s *Sale) ComputeTotals() {
	subtotal := decimal.Zero
	profit := decimal.Zero
	for i := range s.Items {
		item := &s.Items[i]
		item.Profit = item.SalePrice.Sub(item.CostPrice)
		subtotal = subtotal.Add(item.SalePrice)
		profit = profit.Add(item.Profit)
	}
	s.Subtotal = subtotal
	s.TotalProfit = profit
	s.TotalAmount = subtotal.Sub(s.Discount).Add(s.Tax)
}

// StatisticsAmount is what the customer paid: item prices minus discount plus
// tax. Shipping cost is excluded on purpose; it reduces profit on the sale but
// is not part of the customer-spend figure.
func (s *Sale) StatisticsAmount() decimal.Decimal {
	sum := decimal.Zero
	for i := range s.Items {
		sum = sum.Add(s.Items[i].SalePrice)
	}
	return sum.Sub(s.Discount).Add(s.Tax)
}

// FormatSaleNumber builds the human-readable sale number: "SL" + year +
// month of first save, then a 4-digit sequence. The textual format is a
// wire contract consumed by the dashboard and exports.
func FormatSaleNumber(at time.Time, seq int64) string {
	return fmt.Sprintf("SL%04d%02d-%04d", at.Year(), int(at.Month()), seq)
}

// ItemSummaries returns short per-item descriptions for purchase history.
func (s *Sale) ItemSummaries() []string {
	out := make([]string, 0, len(s.Items))
	for i := range s.Items {
		desc := s.Items[i].Model
		if s.Items[i].Brand != "" {
			desc = s.Items[i].Brand + " " + desc
		}
		if s.Items[i].IMEI != "" {
			desc = desc + " (" + s.Items[i].IMEI + ")"
		}
		out = append(out, desc)
	}
	return out
}

// PrepareForStorage fills identifiers, defaults and timestamps before persisting
func (s *Sale) PrepareForStorage() {
	if s.SaleID == uuid.Nil {
		s.SaleID = uuid.New()
	}
	if s.Status == "" {
		s.Status = SaleCompleted
	}
	if s.PaymentStatus == "" {
		s.PaymentStatus = PaymentPaid
	}
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	s.ComputeTotals()
}
