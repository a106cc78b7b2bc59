// internal/core/domain/customer.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerType distinguishes wholesale buyers from walk-in retail
type CustomerType string

const (
	CustomerRetail    CustomerType = "retail"
	CustomerWholesale CustomerType = "wholesale"
)

// PurchaseRecord is one appended purchase-history entry. History entries are
// append-only; deleting a sale never removes them.
type PurchaseRecord struct {
	SaleID uuid.UUID       `json:"sale_id"`
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
	Items  []string        `json:"items,omitempty"`
}

// Customer with lifetime purchase statistics.
type Customer struct {
	CustomerID      uuid.UUID        `json:"customer_id"`
	Name            string           `json:"name"`
	Phone           string           `json:"phone,omitempty"`
	Email           string           `json:"email,omitempty"`
	Address         string           `json:"address,omitempty"`
	Type            CustomerType     `json:"type"`
	TotalPurchases  int              `json:"total_purchases"`
	TotalSpent      decimal.Decimal  `json:"total_spent"`
	PurchaseHistory []PurchaseRecord `json:"purchase_history"`
	Notes           string           `json:"notes,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	DeletedAt       *time.Time       `json:"deleted_at,omitempty"`
}

// Validate performs domain validation on the customer
func (c *Customer) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.Type != "" && c.Type != CustomerRetail && c.Type != CustomerWholesale {
		return fmt.Errorf("invalid customer type: %s", c.Type)
	}
	return nil
}

// PrepareForStorage fills identifiers, defaults and timestamps before persisting
func (c *Customer) PrepareForStorage() {
	if c.CustomerID == uuid.Nil {
		c.CustomerID = uuid.New()
	}
	if c.Type == "" {
		c.Type = CustomerRetail
	}
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}
