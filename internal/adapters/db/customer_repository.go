// internal/adapters/db/customer_repository.go
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/phonedesk/phonedesk-be/internal/core/domain"
	"github.com/phonedesk/phonedesk-be/internal/core/ports"
)

// customerRepository implements ports.CustomerRepository
type customerRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *Database, logger *slog.Logger) ports.CustomerRepository {
	return &customerRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "customer")),
	}
}

const customerColumns = `
	customer_id, name, phone, email, address, type,
	total_purchases, total_spent, purchase_history, notes,
	created_at, updated_at`

// Save inserts a new customer
func (r *customerRepository) Save(ctx context.Context, customer *domain.Customer) error {
	historyJSON, err := json.Marshal(customer.PurchaseHistory)
	if err != nil {
		return fmt.Errorf("failed to marshal purchase history: %w", err)
	}
	if customer.PurchaseHistory == nil {
		historyJSON = []byte("[]")
	}

	query := `
		INSERT INTO customers (
			customer_id, name, phone, email, address, type,
			total_purchases, total_spent, purchase_history, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = r.db.Exec(ctx, query,
		customer.CustomerID, customer.Name, customer.Phone, customer.Email,
		customer.Address, customer.Type,
		customer.TotalPurchases, customer.TotalSpent, historyJSON, customer.Notes,
		customer.CreatedAt, customer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save customer: %w", err)
	}

	r.logger.DebugContext(ctx, "customer saved",
		slog.String("customer_id", customer.CustomerID.String()))
	return nil
}

// Update rewrites the customer's profile fields. Statistics and history are
// only ever touched through RecordPurchase.
func (r *customerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	customer.UpdatedAt = time.Now()

	query := `
		UPDATE customers SET
			name = $2, phone = $3, email = $4, address = $5, type = $6,
			notes = $7, updated_at = $8
		WHERE customer_id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query,
		customer.CustomerID, customer.Name, customer.Phone, customer.Email,
		customer.Address, customer.Type, customer.Notes, customer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("customer %s: %w", customer.CustomerID, ports.ErrNotFound)
	}
	return nil
}

// FindByID retrieves a customer by ID
func (r *customerRepository) FindByID(ctx context.Context, customerID uuid.UUID) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + `
		FROM customers WHERE customer_id = $1 AND deleted_at IS NULL`

	customer, err := scanCustomer(r.db.QueryRow(ctx, query, customerID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("customer %s: %w", customerID, ports.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return customer, nil
}

// List retrieves customers with filtering and pagination
func (r *customerRepository) List(ctx context.Context, params ports.CustomerListParams) (*ports.CustomerListResult, error) {
	where := func(qb squirrel.SelectBuilder) squirrel.SelectBuilder {
		qb = qb.Where("deleted_at IS NULL")
		if params.Search != "" {
			like := "%" + params.Search + "%"
			qb = qb.Where(squirrel.Or{
				squirrel.ILike{"name": like},
				squirrel.ILike{"phone": like},
				squirrel.ILike{"email": like},
			})
		}
		if params.Type != "" {
			qb = qb.Where(squirrel.Eq{"type": params.Type})
		}
		return qb
	}

	countSQL, countArgs, err := where(
		squirrel.Select("COUNT(*)").From("customers").PlaceholderFormat(squirrel.Dollar),
	).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}

	var totalCount int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	if params.PageSize <= 0 {
		params.PageSize = 20
	}
	if params.Page <= 0 {
		params.Page = 1
	}

	listSQL, args, err := where(
		squirrel.Select(
			"customer_id", "name", "phone", "email", "address", "type",
			"total_purchases", "total_spent", "purchase_history", "notes",
			"created_at", "updated_at",
		).From("customers").PlaceholderFormat(squirrel.Dollar),
	).OrderBy("name ASC").
		Limit(uint64(params.PageSize)).
		Offset(uint64((params.Page - 1) * params.PageSize)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var customers []*domain.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	totalPages := int((totalCount + int64(params.PageSize) - 1) / int64(params.PageSize))
	return &ports.CustomerListResult{
		Customers:  customers,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}, nil
}

// SoftDelete marks a customer as deleted
func (r *customerRepository) SoftDelete(ctx context.Context, customerID uuid.UUID) error {
	now := time.Now()
	tag, err := r.db.Exec(ctx,
		`UPDATE customers SET deleted_at = $2, updated_at = $2 WHERE customer_id = $1 AND deleted_at IS NULL`,
		customerID, now)
	if err != nil {
		return fmt.Errorf("failed to soft delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("customer %s: %w", customerID, ports.ErrNotFound)
	}

	r.logger.InfoContext(ctx, "customer soft deleted",
		slog.String("customer_id", customerID.String()))
	return nil
}

// RecordPurchase bumps both counters and appends the history entry in a
// single statement. Either the whole statistics update lands or none of it
// does; there is no state where the count moved but the history did not.
func (r *customerRepository) RecordPurchase(ctx context.Context, customerID uuid.UUID, record domain.PurchaseRecord) error {
	entryJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal purchase record: %w", err)
	}

	query := `
		UPDATE customers SET
			total_purchases = total_purchases + 1,
			total_spent = total_spent + $2,
			purchase_history = purchase_history || $3::jsonb,
			updated_at = now()
		WHERE customer_id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query, customerID, record.Amount, entryJSON)
	if err != nil {
		return fmt.Errorf("failed to record purchase: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("customer %s: %w", customerID, ports.ErrNotFound)
	}

	r.logger.DebugContext(ctx, "purchase recorded",
		slog.String("customer_id", customerID.String()),
		slog.String("sale_id", record.SaleID.String()),
		slog.String("amount", record.Amount.String()))
	return nil
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	customer := &domain.Customer{}
	var phone, email, address, notes sql.NullString
	var historyJSON []byte

	err := row.Scan(
		&customer.CustomerID, &customer.Name, &phone, &email, &address, &customer.Type,
		&customer.TotalPurchases, &customer.TotalSpent, &historyJSON, &notes,
		&customer.CreatedAt, &customer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	customer.Phone = phone.String
	customer.Email = email.String
	customer.Address = address.String
	customer.Notes = notes.String

	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &customer.PurchaseHistory); err != nil {
			return nil, fmt.Errorf("failed to unmarshal purchase history: %w", err)
		}
	}
	return customer, nil
}
