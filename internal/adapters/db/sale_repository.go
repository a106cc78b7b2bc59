// internal/adapters/db/sale_repository.go
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

// saleRepository implements ports.SaleRepository. Line items and the shipping
// block live as JSONB on the sale row; sales are one aggregate, one row.
type saleRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *Database, logger *slog.Logger) ports.SaleRepository {
	return &saleRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "sale")),
	}
}

const saleColumns = `
	sale_id, sale_number, customer_id, customer_name, items,
	discount, tax, subtotal, total_amount, total_profit,
	payment_method, payment_status, amount_paid,
	status, sales_channel, shipping, costs, notes, created_by,
	created_at, updated_at`

// Save inserts a new sale row
func (r *saleRepository) Save(ctx context.Context, sale *domain.Sale) error {
	itemsJSON, shippingJSON, costsJSON, err := marshalSaleDocs(sale)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO sales (
			sale_id, sale_number, customer_id, customer_name, items,
			discount, tax, subtotal, total_amount, total_profit,
			payment_method, payment_status, amount_paid,
			status, sales_channel, shipping, costs, notes, created_by,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21
		)`

	_, err = r.db.Exec(ctx, query,
		sale.SaleID, sale.SaleNumber, sale.CustomerID, sale.CustomerName, itemsJSON,
		sale.Discount, sale.Tax, sale.Subtotal, sale.TotalAmount, sale.TotalProfit,
		sale.PaymentMethod, sale.PaymentStatus, sale.AmountPaid,
		sale.Status, sale.SalesChannel, shippingJSON, costsJSON, sale.Notes, sale.CreatedBy,
		sale.CreatedAt, sale.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save sale: %w", err)
	}

	r.logger.DebugContext(ctx, "sale saved",
		slog.String("sale_id", sale.SaleID.String()),
		slog.String("sale_number", sale.SaleNumber))
	return nil
}

// Update rewrites an existing sale row
func (r *saleRepository) Update(ctx context.Context, sale *domain.Sale) error {
	itemsJSON, shippingJSON, costsJSON, err := marshalSaleDocs(sale)
	if err != nil {
		return err
	}
	sale.UpdatedAt = time.Now()

	query := `
		UPDATE sales SET
			customer_id = $2, customer_name = $3, items = $4,
			discount = $5, tax = $6, subtotal = $7, total_amount = $8, total_profit = $9,
			payment_method = $10, payment_status = $11, amount_paid = $12,
			status = $13, sales_channel = $14, shipping = $15, costs = $16, notes = $17,
			updated_at = $18
		WHERE sale_id = $1`

	tag, err := r.db.Exec(ctx, query,
		sale.SaleID, sale.CustomerID, sale.CustomerName, itemsJSON,
		sale.Discount, sale.Tax, sale.Subtotal, sale.TotalAmount, sale.TotalProfit,
		sale.PaymentMethod, sale.PaymentStatus, sale.AmountPaid,
		sale.Status, sale.SalesChannel, shippingJSON, costsJSON, sale.Notes,
		sale.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sale %s: %w", sale.SaleID, ports.ErrNotFound)
	}
	return nil
}

func marshalSaleDocs(sale *domain.Sale) ([]byte, []byte, []byte, error) {
	itemsJSON, err := json.Marshal(sale.Items)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal sale items: %w", err)
	}
	var shippingJSON []byte
	if sale.Shipping != nil {
		shippingJSON, err = json.Marshal(sale.Shipping)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal shipping: %w", err)
		}
	}
	var costsJSON []byte
	if sale.Costs != nil {
		costsJSON, err = json.Marshal(sale.Costs)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal costs: %w", err)
		}
	}
	return itemsJSON, shippingJSON, costsJSON, nil
}

// FindByID retrieves a sale by ID
func (r *saleRepository) FindByID(ctx context.Context, saleID uuid.UUID) (*domain.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE sale_id = $1`

	sale, err := scanSale(r.db.QueryRow(ctx, query, saleID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("sale %s: %w", saleID, ports.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find sale: %w", err)
	}
	return sale, nil
}

// Delete removes a sale row permanently
func (r *saleRepository) Delete(ctx context.Context, saleID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM sales WHERE sale_id = $1`, saleID)
	if err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sale %s: %w", saleID, ports.ErrNotFound)
	}

	r.logger.InfoContext(ctx, "sale deleted", slog.String("sale_id", saleID.String()))
	return nil
}

// Count returns the total number of sales ever recorded, deleted ones
// excluded. Sale numbers are allocated from this figure.
func (r *saleRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM sales`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sales: %w", err)
	}
	return count, nil
}

// List retrieves sales with filtering and pagination, newest first
func (r *saleRepository) List(ctx context.Context, params ports.SaleListParams) (*ports.SaleListResult, error) {
	where := func(qb squirrel.SelectBuilder) squirrel.SelectBuilder {
		if params.Search != "" {
			like := "%" + params.Search + "%"
			qb = qb.Where(squirrel.Or{
				squirrel.ILike{"sale_number": like},
				squirrel.ILike{"customer_name": like},
				squirrel.ILike{"shipping->>'tracking_number'": like},
			})
		}
		if params.Status != "" {
			qb = qb.Where(squirrel.Eq{"status": params.Status})
		}
		if params.DateFrom != nil {
			qb = qb.Where(squirrel.GtOrEq{"created_at": *params.DateFrom})
		}
		if params.DateTo != nil {
			qb = qb.Where(squirrel.LtOrEq{"created_at": *params.DateTo})
		}
		return qb
	}

	countSQL, countArgs, err := where(
		squirrel.Select("COUNT(*)").From("sales").PlaceholderFormat(squirrel.Dollar),
	).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}

	var totalCount int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to count sales: %w", err)
	}

	if params.PageSize <= 0 {
		params.PageSize = 20
	}
	if params.Page <= 0 {
		params.Page = 1
	}

	listSQL, args, err := where(
		squirrel.Select(
			"sale_id", "sale_number", "customer_id", "customer_name", "items",
			"discount", "tax", "subtotal", "total_amount", "total_profit",
			"payment_method", "payment_status", "amount_paid",
			"status", "sales_channel", "shipping", "costs", "notes", "created_by",
			"created_at", "updated_at",
		).From("sales").PlaceholderFormat(squirrel.Dollar),
	).OrderBy("created_at DESC").
		Limit(uint64(params.PageSize)).
		Offset(uint64((params.Page - 1) * params.PageSize)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	var sales []*domain.Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	totalPages := int((totalCount + int64(params.PageSize) - 1) / int64(params.PageSize))
	return &ports.SaleListResult{
		Sales:      sales,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}, nil
}

// FindByItemIMEI returns the most recent sales containing a line with this IMEI
func (r *saleRepository) FindByItemIMEI(ctx context.Context, imei string, limit int) ([]domain.Sale, error) {
	needle, err := json.Marshal([]map[string]string{{"imei": imei}})
	if err != nil {
		return nil, fmt.Errorf("failed to build imei filter: %w", err)
	}

	query := `SELECT ` + saleColumns + `
		FROM sales
		WHERE items @> $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, needle, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales by imei: %w", err)
	}
	defer rows.Close()

	var sales []domain.Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, *sale)
	}
	return sales, rows.Err()
}

// Stats aggregates revenue-bearing sales over today, the current month and
// all time in one pass.
func (r *saleRepository) Stats(ctx context.Context) (*ports.SalesStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE created_at >= date_trunc('day', now())),
			COALESCE(SUM(total_amount) FILTER (WHERE created_at >= date_trunc('day', now())), 0),
			COALESCE(SUM(total_profit) FILTER (WHERE created_at >= date_trunc('day', now())), 0),
			COUNT(*) FILTER (WHERE created_at >= date_trunc('month', now())),
			COALESCE(SUM(total_amount) FILTER (WHERE created_at >= date_trunc('month', now())), 0),
			COALESCE(SUM(total_profit) FILTER (WHERE created_at >= date_trunc('month', now())), 0),
			COUNT(*),
			COALESCE(SUM(total_amount), 0),
			COALESCE(SUM(total_profit), 0)
		FROM sales
		WHERE status IN ('completed', 'shipped', 'delivered')`

	stats := &ports.SalesStats{}
	err := r.db.QueryRow(ctx, query).Scan(
		&stats.Today.Count, &stats.Today.Revenue, &stats.Today.Profit,
		&stats.ThisMonth.Count, &stats.ThisMonth.Revenue, &stats.ThisMonth.Profit,
		&stats.AllTime.Count, &stats.AllTime.Revenue, &stats.AllTime.Profit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sales stats: %w", err)
	}
	return stats, nil
}

func scanSale(row pgx.Row) (*domain.Sale, error) {
	sale := &domain.Sale{}
	var itemsJSON, shippingJSON, costsJSON []byte
	var paymentMethod, salesChannel, notes, createdBy sql.NullString

	err := row.Scan(
		&sale.SaleID, &sale.SaleNumber, &sale.CustomerID, &sale.CustomerName, &itemsJSON,
		&sale.Discount, &sale.Tax, &sale.Subtotal, &sale.TotalAmount, &sale.TotalProfit,
		&paymentMethod, &sale.PaymentStatus, &sale.AmountPaid,
		&sale.Status, &salesChannel, &shippingJSON, &costsJSON, &notes, &createdBy,
		&sale.CreatedAt, &sale.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	sale.PaymentMethod = paymentMethod.String
	sale.SalesChannel = salesChannel.String
	sale.Notes = notes.String
	sale.CreatedBy = createdBy.String

	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &sale.Items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal sale items: %w", err)
		}
	}
	if len(shippingJSON) > 0 {
		sale.Shipping = &domain.Shipping{}
		if err := json.Unmarshal(shippingJSON, sale.Shipping); err != nil {
			return nil, fmt.Errorf("failed to unmarshal shipping: %w", err)
		}
	}
	if len(costsJSON) > 0 {
		sale.Costs = &domain.SaleCosts{}
		if err := json.Unmarshal(costsJSON, sale.Costs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal costs: %w", err)
		}
	}
	return sale, nil
}
