// internal/adapters/db/invoice_repository.go
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

// invoiceRepository implements ports.InvoiceRepository
type invoiceRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewInvoiceRepository creates a new supplier invoice repository
func NewInvoiceRepository(db *Database, logger *slog.Logger) ports.InvoiceRepository {
	return &invoiceRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "invoice")),
	}
}

const invoiceColumns = `
	invoice_id, invoice_number, supplier_name, invoice_date, products,
	total_amount, raw_text, file_key, status, notes, created_at, updated_at`

// Save inserts a new supplier invoice
func (r *invoiceRepository) Save(ctx context.Context, invoice *domain.SupplierInvoice) error {
	productsJSON, err := json.Marshal(invoice.Products)
	if err != nil {
		return fmt.Errorf("failed to marshal invoice products: %w", err)
	}

	query := `
		INSERT INTO supplier_invoices (
			invoice_id, invoice_number, supplier_name, invoice_date, products,
			total_amount, raw_text, file_key, status, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = r.db.Exec(ctx, query,
		invoice.InvoiceID, invoice.InvoiceNumber, invoice.SupplierName,
		invoice.InvoiceDate, productsJSON,
		invoice.TotalAmount, invoice.RawText, invoice.FileKey, invoice.Status,
		invoice.Notes, invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save invoice: %w", err)
	}

	r.logger.DebugContext(ctx, "invoice saved",
		slog.String("invoice_id", invoice.InvoiceID.String()),
		slog.String("supplier", invoice.SupplierName))
	return nil
}

// Update rewrites an existing supplier invoice
func (r *invoiceRepository) Update(ctx context.Context, invoice *domain.SupplierInvoice) error {
	productsJSON, err := json.Marshal(invoice.Products)
	if err != nil {
		return fmt.Errorf("failed to marshal invoice products: %w", err)
	}
	invoice.UpdatedAt = time.Now()

	query := `
		UPDATE supplier_invoices SET
			invoice_number = $2, supplier_name = $3, invoice_date = $4, products = $5,
			total_amount = $6, raw_text = $7, file_key = $8, status = $9, notes = $10,
			updated_at = $11
		WHERE invoice_id = $1`

	tag, err := r.db.Exec(ctx, query,
		invoice.InvoiceID, invoice.InvoiceNumber, invoice.SupplierName,
		invoice.InvoiceDate, productsJSON,
		invoice.TotalAmount, invoice.RawText, invoice.FileKey, invoice.Status,
		invoice.Notes, invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("invoice %s: %w", invoice.InvoiceID, ports.ErrNotFound)
	}
	return nil
}

// FindByID retrieves an invoice by ID
func (r *invoiceRepository) FindByID(ctx context.Context, invoiceID uuid.UUID) (*domain.SupplierInvoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM supplier_invoices WHERE invoice_id = $1`

	invoice, err := scanInvoice(r.db.QueryRow(ctx, query, invoiceID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("invoice %s: %w", invoiceID, ports.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find invoice: %w", err)
	}
	return invoice, nil
}

// List retrieves invoices with filtering and pagination
func (r *invoiceRepository) List(ctx context.Context, params ports.InvoiceListParams) (*ports.InvoiceListResult, error) {
	where := func(qb squirrel.SelectBuilder) squirrel.SelectBuilder {
		if params.Search != "" {
			like := "%" + params.Search + "%"
			qb = qb.Where(squirrel.Or{
				squirrel.ILike{"invoice_number": like},
				squirrel.ILike{"supplier_name": like},
			})
		}
		if params.Supplier != "" {
			qb = qb.Where(squirrel.Eq{"supplier_name": params.Supplier})
		}
		return qb
	}

	countSQL, countArgs, err := where(
		squirrel.Select("COUNT(*)").From("supplier_invoices").PlaceholderFormat(squirrel.Dollar),
	).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}

	var totalCount int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to count invoices: %w", err)
	}

	if params.PageSize <= 0 {
		params.PageSize = 20
	}
	if params.Page <= 0 {
		params.Page = 1
	}

	listSQL, args, err := where(
		squirrel.Select(
			"invoice_id", "invoice_number", "supplier_name", "invoice_date", "products",
			"total_amount", "raw_text", "file_key", "status", "notes",
			"created_at", "updated_at",
		).From("supplier_invoices").PlaceholderFormat(squirrel.Dollar),
	).OrderBy("invoice_date DESC").
		Limit(uint64(params.PageSize)).
		Offset(uint64((params.Page - 1) * params.PageSize)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*domain.SupplierInvoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	totalPages := int((totalCount + int64(params.PageSize) - 1) / int64(params.PageSize))
	return &ports.InvoiceListResult{
		Invoices:   invoices,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}, nil
}

// Delete removes an invoice permanently
func (r *invoiceRepository) Delete(ctx context.Context, invoiceID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM supplier_invoices WHERE invoice_id = $1`, invoiceID)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("invoice %s: %w", invoiceID, ports.ErrNotFound)
	}

	r.logger.InfoContext(ctx, "invoice deleted",
		slog.String("invoice_id", invoiceID.String()))
	return nil
}

// SearchByText returns the most recent invoices mentioning the given text in
// their raw OCR extraction or product lines, newest first. Used for IMEI
// lifecycle lookups, where a plain substring match is the contract.
func (r *invoiceRepository) SearchByText(ctx context.Context, text string, limit int) ([]domain.SupplierInvoice, error) {
	query := `SELECT ` + invoiceColumns + `
		FROM supplier_invoices
		WHERE raw_text ILIKE $1 OR products::text ILIKE $1
		ORDER BY invoice_date DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, "%"+text+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search invoices: %w", err)
	}
	defer rows.Close()

	var invoices []domain.SupplierInvoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, *invoice)
	}
	return invoices, rows.Err()
}

func scanInvoice(row pgx.Row) (*domain.SupplierInvoice, error) {
	invoice := &domain.SupplierInvoice{}
	var invoiceNumber, rawText, fileKey, status, notes sql.NullString
	var productsJSON []byte

	err := row.Scan(
		&invoice.InvoiceID, &invoiceNumber, &invoice.SupplierName,
		&invoice.InvoiceDate, &productsJSON,
		&invoice.TotalAmount, &rawText, &fileKey, &status, &notes,
		&invoice.CreatedAt, &invoice.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	invoice.InvoiceNumber = invoiceNumber.String
	invoice.RawText = rawText.String
	invoice.FileKey = fileKey.String
	invoice.Status = status.String
	invoice.Notes = notes.String

	if len(productsJSON) > 0 {
		if err := json.Unmarshal(productsJSON, &invoice.Products); err != nil {
			return nil, fmt.Errorf("failed to unmarshal invoice products: %w", err)
		}
	}
	return invoice, nil
}
