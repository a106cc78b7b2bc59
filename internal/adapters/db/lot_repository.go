// internal/adapters/db/lot_repository.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/phonedesk/phonedesk-be/internal/core/domain"
	"github.com/phonedesk/phonedesk-be/internal/core/ports"
)

// lotRepository implements ports.LotRepository
type lotRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewLotRepository creates a new product lot repository
func NewLotRepository(db *Database, logger *slog.Logger) ports.LotRepository {
	return &lotRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "lot")),
	}
}

const lotColumns = `
	lot_id, model, brand, quantity, cost_price, retail_price,
	storage, color, ram, low_stock_threshold,
	notes, supplier_invoice_id, created_at, updated_at`

// Save inserts the lot and its device rows in one transaction.
func (r *lotRepository) Save(ctx context.Context, lot *domain.ProductLot) error {
	return r.db.Transaction(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO lots (
				lot_id, model, brand, quantity, cost_price, retail_price,
				storage, color, ram, low_stock_threshold,
				notes, supplier_invoice_id, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

		_, err := tx.Exec(ctx, query,
			lot.LotID, lot.Model, lot.Brand, lot.Quantity, lot.CostPrice, lot.RetailPrice,
			lot.Storage, lot.Color, lot.RAM, lot.LowStockThreshold,
			lot.Notes, lot.SupplierInvoiceID, lot.CreatedAt, lot.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to save lot: %w", err)
		}

		if err := insertDevices(ctx, tx, lot.LotID, lot.Devices); err != nil {
			return err
		}

		r.logger.DebugContext(ctx, "lot saved",
			slog.String("lot_id", lot.LotID.String()),
			slog.Int("devices", len(lot.Devices)))
		return nil
	})
}

func insertDevices(ctx context.Context, tx pgx.Tx, lotID uuid.UUID, devices []domain.Device) error {
	if len(devices) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO devices (lot_id, imei, unlock_status, condition, grade, is_sold, sold_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for i := range devices {
		d := &devices[i]
		batch.Queue(query, lotID, d.IMEI, d.UnlockStatus, d.Condition, d.Grade, d.IsSold, d.SoldDate)
	}

	br := tx.SendBatch(ctx, batch)
	defer br.Close()
	for i := range devices {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to save device %d: %w", i, err)
		}
	}
	return nil
}

// Update rewrites the lot row and reconciles device rows: new IMEIs are
// inserted, removed IMEIs deleted, existing ones keep their sold state.
func (r *lotRepository) Update(ctx context.Context, lot *domain.ProductLot) error {
	lot.UpdatedAt = time.Now()

	return r.db.Transaction(ctx, func(tx pgx.Tx) error {
		query := `
			UPDATE lots SET
				model = $2, brand = $3, quantity = $4, cost_price = $5, retail_price = $6,
				storage = $7, color = $8, ram = $9, low_stock_threshold = $10,
				notes = $11, supplier_invoice_id = $12, updated_at = $13
			WHERE lot_id = $1 AND deleted_at IS NULL`

		tag, err := tx.Exec(ctx, query,
			lot.LotID, lot.Model, lot.Brand, lot.Quantity, lot.CostPrice, lot.RetailPrice,
			lot.Storage, lot.Color, lot.RAM, lot.LowStockThreshold,
			lot.Notes, lot.SupplierInvoiceID, lot.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to update lot: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("lot %s: %w", lot.LotID, ports.ErrNotFound)
		}

		imeis := make([]string, 0, len(lot.Devices))
		for i := range lot.Devices {
			imeis = append(imeis, lot.Devices[i].IMEI)
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM devices WHERE lot_id = $1 AND imei != ALL($2)`,
			lot.LotID, imeis,
		); err != nil {
			return fmt.Errorf("failed to prune devices: %w", err)
		}

		upsert := `
			INSERT INTO devices (lot_id, imei, unlock_status, condition, grade, is_sold, sold_date)
			VALUES ($1, $2, $3, $4, $5, false, NULL)
			ON CONFLICT (lot_id, imei) DO UPDATE SET
				unlock_status = EXCLUDED.unlock_status,
				condition = EXCLUDED.condition,
				grade = EXCLUDED.grade`

		batch := &pgx.Batch{}
		for i := range lot.Devices {
			d := &lot.Devices[i]
			batch.Queue(upsert, lot.LotID, d.IMEI, d.UnlockStatus, d.Condition, d.Grade)
		}
		br := tx.SendBatch(ctx, batch)
		defer br.Close()
		for i := range lot.Devices {
			if _, err := br.Exec(); err != nil {
				return fmt.Errorf("failed to upsert device %d: %w", i, err)
			}
		}
		return nil
	})
}

// FindByID retrieves a lot with its devices
func (r *lotRepository) FindByID(ctx context.Context, lotID uuid.UUID) (*domain.ProductLot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE lot_id = $1 AND deleted_at IS NULL`

	lot, err := scanLot(r.db.QueryRow(ctx, query, lotID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("lot %s: %w", lotID, ports.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find lot: %w", err)
	}

	if err := r.loadDevices(ctx, lot); err != nil {
		return nil, err
	}
	return lot, nil
}

func (r *lotRepository) loadDevices(ctx context.Context, lot *domain.ProductLot) error {
	rows, err := r.db.Query(ctx, `
		SELECT imei, unlock_status, condition, grade, is_sold, sold_date
		FROM devices WHERE lot_id = $1 ORDER BY imei`, lot.LotID)
	if err != nil {
		return fmt.Errorf("failed to load devices: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d domain.Device
		var grade sql.NullString
		if err := rows.Scan(&d.IMEI, &d.UnlockStatus, &d.Condition, &grade, &d.IsSold, &d.SoldDate); err != nil {
			return fmt.Errorf("failed to scan device: %w", err)
		}
		d.Grade = grade.String
		lot.Devices = append(lot.Devices, d)
	}
	return rows.Err()
}

// FindByDeviceIMEI returns the first (oldest lot) match for an IMEI, in query
// order. Cross-lot duplicates resolve to that first match only.
func (r *lotRepository) FindByDeviceIMEI(ctx context.Context, imei string, onlyAvailable bool) (*domain.ProductLot, *domain.Device, error) {
	query := `
		SELECT l.lot_id
		FROM devices d
		JOIN lots l ON l.lot_id = d.lot_id
		WHERE d.imei = $1 AND l.deleted_at IS NULL`
	if onlyAvailable {
		query += ` AND d.is_sold = false`
	}
	query += ` ORDER BY l.created_at ASC LIMIT 1`

	var lotID uuid.UUID
	if err := r.db.QueryRow(ctx, query, imei).Scan(&lotID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, fmt.Errorf("device %s: %w", imei, ports.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("failed to find device by imei: %w", err)
	}

	lot, err := r.FindByID(ctx, lotID)
	if err != nil {
		return nil, nil, err
	}

	device := lot.DeviceByIMEI(imei)
	if device == nil {
		return nil, nil, fmt.Errorf("device %s: %w", imei, ports.ErrNotFound)
	}
	return lot, device, nil
}

// List retrieves lots with filtering and pagination
func (r *lotRepository) List(ctx context.Context, params ports.LotListParams) (*ports.LotListResult, error) {
	where := func(qb squirrel.SelectBuilder) squirrel.SelectBuilder {
		qb = qb.Where("deleted_at IS NULL")
		if params.Search != "" {
			like := "%" + params.Search + "%"
			qb = qb.Where(squirrel.Or{
				squirrel.ILike{"model": like},
				squirrel.ILike{"brand": like},
			})
		}
		if params.Brand != "" {
			qb = qb.Where(squirrel.Eq{"brand": params.Brand})
		}
		if params.Condition != "" {
			qb = qb.Where("EXISTS (SELECT 1 FROM devices d WHERE d.lot_id = lots.lot_id AND d.condition = ?)", params.Condition)
		}
		if params.InStock != nil && *params.InStock {
			qb = qb.Where("EXISTS (SELECT 1 FROM devices d WHERE d.lot_id = lots.lot_id AND d.is_sold = false)")
		}
		if params.LowStock != nil && *params.LowStock {
			qb = qb.Where(`low_stock_threshold > 0 AND
				(SELECT COUNT(*) FROM devices d WHERE d.lot_id = lots.lot_id AND d.is_sold = false) <= low_stock_threshold`)
		}
		return qb
	}

	countSQL, countArgs, err := where(
		squirrel.Select("COUNT(*)").From("lots").PlaceholderFormat(squirrel.Dollar),
	).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}

	var totalCount int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to count lots: %w", err)
	}

	qb := where(squirrel.Select(
		"lot_id", "model", "brand", "quantity", "cost_price", "retail_price",
		"storage", "color", "ram", "low_stock_threshold",
		"notes", "supplier_invoice_id", "created_at", "updated_at",
	).From("lots").PlaceholderFormat(squirrel.Dollar))

	orderBy := "created_at DESC"
	if params.SortBy != "" {
		direction := "ASC"
		if params.SortOrder == "desc" {
			direction = "DESC"
		}
		switch params.SortBy {
		case "model":
			orderBy = "model " + direction
		case "brand":
			orderBy = "brand " + direction
		case "price":
			orderBy = "retail_price " + direction
		case "updated":
			orderBy = "updated_at " + direction
		default:
			orderBy = "created_at " + direction
		}
	}
	qb = qb.OrderBy(orderBy)

	if params.PageSize <= 0 {
		params.PageSize = 20
	}
	if params.Page <= 0 {
		params.Page = 1
	}
	qb = qb.Limit(uint64(params.PageSize)).Offset(uint64((params.Page - 1) * params.PageSize))

	listSQL, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lots: %w", err)
	}
	defer rows.Close()

	var lots []*domain.ProductLot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lot: %w", err)
		}
		lots = append(lots, lot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	for _, lot := range lots {
		if err := r.loadDevices(ctx, lot); err != nil {
			return nil, err
		}
	}

	totalPages := int((totalCount + int64(params.PageSize) - 1) / int64(params.PageSize))
	return &ports.LotListResult{
		Lots:       lots,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}, nil
}

func scanLot(row pgx.Row) (*domain.ProductLot, error) {
	lot := &domain.ProductLot{}
	var brand, storage, color, ram, notes sql.NullString
	err := row.Scan(
		&lot.LotID, &lot.Model, &brand, &lot.Quantity, &lot.CostPrice, &lot.RetailPrice,
		&storage, &color, &ram, &lot.LowStockThreshold,
		&notes, &lot.SupplierInvoiceID, &lot.CreatedAt, &lot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	lot.Brand = brand.String
	lot.Storage = storage.String
	lot.Color = color.String
	lot.RAM = ram.String
	lot.Notes = notes.String
	return lot, nil
}

// SoftDelete marks a lot as deleted
func (r *lotRepository) SoftDelete(ctx context.Context, lotID uuid.UUID) error {
	now := time.Now()
	tag, err := r.db.Exec(ctx,
		`UPDATE lots SET deleted_at = $2, updated_at = $2 WHERE lot_id = $1 AND deleted_at IS NULL`,
		lotID, now)
	if err != nil {
		return fmt.Errorf("failed to soft delete lot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("lot %s: %w", lotID, ports.ErrNotFound)
	}

	r.logger.InfoContext(ctx, "lot soft deleted", slog.String("lot_id", lotID.String()))
	return nil
}

// Delete removes a lot and its devices permanently
func (r *lotRepository) Delete(ctx context.Context, lotID uuid.UUID) error {
	return r.db.Transaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM devices WHERE lot_id = $1`, lotID); err != nil {
			return fmt.Errorf("failed to delete devices: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM lots WHERE lot_id = $1`, lotID)
		if err != nil {
			return fmt.Errorf("failed to delete lot: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("lot %s: %w", lotID, ports.ErrNotFound)
		}

		r.logger.InfoContext(ctx, "lot deleted", slog.String("lot_id", lotID.String()))
		return nil
	})
}

// MarkDeviceSold flips the device to sold only if it is currently unsold.
// The is_sold guard makes concurrent sales of the same unit race-safe: one
// writer wins, the other gets ErrDeviceUnavailable.
func (r *lotRepository) MarkDeviceSold(ctx context.Context, lotID uuid.UUID, imei string, soldAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE devices SET is_sold = true, sold_date = $3
		WHERE lot_id = $1 AND imei = $2 AND is_sold = false`,
		lotID, imei, soldAt)
	if err != nil {
		return fmt.Errorf("failed to mark device sold: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("device %s in lot %s: %w", imei, lotID, ports.ErrDeviceUnavailable)
	}

	r.logger.DebugContext(ctx, "device marked sold",
		slog.String("lot_id", lotID.String()),
		slog.String("imei", imei))
	return nil
}

// MarkDeviceUnsold clears the sold flag regardless of current state.
func (r *lotRepository) MarkDeviceUnsold(ctx context.Context, lotID uuid.UUID, imei string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE devices SET is_sold = false, sold_date = NULL
		WHERE lot_id = $1 AND imei = $2`,
		lotID, imei)
	if err != nil {
		return fmt.Errorf("failed to mark device unsold: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("device %s in lot %s: %w", imei, lotID, ports.ErrNotFound)
	}

	r.logger.DebugContext(ctx, "device marked unsold",
		slog.String("lot_id", lotID.String()),
		slog.String("imei", imei))
	return nil
}

// AvailableQuantity counts unsold device rows for a lot
func (r *lotRepository) AvailableQuantity(ctx context.Context, lotID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM devices WHERE lot_id = $1 AND is_sold = false`,
		lotID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count available devices: %w", err)
	}
	return count, nil
}

// SoldWithoutSale lists devices flagged sold that no sale line references.
// These are leftovers from the window between marking a device sold and the
// sale insert failing.
func (r *lotRepository) SoldWithoutSale(ctx context.Context, since time.Time) ([]ports.OrphanedDevice, error) {
	rows, err := r.db.Query(ctx, `
		SELECT d.lot_id, d.imei, l.model, d.sold_date
		FROM devices d
		JOIN lots l ON l.lot_id = d.lot_id
		WHERE d.is_sold = true
		  AND d.sold_date >= $1
		  AND NOT EXISTS (
			SELECT 1 FROM sales s
			WHERE s.items @> jsonb_build_array(jsonb_build_object('imei', d.imei))
		  )
		ORDER BY d.sold_date DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query orphaned devices: %w", err)
	}
	defer rows.Close()

	var orphans []ports.OrphanedDevice
	for rows.Next() {
		var o ports.OrphanedDevice
		if err := rows.Scan(&o.LotID, &o.IMEI, &o.Model, &o.SoldDate); err != nil {
			return nil, fmt.Errorf("failed to scan orphaned device: %w", err)
		}
		orphans = append(orphans, o)
	}
	return orphans, rows.Err()
}
