// internal/adapters/db/devicetest_repository.go
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/phonedesk/phonedesk-be/internal/core/domain"
	"github.com/phonedesk/phonedesk-be/internal/core/ports"
)

// deviceTestRepository implements ports.DeviceTestRepository
type deviceTestRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewDeviceTestRepository creates a new diagnostic test repository
func NewDeviceTestRepository(db *Database, logger *slog.Logger) ports.DeviceTestRepository {
	return &deviceTestRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "device_test")),
	}
}

const testColumns = `
	test_id, imei, model, result, checks, battery_pct,
	technician, notes, tested_at, created_at`

// Save inserts a new test record
func (r *deviceTestRepository) Save(ctx context.Context, test *domain.DeviceTest) error {
	var checksJSON []byte
	if test.Checks != nil {
		var err error
		checksJSON, err = json.Marshal(test.Checks)
		if err != nil {
			return fmt.Errorf("failed to marshal checks: %w", err)
		}
	}

	query := `
		INSERT INTO device_tests (
			test_id, imei, model, result, checks, battery_pct,
			technician, notes, tested_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		test.TestID, test.IMEI, test.Model, test.Result, checksJSON, test.BatteryPct,
		test.Technician, test.Notes, test.TestedAt, test.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save test record: %w", err)
	}

	r.logger.DebugContext(ctx, "test record saved",
		slog.String("test_id", test.TestID.String()),
		slog.String("imei", test.IMEI))
	return nil
}

// FindByIMEI returns the most recent test records for an IMEI, newest first
func (r *deviceTestRepository) FindByIMEI(ctx context.Context, imei string, limit int) ([]domain.DeviceTest, error) {
	query := `SELECT ` + testColumns + `
		FROM device_tests
		WHERE imei = $1
		ORDER BY tested_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, imei, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query test records: %w", err)
	}
	defer rows.Close()

	var tests []domain.DeviceTest
	for rows.Next() {
		test, err := scanDeviceTest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan test record: %w", err)
		}
		tests = append(tests, *test)
	}
	return tests, rows.Err()
}

// List retrieves test records with filtering and pagination
func (r *deviceTestRepository) List(ctx context.Context, params ports.TestListParams) (*ports.TestListResult, error) {
	where := func(qb squirrel.SelectBuilder) squirrel.SelectBuilder {
		if params.IMEI != "" {
			qb = qb.Where(squirrel.Eq{"imei": params.IMEI})
		}
		if params.Result != "" {
			qb = qb.Where(squirrel.Eq{"result": params.Result})
		}
		return qb
	}

	countSQL, countArgs, err := where(
		squirrel.Select("COUNT(*)").From("device_tests").PlaceholderFormat(squirrel.Dollar),
	).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}

	var totalCount int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to count test records: %w", err)
	}

	if params.PageSize <= 0 {
		params.PageSize = 20
	}
	if params.Page <= 0 {
		params.Page = 1
	}

	listSQL, args, err := where(
		squirrel.Select(
			"test_id", "imei", "model", "result", "checks", "battery_pct",
			"technician", "notes", "tested_at", "created_at",
		).From("device_tests").PlaceholderFormat(squirrel.Dollar),
	).OrderBy("tested_at DESC").
		Limit(uint64(params.PageSize)).
		Offset(uint64((params.Page - 1) * params.PageSize)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query test records: %w", err)
	}
	defer rows.Close()

	var tests []*domain.DeviceTest
	for rows.Next() {
		test, err := scanDeviceTest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan test record: %w", err)
		}
		tests = append(tests, test)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	totalPages := int((totalCount + int64(params.PageSize) - 1) / int64(params.PageSize))
	return &ports.TestListResult{
		Tests:      tests,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}, nil
}

func scanDeviceTest(row pgx.Row) (*domain.DeviceTest, error) {
	test := &domain.DeviceTest{}
	var model, technician, notes sql.NullString
	var checksJSON []byte

	err := row.Scan(
		&test.TestID, &test.IMEI, &model, &test.Result, &checksJSON, &test.BatteryPct,
		&technician, &notes, &test.TestedAt, &test.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	test.Model = model.String
	test.Technician = technician.String
	test.Notes = notes.String

	if len(checksJSON) > 0 {
		if err := json.Unmarshal(checksJSON, &test.Checks); err != nil {
			return nil, fmt.Errorf("failed to unmarshal checks: %w", err)
		}
	}
	return test, nil
}
