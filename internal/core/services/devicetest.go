// internal/core/services/devicetest.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phonedesk/phonedesk-be/internal/core/domain"
	"github.com/phonedesk/phonedesk-be/internal/core/ports"
)

// DeviceTestService records diagnostic test results against IMEIs
type DeviceTestService struct {
	repo   ports.DeviceTestRepository
	logger *slog.Logger
}

var _ ports.DeviceTestService = (*DeviceTestService)(nil)

// NewDeviceTestService creates a new device test service
func NewDeviceTestService(repo ports.DeviceTestRepository, logger *slog.Logger) *DeviceTestService {
	return &DeviceTestService{
		repo:   repo,
		logger: logger.With(slog.String("service", "device_test")),
	}
}

// RecordTest validates and persists one diagnostic record. Tests are
// append-only; a retest is a new record, never an update.
func (s *DeviceTestService) RecordTest(ctx context.Context, test *domain.DeviceTest) error {
	if err := test.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	test.PrepareForStorage()

	if err := s.repo.Save(ctx, test); err != nil {
		return fmt.Errorf("failed to save device test: %w", err)
	}

	s.logger.InfoContext(ctx, "device test recorded",
		slog.String("test_id", test.TestID.String()),
		slog.String("imei", test.IMEI),
		slog.String("result", string(test.Result)))
	return nil
}

// List retrieves test records with filtering and pagination
func (s *DeviceTestService) List(ctx context.Context, params ports.TestListParams) (*ports.TestListResult, error) {
	result, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list device tests: %w", err)
	}
	return result, nil
}
