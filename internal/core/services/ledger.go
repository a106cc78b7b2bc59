// internal/core/services/ledger.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phonedesk/phonedesk-be/internal/core/domain"
	"github.com/phonedesk/phonedesk-be/internal/core/ports"
)

// LedgerService handles inventory lots and per-device stock state
type LedgerService struct {
	repo   ports.LotRepository
	cache  ports.CacheRepository
	logger *slog.Logger
}

var _ ports.LedgerService = (*LedgerService)(nil)

// NewLedgerService creates a new inventory ledger service
func NewLedgerService(repo ports.LotRepository, cache ports.CacheRepository, logger *slog.Logger) *LedgerService {
	return &LedgerService{
		repo:   repo,
		cache:  cache,
		logger: logger.With(slog.String("service", "ledger")),
	}
}

// SaveLot validates and persists a new lot with its devices
func (s *LedgerService) SaveLot(ctx context.Context, lot *domain.ProductLot) error {
	if err := lot.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	lot.PrepareForStorage()

	if err := s.repo.Save(ctx, lot); err != nil {
		return fmt.Errorf("failed to save lot: %w", err)
	}

	s.invalidate(ctx)
	s.logger.InfoContext(ctx, "lot saved",
		slog.String("lot_id", lot.LotID.String()),
		slog.String("model", lot.Model),
		slog.Int("devices", len(lot.Devices)))
	return nil
}

// GetLot retrieves a lot by ID
func (s *LedgerService) GetLot(ctx context.Context, lotID uuid.UUID) (*domain.ProductLot, error) {
	lot, err := s.repo.FindByID(ctx, lotID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lot: %w", err)
	}
	return lot, nil
}

// UpdateLot validates and persists changes to an existing lot
func (s *LedgerService) UpdateLot(ctx context.Context, lotID uuid.UUID, lot *domain.ProductLot) error {
	if err := lot.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	lot.LotID = lotID

	if err := s.repo.Update(ctx, lot); err != nil {
		return fmt.Errorf("failed to update lot: %w", err)
	}

	s.invalidate(ctx)
	s.logger.InfoContext(ctx, "lot updated", slog.String("lot_id", lotID.String()))
	return nil
}

// DeleteLot removes a lot, softly by default
func (s *LedgerService) DeleteLot(ctx context.Context, lotID uuid.UUID, permanent bool) error {
	var err error
	if permanent {
		err = s.repo.Delete(ctx, lotID)
	} else {
		err = s.repo.SoftDelete(ctx, lotID)
	}
	if err != nil {
		return fmt.Errorf("failed to delete lot: %w", err)
	}

	s.invalidate(ctx)
	s.logger.InfoContext(ctx, "lot deleted",
		slog.String("lot_id", lotID.String()),
		slog.Bool("permanent", permanent))
	return nil
}

// List retrieves lots with filtering and pagination
func (s *LedgerService) List(ctx context.Context, params ports.LotListParams) (*ports.LotListResult, error) {
	result, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list lots: %w", err)
	}
	return result, nil
}

// FindDeviceByIMEI returns the first lot/device pair carrying this IMEI
func (s *LedgerService) FindDeviceByIMEI(ctx context.Context, imei string, onlyAvailable bool) (*domain.ProductLot, *domain.Device, error) {
	return s.repo.FindByDeviceIMEI(ctx, imei, onlyAvailable)
}

// MarkSold flips a device to sold. The repository applies the unsold guard,
// so a device already sold comes back as ports.ErrDeviceUnavailable.
func (s *LedgerService) MarkSold(ctx context.Context, lotID uuid.UUID, imei string, soldAt time.Time) error {
	if err := s.repo.MarkDeviceSold(ctx, lotID, imei, soldAt); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// MarkUnsold returns a device to stock
func (s *LedgerService) MarkUnsold(ctx context.Context, lotID uuid.UUID, imei string) error {
	if err := s.repo.MarkDeviceUnsold(ctx, lotID, imei); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// AvailableQuantity counts unsold devices in a lot
func (s *LedgerService) AvailableQuantity(ctx context.Context, lotID uuid.UUID) (int, error) {
	return s.repo.AvailableQuantity(ctx, lotID)
}

func (s *LedgerService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	for _, pattern := range []string{"lot:*", "imei:*"} {
		if err := s.cache.DeletePattern(ctx, pattern); err != nil {
			s.logger.WarnContext(ctx, "cache invalidation failed",
				slog.String("pattern", pattern),
				slog.Any("err", err))
		}
	}
}
