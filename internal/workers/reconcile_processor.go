// internal/workers/reconcile_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"

	"github.com/phonedesk/phonedesk-be/internal/core/ports"
	"github.com/phonedesk/phonedesk-be/internal/pkg/config"
)

// ReconcileProcessor runs the periodic stock sweep: devices flagged sold
// with no sale line referencing their IMEI are reported, never auto-fixed.
// A flagged device usually means a sale was deleted while the release of
// the device failed, so a human decides what to do with it.
type ReconcileProcessor struct {
	lots   ports.LotRepository
	config *config.Config
	logger *slog.Logger
}

// NewReconcileProcessor creates a new stock reconcile processor
func NewReconcileProcessor(lots ports.LotRepository, config *config.Config, logger *slog.Logger) *ReconcileProcessor {
	return &ReconcileProcessor{
		lots:   lots,
		config: config,
		logger: logger.With(slog.String("processor", "reconcile")),
	}
}

// ReconcileStock lists sold devices without a matching sale line
func (p *ReconcileProcessor) ReconcileStock(ctx context.Context, t *asynq.Task) error {
	window := p.config.Uploads.ReconcileWindow
	since := time.Now().Add(-window)

	p.logger.InfoContext(ctx, "reconciling device stock",
		slog.Time("since", since))

	orphans, err := p.lots.SoldWithoutSale(ctx, since)
	if err != nil {
		return fmt.Errorf("failed to find orphaned devices: %w", err)
	}

	for _, o := range orphans {
		p.logger.WarnContext(ctx, "device flagged sold with no matching sale",
			slog.String("lot_id", o.LotID.String()),
			slog.String("imei", o.IMEI),
			slog.String("model", o.Model))
	}

	p.logger.InfoContext(ctx, "stock reconciliation finished",
		slog.Int("orphaned_devices", len(orphans)))

	return nil
}

// CleanupTempFiles removes stale files from the upload scratch directory
func (p *ReconcileProcessor) CleanupTempFiles(ctx context.Context, t *asynq.Task) error {
	p.logger.InfoContext(ctx, "cleaning up temp files")

	tempDir := p.config.Uploads.TempDir
	maxAge := 24 * time.Hour

	var deletedCount int
	err := filepath.Walk(tempDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && time.Since(info.ModTime()) > maxAge {
			if err := os.Remove(path); err != nil {
				p.logger.WarnContext(ctx, "failed to delete temp file",
					slog.String("file", path),
					slog.String("error", err.Error()))
			} else {
				deletedCount++
			}
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("failed to walk temp directory: %w", err)
	}

	p.logger.InfoContext(ctx, "temp files cleaned up",
		slog.Int("files_deleted", deletedCount))

	return nil
}
