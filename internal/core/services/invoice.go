// internal/core/services/invoice.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phonedesk/phonedesk-be/internal/core/domain"
	"github.com/phonedesk/phonedesk-be/internal/core/ports"
)

// InvoiceService handles supplier invoices, whether entered by hand or
// produced by the OCR scan worker.
type InvoiceService struct {
	repo   ports.InvoiceRepository
	store  ports.ObjectStore
	logger *slog.Logger
}

var _ ports.InvoiceService = (*InvoiceService)(nil)

// NewInvoiceService creates a new supplier invoice service
func NewInvoiceService(repo ports.InvoiceRepository, store ports.ObjectStore, logger *slog.Logger) *InvoiceService {
	return &InvoiceService{
		repo:   repo,
		store:  store,
		logger: logger.With(slog.String("service", "invoice")),
	}
}

// SaveInvoice validates and persists a new supplier invoice
func (s *InvoiceService) SaveInvoice(ctx context.Context, invoice *domain.SupplierInvoice) error {
	if err := invoice.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	invoice.PrepareForStorage()

	if err := s.repo.Save(ctx, invoice); err != nil {
		return fmt.Errorf("failed to save invoice: %w", err)
	}

	s.logger.InfoContext(ctx, "invoice saved",
		slog.String("invoice_id", invoice.InvoiceID.String()),
		slog.String("supplier", invoice.SupplierName))
	return nil
}

// GetInvoice retrieves an invoice by ID
func (s *InvoiceService) GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*domain.SupplierInvoice, error) {
	invoice, err := s.repo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return invoice, nil
}

// UpdateInvoice validates and persists changes to an existing invoice
func (s *InvoiceService) UpdateInvoice(ctx context.Context, invoiceID uuid.UUID, invoice *domain.SupplierInvoice) error {
	if err := invoice.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	invoice.InvoiceID = invoiceID

	if err := s.repo.Update(ctx, invoice); err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}

	s.logger.InfoContext(ctx, "invoice updated",
		slog.String("invoice_id", invoiceID.String()))
	return nil
}

// DeleteInvoice removes an invoice and, best effort, its stored document
func (s *InvoiceService) DeleteInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	invoice, err := s.repo.FindByID(ctx, invoiceID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, invoiceID); err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}

	if invoice.FileKey != "" && s.store != nil {
		if err := s.store.Delete(ctx, invoice.FileKey); err != nil {
			s.logger.WarnContext(ctx, "failed to delete invoice document",
				slog.String("file_key", invoice.FileKey),
				slog.Any("err", err))
		}
	}

	s.logger.InfoContext(ctx, "invoice deleted",
		slog.String("invoice_id", invoiceID.String()))
	return nil
}

// List retrieves invoices with filtering and pagination
func (s *InvoiceService) List(ctx context.Context, params ports.InvoiceListParams) (*ports.InvoiceListResult, error) {
	result, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return result, nil
}
