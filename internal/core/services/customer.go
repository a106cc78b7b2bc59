// internal/core/services/customer.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phonedesk/phonedesk-be/internal/core/domain"
	"github.com/phonedesk/phonedesk-be/internal/core/ports"
)

// CustomerService handles customers and their lifetime purchase statistics.
// Statistics only ever grow: RecordPurchase adds, nothing subtracts.
type CustomerService struct {
	repo   ports.CustomerRepository
	logger *slog.Logger
}

var _ ports.CustomerService = (*CustomerService)(nil)

// NewCustomerService creates a new customer service
func NewCustomerService(repo ports.CustomerRepository, logger *slog.Logger) *CustomerService {
	return &CustomerService{
		repo:   repo,
		logger: logger.With(slog.String("service", "customer")),
	}
}

// SaveCustomer validates and persists a new customer
func (s *CustomerService) SaveCustomer(ctx context.Context, customer *domain.Customer) error {
	if err := customer.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	customer.PrepareForStorage()

	if err := s.repo.Save(ctx, customer); err != nil {
		return fmt.Errorf("failed to save customer: %w", err)
	}

	s.logger.InfoContext(ctx, "customer saved",
		slog.String("customer_id", customer.CustomerID.String()),
		slog.String("name", customer.Name))
	return nil
}

// GetCustomer retrieves a customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, customerID uuid.UUID) (*domain.Customer, error) {
	customer, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return customer, nil
}

// UpdateCustomer validates and persists profile changes
func (s *CustomerService) UpdateCustomer(ctx context.Context, customerID uuid.UUID, customer *domain.Customer) error {
	if err := customer.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	customer.CustomerID = customerID

	if err := s.repo.Update(ctx, customer); err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}

	s.logger.InfoContext(ctx, "customer updated",
		slog.String("customer_id", customerID.String()))
	return nil
}

// DeleteCustomer soft-deletes a customer
func (s *CustomerService) DeleteCustomer(ctx context.Context, customerID uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, customerID); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	s.logger.InfoContext(ctx, "customer deleted",
		slog.String("customer_id", customerID.String()))
	return nil
}

// List retrieves customers with filtering and pagination
func (s *CustomerService) List(ctx context.Context, params ports.CustomerListParams) (*ports.CustomerListResult, error) {
	result, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return result, nil
}

// RecordPurchase adds one purchase to the customer's rolling statistics.
// The repository applies it as a single statement, so the counters and the
// history entry always move together.
func (s *CustomerService) RecordPurchase(ctx context.Context, customerID uuid.UUID, record domain.PurchaseRecord) error {
	if err := s.repo.RecordPurchase(ctx, customerID, record); err != nil {
		return fmt.Errorf("failed to record purchase: %w", err)
	}

	s.logger.InfoContext(ctx, "purchase recorded",
		slog.String("customer_id", customerID.String()),
		slog.String("amount", record.Amount.String()))
	return nil
}
