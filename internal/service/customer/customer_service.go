// internal/service/customer/customer_service.go
package customer

import (
	"context"
	"database/sql"
	"fmt"

	"groupgate-service/internal/domain/customer"
	"groupgate-service/internal/pkg/tokencode"
	"groupgate-service/internal/repository/postgres"

	"go.uber.org/zap"
)

type CustomerService struct {
	customerRepo *postgres.CustomerRepository
	logger       *zap.Logger
}

func NewCustomerService(customerRepo *postgres.CustomerRepository, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		logger:       logger,
	}
}

// CreateCustomer registers a new customer.
func (s *CustomerService) CreateCustomer(ctx context.Context, req *customer.CreateCustomerRequest) (*customer.Customer, error) {
	c := &customer.Customer{
		FullName: req.FullName,
		IsActive: true,
	}
	if req.Email != "" {
		c.Email = sql.NullString{String: req.Email, Valid: true}
	}
	if req.Phone != "" {
		c.Phone = sql.NullString{String: req.Phone, Valid: true}
	}
	if req.SubscriptionID != 0 {
		c.SubscriptionID = sql.NullInt64{Int64: req.SubscriptionID, Valid: true}
	}

	if err := s.customerRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	// The customer code must fit the token's four digits.
	if c.ID > tokencode.MaxCustomerCode {
		s.logger.Warn("customer id exceeds the encodable maximum; purchases will fail",
			zap.Int64("customer_id", c.ID),
			zap.Int("max", tokencode.MaxCustomerCode),
		)
	}

	s.logger.Info("customer created",
		zap.Int64("customer_id", c.ID),
		zap.String("full_name", c.FullName),
	)

	return s.customerRepo.FindByID(ctx, c.ID)
}

// GetCustomer retrieves a customer by ID.
func (s *CustomerService) GetCustomer(ctx context.Context, id int64) (*customer.Customer, error) {
	return s.customerRepo.FindByID(ctx, id)
}

// ListCustomers retrieves customers with filters.
func (s *CustomerService) ListCustomers(ctx context.Context, filters *customer.CustomerListFilters) (*customer.CustomerListResponse, error) {
	// Set defaults
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}
	if filters.PageSize > 100 {
		filters.PageSize = 100
	}

	customers, total, err := s.customerRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	totalPages := int(total) / filters.PageSize
	if int(total)%filters.PageSize > 0 {
		totalPages++
	}

	return &customer.CustomerListResponse{
		Customers:  customers,
		Total:      total,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalPages: totalPages,
	}, nil
}

// UpdateCustomer updates a customer's details or pool attachment.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id int64, req *customer.UpdateCustomerRequest) (*customer.Customer, error) {
	c, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Update fields
	if req.FullName != nil {
		c.FullName = *req.FullName
	}
	if req.Email != nil {
		c.Email = sql.NullString{String: *req.Email, Valid: *req.Email != ""}
	}
	if req.Phone != nil {
		c.Phone = sql.NullString{String: *req.Phone, Valid: *req.Phone != ""}
	}
	if req.SubscriptionID != nil {
		c.SubscriptionID = sql.NullInt64{Int64: *req.SubscriptionID, Valid: *req.SubscriptionID != 0}
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	if err := s.customerRepo.Update(ctx, id, c); err != nil {
		s.logger.Error("failed to update customer", zap.Error(err))
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	s.logger.Info("customer updated", zap.Int64("customer_id", id))

	return s.customerRepo.FindByID(ctx, id)
}

// DeleteCustomer soft-deletes a customer. Blocked while the customer still
// has unexpired purchased time.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id int64) error {
	remaining, err := s.customerRepo.RemainingSeconds(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check remaining time: %w", err)
	}
	if remaining > 0 {
		return fmt.Errorf("customer has %d seconds of purchased time remaining", remaining)
	}

	if err := s.customerRepo.SoftDelete(ctx, id); err != nil {
		s.logger.Error("failed to delete customer", zap.Error(err))
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	s.logger.Info("customer deleted", zap.Int64("customer_id", id))
	return nil
}

// GetRemainingTime retrieves every customer's unexpired balance across their
// tokens.
func (s *CustomerService) GetRemainingTime(ctx context.Context) ([]customer.RemainingTime, error) {
	remaining, err := s.customerRepo.RemainingTime(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get remaining time: %w", err)
	}

	for i := range remaining {
		remaining[i].RemainingHours = float64(remaining[i].RemainingSeconds) / 3600
	}
	return remaining, nil
}

// GetCustomerStats retrieves customer statistics.
func (s *CustomerService) GetCustomerStats(ctx context.Context) (*customer.CustomerStats, error) {
	stats, err := s.customerRepo.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer stats: %w", err)
	}
	return stats, nil
}
