// internal/service/subscription/subscription_service.go
package subscription

import (
	"context"
	"fmt"
	"strings"
	"time"

	"groupgate-service/internal/domain/subscription"
	"groupgate-service/internal/pkg/tokencode"
	"groupgate-service/internal/repository/postgres"

	"go.uber.org/zap"
)

type SubscriptionService struct {
	subscriptionRepo *postgres.SubscriptionRepository
	serviceRepo      *postgres.ServiceRepository
	logger           *zap.Logger
}

func NewSubscriptionService(
	subscriptionRepo *postgres.SubscriptionRepository,
	serviceRepo *postgres.ServiceRepository,
	logger *zap.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		subscriptionRepo: subscriptionRepo,
		serviceRepo:      serviceRepo,
		logger:           logger,
	}
}

// CreateSubscription opens a new capacity pool for a service.
func (s *SubscriptionService) CreateSubscription(ctx context.Context, req *subscription.CreateSubscriptionRequest) (*subscription.Subscription, error) {
	// The service must exist and be encodable into a token.
	svc, err := s.serviceRepo.FindByID(ctx, req.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("service not found: %w", err)
	}
	if svc.ID > tokencode.MaxServiceCode {
		return nil, fmt.Errorf("service id %d exceeds the encodable maximum %d", svc.ID, tokencode.MaxServiceCode)
	}

	startDate := time.Now()
	if req.StartDate != "" {
		startDate, err = time.Parse(time.RFC3339, req.StartDate)
		if err != nil {
			return nil, fmt.Errorf("invalid start_date: %w", err)
		}
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "USD"
	}

	sub := &subscription.Subscription{
		ServiceID:    req.ServiceID,
		Cost:         req.Cost,
		Currency:     currency,
		StartDate:    startDate,
		DurationDays: req.DurationDays,
		IsActive:     true,
	}

	if err := s.subscriptionRepo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	s.logger.Info("subscription created",
		zap.Int64("subscription_id", sub.ID),
		zap.Int64("service_id", sub.ServiceID),
		zap.Float64("cost", sub.Cost),
		zap.Int("duration_days", sub.DurationDays),
	)

	return s.subscriptionRepo.FindByID(ctx, sub.ID)
}

// GetSubscription retrieves a subscription by ID.
func (s *SubscriptionService) GetSubscription(ctx context.Context, id int64) (*subscription.Subscription, error) {
	return s.subscriptionRepo.FindByID(ctx, id)
}

// GetCapacity returns the remaining-capacity snapshot for a subscription.
// The snapshot is advisory; the purchase path re-validates atomically.
func (s *SubscriptionService) GetCapacity(ctx context.Context, id int64) (*subscription.CapacityResponse, error) {
	sub, err := s.subscriptionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &subscription.CapacityResponse{
		SubscriptionID: sub.ID,
		EndDate:        sub.EndDate(),
		TotalHours:     sub.TotalCapacityHours(),
		HoursAllocated: sub.HoursAllocated,
		RemainingHours: sub.RemainingCapacityHours(time.Now()),
	}, nil
}

// ListSubscriptions retrieves subscriptions with filters.
func (s *SubscriptionService) ListSubscriptions(ctx context.Context, filters *subscription.SubscriptionListFilters) (*subscription.SubscriptionListResponse, error) {
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

	subscriptions, total, err := s.subscriptionRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	totalPages := int(total) / filters.PageSize
	if int(total)%filters.PageSize > 0 {
		totalPages++
	}

	return &subscription.SubscriptionListResponse{
		Subscriptions: subscriptions,
		Total:         total,
		Page:          filters.Page,
		PageSize:      filters.PageSize,
		TotalPages:    totalPages,
	}, nil
}

// UpdateSubscription updates a subscription's terms.
func (s *SubscriptionService) UpdateSubscription(ctx context.Context, id int64, req *subscription.UpdateSubscriptionRequest) (*subscription.Subscription, error) {
	sub, err := s.subscriptionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Update fields
	if req.Cost != nil {
		sub.Cost = *req.Cost
	}
	if req.Currency != nil {
		sub.Currency = strings.ToUpper(*req.Currency)
	}
	if req.StartDate != nil {
		startDate, err := time.Parse(time.RFC3339, *req.StartDate)
		if err != nil {
			return nil, fmt.Errorf("invalid start_date: %w", err)
		}
		sub.StartDate = startDate
	}
	if req.DurationDays != nil {
		sub.DurationDays = *req.DurationDays
	}
	if req.IsActive != nil {
		sub.IsActive = *req.IsActive
	}

	if err := s.subscriptionRepo.Update(ctx, id, sub); err != nil {
		s.logger.Error("failed to update subscription", zap.Error(err))
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}

	s.logger.Info("subscription updated", zap.Int64("subscription_id", id))

	return s.subscriptionRepo.FindByID(ctx, id)
}

// DeleteSubscription removes a subscription. Blocked while customers are
// still attached to the pool.
func (s *SubscriptionService) DeleteSubscription(ctx context.Context, id int64) error {
	attached, err := s.subscriptionRepo.CountAttachedCustomers(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count attached customers: %w", err)
	}
	if attached > 0 {
		return fmt.Errorf("subscription has %d attached customers; detach them first", attached)
	}

	if err := s.subscriptionRepo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete subscription", zap.Error(err))
		return fmt.Errorf("failed to delete subscription: %w", err)
	}

	s.logger.Info("subscription deleted", zap.Int64("subscription_id", id))
	return nil
}

// GetCustomerCounts retrieves per-subscription customer counts. The active
// count feeds the discount calculation.
func (s *SubscriptionService) GetCustomerCounts(ctx context.Context) ([]subscription.CustomerCount, error) {
	counts, err := s.subscriptionRepo.CustomerCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer counts: %w", err)
	}
	return counts, nil
}

// GetSubscriptionStats retrieves subscription statistics.
func (s *SubscriptionService) GetSubscriptionStats(ctx context.Context) (*subscription.SubscriptionStats, error) {
	stats, err := s.subscriptionRepo.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription stats: %w", err)
	}
	return stats, nil
}

// GetExpiringSubscriptions retrieves subscriptions whose window closes soon.
func (s *SubscriptionService) GetExpiringSubscriptions(ctx context.Context, days int) ([]subscription.Subscription, error) {
	if days < 1 {
		days = 7
	}
	if days > 30 {
		days = 30
	}

	subscriptions, err := s.subscriptionRepo.GetExpiring(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("failed to get expiring subscriptions: %w", err)
	}
	return subscriptions, nil
}
