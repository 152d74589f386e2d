// internal/domain/subscription/entity.go
package subscription

import (
	"time"

	"groupgate-service/internal/pricing"
)

// Subscription is a pooled, time-boxed purchase of AI-service capacity shared
// by multiple customers.
type Subscription struct {
	ID        int64  `json:"id" db:"id"`
	ServiceID int64  `json:"service_id" db:"service_id"`
	// ServiceName is joined in on reads for display.
	ServiceName string `json:"service_name,omitempty" db:"service_name"`

	// Cost in the source currency (what the provider charges).
	Cost     float64 `json:"cost" db:"cost"`
	Currency string  `json:"currency" db:"currency"`

	StartDate    time.Time `json:"start_date" db:"start_date"`
	DurationDays int       `json:"duration_days" db:"duration_days"`

	// HoursAllocated is the running total of hours sold from this pool.
	HoursAllocated int64 `json:"hours_allocated" db:"hours_allocated"`

	IsActive bool `json:"is_active" db:"is_active"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// EndDate is the instant the subscription window closes.
func (s *Subscription) EndDate() time.Time {
	return s.StartDate.Add(time.Duration(s.DurationDays) * 24 * time.Hour)
}

// TotalCapacityHours is the pool's full size: one hour per hour of duration.
func (s *Subscription) TotalCapacityHours() int64 {
	return int64(s.DurationDays) * 24
}

// RemainingCapacityHours is the time left in the window minus hours already
// sold, never negative.
func (s *Subscription) RemainingCapacityHours(now time.Time) float64 {
	return pricing.RemainingCapacityHours(s.StartDate, s.DurationDays, s.HoursAllocated, now)
}

type SubscriptionStats struct {
	TotalSubscriptions  int64   `json:"total_subscriptions"`
	ActiveSubscriptions int64   `json:"active_subscriptions"`
	TotalHoursAllocated int64   `json:"total_hours_allocated"`
	TotalCostSource     float64 `json:"total_cost_source"`
}

// CustomerCount pairs a subscription with the number of customers attached
// to it; the discount calculator feeds on the active count.
type CustomerCount struct {
	SubscriptionID  int64  `json:"subscription_id"`
	ServiceName     string `json:"service_name"`
	CustomerCount   int    `json:"customer_count"`
	ActiveCustomers int    `json:"active_customers"`
}
