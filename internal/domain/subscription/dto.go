// internal/domain/subscription/dto.go
package subscription

import "time"

type CreateSubscriptionRequest struct {
	ServiceID    int64   `json:"service_id" binding:"required"`
	Cost         float64 `json:"cost" binding:"required,gt=0"`
	Currency     string  `json:"currency"`
	StartDate    string  `json:"start_date"` // RFC 3339; defaults to now
	DurationDays int     `json:"duration_days" binding:"required,gt=0"`
}

type UpdateSubscriptionRequest struct {
	Cost         *float64 `json:"cost"`
	Currency     *string  `json:"currency"`
	StartDate    *string  `json:"start_date"`
	DurationDays *int     `json:"duration_days"`
	IsActive     *bool    `json:"is_active"`
}

type SubscriptionListFilters struct {
	ServiceID int64  `form:"service_id"`
	IsActive  *bool  `form:"is_active"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
}

type SubscriptionListResponse struct {
	Subscriptions []Subscription `json:"subscriptions"`
	Total         int64          `json:"total"`
	Page          int            `json:"page"`
	PageSize      int            `json:"page_size"`
	TotalPages    int            `json:"total_pages"`
}

// CapacityResponse is the remaining-capacity snapshot handed to the UI before
// a purchase. The snapshot is advisory; commit re-validates atomically.
type CapacityResponse struct {
	SubscriptionID int64     `json:"subscription_id"`
	EndDate        time.Time `json:"end_date"`
	TotalHours     int64     `json:"total_hours"`
	HoursAllocated int64     `json:"hours_allocated"`
	RemainingHours float64   `json:"remaining_hours"`
}
