// internal/domain/customer/entity.go
package customer

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// Customer is a subscriber eligible to draw hours from shared subscription
// pools.
type Customer struct {
	ID       int64          `json:"id" db:"id"`
	FullName string         `json:"full_name" db:"full_name"`
	Email    sql.NullString `json:"email,omitempty" db:"email"`
	Phone    sql.NullString `json:"phone,omitempty" db:"phone"`

	// Services the customer is attached to, by name, for display.
	Services pq.StringArray `json:"services,omitempty" db:"services"`

	// SubscriptionID is the pool the customer currently draws from.
	SubscriptionID sql.NullInt64 `json:"subscription_id,omitempty" db:"subscription_id"`

	IsActive bool `json:"is_active" db:"is_active"`

	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
	DeletedAt sql.NullTime `json:"deleted_at,omitempty" db:"deleted_at"`
}

// RemainingTime is a customer's unexpired balance across their tokens.
type RemainingTime struct {
	CustomerID       int64   `json:"customer_id"`
	FullName         string  `json:"full_name"`
	RemainingSeconds int64   `json:"remaining_seconds"`
	RemainingHours   float64 `json:"remaining_hours"`
}

type CustomerStats struct {
	TotalCustomers  int64 `json:"total_customers"`
	ActiveCustomers int64 `json:"active_customers"`
	WithTimeLeft    int64 `json:"with_time_left"`
	NewThisMonth    int64 `json:"new_this_month"`
}
