// internal/domain/token/entity.go
package token

import (
	"database/sql"
	"time"

	"groupgate-service/internal/pricing"
)

// Token is an immutable record of one allocation event. The 20-digit value is
// self-describing (customer, service, hours, issue time); amount paid and
// discount live only in this stored record and are joined in at decode time.
type Token struct {
	ID    string `json:"id" db:"id"` // ULID
	Value string `json:"token" db:"token"`

	CustomerID     int64 `json:"customer_id" db:"customer_id"`
	ServiceID      int64 `json:"service_id" db:"service_id"`
	SubscriptionID int64 `json:"subscription_id" db:"subscription_id"`

	HoursPurchased  int64   `json:"hours_purchased" db:"hours_purchased"`
	AmountPaid      float64 `json:"amount_paid" db:"amount_paid"`
	DiscountApplied float64 `json:"discount_applied" db:"discount_applied"`

	IssuedAt  time.Time `json:"issued_at" db:"issued_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`

	// Revocation is audit-only: the row is kept, pool capacity is not
	// restored.
	RevokedAt sql.NullTime `json:"revoked_at,omitempty" db:"revoked_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Status evaluates the token's remaining lifetime at now.
func (t *Token) Status(now time.Time) pricing.TokenStatus {
	return pricing.Status(t.IssuedAt, t.HoursPurchased, now)
}
