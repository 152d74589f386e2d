// internal/domain/service/entity.go
package service

import "time"

// Service is an entry in the AI-service catalog (OpenAI, Claude, ...).
// Its ID doubles as the numeric service code packed into tokens, which caps
// the catalog at the codec's field width; creation fails fast past that.
type Service struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`

	// DefaultCost is the provider's list price in the source currency,
	// used to prefill new subscriptions.
	DefaultCost float64 `json:"default_cost" db:"default_cost"`

	// TokenDurationHours is the fallback grant length when a policy-defined
	// duration is wanted instead of purchased hours.
	TokenDurationHours int64 `json:"token_duration_hours" db:"token_duration_hours"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type CreateServiceRequest struct {
	Name               string  `json:"name" binding:"required"`
	DefaultCost        float64 `json:"default_cost"`
	TokenDurationHours int64   `json:"token_duration_hours"`
}

type UpdateServiceRequest struct {
	Name               *string  `json:"name"`
	DefaultCost        *float64 `json:"default_cost"`
	TokenDurationHours *int64   `json:"token_duration_hours"`
}
