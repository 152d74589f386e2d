// internal/domain/token/dto.go
package token

import (
	"time"

	"groupgate-service/internal/pricing"
)

type QuoteRequest struct {
	ServiceID  int64   `json:"service_id" binding:"required"`
	AmountPaid float64 `json:"amount_paid"`
	Hours      int64   `json:"hours"`
}

// Quote is the pricing preview shown before a purchase is confirmed.
type Quote struct {
	ServiceID       int64   `json:"service_id"`
	SubscriptionID  int64   `json:"subscription_id"`
	HourlyRate      float64 `json:"hourly_rate"`
	Discount        float64 `json:"discount"`
	ActiveCustomers int     `json:"active_customers"`
	RemainingHours  float64 `json:"remaining_hours"`
	AmountPaid      float64 `json:"amount_paid"`
	Hours           int64   `json:"hours"`
}

type PurchaseRequest struct {
	CustomerID int64   `json:"customer_id" binding:"required"`
	ServiceID  int64   `json:"service_id" binding:"required"`
	AmountPaid float64 `json:"amount_paid" binding:"required"`
}

type PurchaseResponse struct {
	Token          *Token `json:"token"`
	FormattedToken string `json:"formatted_token"`
}

type DecodeRequest struct {
	Token string `json:"token" binding:"required"`
}

// DecodedToken is the decode-time view: fields recovered from the digits,
// display names and payment details joined from external records, and the
// lifetime status as of the decode instant.
type DecodedToken struct {
	CustomerID   int64  `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	ServiceID    int64  `json:"service_id"`
	ServiceName  string `json:"service_name"`

	HoursPurchased  int64   `json:"hours_purchased"`
	AmountPaid      float64 `json:"amount_paid,omitempty"`
	DiscountApplied float64 `json:"discount_applied,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	Revoked bool                `json:"revoked,omitempty"`
	Status  pricing.TokenStatus `json:"status"`
}

type TokenListFilters struct {
	CustomerID     int64 `form:"customer_id"`
	ServiceID      int64 `form:"service_id"`
	IncludeRevoked bool  `form:"include_revoked"`
	Page           int   `form:"page"`
	PageSize       int   `form:"page_size"`
}

type TokenListResponse struct {
	Tokens     []Token `json:"tokens"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	TotalPages int     `json:"total_pages"`
}
