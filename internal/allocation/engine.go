// internal/allocation/engine.go
package allocation

import (
	"fmt"
	"math"

	xerrors "groupgate-service/internal/pkg/errors"
)

// DefaultMinimumPayment is the smallest accepted purchase, in the target
// currency (TZS).
const DefaultMinimumPayment = 1000.0

// Allocation is the validated result of converting a payment into a bounded
// hours grant against a subscription's remaining capacity. It is the direct
// input to the token codec; persistence happens elsewhere.
type Allocation struct {
	CustomerID      int64   `json:"customer_id"`
	ServiceID       int64   `json:"service_id"`
	HoursPurchased  int64   `json:"hours_purchased"`
	AmountPaid      float64 `json:"amount_paid"`
	DiscountApplied float64 `json:"discount_applied"`
}

// BelowMinimumPaymentError reports a payment under the policy minimum.
type BelowMinimumPaymentError struct {
	Amount  float64
	Minimum float64
}

func (e *BelowMinimumPaymentError) Error() string {
	return fmt.Sprintf("amount %.2f is below the minimum payment of %.2f", e.Amount, e.Minimum)
}

func (e *BelowMinimumPaymentError) Unwrap() error { return xerrors.ErrBelowMinimumPayment }

// ExceedsRemainingCapacityError reports a request for more hours than the
// pool has left.
type ExceedsRemainingCapacityError struct {
	RequestedHours int64
	RemainingHours float64
}

func (e *ExceedsRemainingCapacityError) Error() string {
	return fmt.Sprintf("requested %d hours but only %.2f remain", e.RequestedHours, e.RemainingHours)
}

func (e *ExceedsRemainingCapacityError) Unwrap() error { return xerrors.ErrExceedsRemainingCapacity }

// MissingSelectionError reports an empty customer or service selection.
type MissingSelectionError struct {
	CustomerID int64
	ServiceID  int64
}

func (e *MissingSelectionError) Error() string {
	return fmt.Sprintf("customer (%d) and service (%d) must both be selected", e.CustomerID, e.ServiceID)
}

func (e *MissingSelectionError) Unwrap() error { return xerrors.ErrMissingSelection }

// Engine converts between paid amounts and purchased hours and validates
// allocation requests against a remaining-capacity snapshot. The engine is
// pure: committing an allocation, including the atomic capacity re-check,
// is the caller's responsibility.
type Engine struct {
	MinimumPayment float64
}

// NewEngine returns an Engine with the given minimum payment; a zero or
// negative minimum falls back to the default.
func NewEngine(minimumPayment float64) Engine {
	if minimumPayment <= 0 {
		minimumPayment = DefaultMinimumPayment
	}
	return Engine{MinimumPayment: minimumPayment}
}

// HoursFromAmount converts a paid amount into whole purchased hours.
// Always truncated down: a partial hour is never granted, which protects the
// pool from over-allocation by rounding.
func (e Engine) HoursFromAmount(amount, rate float64) int64 {
	return int64(math.Floor(amount / rate))
}

// AmountFromHours converts whole hours into the amount due. May carry
// fractional currency.
func (e Engine) AmountFromHours(hours int64, rate float64) float64 {
	return float64(hours) * rate
}

// Allocate validates a purchase request against the hourly rate and the
// remaining-capacity snapshot and returns the resulting Allocation.
func (e Engine) Allocate(customerID, serviceID int64, amount, rate, remainingHours, discount float64) (*Allocation, error) {
	if customerID <= 0 || serviceID <= 0 {
		return nil, &MissingSelectionError{CustomerID: customerID, ServiceID: serviceID}
	}
	if amount < e.MinimumPayment {
		return nil, &BelowMinimumPaymentError{Amount: amount, Minimum: e.MinimumPayment}
	}
	if rate <= 0 {
		return nil, xerrors.ErrZeroCapacity
	}

	hours := e.HoursFromAmount(amount, rate)
	if float64(hours) > remainingHours {
		return nil, &ExceedsRemainingCapacityError{RequestedHours: hours, RemainingHours: remainingHours}
	}

	return &Allocation{
		CustomerID:      customerID,
		ServiceID:       serviceID,
		HoursPurchased:  hours,
		AmountPaid:      amount,
		DiscountApplied: discount,
	}, nil
}
