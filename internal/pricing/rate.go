// internal/pricing/rate.go
package pricing

import (
	xerrors "groupgate-service/internal/pkg/errors"
)

// HourlyRate computes the effective hourly rate for a shared subscription:
// the pool's cost in the target currency, spread over its remaining capacity,
// reduced by the group discount.
//
// A pool with no remaining capacity has no defined rate; callers get
// ErrZeroCapacity and must treat the rate as unusable until a new
// subscription exists.
func HourlyRate(costSource, exchangeRate, remainingHours, discount float64) (float64, error) {
	if remainingHours <= 0 {
		return 0, xerrors.ErrZeroCapacity
	}
	return Convert(costSource, exchangeRate) / remainingHours * (1 - discount), nil
}
