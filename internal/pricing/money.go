// internal/pricing/money.go
package pricing

import "time"

const (
	msPerWeek   = 604800000
	msPerDay    = 86400000
	msPerHour   = 3600000
	msPerMinute = 60000
	msPerSecond = 1000
)

// Convert converts a source-currency amount into the target currency using
// the supplied exchange rate. No rounding; display formatting is the
// caller's concern.
func Convert(amount, rate float64) float64 {
	return amount * rate
}

// RemainingCapacityHours returns the hours a subscription pool still has to
// sell at the given instant: the hours left in its duration window, minus the
// hours already allocated to tokens. Never negative.
func RemainingCapacityHours(start time.Time, durationDays int, hoursAllocated int64, now time.Time) float64 {
	end := start.Add(time.Duration(durationDays) * 24 * time.Hour)
	remaining := end.Sub(now).Hours()
	if remaining < 0 {
		remaining = 0
	}
	remaining -= float64(hoursAllocated)
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// TimeBreakdown decomposes a remaining duration into display units.
type TimeBreakdown struct {
	Weeks   int64 `json:"weeks"`
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
	Expired bool  `json:"expired"`
}

// RemainingTimeBreakdown splits the time between now and end into
// weeks/days/hours/minutes/seconds using floor division with remainder
// chaining. If end is not after now, every unit is zero and Expired is set.
func RemainingTimeBreakdown(end, now time.Time) TimeBreakdown {
	ms := end.Sub(now).Milliseconds()
	if ms <= 0 {
		return TimeBreakdown{Expired: true}
	}

	b := TimeBreakdown{}
	b.Weeks = ms / msPerWeek
	ms %= msPerWeek
	b.Days = ms / msPerDay
	ms %= msPerDay
	b.Hours = ms / msPerHour
	ms %= msPerHour
	b.Minutes = ms / msPerMinute
	ms %= msPerMinute
	b.Seconds = ms / msPerSecond
	return b
}
