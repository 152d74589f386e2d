// internal/pricing/status.go
package pricing

import "time"

// DefaultWarningThreshold marks a token as expiring soon once less than a
// quarter of its granted duration remains.
const DefaultWarningThreshold = 0.25

// TokenStatus is the point-in-time lifetime report for an hours grant.
type TokenStatus struct {
	Remaining TimeBreakdown `json:"remaining"`
	Expired   bool          `json:"expired"`
	Warning   bool          `json:"warning"`
}

// Status evaluates the remaining lifetime of a grant issued at creation for
// grantedHours, as seen at now. It is a pure function of its arguments;
// callers must re-invoke it for each fresh "now" rather than cache the result.
func Status(creation time.Time, grantedHours int64, now time.Time) TokenStatus {
	return StatusWithThreshold(creation, grantedHours, now, DefaultWarningThreshold)
}

// StatusWithThreshold is Status with an explicit warning threshold fraction.
func StatusWithThreshold(creation time.Time, grantedHours int64, now time.Time, threshold float64) TokenStatus {
	end := creation.Add(time.Duration(grantedHours) * time.Hour)
	breakdown := RemainingTimeBreakdown(end, now)

	st := TokenStatus{Remaining: breakdown, Expired: breakdown.Expired}
	if st.Expired {
		return st
	}

	total := time.Duration(grantedHours) * time.Hour
	remaining := end.Sub(now)
	st.Warning = remaining.Seconds() < total.Seconds()*threshold
	return st
}
