package pricing

import (
	"testing"
	"time"
)

func TestConvert(t *testing.T) {
	if got := Convert(20, 2800); got != 56000 {
		t.Fatalf("Convert(20, 2800) = %v, want 56000", got)
	}
	if got := Convert(0, 2800); got != 0 {
		t.Fatalf("Convert(0, 2800) = %v, want 0", got)
	}
}

func TestRemainingCapacityHours(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		durationDays   int
		hoursAllocated int64
		now            time.Time
		want           float64
	}{
		{
			name:         "full window untouched",
			durationDays: 30,
			now:          start,
			want:         720,
		},
		{
			name:         "halfway through window",
			durationDays: 30,
			now:          start.Add(15 * 24 * time.Hour),
			want:         360,
		},
		{
			name:           "allocations reduce capacity",
			durationDays:   30,
			hoursAllocated: 100,
			now:            start,
			want:           620,
		},
		{
			name:         "window over",
			durationDays: 30,
			now:          start.Add(31 * 24 * time.Hour),
			want:         0,
		},
		{
			name:           "over-allocated pool clamps at zero",
			durationDays:   1,
			hoursAllocated: 50,
			now:            start,
			want:           0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RemainingCapacityHours(start, tt.durationDays, tt.hoursAllocated, tt.now)
			if got != tt.want {
				t.Fatalf("RemainingCapacityHours = %v, want %v", got, tt.want)
			}
			if got < 0 {
				t.Fatalf("remaining capacity must never be negative, got %v", got)
			}
		})
	}
}

func TestRemainingTimeBreakdown(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		end  time.Time
		want TimeBreakdown
	}{
		{
			name: "mixed units with remainder chaining",
			end:  now.Add(9*24*time.Hour + 3*time.Hour + 25*time.Minute + 7*time.Second),
			want: TimeBreakdown{Weeks: 1, Days: 2, Hours: 3, Minutes: 25, Seconds: 7},
		},
		{
			name: "exactly one week",
			end:  now.Add(7 * 24 * time.Hour),
			want: TimeBreakdown{Weeks: 1},
		},
		{
			name: "already expired",
			end:  now.Add(-time.Second),
			want: TimeBreakdown{Expired: true},
		},
		{
			name: "boundary instant is expired",
			end:  now,
			want: TimeBreakdown{Expired: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RemainingTimeBreakdown(tt.end, now)
			if got != tt.want {
				t.Fatalf("RemainingTimeBreakdown = %+v, want %+v", got, tt.want)
			}
		})
	}
}
