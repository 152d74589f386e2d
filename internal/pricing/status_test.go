package pricing

import (
	"testing"
	"time"
)

func TestStatus(t *testing.T) {
	creation := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		grantedHours int64
		now          time.Time
		wantExpired  bool
		wantWarning  bool
	}{
		{
			name:         "past expiry",
			grantedHours: 5,
			now:          creation.Add(6 * time.Hour),
			wantExpired:  true,
		},
		{
			name:         "plenty of time left",
			grantedHours: 5,
			now:          creation.Add(1 * time.Hour),
		},
		{
			name:         "inside warning window",
			grantedHours: 5,
			now:          creation.Add(4*time.Hour + 30*time.Minute),
			wantWarning:  true,
		},
		{
			name:         "exactly at threshold is not a warning",
			grantedHours: 4,
			now:          creation.Add(3 * time.Hour),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Status(creation, tt.grantedHours, tt.now)
			if st.Expired != tt.wantExpired {
				t.Fatalf("Expired = %v, want %v", st.Expired, tt.wantExpired)
			}
			if st.Warning != tt.wantWarning {
				t.Fatalf("Warning = %v, want %v", st.Warning, tt.wantWarning)
			}
			if tt.wantExpired && st.Remaining != (TimeBreakdown{Expired: true}) {
				t.Fatalf("expired status must zero every unit, got %+v", st.Remaining)
			}
		})
	}
}

func TestStatusIsTimeDependent(t *testing.T) {
	creation := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	early := Status(creation, 10, creation.Add(time.Hour))
	late := Status(creation, 10, creation.Add(11*time.Hour))

	if early.Expired || !late.Expired {
		t.Fatalf("status must follow the supplied now: early=%+v late=%+v", early, late)
	}
}
