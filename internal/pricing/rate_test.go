package pricing

import (
	"errors"
	"math"
	"testing"

	xerrors "groupgate-service/internal/pkg/errors"
)

func TestHourlyRate(t *testing.T) {
	// 20 USD at 2800 TZS/USD over 720 hours, no discount: 56000/720.
	rate, err := HourlyRate(20, 2800, 720, 0)
	if err != nil {
		t.Fatalf("HourlyRate: %v", err)
	}
	want := 56000.0 / 720
	if math.Abs(rate-want) > 1e-9 {
		t.Fatalf("rate = %v, want %v", rate, want)
	}
}

func TestHourlyRateWithDiscount(t *testing.T) {
	full, err := HourlyRate(20, 2800, 720, 0)
	if err != nil {
		t.Fatalf("HourlyRate: %v", err)
	}
	discounted, err := HourlyRate(20, 2800, 720, 0.15)
	if err != nil {
		t.Fatalf("HourlyRate: %v", err)
	}
	if math.Abs(discounted-full*0.85) > 1e-9 {
		t.Fatalf("discounted rate = %v, want %v", discounted, full*0.85)
	}
}

func TestHourlyRateZeroCapacity(t *testing.T) {
	for _, remaining := range []float64{0, -1} {
		_, err := HourlyRate(20, 2800, remaining, 0)
		if !errors.Is(err, xerrors.ErrZeroCapacity) {
			t.Fatalf("remaining=%v: err = %v, want ErrZeroCapacity", remaining, err)
		}
	}
}
