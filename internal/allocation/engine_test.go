package allocation

import (
	"errors"
	"testing"

	xerrors "groupgate-service/internal/pkg/errors"
)

func TestHoursFromAmountTruncates(t *testing.T) {
	e := NewEngine(0)

	tests := []struct {
		amount float64
		rate   float64
		want   int64
	}{
		{1999, 1000, 1},
		{2000, 1000, 2},
		{2999.99, 1000, 2},
		{1000, 1000, 1},
		{999, 1000, 0},
		{56000, 77.78, 719},
	}

	for _, tt := range tests {
		if got := e.HoursFromAmount(tt.amount, tt.rate); got != tt.want {
			t.Errorf("HoursFromAmount(%v, %v) = %d, want %d", tt.amount, tt.rate, got, tt.want)
		}
	}
}

func TestAmountFromHours(t *testing.T) {
	e := NewEngine(0)
	if got := e.AmountFromHours(3, 1500.5); got != 4501.5 {
		t.Fatalf("AmountFromHours(3, 1500.5) = %v, want 4501.5", got)
	}
}

func TestAllocateMinimumPayment(t *testing.T) {
	e := NewEngine(1000)

	_, err := e.Allocate(1, 1, 999, 100, 1000, 0)
	if !errors.Is(err, xerrors.ErrBelowMinimumPayment) {
		t.Fatalf("amount=999: err = %v, want ErrBelowMinimumPayment", err)
	}

	var minErr *BelowMinimumPaymentError
	if !errors.As(err, &minErr) || minErr.Minimum != 1000 {
		t.Fatalf("error must carry the minimum payment, got %#v", err)
	}

	alloc, err := e.Allocate(1, 1, 1000, 100, 1000, 0)
	if err != nil {
		t.Fatalf("amount=1000: unexpected error %v", err)
	}
	if alloc.HoursPurchased != 10 {
		t.Fatalf("HoursPurchased = %d, want 10", alloc.HoursPurchased)
	}
}

func TestAllocateCapacityBound(t *testing.T) {
	e := NewEngine(1000)

	// 10 hours requested against exactly 10 remaining succeeds.
	alloc, err := e.Allocate(1, 1, 10000, 1000, 10, 0)
	if err != nil {
		t.Fatalf("hours == remaining must succeed, got %v", err)
	}
	if alloc.HoursPurchased != 10 {
		t.Fatalf("HoursPurchased = %d, want 10", alloc.HoursPurchased)
	}

	// 11 hours against 10 remaining fails with context.
	_, err = e.Allocate(1, 1, 11000, 1000, 10, 0)
	if !errors.Is(err, xerrors.ErrExceedsRemainingCapacity) {
		t.Fatalf("err = %v, want ErrExceedsRemainingCapacity", err)
	}
	var capErr *ExceedsRemainingCapacityError
	if !errors.As(err, &capErr) || capErr.RemainingHours != 10 || capErr.RequestedHours != 11 {
		t.Fatalf("error must carry remaining and requested hours, got %#v", err)
	}
}

func TestAllocateMissingSelection(t *testing.T) {
	e := NewEngine(1000)

	for _, tt := range []struct{ customerID, serviceID int64 }{
		{0, 1},
		{1, 0},
		{0, 0},
	} {
		_, err := e.Allocate(tt.customerID, tt.serviceID, 5000, 1000, 100, 0)
		if !errors.Is(err, xerrors.ErrMissingSelection) {
			t.Errorf("customer=%d service=%d: err = %v, want ErrMissingSelection",
				tt.customerID, tt.serviceID, err)
		}
	}
}

func TestAllocateCarriesDiscount(t *testing.T) {
	e := NewEngine(1000)

	alloc, err := e.Allocate(7, 2, 5000, 500, 100, 0.10)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if alloc.DiscountApplied != 0.10 {
		t.Fatalf("DiscountApplied = %v, want 0.10", alloc.DiscountApplied)
	}
	if alloc.CustomerID != 7 || alloc.ServiceID != 2 {
		t.Fatalf("allocation identity mismatch: %+v", alloc)
	}
}
