package pricing

import "testing"

func TestDiscountFactor(t *testing.T) {
	policy := DefaultDiscountPolicy()

	tests := []struct {
		customers int
		want      float64
	}{
		{0, 0},
		{-3, 0},
		{1, 0.05},
		{2, 0.10},
		{3, 0.15},
		{4, 0.15},
		{10, 0.15},
		{1000, 0.15},
	}

	for _, tt := range tests {
		if got := policy.Factor(tt.customers); got != tt.want {
			t.Errorf("Factor(%d) = %v, want %v", tt.customers, got, tt.want)
		}
	}
}

func TestDiscountMonotonicAndCapped(t *testing.T) {
	policy := DefaultDiscountPolicy()

	prev := 0.0
	for n := 0; n <= 50; n++ {
		f := policy.Factor(n)
		if f < prev {
			t.Fatalf("discount decreased at n=%d: %v < %v", n, f, prev)
		}
		if f > policy.Cap {
			t.Fatalf("discount exceeded cap at n=%d: %v > %v", n, f, policy.Cap)
		}
		prev = f
	}
}
