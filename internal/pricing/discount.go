// internal/pricing/discount.go
package pricing

// DiscountPolicy computes the group discount for a shared subscription.
// The discount grows with the number of customers actively drawing from the
// pool and is capped so large groups never push the rate below cost.
type DiscountPolicy struct {
	PerCustomer float64 // discount fraction added per active customer
	Cap         float64 // maximum discount fraction
}

// DefaultDiscountPolicy is the canonical policy: 5% per active customer,
// capped at 15%.
func DefaultDiscountPolicy() DiscountPolicy {
	return DiscountPolicy{PerCustomer: 0.05, Cap: 0.15}
}

// Factor returns the discount fraction in [0, Cap] for the given number of
// active customers. Zero or negative counts yield no discount.
func (p DiscountPolicy) Factor(activeCustomers int) float64 {
	if activeCustomers <= 0 {
		return 0
	}
	f := float64(activeCustomers) * p.PerCustomer
	if f > p.Cap {
		f = p.Cap
	}
	return f
}
