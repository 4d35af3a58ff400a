// Package pricing implements the discount calculation engine: a pure,
// synchronous computation that takes an immutable cart snapshot, a set of
// discount rules, and an evaluation context, and produces a deterministic
// priced result. The engine performs no I/O and holds no state; it is safe to
// invoke concurrently from any number of in-flight requests.
package pricing

// Calculate prices the cart against the supplied rules. Malformed rules are
// dropped and surfaced as warnings on the result; a structurally invalid cart
// line is fatal and returns an *InvalidCartError with no result.
func Calculate(cart CartSnapshot, rules []Rule, ctx Context) (*PricingResult, error) {
	if err := validateCart(cart); err != nil {
		return nil, err
	}

	eligible, warnings := normalize(cart, rules, ctx)

	result := combine(cart, eligible)
	result.Warnings = warnings

	return &result, nil
}

func validateCart(cart CartSnapshot) error {
	for i, line := range cart.Lines {
		if line.Quantity <= 0 {
			return &InvalidCartError{LineIndex: i, Reason: "quantity must be positive"}
		}
		if line.UnitPriceCents < 0 {
			return &InvalidCartError{LineIndex: i, Reason: "unit price must not be negative"}
		}
	}
	return nil
}
