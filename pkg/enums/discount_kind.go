package enums

import "fmt"

// DiscountKind is the closed set of discount behaviors the pricing engine
// understands. Every switch over kinds must enumerate all seven values;
// anything else is a malformed rule, never a silent no-op.
type DiscountKind string

const (
	DiscountKindPercentage       DiscountKind = "percentage"
	DiscountKindFixedAmount      DiscountKind = "fixed_amount"
	DiscountKindFreeShipping     DiscountKind = "free_shipping"
	DiscountKindBuyXPayY         DiscountKind = "buy_x_pay_y"
	DiscountKindBuyXGetY         DiscountKind = "buy_x_get_y"
	DiscountKindQuantityDiscount DiscountKind = "quantity_discount"
	DiscountKindSpendXPayY       DiscountKind = "spend_x_pay_y"
)

var validDiscountKinds = []DiscountKind{
	DiscountKindPercentage,
	DiscountKindFixedAmount,
	DiscountKindFreeShipping,
	DiscountKindBuyXPayY,
	DiscountKindBuyXGetY,
	DiscountKindQuantityDiscount,
	DiscountKindSpendXPayY,
}

// String implements fmt.Stringer.
func (k DiscountKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known DiscountKind.
func (k DiscountKind) IsValid() bool {
	for _, candidate := range validDiscountKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseDiscountKind converts raw input into a DiscountKind.
func ParseDiscountKind(value string) (DiscountKind, error) {
	for _, candidate := range validDiscountKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount kind %q", value)
}

// DiscountKinds returns every known kind, in declaration order.
func DiscountKinds() []DiscountKind {
	out := make([]DiscountKind, len(validDiscountKinds))
	copy(out, validDiscountKinds)
	return out
}
