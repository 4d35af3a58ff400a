package enums

import "fmt"

// DiscountTargetScope selects which cart lines a rule can touch.
type DiscountTargetScope string

const (
	DiscountTargetAllProducts DiscountTargetScope = "all_products"
	DiscountTargetProducts    DiscountTargetScope = "products"
	DiscountTargetCategories  DiscountTargetScope = "categories"
	DiscountTargetVariants    DiscountTargetScope = "variants"
)

var validDiscountTargetScopes = []DiscountTargetScope{
	DiscountTargetAllProducts,
	DiscountTargetProducts,
	DiscountTargetCategories,
	DiscountTargetVariants,
}

// String implements fmt.Stringer.
func (s DiscountTargetScope) String() string {
	return string(s)
}

// IsValid reports whether the value is a known DiscountTargetScope.
func (s DiscountTargetScope) IsValid() bool {
	for _, candidate := range validDiscountTargetScopes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseDiscountTargetScope converts raw input into a DiscountTargetScope.
func ParseDiscountTargetScope(value string) (DiscountTargetScope, error) {
	for _, candidate := range validDiscountTargetScopes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount target scope %q", value)
}
