package enums

import "fmt"

// DiscountStatus is the admin lifecycle state of a discount rule.
type DiscountStatus string

const (
	DiscountStatusDraft    DiscountStatus = "draft"
	DiscountStatusActive   DiscountStatus = "active"
	DiscountStatusArchived DiscountStatus = "archived"
)

var validDiscountStatuses = []DiscountStatus{
	DiscountStatusDraft,
	DiscountStatusActive,
	DiscountStatusArchived,
}

// String implements fmt.Stringer.
func (s DiscountStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known DiscountStatus.
func (s DiscountStatus) IsValid() bool {
	for _, candidate := range validDiscountStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseDiscountStatus converts raw input into a DiscountStatus.
func ParseDiscountStatus(value string) (DiscountStatus, error) {
	for _, candidate := range validDiscountStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount status %q", value)
}
