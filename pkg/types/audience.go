package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// AudienceSpec restricts a discount rule to customers matching the given
// attributes. A zero AudienceSpec matches everyone.
type AudienceSpec struct {
	Tags           []string `json:"tags,omitempty"`
	LoyaltyTier    string   `json:"loyalty_tier,omitempty"`
	FirstOrderOnly bool     `json:"first_order_only,omitempty"`
}

// Value implements driver.Valuer for the jsonb audience column.
func (a AudienceSpec) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements sql.Scanner for the jsonb audience column.
func (a *AudienceSpec) Scan(value any) error {
	if value == nil {
		*a = AudienceSpec{}
		return nil
	}
	switch raw := value.(type) {
	case []byte:
		return json.Unmarshal(raw, a)
	case string:
		return json.Unmarshal([]byte(raw), a)
	default:
		return fmt.Errorf("audience: unsupported scan type %T", value)
	}
}
