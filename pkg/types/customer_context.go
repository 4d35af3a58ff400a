package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// CustomerContext carries the audience attributes discount targeting can use.
type CustomerContext struct {
	Tags         []string `json:"tags,omitempty"`
	LoyaltyTier  string   `json:"loyalty_tier,omitempty"`
	IsFirstOrder bool     `json:"is_first_order,omitempty"`
}

// Value implements driver.Valuer for the jsonb customer_context column.
func (c CustomerContext) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements sql.Scanner for the jsonb customer_context column.
func (c *CustomerContext) Scan(value any) error {
	if value == nil {
		*c = CustomerContext{}
		return nil
	}
	switch raw := value.(type) {
	case []byte:
		return json.Unmarshal(raw, c)
	case string:
		return json.Unmarshal([]byte(raw), c)
	default:
		return fmt.Errorf("customer context: unsupported scan type %T", value)
	}
}
