package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// AppliedDiscountLine records the adjustment one discount made to one cart line.
type AppliedDiscountLine struct {
	LineID      string `json:"line_id"`
	AmountCents int64  `json:"amount_cents"`
}

// FreeItemGrant records free units granted by a buy_x_get_y discount.
type FreeItemGrant struct {
	ProductID      uuid.UUID  `json:"product_id"`
	VariantID      *uuid.UUID `json:"variant_id,omitempty"`
	Quantity       int        `json:"quantity"`
	UnitValueCents int64      `json:"unit_value_cents"`
}

// AppliedDiscountSnapshot is the persisted record of a discount the engine
// applied at checkout time, attached to the resulting order.
type AppliedDiscountSnapshot struct {
	RuleID       uuid.UUID             `json:"rule_id"`
	Kind         string                `json:"kind"`
	Code         *string               `json:"code,omitempty"`
	AmountCents  int64                 `json:"amount_cents"`
	Lines        []AppliedDiscountLine `json:"lines,omitempty"`
	FreeItems    []FreeItemGrant       `json:"free_items,omitempty"`
	FreeShipping bool                  `json:"free_shipping,omitempty"`
}

// AppliedDiscountSnapshots is the jsonb column holding every applied discount.
type AppliedDiscountSnapshots []AppliedDiscountSnapshot

// Value implements driver.Valuer for the jsonb applied_discounts column.
func (a AppliedDiscountSnapshots) Value() (driver.Value, error) {
	if a == nil {
		return json.Marshal(AppliedDiscountSnapshots{})
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner for the jsonb applied_discounts column.
func (a *AppliedDiscountSnapshots) Scan(value any) error {
	if value == nil {
		*a = AppliedDiscountSnapshots{}
		return nil
	}
	switch raw := value.(type) {
	case []byte:
		return json.Unmarshal(raw, a)
	case string:
		return json.Unmarshal([]byte(raw), a)
	default:
		return fmt.Errorf("applied discounts: unsupported scan type %T", value)
	}
}
