package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuantityTier is one threshold of a quantity_discount rule.
type QuantityTier struct {
	MinQty  int             `json:"min_qty"`
	Percent decimal.Decimal `json:"percent"`
}

// DiscountParams holds the kind-specific value parameters of a discount rule.
// Only the fields required by the rule's kind are populated; the pricing
// engine rejects rules whose required fields are absent.
type DiscountParams struct {
	Percent      *decimal.Decimal `json:"percent,omitempty"`
	AmountCents  *int64           `json:"amount_cents,omitempty"`
	BuyQty       *int             `json:"buy_qty,omitempty"`
	PayQty       *int             `json:"pay_qty,omitempty"`
	GetQty       *int             `json:"get_qty,omitempty"`
	GetProductID *uuid.UUID       `json:"get_product_id,omitempty"`
	Tiers        []QuantityTier   `json:"tiers,omitempty"`
	SpendCents   *int64           `json:"spend_cents,omitempty"`
	CapCents     *int64           `json:"cap_cents,omitempty"`
}

// Value implements driver.Valuer for the jsonb params column.
func (p DiscountParams) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner for the jsonb params column.
func (p *DiscountParams) Scan(value any) error {
	if value == nil {
		*p = DiscountParams{}
		return nil
	}
	switch raw := value.(type) {
	case []byte:
		return json.Unmarshal(raw, p)
	case string:
		return json.Unmarshal([]byte(raw), p)
	default:
		return fmt.Errorf("discount params: unsupported scan type %T", value)
	}
}
