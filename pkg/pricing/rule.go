package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quickshop/quickshop-backend/pkg/enums"
)

// Targeting selects the subset of cart lines a rule can touch.
type Targeting struct {
	Scope      enums.DiscountTargetScope
	ProductIDs []uuid.UUID
	VariantIDs []uuid.UUID
	Categories []string
}

// Audience restricts a rule to customers matching the given attributes. An
// empty Audience matches everyone.
type Audience struct {
	Tags           []string
	LoyaltyTier    string
	FirstOrderOnly bool
}

// Tier is one threshold of a quantity_discount rule.
type Tier struct {
	MinQty  int
	Percent decimal.Decimal
}

// Rule is one discount definition as seen by the engine: a closed tagged
// variant over the seven kinds, with the kind-specific value parameters in
// flat fields. Zero values mean "absent"; validation rejects rules missing a
// parameter their kind requires.
type Rule struct {
	ID    uuid.UUID
	Title string
	Kind  enums.DiscountKind

	// Kind-specific value parameters.
	Percent     decimal.Decimal // percentage
	AmountCents int64           // fixed_amount
	BuyQty      int             // buy_x_pay_y, buy_x_get_y
	PayQty      int             // buy_x_pay_y
	GetQty      int             // buy_x_get_y
	GetTarget   Targeting       // buy_x_get_y: which items may be granted
	Tiers       []Tier          // quantity_discount
	SpendCents  int64           // spend_x_pay_y
	CapCents    int64           // spend_x_pay_y

	Target   Targeting
	Audience Audience

	Automatic bool
	Code      string
	Stackable bool
	Priority  int

	MaxUses          *int
	PerCustomerLimit *int
	StartsAt         *time.Time
	EndsAt           *time.Time
	MinSubtotalCents *int64
	MinItemCount     *int
}

// validate checks the kind-specific parameters. The switch enumerates every
// kind; an unknown kind is a malformed rule, never a silent no-op.
func (r Rule) validate() *RuleValidationError {
	if !r.Target.Scope.IsValid() {
		return invalidRule(r.ID, "target_scope", "unknown targeting scope")
	}

	switch r.Kind {
	case enums.DiscountKindPercentage:
		if r.Percent.LessThanOrEqual(decimal.Zero) || r.Percent.GreaterThan(decimal.NewFromInt(100)) {
			return invalidRule(r.ID, "percent", "must be in (0, 100]")
		}
	case enums.DiscountKindFixedAmount:
		if r.AmountCents <= 0 {
			return invalidRule(r.ID, "amount_cents", "must be positive")
		}
	case enums.DiscountKindFreeShipping:
		// No value parameters.
	case enums.DiscountKindBuyXPayY:
		if r.BuyQty < 2 {
			return invalidRule(r.ID, "buy_qty", "must be at least 2")
		}
		if r.PayQty < 1 || r.PayQty >= r.BuyQty {
			return invalidRule(r.ID, "pay_qty", "must be in [1, buy_qty)")
		}
	case enums.DiscountKindBuyXGetY:
		if r.BuyQty < 1 {
			return invalidRule(r.ID, "buy_qty", "must be at least 1")
		}
		if r.GetQty < 1 {
			return invalidRule(r.ID, "get_qty", "must be at least 1")
		}
		if !r.GetTarget.Scope.IsValid() {
			return invalidRule(r.ID, "get_target", "granted item targeting is required")
		}
	case enums.DiscountKindQuantityDiscount:
		if len(r.Tiers) == 0 {
			return invalidRule(r.ID, "tiers", "at least one tier is required")
		}
		for _, tier := range r.Tiers {
			if tier.MinQty < 1 {
				return invalidRule(r.ID, "tiers", "tier min_qty must be positive")
			}
			if tier.Percent.LessThanOrEqual(decimal.Zero) || tier.Percent.GreaterThan(decimal.NewFromInt(100)) {
				return invalidRule(r.ID, "tiers", "tier percent must be in (0, 100]")
			}
		}
	case enums.DiscountKindSpendXPayY:
		if r.SpendCents <= 0 {
			return invalidRule(r.ID, "spend_cents", "must be positive")
		}
		if r.CapCents < 0 || r.CapCents >= r.SpendCents {
			return invalidRule(r.ID, "cap_cents", "must be in [0, spend_cents)")
		}
	default:
		return invalidRule(r.ID, "kind", "unknown discount kind")
	}

	if !r.Automatic && r.Code == "" {
		return invalidRule(r.ID, "code", "code-activated rule has no code")
	}

	return nil
}
