package pricing

import (
	"github.com/google/uuid"

	"github.com/quickshop/quickshop-backend/pkg/enums"
)

// LineAdjustment is the amount one discount removed from one cart line.
type LineAdjustment struct {
	LineIndex   int
	LineID      string
	AmountCents int64
}

// FreeItem is a grant of free units produced by a buy_x_get_y rule. Grants
// never adjust existing line prices and are excluded from the discount total;
// UnitValueCents records the value given away for reporting.
type FreeItem struct {
	ProductID      uuid.UUID
	VariantID      uuid.UUID
	Quantity       int
	UnitValueCents int64
}

// AppliedDiscount is the effect of one rule on the cart. TotalCents always
// equals the sum of Adjustments amounts exactly.
type AppliedDiscount struct {
	RuleID       uuid.UUID
	Kind         enums.DiscountKind
	Code         string
	Adjustments  []LineAdjustment
	FreeItems    []FreeItem
	FreeShipping bool
	TotalCents   int64
}

// hasEffect reports whether the discount changed anything worth keeping in
// the final result. Eligible-but-inert rules produce zero-effect records.
func (a AppliedDiscount) hasEffect() bool {
	return a.TotalCents > 0 || a.FreeShipping || len(a.FreeItems) > 0
}

// PricedLine pairs a snapshot line with its final discounted total.
type PricedLine struct {
	CartLine
	OriginalTotalCents int64
	FinalTotalCents    int64
}

// PricingResult is the engine's output: freshly allocated, deterministic for
// identical inputs, and safe to serialize as the checkout pricing snapshot.
type PricingResult struct {
	Lines              []PricedLine
	Applied            []AppliedDiscount
	SubtotalCents      int64
	TotalDiscountCents int64
	TotalCents         int64
	FreeShipping       bool
	Currency           enums.Currency
	Warnings           []*RuleValidationError
}
