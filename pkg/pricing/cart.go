package pricing

import (
	"time"

	"github.com/google/uuid"

	"github.com/quickshop/quickshop-backend/pkg/enums"
)

// CartLine is one product/variant entry in the cart snapshot handed to the
// engine. Prices are integer minor units. VariantID is uuid.Nil when the line
// references the bare product.
type CartLine struct {
	ID             string
	ProductID      uuid.UUID
	VariantID      uuid.UUID
	UnitPriceCents int64
	Quantity       int
	Categories     []string
}

// TotalCents returns the undiscounted line total.
func (l CartLine) TotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}

// CustomerContext carries the audience attributes rules can target.
type CustomerContext struct {
	Tags         []string
	LoyaltyTier  string
	IsFirstOrder bool
}

// CartSnapshot is the immutable input cart. The engine never mutates it; all
// pricing output is freshly allocated.
type CartSnapshot struct {
	Lines    []CartLine
	Currency enums.Currency
	Customer *CustomerContext
}

// SubtotalCents returns the pre-discount cart subtotal.
func (c CartSnapshot) SubtotalCents() int64 {
	var sum int64
	for _, line := range c.Lines {
		sum += line.TotalCents()
	}
	return sum
}

// ItemCount returns the total unit count across all lines.
func (c CartSnapshot) ItemCount() int {
	var count int
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

// Usage is the point-in-time redemption count for one rule, supplied by the
// caller. The engine never reads or writes redemption state itself.
type Usage struct {
	Total      int
	ByCustomer int
}

// Context is the evaluation context for one engine invocation. Now is the
// only clock the engine consults; identical inputs always produce identical
// output.
type Context struct {
	Now          time.Time
	RedeemedCode string
	Customer     *CustomerContext
	UsageCounts  map[uuid.UUID]Usage
}

func (ctx Context) usageFor(ruleID uuid.UUID) Usage {
	if ctx.UsageCounts == nil {
		return Usage{}
	}
	return ctx.UsageCounts[ruleID]
}
