package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/quickshop/quickshop-backend/pkg/enums"
)

// applyRule computes the effect of one rule against the running line prices.
// It never mutates running; clamping against other discounts happens in the
// combine step. A rule with no matched lines or unmet thresholds returns a
// zero-effect record, never an error.
func applyRule(rule Rule, matched []int, matchedQty int, cart CartSnapshot, running []int64) AppliedDiscount {
	applied := AppliedDiscount{
		RuleID: rule.ID,
		Kind:   rule.Kind,
		Code:   rule.Code,
	}

	switch rule.Kind {
	case enums.DiscountKindPercentage:
		applied.Adjustments = percentAdjustments(matched, cart, running, rule.Percent)

	case enums.DiscountKindFixedAmount:
		applied.Adjustments = distributedAdjustments(rule.AmountCents, matched, cart)

	case enums.DiscountKindFreeShipping:
		if len(matched) > 0 {
			applied.FreeShipping = true
		}

	case enums.DiscountKindBuyXPayY:
		applied.Adjustments = blockAdjustments(rule, matched, matchedQty, cart, running)

	case enums.DiscountKindBuyXGetY:
		applied.FreeItems = grantFreeItems(rule, matchedQty, cart)

	case enums.DiscountKindQuantityDiscount:
		if tier, ok := selectTier(rule.Tiers, matchedQty); ok {
			applied.Adjustments = percentAdjustments(matched, cart, running, tier.Percent)
		}

	case enums.DiscountKindSpendXPayY:
		var matchedTotal int64
		for _, i := range matched {
			matchedTotal += running[i]
		}
		if matchedTotal >= rule.SpendCents {
			applied.Adjustments = distributedAdjustments(matchedTotal-rule.CapCents, matched, cart)
		}
	}

	for _, adj := range applied.Adjustments {
		applied.TotalCents += adj.AmountCents
	}
	return applied
}

// percentAdjustments rounds half-up per line independently.
func percentAdjustments(matched []int, cart CartSnapshot, running []int64, percent decimal.Decimal) []LineAdjustment {
	var adjustments []LineAdjustment
	for _, i := range matched {
		amount := percentOf(running[i], percent)
		if amount <= 0 {
			continue
		}
		adjustments = append(adjustments, LineAdjustment{
			LineIndex:   i,
			LineID:      cart.Lines[i].ID,
			AmountCents: amount,
		})
	}
	return adjustments
}

// distributedAdjustments splits total across the matched lines proportionally
// by original line total, remainder to the first matched line in cart order.
func distributedAdjustments(total int64, matched []int, cart CartSnapshot) []LineAdjustment {
	if total <= 0 || len(matched) == 0 {
		return nil
	}

	weights := make([]int64, len(matched))
	for n, i := range matched {
		weights[n] = cart.Lines[i].TotalCents()
	}

	var adjustments []LineAdjustment
	for n, share := range distribute(total, weights) {
		if share <= 0 {
			continue
		}
		i := matched[n]
		adjustments = append(adjustments, LineAdjustment{
			LineIndex:   i,
			LineID:      cart.Lines[i].ID,
			AmountCents: share,
		})
	}
	return adjustments
}

// blockAdjustments implements buy_x_pay_y: matched units are grouped into
// blocks of BuyQty in cart order, and each complete block is repriced as if
// only PayQty units were paid for. The partial trailing block stays at full
// price. Each unit's value is its line's current average unit price.
func blockAdjustments(rule Rule, matched []int, matchedQty int, cart CartSnapshot, running []int64) []LineAdjustment {
	fullBlocks := matchedQty / rule.BuyQty
	if fullBlocks == 0 {
		return nil
	}

	freeFraction := decimal.NewFromInt(int64(rule.BuyQty - rule.PayQty)).
		Div(decimal.NewFromInt(int64(rule.BuyQty)))

	blockUnits := fullBlocks * rule.BuyQty
	var adjustments []LineAdjustment
	for _, i := range matched {
		if blockUnits == 0 {
			break
		}
		line := cart.Lines[i]
		units := line.Quantity
		if units > blockUnits {
			units = blockUnits
		}
		blockUnits -= units

		unitValue := decimal.NewFromInt(running[i]).Div(decimal.NewFromInt(int64(line.Quantity)))
		amount := roundHalfUp(unitValue.Mul(decimal.NewFromInt(int64(units))).Mul(freeFraction))
		if amount <= 0 {
			continue
		}
		adjustments = append(adjustments, LineAdjustment{
			LineIndex:   i,
			LineID:      line.ID,
			AmountCents: amount,
		})
	}
	return adjustments
}

// grantFreeItems implements buy_x_get_y: every BuyQty matched units grant
// GetQty free units of the cheapest cart line matching the grant targeting.
// No qualifying grant line means zero free units, not an error.
func grantFreeItems(rule Rule, matchedQty int, cart CartSnapshot) []FreeItem {
	grants := (matchedQty / rule.BuyQty) * rule.GetQty
	if grants == 0 {
		return nil
	}

	grantIdx := -1
	for i, line := range cart.Lines {
		if !targetsLine(rule.GetTarget, line) {
			continue
		}
		if grantIdx == -1 || line.UnitPriceCents < cart.Lines[grantIdx].UnitPriceCents {
			grantIdx = i
		}
	}
	if grantIdx == -1 {
		return nil
	}

	line := cart.Lines[grantIdx]
	return []FreeItem{{
		ProductID:      line.ProductID,
		VariantID:      line.VariantID,
		Quantity:       grants,
		UnitValueCents: line.UnitPriceCents,
	}}
}

// selectTier picks the highest tier whose threshold the matched quantity
// meets. Equal thresholds resolve to the larger percentage.
func selectTier(tiers []Tier, matchedQty int) (Tier, bool) {
	best := Tier{}
	found := false
	for _, tier := range tiers {
		if matchedQty < tier.MinQty {
			continue
		}
		if !found || tier.MinQty > best.MinQty ||
			(tier.MinQty == best.MinQty && tier.Percent.GreaterThan(best.Percent)) {
			best = tier
			found = true
		}
	}
	return best, found
}
