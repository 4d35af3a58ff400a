package pricing

import (
	"sort"
)

// combine orders the eligible rules, resolves exclusivity conflicts, and
// applies the survivors sequentially against the running line prices. Each
// discount after the first computes its effect against the already-discounted
// prices; this ordering is order-dependent and load-bearing.
func combine(cart CartSnapshot, rules []Rule) PricingResult {
	running := make([]int64, len(cart.Lines))
	for i, line := range cart.Lines {
		running[i] = line.TotalCents()
	}

	ordered := orderRules(cart, rules, running)

	// claimed marks lines some discount has adjusted; claimedExclusive marks
	// lines taken by a non-stackable discount.
	claimed := make([]bool, len(cart.Lines))
	claimedExclusive := make([]bool, len(cart.Lines))

	result := PricingResult{
		SubtotalCents: cart.SubtotalCents(),
		Currency:      cart.Currency,
	}

	for _, rule := range ordered {
		matched, matchedQty := matchLines(rule.Target, cart.Lines)
		applied := applyRule(rule, matched, matchedQty, cart, running)

		if conflicts(applied, rule, claimed, claimedExclusive) {
			continue
		}

		applied = clampToRunning(applied, running)
		if !applied.hasEffect() {
			continue
		}

		for _, adj := range applied.Adjustments {
			running[adj.LineIndex] -= adj.AmountCents
			claimed[adj.LineIndex] = true
			if !rule.Stackable {
				claimedExclusive[adj.LineIndex] = true
			}
		}

		result.Applied = append(result.Applied, applied)
		result.TotalDiscountCents += applied.TotalCents
		result.FreeShipping = result.FreeShipping || applied.FreeShipping
	}

	result.Lines = make([]PricedLine, len(cart.Lines))
	for i, line := range cart.Lines {
		result.Lines[i] = PricedLine{
			CartLine:           line,
			OriginalTotalCents: line.TotalCents(),
			FinalTotalCents:    running[i],
		}
	}
	result.TotalCents = result.SubtotalCents - result.TotalDiscountCents

	return result
}

// orderRules sorts by ascending priority, then automatic before code-activated,
// then larger standalone discount amount, then rule id. The standalone amount
// is each rule's effect against the undiscounted cart, so the tie-break does
// not depend on application order.
func orderRules(cart CartSnapshot, rules []Rule, original []int64) []Rule {
	standalone := make(map[int]int64, len(rules))
	for i, rule := range rules {
		matched, matchedQty := matchLines(rule.Target, cart.Lines)
		standalone[i] = applyRule(rule, matched, matchedQty, cart, original).TotalCents
	}

	ordered := make([]Rule, len(rules))
	idx := make([]int, len(rules))
	for i := range rules {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ra, rb := rules[idx[a]], rules[idx[b]]
		if ra.Priority != rb.Priority {
			return ra.Priority < rb.Priority
		}
		if ra.Automatic != rb.Automatic {
			return ra.Automatic
		}
		if standalone[idx[a]] != standalone[idx[b]] {
			return standalone[idx[a]] > standalone[idx[b]]
		}
		return ra.ID.String() < rb.ID.String()
	})
	for n, i := range idx {
		ordered[n] = rules[i]
	}
	return ordered
}

// conflicts reports whether the discount loses an exclusivity contest. Rules
// are visited in winning order, so the later arrival on a contested line is
// always the one dropped, in its entirety.
func conflicts(applied AppliedDiscount, rule Rule, claimed, claimedExclusive []bool) bool {
	for _, adj := range applied.Adjustments {
		if claimedExclusive[adj.LineIndex] {
			return true
		}
		if !rule.Stackable && claimed[adj.LineIndex] {
			return true
		}
	}
	return false
}

// clampToRunning caps each adjustment at the line's running price so no line
// goes negative. Clamped excess is excluded from the discount total, keeping
// the sum of adjustments equal to TotalCents exactly.
func clampToRunning(applied AppliedDiscount, running []int64) AppliedDiscount {
	kept := applied.Adjustments[:0]
	for _, adj := range applied.Adjustments {
		if adj.AmountCents > running[adj.LineIndex] {
			applied.TotalCents -= adj.AmountCents - running[adj.LineIndex]
			adj.AmountCents = running[adj.LineIndex]
		}
		if adj.AmountCents <= 0 {
			continue
		}
		kept = append(kept, adj)
	}
	applied.Adjustments = kept
	return applied
}
