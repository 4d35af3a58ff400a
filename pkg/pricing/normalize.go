package pricing

import "strings"

// normalize filters the raw rule set down to the rules eligible for this
// cart and context. It is a pure function: malformed rules are collected as
// warnings and dropped, never fatal.
func normalize(cart CartSnapshot, rules []Rule, ctx Context) ([]Rule, []*RuleValidationError) {
	eligible := make([]Rule, 0, len(rules))
	var warnings []*RuleValidationError

	subtotal := cart.SubtotalCents()
	itemCount := cart.ItemCount()

	for _, rule := range rules {
		if err := rule.validate(); err != nil {
			warnings = append(warnings, err)
			continue
		}
		if !withinWindow(rule, ctx) {
			continue
		}
		if usageExhausted(rule, ctx) {
			continue
		}
		if !codeSatisfied(rule, ctx) {
			continue
		}
		if rule.MinSubtotalCents != nil && subtotal < *rule.MinSubtotalCents {
			continue
		}
		if rule.MinItemCount != nil && itemCount < *rule.MinItemCount {
			continue
		}
		if !audienceMatches(rule.Audience, ctx.Customer) {
			continue
		}
		eligible = append(eligible, rule)
	}

	return eligible, warnings
}

func withinWindow(rule Rule, ctx Context) bool {
	if rule.StartsAt != nil && ctx.Now.Before(*rule.StartsAt) {
		return false
	}
	if rule.EndsAt != nil && ctx.Now.After(*rule.EndsAt) {
		return false
	}
	return true
}

func usageExhausted(rule Rule, ctx Context) bool {
	usage := ctx.usageFor(rule.ID)
	if rule.MaxUses != nil && usage.Total >= *rule.MaxUses {
		return true
	}
	if rule.PerCustomerLimit != nil && usage.ByCustomer >= *rule.PerCustomerLimit {
		return true
	}
	return false
}

func codeSatisfied(rule Rule, ctx Context) bool {
	if rule.Automatic {
		return true
	}
	return strings.EqualFold(rule.Code, strings.TrimSpace(ctx.RedeemedCode))
}

func audienceMatches(audience Audience, customer *CustomerContext) bool {
	if len(audience.Tags) == 0 && audience.LoyaltyTier == "" && !audience.FirstOrderOnly {
		return true
	}
	if customer == nil {
		return false
	}
	if audience.FirstOrderOnly && !customer.IsFirstOrder {
		return false
	}
	if audience.LoyaltyTier != "" && !strings.EqualFold(audience.LoyaltyTier, customer.LoyaltyTier) {
		return false
	}
	if len(audience.Tags) > 0 && !hasAnyTag(audience.Tags, customer.Tags) {
		return false
	}
	return true
}

func hasAnyTag(wanted, held []string) bool {
	for _, w := range wanted {
		for _, h := range held {
			if strings.EqualFold(w, h) {
				return true
			}
		}
	}
	return false
}
