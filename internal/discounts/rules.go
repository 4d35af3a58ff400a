package discounts

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/quickshop/quickshop-backend/pkg/db/models"
	"github.com/quickshop/quickshop-backend/pkg/enums"
	"github.com/quickshop/quickshop-backend/pkg/pricing"
)

// ToEngineRule converts a persisted discount rule into the engine's form.
// Conversion only fails on corrupt identifiers; parameter validation is the
// engine's job so a bad rule degrades to a warning, not an API error.
func ToEngineRule(rule models.DiscountRule) (pricing.Rule, error) {
	productIDs, err := parseUUIDs(rule.ProductIDs)
	if err != nil {
		return pricing.Rule{}, fmt.Errorf("rule %s product ids: %w", rule.ID, err)
	}
	variantIDs, err := parseUUIDs(rule.VariantIDs)
	if err != nil {
		return pricing.Rule{}, fmt.Errorf("rule %s variant ids: %w", rule.ID, err)
	}

	out := pricing.Rule{
		ID:    rule.ID,
		Title: rule.Title,
		Kind:  rule.Kind,
		Target: pricing.Targeting{
			Scope:      rule.TargetScope,
			ProductIDs: productIDs,
			VariantIDs: variantIDs,
			Categories: rule.Categories,
		},
		Audience: pricing.Audience{
			Tags:           rule.Audience.Tags,
			LoyaltyTier:    rule.Audience.LoyaltyTier,
			FirstOrderOnly: rule.Audience.FirstOrderOnly,
		},
		Automatic:        rule.Automatic,
		Stackable:        rule.Stackable,
		Priority:         rule.Priority,
		MaxUses:          rule.MaxUses,
		PerCustomerLimit: rule.PerCustomerLimit,
		StartsAt:         rule.StartsAt,
		EndsAt:           rule.EndsAt,
		MinSubtotalCents: rule.MinSubtotalCents,
		MinItemCount:     rule.MinItemCount,
	}
	if rule.Code != nil {
		out.Code = *rule.Code
	}

	params := rule.Params
	if params.Percent != nil {
		out.Percent = *params.Percent
	}
	if params.AmountCents != nil {
		out.AmountCents = *params.AmountCents
	}
	if params.BuyQty != nil {
		out.BuyQty = *params.BuyQty
	}
	if params.PayQty != nil {
		out.PayQty = *params.PayQty
	}
	if params.GetQty != nil {
		out.GetQty = *params.GetQty
	}
	if params.SpendCents != nil {
		out.SpendCents = *params.SpendCents
	}
	if params.CapCents != nil {
		out.CapCents = *params.CapCents
	}
	for _, tier := range params.Tiers {
		out.Tiers = append(out.Tiers, pricing.Tier{MinQty: tier.MinQty, Percent: tier.Percent})
	}

	// buy_x_get_y grants come from a designated product when one is set,
	// otherwise from the rule's own matched set.
	if rule.Kind == enums.DiscountKindBuyXGetY {
		if params.GetProductID != nil {
			out.GetTarget = pricing.Targeting{
				Scope:      enums.DiscountTargetProducts,
				ProductIDs: []uuid.UUID{*params.GetProductID},
			}
		} else {
			out.GetTarget = out.Target
		}
	}

	return out, nil
}

// ToEngineRules converts a batch, skipping nothing: corrupt rows surface as
// errors so the caller can decide how loudly to fail.
func ToEngineRules(rules []models.DiscountRule) ([]pricing.Rule, error) {
	out := make([]pricing.Rule, 0, len(rules))
	for _, rule := range rules {
		converted, err := ToEngineRule(rule)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

func parseUUIDs(values pq.StringArray) ([]uuid.UUID, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make([]uuid.UUID, 0, len(values))
	for _, value := range values {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", value, err)
		}
		out = append(out, id)
	}
	return out, nil
}
