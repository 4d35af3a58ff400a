package discounts

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickshop/quickshop-backend/pkg/db/models"
	"github.com/quickshop/quickshop-backend/pkg/enums"
	"github.com/quickshop/quickshop-backend/pkg/types"
)

func TestToEngineRuleMapsFields(t *testing.T) {
	productID := uuid.New()
	percent := decimal.NewFromInt(15)
	code := "SAVE15"
	maxUses := 100

	rule := models.DiscountRule{
		ID:          uuid.New(),
		StoreID:     uuid.New(),
		Title:       "Spring promo",
		Kind:        enums.DiscountKindPercentage,
		Params:      types.DiscountParams{Percent: &percent},
		TargetScope: enums.DiscountTargetProducts,
		ProductIDs:  pq.StringArray{productID.String()},
		Audience: types.AudienceSpec{
			Tags:        []string{"vip"},
			LoyaltyTier: "gold",
		},
		Automatic: false,
		Code:      &code,
		Stackable: true,
		Priority:  3,
		MaxUses:   &maxUses,
	}

	engine, err := ToEngineRule(rule)
	require.NoError(t, err)

	assert.Equal(t, rule.ID, engine.ID)
	assert.Equal(t, enums.DiscountKindPercentage, engine.Kind)
	assert.True(t, engine.Percent.Equal(percent))
	assert.Equal(t, enums.DiscountTargetProducts, engine.Target.Scope)
	require.Len(t, engine.Target.ProductIDs, 1)
	assert.Equal(t, productID, engine.Target.ProductIDs[0])
	assert.Equal(t, []string{"vip"}, engine.Audience.Tags)
	assert.Equal(t, "gold", engine.Audience.LoyaltyTier)
	assert.False(t, engine.Automatic)
	assert.Equal(t, "SAVE15", engine.Code)
	assert.Equal(t, 3, engine.Priority)
	require.NotNil(t, engine.MaxUses)
	assert.Equal(t, 100, *engine.MaxUses)
}

func TestToEngineRuleBuyXGetYGrantTarget(t *testing.T) {
	buyQty, getQty := 2, 1
	getProduct := uuid.New()

	withDesignated := models.DiscountRule{
		ID:          uuid.New(),
		Kind:        enums.DiscountKindBuyXGetY,
		TargetScope: enums.DiscountTargetAllProducts,
		Params: types.DiscountParams{
			BuyQty:       &buyQty,
			GetQty:       &getQty,
			GetProductID: &getProduct,
		},
		Automatic: true,
	}

	engine, err := ToEngineRule(withDesignated)
	require.NoError(t, err)
	assert.Equal(t, enums.DiscountTargetProducts, engine.GetTarget.Scope)
	require.Len(t, engine.GetTarget.ProductIDs, 1)
	assert.Equal(t, getProduct, engine.GetTarget.ProductIDs[0])

	// Without a designated product the grant comes from the matched set.
	withDesignated.Params.GetProductID = nil
	engine, err = ToEngineRule(withDesignated)
	require.NoError(t, err)
	assert.Equal(t, enums.DiscountTargetAllProducts, engine.GetTarget.Scope)
}

func TestToEngineRuleRejectsCorruptIDs(t *testing.T) {
	rule := models.DiscountRule{
		ID:          uuid.New(),
		Kind:        enums.DiscountKindPercentage,
		TargetScope: enums.DiscountTargetProducts,
		ProductIDs:  pq.StringArray{"not-a-uuid"},
		Automatic:   true,
	}

	_, err := ToEngineRule(rule)
	require.Error(t, err)

	_, err = ToEngineRules([]models.DiscountRule{rule})
	require.Error(t, err)
}

func TestToEngineRuleQuantityTiers(t *testing.T) {
	rule := models.DiscountRule{
		ID:          uuid.New(),
		Kind:        enums.DiscountKindQuantityDiscount,
		TargetScope: enums.DiscountTargetAllProducts,
		Params: types.DiscountParams{
			Tiers: []types.QuantityTier{
				{MinQty: 5, Percent: decimal.NewFromInt(10)},
				{MinQty: 10, Percent: decimal.NewFromInt(20)},
			},
		},
		Automatic: true,
	}

	engine, err := ToEngineRule(rule)
	require.NoError(t, err)
	require.Len(t, engine.Tiers, 2)
	assert.Equal(t, 5, engine.Tiers[0].MinQty)
	assert.True(t, engine.Tiers[1].Percent.Equal(decimal.NewFromInt(20)))
}
