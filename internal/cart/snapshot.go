package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quickshop/quickshop-backend/pkg/db/models"
	pkgerrors "github.com/quickshop/quickshop-backend/pkg/errors"
	"github.com/quickshop/quickshop-backend/pkg/pricing"
	"github.com/quickshop/quickshop-backend/pkg/types"
)

// LineInput is one requested cart line: the catalog resolves its price.
type LineInput struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Qty       int
}

// AssembleSnapshot loads the store and catalog rows the requested lines need
// and builds the engine's cart snapshot. Checkout calls this with a
// transaction-bound repository so its re-quote reads a consistent view.
func AssembleSnapshot(ctx context.Context, repo Repository, storeID uuid.UUID, lines []LineInput, customer *types.CustomerContext) (pricing.CartSnapshot, *models.Store, error) {
	store, err := repo.FindStore(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pricing.CartSnapshot{}, nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return pricing.CartSnapshot{}, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}

	productIDs, variantIDs := collectIDs(lines)
	products, err := repo.FindProducts(ctx, storeID, productIDs)
	if err != nil {
		return pricing.CartSnapshot{}, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	variants, err := repo.FindVariants(ctx, variantIDs)
	if err != nil {
		return pricing.CartSnapshot{}, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variants")
	}

	snapshot, err := buildSnapshot(store, lines, customer, products, variants)
	if err != nil {
		return pricing.CartSnapshot{}, nil, err
	}
	return snapshot, store, nil
}

// buildSnapshot resolves requested lines against the catalog: unit price comes
// from the variant override when present, otherwise from the product; category
// tags always come from the product. Unknown or inactive items are validation
// errors, never silently dropped.
func buildSnapshot(store *models.Store, lines []LineInput, customer *types.CustomerContext, products []models.Product, variants []models.ProductVariant) (pricing.CartSnapshot, error) {
	productsByID := make(map[uuid.UUID]models.Product, len(products))
	for _, product := range products {
		productsByID[product.ID] = product
	}
	variantsByID := make(map[uuid.UUID]models.ProductVariant, len(variants))
	for _, variant := range variants {
		variantsByID[variant.ID] = variant
	}

	snapshot := pricing.CartSnapshot{
		Lines:    make([]pricing.CartLine, 0, len(lines)),
		Currency: store.Currency,
	}
	if customer != nil {
		snapshot.Customer = &pricing.CustomerContext{
			Tags:         customer.Tags,
			LoyaltyTier:  customer.LoyaltyTier,
			IsFirstOrder: customer.IsFirstOrder,
		}
	}

	for i, line := range lines {
		if line.Qty <= 0 {
			return pricing.CartSnapshot{}, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("line %d: quantity must be positive", i))
		}

		product, ok := productsByID[line.ProductID]
		if !ok || !product.IsActive {
			return pricing.CartSnapshot{}, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("line %d: product %s not available", i, line.ProductID))
		}

		priceCents := product.PriceCents
		variantID := uuid.Nil
		if line.VariantID != nil {
			variant, ok := variantsByID[*line.VariantID]
			if !ok || !variant.IsActive || variant.ProductID != product.ID {
				return pricing.CartSnapshot{}, pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("line %d: variant %s not available", i, *line.VariantID))
			}
			variantID = variant.ID
			if variant.PriceCents != nil {
				priceCents = *variant.PriceCents
			}
		}

		snapshot.Lines = append(snapshot.Lines, pricing.CartLine{
			ID:             fmt.Sprintf("line-%d", i),
			ProductID:      product.ID,
			VariantID:      variantID,
			UnitPriceCents: priceCents,
			Quantity:       line.Qty,
			Categories:     product.Categories,
		})
	}

	return snapshot, nil
}

// collectIDs splits the requested lines into the product and variant id sets
// the catalog lookups need.
func collectIDs(lines []LineInput) ([]uuid.UUID, []uuid.UUID) {
	productSeen := make(map[uuid.UUID]struct{}, len(lines))
	variantSeen := make(map[uuid.UUID]struct{})
	var productIDs, variantIDs []uuid.UUID

	for _, line := range lines {
		if _, ok := productSeen[line.ProductID]; !ok {
			productSeen[line.ProductID] = struct{}{}
			productIDs = append(productIDs, line.ProductID)
		}
		if line.VariantID != nil {
			if _, ok := variantSeen[*line.VariantID]; !ok {
				variantSeen[*line.VariantID] = struct{}{}
				variantIDs = append(variantIDs, *line.VariantID)
			}
		}
	}

	return productIDs, variantIDs
}
