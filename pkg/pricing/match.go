package pricing

import (
	"github.com/google/uuid"

	"github.com/quickshop/quickshop-backend/pkg/enums"
)

// matchLines resolves a targeting spec to the cart line indices it selects,
// plus the total matched quantity the quantity-sensitive kinds need. Zero
// matches is not an error; such a rule is eligible-but-inert.
func matchLines(target Targeting, lines []CartLine) ([]int, int) {
	var matched []int
	var qty int

	for i, line := range lines {
		if !targetsLine(target, line) {
			continue
		}
		matched = append(matched, i)
		qty += line.Quantity
	}

	return matched, qty
}

func targetsLine(target Targeting, line CartLine) bool {
	switch target.Scope {
	case enums.DiscountTargetAllProducts:
		return true
	case enums.DiscountTargetProducts:
		return containsID(target.ProductIDs, line.ProductID)
	case enums.DiscountTargetVariants:
		return line.VariantID != uuid.Nil && containsID(target.VariantIDs, line.VariantID)
	case enums.DiscountTargetCategories:
		return categoriesIntersect(target.Categories, line.Categories)
	default:
		return false
	}
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func categoriesIntersect(wanted, held []string) bool {
	for _, w := range wanted {
		for _, h := range held {
			if w == h {
				return true
			}
		}
	}
	return false
}
