package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/quickshop/quickshop-backend/api/responses"
	"github.com/quickshop/quickshop-backend/api/validators"
	cartsvc "github.com/quickshop/quickshop-backend/internal/cart"
	checkoutsvc "github.com/quickshop/quickshop-backend/internal/checkout"
	"github.com/quickshop/quickshop-backend/pkg/db/models"
	"github.com/quickshop/quickshop-backend/pkg/logger"
	"github.com/quickshop/quickshop-backend/pkg/types"
)

type checkoutRequest struct {
	Lines    []cartLineRequest      `json:"lines,omitempty" validate:"omitempty,dive"`
	Code     string                 `json:"code,omitempty"`
	Customer *types.CustomerContext `json:"customer,omitempty"`
}

type orderLineResponse struct {
	ProductID          uuid.UUID  `json:"product_id"`
	VariantID          *uuid.UUID `json:"variant_id,omitempty"`
	Qty                int        `json:"qty"`
	UnitPriceCents     int64      `json:"unit_price_cents"`
	OriginalTotalCents int64      `json:"original_total_cents"`
	FinalTotalCents    int64      `json:"final_total_cents"`
	IsGranted          bool       `json:"is_granted,omitempty"`
}

type orderResponse struct {
	ID               uuid.UUID                      `json:"id"`
	Status           string                         `json:"status"`
	Currency         string                         `json:"currency"`
	SubtotalCents    int64                          `json:"subtotal_cents"`
	DiscountCents    int64                          `json:"discount_cents"`
	TotalCents       int64                          `json:"total_cents"`
	FreeShipping     bool                           `json:"free_shipping"`
	RedeemedCode     *string                        `json:"redeemed_code,omitempty"`
	AppliedDiscounts types.AppliedDiscountSnapshots `json:"applied_discounts"`
	LineItems        []orderLineResponse            `json:"line_items"`
	CreatedAt        time.Time                      `json:"created_at"`
}

func newOrderResponse(order *models.Order) orderResponse {
	out := orderResponse{
		ID:               order.ID,
		Status:           order.Status.String(),
		Currency:         order.Currency.String(),
		SubtotalCents:    order.SubtotalCents,
		DiscountCents:    order.DiscountCents,
		TotalCents:       order.TotalCents,
		FreeShipping:     order.FreeShipping,
		RedeemedCode:     order.RedeemedCode,
		AppliedDiscounts: order.AppliedDiscounts,
		LineItems:        make([]orderLineResponse, 0, len(order.LineItems)),
		CreatedAt:        order.CreatedAt,
	}
	for _, item := range order.LineItems {
		out.LineItems = append(out.LineItems, orderLineResponse{
			ProductID:          item.ProductID,
			VariantID:          item.VariantID,
			Qty:                item.Qty,
			UnitPriceCents:     item.UnitPriceCents,
			OriginalTotalCents: item.OriginalTotalCents,
			FinalTotalCents:    item.FinalTotalCents,
			IsGranted:          item.IsGranted,
		})
	}
	return out
}

// Checkout places an order. With no lines in the body, the customer's active
// cart is checked out and converted.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customerID, err := customerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var lines []cartsvc.LineInput
		if len(payload.Lines) > 0 {
			lines, err = toLineInputs(payload.Lines)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		order, err := svc.Checkout(r.Context(), checkoutsvc.CheckoutInput{
			StoreID:         storeID,
			CustomerID:      customerID,
			Lines:           lines,
			RedeemedCode:    payload.Code,
			CustomerContext: payload.Customer,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}
