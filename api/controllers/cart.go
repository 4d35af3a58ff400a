package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/quickshop/quickshop-backend/api/responses"
	"github.com/quickshop/quickshop-backend/api/validators"
	cartsvc "github.com/quickshop/quickshop-backend/internal/cart"
	"github.com/quickshop/quickshop-backend/pkg/db/models"
	pkgerrors "github.com/quickshop/quickshop-backend/pkg/errors"
	"github.com/quickshop/quickshop-backend/pkg/logger"
	"github.com/quickshop/quickshop-backend/pkg/pricing"
	"github.com/quickshop/quickshop-backend/pkg/types"
)

type cartLineRequest struct {
	ProductID string  `json:"product_id" validate:"required,uuid"`
	VariantID *string `json:"variant_id,omitempty" validate:"omitempty,uuid"`
	Qty       int     `json:"qty" validate:"required,gt=0"`
}

type cartRequest struct {
	Lines    []cartLineRequest      `json:"lines" validate:"required,min=1,dive"`
	Code     string                 `json:"code,omitempty"`
	Customer *types.CustomerContext `json:"customer,omitempty"`
}

type pricedLineResponse struct {
	LineID             string     `json:"line_id"`
	ProductID          uuid.UUID  `json:"product_id"`
	VariantID          *uuid.UUID `json:"variant_id,omitempty"`
	Qty                int        `json:"qty"`
	UnitPriceCents     int64      `json:"unit_price_cents"`
	OriginalTotalCents int64      `json:"original_total_cents"`
	FinalTotalCents    int64      `json:"final_total_cents"`
}

type appliedDiscountResponse struct {
	RuleID       uuid.UUID          `json:"rule_id"`
	Kind         string             `json:"kind"`
	Code         string             `json:"code,omitempty"`
	AmountCents  int64              `json:"amount_cents"`
	FreeShipping bool               `json:"free_shipping,omitempty"`
	FreeItems    []freeItemResponse `json:"free_items,omitempty"`
}

type freeItemResponse struct {
	ProductID      uuid.UUID  `json:"product_id"`
	VariantID      *uuid.UUID `json:"variant_id,omitempty"`
	Quantity       int        `json:"quantity"`
	UnitValueCents int64      `json:"unit_value_cents"`
}

type ruleWarningResponse struct {
	RuleID uuid.UUID `json:"rule_id"`
	Field  string    `json:"field"`
	Reason string    `json:"reason"`
}

type quoteResponse struct {
	Lines              []pricedLineResponse      `json:"lines"`
	Applied            []appliedDiscountResponse `json:"applied_discounts"`
	SubtotalCents      int64                     `json:"subtotal_cents"`
	TotalDiscountCents int64                     `json:"total_discount_cents"`
	TotalCents         int64                     `json:"total_cents"`
	FreeShipping       bool                      `json:"free_shipping"`
	Currency           string                    `json:"currency"`
	Warnings           []ruleWarningResponse     `json:"warnings,omitempty"`
}

func newQuoteResponse(result *pricing.PricingResult) quoteResponse {
	out := quoteResponse{
		Lines:              make([]pricedLineResponse, 0, len(result.Lines)),
		Applied:            make([]appliedDiscountResponse, 0, len(result.Applied)),
		SubtotalCents:      result.SubtotalCents,
		TotalDiscountCents: result.TotalDiscountCents,
		TotalCents:         result.TotalCents,
		FreeShipping:       result.FreeShipping,
		Currency:           result.Currency.String(),
	}
	for _, line := range result.Lines {
		priced := pricedLineResponse{
			LineID:             line.ID,
			ProductID:          line.ProductID,
			Qty:                line.Quantity,
			UnitPriceCents:     line.UnitPriceCents,
			OriginalTotalCents: line.OriginalTotalCents,
			FinalTotalCents:    line.FinalTotalCents,
		}
		if line.VariantID != uuid.Nil {
			variantID := line.VariantID
			priced.VariantID = &variantID
		}
		out.Lines = append(out.Lines, priced)
	}
	for _, applied := range result.Applied {
		entry := appliedDiscountResponse{
			RuleID:       applied.RuleID,
			Kind:         applied.Kind.String(),
			Code:         applied.Code,
			AmountCents:  applied.TotalCents,
			FreeShipping: applied.FreeShipping,
		}
		for _, grant := range applied.FreeItems {
			item := freeItemResponse{
				ProductID:      grant.ProductID,
				Quantity:       grant.Quantity,
				UnitValueCents: grant.UnitValueCents,
			}
			if grant.VariantID != uuid.Nil {
				variantID := grant.VariantID
				item.VariantID = &variantID
			}
			entry.FreeItems = append(entry.FreeItems, item)
		}
		out.Applied = append(out.Applied, entry)
	}
	for _, warning := range result.Warnings {
		out.Warnings = append(out.Warnings, ruleWarningResponse{
			RuleID: warning.RuleID,
			Field:  warning.Field,
			Reason: warning.Reason,
		})
	}
	return out
}

type cartResponse struct {
	ID           uuid.UUID          `json:"id"`
	Status       string             `json:"status"`
	Currency     string             `json:"currency"`
	RedeemedCode *string            `json:"redeemed_code,omitempty"`
	Items        []cartItemResponse `json:"items"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

type cartItemResponse struct {
	ProductID      uuid.UUID  `json:"product_id"`
	VariantID      *uuid.UUID `json:"variant_id,omitempty"`
	Qty            int        `json:"qty"`
	UnitPriceCents int64      `json:"unit_price_cents"`
}

func newCartResponse(record *models.CartRecord) cartResponse {
	out := cartResponse{
		ID:           record.ID,
		Status:       record.Status.String(),
		Currency:     record.Currency.String(),
		RedeemedCode: record.RedeemedCode,
		Items:        make([]cartItemResponse, 0, len(record.Items)),
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
	for _, item := range record.Items {
		out.Items = append(out.Items, cartItemResponse{
			ProductID:      item.ProductID,
			VariantID:      item.VariantID,
			Qty:            item.Qty,
			UnitPriceCents: item.UnitPriceCents,
		})
	}
	return out
}

func toLineInputs(lines []cartLineRequest) ([]cartsvc.LineInput, error) {
	out := make([]cartsvc.LineInput, 0, len(lines))
	for _, line := range lines {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
		}
		input := cartsvc.LineInput{ProductID: productID, Qty: line.Qty}
		if line.VariantID != nil {
			variantID, err := uuid.Parse(*line.VariantID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variant id")
			}
			input.VariantID = &variantID
		}
		out = append(out, input)
	}
	return out, nil
}

// CartQuote prices the submitted lines without persisting anything.
func CartQuote(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload cartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines, err := toLineInputs(payload.Lines)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), cartsvc.QuoteInput{
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

		responses.WriteSuccess(w, newQuoteResponse(quote.Result))
	}
}

// CartUpsert creates or replaces the customer's active cart.
func CartUpsert(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload cartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines, err := toLineInputs(payload.Lines)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := cartsvc.UpsertCartInput{
			StoreID:         storeID,
			CustomerID:      customerID,
			Lines:           lines,
			CustomerContext: payload.Customer,
		}
		if payload.Code != "" {
			code := payload.Code
			input.RedeemedCode = &code
		}

		record, err := svc.UpsertCart(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(record))
	}
}

// CartFetch returns the customer's active cart.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		record, err := svc.GetActiveCart(r.Context(), storeID, customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(record))
	}
}
