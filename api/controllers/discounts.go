package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/quickshop/quickshop-backend/api/responses"
	"github.com/quickshop/quickshop-backend/api/validators"
	"github.com/quickshop/quickshop-backend/internal/discounts"
	"github.com/quickshop/quickshop-backend/pkg/db/models"
	"github.com/quickshop/quickshop-backend/pkg/enums"
	pkgerrors "github.com/quickshop/quickshop-backend/pkg/errors"
	"github.com/quickshop/quickshop-backend/pkg/logger"
	"github.com/quickshop/quickshop-backend/pkg/types"
)

type discountRuleRequest struct {
	Title            string               `json:"title" validate:"required,max=200"`
	Kind             string               `json:"kind" validate:"required"`
	Params           types.DiscountParams `json:"params"`
	TargetScope      string               `json:"target_scope,omitempty"`
	ProductIDs       []string             `json:"product_ids,omitempty" validate:"omitempty,dive,uuid"`
	VariantIDs       []string             `json:"variant_ids,omitempty" validate:"omitempty,dive,uuid"`
	Categories       []string             `json:"categories,omitempty"`
	Audience         types.AudienceSpec   `json:"audience,omitempty"`
	Automatic        *bool                `json:"automatic,omitempty"`
	Code             *string              `json:"code,omitempty"`
	Stackable        *bool                `json:"stackable,omitempty"`
	Priority         int                  `json:"priority,omitempty"`
	MaxUses          *int                 `json:"max_uses,omitempty" validate:"omitempty,gt=0"`
	PerCustomerLimit *int                 `json:"per_customer_limit,omitempty" validate:"omitempty,gt=0"`
	StartsAt         *time.Time           `json:"starts_at,omitempty"`
	EndsAt           *time.Time           `json:"ends_at,omitempty"`
	MinSubtotalCents *int64               `json:"min_subtotal_cents,omitempty" validate:"omitempty,gt=0"`
	MinItemCount     *int                 `json:"min_item_count,omitempty" validate:"omitempty,gt=0"`
	Status           string               `json:"status,omitempty"`
}

type discountRuleResponse struct {
	ID               uuid.UUID            `json:"id"`
	Title            string               `json:"title"`
	Kind             string               `json:"kind"`
	Params           types.DiscountParams `json:"params"`
	TargetScope      string               `json:"target_scope"`
	ProductIDs       []string             `json:"product_ids,omitempty"`
	VariantIDs       []string             `json:"variant_ids,omitempty"`
	Categories       []string             `json:"categories,omitempty"`
	Audience         types.AudienceSpec   `json:"audience"`
	Automatic        bool                 `json:"automatic"`
	Code             *string              `json:"code,omitempty"`
	Stackable        bool                 `json:"stackable"`
	Priority         int                  `json:"priority"`
	MaxUses          *int                 `json:"max_uses,omitempty"`
	PerCustomerLimit *int                 `json:"per_customer_limit,omitempty"`
	StartsAt         *time.Time           `json:"starts_at,omitempty"`
	EndsAt           *time.Time           `json:"ends_at,omitempty"`
	MinSubtotalCents *int64               `json:"min_subtotal_cents,omitempty"`
	MinItemCount     *int                 `json:"min_item_count,omitempty"`
	Status           string               `json:"status"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

func newDiscountRuleResponse(rule *models.DiscountRule) discountRuleResponse {
	return discountRuleResponse{
		ID:               rule.ID,
		Title:            rule.Title,
		Kind:             rule.Kind.String(),
		Params:           rule.Params,
		TargetScope:      rule.TargetScope.String(),
		ProductIDs:       []string(rule.ProductIDs),
		VariantIDs:       []string(rule.VariantIDs),
		Categories:       []string(rule.Categories),
		Audience:         rule.Audience,
		Automatic:        rule.Automatic,
		Code:             rule.Code,
		Stackable:        rule.Stackable,
		Priority:         rule.Priority,
		MaxUses:          rule.MaxUses,
		PerCustomerLimit: rule.PerCustomerLimit,
		StartsAt:         rule.StartsAt,
		EndsAt:           rule.EndsAt,
		MinSubtotalCents: rule.MinSubtotalCents,
		MinItemCount:     rule.MinItemCount,
		Status:           rule.Status.String(),
		CreatedAt:        rule.CreatedAt,
		UpdatedAt:        rule.UpdatedAt,
	}
}

func toRuleInput(payload discountRuleRequest) discounts.RuleInput {
	input := discounts.RuleInput{
		Title:            payload.Title,
		Kind:             enums.DiscountKind(payload.Kind),
		Params:           payload.Params,
		TargetScope:      enums.DiscountTargetScope(payload.TargetScope),
		ProductIDs:       payload.ProductIDs,
		VariantIDs:       payload.VariantIDs,
		Categories:       payload.Categories,
		Audience:         payload.Audience,
		Automatic:        true,
		Code:             payload.Code,
		Stackable:        true,
		Priority:         payload.Priority,
		MaxUses:          payload.MaxUses,
		PerCustomerLimit: payload.PerCustomerLimit,
		StartsAt:         payload.StartsAt,
		EndsAt:           payload.EndsAt,
		MinSubtotalCents: payload.MinSubtotalCents,
		MinItemCount:     payload.MinItemCount,
	}
	if payload.TargetScope == "" {
		input.TargetScope = enums.DiscountTargetAllProducts
	}
	if payload.Automatic != nil {
		input.Automatic = *payload.Automatic
	}
	if payload.Stackable != nil {
		input.Stackable = *payload.Stackable
	}
	return input
}

// DiscountCreate registers a new discount rule for the merchant's store.
func DiscountCreate(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload discountRuleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rule, err := svc.Create(r.Context(), storeID, toRuleInput(payload))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newDiscountRuleResponse(rule))
	}
}

// DiscountList returns the store's rules, optionally filtered by status.
func DiscountList(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var status *enums.DiscountStatus
		if raw := r.URL.Query().Get("status"); raw != "" {
			parsed, err := enums.ParseDiscountStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			status = &parsed
		}

		rules, err := svc.List(r.Context(), storeID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]discountRuleResponse, 0, len(rules))
		for i := range rules {
			out = append(out, newDiscountRuleResponse(&rules[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// DiscountGet fetches one rule scoped to the merchant's store.
func DiscountGet(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ruleID, err := ruleIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rule, err := svc.Get(r.Context(), storeID, ruleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newDiscountRuleResponse(rule))
	}
}

// DiscountUpdate replaces a rule's definition; a status field in the body
// additionally moves the rule through its lifecycle.
func DiscountUpdate(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ruleID, err := ruleIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload discountRuleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rule, err := svc.Update(r.Context(), storeID, ruleID, toRuleInput(payload))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if payload.Status != "" {
			status, parseErr := enums.ParseDiscountStatus(payload.Status)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status"))
				return
			}
			if status != rule.Status {
				if err := svc.SetStatus(r.Context(), storeID, ruleID, status); err != nil {
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
				rule.Status = status
			}
		}

		responses.WriteSuccess(w, newDiscountRuleResponse(rule))
	}
}

// DiscountDelete removes a rule from the store.
func DiscountDelete(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ruleID, err := ruleIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), storeID, ruleID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func ruleIDFromPath(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "ruleId")
	ruleID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rule id")
	}
	return ruleID, nil
}
