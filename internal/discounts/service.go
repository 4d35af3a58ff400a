package discounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quickshop/quickshop-backend/pkg/db"
	"github.com/quickshop/quickshop-backend/pkg/db/models"
	"github.com/quickshop/quickshop-backend/pkg/enums"
	pkgerrors "github.com/quickshop/quickshop-backend/pkg/errors"
	"github.com/quickshop/quickshop-backend/pkg/pricing"
	"github.com/quickshop/quickshop-backend/pkg/types"
)

// Service exposes discount rule administration for one store.
type Service interface {
	Create(ctx context.Context, storeID uuid.UUID, input RuleInput) (*models.DiscountRule, error)
	Update(ctx context.Context, storeID, ruleID uuid.UUID, input RuleInput) (*models.DiscountRule, error)
	Get(ctx context.Context, storeID, ruleID uuid.UUID) (*models.DiscountRule, error)
	List(ctx context.Context, storeID uuid.UUID, status *enums.DiscountStatus) ([]models.DiscountRule, error)
	SetStatus(ctx context.Context, storeID, ruleID uuid.UUID, status enums.DiscountStatus) error
	Delete(ctx context.Context, storeID, ruleID uuid.UUID) error
	ActiveEngineRules(ctx context.Context, storeID uuid.UUID) ([]pricing.Rule, error)
	EngineUsage(ctx context.Context, rules []pricing.Rule, customerID string) (map[uuid.UUID]pricing.Usage, error)
}

type service struct {
	repo Repository
}

// NewService builds a discounts service backed by the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("discounts repository required")
	}
	return &service{repo: repo}, nil
}

// RuleInput carries the writable fields of a discount rule.
type RuleInput struct {
	Title            string
	Kind             enums.DiscountKind
	Params           types.DiscountParams
	TargetScope      enums.DiscountTargetScope
	ProductIDs       []string
	VariantIDs       []string
	Categories       []string
	Audience         types.AudienceSpec
	Automatic        bool
	Code             *string
	Stackable        bool
	Priority         int
	MaxUses          *int
	PerCustomerLimit *int
	StartsAt         *time.Time
	EndsAt           *time.Time
	MinSubtotalCents *int64
	MinItemCount     *int
}

func (s *service) Create(ctx context.Context, storeID uuid.UUID, input RuleInput) (*models.DiscountRule, error) {
	rule, err := buildRule(storeID, input)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, rule)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_discount_rules_store_code") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "discount code already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create discount rule")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, storeID, ruleID uuid.UUID, input RuleInput) (*models.DiscountRule, error) {
	existing, err := s.Get(ctx, storeID, ruleID)
	if err != nil {
		return nil, err
	}

	updated, err := buildRule(storeID, input)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.Status = existing.Status
	updated.CreatedAt = existing.CreatedAt

	saved, err := s.repo.Update(ctx, updated)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_discount_rules_store_code") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "discount code already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update discount rule")
	}
	return saved, nil
}

func (s *service) Get(ctx context.Context, storeID, ruleID uuid.UUID) (*models.DiscountRule, error) {
	if ruleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rule id required")
	}
	rule, err := s.repo.FindByID(ctx, storeID, ruleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount rule not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load discount rule")
	}
	return rule, nil
}

func (s *service) List(ctx context.Context, storeID uuid.UUID, status *enums.DiscountStatus) ([]models.DiscountRule, error) {
	rules, err := s.repo.ListByStore(ctx, storeID, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list discount rules")
	}
	return rules, nil
}

func (s *service) SetStatus(ctx context.Context, storeID, ruleID uuid.UUID, status enums.DiscountStatus) error {
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown discount status")
	}
	if err := s.repo.UpdateStatus(ctx, storeID, ruleID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "discount rule not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update discount status")
	}
	return nil
}

func (s *service) Delete(ctx context.Context, storeID, ruleID uuid.UUID) error {
	if err := s.repo.Delete(ctx, storeID, ruleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "discount rule not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete discount rule")
	}
	return nil
}

// ActiveEngineRules loads every active rule for the store in engine form.
func (s *service) ActiveEngineRules(ctx context.Context, storeID uuid.UUID) ([]pricing.Rule, error) {
	rules, err := s.repo.FindActiveByStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active discount rules")
	}
	converted, err := ToEngineRules(rules)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePricing, err, "convert discount rules")
	}
	return converted, nil
}

// EngineUsage fetches point-in-time redemption counts for the supplied rules.
func (s *service) EngineUsage(ctx context.Context, rules []pricing.Rule, customerID string) (map[uuid.UUID]pricing.Usage, error) {
	ids := make([]uuid.UUID, 0, len(rules))
	for _, rule := range rules {
		if rule.MaxUses != nil || rule.PerCustomerLimit != nil {
			ids = append(ids, rule.ID)
		}
	}

	counts, err := s.repo.UsageCounts(ctx, ids, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load discount usage counts")
	}

	usage := make(map[uuid.UUID]pricing.Usage, len(counts))
	for id, count := range counts {
		usage[id] = pricing.Usage{Total: count.Total, ByCustomer: count.ByCustomer}
	}
	return usage, nil
}

func buildRule(storeID uuid.UUID, input RuleInput) (*models.DiscountRule, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "store context missing")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown discount kind")
	}
	if !input.TargetScope.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown targeting scope")
	}

	var code *string
	if input.Code != nil {
		normalized := strings.ToUpper(strings.TrimSpace(*input.Code))
		if normalized != "" {
			code = &normalized
		}
	}
	if !input.Automatic && code == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code required for code-activated rules")
	}

	if input.StartsAt != nil && input.EndsAt != nil && input.EndsAt.Before(*input.StartsAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ends_at must be after starts_at")
	}

	for _, raw := range append(append([]string{}, input.ProductIDs...), input.VariantIDs...) {
		if _, err := uuid.Parse(raw); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid target id %q", raw))
		}
	}

	return &models.DiscountRule{
		StoreID:          storeID,
		Title:            strings.TrimSpace(input.Title),
		Kind:             input.Kind,
		Params:           input.Params,
		TargetScope:      input.TargetScope,
		ProductIDs:       input.ProductIDs,
		VariantIDs:       input.VariantIDs,
		Categories:       input.Categories,
		Audience:         input.Audience,
		Automatic:        input.Automatic,
		Code:             code,
		Stackable:        input.Stackable,
		Priority:         input.Priority,
		MaxUses:          input.MaxUses,
		PerCustomerLimit: input.PerCustomerLimit,
		StartsAt:         input.StartsAt,
		EndsAt:           input.EndsAt,
		MinSubtotalCents: input.MinSubtotalCents,
		MinItemCount:     input.MinItemCount,
		Status:           enums.DiscountStatusDraft,
	}, nil
}
