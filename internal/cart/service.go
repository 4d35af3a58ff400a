package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/quickshop/quickshop-backend/pkg/config"
	"github.com/quickshop/quickshop-backend/pkg/db/models"
	pkgerrors "github.com/quickshop/quickshop-backend/pkg/errors"
	"github.com/quickshop/quickshop-backend/pkg/logger"
	"github.com/quickshop/quickshop-backend/pkg/metrics"
	"github.com/quickshop/quickshop-backend/pkg/pricing"
	"github.com/quickshop/quickshop-backend/pkg/types"
)

type ruleSource interface {
	ActiveEngineRules(ctx context.Context, storeID uuid.UUID) ([]pricing.Rule, error)
	EngineUsage(ctx context.Context, rules []pricing.Rule, customerID string) (map[uuid.UUID]pricing.Usage, error)
}

// Service exposes cart persistence and live pricing previews.
type Service interface {
	UpsertCart(ctx context.Context, input UpsertCartInput) (*models.CartRecord, error)
	GetActiveCart(ctx context.Context, storeID uuid.UUID, customerID string) (*models.CartRecord, error)
	Quote(ctx context.Context, input QuoteInput) (*Quote, error)
}

type service struct {
	repo    Repository
	rules   ruleSource
	cfg     config.PricingConfig
	logg    *logger.Logger
	metrics *metrics.PricingMetrics
	now     func() time.Time
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo Repository, rules ruleSource, cfg config.PricingConfig, logg *logger.Logger, m *metrics.PricingMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if rules == nil {
		return nil, fmt.Errorf("rule source required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    repo,
		rules:   rules,
		cfg:     cfg,
		logg:    logg,
		metrics: m,
		now:     time.Now,
	}, nil
}

// UpsertCartInput captures the payload to create or refresh a customer cart.
type UpsertCartInput struct {
	StoreID         uuid.UUID
	CustomerID      string
	Lines           []LineInput
	RedeemedCode    *string
	CustomerContext *types.CustomerContext
}

// QuoteInput is one pricing preview request.
type QuoteInput struct {
	StoreID         uuid.UUID
	CustomerID      string
	Lines           []LineInput
	RedeemedCode    string
	CustomerContext *types.CustomerContext
}

// Quote pairs the assembled snapshot with the engine's result.
type Quote struct {
	Snapshot pricing.CartSnapshot
	Result   *pricing.PricingResult
}

func (s *service) UpsertCart(ctx context.Context, input UpsertCartInput) (*models.CartRecord, error) {
	if input.StoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "store context missing")
	}
	if input.CustomerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if len(input.Lines) > s.maxCartLines() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart has too many lines")
	}

	// Resolve against the catalog up front so a cart never persists a line
	// that could not be priced.
	snapshot, store, err := AssembleSnapshot(ctx, s.repo, input.StoreID, input.Lines, input.CustomerContext)
	if err != nil {
		return nil, err
	}

	record := &models.CartRecord{
		StoreID:      input.StoreID,
		CustomerID:   input.CustomerID,
		Currency:     store.Currency,
		RedeemedCode: input.RedeemedCode,
	}
	if input.CustomerContext != nil {
		record.CustomerContext = *input.CustomerContext
	}

	existing, err := s.repo.FindActiveCart(ctx, input.StoreID, input.CustomerID)
	if err == nil {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		record.Status = existing.Status
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active cart")
	}

	items := make([]models.CartItem, 0, len(snapshot.Lines))
	for _, line := range snapshot.Lines {
		item := models.CartItem{
			ProductID:      line.ProductID,
			Qty:            line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
		}
		if line.VariantID != uuid.Nil {
			variantID := line.VariantID
			item.VariantID = &variantID
		}
		items = append(items, item)
	}

	saved, err := s.repo.UpsertCart(ctx, record, items)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	return saved, nil
}

func (s *service) GetActiveCart(ctx context.Context, storeID uuid.UUID, customerID string) (*models.CartRecord, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "store context missing")
	}
	if customerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}

	record, err := s.repo.FindActiveCart(ctx, storeID, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active cart")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active cart")
	}
	return record, nil
}

// Quote assembles a snapshot, runs the pricing engine, and surfaces rule
// warnings without failing the request. Structural cart faults translate to
// the pricing taxonomy code so no raw engine error reaches a shopper.
func (s *service) Quote(ctx context.Context, input QuoteInput) (*Quote, error) {
	started := s.now()

	if input.StoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "store context missing")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one cart line required")
	}
	if len(input.Lines) > s.maxCartLines() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart has too many lines")
	}

	snapshot, _, err := AssembleSnapshot(ctx, s.repo, input.StoreID, input.Lines, input.CustomerContext)
	if err != nil {
		return nil, err
	}

	rules, err := s.rules.ActiveEngineRules(ctx, input.StoreID)
	if err != nil {
		return nil, err
	}
	if len(rules) > s.maxActiveRules() {
		rules = rules[:s.maxActiveRules()]
	}

	usage, err := s.rules.EngineUsage(ctx, rules, input.CustomerID)
	if err != nil {
		return nil, err
	}

	result, err := pricing.Calculate(snapshot, rules, pricing.Context{
		Now:          s.now(),
		RedeemedCode: input.RedeemedCode,
		Customer:     snapshot.Customer,
		UsageCounts:  usage,
	})
	if err != nil {
		s.metrics.IncFailure("quote")
		var cartErr *pricing.InvalidCartError
		if errors.As(err, &cartErr) {
			s.logg.Error(ctx, "cart snapshot rejected by pricing engine", err)
			return nil, pkgerrors.Wrap(pkgerrors.CodePricing, err, "invalid cart")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "pricing failed")
	}

	s.observe(ctx, "quote", started, result)
	return &Quote{Snapshot: snapshot, Result: result}, nil
}

// observe folds metrics and warning logging for one successful invocation.
func (s *service) observe(ctx context.Context, operation string, started time.Time, result *pricing.PricingResult) {
	s.metrics.ObserveDuration(operation, s.now().Sub(started))
	for _, applied := range result.Applied {
		s.metrics.IncApplied(applied.Kind.String())
	}
	s.metrics.IncWarnings(len(result.Warnings))

	if len(result.Warnings) > 0 {
		var combined error
		for _, warning := range result.Warnings {
			combined = multierr.Append(combined, warning)
		}
		s.logg.Error(ctx, "malformed discount rules skipped during pricing", combined)
	}
}

func (s *service) maxCartLines() int {
	if s.cfg.MaxCartLines <= 0 {
		return 200
	}
	return s.cfg.MaxCartLines
}

func (s *service) maxActiveRules() int {
	if s.cfg.MaxActiveRules <= 0 {
		return 100
	}
	return s.cfg.MaxActiveRules
}
