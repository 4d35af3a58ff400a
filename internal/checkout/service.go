package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/quickshop/quickshop-backend/internal/cart"
	"github.com/quickshop/quickshop-backend/internal/discounts"
	"github.com/quickshop/quickshop-backend/pkg/config"
	"github.com/quickshop/quickshop-backend/pkg/db/models"
	"github.com/quickshop/quickshop-backend/pkg/enums"
	pkgerrors "github.com/quickshop/quickshop-backend/pkg/errors"
	"github.com/quickshop/quickshop-backend/pkg/logger"
	"github.com/quickshop/quickshop-backend/pkg/metrics"
	"github.com/quickshop/quickshop-backend/pkg/pricing"
	"github.com/quickshop/quickshop-backend/pkg/types"
)

// txRunner opens one database transaction around the checkout write path.
// Implemented by db.Client.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service places orders. The entire checkout -- catalog reads, the
// authoritative re-quote, order and redemption writes, cart conversion --
// runs inside a single transaction so usage limits hold under concurrency.
type Service interface {
	Checkout(ctx context.Context, input CheckoutInput) (*models.Order, error)
}

type service struct {
	tx        txRunner
	orders    Repository
	carts     cart.Repository
	discounts discounts.Repository
	cfg       config.PricingConfig
	logg      *logger.Logger
	metrics   *metrics.PricingMetrics
	now       func() time.Time
}

// NewService builds a checkout service backed by the provided stack.
func NewService(tx txRunner, orders Repository, carts cart.Repository, rules discounts.Repository, cfg config.PricingConfig, logg *logger.Logger, m *metrics.PricingMetrics) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if rules == nil {
		return nil, fmt.Errorf("discounts repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:        tx,
		orders:    orders,
		carts:     carts,
		discounts: rules,
		cfg:       cfg,
		logg:      logg,
		metrics:   m,
		now:       time.Now,
	}, nil
}

// CheckoutInput captures one checkout request. When Lines is empty the
// customer's active cart supplies the lines, the redeemed code, and the
// customer context, and the cart is marked converted on success.
type CheckoutInput struct {
	StoreID         uuid.UUID
	CustomerID      string
	Lines           []cart.LineInput
	RedeemedCode    string
	CustomerContext *types.CustomerContext
}

func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*models.Order, error) {
	started := s.now()

	if input.StoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "store context missing")
	}
	if input.CustomerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if len(input.Lines) > s.maxCartLines() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart has too many lines")
	}

	var (
		order  *models.Order
		result *pricing.PricingResult
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		placed, priced, err := s.checkoutInTx(ctx, tx, input)
		if err != nil {
			return err
		}
		order = placed
		result = priced
		return nil
	})
	if err != nil {
		s.metrics.IncFailure("checkout")
		return nil, err
	}

	s.observe(ctx, started, result)

	ctx = s.logg.WithFields(ctx, map[string]any{
		"order_id":       order.ID,
		"store_id":       order.StoreID,
		"total_cents":    order.TotalCents,
		"discount_cents": order.DiscountCents,
	})
	s.logg.Info(ctx, "order placed")
	return order, nil
}

func (s *service) checkoutInTx(ctx context.Context, tx *gorm.DB, input CheckoutInput) (*models.Order, *pricing.PricingResult, error) {
	cartRepo := s.carts.WithTx(tx)
	ruleRepo := s.discounts.WithTx(tx)
	orderRepo := s.orders.WithTx(tx)

	lines := input.Lines
	redeemedCode := strings.TrimSpace(input.RedeemedCode)
	customer := input.CustomerContext

	var activeCart *models.CartRecord
	if len(lines) == 0 {
		record, err := cartRepo.FindActiveCart(ctx, input.StoreID, input.CustomerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "no cart lines and no active cart to check out")
			}
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active cart")
		}
		activeCart = record
		lines = linesFromCart(record)
		if len(lines) == 0 {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "active cart is empty")
		}
		if redeemedCode == "" && record.RedeemedCode != nil {
			redeemedCode = *record.RedeemedCode
		}
		if customer == nil {
			ctxCopy := record.CustomerContext
			customer = &ctxCopy
		}
	}

	// The authoritative quote: same assembly as the preview path, but every
	// read is bound to this transaction.
	snapshot, store, err := cart.AssembleSnapshot(ctx, cartRepo, input.StoreID, lines, customer)
	if err != nil {
		return nil, nil, err
	}

	rules, usage, err := s.loadRules(ctx, ruleRepo, input.StoreID, input.CustomerID)
	if err != nil {
		return nil, nil, err
	}

	result, err := pricing.Calculate(snapshot, rules, pricing.Context{
		Now:          s.now(),
		RedeemedCode: redeemedCode,
		Customer:     snapshot.Customer,
		UsageCounts:  usage,
	})
	if err != nil {
		var cartErr *pricing.InvalidCartError
		if errors.As(err, &cartErr) {
			s.logg.Error(ctx, "checkout cart rejected by pricing engine", err)
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodePricing, err, "invalid cart")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "pricing failed")
	}

	order := buildOrder(input, store, redeemedCode, result)
	items := buildLineItems(result)
	if err := orderRepo.CreateOrder(ctx, order, items); err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}

	for _, applied := range result.Applied {
		redemption := &models.DiscountRedemption{
			RuleID:     applied.RuleID,
			StoreID:    input.StoreID,
			OrderID:    order.ID,
			CustomerID: input.CustomerID,
		}
		if err := ruleRepo.CreateRedemption(ctx, redemption); err != nil {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record discount redemption")
		}
	}

	if activeCart != nil {
		if err := cartRepo.MarkConverted(ctx, activeCart.ID); err != nil {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "convert cart")
		}
	}

	return order, result, nil
}

// loadRules fetches the store's live rules and the usage counts the engine
// needs to enforce redemption limits, all on the checkout transaction.
func (s *service) loadRules(ctx context.Context, repo discounts.Repository, storeID uuid.UUID, customerID string) ([]pricing.Rule, map[uuid.UUID]pricing.Usage, error) {
	rows, err := repo.FindActiveByStore(ctx, storeID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load discount rules")
	}
	rules, err := discounts.ToEngineRules(rows)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "convert discount rules")
	}
	if len(rules) > s.maxActiveRules() {
		rules = rules[:s.maxActiveRules()]
	}

	limited := make([]uuid.UUID, 0, len(rules))
	for _, rule := range rules {
		if rule.MaxUses != nil || rule.PerCustomerLimit != nil {
			limited = append(limited, rule.ID)
		}
	}
	counts, err := repo.UsageCounts(ctx, limited, customerID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load discount usage counts")
	}
	usage := make(map[uuid.UUID]pricing.Usage, len(counts))
	for id, count := range counts {
		usage[id] = pricing.Usage{Total: count.Total, ByCustomer: count.ByCustomer}
	}
	return rules, usage, nil
}

func buildOrder(input CheckoutInput, store *models.Store, redeemedCode string, result *pricing.PricingResult) *models.Order {
	order := &models.Order{
		StoreID:          input.StoreID,
		CustomerID:       input.CustomerID,
		Status:           enums.OrderStatusPending,
		Currency:         store.Currency,
		SubtotalCents:    result.SubtotalCents,
		DiscountCents:    result.TotalDiscountCents,
		TotalCents:       result.TotalCents,
		FreeShipping:     result.FreeShipping,
		AppliedDiscounts: snapshotDiscounts(result.Applied),
	}
	if redeemedCode != "" {
		code := redeemedCode
		order.RedeemedCode = &code
	}
	return order
}

// buildLineItems flattens the priced lines plus any free-item grants into
// order line rows. Granted rows carry the value given away in
// OriginalTotalCents and always settle at zero.
func buildLineItems(result *pricing.PricingResult) []models.OrderLineItem {
	items := make([]models.OrderLineItem, 0, len(result.Lines))
	for _, line := range result.Lines {
		item := models.OrderLineItem{
			ProductID:          line.ProductID,
			Qty:                line.Quantity,
			UnitPriceCents:     line.UnitPriceCents,
			OriginalTotalCents: line.OriginalTotalCents,
			FinalTotalCents:    line.FinalTotalCents,
		}
		if line.VariantID != uuid.Nil {
			variantID := line.VariantID
			item.VariantID = &variantID
		}
		items = append(items, item)
	}
	for _, applied := range result.Applied {
		for _, grant := range applied.FreeItems {
			item := models.OrderLineItem{
				ProductID:          grant.ProductID,
				Qty:                grant.Quantity,
				UnitPriceCents:     grant.UnitValueCents,
				OriginalTotalCents: grant.UnitValueCents * int64(grant.Quantity),
				FinalTotalCents:    0,
				IsGranted:          true,
			}
			if grant.VariantID != uuid.Nil {
				variantID := grant.VariantID
				item.VariantID = &variantID
			}
			items = append(items, item)
		}
	}
	return items
}

func snapshotDiscounts(applied []pricing.AppliedDiscount) types.AppliedDiscountSnapshots {
	snapshots := make(types.AppliedDiscountSnapshots, 0, len(applied))
	for _, discount := range applied {
		snapshot := types.AppliedDiscountSnapshot{
			RuleID:       discount.RuleID,
			Kind:         discount.Kind.String(),
			AmountCents:  discount.TotalCents,
			FreeShipping: discount.FreeShipping,
		}
		if discount.Code != "" {
			code := discount.Code
			snapshot.Code = &code
		}
		for _, adjustment := range discount.Adjustments {
			snapshot.Lines = append(snapshot.Lines, types.AppliedDiscountLine{
				LineID:      adjustment.LineID,
				AmountCents: adjustment.AmountCents,
			})
		}
		for _, grant := range discount.FreeItems {
			item := types.FreeItemGrant{
				ProductID:      grant.ProductID,
				Quantity:       grant.Quantity,
				UnitValueCents: grant.UnitValueCents,
			}
			if grant.VariantID != uuid.Nil {
				variantID := grant.VariantID
				item.VariantID = &variantID
			}
			snapshot.FreeItems = append(snapshot.FreeItems, item)
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots
}

func linesFromCart(record *models.CartRecord) []cart.LineInput {
	lines := make([]cart.LineInput, 0, len(record.Items))
	for _, item := range record.Items {
		lines = append(lines, cart.LineInput{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Qty:       item.Qty,
		})
	}
	return lines
}

func (s *service) observe(ctx context.Context, started time.Time, result *pricing.PricingResult) {
	s.metrics.ObserveDuration("checkout", s.now().Sub(started))
	for _, applied := range result.Applied {
		s.metrics.IncApplied(applied.Kind.String())
	}
	s.metrics.IncWarnings(len(result.Warnings))

	if len(result.Warnings) > 0 {
		var combined error
		for _, warning := range result.Warnings {
			combined = multierr.Append(combined, warning)
		}
		s.logg.Error(ctx, "malformed discount rules skipped during checkout", combined)
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
