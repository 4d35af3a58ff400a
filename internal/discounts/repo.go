package discounts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quickshop/quickshop-backend/pkg/db/models"
	"github.com/quickshop/quickshop-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a discounts repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, rule *models.DiscountRule) (*models.DiscountRule, error) {
	if err := r.db.WithContext(ctx).Create(rule).Error; err != nil {
		return nil, err
	}
	return rule, nil
}

func (r *repository) Update(ctx context.Context, rule *models.DiscountRule) (*models.DiscountRule, error) {
	if err := r.db.WithContext(ctx).Save(rule).Error; err != nil {
		return nil, err
	}
	return rule, nil
}

func (r *repository) FindByID(ctx context.Context, storeID, ruleID uuid.UUID) (*models.DiscountRule, error) {
	var rule models.DiscountRule
	err := r.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", ruleID, storeID).
		First(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *repository) ListByStore(ctx context.Context, storeID uuid.UUID, status *enums.DiscountStatus) ([]models.DiscountRule, error) {
	query := r.db.WithContext(ctx).Where("store_id = ?", storeID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var rules []models.DiscountRule
	err := query.
		Order("priority ASC, created_at ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repository) FindActiveByStore(ctx context.Context, storeID uuid.UUID) ([]models.DiscountRule, error) {
	active := enums.DiscountStatusActive
	return r.ListByStore(ctx, storeID, &active)
}

func (r *repository) UpdateStatus(ctx context.Context, storeID, ruleID uuid.UUID, status enums.DiscountStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.DiscountRule{}).
		Where("id = ? AND store_id = ?", ruleID, storeID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, storeID, ruleID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", ruleID, storeID).
		Delete(&models.DiscountRule{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CreateRedemption(ctx context.Context, redemption *models.DiscountRedemption) error {
	return r.db.WithContext(ctx).Create(redemption).Error
}

func (r *repository) UsageCounts(ctx context.Context, ruleIDs []uuid.UUID, customerID string) (map[uuid.UUID]UsageCount, error) {
	counts := make(map[uuid.UUID]UsageCount, len(ruleIDs))
	if len(ruleIDs) == 0 {
		return counts, nil
	}

	type row struct {
		RuleID     uuid.UUID
		Total      int
		ByCustomer int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.DiscountRedemption{}).
		Select("rule_id, COUNT(*) AS total, COUNT(*) FILTER (WHERE customer_id = ?) AS by_customer", customerID).
		Where("rule_id IN ?", ruleIDs).
		Group("rule_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		counts[r.RuleID] = UsageCount{Total: r.Total, ByCustomer: r.ByCustomer}
	}
	return counts, nil
}
