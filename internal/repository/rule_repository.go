package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/oakline-furniture/trade-api/internal/domain"
	"gorm.io/gorm"
)

type RuleRepository struct {
	db *gorm.DB
}

func NewRuleRepository(db *gorm.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

func (r *RuleRepository) Create(ctx context.Context, rule *domain.AutoAnalyticalRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *RuleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AutoAnalyticalRule, error) {
	var rule domain.AutoAnalyticalRule
	err := r.db.WithContext(ctx).
		Preload("AnalyticalAccount").
		First(&rule, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// List returns rules filtered by workflow status
func (r *RuleRepository) List(ctx context.Context, ruleStatus *domain.RuleStatus) ([]domain.AutoAnalyticalRule, error) {
	var rules []domain.AutoAnalyticalRule
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if ruleStatus != nil {
		query = query.Where("rule_status = ?", *ruleStatus)
	}
	err := query.Find(&rules).Error
	return rules, err
}

// ListCandidates returns the rules eligible for automatic resolution:
// confirmed, auto-apply, pointing at a confirmed account. Archiving an
// account takes its rules out of the pool without touching them. Ordering
// here is a stable base; precedence by specificity is decided by the caller.
func (r *RuleRepository) ListCandidates(ctx context.Context) ([]domain.AutoAnalyticalRule, error) {
	var rules []domain.AutoAnalyticalRule
	err := r.db.WithContext(ctx).
		Joins("JOIN analytical_accounts ON analytical_accounts.id = auto_analytical_rules.analytical_account_id").
		Where("auto_analytical_rules.rule_status = ? AND auto_analytical_rules.auto_apply = ? AND analytical_accounts.status = ?",
			domain.RuleStatusConfirm, true, domain.AccountStatusConfirmed).
		Order("auto_analytical_rules.updated_at DESC, auto_analytical_rules.id ASC").
		Find(&rules).Error
	return rules, err
}

func (r *RuleRepository) Update(ctx context.Context, rule *domain.AutoAnalyticalRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

func (r *RuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.AutoAnalyticalRule{}, "id = ?", id).Error
}
