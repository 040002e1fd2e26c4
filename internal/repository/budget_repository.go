package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/oakline-furniture/trade-api/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrBudgetStageChanged is returned when the predecessor left the CONFIRM
// stage between the service check and the revision write
var ErrBudgetStageChanged = errors.New("budget stage changed")

type BudgetRepository struct {
	db *gorm.DB
}

func NewBudgetRepository(db *gorm.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

// Create persists the budget header and its lines in one transaction
func (r *BudgetRepository) Create(ctx context.Context, budget *domain.Budget) error {
	return r.db.WithContext(ctx).Create(budget).Error
}

func (r *BudgetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Budget, error) {
	var budget domain.Budget
	err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&budget, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &budget, nil
}

// List returns budgets filtered by stage, newest period first
func (r *BudgetRepository) List(ctx context.Context, page, pageSize int, stage *domain.BudgetStage) ([]domain.Budget, int64, error) {
	var budgets []domain.Budget
	var total int64

	offset := (page - 1) * pageSize

	query := r.db.WithContext(ctx).Model(&domain.Budget{})
	if stage != nil {
		query = query.Where("stage = ?", *stage)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Lines").
		Order("start_date DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&budgets).Error

	return budgets, total, err
}

func (r *BudgetRepository) Update(ctx context.Context, budget *domain.Budget) error {
	return r.db.WithContext(ctx).Omit("Lines").Save(budget).Error
}

// UpdateStage moves the budget to a new workflow stage
func (r *BudgetRepository) UpdateStage(ctx context.Context, id uuid.UUID, stage domain.BudgetStage) error {
	return r.db.WithContext(ctx).
		Model(&domain.Budget{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stage":      stage,
			"updated_at": time.Now().UTC(),
		}).Error
}

// Revise inserts the successor and flips the predecessor to REVISED in one
// transaction. The stage predicate on the flip keeps a concurrent revision
// or cancellation from producing an orphan successor: if the predecessor is
// no longer CONFIRM the whole transaction rolls back.
func (r *BudgetRepository) Revise(ctx context.Context, predecessorID uuid.UUID, successor *domain.Budget) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(successor).Error; err != nil {
			return err
		}
		result := tx.Model(&domain.Budget{}).
			Where("id = ? AND stage = ?", predecessorID, domain.BudgetStageConfirm).
			Updates(map[string]interface{}{
				"stage":             domain.BudgetStageRevised,
				"revised_budget_id": successor.ID,
				"updated_at":        time.Now().UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrBudgetStageChanged
		}
		return nil
	})
}

func (r *BudgetRepository) GetLineByID(ctx context.Context, lineID uuid.UUID) (*domain.BudgetLine, error) {
	var line domain.BudgetLine
	err := r.db.WithContext(ctx).First(&line, "id = ?", lineID).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// UpdateLineAchieved sets the achieved amount on a budget line
func (r *BudgetRepository) UpdateLineAchieved(ctx context.Context, lineID uuid.UUID, achieved decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&domain.BudgetLine{}).
		Where("id = ?", lineID).
		Updates(map[string]interface{}{
			"achieved_amount": achieved,
			"updated_at":      time.Now().UTC(),
		}).Error
}
