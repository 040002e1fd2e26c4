package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/oakline-furniture/trade-api/internal/domain"
	"gorm.io/gorm"
)

type AnalyticalAccountRepository struct {
	db *gorm.DB
}

func NewAnalyticalAccountRepository(db *gorm.DB) *AnalyticalAccountRepository {
	return &AnalyticalAccountRepository{db: db}
}

func (r *AnalyticalAccountRepository) Create(ctx context.Context, account *domain.AnalyticalAccount) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *AnalyticalAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AnalyticalAccount, error) {
	var account domain.AnalyticalAccount
	err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AnalyticalAccountRepository) GetByCode(ctx context.Context, code string) (*domain.AnalyticalAccount, error) {
	var account domain.AnalyticalAccount
	err := r.db.WithContext(ctx).First(&account, "code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// List returns accounts filtered by status, ordered by code
func (r *AnalyticalAccountRepository) List(ctx context.Context, status *domain.AccountStatus) ([]domain.AnalyticalAccount, error) {
	var accounts []domain.AnalyticalAccount
	query := r.db.WithContext(ctx).Order("code ASC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	err := query.Find(&accounts).Error
	return accounts, err
}

// ListChildren returns the direct children of an account
func (r *AnalyticalAccountRepository) ListChildren(ctx context.Context, parentID uuid.UUID) ([]domain.AnalyticalAccount, error) {
	var accounts []domain.AnalyticalAccount
	err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("code ASC").
		Find(&accounts).Error
	return accounts, err
}

func (r *AnalyticalAccountRepository) Update(ctx context.Context, account *domain.AnalyticalAccount) error {
	return r.db.WithContext(ctx).Save(account).Error
}
