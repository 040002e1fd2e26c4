package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/oakline-furniture/trade-api/internal/domain"
	"github.com/oakline-furniture/trade-api/internal/mapper"
	"github.com/oakline-furniture/trade-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AnalyticalAccountService manages the cost-center hierarchy. New accounts
// are created directly in CONFIRMED status; archiving takes them out of rule
// resolution and new assignments without touching historical lines.
type AnalyticalAccountService struct {
	accountRepo *repository.AnalyticalAccountRepository
	logger      *zap.Logger
}

func NewAnalyticalAccountService(accountRepo *repository.AnalyticalAccountRepository, logger *zap.Logger) *AnalyticalAccountService {
	return &AnalyticalAccountService{
		accountRepo: accountRepo,
		logger:      logger,
	}
}

func (s *AnalyticalAccountService) Create(ctx context.Context, req *domain.CreateAnalyticalAccountRequest) (*domain.AnalyticalAccountDTO, error) {
	if req.ParentID != nil {
		parent, err := s.accountRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: parent account %s", ErrNotFound, *req.ParentID)
			}
			return nil, fmt.Errorf("failed to get parent account: %w", err)
		}
		if parent.Status == domain.AccountStatusArchived {
			return nil, fmt.Errorf("%w: parent account %s is archived", ErrValidation, parent.Code)
		}
	}

	account := &domain.AnalyticalAccount{
		Code:     req.Code,
		Name:     req.Name,
		ParentID: req.ParentID,
		Status:   domain.AccountStatusConfirmed,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: account code %q already exists", ErrConflict, req.Code)
		}
		return nil, fmt.Errorf("failed to create analytical account: %w", err)
	}

	dto := mapper.ToAnalyticalAccountDTO(account)
	return &dto, nil
}

func (s *AnalyticalAccountService) GetByID(ctx context.Context, id uuid.UUID) (*domain.AnalyticalAccountDTO, error) {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: analytical account %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get analytical account: %w", err)
	}

	dto := mapper.ToAnalyticalAccountDTO(account)
	return &dto, nil
}

func (s *AnalyticalAccountService) List(ctx context.Context, status *domain.AccountStatus) ([]domain.AnalyticalAccountDTO, error) {
	accounts, err := s.accountRepo.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list analytical accounts: %w", err)
	}

	dtos := make([]domain.AnalyticalAccountDTO, len(accounts))
	for i := range accounts {
		dtos[i] = mapper.ToAnalyticalAccountDTO(&accounts[i])
	}

	return dtos, nil
}

// ListChildren returns the direct children of an account
func (s *AnalyticalAccountService) ListChildren(ctx context.Context, parentID uuid.UUID) ([]domain.AnalyticalAccountDTO, error) {
	if _, err := s.accountRepo.GetByID(ctx, parentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: analytical account %s", ErrNotFound, parentID)
		}
		return nil, fmt.Errorf("failed to get analytical account: %w", err)
	}

	accounts, err := s.accountRepo.ListChildren(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list child accounts: %w", err)
	}

	dtos := make([]domain.AnalyticalAccountDTO, len(accounts))
	for i := range accounts {
		dtos[i] = mapper.ToAnalyticalAccountDTO(&accounts[i])
	}

	return dtos, nil
}

// Archive moves an account to ARCHIVED; blocked while children are active
func (s *AnalyticalAccountService) Archive(ctx context.Context, id uuid.UUID) error {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: analytical account %s", ErrNotFound, id)
		}
		return fmt.Errorf("failed to get analytical account: %w", err)
	}

	if account.Status == domain.AccountStatusArchived {
		return fmt.Errorf("%w: account %s is already archived", ErrInvalidState, account.Code)
	}

	children, err := s.accountRepo.ListChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list child accounts: %w", err)
	}
	for i := range children {
		if children[i].Status != domain.AccountStatusArchived {
			return fmt.Errorf("%w: account %s has active children", ErrConflict, account.Code)
		}
	}

	account.Status = domain.AccountStatusArchived
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return fmt.Errorf("failed to archive analytical account: %w", err)
	}

	s.logger.Info("analytical account archived",
		zap.String("accountID", id.String()),
		zap.String("code", account.Code))
	return nil
}
