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

// BudgetService manages budgets and their revision chains:
//
//	DRAFT → CONFIRM → REVISED (via Revise) or CANCELLED
//
// Achieved amounts are caller-supplied, not derived from transactions.
type BudgetService struct {
	budgetRepo  *repository.BudgetRepository
	accountRepo *repository.AnalyticalAccountRepository
	logger      *zap.Logger
}

func NewBudgetService(
	budgetRepo *repository.BudgetRepository,
	accountRepo *repository.AnalyticalAccountRepository,
	logger *zap.Logger,
) *BudgetService {
	return &BudgetService{
		budgetRepo:  budgetRepo,
		accountRepo: accountRepo,
		logger:      logger,
	}
}

func (s *BudgetService) Create(ctx context.Context, req *domain.CreateBudgetRequest) (*domain.BudgetDTO, error) {
	if !req.EndDate.After(req.StartDate) {
		return nil, fmt.Errorf("%w: budget end date must be after start date", ErrValidation)
	}

	lines := make([]domain.BudgetLine, 0, len(req.Lines))
	for i, lineReq := range req.Lines {
		if lineReq.BudgetedAmount.IsNegative() {
			return nil, fmt.Errorf("%w: line %d budgeted amount must not be negative", ErrValidation, i+1)
		}
		account, err := s.accountRepo.GetByID(ctx, lineReq.AnalyticalAccountID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: analytical account %s", ErrNotFound, lineReq.AnalyticalAccountID)
			}
			return nil, fmt.Errorf("failed to get analytical account: %w", err)
		}
		if account.Status == domain.AccountStatusArchived {
			return nil, fmt.Errorf("%w: analytical account %s is archived", ErrValidation, account.Code)
		}
		lines = append(lines, domain.BudgetLine{
			AnalyticalAccountID: lineReq.AnalyticalAccountID,
			Type:                lineReq.Type,
			BudgetedAmount:      lineReq.BudgetedAmount,
		})
	}

	budget := &domain.Budget{
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Stage:     domain.BudgetStageDraft,
		Lines:     lines,
	}

	if err := s.budgetRepo.Create(ctx, budget); err != nil {
		return nil, fmt.Errorf("failed to create budget: %w", err)
	}

	return s.reload(ctx, budget.ID)
}

func (s *BudgetService) GetByID(ctx context.Context, id uuid.UUID) (*domain.BudgetDTO, error) {
	return s.reload(ctx, id)
}

func (s *BudgetService) List(ctx context.Context, page, pageSize int, stage *domain.BudgetStage) ([]domain.BudgetDTO, int64, error) {
	budgets, total, err := s.budgetRepo.List(ctx, page, pageSize, stage)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list budgets: %w", err)
	}

	dtos := make([]domain.BudgetDTO, len(budgets))
	for i := range budgets {
		dtos[i] = mapper.ToBudgetDTO(&budgets[i])
	}

	return dtos, total, nil
}

// Confirm moves a DRAFT budget to CONFIRM
func (s *BudgetService) Confirm(ctx context.Context, id uuid.UUID) (*domain.BudgetDTO, error) {
	budget, err := s.getBudget(ctx, id)
	if err != nil {
		return nil, err
	}

	if budget.Stage != domain.BudgetStageDraft {
		return nil, fmt.Errorf("%w: only draft budgets can be confirmed, current stage %s", ErrInvalidState, budget.Stage)
	}

	if err := s.budgetRepo.UpdateStage(ctx, id, domain.BudgetStageConfirm); err != nil {
		return nil, fmt.Errorf("failed to confirm budget: %w", err)
	}

	return s.reload(ctx, id)
}

// Revise clones a CONFIRMED budget into a fresh DRAFT successor and flips
// the predecessor to REVISED with a link to its replacement. Achieved
// amounts restart at zero on the successor.
func (s *BudgetService) Revise(ctx context.Context, id uuid.UUID, req *domain.ReviseBudgetRequest) (*domain.BudgetDTO, error) {
	budget, err := s.getBudget(ctx, id)
	if err != nil {
		return nil, err
	}

	if budget.Stage != domain.BudgetStageConfirm {
		return nil, fmt.Errorf("%w: only confirmed budgets can be revised, current stage %s", ErrInvalidState, budget.Stage)
	}

	name := budget.Name
	if req != nil && req.Name != "" {
		name = req.Name
	}

	lines := make([]domain.BudgetLine, len(budget.Lines))
	for i := range budget.Lines {
		lines[i] = domain.BudgetLine{
			AnalyticalAccountID: budget.Lines[i].AnalyticalAccountID,
			Type:                budget.Lines[i].Type,
			BudgetedAmount:      budget.Lines[i].BudgetedAmount,
		}
	}

	successor := &domain.Budget{
		Name:      name,
		StartDate: budget.StartDate,
		EndDate:   budget.EndDate,
		Stage:     domain.BudgetStageDraft,
		Lines:     lines,
	}

	if err := s.budgetRepo.Revise(ctx, id, successor); err != nil {
		if errors.Is(err, repository.ErrBudgetStageChanged) {
			return nil, fmt.Errorf("%w: budget %s was revised or cancelled concurrently", ErrInvalidState, id)
		}
		return nil, fmt.Errorf("failed to revise budget: %w", err)
	}

	s.logger.Info("budget revised",
		zap.String("budgetID", id.String()),
		zap.String("successorID", successor.ID.String()))

	return s.reload(ctx, successor.ID)
}

// Cancel takes a budget out of use
func (s *BudgetService) Cancel(ctx context.Context, id uuid.UUID) (*domain.BudgetDTO, error) {
	budget, err := s.getBudget(ctx, id)
	if err != nil {
		return nil, err
	}

	if budget.Stage == domain.BudgetStageCancelled || budget.Stage == domain.BudgetStageRevised {
		return nil, fmt.Errorf("%w: budget is %s", ErrInvalidState, budget.Stage)
	}

	if err := s.budgetRepo.UpdateStage(ctx, id, domain.BudgetStageCancelled); err != nil {
		return nil, fmt.Errorf("failed to cancel budget: %w", err)
	}

	return s.reload(ctx, id)
}

// UpdateAchieved sets the externally supplied achieved amount on a line
func (s *BudgetService) UpdateAchieved(ctx context.Context, lineID uuid.UUID, req *domain.UpdateAchievedRequest) (*domain.BudgetDTO, error) {
	if req.AchievedAmount.IsNegative() {
		return nil, fmt.Errorf("%w: achieved amount must not be negative", ErrValidation)
	}

	line, err := s.budgetRepo.GetLineByID(ctx, lineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: budget line %s", ErrNotFound, lineID)
		}
		return nil, fmt.Errorf("failed to get budget line: %w", err)
	}

	budget, err := s.getBudget(ctx, line.BudgetID)
	if err != nil {
		return nil, err
	}
	if budget.Stage == domain.BudgetStageCancelled {
		return nil, fmt.Errorf("%w: budget is cancelled", ErrInvalidState)
	}

	if err := s.budgetRepo.UpdateLineAchieved(ctx, lineID, req.AchievedAmount); err != nil {
		return nil, fmt.Errorf("failed to update achieved amount: %w", err)
	}

	return s.reload(ctx, line.BudgetID)
}

func (s *BudgetService) getBudget(ctx context.Context, id uuid.UUID) (*domain.Budget, error) {
	budget, err := s.budgetRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: budget %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	return budget, nil
}

func (s *BudgetService) reload(ctx context.Context, id uuid.UUID) (*domain.BudgetDTO, error) {
	budget, err := s.getBudget(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToBudgetDTO(budget)
	return &dto, nil
}
