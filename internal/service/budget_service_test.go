package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/oakline-furniture/trade-api/internal/domain"
	"github.com/oakline-furniture/trade-api/internal/repository"
	"github.com/oakline-furniture/trade-api/internal/service"
	"github.com/oakline-furniture/trade-api/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newBudgetService(db *gorm.DB) *service.BudgetService {
	return service.NewBudgetService(
		repository.NewBudgetRepository(db),
		repository.NewAnalyticalAccountRepository(db),
		zap.NewNop(),
	)
}

func createTestBudget(t *testing.T, svc *service.BudgetService, account *domain.AnalyticalAccount, name string) *domain.BudgetDTO {
	t.Helper()
	budget, err := svc.Create(context.Background(), &domain.CreateBudgetRequest{
		Name:      name,
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		Lines: []domain.BudgetLineRequest{
			{
				AnalyticalAccountID: account.ID,
				Type:                domain.BudgetLineIncome,
				BudgetedAmount:      decimal.RequireFromString("10000.00"),
			},
		},
	})
	require.NoError(t, err)
	return budget
}

func TestBudgetService_Create(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := newBudgetService(db)
	ctx := context.Background()

	account := testutil.CreateTestAccount(t, db, "ACC-001")

	t.Run("budgets start in draft", func(t *testing.T) {
		budget := createTestBudget(t, svc, account, "FY2026")
		assert.Equal(t, domain.BudgetStageDraft, budget.Stage)
		require.Len(t, budget.Lines, 1)
		assert.True(t, budget.Lines[0].AchievedAmount.IsZero())
		assert.Equal(t, "2026-01-01", budget.StartDate)
		assert.Equal(t, "2026-12-31", budget.EndDate)
	})

	t.Run("end date must follow start date", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateBudgetRequest{
			Name:      "Inverted",
			StartDate: time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			Lines: []domain.BudgetLineRequest{
				{AnalyticalAccountID: account.ID, Type: domain.BudgetLineIncome, BudgetedAmount: decimal.NewFromInt(1)},
			},
		})
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("negative budgeted amount refused", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateBudgetRequest{
			Name:      "Negative",
			StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
			Lines: []domain.BudgetLineRequest{
				{AnalyticalAccountID: account.ID, Type: domain.BudgetLineExpense, BudgetedAmount: decimal.NewFromInt(-5)},
			},
		})
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("archived account refused", func(t *testing.T) {
		archived := testutil.CreateTestAccount(t, db, "ACC-OLD")
		require.NoError(t, db.Model(archived).Update("status", domain.AccountStatusArchived).Error)

		_, err := svc.Create(ctx, &domain.CreateBudgetRequest{
			Name:      "Archived account",
			StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
			Lines: []domain.BudgetLineRequest{
				{AnalyticalAccountID: archived.ID, Type: domain.BudgetLineIncome, BudgetedAmount: decimal.NewFromInt(1)},
			},
		})
		assert.ErrorIs(t, err, service.ErrValidation)
	})
}

func TestBudgetService_Revise(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := newBudgetService(db)
	ctx := context.Background()

	account := testutil.CreateTestAccount(t, db, "ACC-001")

	t.Run("draft budgets cannot be revised", func(t *testing.T) {
		budget := createTestBudget(t, svc, account, "Draft only")
		_, err := svc.Revise(ctx, budget.ID, nil)
		assert.ErrorIs(t, err, service.ErrInvalidState)
	})

	t.Run("revision clones lines and resets achieved amounts", func(t *testing.T) {
		budget := createTestBudget(t, svc, account, "FY2026")
		confirmed, err := svc.Confirm(ctx, budget.ID)
		require.NoError(t, err)

		// Give the line some progress before revising
		_, err = svc.UpdateAchieved(ctx, confirmed.Lines[0].ID, &domain.UpdateAchievedRequest{
			AchievedAmount: decimal.RequireFromString("2500.00"),
		})
		require.NoError(t, err)

		successor, err := svc.Revise(ctx, budget.ID, &domain.ReviseBudgetRequest{Name: "FY2026 rev 2"})
		require.NoError(t, err)
		assert.Equal(t, "FY2026 rev 2", successor.Name)
		assert.Equal(t, domain.BudgetStageDraft, successor.Stage)
		require.Len(t, successor.Lines, 1)
		assert.True(t, successor.Lines[0].BudgetedAmount.Equal(decimal.RequireFromString("10000.00")))
		assert.True(t, successor.Lines[0].AchievedAmount.IsZero())

		predecessor, err := svc.GetByID(ctx, budget.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.BudgetStageRevised, predecessor.Stage)
		require.NotNil(t, predecessor.RevisedBudgetID)
		assert.Equal(t, successor.ID, *predecessor.RevisedBudgetID)
	})

	t.Run("a refused stage flip leaves no successor behind", func(t *testing.T) {
		budget := createTestBudget(t, svc, account, "Never confirmed")

		var before int64
		require.NoError(t, db.Model(&domain.Budget{}).Count(&before).Error)

		// Going through the repository directly models a revision whose
		// stage precondition broke between check and write
		repo := repository.NewBudgetRepository(db)
		err := repo.Revise(ctx, budget.ID, &domain.Budget{
			Name:      "Orphan",
			StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
			Stage:     domain.BudgetStageDraft,
		})
		require.ErrorIs(t, err, repository.ErrBudgetStageChanged)

		var after int64
		require.NoError(t, db.Model(&domain.Budget{}).Count(&after).Error)
		assert.Equal(t, before, after, "rolled-back revision must not insert a successor")

		unchanged, err := svc.GetByID(ctx, budget.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.BudgetStageDraft, unchanged.Stage)
		assert.Nil(t, unchanged.RevisedBudgetID)
	})

	t.Run("empty revision name reuses the predecessor's", func(t *testing.T) {
		budget := createTestBudget(t, svc, account, "Same name")
		_, err := svc.Confirm(ctx, budget.ID)
		require.NoError(t, err)

		successor, err := svc.Revise(ctx, budget.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, "Same name", successor.Name)
	})
}

func TestBudgetService_Cancel(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := newBudgetService(db)
	ctx := context.Background()

	account := testutil.CreateTestAccount(t, db, "ACC-001")

	t.Run("live budgets can be cancelled", func(t *testing.T) {
		budget := createTestBudget(t, svc, account, "Doomed")
		cancelled, err := svc.Cancel(ctx, budget.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.BudgetStageCancelled, cancelled.Stage)

		_, err = svc.Cancel(ctx, budget.ID)
		assert.ErrorIs(t, err, service.ErrInvalidState)
	})

	t.Run("revised budgets stay revised", func(t *testing.T) {
		budget := createTestBudget(t, svc, account, "Superseded")
		_, err := svc.Confirm(ctx, budget.ID)
		require.NoError(t, err)
		_, err = svc.Revise(ctx, budget.ID, nil)
		require.NoError(t, err)

		_, err = svc.Cancel(ctx, budget.ID)
		assert.ErrorIs(t, err, service.ErrInvalidState)
	})
}

func TestBudgetService_UpdateAchieved(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := newBudgetService(db)
	ctx := context.Background()

	account := testutil.CreateTestAccount(t, db, "ACC-001")
	budget := createTestBudget(t, svc, account, "Progress")

	t.Run("achieved percent follows the update", func(t *testing.T) {
		updated, err := svc.UpdateAchieved(ctx, budget.Lines[0].ID, &domain.UpdateAchievedRequest{
			AchievedAmount: decimal.RequireFromString("2500.00"),
		})
		require.NoError(t, err)
		require.Len(t, updated.Lines, 1)
		assert.True(t, updated.Lines[0].AchievedAmount.Equal(decimal.RequireFromString("2500.00")))
		assert.InDelta(t, 25.0, updated.Lines[0].AchievedPercent, 0.001)
	})

	t.Run("negative achieved amount refused", func(t *testing.T) {
		_, err := svc.UpdateAchieved(ctx, budget.Lines[0].ID, &domain.UpdateAchievedRequest{
			AchievedAmount: decimal.NewFromInt(-1),
		})
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("cancelled budgets reject updates", func(t *testing.T) {
		_, err := svc.Cancel(ctx, budget.ID)
		require.NoError(t, err)

		_, err = svc.UpdateAchieved(ctx, budget.Lines[0].ID, &domain.UpdateAchievedRequest{
			AchievedAmount: decimal.NewFromInt(1),
		})
		assert.ErrorIs(t, err, service.ErrInvalidState)
	})
}
