package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/oakline-furniture/trade-api/internal/domain"
	"github.com/oakline-furniture/trade-api/internal/repository"
	"github.com/oakline-furniture/trade-api/internal/service"
	"github.com/oakline-furniture/trade-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newAccountService(db *gorm.DB) *service.AnalyticalAccountService {
	return service.NewAnalyticalAccountService(repository.NewAnalyticalAccountRepository(db), zap.NewNop())
}

func TestAnalyticalAccountService_Create(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := newAccountService(db)
	ctx := context.Background()

	t.Run("accounts are confirmed on creation", func(t *testing.T) {
		account, err := svc.Create(ctx, &domain.CreateAnalyticalAccountRequest{
			Code: "SALES", Name: "Sales",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.AccountStatusConfirmed, account.Status)
		assert.Nil(t, account.ParentID)
	})

	t.Run("with a parent", func(t *testing.T) {
		parent, err := svc.Create(ctx, &domain.CreateAnalyticalAccountRequest{
			Code: "OPS", Name: "Operations",
		})
		require.NoError(t, err)

		child, err := svc.Create(ctx, &domain.CreateAnalyticalAccountRequest{
			Code: "OPS-WH", Name: "Warehouse", ParentID: &parent.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, child.ParentID)
		assert.Equal(t, parent.ID, *child.ParentID)

		children, err := svc.ListChildren(ctx, parent.ID)
		require.NoError(t, err)
		require.Len(t, children, 1)
		assert.Equal(t, "OPS-WH", children[0].Code)
	})

	t.Run("archived parent refused", func(t *testing.T) {
		archived := testutil.CreateTestAccount(t, db, "OLD")
		require.NoError(t, db.Model(archived).Update("status", domain.AccountStatusArchived).Error)

		_, err := svc.Create(ctx, &domain.CreateAnalyticalAccountRequest{
			Code: "OLD-SUB", Name: "Child of archive", ParentID: &archived.ID,
		})
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("unknown parent", func(t *testing.T) {
		missing := uuid.New()
		_, err := svc.Create(ctx, &domain.CreateAnalyticalAccountRequest{
			Code: "ORPHAN", Name: "Orphan", ParentID: &missing,
		})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("duplicate code", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateAnalyticalAccountRequest{
			Code: "SALES", Name: "Sales again",
		})
		assert.ErrorIs(t, err, service.ErrConflict)
	})
}

func TestAnalyticalAccountService_Archive(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := newAccountService(db)
	ctx := context.Background()

	parent, err := svc.Create(ctx, &domain.CreateAnalyticalAccountRequest{
		Code: "ROOT", Name: "Root",
	})
	require.NoError(t, err)
	child, err := svc.Create(ctx, &domain.CreateAnalyticalAccountRequest{
		Code: "ROOT-A", Name: "Branch", ParentID: &parent.ID,
	})
	require.NoError(t, err)

	t.Run("blocked while children are active", func(t *testing.T) {
		assert.ErrorIs(t, svc.Archive(ctx, parent.ID), service.ErrConflict)
	})

	t.Run("allowed once children are archived", func(t *testing.T) {
		require.NoError(t, svc.Archive(ctx, child.ID))
		require.NoError(t, svc.Archive(ctx, parent.ID))

		archived, err := svc.GetByID(ctx, parent.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.AccountStatusArchived, archived.Status)
	})

	t.Run("archiving twice fails", func(t *testing.T) {
		assert.ErrorIs(t, svc.Archive(ctx, parent.ID), service.ErrInvalidState)
	})

	t.Run("status filter on listing", func(t *testing.T) {
		confirmed := domain.AccountStatusConfirmed
		accounts, err := svc.List(ctx, &confirmed)
		require.NoError(t, err)
		assert.Empty(t, accounts)

		all, err := svc.List(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}
