package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/oakline-furniture/trade-api/internal/domain"
	"github.com/oakline-furniture/trade-api/internal/service"
	"github.com/oakline-furniture/trade-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// confirmRule creates a rule and moves it into the candidate pool
func confirmRule(t *testing.T, stack *tradingStack, req *domain.CreateRuleRequest) *domain.RuleDTO {
	t.Helper()
	ctx := context.Background()

	rule, err := stack.rules.Create(ctx, req)
	require.NoError(t, err)
	confirmed, err := stack.rules.Confirm(ctx, rule.ID)
	require.NoError(t, err)
	return confirmed
}

func strPtr(s string) *string { return &s }

func TestRuleService_Create(t *testing.T) {
	db := testutil.NewTestDB(t)
	stack := newTradingStack(t, db)
	ctx := context.Background()

	account := testutil.CreateTestAccount(t, db, "ACC-001")

	t.Run("rules start as draft", func(t *testing.T) {
		rule, err := stack.rules.Create(ctx, &domain.CreateRuleRequest{
			Name:                "Seating to ACC-001",
			ProductCategory:     strPtr(string(domain.DefaultCategorySeating)),
			AnalyticalAccountID: account.ID,
			AutoApply:           true,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.RuleStatusDraft, rule.RuleStatus)
		assert.Equal(t, 1, rule.Specificity)
	})

	t.Run("at least one match field required", func(t *testing.T) {
		_, err := stack.rules.Create(ctx, &domain.CreateRuleRequest{
			Name:                "Matches nothing",
			AnalyticalAccountID: account.ID,
		})
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("archived target account rejected", func(t *testing.T) {
		archived := testutil.CreateTestAccount(t, db, "ACC-OLD")
		require.NoError(t, db.Model(archived).Update("status", domain.AccountStatusArchived).Error)

		_, err := stack.rules.Create(ctx, &domain.CreateRuleRequest{
			Name:                "Points at archive",
			ProductCategory:     strPtr("tables"),
			AnalyticalAccountID: archived.ID,
		})
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("unknown target account", func(t *testing.T) {
		_, err := stack.rules.Create(ctx, &domain.CreateRuleRequest{
			Name:                "Points nowhere",
			ProductCategory:     strPtr("tables"),
			AnalyticalAccountID: uuid.New(),
		})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestRuleService_Resolve(t *testing.T) {
	db := testutil.NewTestDB(t)
	stack := newTradingStack(t, db)
	ctx := context.Background()

	contact := testutil.CreateTestContact(t, db, "C-001", domain.ContactTypeCustomer, "wholesale")
	product := testutil.CreateTestProduct(t, db, "P-001", "60.00", "100.00") // default category seating
	accountA := testutil.CreateTestAccount(t, db, "ACC-A")
	accountB := testutil.CreateTestAccount(t, db, "ACC-B")
	accountC := testutil.CreateTestAccount(t, db, "ACC-C")

	t.Run("no rules, no product default resolves to nil", func(t *testing.T) {
		resp, err := stack.rules.Resolve(ctx, &domain.ResolveAccountRequest{
			ContactID: contact.ID,
			ProductID: product.ID,
		})
		require.NoError(t, err)
		assert.Nil(t, resp.AnalyticalAccountID)
	})

	t.Run("explicit account always wins", func(t *testing.T) {
		explicit := accountC.ID
		resp, err := stack.rules.Resolve(ctx, &domain.ResolveAccountRequest{
			ContactID:           contact.ID,
			ProductID:           product.ID,
			AnalyticalAccountID: &explicit,
		})
		require.NoError(t, err)
		require.NotNil(t, resp.AnalyticalAccountID)
		assert.Equal(t, accountC.ID, *resp.AnalyticalAccountID)
	})

	t.Run("the most specific matching rule wins", func(t *testing.T) {
		// One field: partner tag
		confirmRule(t, stack, &domain.CreateRuleRequest{
			Name:                "Wholesale",
			PartnerTag:          strPtr("wholesale"),
			AnalyticalAccountID: accountA.ID,
			AutoApply:           true,
		})
		// Two fields: partner tag and category
		confirmRule(t, stack, &domain.CreateRuleRequest{
			Name:                "Wholesale seating",
			PartnerTag:          strPtr("wholesale"),
			ProductCategory:     strPtr(string(domain.DefaultCategorySeating)),
			AnalyticalAccountID: accountB.ID,
			AutoApply:           true,
		})

		resp, err := stack.rules.Resolve(ctx, &domain.ResolveAccountRequest{
			ContactID: contact.ID,
			ProductID: product.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, resp.AnalyticalAccountID)
		assert.Equal(t, accountB.ID, *resp.AnalyticalAccountID)
	})

	t.Run("resolution is deterministic", func(t *testing.T) {
		first, err := stack.rules.Resolve(ctx, &domain.ResolveAccountRequest{
			ContactID: contact.ID,
			ProductID: product.ID,
		})
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			again, err := stack.rules.Resolve(ctx, &domain.ResolveAccountRequest{
				ContactID: contact.ID,
				ProductID: product.ID,
			})
			require.NoError(t, err)
			assert.Equal(t, first.AnalyticalAccountID, again.AnalyticalAccountID)
		}
	})

	t.Run("cancelled rules leave the candidate pool", func(t *testing.T) {
		rules, err := stack.rules.List(ctx, nil)
		require.NoError(t, err)
		for _, r := range rules {
			_, err := stack.rules.Cancel(ctx, r.ID)
			require.NoError(t, err)
		}

		resp, err := stack.rules.Resolve(ctx, &domain.ResolveAccountRequest{
			ContactID: contact.ID,
			ProductID: product.ID,
		})
		require.NoError(t, err)
		assert.Nil(t, resp.AnalyticalAccountID)
	})
}

func TestRuleService_ResolveFallbacks(t *testing.T) {
	db := testutil.NewTestDB(t)
	stack := newTradingStack(t, db)
	ctx := context.Background()

	contact := testutil.CreateTestContact(t, db, "C-001", domain.ContactTypeCustomer)
	account := testutil.CreateTestAccount(t, db, "ACC-DEF")
	fallbackAcct := testutil.CreateTestAccount(t, db, "ACC-FB")

	product := testutil.CreateTestProduct(t, db, "P-001", "60.00", "100.00")
	require.NoError(t, db.Model(product).Update("analytical_account_id", fallbackAcct.ID).Error)

	t.Run("product default applies when no rule matches", func(t *testing.T) {
		resp, err := stack.rules.Resolve(ctx, &domain.ResolveAccountRequest{
			ContactID: contact.ID,
			ProductID: product.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, resp.AnalyticalAccountID)
		assert.Equal(t, fallbackAcct.ID, *resp.AnalyticalAccountID)
	})

	t.Run("draft rules never match", func(t *testing.T) {
		_, err := stack.rules.Create(ctx, &domain.CreateRuleRequest{
			Name:                "Draft rule",
			PartnerID:           &contact.ID,
			AnalyticalAccountID: account.ID,
			AutoApply:           true,
		})
		require.NoError(t, err)

		resp, err := stack.rules.Resolve(ctx, &domain.ResolveAccountRequest{
			ContactID: contact.ID,
			ProductID: product.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, resp.AnalyticalAccountID)
		assert.Equal(t, fallbackAcct.ID, *resp.AnalyticalAccountID, "draft rules stay out of resolution")
	})

	t.Run("confirmed rules without auto-apply never match", func(t *testing.T) {
		confirmRule(t, stack, &domain.CreateRuleRequest{
			Name:                "Manual only",
			PartnerID:           &contact.ID,
			AnalyticalAccountID: account.ID,
			AutoApply:           false,
		})

		resp, err := stack.rules.Resolve(ctx, &domain.ResolveAccountRequest{
			ContactID: contact.ID,
			ProductID: product.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, resp.AnalyticalAccountID)
		assert.Equal(t, fallbackAcct.ID, *resp.AnalyticalAccountID)
	})

	t.Run("rules pointing at archived accounts leave the pool", func(t *testing.T) {
		target := testutil.CreateTestAccount(t, db, "ACC-ARCH")
		confirmRule(t, stack, &domain.CreateRuleRequest{
			Name:                "Archived target",
			PartnerID:           &contact.ID,
			AnalyticalAccountID: target.ID,
			AutoApply:           true,
		})

		resp, err := stack.rules.Resolve(ctx, &domain.ResolveAccountRequest{
			ContactID: contact.ID,
			ProductID: product.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, resp.AnalyticalAccountID)
		assert.Equal(t, target.ID, *resp.AnalyticalAccountID)

		require.NoError(t, db.Model(target).Update("status", domain.AccountStatusArchived).Error)

		resp, err = stack.rules.Resolve(ctx, &domain.ResolveAccountRequest{
			ContactID: contact.ID,
			ProductID: product.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, resp.AnalyticalAccountID)
		assert.Equal(t, fallbackAcct.ID, *resp.AnalyticalAccountID)
	})

	t.Run("order lines pick up the resolved account", func(t *testing.T) {
		order := createDraftOrder(t, stack, contact, product)
		require.Len(t, order.Lines, 1)
		require.NotNil(t, order.Lines[0].AnalyticalAccountID)
		assert.Equal(t, fallbackAcct.ID, *order.Lines[0].AnalyticalAccountID)
	})
}

func TestRuleService_Lifecycle(t *testing.T) {
	db := testutil.NewTestDB(t)
	stack := newTradingStack(t, db)
	ctx := context.Background()

	account := testutil.CreateTestAccount(t, db, "ACC-001")

	rule, err := stack.rules.Create(ctx, &domain.CreateRuleRequest{
		Name:                "Lifecycle",
		ProductCategory:     strPtr("tables"),
		AnalyticalAccountID: account.ID,
	})
	require.NoError(t, err)

	t.Run("confirm requires draft", func(t *testing.T) {
		confirmed, err := stack.rules.Confirm(ctx, rule.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RuleStatusConfirm, confirmed.RuleStatus)

		_, err = stack.rules.Confirm(ctx, rule.ID)
		assert.ErrorIs(t, err, service.ErrInvalidState)
	})

	t.Run("cancel is terminal", func(t *testing.T) {
		cancelled, err := stack.rules.Cancel(ctx, rule.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RuleStatusCancelled, cancelled.RuleStatus)

		_, err = stack.rules.Cancel(ctx, rule.ID)
		assert.ErrorIs(t, err, service.ErrInvalidState)

		_, err = stack.rules.Confirm(ctx, rule.ID)
		assert.ErrorIs(t, err, service.ErrInvalidState)
	})
}
