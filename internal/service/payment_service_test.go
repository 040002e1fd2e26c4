package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oakline-furniture/trade-api/internal/domain"
	"github.com/oakline-furniture/trade-api/internal/repository"
	"github.com/oakline-furniture/trade-api/internal/service"
	"github.com/oakline-furniture/trade-api/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupInvoice(t *testing.T, db *gorm.DB, stack *tradingStack) *domain.DerivedDocumentDTO {
	t.Helper()
	customer := testutil.CreateTestContact(t, db, "C-"+uuid.NewString()[:8], domain.ContactTypeCustomer)
	product := testutil.CreateTestProduct(t, db, "P-"+uuid.NewString()[:8], "60.00", "100.00")
	order := createDraftOrder(t, stack, customer, product)
	return confirmOrder(t, stack, order.ID)
}

func TestPaymentService_Record(t *testing.T) {
	db := testutil.NewTestDB(t)
	stack := newTradingStack(t, db)
	ctx := context.Background()

	t.Run("partial payments accumulate up to the total", func(t *testing.T) {
		doc := setupInvoice(t, db, stack) // total 236.00

		_, err := stack.payments.Record(ctx, &domain.RecordPaymentRequest{
			DocumentID: doc.ID, Amount: decimal.RequireFromString("100.00"),
		})
		require.NoError(t, err)

		partial, err := stack.documents.GetByID(ctx, doc.ID)
		require.NoError(t, err)
		assert.True(t, partial.PaidAmount.Equal(decimal.RequireFromString("100.00")))
		assert.Equal(t, domain.PaymentDisplayPartial, partial.PaymentStatus)

		_, err = stack.payments.Record(ctx, &domain.RecordPaymentRequest{
			DocumentID: doc.ID, Amount: decimal.RequireFromString("136.00"),
		})
		require.NoError(t, err)

		paid, err := stack.documents.GetByID(ctx, doc.ID)
		require.NoError(t, err)
		assert.True(t, paid.PaidAmount.Equal(paid.TotalAmount))
		assert.Equal(t, domain.PaymentDisplayPaid, paid.PaymentStatus)
	})

	t.Run("payment above the amount due is refused", func(t *testing.T) {
		doc := setupInvoice(t, db, stack)

		_, err := stack.payments.Record(ctx, &domain.RecordPaymentRequest{
			DocumentID: doc.ID, Amount: decimal.RequireFromString("236.01"),
		})
		assert.ErrorIs(t, err, service.ErrValidation)

		unchanged, err := stack.documents.GetByID(ctx, doc.ID)
		require.NoError(t, err)
		assert.True(t, unchanged.PaidAmount.IsZero(), "rejected payment must not move the running total")

		payments, err := stack.payments.ListByDocument(ctx, doc.ID)
		require.NoError(t, err)
		assert.Empty(t, payments, "rejected payment must not reach the ledger")
	})

	t.Run("non-positive amounts are refused", func(t *testing.T) {
		doc := setupInvoice(t, db, stack)

		_, err := stack.payments.Record(ctx, &domain.RecordPaymentRequest{
			DocumentID: doc.ID, Amount: decimal.Zero,
		})
		assert.ErrorIs(t, err, service.ErrValidation)

		_, err = stack.payments.Record(ctx, &domain.RecordPaymentRequest{
			DocumentID: doc.ID, Amount: decimal.NewFromInt(-10),
		})
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("cancelled documents take no payments", func(t *testing.T) {
		doc := setupInvoice(t, db, stack)
		_, err := stack.documents.Cancel(ctx, doc.ID)
		require.NoError(t, err)

		_, err = stack.payments.Record(ctx, &domain.RecordPaymentRequest{
			DocumentID: doc.ID, Amount: decimal.NewFromInt(10),
		})
		assert.ErrorIs(t, err, service.ErrInvalidState)
	})

	t.Run("a cancel landing after the status check still blocks the payment", func(t *testing.T) {
		doc := setupInvoice(t, db, stack)

		// Flip the status underneath the repository, modelling a cancel that
		// wins the race against an in-flight payment
		require.NoError(t, db.Model(&domain.DerivedDocument{}).
			Where("id = ?", doc.ID).
			Update("status", domain.DocumentStatusCancelled).Error)

		repo := repository.NewPaymentRepository(db)
		err := repo.Record(ctx, &domain.Payment{
			Type:        domain.PaymentTypeIncoming,
			ContactID:   doc.ContactID,
			DocumentID:  doc.ID,
			Amount:      decimal.NewFromInt(10),
			PaymentDate: time.Now().UTC(),
		})
		require.ErrorIs(t, err, repository.ErrDocumentCancelled)

		unchanged, err := stack.documents.GetByID(ctx, doc.ID)
		require.NoError(t, err)
		assert.True(t, unchanged.PaidAmount.IsZero())

		payments, err := stack.payments.ListByDocument(ctx, doc.ID)
		require.NoError(t, err)
		assert.Empty(t, payments)
	})

	t.Run("unknown document", func(t *testing.T) {
		_, err := stack.payments.Record(ctx, &domain.RecordPaymentRequest{
			DocumentID: uuid.New(), Amount: decimal.NewFromInt(10),
		})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestPaymentService_Delete(t *testing.T) {
	db := testutil.NewTestDB(t)
	stack := newTradingStack(t, db)
	ctx := context.Background()

	t.Run("deleting a payment restores the amount due", func(t *testing.T) {
		doc := setupInvoice(t, db, stack)

		payment, err := stack.payments.Record(ctx, &domain.RecordPaymentRequest{
			DocumentID: doc.ID, Amount: decimal.RequireFromString("236.00"),
		})
		require.NoError(t, err)

		require.NoError(t, stack.payments.Delete(ctx, payment.ID))

		restored, err := stack.documents.GetByID(ctx, doc.ID)
		require.NoError(t, err)
		assert.True(t, restored.PaidAmount.IsZero())
		assert.Equal(t, domain.PaymentDisplayNotPaid, restored.PaymentStatus)

		// The freed capacity is usable again
		_, err = stack.payments.Record(ctx, &domain.RecordPaymentRequest{
			DocumentID: doc.ID, Amount: decimal.RequireFromString("236.00"),
		})
		assert.NoError(t, err)
	})

	t.Run("unknown payment", func(t *testing.T) {
		err := stack.payments.Delete(ctx, uuid.New())
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestPaymentService_List(t *testing.T) {
	db := testutil.NewTestDB(t)
	stack := newTradingStack(t, db)
	ctx := context.Background()

	doc := setupInvoice(t, db, stack)
	for _, amount := range []string{"50.00", "30.00"} {
		_, err := stack.payments.Record(ctx, &domain.RecordPaymentRequest{
			DocumentID: doc.ID, Amount: decimal.RequireFromString(amount),
		})
		require.NoError(t, err)
	}

	t.Run("by document, oldest first", func(t *testing.T) {
		payments, err := stack.payments.ListByDocument(ctx, doc.ID)
		require.NoError(t, err)
		require.Len(t, payments, 2)
		assert.True(t, payments[0].Amount.Equal(decimal.RequireFromString("50.00")))
	})

	t.Run("filter by type", func(t *testing.T) {
		incoming := domain.PaymentTypeIncoming
		payments, total, err := stack.payments.List(ctx, 1, 20, &repository.PaymentFilters{Type: &incoming})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, payments, 2)

		outgoing := domain.PaymentTypeOutgoing
		_, total, err = stack.payments.List(ctx, 1, 20, &repository.PaymentFilters{Type: &outgoing})
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})
}
