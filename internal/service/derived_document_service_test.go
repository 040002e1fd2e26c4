package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oakline-furniture/trade-api/internal/domain"
	"github.com/oakline-furniture/trade-api/internal/service"
	"github.com/oakline-furniture/trade-api/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivedDocumentService_Generate(t *testing.T) {
	db := testutil.NewTestDB(t)
	stack := newTradingStack(t, db)
	ctx := context.Background()

	customer := testutil.CreateTestContact(t, db, "C-001", domain.ContactTypeCustomer)
	product := testutil.CreateTestProduct(t, db, "P-001", "60.00", "100.00")

	t.Run("only confirmed orders derive documents", func(t *testing.T) {
		order := createDraftOrder(t, stack, customer, product)

		_, err := stack.documents.Generate(ctx, order.ID, domain.DocumentStatusDraft)
		assert.ErrorIs(t, err, service.ErrInvalidState)

		_, err = stack.orders.Send(ctx, order.ID)
		require.NoError(t, err)
		_, err = stack.documents.Generate(ctx, order.ID, domain.DocumentStatusDraft)
		assert.ErrorIs(t, err, service.ErrInvalidState)
	})

	t.Run("lines are snapshots of the order", func(t *testing.T) {
		order := createDraftOrder(t, stack, customer, product)
		doc := confirmOrder(t, stack, order.ID)

		assert.Equal(t, "INV-00001", doc.Number)
		assert.Equal(t, domain.DirectionSales, doc.Direction)
		require.Len(t, doc.Lines, 1)
		assert.Equal(t, product.ID, doc.Lines[0].ProductID)
		assert.True(t, doc.Lines[0].LineTotal.Equal(decimal.RequireFromString("236.00")))
		assert.True(t, doc.Subtotal.Equal(order.Subtotal))
		assert.True(t, doc.TaxAmount.Equal(order.TaxAmount))
		assert.True(t, doc.TotalAmount.Equal(order.TotalAmount))
	})

	t.Run("invalid initial status", func(t *testing.T) {
		order := createDraftOrder(t, stack, customer, product)
		_, err := stack.documents.Generate(ctx, order.ID, domain.DocumentStatusCancelled)
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("unknown order", func(t *testing.T) {
		_, err := stack.documents.Generate(ctx, uuid.New(), domain.DocumentStatusDraft)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestDerivedDocumentService_DueDate(t *testing.T) {
	db := testutil.NewTestDB(t)
	stack := newTradingStack(t, db)
	ctx := context.Background()

	product := testutil.CreateTestProduct(t, db, "P-001", "60.00", "100.00")
	orderDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	newConfirmedDoc := func(t *testing.T, contact *domain.Contact, expectedDate *time.Time) *domain.DerivedDocumentDTO {
		t.Helper()
		order, err := stack.orders.Create(ctx, &domain.CreateOrderRequest{
			Direction:    domain.DirectionSales,
			ContactID:    contact.ID,
			OrderDate:    &orderDate,
			ExpectedDate: expectedDate,
			Lines: []domain.OrderLineRequest{
				{ProductID: product.ID, Quantity: decimal.NewFromInt(1), TaxRate: decimal.Zero},
			},
		})
		require.NoError(t, err)
		return confirmOrder(t, stack, order.ID)
	}

	t.Run("expected date wins", func(t *testing.T) {
		contact := testutil.CreateTestContact(t, db, "C-EXP", domain.ContactTypeCustomer)
		expected := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)
		doc := newConfirmedDoc(t, contact, &expected)
		assert.Equal(t, "2026-04-15", doc.DueDate)
	})

	t.Run("credit terms apply next", func(t *testing.T) {
		contact := testutil.CreateTestContact(t, db, "C-TERMS", domain.ContactTypeCustomer)
		require.NoError(t, db.Model(contact).Update("credit_terms_days", 45).Error)

		doc := newConfirmedDoc(t, contact, nil)
		assert.Equal(t, "2026-04-15", doc.DueDate, "order date plus 45 days")
	})

	t.Run("thirty days by default", func(t *testing.T) {
		contact := testutil.CreateTestContact(t, db, "C-DEF", domain.ContactTypeCustomer)
		doc := newConfirmedDoc(t, contact, nil)
		assert.Equal(t, "2026-03-31", doc.DueDate)
	})
}

func TestDerivedDocumentService_PostAndCancel(t *testing.T) {
	db := testutil.NewTestDB(t)
	stack := newTradingStack(t, db)
	ctx := context.Background()

	customer := testutil.CreateTestContact(t, db, "C-001", domain.ContactTypeCustomer)
	product := testutil.CreateTestProduct(t, db, "P-001", "60.00", "100.00")

	t.Run("post moves draft to posted once", func(t *testing.T) {
		order := createDraftOrder(t, stack, customer, product)
		doc := confirmOrder(t, stack, order.ID)

		posted, err := stack.documents.Post(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.DocumentStatusPosted, posted.Status)

		_, err = stack.documents.Post(ctx, doc.ID)
		assert.ErrorIs(t, err, service.ErrInvalidState)
	})

	t.Run("cancel blocked by recorded payments", func(t *testing.T) {
		order := createDraftOrder(t, stack, customer, product)
		doc := confirmOrder(t, stack, order.ID)

		_, err := stack.payments.Record(ctx, &domain.RecordPaymentRequest{
			DocumentID: doc.ID, Amount: decimal.NewFromInt(10),
		})
		require.NoError(t, err)

		_, err = stack.documents.Cancel(ctx, doc.ID)
		assert.ErrorIs(t, err, service.ErrConflict)

		unchanged, err := stack.documents.GetByID(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.DocumentStatusDraft, unchanged.Status)
	})

	t.Run("cancel without payments", func(t *testing.T) {
		order := createDraftOrder(t, stack, customer, product)
		doc := confirmOrder(t, stack, order.ID)

		cancelled, err := stack.documents.Cancel(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.DocumentStatusCancelled, cancelled.Status)

		_, err = stack.documents.Cancel(ctx, doc.ID)
		assert.ErrorIs(t, err, service.ErrInvalidState)
	})
}

func TestDerivedDocumentService_GenerateMissing(t *testing.T) {
	db := testutil.NewTestDB(t)
	stack := newTradingStack(t, db)
	ctx := context.Background()

	customer := testutil.CreateTestContact(t, db, "C-001", domain.ContactTypeCustomer)
	product := testutil.CreateTestProduct(t, db, "P-001", "60.00", "100.00")

	// Confirmed orders written directly, simulating generation that failed at
	// confirmation time
	var orphans []uuid.UUID
	for i := 0; i < 3; i++ {
		order := createDraftOrder(t, stack, customer, product)
		require.NoError(t, db.Model(&domain.Order{}).
			Where("id = ?", order.ID).
			Update("status", domain.OrderStatusConfirmed).Error)
		orphans = append(orphans, order.ID)
	}

	// One order with its document already in place
	withDoc := createDraftOrder(t, stack, customer, product)
	confirmOrder(t, stack, withDoc.ID)

	created, err := stack.documents.GenerateMissing(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 3, created)

	for _, id := range orphans {
		doc, err := stack.documents.GetBySourceOrder(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.DocumentStatusDraft, doc.Status)
	}

	// A second sweep finds nothing left to do
	created, err = stack.documents.GenerateMissing(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	var count int64
	require.NoError(t, db.Model(&domain.DerivedDocument{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)
}

func TestDerivedDocumentService_List(t *testing.T) {
	db := testutil.NewTestDB(t)
	stack := newTradingStack(t, db)
	ctx := context.Background()

	customer := testutil.CreateTestContact(t, db, "C-001", domain.ContactTypeCustomer)
	product := testutil.CreateTestProduct(t, db, "P-001", "60.00", "100.00")

	order := createDraftOrder(t, stack, customer, product)
	confirmOrder(t, stack, order.ID)

	docs, total, err := stack.documents.List(ctx, 1, 20, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, docs, 1)
	assert.Equal(t, order.ID, docs[0].SourceOrderID)
}
