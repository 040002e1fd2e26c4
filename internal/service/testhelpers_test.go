package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/oakline-furniture/trade-api/internal/domain"
	"github.com/oakline-furniture/trade-api/internal/notifier"
	"github.com/oakline-furniture/trade-api/internal/repository"
	"github.com/oakline-furniture/trade-api/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// tradingStack bundles the services most lifecycle tests need
type tradingStack struct {
	orders    *service.OrderService
	documents *service.DerivedDocumentService
	payments  *service.PaymentService
	rules     *service.RuleService
	sequences *service.SequenceService
}

func newTradingStack(t *testing.T, db *gorm.DB) *tradingStack {
	t.Helper()
	log := zap.NewNop()

	contactRepo := repository.NewContactRepository(db)
	productRepo := repository.NewProductRepository(db)
	accountRepo := repository.NewAnalyticalAccountRepository(db)
	ruleRepo := repository.NewRuleRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	docRepo := repository.NewDerivedDocumentRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	seqRepo := repository.NewSequenceRepository(db)

	sequences := service.NewSequenceService(seqRepo, log)
	rules := service.NewRuleService(ruleRepo, accountRepo, contactRepo, productRepo, log)
	documents := service.NewDerivedDocumentService(docRepo, orderRepo, contactRepo, paymentRepo, sequences, log)
	payments := service.NewPaymentService(paymentRepo, docRepo, log)
	orders := service.NewOrderService(
		orderRepo, contactRepo, productRepo, docRepo,
		sequences, rules, documents, notifier.NewLogNotifier(log), log,
	)

	return &tradingStack{
		orders:    orders,
		documents: documents,
		payments:  payments,
		rules:     rules,
		sequences: sequences,
	}
}

// createDraftOrder creates a sales order with one line: qty 2 of the product
// at its sale price with 18% tax
func createDraftOrder(t *testing.T, stack *tradingStack, contact *domain.Contact, product *domain.Product) *domain.OrderDTO {
	t.Helper()

	order, err := stack.orders.Create(context.Background(), &domain.CreateOrderRequest{
		Direction: domain.DirectionSales,
		ContactID: contact.ID,
		Lines: []domain.OrderLineRequest{
			{
				ProductID: product.ID,
				Quantity:  decimal.NewFromInt(2),
				TaxRate:   decimal.NewFromInt(18),
			},
		},
	})
	require.NoError(t, err)
	return order
}

// confirmOrder walks an order through send and confirm, returning the derived
// document
func confirmOrder(t *testing.T, stack *tradingStack, orderID uuid.UUID) *domain.DerivedDocumentDTO {
	t.Helper()
	ctx := context.Background()

	_, err := stack.orders.Send(ctx, orderID)
	require.NoError(t, err)
	_, err = stack.orders.Confirm(ctx, orderID, nil)
	require.NoError(t, err)

	doc, err := stack.documents.GetBySourceOrder(ctx, orderID)
	require.NoError(t, err)
	return doc
}
