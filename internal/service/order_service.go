package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oakline-furniture/trade-api/internal/domain"
	"github.com/oakline-furniture/trade-api/internal/mapper"
	"github.com/oakline-furniture/trade-api/internal/notifier"
	"github.com/oakline-furniture/trade-api/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrderService drives the order lifecycle for both directions:
//
//	DRAFT → SENT → CONFIRMED
//	DRAFT/SENT/CONFIRMED → CANCELLED (blocked once a document derives from it)
//
// Sales orders face customers and derive invoices; purchase orders face
// vendors and derive bills. The state machine is identical, so one service
// handles both.
type OrderService struct {
	orderRepo   *repository.OrderRepository
	contactRepo *repository.ContactRepository
	productRepo *repository.ProductRepository
	docRepo     *repository.DerivedDocumentRepository
	sequences   *SequenceService
	rules       *RuleService
	documents   *DerivedDocumentService
	notify      notifier.Notifier
	logger      *zap.Logger
}

func NewOrderService(
	orderRepo *repository.OrderRepository,
	contactRepo *repository.ContactRepository,
	productRepo *repository.ProductRepository,
	docRepo *repository.DerivedDocumentRepository,
	sequences *SequenceService,
	rules *RuleService,
	documents *DerivedDocumentService,
	notify notifier.Notifier,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		contactRepo: contactRepo,
		productRepo: productRepo,
		docRepo:     docRepo,
		sequences:   sequences,
		rules:       rules,
		documents:   documents,
		notify:      notify,
		logger:      logger,
	}
}

// Create validates the counterparty, prices the lines, resolves cost centers
// and persists the order in DRAFT with a fresh document number
func (s *OrderService) Create(ctx context.Context, req *domain.CreateOrderRequest) (*domain.OrderDTO, error) {
	if !req.Direction.IsValid() {
		return nil, fmt.Errorf("%w: invalid direction %q", ErrValidation, req.Direction)
	}

	contact, err := s.loadCounterparty(ctx, req.ContactID, req.Direction)
	if err != nil {
		return nil, err
	}

	orderDate := time.Now().UTC().Truncate(24 * time.Hour)
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}

	lines, subtotal, taxAmount, totalAmount, err := s.buildLines(ctx, contact, req.Direction, req.Lines)
	if err != nil {
		return nil, err
	}

	number, err := s.sequences.NextValue(ctx, domain.OrderSequenceType(req.Direction))
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		Number:       number,
		Direction:    req.Direction,
		ContactID:    contact.ID,
		OrderDate:    orderDate,
		ExpectedDate: req.ExpectedDate,
		Status:       domain.OrderStatusDraft,
		Subtotal:     subtotal,
		TaxAmount:    taxAmount,
		TotalAmount:  totalAmount,
		Notes:        req.Notes,
		Lines:        lines,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info("order created",
		zap.String("orderID", order.ID.String()),
		zap.String("number", order.Number),
		zap.String("direction", string(order.Direction)))

	return s.reload(ctx, order.ID)
}

func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*domain.OrderDTO, error) {
	return s.reload(ctx, id)
}

func (s *OrderService) List(ctx context.Context, page, pageSize int, filters *repository.OrderFilters) ([]domain.OrderDTO, int64, error) {
	orders, total, err := s.orderRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	dtos := make([]domain.OrderDTO, len(orders))
	for i := range orders {
		dtos[i] = mapper.ToOrderDTO(&orders[i])
	}

	return dtos, total, nil
}

// UpdateLines replaces the full line set of a DRAFT order. Delete, insert
// and header totals land in one transaction so no reader ever observes a
// torn line set.
func (s *OrderService) UpdateLines(ctx context.Context, id uuid.UUID, req *domain.UpdateOrderLinesRequest) (*domain.OrderDTO, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.Status != domain.OrderStatusDraft {
		return nil, fmt.Errorf("%w: lines can only change while the order is draft, current status %s", ErrInvalidState, order.Status)
	}

	contact, err := s.loadCounterparty(ctx, order.ContactID, order.Direction)
	if err != nil {
		return nil, err
	}

	lines, subtotal, taxAmount, totalAmount, err := s.buildLines(ctx, contact, order.Direction, req.Lines)
	if err != nil {
		return nil, err
	}

	order.Subtotal = subtotal
	order.TaxAmount = taxAmount
	order.TotalAmount = totalAmount

	if err := s.orderRepo.ReplaceLines(ctx, order, lines); err != nil {
		return nil, fmt.Errorf("failed to replace order lines: %w", err)
	}

	return s.reload(ctx, id)
}

// Send moves DRAFT → SENT and notifies the counterparty. Notification
// failure is logged and never rolls the transition back.
func (s *OrderService) Send(ctx context.Context, id uuid.UUID) (*domain.OrderDTO, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.Status != domain.OrderStatusDraft {
		return nil, fmt.Errorf("%w: only draft orders can be sent, current status %s", ErrInvalidState, order.Status)
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, domain.OrderStatusSent); err != nil {
		return nil, fmt.Errorf("failed to send order: %w", err)
	}

	if order.Contact != nil && order.Contact.Email != "" {
		subject := fmt.Sprintf("Order %s", order.Number)
		body := fmt.Sprintf("Order %s dated %s for a total of %s is ready for your review.",
			order.Number, order.OrderDate.Format("2006-01-02"), order.TotalAmount.StringFixed(2))
		if err := s.notify.Notify(ctx, order.Contact.Email, subject, body); err != nil {
			s.logger.Warn("order notification failed",
				zap.String("orderID", id.String()),
				zap.String("recipient", order.Contact.Email),
				zap.Error(err))
		}
	}

	return s.reload(ctx, id)
}

// Confirm moves SENT → CONFIRMED and triggers derived-document generation.
// Generation failure is logged, not propagated: the confirmation stands and
// the retry sweep picks the order up later.
func (s *OrderService) Confirm(ctx context.Context, id uuid.UUID, req *domain.ConfirmOrderRequest) (*domain.OrderDTO, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.Status != domain.OrderStatusSent {
		return nil, fmt.Errorf("%w: only sent orders can be confirmed, current status %s", ErrInvalidState, order.Status)
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, domain.OrderStatusConfirmed); err != nil {
		return nil, fmt.Errorf("failed to confirm order: %w", err)
	}

	initialStatus := domain.DocumentStatusDraft
	if req != nil && req.DocumentStatus != nil {
		initialStatus = *req.DocumentStatus
	}

	if _, err := s.documents.Generate(ctx, id, initialStatus); err != nil {
		s.logger.Error("derived document generation failed, will be retried",
			zap.String("orderID", id.String()),
			zap.String("number", order.Number),
			zap.Error(err))
	}

	return s.reload(ctx, id)
}

// Cancel is permitted from any live status as long as no document derives
// from the order
func (s *OrderService) Cancel(ctx context.Context, id uuid.UUID) (*domain.OrderDTO, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.Status == domain.OrderStatusCancelled {
		return nil, fmt.Errorf("%w: order is already cancelled", ErrInvalidState)
	}

	_, err = s.docRepo.GetBySourceOrder(ctx, id)
	if err == nil {
		return nil, fmt.Errorf("%w: order %s has a derived document and cannot be cancelled", ErrConflict, order.Number)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check derived documents: %w", err)
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, domain.OrderStatusCancelled); err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	return s.reload(ctx, id)
}

func (s *OrderService) getOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

func (s *OrderService) reload(ctx context.Context, id uuid.UUID) (*domain.OrderDTO, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToOrderDTO(order)
	return &dto, nil
}

// loadCounterparty checks the contact exists, is active and fits the order
// direction: sales orders need customers, purchase orders need vendors
func (s *OrderService) loadCounterparty(ctx context.Context, contactID uuid.UUID, direction domain.OrderDirection) (*domain.Contact, error) {
	contact, err := s.contactRepo.GetByID(ctx, contactID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: contact %s", ErrNotFound, contactID)
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	if !contact.IsActive {
		return nil, fmt.Errorf("%w: contact %s is archived", ErrValidation, contact.Code)
	}
	if direction == domain.DirectionSales && !contact.IsCustomer() {
		return nil, fmt.Errorf("%w: contact %s is not a customer", ErrValidation, contact.Code)
	}
	if direction == domain.DirectionPurchase && !contact.IsVendor() {
		return nil, fmt.Errorf("%w: contact %s is not a vendor", ErrValidation, contact.Code)
	}

	return contact, nil
}

// buildLines prices each requested line, resolves its cost center and
// computes line and header amounts. Tax is rounded half-up once per line;
// the header totals are exact sums of the rounded line values.
func (s *OrderService) buildLines(ctx context.Context, contact *domain.Contact, direction domain.OrderDirection, reqs []domain.OrderLineRequest) ([]domain.OrderLine, decimal.Decimal, decimal.Decimal, decimal.Decimal, error) {
	var zero decimal.Decimal
	lines := make([]domain.OrderLine, 0, len(reqs))
	subtotal := decimal.Zero
	taxTotal := decimal.Zero
	grandTotal := decimal.Zero

	for i, req := range reqs {
		if !req.Quantity.IsPositive() {
			return nil, zero, zero, zero, fmt.Errorf("%w: line %d quantity must be positive", ErrValidation, i+1)
		}
		if req.TaxRate.IsNegative() {
			return nil, zero, zero, zero, fmt.Errorf("%w: line %d tax rate must not be negative", ErrValidation, i+1)
		}

		product, err := s.productRepo.GetByID(ctx, req.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, zero, zero, zero, fmt.Errorf("%w: product %s", ErrNotFound, req.ProductID)
			}
			return nil, zero, zero, zero, fmt.Errorf("failed to get product: %w", err)
		}
		if !product.IsActive {
			return nil, zero, zero, zero, fmt.Errorf("%w: product %s is archived", ErrValidation, product.Code)
		}

		unitPrice := product.SalePrice
		if direction == domain.DirectionPurchase {
			unitPrice = product.PurchasePrice
		}
		if req.UnitPrice != nil {
			if req.UnitPrice.IsNegative() {
				return nil, zero, zero, zero, fmt.Errorf("%w: line %d unit price must not be negative", ErrValidation, i+1)
			}
			unitPrice = *req.UnitPrice
		}

		description := req.Description
		if description == "" {
			description = product.Name
		}

		accountID, err := s.rules.ResolveForLine(ctx, contact, product, req.AnalyticalAccountID)
		if err != nil {
			return nil, zero, zero, zero, err
		}

		line := domain.OrderLine{
			ProductID:           product.ID,
			Description:         description,
			Quantity:            req.Quantity,
			UnitPrice:           unitPrice,
			TaxRate:             req.TaxRate,
			AnalyticalAccountID: accountID,
			Position:            i,
		}
		line.ComputeAmounts()

		net := line.LineTotal.Sub(line.TaxAmount)
		subtotal = subtotal.Add(net)
		taxTotal = taxTotal.Add(line.TaxAmount)
		grandTotal = grandTotal.Add(line.LineTotal)

		lines = append(lines, line)
	}

	return lines, subtotal, taxTotal, grandTotal, nil
}
