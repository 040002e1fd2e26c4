package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oakline-furniture/trade-api/internal/domain"
	"github.com/oakline-furniture/trade-api/internal/mapper"
	"github.com/oakline-furniture/trade-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PaymentService keeps the payment ledger and the documents' running paid
// amounts in lockstep. A payment may never push paid_amount past the
// document total; the guard lives inside the repository transaction, so the
// rule holds under concurrency too.
type PaymentService struct {
	paymentRepo *repository.PaymentRepository
	docRepo     *repository.DerivedDocumentRepository
	logger      *zap.Logger
}

func NewPaymentService(
	paymentRepo *repository.PaymentRepository,
	docRepo *repository.DerivedDocumentRepository,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		docRepo:     docRepo,
		logger:      logger,
	}
}

// Record validates and persists a payment, atomically incrementing the
// document's paid amount. Invoices take incoming payments, vendor bills
// outgoing ones.
func (s *PaymentService) Record(ctx context.Context, req *domain.RecordPaymentRequest) (*domain.PaymentDTO, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrValidation)
	}

	doc, err := s.docRepo.GetByID(ctx, req.DocumentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: document %s", ErrNotFound, req.DocumentID)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	if doc.Status == domain.DocumentStatusCancelled {
		return nil, fmt.Errorf("%w: document %s is cancelled", ErrInvalidState, doc.Number)
	}

	paymentType := domain.PaymentTypeIncoming
	if doc.Direction == domain.DirectionPurchase {
		paymentType = domain.PaymentTypeOutgoing
	}

	paymentDate := time.Now().UTC().Truncate(24 * time.Hour)
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}

	payment := &domain.Payment{
		Type:        paymentType,
		ContactID:   doc.ContactID,
		DocumentID:  doc.ID,
		Amount:      req.Amount,
		PaymentDate: paymentDate,
		Method:      req.Method,
		Reference:   req.Reference,
	}

	if err := s.paymentRepo.Record(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrExceedsAmountDue) {
			return nil, fmt.Errorf("%w: payment of %s exceeds amount due on %s",
				ErrValidation, req.Amount.StringFixed(2), doc.Number)
		}
		if errors.Is(err, repository.ErrDocumentCancelled) {
			return nil, fmt.Errorf("%w: document %s is cancelled", ErrInvalidState, doc.Number)
		}
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	s.logger.Info("payment recorded",
		zap.String("paymentID", payment.ID.String()),
		zap.String("documentNumber", doc.Number),
		zap.String("amount", req.Amount.StringFixed(2)),
		zap.String("type", string(paymentType)))

	dto := mapper.ToPaymentDTO(payment)
	return &dto, nil
}

// Delete removes a payment and symmetrically gives the amount back to the
// document's amount due
func (s *PaymentService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.paymentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: payment %s", ErrNotFound, id)
		}
		return fmt.Errorf("failed to delete payment: %w", err)
	}

	s.logger.Info("payment deleted", zap.String("paymentID", id.String()))
	return nil
}

func (s *PaymentService) GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentDTO, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: payment %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	dto := mapper.ToPaymentDTO(payment)
	return &dto, nil
}

// ListByDocument returns a document's payment history oldest first
func (s *PaymentService) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.PaymentDTO, error) {
	payments, err := s.paymentRepo.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list document payments: %w", err)
	}

	dtos := make([]domain.PaymentDTO, len(payments))
	for i := range payments {
		dtos[i] = mapper.ToPaymentDTO(&payments[i])
	}

	return dtos, nil
}

func (s *PaymentService) List(ctx context.Context, page, pageSize int, filters *repository.PaymentFilters) ([]domain.PaymentDTO, int64, error) {
	payments, total, err := s.paymentRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}

	dtos := make([]domain.PaymentDTO, len(payments))
	for i := range payments {
		dtos[i] = mapper.ToPaymentDTO(&payments[i])
	}

	return dtos, total, nil
}
