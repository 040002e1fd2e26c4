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

// defaultDueDays applies when neither the order's expected date nor the
// contact's credit terms give a due date
const defaultDueDays = 30

// DerivedDocumentService generates and manages the invoice or vendor bill
// created from a confirmed order.
//
// Generation is idempotent: the existence check is an optimization, the
// unique index on source_order_id is the guarantee. Losing the insert race
// returns the winner's document, never an error.
type DerivedDocumentService struct {
	docRepo     *repository.DerivedDocumentRepository
	orderRepo   *repository.OrderRepository
	contactRepo *repository.ContactRepository
	paymentRepo *repository.PaymentRepository
	sequences   *SequenceService
	logger      *zap.Logger
}

func NewDerivedDocumentService(
	docRepo *repository.DerivedDocumentRepository,
	orderRepo *repository.OrderRepository,
	contactRepo *repository.ContactRepository,
	paymentRepo *repository.PaymentRepository,
	sequences *SequenceService,
	logger *zap.Logger,
) *DerivedDocumentService {
	return &DerivedDocumentService{
		docRepo:     docRepo,
		orderRepo:   orderRepo,
		contactRepo: contactRepo,
		paymentRepo: paymentRepo,
		sequences:   sequences,
		logger:      logger,
	}
}

// Generate creates the derived document for a confirmed order, or returns
// the existing one. Lines are deep copies: later order edits never change an
// issued document.
func (s *DerivedDocumentService) Generate(ctx context.Context, orderID uuid.UUID, initialStatus domain.DocumentStatus) (*domain.DerivedDocumentDTO, error) {
	if initialStatus == "" {
		initialStatus = domain.DocumentStatusDraft
	}
	if initialStatus != domain.DocumentStatusDraft && initialStatus != domain.DocumentStatusPosted {
		return nil, fmt.Errorf("%w: initial document status must be draft or posted", ErrValidation)
	}

	existing, err := s.docRepo.GetBySourceOrder(ctx, orderID)
	if err == nil {
		dto := mapper.ToDerivedDocumentDTO(existing)
		return &dto, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check for existing document: %w", err)
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order.Status != domain.OrderStatusConfirmed {
		return nil, fmt.Errorf("%w: only confirmed orders derive documents, current status %s", ErrInvalidState, order.Status)
	}

	number, err := s.sequences.NextValue(ctx, domain.DocumentSequenceType(order.Direction))
	if err != nil {
		return nil, err
	}

	dueDate := order.OrderDate.AddDate(0, 0, s.dueDays(order.Contact))
	if order.ExpectedDate != nil {
		dueDate = *order.ExpectedDate
	}

	doc := &domain.DerivedDocument{
		Number:        number,
		Direction:     order.Direction,
		SourceOrderID: order.ID,
		ContactID:     order.ContactID,
		Status:        initialStatus,
		IssueDate:     order.OrderDate,
		DueDate:       dueDate,
		Subtotal:      order.Subtotal,
		TaxAmount:     order.TaxAmount,
		TotalAmount:   order.TotalAmount,
		Lines:         make([]domain.DerivedDocumentLine, len(order.Lines)),
	}
	for i := range order.Lines {
		src := &order.Lines[i]
		doc.Lines[i] = domain.DerivedDocumentLine{
			ProductID:           src.ProductID,
			Description:         src.Description,
			Quantity:            src.Quantity,
			UnitPrice:           src.UnitPrice,
			TaxRate:             src.TaxRate,
			TaxAmount:           src.TaxAmount,
			LineTotal:           src.LineTotal,
			AnalyticalAccountID: src.AnalyticalAccountID,
			Position:            src.Position,
		}
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		// Lost the race against a concurrent confirmation: the unique index
		// on source_order_id held, return the winner's document
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			winner, getErr := s.docRepo.GetBySourceOrder(ctx, orderID)
			if getErr != nil {
				return nil, fmt.Errorf("failed to load concurrently created document: %w", getErr)
			}
			dto := mapper.ToDerivedDocumentDTO(winner)
			return &dto, nil
		}
		return nil, fmt.Errorf("failed to create derived document: %w", err)
	}

	s.logger.Info("derived document generated",
		zap.String("documentID", doc.ID.String()),
		zap.String("number", doc.Number),
		zap.String("orderID", orderID.String()),
		zap.String("direction", string(doc.Direction)))

	return s.reload(ctx, doc.ID)
}

func (s *DerivedDocumentService) GetByID(ctx context.Context, id uuid.UUID) (*domain.DerivedDocumentDTO, error) {
	return s.reload(ctx, id)
}

// GetBySourceOrder returns the document generated from an order
func (s *DerivedDocumentService) GetBySourceOrder(ctx context.Context, orderID uuid.UUID) (*domain.DerivedDocumentDTO, error) {
	doc, err := s.docRepo.GetBySourceOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no document derived from order %s", ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("failed to get derived document: %w", err)
	}
	dto := mapper.ToDerivedDocumentDTO(doc)
	return &dto, nil
}

func (s *DerivedDocumentService) List(ctx context.Context, page, pageSize int, filters *repository.DocumentFilters) ([]domain.DerivedDocumentDTO, int64, error) {
	docs, total, err := s.docRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list derived documents: %w", err)
	}

	dtos := make([]domain.DerivedDocumentDTO, len(docs))
	for i := range docs {
		dtos[i] = mapper.ToDerivedDocumentDTO(&docs[i])
	}

	return dtos, total, nil
}

// Post moves a DRAFT document to POSTED
func (s *DerivedDocumentService) Post(ctx context.Context, id uuid.UUID) (*domain.DerivedDocumentDTO, error) {
	doc, err := s.getDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	if doc.Status != domain.DocumentStatusDraft {
		return nil, fmt.Errorf("%w: only draft documents can be posted, current status %s", ErrInvalidState, doc.Status)
	}

	if err := s.docRepo.UpdateStatus(ctx, id, domain.DocumentStatusPosted); err != nil {
		return nil, fmt.Errorf("failed to post document: %w", err)
	}

	return s.reload(ctx, id)
}

// Cancel voids a document; blocked once any payment has been recorded
func (s *DerivedDocumentService) Cancel(ctx context.Context, id uuid.UUID) (*domain.DerivedDocumentDTO, error) {
	doc, err := s.getDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	if doc.Status == domain.DocumentStatusCancelled {
		return nil, fmt.Errorf("%w: document is already cancelled", ErrInvalidState)
	}

	payments, err := s.paymentRepo.ListByDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list document payments: %w", err)
	}
	if len(payments) > 0 {
		return nil, fmt.Errorf("%w: document %s has recorded payments and cannot be cancelled", ErrConflict, doc.Number)
	}

	if err := s.docRepo.UpdateStatus(ctx, id, domain.DocumentStatusCancelled); err != nil {
		return nil, fmt.Errorf("failed to cancel document: %w", err)
	}

	return s.reload(ctx, id)
}

// GenerateMissing re-runs generation for confirmed orders whose document is
// missing, e.g. because generation failed at confirmation time. Returns the
// number of documents created. Used by the retry sweep.
func (s *DerivedDocumentService) GenerateMissing(ctx context.Context, limit int) (int, error) {
	orders, err := s.docRepo.ListConfirmedOrdersMissingDocument(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list orders missing documents: %w", err)
	}

	created := 0
	for i := range orders {
		if _, err := s.Generate(ctx, orders[i].ID, domain.DocumentStatusDraft); err != nil {
			s.logger.Error("retry generation failed",
				zap.String("orderID", orders[i].ID.String()),
				zap.String("number", orders[i].Number),
				zap.Error(err))
			continue
		}
		created++
	}

	return created, nil
}

func (s *DerivedDocumentService) dueDays(contact *domain.Contact) int {
	if contact != nil && contact.CreditTermsDays > 0 {
		return contact.CreditTermsDays
	}
	return defaultDueDays
}

func (s *DerivedDocumentService) getDocument(ctx context.Context, id uuid.UUID) (*domain.DerivedDocument, error) {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: document %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

func (s *DerivedDocumentService) reload(ctx context.Context, id uuid.UUID) (*domain.DerivedDocumentDTO, error) {
	doc, err := s.getDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToDerivedDocumentDTO(doc)
	return &dto, nil
}
