package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/oakline-furniture/trade-api/internal/domain"
	"gorm.io/gorm"
)

// ErrExceedsAmountDue is returned when a payment would push the document's
// paid amount above its total
var ErrExceedsAmountDue = errors.New("payment exceeds amount due")

// ErrDocumentCancelled is returned when a payment lands on a document that
// was cancelled after the caller's status check
var ErrDocumentCancelled = errors.New("document is cancelled")

// PaymentRepository handles database operations for payments. Recording and
// deleting a payment always moves the document's paid_amount in the same
// transaction, so the ledger and the running total can never drift apart.
type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Record persists a payment and increments the document's paid amount. The
// increment carries the overpayment and cancellation guards in its WHERE
// clause, so neither a concurrent payment nor a racing cancel can slip a
// payment through: the loser of either race matches zero rows.
func (r *PaymentRepository) Record(ctx context.Context, payment *domain.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.DerivedDocument{}).
			// Decimals bind as text; the CAST keeps the comparison numeric on
			// every dialect
			Where("id = ? AND status <> ? AND total_amount - paid_amount >= CAST(? AS NUMERIC)",
				payment.DocumentID, domain.DocumentStatusCancelled, payment.Amount).
			Updates(map[string]interface{}{
				"paid_amount": gorm.Expr("paid_amount + ?", payment.Amount),
				"updated_at":  time.Now().UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var doc domain.DerivedDocument
			if err := tx.Select("status").First(&doc, "id = ?", payment.DocumentID).Error; err != nil {
				return err
			}
			if doc.Status == domain.DocumentStatusCancelled {
				return ErrDocumentCancelled
			}
			return ErrExceedsAmountDue
		}
		return tx.Create(payment).Error
	})
}

// Delete removes a payment and gives the amount back to the document's
// amount due
func (r *PaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var payment domain.Payment
		if err := tx.First(&payment, "id = ?", id).Error; err != nil {
			return err
		}
		err := tx.Model(&domain.DerivedDocument{}).
			Where("id = ?", payment.DocumentID).
			Updates(map[string]interface{}{
				"paid_amount": gorm.Expr("paid_amount - ?", payment.Amount),
				"updated_at":  time.Now().UTC(),
			}).Error
		if err != nil {
			return err
		}
		return tx.Delete(&domain.Payment{}, "id = ?", id).Error
	})
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	var payment domain.Payment
	err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListByDocument returns a document's payments oldest first
func (r *PaymentRepository) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("payment_date ASC, created_at ASC").
		Find(&payments).Error
	return payments, err
}

// PaymentFilters holds filters for listing payments
type PaymentFilters struct {
	Type      *domain.PaymentType
	ContactID *uuid.UUID
	DateFrom  *time.Time
	DateTo    *time.Time
}

// List returns payments with filters and pagination, newest first
func (r *PaymentRepository) List(ctx context.Context, page, pageSize int, filters *PaymentFilters) ([]domain.Payment, int64, error) {
	var payments []domain.Payment
	var total int64

	offset := (page - 1) * pageSize

	query := r.db.WithContext(ctx).Model(&domain.Payment{})

	if filters != nil {
		if filters.Type != nil {
			query = query.Where("type = ?", *filters.Type)
		}
		if filters.ContactID != nil {
			query = query.Where("contact_id = ?", *filters.ContactID)
		}
		if filters.DateFrom != nil {
			query = query.Where("payment_date >= ?", *filters.DateFrom)
		}
		if filters.DateTo != nil {
			query = query.Where("payment_date <= ?", *filters.DateTo)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("payment_date DESC, created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&payments).Error

	return payments, total, err
}
