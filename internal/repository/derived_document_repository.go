package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/oakline-furniture/trade-api/internal/domain"
	"gorm.io/gorm"
)

// DerivedDocumentRepository handles database operations for invoices and
// vendor bills. The unique index on source_order_id is the idempotency
// anchor: a second generation attempt for the same order surfaces as
// gorm.ErrDuplicatedKey.
type DerivedDocumentRepository struct {
	db *gorm.DB
}

func NewDerivedDocumentRepository(db *gorm.DB) *DerivedDocumentRepository {
	return &DerivedDocumentRepository{db: db}
}

func (r *DerivedDocumentRepository) Create(ctx context.Context, doc *domain.DerivedDocument) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *DerivedDocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.DerivedDocument, error) {
	var doc domain.DerivedDocument
	err := r.db.WithContext(ctx).
		Preload("Contact").
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("derived_document_lines.position ASC")
		}).
		First(&doc, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetBySourceOrder returns the document generated from an order, if any
func (r *DerivedDocumentRepository) GetBySourceOrder(ctx context.Context, orderID uuid.UUID) (*domain.DerivedDocument, error) {
	var doc domain.DerivedDocument
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("derived_document_lines.position ASC")
		}).
		First(&doc, "source_order_id = ?", orderID).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// DocumentFilters holds filters for listing derived documents
type DocumentFilters struct {
	Direction *domain.OrderDirection
	Status    *domain.DocumentStatus
	ContactID *uuid.UUID
}

// List returns documents with filters and pagination, newest first
func (r *DerivedDocumentRepository) List(ctx context.Context, page, pageSize int, filters *DocumentFilters) ([]domain.DerivedDocument, int64, error) {
	var docs []domain.DerivedDocument
	var total int64

	offset := (page - 1) * pageSize

	query := r.db.WithContext(ctx).Model(&domain.DerivedDocument{})

	if filters != nil {
		if filters.Direction != nil {
			query = query.Where("direction = ?", *filters.Direction)
		}
		if filters.Status != nil {
			query = query.Where("status = ?", *filters.Status)
		}
		if filters.ContactID != nil {
			query = query.Where("contact_id = ?", *filters.ContactID)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Contact").
		Order("issue_date DESC, number DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&docs).Error

	return docs, total, err
}

// UpdateStatus moves the document to a new lifecycle status
func (r *DerivedDocumentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.DocumentStatus) error {
	return r.db.WithContext(ctx).
		Model(&domain.DerivedDocument{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}

// ListConfirmedOrdersMissingDocument finds confirmed orders whose document
// generation failed or has not happened yet. Used by the retry sweep.
func (r *DerivedDocumentRepository) ListConfirmedOrdersMissingDocument(ctx context.Context, limit int) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.WithContext(ctx).
		Joins("LEFT JOIN derived_documents dd ON dd.source_order_id = orders.id").
		Where("orders.status = ? AND dd.id IS NULL", domain.OrderStatusConfirmed).
		Order("orders.created_at ASC").
		Limit(limit).
		Preload("Contact").
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_lines.position ASC")
		}).
		Find(&orders).Error
	return orders, err
}
