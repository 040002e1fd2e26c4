package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/oakline-furniture/trade-api/internal/domain"
	"gorm.io/gorm"
)

type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

func (r *ContactRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contact, error) {
	var contact domain.Contact
	err := r.db.WithContext(ctx).First(&contact, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// GetByCode finds a contact by its unique code
func (r *ContactRepository) GetByCode(ctx context.Context, code string) (*domain.Contact, error) {
	var contact domain.Contact
	err := r.db.WithContext(ctx).First(&contact, "code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// ContactFilters holds filters for listing contacts
type ContactFilters struct {
	Search string
	Type   *domain.ContactType
	Tag    string
}

// List returns active contacts with filters and pagination
func (r *ContactRepository) List(ctx context.Context, page, pageSize int, filters *ContactFilters) ([]domain.Contact, int64, error) {
	var contacts []domain.Contact
	var total int64

	offset := (page - 1) * pageSize

	query := r.db.WithContext(ctx).Model(&domain.Contact{}).Where("is_active = ?", true)

	if filters != nil {
		if filters.Search != "" {
			pattern := "%" + filters.Search + "%"
			query = query.Where(
				"LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?) OR LOWER(code) LIKE LOWER(?)",
				pattern, pattern, pattern,
			)
		}
		if filters.Type != nil {
			// "both" contacts show up when filtering for customers or vendors
			query = query.Where("type = ? OR type = ?", *filters.Type, domain.ContactTypeBoth)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("name ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&contacts).Error
	if err != nil {
		return nil, 0, err
	}

	// Tag membership is filtered in memory: the tag column layout differs
	// between dialects and tag filters are rare and low-volume
	if filters != nil && filters.Tag != "" {
		filtered := contacts[:0]
		for i := range contacts {
			if contacts[i].HasTag(filters.Tag) {
				filtered = append(filtered, contacts[i])
			}
		}
		contacts = filtered
	}

	return contacts, total, nil
}

func (r *ContactRepository) Update(ctx context.Context, contact *domain.Contact) error {
	return r.db.WithContext(ctx).Save(contact).Error
}

// Archive marks a contact inactive instead of deleting it; orders and
// documents keep referencing it
func (r *ContactRepository) Archive(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&domain.Contact{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

// CountOrders returns the number of orders referencing a contact
func (r *ContactRepository) CountOrders(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("contact_id = ?", id).
		Count(&count).Error
	return count, err
}
