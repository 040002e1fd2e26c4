package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/oakline-furniture/trade-api/internal/domain"
	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepository) GetByCode(ctx context.Context, code string) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).First(&product, "code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ProductFilters holds filters for listing products
type ProductFilters struct {
	Search          string
	CategoryID      *uuid.UUID
	DefaultCategory *domain.DefaultCategory
}

// List returns active products with filters and pagination
func (r *ProductRepository) List(ctx context.Context, page, pageSize int, filters *ProductFilters) ([]domain.Product, int64, error) {
	var products []domain.Product
	var total int64

	offset := (page - 1) * pageSize

	query := r.db.WithContext(ctx).Model(&domain.Product{}).Where("is_active = ?", true)

	if filters != nil {
		if filters.Search != "" {
			pattern := "%" + filters.Search + "%"
			query = query.Where(
				"LOWER(name) LIKE LOWER(?) OR LOWER(code) LIKE LOWER(?)",
				pattern, pattern,
			)
		}
		if filters.CategoryID != nil {
			query = query.Where("category_id = ?", *filters.CategoryID)
		}
		if filters.DefaultCategory != nil {
			query = query.Where("default_category = ?", *filters.DefaultCategory)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Category").
		Order("name ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&products).Error

	return products, total, err
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Archive marks a product inactive; existing order lines keep their snapshot
func (r *ProductRepository) Archive(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}
