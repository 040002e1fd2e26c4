package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/oakline-furniture/trade-api/internal/domain"
	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create persists the order header and its lines in one transaction
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).
		Preload("Contact").
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_lines.position ASC")
		}).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).
		Preload("Contact").
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_lines.position ASC")
		}).
		First(&order, "number = ?", number).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// OrderFilters holds filters for listing orders
type OrderFilters struct {
	Direction *domain.OrderDirection
	Status    *domain.OrderStatus
	ContactID *uuid.UUID
	DateFrom  *time.Time
	DateTo    *time.Time
}

// List returns orders with filters and pagination, newest first
func (r *OrderRepository) List(ctx context.Context, page, pageSize int, filters *OrderFilters) ([]domain.Order, int64, error) {
	var orders []domain.Order
	var total int64

	offset := (page - 1) * pageSize

	query := r.db.WithContext(ctx).Model(&domain.Order{})

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
		if filters.DateFrom != nil {
			query = query.Where("order_date >= ?", *filters.DateFrom)
		}
		if filters.DateTo != nil {
			query = query.Where("order_date <= ?", *filters.DateTo)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Contact").
		Order("order_date DESC, number DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&orders).Error

	return orders, total, err
}

// Update persists header fields
func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Omit("Lines", "Contact").Save(order).Error
}

// ReplaceLines swaps the order's lines and header totals atomically. The
// caller is responsible for having recomputed the totals on the header.
func (r *OrderRepository) ReplaceLines(ctx context.Context, order *domain.Order, lines []domain.OrderLine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&domain.OrderLine{}).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].OrderID = order.ID
		}
		if len(lines) > 0 {
			if err := tx.Create(&lines).Error; err != nil {
				return err
			}
		}
		return tx.Model(&domain.Order{}).
			Where("id = ?", order.ID).
			Updates(map[string]interface{}{
				"subtotal":     order.Subtotal,
				"tax_amount":   order.TaxAmount,
				"total_amount": order.TotalAmount,
				"updated_at":   time.Now().UTC(),
			}).Error
	})
}

// UpdateStatus moves the order to a new lifecycle status
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}

// Delete removes an order and, via cascade, its lines
func (r *OrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&domain.OrderLine{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Order{}, "id = ?", id).Error
	})
}
