package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oakline-furniture/trade-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SequenceRepository handles database operations for document number
// sequences. Each document type (sales order, purchase order, invoice,
// vendor bill) has its own counter row.
type SequenceRepository struct {
	db *gorm.DB
}

// NewSequenceRepository creates a new SequenceRepository
func NewSequenceRepository(db *gorm.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// Next atomically increments the counter for a sequence type and returns the
// sequence row carrying the newly issued value. The increment is a single
// UPDATE with RETURNING, so two concurrent callers can never observe the same
// number. On first use the row is seeded from domain.SequenceDefaults; a
// duplicate-key error during seeding means another caller won the race, in
// which case the increment is simply retried.
func (r *SequenceRepository) Next(ctx context.Context, seqType domain.SequenceType) (*domain.DocumentSequence, error) {
	for attempt := 0; attempt < 2; attempt++ {
		var seq domain.DocumentSequence
		result := r.db.WithContext(ctx).
			Model(&seq).
			Clauses(clause.Returning{}).
			Where("name = ?", seqType).
			Updates(map[string]interface{}{
				"next_number": gorm.Expr("next_number + 1"),
				"updated_at":  time.Now().UTC(),
			})
		if result.Error != nil {
			return nil, fmt.Errorf("failed to increment sequence %s: %w", seqType, result.Error)
		}
		if result.RowsAffected > 0 {
			return &seq, nil
		}

		defaults, ok := domain.SequenceDefaults[seqType]
		if !ok {
			return nil, fmt.Errorf("unknown sequence type: %s", seqType)
		}
		seed := domain.DocumentSequence{
			Name:       seqType,
			Prefix:     defaults.Prefix,
			NextNumber: 0,
			Padding:    defaults.Padding,
		}
		if err := r.db.WithContext(ctx).Create(&seed).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("failed to seed sequence %s: %w", seqType, err)
		}
	}
	return nil, fmt.Errorf("failed to issue number for sequence %s", seqType)
}

// Get retrieves a sequence without incrementing it
func (r *SequenceRepository) Get(ctx context.Context, seqType domain.SequenceType) (*domain.DocumentSequence, error) {
	var seq domain.DocumentSequence
	err := r.db.WithContext(ctx).First(&seq, "name = ?", seqType).Error
	if err != nil {
		return nil, err
	}
	return &seq, nil
}

// List returns all sequences ordered by name
func (r *SequenceRepository) List(ctx context.Context) ([]domain.DocumentSequence, error) {
	var sequences []domain.DocumentSequence
	err := r.db.WithContext(ctx).Order("name ASC").Find(&sequences).Error
	return sequences, err
}
