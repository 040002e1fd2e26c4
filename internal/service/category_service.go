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

type CategoryService struct {
	categoryRepo *repository.CategoryRepository
	logger       *zap.Logger
}

func NewCategoryService(categoryRepo *repository.CategoryRepository, logger *zap.Logger) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

func (s *CategoryService) Create(ctx context.Context, req *domain.CreateCategoryRequest) (*domain.CategoryDTO, error) {
	category := &domain.Category{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: category %q already exists", ErrConflict, req.Name)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	dto := mapper.ToCategoryDTO(category)
	return &dto, nil
}

func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*domain.CategoryDTO, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: category %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	dto := mapper.ToCategoryDTO(category)
	return &dto, nil
}

func (s *CategoryService) List(ctx context.Context) ([]domain.CategoryDTO, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	dtos := make([]domain.CategoryDTO, len(categories))
	for i := range categories {
		dtos[i] = mapper.ToCategoryDTO(&categories[i])
	}

	return dtos, nil
}

// Archive soft-deletes a category; blocked while products still reference it
func (s *CategoryService) Archive(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: category %s", ErrNotFound, id)
		}
		return fmt.Errorf("failed to get category: %w", err)
	}

	count, err := s.categoryRepo.CountProducts(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count category products: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: category has %d linked products", ErrConflict, count)
	}

	if err := s.categoryRepo.Archive(ctx, id); err != nil {
		return fmt.Errorf("failed to archive category: %w", err)
	}
	return nil
}
