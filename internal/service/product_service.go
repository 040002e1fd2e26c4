package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/oakline-furniture/trade-api/internal/domain"
	"github.com/oakline-furniture/trade-api/internal/mapper"
	"github.com/oakline-furniture/trade-api/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProductService struct {
	productRepo  *repository.ProductRepository
	categoryRepo *repository.CategoryRepository
	accountRepo  *repository.AnalyticalAccountRepository
	logger       *zap.Logger
}

func NewProductService(
	productRepo *repository.ProductRepository,
	categoryRepo *repository.CategoryRepository,
	accountRepo *repository.AnalyticalAccountRepository,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		accountRepo:  accountRepo,
		logger:       logger,
	}
}

func (s *ProductService) Create(ctx context.Context, req *domain.CreateProductRequest) (*domain.ProductDTO, error) {
	product := &domain.Product{
		Code:          req.Code,
		Name:          req.Name,
		Description:   req.Description,
		PurchasePrice: req.PurchasePrice,
		SalePrice:     req.SalePrice,
		IsActive:      true,
	}

	if err := s.applyPricing(product, req.PurchasePrice, req.SalePrice); err != nil {
		return nil, err
	}
	if err := s.applyCategory(ctx, product, req.Category); err != nil {
		return nil, err
	}
	if err := s.applyDefaultAccount(ctx, product, req.AnalyticalAccountID); err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: product code %q already exists", ErrConflict, req.Code)
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	created, err := s.productRepo.GetByID(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload product: %w", err)
	}

	dto := mapper.ToProductDTO(created)
	return &dto, nil
}

func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProductDTO, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	dto := mapper.ToProductDTO(product)
	return &dto, nil
}

func (s *ProductService) List(ctx context.Context, page, pageSize int, filters *repository.ProductFilters) ([]domain.ProductDTO, int64, error) {
	products, total, err := s.productRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	dtos := make([]domain.ProductDTO, len(products))
	for i := range products {
		dtos[i] = mapper.ToProductDTO(&products[i])
	}

	return dtos, total, nil
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateProductRequest) (*domain.ProductDTO, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if err := s.applyPricing(product, req.PurchasePrice, req.SalePrice); err != nil {
		return nil, err
	}
	if err := s.applyCategory(ctx, product, req.Category); err != nil {
		return nil, err
	}
	if err := s.applyDefaultAccount(ctx, product, req.AnalyticalAccountID); err != nil {
		return nil, err
	}

	product.Name = req.Name
	product.Description = req.Description

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	updated, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload product: %w", err)
	}

	dto := mapper.ToProductDTO(updated)
	return &dto, nil
}

// Archive soft-deletes a product; existing lines keep their snapshot values
func (s *ProductService) Archive(ctx context.Context, id uuid.UUID) error {
	if _, err := s.productRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		return fmt.Errorf("failed to get product: %w", err)
	}
	return s.productRepo.Archive(ctx, id)
}

func (s *ProductService) applyPricing(product *domain.Product, purchase, sale decimal.Decimal) error {
	if purchase.IsNegative() || sale.IsNegative() {
		return fmt.Errorf("%w: prices must not be negative", ErrValidation)
	}
	if sale.LessThan(purchase) {
		return fmt.Errorf("%w: sale price must not be below purchase price", ErrValidation)
	}
	product.PurchasePrice = purchase
	product.SalePrice = sale
	return nil
}

// applyCategory resolves the category identifier: a UUID selects a Category
// record, anything else must be one of the fixed default categories. The two
// are mutually exclusive on the product.
func (s *ProductService) applyCategory(ctx context.Context, product *domain.Product, category string) error {
	if categoryID, err := uuid.Parse(category); err == nil {
		if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: category %s", ErrNotFound, categoryID)
			}
			return fmt.Errorf("failed to get category: %w", err)
		}
		product.CategoryID = &categoryID
		product.DefaultCategory = ""
		return nil
	}

	defaultCategory := domain.DefaultCategory(category)
	if !defaultCategory.IsValid() {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, category)
	}
	product.DefaultCategory = defaultCategory
	product.CategoryID = nil
	return nil
}

func (s *ProductService) applyDefaultAccount(ctx context.Context, product *domain.Product, accountID *uuid.UUID) error {
	if accountID == nil {
		product.AnalyticalAccountID = nil
		return nil
	}
	if _, err := s.accountRepo.GetByID(ctx, *accountID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: analytical account %s", ErrNotFound, *accountID)
		}
		return fmt.Errorf("failed to get analytical account: %w", err)
	}
	product.AnalyticalAccountID = accountID
	return nil
}
