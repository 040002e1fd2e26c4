package service_test

import (
	"context"
	"testing"

	"github.com/oakline-furniture/trade-api/internal/domain"
	"github.com/oakline-furniture/trade-api/internal/repository"
	"github.com/oakline-furniture/trade-api/internal/service"
	"github.com/oakline-furniture/trade-api/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newProductService(db *gorm.DB) *service.ProductService {
	return service.NewProductService(
		repository.NewProductRepository(db),
		repository.NewCategoryRepository(db),
		repository.NewAnalyticalAccountRepository(db),
		zap.NewNop(),
	)
}

func TestProductService_Create(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := newProductService(db)
	ctx := context.Background()

	t.Run("with a default category", func(t *testing.T) {
		product, err := svc.Create(ctx, &domain.CreateProductRequest{
			Code:          "CHAIR-01",
			Name:          "Oak Chair",
			PurchasePrice: decimal.RequireFromString("60.00"),
			SalePrice:     decimal.RequireFromString("100.00"),
			Category:      "seating",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultCategorySeating, product.DefaultCategory)
		assert.Nil(t, product.CategoryID)
		assert.True(t, product.IsActive)
	})

	t.Run("with a category record", func(t *testing.T) {
		category := testutil.CreateTestCategory(t, db, "Office Furniture")

		product, err := svc.Create(ctx, &domain.CreateProductRequest{
			Code:          "DESK-01",
			Name:          "Standing Desk",
			PurchasePrice: decimal.RequireFromString("200.00"),
			SalePrice:     decimal.RequireFromString("350.00"),
			Category:      category.ID.String(),
		})
		require.NoError(t, err)
		require.NotNil(t, product.CategoryID)
		assert.Equal(t, category.ID, *product.CategoryID)
		assert.Equal(t, "Office Furniture", product.CategoryName)
		assert.Empty(t, product.DefaultCategory)
	})

	t.Run("unknown category name", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateProductRequest{
			Code:          "LAMP-01",
			Name:          "Lamp",
			PurchasePrice: decimal.NewFromInt(10),
			SalePrice:     decimal.NewFromInt(20),
			Category:      "glassware",
		})
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("sale price below purchase price refused", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateProductRequest{
			Code:          "LOSS-01",
			Name:          "Sold at a loss",
			PurchasePrice: decimal.RequireFromString("100.00"),
			SalePrice:     decimal.RequireFromString("99.99"),
			Category:      "seating",
		})
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("negative prices refused", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateProductRequest{
			Code:          "NEG-01",
			Name:          "Negative",
			PurchasePrice: decimal.NewFromInt(-1),
			SalePrice:     decimal.NewFromInt(10),
			Category:      "seating",
		})
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("duplicate code refused", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateProductRequest{
			Code:          "CHAIR-01",
			Name:          "Another Chair",
			PurchasePrice: decimal.NewFromInt(10),
			SalePrice:     decimal.NewFromInt(20),
			Category:      "seating",
		})
		assert.ErrorIs(t, err, service.ErrConflict)
	})
}

func TestProductService_Update(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := newProductService(db)
	ctx := context.Background()

	product, err := svc.Create(ctx, &domain.CreateProductRequest{
		Code:          "TBL-01",
		Name:          "Dining Table",
		PurchasePrice: decimal.RequireFromString("150.00"),
		SalePrice:     decimal.RequireFromString("280.00"),
		Category:      "tables",
	})
	require.NoError(t, err)

	t.Run("repricing keeps the margin rule", func(t *testing.T) {
		_, err := svc.Update(ctx, product.ID, &domain.UpdateProductRequest{
			Name:          "Dining Table",
			PurchasePrice: decimal.RequireFromString("300.00"),
			SalePrice:     decimal.RequireFromString("280.00"),
			Category:      "tables",
		})
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("category switch", func(t *testing.T) {
		updated, err := svc.Update(ctx, product.ID, &domain.UpdateProductRequest{
			Name:          "Garden Table",
			PurchasePrice: decimal.RequireFromString("150.00"),
			SalePrice:     decimal.RequireFromString("280.00"),
			Category:      "outdoor",
		})
		require.NoError(t, err)
		assert.Equal(t, "Garden Table", updated.Name)
		assert.Equal(t, domain.DefaultCategoryOutdoor, updated.DefaultCategory)
	})
}

func TestProductService_Archive(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := newProductService(db)
	ctx := context.Background()

	product, err := svc.Create(ctx, &domain.CreateProductRequest{
		Code:          "BED-01",
		Name:          "King Bed",
		PurchasePrice: decimal.NewFromInt(400),
		SalePrice:     decimal.NewFromInt(700),
		Category:      "beds",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Archive(ctx, product.ID))

	archived, err := svc.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.False(t, archived.IsActive)

	// Archived products drop out of the listing
	products, total, err := svc.List(ctx, 1, 20, &repository.ProductFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, products)
}
