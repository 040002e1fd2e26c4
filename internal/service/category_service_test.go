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

func newCategoryService(db *gorm.DB) *service.CategoryService {
	return service.NewCategoryService(repository.NewCategoryRepository(db), zap.NewNop())
}

func TestCategoryService_Create(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := newCategoryService(db)
	ctx := context.Background()

	category, err := svc.Create(ctx, &domain.CreateCategoryRequest{
		Name:        "Office Furniture",
		Description: "Desks, chairs and storage for offices",
	})
	require.NoError(t, err)
	assert.True(t, category.IsActive)

	_, err = svc.Create(ctx, &domain.CreateCategoryRequest{Name: "Office Furniture"})
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestCategoryService_Archive(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := newCategoryService(db)
	products := newProductService(db)
	ctx := context.Background()

	category, err := svc.Create(ctx, &domain.CreateCategoryRequest{Name: "Bedroom"})
	require.NoError(t, err)

	product, err := products.Create(ctx, &domain.CreateProductRequest{
		Code:          "BED-01",
		Name:          "King Bed",
		PurchasePrice: decimal.NewFromInt(400),
		SalePrice:     decimal.NewFromInt(700),
		Category:      category.ID.String(),
	})
	require.NoError(t, err)

	t.Run("blocked while products reference it", func(t *testing.T) {
		assert.ErrorIs(t, svc.Archive(ctx, category.ID), service.ErrConflict)
	})

	t.Run("allowed once products move away", func(t *testing.T) {
		_, err := products.Update(ctx, product.ID, &domain.UpdateProductRequest{
			Name:          "King Bed",
			PurchasePrice: decimal.NewFromInt(400),
			SalePrice:     decimal.NewFromInt(700),
			Category:      "beds",
		})
		require.NoError(t, err)

		require.NoError(t, svc.Archive(ctx, category.ID))

		categories, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, categories)
	})
}
