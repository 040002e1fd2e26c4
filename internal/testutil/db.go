package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/oakline-furniture/trade-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbCounter int64

// NewTestDB opens a fresh in-memory SQLite database with the full schema.
// Each call gets its own database, so tests never share state.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		TranslateError: true,
	})
	require.NoError(t, err, "failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the shared-cache memory database alive for
	// the whole test
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&domain.Contact{},
		&domain.Category{},
		&domain.Product{},
		&domain.AnalyticalAccount{},
		&domain.AutoAnalyticalRule{},
		&domain.Order{},
		&domain.OrderLine{},
		&domain.DerivedDocument{},
		&domain.DerivedDocumentLine{},
		&domain.Payment{},
		&domain.Budget{},
		&domain.BudgetLine{},
		&domain.DocumentSequence{},
	), "failed to migrate test database")

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

// CreateTestContact persists a contact of the given type
func CreateTestContact(t *testing.T, db *gorm.DB, code string, contactType domain.ContactType, tags ...string) *domain.Contact {
	t.Helper()

	contact := &domain.Contact{
		Code:     code,
		Name:     "Contact " + code,
		Email:    code + "@example.com",
		Type:     contactType,
		Tags:     domain.TagList(tags),
		IsActive: true,
	}
	require.NoError(t, db.Create(contact).Error)
	return contact
}

// CreateTestProduct persists a product with the given prices
func CreateTestProduct(t *testing.T, db *gorm.DB, code, purchasePrice, salePrice string) *domain.Product {
	t.Helper()

	product := &domain.Product{
		Code:            code,
		Name:            "Product " + code,
		PurchasePrice:   decimal.RequireFromString(purchasePrice),
		SalePrice:       decimal.RequireFromString(salePrice),
		DefaultCategory: domain.DefaultCategorySeating,
		IsActive:        true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

// CreateTestAccount persists a confirmed analytical account
func CreateTestAccount(t *testing.T, db *gorm.DB, code string) *domain.AnalyticalAccount {
	t.Helper()

	account := &domain.AnalyticalAccount{
		Code:   code,
		Name:   "Account " + code,
		Status: domain.AccountStatusConfirmed,
	}
	require.NoError(t, db.Create(account).Error)
	return account
}

// CreateTestCategory persists an active category
func CreateTestCategory(t *testing.T, db *gorm.DB, name string) *domain.Category {
	t.Helper()

	category := &domain.Category{
		Name:     name,
		IsActive: true,
	}
	require.NoError(t, db.Create(category).Error)
	return category
}
