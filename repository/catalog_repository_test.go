package repository_test

import (
	"context"
	"testing"

	"analytics-service/models"
	"analytics-service/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Term{},
		&models.Download{},
		&models.DownloadPrice{},
		&models.Payment{},
		&models.PaymentItem{},
	))
	return db
}

func seedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()
	downloads := []models.Download{
		{
			ID:              42,
			Title:           "Theme <em>Pro</em>",
			Price:           decimal.RequireFromString("49.00"),
			SKU:             "THEME-PRO",
			VariablePricing: true,
			Prices: []models.DownloadPrice{
				{PriceIndex: 1, Name: "Single site", Amount: decimal.RequireFromString("49.00")},
				{PriceIndex: 2, Name: "Unlimited", Amount: decimal.RequireFromString("99.00")},
			},
			Terms: []models.Term{
				{ID: 1, Name: "Themes", Taxonomy: models.TaxonomyCategory},
				{ID: 2, Name: "Blogging", Taxonomy: models.TaxonomyCategory},
				{ID: 3, Name: "featured", Taxonomy: models.TaxonomyTag},
			},
		},
		{ID: 7, Title: "Icon pack", Price: decimal.RequireFromString("5.00")},
	}
	require.NoError(t, db.Create(&downloads).Error)
}

func TestCatalogRepository_Lookups(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	repo := repository.NewGormCatalogRepository(db, true)
	ctx := context.Background()

	price, err := repo.Price(ctx, 42)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("49")), "got %s", price)

	variable, err := repo.VariablePrice(ctx, 42, 2)
	require.NoError(t, err)
	assert.True(t, variable.Equal(decimal.RequireFromString("99")), "got %s", variable)

	has, err := repo.HasVariablePrices(ctx, 42)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = repo.HasVariablePrices(ctx, 7)
	require.NoError(t, err)
	assert.False(t, has)

	title, err := repo.Title(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "Theme <em>Pro</em>", title)

	sku, err := repo.SKU(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "THEME-PRO", sku)
	assert.True(t, repo.UsesSKU())
}

func TestCatalogRepository_CategoryTermsExcludesTags(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	repo := repository.NewGormCatalogRepository(db, false)
	ctx := context.Background()

	terms, err := repo.CategoryTerms(ctx, 42)
	require.NoError(t, err)
	require.Len(t, terms, 2)
	assert.Equal(t, "Blogging", terms[0].Name)
	assert.Equal(t, "Themes", terms[1].Name)

	terms, err = repo.CategoryTerms(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, terms)
}

func TestCatalogRepository_NotFound(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	repo := repository.NewGormCatalogRepository(db, false)
	ctx := context.Background()

	_, err := repo.Title(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.VariablePrice(ctx, 42, 9)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
