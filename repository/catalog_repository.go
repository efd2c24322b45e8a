package repository

import (
	"context"
	"errors"
	"fmt"

	"analytics-service/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormCatalogRepository implements CatalogAccessor using GORM
type GormCatalogRepository struct {
	db      *gorm.DB
	usesSKU bool
}

// NewGormCatalogRepository creates a catalog accessor. usesSKU is the store
// wide SKU switch.
func NewGormCatalogRepository(db *gorm.DB, usesSKU bool) *GormCatalogRepository {
	return &GormCatalogRepository{db: db, usesSKU: usesSKU}
}

func (r *GormCatalogRepository) find(ctx context.Context, downloadID int64) (*models.Download, error) {
	return cached(ctx, fmt.Sprintf("download:%d", downloadID), func() (*models.Download, error) {
		var download models.Download
		err := r.db.WithContext(ctx).First(&download, "id = ?", downloadID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("download %d: %w", downloadID, ErrNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("load download %d: %w", downloadID, err)
		}
		return &download, nil
	})
}

func (r *GormCatalogRepository) Price(ctx context.Context, downloadID int64) (decimal.Decimal, error) {
	d, err := r.find(ctx, downloadID)
	if err != nil {
		return decimal.Zero, err
	}
	return d.Price, nil
}

// VariablePrice returns the amount of the price option priceID.
func (r *GormCatalogRepository) VariablePrice(ctx context.Context, downloadID int64, priceID int) (decimal.Decimal, error) {
	var price models.DownloadPrice
	err := r.db.WithContext(ctx).
		Where("download_id = ? AND price_index = ?", downloadID, priceID).
		First(&price).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, fmt.Errorf("price %d of download %d: %w", priceID, downloadID, ErrNotFound)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("load price %d of download %d: %w", priceID, downloadID, err)
	}
	return price.Amount, nil
}

func (r *GormCatalogRepository) HasVariablePrices(ctx context.Context, downloadID int64) (bool, error) {
	d, err := r.find(ctx, downloadID)
	if err != nil {
		return false, err
	}
	return d.VariablePricing, nil
}

func (r *GormCatalogRepository) Title(ctx context.Context, downloadID int64) (string, error) {
	d, err := r.find(ctx, downloadID)
	if err != nil {
		return "", err
	}
	return d.Title, nil
}

// CategoryTerms returns the download's categories ordered by name. Tags are
// not included.
func (r *GormCatalogRepository) CategoryTerms(ctx context.Context, downloadID int64) ([]models.Term, error) {
	var terms []models.Term
	err := r.db.WithContext(ctx).
		Joins("JOIN download_terms ON download_terms.term_id = terms.id").
		Where("download_terms.download_id = ? AND terms.taxonomy = ?", downloadID, models.TaxonomyCategory).
		Order("terms.name ASC").
		Find(&terms).Error
	if err != nil {
		return nil, fmt.Errorf("load categories of download %d: %w", downloadID, err)
	}
	return terms, nil
}

func (r *GormCatalogRepository) UsesSKU() bool {
	return r.usesSKU
}

func (r *GormCatalogRepository) SKU(ctx context.Context, downloadID int64) (string, error) {
	d, err := r.find(ctx, downloadID)
	if err != nil {
		return "", err
	}
	return d.SKU, nil
}

var _ CatalogAccessor = (*GormCatalogRepository)(nil)
