package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Download is a catalog item.
type Download struct {
	ID              int64           `gorm:"primaryKey" json:"id"`
	Title           string          `gorm:"type:varchar(255);not null" json:"title"`
	Price           decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price"`
	SKU             string          `gorm:"type:varchar(64);index" json:"sku"`
	VariablePricing bool            `gorm:"not null;default:false" json:"variable_pricing"`
	Prices          []DownloadPrice `gorm:"foreignKey:DownloadID;constraint:OnDelete:CASCADE" json:"prices,omitempty"`
	Terms           []Term          `gorm:"many2many:download_terms" json:"terms,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// DownloadPrice is one option of a variable-priced download. PriceIndex is
// the price_id the storefront submits.
type DownloadPrice struct {
	ID         int64           `gorm:"primaryKey" json:"id"`
	DownloadID int64           `gorm:"not null;uniqueIndex:idx_download_price" json:"download_id"`
	PriceIndex int             `gorm:"not null;uniqueIndex:idx_download_price" json:"price_id"`
	Name       string          `gorm:"type:varchar(255)" json:"name"`
	Amount     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"amount"`
}

// Term is a category or tag attached to downloads.
type Term struct {
	ID       int64  `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"type:varchar(255);not null" json:"name"`
	Taxonomy string `gorm:"type:varchar(32);not null;index" json:"taxonomy"`
}
