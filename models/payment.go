package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is a completed storefront order.
type Payment struct {
	ID            int64           `gorm:"primaryKey"`
	Key           string          `gorm:"type:varchar(64);uniqueIndex;not null"`
	Number        string          `gorm:"type:varchar(64)"`
	TransactionID string          `gorm:"type:varchar(128)"`
	Email         string          `gorm:"type:varchar(255)"`
	FirstName     string          `gorm:"type:varchar(128)"`
	LastName      string          `gorm:"type:varchar(128)"`
	UserID        int64           `gorm:"not null;default:0"`
	CustomerID    int64           `gorm:"not null;default:0;index"`
	BuyerIP       string          `gorm:"type:varchar(64)"`
	Subtotal      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Tax           decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Currency      string          `gorm:"type:varchar(10);not null;default:'USD'"`
	Gateway       string          `gorm:"type:varchar(32)"`
	Items         []PaymentItem   `gorm:"foreignKey:PaymentID;constraint:OnDelete:CASCADE"`
	CompletedAt   *time.Time
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

// PaymentItem is one cart line of a payment.
type PaymentItem struct {
	ID         int64           `gorm:"primaryKey"`
	PaymentID  int64           `gorm:"not null;index"`
	DownloadID int64           `gorm:"not null"`
	Name       string          `gorm:"type:varchar(255)"`
	PriceID    *int
	Quantity   int             `gorm:"not null;default:1"`
	ItemPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Subtotal   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Tax        decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Price      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
}
