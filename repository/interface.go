package repository

import (
	"context"
	"errors"

	"analytics-service/models"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("record not found")

// CatalogAccessor is the read-only view of the download catalog used to
// resolve items for analytics payloads.
type CatalogAccessor interface {
	Price(ctx context.Context, downloadID int64) (decimal.Decimal, error)
	VariablePrice(ctx context.Context, downloadID int64, priceID int) (decimal.Decimal, error)
	HasVariablePrices(ctx context.Context, downloadID int64) (bool, error)
	Title(ctx context.Context, downloadID int64) (string, error)
	CategoryTerms(ctx context.Context, downloadID int64) ([]models.Term, error)
	// UsesSKU reports whether the store has SKUs enabled globally.
	UsesSKU() bool
	SKU(ctx context.Context, downloadID int64) (string, error)
}

// OrderAccessor reads completed payments keyed by payment id.
type OrderAccessor interface {
	OrderMeta(ctx context.Context, paymentID int64) (map[string]any, error)
	Key(ctx context.Context, paymentID int64) (string, error)
	Number(ctx context.Context, paymentID int64) (string, error)
	TransactionID(ctx context.Context, paymentID int64) (string, error)
	Subtotal(ctx context.Context, paymentID int64) (decimal.Decimal, error)
	Total(ctx context.Context, paymentID int64) (decimal.Decimal, error)
	Tax(ctx context.Context, paymentID int64) (decimal.Decimal, error)
	Currency(ctx context.Context, paymentID int64) (string, error)
	Gateway(ctx context.Context, paymentID int64) (string, error)
	BuyerIP(ctx context.Context, paymentID int64) (string, error)
	CustomerID(ctx context.Context, paymentID int64) (int64, error)
	IsGuest(ctx context.Context, paymentID int64) (bool, error)
}

// CartAccessor returns the current visitor's cart, indexed by cart slot.
type CartAccessor interface {
	CartContents(ctx context.Context) ([]models.CartEntry, error)
}
