package repository

import (
	"context"
	"errors"
	"fmt"

	"analytics-service/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const metaDateLayout = "2006-01-02 15:04:05"

// GormOrderRepository implements OrderAccessor using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new instance of GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// find loads a payment, through the row cache when ctx carries one. A
// payment loaded with its items also serves lookups that do not need them.
func (r *GormOrderRepository) find(ctx context.Context, paymentID int64, preload bool) (*models.Payment, error) {
	withItems := fmt.Sprintf("payment+items:%d", paymentID)
	if !preload {
		if p, ok := peek[*models.Payment](ctx, withItems); ok {
			return p, nil
		}
	}

	key := fmt.Sprintf("payment:%d", paymentID)
	if preload {
		key = withItems
	}
	return cached(ctx, key, func() (*models.Payment, error) {
		var payment models.Payment
		query := r.db.WithContext(ctx)
		if preload {
			query = query.Preload("Items")
		}
		err := query.First(&payment, "id = ?", paymentID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("payment %d: %w", paymentID, ErrNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("load payment %d: %w", paymentID, err)
		}
		return &payment, nil
	})
}

// OrderMeta returns the stored payment meta: buyer details, the downloads
// bought and the per line cart details.
func (r *GormOrderRepository) OrderMeta(ctx context.Context, paymentID int64) (map[string]any, error) {
	p, err := r.find(ctx, paymentID, true)
	if err != nil {
		return nil, err
	}

	date := p.CreatedAt
	if p.CompletedAt != nil {
		date = *p.CompletedAt
	}

	downloads := make([]map[string]any, 0, len(p.Items))
	cartDetails := make([]map[string]any, 0, len(p.Items))
	for _, item := range p.Items {
		options := map[string]any{"quantity": item.Quantity}
		if item.PriceID != nil {
			options["price_id"] = *item.PriceID
		}
		downloads = append(downloads, map[string]any{
			"id":       item.DownloadID,
			"quantity": item.Quantity,
			"options":  options,
		})
		cartDetails = append(cartDetails, map[string]any{
			"name": item.Name,
			"id":   item.DownloadID,
			"item_number": map[string]any{
				"id":       item.DownloadID,
				"quantity": item.Quantity,
				"options":  options,
			},
			"item_price": item.ItemPrice.InexactFloat64(),
			"quantity":   item.Quantity,
			"subtotal":   item.Subtotal.InexactFloat64(),
			"tax":        item.Tax.InexactFloat64(),
			"price":      item.Price.InexactFloat64(),
		})
	}

	return map[string]any{
		"key":      p.Key,
		"email":    p.Email,
		"date":     date.Format(metaDateLayout),
		"currency": p.Currency,
		"user_info": map[string]any{
			"id":         p.UserID,
			"email":      p.Email,
			"first_name": p.FirstName,
			"last_name":  p.LastName,
		},
		"downloads":    downloads,
		"cart_details": cartDetails,
	}, nil
}

func (r *GormOrderRepository) Key(ctx context.Context, paymentID int64) (string, error) {
	p, err := r.find(ctx, paymentID, false)
	if err != nil {
		return "", err
	}
	return p.Key, nil
}

// Number falls back to the payment id when no sequential number was issued.
func (r *GormOrderRepository) Number(ctx context.Context, paymentID int64) (string, error) {
	p, err := r.find(ctx, paymentID, false)
	if err != nil {
		return "", err
	}
	if p.Number == "" {
		return fmt.Sprint(p.ID), nil
	}
	return p.Number, nil
}

func (r *GormOrderRepository) TransactionID(ctx context.Context, paymentID int64) (string, error) {
	p, err := r.find(ctx, paymentID, false)
	if err != nil {
		return "", err
	}
	return p.TransactionID, nil
}

func (r *GormOrderRepository) Subtotal(ctx context.Context, paymentID int64) (decimal.Decimal, error) {
	p, err := r.find(ctx, paymentID, false)
	if err != nil {
		return decimal.Zero, err
	}
	return p.Subtotal, nil
}

func (r *GormOrderRepository) Total(ctx context.Context, paymentID int64) (decimal.Decimal, error) {
	p, err := r.find(ctx, paymentID, false)
	if err != nil {
		return decimal.Zero, err
	}
	return p.Total, nil
}

func (r *GormOrderRepository) Tax(ctx context.Context, paymentID int64) (decimal.Decimal, error) {
	p, err := r.find(ctx, paymentID, false)
	if err != nil {
		return decimal.Zero, err
	}
	return p.Tax, nil
}

func (r *GormOrderRepository) Currency(ctx context.Context, paymentID int64) (string, error) {
	p, err := r.find(ctx, paymentID, false)
	if err != nil {
		return "", err
	}
	return p.Currency, nil
}

func (r *GormOrderRepository) Gateway(ctx context.Context, paymentID int64) (string, error) {
	p, err := r.find(ctx, paymentID, false)
	if err != nil {
		return "", err
	}
	return p.Gateway, nil
}

func (r *GormOrderRepository) BuyerIP(ctx context.Context, paymentID int64) (string, error) {
	p, err := r.find(ctx, paymentID, false)
	if err != nil {
		return "", err
	}
	return p.BuyerIP, nil
}

func (r *GormOrderRepository) CustomerID(ctx context.Context, paymentID int64) (int64, error) {
	p, err := r.find(ctx, paymentID, false)
	if err != nil {
		return 0, err
	}
	return p.CustomerID, nil
}

// IsGuest reports whether the payment was made without a user account.
func (r *GormOrderRepository) IsGuest(ctx context.Context, paymentID int64) (bool, error) {
	p, err := r.find(ctx, paymentID, false)
	if err != nil {
		return false, err
	}
	return p.UserID == 0, nil
}

var _ OrderAccessor = (*GormOrderRepository)(nil)
