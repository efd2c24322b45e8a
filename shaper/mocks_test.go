package shaper_test

import (
	"context"
	"errors"

	"analytics-service/models"
	"analytics-service/repository"

	"github.com/shopspring/decimal"
)

type mockDownload struct {
	title    string
	price    decimal.Decimal
	variable map[int]decimal.Decimal
	terms    []models.Term
	sku      string
}

type mockCatalog struct {
	downloads map[int64]mockDownload
	usesSKU   bool
	calls     int
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{downloads: map[int64]mockDownload{
		42: {
			title: "Theme Pro",
			price: decimal.RequireFromString("49.00"),
			variable: map[int]decimal.Decimal{
				1: decimal.RequireFromString("49.00"),
				2: decimal.RequireFromString("99.00"),
			},
			terms: []models.Term{{Name: "Themes"}, {Name: "Blogging"}},
			sku:   "THEME-PRO",
		},
		7: {
			title: "Icon <strong>pack</strong>",
			price: decimal.RequireFromString("5.00"),
		},
	}}
}

func (m *mockCatalog) get(id int64) (mockDownload, error) {
	m.calls++
	d, ok := m.downloads[id]
	if !ok {
		return mockDownload{}, repository.ErrNotFound
	}
	return d, nil
}

func (m *mockCatalog) Price(_ context.Context, id int64) (decimal.Decimal, error) {
	d, err := m.get(id)
	return d.price, err
}

func (m *mockCatalog) VariablePrice(_ context.Context, id int64, priceID int) (decimal.Decimal, error) {
	d, err := m.get(id)
	if err != nil {
		return decimal.Zero, err
	}
	p, ok := d.variable[priceID]
	if !ok {
		return decimal.Zero, repository.ErrNotFound
	}
	return p, nil
}

func (m *mockCatalog) HasVariablePrices(_ context.Context, id int64) (bool, error) {
	d, err := m.get(id)
	return len(d.variable) > 0, err
}

func (m *mockCatalog) Title(_ context.Context, id int64) (string, error) {
	d, err := m.get(id)
	return d.title, err
}

func (m *mockCatalog) CategoryTerms(_ context.Context, id int64) ([]models.Term, error) {
	d, err := m.get(id)
	return d.terms, err
}

func (m *mockCatalog) UsesSKU() bool { return m.usesSKU }

func (m *mockCatalog) SKU(_ context.Context, id int64) (string, error) {
	d, err := m.get(id)
	return d.sku, err
}

type mockOrders struct {
	payments map[int64]models.Payment
}

func newMockOrders() *mockOrders {
	return &mockOrders{payments: map[int64]models.Payment{
		777: {
			ID:            777,
			Key:           "k777",
			Number:        "EDD-777",
			TransactionID: "ch_777",
			Email:         "buyer@example.com",
			CustomerID:    5,
			UserID:        0,
			BuyerIP:       "198.51.100.7",
			Subtotal:      decimal.RequireFromString("99.00"),
			Tax:           decimal.RequireFromString("9.90"),
			Total:         decimal.RequireFromString("108.90"),
			Currency:      "USD",
			Gateway:       "paypal",
		},
	}}
}

var errNoPayment = errors.New("no such payment")

func (m *mockOrders) get(id int64) (models.Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return models.Payment{}, errNoPayment
	}
	return p, nil
}

func (m *mockOrders) OrderMeta(_ context.Context, id int64) (map[string]any, error) {
	p, err := m.get(id)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"email":     p.Email,
		"user_info": map[string]any{"email": p.Email},
	}, nil
}

func (m *mockOrders) Key(_ context.Context, id int64) (string, error) {
	p, err := m.get(id)
	return p.Key, err
}

func (m *mockOrders) Number(_ context.Context, id int64) (string, error) {
	p, err := m.get(id)
	return p.Number, err
}

func (m *mockOrders) TransactionID(_ context.Context, id int64) (string, error) {
	p, err := m.get(id)
	return p.TransactionID, err
}

func (m *mockOrders) Subtotal(_ context.Context, id int64) (decimal.Decimal, error) {
	p, err := m.get(id)
	return p.Subtotal, err
}

func (m *mockOrders) Total(_ context.Context, id int64) (decimal.Decimal, error) {
	p, err := m.get(id)
	return p.Total, err
}

func (m *mockOrders) Tax(_ context.Context, id int64) (decimal.Decimal, error) {
	p, err := m.get(id)
	return p.Tax, err
}

func (m *mockOrders) Currency(_ context.Context, id int64) (string, error) {
	p, err := m.get(id)
	return p.Currency, err
}

func (m *mockOrders) Gateway(_ context.Context, id int64) (string, error) {
	p, err := m.get(id)
	return p.Gateway, err
}

func (m *mockOrders) BuyerIP(_ context.Context, id int64) (string, error) {
	p, err := m.get(id)
	return p.BuyerIP, err
}

func (m *mockOrders) CustomerID(_ context.Context, id int64) (int64, error) {
	p, err := m.get(id)
	return p.CustomerID, err
}

func (m *mockOrders) IsGuest(_ context.Context, id int64) (bool, error) {
	p, err := m.get(id)
	return p.UserID == 0, err
}

type mockCart struct {
	entries []models.CartEntry
	err     error
}

func (m *mockCart) CartContents(context.Context) ([]models.CartEntry, error) {
	return m.entries, m.err
}

func intPtr(v int) *int { return &v }
