// Package memory provides a fixed in-memory transaction source for tests
// and the offline demo.
package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"kopilka/internal/core"
	"kopilka/internal/source"
)

type Store struct {
	items []core.Transaction
}

var _ source.Loader = (*Store)(nil)

func New(txns []core.Transaction) *Store {
	return &Store{items: txns}
}

// NewDemo seeds a small but representative transaction history: two cards,
// expenses and income, cashback, a transfer to a person and a phone top-up.
func NewDemo() *Store {
	d := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	return New([]core.Transaction{
		{Date: core.NewDate(2021, 12, 1), Category: "Supermarket", Description: "Lenta", Amount: d("1712.50"), Cashback: d("17.12"), Card: "*7197"},
		{Date: core.NewDate(2021, 12, 3), Category: "Supermarket", Description: "Magnit", Amount: d("345.00"), Cashback: d("3.45"), Card: "*7197"},
		{Date: core.NewDate(2021, 12, 5), Category: "Cafe", Description: "Coffee Point", Amount: d("230.00"), Cashback: decimal.Zero, Card: "*5091"},
		{Date: core.NewDate(2021, 12, 8), Category: "Transfers", Description: "Ivanov A.", Amount: d("5000.00"), Cashback: decimal.Zero, Card: "*7197"},
		{Date: core.NewDate(2021, 12, 10), Category: "Mobile", Description: "Top-up +7 921 111-22-33", Amount: d("300.00"), Cashback: decimal.Zero, Card: "*5091"},
		{Date: core.NewDate(2021, 12, 15), Category: "Salary", Description: "Monthly pay", Amount: d("-60000.00"), Cashback: decimal.Zero, Card: "*7197"},
		{Date: core.NewDate(2021, 11, 27), Category: "Pharmacy", Description: "Rigla", Amount: d("520.80"), Cashback: d("5.20"), Card: "*5091"},
	})
}

// Load returns a copy of the seeded transactions.
func (s *Store) Load(_ context.Context) ([]core.Transaction, error) {
	out := make([]core.Transaction, len(s.items))
	copy(out, s.items)
	return out, nil
}
