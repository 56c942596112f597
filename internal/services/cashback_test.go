package services

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"kopilka/internal/core"
	"kopilka/internal/log"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// Six transactions across two months, mirroring a typical statement slice.
func cashbackFixture() []core.Transaction {
	return []core.Transaction{
		{Date: core.NewDate(2021, 1, 5), Category: "Supermarket", Cashback: d("50.25"), Amount: d("1000")},
		{Date: core.NewDate(2021, 1, 8), Category: "Supermarket", Cashback: decimal.Zero, Amount: d("500")},
		{Date: core.NewDate(2021, 1, 12), Category: "Transfers", Cashback: decimal.Zero, Amount: d("3000")},
		{Date: core.NewDate(2021, 1, 20), Category: "Pharmacy", Cashback: d("12.40"), Amount: d("620")},
		{Date: core.NewDate(2021, 2, 2), Category: "Supermarket", Cashback: d("7.77"), Amount: d("777")},
		{Category: "Cafe", Cashback: d("9.99"), Amount: d("100")}, // no parseable date
	}
}

func TestProfitableCashbackCategories(t *testing.T) {
	s := NewCashbackService(log.Discard("test"))

	got := s.ProfitableCashbackCategories(cashbackFixture(), 2021, 1)

	if len(got) != 2 {
		t.Fatalf("got %d categories, want 2: %v", len(got), got)
	}
	if v, ok := got["Supermarket"]; !ok || !v.Equal(d("50.25")) {
		t.Errorf("Supermarket = %s, want 50.25", v)
	}
	if v, ok := got["Pharmacy"]; !ok || !v.Equal(d("12.40")) {
		t.Errorf("Pharmacy = %s, want 12.40", v)
	}
	// Zero-cashback categories never appear.
	if _, ok := got["Transfers"]; ok {
		t.Error("Transfers has no positive cashback and must be absent")
	}
}

func TestProfitableCashbackCategories_Clamping(t *testing.T) {
	s := NewCashbackService(log.Discard("test"))
	txns := []core.Transaction{
		{Date: core.NewDate(2021, 12, 1), Category: "Cafe", Cashback: d("5")},
	}

	// Year 2030 clamps to 2021, month 13 clamps to 12.
	got := s.ProfitableCashbackCategories(txns, 2030, 13)
	if v, ok := got["Cafe"]; !ok || !v.Equal(d("5")) {
		t.Fatalf("clamped lookup = %v, want Cafe:5", got)
	}
}

func TestInvestmentBank(t *testing.T) {
	s := NewCashbackService(log.Discard("test"))

	tests := []struct {
		name  string
		txns  []core.Transaction
		limit decimal.Decimal
		want  decimal.Decimal
	}{
		{
			name:  "exact multiple saves nothing",
			txns:  []core.Transaction{{Date: core.NewDate(2021, 1, 5), Amount: d("1000")}},
			limit: d("50"),
			want:  d("0"),
		},
		{
			name:  "remainder rounds up",
			txns:  []core.Transaction{{Date: core.NewDate(2021, 1, 5), Amount: d("1030")}},
			limit: d("50"),
			want:  d("20"),
		},
		{
			name: "savings accumulate, income excluded",
			txns: []core.Transaction{
				{Date: core.NewDate(2021, 1, 5), Amount: d("1030")},
				{Date: core.NewDate(2021, 1, 9), Amount: d("17.50")},
				{Date: core.NewDate(2021, 1, 12), Amount: d("-5000")},
			},
			limit: d("50"),
			want:  d("52.50"), // 20 + 32.50
		},
		{
			name: "other months excluded",
			txns: []core.Transaction{
				{Date: core.NewDate(2021, 2, 5), Amount: d("1030")},
			},
			limit: d("50"),
			want:  d("0"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.InvestmentBank("2021-01", tt.txns, tt.limit)
			if err != nil {
				t.Fatalf("InvestmentBank: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("savings = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestInvestmentBank_InvalidArguments(t *testing.T) {
	s := NewCashbackService(log.Discard("test"))

	if _, err := s.InvestmentBank("2021-01", nil, d("0")); !errors.Is(err, core.ErrInvalidRoundingLimit) {
		t.Errorf("zero limit: err = %v, want ErrInvalidRoundingLimit", err)
	}
	if _, err := s.InvestmentBank("2021-01", nil, d("-10")); !errors.Is(err, core.ErrInvalidRoundingLimit) {
		t.Errorf("negative limit: err = %v, want ErrInvalidRoundingLimit", err)
	}

	for _, month := range []string{"2021", "2021-13", "2021-00", "january", "2021-1-1"} {
		if _, err := s.InvestmentBank(month, nil, d("50")); !errors.Is(err, core.ErrInvalidMonth) {
			t.Errorf("month %q: err = %v, want ErrInvalidMonth", month, err)
		}
	}
}

func TestInvestmentBank_YearClamp(t *testing.T) {
	s := NewCashbackService(log.Discard("test"))
	txns := []core.Transaction{{Date: core.NewDate(2021, 1, 5), Amount: d("1030")}}

	// Year 2035 clamps to 2021, so the January 2021 transaction qualifies.
	got, err := s.InvestmentBank("2035-01", txns, d("50"))
	if err != nil {
		t.Fatalf("InvestmentBank: %v", err)
	}
	if !got.Equal(d("20")) {
		t.Errorf("savings = %s, want 20", got)
	}
}
