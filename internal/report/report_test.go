package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"kopilka/internal/core"
	"kopilka/internal/log"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func fixtureWindow() core.Window {
	return core.Window{
		Start: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2021, 3, 31, 0, 0, 0, 0, time.UTC),
	}
}

func fixtureTxns() []core.Transaction {
	return []core.Transaction{
		{Date: core.NewDate(2021, 1, 4), Category: "Supermarket", Amount: d("100.50")}, // Monday
		{Date: core.NewDate(2021, 1, 9), Category: "Supermarket", Amount: d("200.00")}, // Saturday
		{Date: core.NewDate(2021, 2, 8), Category: "Supermarket", Amount: d("49.50")},  // Monday
		{Date: core.NewDate(2021, 2, 8), Category: "Cafe", Amount: d("30.00")},
		{Date: core.NewDate(2020, 12, 31), Category: "Supermarket", Amount: d("999.00")}, // out of window
		{Category: "Supermarket", Amount: d("500.00")},                                   // no parseable date
	}
}

func TestEngine_SpendByCategory(t *testing.T) {
	e := NewEngine(log.Discard("test"))

	got := e.SpendByCategory(fixtureTxns(), "Supermarket", fixtureWindow())
	if len(got) != 2 {
		t.Fatalf("got %d months, want 2: %+v", len(got), got)
	}
	if got[0].Month != "2021-01" || !got[0].Total.Equal(d("300.50")) {
		t.Errorf("January row = %+v, want 2021-01 / 300.50", got[0])
	}
	if got[1].Month != "2021-02" || !got[1].Total.Equal(d("49.50")) {
		t.Errorf("February row = %+v, want 2021-02 / 49.50", got[1])
	}

	// Sum of monthly totals equals the sum of matching raw amounts.
	var sum decimal.Decimal
	for _, row := range got {
		sum = sum.Add(row.Total)
	}
	if !sum.Equal(d("350.00")) {
		t.Errorf("total across months = %s, want 350.00", sum)
	}
}

func TestEngine_SpendByCategory_NoMatch(t *testing.T) {
	e := NewEngine(log.Discard("test"))
	got := e.SpendByCategory(fixtureTxns(), "Jewelry", fixtureWindow())
	if len(got) != 0 {
		t.Fatalf("no-match category must yield an empty slice, got %+v", got)
	}
}

func TestEngine_SpendByWeekday(t *testing.T) {
	e := NewEngine(log.Discard("test"))
	got := e.SpendByWeekday(fixtureTxns(), fixtureWindow())

	means := make(map[string]decimal.Decimal)
	for _, row := range got {
		means[row.Weekday] = row.Mean
	}

	// Mondays: 100.50, 49.50, 30.00 -> mean 60.00
	if m, ok := means["Monday"]; !ok || !m.Equal(d("60.00")) {
		t.Errorf("Monday mean = %s, want 60.00", m)
	}
	// Saturday: single 200.00 transaction
	if m, ok := means["Saturday"]; !ok || !m.Equal(d("200.00")) {
		t.Errorf("Saturday mean = %s, want 200.00", m)
	}
	if len(got) != 2 {
		t.Errorf("only weekdays with transactions should appear, got %+v", got)
	}
}

func TestEngine_SpendByWorkday_AlwaysTwoRows(t *testing.T) {
	e := NewEngine(log.Discard("test"))

	tests := []struct {
		name string
		txns []core.Transaction
	}{
		{"mixed", fixtureTxns()},
		{"weekday only", []core.Transaction{{Date: core.NewDate(2021, 1, 4), Amount: d("10")}}},
		{"weekend only", []core.Transaction{{Date: core.NewDate(2021, 1, 9), Amount: d("10")}}},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.SpendByWorkday(tt.txns, fixtureWindow())
			if len(got) != 2 {
				t.Fatalf("got %d rows, want exactly 2", len(got))
			}
			if got[0].DayType != DayTypeWorkday || got[1].DayType != DayTypeWeekend {
				t.Errorf("bucket keys = %s/%s", got[0].DayType, got[1].DayType)
			}
			for _, row := range got {
				if row.Empty && !row.Mean.IsZero() {
					t.Errorf("empty bucket must report a zero mean: %+v", row)
				}
			}
		})
	}
}

func TestEngine_SpendByWorkday_Means(t *testing.T) {
	e := NewEngine(log.Discard("test"))
	got := e.SpendByWorkday(fixtureTxns(), fixtureWindow())

	// Workdays: 100.50, 49.50, 30.00 -> 60.00; weekend: 200.00
	if !got[0].Mean.Equal(d("60.00")) || got[0].Empty {
		t.Errorf("workday row = %+v, want mean 60.00", got[0])
	}
	if !got[1].Mean.Equal(d("200.00")) || got[1].Empty {
		t.Errorf("weekend row = %+v, want mean 200.00", got[1])
	}
}
