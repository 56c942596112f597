// Package report computes spend aggregations over a date window.
//
// All operations are pure with respect to their inputs: they take the full
// transaction collection plus an explicit window and return fresh results.
// Records whose operation date failed to parse at ingest carry an empty
// date and are excluded here without failing the call.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"kopilka/internal/core"
	"kopilka/internal/log"
)

type (
	// MonthlySpend is the per-calendar-month total for one category.
	MonthlySpend struct {
		Month string          `json:"month"` // YYYY-MM
		Total decimal.Decimal `json:"total"`
	}

	// WeekdaySpend is the mean transaction amount for one weekday.
	WeekdaySpend struct {
		Weekday string          `json:"weekday"`
		Mean    decimal.Decimal `json:"mean_amount"`
	}

	// DayTypeSpend is the mean transaction amount for workdays or weekends.
	// Empty marks a bucket with no transactions, whose mean is reported as
	// zero because a true mean of zero transactions is undefined.
	DayTypeSpend struct {
		DayType string          `json:"day_type"`
		Mean    decimal.Decimal `json:"mean_amount"`
		Empty   bool            `json:"empty,omitempty"`
	}
)

const (
	DayTypeWorkday = "workday"
	DayTypeWeekend = "weekend"
)

type Engine struct {
	log *log.Logger
}

func NewEngine(logger *log.Logger) *Engine {
	return &Engine{log: logger.WithComponent(log.ComponentReport)}
}

// SpendByCategory sums amounts per calendar month for transactions of the
// given category inside the window. Months are ascending; an empty match
// yields an empty slice, not an error.
func (e *Engine) SpendByCategory(txns []core.Transaction, category string, w core.Window) []MonthlySpend {
	totals := make(map[string]decimal.Decimal)
	for _, t := range e.inWindow(txns, w) {
		if t.Category != category {
			continue
		}
		month := t.Date.Format("2006-01")
		totals[month] = totals[month].Add(t.Amount)
	}

	months := make([]string, 0, len(totals))
	for m := range totals {
		months = append(months, m)
	}
	sort.Strings(months)

	out := make([]MonthlySpend, 0, len(months))
	for _, m := range months {
		out = append(out, MonthlySpend{Month: m, Total: totals[m].Round(2)})
	}
	return out
}

// SpendByWeekday returns the mean amount for each weekday that has at
// least one transaction in the window, sorted by weekday name.
func (e *Engine) SpendByWeekday(txns []core.Transaction, w core.Window) []WeekdaySpend {
	sums := make(map[string]decimal.Decimal)
	counts := make(map[string]int64)
	for _, t := range e.inWindow(txns, w) {
		day := t.Date.Weekday().String()
		sums[day] = sums[day].Add(t.Amount)
		counts[day]++
	}

	days := make([]string, 0, len(sums))
	for d := range sums {
		days = append(days, d)
	}
	sort.Strings(days)

	out := make([]WeekdaySpend, 0, len(days))
	for _, d := range days {
		mean := sums[d].Div(decimal.NewFromInt(counts[d]))
		out = append(out, WeekdaySpend{Weekday: d, Mean: mean.Round(2)})
	}
	return out
}

// SpendByWorkday returns exactly two rows, workday then weekend, however
// skewed the data. An empty bucket is flagged rather than omitted.
func (e *Engine) SpendByWorkday(txns []core.Transaction, w core.Window) []DayTypeSpend {
	var sums [2]decimal.Decimal
	var counts [2]int64
	for _, t := range e.inWindow(txns, w) {
		i := 0
		if wd := t.Date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			i = 1
		}
		sums[i] = sums[i].Add(t.Amount)
		counts[i]++
	}

	out := make([]DayTypeSpend, 0, 2)
	for i, dayType := range []string{DayTypeWorkday, DayTypeWeekend} {
		row := DayTypeSpend{DayType: dayType}
		if counts[i] == 0 {
			row.Empty = true
			e.log.Warn("Day-type bucket has no transactions in window",
				"day_type", dayType)
		} else {
			row.Mean = sums[i].Div(decimal.NewFromInt(counts[i])).Round(2)
		}
		out = append(out, row)
	}
	return out
}

// inWindow filters to records whose date parses and falls in the window.
func (e *Engine) inWindow(txns []core.Transaction, w core.Window) []core.Transaction {
	out := make([]core.Transaction, 0, len(txns))
	skipped := 0
	for _, t := range txns {
		if t.Date.IsEmpty() {
			skipped++
			continue
		}
		if w.Contains(t.Date) {
			out = append(out, t)
		}
	}
	if skipped > 0 {
		e.log.Warn("Excluded transactions without a parseable date",
			log.FieldSkipped, skipped)
	}
	return out
}
