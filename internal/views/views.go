// Package views assembles the user-facing dashboard and events payloads
// from transactions, market quotes and user settings.
package views

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"kopilka/internal/core"
	"kopilka/internal/log"
	"kopilka/internal/settings"
)

// MarketData is the outbound port to the quote providers.
type MarketData interface {
	RatesFor(ctx context.Context, currencies []string) ([]core.Quote, error)
	PricesFor(ctx context.Context, stocks []string) ([]core.Quote, error)
}

// SettingsReader supplies the user's tracked currencies and tickers.
type SettingsReader interface {
	UserSettings() (settings.Settings, error)
}

type Assembler struct {
	market   MarketData
	settings SettingsReader
	log      *log.Logger
}

func NewAssembler(market MarketData, settingsReader SettingsReader, logger *log.Logger) *Assembler {
	return &Assembler{
		market:   market,
		settings: settingsReader,
		log:      logger.WithComponent(log.ComponentViews),
	}
}

const (
	GreetingMorning   = "Good morning"
	GreetingAfternoon = "Good afternoon"
	GreetingEvening   = "Good evening"
	GreetingNight     = "Good night"
)

// Supported events ranges.
const (
	RangeWeek  = "week"
	RangeMonth = "month"
	RangeYear  = "year"
	RangeAll   = "all"
)

type (
	CardSummary struct {
		LastDigits string          `json:"last_digits"`
		TotalSpent decimal.Decimal `json:"total_spent"`
		Cashback   decimal.Decimal `json:"cashback"`
	}

	TopTransaction struct {
		Date        string          `json:"date"` // day.month.year
		Amount      decimal.Decimal `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
	}

	DashboardPayload struct {
		Greeting        string           `json:"greeting"`
		Cards           []CardSummary    `json:"cards"`
		TopTransactions []TopTransaction `json:"top_transactions"`
		CurrencyRates   []core.Quote     `json:"currency_rates"`
		StockPrices     []core.Quote     `json:"stock_prices"`
	}

	CategoryAmount struct {
		Category string `json:"category"`
		Amount   int64  `json:"amount"`
	}

	EventsExpenses struct {
		TotalAmount      int64            `json:"total_amount"`
		Main             []CategoryAmount `json:"main"`
		TransfersAndCash []CategoryAmount `json:"transfers_and_cash"`
	}

	EventsIncome struct {
		TotalAmount int64            `json:"total_amount"`
		Main        []CategoryAmount `json:"main"`
	}

	EventsPayload struct {
		Expenses      EventsExpenses `json:"expenses"`
		Income        EventsIncome   `json:"income"`
		CurrencyRates []core.Quote   `json:"currency_rates"`
		StockPrices   []core.Quote   `json:"stock_prices"`
	}
)

// Dashboard builds the home view: greeting, per-card totals, the five
// largest transactions in the window and the user's quotes.
func (a *Assembler) Dashboard(ctx context.Context, txns []core.Transaction, asOf time.Time, w core.Window) (DashboardPayload, error) {
	rates, prices, err := a.quotes(ctx)
	if err != nil {
		a.log.ErrorContext(ctx, "Dashboard assembly failed on market data",
			log.FieldOperation, log.OpAssemble,
			log.FieldError, err)
		return DashboardPayload{}, err
	}

	windowed := make([]core.Transaction, 0, len(txns))
	for _, t := range txns {
		if w.Contains(t.Date) {
			windowed = append(windowed, t)
		}
	}

	return DashboardPayload{
		Greeting:        Greeting(asOf),
		Cards:           cardSummaries(windowed),
		TopTransactions: topTransactions(windowed, 5),
		CurrencyRates:   rates,
		StockPrices:     prices,
	}, nil
}

// Events builds the period view. rangeSpec selects the window start
// relative to asOf: week, month, year or all.
func (a *Assembler) Events(ctx context.Context, txns []core.Transaction, asOf time.Time, rangeSpec string) (EventsPayload, error) {
	w, err := rangeWindow(asOf, rangeSpec)
	if err != nil {
		a.log.ErrorContext(ctx, "Events assembly rejected range spec",
			log.FieldRange, rangeSpec,
			log.FieldError, err)
		return EventsPayload{}, err
	}

	rates, prices, err := a.quotes(ctx)
	if err != nil {
		a.log.ErrorContext(ctx, "Events assembly failed on market data",
			log.FieldOperation, log.OpAssemble,
			log.FieldError, err)
		return EventsPayload{}, err
	}

	var expenses, income []core.Transaction
	for _, t := range txns {
		if !w.Contains(t.Date) {
			continue
		}
		switch {
		case t.IsExpense():
			expenses = append(expenses, t)
		case t.IsIncome():
			income = append(income, t)
		}
	}

	expTotal, expMain := groupByCategory(expenses, false)
	incTotal, incMain := groupByCategory(income, true)

	return EventsPayload{
		Expenses: EventsExpenses{
			TotalAmount: expTotal,
			Main:        topWithRemainder(expMain, 7),
			// Always a zero-valued placeholder pair; these buckets are not
			// computed from the data.
			TransfersAndCash: []CategoryAmount{
				{Category: "Cash", Amount: 0},
				{Category: "Transfers", Amount: 0},
			},
		},
		Income: EventsIncome{
			TotalAmount: incTotal,
			Main:        incMain,
		},
		CurrencyRates: rates,
		StockPrices:   prices,
	}, nil
}

// Greeting picks the time-of-day greeting for the given timestamp.
func Greeting(t time.Time) string {
	switch hour := t.Hour(); {
	case hour >= 5 && hour < 12:
		return GreetingMorning
	case hour >= 12 && hour < 17:
		return GreetingAfternoon
	case hour >= 17 && hour < 23:
		return GreetingEvening
	default:
		return GreetingNight
	}
}

func (a *Assembler) quotes(ctx context.Context) ([]core.Quote, []core.Quote, error) {
	cfg, err := a.settings.UserSettings()
	if err != nil {
		return nil, nil, fmt.Errorf("load user settings: %w", err)
	}
	rates, err := a.market.RatesFor(ctx, cfg.Currencies)
	if err != nil {
		return nil, nil, err
	}
	prices, err := a.market.PricesFor(ctx, cfg.Stocks)
	if err != nil {
		return nil, nil, err
	}
	return rates, prices, nil
}

func cardSummaries(txns []core.Transaction) []CardSummary {
	// Grouping is per distinct card number; the last digits are only the
	// display form, and two cards may share them.
	type sums struct {
		digits   string
		spent    decimal.Decimal
		cashback decimal.Decimal
	}
	byCard := make(map[string]*sums)
	for _, t := range txns {
		if t.Card == "" {
			continue
		}
		if byCard[t.Card] == nil {
			byCard[t.Card] = &sums{digits: t.LastDigits()}
		}
		byCard[t.Card].spent = byCard[t.Card].spent.Add(t.Amount)
		byCard[t.Card].cashback = byCard[t.Card].cashback.Add(t.Cashback)
	}

	numbers := make([]string, 0, len(byCard))
	for number := range byCard {
		numbers = append(numbers, number)
	}
	sort.Slice(numbers, func(i, j int) bool {
		if byCard[numbers[i]].digits != byCard[numbers[j]].digits {
			return byCard[numbers[i]].digits < byCard[numbers[j]].digits
		}
		return numbers[i] < numbers[j]
	})

	cards := make([]CardSummary, 0, len(numbers))
	for _, number := range numbers {
		s := byCard[number]
		cards = append(cards, CardSummary{
			LastDigits: s.digits,
			TotalSpent: s.spent.Round(2),
			Cashback:   s.cashback.Round(2),
		})
	}
	return cards
}

func topTransactions(txns []core.Transaction, n int) []TopTransaction {
	sorted := make([]core.Transaction, len(txns))
	copy(sorted, txns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Amount.GreaterThan(sorted[j].Amount)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	out := make([]TopTransaction, 0, len(sorted))
	for _, t := range sorted {
		out = append(out, TopTransaction{
			Date:        t.Date.Format("02.01.2006"),
			Amount:      t.Amount.Round(2),
			Category:    t.Category,
			Description: t.Description,
		})
	}
	return out
}

// groupByCategory sums per category and returns the integer-rounded grand
// total plus rows sorted by amount descending (name ascending on ties).
// With abs set, amounts are negated first (income is stored negative).
func groupByCategory(txns []core.Transaction, abs bool) (int64, []CategoryAmount) {
	byCategory := make(map[string]decimal.Decimal)
	total := decimal.Zero
	for _, t := range txns {
		amount := t.Amount
		if abs {
			amount = amount.Neg()
		}
		byCategory[t.Category] = byCategory[t.Category].Add(amount)
		total = total.Add(amount)
	}

	rows := make([]CategoryAmount, 0, len(byCategory))
	for category, amount := range byCategory {
		rows = append(rows, CategoryAmount{Category: category, Amount: amount.Round(0).IntPart()})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Amount != rows[j].Amount {
			return rows[i].Amount > rows[j].Amount
		}
		return rows[i].Category < rows[j].Category
	})
	return total.Round(0).IntPart(), rows
}

// topWithRemainder keeps the n largest rows and folds the rest into a
// synthetic "Other" bucket, omitted when the remainder is not positive.
func topWithRemainder(rows []CategoryAmount, n int) []CategoryAmount {
	if len(rows) <= n {
		return rows
	}
	top := rows[:n]
	var other int64
	for _, row := range rows[n:] {
		other += row.Amount
	}
	if other > 0 {
		top = append(top, CategoryAmount{Category: "Other", Amount: other})
	}
	return top
}

func rangeWindow(asOf time.Time, rangeSpec string) (core.Window, error) {
	y, m, d := asOf.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	switch rangeSpec {
	case RangeWeek:
		offset := int(day.Weekday()) - 1
		if offset < 0 { // Sunday
			offset = 6
		}
		return core.Window{Start: day.AddDate(0, 0, -offset), End: asOf}, nil
	case RangeMonth:
		return core.Window{Start: time.Date(y, m, 1, 0, 0, 0, 0, time.UTC), End: asOf}, nil
	case RangeYear:
		return core.Window{Start: time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC), End: asOf}, nil
	case RangeAll:
		return core.Window{End: asOf}, nil
	default:
		return core.Window{}, fmt.Errorf("%w: %q", core.ErrInvalidRange, rangeSpec)
	}
}
