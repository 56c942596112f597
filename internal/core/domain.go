package core

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// Date wraps time.Time so an unparseable operation date can be carried
	// as a zero value instead of dropping the whole record.
	Date struct {
		time.Time
	}

	// Transaction is one ingested bank-card operation.
	// Amount sign convention: positive = expense, negative = income.
	Transaction struct {
		Date        Date
		Category    string
		Description string
		Amount      decimal.Decimal
		Cashback    decimal.Decimal
		Card        string
	}

	// Quote is a symbol/value pair returned by the market data gateway.
	Quote struct {
		Symbol string          `json:"symbol"`
		Value  decimal.Decimal `json:"value"`
	}
)

var (
	ErrInvalidRange         = errors.New("invalid range spec")
	ErrInvalidMonth         = errors.New("invalid month")
	ErrInvalidRoundingLimit = errors.New("rounding limit must be positive")
	ErrInvalidPattern       = errors.New("invalid search pattern")
)

// Accepted operation-date layouts, tried in order.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02.01.2006 15:04:05",
	"02.01.2006",
}

// ParseOperationDate parses a raw spreadsheet date value. All layouts are
// interpreted in UTC; the exports carry no timezone information.
func ParseOperationDate(s string) (Date, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t}, nil
		}
	}
	return Date{}, errors.New("unrecognized date format: " + s)
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// IsEmpty reports whether the operation date failed to parse at ingest.
// Records with empty dates are excluded from date-windowed aggregations
// but remain visible to search.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// LastDigits returns the display identifier for the card: the last four
// characters, or the whole identifier when shorter.
func (t Transaction) LastDigits() string {
	if len(t.Card) > 4 {
		return t.Card[len(t.Card)-4:]
	}
	return t.Card
}

// IsExpense reports whether the transaction is an outgoing payment.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsPositive()
}

// IsIncome reports whether the transaction is an incoming payment.
func (t Transaction) IsIncome() bool {
	return t.Amount.IsNegative()
}
