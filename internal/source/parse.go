package source

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"kopilka/internal/core"
	"kopilka/internal/log"
)

// Canonical column names, matched case-insensitively against the header row.
const (
	colDate        = "operation date"
	colCard        = "card number"
	colAmount      = "amount"
	colCashback    = "cashback"
	colCategory    = "category"
	colDescription = "description"
)

var requiredColumns = []string{colDate, colCard, colAmount, colCashback, colCategory, colDescription}

// ParseTable converts a raw table (header row first) into transactions.
//
// Per-row malformation is recovered locally: rows whose amount or cashback
// does not parse are skipped with a warning, and an unparseable operation
// date yields a record with an empty date rather than dropping the row.
// A header missing any required column fails the whole call.
func ParseTable(rows [][]string, logger *log.Logger) ([]core.Transaction, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty table", ErrBadFormat)
	}

	idx, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	txns := make([]core.Transaction, 0, len(rows)-1)
	skipped := 0
	for i, row := range rows[1:] {
		txn, err := parseRow(row, idx)
		if err != nil {
			skipped++
			logger.Warn("Skipping malformed transaction row",
				log.FieldRows, i+2, // 1-based, counting the header
				log.FieldError, err)
			continue
		}
		if txn.Date.IsEmpty() {
			logger.Warn("Transaction has unparseable operation date, excluded from date-windowed aggregations",
				log.FieldRows, i+2,
				log.FieldDescription, txn.Description)
		}
		txns = append(txns, txn)
	}

	if skipped > 0 {
		logger.Info("Finished parsing transaction table",
			log.FieldRows, len(txns),
			log.FieldSkipped, skipped)
	}
	return txns, nil
}

func headerIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return idx, nil
}

func parseRow(row []string, idx map[string]int) (core.Transaction, error) {
	amountRaw := strings.TrimSpace(cell(row, idx[colAmount]))
	amount, err := decimal.NewFromString(amountRaw)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount %q: %w", amountRaw, err)
	}

	// Cashback defaults to zero when the cell is empty.
	cashback := decimal.Zero
	if raw := strings.TrimSpace(cell(row, idx[colCashback])); raw != "" {
		cashback, err = decimal.NewFromString(raw)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("cashback %q: %w", raw, err)
		}
	}

	// A bad date is not fatal for the record; it only excludes it from
	// date-windowed aggregations.
	date, _ := core.ParseOperationDate(strings.TrimSpace(cell(row, idx[colDate])))

	return core.Transaction{
		Date:        date,
		Category:    strings.TrimSpace(cell(row, idx[colCategory])),
		Description: strings.TrimSpace(cell(row, idx[colDescription])),
		Amount:      amount,
		Cashback:    cashback,
		Card:        strings.TrimSpace(cell(row, idx[colCard])),
	}, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
