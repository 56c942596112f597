package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"kopilka/internal/core"
	"kopilka/internal/log"
)

// The source spreadsheets only cover these years; out-of-range requests
// are clamped rather than rejected.
const (
	minDataYear = 2018
	maxDataYear = 2021
)

// CashbackService ranks cashback categories and simulates round-up savings.
type CashbackService struct {
	log *log.Logger
}

func NewCashbackService(logger *log.Logger) *CashbackService {
	return &CashbackService{log: logger.WithComponent(log.ComponentServices)}
}

// ProfitableCashbackCategories sums cashback per category for transactions
// in the given year and month. Only categories with positive cashback
// appear in the result.
func (s *CashbackService) ProfitableCashbackCategories(txns []core.Transaction, year, month int) map[string]decimal.Decimal {
	year = s.clampYear(year)
	if month < 1 || month > 12 {
		month = 12
	}

	byCategory := make(map[string]decimal.Decimal)
	for _, t := range txns {
		if t.Date.IsEmpty() {
			s.log.Warn("Skipping transaction without a parseable date",
				log.FieldOperation, "cashback_categories",
				log.FieldDescription, t.Description)
			continue
		}
		if t.Date.Year() != year || int(t.Date.Month()) != month {
			continue
		}
		if t.Cashback.IsPositive() {
			byCategory[t.Category] = byCategory[t.Category].Add(t.Cashback)
		}
	}
	return byCategory
}

// InvestmentBank totals the savings from rounding each positive amount in
// the given month (YYYY-MM) up to the next multiple of roundingLimit.
// Income transactions are never rounded.
func (s *CashbackService) InvestmentBank(month string, txns []core.Transaction, roundingLimit decimal.Decimal) (decimal.Decimal, error) {
	if !roundingLimit.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", core.ErrInvalidRoundingLimit, roundingLimit)
	}
	year, monthNum, err := parseMonth(month)
	if err != nil {
		return decimal.Decimal{}, err
	}
	year = s.clampYear(year)

	total := decimal.Zero
	for _, t := range txns {
		if t.Date.IsEmpty() {
			s.log.Warn("Skipping transaction without a parseable date",
				log.FieldOperation, "investment_bank",
				log.FieldDescription, t.Description)
			continue
		}
		if t.Date.Year() != year || int(t.Date.Month()) != monthNum {
			continue
		}
		if !t.Amount.IsPositive() {
			continue
		}
		remainder := t.Amount.Mod(roundingLimit)
		if remainder.IsPositive() {
			total = total.Add(roundingLimit.Sub(remainder))
		}
	}
	return total.Round(2), nil
}

func (s *CashbackService) clampYear(year int) int {
	if year < minDataYear || year > maxDataYear {
		s.log.Warn("Year outside the data range, clamping",
			log.FieldYear, year,
			"clamped_to", maxDataYear)
		return maxDataYear
	}
	return year
}

// parseMonth splits a YYYY-MM string into its parts.
func parseMonth(month string) (int, int, error) {
	parts := strings.Split(month, "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q is not YYYY-MM", core.ErrInvalidMonth, month)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad year in %q", core.ErrInvalidMonth, month)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 1 || m > 12 {
		return 0, 0, fmt.Errorf("%w: bad month in %q", core.ErrInvalidMonth, month)
	}
	return year, m, nil
}
