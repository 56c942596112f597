package services

import (
	"fmt"
	"regexp"
	"strings"

	"kopilka/internal/core"
	"kopilka/internal/log"
)

// Default patterns for the two specialized searches: an international
// phone number (+7 999 123-45-67 style) and a personal name with an
// initial ("Ivanov A.").
const (
	DefaultPhonePattern = `\+7\s?\d{3}\s?\d{3}[-\s]?\d{2}[-\s]?\d{2}`
	DefaultNamePattern  = `[A-Z][a-z]+\s[A-Z]\.`

	transfersCategory = "Transfers"
)

// SearchService runs text and pattern searches over transaction
// descriptions and categories.
type SearchService struct {
	log *log.Logger
}

func NewSearchService(logger *log.Logger) *SearchService {
	return &SearchService{log: logger.WithComponent(log.ComponentServices)}
}

// SimpleSearch returns transactions whose description or category contains
// the query as a substring. An empty query matches nothing.
func (s *SearchService) SimpleSearch(query string, txns []core.Transaction, caseSensitive bool) []core.Transaction {
	if query == "" {
		return nil
	}
	if !caseSensitive {
		query = strings.ToLower(query)
	}

	var results []core.Transaction
	for _, t := range txns {
		description, category := t.Description, t.Category
		if !caseSensitive {
			description = strings.ToLower(description)
			category = strings.ToLower(category)
		}
		if strings.Contains(description, query) || strings.Contains(category, query) {
			results = append(results, t)
		}
	}
	return results
}

// PhoneNumberSearch returns transactions whose description matches a phone
// number pattern. An empty pattern selects the default.
func (s *SearchService) PhoneNumberSearch(txns []core.Transaction, pattern string) ([]core.Transaction, error) {
	re, err := s.compile(pattern, DefaultPhonePattern)
	if err != nil {
		return nil, err
	}

	var results []core.Transaction
	for _, t := range txns {
		if t.Description == "" {
			s.log.Warn("Skipping transaction without a description",
				log.FieldOperation, "phone_number_search",
				log.FieldCategory, t.Category)
			continue
		}
		if re.MatchString(t.Description) {
			results = append(results, t)
		}
	}
	return results, nil
}

// PersonTransfersSearch returns transfers to private persons: category is
// exactly "Transfers" and the description matches a name pattern.
func (s *SearchService) PersonTransfersSearch(txns []core.Transaction, pattern string) ([]core.Transaction, error) {
	re, err := s.compile(pattern, DefaultNamePattern)
	if err != nil {
		return nil, err
	}

	var results []core.Transaction
	for _, t := range txns {
		if t.Category != transfersCategory {
			continue
		}
		if t.Description == "" {
			s.log.Warn("Skipping transfer without a description",
				log.FieldOperation, "person_transfers_search")
			continue
		}
		if re.MatchString(t.Description) {
			results = append(results, t)
		}
	}
	return results, nil
}

func (s *SearchService) compile(pattern, fallback string) (*regexp.Regexp, error) {
	if pattern == "" {
		pattern = fallback
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidPattern, err)
	}
	return re, nil
}
