// Package csvfile loads transactions from a CSV export of the bank's
// operations spreadsheet.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"kopilka/internal/core"
	"kopilka/internal/log"
	"kopilka/internal/source"
)

type Source struct {
	path         string
	allowMissing bool
	log          *log.Logger
}

var _ source.Loader = (*Source)(nil)

// New creates a CSV-backed source. With allowMissing set, a missing file
// yields zero rows instead of an error (test-mode override).
func New(path string, allowMissing bool, logger *log.Logger) *Source {
	return &Source{
		path:         path,
		allowMissing: allowMissing,
		log:          logger.WithComponent(log.ComponentSource),
	}
}

// Load reads and parses the whole file.
func (s *Source) Load(_ context.Context) ([]core.Transaction, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			if s.allowMissing {
				s.log.Warn("Transactions file missing, continuing with no rows",
					log.FieldPath, s.path)
				return nil, nil
			}
			return nil, fmt.Errorf("%w: %s", source.ErrNotFound, s.path)
		}
		return nil, fmt.Errorf("open transactions file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged rows are handled during parsing
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", source.ErrBadFormat, err)
	}

	txns, err := source.ParseTable(rows, s.log)
	if err != nil {
		return nil, err
	}

	s.log.Info("Loaded transactions from CSV",
		log.FieldPath, s.path,
		log.FieldRows, len(txns))
	return txns, nil
}
