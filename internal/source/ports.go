package source

import (
	"context"
	"errors"

	"kopilka/internal/core"
)

// Loader is the inbound port every transaction source implements.
// Implementations return the full set of ingested records; the analytics
// layer never reads incrementally.
type Loader interface {
	Load(ctx context.Context) ([]core.Transaction, error)
}

var (
	// ErrNotFound signals a missing transactions file or sheet.
	ErrNotFound = errors.New("transaction source not found")
	// ErrMissingColumns signals a table without the required header set.
	ErrMissingColumns = errors.New("missing required columns")
	// ErrBadFormat signals a table that could not be read at all.
	ErrBadFormat = errors.New("malformed transaction table")
)
