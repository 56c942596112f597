package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"kopilka/internal/core"
	"kopilka/internal/log"
	"kopilka/internal/source"

	_ "modernc.org/sqlite"
)

// Repository persists ingested transactions in SQLite. It is the target of
// the ingest pipeline and doubles as a transaction source backend.
// Amount and cashback are stored as decimal strings to keep exact values.
type Repository struct {
	db  *sql.DB
	log *log.Logger
}

var _ source.Loader = (*Repository)(nil)

func NewRepository(dbPath string, logger *log.Logger) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{
		db:  db,
		log: logger.WithComponent(log.ComponentStorage),
	}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReplaceAll replaces the stored history with the given snapshot in one
// transaction. Ingest is whole-file, so a wipe-and-insert keeps the store
// an exact mirror of the latest spreadsheet.
func (r *Repository) ReplaceAll(ctx context.Context, txns []core.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (op_date, category, description, amount, cashback, card)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range txns {
		opDate := ""
		if !t.Date.IsEmpty() {
			opDate = t.Date.Format("2006-01-02 15:04:05")
		}
		if _, err := stmt.ExecContext(ctx, opDate, t.Category, t.Description,
			t.Amount.String(), t.Cashback.String(), t.Card); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	r.log.InfoContext(ctx, "Replaced stored transactions",
		log.FieldOperation, log.OpIngest,
		log.FieldRows, len(txns))
	return nil
}

// Load implements source.Loader over the stored history.
func (r *Repository) Load(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT op_date, category, description, amount, cashback, card
		FROM transactions
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txns []core.Transaction
	for rows.Next() {
		var opDate, category, description, amountStr, cashbackStr, card string
		if err := rows.Scan(&opDate, &category, &description, &amountStr, &cashbackStr, &card); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}

		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			r.log.WarnContext(ctx, "Skipping stored transaction with corrupt amount",
				log.FieldError, err)
			continue
		}
		cashback, err := decimal.NewFromString(cashbackStr)
		if err != nil {
			r.log.WarnContext(ctx, "Skipping stored transaction with corrupt cashback",
				log.FieldError, err)
			continue
		}

		var date core.Date
		if opDate != "" {
			date, _ = core.ParseOperationDate(opDate)
		}

		txns = append(txns, core.Transaction{
			Date:        date,
			Category:    category,
			Description: description,
			Amount:      amount,
			Cashback:    cashback,
			Card:        card,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return txns, nil
}

// Count returns the number of stored transactions.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}
