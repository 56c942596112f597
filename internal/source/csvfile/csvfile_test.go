package csvfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"kopilka/internal/log"
	"kopilka/internal/source"
)

const sampleCSV = `Operation Date,Card Number,Amount,Cashback,Category,Description
2021-01-15,*7197,160.89,3.00,Supermarket,Lenta
31.12.2021 16:44:00,*7197,1030.00,,Transfers,Ivanov A.
2021-01-20,*5091,-20000.00,,Salary,Monthly pay
not-a-date,*5091,50.00,1.00,Cafe,Coffee
2021-02-01,*7197,broken,,Supermarket,Magnit
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestSource_Load(t *testing.T) {
	path := writeFile(t, "operations.csv", sampleCSV)
	src := New(path, false, log.Discard("test"))

	txns, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// 5 data rows, 1 rejected for an unparseable amount.
	if len(txns) != 4 {
		t.Fatalf("got %d transactions, want 4", len(txns))
	}

	first := txns[0]
	if first.Category != "Supermarket" || first.Card != "*7197" {
		t.Errorf("unexpected first row: %+v", first)
	}
	if !first.Amount.Equal(decimal.RequireFromString("160.89")) {
		t.Errorf("amount = %s, want 160.89", first.Amount)
	}
	if !first.Cashback.Equal(decimal.NewFromInt(3)) {
		t.Errorf("cashback = %s, want 3", first.Cashback)
	}

	// Empty cashback cell defaults to zero.
	if !txns[1].Cashback.IsZero() {
		t.Errorf("missing cashback should default to zero, got %s", txns[1].Cashback)
	}

	// Bad date keeps the record but leaves the date empty.
	if !txns[3].Date.IsEmpty() {
		t.Errorf("row with bad date should carry an empty date, got %v", txns[3].Date)
	}
}

func TestSource_Load_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.csv")

	_, err := New(path, false, log.Discard("test")).Load(context.Background())
	if !errors.Is(err, source.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	txns, err := New(path, true, log.Discard("test")).Load(context.Background())
	if err != nil {
		t.Fatalf("allowMissing should suppress the error, got %v", err)
	}
	if len(txns) != 0 {
		t.Fatalf("allowMissing should yield no rows, got %d", len(txns))
	}
}

func TestSource_Load_MissingColumns(t *testing.T) {
	path := writeFile(t, "operations.csv", "Operation Date,Amount\n2021-01-15,10.00\n")

	_, err := New(path, false, log.Discard("test")).Load(context.Background())
	if !errors.Is(err, source.ErrMissingColumns) {
		t.Fatalf("err = %v, want ErrMissingColumns", err)
	}
}

func TestSource_Load_EmptyFile(t *testing.T) {
	path := writeFile(t, "operations.csv", "")

	_, err := New(path, false, log.Discard("test")).Load(context.Background())
	if !errors.Is(err, source.ErrBadFormat) {
		t.Fatalf("err = %v, want ErrBadFormat", err)
	}
}
