package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"kopilka/internal/amqp"
	"kopilka/internal/core"
	"kopilka/internal/log"
	"kopilka/internal/report"
	"kopilka/internal/source/memory"
)

func testWorker(t *testing.T, txns []core.Transaction) (*ReportWorker, string) {
	t.Helper()
	dir := t.TempDir()
	logger := log.Discard("test")
	w := NewReportWorker(
		memory.New(txns),
		report.NewEngine(logger),
		report.NewSink(dir, logger),
		logger,
	)
	return w, dir
}

func TestHandleIngestCompleted(t *testing.T) {
	txns := []core.Transaction{
		{Date: core.NewDate(2021, 12, 1), Category: "Supermarket", Amount: decimal.NewFromInt(100)},
		{Date: core.NewDate(2021, 12, 2), Category: "Cafe", Amount: decimal.NewFromInt(50)},
	}
	w, dir := testWorker(t, txns)

	msg := &amqp.IngestCompletedMessage{
		Source:    "csv",
		Rows:      len(txns),
		Timestamp: time.Date(2021, 12, 15, 10, 0, 0, 0, time.UTC),
	}
	if err := w.HandleIngestCompleted(context.Background(), msg); err != nil {
		t.Fatalf("HandleIngestCompleted: %v", err)
	}

	for _, prefix := range []string{
		"report_spend_by_weekday_",
		"report_spend_by_workday_",
		"report_spend_by_category_supermarket_",
		"report_spend_by_category_cafe_",
	} {
		matches, err := filepath.Glob(filepath.Join(dir, prefix+"*.json"))
		if err != nil {
			t.Fatalf("glob: %v", err)
		}
		if len(matches) != 1 {
			t.Errorf("files matching %q = %d, want 1", prefix, len(matches))
		}
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Supermarket", "supermarket"},
		{"Fast Food", "fast_food"},
		{"ATM & Cash", "atm___cash"},
		{"--odd--", "odd"},
	}
	for _, tt := range tests {
		if got := slug(tt.in); got != tt.want {
			t.Errorf("slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
