// Package worker materializes spending reports after each ingest.
package worker

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"kopilka/internal/amqp"
	"kopilka/internal/core"
	"kopilka/internal/log"
	"kopilka/internal/report"
	"kopilka/internal/source"
)

// reportWindowDays is the default lookback for materialized reports.
const reportWindowDays = 90

// ReportWorker reloads the persisted transactions when an ingest completes
// and writes the standard report set through the file sink.
type ReportWorker struct {
	loader source.Loader
	engine *report.Engine
	sink   *report.Sink
	log    *log.Logger
}

func NewReportWorker(loader source.Loader, engine *report.Engine, sink *report.Sink, logger *log.Logger) *ReportWorker {
	return &ReportWorker{
		loader: loader,
		engine: engine,
		sink:   sink,
		log:    logger.WithComponent(log.ComponentWorker),
	}
}

// HandleIngestCompleted processes one ingest notification.
func (w *ReportWorker) HandleIngestCompleted(ctx context.Context, msg *amqp.IngestCompletedMessage) error {
	w.log.InfoContext(ctx, "Materializing reports after ingest",
		log.FieldBackend, msg.Source,
		log.FieldRows, msg.Rows)

	txns, err := w.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}

	window := core.LastNDays(msg.Timestamp, reportWindowDays)
	w.Materialize(txns, window)
	return nil
}

// Materialize writes the weekday, workday and per-category reports for the
// given window. Sink failures are logged inside the sink, never returned.
func (w *ReportWorker) Materialize(txns []core.Transaction, window core.Window) {
	report.WithFileSink(w.sink, "spend_by_weekday", "", func() []report.WeekdaySpend {
		return w.engine.SpendByWeekday(txns, window)
	})
	report.WithFileSink(w.sink, "spend_by_workday", "", func() []report.DayTypeSpend {
		return w.engine.SpendByWorkday(txns, window)
	})

	for _, category := range distinctCategories(txns) {
		name := fmt.Sprintf("spend_by_category_%s", slug(category))
		report.WithFileSink(w.sink, name, "", func() []report.MonthlySpend {
			return w.engine.SpendByCategory(txns, category, window)
		})
	}

	w.log.Info("Report materialization finished",
		log.FieldRows, len(txns))
}

func distinctCategories(txns []core.Transaction) []string {
	seen := make(map[string]struct{})
	for _, t := range txns {
		if t.Category == "" {
			continue
		}
		seen[t.Category] = struct{}{}
	}
	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories
}

// slug makes a category safe for use in a filename.
func slug(category string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, category)
	return strings.Trim(mapped, "_")
}
