package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"kopilka/internal/amqp"
	"kopilka/internal/backend"
	"kopilka/internal/cli"
	"kopilka/internal/config"
	"kopilka/internal/core"
	"kopilka/internal/log"
	"kopilka/internal/market"
	"kopilka/internal/report"
	"kopilka/internal/services"
	"kopilka/internal/settings"
	"kopilka/internal/source"
	"kopilka/internal/views"
	"kopilka/internal/worker"
)

const usage = `Usage: kopilka <command> [flags]

Commands:
  dashboard   greeting, per-card totals, top transactions and quotes
  events      expenses and income grouped by category for a period
  cashback    most profitable cashback categories for a month
  roundup     savings from rounding expenses up to a limit
  reports     materialize spending reports to the reports directory
  search      find transactions by text, phone number or person
  ingest      load the source and persist it to the SQLite store
  demo        run dashboard and events over the built-in demo data

Run 'kopilka <command> -h' for command flags.
`

// defaultWindowDays is the lookback used by dashboard and reports.
const defaultWindowDays = 90

type app struct {
	cfg    *config.Config
	log    *log.Logger
	loader source.Loader
	clean  func() error
}

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	command := "demo"
	args := os.Args[1:]
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	if command == "-h" || command == "--help" || command == "help" {
		fmt.Print(usage)
		return
	}

	cfg := config.Load()
	if command == "demo" {
		// The demo ignores the configured backend and market credentials.
		cfg.SourceBackend = "memory"
		cfg.MarketOffline = true
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			log.FieldOperation, log.OpStartup,
			log.FieldError, err)
		os.Exit(1)
	}
	ctx := context.Background()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize source backend",
			log.FieldOperation, log.OpStartup,
			log.FieldBackend, cfg.SourceBackend,
			log.FieldError, err)
		os.Exit(1)
	}
	defer func() {
		if a.clean != nil {
			if err := a.clean(); err != nil {
				logger.Error("Source cleanup failed", log.FieldError, err)
			}
		}
	}()

	switch command {
	case "dashboard":
		err = a.runDashboard(ctx, args)
	case "events":
		err = a.runEvents(ctx, args)
	case "cashback":
		err = a.runCashback(ctx, args)
	case "roundup":
		err = a.runRoundup(ctx, args)
	case "reports":
		err = a.runReports(ctx, args)
	case "search":
		err = a.runSearch(ctx, args)
	case "ingest":
		err = a.runIngest(ctx, args)
	case "demo":
		err = a.runDemo(ctx)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", command, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("Command failed",
			log.FieldOperation, command,
			log.FieldError, err)
		os.Exit(1)
	}
}

func newApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*app, error) {
	result, err := backend.NewLoader(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: logger, loader: result.Loader, clean: result.Cleanup}, nil
}

func (a *app) assembler() (*views.Assembler, error) {
	gateway, err := market.New(market.Config{
		Offline:        a.cfg.MarketOffline,
		CurrencyAPIKey: a.cfg.CurrencyAPIKey,
		StockAPIKey:    a.cfg.StockAPIKey,
		Timeout:        a.cfg.MarketTimeout,
	}, a.log)
	if err != nil {
		return nil, err
	}
	return views.NewAssembler(gateway, settings.NewStore(a.cfg.SettingsPath), a.log), nil
}

func (a *app) runDashboard(ctx context.Context, args []string) error {
	flags := newFlagSet("dashboard")
	date := flags.String("date", "", "as-of timestamp (YYYY-MM-DD HH:MM:SS), default now")
	days := flags.Int("days", defaultWindowDays, "lookback window in days")
	if err := flags.Parse(args); err != nil {
		return err
	}

	asOf, err := parseAsOf(*date)
	if err != nil {
		return err
	}
	assembler, err := a.assembler()
	if err != nil {
		return err
	}
	txns, err := a.loader.Load(ctx)
	if err != nil {
		return err
	}

	payload, err := assembler.Dashboard(ctx, txns, asOf, core.LastNDays(asOf, *days))
	if err != nil {
		return err
	}
	return printJSON(payload)
}

func (a *app) runEvents(ctx context.Context, args []string) error {
	flags := newFlagSet("events")
	date := flags.String("date", "", "as-of timestamp (YYYY-MM-DD HH:MM:SS), default now")
	rangeSpec := flags.String("range", views.RangeMonth, "period: week, month, year or all")
	if err := flags.Parse(args); err != nil {
		return err
	}

	asOf, err := parseAsOf(*date)
	if err != nil {
		return err
	}
	assembler, err := a.assembler()
	if err != nil {
		return err
	}
	txns, err := a.loader.Load(ctx)
	if err != nil {
		return err
	}

	payload, err := assembler.Events(ctx, txns, asOf, *rangeSpec)
	if err != nil {
		return err
	}
	return printJSON(payload)
}

func (a *app) runCashback(ctx context.Context, args []string) error {
	flags := newFlagSet("cashback")
	year := flags.Int("year", time.Now().Year(), "calendar year")
	month := flags.Int("month", int(time.Now().Month()), "calendar month (1-12)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	txns, err := a.loader.Load(ctx)
	if err != nil {
		return err
	}
	svc := services.NewCashbackService(a.log)
	return printJSON(svc.ProfitableCashbackCategories(txns, *year, *month))
}

func (a *app) runRoundup(ctx context.Context, args []string) error {
	flags := newFlagSet("roundup")
	month := flags.String("month", "", "month as YYYY-MM")
	limit := flags.String("limit", "50", "rounding limit")
	if err := flags.Parse(args); err != nil {
		return err
	}

	roundingLimit, err := decimal.NewFromString(*limit)
	if err != nil {
		return fmt.Errorf("%w: %q", core.ErrInvalidRoundingLimit, *limit)
	}
	txns, err := a.loader.Load(ctx)
	if err != nil {
		return err
	}

	svc := services.NewCashbackService(a.log)
	saving, err := svc.InvestmentBank(*month, txns, roundingLimit)
	if err != nil {
		return err
	}
	return printJSON(map[string]decimal.Decimal{"saving": saving})
}

func (a *app) runReports(ctx context.Context, args []string) error {
	flags := newFlagSet("reports")
	date := flags.String("date", "", "as-of timestamp (YYYY-MM-DD HH:MM:SS), default now")
	days := flags.Int("days", defaultWindowDays, "lookback window in days")
	if err := flags.Parse(args); err != nil {
		return err
	}

	asOf, err := parseAsOf(*date)
	if err != nil {
		return err
	}
	txns, err := a.loader.Load(ctx)
	if err != nil {
		return err
	}

	w := worker.NewReportWorker(
		a.loader,
		report.NewEngine(a.log),
		report.NewSink(a.cfg.ReportsDir, a.log),
		a.log,
	)
	w.Materialize(txns, core.LastNDays(asOf, *days))
	a.log.Info("Reports written", log.FieldPath, a.cfg.ReportsDir)
	return nil
}

func (a *app) runSearch(ctx context.Context, args []string) error {
	flags := newFlagSet("search")
	query := flags.String("query", "", "substring to match in description or category")
	caseSensitive := flags.Bool("case", false, "case-sensitive matching")
	phone := flags.Bool("phone", false, "find phone number transactions")
	person := flags.Bool("person", false, "find transfers to private persons")
	pattern := flags.String("pattern", "", "override the phone or person pattern")
	if err := flags.Parse(args); err != nil {
		return err
	}

	txns, err := a.loader.Load(ctx)
	if err != nil {
		return err
	}
	svc := services.NewSearchService(a.log)

	var results []core.Transaction
	switch {
	case *phone:
		results, err = svc.PhoneNumberSearch(txns, *pattern)
	case *person:
		results, err = svc.PersonTransfersSearch(txns, *pattern)
	default:
		results = svc.SimpleSearch(*query, txns, *caseSensitive)
	}
	if err != nil {
		return err
	}
	return printJSON(results)
}

func (a *app) runIngest(ctx context.Context, args []string) error {
	flags := newFlagSet("ingest")
	if err := flags.Parse(args); err != nil {
		return err
	}

	txns, err := a.loader.Load(ctx)
	if err != nil {
		return err
	}

	store := cli.InitStore(a.log, a.cfg.SQLiteDBPath)
	defer store.Close()

	if err := store.ReplaceAll(ctx, txns); err != nil {
		return err
	}
	a.log.Info("Ingest complete",
		log.FieldOperation, log.OpIngest,
		log.FieldBackend, a.cfg.SourceBackend,
		log.FieldRows, len(txns))

	if a.cfg.AMQPURL == "" {
		return nil
	}

	client, err := amqp.NewClient(a.cfg.AMQPURL, a.cfg.AMQPExchange, a.cfg.AMQPQueue, a.log)
	if err != nil {
		return fmt.Errorf("initialize AMQP client: %w", err)
	}
	defer client.Close()
	return client.PublishIngestCompleted(ctx, a.cfg.SourceBackend, len(txns))
}

// runDemo mirrors the interactive walkthrough: dashboard and events over
// the seeded data, printed back to back.
func (a *app) runDemo(ctx context.Context) error {
	assembler, err := a.assembler()
	if err != nil {
		return err
	}
	txns, err := a.loader.Load(ctx)
	if err != nil {
		return err
	}

	asOf := time.Date(2021, 12, 15, 10, 0, 0, 0, time.UTC)
	dashboard, err := assembler.Dashboard(ctx, txns, asOf, core.LastNDays(asOf, defaultWindowDays))
	if err != nil {
		return err
	}
	if err := printJSON(dashboard); err != nil {
		return err
	}

	events, err := assembler.Events(ctx, txns, asOf, views.RangeMonth)
	if err != nil {
		return err
	}
	return printJSON(events)
}

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ExitOnError)
}

func parseAsOf(value string) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

func printJSON(payload any) error {
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
