// Package backend selects and wires the configured transaction source.
package backend

import (
	"context"
	"fmt"

	"kopilka/internal/config"
	"kopilka/internal/log"
	"kopilka/internal/source"
	"kopilka/internal/source/csvfile"
	"kopilka/internal/source/memory"
	"kopilka/internal/source/sheets"
	"kopilka/internal/storage"
)

// Result holds the constructed loader and its cleanup hook (nil-safe).
type Result struct {
	Loader  source.Loader
	Cleanup func() error
}

// NewLoader constructs the transaction source named by cfg.SourceBackend.
func NewLoader(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Result, error) {
	switch cfg.SourceBackend {
	case "csv":
		logger.Info("Initialized CSV source backend", log.FieldPath, cfg.CSVPath)
		return &Result{Loader: csvfile.New(cfg.CSVPath, cfg.AllowMissing, logger)}, nil

	case "sheets":
		cli, err := sheets.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, logger)
		if err != nil {
			return nil, fmt.Errorf("initialize Google Sheets source: %w", err)
		}
		logger.Info("Initialized Google Sheets source backend",
			"spreadsheet_id", cfg.GoogleSpreadsheetID)
		return &Result{Loader: cli}, nil

	case "sqlite":
		repo, err := storage.NewRepository(cfg.SQLiteDBPath, logger)
		if err != nil {
			return nil, fmt.Errorf("initialize SQLite source: %w", err)
		}
		logger.Info("Initialized SQLite source backend", log.FieldPath, cfg.SQLiteDBPath)
		return &Result{Loader: repo, Cleanup: repo.Close}, nil

	case "memory":
		logger.Info("Initialized memory source backend")
		return &Result{Loader: memory.NewDemo()}, nil

	default:
		return nil, fmt.Errorf("unsupported source backend: %s", cfg.SourceBackend)
	}
}
