// Package settings reads the user's persisted preferences: which currencies
// and stock tickers the views should quote.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
)

type Settings struct {
	Currencies []string `json:"user_currencies"`
	Stocks     []string `json:"user_stocks"`
}

type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// UserSettings loads and decodes the settings document.
func (s *Store) UserSettings() (Settings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Settings{}, fmt.Errorf("read user settings: %w", err)
	}
	var out Settings
	if err := json.Unmarshal(data, &out); err != nil {
		return Settings{}, fmt.Errorf("parse user settings: %w", err)
	}
	return out, nil
}
