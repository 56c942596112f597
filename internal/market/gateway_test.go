package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"kopilka/internal/log"
)

func TestNew_RequiresKeysOutsideOfflineMode(t *testing.T) {
	_, err := New(Config{Offline: false, StockAPIKey: "demo"}, log.Discard("test"))
	if err == nil {
		t.Fatal("missing currency key must be a configuration error")
	}
	_, err = New(Config{Offline: false, CurrencyAPIKey: "demo"}, log.Discard("test"))
	if err == nil {
		t.Fatal("missing stock key must be a configuration error")
	}
	if _, err := New(Config{Offline: true}, log.Discard("test")); err != nil {
		t.Fatalf("offline mode needs no keys, got %v", err)
	}
}

func TestGateway_OfflinePlaceholders(t *testing.T) {
	g, err := New(Config{Offline: true}, log.Discard("test"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rates, err := g.RatesFor(context.Background(), []string{"USD", "EUR"})
	if err != nil {
		t.Fatalf("RatesFor: %v", err)
	}
	if len(rates) != 2 {
		t.Fatalf("got %d rates, want 2", len(rates))
	}
	for _, q := range rates {
		if !q.Value.Equal(decimal.NewFromInt(1)) {
			t.Errorf("offline rate for %s = %s, want 1", q.Symbol, q.Value)
		}
	}

	prices, err := g.PricesFor(context.Background(), []string{"AAPL"})
	if err != nil {
		t.Fatalf("PricesFor: %v", err)
	}
	if !prices[0].Value.Equal(decimal.NewFromInt(100)) {
		t.Errorf("offline price = %s, want 100", prices[0].Value)
	}
}

func TestGateway_RatesFor(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"rates": {"EUR": 0.92, "GBP": 0.79}}`))
	}))
	defer srv.Close()

	g, err := New(Config{
		CurrencyAPIKey:   "k",
		StockAPIKey:      "k",
		CurrencyEndpoint: srv.URL,
		Timeout:          2 * time.Second,
	}, log.Discard("test"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	quotes, err := g.RatesFor(context.Background(), []string{"EUR", "JPY"})
	if err != nil {
		t.Fatalf("RatesFor: %v", err)
	}
	if !quotes[0].Value.Equal(decimal.RequireFromString("0.92")) {
		t.Errorf("EUR = %s, want 0.92", quotes[0].Value)
	}
	// Symbols the provider does not know quote as zero.
	if !quotes[1].Value.IsZero() {
		t.Errorf("JPY = %s, want 0", quotes[1].Value)
	}

	// Second identical request is served from the cache.
	if _, err := g.RatesFor(context.Background(), []string{"EUR", "JPY"}); err != nil {
		t.Fatalf("cached RatesFor: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("provider called %d times, want 1", calls.Load())
	}
}

func TestGateway_PricesFor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("symbol") {
		case "AAPL":
			w.Write([]byte(`{"Global Quote": {"05. price": "189.30"}}`))
		default:
			w.Write([]byte(`{"Global Quote": {}}`))
		}
	}))
	defer srv.Close()

	g, err := New(Config{
		CurrencyAPIKey: "k",
		StockAPIKey:    "k",
		StockEndpoint:  srv.URL,
		Timeout:        2 * time.Second,
	}, log.Discard("test"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	quotes, err := g.PricesFor(context.Background(), []string{"AAPL", "NOPE"})
	if err != nil {
		t.Fatalf("PricesFor: %v", err)
	}
	if quotes[0].Symbol != "AAPL" || !quotes[0].Value.Equal(decimal.RequireFromString("189.30")) {
		t.Errorf("AAPL quote = %+v", quotes[0])
	}
	if !quotes[1].Value.IsZero() {
		t.Errorf("unknown ticker should quote zero, got %s", quotes[1].Value)
	}
}

func TestGateway_ProviderFailureSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	g, err := New(Config{
		CurrencyAPIKey:   "k",
		StockAPIKey:      "k",
		CurrencyEndpoint: srv.URL,
		StockEndpoint:    srv.URL,
		Timeout:          2 * time.Second,
	}, log.Discard("test"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := g.RatesFor(context.Background(), []string{"EUR"}); err == nil {
		t.Error("rate provider failure must surface")
	}
	if _, err := g.PricesFor(context.Background(), []string{"AAPL"}); err == nil {
		t.Error("stock provider failure must surface")
	}
}
