// Package market fetches currency rates and stock prices from external
// quote providers.
package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"kopilka/internal/cache"
	"kopilka/internal/core"
	"kopilka/internal/log"
)

const (
	defaultCurrencyEndpoint = "https://api.exchangerate-api.com/v4/latest/USD"
	defaultStockEndpoint    = "https://www.alphavantage.co/query"

	// Quotes are reused within a run; one run never needs fresher data.
	quoteCacheTTL  = 5 * time.Minute
	quoteCacheSize = 16

	// Bound on concurrent per-symbol stock requests.
	maxParallelQuotes = 4
)

// Offline-mode placeholder values.
var (
	placeholderRate  = decimal.NewFromInt(1)
	placeholderPrice = decimal.NewFromInt(100)
)

type Config struct {
	Offline        bool
	CurrencyAPIKey string
	StockAPIKey    string
	Timeout        time.Duration

	// Endpoint overrides, empty means the production defaults.
	CurrencyEndpoint string
	StockEndpoint    string
}

// Gateway talks to the quote providers. Every call either returns within
// the configured timeout or surfaces the failure; there are no retries.
type Gateway struct {
	cfg    Config
	client *http.Client
	cache  *cache.LRUCache[[]core.Quote]
	log    *log.Logger
}

// New validates credentials up front: a missing API key outside offline
// mode is a configuration error, not a silent empty result.
func New(cfg Config, logger *log.Logger) (*Gateway, error) {
	if !cfg.Offline {
		if cfg.CurrencyAPIKey == "" {
			return nil, errors.New("currency API key is not configured")
		}
		if cfg.StockAPIKey == "" {
			return nil, errors.New("stock API key is not configured")
		}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.CurrencyEndpoint == "" {
		cfg.CurrencyEndpoint = defaultCurrencyEndpoint
	}
	if cfg.StockEndpoint == "" {
		cfg.StockEndpoint = defaultStockEndpoint
	}
	return &Gateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		cache:  cache.NewLRUCache[[]core.Quote](quoteCacheSize, quoteCacheTTL),
		log:    logger.WithComponent(log.ComponentMarket),
	}, nil
}

// RatesFor returns one quote per requested currency code, in input order.
// Currencies absent from the provider response quote as zero.
func (g *Gateway) RatesFor(ctx context.Context, currencies []string) ([]core.Quote, error) {
	if len(currencies) == 0 {
		return nil, nil
	}
	if g.cfg.Offline {
		return placeholders(currencies, placeholderRate), nil
	}

	cacheKey := "rates:" + strings.Join(currencies, ",")
	if quotes, ok := g.cache.Get(cacheKey); ok {
		return quotes, nil
	}

	reqURL := g.cfg.CurrencyEndpoint + "?apikey=" + url.QueryEscape(g.cfg.CurrencyAPIKey)
	body, err := g.fetch(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("fetch currency rates: %w", err)
	}

	var payload struct {
		Rates map[string]decimal.Decimal `json:"rates"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode currency rates: %w", err)
	}

	quotes := make([]core.Quote, 0, len(currencies))
	for _, c := range currencies {
		quotes = append(quotes, core.Quote{Symbol: c, Value: payload.Rates[c]})
	}

	g.cache.Set(cacheKey, quotes)
	g.log.InfoContext(ctx, "Fetched currency rates", log.FieldRows, len(quotes))
	return quotes, nil
}

// PricesFor returns one quote per requested ticker, in input order. The
// provider serves one symbol per request, so symbols are fetched
// concurrently with a bounded group.
func (g *Gateway) PricesFor(ctx context.Context, stocks []string) ([]core.Quote, error) {
	if len(stocks) == 0 {
		return nil, nil
	}
	if g.cfg.Offline {
		return placeholders(stocks, placeholderPrice), nil
	}

	cacheKey := "prices:" + strings.Join(stocks, ",")
	if quotes, ok := g.cache.Get(cacheKey); ok {
		return quotes, nil
	}

	quotes := make([]core.Quote, len(stocks))
	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(maxParallelQuotes)
	for i, symbol := range stocks {
		grp.Go(func() error {
			price, err := g.fetchStockPrice(grpCtx, symbol)
			if err != nil {
				return fmt.Errorf("fetch price for %s: %w", symbol, err)
			}
			quotes[i] = core.Quote{Symbol: symbol, Value: price}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	g.cache.Set(cacheKey, quotes)
	g.log.InfoContext(ctx, "Fetched stock prices", log.FieldRows, len(quotes))
	return quotes, nil
}

func (g *Gateway) fetchStockPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	q := url.Values{}
	q.Set("function", "GLOBAL_QUOTE")
	q.Set("symbol", symbol)
	q.Set("apikey", g.cfg.StockAPIKey)
	body, err := g.fetch(ctx, g.cfg.StockEndpoint+"?"+q.Encode())
	if err != nil {
		return decimal.Decimal{}, err
	}

	var payload struct {
		GlobalQuote struct {
			Price string `json:"05. price"`
		} `json:"Global Quote"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return decimal.Decimal{}, fmt.Errorf("decode quote: %w", err)
	}
	if payload.GlobalQuote.Price == "" {
		// Provider quirk: unknown tickers come back as an empty object.
		return decimal.Zero, nil
	}
	price, err := decimal.NewFromString(payload.GlobalQuote.Price)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse price %q: %w", payload.GlobalQuote.Price, err)
	}
	return price, nil
}

func (g *Gateway) fetch(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func placeholders(symbols []string, value decimal.Decimal) []core.Quote {
	quotes := make([]core.Quote, 0, len(symbols))
	for _, s := range symbols {
		quotes = append(quotes, core.Quote{Symbol: s, Value: value})
	}
	return quotes
}
