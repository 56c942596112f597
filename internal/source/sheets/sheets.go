// Package sheets loads transactions from a Google Sheets spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"kopilka/internal/core"
	"kopilka/internal/log"
	"kopilka/internal/source"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	log           *log.Logger
}

var _ source.Loader = (*Client)(nil)

// New creates a Sheets-backed source for the given spreadsheet and sheet.
// Credentials come from the environment; see newSheetsService.
func New(ctx context.Context, spreadsheetID, sheetName string, logger *log.Logger) (*Client, error) {
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if sheetName == "" {
		return nil, errors.New("missing sheet name")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		log:           logger.WithComponent(log.ComponentSource),
	}, nil
}

// newSheetsService initializes a read-only Sheets service. Credential
// resolution order: inline service-account JSON, service-account file,
// OAuth client+token pair (bootstrapped via cmd/oauth-init), then ADC.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	if saJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); saJSON != "" {
		return gsheet.NewService(ctx,
			goption.WithCredentialsJSON([]byte(saJSON)),
			goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	}
	if saFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE")); saFile != "" {
		return gsheet.NewService(ctx,
			goption.WithCredentialsFile(saFile),
			goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	}
	if httpClient, err := oauthClient(ctx); err != nil {
		return nil, err
	} else if httpClient != nil {
		return gsheet.NewService(ctx, goption.WithHTTPClient(httpClient))
	}
	return gsheet.NewService(ctx, goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
}

// oauthClient builds an HTTP client from a stored OAuth token, or returns
// nil when the OAuth env vars are not set.
func oauthClient(ctx context.Context) (*http.Client, error) {
	clientJSON := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_CLIENT_JSON"))
	clientFile := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_CLIENT_FILE"))
	tokenFile := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_TOKEN_FILE"))
	if clientJSON == "" && clientFile == "" {
		return nil, nil
	}

	var b []byte
	var err error
	if clientJSON != "" {
		b = []byte(clientJSON)
	} else {
		b, err = os.ReadFile(clientFile)
		if err != nil {
			return nil, fmt.Errorf("read oauth client file: %w", err)
		}
	}

	cfg, err := google.ConfigFromJSON(b, gsheet.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}

	if tokenFile == "" {
		return nil, errors.New("GOOGLE_OAUTH_TOKEN_FILE is required with an OAuth client (run cmd/oauth-init first)")
	}
	tb, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth token file: %w", err)
	}
	tok := &oauth2.Token{}
	if err := unmarshalToken(tb, tok); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}
	return cfg.Client(ctx, tok), nil
}

// Load fetches the whole sheet and parses it like any other table source.
func (c *Client) Load(ctx context.Context) ([]core.Transaction, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.sheetName).Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: spreadsheet %s sheet %s", source.ErrNotFound, c.spreadsheetID, c.sheetName)
		}
		return nil, fmt.Errorf("read sheet values: %w", err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		rows = append(rows, toStrings(row))
	}

	txns, err := source.ParseTable(rows, c.log)
	if err != nil {
		return nil, err
	}

	c.log.Info("Loaded transactions from Google Sheets",
		log.FieldRows, len(txns),
		"spreadsheet_id", c.spreadsheetID,
		"sheet", c.sheetName)
	return txns, nil
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = fmt.Sprintf("%v", v)
	}
	return out
}
