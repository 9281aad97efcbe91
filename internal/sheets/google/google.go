package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"finboard/internal/core"
	"finboard/internal/log"
	ports "finboard/internal/sheets"

	"github.com/shopspring/decimal"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const defaultCacheValidity = 5 * time.Minute

// Ensure interface conformance
var (
	_ ports.TransactionExporter = (*Client)(nil)
	_ ports.RowLister           = (*Client)(nil)
)

type Config struct {
	SpreadsheetID string
	SheetName     string
	// Options override the credential lookup, e.g. in tests.
	Options []goption.ClientOption
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
	logger        *log.Logger

	// Exported ids read from the ID column, refreshed after cacheValidDuration.
	mu                 sync.Mutex
	cachedIDs          map[string]struct{}
	cacheExpiresAt     time.Time
	cacheValidDuration time.Duration
}

// New creates a Sheets client. Without explicit options the credentials come
// from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheet := strings.TrimSpace(cfg.SheetName)
	if sheet == "" {
		sheet = "Transactions"
	}

	opts := cfg.Options
	if len(opts) == 0 {
		creds, err := credentialsFromEnv()
		if err != nil {
			return nil, err
		}
		opts = []goption.ClientOption{
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:                svc,
		spreadsheetID:      cfg.SpreadsheetID,
		sheet:              sheet,
		logger:             logger.WithComponent(log.ComponentSheets),
		cacheValidDuration: defaultCacheValidity,
	}, nil
}

func credentialsFromEnv() ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); inline != "" {
		return []byte(inline), nil
	}
	path := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return data, nil
}

// EnsureHeader writes the header row when the sheet is empty.
func (c *Client) EnsureHeader(ctx context.Context) error {
	rng := fmt.Sprintf("%s!A1:G1", c.sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header of %s: %w", c.sheet, err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}
	vr := &gsheet.ValueRange{Values: [][]any{ports.Header}}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write header of %s: %w", c.sheet, err)
	}
	return nil
}

func (c *Client) Append(ctx context.Context, r ports.Row) (string, error) {
	if r.ID == "" {
		return "", errors.New("row without transaction id")
	}

	rng := fmt.Sprintf("%s!A:G", c.sheet)
	vr := &gsheet.ValueRange{Values: [][]any{r.Values()}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.sheet, err)
	}

	c.mu.Lock()
	if c.cachedIDs != nil {
		c.cachedIDs[r.ID] = struct{}{}
	}
	c.mu.Unlock()

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	c.logger.DebugContext(ctx, "Appended transaction row", log.FieldTransactionID, r.ID, log.FieldSheetsRef, ref)
	return ref, nil
}

// Exported checks the ID column, using a cached copy while it is fresh.
func (c *Client) Exported(ctx context.Context, id string) (bool, error) {
	c.mu.Lock()
	if c.cachedIDs != nil && time.Now().Before(c.cacheExpiresAt) {
		_, ok := c.cachedIDs[id]
		c.mu.Unlock()
		return ok, nil
	}
	c.mu.Unlock()

	ids, err := c.readIDs(ctx)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	c.cachedIDs = ids
	c.cacheExpiresAt = time.Now().Add(c.cacheValidDuration)
	c.mu.Unlock()

	_, ok := ids[id]
	return ok, nil
}

// InvalidateCache forces the next Exported call to re-read the sheet.
func (c *Client) InvalidateCache() {
	c.mu.Lock()
	c.cacheExpiresAt = time.Time{}
	c.mu.Unlock()
}

func (c *Client) readIDs(ctx context.Context) (map[string]struct{}, error) {
	rng := fmt.Sprintf("%s!G:G", c.sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	ids := make(map[string]struct{}, len(resp.Values))
	for _, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if v := strings.TrimSpace(fmt.Sprint(row[0])); v != "" {
			ids[v] = struct{}{}
		}
	}
	return ids, nil
}

// ListRows reads every exported row, skipping the header and rows that do not parse.
func (c *Client) ListRows(ctx context.Context) ([]ports.Row, error) {
	rng := fmt.Sprintf("%s!A:G", c.sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	out := make([]ports.Row, 0, len(resp.Values))
	for _, values := range resp.Values {
		if r, ok := parseRow(toStrings(values)); ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func parseRow(cols []string) (ports.Row, bool) {
	if len(cols) < 7 {
		return ports.Row{}, false
	}
	date, err := time.Parse(time.DateOnly, cols[0])
	if err != nil {
		return ports.Row{}, false
	}
	amount, ok := parseAmount(cols[4])
	if !ok {
		return ports.Row{}, false
	}
	typ, err := core.ParseTxType(cols[2])
	if err != nil {
		return ports.Row{}, false
	}
	return ports.Row{
		Date:        date,
		Account:     cols[1],
		Type:        typ,
		Category:    core.Category(strings.ToUpper(cols[3])),
		Amount:      amount,
		Description: cols[5],
		ID:          cols[6],
	}, true
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

// parseAmount accepts "12.50", "12,50" and "€ 1.234,50" style cells.
func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "€"))
	if s == "" {
		return decimal.Zero, false
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return core.RoundAmount(d), true
}
