package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"finboard/internal/core"
	"finboard/internal/log"
	ports "finboard/internal/sheets"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
)

// fakeSheet is a minimal Sheets values API holding one sheet in memory.
type fakeSheet struct {
	mu    sync.Mutex
	rows  [][]any
	reads int
}

func (f *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
		var vr struct {
			Values [][]any `json:"values"`
		}
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.rows = append(f.rows, vr.Values...)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"updates": map[string]any{"updatedRange": "Transactions!A" + strconv.Itoa(len(f.rows)) + ":G" + strconv.Itoa(len(f.rows))},
		})
	case r.Method == http.MethodPut:
		var vr struct {
			Values [][]any `json:"values"`
		}
		_ = json.NewDecoder(r.Body).Decode(&vr)
		if len(f.rows) == 0 {
			f.rows = append(f.rows, vr.Values...)
		} else {
			f.rows[0] = vr.Values[0]
		}
		_ = json.NewEncoder(w).Encode(map[string]any{})
	case r.Method == http.MethodGet:
		f.reads++
		var values [][]any
		switch {
		case strings.HasSuffix(path, "G:G"):
			for _, row := range f.rows {
				if len(row) >= 7 {
					values = append(values, []any{row[6]})
				}
			}
		case strings.HasSuffix(path, "A1:G1"):
			if len(f.rows) > 0 {
				values = f.rows[:1]
			}
		default:
			values = f.rows
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"values": values})
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T) (*Client, *fakeSheet) {
	t.Helper()
	fake := &fakeSheet{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Config{
		SpreadsheetID: "sheet-id",
		SheetName:     "Transactions",
		Options: []goption.ClientOption{
			goption.WithEndpoint(srv.URL + "/"),
			goption.WithoutAuthentication(),
			goption.WithHTTPClient(srv.Client()),
		},
	}, log.Discard())
	require.NoError(t, err)
	return c, fake
}

func sampleRow() ports.Row {
	return ports.Row{
		Date:        time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC),
		Account:     "Checking",
		Type:        core.Expense,
		Category:    core.Groceries,
		Amount:      decimal.RequireFromString("42.5"),
		Description: "Weekly shop",
		ID:          uuid.NewString(),
	}
}

func TestNew_RequiresSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{}, log.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing spreadsheet id")
}

func TestClient_AppendAndList(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.EnsureHeader(ctx))
	require.NoError(t, c.EnsureHeader(ctx))
	require.Len(t, fake.rows, 1)

	row := sampleRow()
	ref, err := c.Append(ctx, row)
	require.NoError(t, err)
	assert.Equal(t, "Transactions!A2:G2", ref)

	rows, err := c.ListRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1, "header row is skipped")
	assert.Equal(t, row.ID, rows[0].ID)
	assert.Equal(t, core.Groceries, rows[0].Category)
	assert.True(t, rows[0].Amount.Equal(decimal.RequireFromString("42.50")))
	assert.Equal(t, "2024-06-15", rows[0].Date.Format(time.DateOnly))
}

func TestClient_ExportedUsesCache(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()

	row := sampleRow()
	ok, err := c.Exported(ctx, row.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	readsAfterLoad := fake.reads

	_, err = c.Append(ctx, row)
	require.NoError(t, err)

	ok, err = c.Exported(ctx, row.ID)
	require.NoError(t, err)
	assert.True(t, ok, "append updates the cached id set")
	assert.Equal(t, readsAfterLoad, fake.reads, "fresh cache avoids a read")

	c.InvalidateCache()
	ok, err = c.Exported(ctx, row.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, readsAfterLoad+1, fake.reads)
}

func TestClient_AppendRequiresID(t *testing.T) {
	c, _ := newTestClient(t)
	row := sampleRow()
	row.ID = ""
	_, err := c.Append(context.Background(), row)
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"12.50", "12.5", true},
		{"12,50", "12.5", true},
		{"€ 1.234,56", "1234.56", true},
		{"", "0", false},
		{"abc", "0", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseAmount(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestParseRowRejectsHeader(t *testing.T) {
	_, ok := parseRow(toStrings(ports.Header))
	assert.False(t, ok)
}
