package memory

import (
	"context"
	"testing"
	"time"

	"finboard/internal/core"
	ports "finboard/internal/sheets"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAppendAndExported(t *testing.T) {
	s := New()
	ctx := context.Background()

	row := ports.Row{
		Date:     time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Account:  "Main",
		Type:     core.Income,
		Category: core.Salary,
		Amount:   decimal.NewFromInt(1000),
		ID:       "tx-1",
	}
	ref, err := s.Append(ctx, row)
	require.NoError(t, err)
	assert.Equal(t, "mem:1", ref)

	ok, err := s.Exported(ctx, "tx-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Exported(ctx, "tx-2")
	require.NoError(t, err)
	assert.False(t, ok)

	rows, err := s.ListRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []any{"2024-01-02", "Main", "INCOME", "SALARY", "1000.00", "", "tx-1"}, rows[0].Values())

	_, err = s.Append(ctx, ports.Row{})
	assert.Error(t, err)
}
