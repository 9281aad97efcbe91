package core

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestBalanceDelta(t *testing.T) {
	base := Transaction{Amount: dec("30"), Type: Expense}
	tests := []struct {
		name  string
		patch TransactionPatch
		want  string
	}{
		{"amount only", TransactionPatch{Amount: ptr(dec("50"))}, "-20"},
		{"type only", TransactionPatch{Type: ptr(Income)}, "60"},
		{"both", TransactionPatch{Amount: ptr(dec("10")), Type: ptr(Income)}, "40"},
		{"neither", TransactionPatch{Description: ptr("coffee")}, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated := tt.patch.Apply(base)
			assert.True(t, BalanceDelta(base, updated).Equal(dec(tt.want)), "delta = %s", BalanceDelta(base, updated))
		})
	}
}

func TestParseHelpers(t *testing.T) {
	c, err := ParseCategory(" groceries ")
	require.NoError(t, err)
	assert.Equal(t, Groceries, c)

	_, err = ParseCategory("CRYPTO")
	assert.True(t, errors.Is(err, ErrValidation))

	tt, err := ParseTxType("income")
	require.NoError(t, err)
	assert.Equal(t, Income, tt)

	p, err := ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, Monthly, p)

	_, err = ParsePeriod("DAILY")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestCategoryRegistry(t *testing.T) {
	cats := Categories()
	assert.Len(t, cats, 20)
	incomes := 0
	for _, c := range cats {
		if c.Type == Income {
			incomes++
		}
		assert.NotEmpty(t, c.Label, c.Category)
	}
	assert.Equal(t, 5, incomes)
	assert.Equal(t, OtherExpense, DefaultCategory(Expense))
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{AccountID: uuid.New(), Amount: dec("1"), Type: Expense, Category: Groceries, Date: time.Now()}
	require.NoError(t, valid.Validate())

	zero := valid
	zero.Amount = decimal.Zero
	assert.ErrorIs(t, zero.Validate(), ErrValidation)

	noAccount := valid
	noAccount.AccountID = uuid.Nil
	assert.ErrorIs(t, noAccount.Validate(), ErrValidation)

	tests := []struct {
		amount  string
		wantErr bool
	}{
		{"10000000000000", false},
		{"10000000000000.01", true},
		{"100000000000000000", true},
	}
	for _, tt := range tests {
		t.Run("amount "+tt.amount, func(t *testing.T) {
			tx := valid
			tx.Amount = dec(tt.amount)
			if tt.wantErr {
				assert.ErrorIs(t, tx.Validate(), ErrValidation)
			} else {
				assert.NoError(t, tx.Validate())
			}
		})
	}
}

func TestAmountCaps(t *testing.T) {
	huge := dec("100000000000000000")

	b := Budget{UserID: "u1", Category: Groceries, Amount: huge, Period: Monthly}
	assert.ErrorIs(t, b.Validate(), ErrValidation)

	g := SavingsGoal{UserID: "u1", Name: "Moon", TargetAmount: huge}
	assert.ErrorIs(t, g.Validate(), ErrValidation)

	g.TargetAmount = dec("1000")
	g.CurrentAmount = huge
	assert.ErrorIs(t, g.Validate(), ErrValidation)

	g.CurrentAmount = dec("10")
	assert.NoError(t, g.Validate())
}

func TestBudgetValidate(t *testing.T) {
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)
	b := Budget{UserID: "u1", Category: Groceries, Amount: dec("100"), Period: Monthly, StartDate: &start, EndDate: &end}
	assert.ErrorIs(t, b.Validate(), ErrValidation)

	b.EndDate = nil
	assert.ErrorIs(t, b.Validate(), ErrValidation)

	b.StartDate = nil
	assert.NoError(t, b.Validate())

	b.UserID = ""
	assert.ErrorIs(t, b.Validate(), ErrUnauthorized)
}

func ptr[T any](v T) *T { return &v }
