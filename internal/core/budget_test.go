package core

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func expenseOn(cat Category, amount string, at time.Time) Transaction {
	return Transaction{ID: uuid.New(), Amount: dec(amount), Type: Expense, Category: cat, Date: at}
}

func TestComputeSpend(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := EndOfDay(time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC))

	tests := []struct {
		name       string
		amount     string
		spent      []string
		wantSpent  string
		wantRemain string
		wantPct    string
		wantStatus BudgetStatus
	}{
		{"nothing spent", "100", nil, "0", "100", "0", BudgetOnTrack},
		{"half", "100", []string{"20", "30"}, "50", "50", "50", BudgetOnTrack},
		{"approaching", "100", []string{"60"}, "60", "40", "60", BudgetApproaching},
		{"warning lower bound", "100", []string{"80"}, "80", "20", "80", BudgetWarning},
		{"exactly spent", "100", []string{"100"}, "100", "0", "100", BudgetWarning},
		{"overspent clamps percentage", "100", []string{"90", "60"}, "150", "-50", "100", BudgetExceeded},
		{"zero budget nothing spent", "0", nil, "0", "0", "0", BudgetOnTrack},
		{"zero budget saturates", "0", []string{"5"}, "5", "-5", "100", BudgetExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Budget{Category: Groceries, Amount: dec(tt.amount), Period: Monthly, StartDate: &start, EndDate: &end}
			var txs []Transaction
			for _, s := range tt.spent {
				txs = append(txs, expenseOn(Groceries, s, now))
			}
			got := ComputeSpend(b, txs, now)
			assert.True(t, got.Spent.Equal(dec(tt.wantSpent)), "spent = %s", got.Spent)
			assert.True(t, got.Remaining.Equal(dec(tt.wantRemain)), "remaining = %s", got.Remaining)
			assert.True(t, got.Percentage.Equal(dec(tt.wantPct)), "percentage = %s", got.Percentage)
			assert.Equal(t, tt.wantStatus, got.Status)
		})
	}
}

func TestComputeSpendFilters(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	start := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	end := EndOfDay(time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC))
	b := Budget{Category: Groceries, Amount: dec("100"), StartDate: &start, EndDate: &end}

	income := expenseOn(Groceries, "1000", now)
	income.Type = Income

	txs := []Transaction{
		expenseOn(Groceries, "10", start),                       // first instant, inclusive
		expenseOn(Groceries, "20", end),                         // last instant, inclusive
		expenseOn(Groceries, "40", start.Add(-time.Millisecond)), // before window
		expenseOn(Groceries, "80", end.Add(time.Millisecond)),    // after window
		expenseOn(Housing, "500", now),                          // other category
		income,                                                  // not an expense
	}

	got := ComputeSpend(b, txs, now)
	assert.True(t, got.Spent.Equal(dec("30")), "spent = %s", got.Spent)
}

func TestComputeSpendLegacyMonthWindow(t *testing.T) {
	now := time.Date(2025, 2, 14, 9, 0, 0, 0, time.UTC)
	b := Budget{Category: FoodDining, Amount: dec("200")}

	txs := []Transaction{
		expenseOn(FoodDining, "15", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)),
		expenseOn(FoodDining, "25", EndOfDay(time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC))),
		expenseOn(FoodDining, "99", time.Date(2025, 1, 31, 23, 0, 0, 0, time.UTC)),
		expenseOn(FoodDining, "99", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)),
	}
	got := ComputeSpend(b, txs, now)
	assert.True(t, got.Spent.Equal(dec("40")), "spent = %s", got.Spent)
	assert.Equal(t, "2025-02-01", got.Window.Start.Format(time.DateOnly))
}

func TestPercentageAlwaysWithinBounds(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	b := Budget{Category: Shopping, Amount: dec("37.5")}
	for spent := int64(0); spent <= 500; spent += 7 {
		got := ComputeSpend(b, []Transaction{expenseOn(Shopping, decimal.NewFromInt(spent).String(), now)}, now)
		assert.False(t, got.Percentage.IsNegative(), "spent %d", spent)
		assert.False(t, got.Percentage.GreaterThan(decimal.NewFromInt(100)), "spent %d", spent)
		assert.True(t, got.ClampedRemaining().GreaterThanOrEqual(decimal.Zero))
	}
}
