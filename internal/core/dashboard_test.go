package core

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(typ TxType, amount string, at time.Time) Transaction {
	cat := Groceries
	if typ == Income {
		cat = Salary
	}
	return Transaction{ID: uuid.New(), Amount: dec(amount), Type: typ, Category: cat, Date: at}
}

// naiveCashFlow re-scans every transaction for every day.
func naiveCashFlow(txs []Transaction, now time.Time) []CashFlowPoint {
	var out []CashFlowPoint
	for i := CashFlowDays - 1; i >= 0; i-- {
		day := StartOfDay(now).AddDate(0, 0, -i)
		dw := DayWindow(day)
		income, expense, balance := decimal.Zero, decimal.Zero, decimal.Zero
		for _, t := range txs {
			if dw.Contains(t.Date) {
				if t.Type == Income {
					income = income.Add(t.Amount)
				} else {
					expense = expense.Add(t.Amount)
				}
			}
			if !t.Date.After(dw.End) {
				balance = balance.Add(t.Signed())
			}
		}
		out = append(out, CashFlowPoint{Date: day.Format(time.DateOnly), Income: income, Expense: expense, Balance: balance, Type: PointActual})
	}
	return out
}

func assertSeriesEqual(t *testing.T, want, got []CashFlowPoint) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Date, got[i].Date)
		assert.True(t, want[i].Income.Equal(got[i].Income), "day %s income %s != %s", want[i].Date, got[i].Income, want[i].Income)
		assert.True(t, want[i].Expense.Equal(got[i].Expense), "day %s expense %s != %s", want[i].Date, got[i].Expense, want[i].Expense)
		assert.True(t, want[i].Balance.Equal(got[i].Balance), "day %s balance %s != %s", want[i].Date, got[i].Balance, want[i].Balance)
		assert.Equal(t, want[i].Type, got[i].Type)
	}
}

// splitForDashboard partitions a full transaction set the way the dashboard
// service loads it: range transactions plus the opening sum before the range.
func splitForDashboard(all []Transaction, now time.Time) ([]Transaction, decimal.Decimal) {
	r := DashboardRange(now)
	opening := decimal.Zero
	var inRange []Transaction
	for _, t := range all {
		switch {
		case t.Date.Before(r.Start):
			opening = opening.Add(t.Signed())
		case !t.Date.After(r.End):
			inRange = append(inRange, t)
		}
	}
	return inRange, opening
}

func TestCashFlowSeriesMatchesNaiveRescan(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	now := time.Date(2025, 3, 5, 17, 45, 0, 0, loc)
	rng := rand.New(rand.NewSource(42))

	var all []Transaction
	for i := 0; i < 400; i++ {
		at := now.Add(-time.Duration(rng.Int63n(int64(90 * 24 * time.Hour))))
		typ := Expense
		if rng.Intn(3) == 0 {
			typ = Income
		}
		all = append(all, tx(typ, decimal.NewFromInt(rng.Int63n(50000)+1).Shift(-2).String(), at))
	}
	// exact day boundaries
	all = append(all,
		tx(Income, "11", StartOfDay(now).AddDate(0, 0, -29)),
		tx(Expense, "7", EndOfDay(now).AddDate(0, 0, -10)),
		tx(Expense, "3", StartOfDay(now).AddDate(0, 0, -29).Add(-time.Millisecond)),
	)

	inRange, opening := splitForDashboard(all, now)
	assertSeriesEqual(t, naiveCashFlow(all, now), CashFlowSeries(inRange, opening, now))
}

func TestCashFlowSeriesShape(t *testing.T) {
	now := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	series := CashFlowSeries(nil, dec("12.5"), now)

	require.Len(t, series, CashFlowDays)
	assert.Equal(t, "2024-12-12", series[0].Date)
	assert.Equal(t, "2025-01-10", series[CashFlowDays-1].Date)
	for _, p := range series {
		assert.True(t, p.Balance.Equal(dec("12.5")))
		assert.Equal(t, PointActual, p.Type)
	}
}

func TestBalanceScenario(t *testing.T) {
	day1 := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	now := day1.AddDate(0, 0, 2)

	balance := decimal.Zero
	income := tx(Income, "100", day1)
	balance = balance.Add(income.Signed())
	assert.True(t, balance.Equal(dec("100")))

	expense := tx(Expense, "30", day2)
	balance = balance.Add(expense.Signed())
	assert.True(t, balance.Equal(dec("70")))

	updated := TransactionPatch{Amount: ptr(dec("50"))}.Apply(expense)
	balance = balance.Add(BalanceDelta(expense, updated))
	assert.True(t, balance.Equal(dec("50")))

	balance = balance.Sub(income.Signed())
	assert.True(t, balance.Equal(dec("-50")))

	current := []Transaction{updated}
	account := AccountSummary{Account: Account{ID: updated.AccountID, Name: "Main", Balance: balance}, TransactionCount: 1}
	d := BuildDashboard(DashboardInput{Accounts: []AccountSummary{account}, Transactions: current}, now)

	assert.True(t, d.Summary.TotalBalance.Equal(dec("-50")))
	require.Len(t, d.CashFlow, CashFlowDays)
	last := d.CashFlow[CashFlowDays-1]
	assert.True(t, last.Balance.Equal(d.Summary.TotalBalance), "last point %s", last.Balance)

	byDate := map[string]CashFlowPoint{}
	for _, p := range d.CashFlow {
		byDate[p.Date] = p
	}
	// The series reconstructs history from the current transaction set, so the
	// deleted income no longer contributes to day 1.
	assert.True(t, byDate["2025-04-01"].Balance.IsZero())
	assert.True(t, byDate["2025-04-02"].Balance.Equal(dec("-50")))
	assert.True(t, byDate["2025-04-02"].Expense.Equal(dec("50")))
}

func TestBuildDashboard(t *testing.T) {
	now := time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)
	acct := uuid.New()
	deadline := now.AddDate(0, 1, 0)
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := EndOfDay(time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC))

	all := []Transaction{
		tx(Income, "3000", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)),
		tx(Expense, "250", time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)),
		tx(Expense, "400", time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)),   // previous month
		tx(Income, "500", time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)),     // before range
		tx(Expense, "10", time.Date(2025, 6, 28, 9, 0, 0, 0, time.UTC)),    // later this month
	}
	inRange, opening := splitForDashboard(all, now)

	in := DashboardInput{
		Accounts: []AccountSummary{
			{Account: Account{ID: acct, Name: "Checking", Balance: dec("2840")}},
			{Account: Account{ID: uuid.New(), Name: "Savings", Balance: dec("1000")}},
		},
		Transactions:   inRange,
		OpeningBalance: opening,
		Budgets: []Budget{
			{ID: uuid.New(), Category: Groceries, Amount: dec("200"), StartDate: &start, EndDate: &end},
		},
		Goals: []SavingsGoal{
			{Name: "someday", TargetAmount: dec("100")},
			{Name: "trip", TargetAmount: dec("1000"), CurrentAmount: dec("400"), Deadline: &deadline},
		},
	}

	d := BuildDashboard(in, now)

	assert.True(t, d.Summary.TotalBalance.Equal(dec("3840")))
	assert.Equal(t, 2, d.Summary.AccountsCount)
	assert.True(t, d.Summary.MonthIncome.Equal(dec("3000")))
	assert.True(t, d.Summary.MonthExpenses.Equal(dec("260")))
	assert.True(t, d.Summary.MonthSavings.Equal(dec("2740")))

	require.Len(t, d.Budgets, 1)
	assert.True(t, d.Budgets[0].Spend.Spent.Equal(dec("260")))
	assert.True(t, d.Budgets[0].Spend.Remaining.IsZero(), "dashboard remaining is clamped")
	assert.True(t, d.Budgets[0].Spend.Percentage.Equal(dec("100")))
	assert.Equal(t, BudgetExceeded, d.Budgets[0].Spend.Status)

	require.Len(t, d.Goals, 2)
	assert.Equal(t, "trip", d.Goals[0].Name)
	assert.Equal(t, "someday", d.Goals[1].Name)

	assert.Empty(t, d.RecentTransactions)
	assert.True(t, d.CashFlow[0].Balance.Equal(dec("500")), "opening carried into first day: %s", d.CashFlow[0].Balance)
}

func TestBuildDashboardIsDeterministic(t *testing.T) {
	now := time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)
	deadline := now.AddDate(0, 0, 3)
	in := DashboardInput{
		Accounts:     []AccountSummary{{Account: Account{Name: "A", Balance: dec("10")}}},
		Transactions: []Transaction{tx(Income, "10", now.Add(-time.Hour)), tx(Expense, "4", now.AddDate(0, 0, -3))},
		Goals:        []SavingsGoal{{Name: "g", TargetAmount: dec("5"), Deadline: &deadline}},
		Budgets:      []Budget{{Category: Groceries, Amount: dec("8")}},
	}
	first := BuildDashboard(in, now)
	second := BuildDashboard(in, now)
	assert.Equal(t, first, second)
}

func TestDashboardRange(t *testing.T) {
	early := time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)
	r := DashboardRange(early)
	assert.Equal(t, "2025-05-05", r.Start.Format(time.DateOnly))
	assert.Equal(t, "2025-06-30", r.End.Format(time.DateOnly))

	late := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	r = DashboardRange(late)
	assert.Equal(t, "2025-06-01", r.Start.Format(time.DateOnly))
}
