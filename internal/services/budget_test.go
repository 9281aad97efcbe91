package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/storage/storagetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBudget(t *testing.T) {
	ctx := context.Background()

	t.Run("window defaults to the period containing now", func(t *testing.T) {
		e := newEnv(testNow)
		b, err := e.budgets.Create(ctx, "u1", CreateBudgetInput{Category: core.Groceries, Amount: decPtr("300"), Period: "weekly"})
		require.NoError(t, err)
		assert.Equal(t, core.Weekly, b.Period)
		require.NotNil(t, b.StartDate)
		require.NotNil(t, b.EndDate)
		assert.True(t, b.Window(testNow).Contains(testNow))
		assert.Equal(t, []amqp.Action{amqp.ActionBudgetCreated}, e.pub.actions())
	})

	t.Run("empty period is monthly", func(t *testing.T) {
		e := newEnv(testNow)
		b, err := e.budgets.Create(ctx, "u1", CreateBudgetInput{Category: core.Housing, Amount: decPtr("900")})
		require.NoError(t, err)
		assert.Equal(t, core.Monthly, b.Period)
		assert.Equal(t, core.MonthWindow(testNow).Start, b.StartDate.In(time.UTC))
	})

	t.Run("overlap conflicts", func(t *testing.T) {
		e := newEnv(testNow)
		_, err := e.budgets.Create(ctx, "u1", CreateBudgetInput{Category: core.Groceries, Amount: decPtr("300")})
		require.NoError(t, err)

		start := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, 7, 20, 0, 0, 0, 0, time.UTC)
		_, err = e.budgets.Create(ctx, "u1", CreateBudgetInput{Category: core.Groceries, Amount: decPtr("50"), StartDate: &start, EndDate: &end})
		assert.ErrorIs(t, err, core.ErrConflict)

		_, err = e.budgets.Create(ctx, "u2", CreateBudgetInput{Category: core.Groceries, Amount: decPtr("50"), StartDate: &start, EndDate: &end})
		assert.NoError(t, err, "other users do not conflict")

		_, err = e.budgets.Create(ctx, "u1", CreateBudgetInput{Category: core.Shopping, Amount: decPtr("50"), StartDate: &start, EndDate: &end})
		assert.NoError(t, err, "other categories do not conflict")
	})

	t.Run("validation", func(t *testing.T) {
		e := newEnv(testNow)
		start := testNow
		end := testNow.AddDate(0, 0, -1)

		tests := map[string]CreateBudgetInput{
			"missing category": {Amount: decPtr("1")},
			"missing amount":   {Category: core.Groceries},
			"zero amount":      {Category: core.Groceries, Amount: decPtr("0")},
			"bad period":       {Category: core.Groceries, Amount: decPtr("1"), Period: "daily"},
			"only start date":  {Category: core.Groceries, Amount: decPtr("1"), StartDate: &start},
			"end before start": {Category: core.Groceries, Amount: decPtr("1"), StartDate: &start, EndDate: &end},
			"unknown category": {Category: "PETS", Amount: decPtr("1")},
		}
		for name, in := range tests {
			t.Run(name, func(t *testing.T) {
				_, err := e.budgets.Create(ctx, "u1", in)
				assert.ErrorIs(t, err, core.ErrValidation)
			})
		}
	})
}

func TestListBudgetsComputesSpend(t *testing.T) {
	e := newEnv(testNow)
	ctx := context.Background()

	acc, err := e.ledger.CreateAccount(ctx, "u1", CreateAccountInput{Name: "A", Type: "checking"})
	require.NoError(t, err)
	_, err = e.budgets.Create(ctx, "u1", CreateBudgetInput{Category: core.Groceries, Amount: decPtr("100")})
	require.NoError(t, err)

	for _, in := range []CreateTransactionInput{
		{AccountID: acc.ID, Amount: decPtr("70"), Type: core.Expense, Category: core.Groceries},
		{AccountID: acc.ID, Amount: decPtr("50"), Type: core.Expense, Category: core.Groceries, Date: timePtr(testNow.AddDate(0, 0, -1))},
		{AccountID: acc.ID, Amount: decPtr("999"), Type: core.Income, Category: core.Groceries},
		{AccountID: acc.ID, Amount: decPtr("999"), Type: core.Expense, Category: core.Shopping},
		{AccountID: acc.ID, Amount: decPtr("999"), Type: core.Expense, Category: core.Groceries, Date: timePtr(testNow.AddDate(0, -1, 0))},
	} {
		_, err := e.ledger.CreateTransaction(ctx, "u1", in)
		require.NoError(t, err)
	}

	budgets, err := e.budgets.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	s := budgets[0].Spend
	storagetest.AssertAmount(t, "120", s.Spent)
	storagetest.AssertAmount(t, "-20", s.Remaining)
	storagetest.AssertAmount(t, "100", s.Percentage)
	assert.Equal(t, core.BudgetExceeded, s.Status)
}

func TestGoals(t *testing.T) {
	e := newEnv(testNow)
	ctx := context.Background()

	far := testNow.AddDate(0, 6, 0)
	near := testNow.Add(36 * time.Hour)

	_, err := e.goals.Create(ctx, "u1", CreateGoalInput{Name: "Someday", TargetAmount: decPtr("100")})
	require.NoError(t, err)
	_, err = e.goals.Create(ctx, "u1", CreateGoalInput{Name: "Car", TargetAmount: decPtr("5000"), CurrentAmount: decPtr("1000"), Deadline: &far})
	require.NoError(t, err)
	created, err := e.goals.Create(ctx, "u1", CreateGoalInput{Name: "Trip", Emoji: "✈️", TargetAmount: decPtr("200"), CurrentAmount: decPtr("250"), Deadline: &near})
	require.NoError(t, err)
	assert.True(t, created.IsComplete)
	storagetest.AssertAmount(t, "100", created.Percentage)
	storagetest.AssertAmount(t, "-50", created.Remaining)
	require.NotNil(t, created.DaysLeft)
	assert.Equal(t, 2, *created.DaysLeft)

	goals, err := e.goals.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, goals, 3)
	assert.Equal(t, "Trip", goals[0].Name)
	assert.Equal(t, "Car", goals[1].Name)
	assert.Equal(t, "Someday", goals[2].Name)
	assert.Nil(t, goals[2].DaysLeft)
	storagetest.AssertAmount(t, "20", goals[1].Percentage)

	_, err = e.goals.Create(ctx, "u1", CreateGoalInput{Name: "x"})
	assert.ErrorIs(t, err, core.ErrValidation)
	_, err = e.goals.Create(ctx, "u1", CreateGoalInput{Name: "x", TargetAmount: decPtr("10"), CurrentAmount: decPtr("-1")})
	assert.ErrorIs(t, err, core.ErrValidation)
	_, err = e.goals.Create(ctx, "", CreateGoalInput{Name: "x", TargetAmount: decPtr("10")})
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

type failingDashboardStore struct{}

func (failingDashboardStore) LoadDashboard(context.Context, string, core.Window, int) (core.DashboardInput, error) {
	return core.DashboardInput{}, errors.New("disk I/O error")
}

func TestDashboardUnavailable(t *testing.T) {
	svc := NewDashboardService(failingDashboardStore{}, fixedClock(testNow), log.Discard())
	_, err := svc.Get(context.Background(), "u1")
	assert.ErrorIs(t, err, core.ErrDashboardUnavailable)
	assert.NotContains(t, err.Error(), "%!")

	_, err = svc.Get(context.Background(), "")
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestDashboardIsDeterministic(t *testing.T) {
	e := newEnv(testNow)
	ctx := context.Background()
	acc, err := e.ledger.CreateAccount(ctx, "u1", CreateAccountInput{Name: "A", Type: "checking", Balance: decPtr("500")})
	require.NoError(t, err)
	_, err = e.ledger.CreateTransaction(ctx, "u1", CreateTransactionInput{
		AccountID: acc.ID, Amount: decPtr("25"), Type: core.Expense, Category: core.FoodDining,
	})
	require.NoError(t, err)

	first, err := e.dash.Get(ctx, "u1")
	require.NoError(t, err)
	second, err := e.dash.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	storagetest.AssertAmount(t, "475", first.Summary.TotalBalance)
	storagetest.AssertAmount(t, "500", first.Summary.MonthIncome)
	storagetest.AssertAmount(t, "25", first.Summary.MonthExpenses)
	storagetest.AssertAmount(t, "475", first.Summary.MonthSavings)
	assert.Len(t, first.RecentTransactions, 2)
	storagetest.AssertAmount(t, "475", first.CashFlow[len(first.CashFlow)-1].Balance)
}
