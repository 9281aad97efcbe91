package services

import (
	"context"
	"testing"

	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/storage/storagetest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spend(t *testing.T, e *env, userID string, accountID uuid.UUID, category core.Category, amount string) {
	t.Helper()
	_, err := e.ledger.CreateTransaction(context.Background(), userID, CreateTransactionInput{
		AccountID: accountID, Amount: decPtr(amount), Type: core.Expense, Category: category,
	})
	require.NoError(t, err)
}

func TestAlertCheck(t *testing.T) {
	e := newEnv(testNow)
	ctx := context.Background()

	acc, err := e.ledger.CreateAccount(ctx, "u1", CreateAccountInput{Name: "A", Type: "checking"})
	require.NoError(t, err)
	b, err := e.budgets.Create(ctx, "u1", CreateBudgetInput{Category: core.Groceries, Amount: decPtr("100")})
	require.NoError(t, err)

	spend(t, e, "u1", acc.ID, core.Groceries, "79.99")
	alerts, err := e.alerts.Check(ctx, "u1", testNow)
	require.NoError(t, err)
	assert.Empty(t, alerts, "below threshold")

	spend(t, e, "u1", acc.ID, core.Groceries, "0.01")
	alerts, err = e.alerts.Check(ctx, "u1", testNow)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, core.BudgetWarning, alerts[0].Status)
	assert.Equal(t, b.ID, alerts[0].BudgetID)
	storagetest.AssertAmount(t, "80", alerts[0].Percentage)

	alerts, err = e.alerts.Check(ctx, "u1", testNow)
	require.NoError(t, err)
	assert.Empty(t, alerts, "same status is recorded once per window")

	spend(t, e, "u1", acc.ID, core.Groceries, "40")
	alerts, err = e.alerts.Check(ctx, "u1", testNow)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, core.BudgetExceeded, alerts[0].Status)
	storagetest.AssertAmount(t, "120", alerts[0].Percentage)
	storagetest.AssertAmount(t, "120", alerts[0].Spent)

	listed, err := e.alerts.List(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	listed, err = e.alerts.List(ctx, "u2", 0)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestAlertCheckIgnoresInactiveBudgets(t *testing.T) {
	e := newEnv(testNow)
	ctx := context.Background()

	acc, err := e.ledger.CreateAccount(ctx, "u1", CreateAccountInput{Name: "A", Type: "checking"})
	require.NoError(t, err)
	start := testNow.AddDate(0, 1, 0)
	end := start.AddDate(0, 1, 0)
	_, err = e.budgets.Create(ctx, "u1", CreateBudgetInput{Category: core.Groceries, Amount: decPtr("10"), StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	spend(t, e, "u1", acc.ID, core.Groceries, "500")

	alerts, err := e.alerts.Check(ctx, "u1", testNow)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestAlertSweep(t *testing.T) {
	e := newEnv(testNow)
	ctx := context.Background()

	for _, user := range []string{"u1", "u2", "u3"} {
		acc, err := e.ledger.CreateAccount(ctx, user, CreateAccountInput{Name: "A", Type: "checking"})
		require.NoError(t, err)
		_, err = e.budgets.Create(ctx, user, CreateBudgetInput{Category: core.Housing, Amount: decPtr("1000")})
		require.NoError(t, err)
		if user != "u3" {
			spend(t, e, user, acc.ID, core.Housing, "900")
		}
	}

	res, err := e.alerts.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Users: 3, Alerts: 2}, res)

	res, err = e.alerts.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Users: 3}, res)
}

func TestAlertThresholdBounds(t *testing.T) {
	e := newEnv(testNow)
	svc := NewAlertService(e.store, 0, fixedClock(testNow), log.Discard())
	assert.True(t, svc.threshold.Equal(dec("80")))
}
