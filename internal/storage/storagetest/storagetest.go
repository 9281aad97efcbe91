// Package storagetest is a conformance suite run against every
// storage.Repository implementation.
package storagetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"finboard/internal/core"
	"finboard/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises newRepo against the shared contract. newRepo must return an
// empty repository; Run closes it.
func Run(t *testing.T, newRepo func(t *testing.T) storage.Repository) {
	cases := []struct {
		name string
		fn   func(t *testing.T, r storage.Repository)
	}{
		{"BalanceFollowsTransactions", testBalanceFollowsTransactions},
		{"OpeningBalance", testOpeningBalance},
		{"OwnershipIsolation", testOwnershipIsolation},
		{"ListTransactionsFilterAndPaging", testListTransactions},
		{"UpdateRejectsInvalidPatch", testUpdateRejectsInvalidPatch},
		{"BudgetOverlap", testBudgetOverlap},
		{"GoalsOrderedByDeadline", testGoalsOrder},
		{"Sessions", testSessions},
		{"AlertDedupe", testAlertDedupe},
		{"LoadDashboard", testLoadDashboard},
		{"ConcurrentWritesKeepBalance", testConcurrentWrites},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := newRepo(t)
			t.Cleanup(func() { _ = r.Close() })
			c.fn(t, r)
		})
	}
}

var base = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func amount(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// AssertAmount compares decimals by value.
func AssertAmount(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, amount(want).Equal(got), append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func newAccount(t *testing.T, r storage.Repository, userID, name string) core.Account {
	t.Helper()
	a, err := r.CreateAccount(context.Background(), core.Account{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Type:      "CHECKING",
		Currency:  core.DefaultCurrency,
		CreatedAt: base,
	}, nil)
	require.NoError(t, err)
	return a
}

func newTx(accountID uuid.UUID, typ core.TxType, amt string, cat core.Category, at time.Time) core.Transaction {
	return core.Transaction{
		ID:          uuid.New(),
		AccountID:   accountID,
		Amount:      amount(amt),
		Type:        typ,
		Category:    cat,
		Description: string(cat),
		Date:        at,
		CreatedAt:   at,
	}
}

func balance(t *testing.T, r storage.Repository, userID string, id uuid.UUID) decimal.Decimal {
	t.Helper()
	a, err := r.GetAccount(context.Background(), userID, id)
	require.NoError(t, err)
	return a.Balance
}

func testBalanceFollowsTransactions(t *testing.T, r storage.Repository) {
	ctx := context.Background()
	acct := newAccount(t, r, "u1", "Main")
	AssertAmount(t, "0", acct.Balance)

	income, err := r.CreateTransaction(ctx, "u1", newTx(acct.ID, core.Income, "100", core.Salary, base))
	require.NoError(t, err)
	assert.Equal(t, "Main", income.AccountName)
	AssertAmount(t, "100", balance(t, r, "u1", acct.ID))

	expense, err := r.CreateTransaction(ctx, "u1", newTx(acct.ID, core.Expense, "30.50", core.Groceries, base))
	require.NoError(t, err)
	AssertAmount(t, "69.5", balance(t, r, "u1", acct.ID))

	// Type flip: -30.50 becomes +30.50.
	flip := core.Income
	_, err = r.UpdateTransaction(ctx, "u1", expense.ID, core.TransactionPatch{Type: &flip, Category: ptr(core.OtherIncome)})
	require.NoError(t, err)
	AssertAmount(t, "130.5", balance(t, r, "u1", acct.ID))

	newAmount := amount("50")
	updated, err := r.UpdateTransaction(ctx, "u1", income.ID, core.TransactionPatch{Amount: &newAmount})
	require.NoError(t, err)
	AssertAmount(t, "50", updated.Amount)
	assert.Equal(t, core.Salary, updated.Category)
	AssertAmount(t, "80.5", balance(t, r, "u1", acct.ID))

	deleted, err := r.DeleteTransaction(ctx, "u1", income.ID)
	require.NoError(t, err)
	assert.Equal(t, income.ID, deleted.ID)
	AssertAmount(t, "30.5", balance(t, r, "u1", acct.ID))

	_, err = r.GetTransaction(ctx, "u1", income.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	accounts, err := r.ListAccounts(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, 1, accounts[0].TransactionCount)
}

func testOpeningBalance(t *testing.T, r storage.Repository) {
	ctx := context.Background()
	id := uuid.New()
	opening := newTx(uuid.Nil, core.Income, "250", core.OtherIncome, base)
	opening.Description = "Opening balance"

	acct, err := r.CreateAccount(ctx, core.Account{
		ID: id, UserID: "u1", Name: "Savings", Type: "SAVINGS", Currency: "EUR", CreatedAt: base,
	}, &opening)
	require.NoError(t, err)
	AssertAmount(t, "250", acct.Balance)

	items, total, err := r.ListTransactions(ctx, "u1", storage.TransactionFilter{AccountID: &id})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, "Opening balance", items[0].Description)
	assert.Equal(t, id, items[0].AccountID)

	sum, err := r.SumSignedBefore(ctx, "u1", base.Add(time.Millisecond))
	require.NoError(t, err)
	AssertAmount(t, "250", sum)
}

func testOwnershipIsolation(t *testing.T, r storage.Repository) {
	ctx := context.Background()
	mine := newAccount(t, r, "alice", "Alice")
	theirs := newAccount(t, r, "bob", "Bob")

	_, err := r.GetAccount(ctx, "alice", theirs.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = r.CreateTransaction(ctx, "alice", newTx(theirs.ID, core.Expense, "10", core.Shopping, base))
	assert.ErrorIs(t, err, core.ErrNotFound)
	AssertAmount(t, "0", balance(t, r, "bob", theirs.ID))

	bobTx, err := r.CreateTransaction(ctx, "bob", newTx(theirs.ID, core.Expense, "10", core.Shopping, base))
	require.NoError(t, err)

	_, err = r.GetTransaction(ctx, "alice", bobTx.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	amt := amount("1")
	_, err = r.UpdateTransaction(ctx, "alice", bobTx.ID, core.TransactionPatch{Amount: &amt})
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = r.DeleteTransaction(ctx, "alice", bobTx.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	AssertAmount(t, "-10", balance(t, r, "bob", theirs.ID))

	items, total, err := r.ListTransactions(ctx, "alice", storage.TransactionFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)

	accounts, err := r.ListAccounts(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, mine.ID, accounts[0].ID)
}

func testListTransactions(t *testing.T, r storage.Repository) {
	ctx := context.Background()
	a := newAccount(t, r, "u1", "A")
	b := newAccount(t, r, "u1", "B")

	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		at := base.AddDate(0, 0, -i)
		d, err := r.CreateTransaction(ctx, "u1", newTx(a.ID, core.Expense, "1", core.Groceries, at))
		require.NoError(t, err)
		ids = append(ids, d.ID)
	}
	_, err := r.CreateTransaction(ctx, "u1", newTx(b.ID, core.Income, "9", core.Salary, base))
	require.NoError(t, err)

	page, total, err := r.ListTransactions(ctx, "u1", storage.TransactionFilter{AccountID: &a.ID, Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, ids[1], page[0].ID)
	assert.Equal(t, ids[2], page[1].ID)

	past, total, err := r.ListTransactions(ctx, "u1", storage.TransactionFilter{Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, 6, total)
	assert.Empty(t, past)

	income := core.Income
	only, total, err := r.ListTransactions(ctx, "u1", storage.TransactionFilter{Type: &income})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "B", only[0].AccountName)

	from := core.StartOfDay(base.AddDate(0, 0, -2))
	to := core.EndOfDay(base.AddDate(0, 0, -1))
	groceries := core.Groceries
	ranged, total, err := r.ListTransactions(ctx, "u1", storage.TransactionFilter{Category: &groceries, From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, []uuid.UUID{ids[1], ids[2]}, []uuid.UUID{ranged[0].ID, ranged[1].ID})
}

func testUpdateRejectsInvalidPatch(t *testing.T, r storage.Repository) {
	ctx := context.Background()
	acct := newAccount(t, r, "u1", "Main")
	d, err := r.CreateTransaction(ctx, "u1", newTx(acct.ID, core.Expense, "20", core.Housing, base))
	require.NoError(t, err)

	zero := decimal.Zero
	_, err = r.UpdateTransaction(ctx, "u1", d.ID, core.TransactionPatch{Amount: &zero})
	assert.ErrorIs(t, err, core.ErrValidation)
	AssertAmount(t, "-20", balance(t, r, "u1", acct.ID))

	got, err := r.GetTransaction(ctx, "u1", d.ID)
	require.NoError(t, err)
	AssertAmount(t, "20", got.Amount)
}

func newBudget(userID string, cat core.Category, start, end *time.Time) core.Budget {
	return core.Budget{
		ID:        uuid.New(),
		UserID:    userID,
		Category:  cat,
		Amount:    amount("300"),
		Period:    core.Monthly,
		StartDate: start,
		EndDate:   end,
		CreatedAt: base,
	}
}

func testBudgetOverlap(t *testing.T, r storage.Repository) {
	ctx := context.Background()
	june := core.MonthWindow(base)
	july := core.MonthWindow(base.AddDate(0, 1, 0))

	_, err := r.CreateBudget(ctx, newBudget("u1", core.Groceries, &june.Start, &june.End), base)
	require.NoError(t, err)

	_, err = r.CreateBudget(ctx, newBudget("u1", core.Groceries, &june.Start, &june.End), base)
	assert.ErrorIs(t, err, core.ErrConflict)

	// A legacy budget covers the current calendar month and conflicts too.
	_, err = r.CreateBudget(ctx, newBudget("u1", core.Groceries, nil, nil), base)
	assert.ErrorIs(t, err, core.ErrConflict)

	_, err = r.CreateBudget(ctx, newBudget("u1", core.Groceries, &july.Start, &july.End), base)
	assert.NoError(t, err)
	_, err = r.CreateBudget(ctx, newBudget("u1", core.Housing, &june.Start, &june.End), base)
	assert.NoError(t, err)
	_, err = r.CreateBudget(ctx, newBudget("u2", core.Groceries, &june.Start, &june.End), base)
	assert.NoError(t, err)

	budgets, err := r.ListBudgets(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, budgets, 3)

	owners, err := r.ListBudgetOwners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, owners)
}

func testGoalsOrder(t *testing.T, r storage.Repository) {
	ctx := context.Background()
	late := base.AddDate(1, 0, 0)
	soon := base.AddDate(0, 1, 0)
	for _, g := range []struct {
		name     string
		deadline *time.Time
	}{{"someday", nil}, {"house", &late}, {"trip", &soon}} {
		_, err := r.CreateGoal(ctx, core.SavingsGoal{
			ID: uuid.New(), UserID: "u1", Name: g.name, Emoji: "🎯",
			TargetAmount: amount("1000"), CurrentAmount: amount("100"),
			Deadline: g.deadline, CreatedAt: base,
		})
		require.NoError(t, err)
	}

	goals, err := r.ListGoals(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, goals, 3)
	assert.Equal(t, []string{"trip", "house", "someday"}, []string{goals[0].Name, goals[1].Name, goals[2].Name})
	AssertAmount(t, "1000", goals[0].TargetAmount)
}

func testSessions(t *testing.T, r storage.Repository) {
	ctx := context.Background()
	require.NoError(t, r.CreateSession(ctx, "live", "u1", base.Add(time.Hour)))
	require.NoError(t, r.CreateSession(ctx, "stale", "u2", base.Add(-time.Hour)))

	user, err := r.ResolveSession(ctx, "live", base)
	require.NoError(t, err)
	assert.Equal(t, "u1", user)

	_, err = r.ResolveSession(ctx, "stale", base)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
	_, err = r.ResolveSession(ctx, "missing", base)
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	n, err := r.PurgeExpiredSessions(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, r.DeleteSession(ctx, "live"))
	assert.ErrorIs(t, r.DeleteSession(ctx, "live"), core.ErrNotFound)
	_, err = r.ResolveSession(ctx, "live", base)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func testAlertDedupe(t *testing.T, r storage.Repository) {
	ctx := context.Background()
	june := core.MonthWindow(base)
	b, err := r.CreateBudget(ctx, newBudget("u1", core.Groceries, &june.Start, &june.End), base)
	require.NoError(t, err)

	alert := core.BudgetAlert{
		ID: uuid.New(), UserID: "u1", BudgetID: b.ID, Category: b.Category,
		Status: core.BudgetWarning, Spent: amount("250"), Amount: b.Amount,
		Percentage: amount("83.33"), WindowStart: june.Start, WindowEnd: june.End, CreatedAt: base,
	}
	created, err := r.RecordBudgetAlert(ctx, alert)
	require.NoError(t, err)
	assert.True(t, created)

	alert.ID = uuid.New()
	created, err = r.RecordBudgetAlert(ctx, alert)
	require.NoError(t, err)
	assert.False(t, created)

	alert.ID = uuid.New()
	alert.Status = core.BudgetExceeded
	alert.CreatedAt = base.Add(time.Minute)
	created, err = r.RecordBudgetAlert(ctx, alert)
	require.NoError(t, err)
	assert.True(t, created)

	alerts, err := r.ListBudgetAlerts(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, core.BudgetExceeded, alerts[0].Status)
	AssertAmount(t, "83.33", alerts[1].Percentage)

	limited, err := r.ListBudgetAlerts(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func testLoadDashboard(t *testing.T, r storage.Repository) {
	ctx := context.Background()
	acct := newAccount(t, r, "u1", "Main")
	rng := core.DashboardRange(base)

	old := newTx(acct.ID, core.Income, "1000", core.Salary, rng.Start.AddDate(0, 0, -3))
	inside := newTx(acct.ID, core.Expense, "40", core.Groceries, base.AddDate(0, 0, -1))
	for _, tx := range []core.Transaction{old, inside} {
		_, err := r.CreateTransaction(ctx, "u1", tx)
		require.NoError(t, err)
	}

	in, err := r.LoadDashboard(ctx, "u1", rng, core.RecentLimit)
	require.NoError(t, err)
	require.Len(t, in.Accounts, 1)
	AssertAmount(t, "960", in.Accounts[0].Balance)
	AssertAmount(t, "1000", in.OpeningBalance)
	require.Len(t, in.Transactions, 1)
	assert.Equal(t, inside.ID, in.Transactions[0].ID)
	require.Len(t, in.Recent, 2)
	assert.Equal(t, inside.ID, in.Recent[0].ID)

	// The snapshot is consistent: opening plus range equals the account total.
	AssertAmount(t, in.Accounts[0].Balance.String(), in.OpeningBalance.Add(core.SumSigned(in.Transactions)))
}

func testConcurrentWrites(t *testing.T, r storage.Repository) {
	ctx := context.Background()
	acct := newAccount(t, r, "u1", "Main")

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			typ := core.Expense
			if i%2 == 0 {
				typ = core.Income
			}
			_, err := r.CreateTransaction(ctx, "u1", newTx(acct.ID, typ, "2.5", core.DefaultCategory(typ), base))
			if err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	AssertAmount(t, "0", balance(t, r, "u1", acct.ID))
	_, total, err := r.ListTransactions(ctx, "u1", storage.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, 20, total)
}

func ptr[T any](v T) *T { return &v }
