package storage

import (
	"context"
	"time"

	"finboard/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionFilter narrows ListTransactions. Nil fields do not filter;
// Limit 0 means no limit. From and To are inclusive.
type TransactionFilter struct {
	AccountID *uuid.UUID
	Category  *core.Category
	Type      *core.TxType
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// Every method takes the caller's user id and only sees rows owned by that
// user. Rows owned by someone else are reported as core.ErrNotFound.
type (
	AccountStore interface {
		// CreateAccount inserts the account with a zero balance. A non-nil
		// opening transaction is inserted on it in the same unit of work and
		// its signed amount becomes the initial balance.
		CreateAccount(ctx context.Context, a core.Account, opening *core.Transaction) (core.Account, error)
		ListAccounts(ctx context.Context, userID string) ([]core.AccountSummary, error)
		GetAccount(ctx context.Context, userID string, id uuid.UUID) (core.Account, error)
	}

	// TransactionStore writes pair every transaction change with the matching
	// account balance adjustment, atomically.
	TransactionStore interface {
		CreateTransaction(ctx context.Context, userID string, t core.Transaction) (core.TransactionDetail, error)
		GetTransaction(ctx context.Context, userID string, id uuid.UUID) (core.TransactionDetail, error)
		UpdateTransaction(ctx context.Context, userID string, id uuid.UUID, patch core.TransactionPatch) (core.TransactionDetail, error)
		DeleteTransaction(ctx context.Context, userID string, id uuid.UUID) (core.TransactionDetail, error)
		ListTransactions(ctx context.Context, userID string, f TransactionFilter) ([]core.TransactionDetail, int, error)
		// SumSignedBefore is the signed sum of the user's transactions dated strictly before t.
		SumSignedBefore(ctx context.Context, userID string, before time.Time) (decimal.Decimal, error)
	}

	BudgetStore interface {
		// CreateBudget fails with core.ErrConflict when another budget of the
		// same user and category has an overlapping window. Legacy budgets
		// without dates are compared using the calendar month containing now.
		CreateBudget(ctx context.Context, b core.Budget, now time.Time) (core.Budget, error)
		ListBudgets(ctx context.Context, userID string) ([]core.Budget, error)
		ListBudgetOwners(ctx context.Context) ([]string, error)
	}

	GoalStore interface {
		CreateGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error)
		ListGoals(ctx context.Context, userID string) ([]core.SavingsGoal, error)
	}

	SessionStore interface {
		CreateSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error
		// ResolveSession returns the user of an unexpired session or core.ErrUnauthorized.
		ResolveSession(ctx context.Context, tokenHash string, now time.Time) (string, error)
		DeleteSession(ctx context.Context, tokenHash string) error
		PurgeExpiredSessions(ctx context.Context, now time.Time) (int, error)
	}

	AlertStore interface {
		// RecordBudgetAlert returns false when an alert for the same budget,
		// status and window start already exists.
		RecordBudgetAlert(ctx context.Context, a core.BudgetAlert) (bool, error)
		ListBudgetAlerts(ctx context.Context, userID string, limit int) ([]core.BudgetAlert, error)
	}

	// DashboardStore loads everything core.BuildDashboard needs from one
	// consistent snapshot of the store.
	DashboardStore interface {
		LoadDashboard(ctx context.Context, userID string, r core.Window, recent int) (core.DashboardInput, error)
	}

	Repository interface {
		AccountStore
		TransactionStore
		BudgetStore
		GoalStore
		SessionStore
		AlertStore
		DashboardStore
		Ping(ctx context.Context) error
		Close() error
	}
)

// CheckOverlap returns core.ErrConflict when candidate overlaps any existing
// budget of the same category.
func CheckOverlap(candidate core.Budget, existing []core.Budget, now time.Time) error {
	w := candidate.Window(now)
	for _, b := range existing {
		if b.Category != candidate.Category {
			continue
		}
		if b.Window(now).Overlaps(w) {
			return core.ErrConflict
		}
	}
	return nil
}
