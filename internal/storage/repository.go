package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"finboard/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

var _ Repository = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	// reads serves snapshot reads. Its transactions are deferred, so they
	// do not queue behind writers in WAL mode.
	reads *sql.DB
}

const basePragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// dsn turns a file path into a modernc DSN. Write transactions take the
// database lock at BEGIN so read-check-write sequences cannot interleave.
func dsn(dbPath string) string {
	if strings.HasPrefix(dbPath, "file:") {
		return dbPath
	}
	return "file:" + dbPath + "?" + basePragmas + "&_txlock=immediate"
}

// readDSN opens query-only connections with deferred transactions.
func readDSN(dbPath string) string {
	if strings.HasPrefix(dbPath, "file:") {
		return dbPath
	}
	return "file:" + dbPath + "?" + basePragmas + "&_pragma=query_only(1)&_txlock=deferred"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	reads, err := sql.Open("sqlite", readDSN(dbPath))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite read pool: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		reads:   reads,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	var errs []error
	if r.reads != nil {
		errs = append(errs, r.reads.Close())
	}
	if r.db != nil {
		errs = append(errs, r.db.Close())
	}
	return errors.Join(errs...)
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// withTx runs fn inside a write transaction and commits when fn succeeds.
func (r *SQLiteRepository) withTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(r.queries.WithTx(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// notFound maps sql.ErrNoRows to core.ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, core.ErrNotFound)
	}
	return fmt.Errorf("get %s: %w", what, err)
}

// Accounts

func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account, opening *core.Transaction) (core.Account, error) {
	var created core.Account
	err := r.withTx(ctx, func(q *Queries) error {
		row, err := q.CreateAccount(ctx, CreateAccountParams{
			ID:           a.ID.String(),
			UserID:       a.UserID,
			Name:         a.Name,
			Type:         a.Type,
			BalanceCents: 0,
			Currency:     a.Currency,
			CreatedAt:    a.CreatedAt.UnixMilli(),
		})
		if err != nil {
			return fmt.Errorf("create account: %w", err)
		}

		if opening != nil {
			t := *opening
			t.AccountID = a.ID
			if _, err := q.CreateTransaction(ctx, createTransactionParams(t)); err != nil {
				return fmt.Errorf("create opening transaction: %w", err)
			}
			delta := core.ToCents(t.Signed())
			if _, err := q.IncrementAccountBalance(ctx, IncrementAccountBalanceParams{BalanceCents: delta, ID: row.ID}); err != nil {
				return fmt.Errorf("apply opening balance: %w", err)
			}
			row.BalanceCents += delta
		}

		created = accountFromRow(row)
		return nil
	})
	if err != nil {
		return core.Account{}, err
	}

	return created, nil
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context, userID string) ([]core.AccountSummary, error) {
	return listAccounts(ctx, r.queries, userID)
}

func listAccounts(ctx context.Context, q *Queries, userID string) ([]core.AccountSummary, error) {
	rows, err := q.ListAccountsWithCounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	out := make([]core.AccountSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.AccountSummary{
			Account: accountFromRow(Account{
				ID:           row.ID,
				UserID:       row.UserID,
				Name:         row.Name,
				Type:         row.Type,
				BalanceCents: row.BalanceCents,
				Currency:     row.Currency,
				CreatedAt:    row.CreatedAt,
			}),
			TransactionCount: int(row.TransactionCount),
		})
	}
	return out, nil
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, userID string, id uuid.UUID) (core.Account, error) {
	row, err := r.queries.GetAccountForUser(ctx, GetAccountForUserParams{ID: id.String(), UserID: userID})
	if err != nil {
		return core.Account{}, notFound(err, "account")
	}
	return accountFromRow(row), nil
}

// Transactions

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, userID string, t core.Transaction) (core.TransactionDetail, error) {
	var detail core.TransactionDetail
	err := r.withTx(ctx, func(q *Queries) error {
		acct, err := q.GetAccountForUser(ctx, GetAccountForUserParams{ID: t.AccountID.String(), UserID: userID})
		if err != nil {
			return notFound(err, "account")
		}

		row, err := q.CreateTransaction(ctx, createTransactionParams(t))
		if err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}
		if err := applyDelta(ctx, q, acct.ID, core.ToCents(t.Signed())); err != nil {
			return err
		}

		detail = core.TransactionDetail{Transaction: transactionFromRow(row), AccountName: acct.Name, AccountType: acct.Type}
		return nil
	})
	if err != nil {
		return core.TransactionDetail{}, err
	}
	return detail, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID string, id uuid.UUID) (core.TransactionDetail, error) {
	row, err := r.queries.GetTransactionForUser(ctx, GetTransactionForUserParams{ID: id.String(), UserID: userID})
	if err != nil {
		return core.TransactionDetail{}, notFound(err, "transaction")
	}
	return detailFromRow(ListTransactionsRow(row)), nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, userID string, id uuid.UUID, patch core.TransactionPatch) (core.TransactionDetail, error) {
	var detail core.TransactionDetail
	err := r.withTx(ctx, func(q *Queries) error {
		cur, err := q.GetTransactionForUser(ctx, GetTransactionForUserParams{ID: id.String(), UserID: userID})
		if err != nil {
			return notFound(err, "transaction")
		}
		old := detailFromRow(ListTransactionsRow(cur))
		updated := patch.Apply(old.Transaction)
		if err := updated.Validate(); err != nil {
			return err
		}

		row, err := q.UpdateTransaction(ctx, UpdateTransactionParams{
			AmountCents: core.ToCents(updated.Amount),
			Type:        string(updated.Type),
			Category:    string(updated.Category),
			Description: updated.Description,
			DateMs:      updated.Date.UnixMilli(),
			ID:          cur.ID,
		})
		if err != nil {
			return fmt.Errorf("update transaction: %w", err)
		}
		if err := applyDelta(ctx, q, cur.AccountID, core.ToCents(core.BalanceDelta(old.Transaction, updated))); err != nil {
			return err
		}

		detail = core.TransactionDetail{Transaction: transactionFromRow(row), AccountName: old.AccountName, AccountType: old.AccountType}
		return nil
	})
	if err != nil {
		return core.TransactionDetail{}, err
	}
	return detail, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID string, id uuid.UUID) (core.TransactionDetail, error) {
	var deleted core.TransactionDetail
	err := r.withTx(ctx, func(q *Queries) error {
		cur, err := q.GetTransactionForUser(ctx, GetTransactionForUserParams{ID: id.String(), UserID: userID})
		if err != nil {
			return notFound(err, "transaction")
		}
		deleted = detailFromRow(ListTransactionsRow(cur))

		if _, err := q.DeleteTransaction(ctx, cur.ID); err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
		return applyDelta(ctx, q, cur.AccountID, -core.ToCents(deleted.Signed()))
	})
	if err != nil {
		return core.TransactionDetail{}, err
	}
	return deleted, nil
}

func applyDelta(ctx context.Context, q *Queries, accountID string, cents int64) error {
	if cents == 0 {
		return nil
	}
	n, err := q.IncrementAccountBalance(ctx, IncrementAccountBalanceParams{BalanceCents: cents, ID: accountID})
	if err != nil {
		return fmt.Errorf("adjust balance: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("account %s: %w", accountID, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string, f TransactionFilter) ([]core.TransactionDetail, int, error) {
	items, err := loadTransactions(ctx, r.queries, userID, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.queries.CountTransactions(ctx, CountTransactionsParams(filterParams(userID, f)))
	if err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}
	return items, int(total), nil
}

type filterParamSet struct {
	UserID    string
	AccountID sql.NullString
	Category  sql.NullString
	Type      sql.NullString
	FromMs    sql.NullInt64
	ToMs      sql.NullInt64
}

func filterParams(userID string, f TransactionFilter) filterParamSet {
	p := filterParamSet{UserID: userID}
	if f.AccountID != nil {
		p.AccountID = sql.NullString{String: f.AccountID.String(), Valid: true}
	}
	if f.Category != nil {
		p.Category = sql.NullString{String: string(*f.Category), Valid: true}
	}
	if f.Type != nil {
		p.Type = sql.NullString{String: string(*f.Type), Valid: true}
	}
	if f.From != nil {
		p.FromMs = sql.NullInt64{Int64: f.From.UnixMilli(), Valid: true}
	}
	if f.To != nil {
		p.ToMs = sql.NullInt64{Int64: f.To.UnixMilli(), Valid: true}
	}
	return p
}

func loadTransactions(ctx context.Context, q *Queries, userID string, f TransactionFilter) ([]core.TransactionDetail, error) {
	p := filterParams(userID, f)
	limit := int64(f.Limit)
	if limit <= 0 {
		limit = -1
	}
	rows, err := q.ListTransactions(ctx, ListTransactionsParams{
		UserID:    p.UserID,
		AccountID: p.AccountID,
		Category:  p.Category,
		Type:      p.Type,
		FromMs:    p.FromMs,
		ToMs:      p.ToMs,
		RowLimit:  limit,
		RowOffset: int64(f.Offset),
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.TransactionDetail, 0, len(rows))
	for _, row := range rows {
		out = append(out, detailFromRow(row))
	}
	return out, nil
}

func (r *SQLiteRepository) SumSignedBefore(ctx context.Context, userID string, before time.Time) (decimal.Decimal, error) {
	cents, err := r.queries.SumSignedBefore(ctx, SumSignedBeforeParams{UserID: userID, DateMs: before.UnixMilli()})
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum transactions: %w", err)
	}
	return core.FromCents(cents), nil
}

// Budgets

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget, now time.Time) (core.Budget, error) {
	var created core.Budget
	err := r.withTx(ctx, func(q *Queries) error {
		rows, err := q.ListBudgetsForCategory(ctx, ListBudgetsForCategoryParams{UserID: b.UserID, Category: string(b.Category)})
		if err != nil {
			return fmt.Errorf("list budgets: %w", err)
		}
		existing := make([]core.Budget, 0, len(rows))
		for _, row := range rows {
			existing = append(existing, budgetFromRow(row))
		}
		if err := CheckOverlap(b, existing, now); err != nil {
			return fmt.Errorf("budget for %s: %w", b.Category, err)
		}

		row, err := q.CreateBudget(ctx, CreateBudgetParams{
			ID:          b.ID.String(),
			UserID:      b.UserID,
			Category:    string(b.Category),
			AmountCents: core.ToCents(b.Amount),
			Period:      string(b.Period),
			StartDate:   nullMillis(b.StartDate),
			EndDate:     nullMillis(b.EndDate),
			CreatedAt:   b.CreatedAt.UnixMilli(),
		})
		if err != nil {
			return fmt.Errorf("create budget: %w", err)
		}
		created = budgetFromRow(row)
		return nil
	})
	if err != nil {
		return core.Budget{}, err
	}
	return created, nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID string) ([]core.Budget, error) {
	return loadBudgets(ctx, r.queries, userID)
}

func loadBudgets(ctx context.Context, q *Queries, userID string) ([]core.Budget, error) {
	rows, err := q.ListBudgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	out := make([]core.Budget, 0, len(rows))
	for _, row := range rows {
		out = append(out, budgetFromRow(row))
	}
	return out, nil
}

func (r *SQLiteRepository) ListBudgetOwners(ctx context.Context) ([]string, error) {
	owners, err := r.queries.ListBudgetOwners(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budget owners: %w", err)
	}
	return owners, nil
}

// Goals

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	row, err := r.queries.CreateGoal(ctx, CreateGoalParams{
		ID:           g.ID.String(),
		UserID:       g.UserID,
		Name:         g.Name,
		Emoji:        g.Emoji,
		TargetCents:  core.ToCents(g.TargetAmount),
		CurrentCents: core.ToCents(g.CurrentAmount),
		Deadline:     nullMillis(g.Deadline),
		CreatedAt:    g.CreatedAt.UnixMilli(),
	})
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("create goal: %w", err)
	}
	return goalFromRow(row), nil
}

func (r *SQLiteRepository) ListGoals(ctx context.Context, userID string) ([]core.SavingsGoal, error) {
	return loadGoals(ctx, r.queries, userID)
}

func loadGoals(ctx context.Context, q *Queries, userID string) ([]core.SavingsGoal, error) {
	rows, err := q.ListGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	out := make([]core.SavingsGoal, 0, len(rows))
	for _, row := range rows {
		out = append(out, goalFromRow(row))
	}
	return out, nil
}

// Dashboard

func (r *SQLiteRepository) LoadDashboard(ctx context.Context, userID string, rng core.Window, recent int) (core.DashboardInput, error) {
	var in core.DashboardInput

	// One read transaction so balances and transactions come from the same snapshot.
	tx, err := r.reads.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return in, fmt.Errorf("begin read transaction: %w", err)
	}
	defer tx.Rollback()
	q := r.queries.WithTx(tx)

	if in.Accounts, err = listAccounts(ctx, q, userID); err != nil {
		return in, err
	}
	from, to := rng.Start, rng.End
	if in.Transactions, err = detailsToTransactions(loadTransactions(ctx, q, userID, TransactionFilter{From: &from, To: &to})); err != nil {
		return in, err
	}
	opening, err := q.SumSignedBefore(ctx, SumSignedBeforeParams{UserID: userID, DateMs: rng.Start.UnixMilli()})
	if err != nil {
		return in, fmt.Errorf("sum transactions: %w", err)
	}
	in.OpeningBalance = core.FromCents(opening)
	if in.Recent, err = loadTransactions(ctx, q, userID, TransactionFilter{Limit: recent}); err != nil {
		return in, err
	}
	if in.Budgets, err = loadBudgets(ctx, q, userID); err != nil {
		return in, err
	}
	if in.Goals, err = loadGoals(ctx, q, userID); err != nil {
		return in, err
	}

	if err := tx.Commit(); err != nil {
		return in, fmt.Errorf("commit read transaction: %w", err)
	}
	return in, nil
}

func detailsToTransactions(details []core.TransactionDetail, err error) ([]core.Transaction, error) {
	if err != nil {
		return nil, err
	}
	out := make([]core.Transaction, len(details))
	for i, d := range details {
		out[i] = d.Transaction
	}
	return out, nil
}

// Sessions

func (r *SQLiteRepository) CreateSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error {
	err := r.queries.CreateSession(ctx, CreateSessionParams{
		TokenHash: tokenHash,
		UserID:    userID,
		ExpiresAt: expiresAt.UnixMilli(),
		CreatedAt: time.Now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ResolveSession(ctx context.Context, tokenHash string, now time.Time) (string, error) {
	s, err := r.queries.GetActiveSession(ctx, GetActiveSessionParams{TokenHash: tokenHash, ExpiresAt: now.UnixMilli()})
	if errors.Is(err, sql.ErrNoRows) {
		return "", core.ErrUnauthorized
	}
	if err != nil {
		return "", fmt.Errorf("get session: %w", err)
	}
	return s.UserID, nil
}

func (r *SQLiteRepository) DeleteSession(ctx context.Context, tokenHash string) error {
	n, err := r.queries.DeleteSession(ctx, tokenHash)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("session: %w", core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) PurgeExpiredSessions(ctx context.Context, now time.Time) (int, error) {
	n, err := r.queries.DeleteExpiredSessions(ctx, now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return int(n), nil
}

// Alerts

func (r *SQLiteRepository) RecordBudgetAlert(ctx context.Context, a core.BudgetAlert) (bool, error) {
	n, err := r.queries.InsertBudgetAlert(ctx, InsertBudgetAlertParams{
		ID:          a.ID.String(),
		UserID:      a.UserID,
		BudgetID:    a.BudgetID.String(),
		Category:    string(a.Category),
		Status:      string(a.Status),
		SpentCents:  core.ToCents(a.Spent),
		AmountCents: core.ToCents(a.Amount),
		Percentage:  a.Percentage.String(),
		WindowStart: a.WindowStart.UnixMilli(),
		WindowEnd:   a.WindowEnd.UnixMilli(),
		CreatedAt:   a.CreatedAt.UnixMilli(),
	})
	if err != nil {
		return false, fmt.Errorf("insert budget alert: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) ListBudgetAlerts(ctx context.Context, userID string, limit int) ([]core.BudgetAlert, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.queries.ListBudgetAlerts(ctx, ListBudgetAlertsParams{UserID: userID, Limit: int64(limit)})
	if err != nil {
		return nil, fmt.Errorf("list budget alerts: %w", err)
	}
	out := make([]core.BudgetAlert, 0, len(rows))
	for _, row := range rows {
		pct, _ := decimal.NewFromString(row.Percentage)
		out = append(out, core.BudgetAlert{
			ID:          parseID(row.ID),
			UserID:      row.UserID,
			BudgetID:    parseID(row.BudgetID),
			Category:    core.Category(row.Category),
			Status:      core.BudgetStatus(row.Status),
			Spent:       core.FromCents(row.SpentCents),
			Amount:      core.FromCents(row.AmountCents),
			Percentage:  pct,
			WindowStart: fromMillis(row.WindowStart),
			WindowEnd:   fromMillis(row.WindowEnd),
			CreatedAt:   fromMillis(row.CreatedAt),
		})
	}
	return out, nil
}
