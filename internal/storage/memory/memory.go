// Package memory is an in-process storage.Repository used for development
// and tests. It keeps the same ordering, ownership and atomicity guarantees
// as the SQLite repository; data is lost on restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"finboard/internal/core"
	"finboard/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var _ storage.Repository = (*Store)(nil)

type (
	accountRow struct {
		core.Account
		seq int64
	}

	transactionRow struct {
		core.Transaction
		seq int64
	}

	budgetRow struct {
		core.Budget
		seq int64
	}

	goalRow struct {
		core.SavingsGoal
		seq int64
	}

	alertRow struct {
		core.BudgetAlert
		seq int64
	}

	session struct {
		userID    string
		expiresAt time.Time
	}

	alertKey struct {
		budgetID    uuid.UUID
		status      core.BudgetStatus
		windowStart int64
	}
)

type Store struct {
	mu           sync.RWMutex
	seq          int64
	accounts     map[uuid.UUID]*accountRow
	transactions map[uuid.UUID]*transactionRow
	budgets      map[uuid.UUID]*budgetRow
	goals        map[uuid.UUID]*goalRow
	sessions     map[string]session
	alerts       []*alertRow
	alertKeys    map[alertKey]struct{}
}

func New() *Store {
	return &Store{
		accounts:     make(map[uuid.UUID]*accountRow),
		transactions: make(map[uuid.UUID]*transactionRow),
		budgets:      make(map[uuid.UUID]*budgetRow),
		goals:        make(map[uuid.UUID]*goalRow),
		sessions:     make(map[string]session),
		alertKeys:    make(map[alertKey]struct{}),
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) next() int64 {
	s.seq++
	return s.seq
}

// Values pass through the same precision as the SQLite columns.
func money(d decimal.Decimal) decimal.Decimal {
	return core.FromCents(core.ToCents(d))
}

func millis(t time.Time) time.Time {
	return time.UnixMilli(t.UnixMilli()).UTC()
}

func millisPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := millis(*t)
	return &v
}

func normalizeTx(t core.Transaction) core.Transaction {
	t.Amount = money(t.Amount)
	t.Date = millis(t.Date)
	t.CreatedAt = millis(t.CreatedAt)
	return t
}

// Accounts

func (s *Store) CreateAccount(_ context.Context, a core.Account, opening *core.Transaction) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[a.ID]; exists {
		return core.Account{}, fmt.Errorf("account %s: %w", a.ID, core.ErrConflict)
	}
	a.Balance = decimal.Zero
	a.CreatedAt = millis(a.CreatedAt)
	row := &accountRow{Account: a, seq: s.next()}

	if opening != nil {
		t := normalizeTx(*opening)
		t.AccountID = a.ID
		s.transactions[t.ID] = &transactionRow{Transaction: t, seq: s.next()}
		row.Balance = row.Balance.Add(t.Signed())
	}
	s.accounts[a.ID] = row
	return row.Account, nil
}

func (s *Store) ListAccounts(_ context.Context, userID string) ([]core.AccountSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listAccounts(userID), nil
}

func (s *Store) listAccounts(userID string) []core.AccountSummary {
	counts := make(map[uuid.UUID]int)
	for _, t := range s.transactions {
		counts[t.AccountID]++
	}

	rows := make([]*accountRow, 0)
	for _, a := range s.accounts {
		if a.UserID == userID {
			rows = append(rows, a)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	out := make([]core.AccountSummary, len(rows))
	for i, a := range rows {
		out[i] = core.AccountSummary{Account: a.Account, TransactionCount: counts[a.ID]}
	}
	return out
}

func (s *Store) GetAccount(_ context.Context, userID string, id uuid.UUID) (core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.ownedAccount(userID, id)
	if !ok {
		return core.Account{}, fmt.Errorf("account: %w", core.ErrNotFound)
	}
	return a.Account, nil
}

func (s *Store) ownedAccount(userID string, id uuid.UUID) (*accountRow, bool) {
	a, ok := s.accounts[id]
	if !ok || a.UserID != userID {
		return nil, false
	}
	return a, true
}

// Transactions

func (s *Store) CreateTransaction(_ context.Context, userID string, t core.Transaction) (core.TransactionDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.ownedAccount(userID, t.AccountID)
	if !ok {
		return core.TransactionDetail{}, fmt.Errorf("account: %w", core.ErrNotFound)
	}
	if _, exists := s.transactions[t.ID]; exists {
		return core.TransactionDetail{}, fmt.Errorf("transaction %s: %w", t.ID, core.ErrConflict)
	}

	t = normalizeTx(t)
	s.transactions[t.ID] = &transactionRow{Transaction: t, seq: s.next()}
	a.Balance = a.Balance.Add(t.Signed())
	return s.detail(t), nil
}

func (s *Store) detail(t core.Transaction) core.TransactionDetail {
	d := core.TransactionDetail{Transaction: t}
	if a, ok := s.accounts[t.AccountID]; ok {
		d.AccountName = a.Name
		d.AccountType = a.Type
	}
	return d
}

func (s *Store) ownedTransaction(userID string, id uuid.UUID) (*transactionRow, *accountRow, bool) {
	t, ok := s.transactions[id]
	if !ok {
		return nil, nil, false
	}
	a, ok := s.ownedAccount(userID, t.AccountID)
	if !ok {
		return nil, nil, false
	}
	return t, a, true
}

func (s *Store) GetTransaction(_ context.Context, userID string, id uuid.UUID) (core.TransactionDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, _, ok := s.ownedTransaction(userID, id)
	if !ok {
		return core.TransactionDetail{}, fmt.Errorf("transaction: %w", core.ErrNotFound)
	}
	return s.detail(t.Transaction), nil
}

func (s *Store) UpdateTransaction(_ context.Context, userID string, id uuid.UUID, patch core.TransactionPatch) (core.TransactionDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, a, ok := s.ownedTransaction(userID, id)
	if !ok {
		return core.TransactionDetail{}, fmt.Errorf("transaction: %w", core.ErrNotFound)
	}
	old := row.Transaction
	updated := normalizeTx(patch.Apply(old))
	if err := updated.Validate(); err != nil {
		return core.TransactionDetail{}, err
	}

	row.Transaction = updated
	a.Balance = a.Balance.Add(core.BalanceDelta(old, updated))
	return s.detail(updated), nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID string, id uuid.UUID) (core.TransactionDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, a, ok := s.ownedTransaction(userID, id)
	if !ok {
		return core.TransactionDetail{}, fmt.Errorf("transaction: %w", core.ErrNotFound)
	}
	deleted := s.detail(row.Transaction)
	delete(s.transactions, id)
	a.Balance = a.Balance.Sub(row.Signed())
	return deleted, nil
}

func (s *Store) ListTransactions(_ context.Context, userID string, f storage.TransactionFilter) ([]core.TransactionDetail, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items, total := s.listTransactions(userID, f)
	return items, total, nil
}

func (s *Store) listTransactions(userID string, f storage.TransactionFilter) ([]core.TransactionDetail, int) {
	rows := make([]*transactionRow, 0)
	for _, t := range s.transactions {
		if a, ok := s.accounts[t.AccountID]; !ok || a.UserID != userID {
			continue
		}
		if matches(t.Transaction, f) {
			rows = append(rows, t)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.seq > b.seq
	})

	total := len(rows)
	start := min(f.Offset, total)
	end := total
	if f.Limit > 0 {
		end = min(start+f.Limit, total)
	}

	out := make([]core.TransactionDetail, 0, end-start)
	for _, t := range rows[start:end] {
		out = append(out, s.detail(t.Transaction))
	}
	return out, total
}

func matches(t core.Transaction, f storage.TransactionFilter) bool {
	if f.AccountID != nil && t.AccountID != *f.AccountID {
		return false
	}
	if f.Category != nil && t.Category != *f.Category {
		return false
	}
	if f.Type != nil && t.Type != *f.Type {
		return false
	}
	if f.From != nil && t.Date.UnixMilli() < f.From.UnixMilli() {
		return false
	}
	if f.To != nil && t.Date.UnixMilli() > f.To.UnixMilli() {
		return false
	}
	return true
}

func (s *Store) SumSignedBefore(_ context.Context, userID string, before time.Time) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sumSignedBefore(userID, before), nil
}

func (s *Store) sumSignedBefore(userID string, before time.Time) decimal.Decimal {
	total := decimal.Zero
	cutoff := before.UnixMilli()
	for _, t := range s.transactions {
		if a, ok := s.accounts[t.AccountID]; !ok || a.UserID != userID {
			continue
		}
		if t.Date.UnixMilli() < cutoff {
			total = total.Add(t.Signed())
		}
	}
	return total
}

// Budgets

func (s *Store) CreateBudget(_ context.Context, b core.Budget, now time.Time) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make([]core.Budget, 0)
	for _, row := range s.budgets {
		if row.UserID == b.UserID && row.Category == b.Category {
			existing = append(existing, row.Budget)
		}
	}
	if err := storage.CheckOverlap(b, existing, now); err != nil {
		return core.Budget{}, fmt.Errorf("budget for %s: %w", b.Category, err)
	}

	b.Amount = money(b.Amount)
	b.StartDate = millisPtr(b.StartDate)
	b.EndDate = millisPtr(b.EndDate)
	b.CreatedAt = millis(b.CreatedAt)
	s.budgets[b.ID] = &budgetRow{Budget: b, seq: s.next()}
	return b, nil
}

func (s *Store) ListBudgets(_ context.Context, userID string) ([]core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listBudgets(userID), nil
}

func (s *Store) listBudgets(userID string) []core.Budget {
	rows := make([]*budgetRow, 0)
	for _, b := range s.budgets {
		if b.UserID == userID {
			rows = append(rows, b)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})
	out := make([]core.Budget, len(rows))
	for i, b := range rows {
		out[i] = b.Budget
	}
	return out
}

func (s *Store) ListBudgetOwners(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	owners := make([]string, 0)
	for _, b := range s.budgets {
		if _, ok := seen[b.UserID]; ok {
			continue
		}
		seen[b.UserID] = struct{}{}
		owners = append(owners, b.UserID)
	}
	sort.Strings(owners)
	return owners, nil
}

// Goals

func (s *Store) CreateGoal(_ context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.TargetAmount = money(g.TargetAmount)
	g.CurrentAmount = money(g.CurrentAmount)
	g.Deadline = millisPtr(g.Deadline)
	g.CreatedAt = millis(g.CreatedAt)
	s.goals[g.ID] = &goalRow{SavingsGoal: g, seq: s.next()}
	return g, nil
}

func (s *Store) ListGoals(_ context.Context, userID string) ([]core.SavingsGoal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listGoals(userID), nil
}

// listGoals orders by deadline ascending with undated goals last.
func (s *Store) listGoals(userID string) []core.SavingsGoal {
	rows := make([]*goalRow, 0)
	for _, g := range s.goals {
		if g.UserID == userID {
			rows = append(rows, g)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if (a.Deadline == nil) != (b.Deadline == nil) {
			return b.Deadline == nil
		}
		if a.Deadline != nil && !a.Deadline.Equal(*b.Deadline) {
			return a.Deadline.Before(*b.Deadline)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.seq < b.seq
	})
	out := make([]core.SavingsGoal, len(rows))
	for i, g := range rows {
		out[i] = g.SavingsGoal
	}
	return out
}

// Dashboard

func (s *Store) LoadDashboard(_ context.Context, userID string, rng core.Window, recent int) (core.DashboardInput, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	from, to := rng.Start, rng.End
	inRange, _ := s.listTransactions(userID, storage.TransactionFilter{From: &from, To: &to})
	txs := make([]core.Transaction, len(inRange))
	for i, d := range inRange {
		txs[i] = d.Transaction
	}
	latest, _ := s.listTransactions(userID, storage.TransactionFilter{Limit: recent})

	return core.DashboardInput{
		Accounts:       s.listAccounts(userID),
		Transactions:   txs,
		OpeningBalance: s.sumSignedBefore(userID, rng.Start),
		Recent:         latest,
		Budgets:        s.listBudgets(userID),
		Goals:          s.listGoals(userID),
	}, nil
}

// Sessions

func (s *Store) CreateSession(_ context.Context, tokenHash, userID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[tokenHash]; exists {
		return fmt.Errorf("session: %w", core.ErrConflict)
	}
	s.sessions[tokenHash] = session{userID: userID, expiresAt: millis(expiresAt)}
	return nil
}

func (s *Store) ResolveSession(_ context.Context, tokenHash string, now time.Time) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[tokenHash]
	if !ok || sess.expiresAt.UnixMilli() <= now.UnixMilli() {
		return "", core.ErrUnauthorized
	}
	return sess.userID, nil
}

func (s *Store) DeleteSession(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[tokenHash]; !ok {
		return fmt.Errorf("session: %w", core.ErrNotFound)
	}
	delete(s.sessions, tokenHash)
	return nil
}

func (s *Store) PurgeExpiredSessions(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for hash, sess := range s.sessions {
		if sess.expiresAt.UnixMilli() <= now.UnixMilli() {
			delete(s.sessions, hash)
			n++
		}
	}
	return n, nil
}

// Alerts

func (s *Store) RecordBudgetAlert(_ context.Context, a core.BudgetAlert) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := alertKey{budgetID: a.BudgetID, status: a.Status, windowStart: a.WindowStart.UnixMilli()}
	if _, dup := s.alertKeys[key]; dup {
		return false, nil
	}
	s.alertKeys[key] = struct{}{}

	a.Spent = money(a.Spent)
	a.Amount = money(a.Amount)
	a.WindowStart = millis(a.WindowStart)
	a.WindowEnd = millis(a.WindowEnd)
	a.CreatedAt = millis(a.CreatedAt)
	s.alerts = append(s.alerts, &alertRow{BudgetAlert: a, seq: s.next()})
	return true, nil
}

func (s *Store) ListBudgetAlerts(_ context.Context, userID string, limit int) ([]core.BudgetAlert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]*alertRow, 0)
	for _, a := range s.alerts {
		if a.UserID == userID {
			rows = append(rows, a)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([]core.BudgetAlert, len(rows))
	for i, a := range rows {
		out[i] = a.BudgetAlert
	}
	return out, nil
}
