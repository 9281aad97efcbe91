package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finboard/internal/cache"
	"finboard/internal/core"
	"finboard/internal/insight"
	"finboard/internal/log"
	"finboard/internal/storage"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// InsightStore is the read side the advisor needs.
type InsightStore interface {
	ListAccounts(ctx context.Context, userID string) ([]core.AccountSummary, error)
	ListTransactions(ctx context.Context, userID string, f storage.TransactionFilter) ([]core.TransactionDetail, int, error)
	ListBudgets(ctx context.Context, userID string) ([]core.Budget, error)
	ListGoals(ctx context.Context, userID string) ([]core.SavingsGoal, error)
}

type InsightConfig struct {
	// Timeout bounds every advisor call, including the data load before it.
	Timeout time.Duration
}

// InsightService produces best-effort advice. Advisor failures and timeouts
// never surface as errors; callers get an empty or fallback answer instead.
type InsightService struct {
	store   InsightStore
	advisor insight.Advisor
	rules   *insight.Rules
	cache   cache.Cache[core.Category]
	timeout time.Duration
	now     Clock
	logger  *log.Logger
}

// NewInsightService accepts a nil advisor (advice disabled), nil rules and a
// nil cache.
func NewInsightService(store InsightStore, advisor insight.Advisor, rules *insight.Rules, c cache.Cache[core.Category], cfg InsightConfig, now Clock, logger *log.Logger) *InsightService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	return &InsightService{
		store:   store,
		advisor: advisor,
		rules:   rules,
		cache:   c,
		timeout: cfg.Timeout,
		now:     now,
		logger:  logger.WithComponent(log.ComponentInsight),
	}
}

type insightInputs struct {
	accounts []core.AccountSummary
	month    []core.Transaction
	budgets  []core.Budget
	goals    []core.SavingsGoal
}

// load reads the advisor inputs concurrently; the first failure cancels the rest.
func (s *InsightService) load(ctx context.Context, userID string, now time.Time) (insightInputs, error) {
	var in insightInputs
	month := core.MonthWindow(now)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		in.accounts, err = s.store.ListAccounts(gctx, userID)
		return err
	})
	g.Go(func() error {
		details, _, err := s.store.ListTransactions(gctx, userID, storage.TransactionFilter{From: &month.Start, To: &month.End})
		if err != nil {
			return err
		}
		in.month = make([]core.Transaction, len(details))
		for i, d := range details {
			in.month[i] = d.Transaction
		}
		return nil
	})
	g.Go(func() error {
		var err error
		in.budgets, err = s.store.ListBudgets(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		in.goals, err = s.store.ListGoals(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return insightInputs{}, fmt.Errorf("load insight inputs: %w", err)
	}
	return in, nil
}

// activeBudgets returns the budgets whose window contains now, with spend
// computed over the month's transactions.
func activeBudgets(budgets []core.Budget, month []core.Transaction, now time.Time) []core.BudgetProgress {
	out := make([]core.BudgetProgress, 0, len(budgets))
	for _, b := range budgets {
		if !b.Window(now).Contains(now) {
			continue
		}
		out = append(out, core.BudgetProgress{Budget: b, Spend: core.ComputeSpend(b, month, now)})
	}
	return out
}

// Insights returns up to three insights about the current month. It returns
// an empty slice when the advisor is disabled or fails.
func (s *InsightService) Insights(ctx context.Context, userID string) ([]core.Insight, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	none := []core.Insight{}
	if s.advisor == nil {
		return none, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	now := s.now()
	in, err := s.load(ctx, userID, now)
	if err != nil {
		s.logger.WarnContext(ctx, "Insight inputs unavailable", log.FieldUserID, userID, log.FieldError, err)
		return none, nil
	}

	active := activeBudgets(in.budgets, in.month, now)
	snapshots := make([]insight.BudgetSnapshot, len(active))
	for i, b := range active {
		snapshots[i] = insight.BudgetSnapshot{
			Category:   b.Category,
			Amount:     b.Amount,
			Spent:      b.Spend.Spent,
			Percentage: b.Spend.Percentage,
			Status:     b.Spend.Status,
		}
	}

	insights, err := s.advisor.Analyze(ctx, in.month, snapshots)
	if err != nil {
		s.logger.WarnContext(ctx, "Advisor analysis failed", log.FieldUserID, userID, log.FieldError, err)
		return none, nil
	}

	out := make([]core.Insight, 0, insight.MaxInsights)
	for _, i := range insights {
		if i.Valid() && len(out) < insight.MaxInsights {
			out = append(out, i)
		}
	}
	return out, nil
}

func safeToSpendFallback() core.SafeToSpend {
	return core.SafeToSpend{Amount: decimal.Zero, Explanation: core.SafeToSpendFallback}
}

// SafeToSpend asks the advisor how much can be spent given the total balance,
// the unspent part of every active budget and the nearest open goal.
func (s *InsightService) SafeToSpend(ctx context.Context, userID string) (core.SafeToSpend, error) {
	if err := requireUser(userID); err != nil {
		return core.SafeToSpend{}, err
	}
	if s.advisor == nil {
		return safeToSpendFallback(), nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	now := s.now()
	in, err := s.load(ctx, userID, now)
	if err != nil {
		s.logger.WarnContext(ctx, "Safe-to-spend inputs unavailable", log.FieldUserID, userID, log.FieldError, err)
		return safeToSpendFallback(), nil
	}

	balance := decimal.Zero
	for _, a := range in.accounts {
		balance = balance.Add(a.Balance)
	}

	var upcoming []insight.UpcomingExpense
	for _, b := range activeBudgets(in.budgets, in.month, now) {
		if rem := b.Spend.ClampedRemaining(); rem.IsPositive() {
			upcoming = append(upcoming, insight.UpcomingExpense{Category: b.Category, Amount: rem})
		}
	}

	res, err := s.advisor.SafeToSpend(ctx, balance, upcoming, nearestGoalGap(in.goals, now))
	if err != nil {
		s.logger.WarnContext(ctx, "Advisor safe-to-spend failed", log.FieldUserID, userID, log.FieldError, err)
		return safeToSpendFallback(), nil
	}
	if res.Amount.IsNegative() {
		res.Amount = decimal.Zero
	}
	res.Amount = core.RoundAmount(res.Amount)
	return res, nil
}

// nearestGoalGap is the amount still missing on the incomplete goal with the
// earliest deadline, or on the first incomplete goal when none has one.
func nearestGoalGap(goals []core.SavingsGoal, now time.Time) decimal.Decimal {
	progress := make([]core.GoalProgress, 0, len(goals))
	for _, g := range goals {
		if p := core.ComputeGoalProgress(g, now); !p.IsComplete {
			progress = append(progress, p)
		}
	}
	if len(progress) == 0 {
		return decimal.Zero
	}
	core.SortGoalsByDeadline(progress)
	return progress[0].Remaining
}

// Categorize suggests a category for a description: cached answer, then the
// advisor, then the offline rules, then OTHER_EXPENSE.
func (s *InsightService) Categorize(ctx context.Context, userID, description string) (core.Category, error) {
	if err := requireUser(userID); err != nil {
		return "", err
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return "", core.Invalid("description", "is required")
	}
	key := strings.ToLower(description)

	if s.cache != nil {
		if c, ok := s.cache.Get(key); ok {
			return c, nil
		}
	}

	if s.advisor != nil {
		actx, cancel := context.WithTimeout(ctx, s.timeout)
		c, err := s.advisor.Categorize(actx, description)
		cancel()
		if err == nil {
			if _, ok := core.LookupCategory(c); ok {
				if s.cache != nil {
					s.cache.Set(key, c)
				}
				return c, nil
			}
		}
		s.logger.DebugContext(ctx, "Advisor categorization unavailable, using rules", log.FieldError, err)
	}

	if s.rules != nil {
		if c, ok := s.rules.Match(description); ok {
			return c, nil
		}
	}
	return core.DefaultCategory(core.Expense), nil
}
