package services

import (
	"context"
	"fmt"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetStore is what budget listing needs: the budgets and the expenses
// falling inside their windows.
type BudgetStore interface {
	storage.BudgetStore
	ListTransactions(ctx context.Context, userID string, f storage.TransactionFilter) ([]core.TransactionDetail, int, error)
}

type CreateBudgetInput struct {
	Category  core.Category
	Amount    *decimal.Decimal
	Period    string
	StartDate *time.Time
	EndDate   *time.Time
}

type BudgetService struct {
	store     BudgetStore
	publisher EventPublisher
	now       Clock
	logger    *log.Logger
}

func NewBudgetService(store BudgetStore, publisher EventPublisher, now Clock, logger *log.Logger) *BudgetService {
	return &BudgetService{
		store:     store,
		publisher: publisher,
		now:       now,
		logger:    logger.WithComponent(log.ComponentBudget),
	}
}

// Create stores a budget with an explicit window. Without dates the window
// is the period containing now.
func (s *BudgetService) Create(ctx context.Context, userID string, in CreateBudgetInput) (core.Budget, error) {
	if err := requireUser(userID); err != nil {
		return core.Budget{}, err
	}
	if in.Category == "" {
		return core.Budget{}, core.Invalid("category", "is required")
	}
	if in.Amount == nil {
		return core.Budget{}, core.Invalid("amount", "is required")
	}
	period, err := core.ParsePeriod(in.Period)
	if err != nil {
		return core.Budget{}, err
	}

	now := s.now()
	b := core.Budget{
		ID:        uuid.New(),
		UserID:    userID,
		Category:  in.Category,
		Amount:    core.RoundAmount(*in.Amount),
		Period:    period,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		CreatedAt: now,
	}
	if b.StartDate == nil && b.EndDate == nil {
		w := core.PeriodWindow(period, now)
		b.StartDate, b.EndDate = &w.Start, &w.End
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	created, err := s.store.CreateBudget(ctx, b, now)
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}

	s.logger.InfoContext(ctx, "Budget created",
		log.FieldUserID, userID,
		log.FieldBudgetID, created.ID.String(),
		log.FieldCategory, string(created.Category))

	e := amqp.NewLedgerEvent(amqp.ActionBudgetCreated, userID)
	e.BudgetID = created.ID.String()
	publish(ctx, s.publisher, s.logger, e)
	return created, nil
}

// List returns every budget of the user with its spend computed over the
// budget's own window. Remaining is signed here.
func (s *BudgetService) List(ctx context.Context, userID string) ([]core.BudgetProgress, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	now := s.now()

	budgets, err := s.store.ListBudgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	txs, err := expensesCovering(ctx, s.store, userID, budgets, now)
	if err != nil {
		return nil, err
	}

	out := make([]core.BudgetProgress, len(budgets))
	for i, b := range budgets {
		out[i] = core.BudgetProgress{Budget: b, Spend: core.ComputeSpend(b, txs, now)}
	}
	return out, nil
}

// expensesCovering loads the user's expenses dated inside the union of the
// budgets' windows.
func expensesCovering(ctx context.Context, store BudgetStore, userID string, budgets []core.Budget, now time.Time) ([]core.Transaction, error) {
	if len(budgets) == 0 {
		return nil, nil
	}
	span := budgets[0].Window(now)
	for _, b := range budgets[1:] {
		w := b.Window(now)
		if w.Start.Before(span.Start) {
			span.Start = w.Start
		}
		if w.End.After(span.End) {
			span.End = w.End
		}
	}

	expense := core.Expense
	details, _, err := store.ListTransactions(ctx, userID, storage.TransactionFilter{
		Type: &expense,
		From: &span.Start,
		To:   &span.End,
	})
	if err != nil {
		return nil, fmt.Errorf("load budget transactions: %w", err)
	}

	txs := make([]core.Transaction, len(details))
	for i, d := range details {
		txs[i] = d.Transaction
	}
	return txs, nil
}
