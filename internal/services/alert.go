package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultAlertThreshold = 80
	DefaultAlertListLimit = 50
	sweepConcurrency      = 4
)

type AlertStore interface {
	BudgetStore
	storage.AlertStore
}

// SweepResult summarizes one pass over every budget owner.
type SweepResult struct {
	Users  int
	Alerts int
	Failed int
}

// AlertService records an alert the first time a budget crosses the
// threshold in a window, once per status.
type AlertService struct {
	store     AlertStore
	threshold decimal.Decimal
	now       Clock
	logger    *log.Logger
}

func NewAlertService(store AlertStore, threshold int, now Clock, logger *log.Logger) *AlertService {
	if threshold < 1 || threshold > 100 {
		threshold = DefaultAlertThreshold
	}
	return &AlertService{
		store:     store,
		threshold: decimal.NewFromInt(int64(threshold)),
		now:       now,
		logger:    logger.WithComponent(log.ComponentAlert),
	}
}

// Check evaluates the user's budgets active at now and returns the alerts it
// newly recorded.
func (s *AlertService) Check(ctx context.Context, userID string, now time.Time) ([]core.BudgetAlert, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	budgets, err := s.store.ListBudgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	active := budgets[:0:0]
	for _, b := range budgets {
		if b.Window(now).Contains(now) {
			active = append(active, b)
		}
	}

	txs, err := expensesCovering(ctx, s.store, userID, active, now)
	if err != nil {
		return nil, err
	}

	var recorded []core.BudgetAlert
	for _, b := range active {
		spend := core.ComputeSpend(b, txs, now)
		if spend.RawPercentage.LessThan(s.threshold) {
			continue
		}
		status := core.BudgetWarning
		if spend.Status == core.BudgetExceeded {
			status = core.BudgetExceeded
		}

		a := core.BudgetAlert{
			ID:          uuid.New(),
			UserID:      userID,
			BudgetID:    b.ID,
			Category:    b.Category,
			Status:      status,
			Spent:       spend.Spent,
			Amount:      b.Amount,
			Percentage:  spend.RawPercentage.Round(2),
			WindowStart: spend.Window.Start,
			WindowEnd:   spend.Window.End,
			CreatedAt:   now,
		}
		created, err := s.store.RecordBudgetAlert(ctx, a)
		if err != nil {
			return recorded, fmt.Errorf("record alert for budget %s: %w", b.ID, err)
		}
		if !created {
			continue
		}

		s.logger.InfoContext(ctx, "Budget alert recorded",
			log.FieldUserID, userID,
			log.FieldBudgetID, b.ID.String(),
			log.FieldCategory, string(b.Category),
			"status", string(status),
			"percentage", a.Percentage.String())
		recorded = append(recorded, a)
	}
	return recorded, nil
}

// List returns the user's most recent alerts.
func (s *AlertService) List(ctx context.Context, userID string, limit int) ([]core.BudgetAlert, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultAlertListLimit
	}
	alerts, err := s.store.ListBudgetAlerts(ctx, userID, min(limit, MaxPageLimit))
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return alerts, nil
}

// Sweep checks every user owning a budget. One user's failure does not stop
// the others; failures are counted and joined into the returned error.
func (s *AlertService) Sweep(ctx context.Context) (SweepResult, error) {
	owners, err := s.store.ListBudgetOwners(ctx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("list budget owners: %w", err)
	}

	now := s.now()
	var (
		mu     sync.Mutex
		result = SweepResult{Users: len(owners)}
		errs   []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepConcurrency)
	for _, userID := range owners {
		g.Go(func() error {
			recorded, err := s.Check(gctx, userID, now)
			mu.Lock()
			defer mu.Unlock()
			result.Alerts += len(recorded)
			if err != nil {
				result.Failed++
				errs = append(errs, fmt.Errorf("user %s: %w", userID, err))
			}
			return nil
		})
	}
	_ = g.Wait()

	s.logger.InfoContext(ctx, "Budget sweep finished",
		log.FieldOperation, log.OpSweep,
		"users", result.Users,
		"alerts", result.Alerts,
		"failed", result.Failed)
	return result, errors.Join(errs...)
}
