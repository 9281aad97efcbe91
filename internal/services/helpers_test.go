package services

import (
	"context"
	"sync"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/log"
	"finboard/internal/storage/memory"

	"github.com/shopspring/decimal"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) Clock { return func() time.Time { return t } }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func timePtr(t time.Time) *time.Time { return &t }

type fakePublisher struct {
	mu     sync.Mutex
	events []*amqp.LedgerEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, e *amqp.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *fakePublisher) actions() []amqp.Action {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]amqp.Action, len(p.events))
	for i, e := range p.events {
		out[i] = e.Action
	}
	return out
}

type env struct {
	store   *memory.Store
	pub     *fakePublisher
	ledger  *LedgerService
	budgets *BudgetService
	goals   *GoalService
	dash    *DashboardService
	alerts  *AlertService
}

func newEnv(now time.Time) *env {
	store := memory.New()
	pub := &fakePublisher{}
	clock := fixedClock(now)
	logger := log.Discard()
	return &env{
		store:   store,
		pub:     pub,
		ledger:  NewLedgerService(store, pub, clock, logger),
		budgets: NewBudgetService(store, pub, clock, logger),
		goals:   NewGoalService(store, clock, logger),
		dash:    NewDashboardService(store, clock, logger),
		alerts:  NewAlertService(store, DefaultAlertThreshold, clock, logger),
	}
}
