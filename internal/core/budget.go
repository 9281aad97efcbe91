package core

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	BudgetOnTrack     BudgetStatus = "ON_TRACK"
	BudgetApproaching BudgetStatus = "APPROACHING"
	BudgetWarning     BudgetStatus = "WARNING"
	BudgetExceeded    BudgetStatus = "EXCEEDED"
)

var (
	hundred          = decimal.NewFromInt(100)
	warningLevel     = decimal.NewFromInt(80)
	approachingLevel = decimal.NewFromInt(60)
)

type BudgetStatus string

// BudgetSpend is the result of ComputeSpend.
//
// Remaining is signed: a negative value means the budget is overspent.
// Percentage is clamped to [0, 100]; RawPercentage is not.
type BudgetSpend struct {
	Window        Window
	Spent         decimal.Decimal
	Remaining     decimal.Decimal
	Percentage    decimal.Decimal
	RawPercentage decimal.Decimal
	Status        BudgetStatus
}

// ComputeSpend sums the EXPENSE transactions of the budget's category dated
// inside the budget window. now only matters for legacy budgets, whose window
// is the calendar month containing it.
func ComputeSpend(b Budget, txs []Transaction, now time.Time) BudgetSpend {
	w := b.Window(now)
	spent := decimal.Zero
	for _, t := range txs {
		if t.Type != Expense || t.Category != b.Category || !w.Contains(t.Date) {
			continue
		}
		spent = spent.Add(t.Amount)
	}

	raw := rawPercentage(spent, b.Amount)
	return BudgetSpend{
		Window:        w,
		Spent:         spent,
		Remaining:     b.Amount.Sub(spent),
		Percentage:    ClampPercentage(raw),
		RawPercentage: raw,
		Status:        classify(spent, b.Amount, raw),
	}
}

// ClampedRemaining is max(Remaining, 0).
func (s BudgetSpend) ClampedRemaining() decimal.Decimal {
	return decimal.Max(s.Remaining, decimal.Zero)
}

// rawPercentage is spent/amount*100. A zero budget reads 0 when nothing was
// spent and saturates at 100 otherwise.
func rawPercentage(spent, amount decimal.Decimal) decimal.Decimal {
	if amount.IsZero() {
		if spent.IsZero() {
			return decimal.Zero
		}
		return hundred
	}
	return spent.Div(amount).Mul(hundred)
}

// ClampPercentage bounds p to [0, 100] and rounds it to two places.
func ClampPercentage(p decimal.Decimal) decimal.Decimal {
	p = decimal.Min(decimal.Max(p, decimal.Zero), hundred)
	return p.Round(2)
}

func classify(spent, amount, raw decimal.Decimal) BudgetStatus {
	switch {
	case raw.GreaterThan(hundred), amount.IsZero() && spent.IsPositive():
		return BudgetExceeded
	case raw.GreaterThanOrEqual(warningLevel):
		return BudgetWarning
	case raw.GreaterThanOrEqual(approachingLevel):
		return BudgetApproaching
	default:
		return BudgetOnTrack
	}
}
