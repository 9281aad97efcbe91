package core

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// GoalProgress is a savings goal with its derived progress fields.
type GoalProgress struct {
	SavingsGoal
	Percentage decimal.Decimal
	Remaining  decimal.Decimal
	DaysLeft   *int
	IsComplete bool
}

// ComputeGoalProgress derives percentage (capped at 100), signed remaining,
// whole days left until the deadline (rounded up, negative once past) and completion.
func ComputeGoalProgress(g SavingsGoal, now time.Time) GoalProgress {
	p := GoalProgress{
		SavingsGoal: g,
		Percentage:  ClampPercentage(rawPercentage(g.CurrentAmount, g.TargetAmount)),
		Remaining:   g.TargetAmount.Sub(g.CurrentAmount),
		IsComplete:  g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount),
	}
	if g.Deadline != nil {
		days := int(math.Ceil(float64(g.Deadline.Sub(now)) / float64(24*time.Hour)))
		p.DaysLeft = &days
	}
	return p
}

// SortGoalsByDeadline orders goals by deadline ascending; goals without a
// deadline go last, keeping their relative order.
func SortGoalsByDeadline(goals []GoalProgress) {
	sort.SliceStable(goals, func(i, j int) bool {
		a, b := goals[i].Deadline, goals[j].Deadline
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
}
