package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeGoalProgress(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	in36h := now.Add(36 * time.Hour)
	in24h := now.Add(24 * time.Hour)
	ago12h := now.Add(-12 * time.Hour)

	tests := []struct {
		name         string
		target       string
		current      string
		deadline     *time.Time
		wantPct      string
		wantRemain   string
		wantDays     *int
		wantComplete bool
	}{
		{"no deadline", "1000", "250", nil, "25", "750", nil, false},
		{"partial day rounds up", "1000", "0", &in36h, "0", "1000", ptr(2), false},
		{"exact day", "100", "50", &in24h, "50", "50", ptr(1), false},
		{"past deadline", "100", "10", &ago12h, "10", "90", ptr(0), false},
		{"over target caps at 100", "100", "150", nil, "100", "-50", nil, true},
		{"exactly reached", "100", "100", nil, "100", "0", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := SavingsGoal{Name: tt.name, TargetAmount: dec(tt.target), CurrentAmount: dec(tt.current), Deadline: tt.deadline}
			got := ComputeGoalProgress(g, now)
			assert.True(t, got.Percentage.Equal(dec(tt.wantPct)), "percentage = %s", got.Percentage)
			assert.True(t, got.Remaining.Equal(dec(tt.wantRemain)), "remaining = %s", got.Remaining)
			assert.Equal(t, tt.wantComplete, got.IsComplete)
			if tt.wantDays == nil {
				assert.Nil(t, got.DaysLeft)
				return
			}
			require.NotNil(t, got.DaysLeft)
			assert.Equal(t, *tt.wantDays, *got.DaysLeft)
		})
	}
}

func TestSortGoalsByDeadline(t *testing.T) {
	d := func(day int) *time.Time { v := time.Date(2025, 7, day, 0, 0, 0, 0, time.UTC); return &v }
	goals := []GoalProgress{
		{SavingsGoal: SavingsGoal{Name: "none-1"}},
		{SavingsGoal: SavingsGoal{Name: "late", Deadline: d(20)}},
		{SavingsGoal: SavingsGoal{Name: "none-2"}},
		{SavingsGoal: SavingsGoal{Name: "early", Deadline: d(2)}},
	}
	SortGoalsByDeadline(goals)

	var names []string
	for _, g := range goals {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{"early", "late", "none-1", "none-2"}, names)
}
