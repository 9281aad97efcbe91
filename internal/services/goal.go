package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateGoalInput struct {
	Name          string
	Emoji         string
	TargetAmount  *decimal.Decimal
	CurrentAmount *decimal.Decimal
	Deadline      *time.Time
}

type GoalService struct {
	store  storage.GoalStore
	now    Clock
	logger *log.Logger
}

func NewGoalService(store storage.GoalStore, now Clock, logger *log.Logger) *GoalService {
	return &GoalService{store: store, now: now, logger: logger.WithComponent(log.ComponentGoal)}
}

func (s *GoalService) Create(ctx context.Context, userID string, in CreateGoalInput) (core.GoalProgress, error) {
	if err := requireUser(userID); err != nil {
		return core.GoalProgress{}, err
	}
	if in.TargetAmount == nil {
		return core.GoalProgress{}, core.Invalid("targetAmount", "is required")
	}

	now := s.now()
	g := core.SavingsGoal{
		ID:            uuid.New(),
		UserID:        userID,
		Name:          strings.TrimSpace(in.Name),
		Emoji:         strings.TrimSpace(in.Emoji),
		TargetAmount:  core.RoundAmount(*in.TargetAmount),
		CurrentAmount: decimal.Zero,
		Deadline:      in.Deadline,
		CreatedAt:     now,
	}
	if in.CurrentAmount != nil {
		g.CurrentAmount = core.RoundAmount(*in.CurrentAmount)
	}
	if err := g.Validate(); err != nil {
		return core.GoalProgress{}, err
	}

	created, err := s.store.CreateGoal(ctx, g)
	if err != nil {
		return core.GoalProgress{}, fmt.Errorf("create goal: %w", err)
	}
	s.logger.InfoContext(ctx, "Savings goal created",
		log.FieldUserID, userID,
		log.FieldGoalID, created.ID.String())
	return core.ComputeGoalProgress(created, now), nil
}

// List returns the user's goals with progress, nearest deadline first and
// goals without a deadline last.
func (s *GoalService) List(ctx context.Context, userID string) ([]core.GoalProgress, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	goals, err := s.store.ListGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}

	now := s.now()
	out := make([]core.GoalProgress, len(goals))
	for i, g := range goals {
		out[i] = core.ComputeGoalProgress(g, now)
	}
	core.SortGoalsByDeadline(out)
	return out, nil
}
