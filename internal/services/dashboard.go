package services

import (
	"context"
	"fmt"

	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/storage"
)

type DashboardService struct {
	store  storage.DashboardStore
	now    Clock
	logger *log.Logger
}

func NewDashboardService(store storage.DashboardStore, now Clock, logger *log.Logger) *DashboardService {
	return &DashboardService{store: store, now: now, logger: logger.WithComponent(log.ComponentDashboard)}
}

// Get reads one consistent snapshot of the user's data and aggregates it.
// Any store failure yields core.ErrDashboardUnavailable and no partial result.
func (s *DashboardService) Get(ctx context.Context, userID string) (core.Dashboard, error) {
	if err := requireUser(userID); err != nil {
		return core.Dashboard{}, err
	}

	now := s.now()
	in, err := s.store.LoadDashboard(ctx, userID, core.DashboardRange(now), core.RecentLimit)
	if err != nil {
		s.logger.ErrorContextErr(ctx, "Failed to load dashboard data", err, log.FieldUserID, userID)
		return core.Dashboard{}, fmt.Errorf("%w: %v", core.ErrDashboardUnavailable, err)
	}
	return core.BuildDashboard(in, now), nil
}
