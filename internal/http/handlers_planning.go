package http

import (
	"net/http"

	"finboard/internal/auth"
	"finboard/internal/core"
	"finboard/internal/services"

	"github.com/shopspring/decimal"
)

type (
	createBudgetRequest struct {
		Category  string           `json:"category"`
		Amount    *decimal.Decimal `json:"amount"`
		Period    string           `json:"period"`
		StartDate *string          `json:"startDate"`
		EndDate   *string          `json:"endDate"`
	}

	createGoalRequest struct {
		Name          string           `json:"name"`
		Emoji         string           `json:"emoji"`
		TargetAmount  *decimal.Decimal `json:"targetAmount"`
		CurrentAmount *decimal.Decimal `json:"currentAmount"`
		Deadline      *string          `json:"deadline"`
	}
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.svc.Budgets.List(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		s.fail(w, r, err, "Failed to fetch budgets")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"budgets": newBudgetViews(budgets)})
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req createBudgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, msgInternal)
		return
	}

	category, err := core.ParseCategory(req.Category)
	if err != nil {
		s.fail(w, r, err, msgInternal)
		return
	}
	start, err := parseOptionalTime("startDate", req.StartDate, s.loc, false)
	if err != nil {
		s.fail(w, r, err, msgInternal)
		return
	}
	end, err := parseOptionalTime("endDate", req.EndDate, s.loc, true)
	if err != nil {
		s.fail(w, r, err, msgInternal)
		return
	}

	b, err := s.svc.Budgets.Create(r.Context(), auth.UserID(r.Context()), services.CreateBudgetInput{
		Category:  category,
		Amount:    req.Amount,
		Period:    req.Period,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		s.fail(w, r, err, "Failed to create budget")
		return
	}
	writeJSON(w, http.StatusCreated, newBudgetView(b, nil))
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.svc.Goals.List(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		s.fail(w, r, err, "Failed to fetch goals")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": newGoalViews(goals)})
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, msgInternal)
		return
	}
	deadline, err := parseOptionalTime("deadline", req.Deadline, s.loc, true)
	if err != nil {
		s.fail(w, r, err, msgInternal)
		return
	}

	g, err := s.svc.Goals.Create(r.Context(), auth.UserID(r.Context()), services.CreateGoalInput{
		Name:          req.Name,
		Emoji:         req.Emoji,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		Deadline:      deadline,
	})
	if err != nil {
		s.fail(w, r, err, "Failed to create goal")
		return
	}
	writeJSON(w, http.StatusCreated, newGoalView(g))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.Dashboard.Get(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		s.fail(w, r, err, "Failed to fetch dashboard data")
		return
	}
	writeJSON(w, http.StatusOK, newDashboardView(d))
}
