package http

import (
	"net/http"

	"finboard/internal/auth"
	"finboard/internal/core"
)

type categorizeRequest struct {
	Description string `json:"description"`
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := s.svc.Insights.Insights(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		s.fail(w, r, err, "Failed to generate insights")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"insights": insights})
}

func (s *Server) handleSafeToSpend(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Insights.SafeToSpend(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		s.fail(w, r, err, "Failed to calculate safe-to-spend amount")
		return
	}
	writeJSON(w, http.StatusOK, safeToSpendView{Amount: money(res.Amount), Explanation: res.Explanation})
}

func (s *Server) handleCategorize(w http.ResponseWriter, r *http.Request) {
	var req categorizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, msgInternal)
		return
	}
	c, err := s.svc.Insights.Categorize(r.Context(), auth.UserID(r.Context()), req.Description)
	if err != nil {
		s.fail(w, r, err, "Failed to categorize transaction")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"category": string(c)})
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.fail(w, r, err, msgInternal)
		return
	}
	n := 0
	if limit != nil {
		n = *limit
	}

	alerts, err := s.svc.Alerts.List(r.Context(), auth.UserID(r.Context()), n)
	if err != nil {
		s.fail(w, r, err, "Failed to fetch alerts")
		return
	}
	out := make([]alertView, len(alerts))
	for i, a := range alerts {
		out[i] = newAlertView(a)
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": out})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats := core.Categories()
	out := make([]categoryView, len(cats))
	for i, c := range cats {
		out[i] = categoryView{
			Value: string(c.Category),
			Label: c.Label,
			Emoji: c.Emoji,
			Color: c.Color,
			Type:  c.Type,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": out})
}
