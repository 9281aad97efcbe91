package core

import "github.com/shopspring/decimal"

const (
	InsightWarning     InsightType = "WARNING"
	InsightSuggestion  InsightType = "SUGGESTION"
	InsightCelebration InsightType = "CELEBRATION"
	InsightForecast    InsightType = "FORECAST"

	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// SafeToSpendFallback is returned whenever the advisor cannot answer.
const SafeToSpendFallback = "Unable to calculate safe spending amount"

type (
	InsightType string
	Priority    string

	InsightAction struct {
		Label    string `json:"label"`
		Endpoint string `json:"endpoint"`
	}

	// Insight is produced per request by the advisor and never stored.
	Insight struct {
		Type        InsightType    `json:"type"`
		Title       string         `json:"title"`
		Description string         `json:"description"`
		Actionable  bool           `json:"actionable"`
		Action      *InsightAction `json:"action,omitempty"`
		Priority    Priority       `json:"priority"`
		DataPoints  map[string]any `json:"dataPoints,omitempty"`
	}

	SafeToSpend struct {
		Amount      decimal.Decimal `json:"amount"`
		Explanation string          `json:"explanation"`
	}
)

// Valid reports whether the insight has a known type, a known priority and a title.
func (i Insight) Valid() bool {
	switch i.Type {
	case InsightWarning, InsightSuggestion, InsightCelebration, InsightForecast:
	default:
		return false
	}
	switch i.Priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		return false
	}
	return i.Title != ""
}
