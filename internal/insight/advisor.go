// Package insight wraps the language-model advisor and the rule-based
// fallback categorizer.
package insight

import (
	"context"
	"strings"

	"finboard/internal/core"

	"github.com/shopspring/decimal"
)

// MaxInsights caps how many insights a single analysis returns.
const MaxInsights = 3

// UpcomingExpense is money already earmarked for the rest of a budget window.
type UpcomingExpense struct {
	Category core.Category   `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// BudgetSnapshot is the budget view handed to the advisor.
type BudgetSnapshot struct {
	Category   core.Category     `json:"category"`
	Amount     decimal.Decimal   `json:"amount"`
	Spent      decimal.Decimal   `json:"spent"`
	Percentage decimal.Decimal   `json:"percentage"`
	Status     core.BudgetStatus `json:"status"`
}

// Advisor is the opaque advisory capability. Implementations may be slow or
// unavailable; callers treat every answer as best effort.
type Advisor interface {
	Analyze(ctx context.Context, txs []core.Transaction, budgets []BudgetSnapshot) ([]core.Insight, error)
	SafeToSpend(ctx context.Context, balance decimal.Decimal, upcoming []UpcomingExpense, goal decimal.Decimal) (core.SafeToSpend, error)
	Categorize(ctx context.Context, description string) (core.Category, error)
}

// cleanModelJSON strips Markdown fences and any prose around the outermost
// JSON value delimited by open and close.
func cleanModelJSON(raw string, open, close byte) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return s
		}
		s = strings.TrimSpace(s[idx+1:])
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.IndexByte(s, open); start != -1 {
		if end := strings.LastIndexByte(s, close); end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}
