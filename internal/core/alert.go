package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetAlert records that a budget crossed the alert threshold within a window.
// At most one alert exists per (budget, status, window start).
type BudgetAlert struct {
	ID          uuid.UUID
	UserID      string
	BudgetID    uuid.UUID
	Category    Category
	Status      BudgetStatus
	Spent       decimal.Decimal
	Amount      decimal.Decimal
	Percentage  decimal.Decimal
	WindowStart time.Time
	WindowEnd   time.Time
	CreatedAt   time.Time
}
