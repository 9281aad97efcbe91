package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	Income  TxType = "INCOME"
	Expense TxType = "EXPENSE"
)

const (
	Weekly    Period = "WEEKLY"
	Monthly   Period = "MONTHLY"
	Quarterly Period = "QUARTERLY"
	Yearly    Period = "YEARLY"
)

// DefaultCurrency is applied to accounts created without one.
const DefaultCurrency = "EUR"

const maxDescriptionLen = 500

type (
	TxType string

	Period string

	Account struct {
		ID        uuid.UUID
		UserID    string
		Name      string
		Type      string
		Balance   decimal.Decimal
		Currency  string
		CreatedAt time.Time
	}

	// AccountSummary is an account plus the number of transactions on it.
	AccountSummary struct {
		Account
		TransactionCount int
	}

	// Transaction amounts are non-negative; the sign is carried by Type.
	Transaction struct {
		ID          uuid.UUID
		AccountID   uuid.UUID
		Amount      decimal.Decimal
		Type        TxType
		Category    Category
		Description string
		Date        time.Time
		CreatedAt   time.Time
	}

	// TransactionDetail annotates a transaction with its account.
	TransactionDetail struct {
		Transaction
		AccountName string
		AccountType string
	}

	// TransactionPatch is a partial update; nil fields are left unchanged.
	TransactionPatch struct {
		Amount      *decimal.Decimal
		Type        *TxType
		Category    *Category
		Description *string
		Date        *time.Time
	}

	// Budget windows are explicit in the canonical schema. A budget with nil
	// StartDate/EndDate is a legacy row and covers the current calendar month.
	Budget struct {
		ID        uuid.UUID
		UserID    string
		Category  Category
		Amount    decimal.Decimal
		Period    Period
		StartDate *time.Time
		EndDate   *time.Time
		CreatedAt time.Time
	}

	SavingsGoal struct {
		ID            uuid.UUID
		UserID        string
		Name          string
		Emoji         string
		TargetAmount  decimal.Decimal
		CurrentAmount decimal.Decimal
		Deadline      *time.Time
		CreatedAt     time.Time
	}
)

// ParseTxType accepts INCOME or EXPENSE in any case.
func ParseTxType(s string) (TxType, error) {
	t := TxType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case Income, Expense:
		return t, nil
	case "":
		return "", Invalid("type", "is required")
	default:
		return "", Invalid("type", "must be INCOME or EXPENSE")
	}
}

// ParsePeriod accepts a budget period in any case; empty means MONTHLY.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToUpper(strings.TrimSpace(s)))
	if p == "" {
		return Monthly, nil
	}
	if _, ok := periodStrategies[p]; !ok {
		return "", Invalid("period", "must be one of WEEKLY, MONTHLY, QUARTERLY, YEARLY")
	}
	return p, nil
}

// SignedAmount is +amount for income and -amount for expense.
func SignedAmount(t TxType, amount decimal.Decimal) decimal.Decimal {
	if t == Income {
		return amount
	}
	return amount.Neg()
}

// Signed returns the transaction's contribution to its account balance.
func (t Transaction) Signed() decimal.Decimal {
	return SignedAmount(t.Type, t.Amount)
}

// Apply returns the transaction with the patch applied.
func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.Amount != nil {
		t.Amount = RoundAmount(*p.Amount)
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	return t
}

// IsEmpty reports whether the patch changes nothing.
func (p TransactionPatch) IsEmpty() bool {
	return p.Amount == nil && p.Type == nil && p.Category == nil && p.Description == nil && p.Date == nil
}

// BalanceDelta is the adjustment to apply to the account balance when old is
// replaced by updated: newSigned - oldSigned, derived from the effective records.
func BalanceDelta(old, updated Transaction) decimal.Decimal {
	return updated.Signed().Sub(old.Signed())
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.UserID) == "" {
		return ErrUnauthorized
	}
	if strings.TrimSpace(a.Name) == "" {
		return Invalid("name", "is required")
	}
	if len(a.Name) > 100 {
		return Invalid("name", "too long (max 100 characters)")
	}
	if strings.TrimSpace(a.Type) == "" {
		return Invalid("type", "is required")
	}
	if len(a.Currency) != 3 {
		return Invalid("currency", "must be a 3-letter code")
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.AccountID == uuid.Nil {
		return Invalid("accountId", "is required")
	}
	if !t.Amount.IsPositive() {
		return Invalid("amount", "must be greater than zero")
	}
	if err := CheckAmount("amount", t.Amount); err != nil {
		return err
	}
	if t.Type != Income && t.Type != Expense {
		return Invalid("type", "must be INCOME or EXPENSE")
	}
	if _, ok := LookupCategory(t.Category); !ok {
		return Invalid("category", "unknown category "+string(t.Category))
	}
	if len(t.Description) > maxDescriptionLen {
		return Invalid("description", "too long (max 500 characters)")
	}
	if t.Date.IsZero() {
		return Invalid("date", "is required")
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.UserID) == "" {
		return ErrUnauthorized
	}
	if _, ok := LookupCategory(b.Category); !ok {
		return Invalid("category", "unknown category "+string(b.Category))
	}
	if !b.Amount.IsPositive() {
		return Invalid("amount", "must be greater than zero")
	}
	if err := CheckAmount("amount", b.Amount); err != nil {
		return err
	}
	if _, ok := periodStrategies[b.Period]; !ok {
		return Invalid("period", "must be one of WEEKLY, MONTHLY, QUARTERLY, YEARLY")
	}
	if (b.StartDate == nil) != (b.EndDate == nil) {
		return Invalid("endDate", "startDate and endDate must be given together")
	}
	if b.StartDate != nil && b.EndDate.Before(*b.StartDate) {
		return Invalid("endDate", "must not be before startDate")
	}
	return nil
}

// Window returns the budget's active window. Legacy budgets without explicit
// dates cover the calendar month containing now.
func (b Budget) Window(now time.Time) Window {
	if b.StartDate != nil && b.EndDate != nil {
		return Window{Start: *b.StartDate, End: *b.EndDate}
	}
	return MonthWindow(now)
}

func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.UserID) == "" {
		return ErrUnauthorized
	}
	if strings.TrimSpace(g.Name) == "" {
		return Invalid("name", "is required")
	}
	if len(g.Name) > 100 {
		return Invalid("name", "too long (max 100 characters)")
	}
	if !g.TargetAmount.IsPositive() {
		return Invalid("targetAmount", "must be greater than zero")
	}
	if err := CheckAmount("targetAmount", g.TargetAmount); err != nil {
		return err
	}
	if g.CurrentAmount.IsNegative() {
		return Invalid("currentAmount", "must not be negative")
	}
	if err := CheckAmount("currentAmount", g.CurrentAmount); err != nil {
		return err
	}
	return nil
}
