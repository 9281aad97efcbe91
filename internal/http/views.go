package http

import (
	"encoding/json"
	"time"

	"finboard/internal/core"
	"finboard/internal/services"

	"github.com/shopspring/decimal"
)

// Amounts leave the API as JSON numbers with two decimals.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

type (
	accountView struct {
		ID               string      `json:"id"`
		Name             string      `json:"name"`
		Type             string      `json:"type"`
		Balance          json.Number `json:"balance"`
		Currency         string      `json:"currency"`
		CreatedAt        time.Time   `json:"createdAt"`
		TransactionCount int         `json:"transactionCount"`
	}

	accountRef struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}

	transactionView struct {
		ID          string      `json:"id"`
		AccountID   string      `json:"accountId"`
		Amount      json.Number `json:"amount"`
		Type        core.TxType `json:"type"`
		Category    string      `json:"category"`
		Description string      `json:"description"`
		Date        time.Time   `json:"date"`
		CreatedAt   time.Time   `json:"createdAt"`
		Account     accountRef  `json:"account"`
	}

	paginationView struct {
		Total   int  `json:"total"`
		Limit   int  `json:"limit"`
		Offset  int  `json:"offset"`
		HasMore bool `json:"hasMore"`
	}

	spendView struct {
		Spent      json.Number       `json:"spent"`
		Remaining  json.Number       `json:"remaining"`
		Percentage json.Number       `json:"percentage"`
		Status     core.BudgetStatus `json:"status"`
	}

	budgetView struct {
		ID        string      `json:"id"`
		Category  string      `json:"category"`
		Amount    json.Number `json:"amount"`
		Period    core.Period `json:"period"`
		StartDate *time.Time  `json:"startDate"`
		EndDate   *time.Time  `json:"endDate"`
		CreatedAt time.Time   `json:"createdAt"`
		*spendView
	}

	goalView struct {
		ID            string      `json:"id"`
		Name          string      `json:"name"`
		Emoji         string      `json:"emoji,omitempty"`
		TargetAmount  json.Number `json:"targetAmount"`
		CurrentAmount json.Number `json:"currentAmount"`
		Deadline      *time.Time  `json:"deadline"`
		CreatedAt     time.Time   `json:"createdAt"`
		Percentage    json.Number `json:"percentage"`
		Remaining     json.Number `json:"remaining"`
		DaysLeft      *int        `json:"daysLeft"`
		IsComplete    bool        `json:"isComplete"`
	}

	summaryView struct {
		TotalBalance  json.Number `json:"totalBalance"`
		MonthIncome   json.Number `json:"monthIncome"`
		MonthExpenses json.Number `json:"monthExpenses"`
		MonthSavings  json.Number `json:"monthSavings"`
		AccountsCount int         `json:"accountsCount"`
	}

	cashFlowView struct {
		Date    string      `json:"date"`
		Income  json.Number `json:"income"`
		Expense json.Number `json:"expense"`
		Balance json.Number `json:"balance"`
		Type    string      `json:"type"`
	}

	dashboardView struct {
		Summary            summaryView       `json:"summary"`
		Accounts           []accountView     `json:"accounts"`
		RecentTransactions []transactionView `json:"recentTransactions"`
		Budgets            []budgetView      `json:"budgets"`
		Goals              []goalView        `json:"goals"`
		CashFlowData       []cashFlowView    `json:"cashFlowData"`
	}

	alertView struct {
		ID          string            `json:"id"`
		BudgetID    string            `json:"budgetId"`
		Category    string            `json:"category"`
		Status      core.BudgetStatus `json:"status"`
		Spent       json.Number       `json:"spent"`
		Amount      json.Number       `json:"amount"`
		Percentage  json.Number       `json:"percentage"`
		WindowStart time.Time         `json:"windowStart"`
		WindowEnd   time.Time         `json:"windowEnd"`
		CreatedAt   time.Time         `json:"createdAt"`
	}

	categoryView struct {
		Value string      `json:"value"`
		Label string      `json:"label"`
		Emoji string      `json:"emoji"`
		Color string      `json:"color"`
		Type  core.TxType `json:"type"`
	}

	safeToSpendView struct {
		Amount      json.Number `json:"amount"`
		Explanation string      `json:"explanation"`
	}
)

func newAccountView(a core.AccountSummary) accountView {
	return accountView{
		ID:               a.ID.String(),
		Name:             a.Name,
		Type:             a.Type,
		Balance:          money(a.Balance),
		Currency:         a.Currency,
		CreatedAt:        a.CreatedAt,
		TransactionCount: a.TransactionCount,
	}
}

func newTransactionView(t core.TransactionDetail) transactionView {
	return transactionView{
		ID:          t.ID.String(),
		AccountID:   t.AccountID.String(),
		Amount:      money(t.Amount),
		Type:        t.Type,
		Category:    string(t.Category),
		Description: t.Description,
		Date:        t.Date,
		CreatedAt:   t.CreatedAt,
		Account:     accountRef{Name: t.AccountName, Type: t.AccountType},
	}
}

func newTransactionViews(txs []core.TransactionDetail) []transactionView {
	out := make([]transactionView, len(txs))
	for i, t := range txs {
		out[i] = newTransactionView(t)
	}
	return out
}

func newPaginationView(p services.TransactionPage) paginationView {
	return paginationView{Total: p.Total, Limit: p.Limit, Offset: p.Offset, HasMore: p.HasMore}
}

func newBudgetView(b core.Budget, spend *core.BudgetSpend) budgetView {
	v := budgetView{
		ID:        b.ID.String(),
		Category:  string(b.Category),
		Amount:    money(b.Amount),
		Period:    b.Period,
		StartDate: b.StartDate,
		EndDate:   b.EndDate,
		CreatedAt: b.CreatedAt,
	}
	if spend != nil {
		v.spendView = &spendView{
			Spent:      money(spend.Spent),
			Remaining:  money(spend.Remaining),
			Percentage: money(spend.Percentage),
			Status:     spend.Status,
		}
	}
	return v
}

func newBudgetViews(budgets []core.BudgetProgress) []budgetView {
	out := make([]budgetView, len(budgets))
	for i, b := range budgets {
		out[i] = newBudgetView(b.Budget, &b.Spend)
	}
	return out
}

func newGoalView(g core.GoalProgress) goalView {
	return goalView{
		ID:            g.ID.String(),
		Name:          g.Name,
		Emoji:         g.Emoji,
		TargetAmount:  money(g.TargetAmount),
		CurrentAmount: money(g.CurrentAmount),
		Deadline:      g.Deadline,
		CreatedAt:     g.CreatedAt,
		Percentage:    money(g.Percentage),
		Remaining:     money(g.Remaining),
		DaysLeft:      g.DaysLeft,
		IsComplete:    g.IsComplete,
	}
}

func newGoalViews(goals []core.GoalProgress) []goalView {
	out := make([]goalView, len(goals))
	for i, g := range goals {
		out[i] = newGoalView(g)
	}
	return out
}

func newDashboardView(d core.Dashboard) dashboardView {
	v := dashboardView{
		Summary: summaryView{
			TotalBalance:  money(d.Summary.TotalBalance),
			MonthIncome:   money(d.Summary.MonthIncome),
			MonthExpenses: money(d.Summary.MonthExpenses),
			MonthSavings:  money(d.Summary.MonthSavings),
			AccountsCount: d.Summary.AccountsCount,
		},
		Accounts:           make([]accountView, len(d.Accounts)),
		RecentTransactions: newTransactionViews(d.RecentTransactions),
		Budgets:            newBudgetViews(d.Budgets),
		Goals:              newGoalViews(d.Goals),
		CashFlowData:       make([]cashFlowView, len(d.CashFlow)),
	}
	for i, a := range d.Accounts {
		v.Accounts[i] = newAccountView(a)
	}
	for i, p := range d.CashFlow {
		v.CashFlowData[i] = cashFlowView{
			Date:    p.Date,
			Income:  money(p.Income),
			Expense: money(p.Expense),
			Balance: money(p.Balance),
			Type:    p.Type,
		}
	}
	return v
}

func newAlertView(a core.BudgetAlert) alertView {
	return alertView{
		ID:          a.ID.String(),
		BudgetID:    a.BudgetID.String(),
		Category:    string(a.Category),
		Status:      a.Status,
		Spent:       money(a.Spent),
		Amount:      money(a.Amount),
		Percentage:  money(a.Percentage),
		WindowStart: a.WindowStart,
		WindowEnd:   a.WindowEnd,
		CreatedAt:   a.CreatedAt,
	}
}
