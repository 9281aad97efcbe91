package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// CashFlowDays is the length of the cash-flow series, ending today.
	CashFlowDays = 30
	// RecentLimit is the number of recent transactions on the dashboard.
	RecentLimit = 10

	PointActual    = "actual"
	PointProjected = "projected"
)

type (
	Summary struct {
		TotalBalance  decimal.Decimal
		MonthIncome   decimal.Decimal
		MonthExpenses decimal.Decimal
		MonthSavings  decimal.Decimal
		AccountsCount int
	}

	// BudgetProgress is a budget with its spend over the dashboard month.
	BudgetProgress struct {
		Budget
		Spend BudgetSpend
	}

	CashFlowPoint struct {
		Date    string // YYYY-MM-DD
		Income  decimal.Decimal
		Expense decimal.Decimal
		Balance decimal.Decimal
		Type    string
	}

	Dashboard struct {
		Summary            Summary
		Accounts           []AccountSummary
		RecentTransactions []TransactionDetail
		Budgets            []BudgetProgress
		Goals              []GoalProgress
		CashFlow           []CashFlowPoint
	}

	// DashboardInput is the store state BuildDashboard works from.
	//
	// Transactions must hold every transaction of the user dated inside
	// DashboardRange(now); OpeningBalance is the signed sum of all transactions
	// dated before that range.
	DashboardInput struct {
		Accounts       []AccountSummary
		Transactions   []Transaction
		OpeningBalance decimal.Decimal
		Recent         []TransactionDetail
		Budgets        []Budget
		Goals          []SavingsGoal
	}
)

// CashFlowWindow covers the CashFlowDays calendar days ending with now's day.
func CashFlowWindow(now time.Time) Window {
	return Window{
		Start: StartOfDay(now).AddDate(0, 0, -(CashFlowDays - 1)),
		End:   EndOfDay(now),
	}
}

// DashboardRange is the transaction date range needed to build a dashboard:
// the union of the month window and the cash-flow window.
func DashboardRange(now time.Time) Window {
	month, flow := MonthWindow(now), CashFlowWindow(now)
	r := month
	if flow.Start.Before(r.Start) {
		r.Start = flow.Start
	}
	if flow.End.After(r.End) {
		r.End = flow.End
	}
	return r
}

// BuildDashboard assembles the dashboard snapshot. It is a pure function of
// in and now.
func BuildDashboard(in DashboardInput, now time.Time) Dashboard {
	month := MonthWindow(now)

	var d Dashboard
	d.Accounts = in.Accounts
	d.RecentTransactions = in.Recent

	d.Summary.TotalBalance = decimal.Zero
	for _, a := range in.Accounts {
		d.Summary.TotalBalance = d.Summary.TotalBalance.Add(a.Balance)
	}
	d.Summary.AccountsCount = len(in.Accounts)

	monthTxs := make([]Transaction, 0, len(in.Transactions))
	d.Summary.MonthIncome, d.Summary.MonthExpenses = decimal.Zero, decimal.Zero
	for _, t := range in.Transactions {
		if !month.Contains(t.Date) {
			continue
		}
		monthTxs = append(monthTxs, t)
		if t.Type == Income {
			d.Summary.MonthIncome = d.Summary.MonthIncome.Add(t.Amount)
		} else {
			d.Summary.MonthExpenses = d.Summary.MonthExpenses.Add(t.Amount)
		}
	}
	d.Summary.MonthSavings = d.Summary.MonthIncome.Sub(d.Summary.MonthExpenses)

	d.Budgets = make([]BudgetProgress, 0, len(in.Budgets))
	for _, b := range in.Budgets {
		spend := ComputeSpend(b, monthTxs, now)
		spend.Remaining = spend.ClampedRemaining()
		d.Budgets = append(d.Budgets, BudgetProgress{Budget: b, Spend: spend})
	}

	d.Goals = make([]GoalProgress, 0, len(in.Goals))
	for _, g := range in.Goals {
		d.Goals = append(d.Goals, ComputeGoalProgress(g, now))
	}
	SortGoalsByDeadline(d.Goals)

	d.CashFlow = CashFlowSeries(in.Transactions, in.OpeningBalance, now)
	return d
}

// CashFlowSeries builds one point per day for the CashFlowDays days ending
// with now's day, oldest first. Balance is opening plus every signed amount
// dated on or before the end of that day.
//
// txs is sorted once and consumed in a single pass; transactions dated before
// the first day only move the running balance.
func CashFlowSeries(txs []Transaction, opening decimal.Decimal, now time.Time) []CashFlowPoint {
	sorted := append([]Transaction(nil), txs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	first := StartOfDay(now).AddDate(0, 0, -(CashFlowDays - 1))
	running := opening
	i := 0
	for ; i < len(sorted) && sorted[i].Date.Before(first); i++ {
		running = running.Add(sorted[i].Signed())
	}

	points := make([]CashFlowPoint, 0, CashFlowDays)
	for day := 0; day < CashFlowDays; day++ {
		dayStart := first.AddDate(0, 0, day)
		dayEnd := EndOfDay(dayStart)
		income, expense := decimal.Zero, decimal.Zero
		for ; i < len(sorted) && !sorted[i].Date.After(dayEnd); i++ {
			t := sorted[i]
			if t.Type == Income {
				income = income.Add(t.Amount)
			} else {
				expense = expense.Add(t.Amount)
			}
			running = running.Add(t.Signed())
		}
		points = append(points, CashFlowPoint{
			Date:    dayStart.Format(time.DateOnly),
			Income:  income,
			Expense: expense,
			Balance: running,
			Type:    PointActual,
		})
	}
	return points
}
