package core

import (
	"strings"
)

// Category is one of the fixed transaction categories.
type Category string

const (
	Salary           Category = "SALARY"
	Freelance        Category = "FREELANCE"
	InvestmentIncome Category = "INVESTMENT_INCOME"
	GiftReceived     Category = "GIFT_RECEIVED"
	OtherIncome      Category = "OTHER_INCOME"

	Housing         Category = "HOUSING"
	FoodDining      Category = "FOOD_DINING"
	Groceries       Category = "GROCERIES"
	Transportation  Category = "TRANSPORTATION"
	Utilities       Category = "UTILITIES"
	Healthcare      Category = "HEALTHCARE"
	Entertainment   Category = "ENTERTAINMENT"
	Shopping        Category = "SHOPPING"
	PersonalCare    Category = "PERSONAL_CARE"
	Education       Category = "EDUCATION"
	Insurance       Category = "INSURANCE"
	DebtPayment     Category = "DEBT_PAYMENT"
	GiftsDonations  Category = "GIFTS_DONATIONS"
	SavingsTransfer Category = "SAVINGS_TRANSFER"
	OtherExpense    Category = "OTHER_EXPENSE"
)

// CategoryInfo carries the presentation attributes of a category.
type CategoryInfo struct {
	Category Category
	Label    string
	Emoji    string
	Color    string
	Type     TxType
}

var categoryRegistry = []CategoryInfo{
	{Salary, "Salary", "💼", "#10b981", Income},
	{Freelance, "Freelance", "💻", "#06b6d4", Income},
	{InvestmentIncome, "Investment income", "📈", "#8b5cf6", Income},
	{GiftReceived, "Gift received", "🎁", "#ec4899", Income},
	{OtherIncome, "Other income", "💰", "#84cc16", Income},

	{Housing, "Housing", "🏠", "#ef4444", Expense},
	{FoodDining, "Food and dining", "🍽️", "#f59e0b", Expense},
	{Groceries, "Groceries", "🛒", "#10b981", Expense},
	{Transportation, "Transportation", "🚗", "#3b82f6", Expense},
	{Utilities, "Utilities", "💡", "#6366f1", Expense},
	{Healthcare, "Healthcare", "⚕️", "#ec4899", Expense},
	{Entertainment, "Entertainment", "🎬", "#8b5cf6", Expense},
	{Shopping, "Shopping", "🛍️", "#f97316", Expense},
	{PersonalCare, "Personal care", "💅", "#14b8a6", Expense},
	{Education, "Education", "📚", "#0ea5e9", Expense},
	{Insurance, "Insurance", "🛡️", "#64748b", Expense},
	{DebtPayment, "Debt payment", "💳", "#dc2626", Expense},
	{GiftsDonations, "Gifts and donations", "🎁", "#d946ef", Expense},
	{SavingsTransfer, "Savings transfer", "🏦", "#22c55e", Expense},
	{OtherExpense, "Other expense", "📦", "#94a3b8", Expense},
}

var categoryIndex = func() map[Category]CategoryInfo {
	m := make(map[Category]CategoryInfo, len(categoryRegistry))
	for _, info := range categoryRegistry {
		m[info.Category] = info
	}
	return m
}()

// Categories returns the registry in display order.
func Categories() []CategoryInfo {
	return append([]CategoryInfo(nil), categoryRegistry...)
}

// LookupCategory returns the registry entry for c.
func LookupCategory(c Category) (CategoryInfo, bool) {
	info, ok := categoryIndex[c]
	return info, ok
}

// ParseCategory normalizes s ("groceries", " GROCERIES ") and checks it against the registry.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if c == "" {
		return "", Invalid("category", "is required")
	}
	if _, ok := categoryIndex[c]; !ok {
		return "", Invalid("category", "unknown category "+string(c))
	}
	return c, nil
}

// DefaultCategory is the fallback for a transaction type.
func DefaultCategory(t TxType) Category {
	if t == Income {
		return OtherIncome
	}
	return OtherExpense
}
