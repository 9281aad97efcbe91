package storage

import (
	"database/sql"
	"time"

	"finboard/internal/core"

	"github.com/google/uuid"
)

func parseID(s string) uuid.UUID {
	id, _ := uuid.Parse(s)
	return id
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func timeFromNull(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromMillis(n.Int64)
	return &t
}

func accountFromRow(row Account) core.Account {
	return core.Account{
		ID:        parseID(row.ID),
		UserID:    row.UserID,
		Name:      row.Name,
		Type:      row.Type,
		Balance:   core.FromCents(row.BalanceCents),
		Currency:  row.Currency,
		CreatedAt: fromMillis(row.CreatedAt),
	}
}

func transactionFromRow(row Transaction) core.Transaction {
	return core.Transaction{
		ID:          parseID(row.ID),
		AccountID:   parseID(row.AccountID),
		Amount:      core.FromCents(row.AmountCents),
		Type:        core.TxType(row.Type),
		Category:    core.Category(row.Category),
		Description: row.Description,
		Date:        fromMillis(row.DateMs),
		CreatedAt:   fromMillis(row.CreatedAt),
	}
}

func detailFromRow(row ListTransactionsRow) core.TransactionDetail {
	return core.TransactionDetail{
		Transaction: transactionFromRow(Transaction{
			ID:          row.ID,
			AccountID:   row.AccountID,
			AmountCents: row.AmountCents,
			Type:        row.Type,
			Category:    row.Category,
			Description: row.Description,
			DateMs:      row.DateMs,
			CreatedAt:   row.CreatedAt,
		}),
		AccountName: row.AccountName,
		AccountType: row.AccountType,
	}
}

func createTransactionParams(t core.Transaction) CreateTransactionParams {
	return CreateTransactionParams{
		ID:          t.ID.String(),
		AccountID:   t.AccountID.String(),
		AmountCents: core.ToCents(t.Amount),
		Type:        string(t.Type),
		Category:    string(t.Category),
		Description: t.Description,
		DateMs:      t.Date.UnixMilli(),
		CreatedAt:   t.CreatedAt.UnixMilli(),
	}
}

func budgetFromRow(row Budget) core.Budget {
	return core.Budget{
		ID:        parseID(row.ID),
		UserID:    row.UserID,
		Category:  core.Category(row.Category),
		Amount:    core.FromCents(row.AmountCents),
		Period:    core.Period(row.Period),
		StartDate: timeFromNull(row.StartDate),
		EndDate:   timeFromNull(row.EndDate),
		CreatedAt: fromMillis(row.CreatedAt),
	}
}

func goalFromRow(row SavingsGoal) core.SavingsGoal {
	return core.SavingsGoal{
		ID:            parseID(row.ID),
		UserID:        row.UserID,
		Name:          row.Name,
		Emoji:         row.Emoji,
		TargetAmount:  core.FromCents(row.TargetCents),
		CurrentAmount: core.FromCents(row.CurrentCents),
		Deadline:      timeFromNull(row.Deadline),
		CreatedAt:     fromMillis(row.CreatedAt),
	}
}
