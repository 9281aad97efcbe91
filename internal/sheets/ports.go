// Package sheets mirrors ledger transactions into a spreadsheet.
package sheets

import (
	"context"
	"time"

	"finboard/internal/core"

	"github.com/shopspring/decimal"
)

// Header is the first row of the export sheet; Row.Values follows its order.
var Header = []any{"Date", "Account", "Type", "Category", "Amount", "Description", "ID"}

// Row is one exported transaction.
type Row struct {
	Date        time.Time
	Account     string
	Type        core.TxType
	Category    core.Category
	Amount      decimal.Decimal
	Description string
	ID          string
}

// RowFromTransaction renders t with its date in loc.
func RowFromTransaction(t core.TransactionDetail, loc *time.Location) Row {
	if loc == nil {
		loc = time.UTC
	}
	return Row{
		Date:        t.Date.In(loc),
		Account:     t.AccountName,
		Type:        t.Type,
		Category:    t.Category,
		Amount:      t.Amount,
		Description: t.Description,
		ID:          t.ID.String(),
	}
}

// Values is the row as spreadsheet cells.
func (r Row) Values() []any {
	return []any{
		r.Date.Format(time.DateOnly),
		r.Account,
		string(r.Type),
		string(r.Category),
		r.Amount.StringFixed(2),
		r.Description,
		r.ID,
	}
}

// Ports for outbound adapters.
type (
	// TransactionExporter appends rows. Exported reports whether a transaction
	// id already has a row, so redelivered events are not exported twice.
	TransactionExporter interface {
		Append(ctx context.Context, r Row) (rowRef string, err error)
		Exported(ctx context.Context, id string) (bool, error)
	}

	// RowLister reads back the exported rows.
	RowLister interface {
		ListRows(ctx context.Context) ([]Row, error)
	}
)
