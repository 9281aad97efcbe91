package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200

	openingDescription = "Opening balance"
)

// LedgerStore is the part of the repository the ledger writes to.
type LedgerStore interface {
	storage.AccountStore
	storage.TransactionStore
}

type (
	CreateAccountInput struct {
		Name     string
		Type     string
		Balance  *decimal.Decimal
		Currency string
	}

	CreateTransactionInput struct {
		AccountID   uuid.UUID
		Amount      *decimal.Decimal
		Type        core.TxType
		Category    core.Category
		Description string
		Date        *time.Time
	}

	ListTransactionsInput struct {
		AccountID *uuid.UUID
		Category  *core.Category
		Type      *core.TxType
		From      *time.Time
		To        *time.Time
		Limit     *int
		Offset    *int
	}

	TransactionPage struct {
		Transactions []core.TransactionDetail
		Total        int
		Limit        int
		Offset       int
		HasMore      bool
	}
)

// LedgerService manages accounts and their transactions.
type LedgerService struct {
	store     LedgerStore
	publisher EventPublisher
	now       Clock
	logger    *log.Logger
}

func NewLedgerService(store LedgerStore, publisher EventPublisher, now Clock, logger *log.Logger) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
		now:       now,
		logger:    logger.WithComponent(log.ComponentLedger),
	}
}

func (s *LedgerService) ListAccounts(ctx context.Context, userID string) ([]core.AccountSummary, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	accounts, err := s.store.ListAccounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// CreateAccount creates an account. A non-zero initial balance is recorded as
// an opening transaction so the balance stays equal to the transaction sum.
func (s *LedgerService) CreateAccount(ctx context.Context, userID string, in CreateAccountInput) (core.Account, error) {
	if err := requireUser(userID); err != nil {
		return core.Account{}, err
	}
	now := s.now()

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = core.DefaultCurrency
	}
	a := core.Account{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      strings.TrimSpace(in.Name),
		Type:      strings.TrimSpace(in.Type),
		Currency:  currency,
		CreatedAt: now,
	}
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}

	var opening *core.Transaction
	if in.Balance != nil {
		bal := core.RoundAmount(*in.Balance)
		if err := core.CheckAmount("balance", bal); err != nil {
			return core.Account{}, err
		}
		if !bal.IsZero() {
			typ := core.Income
			if bal.IsNegative() {
				typ = core.Expense
			}
			opening = &core.Transaction{
				ID:          uuid.New(),
				AccountID:   a.ID,
				Amount:      bal.Abs(),
				Type:        typ,
				Category:    core.DefaultCategory(typ),
				Description: openingDescription,
				Date:        now,
				CreatedAt:   now,
			}
		}
	}

	created, err := s.store.CreateAccount(ctx, a, opening)
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}

	s.logger.InfoContext(ctx, "Account created",
		log.FieldUserID, userID,
		log.FieldAccountID, created.ID.String())
	return created, nil
}

func (s *LedgerService) CreateTransaction(ctx context.Context, userID string, in CreateTransactionInput) (core.TransactionDetail, error) {
	if err := requireUser(userID); err != nil {
		return core.TransactionDetail{}, err
	}
	if in.AccountID == uuid.Nil {
		return core.TransactionDetail{}, core.Invalid("accountId", "is required")
	}
	if in.Amount == nil {
		return core.TransactionDetail{}, core.Invalid("amount", "is required")
	}
	if in.Type == "" {
		return core.TransactionDetail{}, core.Invalid("type", "is required")
	}
	if in.Category == "" {
		return core.TransactionDetail{}, core.Invalid("category", "is required")
	}

	now := s.now()
	date := now
	if in.Date != nil {
		date = *in.Date
	}
	t := core.Transaction{
		ID:          uuid.New(),
		AccountID:   in.AccountID,
		Amount:      core.RoundAmount(*in.Amount),
		Type:        in.Type,
		Category:    in.Category,
		Description: strings.TrimSpace(in.Description),
		Date:        date,
		CreatedAt:   now,
	}
	if err := t.Validate(); err != nil {
		return core.TransactionDetail{}, err
	}

	created, err := s.store.CreateTransaction(ctx, userID, t)
	if err != nil {
		return core.TransactionDetail{}, fmt.Errorf("create transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Transaction created",
		log.FieldUserID, userID,
		log.FieldAccountID, created.AccountID.String(),
		log.FieldTransactionID, created.ID.String(),
		log.FieldTxType, string(created.Type),
		log.FieldAmount, created.Amount.StringFixed(2))
	s.publishTransaction(ctx, amqp.ActionTransactionCreated, userID, created)
	return created, nil
}

func (s *LedgerService) GetTransaction(ctx context.Context, userID string, id uuid.UUID) (core.TransactionDetail, error) {
	if err := requireUser(userID); err != nil {
		return core.TransactionDetail{}, err
	}
	t, err := s.store.GetTransaction(ctx, userID, id)
	if err != nil {
		return core.TransactionDetail{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// UpdateTransaction applies a partial update. An empty patch returns the
// transaction unchanged.
func (s *LedgerService) UpdateTransaction(ctx context.Context, userID string, id uuid.UUID, patch core.TransactionPatch) (core.TransactionDetail, error) {
	if err := requireUser(userID); err != nil {
		return core.TransactionDetail{}, err
	}
	if patch.IsEmpty() {
		return s.GetTransaction(ctx, userID, id)
	}
	if patch.Amount != nil {
		amount := core.RoundAmount(*patch.Amount)
		if !amount.IsPositive() {
			return core.TransactionDetail{}, core.Invalid("amount", "must be greater than zero")
		}
		if err := core.CheckAmount("amount", amount); err != nil {
			return core.TransactionDetail{}, err
		}
		patch.Amount = &amount
	}

	updated, err := s.store.UpdateTransaction(ctx, userID, id, patch)
	if err != nil {
		return core.TransactionDetail{}, fmt.Errorf("update transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Transaction updated",
		log.FieldUserID, userID,
		log.FieldTransactionID, id.String())
	s.publishTransaction(ctx, amqp.ActionTransactionUpdated, userID, updated)
	return updated, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, userID string, id uuid.UUID) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	deleted, err := s.store.DeleteTransaction(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldUserID, userID,
		log.FieldTransactionID, id.String())
	s.publishTransaction(ctx, amqp.ActionTransactionDeleted, userID, deleted)
	return nil
}

// ListTransactions returns one page, newest first. Limit defaults to 50 and
// is capped at 200.
func (s *LedgerService) ListTransactions(ctx context.Context, userID string, in ListTransactionsInput) (TransactionPage, error) {
	if err := requireUser(userID); err != nil {
		return TransactionPage{}, err
	}

	limit, offset := DefaultPageLimit, 0
	if in.Limit != nil {
		if *in.Limit < 1 {
			return TransactionPage{}, core.Invalid("limit", "must be at least 1")
		}
		limit = min(*in.Limit, MaxPageLimit)
	}
	if in.Offset != nil {
		if *in.Offset < 0 {
			return TransactionPage{}, core.Invalid("offset", "must not be negative")
		}
		offset = *in.Offset
	}
	if in.From != nil && in.To != nil && in.To.Before(*in.From) {
		return TransactionPage{}, core.Invalid("to", "must not be before from")
	}

	txs, total, err := s.store.ListTransactions(ctx, userID, storage.TransactionFilter{
		AccountID: in.AccountID,
		Category:  in.Category,
		Type:      in.Type,
		From:      in.From,
		To:        in.To,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return TransactionPage{}, fmt.Errorf("list transactions: %w", err)
	}

	return TransactionPage{
		Transactions: txs,
		Total:        total,
		Limit:        limit,
		Offset:       offset,
		HasMore:      offset+len(txs) < total,
	}, nil
}

func (s *LedgerService) publishTransaction(ctx context.Context, action amqp.Action, userID string, t core.TransactionDetail) {
	e := amqp.NewLedgerEvent(action, userID)
	e.AccountID = t.AccountID.String()
	e.TransactionID = t.ID.String()
	publish(ctx, s.publisher, s.logger, e)
}
