package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Action names the ledger change an event announces.
type Action string

const (
	ActionTransactionCreated Action = "transaction.created"
	ActionTransactionUpdated Action = "transaction.updated"
	ActionTransactionDeleted Action = "transaction.deleted"
	ActionBudgetCreated      Action = "budget.created"
)

// ErrMalformed marks a delivery that can never be processed. The consumer
// drops such messages instead of requeueing them.
var ErrMalformed = errors.New("malformed ledger event")

// LedgerEvent is a lightweight notification; consumers fetch the current
// state from the store using the ids it carries.
type LedgerEvent struct {
	EventID       string    `json:"event_id"`
	Action        Action    `json:"action"`
	UserID        string    `json:"user_id"`
	AccountID     string    `json:"account_id,omitempty"`
	TransactionID string    `json:"transaction_id,omitempty"`
	BudgetID      string    `json:"budget_id,omitempty"`
	Version       int64     `json:"version"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewLedgerEvent stamps a new event id and the current time.
func NewLedgerEvent(action Action, userID string) *LedgerEvent {
	return &LedgerEvent{
		EventID:   uuid.NewString(),
		Action:    action,
		UserID:    userID,
		Version:   1,
		Timestamp: time.Now().UTC(),
	}
}

func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Validate checks the fields every consumer relies on.
func (e *LedgerEvent) Validate() error {
	switch e.Action {
	case ActionTransactionCreated, ActionTransactionUpdated, ActionTransactionDeleted:
		if e.TransactionID == "" {
			return fmt.Errorf("%w: %s without transaction_id", ErrMalformed, e.Action)
		}
	case ActionBudgetCreated:
	default:
		return fmt.Errorf("%w: unknown action %q", ErrMalformed, e.Action)
	}
	if e.UserID == "" {
		return fmt.Errorf("%w: missing user_id", ErrMalformed)
	}
	return nil
}

// LedgerEventFromJSON decodes and validates a delivery body.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
