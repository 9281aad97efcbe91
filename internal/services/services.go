// Package services holds the use cases behind the HTTP API and the worker.
// Services validate input, apply defaults, talk to the store and publish
// ledger events; the pure calculations live in core.
package services

import (
	"context"
	"strings"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/core"
	"finboard/internal/log"
)

// EventPublisher announces ledger changes. *amqp.Client implements it.
type EventPublisher interface {
	Publish(ctx context.Context, e *amqp.LedgerEvent) error
}

// Clock returns the reference time for a request. Production clocks return
// the current time in the configured zone.
type Clock func() time.Time

// ClockIn returns a Clock reading the wall clock in loc.
func ClockIn(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return func() time.Time { return time.Now().In(loc) }
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return core.ErrUnauthorized
	}
	return nil
}

// publish sends e best effort: the ledger write already succeeded, so a
// broker failure is only logged.
func publish(ctx context.Context, p EventPublisher, logger *log.Logger, e *amqp.LedgerEvent) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		logger.WarnContext(ctx, "Failed to publish ledger event",
			log.FieldEventAction, string(e.Action),
			log.FieldUserID, e.UserID,
			log.FieldError, err)
	}
}
