// Package worker reacts to ledger events: it re-checks budget alerts and
// mirrors new transactions into the export sheet.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/services"
	"finboard/internal/sheets"

	"github.com/google/uuid"
)

// TransactionReader fetches the current state of an event's transaction.
type TransactionReader interface {
	GetTransaction(ctx context.Context, userID string, id uuid.UUID) (core.TransactionDetail, error)
}

// SessionPurger drops expired sessions during the sweep.
type SessionPurger interface {
	Purge(ctx context.Context) (int, error)
}

type Config struct {
	SweepInterval time.Duration
	// Location renders exported dates.
	Location *time.Location
}

type Worker struct {
	alerts   *services.AlertService
	txs      TransactionReader
	exporter sheets.TransactionExporter
	sessions SessionPurger
	now      services.Clock
	cfg      Config
	logger   *log.Logger
}

// New builds a worker. exporter and sessions may be nil.
func New(alerts *services.AlertService, txs TransactionReader, exporter sheets.TransactionExporter, sessions SessionPurger, now services.Clock, cfg Config, logger *log.Logger) *Worker {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 15 * time.Minute
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Worker{
		alerts:   alerts,
		txs:      txs,
		exporter: exporter,
		sessions: sessions,
		now:      now,
		cfg:      cfg,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent processes one ledger event. Errors are transient unless they
// wrap amqp.ErrMalformed.
func (w *Worker) HandleEvent(ctx context.Context, e *amqp.LedgerEvent) error {
	l := w.logger.With(log.FieldEventID, e.EventID, log.FieldEventAction, string(e.Action), log.FieldUserID, e.UserID)

	recorded, err := w.alerts.Check(ctx, e.UserID, w.now())
	if err != nil {
		return fmt.Errorf("check budget alerts: %w", err)
	}
	if len(recorded) > 0 {
		l.InfoContext(ctx, "Budget alerts raised", "count", len(recorded))
	}

	if w.exporter == nil || e.Action != amqp.ActionTransactionCreated {
		return nil
	}
	return w.export(ctx, l, e)
}

func (w *Worker) export(ctx context.Context, l *log.Logger, e *amqp.LedgerEvent) error {
	id, err := uuid.Parse(e.TransactionID)
	if err != nil {
		return fmt.Errorf("%w: transaction_id %q", amqp.ErrMalformed, e.TransactionID)
	}

	done, err := w.exporter.Exported(ctx, id.String())
	if err != nil {
		return fmt.Errorf("check exported rows: %w", err)
	}
	if done {
		l.DebugContext(ctx, "Transaction already exported", log.FieldTransactionID, id.String())
		return nil
	}

	t, err := w.txs.GetTransaction(ctx, e.UserID, id)
	if errors.Is(err, core.ErrNotFound) {
		l.InfoContext(ctx, "Transaction gone before export, skipping", log.FieldTransactionID, id.String())
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}

	ref, err := w.exporter.Append(ctx, sheets.RowFromTransaction(t, w.cfg.Location))
	if err != nil {
		return fmt.Errorf("append to sheet: %w", err)
	}
	l.InfoContext(ctx, "Exported transaction",
		log.FieldOperation, log.OpExport,
		log.FieldTransactionID, id.String(),
		log.FieldSheetsRef, ref)
	return nil
}

// Sweep runs one budget sweep and purges expired sessions.
func (w *Worker) Sweep(ctx context.Context) {
	if _, err := w.alerts.Sweep(ctx); err != nil {
		w.logger.ErrorContextErr(ctx, "Budget sweep had failures", err)
	}
	if w.sessions != nil {
		n, err := w.sessions.Purge(ctx)
		if err != nil {
			w.logger.ErrorContextErr(ctx, "Failed to purge expired sessions", err)
		} else if n > 0 {
			w.logger.InfoContext(ctx, "Purged expired sessions", "count", n)
		}
	}
}

// RunSweeper sweeps once immediately, then every SweepInterval until ctx is done.
func (w *Worker) RunSweeper(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Sweeper started", "interval", w.cfg.SweepInterval.String())
	w.Sweep(ctx)

	ticker := time.NewTicker(w.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "Sweeper stopped")
			return nil
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}
