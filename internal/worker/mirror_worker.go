// Package worker applies expense change events to the spreadsheet mirror.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"spendwise/internal/amqp"
	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/sheets"
)

// ExpenseReader loads the current state of an expense.
type ExpenseReader interface {
	Get(ctx context.Context, userID, id string) (core.Expense, error)
}

// MirrorWorker copies committed expense mutations into a sheets.Mirror.
// Events only carry ids, so created and updated rows are re-read from the
// store before they are written.
type MirrorWorker struct {
	store  ExpenseReader
	mirror sheets.Mirror
	logger *log.Logger

	processed atomic.Int64
	failed    atomic.Int64
}

func NewMirrorWorker(store ExpenseReader, mirror sheets.Mirror, logger *log.Logger) *MirrorWorker {
	return &MirrorWorker{
		store:  store,
		mirror: mirror,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// Handle applies one event. It satisfies amqp.Handler; a returned error
// requeues the message.
func (w *MirrorWorker) Handle(ctx context.Context, ev amqp.ExpenseChanged) error {
	w.logger.InfoContext(ctx, "Processing expense change",
		log.FieldEventOp, ev.Op,
		log.FieldExpenseID, ev.ID,
		log.FieldUserID, ev.UserID)

	if err := w.apply(ctx, ev); err != nil {
		w.failed.Add(1)
		w.logger.ErrorContext(ctx, "Failed to mirror expense change",
			log.FieldEventOp, ev.Op,
			log.FieldExpenseID, ev.ID,
			log.FieldError, err)
		return err
	}
	w.processed.Add(1)
	return nil
}

func (w *MirrorWorker) apply(ctx context.Context, ev amqp.ExpenseChanged) error {
	switch ev.Op {
	case amqp.OpDeleted:
		if err := w.mirror.DeleteExpense(ctx, ev.ID); err != nil {
			return fmt.Errorf("delete mirror row: %w", err)
		}
		return nil
	case amqp.OpCreated, amqp.OpUpdated:
		expense, err := w.store.Get(ctx, ev.UserID, ev.ID)
		if errors.Is(err, core.ErrNotFound) {
			// deleted before we got here; its own event may still be queued
			w.logger.DebugContext(ctx, "Expense gone, removing mirror row", log.FieldExpenseID, ev.ID)
			if err := w.mirror.DeleteExpense(ctx, ev.ID); err != nil {
				return fmt.Errorf("delete mirror row: %w", err)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("get expense from store: %w", err)
		}
		if err := w.mirror.UpsertExpense(ctx, expense); err != nil {
			return fmt.Errorf("upsert mirror row: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown op %q", ev.Op)
	}
}

// Stats reports how many events were applied and how many failed.
func (w *MirrorWorker) Stats() (processed, failed int64) {
	return w.processed.Load(), w.failed.Load()
}
