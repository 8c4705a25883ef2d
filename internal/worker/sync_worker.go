// Package worker synchronizes stored expenses to the spreadsheet export.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"spendlog/internal/amqp"
	"spendlog/internal/core"
	"spendlog/internal/metrics"
	"spendlog/internal/sheets"
	"spendlog/internal/storage"
)

// SyncWorker drives the SQLite to spreadsheet pipeline. It consumes AMQP
// events as the primary path and sweeps pending rows as a backup for
// messages that were lost.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	exporter  sheets.Exporter
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, exporter sheets.Exporter, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		exporter:  exporter,
		batchSize: batchSize,
	}
}

// HandleSyncMessage exports the expense referenced by an AMQP sync event.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.ExpenseSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	expense, err := w.storage.GetExpense(ctx, msg.ID)
	if err != nil {
		var nf *core.NotFoundError
		if errors.As(err, &nf) {
			// Deleted before the sync ran; nothing left to export.
			slog.WarnContext(ctx, "Expense gone before sync, dropping message", "id", msg.ID)
			return nil
		}
		return fmt.Errorf("get expense from storage: %w", err)
	}

	if err := w.exportExpense(ctx, expense); err != nil {
		return fmt.Errorf("export expense: %w", err)
	}
	return nil
}

// HandleDeleteMessage removes the exported row for a deleted expense.
func (w *SyncWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.ExpenseDeleteMessage) error {
	slog.InfoContext(ctx, "Processing delete message", "id", msg.ID)

	if err := w.exporter.Delete(ctx, msg.ID); err != nil {
		metrics.SheetSyncs.WithLabelValues("error").Inc()
		return fmt.Errorf("delete exported row: %w", err)
	}
	metrics.SheetSyncs.WithLabelValues("success").Inc()
	return nil
}

// ProcessPendingExpenses exports rows still marked pending. This is the
// backup path for lost AMQP messages.
func (w *SyncWorker) ProcessPendingExpenses(ctx context.Context) error {
	pending, err := w.storage.PendingSyncExpenses(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending expenses: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending expenses", "count", len(pending))

	for _, p := range pending {
		expense, err := w.storage.GetExpense(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get pending expense", "id", p.ID, "error", err)
			if err := w.storage.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", err)
			}
			continue
		}
		if err := w.exportExpense(ctx, expense); err != nil {
			slog.ErrorContext(ctx, "Failed to export pending expense", "id", p.ID, "error", err)
		}
	}
	return nil
}

// StartupSyncCheck sweeps a larger pending batch once at worker start to
// recover from downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.PendingSyncExpenses(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending expenses for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending expenses found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending expenses on startup", "count", len(pending))

	synced := 0
	failed := 0
	for _, p := range pending {
		expense, err := w.storage.GetExpense(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get expense for startup sync", "id", p.ID, "error", err)
			if err := w.storage.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", err)
			}
			failed++
			continue
		}
		if err := w.exportExpense(ctx, expense); err != nil {
			slog.ErrorContext(ctx, "Failed to export expense during startup", "id", p.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)
	return nil
}

func (w *SyncWorker) exportExpense(ctx context.Context, e core.Expense) error {
	ref, err := w.exporter.Append(ctx, e)
	if err != nil {
		metrics.SheetSyncs.WithLabelValues("error").Inc()
		if markErr := w.storage.MarkSyncError(ctx, e.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", e.ID, "error", markErr)
		}
		return fmt.Errorf("append to sheet: %w", err)
	}

	metrics.SheetSyncs.WithLabelValues("success").Inc()
	if err := w.storage.MarkSynced(ctx, e.ID); err != nil {
		// The export itself worked; the row will just be retried.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", e.ID, "error", err)
	}

	slog.InfoContext(ctx, "Expense exported",
		"id", e.ID,
		"sheet_ref", ref,
		"amount_cents", e.Amount.Cents)
	return nil
}
