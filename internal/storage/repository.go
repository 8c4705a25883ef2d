package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"spendlog/internal/core"

	_ "modernc.org/sqlite"
)

// Sync states for the spreadsheet export pipeline.
const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

// PendingExpense is the minimal row shape the export worker needs to
// build a queue message.
type PendingExpense struct {
	ID        int64
	Version   int64
	CreatedAt time.Time
}

// SQLiteRepository owns the expenses table. Every exported method is a
// single statement, so each call either fully applies or fully fails.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// InsertExpense persists a validated expense and returns it with the
// freshly assigned id.
func (r *SQLiteRepository) InsertExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO expenses (date, category, amount_cents, description)
		 VALUES (?, ?, ?, ?)
		 RETURNING id`,
		e.Date.String(), string(e.Category), e.Amount.Cents, e.Description,
	).Scan(&e.ID)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", e.ID,
		"date", e.Date.String(),
		"category", e.Category,
		"amount_cents", e.Amount.Cents)

	return e, nil
}

// ListExpenses returns the full snapshot in the requested order. The
// default id order is insertion order; date order breaks same-day ties
// by id so two calls without an intervening mutation always match.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, order core.ListOrder) ([]core.Expense, error) {
	query := `SELECT id, date, category, amount_cents, description FROM expenses ORDER BY id ASC`
	if order == core.OrderByDate {
		query = `SELECT id, date, category, amount_cents, description FROM expenses ORDER BY date ASC, id ASC`
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]core.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	return expenses, nil
}

// GetExpense returns a single record or *core.NotFoundError.
func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, date, category, amount_cents, description FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, &core.NotFoundError{ID: id}
	}
	if err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

// DeleteExpense hard-deletes a record. A second delete of the same id
// reports *core.NotFoundError rather than silently succeeding.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense: rows affected: %w", err)
	}
	if n == 0 {
		return &core.NotFoundError{ID: id}
	}

	slog.InfoContext(ctx, "Expense deleted", "id", id)
	return nil
}

// PendingSyncExpenses returns rows not yet mirrored to the spreadsheet.
func (r *SQLiteRepository) PendingSyncExpenses(ctx context.Context, limit int) ([]PendingExpense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, sync_version, created_at FROM expenses
		 WHERE sync_status = ? ORDER BY id ASC LIMIT ?`, SyncPending, limit)
	if err != nil {
		return nil, fmt.Errorf("pending sync expenses: %w", err)
	}
	defer rows.Close()

	var pending []PendingExpense
	for rows.Next() {
		var p PendingExpense
		if err := rows.Scan(&p.ID, &p.Version, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending expense: %w", err)
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pending sync expenses: %w", err)
	}
	return pending, nil
}

// MarkSynced records a successful spreadsheet append for the row.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET sync_status = ? WHERE id = ?`, SyncDone, id); err != nil {
		return fmt.Errorf("mark expense synced: %w", err)
	}
	return nil
}

// MarkSyncError flags the row for the periodic catch-up scan.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET sync_status = ? WHERE id = ?`, SyncError, id); err != nil {
		return fmt.Errorf("mark expense sync error: %w", err)
	}
	slog.WarnContext(ctx, "Expense marked with sync error", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e        core.Expense
		dateStr  string
		category string
	)
	if err := row.Scan(&e.ID, &dateStr, &category, &e.Amount.Cents, &e.Description); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Expense{}, err
		}
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}

	date, err := core.ParseDate(dateStr)
	if err != nil {
		return core.Expense{}, fmt.Errorf("stored date %q: %w", dateStr, err)
	}
	e.Date = date
	e.Category = core.Category(category)
	return e, nil
}
