// Package service implements the expense store: validated CRUD over an
// injected persistence collaborator, plus best-effort event publication
// for the spreadsheet export pipeline.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"spendlog/internal/core"
)

// Repository is the persistence collaborator behind the store. Both the
// SQLite and the in-memory implementations satisfy it.
type Repository interface {
	InsertExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	ListExpenses(ctx context.Context, order core.ListOrder) ([]core.Expense, error)
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
	Close() error
}

// EventPublisher publishes expense lifecycle events. Nil means events
// are disabled; the store never fails an operation over a publish error.
type EventPublisher interface {
	PublishExpenseSync(ctx context.Context, id, version int64) error
	PublishExpenseDelete(ctx context.Context, id int64) error
}

// ExpenseService is the single source of truth for the expense
// collection. Validation happens here, at the boundary where raw input
// enters the system; the repository only ever sees valid records.
type ExpenseService struct {
	repo   Repository
	events EventPublisher
}

func NewExpenseService(repo Repository, events EventPublisher) *ExpenseService {
	return &ExpenseService{repo: repo, events: events}
}

// Add validates the raw input and persists a new expense. A failed add
// leaves the collection unchanged: validation happens before the write,
// and the write itself is a single atomic statement.
func (s *ExpenseService) Add(ctx context.Context, in core.ExpenseInput) (core.Expense, error) {
	expense, err := core.NewExpense(in)
	if err != nil {
		return core.Expense{}, err
	}

	created, err := s.repo.InsertExpense(ctx, expense)
	if err != nil {
		return core.Expense{}, fmt.Errorf("add expense: %w", err)
	}

	// Event publication is best-effort; the expense is already durable.
	if s.events != nil {
		if err := s.events.PublishExpenseSync(ctx, created.ID, 1); err != nil {
			slog.ErrorContext(ctx, "Failed to publish expense sync event",
				"id", created.ID, "error", err)
		}
	}

	return created, nil
}

// List returns the full snapshot in the requested order.
func (s *ExpenseService) List(ctx context.Context, order core.ListOrder) ([]core.Expense, error) {
	expenses, err := s.repo.ListExpenses(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// Get returns one record or *core.NotFoundError.
func (s *ExpenseService) Get(ctx context.Context, id int64) (core.Expense, error) {
	return s.repo.GetExpense(ctx, id)
}

// Delete hard-deletes one record. Deleting an absent id reports
// *core.NotFoundError, including on a repeated delete.
func (s *ExpenseService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteExpense(ctx, id); err != nil {
		return err
	}

	if s.events != nil {
		if err := s.events.PublishExpenseDelete(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to publish expense delete event",
				"id", id, "error", err)
		}
	}

	return nil
}

// Insights computes aggregate statistics over the current snapshot.
func (s *ExpenseService) Insights(ctx context.Context) (core.Insights, error) {
	expenses, err := s.repo.ListExpenses(ctx, core.OrderByID)
	if err != nil {
		return core.Insights{}, fmt.Errorf("load snapshot: %w", err)
	}
	return core.ComputeInsights(expenses)
}

// Summaries computes per-date totals over the current snapshot.
func (s *ExpenseService) Summaries(ctx context.Context) ([]core.DailyTotal, error) {
	expenses, err := s.repo.ListExpenses(ctx, core.OrderByID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return core.Summarize(expenses), nil
}

// Close releases the repository.
func (s *ExpenseService) Close() error {
	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			return fmt.Errorf("close repository: %w", err)
		}
	}
	return nil
}
