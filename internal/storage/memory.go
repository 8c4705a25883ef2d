package storage

import (
	"context"
	"sort"
	"sync"

	"spendlog/internal/core"
)

// MemoryRepository keeps expenses in memory behind a mutex. It backs the
// "memory" data backend and the test suites; ids are monotonic and never
// reused, matching the SQLite AUTOINCREMENT behavior.
type MemoryRepository struct {
	mu       sync.RWMutex
	expenses map[int64]core.Expense
	nextID   int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		expenses: make(map[int64]core.Expense),
		nextID:   1,
	}
}

func (r *MemoryRepository) InsertExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e.ID = r.nextID
	r.nextID++
	r.expenses[e.ID] = e
	return e, nil
}

func (r *MemoryRepository) ListExpenses(_ context.Context, order core.ListOrder) ([]core.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]core.Expense, 0, len(r.expenses))
	for _, e := range r.expenses {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if order == core.OrderByDate && out[i].Date != out[j].Date {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryRepository) GetExpense(_ context.Context, id int64) (core.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.expenses[id]
	if !ok {
		return core.Expense{}, &core.NotFoundError{ID: id}
	}
	return e, nil
}

func (r *MemoryRepository) DeleteExpense(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.expenses[id]; !ok {
		return &core.NotFoundError{ID: id}
	}
	delete(r.expenses, id)
	return nil
}

func (r *MemoryRepository) Close() error { return nil }
