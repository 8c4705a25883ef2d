// Package memory is an in-process exporter used in tests and local runs
// without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"spendlog/internal/core"
)

type Store struct {
	mu    sync.Mutex
	items map[int64]core.Expense
	order []int64
}

func New() *Store {
	return &Store{items: make(map[int64]core.Expense)}
}

// Append stores the expense and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[e.ID]; !exists {
		s.order = append(s.order, e.ID)
	}
	s.items[e.ID] = e
	return fmt.Sprintf("mem:%d", e.ID), nil
}

// Delete removes the row for the given id. Deleting an id that was never
// appended is not an error, mirroring how a spreadsheet row that is
// already gone needs no further work.
func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[id]; !exists {
		return nil
	}
	delete(s.items, id)
	for i, got := range s.order {
		if got == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Rows returns the stored expenses in append order.
func (s *Store) Rows() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}
