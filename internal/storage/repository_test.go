package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"spendlog/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "spendlog_test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustInsert(t *testing.T, repo *SQLiteRepository, date core.Date, cat core.Category, cents int64) core.Expense {
	t.Helper()
	e, err := repo.InsertExpense(context.Background(), core.Expense{
		Date:        date,
		Category:    cat,
		Amount:      core.Money{Cents: cents},
		Description: "test",
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	return e
}

func TestInsertAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	in := core.Expense{
		Date:        core.NewDate(2026, 1, 30),
		Category:    core.CategoryFood,
		Amount:      core.Money{Cents: 1550},
		Description: "groceries",
	}
	created, err := repo.InsertExpense(ctx, in)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected assigned id")
	}

	got, err := repo.GetExpense(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != created {
		t.Fatalf("get mismatch: %+v != %+v", got, created)
	}
}

func TestGetMissing(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetExpense(context.Background(), 42)
	var nf *core.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.ID != 42 {
		t.Fatalf("expected id 42 in error, got %d", nf.ID)
	}
}

func TestDeleteTwice(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	e := mustInsert(t, repo, core.NewDate(2026, 1, 1), core.CategoryBills, 700)
	if err := repo.DeleteExpense(ctx, e.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if _, err := repo.GetExpense(ctx, e.ID); err == nil {
		t.Fatalf("expected get to fail after delete")
	}

	var nf *core.NotFoundError
	if err := repo.DeleteExpense(ctx, e.ID); !errors.As(err, &nf) {
		t.Fatalf("second delete must report NotFoundError, got %v", err)
	}
}

func TestIDsNeverReused(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := mustInsert(t, repo, core.NewDate(2026, 1, 1), core.CategoryFood, 100)
	if err := repo.DeleteExpense(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	second := mustInsert(t, repo, core.NewDate(2026, 1, 2), core.CategoryFood, 200)
	if second.ID <= first.ID {
		t.Fatalf("id %d reused after deleting %d", second.ID, first.ID)
	}
}

func TestListOrdering(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// Inserted out of date order on purpose.
	a := mustInsert(t, repo, core.NewDate(2026, 3, 1), core.CategoryFood, 100)
	b := mustInsert(t, repo, core.NewDate(2026, 1, 1), core.CategoryBills, 200)
	c := mustInsert(t, repo, core.NewDate(2026, 2, 1), core.CategoryOther, 300)

	byID, err := repo.ListExpenses(ctx, core.OrderByID)
	if err != nil {
		t.Fatalf("list by id: %v", err)
	}
	if len(byID) != 3 || byID[0].ID != a.ID || byID[1].ID != b.ID || byID[2].ID != c.ID {
		t.Fatalf("id order wrong: %+v", byID)
	}

	byDate, err := repo.ListExpenses(ctx, core.OrderByDate)
	if err != nil {
		t.Fatalf("list by date: %v", err)
	}
	if byDate[0].ID != b.ID || byDate[1].ID != c.ID || byDate[2].ID != a.ID {
		t.Fatalf("date order wrong: %+v", byDate)
	}

	// list() is idempotent without intervening mutation.
	again, err := repo.ListExpenses(ctx, core.OrderByID)
	if err != nil {
		t.Fatalf("list again: %v", err)
	}
	for i := range byID {
		if again[i] != byID[i] {
			t.Fatalf("repeated list diverged at %d", i)
		}
	}
}

func TestListEmpty(t *testing.T) {
	repo := newTestRepo(t)
	got, err := repo.ListExpenses(context.Background(), core.OrderByID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty list, got %+v", got)
	}
}

func TestSyncStatusLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	e := mustInsert(t, repo, core.NewDate(2026, 1, 1), core.CategoryFood, 100)

	pending, err := repo.PendingSyncExpenses(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != e.ID {
		t.Fatalf("expected one pending row for %d, got %+v", e.ID, pending)
	}

	if err := repo.MarkSynced(ctx, e.ID); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	pending, err = repo.PendingSyncExpenses(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending rows, got %+v", pending)
	}
}
