package service

import (
	"context"
	"errors"
	"testing"

	"spendlog/internal/core"
	"spendlog/internal/storage"
)

type recordingPublisher struct {
	synced  []int64
	deleted []int64
	fail    bool
}

func (p *recordingPublisher) PublishExpenseSync(_ context.Context, id, _ int64) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.synced = append(p.synced, id)
	return nil
}

func (p *recordingPublisher) PublishExpenseDelete(_ context.Context, id int64) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.deleted = append(p.deleted, id)
	return nil
}

func newTestService() (*ExpenseService, *recordingPublisher) {
	pub := &recordingPublisher{}
	return NewExpenseService(storage.NewMemoryRepository(), pub), pub
}

func validInput() core.ExpenseInput {
	return core.ExpenseInput{
		Date:        "2026-01-30",
		Category:    "Food",
		Amount:      "15.50",
		Description: "lunch",
	}
}

func TestAddThenGet(t *testing.T) {
	svc, pub := newTestService()
	ctx := context.Background()

	created, err := svc.Add(ctx, validInput())
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected assigned id")
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != created {
		t.Fatalf("get mismatch: %+v != %+v", got, created)
	}
	if len(pub.synced) != 1 || pub.synced[0] != created.ID {
		t.Fatalf("expected one sync event for %d, got %v", created.ID, pub.synced)
	}
}

func TestAddInvalidLeavesCollectionUnchanged(t *testing.T) {
	svc, pub := newTestService()
	ctx := context.Background()

	bads := []core.ExpenseInput{
		{Date: "2026-13-40", Category: "Food", Amount: "1"},
		{Date: "2026-01-01", Category: "Snacks", Amount: "1"},
		{Date: "2026-01-01", Category: "Food", Amount: "0"},
		{Date: "2026-01-01", Category: "Food", Amount: "-2"},
		{Date: "2026-01-01", Category: "Food", Amount: "abc"},
	}
	for i, in := range bads {
		_, err := svc.Add(ctx, in)
		var verr *core.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("case %d: expected ValidationError, got %v", i, err)
		}
	}

	all, err := svc.List(ctx, core.OrderByID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("collection must be unchanged after failed adds, got %d records", len(all))
	}
	if len(pub.synced) != 0 {
		t.Fatalf("no events expected for failed adds, got %v", pub.synced)
	}
}

func TestDeleteSurfacesNotFoundTwice(t *testing.T) {
	svc, pub := newTestService()
	ctx := context.Background()

	created, err := svc.Add(ctx, validInput())
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); err == nil {
		t.Fatalf("get after delete must fail")
	}

	var nf *core.NotFoundError
	if err := svc.Delete(ctx, created.ID); !errors.As(err, &nf) {
		t.Fatalf("second delete must report NotFoundError, got %v", err)
	}
	if len(pub.deleted) != 1 {
		t.Fatalf("expected exactly one delete event, got %v", pub.deleted)
	}
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	pub := &recordingPublisher{fail: true}
	svc := NewExpenseService(storage.NewMemoryRepository(), pub)
	ctx := context.Background()

	created, err := svc.Add(ctx, validInput())
	if err != nil {
		t.Fatalf("add must succeed when the broker is down: %v", err)
	}
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete must succeed when the broker is down: %v", err)
	}
}

func TestNilPublisher(t *testing.T) {
	svc := NewExpenseService(storage.NewMemoryRepository(), nil)
	if _, err := svc.Add(context.Background(), validInput()); err != nil {
		t.Fatalf("add with nil publisher: %v", err)
	}
}

func TestInsightsEmptyDataset(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Insights(context.Background())
	if !errors.Is(err, core.ErrEmptyDataset) {
		t.Fatalf("expected ErrEmptyDataset, got %v", err)
	}
}

func TestInsightsAndSummaries(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	seed := []core.ExpenseInput{
		{Date: "2026-01-01", Category: "Food", Amount: "20.00"},
		{Date: "2026-01-01", Category: "Transport", Amount: "5.00"},
		{Date: "2026-01-02", Category: "Food", Amount: "10.00"},
	}
	for _, in := range seed {
		if _, err := svc.Add(ctx, in); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	ins, err := svc.Insights(ctx)
	if err != nil {
		t.Fatalf("insights: %v", err)
	}
	if ins.AverageSpending.Cents != 1167 || ins.HighestExpense.Cents != 2000 {
		t.Fatalf("unexpected insights %+v", ins)
	}
	if ins.MostCommonCategory != core.CategoryFood || ins.CategoryCount != 2 {
		t.Fatalf("unexpected mode %+v", ins)
	}

	sums, err := svc.Summaries(ctx)
	if err != nil {
		t.Fatalf("summaries: %v", err)
	}
	if len(sums) != 2 {
		t.Fatalf("expected two groups, got %d", len(sums))
	}
	if sums[0].Total.Cents != 2500 || sums[1].Total.Cents != 1000 {
		t.Fatalf("unexpected totals %+v", sums)
	}
}
