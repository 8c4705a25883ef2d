package core

import "testing"

func TestSummarizeEmpty(t *testing.T) {
	if got := Summarize(nil); len(got) != 0 {
		t.Fatalf("expected empty summary, got %v", got)
	}
}

func TestSummarizeSingleDate(t *testing.T) {
	expenses := []Expense{
		{Date: NewDate(2026, 1, 30), Category: CategoryFood, Amount: Money{Cents: 1000}},
		{Date: NewDate(2026, 1, 30), Category: CategoryBills, Amount: Money{Cents: 1550}},
	}
	got := Summarize(expenses)
	if len(got) != 1 {
		t.Fatalf("expected one group, got %d", len(got))
	}
	if got[0].Date != NewDate(2026, 1, 30) {
		t.Fatalf("unexpected date %v", got[0].Date)
	}
	if got[0].Total.Cents != 2550 {
		t.Fatalf("expected exact total 2550, got %d", got[0].Total.Cents)
	}
}

func TestSummarizeOrderedByDate(t *testing.T) {
	expenses := []Expense{
		{Date: NewDate(2026, 3, 1), Amount: Money{Cents: 300}, Category: CategoryOther},
		{Date: NewDate(2026, 1, 1), Amount: Money{Cents: 100}, Category: CategoryOther},
		{Date: NewDate(2026, 2, 1), Amount: Money{Cents: 200}, Category: CategoryOther},
		{Date: NewDate(2026, 1, 1), Amount: Money{Cents: 50}, Category: CategoryFood},
	}
	got := Summarize(expenses)
	if len(got) != 3 {
		t.Fatalf("expected three groups, got %d", len(got))
	}
	wantDates := []Date{NewDate(2026, 1, 1), NewDate(2026, 2, 1), NewDate(2026, 3, 1)}
	wantTotals := []int64{150, 200, 300}
	for i := range got {
		if got[i].Date != wantDates[i] {
			t.Fatalf("group %d: expected date %v, got %v", i, wantDates[i], got[i].Date)
		}
		if got[i].Total.Cents != wantTotals[i] {
			t.Fatalf("group %d: expected total %d, got %d", i, wantTotals[i], got[i].Total.Cents)
		}
	}
}
