package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	p := filepath.Join(t.TempDir(), "records.json")
	s, err := NewFileStore(p)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	return s
}

func TestFileStore_SaveAndListExpenses(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 3; i++ {
		ts := time.Date(2025, time.March, 10+i, 12, 0, 0, 0, time.UTC)
		if _, err := s.SaveExpense(10.5, CategoryFood, "lunch", ts); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	got, err := s.Expenses(ExpenseFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 expenses, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.Before(got[i-1].Timestamp) {
			t.Fatalf("insertion order not preserved: %+v", got)
		}
	}
}

func TestFileStore_ExpenseFilter(t *testing.T) {
	s := newTestStore(t)

	mk := func(day int, cat Category) {
		ts := time.Date(2025, time.March, day, 0, 0, 0, 0, time.UTC)
		if _, err := s.SaveExpense(5, cat, "x", ts); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	mk(1, CategoryFood)
	mk(15, CategoryTransport)
	mk(30, CategoryFood)

	start := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.March, 30, 0, 0, 0, 0, time.UTC)
	got, err := s.Expenses(ExpenseFilter{Start: &start, End: &end})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("inclusive range: want 2, got %d", len(got))
	}

	got, err = s.Expenses(ExpenseFilter{Category: CategoryFood})
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("category filter: want 2, got %d", len(got))
	}
}

func TestFileStore_TotalsByCategory(t *testing.T) {
	s := newTestStore(t)

	in := time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC)
	out := time.Date(2025, time.May, 31, 23, 59, 59, 0, time.UTC)
	if _, err := s.SaveExpense(10.105, CategoryFood, "a", in); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := s.SaveExpense(20.0, CategoryFood, "b", in); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := s.SaveExpense(99, CategoryFood, "other month", out); err != nil {
		t.Fatalf("save: %v", err)
	}

	totals, err := s.TotalsByCategory(2025, time.June)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	// 10.105 rounds to 10.11 on save
	if totals[CategoryFood] != 30.11 {
		t.Fatalf("want food total 30.11, got %v", totals[CategoryFood])
	}
	if len(totals) != 1 {
		t.Fatalf("unexpected categories: %v", totals)
	}
}

func TestFileStore_BudgetDefaultAndIdempotence(t *testing.T) {
	s := newTestStore(t)

	b, err := s.BudgetMonthly()
	if err != nil {
		t.Fatalf("get default: %v", err)
	}
	if b != DefaultMonthlyBudget {
		t.Fatalf("want default %d, got %v", DefaultMonthlyBudget, b)
	}

	for i := 0; i < 2; i++ {
		if err := s.SetBudgetMonthly(1500); err != nil {
			t.Fatalf("set %d: %v", i, err)
		}
	}
	b, _ = s.BudgetMonthly()
	if b != 1500 {
		t.Fatalf("want 1500, got %v", b)
	}
}

func TestFileStore_Goals(t *testing.T) {
	s := newTestStore(t)

	g, err := s.SaveGoal("Vacation", 1200.005, "2026-06-01", "trip")
	if err != nil {
		t.Fatalf("save goal: %v", err)
	}
	if g.Amount != 1200.01 {
		t.Fatalf("amount not rounded: %v", g.Amount)
	}
	goals, err := s.Goals()
	if err != nil {
		t.Fatalf("goals: %v", err)
	}
	if len(goals) != 1 || goals[0].Name != "Vacation" {
		t.Fatalf("unexpected goals: %+v", goals)
	}
}

func TestFileStore_CorruptFileDegradesToEmpty(t *testing.T) {
	p := filepath.Join(t.TempDir(), "records.json")
	s, err := NewFileStore(p)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := os.WriteFile(p, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("corrupt: %v", err)
	}

	got, err := s.Expenses(ExpenseFilter{})
	if err != nil {
		t.Fatalf("read after corruption: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("want empty, got %+v", got)
	}
	b, err := s.BudgetMonthly()
	if err != nil || b != DefaultMonthlyBudget {
		t.Fatalf("want default budget after corruption, got %v (%v)", b, err)
	}

	// a save after corruption rewrites a valid document
	if _, err := s.SaveExpense(1, CategoryOther, "fresh", time.Time{}); err != nil {
		t.Fatalf("save after corruption: %v", err)
	}
	got, _ = s.Expenses(ExpenseFilter{})
	if len(got) != 1 {
		t.Fatalf("want 1 expense, got %d", len(got))
	}
}
