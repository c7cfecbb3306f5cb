package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore keeps the whole document in a single JSON file. Every mutation
// re-reads the document, changes it in memory and writes it back in full.
// An unreadable or corrupt file degrades to the empty document instead of
// failing the caller.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}
	s := &FileStore{path: path}
	if st, err := os.Stat(path); err != nil || st.Size() == 0 {
		if err := s.save(emptyDocument()); err != nil {
			return nil, fmt.Errorf("seed document: %w", err)
		}
	}
	return s, nil
}

func (s *FileStore) SaveExpense(amount float64, category Category, description string, ts time.Time) (Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	record := Expense{
		Amount:      Round2(amount),
		Category:    category,
		Description: description,
		Timestamp:   ts,
	}
	doc := s.load()
	doc.Expenses = append(doc.Expenses, record)
	if err := s.save(doc); err != nil {
		return Expense{}, fmt.Errorf("save expense: %w", err)
	}
	return record, nil
}

func (s *FileStore) Expenses(filter ExpenseFilter) ([]Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.load()
	var out []Expense
	for _, e := range doc.Expenses {
		if filter.Start != nil && e.Timestamp.Before(*filter.Start) {
			continue
		}
		if filter.End != nil && e.Timestamp.After(*filter.End) {
			continue
		}
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *FileStore) TotalsByCategory(year int, month time.Month) (map[Category]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.load()
	totals := make(map[Category]float64)
	for _, e := range doc.Expenses {
		if e.Timestamp.Year() != year || e.Timestamp.Month() != month {
			continue
		}
		cat := e.Category
		if cat == "" {
			cat = CategoryOther
		}
		totals[cat] = Round2(totals[cat] + e.Amount)
	}
	return totals, nil
}

func (s *FileStore) SaveGoal(name string, amount float64, deadline, description string) (Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	goal := Goal{
		Name:        name,
		Amount:      Round2(amount),
		Deadline:    deadline,
		Description: description,
		Created:     time.Now().UTC(),
	}
	doc := s.load()
	doc.Goals = append(doc.Goals, goal)
	if err := s.save(doc); err != nil {
		return Goal{}, fmt.Errorf("save goal: %w", err)
	}
	return goal, nil
}

func (s *FileStore) Goals() ([]Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.load()
	return doc.Goals, nil
}

func (s *FileStore) SetBudgetMonthly(amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.load()
	doc.Preferences.BudgetMonthly = Round2(amount)
	if err := s.save(doc); err != nil {
		return fmt.Errorf("save budget: %w", err)
	}
	return nil
}

func (s *FileStore) BudgetMonthly() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.load()
	if doc.Preferences.BudgetMonthly <= 0 {
		return DefaultMonthlyBudget, nil
	}
	return doc.Preferences.BudgetMonthly, nil
}

// load reads the full document. Any read or decode failure yields the empty
// document; unreadable state is silently dropped rather than surfaced.
func (s *FileStore) load() Document {
	f, err := os.Open(s.path)
	if err != nil {
		return emptyDocument()
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
		}
	}(f)
	var doc Document
	dec := json.NewDecoder(f)
	if err := dec.Decode(&doc); err != nil {
		return emptyDocument()
	}
	if doc.Expenses == nil {
		doc.Expenses = []Expense{}
	}
	if doc.Goals == nil {
		doc.Goals = []Goal{}
	}
	return doc
}

func (s *FileStore) save(doc Document) error {
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
		}
	}(f)
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
