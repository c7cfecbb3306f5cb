package storage

import (
	"math"
	"time"
)

// Category classifies an expense. The set is fixed; Categories lists the
// members in their evaluation order, which keyword matching relies on.
type Category string

const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryEntertainment Category = "entertainment"
	CategoryShopping      Category = "shopping"
	CategoryBills         Category = "bills"
	CategoryHealthcare    Category = "healthcare"
	CategoryOther         Category = "other"
)

var Categories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryEntertainment,
	CategoryShopping,
	CategoryBills,
	CategoryHealthcare,
	CategoryOther,
}

// DefaultMonthlyBudget is used until the user sets their own budget.
const DefaultMonthlyBudget = 1000

// Expense is a single spending record. Expenses are append-only and never
// mutated after creation.
type Expense struct {
	Amount      float64   `json:"amount"`
	Category    Category  `json:"category"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// Goal is a savings target. The deadline is kept as the raw string the user
// supplied; consumers parse it and treat unparseable values as absent.
type Goal struct {
	Name        string    `json:"name"`
	Amount      float64   `json:"amount"`
	Deadline    string    `json:"deadline,omitempty"`
	Description string    `json:"description"`
	Created     time.Time `json:"created"`
}

// Preferences holds user-level settings persisted alongside the records.
type Preferences struct {
	BudgetMonthly float64 `json:"budget_monthly"`
}

// Document is the full persisted state. The store always reads and writes it
// as a whole; there are no partial updates.
type Document struct {
	Expenses    []Expense   `json:"expenses"`
	Goals       []Goal      `json:"goals"`
	Preferences Preferences `json:"preferences"`
}

func emptyDocument() Document {
	return Document{
		Expenses:    []Expense{},
		Goals:       []Goal{},
		Preferences: Preferences{BudgetMonthly: DefaultMonthlyBudget},
	}
}

// ExpenseFilter narrows Expenses results. Nil bounds are open; set bounds are
// inclusive on the expense timestamp. An empty Category matches everything.
type ExpenseFilter struct {
	Start    *time.Time
	End      *time.Time
	Category Category
}

// Store abstracts persistence of expenses, goals and the budget preference.
// Implementations can be file-based, database, etc.
// Expenses and Goals must preserve insertion order.
// Implementations must be safe for concurrent use within one process.
type Store interface {
	SaveExpense(amount float64, category Category, description string, ts time.Time) (Expense, error)
	Expenses(filter ExpenseFilter) ([]Expense, error)
	TotalsByCategory(year int, month time.Month) (map[Category]float64, error)
	SaveGoal(name string, amount float64, deadline, description string) (Goal, error)
	Goals() ([]Goal, error)
	SetBudgetMonthly(amount float64) error
	BudgetMonthly() (float64, error)
}

// Round2 rounds a monetary value to two decimal places. All amounts are
// stored and reported at this precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
