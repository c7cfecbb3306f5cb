// Package analytics derives budget, goal and advice figures from the record
// store. All computations are deterministic; the optional prose summarizer
// lives at the orchestration layer.
package analytics

import (
	"fmt"
	"strings"
	"time"

	"finance-coach/internal/storage"
	"finance-coach/internal/tips"
)

const (
	StatusOK         = "OK"
	StatusOverBudget = "Over budget"
)

// Spending thresholds for the trailing-30-day advice rules.
const (
	entertainmentThreshold = 100
	foodThreshold          = 200
	transportThreshold     = 150
)

const adviceWindowDays = 30

// webTipLimit bounds how many external tip summaries are appended to advice.
const webTipLimit = 3

type Engine struct {
	store storage.Store
	now   func() time.Time
}

func New(store storage.Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// BudgetSummary is the structured result of a current-month variance check.
type BudgetSummary struct {
	Totals    map[storage.Category]float64 `json:"totals"`
	Budget    float64                      `json:"budget"`
	Spent     float64                      `json:"spent"`
	Remaining float64                      `json:"remaining"`
	Status    string                       `json:"status"`
}

// BudgetSummary computes spending against the monthly budget for the current
// calendar month.
func (e *Engine) BudgetSummary() (BudgetSummary, error) {
	now := e.now()
	totals, err := e.store.TotalsByCategory(now.Year(), now.Month())
	if err != nil {
		return BudgetSummary{}, fmt.Errorf("load totals: %w", err)
	}
	budget, err := e.store.BudgetMonthly()
	if err != nil {
		return BudgetSummary{}, fmt.Errorf("load budget: %w", err)
	}
	var spent float64
	for _, v := range totals {
		spent += v
	}
	spent = storage.Round2(spent)
	remaining := storage.Round2(budget - spent)
	status := StatusOK
	if remaining < 0 {
		status = StatusOverBudget
	}
	return BudgetSummary{
		Totals:    totals,
		Budget:    storage.Round2(budget),
		Spent:     spent,
		Remaining: remaining,
		Status:    status,
	}, nil
}

// FallbackText renders the summary deterministically. It reproduces every
// numeric field and the status flag, and is used whenever the prose
// summarizer is absent or fails.
func (s BudgetSummary) FallbackText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Budget: $%.2f\n", s.Budget)
	fmt.Fprintf(&b, "Spent: $%.2f\n", s.Spent)
	fmt.Fprintf(&b, "Remaining: $%.2f (%s)\n", s.Remaining, s.Status)
	b.WriteString("Category totals:")
	for _, cat := range storage.Categories {
		if v, ok := s.Totals[cat]; ok {
			fmt.Fprintf(&b, "\n- %s: $%.2f", cat, v)
		}
	}
	if s.Remaining < 0 {
		b.WriteString("\nWarning: You're over budget. Consider cutting discretionary spend and reviewing subscriptions.")
	} else {
		b.WriteString("\nTip: Automate savings by transferring remaining funds to a savings account.")
	}
	return b.String()
}

// GoalProgress projects savings needed for a goal. Found is false when no
// goal matched; that is an informational outcome, not an error.
type GoalProgress struct {
	Found                   bool
	Goal                    storage.Goal
	EstimatedMonthlySavings float64
	RequiredMonthlySavings  float64
	// MonthsLeft is zero when the goal has no usable deadline; the
	// projection then falls back to a one-year horizon.
	MonthsLeft int
}

// GoalProgress selects the first goal whose name equals name, or the first
// goal overall when name is empty.
func (e *Engine) GoalProgress(name string) (GoalProgress, error) {
	goals, err := e.store.Goals()
	if err != nil {
		return GoalProgress{}, fmt.Errorf("load goals: %w", err)
	}
	var selected *storage.Goal
	for i := range goals {
		if name == "" || goals[i].Name == name {
			selected = &goals[i]
			break
		}
	}
	if selected == nil {
		return GoalProgress{}, nil
	}

	summary, err := e.BudgetSummary()
	if err != nil {
		return GoalProgress{}, err
	}
	estimated := summary.Budget - summary.Spent
	if estimated < 0 {
		estimated = 0
	}

	now := e.now()
	monthsLeft := 0
	if dl, ok := parseDeadline(selected.Deadline); ok {
		monthsLeft = (dl.Year()*12 + int(dl.Month())) - (now.Year()*12 + int(now.Month()))
		if monthsLeft < 0 {
			monthsLeft = 0
		}
	}
	var required float64
	if monthsLeft > 0 {
		required = selected.Amount / float64(monthsLeft)
	} else {
		// default to a one-year horizon when no usable deadline exists
		required = selected.Amount / 12
	}

	return GoalProgress{
		Found:                   true,
		Goal:                    *selected,
		EstimatedMonthlySavings: storage.Round2(estimated),
		RequiredMonthlySavings:  storage.Round2(required),
		MonthsLeft:              monthsLeft,
	}, nil
}

var deadlineLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

func parseDeadline(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Advice combines spending-pattern heuristics with web-sourced tips.
type Advice struct {
	PatternSummary map[storage.Category]float64
	Tips           []string
	WebTips        []string
}

// Advise aggregates the trailing 30 days by category, applies the fixed
// threshold rules and appends up to three of the supplied web results.
func (e *Engine) Advise(web []tips.Result) (Advice, error) {
	end := e.now()
	start := end.AddDate(0, 0, -adviceWindowDays)
	expenses, err := e.store.Expenses(storage.ExpenseFilter{Start: &start, End: &end})
	if err != nil {
		return Advice{}, fmt.Errorf("load expenses: %w", err)
	}

	byCat := make(map[storage.Category]float64)
	for _, ex := range expenses {
		byCat[ex.Category] = storage.Round2(byCat[ex.Category] + ex.Amount)
	}

	var personalized []string
	if byCat[storage.CategoryEntertainment] > entertainmentThreshold {
		personalized = append(personalized, "Reduce entertainment subscriptions or switch to free alternatives.")
	}
	if byCat[storage.CategoryFood] > foodThreshold {
		personalized = append(personalized, "Plan meals and buy groceries in bulk; limit dining out.")
	}
	if byCat[storage.CategoryTransport] > transportThreshold {
		personalized = append(personalized, "Use public transport, carpool, or optimize routes to save on fuel.")
	}
	if len(personalized) == 0 {
		personalized = append(personalized, "Track recurring charges and cancel unused subscriptions.")
	}

	var webTips []string
	for _, r := range web {
		webTips = append(webTips, fmt.Sprintf("%s: %s (%s)", r.Title, r.Snippet, r.Link))
		if len(webTips) == webTipLimit {
			break
		}
	}

	return Advice{
		PatternSummary: byCat,
		Tips:           personalized,
		WebTips:        webTips,
	}, nil
}

// MonthlyReport is the per-category spending breakdown for one month.
type MonthlyReport struct {
	Year   int
	Month  time.Month
	Totals map[storage.Category]float64
	Total  float64
}

func (e *Engine) MonthlyReport() (MonthlyReport, error) {
	now := e.now()
	totals, err := e.store.TotalsByCategory(now.Year(), now.Month())
	if err != nil {
		return MonthlyReport{}, fmt.Errorf("load totals: %w", err)
	}
	var total float64
	for _, v := range totals {
		total += v
	}
	return MonthlyReport{
		Year:   now.Year(),
		Month:  now.Month(),
		Totals: totals,
		Total:  storage.Round2(total),
	}, nil
}

// Text renders the report with categories in their fixed order.
func (r MonthlyReport) Text() string {
	var b strings.Builder
	b.WriteString("Monthly Spending Report:")
	for _, cat := range storage.Categories {
		if v, ok := r.Totals[cat]; ok {
			fmt.Fprintf(&b, "\n- %s: $%.2f", cat, v)
		}
	}
	fmt.Fprintf(&b, "\nTotal: $%.2f", r.Total)
	return b.String()
}
