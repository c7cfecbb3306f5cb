// Package coordinator routes a single incoming utterance to the right
// analytic operation, records the exchange in the conversation store and
// formats the final response. Failures of any sub-operation are converted
// into a response string at this boundary and never propagated.
package coordinator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"finance-coach/internal/analytics"
	"finance-coach/internal/expense"
	"finance-coach/internal/llm"
	"finance-coach/internal/memory"
	"finance-coach/internal/storage"
	"finance-coach/internal/tips"
)

// Intent is the routing label chosen for an utterance.
type Intent string

const (
	IntentExpense Intent = "expense"
	IntentBudget  Intent = "budget"
	IntentAdvice  Intent = "advice"
	IntentGoal    Intent = "goal"
	IntentReport  Intent = "report"
	IntentHelp    Intent = "help"
)

var knownIntents = map[Intent]bool{
	IntentExpense: true,
	IntentBudget:  true,
	IntentAdvice:  true,
	IntentGoal:    true,
	IntentReport:  true,
	IntentHelp:    true,
}

type intentRule struct {
	intent   Intent
	keywords []string
}

// intentRules is evaluated in order, first match wins. The rule-based pass
// always runs before any classifier delegation, so keyword matches are
// independent of collaborator availability.
var intentRules = []intentRule{
	{IntentExpense, []string{"spent", "buy", "paid", "expense"}},
	{IntentBudget, []string{"budget", "analysis", "overspend"}},
	{IntentAdvice, []string{"save money", "advice", "tips"}},
	{IntentGoal, []string{"goal", "save", "target"}},
	{IntentReport, []string{"report", "summary"}},
	{IntentHelp, []string{"help"}},
}

// Collaborator call budgets. On timeout or failure the deterministic
// fallback is used instead.
const (
	llmTimeout  = 30 * time.Second
	tipsTimeout = 15 * time.Second
)

const classifyPrompt = "Classify the user's intent into one of: expense, budget, advice, goal, report, help. " +
	"Return only the label."

const summarizePrompt = "You are a helpful finance assistant. Summarize this monthly budget analysis " +
	"clearly with warnings if overspending and 2-3 actionable tips."

type Coordinator struct {
	store     storage.Store
	memory    memory.Store
	engine    *analytics.Engine
	tips      tips.Provider
	llmClient llm.Client // optional; nil disables classification and prose summaries
	sessionID string
}

func New(st storage.Store, mem memory.Store, tp tips.Provider, client llm.Client, sessionID string) *Coordinator {
	if tp == nil {
		tp = tips.Static{}
	}
	return &Coordinator{
		store:     st,
		memory:    mem,
		engine:    analytics.New(st),
		tips:      tp,
		llmClient: client,
		sessionID: sessionID,
	}
}

// Handle classifies text and dispatches it.
func (c *Coordinator) Handle(ctx context.Context, text string) string {
	return c.HandleIntent(ctx, text, "")
}

// HandleIntent dispatches text under the explicit intent, bypassing
// classification when the intent is non-empty. The user utterance and the
// final response are appended to the conversation store, in that order,
// even when a sub-operation fails.
func (c *Coordinator) HandleIntent(ctx context.Context, text string, explicit Intent) string {
	log.Printf("user input: %q", text)
	if err := c.memory.AppendTurn(c.sessionID, memory.RoleUser, text); err != nil {
		log.Printf("failed to record user turn: %v", err)
	}

	intent := explicit
	if intent == "" {
		intent = c.Classify(ctx, text)
	}
	log.Printf("detected intent: %s", intent)

	msg, err := c.dispatch(ctx, intent, text)
	if err != nil {
		log.Printf("dispatch failed: %v", err)
		msg = fmt.Sprintf("Error: %v", err)
	}

	if err := c.memory.AppendTurn(c.sessionID, memory.RoleAgent, msg); err != nil {
		log.Printf("failed to record agent turn: %v", err)
	}
	return msg
}

// Classify applies the keyword rules first and only then delegates to the
// LLM classifier, accepting its answer only for a known label.
func (c *Coordinator) Classify(ctx context.Context, text string) Intent {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, rule := range intentRules {
		for _, k := range rule.keywords {
			if strings.Contains(lower, k) {
				return rule.intent
			}
		}
	}

	if c.llmClient != nil {
		cctx, cancel := context.WithTimeout(ctx, llmTimeout)
		defer cancel()
		resp, err := c.llmClient.Generate(cctx, []llm.Message{
			{Role: "system", Content: classifyPrompt},
			{Role: "user", Content: text},
		})
		if err != nil {
			log.Printf("llm classify failed: %v", err)
			return IntentHelp
		}
		label := Intent(strings.ToLower(strings.TrimSpace(resp.Content)))
		if knownIntents[label] {
			return label
		}
	}
	return IntentHelp
}

func (c *Coordinator) dispatch(ctx context.Context, intent Intent, text string) (string, error) {
	switch intent {
	case IntentExpense:
		return c.handleExpense(text)
	case IntentBudget:
		return c.handleBudget(ctx)
	case IntentAdvice:
		return c.handleAdvice(ctx)
	case IntentGoal:
		return "Use /goal to set, list, or view progress.", nil
	case IntentReport:
		return c.ReportText()
	default:
		return HelpText(), nil
	}
}

func (c *Coordinator) handleExpense(text string) (string, error) {
	parsed, err := expense.Parse(text)
	if err != nil {
		return "", err
	}
	record, err := c.store.SaveExpense(parsed.Amount, parsed.Category, parsed.Description, time.Time{})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Saved: $%.2f to %s - %s", record.Amount, record.Category, record.Description), nil
}

func (c *Coordinator) handleBudget(ctx context.Context) (string, error) {
	summary, err := c.engine.BudgetSummary()
	if err != nil {
		return "", err
	}
	return c.summarize(ctx, summary), nil
}

// summarize asks the LLM collaborator for prose and falls back to the
// deterministic rendering on absence, failure or timeout.
func (c *Coordinator) summarize(ctx context.Context, summary analytics.BudgetSummary) string {
	if c.llmClient == nil {
		return summary.FallbackText()
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return summary.FallbackText()
	}

	cctx, cancel := context.WithTimeout(ctx, llmTimeout)
	defer cancel()
	resp, err := c.llmClient.Generate(cctx, []llm.Message{
		{Role: "system", Content: summarizePrompt},
		{Role: "user", Content: "Data: " + string(data)},
	})
	if err != nil || strings.TrimSpace(resp.Content) == "" {
		log.Printf("llm summary failed, using fallback: %v", err)
		return summary.FallbackText()
	}
	return strings.TrimSpace(resp.Content)
}

func (c *Coordinator) handleAdvice(ctx context.Context) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, tipsTimeout)
	defer cancel()
	web := c.tips.Search(cctx, tips.QueryFinancialTips)

	advice, err := c.engine.Advise(web)
	if err != nil {
		return "", err
	}
	return formatAdvice(advice), nil
}

func formatAdvice(a analytics.Advice) string {
	lines := []string{"Personalized Savings Advice:", "Spending (last 30 days):"}
	for _, cat := range storage.Categories {
		if v, ok := a.PatternSummary[cat]; ok {
			lines = append(lines, fmt.Sprintf("- %s: $%.2f", cat, v))
		}
	}
	lines = append(lines, "Suggestions:")
	for _, t := range a.Tips {
		lines = append(lines, "- "+t)
	}
	if len(a.WebTips) > 0 {
		lines = append(lines, "Web tips:")
		for _, w := range a.WebTips {
			lines = append(lines, "- "+w)
		}
	}
	return strings.Join(lines, "\n")
}

// ReportText renders the current month's spending report. The scheduler
// uses it directly, bypassing the conversation store.
func (c *Coordinator) ReportText() (string, error) {
	report, err := c.engine.MonthlyReport()
	if err != nil {
		return "", err
	}
	return report.Text(), nil
}

// SetGoal stores a new savings goal. The deadline is kept verbatim.
func (c *Coordinator) SetGoal(name string, amount float64, deadline, description string) (string, error) {
	goal, err := c.store.SaveGoal(name, amount, deadline, description)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Goal saved: %s - $%.2f", goal.Name, goal.Amount), nil
}

func (c *Coordinator) ListGoals() ([]storage.Goal, error) {
	return c.store.Goals()
}

// GoalProgressText renders the projection for the named goal, or for the
// first goal when name is empty.
func (c *Coordinator) GoalProgressText(name string) (string, error) {
	p, err := c.engine.GoalProgress(name)
	if err != nil {
		return "", err
	}
	if !p.Found {
		return "No matching goal found.", nil
	}

	lines := []string{fmt.Sprintf("Goal: %s ($%.2f)", p.Goal.Name, p.Goal.Amount)}
	if p.MonthsLeft > 0 {
		lines = append(lines, fmt.Sprintf("Deadline: %s (%d months left)", p.Goal.Deadline, p.MonthsLeft))
	} else {
		lines = append(lines, "Deadline: none usable (12-month horizon)")
	}
	lines = append(lines,
		fmt.Sprintf("Estimated monthly savings: $%.2f", p.EstimatedMonthlySavings),
		fmt.Sprintf("Required monthly savings: $%.2f", p.RequiredMonthlySavings),
		"Stay consistent! Automate a monthly transfer to hit your goal.",
	)
	return strings.Join(lines, "\n"), nil
}

// SetBudget updates the monthly budget preference (last write wins).
func (c *Coordinator) SetBudget(amount float64) error {
	return c.store.SetBudgetMonthly(amount)
}

// SetPreference and Preference expose session-scoped settings for the
// front-ends.
func (c *Coordinator) SetPreference(key string, value any) error {
	return c.memory.SetPreference(c.sessionID, key, value)
}

func (c *Coordinator) Preference(key string) (any, bool, error) {
	return c.memory.Preference(c.sessionID, key)
}

func HelpText() string {
	return "Available commands:\n" +
		"/help - show all commands\n" +
		"/expense - add an expense (e.g., 'I spent $50 on groceries')\n" +
		"/budget - view budget analysis or 'set <amount>'\n" +
		"/advice - get savings advice\n" +
		"/goal - set or view goals\n" +
		"/report - generate spending report\n" +
		"/quit - exit"
}
