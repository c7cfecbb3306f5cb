package coordinator

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"finance-coach/internal/llm"
	"finance-coach/internal/memory"
	"finance-coach/internal/storage"
	"finance-coach/internal/tips"
)

type fakeLLM struct {
	reply string
	err   error
	calls int
}

func (f *fakeLLM) Generate(_ context.Context, _ []llm.Message) (llm.Response, error) {
	f.calls++
	if f.err != nil {
		return llm.Response{}, f.err
	}
	return llm.Response{Content: f.reply}, nil
}

type fakeTips struct {
	results []tips.Result
}

func (f fakeTips) Search(_ context.Context, _ string) []tips.Result {
	return f.results
}

func newTestCoordinator(t *testing.T, client llm.Client) (*Coordinator, *memory.FileMemory) {
	t.Helper()
	dir := t.TempDir()
	st, err := storage.NewFileStore(filepath.Join(dir, "records.json"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	mem, err := memory.NewFileMemory(filepath.Join(dir, "memory.json"))
	if err != nil {
		t.Fatalf("init memory: %v", err)
	}
	return New(st, mem, fakeTips{}, client, "test-session"), mem
}

func TestClassify_RulesFirst(t *testing.T) {
	cases := []struct {
		text string
		want Intent
	}{
		{"I spent 20 on coffee", IntentExpense},
		{"I paid for parking", IntentExpense},
		{"how is my budget looking", IntentBudget},
		{"any tips for me?", IntentAdvice},
		{"I want to save for a car", IntentGoal},
		{"monthly report please", IntentReport},
		{"help", IntentHelp},
	}
	// a broken classifier must never shadow a rule match
	broken := &fakeLLM{err: errors.New("unavailable")}
	c, _ := newTestCoordinator(t, broken)
	for _, tc := range cases {
		if got := c.Classify(context.Background(), tc.text); got != tc.want {
			t.Fatalf("%q: want %s, got %s", tc.text, tc.want, got)
		}
	}
	if broken.calls != 0 {
		t.Fatalf("rule matches must short-circuit delegation, got %d calls", broken.calls)
	}
}

func TestClassify_DelegatesWhenNoRuleMatches(t *testing.T) {
	c, _ := newTestCoordinator(t, &fakeLLM{reply: " Budget \n"})
	if got := c.Classify(context.Background(), "what about this month"); got != IntentBudget {
		t.Fatalf("want budget from classifier, got %s", got)
	}

	c, _ = newTestCoordinator(t, &fakeLLM{reply: "nonsense-label"})
	if got := c.Classify(context.Background(), "what about this month"); got != IntentHelp {
		t.Fatalf("unknown label must default to help, got %s", got)
	}

	c, _ = newTestCoordinator(t, nil)
	if got := c.Classify(context.Background(), "what about this month"); got != IntentHelp {
		t.Fatalf("absent classifier must default to help, got %s", got)
	}
}

func TestHandle_ExpenseRoundTrip(t *testing.T) {
	c, mem := newTestCoordinator(t, nil)

	resp := c.Handle(context.Background(), "I spent $45.50 on groceries")
	if !strings.Contains(resp, "Saved: $45.50 to food") {
		t.Fatalf("unexpected response: %q", resp)
	}

	turns, err := mem.Conversation("test-session")
	if err != nil {
		t.Fatalf("conversation: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("want user+agent turns, got %d", len(turns))
	}
	if turns[0].Role != memory.RoleUser || turns[1].Role != memory.RoleAgent {
		t.Fatalf("turn order mismatch: %+v", turns)
	}
	if turns[1].Text != resp {
		t.Fatalf("agent turn must hold the final response")
	}
}

func TestHandle_ParseFailureIsReportedNotRaised(t *testing.T) {
	c, mem := newTestCoordinator(t, nil)

	resp := c.HandleIntent(context.Background(), "I bought some groceries today", IntentExpense)
	if !strings.HasPrefix(resp, "Error: ") {
		t.Fatalf("want error response, got %q", resp)
	}
	if !strings.Contains(resp, "could not detect amount") {
		t.Fatalf("parse error should be reported verbatim: %q", resp)
	}

	// no record persisted
	exps, _ := c.store.Expenses(storage.ExpenseFilter{})
	if len(exps) != 0 {
		t.Fatalf("failed parse must not persist: %+v", exps)
	}
	// both turns still recorded
	turns, _ := mem.Conversation("test-session")
	if len(turns) != 2 {
		t.Fatalf("turns must be appended even on failure, got %d", len(turns))
	}
}

func TestHandle_BudgetFallbackWithoutSummarizer(t *testing.T) {
	c, _ := newTestCoordinator(t, nil)
	c.Handle(context.Background(), "I spent 100 on groceries")

	resp := c.HandleIntent(context.Background(), "", IntentBudget)
	for _, want := range []string{"Budget: $1000.00", "Spent: $100.00", "Remaining: $900.00", "OK"} {
		if !strings.Contains(resp, want) {
			t.Fatalf("fallback missing %q:\n%s", want, resp)
		}
	}
}

func TestHandle_BudgetUsesSummarizerWhenAvailable(t *testing.T) {
	c, _ := newTestCoordinator(t, &fakeLLM{reply: "You are doing fine this month."})
	resp := c.HandleIntent(context.Background(), "", IntentBudget)
	if resp != "You are doing fine this month." {
		t.Fatalf("want summarizer prose, got %q", resp)
	}
}

func TestHandle_BudgetSummarizerFailureDegrades(t *testing.T) {
	c, _ := newTestCoordinator(t, &fakeLLM{err: errors.New("timeout")})
	resp := c.HandleIntent(context.Background(), "", IntentBudget)
	if !strings.Contains(resp, "Budget: $1000.00") {
		t.Fatalf("want deterministic fallback, got %q", resp)
	}
}

func TestHandle_ExplicitIntentBypassesClassification(t *testing.T) {
	c, _ := newTestCoordinator(t, nil)
	resp := c.HandleIntent(context.Background(), "I spent 20 on coffee", IntentReport)
	if !strings.Contains(resp, "Monthly Spending Report:") {
		t.Fatalf("explicit intent ignored: %q", resp)
	}
}

func TestHandle_AdviceIncludesWebTips(t *testing.T) {
	dir := t.TempDir()
	st, err := storage.NewFileStore(filepath.Join(dir, "records.json"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	mem, err := memory.NewFileMemory(filepath.Join(dir, "memory.json"))
	if err != nil {
		t.Fatalf("init memory: %v", err)
	}
	provider := fakeTips{results: []tips.Result{{Title: "T", Link: "http://t", Snippet: "s"}}}
	c := New(st, mem, provider, nil, "s")

	resp := c.HandleIntent(context.Background(), "", IntentAdvice)
	if !strings.Contains(resp, "Personalized Savings Advice:") {
		t.Fatalf("unexpected advice: %q", resp)
	}
	if !strings.Contains(resp, "T: s (http://t)") {
		t.Fatalf("web tip missing: %q", resp)
	}
	if !strings.Contains(resp, "Track recurring charges") {
		t.Fatalf("generic tip missing when no threshold tripped: %q", resp)
	}
}

func TestGoalFlow(t *testing.T) {
	c, _ := newTestCoordinator(t, nil)

	msg, err := c.SetGoal("Vacation", 1200, "2099-01-01", "trip")
	if err != nil {
		t.Fatalf("set goal: %v", err)
	}
	if !strings.Contains(msg, "Goal saved: Vacation") {
		t.Fatalf("unexpected message: %q", msg)
	}

	goals, err := c.ListGoals()
	if err != nil || len(goals) != 1 {
		t.Fatalf("list goals: %v %+v", err, goals)
	}

	text, err := c.GoalProgressText("Vacation")
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if !strings.Contains(text, "Goal: Vacation ($1200.00)") {
		t.Fatalf("unexpected progress text: %q", text)
	}

	text, err = c.GoalProgressText("does-not-exist")
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if text != "No matching goal found." {
		t.Fatalf("want informational no-match, got %q", text)
	}
}

func TestHandle_GoalIntentReturnsHint(t *testing.T) {
	c, _ := newTestCoordinator(t, nil)
	resp := c.Handle(context.Background(), "I have a new goal in mind")
	if !strings.Contains(resp, "/goal") {
		t.Fatalf("want goal hint, got %q", resp)
	}
}

func TestPreferences(t *testing.T) {
	c, _ := newTestCoordinator(t, nil)
	if err := c.SetPreference("currency", "USD"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := c.Preference("currency")
	if err != nil || !ok || v != "USD" {
		t.Fatalf("preference round trip failed: %v %v %v", v, ok, err)
	}
}
