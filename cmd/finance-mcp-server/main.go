package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"finance-coach/internal/config"
	"finance-coach/internal/coordinator"
	"finance-coach/internal/memory"
	"finance-coach/internal/storage"
	"finance-coach/internal/tips"
)

// AddExpenseParams describes a free-text expense entry.
type AddExpenseParams struct {
	Text string `json:"text" mcp:"natural language expense description, e.g. 'I spent $50 on groceries'"`
}

type SetBudgetParams struct {
	Amount float64 `json:"amount" mcp:"monthly budget amount in dollars"`
}

type SetGoalParams struct {
	Name        string  `json:"name" mcp:"short goal name"`
	Amount      float64 `json:"amount" mcp:"target amount in dollars"`
	Deadline    string  `json:"deadline,omitempty" mcp:"target date, preferably YYYY-MM-DD"`
	Description string  `json:"description,omitempty" mcp:"optional goal description"`
}

type GoalProgressParams struct {
	Name string `json:"name,omitempty" mcp:"goal name; the first goal is used when omitted"`
}

// EmptyParams is used by tools that take no arguments.
type EmptyParams struct{}

// FinanceMCPServer exposes the assistant's operations as MCP tools.
type FinanceMCPServer struct {
	coord *coordinator.Coordinator
}

func (s *FinanceMCPServer) AddExpense(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[AddExpenseParams]) (*mcp.CallToolResultFor[any], error) {
	if params.Arguments.Text == "" {
		return errorResult("text is required"), nil
	}
	msg := s.coord.HandleIntent(ctx, params.Arguments.Text, coordinator.IntentExpense)
	return textResult(msg), nil
}

func (s *FinanceMCPServer) BudgetStatus(ctx context.Context, _ *mcp.ServerSession, _ *mcp.CallToolParamsFor[EmptyParams]) (*mcp.CallToolResultFor[any], error) {
	msg := s.coord.HandleIntent(ctx, "Analyze my budget", coordinator.IntentBudget)
	return textResult(msg), nil
}

func (s *FinanceMCPServer) SetBudget(_ context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[SetBudgetParams]) (*mcp.CallToolResultFor[any], error) {
	if params.Arguments.Amount <= 0 {
		return errorResult("amount must be positive"), nil
	}
	if err := s.coord.SetBudget(params.Arguments.Amount); err != nil {
		return errorResult(fmt.Sprintf("failed to set budget: %v", err)), nil
	}
	return textResult(fmt.Sprintf("Budget set to $%.2f", params.Arguments.Amount)), nil
}

func (s *FinanceMCPServer) SavingsAdvice(ctx context.Context, _ *mcp.ServerSession, _ *mcp.CallToolParamsFor[EmptyParams]) (*mcp.CallToolResultFor[any], error) {
	msg := s.coord.HandleIntent(ctx, "How can I save money?", coordinator.IntentAdvice)
	return textResult(msg), nil
}

func (s *FinanceMCPServer) SetGoal(_ context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[SetGoalParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	if args.Name == "" || args.Amount <= 0 {
		return errorResult("name and a positive amount are required"), nil
	}
	msg, err := s.coord.SetGoal(args.Name, args.Amount, args.Deadline, args.Description)
	if err != nil {
		return errorResult(fmt.Sprintf("failed to save goal: %v", err)), nil
	}
	return textResult(msg), nil
}

func (s *FinanceMCPServer) GoalProgress(_ context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[GoalProgressParams]) (*mcp.CallToolResultFor[any], error) {
	text, err := s.coord.GoalProgressText(params.Arguments.Name)
	if err != nil {
		return errorResult(fmt.Sprintf("failed to compute progress: %v", err)), nil
	}
	return textResult(text), nil
}

func (s *FinanceMCPServer) ListGoals(_ context.Context, _ *mcp.ServerSession, _ *mcp.CallToolParamsFor[EmptyParams]) (*mcp.CallToolResultFor[any], error) {
	goals, err := s.coord.ListGoals()
	if err != nil {
		return errorResult(fmt.Sprintf("failed to list goals: %v", err)), nil
	}
	if len(goals) == 0 {
		return textResult("No goals yet."), nil
	}
	msg := fmt.Sprintf("%d goals:", len(goals))
	for _, g := range goals {
		msg += fmt.Sprintf("\n- %s: $%.2f", g.Name, g.Amount)
		if g.Deadline != "" {
			msg += " (by " + g.Deadline + ")"
		}
	}
	return textResult(msg), nil
}

func (s *FinanceMCPServer) SpendingReport(_ context.Context, _ *mcp.ServerSession, _ *mcp.CallToolParamsFor[EmptyParams]) (*mcp.CallToolResultFor[any], error) {
	text, err := s.coord.ReportText()
	if err != nil {
		return errorResult(fmt.Sprintf("failed to build report: %v", err)), nil
	}
	return textResult(text), nil
}

func textResult(text string) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(text string) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	store, err := storage.NewFileStore(cfg.RecordsFilePath)
	if err != nil {
		log.Fatalf("failed to init record store: %v", err)
	}
	mem, err := memory.NewFileMemory(cfg.MemoryFilePath)
	if err != nil {
		log.Fatalf("failed to init conversation store: %v", err)
	}

	var provider tips.Provider = tips.Static{}
	if cfg.SerperAPIKey != "" {
		provider = tips.NewSerperClient(cfg.SerperAPIKey)
	}

	// The MCP surface never delegates to an LLM: callers are themselves
	// model-driven, so responses stay deterministic.
	finance := &FinanceMCPServer{
		coord: coordinator.New(store, mem, provider, nil, cfg.SessionID),
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "finance-coach-mcp",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_expense",
		Description: "Parses a natural language expense and records it",
	}, finance.AddExpense)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "budget_status",
		Description: "Returns the current month's budget analysis",
	}, finance.BudgetStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_budget",
		Description: "Sets the monthly budget amount",
	}, finance.SetBudget)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "savings_advice",
		Description: "Returns personalized savings advice from recent spending",
	}, finance.SavingsAdvice)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_goal",
		Description: "Saves a savings goal with an optional deadline",
	}, finance.SetGoal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "goal_progress",
		Description: "Returns the savings projection for a goal",
	}, finance.GoalProgress)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_goals",
		Description: "Lists all saved savings goals",
	}, finance.ListGoals)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "spending_report",
		Description: "Returns the current month's spending report",
	}, finance.SpendingReport)

	log.Printf("starting finance MCP server on stdin/stdout")

	transport := mcp.NewStdioTransport()
	if err := server.Run(context.Background(), transport); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
