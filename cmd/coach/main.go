package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"finance-coach/internal/config"
	"finance-coach/internal/coordinator"
	"finance-coach/internal/llm"
	"finance-coach/internal/memory"
	"finance-coach/internal/storage"
	"finance-coach/internal/tips"
)

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

	coord := coordinator.New(store, mem, newTipsProvider(cfg), newLLMClient(cfg), cfg.SessionID)

	fmt.Println("Personal Finance Assistant")
	fmt.Println("Type /help for commands, /quit to exit.")

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			fmt.Println("Bye!")
			return
		}
		fmt.Println(handleLine(ctx, coord, line))
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("stdin read failed: %v", err)
	}
}

// handleLine maps slash commands to explicit intents and sends everything
// else through classification.
func handleLine(ctx context.Context, coord *coordinator.Coordinator, line string) string {
	if !strings.HasPrefix(line, "/") {
		return coord.Handle(ctx, line)
	}

	cmd, args, _ := strings.Cut(line[1:], " ")
	args = strings.TrimSpace(args)

	switch cmd {
	case "help":
		return coordinator.HelpText()
	case "expense":
		if args == "" {
			return "Describe the expense, e.g. /expense I spent $50 on groceries"
		}
		return coord.HandleIntent(ctx, args, coordinator.IntentExpense)
	case "budget":
		if rest, ok := strings.CutPrefix(strings.ToLower(args), "set "); ok {
			return setBudget(coord, rest)
		}
		return coord.HandleIntent(ctx, "Analyze my budget", coordinator.IntentBudget)
	case "advice":
		return coord.HandleIntent(ctx, "How can I save money?", coordinator.IntentAdvice)
	case "goal":
		return handleGoal(coord, args)
	case "currency":
		return handleCurrency(coord, args)
	case "report":
		return coord.HandleIntent(ctx, "Generate spending report", coordinator.IntentReport)
	default:
		return coordinator.HelpText()
	}
}

func setBudget(coord *coordinator.Coordinator, arg string) string {
	amount, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
	if err != nil || amount <= 0 {
		return "Invalid amount."
	}
	if err := coord.SetBudget(amount); err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return fmt.Sprintf("Budget set to $%.2f", amount)
}

func handleGoal(coord *coordinator.Coordinator, args string) string {
	fields := strings.Fields(args)
	sub := ""
	if len(fields) > 0 {
		sub = strings.ToLower(fields[0])
	}

	switch sub {
	case "", "list":
		goals, err := coord.ListGoals()
		if err != nil {
			return fmt.Sprintf("Error: %v", err)
		}
		if len(goals) == 0 {
			return "No goals yet. Use /goal set <name> <amount> [deadline] [description]."
		}
		lines := make([]string, 0, len(goals))
		for _, g := range goals {
			line := fmt.Sprintf("- %s: $%.2f", g.Name, g.Amount)
			if g.Deadline != "" {
				line += " (by " + g.Deadline + ")"
			}
			lines = append(lines, line)
		}
		return strings.Join(lines, "\n")
	case "progress":
		text, err := coord.GoalProgressText(strings.Join(fields[1:], " "))
		if err != nil {
			return fmt.Sprintf("Error: %v", err)
		}
		return text
	case "set":
		if len(fields) < 3 {
			return "Usage: /goal set <name> <amount> [deadline] [description]"
		}
		amount, err := strconv.ParseFloat(fields[2], 64)
		if err != nil || amount <= 0 {
			return "Invalid amount."
		}
		deadline := ""
		rest := fields[3:]
		if len(rest) > 0 && len(rest[0]) >= 8 && rest[0][4] == '-' {
			deadline = rest[0]
			rest = rest[1:]
		}
		msg, err := coord.SetGoal(fields[1], amount, deadline, strings.Join(rest, " "))
		if err != nil {
			return fmt.Sprintf("Error: %v", err)
		}
		return msg
	default:
		return "Goal options: list, progress, set"
	}
}

// handleCurrency stores the display currency as a session preference.
func handleCurrency(coord *coordinator.Coordinator, args string) string {
	if args == "" {
		v, ok, err := coord.Preference("currency")
		if err != nil {
			return fmt.Sprintf("Error: %v", err)
		}
		if !ok {
			return "No currency set. Use /currency <code>, e.g. /currency EUR."
		}
		return fmt.Sprintf("Currency: %v", v)
	}
	code := strings.ToUpper(args)
	if err := coord.SetPreference("currency", code); err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return "Currency set to " + code
}

func newLLMClient(cfg *config.Config) llm.Client {
	if cfg.OpenAIAPIKey == "" && cfg.YandexOAuthToken == "" {
		return nil
	}
	factory := &llm.Factory{
		OpenAIAPIKey:     cfg.OpenAIAPIKey,
		OpenAIBaseURL:    cfg.OpenAIBaseURL,
		YandexOAuthToken: cfg.YandexOAuthToken,
		YandexFolderID:   cfg.YandexFolderID,
	}
	client, err := factory.CreateClient(string(cfg.LLMProvider), cfg.OpenAIModel)
	if err != nil {
		log.Printf("failed to create llm client: %v", err)
		return nil
	}
	return client
}

func newTipsProvider(cfg *config.Config) tips.Provider {
	if cfg.SerperAPIKey != "" {
		return tips.NewSerperClient(cfg.SerperAPIKey)
	}
	if cfg.GoogleCSEKey != "" && cfg.GoogleCSEID != "" {
		client, err := tips.NewGoogleClient(context.Background(), cfg.GoogleCSEKey, cfg.GoogleCSEID)
		if err != nil {
			log.Printf("failed to init google search client: %v", err)
			return tips.Static{}
		}
		return client
	}
	return tips.Static{}
}
