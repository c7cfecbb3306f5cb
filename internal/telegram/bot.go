// Package telegram is a thin front-end: commands map to explicit intents,
// free text goes through classification. All finance logic stays in the
// coordinator.
package telegram

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"finance-coach/internal/coordinator"
)

type Bot struct {
	api         *tgbotapi.BotAPI
	coord       *coordinator.Coordinator
	adminChatID int64
}

func New(botToken string, coord *coordinator.Coordinator, adminChatID int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &Bot{api: api, coord: coord, adminChatID: adminChatID}, nil
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	for update := range updates {
		if update.Message == nil {
			continue
		}
		b.handleIncomingMessage(ctx, update.Message)
	}
}

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	log.Printf("incoming message from %d (@%s): %q", msg.From.ID, msg.From.UserName, msg.Text)
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	b.sendMessage(msg.Chat.ID, b.coord.Handle(ctx, msg.Text))
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start", "help":
		b.sendMessage(msg.Chat.ID, coordinator.HelpText())
	case "expense":
		if args == "" {
			b.sendMessage(msg.Chat.ID, "Describe the expense, e.g. /expense I spent $50 on groceries")
			return
		}
		b.sendMessage(msg.Chat.ID, b.coord.HandleIntent(ctx, args, coordinator.IntentExpense))
	case "budget":
		b.handleBudgetCommand(ctx, msg.Chat.ID, args)
	case "advice":
		b.sendMessage(msg.Chat.ID, b.coord.HandleIntent(ctx, "How can I save money?", coordinator.IntentAdvice))
	case "goal":
		b.handleGoalCommand(msg.Chat.ID, args)
	case "report":
		b.sendMessage(msg.Chat.ID, b.coord.HandleIntent(ctx, "Generate spending report", coordinator.IntentReport))
	default:
		b.sendMessage(msg.Chat.ID, coordinator.HelpText())
	}
}

func (b *Bot) handleBudgetCommand(ctx context.Context, chatID int64, args string) {
	if rest, ok := strings.CutPrefix(strings.ToLower(args), "set "); ok {
		amount, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
		if err != nil || amount <= 0 {
			b.sendMessage(chatID, "Invalid amount.")
			return
		}
		if err := b.coord.SetBudget(amount); err != nil {
			b.sendMessage(chatID, fmt.Sprintf("Error: %v", err))
			return
		}
		b.sendMessage(chatID, fmt.Sprintf("Budget set to $%.2f", amount))
		return
	}
	b.sendMessage(chatID, b.coord.HandleIntent(ctx, "Analyze my budget", coordinator.IntentBudget))
}

// handleGoalCommand supports: /goal [list], /goal progress [name],
// /goal set <name> <amount> [deadline] [description...]
func (b *Bot) handleGoalCommand(chatID int64, args string) {
	fields := strings.Fields(args)
	sub := ""
	if len(fields) > 0 {
		sub = strings.ToLower(fields[0])
	}

	switch sub {
	case "", "list":
		goals, err := b.coord.ListGoals()
		if err != nil {
			b.sendMessage(chatID, fmt.Sprintf("Error: %v", err))
			return
		}
		if len(goals) == 0 {
			b.sendMessage(chatID, "No goals yet. Use /goal set <name> <amount> [deadline] [description].")
			return
		}
		lines := make([]string, 0, len(goals))
		for _, g := range goals {
			line := fmt.Sprintf("- %s: $%.2f", g.Name, g.Amount)
			if g.Deadline != "" {
				line += " (by " + g.Deadline + ")"
			}
			lines = append(lines, line)
		}
		b.sendMessage(chatID, strings.Join(lines, "\n"))
	case "progress":
		name := strings.Join(fields[1:], " ")
		text, err := b.coord.GoalProgressText(name)
		if err != nil {
			b.sendMessage(chatID, fmt.Sprintf("Error: %v", err))
			return
		}
		b.sendMessage(chatID, text)
	case "set":
		if len(fields) < 3 {
			b.sendMessage(chatID, "Usage: /goal set <name> <amount> [deadline] [description]")
			return
		}
		name := fields[1]
		amount, err := strconv.ParseFloat(fields[2], 64)
		if err != nil || amount <= 0 {
			b.sendMessage(chatID, "Invalid amount.")
			return
		}
		deadline := ""
		rest := fields[3:]
		if len(rest) > 0 && looksLikeDate(rest[0]) {
			deadline = rest[0]
			rest = rest[1:]
		}
		msg, err := b.coord.SetGoal(name, amount, deadline, strings.Join(rest, " "))
		if err != nil {
			b.sendMessage(chatID, fmt.Sprintf("Error: %v", err))
			return
		}
		b.sendMessage(chatID, msg)
	default:
		b.sendMessage(chatID, "Goal options: list, progress, set")
	}
}

func looksLikeDate(s string) bool {
	return len(s) >= 8 && s[4] == '-'
}

// SendReport delivers the current monthly report to the admin chat. The
// scheduler calls this on every tick.
func (b *Bot) SendReport(_ context.Context) error {
	if b.adminChatID == 0 {
		return fmt.Errorf("admin chat not configured")
	}
	text, err := b.coord.ReportText()
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}
	b.sendMessage(b.adminChatID, text)
	return nil
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}
