package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"finance-coach/internal/config"
	"finance-coach/internal/coordinator"
	"finance-coach/internal/llm"
	"finance-coach/internal/memory"
	"finance-coach/internal/scheduler"
	"finance-coach/internal/storage"
	"finance-coach/internal/telegram"
	"finance-coach/internal/tips"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()
	if cfg.TelegramBotToken == "" {
		log.Fatalf("TELEGRAM_BOT_TOKEN is required")
	}

	store, err := storage.NewFileStore(cfg.RecordsFilePath)
	if err != nil {
		log.Fatalf("failed to init record store: %v", err)
	}
	mem, err := memory.NewFileMemory(cfg.MemoryFilePath)
	if err != nil {
		log.Fatalf("failed to init conversation store: %v", err)
	}

	coord := coordinator.New(store, mem, newTipsProvider(cfg), newLLMClient(cfg), cfg.SessionID)

	bot, err := telegram.New(cfg.TelegramBotToken, coord, cfg.AdminChatID)
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}

	if cfg.AdminChatID != 0 {
		sched := scheduler.New(cfg.ReportSchedule)
		sched.SetReportFunction(bot.SendReport)
		if err := sched.Start(); err != nil {
			log.Printf("failed to start scheduler: %v", err)
		} else {
			defer sched.Stop()
		}
	}

	bot.Start(context.Background())
}

// newLLMClient returns nil when no provider is configured; the coordinator
// then falls back to keyword classification and deterministic summaries.
func newLLMClient(cfg *config.Config) llm.Client {
	if cfg.OpenAIAPIKey == "" && cfg.YandexOAuthToken == "" {
		log.Printf("no LLM provider configured, running with deterministic fallbacks")
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
