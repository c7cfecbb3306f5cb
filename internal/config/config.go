package config

import (
	"log"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

type Config struct {
	// LLM settings (optional; the assistant degrades to deterministic
	// fallbacks without a configured provider)
	LLMProvider      LLMProvider `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey     string      `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string      `env:"OPENAI_BASE_URL"`
	OpenAIModel      string      `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	YandexOAuthToken string      `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string      `env:"YANDEX_FOLDER_ID"`

	// Tips provider (optional; falls back to canned tips)
	SerperAPIKey   string `env:"SERPER_API_KEY"`
	GoogleCSEKey   string `env:"GOOGLE_CSE_API_KEY"`
	GoogleCSEID    string `env:"GOOGLE_CSE_ID"`

	// Storage
	RecordsFilePath string `env:"RECORDS_FILE_PATH" envDefault:"data/records.json"`
	MemoryFilePath  string `env:"MEMORY_FILE_PATH" envDefault:"data/memory.json"`
	SessionID       string `env:"SESSION_ID" envDefault:"default"`

	// Telegram front-end
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	AdminChatID      int64  `env:"ADMIN_CHAT_ID"`

	// Scheduled report (cron expression, UTC)
	ReportSchedule string `env:"REPORT_SCHEDULE" envDefault:"0 21 * * *"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
