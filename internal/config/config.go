package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderAnthropic LLMProvider = "anthropic"
	ProviderOpenAI    LLMProvider = "openai"
)

type Config struct {
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN,required"`
	WebhookSecret    string `env:"WEBHOOK_SECRET,required"`
	ListenAddr       string `env:"LISTEN_ADDR" envDefault:":8080"`

	// LLM settings
	LLMProvider     LLMProvider `env:"LLM_PROVIDER" envDefault:"anthropic"`
	AnthropicAPIKey string      `env:"ANTHROPIC_API_KEY"`
	AnthropicURL    string      `env:"ANTHROPIC_BASE_URL"`
	OpenAIAPIKey    string      `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string      `env:"OPENAI_BASE_URL"`
	Model           string      `env:"MODEL" envDefault:"claude-3-sonnet-20240229"`

	// Inference parameters
	SystemPrompt   string  `env:"SYSTEM_PROMPT" envDefault:"You are a conversational chat bot, that users are using from the Telegram application."`
	Temperature    float64 `env:"TEMPERATURE" envDefault:"0.5"`
	TopK           int     `env:"TOP_K" envDefault:"200"`
	MaxTokens      int     `env:"MAX_TOKENS" envDefault:"1024"`
	ThinkingBudget int     `env:"THINKING_BUDGET" envDefault:"2048"`

	// Storage
	DBPath            string        `env:"DB_PATH" envDefault:"data/relay.db"`
	HistoryRetention  time.Duration `env:"HISTORY_RETENTION" envDefault:"1h"`
	SettingsRetention time.Duration `env:"SETTINGS_RETENTION" envDefault:"8760h"`
	HistoryWindow     int           `env:"HISTORY_WINDOW" envDefault:"50"`
	SweepSchedule     string        `env:"SWEEP_SCHEDULE" envDefault:"@every 5m"`

	// Documents
	MaxDocumentBytes int64 `env:"MAX_DOCUMENT_BYTES" envDefault:"4194304"`

	// One webhook invocation must finish or fail within this bound.
	InvocationTimeout time.Duration `env:"INVOCATION_TIMEOUT" envDefault:"55s"`

	Version string `env:"APP_VERSION" envDefault:"dev"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
