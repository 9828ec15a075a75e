package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"chat-relay/internal/config"
	"chat-relay/internal/llm"
	"chat-relay/internal/store"
	"chat-relay/internal/telegram"
	"chat-relay/internal/webhook"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}

	history := store.NewHistoryStore(db, cfg.HistoryRetention)
	settings := store.NewSettingsStore(db, cfg.SettingsRetention)

	sweeper := store.NewSweeper(db)
	if err := sweeper.Start(cfg.SweepSchedule); err != nil {
		log.Fatalf("failed to start ttl sweeper: %v", err)
	}
	defer sweeper.Stop()

	llmClient, err := llm.NewClient(cfg)
	if err != nil {
		log.Fatalf("failed to create llm client: %v", err)
	}

	bot, err := telegram.New(cfg.TelegramBotToken, llmClient, history, settings, telegram.Params{
		HistoryWindow:    cfg.HistoryWindow,
		MaxDocumentBytes: cfg.MaxDocumentBytes,
	})
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := webhook.New(cfg.WebhookSecret, cfg.InvocationTimeout, cfg.Version, bot)
	if err := srv.Run(ctx, cfg.ListenAddr); err != nil {
		log.Fatalf("webhook server failed: %v", err)
	}
}
