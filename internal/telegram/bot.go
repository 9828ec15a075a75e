package telegram

import (
	"context"
	"log"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"chat-relay/internal/llm"
	"chat-relay/internal/store"
)

const genericFailureReply = "Sorry, something went wrong."

type historyStore interface {
	Append(ctx context.Context, chatID, role, content string) error
	Recent(ctx context.Context, chatID string, limit int) ([]store.Record, error)
	Clear(ctx context.Context, chatID string) (int, error)
}

type settingsStore interface {
	Flag(ctx context.Context, chatID string, kind store.FlagKind) bool
	Toggle(ctx context.Context, chatID string, kind store.FlagKind) (bool, bool)
}

// Params bounds the per-turn behavior of the bot.
type Params struct {
	HistoryWindow    int
	MaxDocumentBytes int64
}

// Bot is the per-update orchestrator: it loads flags and history, builds
// the conversation window, runs the inference call and persists the turn.
// All outbound traffic goes through the sender so handlers stay testable.
type Bot struct {
	s         sender
	files     fileFetcher
	history   historyStore
	settings  settingsStore
	llmClient llm.Client
	params    Params
	nowUTC    func() time.Time
}

func New(botToken string, llmClient llm.Client, history historyStore, settings settingsStore, params Params) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &Bot{
		s:         botAPISender{api: api},
		files:     botAPIFiles{api: api},
		history:   history,
		settings:  settings,
		llmClient: llmClient,
		params:    params,
		nowUTC:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// HandleUpdate processes one decoded update. A non-nil error means the
// turn failed after the user already got a bounded failure reply; the
// transport maps it to its failure status.
func (b *Bot) HandleUpdate(ctx context.Context, inv Invocation, update tgbotapi.Update) error {
	msg := update.Message
	if msg == nil {
		return nil
	}
	if msg.IsCommand() {
		return b.handleCommand(ctx, inv, msg)
	}
	if msg.Document != nil {
		return b.handleDocument(ctx, msg)
	}
	if msg.Text != "" {
		return b.handleText(ctx, msg)
	}
	return nil
}

func chatKey(msg *tgbotapi.Message) string {
	return strconv.FormatInt(msg.Chat.ID, 10)
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.s.Send(msg); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}
