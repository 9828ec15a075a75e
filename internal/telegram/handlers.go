package telegram

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"chat-relay/internal/conversation"
	"chat-relay/internal/llm"
	"chat-relay/internal/store"
)

// handleText runs one ordinary conversation turn: flags, history window,
// user-turn persist, inference, assistant-turn persist, reply.
func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := chatKey(msg)
	log.Printf("incoming message in chat %s: %d chars", chatID, len(msg.Text))

	// Settings reads degrade to disabled, never fail the turn.
	debug := b.settings.Flag(ctx, chatID, store.FlagDebug)
	thinking := b.settings.Flag(ctx, chatID, store.FlagThinking)

	recent, err := b.history.Recent(ctx, chatID, b.params.HistoryWindow)
	if err != nil {
		log.Printf("history load failed for chat %s: %v", chatID, err)
		b.sendMessage(msg.Chat.ID, genericFailureReply)
		return err
	}

	// The user turn is persisted before the inference call so a failed
	// call still leaves the message durably recorded.
	if err := b.history.Append(ctx, chatID, llm.RoleUser, msg.Text); err != nil {
		log.Printf("user turn persist failed for chat %s: %v", chatID, err)
		b.sendMessage(msg.Chat.ID, genericFailureReply)
		return err
	}

	window := conversation.Window(recent, msg.Text, b.nowUTC())
	resp, err := b.llmClient.Generate(ctx, window, llm.Options{Thinking: thinking})
	if err != nil {
		log.Printf("inference call failed for chat %s: %v", chatID, err)
		b.sendMessage(msg.Chat.ID, genericFailureReply)
		return err
	}

	if err := b.history.Append(ctx, chatID, llm.RoleAssistant, resp.Text); err != nil {
		log.Printf("assistant turn persist failed for chat %s: %v", chatID, err)
		b.sendMessage(msg.Chat.ID, genericFailureReply)
		return err
	}

	sent, err := b.s.Send(tgbotapi.NewMessage(msg.Chat.ID, resp.Visible()))
	if err != nil {
		log.Printf("failed to send reply for chat %s: %v", chatID, err)
		return err
	}
	if debug {
		b.sendDebugInfo(msg.Chat.ID, sent.MessageID, resp)
	}
	return nil
}

// sendDebugInfo attaches latency and token usage as a reply to the answer.
// Delivery failures here are logged only; the turn already succeeded.
func (b *Bot) sendDebugInfo(chatID int64, replyTo int, resp llm.Response) {
	text := fmt.Sprintf("Debug:\nResponse time: %.2f sec\nUsage: input=%d output=%d tokens",
		float64(resp.LatencyMs)/1000, resp.InputTokens, resp.OutputTokens)
	m := tgbotapi.NewMessage(chatID, text)
	m.ReplyToMessageID = replyTo
	if _, err := b.s.Send(m); err != nil {
		log.Printf("failed to send debug info: %v", err)
	}
}

func (b *Bot) handleCommand(ctx context.Context, inv Invocation, msg *tgbotapi.Message) error {
	chatID := chatKey(msg)
	switch msg.Command() {
	case "start":
		b.sendMessage(msg.Chat.ID, "I'm a GenAI chatbot, please talk to me!")
	case "status":
		now := b.nowUTC()
		b.sendMessage(msg.Chat.ID, fmt.Sprintf(
			"Bot is running!\nVersion: %s\nExecution duration: %.3f seconds\nRemaining time until timeout: %.3f seconds",
			inv.Version, inv.Elapsed(now).Seconds(), inv.Remaining(now).Seconds()))
	case "debug":
		b.handleToggle(ctx, msg, store.FlagDebug, "Debug mode")
	case "thinking":
		b.handleToggle(ctx, msg, store.FlagThinking, "Extended thinking")
	case "clear":
		n, err := b.history.Clear(ctx, chatID)
		if err != nil {
			// Soft failure: reported to the user, never a crash.
			log.Printf("clear failed for chat %s: %v", chatID, err)
			b.sendMessage(msg.Chat.ID, "Failed to clear history, please try again.")
			return nil
		}
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("Cleared %d stored messages.", n))
	default:
		b.sendMessage(msg.Chat.ID, "Unknown command.")
	}
	return nil
}

func (b *Bot) handleToggle(ctx context.Context, msg *tgbotapi.Message, kind store.FlagKind, label string) {
	value, ok := b.settings.Toggle(ctx, chatKey(msg), kind)
	if !ok {
		b.sendMessage(msg.Chat.ID, "Failed to update setting, please try again.")
		return
	}
	state := "disabled"
	if value {
		state = "enabled"
	}
	b.sendMessage(msg.Chat.ID, fmt.Sprintf("%s %s.", label, state))
}
