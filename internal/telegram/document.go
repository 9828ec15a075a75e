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

const defaultDocumentPrompt = "Analyze this document and summarize its contents."

// handleDocument runs the stateless document-analysis turn: no history is
// read or written, the single inference call carries the document block.
func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := chatKey(msg)
	doc := msg.Document
	log.Printf("document received in chat %s: %q (%d bytes, %s)", chatID, doc.FileName, doc.FileSize, doc.MimeType)

	// Unsupported input is a user-visible rejection, not an internal
	// error, and never reaches the inference service.
	if int64(doc.FileSize) > b.params.MaxDocumentBytes {
		b.sendMessage(msg.Chat.ID, fmt.Sprintf(
			"The document is too large to analyze (limit is %d MB).", b.params.MaxDocumentBytes/(1024*1024)))
		return nil
	}
	if doc.MimeType != "application/pdf" {
		b.sendMessage(msg.Chat.ID, "Only PDF documents are supported.")
		return nil
	}

	data, err := b.files.Fetch(ctx, doc.FileID)
	if err != nil {
		log.Printf("document download failed for chat %s: %v", chatID, err)
		b.sendMessage(msg.Chat.ID, "Sorry, I could not read the document.")
		return err
	}
	if int64(len(data)) > b.params.MaxDocumentBytes {
		b.sendMessage(msg.Chat.ID, fmt.Sprintf(
			"The document is too large to analyze (limit is %d MB).", b.params.MaxDocumentBytes/(1024*1024)))
		return nil
	}

	instruction := defaultDocumentPrompt
	if msg.Caption != "" {
		instruction = msg.Caption
	}

	debug := b.settings.Flag(ctx, chatID, store.FlagDebug)
	thinking := b.settings.Flag(ctx, chatID, store.FlagThinking)

	window := conversation.DocumentWindow(instruction, doc.FileName, data)
	resp, err := b.llmClient.Generate(ctx, window, llm.Options{Thinking: thinking})
	if err != nil {
		log.Printf("document inference failed for chat %s: %v", chatID, err)
		b.sendMessage(msg.Chat.ID, "Sorry, I could not analyze the document.")
		return err
	}

	sent, err := b.s.Send(tgbotapi.NewMessage(msg.Chat.ID, resp.Visible()))
	if err != nil {
		log.Printf("failed to send document reply for chat %s: %v", chatID, err)
		return err
	}
	if debug {
		b.sendDebugInfo(msg.Chat.ID, sent.MessageID, resp)
	}
	return nil
}
