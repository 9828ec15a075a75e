package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"chat-relay/internal/llm"
)

func docMsg(chatID int64, name, mime string, size int) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 1,
		Chat:      &tgbotapi.Chat{ID: chatID},
		Document:  &tgbotapi.Document{FileID: "file-1", FileName: name, MimeType: mime, FileSize: size},
	}
}

func TestDocumentOversizedIsRejectedBeforeInference(t *testing.T) {
	fs := &fakeSender{}
	fl := &fakeLLM{}
	ff := &fakeFiles{}
	b := newTestBot(fs, fl, newFakeHistory(), newFakeSettings(), ff)

	msg := docMsg(100, "big.pdf", "application/pdf", 5*1024*1024)
	if err := b.HandleUpdate(context.Background(), Invocation{}, tgbotapi.Update{Message: msg}); err != nil {
		t.Fatalf("rejection is not a turn failure: %v", err)
	}
	if fl.calls != 0 {
		t.Fatalf("no inference call may be made for an oversized document")
	}
	if ff.calls != 0 {
		t.Fatalf("oversized document must not be downloaded")
	}
	if !strings.Contains(fs.sent[0].Text, "too large") {
		t.Fatalf("size-limit message missing: %q", fs.sent[0].Text)
	}
}

func TestDocumentUnsupportedType(t *testing.T) {
	fs := &fakeSender{}
	fl := &fakeLLM{}
	b := newTestBot(fs, fl, newFakeHistory(), newFakeSettings(), &fakeFiles{})

	msg := docMsg(100, "notes.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", 1024)
	if err := b.HandleUpdate(context.Background(), Invocation{}, tgbotapi.Update{Message: msg}); err != nil {
		t.Fatalf("rejection is not a turn failure: %v", err)
	}
	if fl.calls != 0 {
		t.Fatalf("no inference call for unsupported types")
	}
	if !strings.Contains(fs.sent[0].Text, "PDF") {
		t.Fatalf("unsupported-type message missing: %q", fs.sent[0].Text)
	}
}

func TestDocumentTurnIsStateless(t *testing.T) {
	fs := &fakeSender{}
	fl := &fakeLLM{resp: llm.Response{Text: "a summary"}}
	fh := newFakeHistory()
	_ = fh.Append(context.Background(), "100", "user", "earlier chatter")
	ff := &fakeFiles{data: []byte("%PDF-1.4 fake")}
	b := newTestBot(fs, fl, fh, newFakeSettings(), ff)

	msg := docMsg(100, "report.pdf", "application/pdf", 13)
	if err := b.HandleUpdate(context.Background(), Invocation{}, tgbotapi.Update{Message: msg}); err != nil {
		t.Fatalf("document turn failed: %v", err)
	}

	// Single user turn, instruction + document block, no prior history.
	if len(fl.lastMsgs) != 1 {
		t.Fatalf("document window must exclude history: %d messages", len(fl.lastMsgs))
	}
	if len(fl.lastMsgs[0].Content) != 2 {
		t.Fatalf("expected instruction + document blocks, got %d", len(fl.lastMsgs[0].Content))
	}
	if fl.lastMsgs[0].Content[1].Document == nil {
		t.Fatalf("document block missing")
	}
	// Document turns are not persisted.
	if len(fh.rows["100"]) != 1 {
		t.Fatalf("document turn must not be written to history: %+v", fh.rows["100"])
	}
	if fs.sent[0].Text != "a summary" {
		t.Fatalf("unexpected reply: %q", fs.sent[0].Text)
	}
}

func TestDocumentCaptionBecomesInstruction(t *testing.T) {
	fs := &fakeSender{}
	fl := &fakeLLM{resp: llm.Response{Text: "done"}}
	ff := &fakeFiles{data: []byte("%PDF-1.4 fake")}
	b := newTestBot(fs, fl, newFakeHistory(), newFakeSettings(), ff)

	msg := docMsg(100, "report.pdf", "application/pdf", 13)
	msg.Caption = "What are the action items?"
	if err := b.HandleUpdate(context.Background(), Invocation{}, tgbotapi.Update{Message: msg}); err != nil {
		t.Fatalf("document turn failed: %v", err)
	}
	if fl.lastMsgs[0].Content[0].Text != "What are the action items?" {
		t.Fatalf("caption not used as instruction: %q", fl.lastMsgs[0].Content[0].Text)
	}
}

func TestDocumentDownloadFailure(t *testing.T) {
	fs := &fakeSender{}
	fl := &fakeLLM{}
	ff := &fakeFiles{err: errors.New("telegram unreachable")}
	b := newTestBot(fs, fl, newFakeHistory(), newFakeSettings(), ff)

	msg := docMsg(100, "report.pdf", "application/pdf", 13)
	err := b.HandleUpdate(context.Background(), Invocation{}, tgbotapi.Update{Message: msg})
	if err == nil {
		t.Fatalf("expected turn failure")
	}
	if fl.calls != 0 {
		t.Fatalf("no inference call after a failed download")
	}
	if !strings.Contains(fs.sent[0].Text, "could not read") {
		t.Fatalf("user-safe error missing: %q", fs.sent[0].Text)
	}
}

func TestDocumentInferenceFailure(t *testing.T) {
	fs := &fakeSender{}
	fl := &fakeLLM{err: errors.New("service down")}
	ff := &fakeFiles{data: []byte("%PDF-1.4 fake")}
	fh := newFakeHistory()
	b := newTestBot(fs, fl, fh, newFakeSettings(), ff)

	msg := docMsg(100, "report.pdf", "application/pdf", 13)
	err := b.HandleUpdate(context.Background(), Invocation{}, tgbotapi.Update{Message: msg})
	if err == nil {
		t.Fatalf("expected turn failure")
	}
	if len(fh.rows["100"]) != 0 {
		t.Fatalf("nothing may be persisted on a failed document turn")
	}
	if !strings.Contains(fs.sent[0].Text, "could not analyze") {
		t.Fatalf("generic error missing: %q", fs.sent[0].Text)
	}
}
