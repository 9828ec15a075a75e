package webhook

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"chat-relay/internal/telegram"
)

type fakeHandler struct {
	err     error
	calls   int
	lastInv telegram.Invocation
	lastUpd tgbotapi.Update
}

func (f *fakeHandler) HandleUpdate(ctx context.Context, inv telegram.Invocation, upd tgbotapi.Update) error {
	f.calls++
	f.lastInv = inv
	f.lastUpd = upd
	return f.err
}

const updateJSON = `{"update_id":7,"message":{"message_id":1,"chat":{"id":100,"type":"private"},"text":"Hello"}}`

func post(t *testing.T, s *Server, secret, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set(secretHeader, secret)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func TestWebhookRejectsBadSecret(t *testing.T) {
	h := &fakeHandler{}
	s := New("right-secret", time.Minute, "dev", h)

	for _, secret := range []string{"", "wrong-secret"} {
		w := post(t, s, secret, updateJSON)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("secret %q: expected 401, got %d", secret, w.Code)
		}
	}
	if h.calls != 0 {
		t.Fatalf("handler must never see unauthenticated requests")
	}
}

func TestWebhookSuccess(t *testing.T) {
	h := &fakeHandler{}
	s := New("s3cret", time.Minute, "v1.2.3", h)

	w := post(t, s, "s3cret", updateJSON)
	if w.Code != http.StatusOK || w.Body.String() != "Success" {
		t.Fatalf("expected 200 Success, got %d %q", w.Code, w.Body.String())
	}
	if h.calls != 1 {
		t.Fatalf("handler not invoked")
	}
	if h.lastUpd.Message == nil || h.lastUpd.Message.Text != "Hello" {
		t.Fatalf("update not decoded: %+v", h.lastUpd)
	}
	if h.lastInv.ID == "" || h.lastInv.Version != "v1.2.3" {
		t.Fatalf("invocation not populated: %+v", h.lastInv)
	}
	if !h.lastInv.Deadline.After(h.lastInv.StartedAt) {
		t.Fatalf("deadline must follow start: %+v", h.lastInv)
	}
}

func TestWebhookHandlerFailure(t *testing.T) {
	h := &fakeHandler{err: errors.New("turn failed")}
	s := New("s3cret", time.Minute, "dev", h)

	w := post(t, s, "s3cret", updateJSON)
	if w.Code != http.StatusInternalServerError || w.Body.String() != "Failure" {
		t.Fatalf("expected 500 Failure, got %d %q", w.Code, w.Body.String())
	}
}

func TestWebhookMalformedBody(t *testing.T) {
	h := &fakeHandler{}
	s := New("s3cret", time.Minute, "dev", h)

	w := post(t, s, "s3cret", "{not json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if h.calls != 0 {
		t.Fatalf("handler must not run on malformed updates")
	}
}

func TestWebhookInvocationIDsAreUnique(t *testing.T) {
	h := &fakeHandler{}
	s := New("s3cret", time.Minute, "dev", h)

	post(t, s, "s3cret", updateJSON)
	first := h.lastInv.ID
	post(t, s, "s3cret", updateJSON)
	if h.lastInv.ID == first {
		t.Fatalf("invocation ids must be unique per request")
	}
}

func TestHealthz(t *testing.T) {
	s := New("s3cret", time.Minute, "dev", &fakeHandler{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
