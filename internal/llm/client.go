package llm

import (
	"context"
	"fmt"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const (
	BlockText     = "text"
	BlockDocument = "document"
)

// Message is one conversation turn, ordered oldest-first when sent.
type Message struct {
	Role    string
	Content []ContentBlock
}

type ContentBlock struct {
	Type     string
	Text     string
	Document *Document
}

// Document carries a raw file payload for analysis turns.
type Document struct {
	Format string // "pdf"
	Name   string // sanitized display name
	Data   []byte
}

func Text(role, text string) Message {
	return Message{Role: role, Content: []ContentBlock{{Type: BlockText, Text: text}}}
}

// Options are the feature-conditioned request fields for a single call.
type Options struct {
	Thinking bool
}

// Response is the parsed result of one inference call. Thinking and Text
// come from independent content blocks and may both be present.
type Response struct {
	Text         string
	Thinking     string
	Model        string
	LatencyMs    int64
	InputTokens  int
	OutputTokens int
}

// Visible renders the reply shown to the user: labeled sections when a
// reasoning block came back, plain text otherwise.
func (r Response) Visible() string {
	if r.Thinking == "" {
		return r.Text
	}
	return fmt.Sprintf("Thinking:\n%s\n\nResponse:\n%s", r.Thinking, r.Text)
}

type Client interface {
	Generate(ctx context.Context, messages []Message, opts Options) (Response, error)
}
