// Package conversation assembles the ordered message window for one
// inference call from persisted history and the new user turn.
package conversation

import (
	"fmt"
	"time"

	"chat-relay/internal/llm"
	"chat-relay/internal/store"
)

const timeNoteFormat = "Monday, 2 January 2006, 15:04 UTC"

// Window builds the request messages: stored turns reversed to
// oldest-first, then the new user turn prefixed with a non-binding
// current-time note.
func Window(recent []store.Record, userText string, now time.Time) []llm.Message {
	msgs := make([]llm.Message, 0, len(recent)+1)
	for i := len(recent) - 1; i >= 0; i-- {
		r := recent[i]
		msgs = append(msgs, llm.Text(r.Role, r.Content))
	}
	note := fmt.Sprintf("(Current time: %s. Do not mention the time unless it is relevant to the request.)\n\n",
		now.UTC().Format(timeNoteFormat))
	msgs = append(msgs, llm.Text(llm.RoleUser, note+userText))
	return msgs
}

// DocumentWindow builds the single-turn request for a file attachment.
// Document analysis is stateless: no prior history is included.
func DocumentWindow(instruction, name string, data []byte) []llm.Message {
	return []llm.Message{{
		Role: llm.RoleUser,
		Content: []llm.ContentBlock{
			{Type: llm.BlockText, Text: instruction},
			{Type: llm.BlockDocument, Document: &llm.Document{
				Format: "pdf",
				Name:   SanitizeFilename(name),
				Data:   data,
			}},
		},
	}}
}
