package store

import "time"

// Record types sharing the records table. Settings rows reuse the chat
// message key shape with the boolean payload in Enabled.
const (
	TypeChatMessage      = "CHAT_MESSAGE"
	TypeDebugSettings    = "DEBUG_SETTINGS"
	TypeThinkingSettings = "THINKING_SETTINGS"
)

// Record is one row keyed by (chat_id, timestamp). Timestamp is an
// ISO-8601 instant and doubles as the per-chat ordering key; the
// fractional part is fixed-width so string order matches time order.
// ExpireAt is the absolute expiry in epoch seconds.
type Record struct {
	ChatID     string `gorm:"primaryKey;column:chat_id;type:varchar(64)"`
	Timestamp  string `gorm:"primaryKey;column:timestamp;type:varchar(40)"`
	RecordType string `gorm:"column:record_type;type:varchar(32);index;not null"`
	Role       string `gorm:"type:varchar(16)"`
	Content    string `gorm:"type:text"`
	Enabled    bool
	ExpireAt   int64 `gorm:"index"`
}

func (Record) TableName() string { return "records" }

const timestampLayout = "2006-01-02T15:04:05.000000000Z"

func timestampKey(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
