package store

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"
)

// FlagKind selects one per-chat feature toggle.
type FlagKind string

const (
	FlagDebug    FlagKind = TypeDebugSettings
	FlagThinking FlagKind = TypeThinkingSettings
)

// SettingsStore keeps per-chat boolean toggles as an append-only log; the
// current value is the most recently written row of the kind.
type SettingsStore struct {
	db        *gorm.DB
	retention time.Duration
	now       func() time.Time
}

func NewSettingsStore(db *gorm.DB, retention time.Duration) *SettingsStore {
	return &SettingsStore{db: db, retention: retention, now: time.Now}
}

// Flag returns the current value of a toggle. No row and any read error
// both degrade to false; callers never see a settings failure.
func (s *SettingsStore) Flag(ctx context.Context, chatID string, kind FlagKind) bool {
	var rec Record
	err := s.db.WithContext(ctx).
		Where("chat_id = ? AND record_type = ? AND expire_at > ?", chatID, string(kind), s.now().Unix()).
		Order("timestamp DESC").
		First(&rec).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("settings read failed for chat %s (%s), defaulting to disabled: %v", chatID, kind, err)
		}
		return false
	}
	return rec.Enabled
}

// SetFlag appends a new settings row and reports whether the write stuck.
func (s *SettingsStore) SetFlag(ctx context.Context, chatID string, kind FlagKind, value bool) bool {
	now := s.now()
	rec := Record{
		ChatID:     chatID,
		Timestamp:  timestampKey(now),
		RecordType: string(kind),
		Enabled:    value,
		ExpireAt:   now.Add(s.retention).Unix(),
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		log.Printf("settings write failed for chat %s (%s): %v", chatID, kind, err)
		return false
	}
	return true
}

// Toggle flips a flag read-then-write and returns the new value. Races on
// the same chat resolve last-write-wins.
func (s *SettingsStore) Toggle(ctx context.Context, chatID string, kind FlagKind) (bool, bool) {
	next := !s.Flag(ctx, chatID, kind)
	ok := s.SetFlag(ctx, chatID, kind, next)
	return next, ok
}
