package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// deleteBatchSize is the hard ceiling on keys per delete statement,
// mirroring the underlying store's batch-write limit.
const deleteBatchSize = 25

// HistoryStore is the append-only per-chat message log with bounded
// retention. Rows are never updated in place.
type HistoryStore struct {
	db        *gorm.DB
	retention time.Duration
	now       func() time.Time
}

func NewHistoryStore(db *gorm.DB, retention time.Duration) *HistoryStore {
	return &HistoryStore{db: db, retention: retention, now: time.Now}
}

// Append writes one chat turn. Retries may duplicate; that is accepted.
func (s *HistoryStore) Append(ctx context.Context, chatID, role, content string) error {
	now := s.now()
	rec := Record{
		ChatID:     chatID,
		Timestamp:  timestampKey(now),
		RecordType: TypeChatMessage,
		Role:       role,
		Content:    content,
		ExpireAt:   now.Add(s.retention).Unix(),
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

// Recent returns non-expired chat turns newest-first. Callers reverse to
// oldest-first before building a conversation. Settings rows never appear
// here regardless of expiry state.
func (s *HistoryStore) Recent(ctx context.Context, chatID string, limit int) ([]Record, error) {
	q := s.db.WithContext(ctx).
		Where("chat_id = ? AND record_type = ? AND expire_at > ?", chatID, TypeChatMessage, s.now().Unix()).
		Order("timestamp DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var recs []Record
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return recs, nil
}

// Clear deletes every chat turn for the chat in bounded key batches and
// returns the number of rows removed. An empty chat is not an error.
func (s *HistoryStore) Clear(ctx context.Context, chatID string) (int, error) {
	var keys []string
	if err := s.db.WithContext(ctx).Model(&Record{}).
		Where("chat_id = ? AND record_type = ?", chatID, TypeChatMessage).
		Pluck("timestamp", &keys).Error; err != nil {
		return 0, fmt.Errorf("list turns: %w", err)
	}
	deleted := 0
	for len(keys) > 0 {
		batch := keys
		if len(batch) > deleteBatchSize {
			batch = keys[:deleteBatchSize]
		}
		keys = keys[len(batch):]
		res := s.db.WithContext(ctx).
			Where("chat_id = ? AND record_type = ? AND timestamp IN ?", chatID, TypeChatMessage, batch).
			Delete(&Record{})
		if res.Error != nil {
			return deleted, fmt.Errorf("delete batch: %w", res.Error)
		}
		deleted += int(res.RowsAffected)
	}
	return deleted, nil
}
