package store

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Sweeper periodically deletes expired rows, standing in for the storage
// engine's own TTL collection. Reads filter on expire_at themselves, so
// sweep cadence only affects disk usage, never correctness.
type Sweeper struct {
	db   *gorm.DB
	cron *cron.Cron
	now  func() time.Time
}

func NewSweeper(db *gorm.DB) *Sweeper {
	return &Sweeper{db: db, cron: cron.New(), now: time.Now}
}

func (s *Sweeper) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Sweeper) Stop() { s.cron.Stop() }

func (s *Sweeper) sweep() {
	res := s.db.Where("expire_at <= ?", s.now().Unix()).Delete(&Record{})
	if res.Error != nil {
		log.Printf("ttl sweep failed: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("ttl sweep removed %d expired rows", res.RowsAffected)
	}
}
