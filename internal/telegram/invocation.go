package telegram

import "time"

// Invocation carries per-request diagnostics through the turn instead of
// process-wide globals, so reused or concurrent invocations cannot leak
// state into each other.
type Invocation struct {
	ID        string
	StartedAt time.Time
	Deadline  time.Time
	Version   string
}

func (inv Invocation) Elapsed(now time.Time) time.Duration { return now.Sub(inv.StartedAt) }

func (inv Invocation) Remaining(now time.Time) time.Duration {
	if inv.Deadline.IsZero() {
		return 0
	}
	return inv.Deadline.Sub(now)
}
