// Package escalate computes the display state of a waiting ticket from how
// long it has been pending. The computation is pure: it is a function of the
// ticket, the observation time and the configured threshold, and nothing
// here is ever persisted.
package escalate

import (
	"time"

	"github.com/kmori/junban/internal/model"
)

// State is the ternary display state of a pending ticket.
type State string

const (
	// StateNormal means the ticket has waited less than the threshold.
	StateNormal State = "normal"
	// StateAlert means the ticket has waited at least the threshold.
	StateAlert State = "alert"
	// StateNone is reported for tickets that are not pending.
	StateNone State = "none"
)

// Elapsed returns how long a ticket registered at registeredAt ("15:04:05")
// has been waiting as of now. The sheet stores no date, so the time of day
// is anchored to now's date. Two anomalies are absorbed here rather than
// surfaced: an unparseable time string yields zero, and a registration time
// "after" now (a ticket spanning midnight) is clamped to zero, so such a
// ticket simply never escalates until the clock catches up.
func Elapsed(registeredAt string, now time.Time) time.Duration {
	t, err := time.ParseInLocation(model.TimeLayout, registeredAt, now.Location())
	if err != nil {
		return 0
	}
	reg := time.Date(now.Year(), now.Month(), now.Day(),
		t.Hour(), t.Minute(), t.Second(), 0, now.Location())
	d := now.Sub(reg)
	if d < 0 {
		return 0
	}
	return d
}

// Evaluate returns the display state for a ticket observed at now with the
// given alert threshold. The threshold boundary is inclusive: a ticket that
// has waited exactly the threshold is already in alert.
func Evaluate(t model.Ticket, now time.Time, threshold time.Duration) State {
	if t.Status != model.StatusPending {
		return StateNone
	}
	if Elapsed(t.RegisteredAt, now) >= threshold {
		return StateAlert
	}
	return StateNormal
}
