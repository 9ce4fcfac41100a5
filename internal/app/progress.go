package app

import "time"

// DefaultReportInterval caps intermediate progress events at ten per second.
const DefaultReportInterval = 100 * time.Millisecond

// throttle coalesces intermediate progress events. Final events bypass it
// but still reset the window.
type throttle struct {
	interval time.Duration
	last     time.Time
	primed   bool
}

func (t *throttle) allow(now time.Time) bool {
	if t.primed && now.Sub(t.last) < t.interval {
		return false
	}
	t.mark(now)
	return true
}

func (t *throttle) mark(now time.Time) {
	t.last = now
	t.primed = true
}
