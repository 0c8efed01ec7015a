package recording

import "time"

// Clock measures active time, leaving out every paused interval.
type Clock struct {
	startedAt   time.Time
	pausedTotal time.Duration
	pausedAt    time.Time
	stoppedAt   time.Time
}

func (c *Clock) Start(now time.Time) {
	*c = Clock{startedAt: now}
}

func (c *Clock) Pause(now time.Time) {
	if c.startedAt.IsZero() || !c.pausedAt.IsZero() {
		return
	}
	c.pausedAt = now
}

func (c *Clock) Resume(now time.Time) {
	if c.pausedAt.IsZero() {
		return
	}
	c.pausedTotal += now.Sub(c.pausedAt)
	c.pausedAt = time.Time{}
}

// Stop freezes the clock. An open pause stays open so the frozen value is the
// one observed when the pause began.
func (c *Clock) Stop(now time.Time) {
	if c.startedAt.IsZero() || !c.stoppedAt.IsZero() {
		return
	}
	c.stoppedAt = now
}

func (c *Clock) StartedAt() time.Time {
	return c.startedAt
}

func (c *Clock) Elapsed(now time.Time) time.Duration {
	if c.startedAt.IsZero() {
		return 0
	}
	if !c.stoppedAt.IsZero() {
		now = c.stoppedAt
	}
	elapsed := now.Sub(c.startedAt) - c.pausedTotal
	if !c.pausedAt.IsZero() {
		elapsed -= now.Sub(c.pausedAt)
	}
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

func (c *Clock) ElapsedMillis(now time.Time) int64 {
	return c.Elapsed(now).Milliseconds()
}
