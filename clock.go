package darkmatter

import "time"

// TimeSource supplies monotonic timestamps in milliseconds. The scheduler
// never reads the wall clock directly; hosts and tests inject their own
// source when they need to control time.
type TimeSource interface {
	NowMs() float64
}

// systemClock measures milliseconds since its creation using the runtime's
// monotonic clock.
type systemClock struct {
	start time.Time
}

// NewSystemClock returns a TimeSource backed by the monotonic system clock.
// Timestamps start at zero when the clock is created.
func NewSystemClock() TimeSource {
	return &systemClock{start: time.Now()}
}

func (c *systemClock) NowMs() float64 {
	return float64(time.Since(c.start)) / float64(time.Millisecond)
}

// manualClock is a TimeSource advanced explicitly. Used by tests.
type manualClock struct {
	ms float64
}

func (c *manualClock) NowMs() float64 { return c.ms }

func (c *manualClock) advance(ms float64) { c.ms += ms }
