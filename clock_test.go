package darkmatter

import (
	"testing"
	"time"
)

func TestSystemClockMonotonic(t *testing.T) {
	c := NewSystemClock()
	a := c.NowMs()
	time.Sleep(2 * time.Millisecond)
	b := c.NowMs()
	if b <= a {
		t.Errorf("clock went backwards: %f then %f", a, b)
	}
	if a > 1000 {
		t.Errorf("fresh clock starts at %f, want near zero", a)
	}
}

func TestManualClock(t *testing.T) {
	c := &manualClock{}
	c.advance(16)
	c.advance(16)
	if c.NowMs() != 32 {
		t.Errorf("manual clock = %f, want 32", c.NowMs())
	}
}

func TestEngineClockOption(t *testing.T) {
	c := &manualClock{ms: 500}
	e := NewEngine(Options{Clock: c})
	if e.Clock() != TimeSource(c) {
		t.Error("engine ignored the injected clock")
	}
	if e.Clock().NowMs() != 500 {
		t.Errorf("clock reads %f, want 500", e.Clock().NowMs())
	}
}
