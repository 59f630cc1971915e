package clock

import "time"

// Clock is injected wherever "now" decides behaviour (game day, wager limits).
type Clock interface {
	Now() time.Time
}

// RealClock reads the wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// AnchorClock always returns the same instant.
type AnchorClock struct {
	anchor time.Time
}

// NewAnchorClock creates an AnchorClock. A zero t anchors to the current time.
func NewAnchorClock(t time.Time) AnchorClock {
	if t.IsZero() {
		return AnchorClock{anchor: time.Now()}
	}
	return AnchorClock{anchor: t}
}

func (c AnchorClock) Now() time.Time { return c.anchor }

// FakeClock is a programmable clock for tests.
type FakeClock struct {
	NowFn func() time.Time
}

func (f *FakeClock) Now() time.Time {
	if f.NowFn != nil {
		return f.NowFn()
	}
	return time.Now()
}
