// Package clock abstracts wall-clock time so the day-cycle's temporal logic
// can be driven by a fake in tests.
package clock

import (
	"context"
	"time"
)

// Clock provides the current local time and blocking sleeps.
type Clock interface {
	Now() time.Time
	// SleepUntil blocks until t arrives or ctx is cancelled. Instants
	// already in the past return immediately.
	SleepUntil(ctx context.Context, t time.Time) error
}

// System implements Clock using the actual system time.
type System struct{}

func (System) Now() time.Time {
	return time.Now()
}

func (System) SleepUntil(ctx context.Context, t time.Time) error {
	d := time.Until(t)
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Fake implements Clock for testing specific scenarios. SleepUntil advances
// the fake time instantly and records the requested instant.
type Fake struct {
	Current time.Time
	Slept   []time.Time
}

func NewFake(now time.Time) *Fake {
	return &Fake{Current: now}
}

func (f *Fake) Now() time.Time {
	return f.Current
}

func (f *Fake) SleepUntil(ctx context.Context, t time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.Slept = append(f.Slept, t)
	if t.After(f.Current) {
		f.Current = t
	}
	return nil
}
