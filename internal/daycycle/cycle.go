/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package daycycle runs the day-cycle state machine: acquire one day's sun
// window, walk its boundary instants in order, issue the paired service
// command before each sleep, and loop. One day at a time, forever.
package daycycle

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/heliostat/internal/backoff"
	"github.com/friendsincode/heliostat/internal/clock"
	"github.com/friendsincode/heliostat/internal/events"
	"github.com/friendsincode/heliostat/internal/location"
	"github.com/friendsincode/heliostat/internal/servicectl"
	"github.com/friendsincode/heliostat/internal/sunwindow"
	"github.com/friendsincode/heliostat/internal/telemetry"
)

// State identifies which boundary instant the scheduler is sleeping toward.
type State string

const (
	StateAwaitingSunrise   State = "awaiting_sunrise"
	StateAwaitingSunset    State = "awaiting_sunset"
	StateAwaitingNextCycle State = "awaiting_next_cycle"
)

// WindowProvider supplies one day's window, with a fallback that cannot fail.
type WindowProvider interface {
	Fetch(ctx context.Context, loc location.Location) (sunwindow.Window, error)
	Default() sunwindow.Window
}

// ServiceController applies the managed service's desired running state.
// Implementations log failures themselves; commands are fire-and-forget.
type ServiceController interface {
	Apply(ctx context.Context, running bool)
}

// Status is an observability snapshot of the running cycle.
type Status struct {
	State        State              `json:"state"`
	Window       *sunwindow.Window  `json:"window,omitempty"`
	WindowSource string             `json:"window_source,omitempty"`
	NextWake     time.Time          `json:"next_wake,omitzero"`
	Running      bool               `json:"requested_running"`
	Location     location.Location  `json:"location"`
	Cycles       uint64             `json:"cycles_completed"`
}

// Cycle is the scheduler. The only state carried between iterations is the
// immutable location; each day's window is constructed fresh and discarded.
type Cycle struct {
	loc        location.Location
	provider   WindowProvider
	controller ServiceController
	clock      clock.Clock
	bus        *events.Bus
	logger     zerolog.Logger
	attempts   uint
	delay      time.Duration

	mu     sync.RWMutex
	status Status
}

// New constructs the day-cycle scheduler. attempts and delay govern the
// per-day fetch retry; zero values fall back to 5 attempts, 120s apart.
func New(loc location.Location, provider WindowProvider, controller ServiceController, clk clock.Clock, bus *events.Bus, attempts uint, delay time.Duration, logger zerolog.Logger) *Cycle {
	if attempts == 0 {
		attempts = 5
	}
	if delay <= 0 {
		delay = 120 * time.Second
	}
	return &Cycle{
		loc:        loc,
		provider:   provider,
		controller: controller,
		clock:      clk,
		bus:        bus,
		logger:     logger.With().Str("component", "daycycle").Logger(),
		attempts:   attempts,
		delay:      delay,
		status:     Status{Location: loc},
	}
}

// Run executes the scheduler loop until the context is cancelled. It never
// returns for any other reason: fetch failures degrade to the default
// window, and anomalies are logged, not fatal.
func (c *Cycle) Run(ctx context.Context) error {
	c.logger.Info().Stringer("location", c.loc).Msg("day cycle started")
	for {
		if err := ctx.Err(); err != nil {
			c.logger.Info().Msg("day cycle stopped")
			return err
		}
		if err := c.runOnce(ctx); err != nil {
			c.logger.Info().Msg("day cycle stopped")
			return err
		}
	}
}

// runOnce executes a single day iteration. The only error it returns is
// context cancellation.
func (c *Cycle) runOnce(ctx context.Context) error {
	w, source := c.acquireWindow(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}

	c.logger.Info().Object("window", w).Str("source", source).Msg("day window acquired")

	ordered := w.Ordered()
	if !ordered {
		telemetry.OrderingViolationsTotal.Inc()
		c.logger.Error().Object("window", w).Msg("unexpected ordering of boundary instants")
		c.bus.Publish(events.EventWindowMisordered, c.windowPayload(w, ordered))
	}

	event := events.EventWindowFetched
	if source == "fallback" {
		event = events.EventWindowFallback
	}
	c.bus.Publish(event, c.windowPayload(w, ordered))

	// The window is treated as authoritative for this cycle even when
	// misordered; per-instant skipping converges to the right state for
	// "now" regardless of where in the day the process started.
	steps := []struct {
		state State
		at    time.Time
		run   bool
		event events.EventType
	}{
		{StateAwaitingSunrise, w.Sunrise, false, events.EventServiceStop},
		{StateAwaitingSunset, w.Sunset, true, events.EventServiceStart},
		{StateAwaitingNextCycle, w.NextBoundary, false, events.EventServiceStop},
	}

	for _, step := range steps {
		if !c.clock.Now().Before(step.at) {
			c.logger.Debug().
				Str("state", string(step.state)).
				Time("at", step.at).
				Msg("boundary already passed, skipping")
			continue
		}

		telemetry.TransitionsTotal.WithLabelValues(string(step.state)).Inc()
		telemetry.NextWakeTimestamp.Set(float64(step.at.Unix()))
		c.setStatus(step.state, &w, source, step.at, step.run)

		// Command before sleep: converges to the correct state
		// immediately instead of waiting for the next boundary.
		c.controller.Apply(ctx, step.run)
		c.bus.Publish(step.event, events.Payload{
			"state":    string(step.state),
			"at":       c.clock.Now(),
			"unit":     servicectl.ManagedUnit,
			"boundary": step.at,
		})

		c.logger.Info().
			Str("state", string(step.state)).
			Time("until", step.at).
			Msg("sleeping until boundary")
		if err := c.clock.SleepUntil(ctx, step.at); err != nil {
			return err
		}
	}

	telemetry.CyclesTotal.Inc()
	c.mu.Lock()
	c.status.Cycles++
	cycles := c.status.Cycles
	c.mu.Unlock()
	c.bus.Publish(events.EventCycleComplete, events.Payload{"cycles": cycles})
	return nil
}

// acquireWindow fetches today's window with retry, degrading to the fixed
// default. It cannot fail; no fetch failure escapes this boundary.
func (c *Cycle) acquireWindow(ctx context.Context) (sunwindow.Window, string) {
	w, ok := backoff.Do(ctx, c.attempts, c.delay, c.logger, func(ctx context.Context) (sunwindow.Window, error) {
		return c.provider.Fetch(ctx, c.loc)
	})
	if ok {
		return w, "provider"
	}

	w = c.provider.Default()
	telemetry.FallbackWindowsTotal.Inc()
	c.logger.Warn().Object("window", w).Msg("live sun data unavailable, using default window")
	return w, "fallback"
}

func (c *Cycle) windowPayload(w sunwindow.Window, ordered bool) events.Payload {
	return events.Payload{
		"day":           w.Sunrise.Format("2006-01-02"),
		"sunrise":       w.Sunrise,
		"sunset":        w.Sunset,
		"next_boundary": w.NextBoundary,
		"ordered":       ordered,
	}
}

func (c *Cycle) setStatus(state State, w *sunwindow.Window, source string, nextWake time.Time, running bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status.State = state
	c.status.Window = w
	c.status.WindowSource = source
	c.status.NextWake = nextWake
	c.status.Running = running
}

// Status returns a snapshot of the cycle for the status endpoint.
func (c *Cycle) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}
