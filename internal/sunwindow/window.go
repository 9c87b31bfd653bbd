/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package sunwindow produces the daily sunrise/sunset window that drives the
// day-cycle scheduler.
package sunwindow

import (
	"time"

	"github.com/rs/zerolog"
)

// Window is the immutable triple of instants governing one day's schedule,
// all in local time and scoped to the calendar day it was constructed on.
type Window struct {
	// Sunrise is the instant the managed service should start.
	Sunrise time.Time
	// Sunset is the instant the managed service should stop.
	Sunset time.Time
	// NextBoundary is 01:00 on the following day; it only paces the next
	// fetch cycle.
	NextBoundary time.Time
}

// Ordered reports whether sunrise < sunset < next boundary. A false result
// is logged by callers as an anomaly but never corrected.
func (w Window) Ordered() bool {
	return w.Sunrise.Before(w.Sunset) && w.Sunset.Before(w.NextBoundary)
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (w Window) MarshalZerologObject(e *zerolog.Event) {
	e.Time("sunrise", w.Sunrise).
		Time("sunset", w.Sunset).
		Time("next_boundary", w.NextBoundary)
}

// Default returns the fixed fallback window for the local date of now:
// sunrise 06:00, sunset 21:00, next boundary 01:00 tomorrow. Pure function,
// no I/O, can never fail.
func Default(now time.Time) Window {
	y, m, d := now.Date()
	loc := now.Location()
	return Window{
		Sunrise:      time.Date(y, m, d, 6, 0, 0, 0, loc),
		Sunset:       time.Date(y, m, d, 21, 0, 0, 0, loc),
		NextBoundary: nextBoundary(now),
	}
}

// nextBoundary returns 01:00 local time on the day after now. It is computed
// purely from system time, never from provider data.
func nextBoundary(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 1, 0, 0, 0, now.Location())
}
