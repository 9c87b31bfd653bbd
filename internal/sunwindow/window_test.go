/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package sunwindow

import (
	"testing"
	"time"
)

func TestDefaultWindow(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
	}{
		{"morning", time.Date(2024, 5, 1, 3, 30, 0, 0, time.UTC)},
		{"midday", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		{"late evening", time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Default(tt.now)

			y, m, d := tt.now.Date()
			wantSunrise := time.Date(y, m, d, 6, 0, 0, 0, time.UTC)
			wantSunset := time.Date(y, m, d, 21, 0, 0, 0, time.UTC)
			wantBoundary := time.Date(y, m, d+1, 1, 0, 0, 0, time.UTC)

			if !w.Sunrise.Equal(wantSunrise) {
				t.Errorf("sunrise = %v, want %v", w.Sunrise, wantSunrise)
			}
			if !w.Sunset.Equal(wantSunset) {
				t.Errorf("sunset = %v, want %v", w.Sunset, wantSunset)
			}
			if !w.NextBoundary.Equal(wantBoundary) {
				t.Errorf("next boundary = %v, want %v", w.NextBoundary, wantBoundary)
			}
			if !w.Ordered() {
				t.Error("default window must always be ordered")
			}
		})
	}
}

func TestDefaultWindowCrossesYearBoundary(t *testing.T) {
	w := Default(time.Date(2024, 12, 31, 22, 0, 0, 0, time.UTC))
	want := time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC)
	if !w.NextBoundary.Equal(want) {
		t.Fatalf("next boundary = %v, want %v", w.NextBoundary, want)
	}
}

func TestWindowOrdered(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return day.Add(time.Duration(h) * time.Hour) }

	tests := []struct {
		name string
		w    Window
		want bool
	}{
		{"well formed", Window{at(5), at(20), at(25)}, true},
		{"sunset before sunrise", Window{at(20), at(5), at(25)}, false},
		{"boundary before sunset", Window{at(5), at(20), at(19)}, false},
		{"sunrise equals sunset", Window{at(5), at(5), at(25)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.w.Ordered(); got != tt.want {
				t.Fatalf("Ordered() = %v, want %v", got, tt.want)
			}
		})
	}
}
