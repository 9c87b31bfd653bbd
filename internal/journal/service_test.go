/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package journal

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/friendsincode/heliostat/internal/events"
	"github.com/friendsincode/heliostat/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.WindowRecord{}, &models.TransitionRecord{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewService(db, events.NewBus(), zerolog.Nop())
}

func TestRecordWindow(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	sunrise := time.Date(2024, 5, 1, 5, 12, 0, 0, time.UTC)
	s.recordWindow(ctx, models.WindowSourceProvider, events.Payload{
		"day":           "2024-05-01",
		"sunrise":       sunrise,
		"sunset":        sunrise.Add(15 * time.Hour),
		"next_boundary": sunrise.Add(20 * time.Hour),
		"ordered":       true,
	})

	records, err := s.Windows(ctx, 10)
	if err != nil {
		t.Fatalf("query windows: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	got := records[0]
	if got.Day != "2024-05-01" {
		t.Errorf("day = %q", got.Day)
	}
	if got.Source != models.WindowSourceProvider {
		t.Errorf("source = %q", got.Source)
	}
	if !got.Ordered {
		t.Error("expected ordered record")
	}
}

func TestRecordTransitionAndQuery(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 5, 12, 0, 0, time.UTC)
	s.recordTransition(ctx, "stop", events.Payload{
		"at":    base,
		"state": "awaiting_sunrise",
		"unit":  "test.service",
	})
	s.recordTransition(ctx, "start", events.Payload{
		"at":    base.Add(time.Minute),
		"state": "awaiting_sunset",
		"unit":  "test.service",
	})

	records, total, err := s.Transitions(ctx, QueryFilters{})
	if err != nil {
		t.Fatalf("query transitions: %v", err)
	}
	if total != 2 {
		t.Fatalf("total = %d, want 2", total)
	}
	if records[0].Intent != "start" {
		t.Fatalf("expected most recent first, got intent %q", records[0].Intent)
	}

	intent := "stop"
	records, total, err = s.Transitions(ctx, QueryFilters{Intent: &intent})
	if err != nil {
		t.Fatalf("query transitions: %v", err)
	}
	if total != 1 || records[0].State != "awaiting_sunrise" {
		t.Fatalf("filtered query returned total=%d records=%v", total, records)
	}
}

func TestStartConsumesBusEvents(t *testing.T) {
	s := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	// Give the subscriber loop a moment to register before publishing.
	time.Sleep(50 * time.Millisecond)
	s.bus.Publish(events.EventServiceStop, events.Payload{
		"state": "awaiting_next_cycle",
		"unit":  "test.service",
	})

	deadline := time.Now().Add(2 * time.Second)
	for {
		_, total, err := s.Transitions(context.Background(), QueryFilters{})
		if err != nil {
			t.Fatalf("query transitions: %v", err)
		}
		if total == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("transition was not recorded from bus event")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	<-done
}
