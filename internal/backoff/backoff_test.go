/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package backoff

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

var errBoom = errors.New("boom")

func TestDoReturnsFirstSuccess(t *testing.T) {
	calls := 0
	got, ok := Do(context.Background(), 5, time.Millisecond, zerolog.Nop(), func(context.Context) (int, error) {
		calls++
		return 42, nil
	})
	if !ok {
		t.Fatal("expected success")
	}
	if got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
	if calls != 1 {
		t.Fatalf("op called %d times, want 1", calls)
	}
}

func TestDoStopsRetryingAfterSuccess(t *testing.T) {
	calls := 0
	got, ok := Do(context.Background(), 5, time.Millisecond, zerolog.Nop(), func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errBoom
		}
		return "sun", nil
	})
	if !ok || got != "sun" {
		t.Fatalf("got (%q, %v), want (\"sun\", true)", got, ok)
	}
	if calls != 3 {
		t.Fatalf("op called %d times, want 3", calls)
	}
}

func TestDoExhaustionYieldsNoResult(t *testing.T) {
	calls := 0
	got, ok := Do(context.Background(), 4, time.Millisecond, zerolog.Nop(), func(context.Context) (int, error) {
		calls++
		return 99, errBoom
	})
	if ok {
		t.Fatal("expected no result after exhaustion")
	}
	if got != 0 {
		t.Fatalf("got %d, want zero value", got)
	}
	if calls != 4 {
		t.Fatalf("op called %d times, want 4", calls)
	}
}

func TestDoRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, ok := Do(ctx, 10, time.Hour, zerolog.Nop(), func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, errBoom
	})
	if ok {
		t.Fatal("expected no result after cancellation")
	}
	if calls != 1 {
		t.Fatalf("op called %d times, want 1", calls)
	}
}

func TestDoLogsEachFailedAttempt(t *testing.T) {
	var logged int
	hook := zerolog.HookFunc(func(e *zerolog.Event, level zerolog.Level, msg string) {
		if msg == "attempt failed, retrying" {
			logged++
		}
	})
	logger := zerolog.New(io.Discard).Hook(hook)

	Do(context.Background(), 3, time.Millisecond, logger, func(context.Context) (int, error) {
		return 0, errBoom
	})

	if logged != 3 {
		t.Fatalf("logged %d retry warnings, want 3", logged)
	}
}
