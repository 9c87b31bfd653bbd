/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package backoff turns repeated hard failures into a soft "use fallback"
// signal for callers.
package backoff

import (
	"context"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/rs/zerolog"
)

// Do invokes op up to attempts times, sleeping delay between attempts.
// Attempts are strictly sequential; the operations target rate-limited
// external resources. Each failure is logged with its attempt index. When
// every attempt fails the second return value is false and the first is the
// zero value; exhaustion is not an error.
func Do[T any](ctx context.Context, attempts uint, delay time.Duration, logger zerolog.Logger, op func(context.Context) (T, error)) (T, bool) {
	var out T
	err := retry.Do(
		func() error {
			v, err := op(ctx)
			if err != nil {
				return err
			}
			out = v
			return nil
		},
		retry.Attempts(attempts),
		retry.Delay(delay),
		retry.DelayType(retry.FixedDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn().
				Uint("attempt", n).
				Dur("delay", delay).
				Err(err).
				Msg("attempt failed, retrying")
		}),
	)
	if err != nil {
		var zero T
		return zero, false
	}
	return out, true
}
