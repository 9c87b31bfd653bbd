/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package servicectl starts and stops the managed service through the
// platform's service supervisor. Commands are fire-and-forget: outcomes are
// observed via exit code and logged, never surfaced to the scheduler.
package servicectl

import (
	"context"
	"os/exec"

	"github.com/rs/zerolog"

	"github.com/friendsincode/heliostat/internal/telemetry"
)

// ManagedUnit is the systemd unit whose running state tracks daylight.
// The target is fixed; this daemon schedules exactly one service.
const ManagedUnit = "python.naturewatch.service"

// runner executes a supervisor command and reports its exit code and
// combined output. Split out so tests can observe commands without a
// systemd on the box.
type runner func(ctx context.Context, name string, args ...string) (exitCode int, output string, err error)

func execRunner(ctx context.Context, name string, args ...string) (int, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), string(out), nil
		}
		return -1, string(out), err
	}
	return 0, string(out), nil
}

// Systemd issues systemctl start/stop commands for the managed unit.
type Systemd struct {
	unit   string
	run    runner
	logger zerolog.Logger
}

// New constructs a controller for the managed unit.
func New(logger zerolog.Logger) *Systemd {
	return &Systemd{
		unit:   ManagedUnit,
		run:    execRunner,
		logger: logger.With().Str("component", "servicectl").Str("unit", ManagedUnit).Logger(),
	}
}

// Apply requests the managed service be running or stopped. Idempotent by
// intent: systemctl treats repeated start/stop as no-ops. Failures are
// logged and counted, never returned; the next transition in the cycle will
// issue the opposite command regardless.
func (s *Systemd) Apply(ctx context.Context, running bool) {
	verb := "stop"
	if running {
		verb = "start"
	}

	s.logger.Info().Str("verb", verb).Msg("issuing service command")

	code, out, err := s.run(ctx, "systemctl", verb, s.unit)
	switch {
	case err != nil:
		telemetry.ServiceCommandsTotal.WithLabelValues(verb, "error").Inc()
		s.logger.Error().Err(err).Str("verb", verb).Msg("service command could not run")
	case code != 0:
		telemetry.ServiceCommandsTotal.WithLabelValues(verb, "nonzero").Inc()
		s.logger.Error().Int("exit_code", code).Str("verb", verb).Str("output", out).Msg("service command exited with error")
	default:
		telemetry.ServiceCommandsTotal.WithLabelValues(verb, "ok").Inc()
		s.logger.Info().Int("exit_code", code).Str("verb", verb).Msg("service command completed")
	}

	if running {
		telemetry.ServiceIntent.Set(1)
	} else {
		telemetry.ServiceIntent.Set(0)
	}
}
