/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/friendsincode/heliostat/internal/clock"
	"github.com/friendsincode/heliostat/internal/config"
	"github.com/friendsincode/heliostat/internal/daycycle"
	"github.com/friendsincode/heliostat/internal/db"
	"github.com/friendsincode/heliostat/internal/events"
	"github.com/friendsincode/heliostat/internal/journal"
	"github.com/friendsincode/heliostat/internal/location"
	"github.com/friendsincode/heliostat/internal/logbuffer"
	"github.com/friendsincode/heliostat/internal/logging"
	"github.com/friendsincode/heliostat/internal/server"
	"github.com/friendsincode/heliostat/internal/servicectl"
	"github.com/friendsincode/heliostat/internal/sunwindow"
	"github.com/friendsincode/heliostat/internal/telemetry"
	"github.com/friendsincode/heliostat/internal/version"
)

var (
	logger zerolog.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "heliostat",
	Short: "Heliostat - daylight-driven service scheduler",
	Long:  "Heliostat keeps a systemd service running only between sunrise and sunset for a fixed location, fetching the day's sun window each morning.",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the daylight scheduler daemon",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(windowCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration (called by commands that need it)
func loadConfig() (*logbuffer.Buffer, error) {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logBuf := logbuffer.New(cfg.LogBufferSize)
	logger = logging.SetupWithWriter(cfg.Environment, logbuffer.NewWriter(logBuf, nil))
	return logBuf, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	logBuf, err := loadConfig()
	if err != nil {
		return err
	}

	logger.Info().Str("version", version.Version).Msg("heliostat starting")

	loc, err := location.ReadFile(cfg.LocationFile)
	if err != nil {
		return fmt.Errorf("read location %s: %w", cfg.LocationFile, err)
	}
	logger.Info().Stringer("location", loc).Msg("location loaded")

	tracerProvider, err := telemetry.InitTracer(context.Background(), telemetry.TracerConfig{
		ServiceName:    "heliostat",
		ServiceVersion: version.Version,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TracingEnabled,
		SampleRate:     cfg.TracingSampleRate,
	}, logger)
	if err != nil {
		return fmt.Errorf("initialize tracer: %w", err)
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown tracer provider")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := events.NewBus()
	clk := clock.System{}

	var jrnl *journal.Service
	if cfg.JournalEnabled {
		gormDB, err := db.Connect(cfg)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer func() {
			if err := db.Close(gormDB); err != nil {
				logger.Error().Err(err).Msg("database close failed")
			}
		}()
		if err := db.Migrate(gormDB); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		jrnl = journal.NewService(gormDB, bus, logger)
	}

	provider := sunwindow.NewClient(sunwindow.ClientConfig{
		BaseURL:    cfg.ProviderBaseURL,
		Timezone:   cfg.ProviderTimezone,
		Timeout:    cfg.FetchTimeout,
		CrossCheck: cfg.CrossCheck,
	}, clk, logger)
	controller := servicectl.New(logger)
	cycle := daycycle.New(loc, provider, controller, clk, bus,
		cfg.RetryAttempts, cfg.RetryDelay, logger)

	srv := server.New(cfg, loc, cycle, jrnl, logBuf, logger)

	var wg sync.WaitGroup

	if jrnl != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			jrnl.Start(ctx)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.Start(ctx); err != nil {
			logger.Error().Err(err).Msg("http server error")
			cancel()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := cycle.Run(ctx); err != nil && err != context.Canceled {
			logger.Error().Err(err).Msg("day cycle error")
		}
		cancel()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down gracefully...")
	case <-ctx.Done():
	}
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		logger.Warn().Msg("shutdown timed out")
	}

	logger.Info().Msg("heliostat stopped")
	return nil
}
