/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/friendsincode/heliostat/internal/clock"
	"github.com/friendsincode/heliostat/internal/location"
	"github.com/friendsincode/heliostat/internal/sunwindow"
)

// Window flags
var (
	windowNoFallback bool
	windowLat        float64
	windowLong       float64
)

var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Fetch today's sun window and print it",
	Long:  "Perform a single fetch of today's sunrise and sunset for the configured location and print the resulting window as JSON. Useful for verifying provider connectivity before running the daemon.",
	RunE:  runWindow,
}

func init() {
	windowCmd.Flags().BoolVar(&windowNoFallback, "no-fallback", false, "fail instead of printing the default window when the fetch fails")
	windowCmd.Flags().Float64Var(&windowLat, "lat", 0, "override latitude (requires --long)")
	windowCmd.Flags().Float64Var(&windowLong, "long", 0, "override longitude (requires --lat)")
}

func runWindow(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(); err != nil {
		return err
	}

	var loc location.Location
	if cmd.Flags().Changed("lat") || cmd.Flags().Changed("long") {
		if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("long") {
			return fmt.Errorf("--lat and --long must be given together")
		}
		loc = location.Location{Lat: windowLat, Long: windowLong}
	} else {
		var err error
		loc, err = location.ReadFile(cfg.LocationFile)
		if err != nil {
			return fmt.Errorf("read location %s: %w", cfg.LocationFile, err)
		}
	}

	client := sunwindow.NewClient(sunwindow.ClientConfig{
		BaseURL:    cfg.ProviderBaseURL,
		Timezone:   cfg.ProviderTimezone,
		Timeout:    cfg.FetchTimeout,
		CrossCheck: cfg.CrossCheck,
	}, clock.System{}, logger)

	source := "provider"
	w, err := client.Fetch(cmd.Context(), loc)
	if err != nil {
		if windowNoFallback {
			return fmt.Errorf("fetch window: %w", err)
		}
		logger.Warn().Err(err).Msg("fetch failed, printing default window")
		w = client.Default()
		source = "fallback"
	}

	out := struct {
		Location     string    `json:"location"`
		Source       string    `json:"source"`
		Sunrise      time.Time `json:"sunrise"`
		Sunset       time.Time `json:"sunset"`
		NextBoundary time.Time `json:"next_boundary"`
		Ordered      bool      `json:"ordered"`
	}{
		Location:     loc.String(),
		Source:       source,
		Sunrise:      w.Sunrise,
		Sunset:       w.Sunset,
		NextBoundary: w.NextBoundary,
		Ordered:      w.Ordered(),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
