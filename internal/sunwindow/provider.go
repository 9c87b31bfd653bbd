/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package sunwindow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	astro "github.com/nathan-osman/go-sunrise"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/friendsincode/heliostat/internal/clock"
	"github.com/friendsincode/heliostat/internal/location"
	"github.com/friendsincode/heliostat/internal/telemetry"
)

// ErrTransientFetch marks any failure reaching or parsing the sun data
// provider. It is recovered via retry and fallback, never surfaced past the
// fetch boundary.
var ErrTransientFetch = errors.New("transient sun data fetch failure")

// crossCheckTolerance is how far the provider's instants may deviate from
// the locally computed astronomical estimate before a warning is logged.
const crossCheckTolerance = 30 * time.Minute

// ClientConfig configures the provider client.
type ClientConfig struct {
	BaseURL    string
	Timezone   string
	Timeout    time.Duration
	CrossCheck bool
}

// Client fetches daily sun windows from a sunrisesunset.io-style HTTP API.
type Client struct {
	baseURL    string
	timezone   string
	crossCheck bool
	httpClient *http.Client
	clock      clock.Clock
	logger     zerolog.Logger
}

// NewClient constructs a provider client.
func NewClient(cfg ClientConfig, clk clock.Clock, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		timezone:   cfg.Timezone,
		crossCheck: cfg.CrossCheck,
		httpClient: &http.Client{Timeout: timeout},
		clock:      clk,
		logger:     logger.With().Str("component", "sunwindow").Logger(),
	}
}

// apiResponse is the provider's JSON body. Epoch values arrive as numeric
// strings because the request asks for time_format=unix.
type apiResponse struct {
	Results struct {
		Sunrise string `json:"sunrise"`
		Sunset  string `json:"sunset"`
	} `json:"results"`
	Status string `json:"status"`
}

// Fetch queries the provider for today's window at the given location. Any
// network, protocol, or data-shape failure wraps ErrTransientFetch.
//
// The provider's epoch values carry an unreliable date component (observed a
// day behind) while the time of day is correct, so the returned date is
// discarded and today's date substituted.
func (c *Client) Fetch(ctx context.Context, loc location.Location) (Window, error) {
	ctx, span := telemetry.StartSpan(ctx, "sunwindow", "Fetch")
	defer span.End()
	telemetry.AddSpanAttributes(span, map[string]any{
		"lat":  loc.Lat,
		"long": loc.Long,
	})

	today := c.clock.Now()
	telemetry.FetchAttemptsTotal.Inc()

	u := c.requestURL(loc, today)
	c.logger.Info().Str("url", u).Msg("fetching sun window")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Window{}, c.fetchErr(span, "request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Window{}, c.fetchErr(span, "network", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Window{}, c.fetchErr(span, "status", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Window{}, c.fetchErr(span, "decode", err)
	}

	sunrise, err := epochToLocal(body.Results.Sunrise, today)
	if err != nil {
		return Window{}, c.fetchErr(span, "shape", fmt.Errorf("sunrise: %w", err))
	}
	sunset, err := epochToLocal(body.Results.Sunset, today)
	if err != nil {
		return Window{}, c.fetchErr(span, "shape", fmt.Errorf("sunset: %w", err))
	}

	w := Window{
		Sunrise:      sunrise,
		Sunset:       sunset,
		NextBoundary: nextBoundary(today),
	}

	if c.crossCheck {
		c.crossCheckWindow(loc, today, w)
	}

	return w, nil
}

// Default returns the fixed fallback window for the current local date.
func (c *Client) Default() Window {
	return Default(c.clock.Now())
}

func (c *Client) requestURL(loc location.Location, today time.Time) string {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(loc.Lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(loc.Long, 'f', -1, 64))
	q.Set("time_format", "unix")
	q.Set("date", fmt.Sprintf("%d-%d-%d", today.Year(), int(today.Month()), today.Day()))
	q.Set("timezone", c.timezone)
	return c.baseURL + "?" + q.Encode()
}

func (c *Client) fetchErr(span trace.Span, reason string, err error) error {
	telemetry.FetchFailuresTotal.WithLabelValues(reason).Inc()
	telemetry.RecordError(span, err)
	return fmt.Errorf("%w: %s: %v", ErrTransientFetch, reason, err)
}

// epochToLocal converts a numeric epoch-seconds string to a local timestamp
// with today's date substituted for the date the epoch value decodes to.
func epochToLocal(raw string, today time.Time) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("missing field")
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse epoch %q: %v", raw, err)
	}
	t := time.Unix(int64(secs), 0).In(today.Location())
	y, m, d := today.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, today.Location()), nil
}

// crossCheckWindow compares the provider's instants against a locally
// computed astronomical estimate and logs deviations. Advisory only.
func (c *Client) crossCheckWindow(loc location.Location, today time.Time, w Window) {
	rise, set := astro.SunriseSunset(loc.Lat, loc.Long, today.Year(), today.Month(), today.Day())
	if rise.IsZero() || set.IsZero() {
		// Polar day or night; nothing to compare against.
		return
	}
	rise = rise.In(today.Location())
	set = set.In(today.Location())

	if d := absDuration(w.Sunrise.Sub(rise)); d > crossCheckTolerance {
		c.logger.Warn().
			Time("provider", w.Sunrise).
			Time("computed", rise).
			Dur("deviation", d).
			Msg("provider sunrise deviates from astronomical estimate")
	}
	if d := absDuration(w.Sunset.Sub(set)); d > crossCheckTolerance {
		c.logger.Warn().
			Time("provider", w.Sunset).
			Time("computed", set).
			Dur("deviation", d).
			Msg("provider sunset deviates from astronomical estimate")
	}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
