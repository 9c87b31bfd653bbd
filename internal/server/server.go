/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package server exposes the local observability endpoints: health, status,
// buffered logs, Prometheus metrics, and the persisted journal.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/friendsincode/heliostat/internal/config"
	"github.com/friendsincode/heliostat/internal/daycycle"
	"github.com/friendsincode/heliostat/internal/journal"
	"github.com/friendsincode/heliostat/internal/location"
	"github.com/friendsincode/heliostat/internal/logbuffer"
	"github.com/friendsincode/heliostat/internal/servicectl"
	"github.com/friendsincode/heliostat/internal/telemetry"
	"github.com/friendsincode/heliostat/internal/version"
)

// Server wraps the HTTP listener and its route dependencies.
type Server struct {
	cfg        *config.Config
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server

	loc       location.Location
	cycle     *daycycle.Cycle
	journal   *journal.Service
	logBuffer *logbuffer.Buffer
}

// New constructs the server and wires routes. journal may be nil when the
// journal is disabled; its routes then answer 503.
func New(cfg *config.Config, loc location.Location, cycle *daycycle.Cycle, jrnl *journal.Service, logBuf *logbuffer.Buffer, logger zerolog.Logger) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(telemetry.TracingMiddleware("heliostat-api"))
	router.Use(telemetry.MetricsMiddleware)

	srv := &Server{
		cfg:       cfg,
		logger:    logger.With().Str("component", "server").Logger(),
		router:    router,
		loc:       loc,
		cycle:     cycle,
		journal:   jrnl,
		logBuffer: logBuf,
	}
	srv.configureRoutes()

	srv.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTPBind, cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *Server) configureRoutes() {
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.router.Get("/status", s.handleStatus)
	s.router.Get("/logz", s.handleLogs)
	s.router.Handle("/metrics", telemetry.Handler())

	s.router.Route("/journal", func(r chi.Router) {
		r.Get("/windows", s.handleJournalWindows)
		r.Get("/transitions", s.handleJournalTransitions)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.cycle.Status()
	writeJSON(w, http.StatusOK, map[string]any{
		"version":  version.Version,
		"location": s.loc.String(),
		"unit":     servicectl.ManagedUnit,
		"cycle":    st,
	})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	params := logbuffer.QueryParams{
		Level:      r.URL.Query().Get("level"),
		Component:  r.URL.Query().Get("component"),
		Search:     r.URL.Query().Get("search"),
		Descending: true,
	}
	if since := r.URL.Query().Get("since"); since != "" {
		if t, err := time.Parse(time.RFC3339, since); err == nil {
			params.Since = t
		}
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			params.Limit = n
		}
	}
	if params.Limit == 0 {
		params.Limit = 200
	}

	entries := s.logBuffer.Query(params)
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

func (s *Server) handleJournalWindows(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeError(w, http.StatusServiceUnavailable, "journal disabled")
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	records, err := s.journal.Windows(r.Context(), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("journal windows query failed")
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"windows": records,
		"count":   len(records),
	})
}

func (s *Server) handleJournalTransitions(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeError(w, http.StatusServiceUnavailable, "journal disabled")
		return
	}
	filters := journal.QueryFilters{}
	q := r.URL.Query()
	if intent := q.Get("intent"); intent != "" {
		filters.Intent = &intent
	}
	if state := q.Get("state"); state != "" {
		filters.State = &state
	}
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			filters.Limit = n
		}
	}
	if raw := q.Get("since"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filters.StartTime = &t
		}
	}

	records, total, err := s.journal.Transitions(r.Context(), filters)
	if err != nil {
		s.logger.Error().Err(err).Msg("journal transitions query failed")
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transitions": records,
		"total":       total,
	})
}

// Start runs the listener until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
