/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package journal records window acquisitions and service transitions by
// subscribing to the event bus. History only; the scheduler never reads it.
package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/heliostat/internal/events"
	"github.com/friendsincode/heliostat/internal/models"
)

// Service persists bus events as journal records.
type Service struct {
	db     *gorm.DB
	bus    *events.Bus
	logger zerolog.Logger
}

// NewService creates a journal service.
func NewService(db *gorm.DB, bus *events.Bus, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		bus:    bus,
		logger: logger.With().Str("component", "journal").Logger(),
	}
}

// Start subscribes to scheduler events and records them until ctx ends.
func (s *Service) Start(ctx context.Context) {
	s.logger.Info().Msg("journal service starting")

	windowFetched := s.bus.Subscribe(events.EventWindowFetched)
	windowFallback := s.bus.Subscribe(events.EventWindowFallback)
	serviceStart := s.bus.Subscribe(events.EventServiceStart)
	serviceStop := s.bus.Subscribe(events.EventServiceStop)

	defer func() {
		s.bus.Unsubscribe(events.EventWindowFetched, windowFetched)
		s.bus.Unsubscribe(events.EventWindowFallback, windowFallback)
		s.bus.Unsubscribe(events.EventServiceStart, serviceStart)
		s.bus.Unsubscribe(events.EventServiceStop, serviceStop)
	}()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("journal service stopping")
			return

		case payload := <-windowFetched:
			s.recordWindow(ctx, models.WindowSourceProvider, payload)

		case payload := <-windowFallback:
			s.recordWindow(ctx, models.WindowSourceFallback, payload)

		case payload := <-serviceStart:
			s.recordTransition(ctx, "start", payload)

		case payload := <-serviceStop:
			s.recordTransition(ctx, "stop", payload)
		}
	}
}

func (s *Service) recordWindow(ctx context.Context, source models.WindowSource, payload events.Payload) {
	record := &models.WindowRecord{
		ID:        uuid.NewString(),
		Source:    source,
		CreatedAt: time.Now(),
	}
	if day, ok := payload["day"].(string); ok {
		record.Day = day
	}
	if t, ok := payload["sunrise"].(time.Time); ok {
		record.Sunrise = t
	}
	if t, ok := payload["sunset"].(time.Time); ok {
		record.Sunset = t
	}
	if t, ok := payload["next_boundary"].(time.Time); ok {
		record.NextBoundary = t
	}
	if ordered, ok := payload["ordered"].(bool); ok {
		record.Ordered = ordered
	}

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		s.logger.Error().Err(err).Str("source", string(source)).Msg("failed to record window")
		return
	}
	s.logger.Debug().Str("id", record.ID).Str("day", record.Day).Msg("window recorded")
}

func (s *Service) recordTransition(ctx context.Context, intent string, payload events.Payload) {
	record := &models.TransitionRecord{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Intent:    intent,
		Details:   make(map[string]any),
		CreatedAt: time.Now(),
	}
	if at, ok := payload["at"].(time.Time); ok {
		record.Timestamp = at
	}
	if state, ok := payload["state"].(string); ok {
		record.State = state
	}
	if unit, ok := payload["unit"].(string); ok {
		record.Unit = unit
	}
	for k, v := range payload {
		switch k {
		case "at", "state", "unit":
		default:
			record.Details[k] = v
		}
	}

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		s.logger.Error().Err(err).Str("intent", intent).Msg("failed to record transition")
		return
	}
	s.logger.Debug().Str("id", record.ID).Str("intent", intent).Msg("transition recorded")
}

// QueryFilters defines filters for querying transition history.
type QueryFilters struct {
	Intent    *string
	State     *string
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int
	Offset    int
}

// Transitions retrieves transition records with filters, most recent first.
func (s *Service) Transitions(ctx context.Context, filters QueryFilters) ([]models.TransitionRecord, int64, error) {
	var records []models.TransitionRecord
	var total int64

	query := s.db.WithContext(ctx).Model(&models.TransitionRecord{})

	if filters.Intent != nil {
		query = query.Where("intent = ?", *filters.Intent)
	}
	if filters.State != nil {
		query = query.Where("state = ?", *filters.State)
	}
	if filters.StartTime != nil {
		query = query.Where("timestamp >= ?", *filters.StartTime)
	}
	if filters.EndTime != nil {
		query = query.Where("timestamp <= ?", *filters.EndTime)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	} else {
		query = query.Limit(100)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Order("timestamp DESC").Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// Windows retrieves the most recent window records.
func (s *Service) Windows(ctx context.Context, limit int) ([]models.WindowRecord, error) {
	if limit <= 0 {
		limit = 30
	}
	var records []models.WindowRecord
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}
