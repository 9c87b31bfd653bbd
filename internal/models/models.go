/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package models defines the journal's persisted records. The journal is
// write-only history; nothing in the scheduler reads it back.
package models

import "time"

// WindowSource identifies where a day's window came from.
type WindowSource string

const (
	WindowSourceProvider WindowSource = "provider"
	WindowSourceFallback WindowSource = "fallback"
)

// WindowRecord is one day's acquired window.
type WindowRecord struct {
	ID           string       `gorm:"type:uuid;primaryKey"`
	Day          string       `gorm:"type:varchar(10);index:idx_window_day"` // local date, YYYY-MM-DD
	Sunrise      time.Time    `gorm:"not null"`
	Sunset       time.Time    `gorm:"not null"`
	NextBoundary time.Time    `gorm:"not null"`
	Source       WindowSource `gorm:"type:varchar(16);index:idx_window_source"`
	Ordered      bool
	CreatedAt    time.Time
}

// TableName returns the table name for GORM.
func (WindowRecord) TableName() string {
	return "window_records"
}

// TransitionRecord is one issued service-state command.
type TransitionRecord struct {
	ID        string         `gorm:"type:uuid;primaryKey"`
	Timestamp time.Time      `gorm:"index:idx_transition_timestamp;not null"`
	State     string         `gorm:"type:varchar(32);index:idx_transition_state"`
	Intent    string         `gorm:"type:varchar(8)"` // "start" or "stop"
	Unit      string         `gorm:"type:varchar(128)"`
	Details   map[string]any `gorm:"type:jsonb;serializer:json"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM.
func (TransitionRecord) TableName() string {
	return "transition_records"
}
