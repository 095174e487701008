// Package store persists trigger events and monitor run audit records.
// Two backends exist: SQLite for local single-user use and Postgres for
// shared deployments.
package store

import (
	"context"

	"github.com/sells-group/trigger-cli/internal/model"
)

// Filter specifies criteria for querying triggers. Company matches as a
// substring; archived rows are excluded unless IncludeArchived is set.
type Filter struct {
	SourceType      string  `json:"source_type,omitempty"`
	Company         string  `json:"company,omitempty"`
	MinScore        float64 `json:"min_score,omitempty"`
	Limit           int     `json:"limit,omitempty"`
	IncludeArchived bool    `json:"include_archived,omitempty"`
}

// highScoreThreshold marks a trigger as high-priority in statistics.
const highScoreThreshold = 7.0

// defaultQueryLimit caps query results when the filter gives no limit.
const defaultQueryLimit = 100

// Store defines the persistence interface for trigger detection.
type Store interface {
	// Triggers. InsertTrigger returns the new row ID, or 0 with a nil
	// error when the event's content fingerprint already exists.
	InsertTrigger(ctx context.Context, ev model.TriggerEvent) (int64, error)
	QueryTriggers(ctx context.Context, filter Filter) ([]model.TriggerEvent, error)
	GetTrigger(ctx context.Context, id int64) (*model.TriggerEvent, error)
	MarkProcessed(ctx context.Context, id int64) error
	Archive(ctx context.Context, id int64) error
	SetNotes(ctx context.Context, id int64, notes string) error
	Stats(ctx context.Context) (*model.TriggerStats, error)

	// Monitor run audit trail
	RecordRun(ctx context.Context, run model.MonitorRun) error
	ListRuns(ctx context.Context, limit int) ([]model.MonitorRun, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
