// Package store persists extraction runs and benchmark history.
package store

import (
	"context"
	"time"

	"github.com/paul-stiebitz/entity-extract/internal/model"
)

// Run is one recorded dispatch run.
type Run struct {
	ID          string        `json:"id"`
	Mode        model.Mode    `json:"mode"`
	Concurrency int           `json:"concurrency"`
	DocCount    int           `json:"doc_count"`
	Succeeded   int           `json:"succeeded"`
	Failed      int           `json:"failed"`
	WallClock   time.Duration `json:"wall_clock"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Store defines the persistence interface for extraction runs.
type Store interface {
	// SaveRun records one run's metrics and per-document results.
	SaveRun(ctx context.Context, metrics model.RunMetrics, results []model.ExtractionResult) (*Run, error)
	// ListRuns returns runs in reverse chronological order, newest first.
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	// GetRunResults returns a run's per-document results ordered by index.
	GetRunResults(ctx context.Context, runID string) ([]model.ExtractionResult, error)

	Migrate(ctx context.Context) error
	Close() error
}
