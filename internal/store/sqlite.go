package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/paul-stiebitz/entity-extract/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	mode        TEXT NOT NULL,
	concurrency INTEGER NOT NULL,
	doc_count   INTEGER NOT NULL,
	succeeded   INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	wall_ms     INTEGER NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS run_results (
	id           TEXT PRIMARY KEY,
	run_id       TEXT NOT NULL REFERENCES runs(id),
	doc_index    INTEGER NOT NULL,
	entities     TEXT,
	failure_kind TEXT NOT NULL DEFAULT '',
	reason       TEXT NOT NULL DEFAULT '',
	elapsed_ms   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_run_results_run_id ON run_results(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, metrics model.RunMetrics, results []model.ExtractionResult) (*Run, error) {
	run := &Run{
		ID:          uuid.New().String(),
		Mode:        metrics.Mode,
		Concurrency: metrics.Concurrency,
		DocCount:    metrics.DocCount,
		Succeeded:   metrics.Succeeded,
		Failed:      metrics.Failed,
		WallClock:   metrics.WallClock,
		CreatedAt:   time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, mode, concurrency, doc_count, succeeded, failed, wall_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Mode), run.Concurrency, run.DocCount,
		run.Succeeded, run.Failed, run.WallClock.Milliseconds(), run.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	for _, res := range results {
		var entitiesJSON []byte
		if res.Entities != nil {
			entitiesJSON, err = json.Marshal(res.Entities)
			if err != nil {
				return nil, eris.Wrapf(err, "sqlite: marshal entities for doc %d", res.Index)
			}
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_results (id, run_id, doc_index, entities, failure_kind, reason, elapsed_ms)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), run.ID, res.Index, string(entitiesJSON),
			string(res.Failure), res.Reason, res.Elapsed.Milliseconds(),
		)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: insert result for doc %d", res.Index)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit run")
	}
	return run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, mode, concurrency, doc_count, succeeded, failed, wall_ms, created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var mode string
		var wallMS int64
		if err := rows.Scan(&r.ID, &mode, &r.Concurrency, &r.DocCount, &r.Succeeded, &r.Failed, &wallMS, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		r.Mode = model.Mode(mode)
		r.WallClock = time.Duration(wallMS) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

func (s *SQLiteStore) GetRunResults(ctx context.Context, runID string) ([]model.ExtractionResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc_index, entities, failure_kind, reason, elapsed_ms
		 FROM run_results WHERE run_id = ? ORDER BY doc_index`, runID)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get results for run %s", runID)
	}
	defer rows.Close()

	var results []model.ExtractionResult
	for rows.Next() {
		var res model.ExtractionResult
		var entitiesJSON sql.NullString
		var kind, reason string
		var elapsedMS int64
		if err := rows.Scan(&res.Index, &entitiesJSON, &kind, &reason, &elapsedMS); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan result")
		}
		if entitiesJSON.Valid && entitiesJSON.String != "" {
			if err := json.Unmarshal([]byte(entitiesJSON.String), &res.Entities); err != nil {
				return nil, eris.Wrapf(err, "sqlite: unmarshal entities for doc %d", res.Index)
			}
		}
		res.Failure = model.FailureKind(kind)
		res.Reason = reason
		res.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		results = append(results, res)
	}
	return results, eris.Wrap(rows.Err(), "sqlite: iterate results")
}
