package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run describes one detection run.
type Run struct {
	ID          string
	Pileup      FileFingerprint
	CatalogPath string
	StartedAt   time.Time
}

// BeginRun records a new run and returns it with a fresh id.
func (s *Store) BeginRun(ctx context.Context, pileup FileFingerprint, catalogPath string) (Run, error) {
	run := Run{
		ID:          uuid.NewString(),
		Pileup:      pileup,
		CatalogPath: catalogPath,
		StartedAt:   time.Now().UTC(),
	}
	var mtime any
	if pileup.Local() {
		mtime = pileup.ModTime.UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, pileup_path, pileup_size, pileup_mtime, catalog_path, started_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, pileup.Path, pileup.Size, mtime, catalogPath, run.StartedAt)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// Runs lists recorded runs, most recent first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		run_id, pileup_path, pileup_size, pileup_mtime, catalog_path, started_at
		FROM runs
		ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var mtime sql.NullTime
		if err := rows.Scan(&r.ID, &r.Pileup.Path, &r.Pileup.Size, &mtime, &r.CatalogPath, &r.StartedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if mtime.Valid {
			r.Pileup.ModTime = mtime.Time
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
