package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-amr/internal/amr"
	"github.com/inodb/vibe-amr/internal/detect"
)

// Result is a stored report row with the run it belongs to.
type Result struct {
	RunID string
	Row   *detect.Row
}

// WriteRows batch-inserts report rows for a run using the Appender API.
func (s *Store) WriteRows(ctx context.Context, runID string, rows []*detect.Row) error {
	if len(rows) == 0 {
		return nil
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "detection_results")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range rows {
		if err := appender.AppendRow(
			runID, int64(r.Seq), int64(r.ARO),
			r.GeneType, r.MutationType, r.Verdict.String(), r.Mutations,
			r.TotalDepth, r.Depth, r.Percent, r.Evidence,
		); err != nil {
			return fmt.Errorf("append detection result: %w", err)
		}
	}

	return appender.Flush()
}

const resultColumns = `run_id, seq, aro, gene_type, mutation_type, classification,
	mutations, total_depth, depth, percent, evidence`

// RowsForRun returns a run's rows in report order.
func (s *Store) RowsForRun(ctx context.Context, runID string) ([]*detect.Row, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+resultColumns+`
		FROM detection_results
		WHERE run_id=?
		ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run rows: %w", err)
	}
	defer rows.Close()

	results, err := scanResults(rows)
	if err != nil {
		return nil, err
	}
	out := make([]*detect.Row, len(results))
	for i, r := range results {
		out[i] = r.Row
	}
	return out, nil
}

// SearchByARO returns every stored row for an ARO across runs.
func (s *Store) SearchByARO(ctx context.Context, aro int) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+resultColumns+`
		FROM detection_results
		WHERE aro=?
		ORDER BY run_id, seq`, int64(aro))
	if err != nil {
		return nil, fmt.Errorf("query by aro: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

// CountByClassification returns the number of rows per verdict for a run.
func (s *Store) CountByClassification(ctx context.Context, runID string) (map[amr.Verdict]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT classification, count(*)
		FROM detection_results
		WHERE run_id=?
		GROUP BY classification`, runID)
	if err != nil {
		return nil, fmt.Errorf("count by classification: %w", err)
	}
	defer rows.Close()

	counts := make(map[amr.Verdict]int)
	for rows.Next() {
		var name string
		var n int64
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[amr.ParseVerdict(name)] += int(n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}
	return counts, nil
}

// scanResults scans rows into Result slices.
func scanResults(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]Result, error) {
	var results []Result
	for rows.Next() {
		var runID, classification string
		var seq, aro int64
		r := &detect.Row{}

		if err := rows.Scan(
			&runID, &seq, &aro, &r.GeneType, &r.MutationType, &classification,
			&r.Mutations, &r.TotalDepth, &r.Depth, &r.Percent, &r.Evidence,
		); err != nil {
			return nil, fmt.Errorf("scan detection result: %w", err)
		}
		r.Seq = int(seq)
		r.ARO = int(aro)
		r.Verdict = amr.ParseVerdict(classification)
		results = append(results, Result{RunID: runID, Row: r})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate detection results: %w", err)
	}
	return results, nil
}

// DefaultBatchSize is the number of rows a ResultWriter buffers before
// appending them.
const DefaultBatchSize = 1000

// ResultWriter stores report rows for one run. It implements
// detect.RowWriter so it can sit next to the TSV writer.
type ResultWriter struct {
	store     *Store
	runID     string
	batch     []*detect.Row
	batchSize int
}

// NewResultWriter creates a writer appending to runID.
func NewResultWriter(s *Store, runID string) *ResultWriter {
	return &ResultWriter{store: s, runID: runID, batchSize: DefaultBatchSize}
}

// WriteHeader is a no-op; the schema is fixed.
func (w *ResultWriter) WriteHeader() error { return nil }

// Write buffers a row, appending the batch when it is full.
func (w *ResultWriter) Write(r *detect.Row) error {
	w.batch = append(w.batch, r)
	if len(w.batch) >= w.batchSize {
		return w.Flush()
	}
	return nil
}

// Flush appends buffered rows.
func (w *ResultWriter) Flush() error {
	if err := w.store.WriteRows(context.Background(), w.runID, w.batch); err != nil {
		return err
	}
	w.batch = w.batch[:0]
	return nil
}
