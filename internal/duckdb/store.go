// Package duckdb records detection runs and their report rows in DuckDB,
// and caches parsed pileups on disk as gob files.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding detection results.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id VARCHAR PRIMARY KEY,
			pileup_path VARCHAR,
			pileup_size BIGINT,
			pileup_mtime TIMESTAMP,
			catalog_path VARCHAR,
			started_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS detection_results (
			run_id VARCHAR,
			seq BIGINT,
			aro BIGINT,
			gene_type VARCHAR,
			mutation_type VARCHAR,
			classification VARCHAR,
			mutations VARCHAR,
			total_depth VARCHAR,
			depth VARCHAR,
			percent VARCHAR,
			evidence VARCHAR,
			PRIMARY KEY (run_id, seq)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
