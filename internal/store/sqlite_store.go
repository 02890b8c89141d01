// Package store provides SQLite-backed persistence for corpus-scale
// disambiguation tables and build-run statistics.
// Uses ncruces/go-sqlite3/driver which provides a database/sql interface.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/couzinie/uncontract/pkg/builder"
	"github.com/couzinie/uncontract/pkg/disambig"
)

// SQLiteStore is the SQLite-backed data store. Safe for concurrent reads;
// build runs are single-writer by design.
type SQLiteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

// schema defines the persistence layer: one row per (key, expansion)
// frequency record, plus an append-only log of build runs.
const schema = `
CREATE TABLE IF NOT EXISTS records (
    words TEXT NOT NULL,
    tags TEXT NOT NULL,
    expansion TEXT NOT NULL,
    count INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (words, tags, expansion)
);

CREATE INDEX IF NOT EXISTS idx_records_key ON records(words, tags);

CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at INTEGER NOT NULL,
    sentences INTEGER NOT NULL,
    skipped INTEGER NOT NULL,
    contracted INTEGER NOT NULL,
    new_records INTEGER NOT NULL,
    ambiguities INTEGER NOT NULL,
    tag_failures INTEGER NOT NULL
);
`

// NewSQLiteStore creates an in-memory store.
func NewSQLiteStore() (*SQLiteStore, error) {
	return NewSQLiteStoreWithDSN(":memory:")
}

// NewSQLiteStoreWithDSN opens (creating if needed) a store at the given
// SQLite DSN.
func NewSQLiteStoreWithDSN(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// IncrementRecord adds delta to the count of (key, expansion), creating
// the row if absent.
func (s *SQLiteStore) IncrementRecord(key disambig.Key, expansion string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO records (words, tags, expansion, count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(words, tags, expansion) DO UPDATE SET count = count + excluded.count
	`, joinCol(key.Words), joinCol(key.Tags), expansion, delta)
	return err
}

// SaveTable replaces the stored records with the table's contents. Last
// full write wins; there is no merge across writers.
func (s *SQLiteStore) SaveTable(t *disambig.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM records"); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`
		INSERT INTO records (words, tags, expansion, count) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range t.Records() {
		for expansion, count := range rec.Counts {
			if _, err := stmt.Exec(joinCol(rec.Key.Words), joinCol(rec.Key.Tags), expansion, count); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// LoadTable reads every stored record into a fresh disambiguation table.
func (s *SQLiteStore) LoadTable() (*disambig.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT words, tags, expansion, count FROM records")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	t := disambig.NewTable()
	for rows.Next() {
		var words, tags, expansion string
		var count int
		if err := rows.Scan(&words, &tags, &expansion, &count); err != nil {
			return nil, err
		}
		key := disambig.Key{Words: splitCol(words), Tags: splitCol(tags)}
		for i := 0; i < count; i++ {
			t.Add(key, expansion)
		}
	}
	return t, rows.Err()
}

// RecordRun appends one build run's statistics.
func (s *SQLiteStore) RecordRun(stats builder.Stats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO runs (started_at, sentences, skipped, contracted, new_records, ambiguities, tag_failures)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, time.Now().Unix(), stats.Sentences, stats.Skipped, stats.Contracted,
		stats.NewRecords, stats.Ambiguities, stats.TagFailures)
	return err
}

// ListRuns returns recorded runs, newest first.
func (s *SQLiteStore) ListRuns() ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, started_at, sentences, skipped, contracted, new_records, ambiguities, tag_failures
		FROM runs ORDER BY id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.Sentences, &r.Skipped,
			&r.Contracted, &r.NewRecords, &r.Ambiguities, &r.TagFailures); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Export serializes the whole store to a JSON blob.
func (s *SQLiteStore) Export() ([]byte, error) {
	records, err := s.exportRecords()
	if err != nil {
		return nil, err
	}
	runs, err := s.ListRuns()
	if err != nil {
		return nil, err
	}
	return json.Marshal(ExportData{Records: records, Runs: runs})
}

// Import loads a JSON blob produced by Export into this store, replacing
// existing records.
func (s *SQLiteStore) Import(data []byte) error {
	var export ExportData
	if err := json.Unmarshal(data, &export); err != nil {
		return fmt.Errorf("parse export: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM records"); err != nil {
		return err
	}
	for _, rec := range export.Records {
		if _, err := tx.Exec(`
			INSERT INTO records (words, tags, expansion, count) VALUES (?, ?, ?, ?)
		`, rec.Words, rec.Tags, rec.Expansion, rec.Count); err != nil {
			return err
		}
	}
	for _, run := range export.Runs {
		if _, err := tx.Exec(`
			INSERT INTO runs (started_at, sentences, skipped, contracted, new_records, ambiguities, tag_failures)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, run.StartedAt, run.Sentences, run.Skipped, run.Contracted,
			run.NewRecords, run.Ambiguities, run.TagFailures); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) exportRecords() ([]RecordRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT words, tags, expansion, count FROM records ORDER BY words, tags, expansion")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RecordRow
	for rows.Next() {
		var r RecordRow
		if err := rows.Scan(&r.Words, &r.Tags, &r.Expansion, &r.Count); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func joinCol(items []string) string { return strings.Join(items, " ") }
func splitCol(col string) []string  { return strings.Fields(col) }
