// Package manifest persists build records so successive runs can be
// compared and reported on. Storage is a single SQLite file.
package manifest

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one persisted build run.
type Record struct {
	BuildID    string
	Started    time.Time
	Duration   time.Duration
	Outcome    string
	Pages      int
	Hubs       int
	Assets     int
	Errors     int
	Collisions int
	Fuzzy      int64
	Adopted    int64
	Unresolved int64
}

// Store persists build records to SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open creates or opens a manifest store. Use ":memory:" for an
// in-memory database, or a file path for persistent storage.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL UNIQUE,
		started INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		pages INTEGER NOT NULL,
		hubs INTEGER NOT NULL,
		assets INTEGER NOT NULL,
		errors INTEGER NOT NULL,
		collisions INTEGER NOT NULL,
		fuzzy INTEGER NOT NULL,
		adopted INTEGER NOT NULL,
		unresolved INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started ON builds(started);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save persists one build record.
func (s *Store) Save(ctx context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO builds (build_id, started, duration_ms, outcome, pages, hubs, assets, errors, collisions, fuzzy, adopted, unresolved)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.BuildID, r.Started.Unix(), r.Duration.Milliseconds(), r.Outcome,
		r.Pages, r.Hubs, r.Assets, r.Errors, r.Collisions, r.Fuzzy, r.Adopted, r.Unresolved,
	)
	if err != nil {
		return fmt.Errorf("insert build record: %w", err)
	}
	return nil
}

// Latest returns the most recent build records, newest first.
func (s *Store) Latest(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT build_id, started, duration_ms, outcome, pages, hubs, assets, errors, collisions, fuzzy, adopted, unresolved
		 FROM builds ORDER BY started DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query build records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var started, durationMS int64
		if err := rows.Scan(&r.BuildID, &started, &durationMS, &r.Outcome,
			&r.Pages, &r.Hubs, &r.Assets, &r.Errors, &r.Collisions, &r.Fuzzy, &r.Adopted, &r.Unresolved); err != nil {
			return nil, fmt.Errorf("scan build record: %w", err)
		}
		r.Started = time.Unix(started, 0)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, r)
	}
	return records, rows.Err()
}

// Get returns one build record by its identifier.
func (s *Store) Get(ctx context.Context, buildID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT build_id, started, duration_ms, outcome, pages, hubs, assets, errors, collisions, fuzzy, adopted, unresolved
		 FROM builds WHERE build_id = ?`, buildID)

	var r Record
	var started, durationMS int64
	err := row.Scan(&r.BuildID, &started, &durationMS, &r.Outcome,
		&r.Pages, &r.Hubs, &r.Assets, &r.Errors, &r.Collisions, &r.Fuzzy, &r.Adopted, &r.Unresolved)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("build %s not found", buildID)
	}
	if err != nil {
		return nil, fmt.Errorf("scan build record: %w", err)
	}
	r.Started = time.Unix(started, 0)
	r.Duration = time.Duration(durationMS) * time.Millisecond
	return &r, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
