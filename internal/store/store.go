// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists search sessions and fetched records in a local
// SQLite database so that returning to a result view, or reopening a
// record by share link, does not require re-querying the backend.
// Implements: prd002-session (R3), prd004-detail (R2);
//
//	docs/ARCHITECTURE § Session Store.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/wos-client/pkg/types"
)

const dbFile = "session.db"

// ErrNoSession is returned by LoadCurrent when nothing was persisted.
var ErrNoSession = errors.New("no saved session")

// Snapshot is one persisted search session: the originating filters, the
// executed result set, and its shareable location.
type Snapshot struct {
	Key      string
	Filters  []types.FilterClause
	Results  types.ResultSet
	Location string
	SavedAt  time.Time
}

// Store manages the session SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the session database in cfg.StoreDir, creating
// the schema if it does not exist.
func Open(cfg types.SessionConfig) (*Store, error) {
	dir := cfg.StoreDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving store directory: %w", err)
		}
		dir = filepath.Join(home, ".local", "share", "wos-client")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			key TEXT PRIMARY KEY,
			filters TEXT NOT NULL,
			items TEXT NOT NULL,
			total_matched INTEGER NOT NULL DEFAULT 0,
			current_page INTEGER NOT NULL DEFAULT 1,
			location TEXT,
			saved_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS current_session (
			pin INTEGER PRIMARY KEY CHECK (pin = 1),
			key TEXT NOT NULL REFERENCES sessions(key)
		)`,
		`CREATE TABLE IF NOT EXISTS record_cache (
			uid TEXT PRIMARY KEY,
			record TEXT NOT NULL,
			query_time REAL,
			cached_at TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveSession writes a session snapshot, marks it as the current
// session, and drops any snapshot saved under another key. Only one
// session survives a save.
func (s *Store) SaveSession(ctx context.Context, snap Snapshot) error {
	filtersJSON, err := json.Marshal(snap.Filters)
	if err != nil {
		return fmt.Errorf("encoding filters: %w", err)
	}
	itemsJSON, err := json.Marshal(snap.Results.Items)
	if err != nil {
		return fmt.Errorf("encoding items: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (key, filters, items, total_matched, current_page, location, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			filters=excluded.filters, items=excluded.items,
			total_matched=excluded.total_matched, current_page=excluded.current_page,
			location=excluded.location, saved_at=excluded.saved_at`,
		snap.Key, string(filtersJSON), string(itemsJSON),
		snap.Results.TotalMatched, snap.Results.CurrentPage,
		snap.Location, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upserting session: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO current_session (pin, key) VALUES (1, ?)
		 ON CONFLICT(pin) DO UPDATE SET key=excluded.key`,
		snap.Key,
	)
	if err != nil {
		return fmt.Errorf("pinning current session: %w", err)
	}

	// Each run writes under a fresh key; superseded rows would pile up
	// forever without this.
	_, err = tx.ExecContext(ctx, `DELETE FROM sessions WHERE key <> ?`, snap.Key)
	if err != nil {
		return fmt.Errorf("pruning superseded sessions: %w", err)
	}

	return tx.Commit()
}

// LoadCurrent returns the most recently saved session snapshot, or
// ErrNoSession when nothing was persisted.
func (s *Store) LoadCurrent(ctx context.Context) (Snapshot, error) {
	var (
		snap        Snapshot
		filtersJSON string
		itemsJSON   string
		savedAt     string
		location    sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT s.key, s.filters, s.items, s.total_matched, s.current_page, s.location, s.saved_at
		 FROM sessions s JOIN current_session c ON c.key = s.key`,
	).Scan(&snap.Key, &filtersJSON, &itemsJSON,
		&snap.Results.TotalMatched, &snap.Results.CurrentPage, &location, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNoSession
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading session: %w", err)
	}

	if err := json.Unmarshal([]byte(filtersJSON), &snap.Filters); err != nil {
		return Snapshot{}, fmt.Errorf("decoding filters: %w", err)
	}
	if err := json.Unmarshal([]byte(itemsJSON), &snap.Results.Items); err != nil {
		return Snapshot{}, fmt.Errorf("decoding items: %w", err)
	}
	snap.Location = location.String
	if t, perr := time.Parse(time.RFC3339Nano, savedAt); perr == nil {
		snap.SavedAt = t
	}
	return snap, nil
}

// SaveRecord caches one fetched record keyed by identifier.
func (s *Store) SaveRecord(ctx context.Context, rec types.PaperRecord, queryTime float64) error {
	if rec.UID == "" {
		return fmt.Errorf("record has no identifier")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO record_cache (uid, record, query_time, cached_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(uid) DO UPDATE SET
			record=excluded.record, query_time=excluded.query_time, cached_at=excluded.cached_at`,
		rec.UID, string(data), queryTime, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("caching record %s: %w", rec.UID, err)
	}
	return nil
}

// LoadRecord returns a cached record by identifier. The second return
// reports whether the cache held it.
func (s *Store) LoadRecord(ctx context.Context, uid string) (*types.PaperRecord, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM record_cache WHERE uid = ?`, uid,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading record %s: %w", uid, err)
	}
	var rec types.PaperRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, false, fmt.Errorf("decoding record %s: %w", uid, err)
	}
	return &rec, true, nil
}
