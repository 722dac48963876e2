// Package store is the local SQLite persistence layer: nudges, notes,
// milestones, and the run/sent/ingest audit logs.
//
// The store is single-writer by design: one process, one invocation, one
// open handle. Callers create the Store at the start of an invocation and
// defer Close so the connection is always released, including on failure.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store owns the SQLite handle for one invocation.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open initializes the SQLite database at the given path, creating the
// schema when missing.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// initialize creates the required tables.
func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS nudges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		content TEXT NOT NULL,
		due_at TEXT,
		priority TEXT NOT NULL DEFAULT 'normal',
		status TEXT NOT NULL DEFAULT 'pending',
		source TEXT NOT NULL DEFAULT 'manual',
		created_at TEXT NOT NULL,
		completed_at TEXT,
		CONSTRAINT valid_priority CHECK (priority IN ('low', 'normal', 'high', 'urgent')),
		CONSTRAINT valid_status CHECK (status IN ('pending', 'sent', 'completed', 'cancelled'))
	);
	CREATE INDEX IF NOT EXISTS idx_nudges_status ON nudges(status);
	CREATE INDEX IF NOT EXISTS idx_nudges_due ON nudges(due_at);

	CREATE TABLE IF NOT EXISTS notes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		content TEXT NOT NULL,
		tags TEXT,
		source TEXT NOT NULL DEFAULT 'manual',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS milestones (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		due_at TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT 'manual',
		risk_flag INTEGER NOT NULL DEFAULT 0,
		risk_note TEXT,
		created_at TEXT NOT NULL,
		CONSTRAINT valid_source CHECK (source IN ('manual', 'calendar')),
		UNIQUE(title, due_at)
	);
	CREATE INDEX IF NOT EXISTS idx_milestones_due ON milestones(due_at);

	CREATE TABLE IF NOT EXISTS run_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		mode TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		outcome TEXT NOT NULL,
		detail TEXT,
		CONSTRAINT valid_outcome CHECK (outcome IN ('success', 'failure'))
	);

	CREATE TABLE IF NOT EXISTS sent_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		channel TEXT NOT NULL,
		recipient TEXT NOT NULL,
		subject TEXT,
		content TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'sent',
		error_message TEXT,
		sent_at TEXT NOT NULL,
		CONSTRAINT valid_channel CHECK (channel IN ('email', 'sms'))
	);
	CREATE INDEX IF NOT EXISTS idx_sent_log_channel ON sent_log(channel);

	CREATE TABLE IF NOT EXISTS email_ingest_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		message_id TEXT UNIQUE NOT NULL,
		subject TEXT,
		sender TEXT,
		command TEXT,
		payload TEXT,
		status TEXT NOT NULL DEFAULT 'processed',
		error_message TEXT,
		processed_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_email_ingest_message_id ON email_ingest_log(message_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Timestamps are stored as UTC RFC3339 text so lexical order matches
// chronological order. The fractional seconds are fixed-width:
// RFC3339Nano trims trailing zeros, which would sort a whole-second
// timestamp after sub-second ones in the same second.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// nullableTime maps the zero time to NULL.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}

func parseTime(ns sql.NullString) time.Time {
	if !ns.Valid || ns.String == "" {
		return time.Time{}
	}
	// RFC3339Nano parsing accepts any fractional width, including rows
	// written without sub-second precision.
	t, err := time.Parse(time.RFC3339Nano, ns.String)
	if err != nil {
		return time.Time{}
	}
	return t
}
