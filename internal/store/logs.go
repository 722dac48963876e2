package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Run outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// RunRecord is one row of the append-only run log: exactly one per
// invocation, regardless of outcome.
type RunRecord struct {
	ID         int64
	RunID      string
	Mode       string
	StartedAt  time.Time
	FinishedAt time.Time
	Outcome    string
	Detail     string
}

// LogRun appends a run record.
func (s *Store) LogRun(rec RunRecord) error {
	if _, err := s.db.Exec(
		`INSERT INTO run_log (run_id, mode, started_at, finished_at, outcome, detail)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Mode, formatTime(rec.StartedAt), formatTime(rec.FinishedAt), rec.Outcome, rec.Detail,
	); err != nil {
		return fmt.Errorf("failed to log run: %w", err)
	}
	return nil
}

// Runs returns the newest limit run records, newest first.
func (s *Store) Runs(limit int) ([]RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, mode, started_at, finished_at, outcome, detail
		 FROM run_log ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query run log: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		var detail sql.NullString
		var started, finished string
		if err := rows.Scan(&r.ID, &r.RunID, &r.Mode, &started, &finished, &r.Outcome, &detail); err != nil {
			return nil, fmt.Errorf("failed to scan run record: %w", err)
		}
		r.StartedAt = parseTime(sql.NullString{String: started, Valid: true})
		r.FinishedAt = parseTime(sql.NullString{String: finished, Valid: true})
		r.Detail = detail.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// LogSent records an outbound email or SMS for the audit trail.
func (s *Store) LogSent(channel, recipient, subject, content, status, errMsg string) error {
	if _, err := s.db.Exec(
		`INSERT INTO sent_log (channel, recipient, subject, content, status, error_message, sent_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		channel, recipient, subject, content, status, errMsg, formatTime(time.Now()),
	); err != nil {
		return fmt.Errorf("failed to log sent %s: %w", channel, err)
	}
	return nil
}

// LogEmailIngest records a processed trigger email. The message id is
// unique, which is what makes ingest idempotent across cron runs.
func (s *Store) LogEmailIngest(messageID, subject, sender, cmd, payload, status, errMsg string) error {
	if _, err := s.db.Exec(
		`INSERT INTO email_ingest_log (message_id, subject, sender, command, payload, status, error_message, processed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		messageID, subject, sender, cmd, payload, status, errMsg, formatTime(time.Now()),
	); err != nil {
		return fmt.Errorf("failed to log email ingest: %w", err)
	}
	return nil
}

// SeenEmail reports whether a trigger email was already processed.
func (s *Store) SeenEmail(messageID string) (bool, error) {
	var one int
	err := s.db.QueryRow(
		`SELECT 1 FROM email_ingest_log WHERE message_id = ?`, messageID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check email ingest log: %w", err)
	}
	return true, nil
}
