package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Nudge statuses.
const (
	NudgeStatusPending   = "pending"
	NudgeStatusSent      = "sent"
	NudgeStatusCompleted = "completed"
	NudgeStatusCancelled = "cancelled"
)

// Nudge priorities.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Nudge is a short actionable reminder tracked until marked done.
// Nudges are never hard-deleted; completion is a status transition.
type Nudge struct {
	ID          int64
	Content     string
	DueAt       time.Time // zero when no due time
	Priority    string
	Status      string
	Source      string
	CreatedAt   time.Time
	CompletedAt time.Time
}

// AddNudge inserts a pending nudge and returns its id.
func (s *Store) AddNudge(content string, dueAt time.Time, priority, source string) (int64, error) {
	if priority == "" {
		priority = PriorityNormal
	}
	if source == "" {
		source = "manual"
	}

	res, err := s.db.Exec(
		`INSERT INTO nudges (content, due_at, priority, status, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		content, nullableTime(dueAt), priority, NudgeStatusPending, source, formatTime(time.Now()),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert nudge: %w", err)
	}
	return res.LastInsertId()
}

// OpenNudges returns all pending nudges in creation order. The order is
// stable so briefings and tests are deterministic.
func (s *Store) OpenNudges() ([]Nudge, error) {
	rows, err := s.db.Query(
		`SELECT id, content, due_at, priority, status, source, created_at, completed_at
		 FROM nudges WHERE status = ? ORDER BY created_at ASC, id ASC`,
		NudgeStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query open nudges: %w", err)
	}
	defer rows.Close()
	return scanNudges(rows)
}

// CompleteNudge marks a nudge done. Completed nudges no longer appear in
// OpenNudges but stay in the table.
func (s *Store) CompleteNudge(id int64) error {
	res, err := s.db.Exec(
		`UPDATE nudges SET status = ?, completed_at = ? WHERE id = ?`,
		NudgeStatusCompleted, formatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete nudge %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("nudge %d not found", id)
	}
	return nil
}

// MarkNudgeSent records that a nudge was delivered in a briefing.
func (s *Store) MarkNudgeSent(id int64) error {
	if _, err := s.db.Exec(
		`UPDATE nudges SET status = ? WHERE id = ? AND status = ?`,
		NudgeStatusSent, id, NudgeStatusPending,
	); err != nil {
		return fmt.Errorf("failed to mark nudge %d sent: %w", id, err)
	}
	return nil
}

func scanNudges(rows *sql.Rows) ([]Nudge, error) {
	var out []Nudge
	for rows.Next() {
		var n Nudge
		var due, completed sql.NullString
		var created string
		if err := rows.Scan(&n.ID, &n.Content, &due, &n.Priority, &n.Status, &n.Source, &created, &completed); err != nil {
			return nil, fmt.Errorf("failed to scan nudge: %w", err)
		}
		n.DueAt = parseTime(due)
		n.CompletedAt = parseTime(completed)
		n.CreatedAt = parseTime(sql.NullString{String: created, Valid: true})
		out = append(out, n)
	}
	return out, rows.Err()
}
