package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Milestone sources.
const (
	MilestoneSourceManual   = "manual"
	MilestoneSourceCalendar = "calendar"
)

// Milestone is a dated deliverable, optionally flagged at risk by the
// Project Pulse stage.
type Milestone struct {
	ID        int64
	Title     string
	DueAt     time.Time
	Source    string
	RiskFlag  bool
	RiskNote  string
	CreatedAt time.Time
}

// AddMilestone inserts a milestone. Duplicate (title, due) pairs are
// ignored so calendar sync can re-run safely; the returned id is 0 in
// that case.
func (s *Store) AddMilestone(title string, dueAt time.Time, source string) (int64, error) {
	if source == "" {
		source = MilestoneSourceManual
	}
	res, err := s.db.Exec(
		`INSERT INTO milestones (title, due_at, source, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(title, due_at) DO NOTHING`,
		title, formatTime(dueAt), source, formatTime(time.Now()),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert milestone: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, nil
	}
	return res.LastInsertId()
}

// SyncCalendarMilestones mirrors calendar milestone events into the store
// so the pipeline can flag them. Existing rows are left untouched.
func (s *Store) SyncCalendarMilestones(titles []string, dues []time.Time) error {
	if len(titles) != len(dues) {
		return fmt.Errorf("mismatched milestone sync input: %d titles, %d dues", len(titles), len(dues))
	}
	for i := range titles {
		if _, err := s.AddMilestone(titles[i], dues[i], MilestoneSourceCalendar); err != nil {
			return err
		}
	}
	return nil
}

// UpcomingMilestones returns milestones due in [now, now+days), in
// creation order for deterministic briefing input.
func (s *Store) UpcomingMilestones(now time.Time, days int) ([]Milestone, error) {
	rows, err := s.db.Query(
		`SELECT id, title, due_at, source, risk_flag, risk_note, created_at FROM milestones
		 WHERE due_at >= ? AND due_at < ?
		 ORDER BY created_at ASC, id ASC`,
		formatTime(now), formatTime(now.AddDate(0, 0, days)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming milestones: %w", err)
	}
	defer rows.Close()
	return scanMilestones(rows)
}

// FlagMilestoneRisk marks a milestone at risk. Only the Project Pulse
// stage calls this; the flag is the one mutable field on a milestone.
func (s *Store) FlagMilestoneRisk(id int64, note string) error {
	res, err := s.db.Exec(
		`UPDATE milestones SET risk_flag = 1, risk_note = ? WHERE id = ?`,
		note, id,
	)
	if err != nil {
		return fmt.Errorf("failed to flag milestone %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("milestone %d not found", id)
	}
	return nil
}

// RiskFlaggedMilestones returns all milestones currently flagged at risk,
// in creation order.
func (s *Store) RiskFlaggedMilestones() ([]Milestone, error) {
	rows, err := s.db.Query(
		`SELECT id, title, due_at, source, risk_flag, risk_note, created_at FROM milestones
		 WHERE risk_flag = 1 ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query flagged milestones: %w", err)
	}
	defer rows.Close()
	return scanMilestones(rows)
}

func scanMilestones(rows *sql.Rows) ([]Milestone, error) {
	var out []Milestone
	for rows.Next() {
		var m Milestone
		var riskNote sql.NullString
		var riskFlag int
		var due, created string
		if err := rows.Scan(&m.ID, &m.Title, &due, &m.Source, &riskFlag, &riskNote, &created); err != nil {
			return nil, fmt.Errorf("failed to scan milestone: %w", err)
		}
		m.DueAt = parseTime(sql.NullString{String: due, Valid: true})
		m.CreatedAt = parseTime(sql.NullString{String: created, Valid: true})
		m.RiskFlag = riskFlag != 0
		m.RiskNote = riskNote.String
		out = append(out, m)
	}
	return out, rows.Err()
}
