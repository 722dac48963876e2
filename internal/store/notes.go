package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Note is an immutable free-text observation.
type Note struct {
	ID        int64
	Content   string
	Tags      string
	Source    string
	CreatedAt time.Time
}

// AddNote inserts a note and returns its id. Notes are never updated.
func (s *Store) AddNote(content, tags, source string) (int64, error) {
	if source == "" {
		source = "manual"
	}
	res, err := s.db.Exec(
		`INSERT INTO notes (content, tags, source, created_at) VALUES (?, ?, ?, ?)`,
		content, tags, source, formatTime(time.Now()),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert note: %w", err)
	}
	return res.LastInsertId()
}

// RecentNotes returns the newest limit notes, oldest first so briefing
// output reads chronologically.
func (s *Store) RecentNotes(limit int) ([]Note, error) {
	rows, err := s.db.Query(
		`SELECT id, content, tags, source, created_at FROM
		 (SELECT id, content, tags, source, created_at FROM notes
		  ORDER BY created_at DESC, id DESC LIMIT ?)
		 ORDER BY created_at ASC, id ASC`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent notes: %w", err)
	}
	defer rows.Close()
	return scanNotes(rows)
}

// SearchNotes returns notes whose content or tags contain the query,
// newest first.
func (s *Store) SearchNotes(query string) ([]Note, error) {
	like := "%" + query + "%"
	rows, err := s.db.Query(
		`SELECT id, content, tags, source, created_at FROM notes
		 WHERE content LIKE ? OR tags LIKE ?
		 ORDER BY created_at DESC, id DESC`,
		like, like,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search notes: %w", err)
	}
	defer rows.Close()
	return scanNotes(rows)
}

func scanNotes(rows *sql.Rows) ([]Note, error) {
	var out []Note
	for rows.Next() {
		var n Note
		var tags sql.NullString
		var created string
		if err := rows.Scan(&n.ID, &n.Content, &tags, &n.Source, &created); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		n.Tags = tags.String
		n.CreatedAt = parseTime(sql.NullString{String: created, Valid: true})
		out = append(out, n)
	}
	return out, rows.Err()
}
