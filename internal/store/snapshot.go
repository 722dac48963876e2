package store

import "time"

// Snapshot is the store's contribution to one daily briefing: open
// nudges, milestones due in the next two weeks, and the ten most recent
// notes, each in creation order.
type Snapshot struct {
	Nudges     []Nudge
	Milestones []Milestone
	Notes      []Note
	TakenAt    time.Time
}

// BriefingSnapshot reads everything the pipeline needs in one place so
// all three stages see the same state.
func (s *Store) BriefingSnapshot(now time.Time) (*Snapshot, error) {
	nudges, err := s.OpenNudges()
	if err != nil {
		return nil, err
	}
	milestones, err := s.UpcomingMilestones(now, 14)
	if err != nil {
		return nil, err
	}
	notes, err := s.RecentNotes(10)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Nudges:     nudges,
		Milestones: milestones,
		Notes:      notes,
		TakenAt:    now,
	}, nil
}
