// Package calendar reads the teaching schedule and project milestones
// from Google Calendar and writes milestone events with conflict
// detection.
package calendar

import "time"

// Event is a calendar event reduced to what the pipeline needs.
type Event struct {
	ID          string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	AllDay      bool
}

// CreateResult reports a milestone creation attempt. When conflicts are
// non-empty nothing was created and the caller notifies the teacher
// instead.
type CreateResult struct {
	Created   bool
	Event     *Event
	Conflicts []Event
}
