// Package agent implements the daily briefing pipeline: three prompt
// stages run strictly in sequence, each a pure function of the prior
// stage's output, a shared state snapshot, and the current time. All
// judgement (prep windows, risk calls, prose) is delegated to the LLM;
// this package only builds prompts, orders the stages, and fails the
// whole run when any stage fails.
package agent

import (
	"context"
	"time"

	"teachmate/internal/calendar"
	"teachmate/internal/store"
)

// Generator is the LLM the stages prompt against.
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)
}

// Snapshot is everything the pipeline reads: today's calendar, the
// store's briefing state, and the clock. Built once per run so all
// stages see identical state.
type Snapshot struct {
	Events     []calendar.Event
	Milestones []store.Milestone
	Nudges     []store.Nudge
	Notes      []store.Note
	Now        time.Time
}

// Stage is one pipeline step. Input is the prior stage's output (empty
// for the first stage); the returned text feeds the next stage.
type Stage interface {
	Name() string
	Run(ctx context.Context, input string, snap *Snapshot) (string, error)
}
