package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"teachmate/internal/agent"
	"teachmate/internal/calendar"
	"teachmate/internal/config"
	"teachmate/internal/mailbox"
	"teachmate/internal/notify"
	"teachmate/internal/store"
)

// fakeCrew returns canned pipeline output without touching an LLM.
type fakeCrew struct {
	briefing *agent.Briefing
	quick    string
	err      error
	runs     int
	checks   int
}

func (f *fakeCrew) RunDailyBriefing(ctx context.Context, snap *agent.Snapshot) (*agent.Briefing, error) {
	f.runs++
	if f.err != nil {
		return nil, f.err
	}
	return f.briefing, nil
}

func (f *fakeCrew) QuickCheck(ctx context.Context, events []calendar.Event, nudges []store.Nudge, now time.Time) (string, error) {
	f.checks++
	if f.err != nil {
		return "", f.err
	}
	return f.quick, nil
}

// conflictCal rejects every milestone with a fixed conflict.
type conflictCal struct {
	calendar.Mock
}

func (c *conflictCal) CreateMilestone(ctx context.Context, title string, due time.Time) (*calendar.CreateResult, error) {
	return &calendar.CreateResult{
		Created:   false,
		Conflicts: []calendar.Event{{Summary: "Staff meeting", Start: due}},
	}, nil
}

func newTestDeps(t *testing.T) (*deps, *fakeCrew, *notify.MockEmail, *notify.MockSMS) {
	t.Helper()

	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	now := time.Date(2025, 2, 3, 6, 30, 0, 0, time.UTC)
	crew := &fakeCrew{
		briefing: &agent.Briefing{
			Email: "Good morning. Print the rubrics before Period 1.",
			SMS:   "2 classes. Print rubrics. CDR in 5d.",
		},
		quick: "Period 1 next. 1 open nudge.",
	}
	email := &notify.MockEmail{}
	sms := &notify.MockSMS{}

	cfg := config.DefaultConfig()
	cfg.SMTP.To = "teacher@school.edu"
	cfg.Twilio.To = "+15550002222"

	return &deps{
		cfg:    cfg,
		store:  st,
		cal:    calendar.NewMock(now),
		mail:   mailbox.NewMock(now),
		email:  email,
		sms:    sms,
		crew:   crew,
		logger: zap.NewNop(),
		now:    func() time.Time { return now },
		runID:  "test-run",
	}, crew, email, sms
}

func TestBuildDepsTestModeSubstitutesMocks(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	for _, mode := range []string{modeDaily, modeIngest} {
		d, err := buildDeps(context.Background(), config.DefaultConfig(), st, mode, true, zap.NewNop())
		require.NoError(t, err)

		// Every outward-facing adapter must be the recording mock; a
		// real client here would touch real accounts.
		assert.IsType(t, &calendar.Mock{}, d.cal, "mode %s", mode)
		assert.IsType(t, &mailbox.Mock{}, d.mail, "mode %s", mode)
		assert.IsType(t, &notify.MockEmail{}, d.email, "mode %s", mode)
		assert.IsType(t, &notify.MockSMS{}, d.sms, "mode %s", mode)
		d.close()
	}
}

func TestRunDailyDeliversAndLogsOneRun(t *testing.T) {
	d, crew, email, sms := newTestDeps(t)

	require.NoError(t, runDaily(context.Background(), d))
	assert.Equal(t, 1, crew.runs)

	runs, err := d.store.Runs(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, modeDaily, runs[0].Mode)
	assert.Equal(t, store.OutcomeSuccess, runs[0].Outcome)
	assert.Equal(t, "test-run", runs[0].RunID)

	require.Len(t, email.Sent, 1)
	assert.Equal(t, "teacher@school.edu", email.Sent[0].To)
	assert.Contains(t, email.Sent[0].Plain, "Print the rubrics")
	require.Len(t, sms.Sent, 1)
	assert.Equal(t, "+15550002222", sms.Sent[0].To)
}

func TestRunDailySyncsCalendarMilestones(t *testing.T) {
	d, _, _, _ := newTestDeps(t)

	require.NoError(t, runDaily(context.Background(), d))

	ms, err := d.store.UpcomingMilestones(d.now(), milestoneWindowDays)
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, "[MILESTONE] CDR Slides Due", ms[0].Title)
	assert.Equal(t, store.MilestoneSourceCalendar, ms[0].Source)
}

func TestRunDailyStageFailureDeliversNothing(t *testing.T) {
	d, crew, email, sms := newTestDeps(t)
	crew.err = errors.New("project_pulse stage: model unavailable")

	err := runDaily(context.Background(), d)
	require.Error(t, err)

	// Still exactly one run row, marked failed.
	runs, err2 := d.store.Runs(10)
	require.NoError(t, err2)
	require.Len(t, runs, 1)
	assert.Equal(t, store.OutcomeFailure, runs[0].Outcome)
	assert.Contains(t, runs[0].Detail, "project_pulse")

	assert.Empty(t, email.Sent)
	assert.Empty(t, sms.Sent)
}

func TestRunDailyUrgentNudgePrefixesSMS(t *testing.T) {
	d, _, _, sms := newTestDeps(t)
	_, err := d.store.AddNudge("Call substitute coordinator", time.Time{}, store.PriorityUrgent, "manual")
	require.NoError(t, err)

	require.NoError(t, runDaily(context.Background(), d))

	require.Len(t, sms.Sent, 1)
	assert.True(t, strings.HasPrefix(sms.Sent[0].Body, "URGENT: "))
	assert.LessOrEqual(t, len(sms.Sent[0].Body), 160)
}

func TestRunDailyWithoutSMS(t *testing.T) {
	d, _, email, _ := newTestDeps(t)
	d.sms = nil

	require.NoError(t, runDaily(context.Background(), d))
	require.Len(t, email.Sent, 1)
}

func TestRunIngestAppliesMockTriggers(t *testing.T) {
	d, crew, email, _ := newTestDeps(t)

	require.NoError(t, runIngest(context.Background(), d))

	runs, err := d.store.Runs(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, modeIngest, runs[0].Mode)
	assert.Equal(t, store.OutcomeSuccess, runs[0].Outcome)

	nudges, err := d.store.OpenNudges()
	require.NoError(t, err)
	require.Len(t, nudges, 1)
	assert.Contains(t, nudges[0].Content, "Print CO2 car rubrics")
	assert.Equal(t, "email", nudges[0].Source)
	assert.False(t, nudges[0].DueAt.IsZero())

	notes, err := d.store.RecentNotes(10)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Content, "Team 4 lost their draft")

	// TODAY? gets a reply, not a store row.
	assert.Equal(t, 1, crew.checks)
	require.Len(t, email.Sent, 1)
	assert.Equal(t, "[TA] Today's Status", email.Sent[0].Subject)
	assert.Equal(t, "teacher@school.edu", email.Sent[0].To)

	mock := d.mail.(*mailbox.Mock)
	assert.Equal(t, []uint32{1, 2, 3}, mock.Seen)
}

func TestRunIngestIsIdempotent(t *testing.T) {
	d, _, _, _ := newTestDeps(t)

	require.NoError(t, runIngest(context.Background(), d))
	require.NoError(t, runIngest(context.Background(), d))

	nudges, err := d.store.OpenNudges()
	require.NoError(t, err)
	assert.Len(t, nudges, 1)

	notes, err := d.store.RecentNotes(10)
	require.NoError(t, err)
	assert.Len(t, notes, 1)

	// One run row per invocation.
	runs, err := d.store.Runs(10)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestIngestMissingMessageIDGetsSyntheticID(t *testing.T) {
	d, _, _, _ := newTestDeps(t)
	mock := d.mail.(*mailbox.Mock)
	mock.Unread = []mailbox.TriggerMail{
		{SeqNum: 7, Subject: "NOTE: projector bulb is dying", Sender: "teacher@school.edu", Date: d.now()},
		{SeqNum: 8, Subject: "NOTE: order more filament", Sender: "teacher@school.edu", Date: d.now()},
	}

	require.NoError(t, runIngest(context.Background(), d))

	// Both audit rows survive despite the absent Message-ID headers.
	notes, err := d.store.RecentNotes(10)
	require.NoError(t, err)
	assert.Len(t, notes, 2)

	seen, err := d.store.SeenEmail("<imap-1738564200-7@teachmate.local>")
	require.NoError(t, err)
	assert.True(t, seen)

	// Re-running dedupes on the synthetic ids too.
	require.NoError(t, runIngest(context.Background(), d))
	notes, err = d.store.RecentNotes(10)
	require.NoError(t, err)
	assert.Len(t, notes, 2)
}

func TestIngestUnrecognizedIsDroppedSilently(t *testing.T) {
	d, _, email, _ := newTestDeps(t)
	mock := d.mail.(*mailbox.Mock)
	mock.Unread = []mailbox.TriggerMail{
		{SeqNum: 9, MessageID: "<junk@example.com>", Subject: "Re: lunch on Thursday?", Sender: "spam@example.com", Date: d.now()},
	}

	require.NoError(t, runIngest(context.Background(), d))

	// Dropped: no nudge, no note, no ingest log row, but marked seen.
	nudges, err := d.store.OpenNudges()
	require.NoError(t, err)
	assert.Empty(t, nudges)

	seen, err := d.store.SeenEmail("<junk@example.com>")
	require.NoError(t, err)
	assert.False(t, seen)

	assert.Empty(t, email.Sent)
	assert.Equal(t, []uint32{9}, mock.Seen)
}

func TestIngestMilestoneCreated(t *testing.T) {
	d, _, email, _ := newTestDeps(t)
	mock := d.mail.(*mailbox.Mock)
	mock.Unread = []mailbox.TriggerMail{
		{SeqNum: 4, MessageID: "<m1@example.com>", Subject: "MILESTONE: Robotics demo next Tuesday at 2pm", Sender: "teacher@school.edu", Date: d.now()},
	}

	require.NoError(t, runIngest(context.Background(), d))

	ms, err := d.store.UpcomingMilestones(d.now(), milestoneWindowDays)
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Contains(t, ms[0].Title, "Robotics demo")
	assert.Equal(t, store.MilestoneSourceManual, ms[0].Source)

	cal := d.cal.(*calendar.Mock)
	require.Len(t, cal.CreatedMs, 1)
	assert.Empty(t, email.Sent)
}

func TestIngestMilestoneConflictNotifies(t *testing.T) {
	d, _, email, sms := newTestDeps(t)
	d.cal = &conflictCal{}
	mock := d.mail.(*mailbox.Mock)
	mock.Unread = []mailbox.TriggerMail{
		{SeqNum: 5, MessageID: "<m2@example.com>", Subject: "MILESTONE: Robotics demo next Tuesday at 2pm", Sender: "teacher@school.edu", Date: d.now()},
	}

	require.NoError(t, runIngest(context.Background(), d))

	// Nothing stored; the teacher gets told instead.
	ms, err := d.store.UpcomingMilestones(d.now(), milestoneWindowDays)
	require.NoError(t, err)
	assert.Empty(t, ms)

	require.Len(t, email.Sent, 1)
	assert.Equal(t, "[TA] Calendar Conflict Detected", email.Sent[0].Subject)
	require.Len(t, sms.Sent, 1)
	assert.Contains(t, sms.Sent[0].Body, "CONFLICT:")
}

func TestIngestMilestoneWithoutDateIsError(t *testing.T) {
	d, _, _, _ := newTestDeps(t)
	mock := d.mail.(*mailbox.Mock)
	mock.Unread = []mailbox.TriggerMail{
		{SeqNum: 6, MessageID: "<m3@example.com>", Subject: "MILESTONE: Finish the thing", Sender: "teacher@school.edu", Date: d.now()},
	}

	// Per-message failures never fail the sweep.
	require.NoError(t, runIngest(context.Background(), d))

	runs, err := d.store.Runs(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, store.OutcomeSuccess, runs[0].Outcome)

	ms, err := d.store.UpcomingMilestones(d.now(), milestoneWindowDays)
	require.NoError(t, err)
	assert.Empty(t, ms)
}
