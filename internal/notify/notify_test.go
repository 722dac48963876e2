package notify

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teachmate/internal/calendar"
	"teachmate/internal/store"
)

func sampleBriefing() BriefingEmail {
	now := time.Date(2025, 1, 31, 6, 0, 0, 0, time.UTC)
	return BriefingEmail{
		Date: now,
		Body: "Good morning. Two classes today; print the rubrics before Period 1.",
		Events: []calendar.Event{
			{Summary: "Period 1 - Engineering Design", Start: now.Add(2 * time.Hour)},
		},
		Milestones: []store.Milestone{
			{Title: "CDR Slides Due", DueAt: now.AddDate(0, 0, 5), RiskFlag: true, RiskNote: "no draft submitted"},
		},
		Nudges: []store.Nudge{
			{Content: "Print rubrics", DueAt: now.Add(26 * time.Hour)},
		},
		Notes: []store.Note{
			{Content: "Team 4 <lost> their draft"},
		},
	}
}

func TestRenderBriefingHTML(t *testing.T) {
	html, err := RenderBriefingHTML(sampleBriefing())
	require.NoError(t, err)

	assert.Contains(t, html, "Friday, January 31, 2025")
	assert.Contains(t, html, "Period 1 - Engineering Design")
	assert.Contains(t, html, "CDR Slides Due")
	assert.Contains(t, html, "at-risk")
	assert.Contains(t, html, "no draft submitted")
	assert.Contains(t, html, "Print rubrics")
	// Stored text is escaped, not interpreted.
	assert.Contains(t, html, "Team 4 &lt;lost&gt; their draft")
	assert.NotContains(t, html, "<lost>")
}

func TestRenderBriefingHTMLEmptySections(t *testing.T) {
	html, err := RenderBriefingHTML(BriefingEmail{Date: time.Now(), Body: "quiet day"})
	require.NoError(t, err)

	assert.Contains(t, html, "No scheduled events today.")
	assert.Contains(t, html, "No upcoming milestones.")
	assert.Contains(t, html, "No active reminders.")
	assert.NotContains(t, html, "Recent Notes")
}

func TestMockEmailRecords(t *testing.T) {
	m := &MockEmail{}
	require.NoError(t, m.SendBriefing(sampleBriefing(), "teacher@school.edu"))

	require.Len(t, m.Sent, 1)
	assert.Equal(t, "teacher@school.edu", m.Sent[0].To)
	assert.Contains(t, m.Sent[0].Subject, "Daily Briefing")
	assert.Contains(t, m.Sent[0].Plain, "Good morning.")
	assert.Contains(t, m.Sent[0].HTML, "CDR Slides Due")
}

func TestMockSMSClips(t *testing.T) {
	m := &MockSMS{}
	require.NoError(t, m.Send(strings.Repeat("a", 300), "+15550002222"))

	require.Len(t, m.Sent, 1)
	assert.Len(t, m.Sent[0].Body, smsLimit)
	assert.True(t, strings.HasSuffix(m.Sent[0].Body, "..."))
}

func TestMockSMSClipsMultiByte(t *testing.T) {
	m := &MockSMS{}
	require.NoError(t, m.Send(strings.Repeat("é", 300), "+15550002222"))

	require.Len(t, m.Sent, 1)
	assert.True(t, utf8.ValidString(m.Sent[0].Body))
	assert.Equal(t, smsLimit, utf8.RuneCountInString(m.Sent[0].Body))
	assert.True(t, strings.HasSuffix(m.Sent[0].Body, "..."))
}

func TestConflictAlertFormat(t *testing.T) {
	m := &MockSMS{}
	require.NoError(t, m.SendConflictAlert("Robotics Demo at the gym on Friday afternoon", "Staff meeting", "+15550002222"))

	require.Len(t, m.Sent, 1)
	assert.Contains(t, m.Sent[0].Body, "CONFLICT:")
	assert.Contains(t, m.Sent[0].Body, "Staff meeting")
	assert.LessOrEqual(t, len(m.Sent[0].Body), smsLimit)
}

func TestEmailRequiresRecipient(t *testing.T) {
	e := NewEmail("smtp.example.com", 587, "u@example.com", "pw", "")
	err := e.Send("subject", "body", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recipient")
}
