package agent

import (
	"context"
	"fmt"
)

// Per-stage sampling temperatures: factual analysis runs cool, prose
// composition a bit warmer.
const (
	scheduleTemperature = 0.3
	pulseTemperature    = 0.4
	composerTemperature = 0.6
)

const scheduleAnalysisPrompt = `You are an experienced teaching assistant who manages schedules for educators.

Analyze today's teaching schedule and provide a structured summary.

Calendar Events:
%s

IMPORTANT: Only report events that are actually listed above. Do NOT invent or assume any classes or events. If "No events scheduled." is shown, report that there are no classes today.

Please provide:
1. A chronological list of today's teaching blocks with times (only if events exist)
2. Identified prep/planning windows (gaps of 30 minutes or more)
3. Any potential issues (back-to-back classes, short turnarounds)
4. A one-sentence "day at a glance" summary

If there are no events scheduled, simply state: "No classes or events scheduled for today. The entire day is available for planning, preparation, or personal time."

Format your response clearly with headers and bullet points.`

const milestoneAnalysisPrompt = `You are a detail-oriented project management specialist working with an educator running project-based classrooms.

Analyze upcoming project milestones and related notes to identify priorities and risks.

Today's schedule analysis from your teammate:
%s

Upcoming Milestones (next 14 days):
%s

Active Reminders:
%s

Recent Notes:
%s

Please provide:
1. PRIORITY ITEMS (next 3 days) - What needs immediate attention?
2. UPCOMING (4-7 days) - What should be on the radar?
3. HORIZON (8-14 days) - What's coming that needs prep?
4. RISK FLAGS - List each at-risk milestone on its own line, quoting its exact title, with a short reason.
5. CONNECTIONS - Link relevant notes to upcoming milestones.

Be specific about dates and actionable in your recommendations.`

const dailyBriefingPrompt = `You are a communications specialist who crafts morning briefings for busy teachers. Reduce cognitive load; every word must earn its place.

TODAY'S DATE: %s

Your teammates produced the following analyses.

SCHEDULE ANALYSIS AND PROJECT STATUS:
%s

ACTIVE REMINDERS:
%s

Please create TWO outputs.

## EMAIL BRIEFING
A well-formatted email briefing with:
- A brief "Day at a Glance" opening (2-3 sentences max)
- Today's Schedule section with times (from the schedule analysis)
- Priority Items section (what needs attention TODAY)
- Upcoming Milestones section (next 7 days, from the project status)
- Active Reminders section
- Any notes or observations worth highlighting

Use a professional but warm tone. Be concise but complete. If there are no classes scheduled today, clearly state that.

## SMS SUMMARY
A single line under 160 characters: number of classes today, the most urgent item, and the key milestone if any.`

const quickCheckPrompt = `A teacher just asked "TODAY?" and wants a quick status check.

Current Time: %s

Today's Schedule:
%s

Active Reminders:
%s

Give a brief, friendly response covering what's next on the schedule, any urgent reminders, and a quick summary of the day. Keep it readable in 30 seconds.`

// ScheduleReader summarizes today's calendar into teaching blocks and
// prep windows.
type ScheduleReader struct {
	llm Generator
}

func NewScheduleReader(llm Generator) *ScheduleReader {
	return &ScheduleReader{llm: llm}
}

func (s *ScheduleReader) Name() string { return "schedule_reader" }

func (s *ScheduleReader) Run(ctx context.Context, _ string, snap *Snapshot) (string, error) {
	prompt := fmt.Sprintf(scheduleAnalysisPrompt, formatEvents(snap.Events))
	out, err := s.llm.Generate(ctx, prompt, scheduleTemperature)
	if err != nil {
		return "", fmt.Errorf("%s stage: %w", s.Name(), err)
	}
	return out, nil
}

// ProjectPulse cross-checks milestones against nudges and notes and
// flags risks.
type ProjectPulse struct {
	llm Generator
}

func NewProjectPulse(llm Generator) *ProjectPulse {
	return &ProjectPulse{llm: llm}
}

func (p *ProjectPulse) Name() string { return "project_pulse" }

func (p *ProjectPulse) Run(ctx context.Context, input string, snap *Snapshot) (string, error) {
	prompt := fmt.Sprintf(milestoneAnalysisPrompt,
		input,
		formatMilestones(snap.Milestones),
		formatNudges(snap.Nudges),
		formatNotes(snap.Notes),
	)
	out, err := p.llm.Generate(ctx, prompt, pulseTemperature)
	if err != nil {
		return "", fmt.Errorf("%s stage: %w", p.Name(), err)
	}
	return out, nil
}

// NudgeComposer turns the two analyses into the email briefing and SMS
// summary.
type NudgeComposer struct {
	llm Generator
}

func NewNudgeComposer(llm Generator) *NudgeComposer {
	return &NudgeComposer{llm: llm}
}

func (n *NudgeComposer) Name() string { return "nudge_composer" }

func (n *NudgeComposer) Run(ctx context.Context, input string, snap *Snapshot) (string, error) {
	prompt := fmt.Sprintf(dailyBriefingPrompt,
		snap.Now.Format("Monday, January 2, 2006"),
		input,
		formatNudges(snap.Nudges),
	)
	out, err := n.llm.Generate(ctx, prompt, composerTemperature)
	if err != nil {
		return "", fmt.Errorf("%s stage: %w", n.Name(), err)
	}
	return out, nil
}
