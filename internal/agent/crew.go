package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"teachmate/internal/calendar"
	"teachmate/internal/store"
)

// RiskFlagger is the slice of the store the pulse write-back needs.
type RiskFlagger interface {
	FlagMilestoneRisk(id int64, note string) error
}

// Crew runs the three stages in order. There is no parallelism: each
// stage consumes the prior stage's output.
type Crew struct {
	schedule Stage
	pulse    Stage
	composer Stage
	llm      Generator
	flagger  RiskFlagger
	logger   *zap.Logger
}

// NewCrew wires the standard three-stage pipeline.
func NewCrew(llm Generator, flagger RiskFlagger, logger *zap.Logger) *Crew {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Crew{
		schedule: NewScheduleReader(llm),
		pulse:    NewProjectPulse(llm),
		composer: NewNudgeComposer(llm),
		llm:      llm,
		flagger:  flagger,
		logger:   logger,
	}
}

// RunDailyBriefing executes schedule → pulse → composer over one
// snapshot. Any stage failure aborts the run; the caller must not
// deliver anything in that case.
func (c *Crew) RunDailyBriefing(ctx context.Context, snap *Snapshot) (*Briefing, error) {
	var input string
	for _, stage := range []Stage{c.schedule, c.pulse} {
		out, err := stage.Run(ctx, input, snap)
		if err != nil {
			return nil, err
		}
		c.logger.Debug("stage complete", zap.String("stage", stage.Name()), zap.Int("output_len", len(out)))

		if stage == c.pulse {
			c.applyRiskFlags(out, snap.Milestones)
			// The composer sees both analyses.
			out = input + "\n\n" + out
		}
		input = out
	}

	out, err := c.composer.Run(ctx, input, snap)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("stage complete", zap.String("stage", c.composer.Name()), zap.Int("output_len", len(out)))

	return SplitBriefing(out), nil
}

// QuickCheck answers a TODAY? status query with a single composer call.
func (c *Crew) QuickCheck(ctx context.Context, events []calendar.Event, nudges []store.Nudge, now time.Time) (string, error) {
	prompt := fmt.Sprintf(quickCheckPrompt,
		now.Format("3:04 PM"),
		formatEvents(events),
		formatNudges(nudges),
	)
	out, err := c.llm.Generate(ctx, prompt, composerTemperature)
	if err != nil {
		return "", fmt.Errorf("quick check: %w", err)
	}
	return out, nil
}

// applyRiskFlags records pulse risk calls back to the store. The LLM
// output is free text, so matching is intentionally loose: a milestone
// counts as flagged when its exact title appears in the RISK FLAGS
// section. Flagging failures are logged, not fatal - the briefing still
// matters more than the flag.
func (c *Crew) applyRiskFlags(pulseOutput string, milestones []store.Milestone) {
	if c.flagger == nil {
		return
	}
	section := riskSection(pulseOutput)
	if section == "" {
		return
	}
	lower := strings.ToLower(section)

	for _, m := range milestones {
		if m.RiskFlag || m.Title == "" {
			continue
		}
		if !strings.Contains(lower, strings.ToLower(m.Title)) {
			continue
		}
		note := riskLine(section, m.Title)
		if err := c.flagger.FlagMilestoneRisk(m.ID, note); err != nil {
			c.logger.Warn("failed to record risk flag",
				zap.Int64("milestone_id", m.ID),
				zap.Error(err))
			continue
		}
		c.logger.Info("milestone flagged at risk",
			zap.Int64("milestone_id", m.ID),
			zap.String("title", m.Title))
	}
}

// riskSection extracts the text between the RISK FLAGS heading and the
// next numbered/heading line.
func riskSection(out string) string {
	lines := strings.Split(out, "\n")
	start := -1
	for i, line := range lines {
		if strings.Contains(strings.ToUpper(line), "RISK FLAGS") {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return ""
	}
	var section []string
	for _, line := range lines[start:] {
		trimmed := strings.TrimSpace(line)
		if isHeading(trimmed) {
			break
		}
		section = append(section, line)
	}
	return strings.Join(section, "\n")
}

func isHeading(line string) bool {
	if strings.HasPrefix(line, "#") {
		return true
	}
	// Numbered sections like "5. CONNECTIONS".
	if len(line) > 2 && line[0] >= '1' && line[0] <= '9' && line[1] == '.' {
		return true
	}
	return false
}

// riskLine returns the line mentioning the title, as the stored risk
// note.
func riskLine(section, title string) string {
	for _, line := range strings.Split(section, "\n") {
		if strings.Contains(strings.ToLower(line), strings.ToLower(title)) {
			return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-* "))
		}
	}
	return ""
}
