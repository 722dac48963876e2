package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"teachmate/internal/agent"
	"teachmate/internal/notify"
	"teachmate/internal/store"
)

// milestoneWindowDays is how far ahead the briefing looks for project
// milestones.
const milestoneWindowDays = 14

// runDaily executes the morning briefing and writes exactly one run_log
// row, whatever happens inside.
func runDaily(ctx context.Context, d *deps) error {
	started := d.now()
	err := dailyBriefing(ctx, d)

	rec := store.RunRecord{
		RunID:      d.runID,
		Mode:       modeDaily,
		StartedAt:  started,
		FinishedAt: d.now(),
		Outcome:    store.OutcomeSuccess,
	}
	if err != nil {
		rec.Outcome = store.OutcomeFailure
		rec.Detail = err.Error()
	}
	if logErr := d.store.LogRun(rec); logErr != nil {
		d.logger.Error("failed to record run", zap.Error(logErr))
		if err == nil {
			err = logErr
		}
	}

	if err != nil {
		d.logger.Error("daily briefing failed", zap.String("run_id", d.runID), zap.Error(err))
		return err
	}
	d.logger.Info("daily briefing complete", zap.String("run_id", d.runID))
	return nil
}

func dailyBriefing(ctx context.Context, d *deps) error {
	now := d.now().In(d.cfg.Location())

	events, err := d.cal.TodayEvents(ctx, now)
	if err != nil {
		return fmt.Errorf("calendar schedule: %w", err)
	}
	calMilestones, err := d.cal.Milestones(ctx, now, milestoneWindowDays)
	if err != nil {
		return fmt.Errorf("calendar milestones: %w", err)
	}

	// Mirror calendar milestones into the store before the snapshot so
	// the pipeline and the risk write-back see one list.
	titles := make([]string, len(calMilestones))
	dues := make([]time.Time, len(calMilestones))
	for i, ev := range calMilestones {
		titles[i] = ev.Summary
		dues[i] = ev.Start
	}
	if err := d.store.SyncCalendarMilestones(titles, dues); err != nil {
		return err
	}

	snap, err := d.store.BriefingSnapshot(now)
	if err != nil {
		return err
	}
	d.logger.Debug("snapshot built",
		zap.Int("events", len(events)),
		zap.Int("milestones", len(snap.Milestones)),
		zap.Int("nudges", len(snap.Nudges)),
		zap.Int("notes", len(snap.Notes)))

	briefing, err := d.crew.RunDailyBriefing(ctx, &agent.Snapshot{
		Events:     events,
		Milestones: snap.Milestones,
		Nudges:     snap.Nudges,
		Notes:      snap.Notes,
		Now:        now,
	})
	if err != nil {
		// No partial delivery: a stage failure means nothing goes out.
		return err
	}

	// The pulse stage may have flagged risks; re-read so the email
	// footer shows them.
	milestones, err := d.store.UpcomingMilestones(now, milestoneWindowDays)
	if err != nil {
		milestones = snap.Milestones
	}

	if err := d.email.SendBriefing(notify.BriefingEmail{
		Date:       now,
		Body:       briefing.Email,
		Events:     events,
		Milestones: milestones,
		Nudges:     snap.Nudges,
		Notes:      snap.Notes,
	}, d.cfg.SMTP.To); err != nil {
		logSent(d, "email", d.cfg.SMTP.To, briefing.Email, err)
		return fmt.Errorf("briefing email: %w", err)
	}
	logSent(d, "email", d.cfg.SMTP.To, briefing.Email, nil)

	// SMS is a best-effort second channel. The briefing already landed
	// by email, so a Twilio failure downgrades to a logged warning.
	if d.sms != nil {
		smsBody := briefing.SMS
		if hasUrgentNudge(snap.Nudges) {
			// The sender clips to one segment, prefix included.
			smsBody = "URGENT: " + smsBody
		}
		if err := d.sms.Send(smsBody, d.cfg.Twilio.To); err != nil {
			d.logger.Warn("SMS delivery failed", zap.Error(err))
			logSent(d, "sms", d.cfg.Twilio.To, smsBody, err)
		} else {
			logSent(d, "sms", d.cfg.Twilio.To, smsBody, nil)
		}
	}

	return nil
}

// hasUrgentNudge reports whether any open nudge is high priority or
// urgent.
func hasUrgentNudge(nudges []store.Nudge) bool {
	for _, n := range nudges {
		if n.Priority == store.PriorityHigh || n.Priority == store.PriorityUrgent {
			return true
		}
	}
	return false
}

// logSent writes the audit row for one delivery attempt. Audit failures
// never fail the run.
func logSent(d *deps, channel, to, content string, sendErr error) {
	status, errMsg := "sent", ""
	if sendErr != nil {
		status, errMsg = "error", sendErr.Error()
	}
	if len(content) > 500 {
		content = content[:500]
	}
	if err := d.store.LogSent(channel, to, "Daily Briefing", content, status, errMsg); err != nil {
		d.logger.Warn("failed to write sent log", zap.String("channel", channel), zap.Error(err))
	}
}
