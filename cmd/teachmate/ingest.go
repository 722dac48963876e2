package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"teachmate/internal/calendar"
	"teachmate/internal/command"
	"teachmate/internal/mailbox"
	"teachmate/internal/store"
)

// Ingest log statuses.
const (
	ingestProcessed = "processed"
	ingestConflict  = "conflict"
	ingestError     = "error"
)

// runIngest drains unread trigger mail and writes exactly one run_log
// row. A single bad message never stops the sweep; only mailbox-level
// failures fail the run.
func runIngest(ctx context.Context, d *deps) error {
	started := d.now()
	err := ingestSweep(ctx, d)

	rec := store.RunRecord{
		RunID:      d.runID,
		Mode:       modeIngest,
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
		d.logger.Error("email ingest failed", zap.String("run_id", d.runID), zap.Error(err))
		return err
	}
	d.logger.Info("email ingest complete", zap.String("run_id", d.runID))
	return nil
}

func ingestSweep(ctx context.Context, d *deps) error {
	msgs, err := d.mail.UnreadTriggers()
	if err != nil {
		return fmt.Errorf("mailbox: %w", err)
	}
	d.logger.Info("unread triggers fetched", zap.Int("count", len(msgs)))

	for _, msg := range msgs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := ingestOne(ctx, d, msg); err != nil {
			d.logger.Warn("trigger processing failed",
				zap.String("message_id", msg.MessageID),
				zap.String("subject", msg.Subject),
				zap.Error(err))
		}
		if err := d.mail.MarkSeen(msg.SeqNum); err != nil {
			d.logger.Warn("failed to mark message seen",
				zap.Uint32("seq", msg.SeqNum),
				zap.Error(err))
		}
	}
	return nil
}

// ingestOne applies a single trigger email to the store. The returned
// error is per-message; the caller logs it and moves on.
func ingestOne(ctx context.Context, d *deps, msg mailbox.TriggerMail) error {
	messageID := msg.MessageID
	if messageID == "" {
		// Some senders omit Message-ID; synthesize one so the ingest
		// log's UNIQUE column still admits the row.
		messageID = fmt.Sprintf("<imap-%d-%d@teachmate.local>", msg.Date.Unix(), msg.SeqNum)
	}

	seen, err := d.store.SeenEmail(messageID)
	if err != nil {
		return err
	}
	if seen {
		d.logger.Debug("duplicate trigger skipped", zap.String("message_id", messageID))
		return nil
	}

	cmd := command.Parse(msg.Subject)
	if cmd.Kind == command.KindUnrecognized {
		// Dropped, never an error, and nothing is stored for it.
		d.logger.Warn("unrecognized trigger subject", zap.String("subject", msg.Subject))
		return nil
	}

	status := ingestProcessed
	var procErr error

	switch cmd.Kind {
	case command.KindNudge:
		due, _ := command.DueTime(cmd.Payload, msg.Date)
		_, procErr = d.store.AddNudge(cmd.Payload, due, store.PriorityNormal, "email")

	case command.KindMilestone:
		status, procErr = ingestMilestone(ctx, d, msg, cmd.Payload)

	case command.KindNote:
		_, procErr = d.store.AddNote(cmd.Payload, "", "email")

	case command.KindStatusQuery:
		procErr = answerStatusQuery(ctx, d, msg.Sender)
	}

	errMsg := ""
	if procErr != nil {
		status = ingestError
		errMsg = procErr.Error()
	}
	if err := d.store.LogEmailIngest(messageID, msg.Subject, msg.Sender, string(cmd.Kind), cmd.Payload, status, errMsg); err != nil {
		return err
	}
	if procErr != nil {
		return procErr
	}

	d.logger.Info("trigger applied",
		zap.String("command", string(cmd.Kind)),
		zap.String("status", status),
		zap.String("payload", cmd.Payload))
	return nil
}

// ingestMilestone places a milestone on the project calendar, falling
// back to a conflict notice when the slot is taken. The store row is
// only written when the calendar accepted the event.
func ingestMilestone(ctx context.Context, d *deps, msg mailbox.TriggerMail, payload string) (string, error) {
	due, ok := command.DueTime(payload, msg.Date)
	if !ok {
		return ingestError, fmt.Errorf("no date found in milestone %q", payload)
	}
	if d.cal == nil {
		return ingestError, fmt.Errorf("calendar unavailable, cannot place milestone %q", payload)
	}

	res, err := d.cal.CreateMilestone(ctx, payload, due)
	if err != nil {
		return ingestError, fmt.Errorf("calendar create: %w", err)
	}

	if !res.Created {
		d.logger.Info("milestone conflicts with existing events",
			zap.String("title", payload),
			zap.Int("conflicts", len(res.Conflicts)))
		if err := d.email.SendConflictNotice(payload, res.Conflicts, msg.Sender); err != nil {
			return ingestConflict, fmt.Errorf("conflict notice: %w", err)
		}
		if d.sms != nil && len(res.Conflicts) > 0 {
			if err := d.sms.SendConflictAlert(payload, res.Conflicts[0].Summary, d.cfg.Twilio.To); err != nil {
				d.logger.Warn("conflict SMS failed", zap.Error(err))
			}
		}
		return ingestConflict, nil
	}

	if _, err := d.store.AddMilestone(payload, due, store.MilestoneSourceManual); err != nil {
		return ingestError, err
	}
	return ingestProcessed, nil
}

// answerStatusQuery replies to TODAY? with a one-shot LLM summary of the
// current schedule and open nudges.
func answerStatusQuery(ctx context.Context, d *deps, replyTo string) error {
	now := d.now().In(d.cfg.Location())

	var events []calendar.Event
	if d.cal != nil {
		var err error
		events, err = d.cal.TodayEvents(ctx, now)
		if err != nil {
			return fmt.Errorf("calendar schedule: %w", err)
		}
	}
	nudges, err := d.store.OpenNudges()
	if err != nil {
		return err
	}

	answer, err := d.crew.QuickCheck(ctx, events, nudges, now)
	if err != nil {
		return err
	}
	if err := d.email.Send("[TA] Today's Status", answer, "", replyTo); err != nil {
		return fmt.Errorf("status reply: %w", err)
	}
	return nil
}
