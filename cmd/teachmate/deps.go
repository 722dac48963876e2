package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"teachmate/internal/agent"
	"teachmate/internal/calendar"
	"teachmate/internal/config"
	"teachmate/internal/llm"
	"teachmate/internal/mailbox"
	"teachmate/internal/notify"
	"teachmate/internal/store"
)

// The runners depend on these narrow views of the adapters so the mocks
// and the real clients are interchangeable.

type calendarClient interface {
	TodayEvents(ctx context.Context, now time.Time) ([]calendar.Event, error)
	Milestones(ctx context.Context, now time.Time, days int) ([]calendar.Event, error)
	CreateMilestone(ctx context.Context, title string, due time.Time) (*calendar.CreateResult, error)
}

type mailboxClient interface {
	UnreadTriggers() ([]mailbox.TriggerMail, error)
	MarkSeen(seqNum uint32) error
	Close() error
}

type emailSender interface {
	Send(subject, plain, html, to string) error
	SendBriefing(b notify.BriefingEmail, to string) error
	SendConflictNotice(proposed string, conflicts []calendar.Event, to string) error
}

type smsSender interface {
	Send(message, to string) error
	SendConflictAlert(event, conflict, to string) error
}

type briefingRunner interface {
	RunDailyBriefing(ctx context.Context, snap *agent.Snapshot) (*agent.Briefing, error)
	QuickCheck(ctx context.Context, events []calendar.Event, nudges []store.Nudge, now time.Time) (string, error)
}

// deps is everything one invocation runs against. cal may be nil in
// ingest mode when the calendar is unreachable; sms is nil when Twilio
// is not configured.
type deps struct {
	cfg    *config.Config
	store  *store.Store
	cal    calendarClient
	mail   mailboxClient
	email  emailSender
	sms    smsSender
	crew   briefingRunner
	logger *zap.Logger
	now    func() time.Time
	runID  string
	model  string
}

func (d *deps) close() {
	if d.mail != nil {
		if err := d.mail.Close(); err != nil {
			d.logger.Warn("failed to close mailbox", zap.Error(err))
		}
	}
}

// buildDeps assembles real adapters, or mocks when mock is set. The LLM
// is always real; --test only fences off calendar, mailbox and
// delivery.
func buildDeps(ctx context.Context, cfg *config.Config, st *store.Store, mode string, mock bool, logger *zap.Logger) (*deps, error) {
	d := &deps{
		cfg:    cfg,
		store:  st,
		logger: logger,
		now:    time.Now,
		runID:  newRunID(),
	}
	gen := llm.NewOllama(cfg.LLM.Host, cfg.LLM.Model, cfg.LLMTimeout())
	d.crew = agent.NewCrew(gen, st, logger)
	// The client applies defaults for empty host/model, so its model is
	// the one actually prompted.
	d.model = gen.Model()

	if mock {
		now := d.now().In(cfg.Location())
		d.cal = calendar.NewMock(now)
		d.mail = mailbox.NewMock(now)
		d.email = &notify.MockEmail{}
		d.sms = &notify.MockSMS{}
		return d, nil
	}

	cal, err := calendar.NewGoogle(ctx,
		cfg.Calendar.CredentialsPath, cfg.Calendar.TokenPath,
		cfg.Calendar.ScheduleCalendarID, cfg.Calendar.ProjectsCalendarID,
		cfg.Location())
	if err != nil {
		// The briefing is mostly calendar, so daily mode cannot run
		// without it. Ingest still can: calendar-backed commands fail
		// per message.
		if mode == modeDaily {
			return nil, fmt.Errorf("calendar: %w", err)
		}
		logger.Warn("calendar unavailable, milestone commands will fail", zap.Error(err))
	} else {
		d.cal = cal
	}

	d.email = notify.NewEmail(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.To)

	if cfg.SMSEnabled() {
		d.sms = notify.NewSMS(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.From, cfg.Twilio.To)
	} else {
		logger.Warn("Twilio not configured, SMS delivery disabled")
	}

	if mode == modeIngest {
		m, err := mailbox.Dial(cfg.IMAP.Host, cfg.IMAP.User, cfg.IMAP.Password, cfg.IMAP.Label)
		if err != nil {
			return nil, fmt.Errorf("mailbox: %w", err)
		}
		d.mail = m
	}

	return d, nil
}
