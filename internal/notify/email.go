// Package notify delivers the pipeline's output: briefing emails over
// SMTP and condensed summaries over Twilio SMS. Nothing here composes
// content beyond rendering; the text comes from the agent package.
package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	gomail "gopkg.in/gomail.v2"

	"teachmate/internal/calendar"
	"teachmate/internal/store"
)

// BriefingEmail is everything the daily email shows: the composed
// briefing plus the raw sections for the structured footer.
type BriefingEmail struct {
	Date       time.Time
	Body       string
	Events     []calendar.Event
	Milestones []store.Milestone
	Nudges     []store.Nudge
	Notes      []store.Note
}

// Email sends mail through an SMTP account (Gmail app password in the
// usual setup).
type Email struct {
	dialer    *gomail.Dialer
	from      string
	defaultTo string
}

// NewEmail builds an SMTP sender.
func NewEmail(host string, port int, user, password, defaultTo string) *Email {
	return &Email{
		dialer:    gomail.NewDialer(host, port, user, password),
		from:      user,
		defaultTo: defaultTo,
	}
}

// Send delivers one message. html may be empty for plain-text-only
// mail.
func (e *Email) Send(subject, plain, html, to string) error {
	if to == "" {
		to = e.defaultTo
	}
	if to == "" {
		return fmt.Errorf("no email recipient configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plain)
	if html != "" {
		m.AddAlternative("text/html", html)
	}

	if err := e.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// SendBriefing delivers the daily briefing as multipart plain+HTML.
func (e *Email) SendBriefing(b BriefingEmail, to string) error {
	subject := "Daily Briefing - " + b.Date.Format("Monday, January 2, 2006")
	html, err := RenderBriefingHTML(b)
	if err != nil {
		return err
	}
	return e.Send(subject, b.Body, html, to)
}

// SendConflictNotice tells the teacher a milestone could not be placed
// on the calendar.
func (e *Email) SendConflictNotice(proposed string, conflicts []calendar.Event, to string) error {
	var body bytes.Buffer
	body.WriteString("Calendar conflict detected.\n\nThe following event could NOT be added:\n  ")
	body.WriteString(proposed)
	body.WriteString("\n\nIt conflicts with:\n")
	for _, c := range conflicts {
		fmt.Fprintf(&body, "  - %s (%s)\n", c.Summary, c.Start.Format("Mon Jan 2 15:04"))
	}
	body.WriteString("\nPlease resolve the conflict manually.\n")

	return e.Send("[TA] Calendar Conflict Detected", body.String(), "", to)
}

var briefingTmpl = template.Must(template.New("briefing").Parse(`<html>
<head>
<style>
  body { font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; }
  h1 { color: #2c3e50; border-bottom: 2px solid #3498db; padding-bottom: 10px; }
  h2 { color: #34495e; margin-top: 20px; }
  .briefing { white-space: pre-wrap; }
  .event { background: #f8f9fa; padding: 10px; margin: 5px 0; border-left: 3px solid #3498db; }
  .milestone { background: #fff3cd; padding: 10px; margin: 5px 0; border-left: 3px solid #ffc107; }
  .at-risk { border-left-color: #dc3545; background: #f8d7da; }
  .nudge { background: #d4edda; padding: 10px; margin: 5px 0; border-left: 3px solid #28a745; }
  .note { background: #e2e3e5; padding: 10px; margin: 5px 0; border-left: 3px solid #6c757d; }
  .time { color: #666; font-size: 0.9em; }
  .footer { color: #888; font-size: 0.8em; }
</style>
</head>
<body>
<h1>Daily Briefing</h1>
<p><strong>{{.Date.Format "Monday, January 2, 2006"}}</strong></p>
<div class="briefing">{{.Body}}</div>

<h2>Today's Schedule</h2>
{{if .Events}}{{range .Events}}<div class="event"><strong>{{.Summary}}</strong>{{if not .AllDay}}<span class="time"> - {{.Start.Format "15:04"}}</span>{{end}}</div>
{{end}}{{else}}<p>No scheduled events today.</p>{{end}}

<h2>Upcoming Milestones</h2>
{{if .Milestones}}{{range .Milestones}}<div class="milestone{{if .RiskFlag}} at-risk{{end}}"><strong>{{.Title}}</strong><span class="time"> - due {{.DueAt.Format "Mon Jan 2"}}</span>{{if .RiskNote}}<br><span class="time">{{.RiskNote}}</span>{{end}}</div>
{{end}}{{else}}<p>No upcoming milestones.</p>{{end}}

<h2>Reminders</h2>
{{if .Nudges}}{{range .Nudges}}<div class="nudge">{{.Content}}{{if not .DueAt.IsZero}}<span class="time"> - due {{.DueAt.Format "Mon Jan 2 15:04"}}</span>{{end}}</div>
{{end}}{{else}}<p>No active reminders.</p>{{end}}

{{if .Notes}}<h2>Recent Notes</h2>
{{range .Notes}}<div class="note">{{.Content}}</div>
{{end}}{{end}}
<hr>
<p class="footer">Generated by teachmate</p>
</body>
</html>`))

// RenderBriefingHTML renders the HTML alternative of the briefing
// email. html/template handles the escaping of LLM output and stored
// text.
func RenderBriefingHTML(b BriefingEmail) (string, error) {
	var buf bytes.Buffer
	if err := briefingTmpl.Execute(&buf, b); err != nil {
		return "", fmt.Errorf("failed to render briefing: %w", err)
	}
	return buf.String(), nil
}
