// Package config loads teachmate configuration from an optional YAML
// file with environment variable overrides. Validation happens before
// any I/O: a bad config fails the invocation immediately.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all teachmate configuration.
type Config struct {
	// LLM configuration (Ollama)
	LLM LLMConfig `yaml:"llm"`

	// Google Calendar sources
	Calendar CalendarConfig `yaml:"calendar"`

	// Trigger-email mailbox (IMAP)
	IMAP IMAPConfig `yaml:"imap"`

	// Outbound email (SMTP)
	SMTP SMTPConfig `yaml:"smtp"`

	// Outbound SMS (Twilio). Optional: empty credentials disable SMS.
	Twilio TwilioConfig `yaml:"twilio"`

	// Store settings
	Store StoreConfig `yaml:"store"`

	// IANA timezone for schedule math
	Timezone string `yaml:"timezone"`
}

// LLMConfig configures the Ollama endpoint.
type LLMConfig struct {
	Host    string `yaml:"host"`
	Model   string `yaml:"model"`
	Timeout string `yaml:"timeout"`
}

// CalendarConfig configures the two Google calendars and OAuth files.
type CalendarConfig struct {
	ScheduleCalendarID string `yaml:"schedule_calendar_id"`
	ProjectsCalendarID string `yaml:"projects_calendar_id"`
	CredentialsPath    string `yaml:"credentials_path"`
	TokenPath          string `yaml:"token_path"`
}

// IMAPConfig configures the trigger mailbox.
type IMAPConfig struct {
	Host     string `yaml:"host"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Label    string `yaml:"label"`
}

// SMTPConfig configures outbound mail.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	To       string `yaml:"to"`
}

// TwilioConfig configures outbound SMS.
type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	From       string `yaml:"from"`
	To         string `yaml:"to"`
}

// StoreConfig configures the SQLite store.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Host:    "http://localhost:11434",
			Model:   "llama3:latest",
			Timeout: "120s",
		},
		Calendar: CalendarConfig{
			ScheduleCalendarID: "primary",
			ProjectsCalendarID: "primary",
			CredentialsPath:    "credentials.json",
			TokenPath:          "token.json",
		},
		IMAP: IMAPConfig{
			Host:  "imap.gmail.com:993",
			Label: "TA-TRIGGERS",
		},
		SMTP: SMTPConfig{
			Host: "smtp.gmail.com",
			Port: 587,
		},
		Store: StoreConfig{
			DatabasePath: "data/teachmate.db",
		},
		Timezone: "America/Chicago",
	}
}

// Load reads configuration from a YAML file, falling back to defaults
// when the file doesn't exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides. Environment
// always wins over the file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		c.LLM.Host = v
	}
	if v := os.Getenv("OLLAMA_MODEL"); v != "" {
		c.LLM.Model = v
	}

	if v := os.Getenv("GCAL_CALENDAR_ID_SCHEDULE"); v != "" {
		c.Calendar.ScheduleCalendarID = v
	}
	if v := os.Getenv("GCAL_CALENDAR_ID_PROJECTS"); v != "" {
		c.Calendar.ProjectsCalendarID = v
	}
	if v := os.Getenv("GCAL_CREDENTIALS"); v != "" {
		c.Calendar.CredentialsPath = v
	}
	if v := os.Getenv("GCAL_TOKEN"); v != "" {
		c.Calendar.TokenPath = v
	}

	if v := os.Getenv("IMAP_HOST"); v != "" {
		c.IMAP.Host = v
	}
	if v := os.Getenv("IMAP_USER"); v != "" {
		c.IMAP.User = v
	}
	if v := os.Getenv("IMAP_PASS"); v != "" {
		c.IMAP.Password = v
	}
	if v := os.Getenv("IMAP_LABEL"); v != "" {
		c.IMAP.Label = v
	}

	if v := os.Getenv("SMTP_HOST"); v != "" {
		c.SMTP.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.SMTP.Port = port
		}
	}
	if v := os.Getenv("SMTP_USER"); v != "" {
		c.SMTP.User = v
	}
	if v := os.Getenv("SMTP_PASS"); v != "" {
		c.SMTP.Password = v
	}
	if v := os.Getenv("NOTIFY_EMAIL_TO"); v != "" {
		c.SMTP.To = v
	}

	if v := os.Getenv("TWILIO_ACCOUNT_SID"); v != "" {
		c.Twilio.AccountSID = v
	}
	if v := os.Getenv("TWILIO_AUTH_TOKEN"); v != "" {
		c.Twilio.AuthToken = v
	}
	if v := os.Getenv("TWILIO_FROM"); v != "" {
		c.Twilio.From = v
	}
	if v := os.Getenv("TWILIO_TO"); v != "" {
		c.Twilio.To = v
	}

	if v := os.Getenv("DB_PATH"); v != "" {
		c.Store.DatabasePath = v
	}
	if v := os.Getenv("TIMEZONE"); v != "" {
		c.Timezone = v
	}
}

// Validate checks the credentials the selected mode needs. Mock mode
// needs nothing beyond the store path and timezone.
func (c *Config) Validate(mode string, mock bool) error {
	if c.Store.DatabasePath == "" {
		return fmt.Errorf("store database path is empty")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	if mock {
		return nil
	}

	switch mode {
	case "teacher_daily":
		if c.SMTP.User == "" || c.SMTP.Password == "" {
			return fmt.Errorf("SMTP credentials required: set SMTP_USER and SMTP_PASS")
		}
		if c.SMTP.To == "" {
			return fmt.Errorf("briefing recipient required: set NOTIFY_EMAIL_TO")
		}
	case "email_ingest":
		if c.IMAP.User == "" || c.IMAP.Password == "" {
			return fmt.Errorf("IMAP credentials required: set IMAP_USER and IMAP_PASS")
		}
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
	return nil
}

// SMSEnabled reports whether Twilio is configured. SMS is optional; the
// briefing still goes out by email when it isn't.
func (c *Config) SMSEnabled() bool {
	return c.Twilio.AccountSID != "" && c.Twilio.AuthToken != "" && c.Twilio.From != ""
}

// Location returns the configured timezone, UTC on error. Validate
// already rejected bad zones for real runs.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LLMTimeout returns the LLM timeout as a duration.
func (c *Config) LLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}
