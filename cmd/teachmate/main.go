// teachmate is a cron-driven teaching assistant: it reads the teacher's
// calendar and mailbox, keeps nudges/notes/milestones in SQLite, runs a
// three-stage LLM pipeline to compose a daily briefing, and delivers it
// by email and SMS.
//
// One invocation does one thing and exits; scheduling belongs to cron.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"teachmate/internal/config"
	"teachmate/internal/store"
)

// Operating modes.
const (
	modeDaily  = "teacher_daily"
	modeIngest = "email_ingest"
)

var (
	// Global flags
	mode       string
	testMode   bool
	initDB     bool
	modelName  string
	configPath string
	verbose    bool

	// Logger
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "teachmate",
	Short: "teachmate - AI teaching assistant briefings",
	Long: `teachmate runs one of two cron-driven modes:

  teacher_daily  Gather schedule, milestones, nudges and notes, run the
                 Schedule Reader -> Project Pulse -> Nudge Composer
                 pipeline, and deliver the briefing by email and SMS.
  email_ingest   Fetch unread trigger emails (NUDGE:, MILESTONE:, NOTE:,
                 TODAY?) and apply them to the local store.

Use --test to substitute mock calendar/mailbox/delivery adapters.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runRoot,
}

// doneCmd closes out a nudge from the command line.
var doneCmd = &cobra.Command{
	Use:   "done [nudge-id]",
	Short: "Mark a nudge completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid nudge id %q", args[0])
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		st, err := store.Open(cfg.Store.DatabasePath)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.CompleteNudge(id); err != nil {
			return err
		}
		logger.Info("nudge completed", zap.Int64("id", id))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "teachmate.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.Flags().StringVarP(&mode, "mode", "M", modeDaily, "operating mode (teacher_daily|email_ingest)")
	rootCmd.Flags().BoolVarP(&testMode, "test", "t", false, "run with mock data, no real delivery")
	rootCmd.Flags().BoolVar(&initDB, "init-db", false, "initialize the database and exit")
	rootCmd.Flags().StringVarP(&modelName, "model", "m", "", "Ollama model override")

	rootCmd.AddCommand(doneCmd)
}

func runRoot(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if modelName != "" {
		cfg.LLM.Model = modelName
	}

	if initDB {
		st, err := store.Open(cfg.Store.DatabasePath)
		if err != nil {
			return err
		}
		defer st.Close()
		logger.Info("database initialized", zap.String("path", st.Path()))
		return nil
	}

	// Config failures are fatal before any I/O happens.
	if err := cfg.Validate(mode, testMode); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	st, err := store.Open(cfg.Store.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()

	d, err := buildDeps(ctx, cfg, st, mode, testMode, logger)
	if err != nil {
		return err
	}
	defer d.close()

	logger.Info("run starting",
		zap.String("mode", mode),
		zap.String("run_id", d.runID),
		zap.Bool("mock", testMode),
		zap.String("model", d.model))

	switch mode {
	case modeDaily:
		return runDaily(ctx, d)
	case modeIngest:
		return runIngest(ctx, d)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

func newRunID() string {
	return uuid.NewString()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
