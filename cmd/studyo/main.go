package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"studyo/internal/bootstrap"
	pomodorodto "studyo/internal/modules/pomodoro/dto"
	"studyo/internal/platform/config"
	"studyo/internal/platform/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	verbose    bool
	quiet      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "studyo",
		Short:         "Focus timer for StudyO",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "only log errors")

	run := newRunCmd(opts)
	root.RunE = run.RunE
	root.Flags().AddFlagSet(run.Flags())

	root.AddCommand(run)
	root.AddCommand(newSettingsCmd(opts))
	root.AddCommand(newSessionsCmd(opts))
	root.AddCommand(newSubjectsCmd(opts))
	root.AddCommand(newSummaryCmd(opts))
	root.AddCommand(newConfigCmd(opts))
	return root
}

func (o *rootOptions) level(cfg config.Config) slog.Level {
	switch {
	case o.verbose:
		return slog.LevelDebug
	case o.quiet:
		return slog.LevelError
	default:
		return logging.ParseLevel(cfg.LogLevel)
	}
}

// loadApp builds the application. With toFile set, logs go to the data
// directory so they do not tear the TUI.
func loadApp(ctx context.Context, opts *rootOptions, toFile bool) (*bootstrap.App, func(), error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(os.Stderr, opts.level(cfg))
	var logCloser io.Closer
	if toFile {
		logger, logCloser, err = logging.NewFile(cfg.DataDir, "studyo.log", opts.level(cfg))
		if err != nil {
			return nil, nil, err
		}
	}
	slog.SetDefault(logger)

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		if logCloser != nil {
			_ = logCloser.Close()
		}
		return nil, nil, err
	}
	return app, func() {
		if err := app.Close(); err != nil {
			logger.Warn("close app", slog.String("error", err.Error()))
		}
		if logCloser != nil {
			_ = logCloser.Close()
		}
	}, nil
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the focus timer (TUI on a terminal, log lines otherwise)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tui := !plain && isatty.IsTerminal(os.Stdout.Fd())
			app, closeApp, err := loadApp(cmd.Context(), opts, tui)
			if err != nil {
				return err
			}
			defer closeApp()
			if tui {
				return bootstrap.RunTUI(cmd.Context(), app)
			}
			return bootstrap.RunPlain(cmd.Context(), app, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print log lines instead of the TUI")
	return cmd
}

// ─── settings ────────────────────────────────────────────────────────────────

func newSettingsCmd(opts *rootOptions) *cobra.Command {
	settings := &cobra.Command{Use: "settings", Short: "Timer settings"}

	settings.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current settings as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, closeApp, err := loadApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer closeApp()
			return writeSettings(cmd.OutOrStdout(), app.PomodoroCLI.Settings(cmd.Context()))
		},
	})

	var work, short, long, cycles int
	var subject string
	set := &cobra.Command{
		Use:   "set [--work N] [--short N] [--long N] [--cycles N] [--subject ID|none]",
		Short: "Change individual settings; values below 1 are raised to 1",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in pomodorodto.SettingsInput
			flags := cmd.Flags()
			if flags.Changed("work") {
				in.WorkMinutes = &work
			}
			if flags.Changed("short") {
				in.ShortBreakMinutes = &short
			}
			if flags.Changed("long") {
				in.LongBreakMinutes = &long
			}
			if flags.Changed("cycles") {
				in.CyclesBeforeLongBreak = &cycles
			}
			if flags.Changed("subject") {
				id, err := parseSubject(subject)
				if err != nil {
					return err
				}
				in.DefaultSubjectID = &id
			}
			app, closeApp, err := loadApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer closeApp()
			out, err := app.PomodoroCLI.UpdateSettings(cmd.Context(), in)
			if err != nil {
				return err
			}
			return writeSettings(cmd.OutOrStdout(), out)
		},
	}
	set.Flags().IntVar(&work, "work", 0, "work minutes")
	set.Flags().IntVar(&short, "short", 0, "short break minutes")
	set.Flags().IntVar(&long, "long", 0, "long break minutes")
	set.Flags().IntVar(&cycles, "cycles", 0, "work cycles before a long break")
	set.Flags().StringVar(&subject, "subject", "", "default subject id, or none")
	settings.AddCommand(set)

	settings.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore the default settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, closeApp, err := loadApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer closeApp()
			return writeSettings(cmd.OutOrStdout(), app.PomodoroCLI.ResetSettings(cmd.Context()))
		},
	})

	settings.AddCommand(&cobra.Command{
		Use:   "export <file>",
		Short: "Write the current settings to a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, closeApp, err := loadApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer closeApp()
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("create %s: %w", args[0], err)
			}
			defer f.Close()
			if err := writeSettings(f, app.PomodoroCLI.Settings(cmd.Context())); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "settings exported to %s\n", args[0])
			return nil
		},
	})

	settings.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Apply settings from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readSettings(args[0])
			if err != nil {
				return err
			}
			app, closeApp, err := loadApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer closeApp()
			out, err := app.PomodoroCLI.UpdateSettings(cmd.Context(), in)
			if err != nil {
				return err
			}
			return writeSettings(cmd.OutOrStdout(), out)
		},
	})
	return settings
}

func parseSubject(raw string) (int64, error) {
	if raw == "none" || raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("--subject must be a number or none, got %q", raw)
	}
	return id, nil
}

func writeSettings(w io.Writer, s pomodorodto.SettingsOutput) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return enc.Close()
}

// readSettings decodes a settings document. Keys absent from the file keep
// their current values.
func readSettings(path string) (pomodorodto.SettingsInput, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return pomodorodto.SettingsInput{}, fmt.Errorf("read %s: %w", path, err)
	}
	var doc struct {
		WorkMinutes           *int   `yaml:"work_minutes"`
		ShortBreakMinutes     *int   `yaml:"short_break_minutes"`
		LongBreakMinutes      *int   `yaml:"long_break_minutes"`
		CyclesBeforeLongBreak *int   `yaml:"cycles_before_long_break"`
		DefaultSubjectID      *int64 `yaml:"default_subject_id"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return pomodorodto.SettingsInput{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return pomodorodto.SettingsInput{
		WorkMinutes:           doc.WorkMinutes,
		ShortBreakMinutes:     doc.ShortBreakMinutes,
		LongBreakMinutes:      doc.LongBreakMinutes,
		CyclesBeforeLongBreak: doc.CyclesBeforeLongBreak,
		DefaultSubjectID:      doc.DefaultSubjectID,
	}, nil
}

// ─── backend queries ─────────────────────────────────────────────────────────

func newSessionsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List the most recent saved sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, closeApp, err := loadApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer closeApp()
			summary, err := app.PomodoroCLI.Summary(cmd.Context())
			if err != nil {
				return err
			}
			if len(summary.Recent) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
				return nil
			}
			for _, s := range summary.Recent {
				subject := "-"
				if s.SubjectID != 0 {
					subject = strconv.FormatInt(s.SubjectID, 10)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%dmin\tsubject=%s\n", s.ID, s.StartTime.Local().Format(time.DateTime), s.DurationMinutes, subject)
			}
			return nil
		},
	}
}

func newSubjectsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "subjects",
		Short: "List subjects known to the backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, closeApp, err := loadApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer closeApp()
			subjects, err := app.SubjectCLI.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(subjects) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no subjects")
				return nil
			}
			current := app.PomodoroCLI.Settings(cmd.Context()).DefaultSubjectID
			for _, s := range subjects {
				mark := " "
				if s.ID == current {
					mark = "*"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %d\t%s\t%s\n", mark, s.ID, s.Name, s.Priority)
			}
			return nil
		},
	}
}

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	summary := &cobra.Command{
		Use:   "summary",
		Short: "Show today's and this week's totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, closeApp, err := loadApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer closeApp()
			out, err := app.PomodoroCLI.Summary(cmd.Context())
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), out)
			return nil
		},
	}
	summary.AddCommand(&cobra.Command{
		Use:   "reset-today",
		Short: "Start today's session count from zero",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, closeApp, err := loadApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer closeApp()
			out, err := app.PomodoroCLI.ResetToday(cmd.Context())
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), out)
			return nil
		},
	})
	return summary
}

func printSummary(w io.Writer, s pomodorodto.SummaryOutput) {
	_, _ = fmt.Fprintf(w, "day: %s\ntoday: %d sessions, %d minutes\nthis week: %d sessions\n", s.Day, s.SessionsToday, s.MinutesToday, s.SessionsThisWeek)
}

// ─── config ──────────────────────────────────────────────────────────────────

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cfgCmd := &cobra.Command{Use: "config", Short: "Application config file"}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default values",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := opts.configPath
			if path == "" {
				path = os.Getenv(config.EnvConfigPath)
			}
			if path == "" {
				path = config.DefaultPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Write(path, config.Default()); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			token := "(unset)"
			if cfg.Token != "" {
				token = "(set)"
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "config: %s\napi_base_url: %s\ntoken: %s\ndata_dir: %s\ndb: %s\ntick_interval: %s\ncommit_timeout: %s\nauto_start_next: %t\nlog_level: %s\n",
				cfg.Path, cfg.APIBaseURL, token, cfg.DataDir, cfg.DBPath, cfg.TickInterval.Duration, cfg.CommitTimeout.Duration, cfg.AutoStartNext, cfg.LogLevel)
			return nil
		},
	})
	return cfgCmd
}
