package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"schedview/internal/config"
	"schedview/internal/layout"
	appLog "schedview/internal/log"
	"schedview/internal/pipeline"
)

var Version = "dev"

// globals holds values shared by every subcommand after PersistentPreRunE.
type globals struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

// now is replaced in tests.
var now = time.Now

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "schedview",
		Short:         "Lay out task schedules as a week calendar and a per-person timeline",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.load()
		},
	}

	root.PersistentFlags().StringVar(&g.configPath, "config", "schedview.yaml", "Path to config file (created with defaults if missing)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, error (overrides config)")

	root.AddCommand(calendarCmd(g))
	root.AddCommand(timelineCmd(g))
	root.AddCommand(renderCmd(g))
	root.AddCommand(watchCmd(g))
	return root
}

func (g *globals) load() error {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", g.configPath)
		return err
	}
	g.cfg = cfg

	level := cfg.LogLevel
	if g.logLevel != "" {
		level = g.logLevel
	}
	appLog.SetLevel(appLog.ParseLevel(level))

	appLog.Debug("effective config",
		"config_path", g.configPath,
		"week_start", cfg.WeekStart,
		"default_owner", cfg.DefaultOwner,
		"task_files", len(cfg.Tasks),
		"ics_files", len(cfg.ICS),
		"output_dir", cfg.OutputDir,
	)
	return nil
}

// inputs merges flag-supplied sources over the configured ones: any flag
// value replaces the config list entirely.
func (g *globals) inputs(tasks, icsFiles []string) pipeline.Inputs {
	in := pipeline.InputsFrom(g.cfg)
	if len(tasks) > 0 || len(icsFiles) > 0 {
		in = pipeline.Inputs{Tasks: tasks, ICS: icsFiles}
	}
	if in.Empty() {
		appLog.Info("no task sources configured; rendering empty views")
	}
	return in
}

// parseDay parses a YYYY-MM-DD flag as a UTC date; empty means today.
func parseDay(s string) (time.Time, error) {
	if s == "" {
		return now().UTC(), nil
	}
	d, err := time.Parse(layout.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", s, err)
	}
	return d, nil
}
