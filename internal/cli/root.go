// Package cli implements the spx command tree.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/spx-tools/spx/internal/config"
	"github.com/spx-tools/spx/internal/output"
	"github.com/spx-tools/spx/internal/session"
	"github.com/spx-tools/spx/internal/workitem"
)

var (
	cfgFile string
	cfg     *config.Config

	// Global JSON output flag - inherited by all subcommands
	jsonOutput bool

	// Global color control flag - inherited by all subcommands
	noColor bool

	verbose bool
	debug   bool

	// Path overrides, applied over the loaded config
	rootDir     string
	sessionsDir string

	// Build information - set via ldflags
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spx",
		Short: "Work item status and session handoff for spec-driven projects",
		Long: `spx reports the status of capability/feature/story work items kept as
directories under specs/work/doing, and manages a queue of handoff
sessions that agents pick up, release and archive.

Quick Start:
  spx status                      # Tree of work items with rolled-up status
  spx next                        # First story that is not done
  spx session create < notes.md   # Queue a handoff
  spx session pickup --auto       # Claim the highest priority session`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cmd.ErrOrStderr())
			if !needsConfig(cmd) {
				return nil
			}
			return loadConfig()
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./.spx/config.toml or ~/.config/spx/config.toml)")
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (machine-readable)")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log progress to stderr")
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log debug detail to stderr")
	cmd.PersistentFlags().StringVar(&rootDir, "root", "", "project root (overrides specs.root)")
	cmd.PersistentFlags().StringVar(&sessionsDir, "sessions-dir", "", "session store directory (overrides sessions.dir)")

	cmd.AddCommand(
		newStatusCmd(),
		newNextCmd(),
		newSessionCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return cmd
}

// needsConfig reports whether cmd reads the configuration.
func needsConfig(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion", "path":
		return false
	}
	return true
}

func setupLogging(w io.Writer) {
	level := slog.LevelWarn
	switch {
	case debug:
		level = slog.LevelDebug
	case verbose:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func loadConfig() error {
	path := config.FindPath(cfgFile)
	if cfgFile != "" {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("config file: %w", err)
		}
	}

	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	if rootDir != "" {
		loaded.Specs.Root = rootDir
	}
	if sessionsDir != "" {
		loaded.Sessions.Dir = sessionsDir
	}
	if noColor {
		loaded.Output.Color = config.ColorNever
	}

	if errs := config.Validate(loaded); len(errs) > 0 {
		return fmt.Errorf("invalid config %s: %w", path, errors.Join(errs...))
	}

	slog.Debug("config loaded", "path", path, "root", loaded.Specs.Root, "sessions", loaded.SessionsPath())
	cfg = loaded
	return nil
}

// currentConfig returns the loaded config, or defaults when the command
// skipped loading.
func currentConfig() *config.Config {
	if cfg == nil {
		return config.Default()
	}
	return cfg
}

func newScanner() *workitem.Scanner {
	c := currentConfig()
	return workitem.NewScanner(workitem.Paths{
		Root:      c.ProjectRoot(),
		SpecsRoot: c.Specs.SpecsRoot,
		WorkDir:   c.Specs.WorkDir,
		StatusDir: c.Specs.StatusDir,
	}, nil, slog.Default())
}

func newStore() *session.Store {
	return session.NewStore(
		session.DirsFor(currentConfig().SessionsPath()),
		session.WithLogger(slog.Default()),
	)
}

// Execute runs the root command and prints any error to stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		if jsonOutput {
			resp := output.NewError(err.Error())
			resp.Kind = errorKind(err)
			_ = output.PrintJSON(os.Stdout, resp)
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return err
	}
	return nil
}

// errorKind names the error class for JSON consumers.
func errorKind(err error) string {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, session.ErrSessionNotAvailable):
		return "session_not_available"
	case errors.Is(err, session.ErrSessionNotClaimed):
		return "session_not_claimed"
	case errors.Is(err, session.ErrSessionAlreadyArchived):
		return "session_already_archived"
	case errors.Is(err, session.ErrInvalidContent):
		return "invalid_content"
	case errors.Is(err, session.ErrNoSessionsAvailable):
		return "no_sessions_available"
	}

	var orphan *workitem.OrphanError
	var nested *workitem.NestingError
	var walk *workitem.WalkError
	var parse *workitem.ParseError
	var status *workitem.StatusDeterminationError
	switch {
	case errors.As(err, &orphan):
		return "orphan_work_item"
	case errors.As(err, &nested):
		return "nested_capability"
	case errors.As(err, &walk):
		return "walk_failed"
	case errors.As(err, &parse):
		return "invalid_work_item_name"
	case errors.As(err, &status):
		return "status_failed"
	}
	return ""
}

// IsJSONOutput returns true if JSON output is enabled
func IsJSONOutput() bool {
	return jsonOutput
}
