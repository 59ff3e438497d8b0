package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spx-tools/spx/internal/output"
	"github.com/spx-tools/spx/internal/session"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "session",
		Aliases: []string{"sessions"},
		Short:   "Create and manage handoff sessions",
		Long: `Sessions are markdown documents queued for the next agent. The directory
holding a session is its state:

  todo/     waiting to be picked up
  doing/    claimed by an agent
  archive/  finished

Pickup is an atomic rename, so two agents can never claim the same session.

Examples:
  spx session create --priority high < notes.md
  spx session list
  spx session pickup --auto
  spx session release
  spx session archive 2026-01-13_08-01-05`,
	}

	cmd.AddCommand(
		newSessionCreateCmd(),
		newSessionListCmd(),
		newSessionShowCmd(),
		newSessionPickupCmd(),
		newSessionReleaseCmd(),
		newSessionArchiveCmd(),
		newSessionDeleteCmd(),
		newSessionPruneCmd(),
	)
	return cmd
}

// SessionResponse is the JSON output of single-session commands.
type SessionResponse struct {
	Success  bool            `json:"success"`
	Action   string          `json:"action"`
	Session  session.Session `json:"session"`
	Warnings []string        `json:"warnings,omitempty"`
}

func newSessionCreateCmd() *cobra.Command {
	var (
		priority string
		tags     []string
		fromFile string
	)

	cmd := &cobra.Command{
		Use:     "create [content]",
		Aliases: []string{"handoff"},
		Short:   "Queue a new session in todo",
		Long: `Queue a new session. Content comes from the argument, --file, or stdin.

A document that already starts with a front matter block is stored as is.
Otherwise a block is added with priority, tags, the current git branch,
the creation time and the working directory.

Examples:
  spx session create "Finish the walker tests"
  spx session create --file handoff.md
  git diff | spx session handoff --priority high --tags review`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionCreate(cmd, args, priority, tags, fromFile)
		},
	}

	cmd.Flags().StringVarP(&priority, "priority", "p", string(session.DefaultPriority), "Priority: high, medium, low")
	cmd.Flags().StringSliceVarP(&tags, "tags", "t", nil, "Comma-separated tags")
	cmd.Flags().StringVar(&fromFile, "file", "", "Read content from file")

	return cmd
}

func readContent(cmd *cobra.Command, args []string, fromFile string) (string, error) {
	switch {
	case len(args) > 0 && fromFile != "":
		return "", fmt.Errorf("pass content as an argument or --file, not both")
	case len(args) > 0:
		return args[0], nil
	case fromFile != "":
		data, err := os.ReadFile(fromFile)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", fromFile, err)
		}
		return string(data), nil
	}

	in := cmd.InOrStdin()
	if in == os.Stdin && output.StdinIsTerminal() {
		return "", fmt.Errorf("no content: pass it as an argument, with --file, or on stdin")
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

func runSessionCreate(cmd *cobra.Command, args []string, priorityFlag string, tags []string, fromFile string) error {
	priority, ok := session.ParsePriority(strings.ToLower(priorityFlag))
	if !ok {
		return fmt.Errorf("invalid priority %q (want high, medium or low)", priorityFlag)
	}

	content, err := readContent(cmd, args, fromFile)
	if err != nil {
		return err
	}

	meta := session.DefaultMetadata()
	meta.Priority = priority
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			meta.Tags = append(meta.Tags, tag)
		}
	}
	root := currentConfig().ProjectRoot()
	meta.WorkingDirectory = workingDirectory()
	if branch, err := gitBranch(cmd.Context(), root); err == nil {
		meta.Branch = branch
	} else {
		slog.Debug("git branch unavailable", "dir", root, "error", err)
	}

	store := newStore()
	id, err := store.CreateWithMetadata(content, meta)
	if err != nil {
		return err
	}
	created, err := store.Show(id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if IsJSONOutput() {
		created.Content = ""
		return output.PrintJSON(out, SessionResponse{Success: true, Action: "create", Session: created})
	}
	fmt.Fprintf(out, "Created session %s\n", id)
	fmt.Fprintf(out, "  %s\n", created.Path)
	return nil
}

func workingDirectory() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}

func newSessionListCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions",
		Long: `List sessions in todo, doing and archive, grouped by state and oldest
first within each state.

Examples:
  spx session list
  spx session list --status todo
  spx session list --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionList(cmd, status)
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Only list one state: todo, doing, archive")
	return cmd
}

func parseStatus(s string) (session.Status, error) {
	for _, st := range session.Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid status %q (want todo, doing or archive)", s)
}

func runSessionList(cmd *cobra.Command, statusFlag string) error {
	var statuses []session.Status
	if statusFlag != "" {
		st, err := parseStatus(statusFlag)
		if err != nil {
			return err
		}
		statuses = append(statuses, st)
	}

	sessions, err := newStore().List(statuses...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if IsJSONOutput() {
		items := make([]session.Session, 0, len(sessions))
		for _, s := range sessions {
			s.Content = ""
			items = append(items, s)
		}
		return output.PrintJSON(out, map[string]any{
			"sessions": items,
			"count":    len(items),
		})
	}

	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions found.")
		return nil
	}

	table := output.NewTable(out, "ID", "STATUS", "PRIORITY", "TAGS", "TITLE")
	table.SetMaxWidth(output.Width(out, output.DefaultWidth), 4)
	for _, s := range sessions {
		_, body, ok := session.SplitFrontMatter(s.Content)
		if !ok {
			body = s.Content
		}
		table.AddRow(
			s.ID,
			string(s.Status),
			string(s.Metadata.Priority),
			strings.Join(s.Metadata.Tags, ","),
			output.FirstLine(body),
		)
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%s\n", output.CountStr(len(sessions), "session", "sessions"))
	return nil
}

func newSessionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a session document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newStore().Show(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if IsJSONOutput() {
				return output.PrintJSON(out, s)
			}
			fmt.Fprintf(out, "# Session %s (%s, %s priority)\n\n", s.ID, s.Status, s.Metadata.Priority)
			fmt.Fprint(out, s.Content)
			if !strings.HasSuffix(s.Content, "\n") {
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}

func newSessionPickupCmd() *cobra.Command {
	var (
		auto     bool
		noInject bool
	)

	cmd := &cobra.Command{
		Use:   "pickup [id]",
		Short: "Claim a session by moving it to doing",
		Long: `Claim a session. With an id, that session is moved from todo to doing.
With --auto (or no id), the highest priority session is chosen, oldest first
within a priority.

If another agent claims the session first, pickup fails with "not available";
try another session. Files listed under specs and files in the front matter
are printed after the document unless --no-inject is given.

Examples:
  spx session pickup --auto
  spx session pickup 2026-01-13_08-01-05 --no-inject`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) > 0 {
				id = args[0]
			}
			return runSessionPickup(cmd, id, auto, noInject)
		},
	}

	cmd.Flags().BoolVar(&auto, "auto", false, "Pick the highest priority session")
	cmd.Flags().BoolVar(&noInject, "no-inject", false, "Do not print referenced files")
	return cmd
}

func runSessionPickup(cmd *cobra.Command, id string, auto, noInject bool) error {
	if id != "" && auto {
		return fmt.Errorf("pass a session id or --auto, not both")
	}

	store := newStore()
	var (
		picked session.Session
		err    error
	)
	if id == "" {
		picked, err = store.PickupAuto()
	} else {
		picked, err = store.Pickup(id)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var injected strings.Builder
	var warnings []string
	if !noInject {
		warnings, err = session.InjectReferences(&injected, picked.Metadata, currentConfig().ProjectRoot())
		if err != nil {
			return err
		}
	}

	if IsJSONOutput() {
		return output.PrintJSON(out, struct {
			SessionResponse
			References string `json:"references,omitempty"`
		}{
			SessionResponse: SessionResponse{Success: true, Action: "pickup", Session: picked, Warnings: warnings},
			References:      injected.String(),
		})
	}

	for _, w := range warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning:", w)
	}
	fmt.Fprintf(out, "Picked up session %s\n\n", picked.ID)
	fmt.Fprint(out, picked.Content)
	if !strings.HasSuffix(picked.Content, "\n") {
		fmt.Fprintln(out)
	}
	fmt.Fprint(out, injected.String())
	return nil
}

func newSessionReleaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "release [id]",
		Short: "Return a claimed session to todo",
		Long: `Move a session from doing back to todo. Without an id, the most recently
created session in doing is released.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := newStore()
			var (
				released session.Session
				err      error
			)
			if len(args) > 0 {
				released, err = store.Release(args[0])
			} else {
				released, err = store.ReleaseCurrent()
			}
			if err != nil {
				return err
			}
			return printTransition(cmd, "release", released, "Released session %s to todo\n")
		},
	}
}

func newSessionArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive <id>",
		Short: "Move a session to archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			archived, err := newStore().Archive(args[0])
			if err != nil {
				return err
			}
			return printTransition(cmd, "archive", archived, "Archived session %s\n")
		},
	}
}

func printTransition(cmd *cobra.Command, action string, s session.Session, format string) error {
	out := cmd.OutOrStdout()
	if IsJSONOutput() {
		s.Content = ""
		return output.PrintJSON(out, SessionResponse{Success: true, Action: action, Session: s})
	}
	fmt.Fprintf(out, format, s.ID)
	return nil
}

func newSessionDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session from any state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			status, err := newStore().Delete(id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if IsJSONOutput() {
				return output.PrintJSON(out, map[string]any{
					"success": true,
					"action":  "delete",
					"id":      id,
					"status":  status,
				})
			}
			fmt.Fprintf(out, "Deleted session %s from %s\n", id, status)
			return nil
		},
	}
}

func newSessionPruneCmd() *cobra.Command {
	var (
		keep   int
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old todo sessions, keeping the newest",
		Long: `Delete all but the newest --keep sessions in todo. Sessions in doing and
archive are never pruned.

Examples:
  spx session prune             # keep sessions.prune_keep (default 5)
  spx session prune --keep 2
  spx session prune --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("keep") {
				keep = currentConfig().Sessions.PruneKeep
			}
			return runSessionPrune(cmd, keep, dryRun)
		},
	}

	cmd.Flags().IntVarP(&keep, "keep", "k", session.DefaultPruneKeep, "Number of todo sessions to keep")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be deleted")
	return cmd
}

func runSessionPrune(cmd *cobra.Command, keep int, dryRun bool) error {
	store := newStore()

	var ids []string
	if dryRun {
		plan, err := store.PrunePlan(keep)
		if err != nil {
			return err
		}
		for _, s := range plan {
			ids = append(ids, s.ID)
		}
	} else {
		deleted, err := store.Prune(keep)
		if err != nil {
			return err
		}
		ids = deleted
	}
	if ids == nil {
		ids = []string{}
	}

	out := cmd.OutOrStdout()
	if IsJSONOutput() {
		return output.PrintJSON(out, map[string]any{
			"success": true,
			"dry_run": dryRun,
			"keep":    keep,
			"deleted": ids,
		})
	}

	if len(ids) == 0 {
		fmt.Fprintf(out, "Nothing to prune (keeping %d)\n", keep)
		return nil
	}
	verb := "Deleted"
	if dryRun {
		verb = "Would delete"
	}
	fmt.Fprintf(out, "%s %s:\n", verb, output.CountStr(len(ids), "session", "sessions"))
	for _, id := range ids {
		fmt.Fprintf(out, "  %s\n", id)
	}
	return nil
}
