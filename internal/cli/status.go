package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/spx-tools/spx/internal/config"
	"github.com/spx-tools/spx/internal/output"
	"github.com/spx-tools/spx/internal/report"
	"github.com/spx-tools/spx/internal/watcher"
	"github.com/spx-tools/spx/internal/workitem"
)

func newStatusCmd() *cobra.Command {
	var (
		format    string
		watch     bool
		showPaths bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the work item tree with rolled-up status",
		Long: `Walk specs/work/doing and print every capability, feature and story
with its status. A story is DONE when tests/DONE.md exists, IN_PROGRESS when
tests/ has other files, OPEN otherwise. Parents roll up their children.

Examples:
  spx status
  spx status --format table
  spx status --json
  spx status --watch          # Re-render on every change`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, format, watch, showPaths)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text, json, markdown, table (default from config)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-render whenever the work item tree changes")
	cmd.Flags().BoolVar(&showPaths, "paths", false, "Include directory paths in text output")

	return cmd
}

func resolveFormat(flag string) (string, error) {
	format := flag
	if format == "" {
		format = currentConfig().Output.Format
	}
	if IsJSONOutput() {
		format = config.FormatJSON
	}
	if !config.IsValidFormat(format) {
		return "", fmt.Errorf("unknown format %q (want one of text, json, markdown, table)", format)
	}
	return format, nil
}

func runStatus(cmd *cobra.Command, formatFlag string, watch, showPaths bool) error {
	format, err := resolveFormat(formatFlag)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	scanner := newScanner()
	opts := report.Options{
		Renderer:  output.NewRenderer(out, currentConfig().Output.Color),
		Width:     output.Width(out, output.DefaultWidth),
		ShowPaths: showPaths,
	}

	render := func() error {
		tree, err := scanner.Scan()
		if err != nil {
			return err
		}
		if err := report.Render(out, tree, format, opts); err != nil {
			return err
		}
		if format == config.FormatText && len(tree.Nodes) > 0 {
			fmt.Fprintf(out, "\n%s\n", report.Summary(tree))
		}
		return nil
	}

	if !watch {
		return render()
	}
	return watchStatus(cmd, scanner.Dir(), render)
}

func watchStatus(cmd *cobra.Command, dir string, render func() error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watcher.New(dir,
		watcher.WithDebounce(currentConfig().DebounceDuration()),
		watcher.WithLogger(slog.Default()),
	)
	if err != nil {
		return err
	}
	defer w.Close()

	out := cmd.OutOrStdout()
	redraw := func() {
		if output.IsTerminal(out) {
			fmt.Fprint(out, "\033[H\033[2J")
		}
		if err := render(); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "\nWatching %s (updated %s, Ctrl+C to stop)\n", dir, time.Now().Format("15:04:05"))
	}

	redraw()
	err = w.Run(ctx, func([]string) { redraw() })
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func newNextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Print the next story to work on",
		Long: `Print the first story that is not DONE, walking capabilities, features
and stories in number order. Lower-numbered work always comes first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNext(cmd)
		},
	}
}

// NextResponse is the JSON output of `spx next`.
type NextResponse struct {
	Found bool         `json:"found"`
	Item  *report.Node `json:"item,omitempty"`
}

func runNext(cmd *cobra.Command) error {
	tree, err := newScanner().Scan()
	if err != nil {
		return err
	}
	node, ok := workitem.Next(tree)
	out := cmd.OutOrStdout()

	if IsJSONOutput() {
		resp := NextResponse{Found: ok}
		if ok {
			n := report.NewNode(node)
			resp.Item = &n
		}
		return output.PrintJSON(out, resp)
	}

	if !ok {
		fmt.Fprintln(out, "All stories are done.")
		return nil
	}
	fmt.Fprintf(out, "%s %s [%s]\n", report.Label(node), node.Slug, node.Status)
	fmt.Fprintf(out, "  %s\n", node.Path)
	return nil
}
