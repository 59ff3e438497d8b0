package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/spx-tools/spx/internal/config"
	"github.com/spx-tools/spx/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the configuration after applying the config file, environment
variables (SPX_SPECS_ROOT, SPX_SESSIONS_DIR, SPX_OUTPUT_FORMAT, SPX_NO_COLOR)
and command-line flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if IsJSONOutput() {
				return output.PrintJSON(out, currentConfig())
			}
			return config.Print(currentConfig(), out)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.FindPath(cfgFile)
			out := cmd.OutOrStdout()
			if IsJSONOutput() {
				_, err := os.Stat(path)
				return output.PrintJSON(out, map[string]any{
					"path":   path,
					"exists": err == nil,
				})
			}
			fmt.Fprintln(out, path)
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration to .spx/config.toml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(cmd, force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	cmd.AddCommand(initCmd)

	return cmd
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	path := filepath.Join(currentConfig().ProjectRoot(), config.ProjectPath)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
	}

	var buf bytes.Buffer
	if err := config.Print(config.Default(), &buf); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Chmod(path, 0644); err != nil {
		return fmt.Errorf("setting config permissions: %w", err)
	}

	out := cmd.OutOrStdout()
	if IsJSONOutput() {
		return output.PrintJSON(out, map[string]any{"success": true, "path": path})
	}
	fmt.Fprintf(out, "Created config file: %s\n", path)
	return nil
}
