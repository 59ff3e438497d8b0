package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/spx-tools/spx/internal/output"
)

// VersionResponse is the JSON output of `spx version`.
type VersionResponse struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuiltAt   string `json:"built_at"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func newVersionCmd() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd, short)
		},
	}
	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")
	return cmd
}

func buildVersionResponse() VersionResponse {
	return VersionResponse{
		Version:   Version,
		Commit:    Commit,
		BuiltAt:   Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func runVersion(cmd *cobra.Command, short bool) error {
	resp := buildVersionResponse()
	out := cmd.OutOrStdout()

	if IsJSONOutput() {
		return output.PrintJSON(out, resp)
	}

	if short {
		fmt.Fprintln(out, resp.Version)
		return nil
	}
	fmt.Fprintf(out, "spx version %s\n", resp.Version)
	fmt.Fprintf(out, "  commit:    %s\n", resp.Commit)
	fmt.Fprintf(out, "  built:     %s\n", resp.BuiltAt)
	fmt.Fprintf(out, "  go:        %s\n", resp.GoVersion)
	fmt.Fprintf(out, "  platform:  %s\n", resp.Platform)
	return nil
}
