package cli

import (
	"context"
	"os/exec"
	"strings"
)

// gitBranch returns the checked-out branch of the repository containing dir.
// A detached HEAD yields an empty name.
func gitBranch(ctx context.Context, dir string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cmd := exec.CommandContext(ctx, "git", "branch", "--show-current")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
