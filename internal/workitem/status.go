package workitem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// TestsDirName is the per-item directory whose contents drive status.
	TestsDirName = "tests"
	// DoneMarkerName is the regular file inside tests/ that marks an item done.
	DoneMarkerName = "DONE.md"
)

// StatusResolver computes the status of a single leaf work item.
type StatusResolver interface {
	Resolve(path string) (Status, error)
}

// StatusResolverFunc adapts a function to StatusResolver.
type StatusResolverFunc func(path string) (Status, error)

// Resolve calls f(path).
func (f StatusResolverFunc) Resolve(path string) (Status, error) {
	return f(path)
}

// StatusDeterminationError means the status of a work item could not be read.
type StatusDeterminationError struct {
	Path  string
	Cause error
}

func (e *StatusDeterminationError) Error() string {
	return fmt.Sprintf("cannot determine status of %s: %v", e.Path, e.Cause)
}

func (e *StatusDeterminationError) Unwrap() error {
	return e.Cause
}

// FSResolver resolves status from the tests/ directory on the local filesystem.
type FSResolver struct{}

// Resolve inspects path/tests with a single directory read:
//
//	no tests/ or only dotfiles  -> OPEN
//	entries but no DONE.md file -> IN_PROGRESS
//	regular file DONE.md        -> DONE (symlinks followed)
func (FSResolver) Resolve(path string) (Status, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", &StatusDeterminationError{Path: path, Cause: err}
	}
	if !info.IsDir() {
		return "", &StatusDeterminationError{Path: path, Cause: errors.New("not a directory")}
	}

	testsDir := filepath.Join(path, TestsDirName)
	entries, err := os.ReadDir(testsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return StatusOpen, nil
		}
		// A plain file named tests is not a tests directory.
		if st, statErr := os.Stat(testsDir); statErr == nil && !st.IsDir() {
			return StatusOpen, nil
		}
		return "", &StatusDeterminationError{Path: path, Cause: err}
	}

	visible := 0
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		visible++
		if e.Name() == DoneMarkerName && isRegularFile(filepath.Join(testsDir, e.Name()), e) {
			return StatusDone, nil
		}
	}

	if visible == 0 {
		return StatusOpen, nil
	}
	return StatusInProgress, nil
}

// isRegularFile reports whether e is a regular file, following a symlink to
// its target. A dangling link is not a file.
func isRegularFile(path string, e os.DirEntry) bool {
	if e.Type()&os.ModeSymlink == 0 {
		return e.Type().IsRegular()
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
