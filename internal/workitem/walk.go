package workitem

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirectoryEntry is one filesystem entry found by Walk.
type DirectoryEntry struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	IsDirectory bool   `json:"is_directory"`
}

// WalkError reports a directory that could not be read during a walk.
type WalkError struct {
	Path  string
	Cause error
}

func (e *WalkError) Error() string {
	return fmt.Sprintf("walk %s: %v", e.Path, e.Cause)
}

func (e *WalkError) Unwrap() error {
	return e.Cause
}

// Walk recursively lists every entry below root. Symlinked directories are
// followed once; a link whose target was already visited is skipped.
// A missing root or an unreadable subdirectory fails the whole walk.
func Walk(root string) ([]DirectoryEntry, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &WalkError{Path: root, Cause: err}
	}
	if !info.IsDir() {
		return nil, &WalkError{Path: root, Cause: fmt.Errorf("not a directory")}
	}

	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, &WalkError{Path: root, Cause: err}
	}

	visited := map[string]bool{resolved: true}
	entries := []DirectoryEntry{}
	if err := walkDir(root, visited, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func walkDir(dir string, visited map[string]bool, out *[]DirectoryEntry) error {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return &WalkError{Path: dir, Cause: err}
	}

	for _, de := range dirEntries {
		path := filepath.Join(dir, de.Name())
		isDir := de.IsDir()

		if de.Type()&os.ModeSymlink != 0 {
			// Broken links are reported as plain entries.
			if target, err := os.Stat(path); err == nil {
				isDir = target.IsDir()
			}
		}

		if !isDir {
			*out = append(*out, DirectoryEntry{Name: de.Name(), Path: path})
			continue
		}

		resolved, err := filepath.EvalSymlinks(path)
		if err != nil {
			return &WalkError{Path: path, Cause: err}
		}
		if visited[resolved] {
			continue
		}
		visited[resolved] = true

		*out = append(*out, DirectoryEntry{Name: de.Name(), Path: path, IsDirectory: true})
		if err := walkDir(path, visited, out); err != nil {
			return err
		}
	}
	return nil
}

// FilterWorkItemDirectories keeps the directories whose names parse as work
// items. Everything else is dropped without error.
func FilterWorkItemDirectories(entries []DirectoryEntry) []DirectoryEntry {
	filtered := make([]DirectoryEntry, 0, len(entries))
	for _, e := range entries {
		if !e.IsDirectory {
			continue
		}
		if IsWorkItemName(e.Name) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// BuildWorkItemList parses every entry into a WorkItem carrying its path.
// Entries must already be filtered; the first unparsable name is returned as
// an error.
func BuildWorkItemList(entries []DirectoryEntry) ([]WorkItem, error) {
	items := make([]WorkItem, 0, len(entries))
	for _, e := range entries {
		item, err := Parse(e.Name)
		if err != nil {
			return nil, err
		}
		item.Path = e.Path
		items = append(items, item)
	}
	return items, nil
}
