package session

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Reference is one file resolved from a session's specs or files list.
type Reference struct {
	Source string // "specs" or "files"
	Entry  string // entry as written in front matter
	Path   string // resolved path of the file
}

// ResolveReferences expands the specs and files entries of meta relative to
// baseDir. Entries may be glob patterns, including "**". Entries that match
// nothing are returned as warnings.
func ResolveReferences(meta Metadata, baseDir string) ([]Reference, []string) {
	var refs []Reference
	var warnings []string

	add := func(source string, entries []string) {
		for _, entry := range entries {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			pattern := entry
			if !filepath.IsAbs(pattern) {
				pattern = filepath.Join(baseDir, pattern)
			}

			if !containsGlob(entry) {
				info, err := os.Stat(pattern)
				if err != nil || info.IsDir() {
					warnings = append(warnings, fmt.Sprintf("referenced file not found: %s", entry))
					continue
				}
				refs = append(refs, Reference{Source: source, Entry: entry, Path: pattern})
				continue
			}

			matches, err := doublestar.FilepathGlob(pattern)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("invalid pattern %s: %v", entry, err))
				continue
			}
			found := 0
			for _, match := range matches {
				info, err := os.Stat(match)
				if err != nil || info.IsDir() {
					continue
				}
				refs = append(refs, Reference{Source: source, Entry: entry, Path: match})
				found++
			}
			if found == 0 {
				warnings = append(warnings, fmt.Sprintf("no files match pattern: %s", entry))
			}
		}
	}

	add("specs", meta.Specs)
	add("files", meta.Files)
	return refs, warnings
}

// InjectReferences writes every file referenced by meta to w under a
// "=== <path> ===" header. Files are read at call time. A file that is
// missing or unreadable is reported in the returned warnings and skipped;
// only a failed write to w is an error.
func InjectReferences(w io.Writer, meta Metadata, baseDir string) ([]string, error) {
	refs, warnings := ResolveReferences(meta, baseDir)
	for _, ref := range refs {
		data, err := os.ReadFile(ref.Path)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("could not read %s: %v", displayPath(ref.Path, baseDir), err))
			continue
		}
		if _, err := fmt.Fprintf(w, "\n=== %s ===\n\n", displayPath(ref.Path, baseDir)); err != nil {
			return warnings, err
		}
		if _, err := w.Write(data); err != nil {
			return warnings, err
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return warnings, err
			}
		}
	}
	return warnings, nil
}

func displayPath(path, baseDir string) string {
	if rel, err := filepath.Rel(baseDir, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return path
}

func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
