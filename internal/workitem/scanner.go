package workitem

import (
	"log/slog"
	"path/filepath"
)

// Paths locates the work item directory inside a project.
type Paths struct {
	Root      string
	SpecsRoot string
	WorkDir   string
	StatusDir string
}

// Dir returns {Root}/{SpecsRoot}/{WorkDir}/{StatusDir}.
func (p Paths) Dir() string {
	return filepath.Join(p.Root, p.SpecsRoot, p.WorkDir, p.StatusDir)
}

// Scanner runs the walk, filter, parse and build pipeline for one directory.
type Scanner struct {
	paths    Paths
	resolver StatusResolver
	logger   *slog.Logger
}

// NewScanner creates a Scanner. A nil resolver uses FSResolver and a nil
// logger uses slog.Default().
func NewScanner(paths Paths, resolver StatusResolver, logger *slog.Logger) *Scanner {
	if resolver == nil {
		resolver = FSResolver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		paths:    paths,
		resolver: resolver,
		logger:   logger.With("component", "workitem.scanner"),
	}
}

// Dir returns the directory the scanner reads.
func (s *Scanner) Dir() string {
	return s.paths.Dir()
}

// Scan re-reads the filesystem and returns a freshly built tree.
func (s *Scanner) Scan() (*Tree, error) {
	dir := s.paths.Dir()

	entries, err := Walk(dir)
	if err != nil {
		s.logger.Error("walk failed", "dir", dir, "error", err)
		return nil, err
	}

	dirs := FilterWorkItemDirectories(entries)
	items, err := BuildWorkItemList(dirs)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("discovered work items",
		"dir", dir,
		"entries", len(entries),
		"work_items", len(items),
	)

	tree, err := Build(items, s.resolver)
	if err != nil {
		s.logger.Error("tree build failed", "dir", dir, "error", err)
		return nil, err
	}
	return tree, nil
}
