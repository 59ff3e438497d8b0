// Package session manages handoff documents that move between todo, doing and
// archive directories. The directory holding a document is its state; every
// transition is a single rename, which is the only concurrency control.
package session

import (
	"path/filepath"
)

// Status is derived from the directory that currently holds a session file.
type Status string

const (
	StatusTodo    Status = "todo"
	StatusDoing   Status = "doing"
	StatusArchive Status = "archive"
)

// Statuses lists the states in lifecycle order.
var Statuses = []Status{StatusTodo, StatusDoing, StatusArchive}

// Priority orders sessions for pickup.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// DefaultPriority applies when front matter has no valid priority.
const DefaultPriority = PriorityMedium

// ParsePriority returns the priority named by s, or false if s is not one of
// high, medium or low.
func ParsePriority(s string) (Priority, bool) {
	switch Priority(s) {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return Priority(s), true
	}
	return "", false
}

func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityLow:
		return 1
	default:
		return 2
	}
}

// Metadata is the advisory front matter of a session document.
type Metadata struct {
	Priority         Priority `json:"priority" yaml:"priority"`
	Tags             []string `json:"tags" yaml:"tags"`
	Branch           string   `json:"branch,omitempty" yaml:"branch,omitempty"`
	CreatedAt        string   `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	WorkingDirectory string   `json:"working_directory,omitempty" yaml:"working_directory,omitempty"`
	Specs            []string `json:"specs,omitempty" yaml:"specs,omitempty"`
	Files            []string `json:"files,omitempty" yaml:"files,omitempty"`
}

// DefaultMetadata is what a document without usable front matter yields.
func DefaultMetadata() Metadata {
	return Metadata{
		Priority: DefaultPriority,
		Tags:     []string{},
	}
}

// Session is one handoff document in the store.
type Session struct {
	ID       string   `json:"id"`
	Status   Status   `json:"status"`
	Path     string   `json:"path"`
	Metadata Metadata `json:"metadata"`
	Content  string   `json:"content,omitempty"`
}

// Dirs holds the three state directories. All path construction for the
// lifecycle goes through Dirs so it can be tested without a filesystem.
type Dirs struct {
	Todo    string
	Doing   string
	Archive string
}

// DirsFor returns the standard layout below root.
func DirsFor(root string) Dirs {
	return Dirs{
		Todo:    filepath.Join(root, string(StatusTodo)),
		Doing:   filepath.Join(root, string(StatusDoing)),
		Archive: filepath.Join(root, string(StatusArchive)),
	}
}

// Dir returns the directory for status, or "" for an unknown status.
func (d Dirs) Dir(status Status) string {
	switch status {
	case StatusTodo:
		return d.Todo
	case StatusDoing:
		return d.Doing
	case StatusArchive:
		return d.Archive
	}
	return ""
}

// Path returns the document path for id in status.
func (d Dirs) Path(status Status, id string) string {
	return filepath.Join(d.Dir(status), id+fileExtension)
}

// Transition returns the source and destination paths for moving id between
// two states.
func (d Dirs) Transition(id string, from, to Status) (src, dst string) {
	return d.Path(from, id), d.Path(to, id)
}

const fileExtension = ".md"
