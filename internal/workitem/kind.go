// Package workitem discovers capability, feature and story directories on disk,
// assembles them into an ownership tree and rolls their status up from the
// tests/DONE.md markers of each story.
package workitem

import "fmt"

// Kind is the level of a work item in the capability/feature/story hierarchy.
type Kind string

const (
	KindCapability Kind = "capability"
	KindFeature    Kind = "feature"
	KindStory      Kind = "story"
)

// Kinds lists every kind from the top of the hierarchy down.
var Kinds = []Kind{KindCapability, KindFeature, KindStory}

// Parent returns the kind that must own an item of kind k.
// Capabilities have no parent and report ok=false.
func (k Kind) Parent() (Kind, bool) {
	switch k {
	case KindFeature:
		return KindCapability, true
	case KindStory:
		return KindFeature, true
	default:
		return "", false
	}
}

// Status is the computed completion state of a work item.
type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// WorkItem is a parsed work item directory before it is placed in a tree.
type WorkItem struct {
	Kind   Kind   `json:"kind"`
	Number int    `json:"number"`
	Slug   string `json:"slug"`
	Path   string `json:"path"`
}

// DirName rebuilds the directory name the item was parsed from.
func (w WorkItem) DirName() string {
	return fmt.Sprintf("%s-%d_%s", w.Kind, w.Number, w.Slug)
}

// DisplayNumber converts an internal number to the number shown to users.
// Capabilities are stored zero-indexed and displayed one-indexed; features and
// stories display their stored number unchanged.
func DisplayNumber(kind Kind, number int) int {
	if kind == KindCapability {
		return number + 1
	}
	return number
}
