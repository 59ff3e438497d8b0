package workitem

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

const (
	// MinNumber and MaxNumber bound the BSP sibling numbering.
	MinNumber = 10
	MaxNumber = 99
)

var (
	// ErrNotWorkItem means a name does not follow {kind}-{NN}_{slug}.
	ErrNotWorkItem = errors.New("not a work item name")
	// ErrNumberOutOfRange means the name matched but its number is outside [10, 99].
	ErrNumberOutOfRange = errors.New("work item number out of range")
)

var namePattern = regexp.MustCompile(`^(capability|feature|story)-(\d{2,})_([a-z][a-z0-9-]*)$`)

// ParseError describes a directory name that could not be parsed.
type ParseError struct {
	Name   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid work item name %q: %s", e.Name, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse converts a directory name into a work item without a path.
// It never touches the filesystem.
func Parse(name string) (WorkItem, error) {
	m := namePattern.FindStringSubmatch(name)
	if m == nil {
		return WorkItem{}, &ParseError{
			Name:   name,
			Reason: "expected {capability|feature|story}-{NN}_{slug} with a lowercase kebab-case slug",
			Err:    ErrNotWorkItem,
		}
	}

	n, err := strconv.Atoi(m[2])
	if err != nil || n < MinNumber || n > MaxNumber {
		return WorkItem{}, &ParseError{
			Name:   name,
			Reason: fmt.Sprintf("number %s must be in range [%d, %d]", m[2], MinNumber, MaxNumber),
			Err:    ErrNumberOutOfRange,
		}
	}

	return WorkItem{
		Kind:   Kind(m[1]),
		Number: n,
		Slug:   m[3],
	}, nil
}

// IsWorkItemName reports whether name parses as a work item.
func IsWorkItemName(name string) bool {
	_, err := Parse(name)
	return err == nil
}
