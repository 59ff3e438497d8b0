package session

import (
	"errors"
	"fmt"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrSessionNotFound        = errors.New("session not found")
	ErrSessionNotAvailable    = errors.New("session not available")
	ErrSessionNotClaimed      = errors.New("session not claimed")
	ErrSessionAlreadyArchived = errors.New("session already archived")
	ErrInvalidContent         = errors.New("invalid session content")
	ErrNoSessionsAvailable    = errors.New("no sessions available")
)

// NotFoundError means no directory holds the session.
type NotFoundError struct {
	ID    string
	Cause error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("session %s not found", e.ID)
}

func (e *NotFoundError) Unwrap() error { return e.Cause }
func (e *NotFoundError) Is(target error) bool { return target == ErrSessionNotFound }

// NotAvailableError means a pickup lost the rename: the session was claimed
// by someone else or never existed in todo.
type NotAvailableError struct {
	ID    string
	Cause error
}

func (e *NotAvailableError) Error() string {
	return fmt.Sprintf("session %s is not available (claimed by another agent or not in todo); try another session", e.ID)
}

func (e *NotAvailableError) Unwrap() error { return e.Cause }
func (e *NotAvailableError) Is(target error) bool { return target == ErrSessionNotAvailable }

// NotClaimedError means a release found nothing in doing.
type NotClaimedError struct {
	ID    string
	Cause error
}

func (e *NotClaimedError) Error() string {
	if e.ID == "" {
		return "no session is currently claimed"
	}
	return fmt.Sprintf("session %s is not claimed", e.ID)
}

func (e *NotClaimedError) Unwrap() error { return e.Cause }
func (e *NotClaimedError) Is(target error) bool { return target == ErrSessionNotClaimed }

// AlreadyArchivedError means archive was called for a session in archive/.
type AlreadyArchivedError struct {
	ID string
}

func (e *AlreadyArchivedError) Error() string {
	return fmt.Sprintf("session %s is already archived", e.ID)
}

func (e *AlreadyArchivedError) Is(target error) bool { return target == ErrSessionAlreadyArchived }

// InvalidContentError rejects a document that is empty after trimming.
type InvalidContentError struct {
	Reason string
}

func (e *InvalidContentError) Error() string {
	return "invalid session content: " + e.Reason
}

func (e *InvalidContentError) Is(target error) bool { return target == ErrInvalidContent }

// NoSessionsAvailableError means an automatic pickup found todo empty.
type NoSessionsAvailableError struct{}

func (e *NoSessionsAvailableError) Error() string {
	return "no sessions available in todo"
}

func (e *NoSessionsAvailableError) Is(target error) bool { return target == ErrNoSessionsAvailable }
