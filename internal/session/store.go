package session

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/natefinch/atomic"
)

// DefaultPruneKeep is how many todo sessions prune keeps when no count is given.
const DefaultPruneKeep = 5

// Store performs lifecycle operations against the three state directories.
// A Store holds no state besides configuration; the filesystem is the only
// source of truth and every transition is a single os.Rename.
type Store struct {
	dirs   Dirs
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used by the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger.With("component", "session.store")
		}
	}
}

// WithClock replaces the clock used to generate ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore returns a Store for dirs.
func NewStore(dirs Dirs, opts ...Option) *Store {
	s := &Store{
		dirs:   dirs,
		now:    time.Now,
		logger: slog.Default().With("component", "session.store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dirs returns the directories the store operates on.
func (s *Store) Dirs() Dirs {
	return s.dirs
}

// Create writes content as a new todo session and returns its id. Content is
// written byte-for-byte.
//
// The document is staged under a hidden name and then hard-linked to its id,
// so a writer in another process that picked the same id gets EEXIST and moves
// on to the next suffix instead of replacing the file.
func (s *Store) Create(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", &InvalidContentError{Reason: "content is empty"}
	}

	if err := os.MkdirAll(s.dirs.Todo, 0755); err != nil {
		return "", fmt.Errorf("creating todo directory: %w", err)
	}

	staged, err := s.stage(content)
	if err != nil {
		return "", err
	}
	defer os.Remove(staged)

	id, err := s.claim(staged)
	if err != nil {
		return "", err
	}

	path := s.dirs.Path(StatusTodo, id)
	s.logger.Info("session created", "id", id, "path", path)
	return id, nil
}

// stage writes content to a uniquely named dotfile in todo. List ignores
// dotfiles, so a staged document is never visible as a session.
func (s *Store) stage(content string) (string, error) {
	f, err := os.CreateTemp(s.dirs.Todo, ".staged-*"+fileExtension)
	if err != nil {
		return "", fmt.Errorf("staging session: %w", err)
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("staging session: %w", err)
	}

	s.logger.Debug("staging session", "path", name, "bytes", len(content))
	if err := atomic.WriteFile(name, strings.NewReader(content)); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("writing staged session: %w", err)
	}
	if err := os.Chmod(name, 0644); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("setting permissions on staged session: %w", err)
	}
	return name, nil
}

// claim links staged to the first free id: the clock id, then -2, -3, ...
// An id is free when no state directory holds it and the link into todo does
// not collide.
func (s *Store) claim(staged string) (string, error) {
	base := NewID(s.now())
	for n := 1; ; n++ {
		id := base
		if n > 1 {
			id = withSuffix(base, n)
		}

		_, _, err := s.locate(id, Statuses...)
		if err == nil {
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}

		err = os.Link(staged, s.dirs.Path(StatusTodo, id))
		if err == nil {
			return id, nil
		}
		if errors.Is(err, fs.ErrExist) {
			s.logger.Debug("session id taken concurrently", "id", id)
			continue
		}
		return "", fmt.Errorf("writing session %s: %w", id, err)
	}
}

// CreateWithMetadata is Create for documents that may lack front matter. If
// content already has a front matter block it is written unchanged;
// otherwise meta is rendered in front of it.
func (s *Store) CreateWithMetadata(content string, meta Metadata) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", &InvalidContentError{Reason: "content is empty"}
	}
	if HasFrontMatter(content) {
		return s.Create(content)
	}

	if meta.Priority == "" {
		meta.Priority = DefaultPriority
	}
	if meta.CreatedAt == "" {
		meta.CreatedAt = s.now().Format(time.RFC3339)
	}
	doc, err := RenderFrontMatter(meta, content)
	if err != nil {
		return "", fmt.Errorf("rendering front matter: %w", err)
	}
	return s.Create(doc)
}

// Pickup claims id by moving it from todo to doing. Losing a race against
// another agent surfaces as NotAvailableError.
func (s *Store) Pickup(id string) (Session, error) {
	if err := validateID(id); err != nil {
		return Session{}, err
	}
	if err := os.MkdirAll(s.dirs.Doing, 0755); err != nil {
		return Session{}, fmt.Errorf("creating doing directory: %w", err)
	}

	src, dst := s.dirs.Transition(id, StatusTodo, StatusDoing)
	if err := os.Rename(src, dst); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Session{}, &NotAvailableError{ID: id, Cause: err}
		}
		return Session{}, fmt.Errorf("picking up session %s: %w", id, err)
	}

	s.logger.Info("session picked up", "id", id)
	return s.load(id, StatusDoing, dst)
}

// PickupAuto claims the session Select prefers among the current todo
// sessions. A lost race is reported, not retried.
func (s *Store) PickupAuto() (Session, error) {
	todo, err := s.List(StatusTodo)
	if err != nil {
		return Session{}, err
	}
	chosen, ok := Select(todo)
	if !ok {
		return Session{}, &NoSessionsAvailableError{}
	}
	s.logger.Debug("selected session", "id", chosen.ID, "priority", chosen.Metadata.Priority, "candidates", len(todo))
	return s.Pickup(chosen.ID)
}

// Release returns id from doing to todo.
func (s *Store) Release(id string) (Session, error) {
	if err := validateID(id); err != nil {
		return Session{}, err
	}
	if err := os.MkdirAll(s.dirs.Todo, 0755); err != nil {
		return Session{}, fmt.Errorf("creating todo directory: %w", err)
	}

	src, dst := s.dirs.Transition(id, StatusDoing, StatusTodo)
	if err := os.Rename(src, dst); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Session{}, &NotClaimedError{ID: id, Cause: err}
		}
		return Session{}, fmt.Errorf("releasing session %s: %w", id, err)
	}

	s.logger.Info("session released", "id", id)
	return s.load(id, StatusTodo, dst)
}

// ReleaseCurrent releases the newest session in doing.
func (s *Store) ReleaseCurrent() (Session, error) {
	doing, err := s.List(StatusDoing)
	if err != nil {
		return Session{}, err
	}
	current, ok := SelectNewest(doing)
	if !ok {
		return Session{}, &NotClaimedError{}
	}
	return s.Release(current.ID)
}

// Archive moves id from todo or doing into archive.
func (s *Store) Archive(id string) (Session, error) {
	if err := validateID(id); err != nil {
		return Session{}, err
	}

	from, src, err := s.locate(id, StatusTodo, StatusDoing)
	if errors.Is(err, fs.ErrNotExist) {
		if _, statErr := os.Stat(s.dirs.Path(StatusArchive, id)); statErr == nil {
			return Session{}, &AlreadyArchivedError{ID: id}
		}
		return Session{}, &NotFoundError{ID: id, Cause: err}
	}
	if err != nil {
		return Session{}, err
	}

	if err := os.MkdirAll(s.dirs.Archive, 0755); err != nil {
		return Session{}, fmt.Errorf("creating archive directory: %w", err)
	}
	dst := s.dirs.Path(StatusArchive, id)
	if err := os.Rename(src, dst); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Session{}, &NotFoundError{ID: id, Cause: err}
		}
		return Session{}, fmt.Errorf("archiving session %s: %w", id, err)
	}

	s.logger.Info("session archived", "id", id, "from", from)
	return s.load(id, StatusArchive, dst)
}

// Delete removes id from the first of todo, doing and archive that holds it.
func (s *Store) Delete(id string) (Status, error) {
	if err := validateID(id); err != nil {
		return "", err
	}

	status, path, err := s.locate(id, Statuses...)
	if errors.Is(err, fs.ErrNotExist) {
		return "", &NotFoundError{ID: id, Cause: err}
	}
	if err != nil {
		return "", err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &NotFoundError{ID: id, Cause: err}
		}
		return "", fmt.Errorf("deleting session %s: %w", id, err)
	}

	s.logger.Info("session deleted", "id", id, "status", status)
	return status, nil
}

// PrunePlan returns the todo sessions Prune(keep) would delete, oldest first.
func (s *Store) PrunePlan(keep int) ([]Session, error) {
	if keep < 0 {
		return nil, fmt.Errorf("prune keep must be >= 0, got %d", keep)
	}
	todo, err := s.List(StatusTodo)
	if err != nil {
		return nil, err
	}
	excess := len(todo) - keep
	if excess <= 0 {
		return nil, nil
	}
	return SortOldestFirst(todo)[:excess], nil
}

// Prune deletes all but the keep newest todo sessions and returns the ids it
// removed. Sessions in doing and archive are never touched.
func (s *Store) Prune(keep int) ([]string, error) {
	plan, err := s.PrunePlan(keep)
	if err != nil {
		return nil, err
	}

	deleted := make([]string, 0, len(plan))
	for _, sess := range plan {
		if err := os.Remove(sess.Path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				s.logger.Debug("session vanished before prune", "id", sess.ID)
				continue
			}
			return deleted, fmt.Errorf("pruning session %s: %w", sess.ID, err)
		}
		deleted = append(deleted, sess.ID)
	}

	if len(deleted) > 0 {
		s.logger.Info("pruned sessions", "count", len(deleted), "keep", keep)
	}
	return deleted, nil
}

// List returns the sessions in the given states sorted by state then id. With
// no arguments every state is listed. A missing directory is empty.
func (s *Store) List(statuses ...Status) ([]Session, error) {
	if len(statuses) == 0 {
		statuses = Statuses
	}

	var out []Session
	for _, status := range statuses {
		dir := s.dirs.Dir(status)
		if dir == "" {
			return nil, fmt.Errorf("unknown session status %q", status)
		}
		entries, err := os.ReadDir(dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("listing %s sessions: %w", status, err)
		}

		var batch []Session
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != fileExtension {
				continue
			}
			id := strings.TrimSuffix(name, fileExtension)
			sess, err := s.load(id, status, filepath.Join(dir, name))
			if errors.Is(err, fs.ErrNotExist) {
				// Moved by another agent between ReadDir and read.
				continue
			}
			if err != nil {
				return nil, err
			}
			batch = append(batch, sess)
		}
		sort.Slice(batch, func(i, j int) bool { return olderThan(batch[i].ID, batch[j].ID) })
		out = append(out, batch...)
	}
	return out, nil
}

// Show returns id with its content from whichever state holds it.
func (s *Store) Show(id string) (Session, error) {
	if err := validateID(id); err != nil {
		return Session{}, err
	}
	status, path, err := s.locate(id, Statuses...)
	if errors.Is(err, fs.ErrNotExist) {
		return Session{}, &NotFoundError{ID: id, Cause: err}
	}
	if err != nil {
		return Session{}, err
	}
	return s.load(id, status, path)
}

// locate returns the first of statuses whose directory holds id. It returns
// an error wrapping fs.ErrNotExist when none does.
func (s *Store) locate(id string, statuses ...Status) (Status, string, error) {
	for _, status := range statuses {
		path := s.dirs.Path(status, id)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return status, path, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", "", fmt.Errorf("checking %s: %w", path, err)
		}
	}
	return "", "", fmt.Errorf("session %s: %w", id, fs.ErrNotExist)
}

func (s *Store) load(id string, status Status, path string) (Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Session{}, err
		}
		return Session{}, fmt.Errorf("reading session %s: %w", id, err)
	}
	content := string(data)
	return Session{
		ID:       id,
		Status:   status,
		Path:     path,
		Metadata: ParseMetadata(content),
		Content:  content,
	}, nil
}

// validateID rejects ids that would escape the state directories.
func validateID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return fmt.Errorf("invalid session id %q", id)
	}
	return nil
}
