package session

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// IDLayout is the time layout of session ids. Ids sort lexically in
// chronological order.
const IDLayout = "2006-01-02_15-04-05"

// NewID formats t as a session id.
func NewID(t time.Time) string {
	return t.Format(IDLayout)
}

// ParseID returns the timestamp embedded in id. Ids may carry a numeric
// collision suffix ("-2", "-3", ...) after the timestamp.
func ParseID(id string) (time.Time, bool) {
	ts, _, ok := splitID(id)
	return ts, ok
}

func splitID(id string) (time.Time, int, bool) {
	if len(id) < len(IDLayout) {
		return time.Time{}, 0, false
	}
	ts, err := time.Parse(IDLayout, id[:len(IDLayout)])
	if err != nil {
		return time.Time{}, 0, false
	}

	suffix := id[len(IDLayout):]
	if suffix == "" {
		return ts, 1, true
	}
	if !strings.HasPrefix(suffix, "-") {
		return time.Time{}, 0, false
	}
	n, err := strconv.Atoi(suffix[1:])
	if err != nil || n < 2 || suffix[1] == '+' {
		return time.Time{}, 0, false
	}
	return ts, n, true
}

func withSuffix(id string, n int) string {
	return fmt.Sprintf("%s-%d", id, n)
}

// olderThan orders ids oldest first. Ids with a valid timestamp come before
// malformed ones; malformed ids compare as strings.
func olderThan(a, b string) bool {
	at, an, aValid := splitID(a)
	bt, bn, bValid := splitID(b)
	if aValid != bValid {
		return aValid
	}
	if !aValid {
		return a < b
	}
	if !at.Equal(bt) {
		return at.Before(bt)
	}
	if an != bn {
		return an < bn
	}
	return a < b
}

// pickupBefore is the pickup order: priority descending, then FIFO.
func pickupBefore(a, b Session) bool {
	ra, rb := a.Metadata.Priority.rank(), b.Metadata.Priority.rank()
	if ra != rb {
		return ra > rb
	}
	return olderThan(a.ID, b.ID)
}

// Select picks the session to hand to the next agent: highest priority
// first, oldest first within a priority. It does not modify sessions and
// returns false for an empty input.
func Select(sessions []Session) (Session, bool) {
	if len(sessions) == 0 {
		return Session{}, false
	}
	best := sessions[0]
	for _, s := range sessions[1:] {
		if pickupBefore(s, best) {
			best = s
		}
	}
	return best, true
}

// newerThan orders ids newest first. Valid ids still come before malformed
// ones, so a stray file never outranks a real claim.
func newerThan(a, b string) bool {
	_, _, aValid := splitID(a)
	_, _, bValid := splitID(b)
	if aValid != bValid {
		return aValid
	}
	return olderThan(b, a)
}

// SelectNewest picks the most recently created session regardless of
// priority. It is how "the session I am working on" is resolved in doing.
// Malformed ids are only chosen when no id carries a timestamp.
func SelectNewest(sessions []Session) (Session, bool) {
	if len(sessions) == 0 {
		return Session{}, false
	}
	newest := sessions[0]
	for _, s := range sessions[1:] {
		if newerThan(s.ID, newest.ID) {
			newest = s
		}
	}
	return newest, true
}

// SortOldestFirst returns a copy of sessions ordered oldest first.
func SortOldestFirst(sessions []Session) []Session {
	out := make([]Session, len(sessions))
	copy(out, sessions)
	sort.SliceStable(out, func(i, j int) bool {
		return olderThan(out[i].ID, out[j].ID)
	})
	return out
}

// SortForPickup returns a copy of sessions in pickup order.
func SortForPickup(sessions []Session) []Session {
	out := make([]Session, len(sessions))
	copy(out, sessions)
	sort.SliceStable(out, func(i, j int) bool {
		return pickupBefore(out[i], out[j])
	})
	return out
}
