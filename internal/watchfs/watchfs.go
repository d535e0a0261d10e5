// Package watchfs tracks the last-known state of the watched file system
// and computes the changes between two polls.
package watchfs

import (
	"sort"
	"strings"
	"time"
)

// Kind classifies a single detected change.
type Kind int

const (
	New Kind = iota
	Modified
	Deleted
)

func (k Kind) String() string {
	switch k {
	case New:
		return "new"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	}
	return "unknown"
}

// Change is one detected difference for a single path. MTime is the zero
// value for Deleted changes and always set otherwise.
type Change struct {
	Path  string
	Kind  Kind
	MTime time.Time
}

// Snapshot maps each watched path to its last-known modification time.
// It lives only in process memory; a fresh process starts blind and uses
// its first poll as the baseline. The scheduler is the sole owner, so no
// locking is needed.
type Snapshot struct {
	paths map[string]time.Time
}

func NewSnapshot() *Snapshot {
	return &Snapshot{paths: make(map[string]time.Time)}
}

// Len returns how many paths the snapshot currently tracks.
func (s *Snapshot) Len() int {
	return len(s.paths)
}

// Paths returns the tracked paths in lexicographic order.
func (s *Snapshot) Paths() []string {
	out := make([]string, 0, len(s.paths))
	for p := range s.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Baseline replaces the snapshot contents with the given resolution without
// emitting any changes. Used once, for the first poll.
func (s *Snapshot) Baseline(resolved map[string]time.Time) {
	s.paths = make(map[string]time.Time, len(resolved))
	for p, mtime := range resolved {
		s.paths[p] = mtime
	}
}

// Diff compares a fresh resolution against the snapshot, returns the
// ordered batch of changes, and updates the snapshot in place.
//
// excluded lists path prefixes that could not be read this cycle
// (permission errors). Paths under an excluded prefix are judged neither
// new nor deleted, so a transient permission race never produces a false
// Deleted record.
//
// Ordering is deterministic: New and Modified records sorted by path,
// then Deleted records sorted by path.
func (s *Snapshot) Diff(resolved map[string]time.Time, excluded []string) []Change {
	var changes []Change

	found := make([]string, 0, len(resolved))
	for p := range resolved {
		found = append(found, p)
	}
	sort.Strings(found)

	for _, p := range found {
		mtime := resolved[p]
		prev, ok := s.paths[p]
		if !ok {
			changes = append(changes, Change{Path: p, Kind: New, MTime: mtime})
			s.paths[p] = mtime
		} else if !prev.Equal(mtime) {
			changes = append(changes, Change{Path: p, Kind: Modified, MTime: mtime})
			s.paths[p] = mtime
		}
	}

	var gone []string
	for p := range s.paths {
		if _, ok := resolved[p]; ok {
			continue
		}
		if underAny(p, excluded) {
			continue
		}
		gone = append(gone, p)
	}
	sort.Strings(gone)

	for _, p := range gone {
		changes = append(changes, Change{Path: p, Kind: Deleted})
		delete(s.paths, p)
	}

	return changes
}

func underAny(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if path == prefix || strings.HasPrefix(path, strings.TrimSuffix(prefix, "/")+"/") {
			return true
		}
	}
	return false
}
