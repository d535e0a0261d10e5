// Package explore expands configured watch sources (exact paths and glob
// patterns) into the set of paths that currently exist on the file system.
package explore

import (
	"log/slog"
	"time"

	"github.com/just1ngray/jfswatch/internal/util"
)

// Explorer is one configured watch source.
type Explorer interface {
	// Source returns the literal configuration string, used for
	// diagnostics only.
	Source() string

	// Explore records every currently matching path into res.
	Explore(res *Resolution)
}

// Resolution is the outcome of one polling cycle across all explorers.
type Resolution struct {
	// Paths maps each found path to its modification time.
	Paths map[string]time.Time

	// Excluded lists path prefixes that could not be read this cycle.
	// The differ treats them as unresolved: neither new nor deleted.
	Excluded []string
}

func NewResolution() *Resolution {
	return &Resolution{Paths: make(map[string]time.Time)}
}

// Found records an existing path and its mtime.
func (r *Resolution) Found(path string, mtime time.Time) {
	r.Paths[path] = mtime
}

// Exclude marks a path prefix as unreadable for this cycle.
func (r *Resolution) Exclude(prefix string) {
	r.Excluded = append(r.Excluded, prefix)
}

// Resolve runs every explorer against a fresh resolution.
func Resolve(explorers []Explorer) *Resolution {
	res := NewResolution()
	for _, e := range explorers {
		e.Explore(res)
	}
	return res
}

// warn logs a resolution warning through the shared limiter, demoting to
// debug once the budget is spent so a permanently unreadable path does not
// flood the log at poll frequency.
func warn(limiter *util.Limiter, msg string, args ...any) {
	if limiter == nil || limiter.Allow(1) {
		slog.Warn(msg, args...)
		return
	}
	slog.Debug(msg, args...)
}
