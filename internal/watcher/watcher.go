// Package watcher drives the polling loop: resolve the watch sources,
// diff against the snapshot, run the command per change, sleep, repeat.
package watcher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/just1ngray/jfswatch/internal/command"
	"github.com/just1ngray/jfswatch/internal/explore"
	"github.com/just1ngray/jfswatch/internal/observability"
	"github.com/just1ngray/jfswatch/internal/watchfs"
)

// Watcher owns the snapshot and runs the poll/diff/execute/sleep cycle on
// a single goroutine. No change is processed while a triggered command
// runs or during the post-execution sleep; that pause is the debounce
// against command re-entrancy and change storms.
type Watcher struct {
	explorers []explore.Explorer
	template  *command.Template
	runner    *command.Runner
	interval  time.Duration
	sleep     time.Duration
	snapshot  *watchfs.Snapshot

	// OnChange, when set, is called for every detected change before the
	// command runs. The CLI layer uses it for terminal announcements.
	OnChange func(watchfs.Change)

	statsMu  sync.Mutex
	lastPoll time.Time
	tracked  int
}

func New(explorers []explore.Explorer, template *command.Template, runner *command.Runner, interval, sleep time.Duration) (*Watcher, error) {
	if len(explorers) == 0 {
		return nil, errors.New("no watch sources configured")
	}
	if template == nil || len(template.Argv()) == 0 {
		return nil, errors.New("no command configured")
	}
	if interval < 0 {
		return nil, errors.New("interval must be non-negative")
	}
	if sleep < 0 {
		return nil, errors.New("sleep must be non-negative")
	}

	return &Watcher{
		explorers: explorers,
		template:  template,
		runner:    runner,
		interval:  interval,
		sleep:     sleep,
		snapshot:  watchfs.NewSnapshot(),
	}, nil
}

// Run blocks until ctx is cancelled. The first poll establishes the
// baseline and emits no changes.
func (w *Watcher) Run(ctx context.Context) error {
	baseline := explore.Resolve(w.explorers)
	w.snapshot.Baseline(baseline.Paths)
	w.recordPoll()
	slog.Info("baseline established", "paths", w.snapshot.Len(), "sources", len(w.explorers))

	if !w.pause(ctx, w.interval) {
		return nil
	}

	for {
		delay := w.poll(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if !w.pause(ctx, delay) {
			return nil
		}
	}
}

// poll runs one cycle and returns how long to pause before the next one.
func (w *Watcher) poll(ctx context.Context) time.Duration {
	started := time.Now()
	slog.Debug("polling", "sources", len(w.explorers))

	res := explore.Resolve(w.explorers)
	changes := w.snapshot.Diff(res.Paths, res.Excluded)

	observability.PollsTotal.Inc()
	observability.PollDuration.Observe(time.Since(started).Seconds())
	if len(res.Excluded) > 0 {
		observability.ResolutionWarningsTotal.Inc()
	}
	w.recordPoll()

	if len(changes) == 0 {
		slog.Debug("no changes", "paths", len(res.Paths))
		return w.interval
	}

	for _, change := range changes {
		observability.ChangesTotal.WithLabelValues(change.Kind.String()).Inc()
		if change.Kind == watchfs.Deleted {
			slog.Info("change detected", "kind", change.Kind.String(), "path", change.Path)
		} else {
			slog.Info("change detected", "kind", change.Kind.String(), "path", change.Path, "mtime", change.MTime)
		}
		if w.OnChange != nil {
			w.OnChange(change)
		}

		argv := w.template.Render(change)
		slog.Debug("running command", "argv", argv)
		w.runner.Run(ctx, argv)

		if ctx.Err() != nil {
			return 0
		}
	}

	return w.sleep
}

// pause sleeps for d unless ctx is cancelled first. Returns false when
// the watcher should stop.
func (w *Watcher) pause(ctx context.Context, d time.Duration) bool {
	if err := ctx.Err(); err != nil {
		return false
	}
	if d <= 0 {
		return true
	}

	slog.Debug("sleeping", "duration", d)
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (w *Watcher) recordPoll() {
	tracked := w.snapshot.Len()
	observability.WatchedPaths.Set(float64(tracked))

	w.statsMu.Lock()
	w.lastPoll = time.Now()
	w.tracked = tracked
	w.statsMu.Unlock()
}

// Health implements observability.HealthSource.
func (w *Watcher) Health() observability.Health {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	return observability.Health{
		Status:       "up",
		WatchedPaths: w.tracked,
		LastPoll:     w.lastPoll,
	}
}
