package command

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"time"

	"github.com/just1ngray/jfswatch/internal/observability"
)

// Runner spawns the rendered command and blocks until it exits. Failures
// are logged and absorbed: a watcher keeps watching even when every
// triggered command fails.
type Runner struct {
	verbose bool
}

func NewRunner(verbose bool) *Runner {
	return &Runner{verbose: verbose}
}

// Run executes argv synchronously. The returned error is informational;
// the scheduler never stops the loop for it.
func (r *Runner) Run(ctx context.Context, argv []string) error {
	started := time.Now()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	elapsed := time.Since(started)

	exitCode := -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}

	switch {
	case err == nil:
		observability.CommandExecutionsTotal.WithLabelValues("ok").Inc()
		slog.Info("command finished", "argv", argv, "exit", exitCode, "duration", elapsed)
	case exitCode >= 0:
		observability.CommandExecutionsTotal.WithLabelValues("nonzero_exit").Inc()
		slog.Warn("command exited with failure", "argv", argv, "exit", exitCode, "duration", elapsed)
	default:
		observability.CommandExecutionsTotal.WithLabelValues("spawn_error").Inc()
		slog.Warn("command failed to run", "argv", argv, "error", err)
	}
	observability.CommandDuration.Observe(elapsed.Seconds())

	if r.verbose && (stdout.Len() > 0 || stderr.Len() > 0) {
		slog.Debug("command output",
			"argv", argv,
			"stdout", stdout.String(),
			"stderr", stderr.String())
	}

	return err
}
