package command

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestRunnerSuccess(t *testing.T) {
	r := NewRunner(false)
	if err := r.Run(context.Background(), []string{"true"}); err != nil {
		t.Errorf("expected true to succeed, got %v", err)
	}
}

func TestRunnerNonZeroExit(t *testing.T) {
	r := NewRunner(false)
	if err := r.Run(context.Background(), []string{"false"}); err == nil {
		t.Error("expected an error for non-zero exit")
	}
}

func TestRunnerSpawnFailure(t *testing.T) {
	r := NewRunner(false)
	if err := r.Run(context.Background(), []string{"/definitely/not/a/binary"}); err == nil {
		t.Error("expected an error for a missing executable")
	}
}

func TestRunnerRunsSynchronously(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "marker")

	r := NewRunner(true)
	err := r.Run(context.Background(), []string{"sh", "-c", "touch " + marker})
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}

	// Run blocks until the child exits, so the marker exists already.
	if _, err := os.Stat(marker); err != nil {
		t.Errorf("expected marker file after Run returned: %v", err)
	}
}
