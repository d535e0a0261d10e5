package integration

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/just1ngray/jfswatch/internal/command"
	"github.com/just1ngray/jfswatch/internal/explore"
	"github.com/just1ngray/jfswatch/internal/watcher"
)

func readLog(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

func waitForLines(t *testing.T, path string, n int) []string {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if lines := readLog(t, path); len(lines) >= n {
			return lines
		}
		time.Sleep(25 * time.Millisecond)
	}
	return readLog(t, path)
}

func TestWatchLifecycle(t *testing.T) {
	tmp := t.TempDir()
	logFile := filepath.Join(tmp, "out.log")
	require.NoError(t, os.MkdirAll(filepath.Join(tmp, "src"), 0755))

	exact := filepath.Join(tmp, "Cargo.toml")
	require.NoError(t, os.WriteFile(exact, []byte("[package]"), 0644))

	g, err := explore.NewGlob(filepath.Join(tmp, "src", "**", "*.rs"), nil)
	require.NoError(t, err)

	tmpl := command.NewTemplate([]string{
		"sh", "-c", "echo '$diff|$path|$mtime' >> " + logFile,
	})
	w, err := watcher.New(
		[]explore.Explorer{explore.NewExact(exact, nil), g},
		tmpl,
		command.NewRunner(false),
		40*time.Millisecond,
		40*time.Millisecond,
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Baseline window: nothing may fire for pre-existing files.
	time.Sleep(200 * time.Millisecond)
	require.Empty(t, readLog(t, logFile))

	// A file directly in src matches src/**/*.rs: `**` spans zero dirs.
	created := filepath.Join(tmp, "src", "lib.rs")
	require.NoError(t, os.WriteFile(created, []byte("pub fn f() {}"), 0644))

	lines := waitForLines(t, logFile, 1)
	require.Len(t, lines, 1)
	fields := strings.Split(lines[0], "|")
	require.Len(t, fields, 3)
	assert.Equal(t, "new", fields[0])
	assert.Equal(t, created, fields[1])
	_, err = time.Parse(command.MTimeFormat, fields[2])
	assert.NoError(t, err, "mtime must render in the documented format")

	// The exact path is touched.
	bump := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(exact, bump, bump))

	lines = waitForLines(t, logFile, 2)
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "modified|"+exact+"|"))

	// The glob file disappears; $mtime renders empty for deletions.
	require.NoError(t, os.Remove(created))

	lines = waitForLines(t, logFile, 3)
	require.Len(t, lines, 3)
	assert.Equal(t, "deleted|"+created+"|", lines[2])

	health := w.Health()
	assert.Equal(t, "up", health.Status)
	assert.Equal(t, 1, health.WatchedPaths)
	assert.WithinDuration(t, time.Now(), health.LastPoll, time.Second)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not shut down")
	}
}
