package watcher

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestMatchesOnlyWatchedFiles(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "hooks.txt")
	w, err := New([]string{watched}, 0, func() {}, discardLogger())
	require.NoError(t, err)

	assert.True(t, w.matches(fsnotify.Event{Name: watched, Op: fsnotify.Write}))
	assert.True(t, w.matches(fsnotify.Event{Name: watched, Op: fsnotify.Rename}))
	assert.False(t, w.matches(fsnotify.Event{Name: watched, Op: fsnotify.Chmod}))
	assert.False(t, w.matches(fsnotify.Event{Name: filepath.Join(dir, "other.txt"), Op: fsnotify.Write}))
}

func TestRunDebouncesChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hooks.txt")
	require.NoError(t, os.WriteFile(path, []byte("https://one\n"), 0o644))

	var calls atomic.Int32
	w, err := New([]string{path}, 50*time.Millisecond, func() { calls.Add(1) }, discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher a moment to register the directory.
	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("https://two\n"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644))

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 20*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.EqualValues(t, 1, calls.Load())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
