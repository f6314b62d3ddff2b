package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_FiresOnceForBurstOfWrites(t *testing.T) {
	dir := t.TempDir()

	var calls atomic.Int32
	w, err := New(dir, 150*time.Millisecond, func() { calls.Add(1) }, nil)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Start(ctx) }()

	path := filepath.Join(dir, "games.json")
	for range 3 {
		require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))
		time.Sleep(20 * time.Millisecond)
	}

	assert.Eventually(t, func() bool {
		return calls.Load() == 1
	}, 2*time.Second, 25*time.Millisecond)

	// No further callbacks without further writes.
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()

	var calls atomic.Int32
	w, err := New(dir, 50*time.Millisecond, func() { calls.Add(1) }, nil)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Start(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644))
	// site.yaml only takes effect at startup, so edits must not fire either.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site.yaml"), []byte("name: x"), 0o644))

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestWatcher_MissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), 0, func() {}, nil)
	assert.Error(t, err)
}
