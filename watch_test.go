package spindrift

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchTriggersCallback(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, []string{dir}, 20*time.Millisecond, func(context.Context) {
			calls.Add(1)
		})
	}()

	i := 0
	require.Eventually(t, func() bool {
		i++
		_ = os.WriteFile(filepath.Join(dir, fmt.Sprintf("f%d.yaml", i)), []byte("x"), 0o644)
		return calls.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatchMissingDir(t *testing.T) {
	err := Watch(t.Context(), []string{filepath.Join(t.TempDir(), "missing")}, 0, func(context.Context) {})
	var pathErr *PathError
	require.ErrorAs(t, err, &pathErr)
}

func TestIsWatchEvent(t *testing.T) {
	assert.True(t, isWatchEvent(fsnotify.Create))
	assert.True(t, isWatchEvent(fsnotify.Write))
	assert.True(t, isWatchEvent(fsnotify.Remove))
	assert.True(t, isWatchEvent(fsnotify.Rename))
	assert.False(t, isWatchEvent(fsnotify.Chmod))
}
