package watch

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

// Test Plan for Watcher:
// - A file write triggers exactly one rescan after the debounce window
// - A burst of writes coalesces into one trigger
// - Cancellation stops Start
// - skipPath filters bookkeeping directories

func TestWatcher_TriggersOnChange(t *testing.T) {
	root := t.TempDir()

	var triggers atomic.Int32
	w := New(root, func(context.Context) error {
		triggers.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	// Give the watcher time to install its watches.
	time.Sleep(200 * time.Millisecond)

	// A burst of writes should coalesce into a single trigger.
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(root, "main.py"), []byte("x = 1\n"), 0644))
		time.Sleep(50 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return triggers.Load() >= 1
	}, 5*time.Second, 50*time.Millisecond, "expected a rescan trigger")

	// No second trigger from the same burst.
	time.Sleep(2 * debounceWindow)
	assert.Equal(t, int32(1), triggers.Load())

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop on cancellation")
	}
}

func TestSkipPath(t *testing.T) {
	t.Parallel()

	assert.True(t, skipPath("/project/.git"))
	assert.True(t, skipPath("/project/.atlas"))
	assert.True(t, skipPath("/project/node_modules"))
	assert.True(t, skipPath("/project/records.json.tmp"))
	assert.False(t, skipPath("/project/src"))
}
