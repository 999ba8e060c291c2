package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/carouselkit/internal/domain/ports"
)

func createOutline(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "outline.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func updateFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func nextEvent(t *testing.T, events <-chan ports.FileChangeEvent) ports.FileChangeEvent {
	t.Helper()
	select {
	case event, ok := <-events:
		require.True(t, ok, "event channel closed")
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
		return ports.FileChangeEvent{}
	}
}

func assertQuiet(t *testing.T, events <-chan ports.FileChangeEvent, wait time.Duration) {
	t.Helper()
	select {
	case event := <-events:
		t.Fatalf("unexpected %s event", event.Type)
	case <-time.After(wait):
	}
}

func TestPollingWatcher(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		w := NewPollingWatcher(0, 500*time.Millisecond, nil)
		assert.Equal(t, 500*time.Millisecond, w.interval)
		assert.Equal(t, 500*time.Millisecond, w.debounce)
		assert.NotNil(t, w.logger)
	})

	t.Run("reports a modification", func(t *testing.T) {
		w := NewPollingWatcher(20*time.Millisecond, 50*time.Millisecond, nil)
		defer func() { _ = w.Stop() }()

		path := createOutline(t, "# Cover")
		events, err := w.Watch(context.Background(), path)
		require.NoError(t, err)

		updateFile(t, path, "# Cover\n\n---\n\n# Tip")

		event := nextEvent(t, events)
		assert.Equal(t, path, event.Path)
		assert.Equal(t, ports.Modified, event.Type)
		assert.Len(t, event.Checksum, 64)
		assert.WithinDuration(t, time.Now(), event.Timestamp, 2*time.Second)
	})

	t.Run("coalesces a burst of writes", func(t *testing.T) {
		w := NewPollingWatcher(20*time.Millisecond, 150*time.Millisecond, nil)
		defer func() { _ = w.Stop() }()

		path := createOutline(t, "v")
		events, err := w.Watch(context.Background(), path)
		require.NoError(t, err)

		for _, content := range []string{"v1", "v12", "v123"} {
			updateFile(t, path, content)
			time.Sleep(30 * time.Millisecond)
		}

		first := nextEvent(t, events)
		assert.Equal(t, ports.Modified, first.Type)
		assertQuiet(t, events, 300*time.Millisecond)

		// the settled event describes the final content
		updateFile(t, path, "v")
		second := nextEvent(t, events)
		assert.NotEqual(t, first.Checksum, second.Checksum)
	})

	t.Run("ignores a rewrite with the same content", func(t *testing.T) {
		w := NewPollingWatcher(20*time.Millisecond, 40*time.Millisecond, nil)
		defer func() { _ = w.Stop() }()

		path := createOutline(t, "same")
		events, err := w.Watch(context.Background(), path)
		require.NoError(t, err)

		future := time.Now().Add(time.Minute)
		require.NoError(t, os.Chtimes(path, future, future))
		assertQuiet(t, events, 200*time.Millisecond)
	})

	t.Run("reports deletion and recreation", func(t *testing.T) {
		w := NewPollingWatcher(20*time.Millisecond, 40*time.Millisecond, nil)
		defer func() { _ = w.Stop() }()

		path := createOutline(t, "# Cover")
		events, err := w.Watch(context.Background(), path)
		require.NoError(t, err)

		require.NoError(t, os.Remove(path))
		assert.Equal(t, ports.Deleted, nextEvent(t, events).Type)

		updateFile(t, path, "# Back")
		assert.Equal(t, ports.Created, nextEvent(t, events).Type)
	})

	t.Run("missing file", func(t *testing.T) {
		w := NewPollingWatcher(20*time.Millisecond, 0, nil)
		defer func() { _ = w.Stop() }()

		_, err := w.Watch(context.Background(), filepath.Join(t.TempDir(), "nope.md"))
		assert.Error(t, err)
	})

	t.Run("stop closes the channel", func(t *testing.T) {
		w := NewPollingWatcher(20*time.Millisecond, 0, nil)
		path := createOutline(t, "# Cover")

		events, err := w.Watch(context.Background(), path)
		require.NoError(t, err)

		require.NoError(t, w.Stop())
		_, ok := <-events
		assert.False(t, ok)

		require.NoError(t, w.Stop())
		_, err = w.Watch(context.Background(), path)
		assert.EqualError(t, err, "watcher stopped")
	})
}

func TestChangeType_String(t *testing.T) {
	tests := []struct {
		change ports.ChangeType
		want   string
	}{
		{ports.Modified, "modified"},
		{ports.Created, "created"},
		{ports.Deleted, "deleted"},
		{ports.ChangeType(99), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.change.String())
	}
}
