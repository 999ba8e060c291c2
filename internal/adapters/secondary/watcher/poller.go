package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fredcamaral/carouselkit/internal/domain/ports"
)

// PollingWatcher watches a file by polling its size, mtime and content hash.
// Changes are reported once the file has been quiet for the debounce
// window, so an editor saving in several writes yields a single event.
type PollingWatcher struct {
	interval time.Duration
	debounce time.Duration
	logger   ports.Logger

	events chan ports.FileChangeEvent
	stopCh chan struct{}
	wg     sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

// fileState is what the last poll saw; exists is false after a delete
type fileState struct {
	exists   bool
	size     int64
	modTime  time.Time
	checksum string
}

// NewPollingWatcher creates a watcher polling every interval
func NewPollingWatcher(interval, debounce time.Duration, logger ports.Logger) *PollingWatcher {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	if logger == nil {
		logger = ports.NopLogger{}
	}
	return &PollingWatcher{
		interval: interval,
		debounce: debounce,
		logger:   logger,
		events:   make(chan ports.FileChangeEvent, 8),
		stopCh:   make(chan struct{}),
	}
}

// Watch implements ports.FileWatcher. The file must exist when watching
// starts.
func (w *PollingWatcher) Watch(ctx context.Context, path string) (<-chan ports.FileChangeEvent, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil, errors.New("watcher stopped")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	initial, err := readState(absPath, fileState{})
	if err != nil {
		return nil, fmt.Errorf("initial scan: %w", err)
	}
	if !initial.exists {
		return nil, fmt.Errorf("initial scan: %s does not exist", absPath)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.poll(ctx, absPath, initial)
	}()

	return w.events, nil
}

// Stop ends polling and closes the event channel
func (w *PollingWatcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	close(w.stopCh)
	w.mu.Unlock()

	w.wg.Wait()
	close(w.events)
	return nil
}

func (w *PollingWatcher) poll(ctx context.Context, path string, last fileState) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// reported is the state the last event described
	reported := last
	var changedAt time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case now := <-ticker.C:
			current, err := readState(path, last)
			if err != nil {
				w.logger.Warn("watch poll failed", "path", path, "error", err)
				continue
			}
			if current != last {
				last = current
				changedAt = now
			}
			if changedAt.IsZero() || now.Sub(changedAt) < w.debounce {
				continue
			}
			changedAt = time.Time{}

			event, ok := describe(path, reported, last)
			if !ok {
				continue
			}
			reported = last

			select {
			case w.events <- event:
			case <-ctx.Done():
				return
			case <-w.stopCh:
				return
			}
		}
	}
}

// describe turns a state transition into an event; a touch that leaves the
// content unchanged is not reported
func describe(path string, from, to fileState) (ports.FileChangeEvent, bool) {
	event := ports.FileChangeEvent{Path: path, Checksum: to.checksum, Timestamp: time.Now()}
	switch {
	case from.exists && !to.exists:
		event.Type = ports.Deleted
	case !from.exists && to.exists:
		event.Type = ports.Created
	case to.exists && from.checksum != to.checksum:
		event.Type = ports.Modified
	default:
		return event, false
	}
	return event, true
}

// readState stats path and hashes it when size or mtime moved since prev
func readState(path string, prev fileState) (fileState, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fileState{}, nil
	}
	if err != nil {
		return fileState{}, fmt.Errorf("stat file: %w", err)
	}

	state := fileState{exists: true, size: info.Size(), modTime: info.ModTime()}
	if prev.exists && prev.size == state.size && prev.modTime.Equal(state.modTime) {
		state.checksum = prev.checksum
		return state, nil
	}

	data, err := os.ReadFile(path) // #nosec G304 - path is chosen by the operator
	if err != nil {
		return fileState{}, fmt.Errorf("reading file: %w", err)
	}
	sum := sha256.Sum256(data)
	state.checksum = hex.EncodeToString(sum[:])
	return state, nil
}

var _ ports.FileWatcher = (*PollingWatcher)(nil)
