package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fredcamaral/carouselkit/internal/domain/ports"
)

// OutlineReloader applies a changed outline source. It returns an error
// when the source no longer parses; the previous outline stays active.
type OutlineReloader func(source []byte) error

// LiveReloadService regenerates the carousel whenever the outline file it
// watches changes on disk
type LiveReloadService struct {
	watcher      ports.FileWatcher
	fs           ports.FileSystem
	reload       OutlineReloader
	orchestrator *Orchestrator
	doc          *Document
	publisher    ports.EventPublisher
	logger       ports.Logger

	mu          sync.Mutex
	watching    bool
	watchCancel context.CancelFunc
	path        string
	done        chan struct{}
}

// NewLiveReloadService creates a new live reload service
func NewLiveReloadService(
	watcher ports.FileWatcher,
	fs ports.FileSystem,
	reload OutlineReloader,
	orchestrator *Orchestrator,
	publisher ports.EventPublisher,
	logger ports.Logger,
) *LiveReloadService {
	if logger == nil {
		logger = ports.NopLogger{}
	}
	return &LiveReloadService{
		watcher:      watcher,
		fs:           fs,
		reload:       reload,
		orchestrator: orchestrator,
		doc:          orchestrator.doc,
		publisher:    publisher,
		logger:       logger,
	}
}

// Start watches path until ctx ends or Stop is called
func (s *LiveReloadService) Start(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watching {
		return errors.New("already watching")
	}

	watchCtx, cancel := context.WithCancel(ctx)
	events, err := s.watcher.Watch(watchCtx, path)
	if err != nil {
		cancel()
		return fmt.Errorf("starting watcher: %w", err)
	}

	s.watching = true
	s.watchCancel = cancel
	s.path = path
	s.done = make(chan struct{})

	go s.handleEvents(watchCtx, events, s.done)
	return nil
}

// Stop stops watching and waits for an in-flight reload to finish
func (s *LiveReloadService) Stop() error {
	s.mu.Lock()
	if !s.watching {
		s.mu.Unlock()
		return nil
	}
	s.watching = false
	s.watchCancel()
	done := s.done
	s.mu.Unlock()

	<-done
	return s.watcher.Stop()
}

// IsWatching returns whether the service is currently watching
func (s *LiveReloadService) IsWatching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watching
}

func (s *LiveReloadService) handleEvents(ctx context.Context, events <-chan ports.FileChangeEvent, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}

			s.logger.Info("outline changed",
				"path", event.Path,
				"type", event.Type.String())

			if event.Type == ports.Deleted {
				s.logger.Warn("outline deleted, keeping the current slides", "path", event.Path)
				continue
			}

			slides, err := s.reloadOutline(ctx)
			if err != nil {
				s.logger.Error("failed to reload outline",
					"error", err,
					"path", event.Path)
				s.publisher.Publish(ports.UpdateEvent{
					Type:      ports.EventTypeError,
					Timestamp: time.Now(),
					Data:      map[string]interface{}{"message": err.Error(), "file": event.Path},
				})
				continue
			}

			s.publisher.Publish(ports.UpdateEvent{
				Type:      ports.EventTypeOutlineReload,
				Timestamp: event.Timestamp,
				Data: map[string]interface{}{
					"file":     event.Path,
					"checksum": event.Checksum,
					"slides":   slides,
				},
			})
		}
	}
}

// reloadOutline re-reads the file, applies it and regenerates the slides
func (s *LiveReloadService) reloadOutline(ctx context.Context) (int, error) {
	s.mu.Lock()
	path := s.path
	s.mu.Unlock()

	source, err := s.fs.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading outline: %w", err)
	}
	if err := s.reload(source); err != nil {
		return 0, fmt.Errorf("parsing outline: %w", err)
	}
	if err := s.orchestrator.Generate(ctx, s.doc.Config(), ""); err != nil {
		return 0, err
	}

	count := s.doc.Len()
	s.logger.Info("outline reloaded", "path", path, "slides", count)
	return count, nil
}
