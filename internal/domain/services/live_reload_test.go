package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/carouselkit/internal/domain/entities"
	"github.com/fredcamaral/carouselkit/internal/domain/ports"
)

type MockFileWatcher struct {
	mock.Mock
}

func (m *MockFileWatcher) Watch(ctx context.Context, path string) (<-chan ports.FileChangeEvent, error) {
	args := m.Called(ctx, path)
	if ch := args.Get(0); ch != nil {
		return ch.(<-chan ports.FileChangeEvent), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFileWatcher) Stop() error {
	args := m.Called()
	return args.Error(0)
}

// reloadRecorder is an OutlineReloader that keeps what it was given
type reloadRecorder struct {
	mu      sync.Mutex
	sources []string
	err     error
	doc     *Document
}

func (r *reloadRecorder) reload(source []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sources = append(r.sources, string(source))
	cfg := r.doc.Config()
	cfg.Topic = "reloaded"
	return r.doc.SetConfig(cfg)
}

func (r *reloadRecorder) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sources...)
}

type liveReloadEnv struct {
	service   *LiveReloadService
	watcher   *MockFileWatcher
	events    chan ports.FileChangeEvent
	gen       *MockContentGenerator
	doc       *Document
	publisher *recordingPublisher
	reloader  *reloadRecorder
	path      string
}

func newLiveReloadEnv(t *testing.T) *liveReloadEnv {
	t.Helper()

	path := filepath.Join(t.TempDir(), "outline.md")
	require.NoError(t, os.WriteFile(path, []byte("# Cover\n"), 0o600))

	publisher := &recordingPublisher{}
	doc := NewDocument(generationConfig("sleep"), publisher)
	gen := &MockContentGenerator{}
	events := make(chan ports.FileChangeEvent, 4)

	watcher := &MockFileWatcher{}
	watcher.On("Watch", mock.Anything, path).Return((<-chan ports.FileChangeEvent)(events), nil)
	watcher.On("Stop").Return(nil)

	reloader := &reloadRecorder{doc: doc}
	service := NewLiveReloadService(watcher, ports.NewRealFileSystem(), reloader.reload,
		NewOrchestrator(doc, gen, nil), publisher, nil)

	return &liveReloadEnv{
		service:   service,
		watcher:   watcher,
		events:    events,
		gen:       gen,
		doc:       doc,
		publisher: publisher,
		reloader:  reloader,
		path:      path,
	}
}

func (e *liveReloadEnv) hasEvent(eventType string) func() bool {
	return func() bool {
		for _, got := range e.publisher.types() {
			if got == eventType {
				return true
			}
		}
		return false
	}
}

func TestLiveReloadService_Modified(t *testing.T) {
	env := newLiveReloadEnv(t)
	env.gen.On("Generate", mock.Anything, mock.MatchedBy(func(req ports.GenerateRequest) bool {
		return req.Topic == "reloaded" && req.Count == 3
	})).Return([]entities.Slide{
		{Title: "Cover"},
		{Title: "Tip", Content: "Body"},
		{Title: "End", CTA: "Follow"},
	}, nil)

	require.NoError(t, env.service.Start(context.Background(), env.path))
	assert.True(t, env.service.IsWatching())

	require.NoError(t, os.WriteFile(env.path, []byte("# New cover\n"), 0o600))
	env.events <- ports.FileChangeEvent{Path: env.path, Type: ports.Modified, Checksum: "abc", Timestamp: time.Now()}

	assert.Eventually(t, env.hasEvent(ports.EventTypeOutlineReload), time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"# New cover\n"}, env.reloader.calls())
	assert.Equal(t, 3, env.doc.Len())
	assert.Equal(t, "reloaded", env.doc.Config().Topic)

	require.NoError(t, env.service.Stop())
	assert.False(t, env.service.IsWatching())
	env.watcher.AssertCalled(t, "Stop")
	env.gen.AssertExpectations(t)
}

func TestLiveReloadService_ParseErrorKeepsSlides(t *testing.T) {
	env := newLiveReloadEnv(t)
	env.reloader.err = errors.New("bad front matter")

	require.NoError(t, env.service.Start(context.Background(), env.path))
	env.events <- ports.FileChangeEvent{Path: env.path, Type: ports.Modified, Timestamp: time.Now()}

	assert.Eventually(t, env.hasEvent(ports.EventTypeError), time.Second, 10*time.Millisecond)
	assert.False(t, env.hasEvent(ports.EventTypeOutlineReload)())
	env.gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)

	require.NoError(t, env.service.Stop())
}

func TestLiveReloadService_DeletedIsIgnored(t *testing.T) {
	env := newLiveReloadEnv(t)

	require.NoError(t, env.service.Start(context.Background(), env.path))
	env.events <- ports.FileChangeEvent{Path: env.path, Type: ports.Deleted, Timestamp: time.Now()}
	close(env.events)

	// the handler exits once the channel closes; Stop waits for it
	require.NoError(t, env.service.Stop())
	assert.Empty(t, env.reloader.calls())
	assert.Empty(t, env.publisher.types())
}

func TestLiveReloadService_StartErrors(t *testing.T) {
	t.Run("already watching", func(t *testing.T) {
		env := newLiveReloadEnv(t)
		require.NoError(t, env.service.Start(context.Background(), env.path))
		defer func() { _ = env.service.Stop() }()

		assert.EqualError(t, env.service.Start(context.Background(), env.path), "already watching")
	})

	t.Run("watcher fails", func(t *testing.T) {
		watcher := &MockFileWatcher{}
		watcher.On("Watch", mock.Anything, "missing.md").Return(nil, errors.New("no such file"))

		doc := NewDocument(generationConfig("sleep"), nil)
		service := NewLiveReloadService(watcher, ports.NewRealFileSystem(), func([]byte) error { return nil },
			NewOrchestrator(doc, &MockContentGenerator{}, nil), &recordingPublisher{}, nil)

		err := service.Start(context.Background(), "missing.md")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "starting watcher")
		assert.False(t, service.IsWatching())
		assert.NoError(t, service.Stop())
	})
}
