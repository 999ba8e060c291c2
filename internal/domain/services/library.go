package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/fredcamaral/carouselkit/internal/domain/entities"
	"github.com/fredcamaral/carouselkit/internal/domain/ports"
)

// LibraryKey is the store key holding the saved carousel list
const LibraryKey = "carouselkit_library"

// Library keeps saved carousel snapshots as one JSON array in a key-value
// store, newest first. Unreadable data is treated as an empty library.
type Library struct {
	mu     sync.Mutex
	store  ports.KeyValueStore
	clock  ports.Clock
	logger ports.Logger
}

// NewLibrary creates a library over store
func NewLibrary(store ports.KeyValueStore, clock ports.Clock, logger ports.Logger) *Library {
	if clock == nil {
		clock = ports.RealClock{}
	}
	if logger == nil {
		logger = ports.NopLogger{}
	}
	return &Library{store: store, clock: clock, logger: logger}
}

// List returns every saved carousel, newest first
func (l *Library) List(ctx context.Context) ([]entities.SavedCarousel, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx)
}

// Get returns one saved carousel
func (l *Library) Get(ctx context.Context, id string) (entities.SavedCarousel, error) {
	items, err := l.List(ctx)
	if err != nil {
		return entities.SavedCarousel{}, err
	}
	for _, item := range items {
		if item.ID == id {
			return item, nil
		}
	}
	return entities.SavedCarousel{}, fmt.Errorf("%w: %s", entities.ErrCarouselNotFound, id)
}

// Save snapshots state into a new library entry
func (l *Library) Save(ctx context.Context, state DocumentState) (entities.SavedCarousel, error) {
	entry := entities.SavedCarousel{
		ID:        uuid.NewString(),
		Timestamp: l.clock.Now().UnixMilli(),
		Topic:     state.Config.Topic,
		Slides:    entities.CloneSlides(state.Slides),
		Styles:    cloneStyles(state.Styles),
		Username:  state.Username,
		Config:    state.Config,
	}
	if err := entry.Validate(); err != nil {
		return entities.SavedCarousel{}, fmt.Errorf("cannot save carousel: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	items, err := l.load(ctx)
	if err != nil {
		return entities.SavedCarousel{}, err
	}
	items = append([]entities.SavedCarousel{entry}, items...)
	if err := l.persist(ctx, items); err != nil {
		return entities.SavedCarousel{}, err
	}

	l.logger.Info("carousel saved", "id", entry.ID, "topic", entry.Topic, "slides", len(entry.Slides))
	return entry, nil
}

// Delete removes an entry
func (l *Library) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	items, err := l.load(ctx)
	if err != nil {
		return err
	}

	kept := items[:0]
	found := false
	for _, item := range items {
		if item.ID == id {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	if !found {
		return fmt.Errorf("%w: %s", entities.ErrCarouselNotFound, id)
	}

	l.logger.Info("carousel deleted", "id", id)
	return l.persist(ctx, kept)
}

// Restore loads a saved carousel into doc
func (l *Library) Restore(ctx context.Context, id string, doc *Document) (entities.SavedCarousel, error) {
	entry, err := l.Get(ctx, id)
	if err != nil {
		return entities.SavedCarousel{}, err
	}
	doc.Restore(StateFromSaved(entry))
	return entry, nil
}

// StateFromSaved converts a library entry into a document state
func StateFromSaved(entry entities.SavedCarousel) DocumentState {
	return DocumentState{
		Config:   entry.Config,
		Username: entry.Username,
		Slides:   entities.CloneSlides(entry.Slides),
		Styles:   cloneStyles(entry.Styles),
	}
}

func (l *Library) load(ctx context.Context) ([]entities.SavedCarousel, error) {
	raw, ok, err := l.store.Get(ctx, LibraryKey)
	if err != nil {
		return nil, fmt.Errorf("reading library: %w", err)
	}
	if !ok || raw == "" {
		return []entities.SavedCarousel{}, nil
	}

	var items []entities.SavedCarousel
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		l.logger.Warn("saved library is unreadable, starting empty", "error", err)
		return []entities.SavedCarousel{}, nil
	}
	return items, nil
}

func (l *Library) persist(ctx context.Context, items []entities.SavedCarousel) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding library: %w", err)
	}
	if err := l.store.Set(ctx, LibraryKey, string(data)); err != nil {
		return fmt.Errorf("writing library: %w", err)
	}
	return nil
}
