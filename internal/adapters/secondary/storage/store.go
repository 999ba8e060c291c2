package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/fredcamaral/carouselkit/internal/domain/entities"
	"github.com/fredcamaral/carouselkit/internal/domain/ports"
)

// Store is a KeyValueStore that may hold resources
type Store interface {
	ports.KeyValueStore
	io.Closer
}

type nopCloser struct {
	ports.KeyValueStore
}

func (nopCloser) Close() error { return nil }

// New opens the backend selected by cfg
func New(ctx context.Context, cfg entities.StorageConfig, fsys ports.FileSystem, logger ports.Logger) (Store, error) {
	switch cfg.GetBackend() {
	case "file":
		return nopCloser{NewFileStore(cfg.GetPath(), fsys, logger)}, nil
	case "sqlite":
		return OpenSQLite(ctx, cfg.GetPath())
	case "memory":
		return nopCloser{NewMemoryStore()}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}
