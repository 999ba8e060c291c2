package ports

import (
	"context"
	"io"
)

// KeyValueStore is the string key-value persistence used by the library
type KeyValueStore interface {
	// Get returns the stored value and whether the key exists
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key
	Set(ctx context.Context, key, value string) error
}

// ArchiveSink receives finished export archives
type ArchiveSink interface {
	// Save writes the archive and returns its location
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}
