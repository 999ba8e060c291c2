package ports

import (
	"context"
	"time"
)

// FileWatcher reports changes to a single file
type FileWatcher interface {
	// Watch emits an event each time path settles after a change. The
	// channel is closed by Stop.
	Watch(ctx context.Context, path string) (<-chan FileChangeEvent, error)
	Stop() error
}

// FileChangeEvent describes one settled change
type FileChangeEvent struct {
	Path      string
	Type      ChangeType
	Checksum  string
	Timestamp time.Time
}

// ChangeType is the kind of change observed
type ChangeType int

const (
	Modified ChangeType = iota
	Created
	Deleted
)

func (c ChangeType) String() string {
	switch c {
	case Modified:
		return "modified"
	case Created:
		return "created"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}
