package ports

import (
	"context"
	"iter"
)

// WatchOp describes the kind of file system change observed.
type WatchOp int

const (
	// OpWrite indicates a file was modified.
	OpWrite WatchOp = iota
	// OpCreate indicates a file was created.
	OpCreate
	// OpRemove indicates a file was removed.
	OpRemove
	// OpRename indicates a file was renamed.
	OpRename
)

// WatchEvent is a single observed file system change.
type WatchEvent struct {
	Path      string
	Operation WatchOp
}

// Watcher defines the interface for observing file system changes.
//
//go:generate mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type Watcher interface {
	// Start begins watching the given directories. Events are delivered
	// until the context is cancelled or Stop is called.
	Start(ctx context.Context, dirs []string) error

	// Events returns an iterator over observed events. The iterator ends
	// when the watcher stops.
	Events() iter.Seq[WatchEvent]

	// Stop stops the watcher and releases its resources.
	Stop() error
}
