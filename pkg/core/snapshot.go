package core

import "context"

// Snapshot is the orchestrator state that survives a process restart.
// Everything else (load latch, lookup cache) is transient.
type Snapshot struct {
	Items        []Item
	Containers   []Container
	RootFolderID string
	RootLabel    string
}

// SnapshotStore persists the authoritative local collections across
// restarts. Implementations must make Save atomic with respect to Load.
type SnapshotStore interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error

	// Reset discards the persisted snapshot entirely.
	Reset(ctx context.Context) error

	Close() error
}
