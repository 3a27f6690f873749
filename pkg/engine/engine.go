// Package engine is the synchronization orchestrator. It owns the
// authoritative local item and container collections, applies local
// mutations synchronously, and propagates them to the remote store
// through a background outbox, so the user's view of their own data is
// never blocked by remote availability.
package engine

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/satchelhq/satchel/pkg/core"
)

// SyncState is the load-lifecycle latch preventing duplicate or
// concurrent bulk loads.
type SyncState int

const (
	StateNotStarted SyncState = iota
	StateLoading
	StateLoaded
)

func (s SyncState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	default:
		return "not-started"
	}
}

// MergePolicy fixes how a bulk load reconciles remote items with local
// ones. It is a per-deployment configuration choice, not a behavioral
// ambiguity.
type MergePolicy string

const (
	// MergeReplace treats the remote set as authoritative: local
	// collections are replaced outright.
	MergeReplace MergePolicy = "replace"

	// MergeNewer keeps, per id, whichever copy has the later
	// modifiedAt, inserting remote-only ids as new local items.
	MergeNewer MergePolicy = "newer"
)

// Engine orchestrates local-first mutations against the remote store.
type Engine struct {
	remote   core.RemoteStore
	snapshot core.SnapshotStore
	logger   *slog.Logger
	now      func() time.Time

	rootLabel   string
	mergePolicy MergePolicy
	scanWidth   int

	mu           sync.Mutex
	items        map[string]core.Item
	containers   map[string]core.Container
	syncState    SyncState
	rootFolderID string
	schemePref   core.Scheme
	generation   uint64
	located      map[string]location

	outbox *outbox
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an Engine over a remote store. When a snapshot store is
// configured the persisted local state is loaded before the engine
// accepts operations, and the background outbox worker is started.
func New(remote core.RemoteStore, opts ...Option) (*Engine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	e := &Engine{
		remote:      remote,
		snapshot:    o.snapshot,
		logger:      o.logger,
		now:         o.now,
		rootLabel:   o.rootLabel,
		mergePolicy: o.mergePolicy,
		scanWidth:   o.scanWidth,
		items:       make(map[string]core.Item),
		containers:  make(map[string]core.Container),
		located:     make(map[string]location),
		outbox:      newOutbox(),
	}

	if e.snapshot != nil {
		snap, err := e.snapshot.Load(context.Background())
		if err != nil {
			return nil, err
		}
		for _, it := range snap.Items {
			e.items[it.ID] = it
		}
		for _, c := range snap.Containers {
			e.containers[c.ID] = c
		}
		e.rootFolderID = snap.RootFolderID
		if snap.RootLabel != "" {
			e.rootLabel = snap.RootLabel
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.wg.Add(1)
	go e.run(ctx)

	return e, nil
}

// Close stops the outbox worker and releases the snapshot store.
// Pending remote intents are abandoned; call Flush first to drain them.
func (e *Engine) Close() error {
	e.cancel()
	e.outbox.close()
	e.wg.Wait()
	if e.snapshot != nil {
		return e.snapshot.Close()
	}
	return nil
}

// SyncState returns the current load-lifecycle state.
func (e *Engine) SyncState() SyncState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.syncState
}

// SchemePreference returns the last persisted organizing-scheme
// preference, or the zero value when none is known.
func (e *Engine) SchemePreference() core.Scheme {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.schemePref
}

// Item returns a single item by id.
func (e *Engine) Item(id string) (core.Item, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	it, ok := e.items[id]
	if !ok {
		return core.Item{}, core.ErrNotFound
	}
	return it, nil
}

// Items returns all local items sorted by display name, then id.
func (e *Engine) Items() []core.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	return sortItems(e.itemsLocked())
}

// List returns the items whose display name matches the given glob
// pattern. An empty pattern matches everything.
func (e *Engine) List(pattern string) ([]core.Item, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	all := sortItems(e.itemsLocked())
	if pattern == "" {
		return all, nil
	}
	var matched []core.Item
	for _, it := range all {
		ok, err := doublestar.Match(pattern, it.DisplayName)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, it)
		}
	}
	return matched, nil
}

// Containers returns all local containers sorted by name.
func (e *Engine) Containers() []core.Container {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]core.Container, 0, len(e.containers))
	for _, c := range e.containers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Reset discards all local items, containers, and persisted snapshot
// state. The remote collection is untouched; a later Load rebuilds the
// local view from it.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	e.items = make(map[string]core.Item)
	e.containers = make(map[string]core.Container)
	e.located = make(map[string]location)
	e.rootFolderID = ""
	e.syncState = StateNotStarted
	e.outbox.clear()
	if e.snapshot != nil {
		if err := e.snapshot.Reset(ctx); err != nil {
			return err
		}
	}
	e.logger.Info("local state reset")
	return nil
}

// SignOut resets the load latch and discards session-scoped state.
// In-flight loads and queued remote intents from the old session are
// dropped; local items stay, they are the user's data.
func (e *Engine) SignOut() {
	e.mu.Lock()
	e.generation++
	e.syncState = StateNotStarted
	e.located = make(map[string]location)
	e.mu.Unlock()
	e.outbox.clear()
	e.logger.Info("signed out, sync state reset")
}

// itemsLocked snapshots the item collection. Callers hold e.mu.
func (e *Engine) itemsLocked() []core.Item {
	out := make([]core.Item, 0, len(e.items))
	for _, it := range e.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortItems(items []core.Item) []core.Item {
	sort.Slice(items, func(i, j int) bool {
		if items[i].DisplayName != items[j].DisplayName {
			return items[i].DisplayName < items[j].DisplayName
		}
		return items[i].ID < items[j].ID
	})
	return items
}

// persistLocked saves the snapshot. Persistence failures are logged,
// not surfaced: the in-memory state is already committed. Callers hold
// e.mu.
func (e *Engine) persistLocked(ctx context.Context) {
	if e.snapshot == nil {
		return
	}
	snap := core.Snapshot{
		Items:        e.itemsLocked(),
		RootFolderID: e.rootFolderID,
		RootLabel:    e.rootLabel,
	}
	for _, c := range e.containers {
		snap.Containers = append(snap.Containers, c)
	}
	sort.Slice(snap.Containers, func(i, j int) bool { return snap.Containers[i].ID < snap.Containers[j].ID })
	if err := e.snapshot.Save(ctx, snap); err != nil {
		e.logger.Warn("failed to persist snapshot", "error", err)
	}
}
