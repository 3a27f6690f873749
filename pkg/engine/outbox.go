package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/satchelhq/satchel/pkg/core"
)

const maxIntentAttempts = 3

type intentKind int

const (
	intentSaveItem intentKind = iota
	intentDeleteItem
	intentRenameFolder
	intentDeleteFolder
	intentSaveSettings
)

func (k intentKind) String() string {
	switch k {
	case intentSaveItem:
		return "save-item"
	case intentDeleteItem:
		return "delete-item"
	case intentRenameFolder:
		return "rename-folder"
	case intentDeleteFolder:
		return "delete-folder"
	case intentSaveSettings:
		return "save-settings"
	default:
		return "unknown"
	}
}

// intent is one queued remote mutation. The item field is a snapshot
// taken at enqueue time so later local edits cannot race the worker.
type intent struct {
	id         string
	kind       intentKind
	item       core.Item
	folderID   string
	label      string
	settings   []byte
	attempts   int
	generation uint64
}

// outbox is a FIFO queue drained by a single worker goroutine. Single
// consumption keeps remote writes for an identity group strictly
// ordered, which the renumbering cascades rely on.
type outbox struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending []intent
	active  bool
	closed  bool
}

func newOutbox() *outbox {
	ob := &outbox{}
	ob.cond = sync.NewCond(&ob.mu)
	return ob
}

func (ob *outbox) push(in intent) {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	if ob.closed {
		return
	}
	ob.pending = append(ob.pending, in)
	ob.cond.Signal()
}

// next blocks until an intent is available or the outbox is closed.
func (ob *outbox) next() (intent, bool) {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	for len(ob.pending) == 0 && !ob.closed {
		ob.cond.Wait()
	}
	if len(ob.pending) == 0 {
		return intent{}, false
	}
	in := ob.pending[0]
	ob.pending = ob.pending[1:]
	ob.active = true
	return in, true
}

func (ob *outbox) done() {
	ob.mu.Lock()
	ob.active = false
	ob.mu.Unlock()
}

func (ob *outbox) idle() bool {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	return len(ob.pending) == 0 && !ob.active
}

func (ob *outbox) clear() {
	ob.mu.Lock()
	ob.pending = nil
	ob.mu.Unlock()
}

func (ob *outbox) close() {
	ob.mu.Lock()
	ob.closed = true
	ob.cond.Broadcast()
	ob.mu.Unlock()
}

// Flush blocks until every queued remote intent has been attempted, or
// the context expires.
func (e *Engine) Flush(ctx context.Context) error {
	for {
		if e.outbox.idle() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// enqueue stamps and queues an intent for the current session.
// Callers hold e.mu.
func (e *Engine) enqueueLocked(in intent) {
	in.id = "int_" + ulid.Make().String()
	in.generation = e.generation
	e.outbox.push(in)
}

// run is the outbox worker loop.
func (e *Engine) run(ctx context.Context) {
	defer e.wg.Done()
	for {
		in, ok := e.outbox.next()
		if !ok {
			return
		}
		e.process(ctx, in)
		e.outbox.done()
		if ctx.Err() != nil {
			return
		}
	}
}

func (e *Engine) process(ctx context.Context, in intent) {
	e.mu.Lock()
	stale := in.generation != e.generation
	e.mu.Unlock()
	if stale {
		e.logger.Debug("dropping stale intent", "intent", in.id, "kind", in.kind)
		return
	}

	err := e.execute(ctx, in)
	if err == nil {
		e.logger.Debug("intent applied", "intent", in.id, "kind", in.kind)
		return
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// The request may have landed remotely; retrying could
		// duplicate it. At most once per attempt.
		e.logger.Warn("intent timed out, not retrying", "intent", in.id, "kind", in.kind, "error", err)
	case errors.Is(err, core.ErrUnauthenticated):
		e.logger.Warn("intent dropped, not authenticated", "intent", in.id, "kind", in.kind)
	case in.attempts+1 < maxIntentAttempts:
		in.attempts++
		e.logger.Warn("intent failed, requeueing", "intent", in.id, "kind", in.kind, "attempt", in.attempts, "error", err)
		e.outbox.push(in)
	default:
		e.logger.Error("intent abandoned", "intent", in.id, "kind", in.kind, "error", err)
	}
}

func (e *Engine) execute(ctx context.Context, in intent) error {
	switch in.kind {
	case intentSaveItem:
		return e.saveItemRemote(ctx, in.item)
	case intentDeleteItem:
		return e.deleteItemRemote(ctx, in.item)
	case intentRenameFolder:
		return e.remote.RenameFolder(ctx, in.folderID, in.label)
	case intentDeleteFolder:
		return e.remote.DeleteFolder(ctx, in.folderID)
	case intentSaveSettings:
		return e.saveSettingsRemote(ctx, in.settings)
	default:
		return fmt.Errorf("unknown intent kind %d", in.kind)
	}
}

// saveItemRemote writes one item to the remote store: update in place
// when the blob already sits in the right folder, otherwise the old
// blob is deleted and a fresh one created under the new name. The
// remote store has no rename-with-content, so a rename is modeled as
// delete plus create.
func (e *Engine) saveItemRemote(ctx context.Context, it core.Item) error {
	folderID, err := e.resolveFolder(ctx, it)
	if err != nil {
		return err
	}
	data, err := encodeItem(it)
	if err != nil {
		return err
	}
	name := blobName(it)

	loc, err := e.locate(ctx, it)
	if errors.Is(err, core.ErrNotFound) {
		return e.createBlob(ctx, it, folderID, name, data)
	}
	if err != nil {
		return err
	}

	if loc.folderID == folderID && loc.name == name {
		if err := e.remote.UpdateBlobContent(ctx, loc.remoteID, data); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				e.forget(it.ID)
				return e.createBlob(ctx, it, folderID, name, data)
			}
			return err
		}
		return nil
	}

	if err := e.remote.DeleteBlob(ctx, loc.remoteID); err != nil && !errors.Is(err, core.ErrNotFound) {
		return err
	}
	e.forget(it.ID)
	return e.createBlob(ctx, it, folderID, name, data)
}

func (e *Engine) createBlob(ctx context.Context, it core.Item, folderID, name string, data []byte) error {
	remoteID, err := e.remote.CreateBlob(ctx, folderID, name, data, blobMIMEType)
	if err != nil {
		return err
	}
	e.remember(it.ID, location{remoteID: remoteID, name: name, folderID: folderID})
	return nil
}

func (e *Engine) deleteItemRemote(ctx context.Context, it core.Item) error {
	loc, err := e.locate(ctx, it)
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	e.forget(it.ID)
	if err := e.remote.DeleteBlob(ctx, loc.remoteID); err != nil && !errors.Is(err, core.ErrNotFound) {
		return err
	}
	return nil
}

func (e *Engine) saveSettingsRemote(ctx context.Context, data []byte) error {
	rootID, err := e.ensureRoot(ctx)
	if err != nil {
		return err
	}
	blobs, err := e.remote.ListBlobs(ctx, rootID)
	if err != nil {
		return err
	}
	for _, b := range blobs {
		if b.Name == SettingsBlobName {
			return e.remote.UpdateBlobContent(ctx, b.RemoteID, data)
		}
	}
	_, err = e.remote.CreateBlob(ctx, rootID, SettingsBlobName, data, blobMIMEType)
	return err
}

// resolveFolder returns the remote folder an item belongs in, creating
// the container's subfolder on demand.
func (e *Engine) resolveFolder(ctx context.Context, it core.Item) (string, error) {
	rootID, err := e.ensureRoot(ctx)
	if err != nil {
		return "", err
	}
	if it.ContainerID == "" {
		return rootID, nil
	}

	e.mu.Lock()
	c, ok := e.containers[it.ContainerID]
	e.mu.Unlock()
	if !ok {
		// Container vanished between enqueue and execution.
		return rootID, nil
	}
	if c.RemoteID != "" {
		return c.RemoteID, nil
	}

	folderID, err := e.remote.EnsureSubfolder(ctx, rootID, c.Name)
	if err != nil {
		return "", err
	}
	e.mu.Lock()
	if cur, ok := e.containers[c.ID]; ok {
		cur.RemoteID = folderID
		e.containers[cur.ID] = cur
	}
	e.mu.Unlock()
	return folderID, nil
}

func (e *Engine) ensureRoot(ctx context.Context) (string, error) {
	e.mu.Lock()
	rootID := e.rootFolderID
	label := e.rootLabel
	e.mu.Unlock()
	if rootID != "" {
		return rootID, nil
	}
	rootID, err := e.remote.EnsureRootFolder(ctx, label)
	if err != nil {
		return "", err
	}
	e.mu.Lock()
	e.rootFolderID = rootID
	e.mu.Unlock()
	return rootID, nil
}
