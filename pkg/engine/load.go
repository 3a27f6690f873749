package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/satchelhq/satchel/pkg/core"
)

// loadResult is everything a bulk fetch discovered remotely.
type loadResult struct {
	rootID     string
	items      []core.Item
	locations  map[string]location
	containers []core.Container
	schemePref core.Scheme
}

// Load performs the one-time bulk fetch of the remote collection and
// merges it into local state. Only the first call in a session does
// work: while a load is running or once one has completed, further
// calls return immediately with no items. A failed load resets the
// latch so the next call can retry.
//
// Authentication failures are returned to the caller, who must
// re-establish credentials. Remote availability failures are logged
// and absorbed; local state is untouched either way.
func (e *Engine) Load(ctx context.Context) ([]core.Item, error) {
	e.mu.Lock()
	if e.syncState != StateNotStarted {
		state := e.syncState
		e.mu.Unlock()
		e.logger.Debug("load skipped", "state", state)
		return nil, nil
	}
	e.syncState = StateLoading
	gen := e.generation
	e.mu.Unlock()

	res, err := e.fetchAll(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.generation != gen {
		// Signed out while the fetch was in flight.
		return nil, nil
	}
	if err != nil {
		e.syncState = StateNotStarted
		if errors.Is(err, core.ErrUnauthenticated) {
			return nil, err
		}
		e.logger.Warn("bulk load failed", "error", err)
		return nil, nil
	}

	e.rootFolderID = res.rootID
	for id, loc := range res.locations {
		e.located[id] = loc
	}
	if res.schemePref != "" {
		e.schemePref = res.schemePref
	}
	e.mergeLocked(res)
	e.syncState = StateLoaded
	e.persistLocked(ctx)
	e.logger.Info("bulk load complete", "items", len(res.items), "containers", len(res.containers))
	return res.items, nil
}

// fetchAll enumerates the root folder and each first-level subfolder,
// decoding every item blob. When two blobs carry the same embedded id
// the first one encountered wins and the rest are dropped.
func (e *Engine) fetchAll(ctx context.Context) (loadResult, error) {
	e.mu.Lock()
	label := e.rootLabel
	knownContainers := make(map[string]core.Container, len(e.containers))
	for _, c := range e.containers {
		knownContainers[c.Name] = c
	}
	e.mu.Unlock()

	rootID, err := e.remote.EnsureRootFolder(ctx, label)
	if err != nil {
		return loadResult{}, fmt.Errorf("ensuring root folder: %w", err)
	}

	res := loadResult{rootID: rootID, locations: make(map[string]location)}

	if pref, err := e.fetchSettings(ctx, rootID); err == nil {
		res.schemePref = pref
	}

	folders, err := e.remote.ListFolders(ctx, rootID)
	if err != nil {
		return loadResult{}, fmt.Errorf("listing subfolders: %w", err)
	}

	// Folder label to local container id, reusing known containers so
	// reloads do not mint new identities.
	containerIDs := make(map[string]string, len(folders))
	for _, f := range folders {
		c, ok := knownContainers[f.Label]
		if !ok {
			c = core.Container{ID: uuid.NewString(), Name: f.Label}
		}
		c.RemoteID = f.RemoteID
		res.containers = append(res.containers, c)
		containerIDs[f.RemoteID] = c.ID
	}

	scanFolders := append([]string{rootID}, folderIDs(folders)...)
	seen := make(map[string]bool)
	for _, folderID := range scanFolders {
		results, err := e.scanFolder(ctx, folderID)
		if err != nil {
			return loadResult{}, err
		}
		for _, r := range results {
			if seen[r.item.ID] {
				e.logger.Warn("dropping duplicate item blob", "id", r.item.ID, "name", r.loc.name)
				continue
			}
			seen[r.item.ID] = true
			it := r.item
			it.ContainerID = containerIDs[folderID]
			res.items = append(res.items, it)
			res.locations[it.ID] = r.loc
		}
	}
	return res, nil
}

func folderIDs(folders []core.FolderInfo) []string {
	ids := make([]string, len(folders))
	for i, f := range folders {
		ids[i] = f.RemoteID
	}
	return ids
}

func (e *Engine) fetchSettings(ctx context.Context, rootID string) (core.Scheme, error) {
	blobs, err := e.remote.ListBlobs(ctx, rootID)
	if err != nil {
		return "", err
	}
	for _, b := range blobs {
		if b.Name != SettingsBlobName {
			continue
		}
		data, err := e.remote.ReadBlob(ctx, b.RemoteID)
		if err != nil {
			return "", err
		}
		return decodeSettings(data)
	}
	return "", core.ErrNotFound
}

// mergeLocked reconciles fetched state with local state under the
// configured policy. Callers hold e.mu.
func (e *Engine) mergeLocked(res loadResult) {
	switch e.mergePolicy {
	case MergeReplace:
		e.items = make(map[string]core.Item, len(res.items))
		for _, it := range res.items {
			e.items[it.ID] = it
		}
		e.containers = make(map[string]core.Container, len(res.containers))
		for _, c := range res.containers {
			e.containers[c.ID] = c
		}
	default: // MergeNewer
		for _, it := range res.items {
			cur, ok := e.items[it.ID]
			if !ok || it.ModifiedAt.After(cur.ModifiedAt) {
				e.items[it.ID] = it
			}
		}
		for _, c := range res.containers {
			e.containers[c.ID] = c
		}
	}
}
