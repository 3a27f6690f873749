package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/satchelhq/satchel/pkg/core"
)

// location records where an item's blob lives remotely. The remote
// store has no identity index, so positions discovered by scanning are
// cached here and invalidated whenever a write moves the blob.
type location struct {
	remoteID string
	name     string
	folderID string
}

// scanned pairs a decoded item with where its blob was found,
// preserving the enumeration position for first-wins arbitration.
type scanned struct {
	item core.Item
	loc  location
}

func (e *Engine) remember(itemID string, loc location) {
	e.mu.Lock()
	e.located[itemID] = loc
	e.mu.Unlock()
}

func (e *Engine) forget(itemID string) {
	e.mu.Lock()
	delete(e.located, itemID)
	e.mu.Unlock()
}

// locate finds the remote blob holding the given item, by cached
// position first, then by scanning the item's expected folder, the
// root folder, and finally every subfolder. Identity lives inside the
// blob payload, so a scan means reading candidate blobs.
func (e *Engine) locate(ctx context.Context, it core.Item) (location, error) {
	e.mu.Lock()
	loc, ok := e.located[it.ID]
	var expected string
	if c, found := e.containers[it.ContainerID]; found {
		expected = c.RemoteID
	}
	e.mu.Unlock()
	if ok {
		return loc, nil
	}

	rootID, err := e.ensureRoot(ctx)
	if err != nil {
		return location{}, err
	}

	candidates := []string{}
	if expected != "" && expected != rootID {
		candidates = append(candidates, expected)
	}
	candidates = append(candidates, rootID)

	folders, err := e.remote.ListFolders(ctx, rootID)
	if err != nil {
		return location{}, fmt.Errorf("listing folders: %w", err)
	}
	for _, f := range folders {
		if f.RemoteID != expected {
			candidates = append(candidates, f.RemoteID)
		}
	}

	for _, folderID := range candidates {
		results, err := e.scanFolder(ctx, folderID)
		if err != nil {
			return location{}, err
		}
		for _, r := range results {
			if r.item.ID == it.ID {
				e.remember(it.ID, r.loc)
				return r.loc, nil
			}
		}
	}
	return location{}, core.ErrNotFound
}

// scanFolder lists a folder and decodes every item blob in it, reading
// at most scanWidth blobs concurrently. Results keep the listing
// order. Blobs that are not valid items are skipped with a debug log;
// the reserved settings blob is never treated as an item.
func (e *Engine) scanFolder(ctx context.Context, folderID string) ([]scanned, error) {
	blobs, err := e.remote.ListBlobs(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("listing blobs in %s: %w", folderID, err)
	}

	results := make([]*scanned, len(blobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.scanWidth)
	for i, b := range blobs {
		if b.Name == SettingsBlobName {
			continue
		}
		i, b := i, b
		g.Go(func() error {
			data, err := e.remote.ReadBlob(gctx, b.RemoteID)
			if err != nil {
				return fmt.Errorf("reading blob %s: %w", b.Name, err)
			}
			it, err := decodeItem(data)
			if err != nil {
				e.logger.Debug("skipping unparseable blob", "name", b.Name, "error", err)
				return nil
			}
			results[i] = &scanned{
				item: it,
				loc:  location{remoteID: b.RemoteID, name: b.Name, folderID: folderID},
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]scanned, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}
