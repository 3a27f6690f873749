package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/satchelhq/satchel/pkg/core"
)

// CreateItem validates a draft, assigns identity and version, and
// commits it locally. The remote write happens in the background;
// remote failures never undo a local create.
func (e *Engine) CreateItem(ctx context.Context, draft core.Item) (core.Item, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	it := draft
	it.ID = uuid.NewString()
	if it.Scheme != core.SchemeFreeform {
		it.ContainerID = ""
	}
	if it.ContainerID != "" {
		if _, ok := e.containers[it.ContainerID]; !ok {
			return core.Item{}, fmt.Errorf("container %s: %w", it.ContainerID, core.ErrNotFound)
		}
	}
	if it.Scheme == core.SchemeFreeform {
		it.Title = e.uniqueTitleLocked(it.Title)
	}
	if err := core.ValidateFields(it); err != nil {
		return core.Item{}, err
	}

	now := e.now()
	it.CreatedAt, it.ModifiedAt, it.ViewedAt = now, now, now
	core.ApplyVersion(&it, core.NextAvailableVersion(it, e.itemsLocked()))

	e.items[it.ID] = it
	e.persistLocked(ctx)
	e.enqueueLocked(intent{kind: intentSaveItem, item: it})
	e.logger.Info("item created", "id", it.ID, "name", it.InternalName)
	return it, nil
}

// UpdateItem applies field and content changes to an existing item.
// Scheme changes go through Convert, never through here. If the edit
// moves the item into a different identity group its version is
// reassigned there and the group it left is renumbered, so both groups
// stay contiguous.
func (e *Engine) UpdateItem(ctx context.Context, updated core.Item) (core.Item, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur, ok := e.items[updated.ID]
	if !ok {
		return core.Item{}, fmt.Errorf("item %s: %w", updated.ID, core.ErrNotFound)
	}
	if updated.Scheme != cur.Scheme {
		return core.Item{}, fmt.Errorf("scheme change on update: %w", core.ErrInvalidScheme)
	}
	if updated.ContainerID != "" && updated.ContainerID != cur.ContainerID {
		if _, ok := e.containers[updated.ContainerID]; !ok {
			return core.Item{}, fmt.Errorf("container %s: %w", updated.ContainerID, core.ErrNotFound)
		}
	}

	prev := cur
	cur.Title = updated.Title
	cur.CohortKey = updated.CohortKey
	cur.Subject = updated.Subject
	cur.Period = updated.Period
	cur.Member = updated.Member
	cur.Content = updated.Content
	if cur.Scheme == core.SchemeFreeform {
		cur.ContainerID = updated.ContainerID
	}
	if err := core.ValidateFields(cur); err != nil {
		return core.Item{}, err
	}
	cur.ModifiedAt = e.now()
	cur.Refresh()

	var cascade []core.Item
	if core.BaseIdentifier(cur) != core.BaseIdentifier(prev) {
		others := e.itemsWithoutLocked(cur.ID)
		core.ApplyVersion(&cur, core.NextAvailableVersion(cur, others))
		out, changed, err := core.RenumberAfterRemoval(prev, others)
		if err != nil {
			return core.Item{}, err
		}
		for _, o := range out {
			e.items[o.ID] = o
		}
		cascade = changed
	}

	e.items[cur.ID] = cur
	e.persistLocked(ctx)
	e.enqueueLocked(intent{kind: intentSaveItem, item: cur})
	for _, c := range cascade {
		e.enqueueLocked(intent{kind: intentSaveItem, item: c})
	}
	e.logger.Info("item updated", "id", cur.ID, "name", cur.InternalName)
	return cur, nil
}

// DeleteItem removes an item and closes the version gap it leaves in
// its identity group. If the group's versions are inconsistent the
// delete is aborted and local state left untouched.
func (e *Engine) DeleteItem(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	it, ok := e.items[id]
	if !ok {
		return fmt.Errorf("item %s: %w", id, core.ErrNotFound)
	}

	remaining := e.itemsWithoutLocked(id)
	out, changed, err := core.RenumberAfterRemoval(it, remaining)
	if err != nil {
		return err
	}

	delete(e.items, id)
	for _, o := range out {
		e.items[o.ID] = o
	}
	e.persistLocked(ctx)
	e.enqueueLocked(intent{kind: intentDeleteItem, item: it})
	for _, c := range changed {
		e.enqueueLocked(intent{kind: intentSaveItem, item: c})
	}
	e.logger.Info("item deleted", "id", id, "name", it.InternalName, "renumbered", len(changed))
	return nil
}

// CreateVersion derives a new version of an existing item, copying its
// content and taking the lowest free version number in its group.
func (e *Engine) CreateVersion(ctx context.Context, sourceID string) (core.Item, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	src, ok := e.items[sourceID]
	if !ok {
		return core.Item{}, fmt.Errorf("item %s: %w", sourceID, core.ErrNotFound)
	}
	it := core.NewVersionOf(src, e.itemsLocked(), e.now())
	e.items[it.ID] = it
	e.persistLocked(ctx)
	e.enqueueLocked(intent{kind: intentSaveItem, item: it})
	e.logger.Info("version created", "id", it.ID, "name", it.InternalName, "version", it.Version)
	return it, nil
}

// MarkViewed stamps an item's viewed time. Purely local.
func (e *Engine) MarkViewed(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	it, ok := e.items[id]
	if !ok {
		return fmt.Errorf("item %s: %w", id, core.ErrNotFound)
	}
	it.ViewedAt = e.now()
	e.items[id] = it
	e.persistLocked(ctx)
	return nil
}

// CreateContainer adds a container. The remote subfolder is created
// lazily when the first item is written into it.
func (e *Engine) CreateContainer(ctx context.Context, name, parentID string) (core.Container, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if name == "" {
		return core.Container{}, fmt.Errorf("container name must not be empty")
	}
	if parentID != "" {
		if _, ok := e.containers[parentID]; !ok {
			return core.Container{}, fmt.Errorf("container %s: %w", parentID, core.ErrNotFound)
		}
	}
	c := core.Container{ID: uuid.NewString(), Name: name, ParentID: parentID}
	e.containers[c.ID] = c
	e.persistLocked(ctx)
	e.logger.Info("container created", "id", c.ID, "name", name)
	return c, nil
}

// RenameContainer renames a container and its remote subfolder.
func (e *Engine) RenameContainer(ctx context.Context, id, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.containers[id]
	if !ok {
		return fmt.Errorf("container %s: %w", id, core.ErrNotFound)
	}
	if name == "" {
		return fmt.Errorf("container name must not be empty")
	}
	c.Name = name
	e.containers[id] = c
	e.persistLocked(ctx)
	if c.RemoteID != "" {
		e.enqueueLocked(intent{kind: intentRenameFolder, folderID: c.RemoteID, label: name})
	}
	return nil
}

// MoveContainer re-parents a container, refusing moves that would make
// it its own ancestor.
func (e *Engine) MoveContainer(ctx context.Context, id, parentID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.containers[id]
	if !ok {
		return fmt.Errorf("container %s: %w", id, core.ErrNotFound)
	}
	if parentID != "" {
		if _, ok := e.containers[parentID]; !ok {
			return fmt.Errorf("container %s: %w", parentID, core.ErrNotFound)
		}
		all := make([]core.Container, 0, len(e.containers))
		for _, cc := range e.containers {
			all = append(all, cc)
		}
		if core.WouldCycle(all, id, parentID) {
			return core.ErrContainerCycle
		}
	}
	c.ParentID = parentID
	e.containers[id] = c
	e.persistLocked(ctx)
	return nil
}

// DeleteContainer removes a container. Its items move to the root,
// its child containers re-parent to its parent, and the remote
// subfolder is deleted after the moved items have been re-saved.
func (e *Engine) DeleteContainer(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.containers[id]
	if !ok {
		return fmt.Errorf("container %s: %w", id, core.ErrNotFound)
	}
	delete(e.containers, id)
	for cid, cc := range e.containers {
		if cc.ParentID == id {
			cc.ParentID = c.ParentID
			e.containers[cid] = cc
		}
	}
	var moved []core.Item
	for iid, it := range e.items {
		if it.ContainerID == id {
			it.ContainerID = ""
			e.items[iid] = it
			moved = append(moved, it)
		}
	}
	e.persistLocked(ctx)
	for _, it := range moved {
		e.enqueueLocked(intent{kind: intentSaveItem, item: it})
	}
	if c.RemoteID != "" {
		e.enqueueLocked(intent{kind: intentDeleteFolder, folderID: c.RemoteID})
	}
	e.logger.Info("container deleted", "id", id, "moved", len(moved))
	return nil
}

// Revisions lists the remote revision history of an item. This is a
// synchronous remote read; errors are returned, not absorbed.
func (e *Engine) Revisions(ctx context.Context, id string) ([]core.Revision, error) {
	it, err := e.Item(id)
	if err != nil {
		return nil, err
	}
	loc, err := e.locate(ctx, it)
	if err != nil {
		return nil, err
	}
	return e.remote.ListRevisions(ctx, loc.remoteID)
}

// RevisionContent fetches the content of one historical revision.
func (e *Engine) RevisionContent(ctx context.Context, id, revisionID string) (string, error) {
	it, err := e.Item(id)
	if err != nil {
		return "", err
	}
	loc, err := e.locate(ctx, it)
	if err != nil {
		return "", err
	}
	data, err := e.remote.ReadRevision(ctx, loc.remoteID, revisionID)
	if err != nil {
		return "", err
	}
	rev, err := decodeItem(data)
	if err != nil {
		return "", err
	}
	return rev.Content, nil
}

// uniqueTitleLocked disambiguates a freeform title against existing
// freeform items by appending " (2)", " (3)" and so on. Callers hold
// e.mu.
func (e *Engine) uniqueTitleLocked(title string) string {
	taken := make(map[string]bool)
	for _, it := range e.items {
		if it.Scheme == core.SchemeFreeform {
			taken[it.Title] = true
		}
	}
	if !taken[title] {
		return title
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", title, n)
		if !taken[candidate] {
			return candidate
		}
	}
}

// itemsWithoutLocked snapshots the collection minus one id. Callers
// hold e.mu.
func (e *Engine) itemsWithoutLocked(id string) []core.Item {
	out := make([]core.Item, 0, len(e.items))
	for _, it := range e.items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}
