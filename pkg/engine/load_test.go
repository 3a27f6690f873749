package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satchelhq/satchel/pkg/core"
)

func seedItem(t *testing.T, remote *fakeRemote, folderID string, it core.Item) string {
	t.Helper()
	it.Refresh()
	data, err := encodeItem(it)
	require.NoError(t, err)
	return remote.seedBlob(folderID, blobName(it), data)
}

func remoteItem(id, title, content string) core.Item {
	return core.Item{
		ID:         id,
		Scheme:     core.SchemeFreeform,
		Title:      title,
		Content:    content,
		Version:    1,
		CreatedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ModifiedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestLoadAdmitsRemoteCollection(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	rootID, err := remote.EnsureRootFolder(ctx, "Satchel")
	require.NoError(t, err)
	subID, err := remote.EnsureSubfolder(ctx, rootID, "Ideas")
	require.NoError(t, err)

	seedItem(t, remote, rootID, remoteItem("item-a", "Plan", "root note"))
	seedItem(t, remote, subID, remoteItem("item-b", "Spark", "nested note"))

	e := newTestEngine(t, remote)
	loaded, err := e.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, StateLoaded, e.SyncState())

	containers := e.Containers()
	require.Len(t, containers, 1)
	assert.Equal(t, "Ideas", containers[0].Name)

	nested, err := e.Item("item-b")
	require.NoError(t, err)
	assert.Equal(t, containers[0].ID, nested.ContainerID)
}

func TestLoadRunsOncePerSession(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	rootID, err := remote.EnsureRootFolder(ctx, "Satchel")
	require.NoError(t, err)
	seedItem(t, remote, rootID, remoteItem("item-a", "Plan", "x"))

	e := newTestEngine(t, remote)
	first, err := e.Load(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := e.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Equal(t, StateLoaded, e.SyncState())
}

func TestLoadFirstBlobWinsOnDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	rootID, err := remote.EnsureRootFolder(ctx, "Satchel")
	require.NoError(t, err)

	first := remoteItem("item-dup", "Plan", "kept")
	second := remoteItem("item-dup", "Plan Copy", "dropped")
	seedItem(t, remote, rootID, first)
	seedItem(t, remote, rootID, second)

	e := newTestEngine(t, remote)
	loaded, err := e.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "kept", loaded[0].Content)
}

func TestLoadSkipsReservedAndUnparseableBlobs(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	rootID, err := remote.EnsureRootFolder(ctx, "Satchel")
	require.NoError(t, err)

	settings, err := encodeSettings(core.SchemeCohort)
	require.NoError(t, err)
	remote.seedBlob(rootID, SettingsBlobName, settings)
	remote.seedBlob(rootID, "junk.json", []byte("{not json"))
	remote.seedBlob(rootID, "stranger.json", []byte(`{"hello":"world"}`))
	seedItem(t, remote, rootID, remoteItem("item-a", "Plan", "x"))

	e := newTestEngine(t, remote)
	loaded, err := e.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "item-a", loaded[0].ID)
	assert.Equal(t, core.SchemeCohort, e.SchemePreference())
}

func TestLoadAbsorbsRemoteOutage(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	rootID, err := remote.EnsureRootFolder(ctx, "Satchel")
	require.NoError(t, err)
	seedItem(t, remote, rootID, remoteItem("item-a", "Plan", "x"))

	e := newTestEngine(t, remote)
	remote.failFor(1)
	loaded, err := e.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
	assert.Equal(t, StateNotStarted, e.SyncState())

	// The latch was reset, so a retry does the real load.
	loaded, err = e.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestLoadSurfacesAuthenticationFailure(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.failErr = core.ErrUnauthenticated
	remote.failFor(1)

	e := newTestEngine(t, remote)
	_, err := e.Load(ctx)
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
	assert.Equal(t, StateNotStarted, e.SyncState())
}

func TestSignOutResetsLatch(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	rootID, err := remote.EnsureRootFolder(ctx, "Satchel")
	require.NoError(t, err)
	seedItem(t, remote, rootID, remoteItem("item-a", "Plan", "x"))

	e := newTestEngine(t, remote)
	_, err = e.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, StateLoaded, e.SyncState())

	e.SignOut()
	assert.Equal(t, StateNotStarted, e.SyncState())

	loaded, err := e.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestLoadMergeNewerKeepsFresherLocalCopy(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	rootID, err := remote.EnsureRootFolder(ctx, "Satchel")
	require.NoError(t, err)

	e := newTestEngine(t, remote)

	// Create locally while the remote is down so nothing syncs.
	remote.failFor(maxIntentAttempts)
	local, err := e.CreateItem(ctx, core.Item{Scheme: core.SchemeFreeform, Title: "Plan", Content: "local edit"})
	require.NoError(t, err)
	require.NoError(t, e.Flush(ctx))

	stale := local
	stale.Content = "stale remote copy"
	stale.ModifiedAt = local.ModifiedAt.Add(-time.Hour)
	seedItem(t, remote, rootID, stale)
	seedItem(t, remote, rootID, remoteItem("item-b", "Other", "remote only"))

	loaded, err := e.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	got, err := e.Item(local.ID)
	require.NoError(t, err)
	assert.Equal(t, "local edit", got.Content)

	_, err = e.Item("item-b")
	assert.NoError(t, err)
}

func TestLoadMergeReplaceDropsLocalOnlyItems(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	rootID, err := remote.EnsureRootFolder(ctx, "Satchel")
	require.NoError(t, err)

	e := newTestEngine(t, remote, WithMergePolicy(MergeReplace))

	remote.failFor(maxIntentAttempts)
	local, err := e.CreateItem(ctx, core.Item{Scheme: core.SchemeFreeform, Title: "Plan", Content: "local only"})
	require.NoError(t, err)
	require.NoError(t, e.Flush(ctx))

	seedItem(t, remote, rootID, remoteItem("item-b", "Other", "remote"))

	loaded, err := e.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	_, err = e.Item(local.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = e.Item("item-b")
	assert.NoError(t, err)
}
