package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satchelhq/satchel/pkg/adapters/sqlite"
	"github.com/satchelhq/satchel/pkg/core"
)

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "satchel", "snapshot.db")
	store, err := sqlite.Open(path)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	// A fresh database loads empty.
	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Items)
	assert.Empty(t, snap.Containers)
	assert.Empty(t, snap.RootFolderID)

	created := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	item := core.Item{
		ID:        "it_1",
		Scheme:    core.SchemeCohort,
		CohortKey: "7",
		Subject:   "Algebra",
		Content:   "warm-up problems",
		Version:   1,
		CreatedAt: created, ModifiedAt: created, ViewedAt: created,
	}
	item.Refresh()

	want := core.Snapshot{
		Items:        []core.Item{item},
		Containers:   []core.Container{{ID: "c_1", Name: "Plans", RemoteID: "f_plans"}},
		RootFolderID: "f_root",
		RootLabel:    "Satchel",
	}
	require.NoError(t, store.Save(ctx, want))

	// Re-open to prove the state survives the handle.
	require.NoError(t, store.Close())
	store, err = sqlite.Open(path)
	require.NoError(t, err)

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.Items, got.Items)
	assert.Equal(t, want.Containers, got.Containers)
	assert.Equal(t, "f_root", got.RootFolderID)
	assert.Equal(t, "Satchel", got.RootLabel)
}

func TestSaveReplacesPreviousSnapshot(t *testing.T) {
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "snapshot.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	first := core.Item{ID: "it_old", Scheme: core.SchemeFreeform, Title: "Old", Version: 1}
	first.Refresh()
	require.NoError(t, store.Save(ctx, core.Snapshot{Items: []core.Item{first}}))

	second := core.Item{ID: "it_new", Scheme: core.SchemeFreeform, Title: "New", Version: 1}
	second.Refresh()
	require.NoError(t, store.Save(ctx, core.Snapshot{Items: []core.Item{second}}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "it_new", got.Items[0].ID)
}

func TestReset(t *testing.T) {
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "snapshot.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	item := core.Item{ID: "it_1", Scheme: core.SchemeFreeform, Title: "Note", Version: 1}
	item.Refresh()
	require.NoError(t, store.Save(ctx, core.Snapshot{Items: []core.Item{item}, RootFolderID: "f_root"}))

	require.NoError(t, store.Reset(ctx))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.Items)
	assert.Empty(t, got.RootFolderID)
}
