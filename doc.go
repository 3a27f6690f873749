// Package satchel is the Composition Root for the Satchel library.
//
// It connects the core domain (identity, naming, version lineage) with
// the infrastructure adapters (remote blob store, local snapshot)
// using the Hexagonal Architecture pattern.
//
// Philosophy:
//
// Satchel treats a folder-oriented remote blob store as the durable
// home of a structured note collection. The remote service knows
// nothing about record identity; identity, versioning, and grouping
// live entirely in the blob payloads and the naming convention, and
// the engine reconstructs them on every load.
//
// Features:
//
//   - **Local-first writes**: Mutations commit locally and propagate
//     to the remote store in the background.
//   - **Three organizing schemes**: Freeform, cohort, and roster
//     identities, convertible in bulk.
//   - **Version lineage**: Contiguous version numbering per identity
//     group, with automatic renumbering on deletes.
//   - **Pluggable remote**: Any backend implementing core.RemoteStore.
//   - **Snapshot persistence**: Optional SQLite-backed local state.
//
// Usage:
//
//	// Assemble an engine with functional options
//	eng, err := satchel.New(
//		satchel.WithStaticToken(token),
//		satchel.WithSnapshotPath("satchel.db"),
//		satchel.WithLogger(logger),
//	)
//
//	// Pull the remote collection and create an item
//	items, err := eng.Load(ctx)
//	it, err := eng.CreateItem(ctx, core.Item{Scheme: core.SchemeFreeform, Title: "Plan"})
package satchel
