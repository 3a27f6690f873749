// Package sqlite persists the engine's local snapshot (items, containers,
// root folder binding) in a SQLite database, so local-authoritative state
// survives process restarts.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/satchelhq/satchel/pkg/core"
)

// Store implements core.SnapshotStore on a single SQLite file. Records
// are stored as JSON payloads keyed by id; the store never interprets
// item fields beyond the key.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS items (
	id      TEXT PRIMARY KEY,
	payload BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS containers (
	id      TEXT PRIMARY KEY,
	payload BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Open opens or creates the snapshot database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize snapshot schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Load reads the persisted snapshot. A fresh database yields an empty
// snapshot, not an error.
func (s *Store) Load(ctx context.Context) (core.Snapshot, error) {
	var snap core.Snapshot

	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM items ORDER BY id`)
	if err != nil {
		return snap, err
	}
	defer rows.Close()
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return snap, err
		}
		var it core.Item
		if err := json.Unmarshal(payload, &it); err != nil {
			return snap, fmt.Errorf("corrupt item payload: %w", err)
		}
		snap.Items = append(snap.Items, it)
	}
	if err := rows.Err(); err != nil {
		return snap, err
	}

	crows, err := s.db.QueryContext(ctx, `SELECT payload FROM containers ORDER BY id`)
	if err != nil {
		return snap, err
	}
	defer crows.Close()
	for crows.Next() {
		var payload []byte
		if err := crows.Scan(&payload); err != nil {
			return snap, err
		}
		var c core.Container
		if err := json.Unmarshal(payload, &c); err != nil {
			return snap, fmt.Errorf("corrupt container payload: %w", err)
		}
		snap.Containers = append(snap.Containers, c)
	}
	if err := crows.Err(); err != nil {
		return snap, err
	}

	snap.RootFolderID, err = s.metaValue(ctx, "root_folder_id")
	if err != nil {
		return snap, err
	}
	snap.RootLabel, err = s.metaValue(ctx, "root_label")
	if err != nil {
		return snap, err
	}
	return snap, nil
}

func (s *Store) metaValue(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// Save replaces the persisted snapshot in one transaction.
func (s *Store) Save(ctx context.Context, snap core.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return err
	}
	for _, it := range snap.Items {
		payload, err := json.Marshal(it)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO items (id, payload) VALUES (?, ?)`, it.ID, payload); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM containers`); err != nil {
		return err
	}
	for _, c := range snap.Containers {
		payload, err := json.Marshal(c)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO containers (id, payload) VALUES (?, ?)`, c.ID, payload); err != nil {
			return err
		}
	}

	for key, value := range map[string]string{
		"root_folder_id": snap.RootFolderID,
		"root_label":     snap.RootLabel,
	} {
		if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Reset discards the snapshot entirely.
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, table := range []string{"items", "containers", "meta"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ core.SnapshotStore = (*Store)(nil)
