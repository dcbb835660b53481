package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type migration struct {
	version     int
	description string
	up          string
}

var migrations = []migration{
	{
		version:     1,
		description: "create schema_version table",
		up: `CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at DATETIME NOT NULL
		)`,
	},
	{
		version:     2,
		description: "create runs table",
		up: `CREATE TABLE runs (
			id TEXT PRIMARY KEY,
			started_at DATETIME NOT NULL,
			image TEXT NOT NULL,
			template TEXT NOT NULL,
			mode TEXT NOT NULL,
			strategy TEXT NOT NULL,
			channel TEXT NOT NULL,
			threshold REAL NOT NULL,
			prefilter INTEGER NOT NULL,
			parallel INTEGER NOT NULL,
			duration_ns INTEGER NOT NULL
		)`,
	},
	{
		version:     3,
		description: "create results table",
		up: `CREATE TABLE results (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			ord INTEGER NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			score REAL NOT NULL,
			PRIMARY KEY (run_id, ord)
		)`,
	},
	{
		version:     4,
		description: "add preview to runs",
		up:          `ALTER TABLE runs ADD COLUMN preview BLOB`,
	},
}

// Version returns the highest applied schema version.
func (db *DB) Version(ctx context.Context) (int, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) > 0 FROM sqlite_master WHERE type='table' AND name='schema_version'`,
	).Scan(&exists)
	if err != nil || !exists {
		return 0, err
	}
	var v int
	err = db.conn.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&v)
	return v, err
}

func (db *DB) migrate(ctx context.Context) error {
	current, err := db.Version(ctx)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		err := db.execTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.up); err != nil {
				return fmt.Errorf("migration %d failed: %w", m.version, err)
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO schema_version (version, description, applied_at) VALUES (?, ?, ?)`,
				m.version, m.description, time.Now())
			return err
		})
		if err != nil {
			return err
		}
		db.logger.Debug("store migration applied", "version", m.version, "description", m.description)
	}
	return nil
}
