// Package schema owns the local database layout and its versioned migrations.
package schema

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const (
	TablePerfumes  = "perfumes"
	TableUsers     = "users"
	TableCartItems = "cart_items"
)

// migrations[i] upgrades the schema from version i to i+1.
var migrations = []string{
	`
	CREATE TABLE IF NOT EXISTS perfumes (
		id           INTEGER PRIMARY KEY,
		name         TEXT    NOT NULL,
		brand        TEXT    NOT NULL,
		price        INTEGER NOT NULL CHECK (price >= 0),
		description  TEXT    NOT NULL DEFAULT '',
		image_uri    TEXT,
		gender       TEXT    NOT NULL DEFAULT 'Unisex',
		category     TEXT    NOT NULL DEFAULT 'General',
		notes        TEXT    NOT NULL DEFAULT '',
		profile      TEXT    NOT NULL DEFAULT '',
		size         TEXT    NOT NULL DEFAULT '',
		stock        INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
		is_available INTEGER NOT NULL DEFAULT 1,
		updated_at   INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_perfumes_available ON perfumes (is_available);
	CREATE INDEX IF NOT EXISTS idx_perfumes_category ON perfumes (category);
	CREATE INDEX IF NOT EXISTS idx_perfumes_gender ON perfumes (gender);

	CREATE TABLE IF NOT EXISTS users (
		id                INTEGER PRIMARY KEY,
		email             TEXT    NOT NULL COLLATE NOCASE UNIQUE,
		password_hash     TEXT    NOT NULL DEFAULT '',
		first_name        TEXT    NOT NULL DEFAULT '',
		last_name         TEXT    NOT NULL DEFAULT '',
		phone             TEXT,
		address           TEXT,
		profile_image_uri TEXT,
		role              TEXT    NOT NULL DEFAULT 'cliente',
		updated_at        INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS cart_items (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    INTEGER NOT NULL,
		perfume_id INTEGER NOT NULL,
		quantity   INTEGER NOT NULL CHECK (quantity >= 1),
		added_at   INTEGER NOT NULL,
		UNIQUE (user_id, perfume_id)
	);
	CREATE INDEX IF NOT EXISTS idx_cart_items_user ON cart_items (user_id);
	`,
}

// Version is the schema version this build expects.
var Version = len(migrations)

// Migrate brings the database up to Version. A database written by a newer
// build is rejected instead of being modified.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	var current int
	if err := db.GetContext(ctx, &current, `PRAGMA user_version`); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if current > Version {
		return fmt.Errorf("schema version %d is newer than supported %d", current, Version)
	}

	for v := current; v < Version; v++ {
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", v+1, err)
		}
		if _, err := tx.ExecContext(ctx, migrations[v]); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", v+1, err)
		}
		// PRAGMA does not take bind parameters
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", v+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("bump schema version to %d: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", v+1, err)
		}
	}
	return nil
}
