// Package sqlite provides a local store backend implementing the same
// repository interfaces as the remote record store. Used for development
// and tests.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations creates the schema.
func (db *DB) RunMigrations() error {
	migration := `
-- Projects table
CREATE TABLE IF NOT EXISTS projects (
    record_id TEXT PRIMARY KEY,
    project_id INTEGER NOT NULL UNIQUE,
    name TEXT NOT NULL,
    description TEXT,
    url TEXT,
    image_url TEXT,
    team_name TEXT,
    team_code TEXT,
    site_id TEXT,
    uv INTEGER NOT NULL DEFAULT 0,
    enabled INTEGER NOT NULL DEFAULT 1
);

-- Investors table
CREATE TABLE IF NOT EXISTS investors (
    record_id TEXT PRIMARY KEY,
    investor_id INTEGER NOT NULL UNIQUE,
    username TEXT NOT NULL UNIQUE,
    password TEXT NOT NULL,
    name TEXT NOT NULL,
    title TEXT,
    avatar_url TEXT,
    quota INTEGER NOT NULL,
    enabled INTEGER NOT NULL DEFAULT 1
);

-- Investments table
CREATE TABLE IF NOT EXISTS investments (
    record_id TEXT PRIMARY KEY,
    key TEXT NOT NULL UNIQUE,
    account TEXT NOT NULL,
    project_id INTEGER NOT NULL,
    amount INTEGER NOT NULL,
    invested_at INTEGER NOT NULL,
    investor_name TEXT,
    project_name TEXT
);
CREATE INDEX IF NOT EXISTS idx_investments_account ON investments(account);
CREATE INDEX IF NOT EXISTS idx_investments_project ON investments(project_id);

-- Config table (stage singleton lives here)
CREATE TABLE IF NOT EXISTS config (
    config_key TEXT PRIMARY KEY,
    config_value TEXT NOT NULL
);
`
	if _, err := db.Exec(migration); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
