package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS cleanup_runs (
		id            TEXT PRIMARY KEY,
		seed          TEXT NOT NULL DEFAULT '0',
		started_at    TEXT NOT NULL,
		finished_at   TEXT NOT NULL,
		duration_ms   INTEGER NOT NULL CHECK(duration_ms > 0),
		items_cleared INTEGER NOT NULL DEFAULT 0 CHECK(items_cleared >= 0),
		reward_tier   INTEGER NOT NULL DEFAULT 0 CHECK(reward_tier >= 0),
		created_at    TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS reward_claims (
		id         TEXT PRIMARY KEY,
		run_id     TEXT NOT NULL REFERENCES cleanup_runs(id) ON DELETE CASCADE,
		amount     INTEGER NOT NULL CHECK(amount > 0),
		status     TEXT NOT NULL DEFAULT 'pending'
		           CHECK(status IN ('pending','submitted','failed')),
		error      TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	// Claim references arrived after the first schema.
	`ALTER TABLE reward_claims ADD COLUMN reference TEXT NOT NULL DEFAULT ''`,

	// Runs remember the cap they were played with and how they were produced.
	`ALTER TABLE cleanup_runs ADD COLUMN reward_cap INTEGER NOT NULL DEFAULT 10 CHECK(reward_cap >= 0)`,
	`ALTER TABLE cleanup_runs ADD COLUMN source TEXT NOT NULL DEFAULT 'play' CHECK(source IN ('play','simulate'))`,

	`CREATE INDEX IF NOT EXISTS idx_runs_started ON cleanup_runs(started_at)`,
	`CREATE INDEX IF NOT EXISTS idx_claims_run ON reward_claims(run_id)`,
	`CREATE INDEX IF NOT EXISTS idx_claims_status ON reward_claims(status)`,
}
