package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// connPragmas are set by the driver on every pooled connection. Foreign
// keys and the busy timeout are per-connection in SQLite.
const connPragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// OpenDB opens the run store at path and brings its schema up to date.
// ":memory:" opens a private in-memory database, used by tests.
func OpenDB(path string) (*sql.DB, error) {
	memory := path == ":memory:"
	if !memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+connPragmas)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	if memory {
		db.SetMaxOpenConns(1)
	}

	// WAL is a property of the database file, so once is enough.
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}
