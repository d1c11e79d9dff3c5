// Package sqlite owns the embedded database that backs the settings store.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

const defaultPath = "./hugowriter.db"

// Config locates the SQLite database file.
type Config struct {
	Path string
}

// NewConfig builds a Config from the HUGOWRITER_DB_PATH environment variable,
// falling back to ./hugowriter.db.
func NewConfig() *Config {
	path := os.Getenv("HUGOWRITER_DB_PATH")
	if path == "" {
		path = defaultPath
	}
	return &Config{Path: path}
}

// Open connects to the SQLite database, applies the connection pragmas, and
// runs any pending migrations. The caller owns the returned handle.
func Open(cfg *Config) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",   // Write-Ahead Logging for better concurrency
		"PRAGMA synchronous=NORMAL", // Balance between safety and performance
		"PRAGMA busy_timeout=5000",  // Wait up to 5 seconds if database is locked
	}

	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	if err := RunMigrations(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return conn, nil
}
