package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations are embedded so the binary carries its own schema;
// append-only, never edit an applied version
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_integrations",
		SQL: `
			CREATE TABLE IF NOT EXISTS integrations (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				owner_chat_id INTEGER NOT NULL,
				webhook_token TEXT NOT NULL UNIQUE,
				notify_on_problem INTEGER NOT NULL DEFAULT 1,
				location_webhook_url TEXT NOT NULL DEFAULT '',
				enable_location_tracking INTEGER NOT NULL DEFAULT 0,
				tasks_completed INTEGER NOT NULL DEFAULT 0,
				avg_response_minutes REAL NOT NULL DEFAULT 0,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
		`,
	},
	{
		Version: 2,
		Name:    "create_worker_tasks",
		SQL: `
			CREATE TABLE IF NOT EXISTS worker_tasks (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				integration_id INTEGER NOT NULL REFERENCES integrations(id),
				worker_chat_id INTEGER NOT NULL,
				external_ref TEXT NOT NULL DEFAULT '',
				title TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				problem_description TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL DEFAULT 'sent',
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				started_at TIMESTAMP,
				completed_at TIMESTAMP,
				photos TEXT NOT NULL DEFAULT '[]',
				comments TEXT NOT NULL DEFAULT '[]',
				chat_message_id INTEGER NOT NULL DEFAULT 0,
				tracking TEXT
			)
		`,
	},
	{
		Version: 3,
		Name:    "index_worker_tasks_active_lookup",
		SQL: `
			CREATE INDEX IF NOT EXISTS idx_worker_tasks_chat_status
				ON worker_tasks(worker_chat_id, status, created_at DESC)
		`,
	},
}

// RunMigrations applies all pending migrations
func RunMigrations(db *sql.DB) error {
	if err := initMigrationsTable(db); err != nil {
		return err
	}

	applied, err := appliedMigrations(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return err
		}
	}

	return nil
}

func initMigrationsTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func appliedMigrations(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT version FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	return applied, nil
}

func applyMigration(db *sql.DB, m Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.Exec(m.SQL); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to execute migration %d: %w", m.Version, err)
	}
	if _, err := tx.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)", m.Version, m.Name); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
	}

	log.Printf("Applied migration %d: %s", m.Version, m.Name)
	return nil
}
