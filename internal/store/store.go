// ABOUTME: Core SQLite store for the qreader server.
// ABOUTME: Handles database initialization, migrations, and connection management.

package store

import (
	"database/sql"
	"fmt"

	"github.com/2389/qreader/internal/logger"
	_ "github.com/mattn/go-sqlite3"
)

// Migration version constants
const (
	MigrationV1 = 1 // Initial schema with request_logs table
	MigrationV2 = 2 // Add performance indexes for aggregation and filtering queries
	MigrationV3 = 3 // Installed package catalogue
	MigrationV4 = 4 // Scan history
)

// CurrentSchemaVersion is the target version for the database schema
const CurrentSchemaVersion = MigrationV4

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pooling
	if dbPath == ":memory:" {
		// every connection would open its own empty database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}
	db.SetConnMaxLifetime(0) // Connections don't expire

	// Enable foreign keys and WAL mode
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection
func (s *Store) DB() *sql.DB {
	return s.db
}

// migrate runs all pending migrations
func (s *Store) migrate() error {
	// Create schema_migrations table if it doesn't exist
	if err := s.createMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	// Get current schema version
	currentVersion, err := s.getCurrentMigrationVersion()
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	logger.Debug("database schema", "version", currentVersion, "target", CurrentSchemaVersion)

	migrations := []struct {
		version int
		run     func() error
	}{
		{MigrationV1, s.migrateV1},
		{MigrationV2, s.migrateV2},
		{MigrationV3, s.migrateV3},
		{MigrationV4, s.migrateV4},
	}

	// Run migrations in order
	for _, m := range migrations {
		if currentVersion >= m.version {
			continue
		}
		if err := m.run(); err != nil {
			return fmt.Errorf("migration v%d failed: %w", m.version, err)
		}
	}

	return nil
}

// createMigrationsTable creates the schema_migrations tracking table
func (s *Store) createMigrationsTable() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			description TEXT
		)
	`)
	return err
}

// getCurrentMigrationVersion retrieves the current schema version
func (s *Store) getCurrentMigrationVersion() (int, error) {
	var version int
	err := s.db.QueryRow(`
		SELECT COALESCE(MAX(version), 0) FROM schema_migrations
	`).Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

// recordMigration records a completed migration
func (s *Store) recordMigration(version int, description string) error {
	_, err := s.db.Exec(`
		INSERT INTO schema_migrations (version, description)
		VALUES (?, ?)
	`, version, description)
	if err != nil {
		return err
	}
	logger.Info("applied migration", "version", version, "description", description)
	return nil
}

// migrateV1 creates the initial request_logs table and indexes
func (s *Store) migrateV1() error {
	schema := `
	CREATE TABLE IF NOT EXISTS request_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		route_group TEXT DEFAULT '',
		method TEXT NOT NULL,
		path TEXT NOT NULL,
		status_code INTEGER,
		duration_ms INTEGER,
		device_id TEXT,
		ip_address TEXT,
		user_agent TEXT,
		request_body TEXT,
		response_body TEXT,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_request_logs_timestamp ON request_logs(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_request_logs_path ON request_logs(path);
	CREATE INDEX IF NOT EXISTS idx_request_logs_status ON request_logs(status_code);
	CREATE INDEX IF NOT EXISTS idx_request_logs_group ON request_logs(route_group);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	return s.recordMigration(MigrationV1, "Create request_logs table and indexes")
}

// migrateV2 adds composite indexes for aggregation and filtering queries
func (s *Store) migrateV2() error {
	indexes := []string{
		// GetTopEndpoints groups by path
		"CREATE INDEX IF NOT EXISTS idx_request_logs_path_count ON request_logs(path, status_code)",
		// GetGroupRequestCount and GetGroupErrorRate filter by group and time range
		"CREATE INDEX IF NOT EXISTS idx_request_logs_group_timestamp ON request_logs(route_group, timestamp DESC)",
		"CREATE INDEX IF NOT EXISTS idx_request_logs_group_method_status ON request_logs(route_group, method, status_code)",
		"CREATE INDEX IF NOT EXISTS idx_request_logs_device_id ON request_logs(device_id) WHERE device_id != ''",
		"CREATE INDEX IF NOT EXISTS idx_request_logs_timestamp_status ON request_logs(timestamp DESC, status_code)",
	}

	for _, indexSQL := range indexes {
		if _, err := s.db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return s.recordMigration(MigrationV2, "Add composite indexes for aggregation and filtering queries")
}

// migrateV3 creates the installed package catalogue
func (s *Store) migrateV3() error {
	schema := `
	CREATE TABLE IF NOT EXISTS installed_packages (
		name TEXT PRIMARY KEY,
		brief TEXT NOT NULL DEFAULT '',
		version TEXT NOT NULL,
		digest TEXT NOT NULL,
		size_bytes INTEGER NOT NULL DEFAULT 0,
		decoder_count INTEGER NOT NULL DEFAULT 0,
		view_count INTEGER NOT NULL DEFAULT 0,
		installed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	return s.recordMigration(MigrationV3, "Create installed_packages table")
}

// migrateV4 creates the scan history
func (s *Store) migrateV4() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scans (
		id TEXT PRIMARY KEY,
		device_id TEXT NOT NULL DEFAULT '',
		payload BLOB NOT NULL,
		scheme TEXT NOT NULL DEFAULT '',
		decoder TEXT NOT NULL DEFAULT '',
		kind TEXT NOT NULL DEFAULT '',
		fields TEXT NOT NULL DEFAULT '{}',
		summary TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_scans_created ON scans(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_scans_device_created ON scans(device_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_scans_kind ON scans(kind);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	return s.recordMigration(MigrationV4, "Create scans table and indexes")
}
