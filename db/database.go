package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"HomeStatus/config"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

var DB *sql.DB

// ConnectDB opens the SQLite database file, creating its parent directory if
// needed. The pool is pinned to a single connection so every read and write is
// fully serialized through it.
func ConnectDB(cfg *config.Config) error {
	dir := filepath.Dir(cfg.DBPath)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)",
		cfg.DBPath,
	)

	var err error
	DB, err = sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(1)
	DB.SetMaxIdleConns(1)
	DB.SetConnMaxLifetime(0)

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to the database.")
	return nil
}

// InitDB initializes the database schema, creating tables if they don't exist,
// and applies the additive column migrations for databases created before the
// music fields existed.
func InitDB() error {
	return InitSchema(DB)
}

// InitSchema applies the schema to the given connection. Split out from InitDB
// so tests can run it against their own in-memory databases.
func InitSchema(conn *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS device_status (
			device_id TEXT PRIMARY KEY,
			device_name TEXT NOT NULL,
			online INTEGER NOT NULL,
			last_seen INTEGER NOT NULL,
			idle_seconds INTEGER,
			manual_offline INTEGER NOT NULL DEFAULT 0,
			music_playing INTEGER NOT NULL DEFAULT 0,
			music_title TEXT,
			music_artist TEXT,
			music_source TEXT,
			music_updated_at INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS status_control (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			global_manual_offline INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS schedule_items (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			time TEXT NOT NULL,
			note TEXT,
			location TEXT,
			tag TEXT,
			sort_order INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS visitor_visits (
			visitor_id TEXT NOT NULL,
			visit_date TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			PRIMARY KEY (visitor_id, visit_date)
		);`,
		`CREATE TABLE IF NOT EXISTS blog_posts (
			slug TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			date TEXT NOT NULL,
			tag TEXT,
			excerpt TEXT NOT NULL,
			content_json TEXT NOT NULL,
			sort_order INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
	}

	for _, stmt := range statements {
		if _, err := conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	// Older databases predate the manual override and music columns. ALTER
	// fails when the column already exists, which is fine.
	alters := []string{
		`ALTER TABLE device_status ADD COLUMN manual_offline INTEGER NOT NULL DEFAULT 0`,
		`ALTER TABLE device_status ADD COLUMN music_playing INTEGER NOT NULL DEFAULT 0`,
		`ALTER TABLE device_status ADD COLUMN music_title TEXT`,
		`ALTER TABLE device_status ADD COLUMN music_artist TEXT`,
		`ALTER TABLE device_status ADD COLUMN music_source TEXT`,
		`ALTER TABLE device_status ADD COLUMN music_updated_at INTEGER`,
	}
	for _, stmt := range alters {
		if _, err := conn.Exec(stmt); err != nil {
			if !strings.Contains(strings.ToLower(err.Error()), "duplicate column name") {
				return fmt.Errorf("failed to alter device_status: %w", err)
			}
		}
	}

	// The global control row is a singleton with a fixed id; seed it disabled
	// on first boot and never overwrite it here.
	if _, err := conn.Exec(
		`INSERT INTO status_control (id, global_manual_offline, updated_at)
		 VALUES (1, 0, ?)
		 ON CONFLICT(id) DO NOTHING`,
		time.Now().Unix(),
	); err != nil {
		return fmt.Errorf("failed to seed status_control: %w", err)
	}

	return nil
}
