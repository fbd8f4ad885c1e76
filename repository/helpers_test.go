package repository_test

import (
	"database/sql"
	"fmt"
	"testing"

	_ "modernc.org/sqlite"

	"HomeStatus/db"
)

// openTestDB returns an in-memory SQLite connection with the same pragmas and
// schema as production. The connection is closed when the test finishes.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// Each test gets its own named in-memory database; the shared-cache URI
	// keeps it alive across pool reopen.
	dsn := fmt.Sprintf(
		"file:test_%s?mode=memory&cache=shared&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)",
		t.Name(),
	)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("openTestDB: sql.Open: %v", err)
	}

	// Match production: single connection.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.Ping(); err != nil {
		conn.Close()
		t.Fatalf("openTestDB: ping: %v", err)
	}

	if err := db.InitSchema(conn); err != nil {
		conn.Close()
		t.Fatalf("openTestDB: init schema: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }
func i64p(n int64) *int64   { return &n }
