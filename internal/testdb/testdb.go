// Package testdb provides an in-memory SQLite database for tests.
//
// The repository layer emits the SQL subset shared by PostgreSQL and
// SQLite ($N placeholders, RETURNING), so the test database exercises the
// exact statements production runs, without an external server.
package testdb

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

const todosSchema = `
CREATE TABLE todos (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	title        TEXT NOT NULL,
	description  TEXT,
	is_completed BOOLEAN NOT NULL DEFAULT FALSE,
	is_deleted   BOOLEAN NOT NULL DEFAULT FALSE,
	user_id      INTEGER,
	created_at   TIMESTAMP NOT NULL,
	updated_at   TIMESTAMP NOT NULL
);
CREATE INDEX idx_todos_is_deleted ON todos (is_deleted);
`

// NewTodoDB opens a fresh in-memory database with the todos schema and
// registers cleanup with the test. The pool is pinned to a single
// connection because each in-memory SQLite connection is its own database.
func NewTodoDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(todosSchema); err != nil {
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})
	return db
}
