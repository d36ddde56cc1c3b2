package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func TestMigrateUpAndDown(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "migrate-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO triggers (id, fire_at, created_at) VALUES ('x', '2026-09-07T08:00:00Z', '2026-09-01T00:00:00Z')`); err != nil {
		t.Fatalf("insert after up: %v", err)
	}
	if err := MigrateDown(db); err != nil {
		t.Fatalf("migrate down: %v", err)
	}
	if _, err := db.Exec(`SELECT id FROM triggers`); err == nil {
		t.Fatal("expected triggers table to be dropped")
	}
}

func TestMigrateUpIsIdempotent(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "migrate-idem.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("first migrate up: %v", err)
	}
	if err := MigrateUp(db); err != nil {
		t.Fatalf("second migrate up: %v", err)
	}
}
