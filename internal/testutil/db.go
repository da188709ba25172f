// internal/testutil/db.go
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Pousito/reserva-tu-cancha-sub002/internal/db"
)

// NewTestDB creates a temporary SQLite database with migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

// SeedFacility inserts a facility and returns its id.
func SeedFacility(t *testing.T, database *db.DB, name, slug, timezone string) int64 {
	t.Helper()

	result, err := database.ExecContext(context.Background(),
		"INSERT INTO facilities (nombre, slug, timezone) VALUES (?, ?, ?)",
		name, slug, timezone,
	)
	if err != nil {
		t.Fatalf("insert facility: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("facility id: %v", err)
	}
	return id
}

// SeedCourt inserts a court for the facility and returns its id.
func SeedCourt(t *testing.T, database *db.DB, facilityID int64, name string, basePrice int64) int64 {
	t.Helper()

	result, err := database.ExecContext(context.Background(),
		"INSERT INTO courts (facility_id, nombre, precio_base) VALUES (?, ?, ?)",
		facilityID, name, basePrice,
	)
	if err != nil {
		t.Fatalf("insert court: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("court id: %v", err)
	}
	return id
}
