// cmd/tools/dbmigrate/main.go

// dbmigrate applies the rule engine schema to a SQLite database outside the
// server process. By default it uses the migrations embedded in internal/db;
// -migrations points it at a directory instead (useful while authoring one).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/Pousito/reserva-tu-cancha-sub002/internal/db"
)

func main() {
	var (
		dbPath         = flag.String("db", "", "Path to SQLite database")
		migrationsPath = flag.String("migrations", "", "Migrations directory (default: embedded)")
		command        = flag.String("command", "", "Command to run (up, down, version)")
	)
	flag.Parse()

	if *dbPath == "" || *command == "" {
		log.Println("-db and -command are required:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	absDB, err := filepath.Abs(*dbPath)
	if err != nil {
		log.Fatalf("Invalid database path: %v", err)
	}

	// Create database directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(absDB), 0755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	m, err := newMigrate(absDB, *migrationsPath)
	if err != nil {
		log.Fatalf("Failed to create migrate instance: %v", err)
	}
	defer m.Close()

	switch *command {
	case "up":
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Successfully ran migrations up")

	case "down":
		if err := m.Down(); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("Failed to rollback migrations: %v", err)
		}
		log.Println("Successfully ran migrations down")

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatalf("Failed to get version: %v", err)
		}
		log.Printf("Current version: %d, Dirty: %v\n", version, dirty)

	default:
		log.Fatalf("Unknown command: %s", *command)
	}
}

func newMigrate(absDB, migrationsPath string) (*migrate.Migrate, error) {
	databaseURL := fmt.Sprintf("sqlite3://%s", absDB)

	if migrationsPath == "" {
		source, err := iofs.New(db.MigrationsFS, "migrations")
		if err != nil {
			return nil, fmt.Errorf("embedded migrations: %w", err)
		}
		return migrate.NewWithSourceInstance("iofs", source, databaseURL)
	}

	absMigrations, err := filepath.Abs(migrationsPath)
	if err != nil {
		return nil, fmt.Errorf("invalid migrations path: %w", err)
	}
	if _, err := os.Stat(absMigrations); os.IsNotExist(err) {
		return nil, fmt.Errorf("migrations directory does not exist: %s", absMigrations)
	}
	return migrate.New(fmt.Sprintf("file://%s", absMigrations), databaseURL)
}
