// Package database opens the SQLite stores and applies their schemas.
package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Profile selects the durability/speed trade-off for a database file.
type Profile string

const (
	// ProfileLedger fsyncs every write and never shrinks. Used for the
	// trade ledger.
	ProfileLedger Profile = "ledger"
	// ProfileStandard suits the application store.
	ProfileStandard Profile = "standard"
	// ProfileCache trades durability for speed.
	ProfileCache Profile = "cache"
)

// Schema names accepted by Migrate.
const (
	SchemaApp    = "app"
	SchemaLedger = "ledger"
)

//go:embed schema.sql
var appSchema string

//go:embed ledger_schema.sql
var ledgerSchema string

// DB wraps a configured *sql.DB.
type DB struct {
	conn    *sql.DB
	path    string
	profile Profile
	name    string
}

type Config struct {
	Path    string
	Profile Profile
	// Name selects the schema applied by Migrate and labels errors.
	Name string
}

// New opens (creating if needed) the database at cfg.Path and pings it.
func New(cfg Config) (*DB, error) {
	if cfg.Path != ":memory:" {
		abs, err := filepath.Abs(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		cfg.Path = abs
	}
	if cfg.Profile == "" {
		cfg.Profile = ProfileStandard
	}

	conn, err := sql.Open("sqlite", connectionString(cfg.Path, cfg.Profile))
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.Name, err)
	}
	configurePool(conn, cfg.Profile)
	if cfg.Path == ":memory:" {
		// Every connection would otherwise see its own empty database.
		conn.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping database %s: %w", cfg.Name, err)
	}

	return &DB{conn: conn, path: cfg.Path, profile: cfg.Profile, name: cfg.Name}, nil
}

func connectionString(path string, profile Profile) string {
	s := "file:" + path + "?_pragma=journal_mode(WAL)"
	switch profile {
	case ProfileLedger:
		s += "&_pragma=synchronous(FULL)&_pragma=auto_vacuum(NONE)"
	case ProfileCache:
		s += "&_pragma=synchronous(OFF)&_pragma=temp_store(MEMORY)"
	default:
		s += "&_pragma=synchronous(NORMAL)&_pragma=temp_store(MEMORY)"
	}
	// Concurrent writers wait instead of failing with SQLITE_BUSY.
	s += "&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	return s
}

func configurePool(conn *sql.DB, profile Profile) {
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(time.Hour)
	conn.SetConnMaxIdleTime(10 * time.Minute)
	if profile == ProfileLedger {
		// One writer keeps appends strictly ordered on disk.
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
	}
}

// Migrate applies the embedded schema matching the database name. All
// statements are idempotent.
func (db *DB) Migrate() error {
	var schema string
	switch db.name {
	case SchemaApp:
		schema = appSchema
	case SchemaLedger:
		schema = ledgerSchema
	default:
		return nil
	}
	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("apply %s schema: %w", db.name, err)
	}
	return nil
}

func (db *DB) Close() error { return db.conn.Close() }

// Conn returns the underlying pool for repositories.
func (db *DB) Conn() *sql.DB { return db.conn }

func (db *DB) Name() string     { return db.name }
func (db *DB) Path() string     { return db.path }
func (db *DB) Profile() Profile { return db.profile }

// HealthCheck pings the database and runs a quick integrity check.
func (db *DB) HealthCheck(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", db.name, err)
	}
	var res string
	if err := db.conn.QueryRowContext(ctx, "PRAGMA quick_check").Scan(&res); err != nil {
		return fmt.Errorf("quick check %s: %w", db.name, err)
	}
	if res != "ok" {
		return fmt.Errorf("quick check %s: %s", db.name, res)
	}
	return nil
}
