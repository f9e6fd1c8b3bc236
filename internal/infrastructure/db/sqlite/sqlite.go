// Package sqlite holds the SQLite-backed stores: connection handling, the
// embedded schema migrations of each store and the repositories.
package sqlite

import (
	"context"
	"database/sql/driver"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed migrations
var migrationsFS embed.FS

// Store names one of the three databases. Each service owns exactly one.
type Store string

const (
	StoreUsers    Store = "users"
	StoreProducts Store = "products"
	StoreOrders   Store = "orders"
)

// Stores lists every store in setup order.
var Stores = []Store{StoreUsers, StoreProducts, StoreOrders}

// Open creates the parent directory when needed and opens the database file.
// A single connection is kept open; SQLite serialises writers anyway and
// this avoids SQLITE_BUSY between pooled connections.
func Open(ctx context.Context, path string) (*sqlx.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
	db, err := sqlx.ConnectContext(ctx, "sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// Migrate applies the embedded migrations of store. An up-to-date schema is
// not an error.
func Migrate(db *sqlx.DB, store Store) error {
	src, err := iofs.New(migrationsFS, "migrations/"+string(store))
	if err != nil {
		return fmt.Errorf("load %s migrations: %w", store, err)
	}

	drv, err := migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply %s migrations: %w", store, err)
	}
	return nil
}

// OpenStore opens path and brings the schema of store up to date.
func OpenStore(ctx context.Context, path string, store Store) (*sqlx.DB, error) {
	db, err := Open(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db, store); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlitedriver.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// timestampLayout is fixed width so that text comparison in ORDER BY matches
// chronological order.
const timestampLayout = "2006-01-02 15:04:05.000000000"

// timestamp stores times as UTC text and reads back whatever the driver
// returns for a TIMESTAMP column.
type timestamp time.Time

func (t timestamp) Value() (driver.Value, error) {
	return time.Time(t).UTC().Format(timestampLayout), nil
}

func (t *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*t = timestamp(v.UTC())
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	case nil:
		*t = timestamp(time.Time{})
		return nil
	default:
		return fmt.Errorf("sqlite: cannot scan %T into timestamp", src)
	}
}

func (t *timestamp) parse(s string) error {
	for _, layout := range []string{timestampLayout, "2006-01-02 15:04:05", time.RFC3339Nano} {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			*t = timestamp(parsed)
			return nil
		}
	}
	return fmt.Errorf("sqlite: unrecognised timestamp %q", s)
}

func (t timestamp) Time() time.Time { return time.Time(t) }

func nowTimestamp() timestamp { return timestamp(time.Now().UTC()) }
