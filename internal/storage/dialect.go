package storage

import (
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect hides the differences between the supported SQL backends.
type Dialect interface {
	// Name is the migrations subdirectory and the DB_DRIVER value.
	Name() string
	// DriverName is passed to sql.Open.
	DriverName() string
	// DSN adjusts the configured connection string for the driver.
	DSN(dsn string) string
	// RewriteQuery converts ? placeholders where the driver needs it.
	RewriteQuery(query string) string
	// Upsert writes (name, data) replacing any existing row.
	Upsert() string
	// ConfigureConnection applies pool settings and session pragmas.
	ConfigureConnection(db *sql.DB) error
}

// DialectFor resolves a DB_DRIVER value.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "sqlite", "sqlite3", "":
		return SQLite{}, nil
	case "postgres", "postgresql":
		return Postgres{}, nil
	case "mysql":
		return MySQL{}, nil
	}
	return nil, fmt.Errorf("unsupported database driver: %s", name)
}

var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, ...
func rewritePlaceholdersToNumbered(query string) string {
	n := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(string) string {
		n++
		return "$" + strconv.Itoa(n)
	})
}

func configurePool(db *sql.DB) {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(time.Minute)
}

// SQLite stores everything in a single file with WAL journaling.
type SQLite struct{}

func (SQLite) Name() string { return "sqlite" }
func (SQLite) DriverName() string { return "sqlite3" }

func (SQLite) DSN(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn
	}
	return dsn + "?_busy_timeout=5000&_journal_mode=WAL"
}

func (SQLite) RewriteQuery(q string) string { return q }

func (SQLite) Upsert() string {
	return `INSERT INTO kv (name, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`
}

func (SQLite) ConfigureConnection(db *sql.DB) error {
	configurePool(db)
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		return fmt.Errorf("set pragmas: %w", err)
	}
	return nil
}

// Postgres uses numbered placeholders.
type Postgres struct{}

func (Postgres) Name() string { return "postgres" }
func (Postgres) DriverName() string { return "postgres" }
func (Postgres) DSN(dsn string) string { return dsn }
func (Postgres) RewriteQuery(q string) string { return rewritePlaceholdersToNumbered(q) }
func (Postgres) ConfigureConnection(db *sql.DB) error {
	configurePool(db)
	return nil
}

func (Postgres) Upsert() string {
	return `INSERT INTO kv (name, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = CURRENT_TIMESTAMP`
}

// MySQL keeps ? placeholders and upserts on the primary key.
type MySQL struct{}

func (MySQL) Name() string { return "mysql" }
func (MySQL) DriverName() string { return "mysql" }
func (MySQL) RewriteQuery(q string) string { return q }

func (MySQL) DSN(dsn string) string {
	if strings.Contains(dsn, "parseTime=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&parseTime=true"
	}
	return dsn + "?parseTime=true"
}

func (MySQL) Upsert() string {
	return "INSERT INTO kv (name, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP(6)) " +
		"ON DUPLICATE KEY UPDATE data = VALUES(data), updated_at = CURRENT_TIMESTAMP(6)"
}

func (MySQL) ConfigureConnection(db *sql.DB) error {
	configurePool(db)
	return nil
}
