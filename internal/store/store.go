// Package store persists curated allele, cell line and sequence state.
// DuckDB is the default backend; SQLite and PostgreSQL are reached through
// the same database/sql code path.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "github.com/marcboeker/go-duckdb"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Supported database/sql driver names.
const (
	DriverDuckDB = "duckdb"
	DriverSQLite = "sqlite"
	DriverPgx    = "pgx"
)

// Store manages the database connection and the in-process key allocator.
// A Store assumes it is the only writer for the duration of a run.
type Store struct {
	db     *sql.DB
	driver string
	dsn    string
	bulk   bool

	mu   sync.Mutex
	keys map[string]int64 // last allocated key per table
}

// Open opens or creates a database. For duckdb and sqlite an empty dsn
// selects an in-memory database.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case DriverDuckDB, DriverSQLite:
		if dsn != "" && !strings.HasPrefix(dsn, ":memory:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	case DriverPgx:
		if dsn == "" {
			return nil, fmt.Errorf("open %s: empty dsn", driver)
		}
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	openDSN := dsn
	if driver == DriverSQLite && dsn == "" {
		openDSN = ":memory:"
	}

	db, err := sql.Open(driver, openDSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// Every connection to ":memory:" is a separate database.
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, driver: driver, dsn: dsn, keys: make(map[string]int64)}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	if err := s.loadKeys(); err != nil {
		db.Close()
		return nil, fmt.Errorf("load keys: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Driver returns the database/sql driver name.
func (s *Store) Driver() string {
	return s.driver
}

// SetBulk switches Commit to bulk mode: inserts go through the DuckDB
// appender instead of per-row INSERT statements. Only duckdb supports it.
func (s *Store) SetBulk(bulk bool) error {
	if bulk && s.driver != DriverDuckDB {
		return fmt.Errorf("bulk mode requires the %s driver, have %s", DriverDuckDB, s.driver)
	}
	s.bulk = bulk
	return nil
}

// NextKey allocates the next primary key of table.
func (s *Store) NextKey(table string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[table]++
	return s.keys[table]
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	for _, t := range tables {
		if _, err := s.db.Exec(t.ddl()); err != nil {
			return fmt.Errorf("create %s: %w", t.name, err)
		}
	}
	return nil
}

func (s *Store) loadKeys() error {
	for _, t := range tables {
		var last sql.NullInt64
		q := fmt.Sprintf("SELECT MAX(%s) FROM %s", t.key, t.name)
		if err := s.db.QueryRow(q).Scan(&last); err != nil {
			return fmt.Errorf("max key of %s: %w", t.name, err)
		}
		s.keys[t.name] = last.Int64
	}
	return nil
}

// rebind rewrites "?" placeholders as "$n" for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPgx || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) query(ctx context.Context, q string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.rebind(q), args...)
}

func (s *Store) queryRow(ctx context.Context, q string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.rebind(q), args...)
}
