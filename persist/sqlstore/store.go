// Package sqlstore persists failing seeds in a SQL database so that a fleet
// of CI machines can share them. Records are keyed by test name.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/shipq/proptest/dburl"
	"github.com/shipq/proptest/logging"
	"github.com/shipq/proptest/persist"
	"github.com/shipq/proptest/rng"
)

// TableName is the table failures are stored in.
const TableName = "proptest_failures"

// opTimeout bounds the Load and Save calls made by the runner.
const opTimeout = 10 * time.Second

// ErrUnsupportedDialect is returned for dialects other than those in dburl.
var ErrUnsupportedDialect = errors.New("unsupported dialect")

// Store is a persist.Store backed by a database table.
type Store struct {
	db      *sql.DB
	dialect string
	test    string
	logger  *slog.Logger
}

// Open connects to dbURL, creates the failures table if needed and returns
// a store for the named test.
func Open(ctx context.Context, dbURL, test string) (*Store, error) {
	dialect, driver, dsn, err := dburl.DriverDSN(dbURL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dialect == dburl.DialectSQLite {
		// A second connection to :memory: would see a different database.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s, err := New(db, dialect, test)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := s.EnsureTable(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database. The caller keeps ownership of db unless it
// calls Close on the store.
func New(db *sql.DB, dialect, test string) (*Store, error) {
	switch dialect {
	case dburl.DialectPostgres, dburl.DialectMySQL, dburl.DialectSQLite:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDialect, dialect)
	}
	return &Store{db: db, dialect: dialect, test: test}, nil
}

// SetLogger sets the logger Load and Save report errors on.
func (s *Store) SetLogger(l *slog.Logger) {
	s.logger = l
}

// Test returns the name records are keyed by.
func (s *Store) Test() string {
	return s.test
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureTable creates the failures table if it doesn't exist.
func (s *Store) EnsureTable(ctx context.Context) error {
	var createSQL string

	switch s.dialect {
	case dburl.DialectPostgres:
		createSQL = `
			CREATE TABLE IF NOT EXISTS proptest_failures (
				id         BIGSERIAL PRIMARY KEY,
				test_name  VARCHAR(255) NOT NULL,
				seed0      BIGINT NOT NULL,
				seed1      BIGINT NOT NULL,
				seed2      BIGINT NOT NULL,
				seed3      BIGINT NOT NULL,
				shrinks_to TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				UNIQUE (test_name, seed0, seed1, seed2, seed3)
			)`
	case dburl.DialectMySQL:
		createSQL = `
			CREATE TABLE IF NOT EXISTS proptest_failures (
				id         BIGINT AUTO_INCREMENT PRIMARY KEY,
				test_name  VARCHAR(255) NOT NULL,
				seed0      BIGINT NOT NULL,
				seed1      BIGINT NOT NULL,
				seed2      BIGINT NOT NULL,
				seed3      BIGINT NOT NULL,
				shrinks_to TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				UNIQUE (test_name, seed0, seed1, seed2, seed3)
			)`
	case dburl.DialectSQLite:
		createSQL = `
			CREATE TABLE IF NOT EXISTS proptest_failures (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				test_name  TEXT NOT NULL,
				seed0      INTEGER NOT NULL,
				seed1      INTEGER NOT NULL,
				seed2      INTEGER NOT NULL,
				seed3      INTEGER NOT NULL,
				shrinks_to TEXT NOT NULL,
				created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
				UNIQUE (test_name, seed0, seed1, seed2, seed3)
			)`
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedDialect, s.dialect)
	}

	if _, err := s.db.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("failed to create %s: %w", TableName, err)
	}
	return nil
}

// placeholders returns n bind parameters in the dialect's syntax.
func (s *Store) placeholders(n int) []string {
	out := make([]string, n)
	for i := range out {
		if s.dialect == dburl.DialectPostgres {
			out[i] = fmt.Sprintf("$%d", i+1)
		} else {
			out[i] = "?"
		}
	}
	return out
}

// Records returns the test's failures in the order they were added.
func (s *Store) Records(ctx context.Context) ([]persist.Record, error) {
	p := s.placeholders(1)
	rows, err := s.db.QueryContext(ctx,
		"SELECT seed0, seed1, seed2, seed3, shrinks_to FROM proptest_failures WHERE test_name = "+p[0]+" ORDER BY id",
		s.test)
	if err != nil {
		return nil, fmt.Errorf("failed to query failures: %w", err)
	}
	defer rows.Close()

	var records []persist.Record
	for rows.Next() {
		var words [4]int64
		var value string
		if err := rows.Scan(&words[0], &words[1], &words[2], &words[3], &value); err != nil {
			return nil, fmt.Errorf("failed to scan failure: %w", err)
		}
		var seed rng.Seed
		for i, w := range words {
			seed[i] = uint32(w)
		}
		records = append(records, persist.Record{Seed: seed, Comment: "shrinks to " + value})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating failures: %w", err)
	}
	return records, nil
}

// Add stores a failure unless the same seed is already recorded for the
// test. It reports whether a row was inserted.
func (s *Store) Add(ctx context.Context, seed rng.Seed, value string) (bool, error) {
	columns := "(test_name, seed0, seed1, seed2, seed3, shrinks_to) VALUES (" +
		strings.Join(s.placeholders(6), ", ") + ")"

	var insertSQL string
	switch s.dialect {
	case dburl.DialectPostgres:
		insertSQL = "INSERT INTO proptest_failures " + columns + " ON CONFLICT DO NOTHING"
	case dburl.DialectMySQL:
		insertSQL = "INSERT IGNORE INTO proptest_failures " + columns
	case dburl.DialectSQLite:
		insertSQL = "INSERT OR IGNORE INTO proptest_failures " + columns
	default:
		return false, fmt.Errorf("%w: %s", ErrUnsupportedDialect, s.dialect)
	}

	res, err := s.db.ExecContext(ctx, insertSQL,
		s.test, int64(seed[0]), int64(seed[1]), int64(seed[2]), int64(seed[3]), value)
	if err != nil {
		return false, fmt.Errorf("failed to record failure: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to record failure: %w", err)
	}
	return n > 0, nil
}

// Load implements persist.Store. Errors are logged and yield no seeds.
func (s *Store) Load() []rng.Seed {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	records, err := s.Records(ctx)
	if err != nil {
		s.log().Warn("failed to load persisted failures", "test", s.test, "error", err)
		return nil
	}
	return persist.Seeds(records)
}

// Save implements persist.Store. Errors are logged.
func (s *Store) Save(seed rng.Seed, value string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if _, err := s.Add(ctx, seed, value); err != nil {
		s.log().Warn("failed to persist failure", "test", s.test, "seed", seed.String(), "error", err)
	}
}

func (s *Store) log() *slog.Logger {
	return logging.OrDefault(s.logger)
}
