package magnetcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

type SQLDialect string

const (
	DialectSQLite   SQLDialect = "sqlite"
	DialectPostgres SQLDialect = "postgres"
	DialectMySQL    SQLDialect = "mysql"
)

const DefaultTableName = "magnet_cache"

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// SQLKV stores entries in a single table with an expires_at column
// (unix milliseconds). Expired rows are treated as absent on read and
// removed by PurgeExpired.
type SQLKV struct {
	db        *sql.DB
	dialect   SQLDialect
	tableName string
	now       func() time.Time
}

// NewSQLKV opens the database, verifies the connection and creates the
// table when missing.
func NewSQLKV(ctx context.Context, dialect SQLDialect, dsn string, tableName string) (*SQLKV, error) {
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}

	var driverName string
	switch dialect {
	case DialectSQLite:
		driverName = "sqlite"
	case DialectPostgres:
		// host=localhost port=5432 user=postgres password=secret dbname=postgres
		driverName = "pgx"
	case DialectMySQL:
		// user:password@tcp(host:port)/dbname
		driverName = "mysql"
	default:
		return nil, fmt.Errorf("unsupported sql dialect: %s. Must be sqlite, postgres or mysql", dialect)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s cache: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s cache: %w", dialect, err)
	}

	kv := &SQLKV{
		db:        db,
		dialect:   dialect,
		tableName: tableName,
		now:       time.Now,
	}
	if _, err := db.ExecContext(ctx, kv.createTableQuery()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}
	return kv, nil
}

// WithClock replaces the clock used for expiry. Tests only.
func (s *SQLKV) WithClock(now func() time.Time) *SQLKV {
	s.now = now
	return s
}

func (s *SQLKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query := fmt.Sprintf(`SELECT cache_value, expires_at FROM %s WHERE cache_key = %s`,
		s.quotedTable(), s.placeholder(1))

	var value []byte
	var expiresAt int64
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if s.now().UnixMilli() >= expiresAt {
		return nil, false, nil
	}
	return value, true, nil
}

func (s *SQLKV) SetWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	expiresAt := s.now().Add(ttl).UnixMilli()
	_, err := s.db.ExecContext(ctx, s.upsertQuery(), key, value, expiresAt)
	return err
}

// PurgeExpired deletes rows whose expiry has passed and reports how many.
func (s *SQLKV) PurgeExpired(ctx context.Context) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE expires_at <= %s`, s.quotedTable(), s.placeholder(1))
	res, err := s.db.ExecContext(ctx, query, s.now().UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLKV) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLKV) createTableQuery() string {
	switch s.dialect {
	case DialectMySQL:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				cache_key VARCHAR(255) PRIMARY KEY,
				cache_value BLOB NOT NULL,
				expires_at BIGINT NOT NULL
			);
		`, s.quotedTable())

	case DialectPostgres:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				cache_key TEXT PRIMARY KEY,
				cache_value BYTEA NOT NULL,
				expires_at BIGINT NOT NULL
			);
		`, s.quotedTable())

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				cache_key TEXT PRIMARY KEY,
				cache_value BLOB NOT NULL,
				expires_at INTEGER NOT NULL
			);
		`, s.quotedTable())
	}
}

func (s *SQLKV) upsertQuery() string {
	switch s.dialect {
	case DialectMySQL:
		return fmt.Sprintf(`INSERT INTO %s (cache_key, cache_value, expires_at) VALUES (?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE cache_value = new.cache_value, expires_at = new.expires_at`, s.quotedTable())

	case DialectPostgres:
		return fmt.Sprintf(`INSERT INTO %s (cache_key, cache_value, expires_at) VALUES ($1, $2, $3)
			ON CONFLICT (cache_key) DO UPDATE SET cache_value = EXCLUDED.cache_value, expires_at = EXCLUDED.expires_at`, s.quotedTable())

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (cache_key, cache_value, expires_at) VALUES (?, ?, ?)`, s.quotedTable())
	}
}

// placeholder returns the n-th parameter placeholder for the dialect.
func (s *SQLKV) placeholder(n int) string {
	if s.dialect == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (s *SQLKV) quotedTable() string {
	if s.dialect == DialectMySQL {
		return fmt.Sprintf("`%s`", s.tableName)
	}
	return fmt.Sprintf("%q", s.tableName)
}

// validateTableName guards the identifiers interpolated into queries.
func validateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name: %s (must match pattern ^[a-zA-Z_][a-zA-Z0-9_]*$)", name)
	}
	return nil
}
