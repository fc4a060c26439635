package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	_ "github.com/lib/pq" // Register the PostgreSQL driver with database/sql.
	_ "modernc.org/sqlite" // Register the pure-Go SQLite driver as "sqlite".
)

// Supported values for StoreConfig.Driver.
const (
	DriverPostgres = "postgres" // lib/pq through sqlx
	DriverPGX      = "pgx"      // native pgx pool
	DriverSQLite   = "sqlite"   // modernc.org/sqlite
	DriverMongo    = "mongo"    // MongoDB document store
	DriverMemory   = "memory"   // process memory, lost on exit
)

// StoreConfig selects and tunes the persistence back end.
type StoreConfig struct {
	Driver       string
	DSN          string        // connection string, file path or Mongo URI
	Database     string        // Mongo database name
	MaxOpenConns int           // SQL pools only
	MaxIdleConns int           // database/sql pools only
	MaxIdleTime  time.Duration // SQL pools only
}

// Open builds the store named by cfg.Driver, verifies the connection and
// creates the books table where the back end needs one.
func Open(ctx context.Context, cfg StoreConfig) (Models, error) {
	switch cfg.Driver {
	case DriverMemory:
		return NewModels(NewMemoryBookStore()), nil

	case DriverPostgres:
		db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN)
		if err != nil {
			return Models{}, fmt.Errorf("open postgres: %w", err)
		}
		configurePool(db.DB, cfg)

		store, err := NewSQLBookStoreFromSQLX(db)
		if err != nil {
			db.Close()
			return Models{}, err
		}
		return migrated(ctx, store)

	case DriverPGX:
		poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			return Models{}, fmt.Errorf("parse pgx dsn: %w", err)
		}
		if cfg.MaxOpenConns > 0 {
			poolConfig.MaxConns = int32(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleTime > 0 {
			poolConfig.MaxConnIdleTime = cfg.MaxIdleTime
		}

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return Models{}, fmt.Errorf("open pgx pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return Models{}, fmt.Errorf("ping pgx pool: %w", err)
		}

		store, err := NewSQLBookStoreFromPGXPool(pool)
		if err != nil {
			pool.Close()
			return Models{}, err
		}
		return migrated(ctx, store)

	case DriverSQLite:
		db, err := OpenSQLite(ctx, cfg.DSN)
		if err != nil {
			return Models{}, err
		}

		store, err := NewSQLBookStoreFromSQLDB(db, DialectSQLite)
		if err != nil {
			db.Close()
			return Models{}, err
		}
		return migrated(ctx, store)

	case DriverMongo:
		store, err := OpenMongo(ctx, cfg.DSN, cfg.Database)
		if err != nil {
			return Models{}, err
		}
		return Models{Books: store, close: store.Close}, nil

	default:
		return Models{}, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}
}

// OpenSQLite opens the SQLite database at path (":memory:" is allowed)
// and applies the connection pragmas. SQLite serialises writers, so the
// pool is limited to a single connection.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("open sqlite: empty path")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, stmt := range pragmas {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite pragma: %w", err)
		}
	}

	return db, nil
}

func configurePool(db *sql.DB, cfg StoreConfig) {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.MaxIdleTime)
	}
}

func migrated(ctx context.Context, store *SQLBookStore) (Models, error) {
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return Models{}, err
	}
	return Models{Books: store, close: store.Close}, nil
}
