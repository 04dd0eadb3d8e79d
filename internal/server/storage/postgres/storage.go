// Package postgres implements storage.Storage on PostgreSQL via pgx.
package postgres

import (
	"context"
	"embed"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/dibarradev/to-do/internal/server/storage"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// DriverName is reported by Driver
const DriverName = "postgres"

var _ storage.Storage = (*Storage)(nil)

// poolIface is the subset of pgxpool.Pool used by Storage; pgxmock implements it in tests.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Storage is a PostgreSQL-backed storage.Storage
type Storage struct {
	pool poolIface
}

// Options tune connection startup
type Options struct {
	// ConnectRetries bounds ping attempts at startup
	ConnectRetries uint64
	// ConnectBackoff is the initial backoff between attempts
	ConnectBackoff time.Duration
}

// New connects to PostgreSQL, waits for it to accept connections and applies migrations
func New(ctx context.Context, dsn string, opts Options) (*Storage, error) {
	pool, err := Connect(ctx, dsn, opts)
	if err != nil {
		return nil, err
	}

	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return NewWithPool(pool), nil
}

// Connect opens a pool and pings it with exponential backoff
func Connect(ctx context.Context, dsn string, opts Options) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "create pool").Wrap(err)
	}

	if opts.ConnectRetries == 0 {
		opts.ConnectRetries = 5
	}
	if opts.ConnectBackoff <= 0 {
		opts.ConnectBackoff = 200 * time.Millisecond
	}

	backoff := retry.WithMaxRetries(opts.ConnectRetries, retry.NewExponential(opts.ConnectBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").
			With("operation", "ping").
			With("retries", opts.ConnectRetries).
			Wrap(err)
	}

	return pool, nil
}

// Migrate applies embedded goose migrations through a database/sql view of the pool
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer func() {
		_ = db.Close()
	}()

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return oops.Code("DB_MIGRATE_FAILED").With("operation", "set dialect").Wrap(err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return oops.Code("DB_MIGRATE_FAILED").With("operation", "goose up").Wrap(err)
	}
	return nil
}

// NewWithPool wraps an existing pool
func NewWithPool(pool poolIface) *Storage {
	return &Storage{pool: pool}
}

// Ping checks the database connection
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Driver returns backend name
func (s *Storage) Driver() string {
	return DriverName
}

// Close closes the pool
func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
