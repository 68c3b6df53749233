// Package postgres provides a PostgreSQL storage driver. It keeps the same
// single-table layout as the sqlite driver so a catalog can move between them.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"resourcebank/internal/infra/storage/sqlkv"
	"resourcebank/internal/storage/core"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/resourcebank?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store is a sqlkv.Store bound to a PostgreSQL database.
type Store struct {
	*sqlkv.Store
}

// Options tunes connection establishment.
type Options struct {
	// ConnectTimeout bounds the total time spent retrying the initial ping.
	ConnectTimeout time.Duration
}

// NewStore opens a Postgres-backed store using dsn (falls back to defaultDSN),
// retrying the initial ping with exponential backoff, and ensures the state
// table exists.
func NewStore(ctx context.Context, dsn string, opts Options) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := ping(ctx, db, opts.ConnectTimeout); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	kv, err := sqlkv.New(ctx, db, sqlkv.Dialect{Driver: core.DriverPostgres, PayloadType: "BYTEA", Placeholder: sqlkv.Dollar})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{Store: kv}, nil
}

func ping(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = timeout
	return backoff.Retry(func() error {
		return db.PingContext(ctx)
	}, backoff.WithContext(policy, ctx))
}

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
