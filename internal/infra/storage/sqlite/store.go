// Package sqlite provides the default embedded storage driver backed by a
// single sqlite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"resourcebank/internal/infra/storage/sqlkv"
	"resourcebank/internal/storage/core"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// DefaultPath is used when no database path is configured.
const DefaultPath = "resourcebank.db"

// Store is a sqlkv.Store bound to a sqlite file.
type Store struct {
	*sqlkv.Store
}

// NewStore opens (creating if needed) the sqlite database at path.
func NewStore(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single writer keeps write-through persistence strictly ordered
	db.SetMaxOpenConns(1)
	kv, err := sqlkv.New(ctx, db, sqlkv.Dialect{Driver: core.DriverSQLite, PayloadType: "BLOB", Placeholder: sqlkv.QuestionMarks})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{Store: kv}, nil
}
