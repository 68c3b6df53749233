// Package core defines the durable key-value abstraction the catalog persists
// through, independent of any concrete backend.
package core

import (
	"context"
	"errors"
	"io"
	"time"
)

// Driver identifies a concrete storage backend implementation.
type Driver string

const (
	// DriverFilesystem stores each key as a file under a root directory.
	DriverFilesystem Driver = "fs"
	// DriverSQLite stores keys in an embedded sqlite database (default).
	DriverSQLite Driver = "sqlite"
	// DriverMemory keeps keys in process memory (tests, ephemeral sessions).
	DriverMemory Driver = "memory"
	// DriverPostgres stores keys in a PostgreSQL table.
	DriverPostgres Driver = "postgres"
	// DriverS3 stores keys as objects in an S3 / MinIO compatible bucket.
	DriverS3 Driver = "s3"
	// DriverMongo stores keys as documents in a MongoDB collection.
	DriverMongo Driver = "mongo"
)

// PutOptions specifies optional parameters for Put.
type PutOptions struct {
	ContentType string            // MIME type, optional
	Metadata    map[string]string // small, flat key-value
}

// Info describes a stored value.
type Info struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size_bytes"`
	ContentType  string            `json:"content_type,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastModified time.Time         `json:"last_modified"`
}

// Store is a minimal durable key-value store. Put is write-through and
// replaces any previous value stored under the same key.
type Store interface {
	// Put stores r under key, overwriting any existing value.
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	// Get returns the value and its metadata. Missing keys yield ErrNotFound.
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	// Head returns metadata only. Missing keys yield ErrNotFound.
	Head(ctx context.Context, key string) (Info, error)
	// Delete removes a key. Returns (false, nil) if it was absent.
	Delete(ctx context.Context, key string) (bool, error)
	// List returns values whose key has the prefix, ordered by key ascending.
	List(ctx context.Context, prefix string) ([]Info, error)
	// Driver returns the backend identifier.
	Driver() Driver
}

var (
	// ErrNotFound is returned (possibly wrapped) when a key does not exist.
	ErrNotFound = errors.New("storage: key not found")
	// ErrUnsupported is returned when an optional capability is not available.
	ErrUnsupported = errors.New("storage: unsupported operation")
)

// CloneMetadata copies a metadata map so callers cannot alias stored state.
func CloneMetadata(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// ReadAll fetches key and returns its full payload.
func ReadAll(ctx context.Context, s Store, key string) ([]byte, error) {
	_, rc, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}
