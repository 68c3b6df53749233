// Package storage re-exports the durable key-value abstractions and selects a
// concrete driver from configuration. Packages outside internal/infra depend
// on this package rather than on a backend.
package storage

import "resourcebank/internal/storage/core"

type (
	// Driver identifies a storage backend driver.
	Driver = core.Driver
	// PutOptions configures a write.
	PutOptions = core.PutOptions
	// Info describes stored value metadata.
	Info = core.Info
	// Store is the interface for storage backends.
	Store = core.Store
)

const (
	DriverFilesystem = core.DriverFilesystem
	DriverSQLite     = core.DriverSQLite
	DriverMemory     = core.DriverMemory
	DriverPostgres   = core.DriverPostgres
	DriverS3         = core.DriverS3
	DriverMongo      = core.DriverMongo
)

var (
	// ErrNotFound is returned (wrapped) for missing keys.
	ErrNotFound = core.ErrNotFound
	// ErrUnsupported is returned for optional capabilities a driver lacks.
	ErrUnsupported = core.ErrUnsupported
	// ReadAll fetches a key's full payload.
	ReadAll = core.ReadAll
)
