package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"resourcebank/internal/infra/storage/fs"
	"resourcebank/internal/infra/storage/memory"
	"resourcebank/internal/infra/storage/mongo"
	"resourcebank/internal/infra/storage/postgres"
	"resourcebank/internal/infra/storage/s3"
	"resourcebank/internal/infra/storage/sqlite"
)

// Config selects and parameterizes a storage driver.
type Config struct {
	Driver         string        `yaml:"driver" env:"RESOURCEBANK_STORAGE_DRIVER" env-default:"sqlite"`
	FSRoot         string        `yaml:"fs_root" env:"RESOURCEBANK_FS_ROOT" env-default:"./data"`
	SQLitePath     string        `yaml:"sqlite_path" env:"RESOURCEBANK_SQLITE_PATH" env-default:"resourcebank.db"`
	PostgresDSN    string        `yaml:"-" env:"RESOURCEBANK_POSTGRES_DSN"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"RESOURCEBANK_STORAGE_CONNECT_TIMEOUT" env-default:"10s"`
	S3             S3Config      `yaml:"s3"`
	Mongo          MongoConfig   `yaml:"mongo"`
}

// S3Config holds bucket settings for the s3 driver.
type S3Config struct {
	Bucket    string `yaml:"bucket" env:"RESOURCEBANK_S3_BUCKET"`
	Region    string `yaml:"region" env:"RESOURCEBANK_S3_REGION" env-default:"us-east-1"`
	Endpoint  string `yaml:"endpoint" env:"RESOURCEBANK_S3_ENDPOINT"`
	Prefix    string `yaml:"prefix" env:"RESOURCEBANK_S3_PREFIX"`
	PathStyle bool   `yaml:"path_style" env:"RESOURCEBANK_S3_PATH_STYLE"`
}

// MongoConfig holds deployment settings for the mongo driver.
type MongoConfig struct {
	URI        string `yaml:"-" env:"RESOURCEBANK_MONGO_URI"`
	Database   string `yaml:"database" env:"RESOURCEBANK_MONGO_DATABASE" env-default:"resourcebank"`
	Collection string `yaml:"collection" env:"RESOURCEBANK_MONGO_COLLECTION" env-default:"state"`
}

// Open constructs the configured driver. The returned closer releases any
// connection the driver holds; it is never nil.
func Open(ctx context.Context, cfg Config) (Store, io.Closer, error) {
	driver := Driver(cfg.Driver)
	if driver == "" {
		driver = DriverSQLite
	}
	switch driver {
	case DriverMemory:
		return memory.New(), nopCloser{}, nil
	case DriverFilesystem:
		st, err := fs.New(cfg.FSRoot)
		if err != nil {
			return nil, nopCloser{}, err
		}
		return st, nopCloser{}, nil
	case DriverSQLite:
		st, err := sqlite.NewStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nopCloser{}, err
		}
		return st, st, nil
	case DriverPostgres:
		st, err := postgres.NewStore(ctx, cfg.PostgresDSN, postgres.Options{ConnectTimeout: cfg.ConnectTimeout})
		if err != nil {
			return nil, nopCloser{}, err
		}
		return st, st, nil
	case DriverS3:
		st, err := s3.New(ctx, s3.Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			Prefix:    cfg.S3.Prefix,
			PathStyle: cfg.S3.PathStyle,
		})
		if err != nil {
			return nil, nopCloser{}, err
		}
		return st, nopCloser{}, nil
	case DriverMongo:
		st, err := mongo.New(ctx, mongo.Config{
			URI:            cfg.Mongo.URI,
			Database:       cfg.Mongo.Database,
			Collection:     cfg.Mongo.Collection,
			ConnectTimeout: cfg.ConnectTimeout,
		})
		if err != nil {
			return nil, nopCloser{}, err
		}
		return st, closerFunc(func() error { return st.Close(context.Background()) }), nil
	default:
		return nil, nopCloser{}, fmt.Errorf("unknown storage driver %s", driver)
	}
}

// NewMemory returns an in-memory Store, mainly for tests.
func NewMemory() Store { return memory.New() }

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
