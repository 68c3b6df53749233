// Package config loads resourcebank settings from an optional YAML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"resourcebank/internal/storage"
)

// DefaultPath is read when no path is given and the file exists.
const DefaultPath = "resourcebank.yaml"

// Config holds all configuration. Environment variables always override YAML
// values. Secrets are only read from the environment (yaml:"-").
type Config struct {
	Server  ServerConfig   `yaml:"server"`
	Admin   AdminConfig    `yaml:"admin"`
	Storage storage.Config `yaml:"storage"`
	Export  ExportConfig   `yaml:"export"`
	Log     LogConfig      `yaml:"log"`
}

// ServerConfig configures the HTTP adapter.
type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"RESOURCEBANK_ADDR" env-default:"127.0.0.1:8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"RESOURCEBANK_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"RESOURCEBANK_WRITE_TIMEOUT" env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"RESOURCEBANK_SHUTDOWN_TIMEOUT" env-default:"10s"`
	// SessionKey authenticates the admin session cookie. A random key is
	// generated at startup when empty, so sessions do not survive restarts.
	SessionKey    string `yaml:"-" env:"RESOURCEBANK_SESSION_KEY"`
	SecureCookies bool   `yaml:"secure_cookies" env:"RESOURCEBANK_SECURE_COOKIES" env-default:"false"`
}

// AdminConfig selects the admin credential. PasswordHash wins when set.
type AdminConfig struct {
	Password     string `yaml:"-" env:"RESOURCEBANK_ADMIN_PASSWORD" env-default:"admin123"`
	PasswordHash string `yaml:"password_hash" env:"RESOURCEBANK_ADMIN_PASSWORD_HASH"`
}

// ExportConfig toggles archiving of exports to storage.
type ExportConfig struct {
	Archive bool `yaml:"archive" env:"RESOURCEBANK_EXPORT_ARCHIVE" env-default:"false"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level" env:"RESOURCEBANK_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"RESOURCEBANK_LOG_FORMAT" env-default:"json"`
	// File enables rotated file output in addition to stderr.
	File       string `yaml:"file" env:"RESOURCEBANK_LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"RESOURCEBANK_LOG_MAX_SIZE_MB" env-default:"50"`
	MaxBackups int    `yaml:"max_backups" env:"RESOURCEBANK_LOG_MAX_BACKUPS" env-default:"3"`
	MaxAgeDays int    `yaml:"max_age_days" env:"RESOURCEBANK_LOG_MAX_AGE_DAYS" env-default:"28"`
}

// Load reads path (or DefaultPath when empty) with environment overrides. A
// missing default file is not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if explicit || !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks cross-field constraints that tags cannot express.
func (c *Config) Validate() error {
	switch storage.Driver(c.Storage.Driver) {
	case storage.DriverFilesystem, storage.DriverSQLite, storage.DriverMemory:
	case storage.DriverPostgres:
		if c.Storage.PostgresDSN == "" {
			return errors.New("storage driver postgres requires RESOURCEBANK_POSTGRES_DSN")
		}
	case storage.DriverS3:
		if c.Storage.S3.Bucket == "" {
			return errors.New("storage driver s3 requires a bucket")
		}
	case storage.DriverMongo:
		if c.Storage.Mongo.URI == "" {
			return errors.New("storage driver mongo requires RESOURCEBANK_MONGO_URI")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// Usage returns the environment variable help text.
func Usage() string {
	cfg := &Config{}
	text, err := cleanenv.GetDescription(cfg, nil)
	if err != nil {
		return ""
	}
	return text
}
