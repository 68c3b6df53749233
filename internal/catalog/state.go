// Package catalog implements the resource catalog engine: the record store,
// the favorites set, and the pure filter functions over them.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"resourcebank/internal/storage"
	"resourcebank/pkg/domain"
)

// Durable storage keys. They match the keys of the original browser storage
// so exported state stays interchangeable.
const (
	RecordsKey   = "ressourcesAO"
	FavoritesKey = "ressourcesFavoris"
)

const jsonContentType = "application/json"

// PersistErrorFunc observes a failed write-through. The in-memory state stays
// authoritative regardless.
type PersistErrorFunc func(key string, err error)

type options struct {
	logger    *zap.Logger
	rules     *domain.RulesEngine
	onPersist PersistErrorFunc
}

// Option customises a RecordStore or Favorites.
type Option func(*options)

// WithLogger sets the logger; nil keeps the no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRules replaces the submission rules engine used by RecordStore.
func WithRules(e *domain.RulesEngine) Option {
	return func(o *options) {
		if e != nil {
			o.rules = e
		}
	}
}

// WithPersistErrorHandler registers a callback for failed writes.
func WithPersistErrorHandler(fn PersistErrorFunc) Option {
	return func(o *options) { o.onPersist = fn }
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop(), rules: domain.DefaultRulesEngine()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// readState decodes the JSON payload stored under key into dst. A missing key
// returns an error wrapping storage.ErrNotFound; a payload that is not valid
// JSON for dst, or is JSON null, wraps ErrStateUnreadable.
func readState(ctx context.Context, store storage.Store, key string, dst any) error {
	payload, err := storage.ReadAll(ctx, store, key)
	if err != nil {
		return err
	}
	if bytes.Equal(bytes.TrimSpace(payload), []byte("null")) {
		return fmt.Errorf("%w: %s is null", ErrStateUnreadable, key)
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrStateUnreadable, key, err)
	}
	return nil
}

func writeState(ctx context.Context, store storage.Store, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if _, err := store.Put(ctx, key, bytes.NewReader(payload), storage.PutOptions{ContentType: jsonContentType}); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}

// logFallback records why persisted state was replaced by its default. A
// missing key is the normal first start and is logged at debug.
func logFallback(logger *zap.Logger, key, fallback string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		logger.Debug("no persisted state", zap.String("key", key), zap.String("fallback", fallback))
		return
	}
	logger.Warn("persisted state unreadable", zap.String("key", key), zap.String("fallback", fallback), zap.Error(err))
}

func (o options) persistFailed(key string, err error) {
	o.logger.Warn("persist failed", zap.String("key", key), zap.Error(err))
	if o.onPersist != nil {
		o.onPersist(key, err)
	}
}
