package catalog

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"resourcebank/internal/storage"
)

// Favorites is the set of favorited titles. Titles are kept in insertion
// order so the persisted array is deterministic.
type Favorites struct {
	mu     sync.RWMutex
	store  storage.Store
	order  []string
	member map[string]struct{}
	opts   options
}

// NewFavorites returns an empty set backed by store.
func NewFavorites(store storage.Store, opts ...Option) *Favorites {
	return &Favorites{store: store, member: map[string]struct{}{}, opts: buildOptions(opts)}
}

// Load rehydrates the set from storage, collapsing duplicates. Missing or
// unreadable state yields an empty set.
func (f *Favorites) Load(ctx context.Context) {
	var titles []string
	err := readState(ctx, f.store, FavoritesKey, &titles)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.order = nil
	f.member = map[string]struct{}{}
	if err != nil {
		logFallback(f.opts.logger, FavoritesKey, "empty", err)
		return
	}
	for _, t := range titles {
		if _, ok := f.member[t]; ok {
			continue
		}
		f.member[t] = struct{}{}
		f.order = append(f.order, t)
	}
	f.opts.logger.Debug("favorites loaded", zap.Int("titles", len(f.order)))
}

// Toggle removes title if present, adds it otherwise, and persists the set.
// It returns the new membership.
func (f *Favorites) Toggle(ctx context.Context, title string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, present := f.member[title]
	if present {
		delete(f.member, title)
		for i, t := range f.order {
			if t == title {
				f.order = append(f.order[:i], f.order[i+1:]...)
				break
			}
		}
	} else {
		f.member[title] = struct{}{}
		f.order = append(f.order, title)
	}
	snapshot := make([]string, len(f.order))
	copy(snapshot, f.order)
	if err := writeState(ctx, f.store, FavoritesKey, snapshot); err != nil {
		f.opts.persistFailed(FavoritesKey, err)
	}
	return !present
}

// Contains reports membership.
func (f *Favorites) Contains(title string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.member[title]
	return ok
}

// Titles returns the favorited titles in insertion order.
func (f *Favorites) Titles() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// Len returns the set size.
func (f *Favorites) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.order)
}
