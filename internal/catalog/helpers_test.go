package catalog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"resourcebank/internal/storage"
)

// countingStore wraps a storage.Store and counts writes per key.
type countingStore struct {
	storage.Store
	mu      sync.Mutex
	puts    map[string]int
	failPut bool
}

func newCountingStore() *countingStore {
	return &countingStore{Store: storage.NewMemory(), puts: map[string]int{}}
}

func (c *countingStore) Put(ctx context.Context, key string, r io.Reader, opts storage.PutOptions) (storage.Info, error) {
	c.mu.Lock()
	c.puts[key]++
	fail := c.failPut
	c.mu.Unlock()
	if fail {
		return storage.Info{}, errors.New("disk full")
	}
	return c.Store.Put(ctx, key, r, opts)
}

func (c *countingStore) writes(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.puts[key]
}

func seedRaw(t *testing.T, st storage.Store, key, payload string) {
	t.Helper()
	if _, err := st.Put(context.Background(), key, bytes.NewReader([]byte(payload)), storage.PutOptions{}); err != nil {
		t.Fatalf("seed %s: %v", key, err)
	}
}

func rawState(t *testing.T, st storage.Store, key string) string {
	t.Helper()
	b, err := storage.ReadAll(context.Background(), st, key)
	if err != nil {
		t.Fatalf("read %s: %v", key, err)
	}
	return string(b)
}
