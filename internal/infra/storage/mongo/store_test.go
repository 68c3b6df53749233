package mongo

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"resourcebank/internal/storage/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("RESOURCEBANK_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("RESOURCEBANK_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	store, err := New(ctx, Config{URI: uri, Collection: "state_test_" + time.Now().UTC().Format("150405.000000"), ConnectTimeout: 5 * time.Second})
	if err != nil {
		t.Skipf("mongo unavailable: %v", err)
	}
	t.Cleanup(func() {
		_ = store.coll.Drop(ctx)
		_ = store.Close(ctx)
	})
	return store
}

func TestMongoStoreRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	if _, err := store.Put(ctx, "ressourcesFavoris", bytes.NewReader([]byte(`["a"]`)), core.PutOptions{ContentType: "application/json"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Put(ctx, "ressourcesFavoris", bytes.NewReader([]byte(`[]`)), core.PutOptions{ContentType: "application/json"}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := core.ReadAll(ctx, store, "ressourcesFavoris")
	if err != nil || string(got) != `[]` {
		t.Fatalf("unexpected payload %q %v", got, err)
	}
	list, err := store.List(ctx, "ressources")
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v %+v", err, list)
	}
	if ok, err := store.Delete(ctx, "ressourcesFavoris"); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if _, err := store.Head(ctx, "ressourcesFavoris"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
