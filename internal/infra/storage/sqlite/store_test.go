package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"resourcebank/internal/storage/core"
)

func TestSQLiteStorePersistAndReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.db")
	store, err := NewStore(ctx, path)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	if _, err := store.Put(ctx, "ressourcesAO", bytes.NewReader([]byte(`[]`)), core.PutOptions{ContentType: "application/json", Metadata: map[string]string{"v": "1"}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Put(ctx, "ressourcesAO", bytes.NewReader([]byte(`[{"title":"x"}]`)), core.PutOptions{ContentType: "application/json"}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("db file missing: %v", err)
	}
	reloaded, err := NewStore(ctx, path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	t.Cleanup(func() { _ = reloaded.Close() })
	got, err := core.ReadAll(ctx, reloaded, "ressourcesAO")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != `[{"title":"x"}]` {
		t.Fatalf("unexpected payload %s", got)
	}
	info, err := reloaded.Head(ctx, "ressourcesAO")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if info.ContentType != "application/json" || info.Metadata != nil || info.Size != int64(len(got)) {
		t.Fatalf("unexpected info %+v", info)
	}
	if reloaded.Driver() != core.DriverSQLite {
		t.Fatalf("unexpected driver %s", reloaded.Driver())
	}
}

func TestSQLiteStoreListDeleteMissing(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := NewStore(ctx, path)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	for _, k := range []string{"exports/b", "exports/a", "ressourcesFavoris"} {
		if _, err := store.Put(ctx, k, bytes.NewReader([]byte(k)), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}
	list, err := store.List(ctx, "exports/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Key != "exports/a" || list[1].Key != "exports/b" {
		t.Fatalf("unexpected list %+v", list)
	}
	if ok, err := store.Delete(ctx, "exports/a"); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if ok, err := store.Delete(ctx, "exports/a"); err != nil || ok {
		t.Fatalf("second delete should report false")
	}
	if _, _, err := store.Get(ctx, "exports/a"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	defer func() { _ = db.Close() }()
	var tableName string
	if err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='state'").Scan(&tableName); err != nil {
		t.Fatalf("lookup state table: %v", err)
	}
}

func TestSQLiteStoreListMatchesPrefixLiterally(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(ctx, filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	for _, k := range []string{"a%b/1", "axb/1", "a_b/1", "A%B/1"} {
		if _, err := store.Put(ctx, k, bytes.NewReader([]byte("payload-"+k)), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}
	list, err := store.List(ctx, "a%b/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Key != "a%b/1" {
		t.Fatalf("expected literal prefix match, got %+v", list)
	}
	if list[0].Size != int64(len("payload-a%b/1")) {
		t.Fatalf("unexpected size %d", list[0].Size)
	}
	if list, err := store.List(ctx, "a_b/"); err != nil || len(list) != 1 || list[0].Key != "a_b/1" {
		t.Fatalf("expected underscore matched literally, got %+v %v", list, err)
	}
}
