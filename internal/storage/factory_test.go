package storage

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestOpenDrivers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cases := []struct {
		name string
		cfg  Config
		want Driver
	}{
		{"memory", Config{Driver: "memory"}, DriverMemory},
		{"fs", Config{Driver: "fs", FSRoot: filepath.Join(dir, "fs")}, DriverFilesystem},
		{"sqlite", Config{Driver: "sqlite", SQLitePath: filepath.Join(dir, "kv.db")}, DriverSQLite},
		{"default", Config{SQLitePath: filepath.Join(dir, "default.db")}, DriverSQLite},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st, closer, err := Open(ctx, tc.cfg)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			defer func() { _ = closer.Close() }()
			if st.Driver() != tc.want {
				t.Fatalf("expected %s got %s", tc.want, st.Driver())
			}
			if _, err := st.Put(ctx, "k", bytes.NewReader([]byte("v")), PutOptions{}); err != nil {
				t.Fatalf("put: %v", err)
			}
			got, err := ReadAll(ctx, st, "k")
			if err != nil || string(got) != "v" {
				t.Fatalf("read back %q %v", got, err)
			}
			if _, err := ReadAll(ctx, st, "absent"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, _, err := Open(context.Background(), Config{Driver: "tape"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}

func TestOpenS3RequiresBucket(t *testing.T) {
	if _, _, err := Open(context.Background(), Config{Driver: "s3"}); err == nil {
		t.Fatalf("expected bucket error")
	}
}
