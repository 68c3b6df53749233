package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"resourcebank/internal/admin"
	"resourcebank/internal/config"
	"resourcebank/internal/storage"
	"resourcebank/pkg/domain"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Admin:   config.AdminConfig{Password: admin.DefaultPassword},
		Storage: storage.Config{Driver: "fs", FSRoot: filepath.Join(t.TempDir(), "data")},
		Log:     config.LogConfig{Level: "info", Format: "json"},
	}
}

func TestNewPersistsAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	a, err := NewWithLogger(ctx, cfg, zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !a.Service.AddResource(ctx, domain.Candidate{Title: "T", Link: "L"}) {
		t.Fatalf("append refused")
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	b, err := NewWithLogger(ctx, cfg, zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = b.Close() }()
	if n := len(b.Service.Resources()); n != 4 {
		t.Fatalf("expected 4 records after restart, got %d", n)
	}
}

func TestHashedGateConfig(t *testing.T) {
	ctx := context.Background()
	hash, err := admin.Hash("pw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	cfg := testConfig(t)
	cfg.Admin.PasswordHash = hash
	a, err := NewWithLogger(ctx, cfg, zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = a.Close() }()
	if a.Service.Authenticate(admin.DefaultPassword) || !a.Service.Authenticate("pw") {
		t.Fatalf("hash should take precedence over plain password")
	}

	cfg.Admin.PasswordHash = "bogus"
	if _, err := NewWithLogger(ctx, cfg, zap.NewNop(), nil); err == nil {
		t.Fatalf("expected invalid hash error")
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	a, err := NewWithLogger(context.Background(), testConfig(t), zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = a.Close() }()
	h, err := a.Handler()
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Server.ShutdownTimeout = time.Second
	a, err := NewWithLogger(context.Background(), cfg, zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = a.Close() }()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := a.Serve(ctx); err != nil {
		t.Fatalf("serve: %v", err)
	}
}
