// Package app assembles the catalog service and its adapters from
// configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"resourcebank/internal/adapters/httpapi"
	"resourcebank/internal/admin"
	"resourcebank/internal/config"
	"resourcebank/internal/core"
	"resourcebank/internal/logging"
	"resourcebank/internal/storage"
)

// App owns the process-wide service and everything that must be closed with it.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Service  *core.Service
	Registry *prometheus.Registry

	closers []io.Closer
}

// New builds an App from cfg. The caller must Close it.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger, logCloser, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		return nil, err
	}
	return NewWithLogger(ctx, cfg, logger, logCloser)
}

// NewWithLogger is New with a caller-supplied logger. logCloser may be nil.
func NewWithLogger(ctx context.Context, cfg *config.Config, logger *zap.Logger, logCloser io.Closer) (*App, error) {
	a := &App{Config: cfg, Logger: logger}
	if logCloser != nil {
		a.closers = append(a.closers, logCloser)
	}

	gate, err := buildGate(cfg.Admin)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	store, storeCloser, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("open storage: %w", err)
	}
	a.closers = append([]io.Closer{storeCloser}, a.closers...)

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := core.NewPrometheusMetricsRecorder(a.Registry)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.Service, err = core.Open(ctx, core.Options{
		Store:          store,
		Gate:           gate,
		Logger:         logger,
		Metrics:        metrics,
		ArchiveExports: cfg.Export.Archive,
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func buildGate(cfg config.AdminConfig) (*admin.Gate, error) {
	if cfg.PasswordHash != "" {
		g, err := admin.NewHashedGate(cfg.PasswordHash)
		if err != nil {
			return nil, fmt.Errorf("admin password hash: %w", err)
		}
		return g, nil
	}
	return admin.NewGate(cfg.Password), nil
}

// Close releases storage connections and flushes logs.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Handler builds the HTTP API for the app.
func (a *App) Handler() (http.Handler, error) {
	sessions, err := httpapi.NewSessions(a.Config.Server.SessionKey, a.Config.Server.SecureCookies)
	if err != nil {
		return nil, err
	}
	return httpapi.NewHandler(a.Service, httpapi.Options{
		Logger:   a.Logger.Named("http"),
		Sessions: sessions,
		Gatherer: a.Registry,
	})
}

// Serve runs the HTTP API until ctx is cancelled, then shuts down within the
// configured timeout.
func (a *App) Serve(ctx context.Context) error {
	handler, err := a.Handler()
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              a.Config.Server.Addr,
		Handler:           handler,
		ReadTimeout:       a.Config.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      a.Config.Server.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()
	a.Logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
