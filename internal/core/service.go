// Package core wires the catalog engine into a single process-wide service
// used by every adapter.
package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"resourcebank/internal/admin"
	"resourcebank/internal/catalog"
	"resourcebank/internal/export"
	"resourcebank/internal/storage"
	"resourcebank/pkg/domain"
)

// ErrArchiveDisabled is returned by ArchiveExport when archiving is off.
var ErrArchiveDisabled = errors.New("core: export archiving disabled")

// Options configures Open.
type Options struct {
	Store          storage.Store
	Gate           *admin.Gate
	Logger         *zap.Logger
	Metrics        MetricsRecorder
	ArchiveExports bool
	Rules          *domain.RulesEngine
	NowFunc        func() time.Time
}

// Entry is a visible record annotated with its favorite marker.
type Entry struct {
	domain.Resource
	Favorite bool `json:"favorite"`
}

// Service holds the catalog state for the lifetime of the process. Every
// operation runs under one mutex so concurrent adapters never interleave.
type Service struct {
	mu        sync.Mutex
	records   *catalog.RecordStore
	favorites *catalog.Favorites
	gate      *admin.Gate
	archiver  *export.Archiver
	logger    *zap.Logger
	metrics   MetricsRecorder
	now       func() time.Time
}

// Open builds the service and loads both stores once.
func Open(ctx context.Context, opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, errors.New("core: storage is required")
	}
	s := &Service{
		gate:    opts.Gate,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		now:     opts.NowFunc,
	}
	if s.gate == nil {
		s.gate = admin.NewGate(admin.DefaultPassword)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics = NoopMetrics()
	}
	if s.now == nil {
		s.now = time.Now
	}
	catalogOpts := []catalog.Option{
		catalog.WithLogger(s.logger.Named("catalog")),
		catalog.WithRules(opts.Rules),
		catalog.WithPersistErrorHandler(func(key string, _ error) { s.metrics.PersistFailed(key) }),
	}
	s.records = catalog.NewRecordStore(opts.Store, catalogOpts...)
	s.favorites = catalog.NewFavorites(opts.Store, catalogOpts...)
	if opts.ArchiveExports {
		s.archiver = export.NewArchiver(opts.Store)
	}

	start := s.now()
	s.records.Load(ctx)
	s.favorites.Load(ctx)
	s.metrics.Observe(ctx, OpLoad, true, s.now().Sub(start))
	s.logger.Info("catalog opened",
		zap.String("driver", string(opts.Store.Driver())),
		zap.Int("records", s.records.Len()),
		zap.Int("favorites", s.favorites.Len()),
		zap.Bool("archive_exports", opts.ArchiveExports),
	)
	return s, nil
}

func (s *Service) observe(ctx context.Context, op string, start time.Time, success bool) {
	s.metrics.Observe(ctx, op, success, s.now().Sub(start))
}

// Resources returns the full catalog in insertion order.
func (s *Service) Resources() []domain.Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records.All()
}

// Visible recomputes the visible set for criteria.
func (s *Service) Visible(criteria domain.Criteria) []domain.Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visibleLocked(criteria)
}

func (s *Service) visibleLocked(criteria domain.Criteria) []domain.Resource {
	start := s.now()
	out := catalog.Visible(s.records.All(), s.favorites, criteria)
	s.observe(context.Background(), OpVisible, start, true)
	return out
}

// Browse is Visible with each row's favorite marker.
func (s *Service) Browse(criteria domain.Criteria) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	visible := s.visibleLocked(criteria)
	out := make([]Entry, len(visible))
	for i, r := range visible {
		out[i] = Entry{Resource: r, Favorite: s.favorites.Contains(r.Title)}
	}
	return out
}

// Types returns the distinct type values of the current catalog.
func (s *Service) Types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return catalog.DistinctTypes(s.records.All())
}

// Competencies returns the fixed competency vocabulary.
func (s *Service) Competencies() []string { return catalog.Competencies() }

// IsFavorite reports whether title is favorited.
func (s *Service) IsFavorite(title string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.favorites.Contains(title)
}

// Favorites returns the favorited titles.
func (s *Service) Favorites() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.favorites.Titles()
}

// ToggleFavorite flips title's membership and returns the new state.
func (s *Service) ToggleFavorite(ctx context.Context, title string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := s.now()
	fav := s.favorites.Toggle(ctx, title)
	s.observe(ctx, OpToggleFavorite, start, true)
	s.logger.Debug("favorite toggled", zap.String("title", title), zap.Bool("favorite", fav))
	return fav
}

// Authenticate checks password against the admin gate.
func (s *Service) Authenticate(password string) bool {
	return s.CheckAdmin(password) == nil
}

// CheckAdmin is Authenticate reporting admin.ErrAuthentication on mismatch.
func (s *Service) CheckAdmin(password string) error {
	start := s.now()
	err := s.gate.Check(password)
	s.observe(context.Background(), OpAuthenticate, start, err == nil)
	if err != nil {
		s.logger.Info("admin authentication failed")
	}
	return err
}

// AddResource appends a candidate. It returns false when the candidate is
// refused. Callers are responsible for gating this behind Authenticate.
func (s *Service) AddResource(ctx context.Context, c domain.Candidate) bool {
	return s.SubmitResource(ctx, c) == nil
}

// SubmitResource is AddResource returning the refusal reason, which wraps
// catalog.ErrInvalidSubmission.
func (s *Service) SubmitResource(ctx context.Context, c domain.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := s.now()
	err := s.records.Submit(ctx, c)
	s.observe(ctx, OpAddResource, start, err == nil)
	if err != nil {
		s.logger.Info("resource refused", zap.String("title", c.Title), zap.Error(err))
		return err
	}
	s.logger.Info("resource added", zap.String("title", c.Title), zap.Int("records", s.records.Len()))
	return nil
}

// ExportCSV renders the visible set for criteria. Zero criteria export the
// full catalog.
func (s *Service) ExportCSV(criteria domain.Criteria) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.visibleLocked(criteria)
	start := s.now()
	out := export.ToCSV(rows)
	s.observe(context.Background(), OpExportCSV, start, true)
	return out
}

// ArchiveExport renders and stores an export artifact.
func (s *Service) ArchiveExport(ctx context.Context, criteria domain.Criteria) (export.Artifact, error) {
	if s.archiver == nil {
		return export.Artifact{}, ErrArchiveDisabled
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.visibleLocked(criteria)
	start := s.now()
	art, err := s.archiver.Archive(ctx, export.ToCSV(rows), len(rows))
	s.observe(ctx, OpArchiveExport, start, err == nil)
	if err != nil {
		s.logger.Warn("export archive failed", zap.Error(err))
		return export.Artifact{}, err
	}
	s.logger.Info("export archived", zap.String("key", art.Key), zap.Int("records", art.Records))
	return art, nil
}

// OpenExport returns the CSV of an archived export. Unknown ids wrap
// storage.ErrNotFound.
func (s *Service) OpenExport(ctx context.Context, id string) (string, error) {
	if s.archiver == nil {
		return "", ErrArchiveDisabled
	}
	start := s.now()
	body, err := s.archiver.Open(ctx, id)
	s.observe(ctx, OpOpenExport, start, err == nil)
	if err != nil {
		s.logger.Debug("export open failed", zap.String("id", id), zap.Error(err))
		return "", err
	}
	return body, nil
}

// Exports lists archived export artifacts.
func (s *Service) Exports(ctx context.Context) ([]export.Artifact, error) {
	if s.archiver == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archiver.List(ctx)
}
