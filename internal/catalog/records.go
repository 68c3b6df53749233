package catalog

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"resourcebank/internal/storage"
	"resourcebank/pkg/domain"
)

// RecordStore holds the ordered catalog and writes it through to storage on
// every append. It performs no authorization.
type RecordStore struct {
	mu      sync.RWMutex
	store   storage.Store
	records []domain.Resource
	opts    options
}

// NewRecordStore returns a store seeded with the built-in catalog. Call Load
// to rehydrate persisted state.
func NewRecordStore(store storage.Store, opts ...Option) *RecordStore {
	return &RecordStore{store: store, records: domain.Seed(), opts: buildOptions(opts)}
}

// Load replaces the in-memory catalog with the persisted sequence, or with
// the seed when nothing parseable is stored. It never fails.
func (s *RecordStore) Load(ctx context.Context) []domain.Resource {
	var persisted []domain.Resource
	err := readState(ctx, s.store, RecordsKey, &persisted)
	s.mu.Lock()
	if err != nil {
		logFallback(s.opts.logger, RecordsKey, "seed", err)
		s.records = domain.Seed()
	} else {
		s.records = normalise(persisted)
		s.opts.logger.Debug("catalog loaded", zap.Int("records", len(s.records)))
	}
	s.mu.Unlock()
	return s.All()
}

// Append validates and appends the candidate, then persists the full
// sequence. It returns false, without writing, when the candidate is refused.
func (s *RecordStore) Append(ctx context.Context, c domain.Candidate) bool {
	return s.Submit(ctx, c) == nil
}

// Submit is Append with the refusal reason. A refused candidate yields a
// SubmissionError wrapping ErrInvalidSubmission.
func (s *RecordStore) Submit(ctx context.Context, c domain.Candidate) error {
	res := s.opts.rules.Evaluate(c)
	if res.HasBlocking() {
		fields := make([]string, 0, len(res.Violations))
		for _, v := range res.Violations {
			if v.Severity == domain.SeverityBlock {
				fields = append(fields, v.Field)
			}
		}
		return SubmissionError{Fields: fields}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, c.Resource())
	if err := writeState(ctx, s.store, RecordsKey, s.records); err != nil {
		s.opts.persistFailed(RecordsKey, err)
	}
	return nil
}

// All returns a copy of the catalog in insertion order.
func (s *RecordStore) All() []domain.Resource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return normalise(s.records)
}

// Len returns the number of records.
func (s *RecordStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func normalise(in []domain.Resource) []domain.Resource {
	out := make([]domain.Resource, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}
