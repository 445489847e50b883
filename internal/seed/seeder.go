// Package seed inserts fixture sets into a store and publishes what was
// persisted as a read-only snapshot.
//
// A Seeder runs at most once. SeedData inserts every record of every target
// concurrently, waits for all of them, reads each collection back in full and
// only then publishes the snapshot. Readers either see nothing or the whole
// snapshot.
//
//	s := seed.New(targets, seed.WithLogger(logger))
//	if err := s.SeedData(ctx); err != nil { ... }
//	users := s.GetTestData("users")
package seed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/forgo/seedbed/internal/logging"
	"github.com/forgo/seedbed/internal/model"
)

// Snapshot maps a collection name to the records read back after seeding
type Snapshot map[string][]model.Record

// Collection is the store access a target needs.
// repository.Collection satisfies it.
type Collection interface {
	Create(ctx context.Context, fields model.Record) (model.Record, error)
	Find(ctx context.Context, filter model.Record) ([]model.Record, error)
}

// Target is one fixture set bound to the collection it is written to
type Target struct {
	Name       string
	Records    []model.Record
	Collection Collection
}

// Option configures a Seeder
type Option func(*Seeder)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Seeder) { s.logger = logging.OrNop(l) }
}

// WithConcurrency caps in-flight inserts per collection. Zero means no cap.
func WithConcurrency(n int) Option {
	return func(s *Seeder) { s.concurrency = n }
}

// WithMetrics records inserts and snapshot sizes
func WithMetrics(m *Metrics) Option {
	return func(s *Seeder) { s.metrics = m }
}

// Seeder populates a store with fixtures once
type Seeder struct {
	targets     []Target
	concurrency int
	logger      *zap.Logger
	metrics     *Metrics

	mu       sync.RWMutex
	status   Status
	snapshot Snapshot
}

// New creates a Seeder for targets
func New(targets []Target, opts ...Option) *Seeder {
	s := &Seeder{
		targets: targets,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Status returns the current seeding status
func (s *Seeder) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// SeedData inserts every target's records and publishes the snapshot.
// It does nothing unless the Seeder is still in StatusInitial. On failure the
// status stays StatusStarted and no snapshot is published; records already
// inserted are left in place.
func (s *Seeder) SeedData(ctx context.Context) error {
	s.mu.Lock()
	if s.status != StatusInitial {
		s.mu.Unlock()
		s.logger.Debug("seeding skipped", zap.Stringer("status", s.Status()))
		return nil
	}
	s.status = StatusStarted
	s.mu.Unlock()

	start := time.Now()
	s.logger.Info("seeding started", zap.Int("collections", len(s.targets)))

	if err := s.insertAll(ctx); err != nil {
		s.logger.Error("seeding failed", zap.Error(err))
		return err
	}

	snap, err := s.readAll(ctx)
	if err != nil {
		s.logger.Error("seeding failed", zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.snapshot = snap
	s.status = StatusCompleted
	s.mu.Unlock()

	elapsed := time.Since(start)
	s.metrics.snapshot(snap, elapsed.Seconds())
	for name, records := range snap {
		s.logger.Info("collection seeded", zap.String("collection", name), zap.Int("records", len(records)))
	}
	s.logger.Info("seeding completed", zap.Duration("elapsed", elapsed))
	return nil
}

// insertAll runs one goroutine per target, each fanning out one insert per record.
// A failed insert does not cancel its siblings; only ctx does.
func (s *Seeder) insertAll(ctx context.Context) error {
	var g errgroup.Group
	for _, target := range s.targets {
		g.Go(func() error {
			return s.insertTarget(ctx, target)
		})
	}
	return g.Wait()
}

func (s *Seeder) insertTarget(ctx context.Context, target Target) error {
	var g errgroup.Group
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}

	for i, rec := range target.Records {
		g.Go(func() error {
			_, err := target.Collection.Create(ctx, rec.Clone())
			s.metrics.insert(target.Name, err)
			if err != nil {
				return fmt.Errorf("seed %s: record %d: %w", target.Name, i, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// readAll scans every target collection in full
func (s *Seeder) readAll(ctx context.Context) (Snapshot, error) {
	var mu sync.Mutex
	snap := make(Snapshot, len(s.targets))

	g, gctx := errgroup.WithContext(ctx)
	for _, target := range s.targets {
		g.Go(func() error {
			records, err := target.Collection.Find(gctx, nil)
			if err != nil {
				return fmt.Errorf("seed %s: read back: %w", target.Name, err)
			}
			if records == nil {
				records = []model.Record{}
			}
			mu.Lock()
			snap[target.Name] = records
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// GetTestData returns a copy of the records seeded for key.
// It returns nil for an unknown key or before seeding has completed.
func (s *Seeder) GetTestData(key string) []model.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.snapshot[key]
	if !ok {
		return nil
	}
	return model.CloneRecords(records)
}

// TestData returns a copy of the whole snapshot, or nil before seeding has completed
func (s *Seeder) TestData() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshot == nil {
		return nil
	}
	out := make(Snapshot, len(s.snapshot))
	for name, records := range s.snapshot {
		out[name] = model.CloneRecords(records)
	}
	return out
}
