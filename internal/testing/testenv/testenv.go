// Package testenv runs a test binary against a freshly provisioned, seeded
// SurrealDB.
//
// Setup starts the store, publishes its address, seeds the fixture sets over
// one connection and closes that connection. Test files read the seeded
// records through Globals and open their own connections with Connect.
// Teardown stops the store and is safe after a failed or skipped Setup.
//
// Usage:
//
//	func TestMain(m *testing.M) {
//	    env, err := testenv.New(testenv.Options{})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    os.Exit(testenv.RunMain(m, env))
//	}
package testenv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/forgo/seedbed/internal/config"
	"github.com/forgo/seedbed/internal/database"
	"github.com/forgo/seedbed/internal/logging"
	"github.com/forgo/seedbed/internal/model"
	"github.com/forgo/seedbed/internal/provision"
	"github.com/forgo/seedbed/internal/repository"
	"github.com/forgo/seedbed/internal/seed"
	"github.com/forgo/seedbed/internal/testing/fixtures"
)

// ErrNotSetUp is returned by operations that need a running store
var ErrNotSetUp = errors.New("test environment not set up")

// Globals is what every test file sees of the seeded environment.
// GetTestData is never nil; it returns nil until seeding completes.
type Globals struct {
	SeedComplete bool
	GetTestData  func(key string) []model.Record
	TestData     seed.Snapshot
}

func emptyGlobals() Globals {
	return Globals{GetTestData: func(string) []model.Record { return nil }}
}

// Options configures an Environment. Zero values fall back to the
// environment configuration and the real SurrealDB backends.
type Options struct {
	Config       *config.Config
	Provisioner  provision.Provisioner
	Connector    database.Connector
	Fixtures     []fixtures.Set
	Logger       *zap.Logger
	Metrics      *seed.Metrics
	Namespace    string
	BaseSetup    func(ctx context.Context) error
	BaseTeardown func(ctx context.Context) error
}

// Environment owns the store and seeding state for one test run
type Environment struct {
	cfg          *config.Config
	provisioner  provision.Provisioner
	connect      database.Connector
	sets         []fixtures.Set
	logger       *zap.Logger
	metrics      *seed.Metrics
	namespace    string
	baseSetup    func(ctx context.Context) error
	baseTeardown func(ctx context.Context) error

	mu      sync.Mutex
	handle  *provision.Handle
	conn    database.Database
	seeder  *seed.Seeder
	globals Globals
}

// New builds an Environment. Nothing is started until Setup.
func New(opts Options) (*Environment, error) {
	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		l, err := logging.New(cfg.Log)
		if err != nil {
			return nil, err
		}
		logger = l
	}

	prov := opts.Provisioner
	if prov == nil {
		p, err := provision.New(cfg, logger)
		if err != nil {
			return nil, err
		}
		prov = p
	}

	connect := opts.Connector
	if connect == nil {
		connect = database.Open
	}

	sets := opts.Fixtures
	if sets == nil {
		loaded, err := fixtures.Load(cfg.Seed.FixturesDir)
		if err != nil {
			return nil, fmt.Errorf("loading fixtures: %w", err)
		}
		sets = loaded
	}

	namespace := opts.Namespace
	if namespace == "" {
		namespace = uniqueNamespace()
	}

	return &Environment{
		cfg:          cfg,
		provisioner:  prov,
		connect:      connect,
		sets:         sets,
		logger:       logger,
		metrics:      opts.Metrics,
		namespace:    namespace,
		baseSetup:    opts.BaseSetup,
		baseTeardown: opts.BaseTeardown,
		globals:      emptyGlobals(),
	}, nil
}

// uniqueNamespace generates a namespace no other run shares
func uniqueNamespace() string {
	return "seedbed_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// Setup provisions the store and seeds it. With the abort policy a failure
// is returned; with the continue policy it is logged and Globals stays empty.
func (e *Environment) Setup(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.setup(ctx)
	if err == nil {
		return nil
	}
	if e.cfg.ContinueOnSetupFailure() {
		e.logger.Error("test environment setup failed, running unseeded", zap.Error(err))
		return nil
	}
	e.logger.Error("test environment setup failed", zap.Error(err))
	return err
}

func (e *Environment) setup(ctx context.Context) error {
	if e.baseSetup != nil {
		if err := e.baseSetup(ctx); err != nil {
			return fmt.Errorf("base setup: %w", err)
		}
	}

	handle, err := e.provisioner.Start(ctx)
	if err != nil {
		return fmt.Errorf("provision: %w", err)
	}
	e.handle = handle
	if err := e.publish(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	conn, err := e.connect(ctx, e.databaseConfig())
	if err != nil {
		return fmt.Errorf("connect to %s: %w", handle.Address, err)
	}
	e.conn = conn

	seeder := e.newSeeder(conn)
	if err := seeder.SeedData(ctx); err != nil {
		return err
	}
	e.seeder = seeder
	e.globals = globalsFrom(seeder)

	if err := e.closeConn(); err != nil {
		e.logger.Warn("closing seeding connection", zap.Error(err))
	}
	e.logger.Info("test environment ready",
		zap.String("address", handle.Address),
		zap.String("namespace", e.namespace),
	)
	return nil
}

// publish exposes the address and namespace through the environment
func (e *Environment) publish() error {
	if err := provision.Publish(e.handle); err != nil {
		return err
	}
	if err := os.Setenv(config.EnvDatabaseNamespace, e.namespace); err != nil {
		return err
	}
	return os.Setenv(config.EnvDatabaseName, e.cfg.Database.Database)
}

func (e *Environment) databaseConfig() database.Config {
	cfg := database.FromConfig(e.cfg.Database)
	cfg.URL = e.handle.Address
	cfg.Namespace = e.namespace
	return cfg
}

func (e *Environment) newSeeder(conn database.Database) *seed.Seeder {
	return seed.New(fixtures.Targets(conn, e.sets),
		seed.WithLogger(e.logger),
		seed.WithConcurrency(e.cfg.Seed.Concurrency),
		seed.WithMetrics(e.metrics),
	)
}

func globalsFrom(s *seed.Seeder) Globals {
	return Globals{
		SeedComplete: s.Status() == seed.StatusCompleted,
		GetTestData:  s.GetTestData,
		TestData:     s.TestData(),
	}
}

func (e *Environment) closeConn() error {
	if e.conn == nil {
		return nil
	}
	conn := e.conn
	e.conn = nil
	return conn.Close()
}

// Teardown runs the base teardown, closes a still-open seeding connection
// and stops the store. Every step runs; their errors are joined.
func (e *Environment) Teardown(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var errs []error
	if e.baseTeardown != nil {
		if err := e.baseTeardown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("base teardown: %w", err))
		}
	}
	if err := e.closeConn(); err != nil {
		errs = append(errs, fmt.Errorf("close connection: %w", err))
	}
	if err := e.provisioner.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop store: %w", err))
	}
	e.handle = nil
	if closer, ok := e.provisioner.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close provisioner: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		e.logger.Error("test environment teardown failed", zap.Error(err))
		return err
	}
	e.logger.Info("test environment torn down")
	return nil
}

// Connect opens a new connection to the seeded namespace. The caller closes it.
func (e *Environment) Connect(ctx context.Context) (database.Database, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.handle.Running() {
		return nil, ErrNotSetUp
	}
	return e.connect(ctx, e.databaseConfig())
}

// Reset empties the seeded tables in one transaction and seeds them again
// with a fresh Seeder. Globals reflects the new snapshot on success.
func (e *Environment) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.handle.Running() {
		return ErrNotSetUp
	}

	conn, err := e.connect(ctx, e.databaseConfig())
	if err != nil {
		return fmt.Errorf("reset: connect: %w", err)
	}
	defer conn.Close()

	tables := fixtures.Tables(e.sets)
	if err := repository.ClearTables(ctx, conn, tables...); err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	seeder := e.newSeeder(conn)
	if err := seeder.SeedData(ctx); err != nil {
		e.globals = emptyGlobals()
		return fmt.Errorf("reset: %w", err)
	}
	e.seeder = seeder
	e.globals = globalsFrom(seeder)
	e.logger.Info("test environment reset", zap.Strings("tables", tables))
	return nil
}

// Globals returns the seeded data surface
func (e *Environment) Globals() Globals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.globals
}

// Handle returns the running store's handle, or nil before Setup
func (e *Environment) Handle() *provision.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.handle
}

// Namespace returns the namespace fixtures are seeded into
func (e *Environment) Namespace() string {
	return e.namespace
}

// M is the part of *testing.M that RunMain needs
type M interface {
	Run() int
}

// RunMain sets up env, runs the tests and tears env down. It returns the
// exit code for os.Exit: non-zero when setup aborts or teardown fails.
func RunMain(m M, env *Environment) int {
	ctx := context.Background()

	if err := env.Setup(ctx); err != nil {
		_ = env.Teardown(ctx)
		return 1
	}

	code := m.Run()
	if err := env.Teardown(ctx); err != nil && code == 0 {
		code = 1
	}
	return code
}
