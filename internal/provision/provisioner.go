// Package provision starts and stops the disposable SurrealDB instance a test
// run seeds and queries.
//
// Two backends are available:
//
//   - process: runs the surreal binary as a child process with an in-memory store
//   - docker: runs the surrealdb/surrealdb image through the Docker Engine API
//
// Start blocks until the store accepts an authenticated connection and
// returns a Handle carrying its address. Publish copies that address into
// DB_URL for code that only reads configuration from the environment.
//
// Usage:
//
//	p, err := provision.New(cfg, logger)
//	handle, err := p.Start(ctx)
//	defer p.Stop(ctx)
//	provision.Publish(handle)
package provision

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync/atomic"
	"time"

	fileatomic "github.com/natefinch/atomic"
	"go.uber.org/zap"

	"github.com/forgo/seedbed/internal/config"
	"github.com/forgo/seedbed/internal/database"
)

var (
	// ErrAlreadyStarted is returned by a second Start on the same provisioner.
	ErrAlreadyStarted = errors.New("store already started")

	// ErrNotReady is returned when the store does not accept connections in time.
	ErrNotReady = errors.New("store not ready")
)

// probeInterval is the delay between readiness attempts
const probeInterval = 100 * time.Millisecond

// Provisioner manages the lifetime of one ephemeral store
type Provisioner interface {
	// Start launches the store and waits until it is ready
	Start(ctx context.Context) (*Handle, error)

	// Stop terminates the store. It returns nil when nothing is running.
	Stop(ctx context.Context) error
}

// Handle describes a running store
type Handle struct {
	Address   string
	Backend   string
	ID        string
	StartedAt time.Time

	running atomic.Bool
}

// NewHandle returns a handle for a store that is up
func NewHandle(address, backend, id string) *Handle {
	h := &Handle{Address: address, Backend: backend, ID: id, StartedAt: time.Now()}
	h.running.Store(true)
	return h
}

// Running reports whether the store is still up
func (h *Handle) Running() bool {
	return h != nil && h.running.Load()
}

func (h *Handle) markStopped() {
	if h != nil {
		h.running.Store(false)
	}
}

// Probe checks once whether a store at address accepts connections
type Probe func(ctx context.Context, address string) error

// DatabaseProbe returns a probe that opens an authenticated connection with
// creds, pings it and closes it again
func DatabaseProbe(creds database.Config) Probe {
	return func(ctx context.Context, address string) error {
		cfg := creds
		cfg.URL = address
		db, err := database.Open(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		return db.Ping(ctx)
	}
}

// New returns the provisioner for the configured backend
func New(cfg *config.Config, logger *zap.Logger) (Provisioner, error) {
	probe := DatabaseProbe(database.FromConfig(cfg.Database))
	switch cfg.Provision.Backend {
	case config.BackendProcess:
		return NewProcessProvisioner(cfg.Provision, cfg.Database, probe, logger), nil
	case config.BackendDocker:
		return NewDockerProvisioner(cfg.Provision, cfg.Database, probe, logger)
	default:
		return nil, fmt.Errorf("unknown provision backend %q", cfg.Provision.Backend)
	}
}

// Publish makes the handle's address discoverable through DB_URL
func Publish(h *Handle) error {
	if h == nil || h.Address == "" {
		return database.ErrNoAddress
	}
	return os.Setenv(config.EnvDatabaseURL, h.Address)
}

// WriteAddressFile atomically writes the handle's address to path
func WriteAddressFile(path string, h *Handle) error {
	if h == nil || h.Address == "" {
		return database.ErrNoAddress
	}
	if err := fileatomic.WriteFile(path, strings.NewReader(h.Address+"\n")); err != nil {
		return fmt.Errorf("writing address file: %w", err)
	}
	return nil
}

// waitReady polls probe until it succeeds, ctx ends or timeout elapses
func waitReady(ctx context.Context, probe Probe, address string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lastErr error
	for {
		attemptCtx, attemptCancel := context.WithTimeout(ctx, 2*time.Second)
		lastErr = probe(attemptCtx, address)
		attemptCancel()
		if lastErr == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w at %s after %s: %v", ErrNotReady, address, timeout, lastErr)
		case <-time.After(probeInterval):
		}
	}
}

// freePort asks the kernel for an unused loopback port
func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("finding free port: %w", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

func wsAddress(host string, port int) string {
	return fmt.Sprintf("ws://%s", net.JoinHostPort(host, fmt.Sprint(port)))
}
