package provision

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/forgo/seedbed/internal/config"
	"github.com/forgo/seedbed/internal/logging"
)

// commandFunc builds the command that runs the store
type commandFunc func(name string, args ...string) *exec.Cmd

// ProcessProvisioner runs the surreal binary as a child process backed by
// an in-memory store
type ProcessProvisioner struct {
	binary      string
	user        string
	password    string
	timeout     time.Duration
	stopTimeout time.Duration
	probe       Probe
	command     commandFunc
	logger      *zap.Logger

	mu     sync.Mutex
	cmd    *exec.Cmd
	exited chan struct{}
	handle *Handle
}

// NewProcessProvisioner creates a process-backed provisioner
func NewProcessProvisioner(cfg config.ProvisionConfig, db config.DatabaseConfig, probe Probe, logger *zap.Logger) *ProcessProvisioner {
	return &ProcessProvisioner{
		binary:      cfg.Binary,
		user:        db.User,
		password:    db.Password,
		timeout:     cfg.StartupTimeout,
		stopTimeout: cfg.StopTimeout,
		probe:       probe,
		command:     exec.Command,
		logger:      logging.OrNop(logger).With(zap.String("backend", config.BackendProcess)),
	}
}

// Start launches the binary on a free loopback port and waits for readiness
func (p *ProcessProvisioner) Start(ctx context.Context) (*Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd != nil {
		return nil, ErrAlreadyStarted
	}

	port, err := freePort()
	if err != nil {
		return nil, err
	}
	bind := "127.0.0.1:" + strconv.Itoa(port)

	cmd := p.command(p.binary, "start",
		"--log", "warn",
		"--bind", bind,
		"--user", p.user,
		"--pass", p.password,
		"memory",
	)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", p.binary, err)
	}

	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()
	p.cmd = cmd
	p.exited = exited

	address := wsAddress("127.0.0.1", port)
	p.logger.Info("store process started",
		zap.Int("pid", cmd.Process.Pid),
		zap.String("address", address),
	)

	if err := p.waitReady(ctx, address); err != nil {
		_ = p.stopLocked(context.WithoutCancel(ctx))
		return nil, err
	}

	handle := NewHandle(address, config.BackendProcess, strconv.Itoa(cmd.Process.Pid))
	// The handle stops reporting running as soon as the child exits
	go func() {
		<-exited
		handle.markStopped()
	}()
	p.handle = handle
	p.logger.Info("store ready", zap.String("address", address))
	return handle, nil
}

// waitReady fails fast when the process exits before becoming ready
func (p *ProcessProvisioner) waitReady(ctx context.Context, address string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	exited := p.exited
	go func() {
		select {
		case <-exited:
			cancel()
		case <-ctx.Done():
		}
	}()

	err := waitReady(ctx, p.probe, address, p.timeout)
	select {
	case <-exited:
		return fmt.Errorf("%w: %s exited during startup", ErrNotReady, p.binary)
	default:
		return err
	}
}

// Stop interrupts the process, then kills it if it does not exit in time
func (p *ProcessProvisioner) Stop(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopLocked(ctx)
}

func (p *ProcessProvisioner) stopLocked(ctx context.Context) error {
	if p.cmd == nil {
		return nil
	}
	cmd, exited := p.cmd, p.exited
	p.cmd, p.exited = nil, nil
	defer p.handle.markStopped()

	select {
	case <-exited:
		return nil
	default:
	}

	if err := cmd.Process.Signal(os.Interrupt); err != nil && !errors.Is(err, os.ErrProcessDone) {
		p.logger.Debug("interrupt failed, killing", zap.Error(err))
		_ = cmd.Process.Kill()
	}

	timer := time.NewTimer(p.stopTimeout)
	defer timer.Stop()

	select {
	case <-exited:
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-exited
	case <-timer.C:
		p.logger.Warn("store did not exit, killing", zap.Duration("timeout", p.stopTimeout))
		if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return fmt.Errorf("killing store process: %w", err)
		}
		<-exited
	}

	p.logger.Info("store process stopped", zap.Int("pid", cmd.Process.Pid))
	return nil
}
