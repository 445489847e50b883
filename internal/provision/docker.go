package provision

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/forgo/seedbed/internal/config"
	"github.com/forgo/seedbed/internal/logging"
)

// storePort is the port SurrealDB listens on inside the container
const storePort = nat.Port("8000/tcp")

// runLabel tags containers started by seedbed
const runLabel = "seedbed.run"

// engine is the subset of the Docker Engine API the provisioner needs
type engine interface {
	Pull(ctx context.Context, ref string) error
	Create(ctx context.Context, name string, cfg *container.Config, host *container.HostConfig) (string, error)
	Start(ctx context.Context, id string) error
	HostPort(ctx context.Context, id string, port nat.Port) (string, error)
	Remove(ctx context.Context, id string, timeout time.Duration) error
	Close() error
}

// DockerProvisioner runs the SurrealDB image as a throwaway container
// published on a random loopback port
type DockerProvisioner struct {
	image       string
	user        string
	password    string
	timeout     time.Duration
	stopTimeout time.Duration
	probe       Probe
	engine      engine
	logger      *zap.Logger

	mu          sync.Mutex
	containerID string
	handle      *Handle
}

// NewDockerProvisioner creates a docker-backed provisioner using the
// environment's Docker daemon settings
func NewDockerProvisioner(cfg config.ProvisionConfig, db config.DatabaseConfig, probe Probe, logger *zap.Logger) (*DockerProvisioner, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("creating docker client: %w", err)
	}
	return newDockerProvisioner(cfg, db, probe, &dockerEngine{cli: cli}, logger), nil
}

func newDockerProvisioner(cfg config.ProvisionConfig, db config.DatabaseConfig, probe Probe, eng engine, logger *zap.Logger) *DockerProvisioner {
	return &DockerProvisioner{
		image:       cfg.Image,
		user:        db.User,
		password:    db.Password,
		timeout:     cfg.StartupTimeout,
		stopTimeout: cfg.StopTimeout,
		probe:       probe,
		engine:      eng,
		logger:      logging.OrNop(logger).With(zap.String("backend", config.BackendDocker)),
	}
}

// Start pulls the image, runs a container and waits for readiness.
// A container that never becomes ready is removed before returning.
func (p *DockerProvisioner) Start(ctx context.Context) (*Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.containerID != "" {
		return nil, ErrAlreadyStarted
	}

	if err := p.engine.Pull(ctx, p.image); err != nil {
		// A cached image is still usable offline
		p.logger.Warn("image pull failed, using local image", zap.String("image", p.image), zap.Error(err))
	}

	runID := uuid.NewString()
	name := "seedbed-" + runID[:8]
	cfg := &container.Config{
		Image: p.image,
		Cmd: []string{"start",
			"--log", "warn",
			"--bind", "0.0.0.0:8000",
			"--user", p.user,
			"--pass", p.password,
			"memory",
		},
		ExposedPorts: nat.PortSet{storePort: struct{}{}},
		Labels:       map[string]string{runLabel: runID},
	}
	host := &container.HostConfig{
		PortBindings: nat.PortMap{
			storePort: []nat.PortBinding{{HostIP: "127.0.0.1", HostPort: ""}},
		},
	}

	id, err := p.engine.Create(ctx, name, cfg, host)
	if err != nil {
		return nil, fmt.Errorf("creating container from %s: %w", p.image, err)
	}
	p.containerID = id

	if err := p.engine.Start(ctx, id); err != nil {
		_ = p.stopLocked(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("starting container %s: %w", name, err)
	}

	hostPort, err := p.engine.HostPort(ctx, id, storePort)
	if err != nil {
		_ = p.stopLocked(context.WithoutCancel(ctx))
		return nil, err
	}
	port, err := strconv.Atoi(hostPort)
	if err != nil {
		_ = p.stopLocked(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("invalid host port %q: %w", hostPort, err)
	}

	address := wsAddress("127.0.0.1", port)
	p.logger.Info("store container started",
		zap.String("container", name),
		zap.String("address", address),
	)

	if err := waitReady(ctx, p.probe, address, p.timeout); err != nil {
		_ = p.stopLocked(context.WithoutCancel(ctx))
		return nil, err
	}

	p.handle = NewHandle(address, config.BackendDocker, id)
	p.logger.Info("store ready", zap.String("address", address))
	return p.handle, nil
}

// Stop stops and removes the container
func (p *DockerProvisioner) Stop(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopLocked(ctx)
}

func (p *DockerProvisioner) stopLocked(ctx context.Context) error {
	if p.containerID == "" {
		return nil
	}
	id := p.containerID
	p.containerID = ""
	p.handle.markStopped()

	if err := p.engine.Remove(ctx, id, p.stopTimeout); err != nil {
		return fmt.Errorf("removing container %s: %w", id, err)
	}
	p.logger.Info("store container removed", zap.String("container", id))
	return nil
}

// Close releases the docker client
func (p *DockerProvisioner) Close() error {
	return p.engine.Close()
}

// dockerEngine adapts the Docker SDK client to engine
type dockerEngine struct {
	cli *client.Client
}

func (e *dockerEngine) Pull(ctx context.Context, ref string) error {
	rc, err := e.cli.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return err
	}
	defer rc.Close()
	// The pull only completes once the progress stream is drained
	_, err = io.Copy(io.Discard, rc)
	return err
}

func (e *dockerEngine) Create(ctx context.Context, name string, cfg *container.Config, host *container.HostConfig) (string, error) {
	resp, err := e.cli.ContainerCreate(ctx, cfg, host, nil, nil, name)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (e *dockerEngine) Start(ctx context.Context, id string) error {
	return e.cli.ContainerStart(ctx, id, container.StartOptions{})
}

func (e *dockerEngine) HostPort(ctx context.Context, id string, port nat.Port) (string, error) {
	for attempt := 0; attempt < 20; attempt++ {
		info, err := e.cli.ContainerInspect(ctx, id)
		if err != nil {
			return "", fmt.Errorf("inspecting container %s: %w", id, err)
		}
		if info.NetworkSettings != nil {
			for _, b := range info.NetworkSettings.Ports[port] {
				if b.HostPort != "" {
					return b.HostPort, nil
				}
			}
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(probeInterval):
		}
	}
	return "", fmt.Errorf("container %s has no host binding for %s", id, port)
}

func (e *dockerEngine) Remove(ctx context.Context, id string, timeout time.Duration) error {
	seconds := int(timeout.Seconds())
	if err := e.cli.ContainerStop(ctx, id, container.StopOptions{Timeout: &seconds}); err != nil && !client.IsErrNotFound(err) {
		return err
	}
	err := e.cli.ContainerRemove(ctx, id, container.RemoveOptions{Force: true, RemoveVolumes: true})
	if client.IsErrNotFound(err) {
		return nil
	}
	return err
}

func (e *dockerEngine) Close() error {
	return e.cli.Close()
}
