package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-units"

	"github.com/p-arndt/werkbank/internal/config"
	"github.com/p-arndt/werkbank/protocol"
)

const labelPrefix = "werkbank."

// DockerBackend provisions sandboxes as local containers. It implements the
// same Backend interface as the bridge client and is used for self-hosted
// setups; it cannot drive a code-generation agent.
type DockerBackend struct {
	docker   *client.Client
	defaults config.DockerDefaults
	logger   *slog.Logger
}

func NewDockerBackend(defaults config.DockerDefaults, logger *slog.Logger) (*DockerBackend, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("docker client: %w", err)
	}
	return &DockerBackend{docker: cli, defaults: defaults, logger: logger}, nil
}

func (b *DockerBackend) Close() error {
	return b.docker.Close()
}

func (b *DockerBackend) Ping(ctx context.Context) error {
	if _, err := b.docker.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return nil
}

// Initialize creates and starts a sandbox container for the project,
// reusing a running one if present.
func (b *DockerBackend) Initialize(ctx context.Context, projectID string) (string, error) {
	if existing, err := b.findContainer(ctx, projectID); err != nil {
		return "", err
	} else if existing != "" {
		return existing, nil
	}

	labels := map[string]string{
		labelPrefix + "project_id": projectID,
		labelPrefix + "managed":    "true",
	}

	resources := container.Resources{
		NanoCPUs:  int64(b.defaults.CPULimit * 1e9),
		Memory:    int64(b.defaults.MemLimitMB) * 1024 * 1024,
		PidsLimit: int64Ptr(int64(b.defaults.PidsLimit)),
	}

	hostCfg := &container.HostConfig{
		Resources:      resources,
		AutoRemove:     false,
		ReadonlyRootfs: b.defaults.ReadonlyRootfs,
		SecurityOpt:    []string{"no-new-privileges"},
		Mounts: []mount.Mount{
			{
				Type:   mount.TypeVolume,
				Source: "werkbank-ws-" + projectID,
				Target: "/workspace",
			},
			{
				Type:   mount.TypeTmpfs,
				Target: "/tmp",
				TmpfsOptions: &mount.TmpfsOptions{
					SizeBytes: 512 * units.MiB,
				},
			},
		},
	}
	if b.defaults.NetworkMode != "" {
		hostCfg.NetworkMode = container.NetworkMode(b.defaults.NetworkMode)
	}

	containerCfg := &container.Config{
		Image:  b.defaults.Image,
		Labels: labels,
		Tty:    false,
		Cmd:    []string{"sleep", "infinity"},
	}

	resp, err := b.docker.ContainerCreate(ctx, containerCfg, hostCfg, nil, nil, "werkbank-"+projectID)
	if err != nil {
		return "", fmt.Errorf("%w: container create: %v", ErrProvisioning, err)
	}

	if err := b.docker.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		// Clean up on start failure.
		b.docker.ContainerRemove(ctx, resp.ID, container.RemoveOptions{Force: true})
		return "", fmt.Errorf("%w: container start: %v", ErrProvisioning, err)
	}

	b.logger.Info("sandbox container started", "project_id", projectID, "container_id", resp.ID[:12])
	return resp.ID, nil
}

func (b *DockerBackend) ExecuteCommand(ctx context.Context, projectID, command string, opts ExecOpts) (*ExecResult, error) {
	containerID, err := b.findContainer(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if containerID == "" {
		return nil, fmt.Errorf("%w: project %s", ErrSandboxNotFound, projectID)
	}

	execCfg := container.ExecOptions{
		Cmd:          []string{"sh", "-lc", command},
		WorkingDir:   "/workspace",
		AttachStdout: !opts.Background,
		AttachStderr: !opts.Background,
		Detach:       opts.Background,
	}

	execResp, err := b.docker.ContainerExecCreate(ctx, containerID, execCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: exec create: %v", ErrTransport, err)
	}

	if opts.Background {
		if err := b.docker.ContainerExecStart(ctx, execResp.ID, container.ExecStartOptions{Detach: true}); err != nil {
			return nil, fmt.Errorf("%w: exec start: %v", ErrTransport, err)
		}
		return &ExecResult{Success: true, Ref: execResp.ID}, nil
	}

	if opts.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(opts.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	start := time.Now()
	attachResp, err := b.docker.ContainerExecAttach(ctx, execResp.ID, container.ExecAttachOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: exec attach: %v", ErrTransport, err)
	}
	defer attachResp.Close()

	// Demultiplex Docker's stdout/stderr stream (8-byte headers).
	var stdoutBuf, stderrBuf bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdoutBuf, &stderrBuf, attachResp.Reader); err != nil {
		if ctx.Err() != nil {
			// Timeout maps to a command failure, not a distinct error kind.
			return &ExecResult{
				Success:    false,
				ExitCode:   -1,
				Output:     "command timed out",
				DurationMs: time.Since(start).Milliseconds(),
			}, nil
		}
		return nil, fmt.Errorf("%w: exec read: %v", ErrTransport, err)
	}

	inspect, err := b.docker.ContainerExecInspect(ctx, execResp.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: exec inspect: %v", ErrTransport, err)
	}

	output := stdoutBuf.String()
	if stderrBuf.Len() > 0 {
		output += stderrBuf.String()
	}

	return &ExecResult{
		Success:    inspect.ExitCode == 0,
		ExitCode:   inspect.ExitCode,
		Output:     output,
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}

// GetHost returns a localhost URL; local containers publish the preview
// port on the daemon host.
func (b *DockerBackend) GetHost(ctx context.Context, projectID string, port int) (string, error) {
	containerID, err := b.findContainer(ctx, projectID)
	if err != nil {
		return "", err
	}
	if containerID == "" {
		return "", fmt.Errorf("%w: project %s", ErrSandboxNotFound, projectID)
	}

	info, err := b.docker.ContainerInspect(ctx, containerID)
	if err != nil {
		return "", fmt.Errorf("%w: container inspect: %v", ErrTransport, err)
	}

	if info.NetworkSettings != nil {
		for portSpec, bindings := range info.NetworkSettings.Ports {
			if portSpec.Int() == port && len(bindings) > 0 {
				return "http://localhost:" + bindings[0].HostPort, nil
			}
		}
	}
	return "http://localhost:" + strconv.Itoa(port), nil
}

// Session state lives with the generation provider; the Docker backend has
// none.
func (b *DockerBackend) GetSession(ctx context.Context, projectID string) (string, error) {
	return "", nil
}

func (b *DockerBackend) SetSession(ctx context.Context, projectID, sessionID string) error {
	return nil
}

func (b *DockerBackend) Generate(ctx context.Context, req protocol.GenerateRequest, events chan<- protocol.GenerationEvent) error {
	return fmt.Errorf("%w: docker backend", ErrGenerateUnsupported)
}

func (b *DockerBackend) Teardown(ctx context.Context, projectID string) error {
	containerID, err := b.findContainer(ctx, projectID)
	if err != nil {
		return err
	}
	if containerID == "" {
		return nil
	}

	err = b.docker.ContainerRemove(ctx, containerID, container.RemoveOptions{
		Force:         true,
		RemoveVolumes: true,
	})
	if err != nil && !client.IsErrNotFound(err) {
		return fmt.Errorf("%w: container remove: %v", ErrTransport, err)
	}

	// Also remove the workspace volume.
	b.docker.VolumeRemove(ctx, "werkbank-ws-"+projectID, true)

	b.logger.Info("sandbox container removed", "project_id", projectID, "container_id", containerID[:12])
	return nil
}

func (b *DockerBackend) findContainer(ctx context.Context, projectID string) (string, error) {
	f := filters.NewArgs()
	f.Add("label", labelPrefix+"project_id="+projectID)

	containers, err := b.docker.ContainerList(ctx, container.ListOptions{Filters: f})
	if err != nil {
		return "", fmt.Errorf("%w: container list: %v", ErrTransport, err)
	}
	if len(containers) == 0 {
		return "", nil
	}
	return containers[0].ID, nil
}

func int64Ptr(v int64) *int64 {
	return &v
}
