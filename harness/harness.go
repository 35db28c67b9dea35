package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/weiihann/parbench/workload"
)

// Launcher starts worker processes from a fixed command.
type Launcher struct {
	Command CommandConfig
	Logger  *slog.Logger
}

// NewLauncher creates a Launcher. Env in cmd is appended to the
// inherited environment of every worker.
func NewLauncher(cmd CommandConfig, logger *slog.Logger) *Launcher {
	return &Launcher{
		Command: cmd,
		Logger:  logger.With(slog.String("component", "harness")),
	}
}

// Process is a started worker. Call Wait exactly once.
type Process struct {
	id     int
	req    Request
	cmd    *exec.Cmd
	stdout bytes.Buffer
	stderr bytes.Buffer
	logger *slog.Logger
}

// Start launches a worker for req without waiting for it.
func (l *Launcher) Start(ctx context.Context, id int, req Request) (*Process, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	args := make([]string, 0, len(l.Command.ExtraArgs))
	args = append(args, l.Command.ExtraArgs...)

	cmd := exec.CommandContext(ctx, l.Command.Binary, args...)
	if len(l.Command.Env) > 0 {
		cmd.Env = append(os.Environ(), l.Command.Env...)
	}

	p := &Process{
		id:     id,
		req:    req,
		cmd:    cmd,
		logger: l.Logger.With(slog.Int("worker", id)),
	}

	cmd.Stdin = bytes.NewReader(payload)
	cmd.Stdout = &p.stdout
	cmd.Stderr = &p.stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start worker %d: %w", id, err)
	}

	p.logger.Debug("worker started",
		slog.Int("pid", cmd.Process.Pid),
		slog.Int("start", req.Start),
		slog.Int("size", req.Size),
	)

	return p, nil
}

// Wait blocks until the worker exits and decodes its result.
func (p *Process) Wait() (workload.Result, error) {
	if err := p.cmd.Wait(); err != nil {
		return workload.Result{}, fmt.Errorf(
			"worker %d failed: %w\nstderr: %s",
			p.id, err, p.stderr.String(),
		)
	}

	result, err := parseResult(&p.stdout)
	if err != nil {
		return workload.Result{}, fmt.Errorf(
			"parse worker %d output: %w\nstdout: %s",
			p.id, err, p.stdout.String(),
		)
	}

	if result.Start != p.req.Start || result.Size != p.req.Size {
		return workload.Result{}, fmt.Errorf(
			"worker %d answered for chunk [%d+%d], want [%d+%d]",
			p.id, result.Start, result.Size, p.req.Start, p.req.Size,
		)
	}

	p.logger.Debug("worker finished", slog.Int("count", result.Count))

	return result, nil
}

// Kill terminates the worker. The caller must still call Wait to release
// its resources.
func (p *Process) Kill() {
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
}
