package harness

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// WorkerSubcommand is the CLI subcommand that runs Serve on stdin/stdout.
const WorkerSubcommand = "worker"

// CommandConfig holds the resolved command, extra arguments, and
// environment variables needed to start a worker process.
type CommandConfig struct {
	Binary    string
	ExtraArgs []string
	Env       []string
}

// SelfCommand returns a CommandConfig that re-executes the running binary
// as a worker.
func SelfCommand() (CommandConfig, error) {
	exe, err := os.Executable()
	if err != nil {
		return CommandConfig{}, fmt.Errorf("resolve executable: %w", err)
	}

	return CommandConfig{
		Binary:    exe,
		ExtraArgs: []string{WorkerSubcommand},
	}, nil
}

// ResolveCommand returns the worker command for binary. An empty binary
// means the running executable. Otherwise binary is looked up in PATH
// (when it has no separator) and made absolute; it must accept the
// worker subcommand.
func ResolveCommand(binary string) (CommandConfig, error) {
	if binary == "" {
		return SelfCommand()
	}

	path, err := exec.LookPath(binary)
	if err != nil {
		return CommandConfig{}, fmt.Errorf("worker binary %s: %w", binary, err)
	}

	path, err = filepath.Abs(path)
	if err != nil {
		return CommandConfig{}, fmt.Errorf("resolve worker binary %s: %w", binary, err)
	}

	return CommandConfig{
		Binary:    path,
		ExtraArgs: []string{WorkerSubcommand},
	}, nil
}
