package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Environment variables through which the exec invoker hands the slice
// context to the external test runner.
const (
	// EnvResultsFile names the file where the runner must persist its
	// structured output.
	EnvResultsFile = "MATRIXCTL_RESULTS_FILE"
	// EnvPattern carries the original selection pattern for auditability.
	EnvPattern = "MATRIXCTL_PATTERN"
)

// ExecInvoker invokes the external test runner as a subprocess, once per
// batch. The matched environment names are joined into a single
// space-separated argument appended after Args, matching the batch calling
// convention of matrix runners such as tox. The result-file path and the
// original pattern are passed through the environment.
type ExecInvoker struct {
	// Command is the runner executable.
	Command string
	// Args are fixed arguments placed before the environment batch.
	Args []string
	// Stdout and Stderr receive the runner's output; they default to the
	// process's own streams. The runner is long-running, so output is
	// streamed rather than buffered.
	Stdout io.Writer
	Stderr io.Writer
	// Env holds extra KEY=VALUE pairs for the runner process.
	Env []string
}

// Invoke runs the external command and blocks until it exits. Any non-zero
// exit is returned as an error wrapping the *exec.ExitError so the caller
// can propagate the status verbatim.
func (e *ExecInvoker) Invoke(ctx context.Context, pattern string, environments []string, resultPath string) error {
	if e.Command == "" {
		return errors.New("no test runner command configured")
	}

	batch := strings.Join(environments, " ")
	args := make([]string, 0, len(e.Args)+1)
	args = append(args, e.Args...)
	args = append(args, batch)

	cmd := exec.CommandContext(ctx, e.Command, args...)
	cmd.Env = append(os.Environ(),
		EnvResultsFile+"="+resultPath,
		EnvPattern+"="+pattern,
	)
	cmd.Env = append(cmd.Env, e.Env...)

	cmd.Stdout = e.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = e.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("test runner %q failed: %w", e.Command, err)
	}
	return nil
}

// ExitStatus extracts the exit code the external runner reported, for
// verbatim propagation. Returns fallback when err does not carry one.
func ExitStatus(err error, fallback int) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return fallback
}
