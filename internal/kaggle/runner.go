package kaggle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// DefaultCLIBinary is the name of the official Kaggle command-line tool.
const DefaultCLIBinary = "kaggle"

// ExecResult is the captured outcome of one CLI invocation.
type ExecResult struct {
	Code   int
	Stdout string
	Stderr string
}

// Runner invokes the external CLI. An error means the process could not be
// run at all; a non-zero exit is reported through ExecResult.Code.
type Runner interface {
	Run(ctx context.Context, args []string, env []string) (ExecResult, error)
}

// ExecRunner runs the CLI binary as a subprocess.
type ExecRunner struct {
	Binary  string
	Timeout time.Duration
}

// NewExecRunner creates a runner for binary, defaulting to "kaggle".
func NewExecRunner(binary string) *ExecRunner {
	if binary == "" {
		binary = DefaultCLIBinary
	}
	return &ExecRunner{Binary: binary, Timeout: 2 * time.Minute}
}

// Run executes the binary with env appended to the parent environment.
// The parent process environment is not modified.
func (r *ExecRunner) Run(ctx context.Context, args []string, env []string) (ExecResult, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Env = append(os.Environ(), env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := ExecResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.Code = exitErr.ExitCode()
			return result, nil
		}
		return result, fmt.Errorf("run %s: %w", r.Binary, err)
	}
	return result, nil
}
