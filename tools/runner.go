// Shell command runner.
//
// Information Hiding:
// - Process spawning, working directory and timeout hidden
// - Per-stream capture caps hidden; overflow terminates the process

package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Limits applied by ShellRunner when not configured.
const (
	DefaultCommandTimeout   = 300 * time.Second
	DefaultMaxCommandOutput = 10 * 1024 * 1024
)

// ErrOutputLimit reports that a command wrote more than the capture cap.
var ErrOutputLimit = errors.New("output limit exceeded")

// CommandResult is whatever a command wrote before it finished or was stopped.
type CommandResult struct {
	Stdout string
	Stderr string
}

// CommandRunner runs a shell command line.
type CommandRunner interface {
	Run(ctx context.Context, command string) (CommandResult, error)
}

// ShellRunner runs commands with sh -c inside a fixed directory.
type ShellRunner struct {
	Dir            string
	Timeout        time.Duration
	MaxOutputBytes int
}

// NewShellRunner creates a runner rooted at dir with default limits.
func NewShellRunner(dir string) *ShellRunner {
	return &ShellRunner{
		Dir:            dir,
		Timeout:        DefaultCommandTimeout,
		MaxOutputBytes: DefaultMaxCommandOutput,
	}
}

// Run executes command and returns its output. Partial output is returned
// alongside any error.
func (r *ShellRunner) Run(ctx context.Context, command string) (CommandResult, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	maxBytes := r.MaxOutputBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxCommandOutput
	}

	timeoutCtx, cancelTimeout := context.WithTimeout(ctx, timeout)
	defer cancelTimeout()
	runCtx, cancel := context.WithCancelCause(timeoutCtx)
	defer cancel(nil)

	overflow := func() { cancel(ErrOutputLimit) }
	stdout := &cappedBuffer{max: maxBytes, onOverflow: overflow}
	stderr := &cappedBuffer{max: maxBytes, onOverflow: overflow}

	cmd := exec.CommandContext(runCtx, "sh", "-c", command)
	cmd.Dir = r.Dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	// Background children may keep the pipes open after sh is killed.
	cmd.WaitDelay = 2 * time.Second

	err := cmd.Run()
	result := CommandResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return result, nil
	}

	switch cause := context.Cause(runCtx); {
	case errors.Is(cause, ErrOutputLimit):
		return result, fmt.Errorf("%w: more than %d bytes", ErrOutputLimit, maxBytes)
	case ctx.Err() != nil:
		return result, fmt.Errorf("command cancelled: %w", ctx.Err())
	case errors.Is(cause, context.DeadlineExceeded):
		return result, fmt.Errorf("command timed out after %s", timeout)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return result, fmt.Errorf("command failed with exit code %d", exitErr.ExitCode())
	}
	return result, fmt.Errorf("failed to execute command: %w", err)
}

// cappedBuffer keeps the first max bytes written and drops the rest.
type cappedBuffer struct {
	buf        bytes.Buffer
	max        int
	overflowed bool
	onOverflow func()
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	remaining := c.max - c.buf.Len()
	if len(p) <= remaining {
		return c.buf.Write(p)
	}
	if remaining > 0 {
		c.buf.Write(p[:remaining])
	}
	if !c.overflowed {
		c.overflowed = true
		if c.onOverflow != nil {
			c.onOverflow()
		}
	}
	return len(p), nil
}

func (c *cappedBuffer) String() string {
	return c.buf.String()
}
