// Package process runs external programs such as asset managers and
// Composer itself.
//
// The Executor interface is the only seam between foxy and the operating
// system's process table. Production code uses [OSExecutor]; tests plug in
// an [ExecutorFunc] to script exit codes and output.
//
// A non-zero exit status is not an error: it is reported in [Result.ExitCode]
// so callers can decide whether to fall back. Errors are reserved for
// programs that cannot be started and for timeouts.
package process

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/foxy/pkg/errors"
)

// waitDelay bounds how long Run waits for output pipes after the process
// was killed.
const waitDelay = 2 * time.Second

// Command describes a program invocation.
type Command struct {
	Dir     string        // Working directory; empty means the current one
	Name    string        // Program name or path
	Args    []string      // Arguments, not including Name
	Stdout  io.Writer     // Where to stream stdout; nil captures it into Result.Output
	Stderr  io.Writer     // Where to stream stderr; nil discards it
	Timeout time.Duration // Zero means no timeout
}

// String returns the command line as a single space-separated string.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Result holds the outcome of a finished process.
type Result struct {
	ExitCode int
	Output   string // Captured stdout, only when Command.Stdout is nil
	Duration time.Duration
}

// Executor runs commands.
type Executor interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc func(ctx context.Context, cmd Command) (Result, error)

// Run calls f(ctx, cmd).
func (f ExecutorFunc) Run(ctx context.Context, cmd Command) (Result, error) {
	return f(ctx, cmd)
}

// OSExecutor runs commands with os/exec.
type OSExecutor struct {
	logger *log.Logger
}

// NewExecutor returns an OSExecutor. A nil logger uses log.Default().
func NewExecutor(logger *log.Logger) *OSExecutor {
	if logger == nil {
		logger = log.Default()
	}
	return &OSExecutor{logger: logger}
}

// Run starts cmd and waits for it to finish.
//
// It returns a NOT_FOUND error when the program cannot be started and a
// TIMEOUT error when cmd.Timeout elapses first. Cancellation of ctx is
// returned as ctx.Err().
func (e *OSExecutor) Run(ctx context.Context, cmd Command) (Result, error) {
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.WaitDelay = waitDelay
	setProcGroup(c)
	c.Cancel = func() error {
		return killProcGroup(c)
	}

	var stdout bytes.Buffer
	if cmd.Stdout != nil {
		c.Stdout = cmd.Stdout
	} else {
		c.Stdout = &stdout
	}
	c.Stderr = cmd.Stderr

	e.logger.Debug("exec", "cmd", cmd.String(), "dir", cmd.Dir)

	start := time.Now()
	runErr := c.Run()
	res := Result{Output: stdout.String(), Duration: time.Since(start)}

	if runErr == nil {
		return res, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		res.ExitCode = -1
		if stderrors.Is(ctxErr, context.DeadlineExceeded) && cmd.Timeout > 0 {
			return res, errors.Wrap(errors.ErrCodeTimeout, ctxErr, "%s timed out after %s", cmd.Name, cmd.Timeout)
		}
		return res, ctxErr
	}

	var exitErr *exec.ExitError
	if stderrors.As(runErr, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		e.logger.Debug("exit", "cmd", cmd.Name, "code", res.ExitCode, "duration", res.Duration)
		return res, nil
	}

	res.ExitCode = -1
	return res, errors.Wrap(errors.ErrCodeNotFound, runErr, "cannot run %s", cmd.Name)
}
