// Package process runs the child processes uber depends on: python -m venv,
// pip and the project's entry point.
//
// Every call blocks until the child exits. Runner is the seam tests use to
// replace real processes with a Recorder.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/uberrun/uber/internal/logging"
)

// Command describes one child process.
type Command struct {
	Name string
	Args []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env is the complete environment of the child. Nil inherits ours.
	Env []string

	// Stdin, Stdout and Stderr are connected to the child when set.
	// Unset output streams are captured into the Result instead.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Foreground keeps the child in uber's process group so it can read
	// from the terminal, and exempts it from cancellation. Used for the
	// project entry point.
	Foreground bool
}

// String renders the command line for logs and dry-run output. Arguments
// containing whitespace or quotes are quoted.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, quoteArg(c.Name))
	for _, a := range c.Args {
		parts = append(parts, quoteArg(a))
	}
	return strings.Join(parts, " ")
}

func quoteArg(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"'") {
		return strconv.Quote(s)
	}
	return s
}

// Result is what a finished child left behind.
type Result struct {
	// ExitCode is the child's exit status, or -1 when it never started. A
	// child killed by a signal reports 128 plus the signal number, as shells
	// do.
	ExitCode int
	// Stdout and Stderr hold captured output for streams the Command left unset.
	Stdout string
	Stderr string
	// Duration is the wall time of the call.
	Duration time.Duration
}

// Runner runs commands to completion.
type Runner interface {
	// Run starts c and waits for it. A child that cannot start or that exits
	// non-zero yields a *Error alongside the Result.
	Run(ctx context.Context, c Command) (Result, error)
}

// Error reports a command that failed to start or exited non-zero.
type Error struct {
	Command  string
	ExitCode int
	// Signal is set when the child was killed by a signal.
	Signal os.Signal
	Err    error
}

func (e *Error) Error() string {
	if e.ExitCode < 0 {
		return fmt.Sprintf("Command '%s' could not be started: %v", e.Command, e.Err)
	}
	if e.Signal != nil {
		return fmt.Sprintf("Command '%s' was terminated by signal %v (exit status %d).", e.Command, e.Signal, e.ExitCode)
	}
	return fmt.Sprintf("Command '%s' returned non-zero exit status %d.", e.Command, e.ExitCode)
}

func (e *Error) Unwrap() error { return e.Err }

// NewExitError builds the error a Runner returns when c exits with code.
func NewExitError(c Command, code int) *Error {
	return &Error{Command: c.String(), ExitCode: code, Err: fmt.Errorf("exit status %d", code)}
}

// ExitCode extracts the child's exit status from an error returned by Run.
// It returns -1 when err carries none.
func ExitCode(err error) int {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.ExitCode
	}
	return -1
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

var _ Runner = ExecRunner{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, c Command) (Result, error) {
	logger := logging.New("process")

	runCtx := ctx
	if c.Foreground {
		// The terminal already delivers Ctrl-C to a foreground child; let it
		// exit on its own terms instead of killing it on cancellation.
		runCtx = context.WithoutCancel(ctx)
	}

	cmd := exec.CommandContext(runCtx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if c.Env != nil {
		cmd.Env = c.Env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdin = c.Stdin
	cmd.Stdout = &stdout
	if c.Stdout != nil {
		cmd.Stdout = c.Stdout
	}
	cmd.Stderr = &stderr
	if c.Stderr != nil {
		cmd.Stderr = c.Stderr
	}
	if !c.Foreground {
		setProcGroup(cmd)
	}

	logger.Debug("exec", "cmd", c.String(), "dir", c.Dir)
	start := time.Now()
	err := cmd.Run()
	res := Result{
		ExitCode: -1,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	var sig os.Signal
	if cmd.ProcessState != nil {
		res.ExitCode, sig = exitStatus(cmd.ProcessState)
	}
	logger.Debug("exited", "cmd", c.Name, "code", res.ExitCode, "duration", res.Duration)

	if err != nil {
		return res, &Error{Command: c.String(), ExitCode: res.ExitCode, Signal: sig, Err: err}
	}
	return res, nil
}

// exitStatus maps a finished process to a shell-style status: the exit code,
// or 128 plus the signal number when a signal ended it.
func exitStatus(state *os.ProcessState) (int, os.Signal) {
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal()), ws.Signal()
	}
	return state.ExitCode(), nil
}
