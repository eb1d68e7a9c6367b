package process

import (
	"context"
	"sync"
)

// Recorder is a Runner that records commands instead of running them. It is
// safe for concurrent use.
type Recorder struct {
	// Handler decides the outcome of each command. Nil means every command
	// succeeds with empty output.
	Handler func(c Command) (Result, error)

	mu    sync.Mutex
	calls []Command
}

var _ Runner = (*Recorder)(nil)

// Run records c and delegates to Handler.
func (r *Recorder) Run(ctx context.Context, c Command) (Result, error) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Result{ExitCode: -1}, &Error{Command: c.String(), ExitCode: -1, Err: err}
	}
	if r.Handler != nil {
		return r.Handler(c)
	}
	return Result{}, nil
}

// Calls returns a copy of the recorded commands in call order.
func (r *Recorder) Calls() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Command(nil), r.calls...)
}

// Lines returns the recorded commands rendered with Command.String.
func (r *Recorder) Lines() []string {
	calls := r.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.String()
	}
	return lines
}

// Fail returns the outcome of c exiting with code. Handlers use it to
// script failures.
func Fail(c Command, code int) (Result, error) {
	return Result{ExitCode: code}, NewExitError(c, code)
}
