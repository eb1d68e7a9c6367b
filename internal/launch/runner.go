// Package launch starts the project's entry point with the interpreter of
// its main environment.
package launch

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/uberrun/uber/internal/config"
	"github.com/uberrun/uber/internal/logging"
	"github.com/uberrun/uber/internal/process"
	"github.com/uberrun/uber/internal/ui"
	"github.com/uberrun/uber/internal/venv"
)

// Diagnostic numbers.
const (
	CodeLaunchFailed = 5
	CodeNoMain       = 6
)

// ExitError carries the entry point's exit status so the CLI can exit with it.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("project exited with status %d: %v", e.Code, e.Err)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Runner launches the entry point.
type Runner struct {
	Process  process.Runner
	Reporter *ui.Reporter

	// Standard streams handed to the project.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Environ supplies the base environment. Nil means os.Environ.
	Environ func() []string

	DryRun bool
}

// Run executes the entry point with the first main environment's
// interpreter.
//
// No main environment is reported and is not an error. A launch failure or a
// non-zero exit is reported and returned as *ExitError.
func (r *Runner) Run(ctx context.Context, cfg *config.ProjectConfig) error {
	main, ok := cfg.MainVenv()
	if !ok {
		r.Reporter.Errorf(CodeNoMain, "No main virtual environment defined to run the project.")
		return nil
	}

	layout := venv.LayoutFor(cfg.Dir, main.Name)
	cmd := r.Command(cfg, layout)
	if r.DryRun {
		r.Reporter.Progressf("[dry-run] %s", cmd)
		return nil
	}

	logging.New("launch").Debug("starting project",
		"venv", main.Name, "source", cfg.EntryPoint(), "python", layout.Python())

	if _, err := r.Process.Run(ctx, cmd); err != nil {
		r.Reporter.Errorf(CodeLaunchFailed, "Error running project: %v", err)
		code := process.ExitCode(err)
		if code <= 0 {
			code = 1
		}
		return &ExitError{Code: code, Err: err}
	}
	return nil
}

// Command builds the entry point's command line: the environment's own
// interpreter with the anchored source path as its only argument, in the
// project directory, with an activated environment.
func (r *Runner) Command(cfg *config.ProjectConfig, layout venv.Layout) process.Command {
	environ := os.Environ
	if r.Environ != nil {
		environ = r.Environ
	}
	return process.Command{
		Name:       layout.Python(),
		Args:       []string{cfg.EntryPoint()},
		Dir:        cfg.Dir,
		Env:        ActivatedEnv(environ(), layout),
		Stdin:      r.Stdin,
		Stdout:     r.Stdout,
		Stderr:     r.Stderr,
		Foreground: true,
	}
}

// ActivatedEnv returns base as the environment's activate script would leave
// it: VIRTUAL_ENV points at the environment, its bin directory leads PATH and
// PYTHONHOME is unset.
func ActivatedEnv(base []string, layout venv.Layout) []string {
	sameKey := func(a, b string) bool { return a == b }
	if layout.Windows {
		sameKey = strings.EqualFold
	}

	pathKey, pathValue := "PATH", ""
	env := make([]string, 0, len(base)+2)
	for _, kv := range base {
		key, value, _ := strings.Cut(kv, "=")
		switch {
		case sameKey(key, "PATH"):
			pathKey, pathValue = key, value
		case sameKey(key, "VIRTUAL_ENV"), sameKey(key, "PYTHONHOME"):
		default:
			env = append(env, kv)
		}
	}

	path := layout.BinDir()
	if pathValue != "" {
		path += string(os.PathListSeparator) + pathValue
	}
	return append(env, "VIRTUAL_ENV="+layout.Root, pathKey+"="+path)
}
