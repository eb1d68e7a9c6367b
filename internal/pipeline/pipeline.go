// Package pipeline runs "uber run": create environments, install
// dependencies, launch the project. Each stage runs only if the one before it
// finished without aborting.
package pipeline

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/uberrun/uber/internal/config"
	"github.com/uberrun/uber/internal/deps"
	"github.com/uberrun/uber/internal/launch"
	"github.com/uberrun/uber/internal/logging"
	"github.com/uberrun/uber/internal/process"
	"github.com/uberrun/uber/internal/ui"
	"github.com/uberrun/uber/internal/venv"
)

// ErrAborted is wrapped by the error of a run stopped by a failed
// environment creation or installation.
var ErrAborted = venv.ErrAborted

// Options configures a Pipeline. Zero streams default to the process's own.
type Options struct {
	// Project may be nil when the project config failed to load; Run is
	// then a no-op.
	Project *config.ProjectConfig
	// Tool may be nil; nothing is suppressed then.
	Tool *config.ToolConfig

	Runner   process.Runner
	Reporter *ui.Reporter

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	DryRun bool
}

// Pipeline wires the three stages together.
type Pipeline struct {
	project     *config.ProjectConfig
	reporter    *ui.Reporter
	provisioner *venv.Provisioner
	installer   *deps.Installer
	launcher    *launch.Runner
}

// New builds a Pipeline from opts.
func New(opts Options) *Pipeline {
	tool := opts.Tool
	if tool == nil {
		tool = &config.ToolConfig{}
	}
	if opts.Runner == nil {
		opts.Runner = process.ExecRunner{}
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Reporter == nil {
		opts.Reporter = ui.NewReporter(opts.Stdout, ui.DefaultStyles(), tool.Ignore)
	}

	return &Pipeline{
		project:  opts.Project,
		reporter: opts.Reporter,
		provisioner: &venv.Provisioner{
			Runner:   opts.Runner,
			Reporter: opts.Reporter,
			Tool:     tool,
			Stdout:   opts.Stdout,
			Stderr:   opts.Stderr,
			DryRun:   opts.DryRun,
		},
		installer: &deps.Installer{
			Runner:   opts.Runner,
			Reporter: opts.Reporter,
			Stdout:   opts.Stdout,
			Stderr:   opts.Stderr,
			DryRun:   opts.DryRun,
		},
		launcher: &launch.Runner{
			Process:  opts.Runner,
			Reporter: opts.Reporter,
			Stdin:    opts.Stdin,
			Stdout:   opts.Stdout,
			Stderr:   opts.Stderr,
			DryRun:   opts.DryRun,
		},
	}
}

// Run executes the stages in order and returns the first stage error.
// Errors of the first two stages wrap ErrAborted; a failed launch returns a
// *launch.ExitError.
func (p *Pipeline) Run(ctx context.Context) error {
	if p.project == nil {
		return nil
	}
	logger := logging.New("pipeline")

	if mains := p.project.MainVenvNames(); len(mains) > 1 {
		p.reporter.Warnf("Several environments are marked main (%s); using '%s'.",
			strings.Join(mains, ", "), mains[0])
	}

	logger.Debug("provisioning", "venvs", len(p.project.Venvs))
	if err := p.provisioner.Provision(ctx, p.project); err != nil {
		return err
	}

	logger.Debug("installing", "dependencies", len(p.project.Dependencies))
	if err := p.installer.Install(ctx, p.project); err != nil {
		return err
	}

	logger.Debug("launching", "source", p.project.Info.Source)
	return p.launcher.Run(ctx, p.project)
}
