package venv

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/uberrun/uber/internal/config"
	"github.com/uberrun/uber/internal/logging"
	"github.com/uberrun/uber/internal/process"
	"github.com/uberrun/uber/internal/ui"
)

// ErrAborted marks a failure that stops the whole run: nothing after the
// failing step is attempted.
var ErrAborted = errors.New("run aborted")

// CodeCreateFailed is the diagnostic number of a failed environment creation.
const CodeCreateFailed = 3

// Provisioner creates the environments a project declares.
type Provisioner struct {
	Runner   process.Runner
	Reporter *ui.Reporter
	Tool     *config.ToolConfig

	// Stdout and Stderr receive the output of python -m venv.
	Stdout io.Writer
	Stderr io.Writer

	// DryRun prints the commands instead of running them.
	DryRun bool
}

// Provision creates every declared environment in declared order.
//
// The reserved test environment is skipped, as is any environment whose
// interpreter already exists. The first creation failure stops provisioning
// and returns an error wrapping ErrAborted.
func (p *Provisioner) Provision(ctx context.Context, cfg *config.ProjectConfig) error {
	logger := logging.New("venv")

	for _, v := range cfg.Venvs {
		if v.Reserved() {
			p.Reporter.Infof("Ignoring creation of '%s'.", v.Name)
			continue
		}

		layout := LayoutFor(cfg.Dir, v.Name)
		if layout.Exists() {
			logger.Debug("environment exists", "name", v.Name, "python", layout.Python())
			p.Reporter.Infof("Virtual environment '%s' already exists. Skipping.", v.Name)
			continue
		}

		cmd := p.createCommand(cfg, v, layout)
		if p.DryRun {
			p.Reporter.Progressf("[dry-run] %s", cmd)
			continue
		}

		p.Reporter.Progressf("Creating virtual environment: %s", v.Name)
		if _, err := p.Runner.Run(ctx, cmd); err != nil {
			p.Reporter.Errorf(CodeCreateFailed, "Error creating virtual environment '%s': %v", v.Name, err)
			return fmt.Errorf("creating environment %q: %w: %w", v.Name, ErrAborted, err)
		}
		p.Reporter.Successf("Virtual environment '%s' created successfully.", v.Name)
	}
	return nil
}

func (p *Provisioner) createCommand(cfg *config.ProjectConfig, v config.VenvConfig, layout Layout) process.Command {
	args := []string{"-m", "venv"}
	if v.SystemSitePackages {
		args = append(args, "--system-site-packages")
	}
	args = append(args, layout.Root)

	return process.Command{
		Name:   p.Tool.PythonFor(v),
		Args:   args,
		Dir:    cfg.Dir,
		Stdout: p.Stdout,
		Stderr: p.Stderr,
	}
}
