// Package deps installs a project's declared dependencies into their target
// environments with each environment's own pip.
package deps

import (
	"context"
	"fmt"
	"io"

	"github.com/uberrun/uber/internal/config"
	"github.com/uberrun/uber/internal/logging"
	"github.com/uberrun/uber/internal/process"
	"github.com/uberrun/uber/internal/ui"
	"github.com/uberrun/uber/internal/venv"
)

// CodeInstallFailed is the diagnostic number of a failed installation.
const CodeInstallFailed = 4

// Installer installs dependencies that are not yet present.
type Installer struct {
	Runner   process.Runner
	Reporter *ui.Reporter

	// Stdout and Stderr receive the output of pip install. The presence
	// probe is always captured.
	Stdout io.Writer
	Stderr io.Writer

	DryRun bool
}

// Install walks the dependencies in declared order.
//
// A dependency without a target environment, or whose target is not
// declared, is skipped without a word. A dependency pip already knows is
// skipped with an INFO line. The first failed installation returns an error
// wrapping venv.ErrAborted; later dependencies are not attempted.
func (in *Installer) Install(ctx context.Context, cfg *config.ProjectConfig) error {
	logger := logging.New("deps")

	for _, d := range cfg.Dependencies {
		if d.Venv == "" {
			logger.Debug("no target environment", "package", d.Package)
			continue
		}
		if _, ok := cfg.Venv(d.Venv); !ok {
			logger.Debug("target environment not declared", "package", d.Package, "venv", d.Venv)
			continue
		}

		layout := venv.LayoutFor(cfg.Dir, d.Venv)
		install := in.installCommand(cfg, d, layout)
		if in.DryRun {
			in.Reporter.Progressf("[dry-run] %s", install)
			continue
		}

		present, err := in.Installed(ctx, cfg, d)
		if err != nil {
			return err
		}
		if present {
			in.Reporter.Infof("Dependency '%s' already installed in '%s'. Skipping.", d.Package, d.Venv)
			continue
		}

		in.Reporter.Progressf("Installing %s in %s", d.Package, d.Venv)
		if _, err := in.Runner.Run(ctx, install); err != nil {
			in.Reporter.Errorf(CodeInstallFailed, "Error installing %s in %s: %v", d.Package, d.Venv, err)
			return fmt.Errorf("installing %s: %w: %w", d.Requirement(), venv.ErrAborted, err)
		}
		in.Reporter.Successf("Successfully installed %s in %s.", d.Package, d.Venv)
	}
	return nil
}

// Installed reports whether pip in the dependency's environment already has
// the package. Only the package name is checked, not the pinned version.
//
// A non-zero "pip show" status means absent. An error is returned only when
// the context ended, since a missing pip is just another way of not having
// the package.
func (in *Installer) Installed(ctx context.Context, cfg *config.ProjectConfig, d config.Dependency) (bool, error) {
	layout := venv.LayoutFor(cfg.Dir, d.Venv)
	_, err := in.Runner.Run(ctx, process.Command{
		Name: layout.Pip(),
		Args: []string{"show", d.Package},
		Dir:  cfg.Dir,
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}
	return err == nil, nil
}

func (in *Installer) installCommand(cfg *config.ProjectConfig, d config.Dependency, layout venv.Layout) process.Command {
	return process.Command{
		Name:   layout.Pip(),
		Args:   []string{"install", d.Requirement()},
		Dir:    cfg.Dir,
		Stdout: in.Stdout,
		Stderr: in.Stderr,
	}
}
