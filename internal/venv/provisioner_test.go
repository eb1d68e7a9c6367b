package venv

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uberrun/uber/internal/config"
	"github.com/uberrun/uber/internal/process"
	"github.com/uberrun/uber/internal/ui"
)

type fixture struct {
	dir      string
	recorder *process.Recorder
	out      *bytes.Buffer
	prov     *Provisioner
}

func newFixture(t *testing.T, tool *config.ToolConfig) *fixture {
	t.Helper()
	if tool == nil {
		tool = &config.ToolConfig{Python: "python3"}
	}
	f := &fixture{dir: t.TempDir(), recorder: &process.Recorder{}, out: &bytes.Buffer{}}
	f.prov = &Provisioner{
		Runner:   f.recorder,
		Reporter: ui.NewReporter(f.out, ui.PlainStyles(), tool.Ignore),
		Tool:     tool,
	}
	return f
}

func (f *fixture) project(venvs ...config.VenvConfig) *config.ProjectConfig {
	return &config.ProjectConfig{Dir: f.dir, Venvs: venvs}
}

// materialise makes an environment look created.
func materialise(t *testing.T, projectDir, name string) {
	t.Helper()
	l := LayoutFor(projectDir, name)
	require.NoError(t, os.MkdirAll(l.BinDir(), 0o755))
	require.NoError(t, os.WriteFile(l.Python(), []byte("#!/bin/sh\n"), 0o755))
}

func TestLayout(t *testing.T) {
	posix := Layout{Root: "/p/app"}
	assert.Equal(t, filepath.Join("/p/app", "bin"), posix.BinDir())
	assert.Equal(t, filepath.Join("/p/app", "bin", "python"), posix.Python())
	assert.Equal(t, filepath.Join("/p/app", "bin", "pip"), posix.Pip())

	win := Layout{Root: "/p/app", Windows: true}
	assert.Equal(t, filepath.Join("/p/app", "Scripts"), win.BinDir())
	assert.Equal(t, filepath.Join("/p/app", "Scripts", "python.exe"), win.Python())
	assert.Equal(t, filepath.Join("/p/app", "Scripts", "pip.exe"), win.Pip())
}

func TestLayout_Exists(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, LayoutFor(dir, "app").Exists())

	materialise(t, dir, "app")
	assert.True(t, LayoutFor(dir, "app").Exists())
}

func TestProvision_CreatesInDeclaredOrder(t *testing.T) {
	f := newFixture(t, nil)
	cfg := f.project(
		config.VenvConfig{Name: "zeta"},
		config.VenvConfig{Name: "alpha", Main: true},
	)

	require.NoError(t, f.prov.Provision(context.Background(), cfg))

	calls := f.recorder.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "python3", calls[0].Name)
	assert.Equal(t, []string{"-m", "venv", filepath.Join(f.dir, "zeta")}, calls[0].Args)
	assert.Equal(t, []string{"-m", "venv", filepath.Join(f.dir, "alpha")}, calls[1].Args)
	assert.Equal(t, f.dir, calls[0].Dir)

	assert.Contains(t, f.out.String(), "Creating virtual environment: zeta\n")
	assert.Contains(t, f.out.String(), "Virtual environment 'alpha' created successfully.\n")
}

func TestProvision_InterpreterSelection(t *testing.T) {
	f := newFixture(t, &config.ToolConfig{Python: "python3.12"})
	cfg := f.project(
		config.VenvConfig{Name: "default"},
		config.VenvConfig{Name: "pinned", Python: "python3.9", SystemSitePackages: true},
	)

	require.NoError(t, f.prov.Provision(context.Background(), cfg))

	assert.Equal(t, []string{
		"python3.12 -m venv " + filepath.Join(f.dir, "default"),
		"python3.9 -m venv --system-site-packages " + filepath.Join(f.dir, "pinned"),
	}, f.recorder.Lines())
}

func TestProvision_SkipsReservedName(t *testing.T) {
	for _, ignoreInfo := range []bool{false, true} {
		f := newFixture(t, &config.ToolConfig{Ignore: config.IgnoreConfig{Info: ignoreInfo}})
		cfg := f.project(
			config.VenvConfig{Name: config.ReservedVenvName, Main: true},
			config.VenvConfig{Name: "app"},
		)

		require.NoError(t, f.prov.Provision(context.Background(), cfg))

		lines := f.recorder.Lines()
		require.Len(t, lines, 1, "only app is created")
		assert.NotContains(t, lines[0], config.ReservedVenvName)

		if ignoreInfo {
			assert.NotContains(t, f.out.String(), "test-venv")
		} else {
			assert.Contains(t, f.out.String(), "INFO: Ignoring creation of 'test-venv'.")
		}
	}
}

func TestProvision_SkipsExisting(t *testing.T) {
	f := newFixture(t, nil)
	materialise(t, f.dir, "app")
	cfg := f.project(config.VenvConfig{Name: "app", Main: true}, config.VenvConfig{Name: "fresh"})

	require.NoError(t, f.prov.Provision(context.Background(), cfg))

	assert.Equal(t, []string{"python3 -m venv " + filepath.Join(f.dir, "fresh")}, f.recorder.Lines())
	assert.Contains(t, f.out.String(), "INFO: Virtual environment 'app' already exists. Skipping.")
}

func TestProvision_FailureAborts(t *testing.T) {
	for _, ignoreErrors := range []bool{false, true} {
		f := newFixture(t, &config.ToolConfig{Python: "python3", Ignore: config.IgnoreConfig{Errors: ignoreErrors}})
		f.recorder.Handler = func(c process.Command) (process.Result, error) {
			if c.Args[len(c.Args)-1] == filepath.Join(f.dir, "broken") {
				return process.Fail(c, 1)
			}
			return process.Result{}, nil
		}
		cfg := f.project(
			config.VenvConfig{Name: "first"},
			config.VenvConfig{Name: "broken"},
			config.VenvConfig{Name: "never"},
		)

		err := f.prov.Provision(context.Background(), cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrAborted, "suppressed errors still abort")
		assert.Len(t, f.recorder.Calls(), 2, "nothing after the failure is attempted")

		if ignoreErrors {
			assert.NotContains(t, f.out.String(), "Error [3]")
		} else {
			assert.Contains(t, f.out.String(), "Error [3]: Error creating virtual environment 'broken': ")
		}
	}
}

func TestProvision_DryRun(t *testing.T) {
	f := newFixture(t, nil)
	f.prov.DryRun = true
	cfg := f.project(config.VenvConfig{Name: "app"})

	require.NoError(t, f.prov.Provision(context.Background(), cfg))

	assert.Empty(t, f.recorder.Calls())
	assert.Contains(t, f.out.String(), "[dry-run] python3 -m venv "+filepath.Join(f.dir, "app"))
}
