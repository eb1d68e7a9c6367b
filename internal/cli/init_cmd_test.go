package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uberrun/uber/internal/config"
)

func stubTerminal(t *testing.T, tty bool, prompt func(*initAnswers) error) {
	t.Helper()
	origTTY, origPrompt := isTerminal, promptInit
	isTerminal = func(*os.File) bool { return tty }
	if prompt != nil {
		promptInit = prompt
	}
	t.Cleanup(func() { isTerminal, promptInit = origTTY, origPrompt })
}

func TestInitCmd_WritesLoadableFile(t *testing.T) {
	f := newFixture(t, "", "")
	stubTerminal(t, false, nil)

	code := f.execute("init", "--name", "demo", "--source", "app/run.py", "--venv", ".venv")
	require.Equal(t, 0, code, f.errOut.String())
	assert.Contains(t, f.out.String(), "Wrote ")
	assert.NotContains(t, f.out.String(), "Error [", "init does not load configs")

	cfg, err := config.LoadProjectConfig(f.dir)
	require.NoError(t, err)
	assert.Equal(t, config.ProjectInfo{Name: "demo", Source: "app/run.py", Version: config.DefaultProjectVersion}, cfg.Info)
	main, ok := cfg.MainVenv()
	require.True(t, ok)
	assert.Equal(t, ".venv", main.Name)
	assert.Empty(t, cfg.Dependencies)
}

func TestInitCmd_DefaultNameIsDirectory(t *testing.T) {
	f := newFixture(t, "", "")
	stubTerminal(t, false, nil)

	require.Equal(t, 0, f.execute("init"))
	cfg, err := config.LoadProjectConfig(f.dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(f.dir), cfg.Info.Name)
	assert.Equal(t, config.DefaultProjectSource, cfg.Info.Source)
}

func TestInitCmd_RefusesToOverwrite(t *testing.T) {
	f := newFixture(t, `{"project-info": {"project-name": "keep"}}`, "")
	stubTerminal(t, false, nil)

	code := f.execute("init", "--name", "new")
	assert.Equal(t, 1, code)
	assert.Contains(t, f.errOut.String(), "already exists")

	cfg, err := config.LoadProjectConfig(f.dir)
	require.NoError(t, err)
	assert.Equal(t, "keep", cfg.Info.Name)

	require.Equal(t, 0, f.execute("init", "--name", "new", "--force"))
	cfg, err = config.LoadProjectConfig(f.dir)
	require.NoError(t, err)
	assert.Equal(t, "new", cfg.Info.Name)
}

func TestInitCmd_NeverOverwritesExecutable(t *testing.T) {
	f := newFixture(t, "", "")
	stubTerminal(t, false, nil)
	exe := filepath.Join(f.dir, config.ProjectConfigFileName)
	require.NoError(t, os.WriteFile(exe, []byte("\x7fELF"), 0o755))
	orig := isExecutable
	isExecutable = func(path string) bool { return path == exe }
	t.Cleanup(func() { isExecutable = orig })

	code := f.execute("init", "--force", "--no-input")
	assert.Equal(t, 1, code)
	assert.Contains(t, f.errOut.String(), "executable")

	data, err := os.ReadFile(exe)
	require.NoError(t, err)
	assert.Equal(t, "\x7fELF", string(data))
}

func TestInitCmd_RejectsBadVenvNames(t *testing.T) {
	for _, name := range []string{"test-venv", "..", "a/b", ""} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, "", "")
			stubTerminal(t, false, nil)

			code := f.execute("init", "--venv", name)
			assert.Equal(t, 1, code)
			_, err := os.Stat(filepath.Join(f.dir, config.ProjectConfigFileName))
			assert.True(t, os.IsNotExist(err), "nothing is written")
		})
	}
}

func TestInitCmd_PromptsOnTerminal(t *testing.T) {
	f := newFixture(t, "", "")
	var seen initAnswers
	stubTerminal(t, true, func(a *initAnswers) error {
		seen = *a
		a.Name = "prompted"
		a.Venv = "env"
		return nil
	})

	require.Equal(t, 0, f.execute("init", "--name", "flagged"))
	assert.Equal(t, "flagged", seen.Name, "flags pre-fill the prompt")

	cfg, err := config.LoadProjectConfig(f.dir)
	require.NoError(t, err)
	assert.Equal(t, "prompted", cfg.Info.Name)
	assert.Equal(t, []string{"env"}, cfg.MainVenvNames())
}

func TestInitCmd_NoInputSkipsPrompt(t *testing.T) {
	f := newFixture(t, "", "")
	stubTerminal(t, true, func(*initAnswers) error {
		t.Fatal("prompt must not run with --no-input")
		return nil
	})

	require.Equal(t, 0, f.execute("init", "--no-input"))
}

func TestInitCmd_PromptCancelled(t *testing.T) {
	f := newFixture(t, "", "")
	stubTerminal(t, true, func(*initAnswers) error { return errInitCancelled })

	assert.Equal(t, 1, f.execute("init"))
	assert.Contains(t, f.errOut.String(), "cancelled")
}

func TestInitCmd_DryRunWritesNothing(t *testing.T) {
	f := newFixture(t, "", "")
	stubTerminal(t, false, nil)

	require.Equal(t, 0, f.execute("--dry-run", "init", "--name", "demo"))
	assert.Contains(t, f.out.String(), "[dry-run] write ")
	assert.Contains(t, f.out.String(), `"project-name": "demo"`)
	_, err := os.Stat(filepath.Join(f.dir, config.ProjectConfigFileName))
	assert.True(t, os.IsNotExist(err))
}
