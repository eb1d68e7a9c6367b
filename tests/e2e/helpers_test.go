package e2e_test

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakePython stands in for the base interpreter. It only understands
// "-m venv [--system-site-packages] DIR" and lays out DIR/bin with a fake
// interpreter and a fake pip.
const fakePython = `#!/bin/sh
if [ "$1" != "-m" ] || [ "$2" != "venv" ]; then
  echo "fake python3: unsupported arguments: $*" >&2
  exit 2
fi
shift 2
if [ "$1" = "--system-site-packages" ]; then shift; fi
dir="$1"
case "$(basename "$dir")" in
  "$FAKE_FAIL_VENV") echo "venv failed" >&2; exit 1 ;;
esac
mkdir -p "$dir/bin" "$dir/site"
cp "$FAKE_BIN/venv-python" "$dir/bin/python"
cp "$FAKE_BIN/venv-pip" "$dir/bin/pip"
chmod +x "$dir/bin/python" "$dir/bin/pip"
`

// venvPython is copied into each environment as bin/python. It reports how it
// was started and exits with $FAKE_EXIT.
const venvPython = `#!/bin/sh
echo "project ran: $* cwd=$(pwd) venv=$VIRTUAL_ENV"
exit "${FAKE_EXIT:-0}"
`

// venvPip records installed packages as marker files under site/.
const venvPip = `#!/bin/sh
site="$(dirname "$0")/../site"
case "$1" in
  show)
    [ -f "$site/$2" ]
    ;;
  install)
    pkg="${2%%==*}"
    [ "$pkg" = "$FAKE_FAIL_PKG" ] && { echo "no matching distribution" >&2; exit 1; }
    echo "$2" > "$site/$pkg"
    ;;
  *)
    exit 2
    ;;
esac
`

// testProject is a built uber binary, a fake python toolchain on PATH and an
// empty project directory.
type testProject struct {
	Dir        string
	BinDir     string
	BinaryPath string
	Env        []string
	t          *testing.T
}

func newTestProject(t *testing.T) *testProject {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("E2E tests with a shell-script python are not supported on Windows")
	}

	root := t.TempDir()
	binDir := filepath.Join(root, "bin")
	fakeDir := filepath.Join(root, "fake")
	projectDir := filepath.Join(root, "project")
	for _, d := range []string{binDir, fakeDir, projectDir} {
		require.NoError(t, os.MkdirAll(d, 0o755))
	}

	binary := filepath.Join(binDir, "uberrun")
	build := exec.Command("go", "build", "-o", binary, "./cmd/uberrun")
	build.Dir = projectRoot()
	build.Env = append(os.Environ(), "CGO_ENABLED=0")
	out, err := build.CombinedOutput()
	require.NoError(t, err, "building uber: %s", string(out))

	writeExecutable(t, filepath.Join(fakeDir, "python3"), fakePython)
	writeExecutable(t, filepath.Join(fakeDir, "venv-python"), venvPython)
	writeExecutable(t, filepath.Join(fakeDir, "venv-pip"), venvPip)

	return &testProject{
		Dir:        projectDir,
		BinDir:     binDir,
		BinaryPath: binary,
		Env: append(os.Environ(),
			"PATH="+fakeDir+string(os.PathListSeparator)+os.Getenv("PATH"),
			"FAKE_BIN="+fakeDir,
			"NO_COLOR=1",
			"UBER_DIR=",
			"UBER_CONFIG=",
		),
		t: t,
	}
}

// projectRoot returns the repository root, two directories above this file.
func projectRoot() string {
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(thisFile), "..", "..")
}

func writeExecutable(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o755))
}

// writeProject writes the project's uber file.
func (tp *testProject) writeProject(content string) {
	tp.t.Helper()
	require.NoError(tp.t, os.WriteFile(filepath.Join(tp.Dir, "uber"), []byte(content), 0o644))
}

// writeToolConfig writes uber-config next to the binary, where uber looks
// for it by default.
func (tp *testProject) writeToolConfig(content string) {
	tp.t.Helper()
	require.NoError(tp.t, os.WriteFile(filepath.Join(tp.BinDir, "uber-config"), []byte(content), 0o644))
}

func (tp *testProject) run(env []string, args ...string) *exec.Cmd {
	cmd := exec.Command(tp.BinaryPath, append([]string{"--dir", tp.Dir}, args...)...)
	cmd.Env = append(append([]string(nil), tp.Env...), env...)
	return cmd
}

// runExpectSuccess runs uber and asserts exit code 0. Returns combined output.
func (tp *testProject) runExpectSuccess(args ...string) string {
	tp.t.Helper()
	out, err := tp.run(nil, args...).CombinedOutput()
	require.NoError(tp.t, err, "uberrun %v failed:\n%s", args, string(out))
	return string(out)
}

// runExpectFailure runs uber with extra environment variables and asserts a
// non-zero exit code. Returns combined output and the exit code.
func (tp *testProject) runExpectFailure(env []string, args ...string) (string, int) {
	tp.t.Helper()
	out, err := tp.run(env, args...).CombinedOutput()
	require.Error(tp.t, err, "uberrun %v expected to fail but succeeded:\n%s", args, string(out))
	var exitErr *exec.ExitError
	require.True(tp.t, errors.As(err, &exitErr), "expected *exec.ExitError, got %T: %v", err, err)
	return string(out), exitErr.ExitCode()
}

func (tp *testProject) installed(venv, pkg string) bool {
	_, err := os.Stat(filepath.Join(tp.Dir, venv, "site", pkg))
	return err == nil
}
