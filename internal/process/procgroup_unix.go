//go:build !windows

package process

import (
	"os/exec"
	"syscall"
	"time"
)

// setProcGroup runs cmd in its own process group so that cancelling the
// context kills the whole tree. venv and pip both spawn children of their
// own; killing only the direct child would leave them running.
func setProcGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		// Negative PID addresses the group.
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}

	cmd.WaitDelay = 3 * time.Second
}
