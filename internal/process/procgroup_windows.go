//go:build windows

package process

import (
	"os/exec"
	"time"
)

// setProcGroup only sets a drain delay on Windows, which has no Unix-style
// process groups. exec.CommandContext already kills the child on cancel.
func setProcGroup(cmd *exec.Cmd) {
	cmd.WaitDelay = 3 * time.Second
}
