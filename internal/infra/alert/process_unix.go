//go:build !windows

package alert

import (
	"os/exec"
	"syscall"
)

// configureProcess puts alert commands in their own process group so a
// terminal interrupt aimed at countdown does not cut the sound short.
func configureProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
