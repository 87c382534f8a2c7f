package alert

import (
	"os/exec"
	"syscall"
)

// configureProcess hides the console window of alert commands on Windows.
func configureProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow: true,
	}
}
