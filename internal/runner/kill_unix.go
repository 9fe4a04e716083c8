//go:build !windows

package runner

import (
	"os/exec"
	"syscall"
)

// configureKill places the child in its own process group so the deadline
// kill also reaches anything it spawned.
func configureKill(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
			return cmd.Process.Kill()
		}
		return nil
	}
}

// reapGroup kills whatever the child left running in its process group once
// the child itself has been waited for.
func reapGroup(cmd *exec.Cmd) {
	if cmd.Process == nil || cmd.ProcessState == nil {
		return
	}
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}

func signalNumber(exitErr *exec.ExitError) (int, bool) {
	status, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok || !status.Signaled() {
		return 0, false
	}
	return int(status.Signal()), true
}
