//go:build windows

package runner

import "os/exec"

func configureKill(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return cmd.Process.Kill()
	}
}

func reapGroup(*exec.Cmd) {}

func signalNumber(*exec.ExitError) (int, bool) {
	return 0, false
}
