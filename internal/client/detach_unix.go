//go:build unix

package client

import (
	"os/exec"
	"syscall"
)

// detach moves the child into its own process group so a terminal
// interrupt aimed at torrench does not reach it.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
