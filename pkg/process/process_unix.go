//go:build unix

package process

import (
	"os/exec"
	"syscall"
)

// setProcGroup starts the command in its own process group so a timeout
// reaches the programs it spawns.
func setProcGroup(c *exec.Cmd) {
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcGroup kills the command's whole process group.
func killProcGroup(c *exec.Cmd) error {
	if c.Process == nil {
		return nil
	}
	return syscall.Kill(-c.Process.Pid, syscall.SIGKILL)
}
