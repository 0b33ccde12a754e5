//go:build unix

package supervisor

import (
	"errors"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// sysProcAttr places the child in its own process group so termination
// reaches anything it spawned too.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// terminateProcess sends SIGTERM to the process group, falling back to the process itself.
func terminateProcess(p *os.Process) error {
	err := unix.Kill(-p.Pid, unix.SIGTERM)
	if err == nil {
		return nil
	}
	if !errors.Is(err, unix.ESRCH) && !errors.Is(err, unix.EPERM) {
		return err
	}

	return p.Signal(unix.SIGTERM)
}
