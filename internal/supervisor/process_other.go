//go:build !unix

package supervisor

import (
	"os"
	"syscall"
)

func sysProcAttr() *syscall.SysProcAttr { return nil }

// terminateProcess kills the process, there is no SIGTERM outside unix.
func terminateProcess(p *os.Process) error {
	return p.Kill()
}
