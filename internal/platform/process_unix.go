//go:build unix

package platform

import (
	"errors"

	"golang.org/x/sys/unix"
)

// ProcessExists reports whether a process with the given id exists. A
// permission error means the process exists but belongs to another user.
func ProcessExists(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}
