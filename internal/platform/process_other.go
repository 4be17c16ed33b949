//go:build !unix && !windows

package platform

import "os"

// ProcessExists falls back to os.FindProcess, which cannot probe liveness on
// this platform and only rejects impossible ids.
func ProcessExists(pid int) bool {
	if pid <= 0 {
		return false
	}
	_, err := os.FindProcess(pid)
	return err == nil
}
