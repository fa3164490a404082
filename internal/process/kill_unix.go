//go:build !windows

// Package process terminates browser process trees left by the rasterizer.
package process

import "syscall"

// KillProcessGroup sends SIGKILL to the process group led by pid.
// Chrome renderer and GPU helpers share the group and go with it.
// Non-positive PIDs are ignored.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// Best effort; the launcher kill runs after this
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
