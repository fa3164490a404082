//go:build windows

// Package process terminates browser process trees left by the rasterizer.
package process

import (
	"os/exec"
	"strconv"
)

// KillProcessGroup kills pid and its children with taskkill /F /T.
// Non-positive PIDs are ignored.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// Best effort; the launcher kill runs after this
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run() // #nosec G204 -- pid is an int
}
