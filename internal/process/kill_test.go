package process

import "testing"

// ---------------------------------------------------------------------------
// TestKillProcessGroup - PIDs that must not signal anything
// ---------------------------------------------------------------------------

func TestKillProcessGroup_IgnoredPIDs(t *testing.T) {
	t.Parallel()

	// 0 would target the test's own process group; the guard must skip it.
	for _, pid := range []int{0, -1, -42} {
		KillProcessGroup(pid)
	}
}

func TestKillProcessGroup_UnknownPID(t *testing.T) {
	t.Parallel()

	// No such process: the call must return quietly.
	KillProcessGroup(999999999)
}
