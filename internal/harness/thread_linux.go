//go:build linux

package harness

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func osPolicy(p Policy) (uint32, error) {
	switch p {
	case PolicyFIFO:
		return unix.SCHED_FIFO, nil
	case PolicyRoundRobin:
		return unix.SCHED_RR, nil
	case PolicyOther:
		return unix.SCHED_NORMAL, nil
	default:
		return 0, fmt.Errorf("unknown policy %q", p)
	}
}

// applySchedAttr sets the scheduling class and priority of the calling
// thread. The caller must be pinned to its OS thread with
// runtime.LockOSThread for the change to stick to the right thread.
func applySchedAttr(policy Policy, priority int) error {
	pol, err := osPolicy(policy)
	if err != nil {
		return err
	}
	attr := unix.SchedAttr{
		Size:     unix.SizeofSchedAttr,
		Policy:   pol,
		Priority: uint32(priority),
	}
	return unix.SchedSetAttr(0, &attr, 0)
}

// lockProcessMemory asks the OS to keep all current and future pages
// of the process resident. Not real-time safe; initialization only.
func lockProcessMemory() error {
	return unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE)
}
