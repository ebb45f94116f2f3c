//go:build linux

package harness

import "golang.org/x/sys/unix"

// faultCounts is a point-in-time reading of the calling thread's
// cumulative minor and major page-fault counters.
type faultCounts struct {
	minor uint64
	major uint64
}

// threadFaultCounts reads the calling thread's fault counters. The
// caller must be pinned with runtime.LockOSThread for RUSAGE_THREAD to
// name the measured thread.
func threadFaultCounts() (faultCounts, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_THREAD, &ru); err != nil {
		return faultCounts{}, err
	}
	return faultCounts{minor: uint64(ru.Minflt), major: uint64(ru.Majflt)}, nil
}
