//go:build linux

package harness

import "golang.org/x/sys/unix"

// clockName identifies the time source samples are recorded against.
const clockName = "monotonic"

// monotonicNow returns the current CLOCK_MONOTONIC reading in
// nanoseconds.
func monotonicNow() (int64, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0, err
	}
	return ts.Nano(), nil
}

// sleepUntil blocks until the absolute CLOCK_MONOTONIC instant
// deadline, given in nanoseconds. An interrupted wait is retried
// against the same instant, so elapsed wait time is never discarded.
// A deadline already in the past returns immediately.
func sleepUntil(deadline int64) error {
	ts := unix.NsecToTimespec(deadline)
	for {
		err := unix.ClockNanosleep(unix.CLOCK_MONOTONIC, unix.TIMER_ABSTIME, &ts, nil)
		switch err {
		case nil:
			return nil
		case unix.EINTR:
			continue
		default:
			return err
		}
	}
}
