//go:build !linux

package harness

import (
	"sync"
	"time"
)

const clockName = "monotonic-emulated"

var (
	clockBaseOnce sync.Once
	clockBase     time.Time
)

func clockOrigin() time.Time {
	clockBaseOnce.Do(func() { clockBase = time.Now() })
	return clockBase
}

// monotonicNow returns nanoseconds since a process-local origin, read
// from the runtime's monotonic clock.
func monotonicNow() (int64, error) {
	return time.Since(clockOrigin()).Nanoseconds(), nil
}

// sleepUntil emulates an absolute-deadline wait: it repeatedly
// recomputes the remaining delta to the fixed deadline and re-waits,
// never resetting the origin, so early returns cannot drift the
// schedule.
func sleepUntil(deadline int64) error {
	for {
		now, err := monotonicNow()
		if err != nil {
			return err
		}
		remaining := deadline - now
		if remaining <= 0 {
			return nil
		}
		time.Sleep(time.Duration(remaining))
	}
}
