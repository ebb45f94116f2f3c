//go:build !linux

package harness

import (
	"errors"
	"fmt"
)

// applySchedAttr has no portable equivalent; platforms without
// real-time scheduling classes report the request as unsupported.
func applySchedAttr(policy Policy, priority int) error {
	return fmt.Errorf("policy %q priority %d: %w", policy, priority, errors.ErrUnsupported)
}

// lockProcessMemory is a documented no-op where mlockall is
// unavailable: the harness still runs, exposing whatever residency the
// OS provides by default.
func lockProcessMemory() error {
	return nil
}
