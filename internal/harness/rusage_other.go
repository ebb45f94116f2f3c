//go:build !linux

package harness

import "errors"

type faultCounts struct {
	minor uint64
	major uint64
}

// threadFaultCounts is unavailable without per-thread rusage; samples
// on such platforms carry FaultsValid=false and the run continues.
func threadFaultCounts() (faultCounts, error) {
	return faultCounts{}, errors.ErrUnsupported
}
