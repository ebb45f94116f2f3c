//go:build linux

package harness

import (
	"testing"

	"golang.org/x/sys/unix"
)

func minorFaults(t *testing.T) uint64 {
	t.Helper()
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		t.Fatalf("getrusage: %v", err)
	}
	return uint64(ru.Minflt)
}

// The buffer's pages must be resident when allocation returns: filling
// the buffer afterwards may not fault in more pages than allocation
// did, or first-touch faults would land inside the timed region.
func TestNewSampleBuffer_PagesResidentAtAllocation(t *testing.T) {
	const capacity = 1 << 20

	before := minorFaults(t)
	buf, err := NewSampleBuffer(capacity)
	if err != nil {
		t.Fatalf("NewSampleBuffer(%d): %v", capacity, err)
	}
	afterAlloc := minorFaults(t)

	for i := 0; i < capacity; i++ {
		if err := buf.Set(i, Sample{Scheduled: int64(i)}); err != nil {
			t.Fatalf("Set(%d): %v", i, err)
		}
	}
	afterFill := minorFaults(t)

	allocFaults := afterAlloc - before
	fillFaults := afterFill - afterAlloc
	t.Logf("minor faults: %d at allocation, %d during fill", allocFaults, fillFaults)
	if fillFaults > allocFaults {
		t.Errorf("fill pass faulted %d pages but allocation only %d: storage not resident at allocation",
			fillFaults, allocFaults)
	}
}
