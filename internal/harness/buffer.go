package harness

import (
	"fmt"
	"math"
	"os"
	"unsafe"
)

// Sample is one iteration's recorded timing and fault data. Instants
// are nanosecond readings of the monotonic clock. Latency is signed:
// negative means the thread woke before its scheduled instant.
//
// Fault counts are deltas against the previous fault-counter read, with
// the baseline captured immediately before the first iteration. When a
// counter read fails mid-run, FaultsValid is false and both counts are
// zero; the timing fields remain valid.
type Sample struct {
	Scheduled   int64
	Actual      int64
	Latency     int64
	MinorFaults uint64
	MajorFaults uint64
	FaultsValid bool
}

// SampleBuffer is a fixed-capacity, append-only store of Samples. All
// storage is reserved at allocation time; nothing in Set allocates, so
// it is safe to call from inside the timed spin loop. Indices are
// written exactly once, in strictly increasing order.
type SampleBuffer struct {
	samples []Sample
	n       int // populated prefix length
}

// NewSampleBuffer reserves storage for exactly capacity Samples. The
// backing array is touched one page at a time at allocation, so its
// pages are resident before the timed region begins.
func NewSampleBuffer(capacity uint64) (*SampleBuffer, error) {
	if capacity > math.MaxInt32 {
		return nil, fmt.Errorf("%w: capacity %d too large", ErrAllocation, capacity)
	}
	samples := make([]Sample, capacity)
	// make hands back pre-zeroed pages the OS may not have mapped yet;
	// writing one element per page pays the first-touch faults here
	// instead of inside the spin loop.
	stride := os.Getpagesize() / int(unsafe.Sizeof(Sample{}))
	if stride < 1 {
		stride = 1
	}
	for i := 0; i < len(samples); i += stride {
		samples[i] = Sample{}
	}
	return &SampleBuffer{samples: samples}, nil
}

// Set writes the Sample at index i. The write must extend the
// populated prefix by exactly one slot: samples are produced in index
// order and never rewritten.
func (b *SampleBuffer) Set(i int, s Sample) error {
	if i < 0 || i >= len(b.samples) {
		return fmt.Errorf("%w: index %d, capacity %d", ErrIndex, i, len(b.samples))
	}
	if i != b.n {
		return fmt.Errorf("%w: index %d written out of order (next is %d)", ErrIndex, i, b.n)
	}
	b.samples[i] = s
	b.n++
	return nil
}

// SetFaults stores the fault counters for an already-written index.
// This is the fault sampler's single write into the slot; after it the
// Sample is never mutated again.
func (b *SampleBuffer) SetFaults(i int, minor, major uint64, valid bool) error {
	if i < 0 || i >= b.n {
		return fmt.Errorf("%w: index %d not populated (have %d)", ErrIndex, i, b.n)
	}
	b.samples[i].MinorFaults = minor
	b.samples[i].MajorFaults = major
	b.samples[i].FaultsValid = valid
	return nil
}

// Get returns the Sample at index i. Only populated indices are
// readable.
func (b *SampleBuffer) Get(i int) (Sample, error) {
	if i < 0 || i >= b.n {
		return Sample{}, fmt.Errorf("%w: index %d, populated %d", ErrIndex, i, b.n)
	}
	return b.samples[i], nil
}

// Len returns the number of populated samples.
func (b *SampleBuffer) Len() int { return b.n }

// Cap returns the fixed capacity chosen at allocation time.
func (b *SampleBuffer) Cap() int { return len(b.samples) }

// Samples returns the populated prefix in index order. The slice
// aliases the buffer's storage and must be treated as read-only; it is
// valid to take during a run since populated slots are never rewritten.
func (b *SampleBuffer) Samples() []Sample { return b.samples[:b.n] }
