package harness

import (
	"fmt"
	"os"
	"runtime"
)

// Everything in this file executes in the initialization phase, before
// the first timed iteration. None of it may be called from inside the
// spin loop.

// stack prefaulting walks frames of this size; one page per chunk
// would under-touch large requests, one chunk per page would blow the
// frame budget.
const stackChunk = 64 * 1024

// maxStackPrefault bounds PrefaultStack requests. Goroutine stacks
// grow on demand but the runtime caps them near 1 GiB; half of that is
// already an unreasonable ask for a measurement thread.
const maxStackPrefault = 512 * 1024 * 1024

// SetSchedulingPriority applies the given real-time scheduling class
// and priority to the calling thread.
func (h *Harness) SetSchedulingPriority(priority int, policy Policy) error {
	if policy == PolicyFIFO || policy == PolicyRoundRobin {
		if priority < 1 || priority > 99 {
			return fmt.Errorf("%w: priority %d outside 1-99 for policy %q",
				ErrScheduling, priority, policy)
		}
	}
	if err := applySchedAttr(policy, priority); err != nil {
		return fmt.Errorf("%w: policy %q priority %d: %w", ErrScheduling, policy, priority, err)
	}
	return nil
}

// SetDefaultPriority applies the policy and priority stored in Params.
func (h *Harness) SetDefaultPriority() error {
	return h.SetSchedulingPriority(h.params.SchedPriority, h.params.SchedPolicy)
}

// LockMemory requests residency for all current and future pages of
// the process. A no-op when Params.LockMemory is off.
func (h *Harness) LockMemory() error {
	if !h.params.LockMemory {
		return nil
	}
	if err := lockProcessMemory(); err != nil {
		return fmt.Errorf("%w: %v", ErrMemoryLock, err)
	}
	return nil
}

// PrefaultStack touches size bytes of stack memory so first-touch
// faults are paid now rather than inside the timed region. size 0 uses
// the configured Params.StackSize.
func (h *Harness) PrefaultStack(size uint64) error {
	if size == 0 {
		size = h.params.StackSize
	}
	if size > maxStackPrefault {
		return fmt.Errorf("%w: stack size %d exceeds %d", ErrPrefault, size, maxStackPrefault)
	}
	touchStack(size)
	return nil
}

//go:noinline
func touchStack(remaining uint64) {
	var block [stackChunk]byte
	page := os.Getpagesize()
	for i := 0; i < len(block); i += page {
		block[i] = 0
	}
	if remaining > stackChunk {
		touchStack(remaining - stackChunk)
	}
	runtime.KeepAlive(&block)
}

// LockAndPrefaultDynamic locks process memory and pre-warms the heap
// by allocating and touching a poolSize-byte region once. The pool is
// released immediately; it exists only to fault in pages the allocator
// would otherwise fault in during measurement. A no-op when
// Params.LockMemory is off.
//
// The original trick of disabling allocator trimming has no equivalent
// for the Go runtime; locked pages stay resident via mlockall alone.
func (h *Harness) LockAndPrefaultDynamic(poolSize uint64) error {
	if !h.params.LockMemory {
		return nil
	}
	if err := lockProcessMemory(); err != nil {
		return fmt.Errorf("%w: %v", ErrMemoryLock, err)
	}
	if poolSize > maxStackPrefault*4 {
		return fmt.Errorf("%w: pool size %d unreasonable", ErrPrefault, poolSize)
	}
	pool := make([]byte, poolSize)
	page := uint64(os.Getpagesize())
	for i := uint64(0); i < poolSize; i += page {
		pool[i] = 0
	}
	runtime.KeepAlive(pool)
	return nil
}
