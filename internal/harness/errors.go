package harness

import "errors"

// Sentinel errors for the harness. Callers classify failures with
// errors.Is; every operation wraps these with context via fmt.Errorf.
var (
	// ErrConfiguration covers invalid Params: a negative period where a
	// positive one is required, missing required values, or a config
	// file that cannot be parsed.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrScheduling is returned when the OS rejects a policy/priority
	// combination or the caller lacks privilege to apply it.
	ErrScheduling = errors.New("scheduling change failed")

	// ErrMemoryLock is returned when the OS denies locking process
	// pages into memory.
	ErrMemoryLock = errors.New("memory lock failed")

	// ErrPrefault is returned for unreasonable prefault sizes or a
	// failed pool allocation.
	ErrPrefault = errors.New("prefault failed")

	// ErrAllocation is returned when the sample buffer cannot be sized.
	ErrAllocation = errors.New("sample buffer allocation failed")

	// ErrInvalidWorkload is returned by Spin when no workload callable
	// was supplied. Checked once, before any wait occurs.
	ErrInvalidWorkload = errors.New("no workload supplied")

	// ErrWorkload wraps an error returned by the user workload; the run
	// aborts at the failing iteration.
	ErrWorkload = errors.New("workload failed")

	// ErrIndex is returned for out-of-range sample buffer access.
	ErrIndex = errors.New("sample index out of range")

	// ErrResourceQuery is returned when reading the OS fault counters
	// fails. Inside a run this is non-fatal: the sample is marked
	// degraded and the run continues.
	ErrResourceQuery = errors.New("resource usage query failed")

	// ErrInvalidResultsTarget is returned when a results destination is
	// missing or unusable.
	ErrInvalidResultsTarget = errors.New("invalid results target")
)
