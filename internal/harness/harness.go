// Package harness runs a caller-supplied workload under an OS
// real-time scheduling policy and measures each iteration's wake-up
// latency, inter-iteration jitter and page-fault activity.
//
// One Harness is associated with exactly one OS thread. The caller is
// responsible for pinning the measurement goroutine with
// runtime.LockOSThread before applying scheduling or sampling fault
// counters; the harness does not create threads itself. Instances are
// never shared across threads: a second measurement thread derives its
// own Harness with NewChild, which snapshots the parent's parameters.
package harness

import (
	"fmt"
	"time"
)

// State tracks the lifecycle of a Harness.
type State int32

const (
	StateUnconfigured State = iota
	StateConfigured
	StateRunning
	StateCompleted
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateConfigured:
		return "configured"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Workload is the opaque callable measured by the spin loop. It runs
// synchronously on the measurement thread once per iteration. A
// non-nil error aborts the run.
type Workload func() error

// Harness owns the parameters, sample buffer and scheduler state for
// one measurement thread.
type Harness struct {
	params Params
	buffer *SampleBuffer
	state  State

	// prevFaults is the running baseline for per-iteration fault
	// deltas; faultsOK is false once a counter read has failed.
	prevFaults faultCounts
	faultsOK   bool

	started time.Time
	ended   time.Time
}

// New validates params, allocates and prefaults the sample buffer, and
// returns a Configured harness.
func New(params Params) (*Harness, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	buf, err := NewSampleBuffer(params.Iterations)
	if err != nil {
		return nil, err
	}
	return &Harness{
		params: params,
		buffer: buf,
		state:  StateConfigured,
	}, nil
}

// NewChild creates a harness for a new measurement thread, snapshotting
// the parent's parameter values. Later changes to either harness do not
// propagate to the other.
func NewChild(parent *Harness) (*Harness, error) {
	if parent == nil {
		return nil, fmt.Errorf("%w: nil parent harness", ErrConfiguration)
	}
	return New(parent.params)
}

// Params returns a copy of the harness's parameters.
func (h *Harness) Params() Params { return h.params }

// State returns the harness's lifecycle state.
func (h *Harness) State() State { return h.state }

// Buffer exposes the sample buffer for consumers. Populated indices
// are safe to read during a run; full consumption should wait for
// StateCompleted.
func (h *Harness) Buffer() *SampleBuffer { return h.buffer }

// Started and Ended bracket the most recent run's wall-clock window.
func (h *Harness) Started() time.Time { return h.started }
func (h *Harness) Ended() time.Time   { return h.ended }

// Finish releases the resources owned by the harness. It is safe to
// call in any state, including after a failed run, and is idempotent.
func (h *Harness) Finish() error {
	h.buffer = nil
	h.state = StateUnconfigured
	return nil
}
