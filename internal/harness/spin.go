package harness

import (
	"context"
	"fmt"
	"time"
)

// Spin runs the configured number of timed iterations at the
// configured update period, invoking w once per iteration on the
// calling thread.
func (h *Harness) Spin(ctx context.Context, w Workload) error {
	return h.SpinPeriod(ctx, w, h.params.UpdatePeriod, h.params.Iterations)
}

// SpinPeriod is Spin with an explicit period and iteration count that
// override the stored Params for this call only; the stored Params are
// not mutated.
//
// Wake instants are absolute: scheduled[i] = origin + (i+1)*period,
// computed from the fixed origin captured at loop entry, so execution
// time of earlier iterations never shifts later wake times. A wake
// instant already in the past is not an error; the wait returns
// immediately and the overrun is recorded as a large positive latency.
//
// ctx is checked between iterations only, never inside the timed wait.
// Cancellation aborts the run with ctx's error; samples written so far
// remain readable.
func (h *Harness) SpinPeriod(ctx context.Context, w Workload, period time.Duration, iterations uint64) error {
	if w == nil {
		return fmt.Errorf("%w: spin requires a workload", ErrInvalidWorkload)
	}
	if h.state != StateConfigured {
		return fmt.Errorf("%w: cannot spin in state %s", ErrConfiguration, h.state)
	}
	if period < 0 {
		return fmt.Errorf("%w: negative period %v", ErrConfiguration, period)
	}
	if uint64(h.buffer.Cap()) != iterations || h.buffer.Len() != 0 {
		buf, err := NewSampleBuffer(iterations)
		if err != nil {
			return err
		}
		h.buffer = buf
	}

	h.state = StateRunning
	h.started = time.Now()

	if base, err := threadFaultCounts(); err == nil {
		h.prevFaults = base
		h.faultsOK = true
	} else {
		h.faultsOK = false
	}

	origin, err := monotonicNow()
	if err != nil {
		return h.abort(fmt.Errorf("read clock: %w", err))
	}
	periodNs := period.Nanoseconds()

	for i := uint64(0); i < iterations; i++ {
		if err := ctx.Err(); err != nil {
			return h.abort(err)
		}
		sched := origin + int64(i+1)*periodNs
		now, err := monotonicNow()
		if err != nil {
			return h.abort(fmt.Errorf("read clock: %w", err))
		}
		if now < sched {
			if err := sleepUntil(sched); err != nil {
				return h.abort(fmt.Errorf("absolute wait: %w", err))
			}
			now, err = monotonicNow()
			if err != nil {
				return h.abort(fmt.Errorf("read clock: %w", err))
			}
		}
		if err := h.buffer.Set(int(i), Sample{
			Scheduled: sched,
			Actual:    now,
			Latency:   now - sched,
		}); err != nil {
			return h.abort(err)
		}
		if err := w(); err != nil {
			return h.abort(fmt.Errorf("%w: iteration %d: %v", ErrWorkload, i, err))
		}
		// Fault read failures degrade the sample, never the run.
		_ = h.SampleFaultAt(int(i))
	}

	h.ended = time.Now()
	h.state = StateCompleted
	return nil
}

func (h *Harness) abort(err error) error {
	h.ended = time.Now()
	h.state = StateAborted
	return err
}

// SampleFaultAt reads the thread's current fault counters and stores
// the delta since the previous read into the buffer slot for iteration
// i. The baseline is captured at loop entry, so each stored count
// covers exactly one iteration.
func (h *Harness) SampleFaultAt(i int) error {
	if h.buffer == nil {
		return fmt.Errorf("%w: no sample buffer", ErrIndex)
	}
	cur, err := threadFaultCounts()
	if err != nil {
		h.faultsOK = false
		_ = h.buffer.SetFaults(i, 0, 0, false)
		return fmt.Errorf("%w: %v", ErrResourceQuery, err)
	}
	if !h.faultsOK {
		// Re-baseline after a failed read. This sample's delta would
		// span more than one iteration, so it stays degraded.
		h.prevFaults = cur
		h.faultsOK = true
		return h.buffer.SetFaults(i, 0, 0, false)
	}
	minor := cur.minor - h.prevFaults.minor
	major := cur.major - h.prevFaults.major
	h.prevFaults = cur
	return h.buffer.SetFaults(i, minor, major, true)
}
