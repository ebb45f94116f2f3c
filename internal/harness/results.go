package harness

import (
	"fmt"

	v1 "github.com/jacquelinekay/rttest/api/v1"
)

// RecordWriter is the persistence contract the harness hands its
// finished data to: one record per iteration, then one summary. The
// harness's responsibility ends at producing this view; opening files
// and choosing formats belongs to the sink.
type RecordWriter interface {
	WriteRecord(i int, s Sample) error
	WriteSummary(r Results) error
}

// CalculateStatistics reduces the current sample buffer into out. The
// reduction always runs against the buffer's current content; nothing
// is cached. An empty (or already-released) buffer yields sentinel
// values, not an error.
func (h *Harness) CalculateStatistics(out *Results) error {
	if out == nil {
		return fmt.Errorf("%w: nil results target", ErrInvalidResultsTarget)
	}
	*out = Reduce(h.buffer)
	return nil
}

// WriteResults streams every populated sample and the reduced summary
// to w in iteration order.
func (h *Harness) WriteResults(w RecordWriter) error {
	if w == nil {
		return fmt.Errorf("%w: nil record writer", ErrInvalidResultsTarget)
	}
	if h.buffer != nil {
		for i, s := range h.buffer.Samples() {
			if err := w.WriteRecord(i, s); err != nil {
				return err
			}
		}
	}
	return w.WriteSummary(Reduce(h.buffer))
}

// Snapshot builds the sink-facing Timing payload from the buffer's
// current content and the run metadata.
func (h *Harness) Snapshot() (v1.Timing, error) {
	var r Results
	if err := h.CalculateStatistics(&r); err != nil {
		return v1.Timing{}, err
	}

	policy := string(h.params.SchedPolicy)
	priority := h.params.SchedPriority
	clock := clockName

	t := v1.Timing{
		Name:         h.params.Filename,
		Iterations:   h.params.Iterations,
		UpdatePeriod: h.params.UpdatePeriod,

		Samples: r.Samples,

		MeanLatency:   r.Latency.Mean,
		LatencyStdDev: r.Latency.StdDev,
		JitterStdDev:  r.Jitter.StdDev,

		MinorPagefaults: r.MinorPagefaults,
		MajorPagefaults: r.MajorPagefaults,

		Clock:    &clock,
		Policy:   &policy,
		Priority: &priority,
	}
	if !h.started.IsZero() {
		started := h.started
		t.Started = &started
	}
	if !h.ended.IsZero() {
		ended := h.ended
		t.Ended = &ended
	}
	if r.Degraded > 0 {
		degraded := r.Degraded
		t.Degraded = &degraded
	}
	if r.HasLatency {
		minLat, maxLat := r.Latency.Min, r.Latency.Max
		t.MinLatency = &minLat
		t.MaxLatency = &maxLat
	}
	if r.HasJitter {
		minJit, maxJit := r.Jitter.Min, r.Jitter.Max
		meanJit := r.Jitter.Mean
		t.MinJitter = &minJit
		t.MaxJitter = &maxJit
		t.MeanJitter = &meanJit
	}
	if r.Percentiles != nil {
		t.Percentiles = &r.Percentiles
	}
	return t, nil
}
