package v1

import "time"

type Parameter interface {
	Kind() string
}

func (Timing) Kind() string { return "timing" }

// Timing is a Parameter payload containing wake-up latency and jitter
// statistics for one measurement run.
// Units: all duration-like fields are nanoseconds unless otherwise stated.
// Latency is signed: a negative value means the thread woke before its
// scheduled instant.
type Timing struct {
	// Identity / provenance
	Name string `json:"name,omitempty"` // e.g. trace file basename or experiment label

	// Measurement window
	Iterations   uint64        `json:"iterations"`
	UpdatePeriod time.Duration `json:"update_period"`
	Started      *time.Time    `json:"started,omitempty"` // optional metadata
	Ended        *time.Time    `json:"ended,omitempty"`   // optional metadata

	// Volume / integrity
	Samples  uint64  `json:"samples"`            // populated sample count
	Degraded *uint64 `json:"degraded,omitempty"` // samples with failed fault-counter reads

	// Latency summary (nanoseconds, signed)
	MinLatency    *int64  `json:"min_latency_ns,omitempty"`
	MaxLatency    *int64  `json:"max_latency_ns,omitempty"`
	MeanLatency   float64 `json:"mean_latency_ns"`
	LatencyStdDev float64 `json:"latency_stddev_ns"` // population formula

	// Jitter summary (nanoseconds, signed; consecutive latency deltas).
	// Nil min/max/mean means fewer than two samples: no jitter data.
	MinJitter    *int64   `json:"min_jitter_ns,omitempty"`
	MaxJitter    *int64   `json:"max_jitter_ns,omitempty"`
	MeanJitter   *float64 `json:"mean_jitter_ns,omitempty"`
	JitterStdDev float64  `json:"jitter_stddev_ns"`

	// Latency percentiles in nanoseconds: keys like "p50", "p90", "p99", "p99_9"
	Percentiles *map[string]int64 `json:"percentiles_ns,omitempty"`

	// Aggregate pagefault counts over the run
	MinorPagefaults uint64 `json:"minor_pagefaults"`
	MajorPagefaults uint64 `json:"major_pagefaults"`

	// Measurement semantics / reproducibility
	Clock    *string `json:"clock,omitempty"`  // e.g. "monotonic"
	Policy   *string `json:"policy,omitempty"` // e.g. "fifo", "rr"
	Priority *int    `json:"priority,omitempty"`
}
