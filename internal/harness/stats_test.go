package harness

import (
	"math"
	"testing"
)

func fillBuffer(t *testing.T, latencies []int64) *SampleBuffer {
	t.Helper()
	buf, err := NewSampleBuffer(uint64(len(latencies)))
	if err != nil {
		t.Fatalf("NewSampleBuffer failed: %v", err)
	}
	for i, lat := range latencies {
		s := Sample{Scheduled: int64(i) * 1000, Actual: int64(i)*1000 + lat, Latency: lat, FaultsValid: true}
		if err := buf.Set(i, s); err != nil {
			t.Fatalf("Set(%d) failed: %v", i, err)
		}
	}
	return buf
}

// TestReduce_JitterSeries verifies the documented jitter example:
// latencies [10, 12, 9, 9, 15] give jitter [2, -3, 0, 6].
func TestReduce_JitterSeries(t *testing.T) {
	buf := fillBuffer(t, []int64{10, 12, 9, 9, 15})

	r := Reduce(buf)

	if r.Samples != 5 {
		t.Fatalf("Expected 5 samples, got %d", r.Samples)
	}
	if !r.HasJitter {
		t.Fatal("Expected jitter data for 5 samples")
	}
	if r.Jitter.Min != -3 {
		t.Errorf("Expected jitter min -3, got %d", r.Jitter.Min)
	}
	if r.Jitter.Max != 6 {
		t.Errorf("Expected jitter max 6, got %d", r.Jitter.Max)
	}
	wantMean := (2.0 - 3.0 + 0.0 + 6.0) / 4.0
	if math.Abs(r.Jitter.Mean-wantMean) > 1e-9 {
		t.Errorf("Expected jitter mean %v, got %v", wantMean, r.Jitter.Mean)
	}
	// Population stddev over [2, -3, 0, 6]
	var sq float64
	for _, j := range []float64{2, -3, 0, 6} {
		sq += (j - wantMean) * (j - wantMean)
	}
	wantStdDev := math.Sqrt(sq / 4.0)
	if math.Abs(r.Jitter.StdDev-wantStdDev) > 1e-9 {
		t.Errorf("Expected jitter stddev %v, got %v", wantStdDev, r.Jitter.StdDev)
	}
	t.Logf("jitter: min=%d max=%d mean=%v stddev=%v", r.Jitter.Min, r.Jitter.Max, r.Jitter.Mean, r.Jitter.StdDev)
}

func TestReduce_LatencyDistribution(t *testing.T) {
	buf := fillBuffer(t, []int64{10, 12, 9, 9, 15})

	r := Reduce(buf)

	if !r.HasLatency {
		t.Fatal("Expected latency data")
	}
	if r.Latency.Min != 9 || r.Latency.Max != 15 {
		t.Errorf("Expected min/max 9/15, got %d/%d", r.Latency.Min, r.Latency.Max)
	}
	wantMean := 11.0
	if math.Abs(r.Latency.Mean-wantMean) > 1e-9 {
		t.Errorf("Expected mean %v, got %v", wantMean, r.Latency.Mean)
	}
	var sq float64
	for _, l := range []float64{10, 12, 9, 9, 15} {
		sq += (l - wantMean) * (l - wantMean)
	}
	wantStdDev := math.Sqrt(sq / 5.0)
	if math.Abs(r.Latency.StdDev-wantStdDev) > 1e-9 {
		t.Errorf("Expected population stddev %v, got %v", wantStdDev, r.Latency.StdDev)
	}
}

// TestReduce_Empty verifies an empty buffer reduces to sentinel values,
// not an error.
func TestReduce_Empty(t *testing.T) {
	buf, err := NewSampleBuffer(0)
	if err != nil {
		t.Fatalf("NewSampleBuffer failed: %v", err)
	}

	r := Reduce(buf)

	if r.HasLatency || r.HasJitter {
		t.Error("Empty buffer should carry no latency or jitter data")
	}
	if r.Samples != 0 || r.Latency.StdDev != 0 || r.Jitter.StdDev != 0 {
		t.Errorf("Expected zero sentinels, got %+v", r)
	}
	if r.Percentiles != nil {
		t.Error("Empty buffer should have nil percentiles")
	}
}

func TestReduce_NilBuffer(t *testing.T) {
	r := Reduce(nil)
	if r.Samples != 0 || r.HasLatency {
		t.Errorf("Nil buffer should reduce to sentinels, got %+v", r)
	}
}

// TestReduce_SingleSample: one sample has latency stats but no jitter.
func TestReduce_SingleSample(t *testing.T) {
	buf := fillBuffer(t, []int64{42})

	r := Reduce(buf)

	if !r.HasLatency {
		t.Fatal("Expected latency data for one sample")
	}
	if r.HasJitter {
		t.Error("One sample should have no jitter data")
	}
	if r.Jitter.StdDev != 0 {
		t.Errorf("Expected jitter stddev 0, got %v", r.Jitter.StdDev)
	}
	if r.Latency.Min != 42 || r.Latency.Max != 42 {
		t.Errorf("Expected min=max=42, got %d/%d", r.Latency.Min, r.Latency.Max)
	}
}

// TestReduce_IdenticalLatencies: stddev must be exactly 0 when every
// latency is the same, and never negative.
func TestReduce_IdenticalLatencies(t *testing.T) {
	buf := fillBuffer(t, []int64{0, 0, 0, 0})

	r := Reduce(buf)

	if r.Latency.StdDev != 0 {
		t.Errorf("Expected latency stddev 0, got %v", r.Latency.StdDev)
	}
	if r.Jitter.StdDev != 0 {
		t.Errorf("Expected jitter stddev 0, got %v", r.Jitter.StdDev)
	}
	if r.Latency.StdDev < 0 || r.Jitter.StdDev < 0 {
		t.Error("Standard deviation must never be negative")
	}
}

func TestReduce_Percentiles(t *testing.T) {
	latencies := make([]int64, 100)
	for i := range latencies {
		latencies[i] = int64(i + 1) // 1..100
	}
	buf := fillBuffer(t, latencies)

	r := Reduce(buf)

	if r.Percentiles == nil {
		t.Fatal("Expected percentiles for a populated buffer")
	}
	for _, key := range []string{"p50", "p90", "p99", "p99_9"} {
		if _, ok := r.Percentiles[key]; !ok {
			t.Errorf("Missing percentile %s", key)
		}
	}
	if p50 := r.Percentiles["p50"]; p50 < 45 || p50 > 55 {
		t.Errorf("p50 of 1..100 should be near 50, got %d", p50)
	}
	if p99 := r.Percentiles["p99"]; p99 < 95 {
		t.Errorf("p99 of 1..100 should be near 99, got %d", p99)
	}
	t.Logf("percentiles: %v", r.Percentiles)
}

func TestReduce_FaultAggregation(t *testing.T) {
	buf, err := NewSampleBuffer(3)
	if err != nil {
		t.Fatalf("NewSampleBuffer failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := buf.Set(i, Sample{Latency: int64(i)}); err != nil {
			t.Fatalf("Set(%d) failed: %v", i, err)
		}
	}
	if err := buf.SetFaults(0, 2, 1, true); err != nil {
		t.Fatalf("SetFaults failed: %v", err)
	}
	if err := buf.SetFaults(1, 0, 0, false); err != nil {
		t.Fatalf("SetFaults failed: %v", err)
	}
	if err := buf.SetFaults(2, 3, 0, true); err != nil {
		t.Fatalf("SetFaults failed: %v", err)
	}

	r := Reduce(buf)

	if r.MinorPagefaults != 5 || r.MajorPagefaults != 1 {
		t.Errorf("Expected 5 minor / 1 major faults, got %d/%d", r.MinorPagefaults, r.MajorPagefaults)
	}
	if r.Degraded != 1 {
		t.Errorf("Expected 1 degraded sample, got %d", r.Degraded)
	}
}

func TestStats_Welford(t *testing.T) {
	var s Stats
	vals := []float64{4, 7, 13, 16}
	for _, v := range vals {
		s.Add(v)
	}

	if s.Count() != 4 {
		t.Fatalf("Expected count 4, got %d", s.Count())
	}
	if s.Min() != 4 || s.Max() != 16 {
		t.Errorf("Expected min/max 4/16, got %v/%v", s.Min(), s.Max())
	}
	if math.Abs(s.Mean()-10) > 1e-9 {
		t.Errorf("Expected mean 10, got %v", s.Mean())
	}
	// Population variance of [4,7,13,16]: ((6^2+3^2+3^2+6^2)/4) = 22.5
	if math.Abs(s.PopVariance()-22.5) > 1e-9 {
		t.Errorf("Expected population variance 22.5, got %v", s.PopVariance())
	}
	if math.Abs(s.PopStdDev()-math.Sqrt(22.5)) > 1e-9 {
		t.Errorf("Expected population stddev %v, got %v", math.Sqrt(22.5), s.PopStdDev())
	}
}

func TestStats_EmptyVariance(t *testing.T) {
	var s Stats
	if s.PopVariance() != 0 || s.PopStdDev() != 0 {
		t.Error("Empty stats must report zero variance and stddev")
	}
}
