package harness

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Stats accumulates min/max/mean/variance over a stream of values in
// one pass, using Welford's update.
type Stats struct {
	count             uint64
	min, max, mean, s float64
}

func (s *Stats) Add(val float64) {
	if s.count == 0 {
		s.min, s.max = val, val
	} else {
		if val < s.min {
			s.min = val
		}
		if val > s.max {
			s.max = val
		}
	}

	s.count++
	oldMean := s.mean
	s.mean += (val - oldMean) / float64(s.count)
	s.s += (val - oldMean) * (val - s.mean)
}

func (s *Stats) Min() float64  { return s.min }
func (s *Stats) Max() float64  { return s.max }
func (s *Stats) Count() uint64 { return s.count }
func (s *Stats) Mean() float64 { return s.mean }

// PopVariance is the population variance (divide by N, not N-1): a
// completed run is the whole population, not a sample of one.
func (s *Stats) PopVariance() float64 {
	if s.count > 0 {
		return s.s / float64(s.count)
	}
	return 0
}

func (s *Stats) PopStdDev() float64 { return math.Sqrt(s.PopVariance()) }

// Distribution summarises one measured quantity in nanoseconds.
type Distribution struct {
	Min    int64
	Max    int64
	Mean   float64
	StdDev float64
}

// Results is the reduced view of a sample buffer. It is recomputed on
// every reduction and reflects the buffer's content at that moment.
// When HasLatency (resp. HasJitter) is false the corresponding
// Distribution holds zero sentinels; StdDev is 0 in that case, never
// negative.
type Results struct {
	Samples  uint64
	Degraded uint64 // samples whose fault counters could not be read

	Latency    Distribution
	HasLatency bool // false only for an empty buffer

	// Jitter is the series latency[i] - latency[i-1], which has
	// max(n-1, 0) values; fewer than two samples means no jitter data.
	Jitter    Distribution
	HasJitter bool

	// Percentiles of the latency series, keys "p50", "p90", "p99",
	// "p99_9". Nil when the buffer is empty.
	Percentiles map[string]int64

	MinorPagefaults uint64
	MajorPagefaults uint64
}

var percentileKeys = []struct {
	key string
	q   float64
}{
	{"p50", 0.50},
	{"p90", 0.90},
	{"p99", 0.99},
	{"p99_9", 0.999},
}

// Reduce computes Results over the populated prefix of buf. A nil or
// empty buffer is a valid degenerate input and yields sentinel values.
func Reduce(buf *SampleBuffer) Results {
	var r Results
	if buf == nil || buf.Len() == 0 {
		return r
	}

	samples := buf.Samples()
	var lat, jit Stats
	latVals := make([]float64, len(samples))
	var prev int64
	for i, s := range samples {
		lat.Add(float64(s.Latency))
		latVals[i] = float64(s.Latency)
		if i > 0 {
			jit.Add(float64(s.Latency - prev))
		}
		prev = s.Latency
		if s.FaultsValid {
			r.MinorPagefaults += s.MinorFaults
			r.MajorPagefaults += s.MajorFaults
		} else {
			r.Degraded++
		}
	}

	r.Samples = uint64(len(samples))
	r.HasLatency = true
	r.Latency = Distribution{
		Min:    int64(lat.Min()),
		Max:    int64(lat.Max()),
		Mean:   lat.Mean(),
		StdDev: lat.PopStdDev(),
	}
	if jit.Count() > 0 {
		r.HasJitter = true
		r.Jitter = Distribution{
			Min:    int64(jit.Min()),
			Max:    int64(jit.Max()),
			Mean:   jit.Mean(),
			StdDev: jit.PopStdDev(),
		}
	}

	sort.Float64s(latVals)
	r.Percentiles = make(map[string]int64, len(percentileKeys))
	for _, pk := range percentileKeys {
		r.Percentiles[pk.key] = int64(stat.Quantile(pk.q, stat.Empirical, latVals, nil))
	}
	return r
}
