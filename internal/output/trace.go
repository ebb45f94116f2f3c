package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jacquelinekay/rttest/internal/harness"
)

const traceHeader = "iteration timestamp latency minor_pagefaults major_pagefaults"

// TraceWriter persists a measurement run as a whitespace-separated
// table with one row per iteration, followed by a summary block of
// "# key value" lines. It implements harness.RecordWriter.
//
// The timestamp column is the sample's scheduled wake instant in
// monotonic-clock nanoseconds; latency is signed nanoseconds. Rows for
// degraded samples carry a trailing "degraded" marker.
type TraceWriter struct {
	w          *bufio.Writer
	wroteTable bool
}

func NewTraceWriter(w io.Writer) *TraceWriter {
	return &TraceWriter{w: bufio.NewWriter(w)}
}

func (t *TraceWriter) WriteRecord(i int, s harness.Sample) error {
	if !t.wroteTable {
		if _, err := fmt.Fprintln(t.w, traceHeader); err != nil {
			return err
		}
		t.wroteTable = true
	}
	marker := ""
	if !s.FaultsValid {
		marker = " degraded"
	}
	_, err := fmt.Fprintf(t.w, "%d %d %d %d %d%s\n",
		i, s.Scheduled, s.Latency, s.MinorFaults, s.MajorFaults, marker)
	return err
}

func (t *TraceWriter) WriteSummary(r harness.Results) error {
	if !t.wroteTable {
		if _, err := fmt.Fprintln(t.w, traceHeader); err != nil {
			return err
		}
		t.wroteTable = true
	}
	put := func(key, val string) {
		fmt.Fprintf(t.w, "# %s %s\n", key, val)
	}
	put("samples", strconv.FormatUint(r.Samples, 10))
	put("degraded", strconv.FormatUint(r.Degraded, 10))
	if r.HasLatency {
		put("min_latency", strconv.FormatInt(r.Latency.Min, 10))
		put("max_latency", strconv.FormatInt(r.Latency.Max, 10))
		put("mean_latency", strconv.FormatFloat(r.Latency.Mean, 'f', 6, 64))
		put("latency_stddev", strconv.FormatFloat(r.Latency.StdDev, 'f', 6, 64))
	}
	if r.HasJitter {
		put("min_jitter", strconv.FormatInt(r.Jitter.Min, 10))
		put("max_jitter", strconv.FormatInt(r.Jitter.Max, 10))
		put("mean_jitter", strconv.FormatFloat(r.Jitter.Mean, 'f', 6, 64))
		put("jitter_stddev", strconv.FormatFloat(r.Jitter.StdDev, 'f', 6, 64))
	}
	put("minor_pagefaults", strconv.FormatUint(r.MinorPagefaults, 10))
	put("major_pagefaults", strconv.FormatUint(r.MajorPagefaults, 10))
	return t.w.Flush()
}

// TraceRow is one parsed line of the per-iteration table.
type TraceRow struct {
	Iteration   int
	Timestamp   int64
	Latency     int64
	MinorFaults uint64
	MajorFaults uint64
	Degraded    bool
}

// ReadTrace parses a trace previously produced by TraceWriter,
// returning the per-iteration rows and the summary. Summary floats
// round-trip to the six decimal places the writer declares.
func ReadTrace(r io.Reader) ([]TraceRow, harness.Results, error) {
	var rows []TraceRow
	var res harness.Results

	sc := bufio.NewScanner(r)
	sawHeader := false
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if !sawHeader {
			if line != traceHeader {
				return nil, res, fmt.Errorf("unexpected trace header %q", line)
			}
			sawHeader = true
			continue
		}
		if strings.HasPrefix(line, "#") {
			if err := parseSummaryLine(line, &res); err != nil {
				return nil, res, err
			}
			continue
		}
		row, err := parseTraceRow(line)
		if err != nil {
			return nil, res, err
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, res, err
	}
	if !sawHeader {
		return nil, res, fmt.Errorf("trace is missing its header line")
	}
	return rows, res, nil
}

func parseTraceRow(line string) (TraceRow, error) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return TraceRow{}, fmt.Errorf("malformed trace row %q", line)
	}
	var row TraceRow
	var err error
	if row.Iteration, err = strconv.Atoi(fields[0]); err != nil {
		return row, fmt.Errorf("trace row iteration: %w", err)
	}
	if row.Timestamp, err = strconv.ParseInt(fields[1], 10, 64); err != nil {
		return row, fmt.Errorf("trace row timestamp: %w", err)
	}
	if row.Latency, err = strconv.ParseInt(fields[2], 10, 64); err != nil {
		return row, fmt.Errorf("trace row latency: %w", err)
	}
	if row.MinorFaults, err = strconv.ParseUint(fields[3], 10, 64); err != nil {
		return row, fmt.Errorf("trace row minor faults: %w", err)
	}
	if row.MajorFaults, err = strconv.ParseUint(fields[4], 10, 64); err != nil {
		return row, fmt.Errorf("trace row major faults: %w", err)
	}
	row.Degraded = len(fields) > 5 && fields[5] == "degraded"
	return row, nil
}

func parseSummaryLine(line string, res *harness.Results) error {
	fields := strings.Fields(line)
	if len(fields) != 3 || fields[0] != "#" {
		return fmt.Errorf("malformed summary line %q", line)
	}
	key, val := fields[1], fields[2]
	parseI := func() (int64, error) { return strconv.ParseInt(val, 10, 64) }
	parseU := func() (uint64, error) { return strconv.ParseUint(val, 10, 64) }
	parseF := func() (float64, error) { return strconv.ParseFloat(val, 64) }

	var err error
	switch key {
	case "samples":
		res.Samples, err = parseU()
		res.HasLatency = res.Samples > 0
	case "degraded":
		res.Degraded, err = parseU()
	case "min_latency":
		res.Latency.Min, err = parseI()
	case "max_latency":
		res.Latency.Max, err = parseI()
	case "mean_latency":
		res.Latency.Mean, err = parseF()
	case "latency_stddev":
		res.Latency.StdDev, err = parseF()
	case "min_jitter":
		res.HasJitter = true
		res.Jitter.Min, err = parseI()
	case "max_jitter":
		res.HasJitter = true
		res.Jitter.Max, err = parseI()
	case "mean_jitter":
		res.HasJitter = true
		res.Jitter.Mean, err = parseF()
	case "jitter_stddev":
		res.Jitter.StdDev, err = parseF()
	case "minor_pagefaults":
		res.MinorPagefaults, err = parseU()
	case "major_pagefaults":
		res.MajorPagefaults, err = parseU()
	default:
		// Unknown keys are skipped so the format can grow.
		return nil
	}
	if err != nil {
		return fmt.Errorf("summary %s: %w", key, err)
	}
	return nil
}
