package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	v1 "github.com/jacquelinekay/rttest/api/v1"
)

func sampleTiming() v1.Timing {
	minLat, maxLat := int64(-200), int64(15000)
	minJit, maxJit := int64(-900), int64(1200)
	meanJit := 12.5
	policy := "fifo"
	priority := 98
	percentiles := map[string]int64{"p50": 800, "p90": 2100, "p99": 9000, "p99_9": 14000}
	return v1.Timing{
		Name:          "run-1",
		Iterations:    1000,
		UpdatePeriod:  time.Millisecond,
		Samples:       1000,
		MinLatency:    &minLat,
		MaxLatency:    &maxLat,
		MeanLatency:   950.25,
		LatencyStdDev: 410.1,
		MinJitter:     &minJit,
		MaxJitter:     &maxJit,
		MeanJitter:    &meanJit,
		JitterStdDev:  300,
		Percentiles:   &percentiles,
		Policy:        &policy,
		Priority:      &priority,
	}
}

func TestTextOutput(t *testing.T) {
	var out bytes.Buffer
	if err := (&TextOutput{}).OutputParam(sampleTiming(), &out); err != nil {
		t.Fatalf("OutputParam failed: %v", err)
	}
	text := out.String()

	for _, want := range []string{
		"=== Timing Statistics for run-1 ===",
		"Iterations: 1000",
		"--- Latency ---",
		"--- Jitter ---",
		"--- Latency Percentiles ---",
		"p99_9:",
		"Minor: 0",
		"Policy: fifo",
		"Priority: 98",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Text output missing %q\n%s", want, text)
		}
	}
	// Negative values keep their sign.
	if !strings.Contains(text, "Min: -200ns") {
		t.Errorf("Expected signed latency min, got:\n%s", text)
	}
}

func TestTextOutput_NoJitterSentinel(t *testing.T) {
	tm := sampleTiming()
	tm.MinJitter, tm.MaxJitter, tm.MeanJitter = nil, nil, nil
	tm.JitterStdDev = 0

	var out bytes.Buffer
	if err := (&TextOutput{}).OutputParam(tm, &out); err != nil {
		t.Fatalf("OutputParam failed: %v", err)
	}
	if !strings.Contains(out.String(), "no jitter data") {
		t.Errorf("Expected jitter sentinel text, got:\n%s", out.String())
	}
}

func TestFormatSignedNanos(t *testing.T) {
	cases := []struct {
		ns   int64
		want string
	}{
		{0, "0ns"},
		{999, "999ns"},
		{-999, "-999ns"},
		{1500, "1.50µs"},
		{-2500000, "-2.50ms"},
		{1500000000, "1.500s"},
	}
	for _, tc := range cases {
		if got := formatSignedNanos(tc.ns); got != tc.want {
			t.Errorf("formatSignedNanos(%d) = %q, want %q", tc.ns, got, tc.want)
		}
	}
}

func TestJsonOutput(t *testing.T) {
	var out bytes.Buffer
	if err := (&JsonOutput{}).OutputParam(sampleTiming(), &out); err != nil {
		t.Fatalf("OutputParam failed: %v", err)
	}

	var decoded v1.Timing
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if decoded.Samples != 1000 || decoded.MeanLatency != 950.25 {
		t.Errorf("JSON round trip lost data: %+v", decoded)
	}
	if decoded.MinLatency == nil || *decoded.MinLatency != -200 {
		t.Errorf("JSON round trip lost min latency: %+v", decoded.MinLatency)
	}

	var compact bytes.Buffer
	if err := (&JsonOutput{Compact: true}).OutputParam(sampleTiming(), &compact); err != nil {
		t.Fatalf("Compact OutputParam failed: %v", err)
	}
	if strings.Contains(strings.TrimSpace(compact.String()), "\n") {
		t.Error("Compact output should be a single line")
	}
}
