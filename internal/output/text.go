package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	v1 "github.com/jacquelinekay/rttest/api/v1"
)

type TextOutput struct{}

func (t *TextOutput) OutputParam(par v1.Parameter, w io.Writer) error {
	switch par.Kind() {
	case "timing":
		return t.outputTiming(par.(v1.Timing), w)
	default:
		return fmt.Errorf("unsupported parameter kind: %s", par.Kind())
	}
}

func (t *TextOutput) outputTiming(tm v1.Timing, w io.Writer) error {
	var sb strings.Builder

	// Header
	if tm.Name != "" {
		sb.WriteString(fmt.Sprintf("=== Timing Statistics for %s ===\n\n", tm.Name))
	} else {
		sb.WriteString("=== Timing Statistics ===\n\n")
	}

	// Measurement window
	sb.WriteString(fmt.Sprintf("Iterations: %d\n", tm.Iterations))
	sb.WriteString(fmt.Sprintf("Update period: %s\n", tm.UpdatePeriod))
	if tm.Started != nil {
		sb.WriteString(fmt.Sprintf("Started: %s\n", tm.Started.Format(time.RFC3339)))
	}
	if tm.Ended != nil {
		sb.WriteString(fmt.Sprintf("Ended: %s\n", tm.Ended.Format(time.RFC3339)))
	}
	sb.WriteString("\n")

	// Volume / integrity
	sb.WriteString(fmt.Sprintf("Samples: %d\n", tm.Samples))
	if tm.Degraded != nil {
		sb.WriteString(fmt.Sprintf("Degraded: %d\n", *tm.Degraded))
	}
	sb.WriteString("\n")

	// Latency (time after the scheduled wake instant; negative = early)
	sb.WriteString("--- Latency ---\n")
	if tm.MinLatency != nil {
		sb.WriteString(fmt.Sprintf("Min: %s\n", formatSignedNanos(*tm.MinLatency)))
	}
	if tm.MaxLatency != nil {
		sb.WriteString(fmt.Sprintf("Max: %s\n", formatSignedNanos(*tm.MaxLatency)))
	}
	sb.WriteString(fmt.Sprintf("Mean: %s\n", formatSignedNanos(int64(tm.MeanLatency))))
	sb.WriteString(fmt.Sprintf("StdDev: %s\n", formatSignedNanos(int64(tm.LatencyStdDev))))
	sb.WriteString("\n")

	// Jitter (consecutive latency deltas)
	sb.WriteString("--- Jitter ---\n")
	if tm.MinJitter == nil {
		sb.WriteString("(fewer than two samples: no jitter data)\n")
	} else {
		sb.WriteString(fmt.Sprintf("Min: %s\n", formatSignedNanos(*tm.MinJitter)))
		sb.WriteString(fmt.Sprintf("Max: %s\n", formatSignedNanos(*tm.MaxJitter)))
		sb.WriteString(fmt.Sprintf("Mean: %s\n", formatSignedNanos(int64(*tm.MeanJitter))))
		sb.WriteString(fmt.Sprintf("StdDev: %s\n", formatSignedNanos(int64(tm.JitterStdDev))))
	}
	sb.WriteString("\n")

	// Percentiles
	if tm.Percentiles != nil && len(*tm.Percentiles) > 0 {
		sb.WriteString("--- Latency Percentiles ---\n")
		order := []string{"p50", "p90", "p95", "p99", "p99_9", "p99_99"}
		for _, key := range order {
			if val, ok := (*tm.Percentiles)[key]; ok {
				sb.WriteString(fmt.Sprintf("%s: %s\n", key, formatSignedNanos(val)))
			}
		}
		for key, val := range *tm.Percentiles {
			if !contains(order, key) {
				sb.WriteString(fmt.Sprintf("%s: %s\n", key, formatSignedNanos(val)))
			}
		}
		sb.WriteString("\n")
	}

	// Pagefaults
	sb.WriteString("--- Pagefaults ---\n")
	sb.WriteString(fmt.Sprintf("Minor: %d\n", tm.MinorPagefaults))
	sb.WriteString(fmt.Sprintf("Major: %d\n", tm.MajorPagefaults))

	// Metadata
	if tm.Clock != nil || tm.Policy != nil || tm.Priority != nil {
		sb.WriteString("\n--- Measurement Info ---\n")
		if tm.Clock != nil {
			sb.WriteString(fmt.Sprintf("Clock: %s\n", *tm.Clock))
		}
		if tm.Policy != nil {
			sb.WriteString(fmt.Sprintf("Policy: %s\n", *tm.Policy))
		}
		if tm.Priority != nil {
			sb.WriteString(fmt.Sprintf("Priority: %d\n", *tm.Priority))
		}
	}

	_, err := w.Write([]byte(sb.String()))
	return err
}

// formatSignedNanos converts signed nanoseconds to a human-readable
// duration string, keeping the sign for early wakes.
func formatSignedNanos(ns int64) string {
	sign := ""
	abs := ns
	if ns < 0 {
		sign = "-"
		abs = -ns
	}
	d := time.Duration(abs)
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%s%dns", sign, abs)
	case d < time.Millisecond:
		return fmt.Sprintf("%s%.2fµs", sign, float64(abs)/1000.0)
	case d < time.Second:
		return fmt.Sprintf("%s%.2fms", sign, float64(abs)/1000000.0)
	default:
		return fmt.Sprintf("%s%.3fs", sign, float64(abs)/1000000000.0)
	}
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
