/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jacquelinekay/rttest/internal/harness"
	"github.com/jacquelinekay/rttest/internal/output"
)

// spinCmd represents the spin command
func NewCmdSpin(parent string) *cobra.Command {
	flags := NewSpinFlags()
	cmd := &cobra.Command{
		Use:                   "spin",
		DisableFlagsInUseLine: true,
		Short:                 spinShort,
		Long:                  spinLong,
		Example:               spinExample,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := flags.ToOptions(cmd, args)
			if err != nil {
				return err
			}
			return o.Run()
		},
	}

	flags.AddFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(NewCmdSpin(rootCmd.Name()))
}

var (
	spinLong = `
		Run a periodic no-op workload under a real-time scheduling policy and
		measure per-iteration wake-up latency, jitter, and page-fault counts.

		Each iteration has an absolute scheduled wake instant computed from a
		fixed origin, so execution time never drifts the schedule. Latency is
		the signed difference between the actual and scheduled wake instants;
		jitter is the difference between consecutive latencies. Memory locking
		and prefaulting run before the first timed iteration so page-fault cost
		is not misattributed to the scheduler.

		Real-time policies (fifo, rr) usually require privilege; use
		--policy other to run without it.`

	spinExample = `
		# 1000 iterations at a 1ms period under SCHED_RR priority 80 (defaults)
		rttest spin

		# 10000 iterations at 100us under SCHED_FIFO priority 98
		rttest spin -i 10000 -u 100us -s fifo -t 98

		# Lock memory, prefault a 100MB dynamic pool, write a trace file
		rttest spin -m 100mb -f output.txt

		# Repeat the experiment 5 times, numbering the trace files
		rttest spin -r 5 -f output.txt

		# Machine-readable summary
		rttest spin --json -o results.json

		# Load parameters from a YAML file, overriding the period
		rttest spin --config run.yaml -u 250us`
	spinShort = "Measure wake-up latency and jitter of a periodic real-time loop."
)

// Flags will be converted to options, which drive the measurement run
// and the result outputs.
type SpinFlags struct {
	// Measurement window
	Iterations   uint64
	UpdatePeriod string // duration with ns/us/ms/s suffix; bare numbers are microseconds

	// Scheduling
	Priority int
	Policy   string

	// Memory determinism
	Memory    string // pool size with b/kb/mb/gb suffix; bare numbers are megabytes; enables locking
	StackSize string

	// Experiment shape
	Repeat uint
	Config string

	// Output selection
	File   string // trace file path ("" => no trace)
	JSON   bool
	Pretty bool
	Output string // -o summary destination (empty => stdout)
}

// NewSpinFlags returns a default SpinFlags
func NewSpinFlags() *SpinFlags {
	return &SpinFlags{}
}

// AddFlags registers flags for a cli
func (flags *SpinFlags) AddFlags(cmd *cobra.Command) {
	// Measurement window
	cmd.Flags().Uint64VarP(&flags.Iterations, "iterations", "i", flags.Iterations,
		"Number of timed iterations to run.")
	cmd.Flags().StringVarP(&flags.UpdatePeriod, "update-period", "u", flags.UpdatePeriod,
		"Interval between scheduled wake instants (e.g. 100us, 1ms; bare numbers are microseconds).")

	// Scheduling
	cmd.Flags().IntVarP(&flags.Priority, "priority", "t", flags.Priority,
		"Real-time scheduling priority (commonly 1-99).")
	cmd.Flags().StringVarP(&flags.Policy, "policy", "s", flags.Policy,
		"Scheduling policy: fifo, rr, or other.")

	// Memory determinism
	cmd.Flags().StringVarP(&flags.Memory, "memory", "m", flags.Memory,
		"Lock memory and prefault a dynamic pool of this size (e.g. 100mb; bare numbers are megabytes).")
	cmd.Flags().StringVar(&flags.StackSize, "stack-size", flags.StackSize,
		"Stack bytes to prefault before measuring (e.g. 1mb).")

	// Experiment shape
	cmd.Flags().UintVarP(&flags.Repeat, "repeat", "r", flags.Repeat,
		"Repeat the whole experiment this many times.")
	cmd.Flags().StringVar(&flags.Config, "config", flags.Config,
		"Load parameters from a YAML file; flags override file values.")

	// Output selection
	cmd.Flags().StringVarP(&flags.File, "file", "f", flags.File,
		"Write the per-iteration trace to this file.")
	cmd.Flags().BoolVar(&flags.JSON, "json", flags.JSON,
		"If true, output the summary as JSON")
	cmd.Flags().BoolVar(&flags.Pretty, "pretty", flags.Pretty,
		"If true, pretty-print JSON output (only applies with --json).")
	cmd.Flags().StringVarP(&flags.Output, "output", "o", flags.Output,
		"Write the summary to a file instead of stdout.")
}

func (flags *SpinFlags) ToOptions(cmd *cobra.Command, args []string) (*SpinOptions, error) {
	params := harness.DefaultParams()
	if flags.Config != "" {
		loaded, err := harness.LoadParams(flags.Config)
		if err != nil {
			return nil, err
		}
		params = loaded
	}

	// Flags override whatever the config file (or defaults) provided.
	if cmd.Flags().Changed("iterations") {
		params.Iterations = flags.Iterations
	}
	if cmd.Flags().Changed("update-period") {
		period, err := parsePeriod(flags.UpdatePeriod)
		if err != nil {
			return nil, err
		}
		params.UpdatePeriod = period
	}
	if cmd.Flags().Changed("priority") {
		params.SchedPriority = flags.Priority
	}
	if cmd.Flags().Changed("policy") {
		switch flags.Policy {
		case "fifo":
			params.SchedPolicy = harness.PolicyFIFO
		case "rr":
			params.SchedPolicy = harness.PolicyRoundRobin
		case "other":
			params.SchedPolicy = harness.PolicyOther
		default:
			return nil, fmt.Errorf("invalid scheduling policy %q (valid: fifo, rr, other)", flags.Policy)
		}
	}
	if cmd.Flags().Changed("memory") {
		size, err := parseMemorySize(flags.Memory)
		if err != nil {
			return nil, err
		}
		params.LockMemory = true
		params.PoolSize = size
	}
	if cmd.Flags().Changed("stack-size") {
		size, err := parseMemorySize(flags.StackSize)
		if err != nil {
			return nil, err
		}
		params.StackSize = size
	}
	if cmd.Flags().Changed("repeat") {
		params.Repetitions = flags.Repeat
	}
	if cmd.Flags().Changed("file") {
		params.Filename = flags.File
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	o := &SpinOptions{
		Params: params,
		Pretty: flags.Pretty,
	}

	// Determine summary format
	if flags.JSON {
		o.Format = OutputJSON
	} else {
		o.Format = OutputText
	}

	// Handle summary destination
	if flags.Output != "" {
		// Will be opened in Run()
		o.OutputPath = flags.Output
	}
	// Otherwise defaults to stdout in Run()

	return o, nil
}

// parsePeriod parses a duration with an ns/us/ms/s suffix. Bare
// numbers are microseconds, matching the historical flag convention.
func parsePeriod(input string) (time.Duration, error) {
	input = strings.TrimSpace(input)
	units := []struct {
		suffix string
		scale  time.Duration
	}{
		{"ns", time.Nanosecond},
		{"us", time.Microsecond},
		{"µs", time.Microsecond},
		{"ms", time.Millisecond},
		{"s", time.Second},
	}
	for _, u := range units {
		if num, found := strings.CutSuffix(input, u.suffix); found {
			n, err := strconv.ParseInt(strings.TrimSpace(num), 10, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid update period %q: %w", input, err)
			}
			return time.Duration(n) * u.scale, nil
		}
	}
	n, err := strconv.ParseInt(input, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid update period %q: %w", input, err)
	}
	return time.Duration(n) * time.Microsecond, nil
}

// parseMemorySize parses a byte size with a b/kb/mb/gb suffix. Bare
// numbers are megabytes, matching the historical flag convention.
func parseMemorySize(input string) (uint64, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	units := []struct {
		suffix string
		shift  uint
	}{
		{"kb", 10},
		{"mb", 20},
		{"gb", 30},
		{"b", 0},
	}
	for _, u := range units {
		if num, found := strings.CutSuffix(input, u.suffix); found {
			n, err := strconv.ParseUint(strings.TrimSpace(num), 10, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid memory size %q: %w", input, err)
			}
			return n << u.shift, nil
		}
	}
	n, err := strconv.ParseUint(input, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid memory size %q: %w", input, err)
	}
	return n << 20, nil
}

type SpinOptions struct {
	Params harness.Params

	// Summary output selection
	Format     OutputFormat
	Pretty     bool
	Out        io.Writer
	OutputPath string // file path (if specified)
}

type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
)

func (o *SpinOptions) Run() error {
	// Scheduling attributes and RUSAGE_THREAD counters belong to an OS
	// thread, so the measurement goroutine stays pinned for the whole
	// experiment.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := o.setupOutput(); err != nil {
		return fmt.Errorf("setup output: %w", err)
	}
	defer o.closeOutput()

	for rep := uint(0); rep < o.Params.Repetitions; rep++ {
		if err := o.runOnce(rep); err != nil {
			return err
		}
	}
	return nil
}

func (o *SpinOptions) runOnce(rep uint) error {
	slog.Info("starting measurement",
		"rep", rep+1,
		"of", o.Params.Repetitions,
		"iterations", o.Params.Iterations,
		"period", o.Params.UpdatePeriod,
		"policy", o.Params.SchedPolicy,
		"priority", o.Params.SchedPriority,
	)

	h, err := harness.New(o.Params)
	if err != nil {
		return err
	}
	defer h.Finish()

	// All memory determinism work happens before the first timed
	// iteration.
	if o.Params.PoolSize > 0 {
		slog.Debug("locking and prefaulting dynamic pool", "bytes", o.Params.PoolSize)
		if err := h.LockAndPrefaultDynamic(o.Params.PoolSize); err != nil {
			return err
		}
	} else if err := h.LockMemory(); err != nil {
		return err
	}
	slog.Debug("prefaulting stack", "bytes", o.Params.StackSize)
	if err := h.PrefaultStack(0); err != nil {
		return err
	}
	if err := h.SetDefaultPriority(); err != nil {
		return err
	}

	workload := func() error { return nil }
	if err := h.Spin(context.Background(), workload); err != nil {
		return err
	}

	snapshot, err := h.Snapshot()
	if err != nil {
		return err
	}
	if snapshot.Degraded != nil {
		slog.Warn("some samples have no fault counters", "degraded", *snapshot.Degraded)
	}

	var outputter output.ParameterOutput
	switch o.Format {
	case OutputText:
		outputter = &output.TextOutput{}
	case OutputJSON:
		outputter = &output.JsonOutput{Compact: !o.Pretty}
	default:
		return fmt.Errorf("unknown output format: %v", o.Format)
	}
	if err := outputter.OutputParam(snapshot, o.Out); err != nil {
		return fmt.Errorf("output statistics: %w", err)
	}

	if o.Params.Filename != "" {
		path := o.Params.Filename
		if o.Params.Repetitions > 1 {
			path = fmt.Sprintf("%s.%d", path, rep)
		}
		if err := writeTrace(h, path); err != nil {
			return err
		}
		slog.Info("wrote trace", "path", path)
	}
	return nil
}

func writeTrace(h *harness.Harness, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trace file: %w", err)
	}
	if err := h.WriteResults(output.NewTraceWriter(f)); err != nil {
		f.Close()
		return err
	}
	// Close reports a failed final flush to disk; dropping it would
	// declare a truncated trace written.
	if err := f.Close(); err != nil {
		return fmt.Errorf("close trace file: %w", err)
	}
	return nil
}

func (o *SpinOptions) setupOutput() error {
	if o.OutputPath != "" {
		f, err := os.Create(o.OutputPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		o.Out = f
	} else {
		o.Out = os.Stdout
	}

	return nil
}

func (o *SpinOptions) closeOutput() {
	if f, ok := o.Out.(*os.File); ok && f != os.Stdout {
		f.Close()
	}
}
