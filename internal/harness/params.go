package harness

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Policy names an OS real-time scheduling class.
type Policy string

const (
	PolicyFIFO       Policy = "fifo"
	PolicyRoundRobin Policy = "rr"
	PolicyOther      Policy = "other" // OS default, non-real-time
)

// Params holds the configuration for one measurement thread. It is
// constructed before any spin call and never mutated during a run.
// A second measurement thread takes its own copy (see NewChild), not a
// reference.
type Params struct {
	// Iterations is the exact number of timed iterations to run.
	Iterations uint64 `yaml:"iterations"`

	// UpdatePeriod is the interval between scheduled wake instants.
	UpdatePeriod time.Duration `yaml:"update_period"`

	// SchedPolicy and SchedPriority select the real-time scheduling
	// class applied to the measurement thread. Valid priorities are
	// OS-defined, commonly 1-99 for fifo/rr on Linux.
	SchedPolicy   Policy `yaml:"policy"`
	SchedPriority int    `yaml:"priority"`

	// LockMemory requests mlockall-style residency for all current and
	// future pages before the run.
	LockMemory bool `yaml:"lock_memory"`

	// StackSize is the number of stack bytes to prefault before the run.
	StackSize uint64 `yaml:"stack_size"`

	// PoolSize, when non-zero, pre-warms a dynamic pool of that many
	// bytes before the run.
	PoolSize uint64 `yaml:"pool_size"`

	// Filename identifies the output sink for the trace; empty means
	// no trace is written.
	Filename string `yaml:"filename"`

	// Repetitions is how many times the experiment is repeated by the
	// CLI wrapper. The core runs one repetition per Spin call.
	Repetitions uint `yaml:"repetitions"`
}

// DefaultParams returns the documented default parameter set: 1000
// iterations at a 1 ms period under round-robin priority 80, with a
// 1 MiB stack prefault and memory locking off.
func DefaultParams() Params {
	return Params{
		Iterations:    1000,
		UpdatePeriod:  time.Millisecond,
		SchedPolicy:   PolicyRoundRobin,
		SchedPriority: 80,
		LockMemory:    false,
		StackSize:     1024 * 1024,
		Repetitions:   1,
	}
}

// Validate reports whether the parameter set can configure a run.
func (p Params) Validate() error {
	if p.UpdatePeriod < 0 {
		return fmt.Errorf("%w: update period %v is negative", ErrConfiguration, p.UpdatePeriod)
	}
	switch p.SchedPolicy {
	case PolicyFIFO, PolicyRoundRobin:
		if p.SchedPriority < 1 || p.SchedPriority > 99 {
			return fmt.Errorf("%w: priority %d outside 1-99 for policy %q",
				ErrConfiguration, p.SchedPriority, p.SchedPolicy)
		}
	case PolicyOther:
	default:
		return fmt.Errorf("%w: unknown scheduling policy %q", ErrConfiguration, p.SchedPolicy)
	}
	if p.StackSize == 0 {
		return fmt.Errorf("%w: stack prefault size must be non-zero", ErrConfiguration)
	}
	if p.Repetitions == 0 {
		return fmt.Errorf("%w: repetitions must be at least 1", ErrConfiguration)
	}
	return nil
}

// UnmarshalYAML decodes a parameter document. Durations are written as
// strings like "100us" or "1ms"; keys the document omits keep whatever
// value the Params already holds, so defaults survive partial files.
func (p *Params) UnmarshalYAML(value *yaml.Node) error {
	type rawParams struct {
		Iterations   *uint64 `yaml:"iterations"`
		UpdatePeriod *string `yaml:"update_period"`
		Policy       *string `yaml:"policy"`
		Priority     *int    `yaml:"priority"`
		LockMemory   *bool   `yaml:"lock_memory"`
		StackSize    *uint64 `yaml:"stack_size"`
		PoolSize     *uint64 `yaml:"pool_size"`
		Filename     *string `yaml:"filename"`
		Repetitions  *uint   `yaml:"repetitions"`
	}
	var raw rawParams
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.Iterations != nil {
		p.Iterations = *raw.Iterations
	}
	if raw.UpdatePeriod != nil {
		d, err := time.ParseDuration(*raw.UpdatePeriod)
		if err != nil {
			return fmt.Errorf("update_period: %w", err)
		}
		p.UpdatePeriod = d
	}
	if raw.Policy != nil {
		p.SchedPolicy = Policy(*raw.Policy)
	}
	if raw.Priority != nil {
		p.SchedPriority = *raw.Priority
	}
	if raw.LockMemory != nil {
		p.LockMemory = *raw.LockMemory
	}
	if raw.StackSize != nil {
		p.StackSize = *raw.StackSize
	}
	if raw.PoolSize != nil {
		p.PoolSize = *raw.PoolSize
	}
	if raw.Filename != nil {
		p.Filename = *raw.Filename
	}
	if raw.Repetitions != nil {
		p.Repetitions = *raw.Repetitions
	}
	return nil
}

// LoadParams reads a YAML parameter document, applying defaults for
// any field the file omits.
func LoadParams(path string) (Params, error) {
	p := DefaultParams()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("%w: read %s: %v", ErrConfiguration, path, err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("%w: parse %s: %v", ErrConfiguration, path, err)
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}
