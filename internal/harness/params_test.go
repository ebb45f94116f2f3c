package harness

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()

	if p.Iterations != 1000 {
		t.Errorf("Expected 1000 iterations, got %d", p.Iterations)
	}
	if p.UpdatePeriod != time.Millisecond {
		t.Errorf("Expected 1ms period, got %v", p.UpdatePeriod)
	}
	if p.SchedPolicy != PolicyRoundRobin || p.SchedPriority != 80 {
		t.Errorf("Expected rr/80, got %s/%d", p.SchedPolicy, p.SchedPriority)
	}
	if p.LockMemory {
		t.Error("Memory locking should default to off")
	}
	if p.StackSize != 1024*1024 {
		t.Errorf("Expected 1MiB stack prefault, got %d", p.StackSize)
	}
	if p.Repetitions != 1 {
		t.Errorf("Expected 1 repetition, got %d", p.Repetitions)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Defaults must validate, got %v", err)
	}
}

func TestParams_ValidateFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Params)
	}{
		{"negative period", func(p *Params) { p.UpdatePeriod = -time.Millisecond }},
		{"priority too high", func(p *Params) { p.SchedPriority = 100 }},
		{"priority too low", func(p *Params) { p.SchedPriority = 0 }},
		{"unknown policy", func(p *Params) { p.SchedPolicy = Policy("deadline") }},
		{"zero stack", func(p *Params) { p.StackSize = 0 }},
		{"zero repetitions", func(p *Params) { p.Repetitions = 0 }},
	}
	for _, tc := range cases {
		p := DefaultParams()
		tc.mutate(&p)
		if err := p.Validate(); !errors.Is(err, ErrConfiguration) {
			t.Errorf("%s: expected ErrConfiguration, got %v", tc.name, err)
		}
	}
}

func TestParams_OtherPolicyIgnoresPriorityRange(t *testing.T) {
	p := DefaultParams()
	p.SchedPolicy = PolicyOther
	p.SchedPriority = 0
	if err := p.Validate(); err != nil {
		t.Errorf("Policy other should not constrain priority, got %v", err)
	}
}

func TestLoadParams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	doc := `iterations: 250
update_period: 100us
policy: fifo
priority: 98
lock_memory: true
pool_size: 1048576
filename: trace.txt
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	p, err := LoadParams(path)
	if err != nil {
		t.Fatalf("LoadParams failed: %v", err)
	}
	if p.Iterations != 250 {
		t.Errorf("Expected 250 iterations, got %d", p.Iterations)
	}
	if p.UpdatePeriod != 100*time.Microsecond {
		t.Errorf("Expected 100us period, got %v", p.UpdatePeriod)
	}
	if p.SchedPolicy != PolicyFIFO || p.SchedPriority != 98 {
		t.Errorf("Expected fifo/98, got %s/%d", p.SchedPolicy, p.SchedPriority)
	}
	if !p.LockMemory || p.PoolSize != 1048576 {
		t.Errorf("Memory settings not loaded: %+v", p)
	}
	if p.Filename != "trace.txt" {
		t.Errorf("Expected filename trace.txt, got %q", p.Filename)
	}
	// Omitted fields keep their defaults.
	if p.StackSize != 1024*1024 || p.Repetitions != 1 {
		t.Errorf("Omitted fields lost their defaults: %+v", p)
	}
}

func TestLoadParams_Missing(t *testing.T) {
	if _, err := LoadParams(filepath.Join(t.TempDir(), "absent.yaml")); !errors.Is(err, ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration for missing file, got %v", err)
	}
}

func TestLoadParams_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("priority: 500\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadParams(path); !errors.Is(err, ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration for bad priority, got %v", err)
	}
}
