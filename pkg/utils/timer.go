package utils

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Phase is a completed timing phase.
type Phase struct {
	Name     string
	Duration time.Duration
}

// Timer measures named phases of a pipeline run.
type Timer struct {
	mu     sync.Mutex
	name   string
	clock  Clock
	phases []Phase
}

// NewTimer creates a timer for the named operation.
func NewTimer(name string) *Timer {
	return &Timer{name: name, clock: NewRealClock()}
}

// NewTimerWithClock creates a timer using the given clock.
func NewTimerWithClock(name string, clock Clock) *Timer {
	return &Timer{name: name, clock: clock}
}

// TimeFunc runs fn and records its duration under phaseName.
func (t *Timer) TimeFunc(phaseName string, fn func()) time.Duration {
	start := t.clock.Now()
	fn()
	d := t.clock.Since(start)
	t.record(phaseName, d)
	return d
}

// TimeFuncWithError runs fn and records its duration under phaseName.
func (t *Timer) TimeFuncWithError(phaseName string, fn func() error) (time.Duration, error) {
	start := t.clock.Now()
	err := fn()
	d := t.clock.Since(start)
	t.record(phaseName, d)
	return d, err
}

func (t *Timer) record(name string, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phases = append(t.phases, Phase{Name: name, Duration: d})
}

// GetDuration returns the recorded duration of a phase, 0 if absent.
func (t *Timer) GetDuration(phaseName string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range t.phases {
		if p.Name == phaseName {
			return p.Duration
		}
	}
	return 0
}

// GetPhases returns the recorded phases in execution order.
func (t *Timer) GetPhases() []Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Phase, len(t.phases))
	copy(out, t.phases)
	return out
}

// TotalDuration returns the sum of all phase durations.
func (t *Timer) TotalDuration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	var total time.Duration
	for _, p := range t.phases {
		total += p.Duration
	}
	return total
}

// TopN returns the n slowest phases, slowest first.
func (t *Timer) TopN(n int) []Phase {
	phases := t.GetPhases()
	sort.Slice(phases, func(i, j int) bool {
		return phases[i].Duration > phases[j].Duration
	})
	if n < len(phases) {
		phases = phases[:n]
	}
	return phases
}

// Summary renders the recorded phases as a short report.
func (t *Timer) Summary() string {
	phases := t.GetPhases()

	var b strings.Builder
	fmt.Fprintf(&b, "%s: total %v\n", t.name, t.TotalDuration())
	for _, p := range phases {
		fmt.Fprintf(&b, "  %-20s %v\n", p.Name, p.Duration)
	}
	return b.String()
}
