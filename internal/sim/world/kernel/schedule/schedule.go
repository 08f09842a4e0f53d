// Package schedule runs an ordered list of systems over one entity table.
package schedule

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateSystem = errors.New("duplicate system")
	ErrFrozen          = errors.New("schedule already initialized")
	ErrNotInitialized  = errors.New("schedule not initialized")
)

// ExecutorKind selects how systems run. Only SingleThreaded exists: systems
// run one after another on the caller's goroutine.
type ExecutorKind int

const SingleThreaded ExecutorKind = iota

// System is one stage of a tick. Setup runs once when the schedule is
// initialized; Run runs once per tick.
type System struct {
	Name  string
	Setup func() error
	Run   func(tick uint64) error
}

// StageError names the system that failed.
type StageError struct {
	System string
	Phase  string // "setup" or "run"
	Err    error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.System, e.Phase, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

type Schedule struct {
	executor ExecutorKind
	systems  []System
	names    map[string]bool
	ready    bool
}

func New(kind ExecutorKind) *Schedule {
	return &Schedule{executor: kind, names: map[string]bool{}}
}

// Add appends a system; order of Add is run order.
func (s *Schedule) Add(sys System) error {
	if s.ready {
		return ErrFrozen
	}
	if sys.Name == "" || sys.Run == nil {
		return fmt.Errorf("system %q: name and run are required", sys.Name)
	}
	if s.names[sys.Name] {
		return fmt.Errorf("%w: %s", ErrDuplicateSystem, sys.Name)
	}
	s.names[sys.Name] = true
	s.systems = append(s.systems, sys)
	return nil
}

// Init runs every setup hook in order and freezes the system list.
func (s *Schedule) Init() error {
	if s.ready {
		return ErrFrozen
	}
	if s.executor != SingleThreaded {
		return fmt.Errorf("unsupported executor %d", s.executor)
	}
	for _, sys := range s.systems {
		if sys.Setup == nil {
			continue
		}
		if err := sys.Setup(); err != nil {
			return &StageError{System: sys.Name, Phase: "setup", Err: err}
		}
	}
	s.ready = true
	return nil
}

// Run executes every system once. The first failure stops the tick.
func (s *Schedule) Run(tick uint64) error {
	if !s.ready {
		return ErrNotInitialized
	}
	for _, sys := range s.systems {
		if err := sys.Run(tick); err != nil {
			return &StageError{System: sys.Name, Phase: "run", Err: err}
		}
	}
	return nil
}

func (s *Schedule) Names() []string {
	out := make([]string, len(s.systems))
	for i, sys := range s.systems {
		out[i] = sys.Name
	}
	return out
}
