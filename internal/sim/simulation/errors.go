package simulation

import (
	"errors"
	"fmt"
)

var (
	// ErrConstruction marks failures of New. Nothing built by a failed New
	// stays registered.
	ErrConstruction = errors.New("simulation construction failed")
	// ErrInvariant marks broken internal invariants, such as a missing agent.
	// It is delivered as a panic value.
	ErrInvariant = errors.New("simulation invariant violated")
	// ErrSubsystem marks a system that failed while ticking.
	ErrSubsystem = errors.New("simulation subsystem failed")

	// ErrBroken is returned by Tick after a subsystem failure.
	ErrBroken = errors.New("simulation is broken by an earlier failure")
	// ErrClosed is returned by Tick after Close.
	ErrClosed = errors.New("simulation closed")
)

type ConstructionError struct {
	Stage string
	Err   error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrConstruction, e.Stage, e.Err)
}

func (e *ConstructionError) Unwrap() []error { return []error{ErrConstruction, e.Err} }

type InvariantError struct {
	What string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvariant, e.What)
}

func (e *InvariantError) Unwrap() error { return ErrInvariant }

// SubsystemError names the system and the tick that failed.
type SubsystemError struct {
	System string
	Tick   uint64
	Err    error
}

func (e *SubsystemError) Error() string {
	return fmt.Sprintf("%v: %s at tick %d: %v", ErrSubsystem, e.System, e.Tick, e.Err)
}

func (e *SubsystemError) Unwrap() []error { return []error{ErrSubsystem, e.Err} }

func constructionErr(stage string, err error) error {
	return &ConstructionError{Stage: stage, Err: err}
}
