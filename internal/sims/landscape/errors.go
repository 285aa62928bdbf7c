package landscape

import (
	"errors"
	"fmt"
)

// Domain errors for landscape runs.
var (
	// ErrConfiguration indicates invalid grid or parameter values. It is only
	// ever returned at setup.
	ErrConfiguration = errors.New("landscape: invalid configuration")

	// ErrNumericInstability indicates a solve produced non-finite values or
	// failed to converge. The run cannot continue.
	ErrNumericInstability = errors.New("landscape: numeric instability")

	// ErrInvariantViolation indicates a defect in the flow network, such as a
	// cell without a path to the domain boundary.
	ErrInvariantViolation = errors.New("landscape: internal invariant violated")

	// ErrCompleted is returned by Step once the run reached its end time.
	ErrCompleted = errors.New("landscape: run already completed")
)

// Phase names the part of a step in which a failure happened.
type Phase string

const (
	PhaseRoute   Phase = "route"
	PhaseErode   Phase = "erode"
	PhaseDiffuse Phase = "diffuse"
	PhaseUplift  Phase = "uplift"
)

// StepError wraps a mid-run failure with its position in the run.
type StepError struct {
	Step  int
	Time  float64
	Phase Phase
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%g) %s: %v", e.Step, e.Time, e.Phase, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
