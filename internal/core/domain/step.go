package domain

import (
	"errors"
	"fmt"
)

// Stage identifies one of the two runner steps.
type Stage string

const (
	// StageCompile resolves a spec file into a lock file.
	StageCompile Stage = "compile"

	// StageSync reconciles the local environment with a lock file.
	StageSync Stage = "sync"
)

// ExitError reports a non-zero exit status of an external tool.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("exit status %d: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// StepError reports a failed runner step for a variant. It carries the exit
// code of the failing external tool so the process can terminate with the
// same code.
type StepError struct {
	Stage   Stage
	Variant string
	Code    int
	Err     error
}

func (e *StepError) Error() string {
	verb := "compilation failed"
	if e.Stage == StageSync {
		verb = "sync failed"
	}
	return fmt.Sprintf("%s for variant %q (exit status %d)", verb, e.Variant, e.Code)
}

func (e *StepError) Unwrap() error { return e.Err }

// ExitStatus extracts the exit code an error chain carries.
// It reports false when the error is not tied to an external tool exit.
func ExitStatus(err error) (int, bool) {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Code, true
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}

	return 0, false
}
