package errors

import (
	"errors"
	"fmt"
)

// Severity classifies how a failed step affects the pipeline.
type Severity int

const (
	// Informational failures are reported but never stop the pipeline.
	Informational Severity = iota
	// Fatal failures stop the pipeline and exit non-zero.
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Fatal:
		return "fatal"
	default:
		return "informational"
	}
}

// StepError is the outcome of a failed pipeline step.
type StepError struct {
	Step     string   // Pipeline step that failed
	Severity Severity // How the failure is handled
	Message  string   // User-facing description
	Err      error    // Underlying error
}

func (e *StepError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Step, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Step, e.Message, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// NewFatal creates a StepError that terminates the pipeline.
func NewFatal(step, message string, err error) *StepError {
	return &StepError{
		Step:     step,
		Severity: Fatal,
		Message:  message,
		Err:      err,
	}
}

// NewInformational creates a StepError that is only reported.
func NewInformational(step, message string, err error) *StepError {
	return &StepError{
		Step:     step,
		Severity: Informational,
		Message:  message,
		Err:      err,
	}
}

// IsStepError checks if an error is, or wraps, a StepError
func IsStepError(err error) bool {
	var se *StepError
	return errors.As(err, &se)
}

// IsFatal reports whether err must terminate the pipeline. Errors that are
// not StepErrors are treated as fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var se *StepError
	if errors.As(err, &se) {
		return se.Severity == Fatal
	}
	return true
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	if IsFatal(err) {
		return 1
	}
	return 0
}
