package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Status is the lifecycle state of a tracked step.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusSkipped    Status = "skipped"
	StatusFailed     Status = "failed"
)

// Tracker interface defines methods for tracking step progress
type Tracker interface {
	Start(step string) *Operation
	Complete()
	Skip(reason string)
	Warn(message string)
	Error(err error)
}

// Operation represents a tracked step
type Operation struct {
	Name      string
	StartTime time.Time
	EndTime   time.Time
	Status    Status
	Warnings  []string
	Err       error
}

// Duration returns how long the step ran, or has been running.
func (o *Operation) Duration() time.Duration {
	if o.EndTime.IsZero() {
		return time.Since(o.StartTime)
	}
	return o.EndTime.Sub(o.StartTime)
}

// DefaultTracker records operations in memory without printing.
type DefaultTracker struct {
	mu               sync.Mutex
	CurrentOperation *Operation
	History          []*Operation
}

// Start begins tracking a new step
func (t *DefaultTracker) Start(step string) *Operation {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.CurrentOperation = &Operation{
		Name:      step,
		StartTime: time.Now(),
		Status:    StatusInProgress,
	}
	t.History = append(t.History, t.CurrentOperation)
	return t.CurrentOperation
}

// Complete marks the step as completed
func (t *DefaultTracker) Complete() {
	t.finish(StatusCompleted, nil)
}

// Skip marks the step as skipped
func (t *DefaultTracker) Skip(reason string) {
	t.finish(StatusSkipped, nil)
}

// Warn records a non-fatal problem on the current step
func (t *DefaultTracker) Warn(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.CurrentOperation != nil {
		t.CurrentOperation.Warnings = append(t.CurrentOperation.Warnings, message)
	}
}

// Error marks the step as failed with an error
func (t *DefaultTracker) Error(err error) {
	t.finish(StatusFailed, err)
}

func (t *DefaultTracker) finish(status Status, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.CurrentOperation == nil {
		return
	}
	t.CurrentOperation.Status = status
	t.CurrentOperation.Err = err
	t.CurrentOperation.EndTime = time.Now()
	t.CurrentOperation = nil
}

// ConsoleTracker implements Tracker for console output
type ConsoleTracker struct {
	DefaultTracker
	out io.Writer
}

// NewConsoleTracker creates a tracker that prints to w, or stdout if w is nil.
func NewConsoleTracker(w io.Writer) *ConsoleTracker {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleTracker{out: w}
}

// Start begins tracking a new step
func (t *ConsoleTracker) Start(step string) *Operation {
	op := t.DefaultTracker.Start(step)
	fmt.Fprintf(t.out, "\n%s...\n", step)
	return op
}

// Complete marks the current step as completed
func (t *ConsoleTracker) Complete() {
	op := t.DefaultTracker.CurrentOperation
	if op == nil {
		return
	}
	t.DefaultTracker.Complete()
	fmt.Fprintf(t.out, "Completed: %s (took %v)\n", op.Name, op.Duration().Round(time.Millisecond))
}

// Skip marks the current step as skipped
func (t *ConsoleTracker) Skip(reason string) {
	op := t.DefaultTracker.CurrentOperation
	if op == nil {
		return
	}
	t.DefaultTracker.Skip(reason)
	fmt.Fprintf(t.out, "Skipped: %s (%s)\n", op.Name, reason)
}

// Warn prints a non-fatal problem on the current step
func (t *ConsoleTracker) Warn(message string) {
	t.DefaultTracker.Warn(message)
	fmt.Fprintf(t.out, "Warning: %s\n", message)
}

// Error marks the current step as failed
func (t *ConsoleTracker) Error(err error) {
	op := t.DefaultTracker.CurrentOperation
	if op == nil {
		return
	}
	t.DefaultTracker.Error(err)
	fmt.Fprintf(t.out, "Error: %s - %v\n", op.Name, err)
}
