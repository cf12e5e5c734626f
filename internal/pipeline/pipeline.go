// Package pipeline runs the scaffolding steps in a fixed order, stops at the
// first fatal failure, and collects informational failures as warnings.
package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"

	apperrors "github.com/NicabarNimble/create-granity/internal/errors"
	"github.com/NicabarNimble/create-granity/internal/progress"
	"github.com/NicabarNimble/create-granity/internal/version"
)

// Step name constants.
const (
	StepAcquire     = "acquire"
	StepCleanup     = "cleanup"
	StepMaterialize = "materialize"
	StepReinit      = "reinit"
	StepInstall     = "install"
)

// State is a pipeline position. States only move forward.
type State int

const (
	StateStart State = iota
	StateAcquired
	StateCleaned
	StateMaterialized
	StateReinitialized
	StateInstalled
	StateDone
	StateFailed
)

var stateNames = map[State]string{
	StateStart:         "start",
	StateAcquired:      "acquired",
	StateCleaned:       "cleaned",
	StateMaterialized:  "materialized",
	StateReinitialized: "reinitialized",
	StateInstalled:     "installed",
	StateDone:          "done",
	StateFailed:        "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Steps defines the step implementations executed by the pipeline.
// Implementations are injected to allow testing without git, npm or disk.
//
// A step returns nil, an informational *StepError (possibly several joined
// with errors.Join), or a fatal error. Errors that are not StepErrors are
// treated as fatal.
type Steps interface {
	// Acquire clones the template into the destination.
	Acquire(ctx context.Context) error

	// Cleanup removes template-only paths and returns once all removals settled.
	Cleanup(ctx context.Context) error

	// Materialize writes the project manifest and readme.
	Materialize(ctx context.Context) error

	// Reinit creates fresh git history and registers the upstream remote.
	Reinit(ctx context.Context) error

	// Install installs dependencies in the root and sub-projects.
	Install(ctx context.Context) error
}

// Notifier starts the background version lookup.
type Notifier interface {
	Start(ctx context.Context) <-chan version.Notice
}

// Options configures a Pipeline.
type Options struct {
	Tracker     progress.Tracker
	Logger      *slog.Logger
	Notifier    Notifier
	SkipInstall bool
}

// Outcome describes how far a run got.
type Outcome struct {
	State       State
	Transitions []State
	Warnings    []error
	Notice      *version.Notice
}

// Pipeline orchestrates the execution of scaffolding steps in a fixed order.
type Pipeline struct {
	steps       Steps
	tracker     progress.Tracker
	logger      *slog.Logger
	notifier    Notifier
	skipInstall bool
}

// New creates a pipeline with the given step implementation.
func New(steps Steps, opts Options) *Pipeline {
	p := &Pipeline{
		steps:       steps,
		tracker:     opts.Tracker,
		logger:      opts.Logger,
		notifier:    opts.Notifier,
		skipInstall: opts.SkipInstall,
	}
	if p.tracker == nil {
		p.tracker = &progress.DefaultTracker{}
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p
}

type stage struct {
	step  string
	title string
	next  State
	run   func(context.Context) error
	skip  string
}

// Run executes the steps in order:
//  1. Acquire
//  2. Cleanup
//  3. Materialize
//  4. Reinit
//  5. Install (unless skipped)
//
// The first fatal error moves the outcome to StateFailed and is returned as
// a *StepError. Informational errors are recorded in Outcome.Warnings. The
// version notice is collected only if it has already arrived.
func (p *Pipeline) Run(ctx context.Context) (*Outcome, error) {
	out := &Outcome{State: StateStart, Transitions: []State{StateStart}}

	var notices <-chan version.Notice
	if p.notifier != nil {
		notices = p.notifier.Start(ctx)
	}

	stages := []stage{
		{step: StepAcquire, title: "Cloning template", next: StateAcquired, run: p.steps.Acquire},
		{step: StepCleanup, title: "Removing template files", next: StateCleaned, run: p.steps.Cleanup},
		{step: StepMaterialize, title: "Writing project files", next: StateMaterialized, run: p.steps.Materialize},
		{step: StepReinit, title: "Initializing git repository", next: StateReinitialized, run: p.steps.Reinit},
		{step: StepInstall, title: "Installing dependencies", next: StateInstalled, run: p.steps.Install},
	}
	if p.skipInstall {
		stages[len(stages)-1].skip = "--skip-install"
	}

	for _, st := range stages {
		p.tracker.Start(st.title)
		if st.skip != "" {
			p.tracker.Skip(st.skip)
			p.logger.Debug("step skipped", "step", st.step, "reason", st.skip)
			continue
		}

		err := st.run(ctx)
		if err != nil && apperrors.IsFatal(err) {
			fatal := asFatal(st.step, err)
			p.tracker.Error(fatal)
			p.logger.Error("step failed", "step", st.step, "state", out.State.String(), "error", fatal)
			p.transition(out, StateFailed)
			return out, fatal
		}

		for _, w := range flatten(err) {
			p.tracker.Warn(w.Error())
			p.logger.Warn("step reported a problem", "step", st.step, "error", w)
			out.Warnings = append(out.Warnings, w)
		}
		p.tracker.Complete()
		p.transition(out, st.next)
	}

	p.transition(out, StateDone)

	if notice, ok := version.Poll(notices); ok {
		out.Notice = &notice
	}
	return out, nil
}

func (p *Pipeline) transition(out *Outcome, next State) {
	p.logger.Debug("state transition", "from", out.State.String(), "to", next.String())
	out.State = next
	out.Transitions = append(out.Transitions, next)
}

// asFatal ensures the error is a fatal *StepError for step.
func asFatal(step string, err error) *apperrors.StepError {
	var se *apperrors.StepError
	if errors.As(err, &se) && se.Severity == apperrors.Fatal {
		return se
	}
	return apperrors.NewFatal(step, "unexpected error", err)
}

// flatten expands errors.Join trees into their leaves.
func flatten(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, flatten(e)...)
		}
		return out
	}
	return []error{err}
}
