// Package shell runs scaffolding commands through the system shell with the
// caller's terminal attached, so users see git and npm output live.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	apperrors "github.com/NicabarNimble/create-granity/internal/errors"
)

const defaultShell = "sh"

// Executor runs command strings synchronously.
type Executor struct {
	Shell  string // shell binary, "sh" if empty
	Dir    string // working directory, current directory if empty
	Env    []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecutor returns an Executor bound to the process's standard streams.
func NewExecutor() *Executor {
	return &Executor{
		Shell:  defaultShell,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run executes command and reports whether it exited zero. If it fails and a
// fallback is given, the fallback runs and its outcome is returned instead.
// A non-zero exit is reported through the boolean only; the error is
// reserved for commands that could not be started at all.
func (e *Executor) Run(ctx context.Context, command string, fallback ...string) (bool, error) {
	ok, err := e.run(ctx, command)
	if err != nil || ok {
		return ok, err
	}
	for _, fb := range fallback {
		if fb == "" {
			continue
		}
		return e.run(ctx, fb)
	}
	return false, nil
}

func (e *Executor) run(ctx context.Context, command string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, apperrors.New("exec", fmt.Errorf("%s: %w", command, err))
	}

	cmd := exec.CommandContext(ctx, e.shell(), "-c", command)
	cmd.Dir = e.Dir
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.stdout()
	cmd.Stderr = e.stderr()
	if len(e.Env) > 0 {
		cmd.Env = append(os.Environ(), e.Env...)
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintf(e.stderr(), "\nFailed to execute %s: %v\n\n", command, err)
			return false, nil
		}
		return false, apperrors.New("exec", fmt.Errorf("%s: %w", command, err))
	}
	return true, nil
}

func (e *Executor) shell() string {
	if e.Shell == "" {
		return defaultShell
	}
	return e.Shell
}

func (e *Executor) stdout() io.Writer {
	if e.Stdout == nil {
		return io.Discard
	}
	return e.Stdout
}

func (e *Executor) stderr() io.Writer {
	if e.Stderr == nil {
		return io.Discard
	}
	return e.Stderr
}

// Quote returns s as a single POSIX shell word.
//
//	abc -> 'abc'
//	a'b -> 'a'"'"'b'
//	""  -> ''
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// Chain joins commands with && so the first failure fails the whole line.
func Chain(commands ...string) string {
	parts := make([]string, 0, len(commands))
	for _, c := range commands {
		if c = strings.TrimSpace(c); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " && ")
}

// Runner is implemented by Executor and by test doubles.
type Runner interface {
	Run(ctx context.Context, command string, fallback ...string) (bool, error)
}

var _ Runner = (*Executor)(nil)
