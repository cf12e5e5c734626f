// Package install installs npm dependencies for the project root and each
// sub-project.
package install

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/NicabarNimble/create-granity/internal/errors"
	"github.com/NicabarNimble/create-granity/internal/shell"
)

// ErrInstallFailed indicates that the package manager exited non-zero.
var ErrInstallFailed = errors.New("dependency installation failed")

// Options contains configuration for dependency installation
type Options struct {
	Dir            string
	PackageManager string   // "npm" if empty
	SubProjects    []string // relative to Dir, installed in order
}

// Command builds one chained command that installs dependencies in Dir and
// then in every sub-project. Each sub-project runs in a subshell so its cd
// does not leak into the next one.
func Command(opts Options) string {
	pm := opts.PackageManager
	if pm == "" {
		pm = "npm"
	}
	install := pm + " install"

	steps := []string{"cd " + shell.Quote(opts.Dir), install}
	for _, sub := range opts.SubProjects {
		steps = append(steps, "(cd "+shell.Quote(sub)+" && "+install+")")
	}
	return shell.Chain(steps...)
}

// Run installs all dependencies. Any failure in the chain fails the step.
func Run(ctx context.Context, r shell.Runner, opts Options) error {
	if opts.Dir == "" {
		return apperrors.New("install", fmt.Errorf("project directory must be specified"))
	}

	ok, err := r.Run(ctx, Command(opts))
	if err != nil {
		return apperrors.New("install", err)
	}
	if !ok {
		return apperrors.New("install", ErrInstallFailed)
	}
	return nil
}
