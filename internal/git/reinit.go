package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	apperrors "github.com/NicabarNimble/create-granity/internal/errors"
	"github.com/NicabarNimble/create-granity/internal/shell"
	"github.com/NicabarNimble/create-granity/internal/urlutils"
)

const defaultInitialBranch = "main"

// ErrHistoryPresent indicates that the template's .git directory was not
// removed before reinitialization.
var ErrHistoryPresent = errors.New("previous git history still present")

// ReinitOptions contains configuration for history reinitialization
type ReinitOptions struct {
	Dir           string
	InitialBranch string // "main" if empty
	RemoteName    string // no remote is added if empty
	RemoteURL     string
}

// InitCommands returns the init command and the fallback used by git
// versions that predate --initial-branch.
func InitCommands(dir, branch string) (primary, fallback string) {
	if branch == "" {
		branch = defaultInitialBranch
	}
	base := "git -C " + shell.Quote(dir) + " init"
	return base + " --initial-branch=" + shell.Quote(branch), base
}

// RemoteAddCommand builds the command that registers a remote.
func RemoteAddCommand(dir, name, url string) string {
	return "git -C " + shell.Quote(dir) + " remote add " + shell.Quote(name) + " " + shell.Quote(url)
}

// Reinit creates a fresh repository in opts.Dir. The directory must exist
// and must no longer contain a .git entry.
func Reinit(ctx context.Context, r shell.Runner, opts ReinitOptions) error {
	if opts.Dir == "" {
		return apperrors.New("reinit", fmt.Errorf("%w: directory must be specified", ErrInvalidOptions))
	}
	if opts.RemoteName != "" && opts.RemoteURL == "" {
		return apperrors.New("reinit", fmt.Errorf("%w: remote %q has no URL", ErrInvalidOptions, opts.RemoteName))
	}

	info, err := os.Stat(opts.Dir)
	if err != nil {
		return apperrors.New("reinit", fmt.Errorf("project directory unavailable: %w", err))
	}
	if !info.IsDir() {
		return apperrors.New("reinit", fmt.Errorf("%s is not a directory", opts.Dir))
	}

	if _, err := os.Lstat(filepath.Join(opts.Dir, ".git")); err == nil {
		return apperrors.New("reinit", ErrHistoryPresent)
	} else if !errors.Is(err, os.ErrNotExist) {
		return apperrors.New("reinit", fmt.Errorf("failed to inspect .git: %w", err))
	}

	primary, fallback := InitCommands(opts.Dir, opts.InitialBranch)
	ok, err := r.Run(ctx, primary, fallback)
	if err != nil {
		return apperrors.New("reinit", err)
	}
	if !ok {
		return apperrors.New("reinit", fmt.Errorf("%w: git init", ErrCommandFailed))
	}

	if opts.RemoteName == "" {
		return nil
	}

	ok, err = r.Run(ctx, RemoteAddCommand(opts.Dir, opts.RemoteName, opts.RemoteURL))
	if err != nil {
		return apperrors.New("remote", err)
	}
	if !ok {
		return apperrors.New("remote", fmt.Errorf("%w: could not add remote %s (%s)",
			ErrCommandFailed, opts.RemoteName, urlutils.Redact(opts.RemoteURL)))
	}
	return nil
}
