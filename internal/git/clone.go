package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	apperrors "github.com/NicabarNimble/create-granity/internal/errors"
	"github.com/NicabarNimble/create-granity/internal/shell"
	"github.com/NicabarNimble/create-granity/internal/urlutils"
)

var (
	// ErrCommandFailed indicates that git ran but exited non-zero
	ErrCommandFailed = errors.New("git command failed")

	// ErrDestinationExists indicates that the clone target is not empty
	ErrDestinationExists = errors.New("destination already exists and is not empty")

	// ErrInvalidOptions indicates that the provided clone options are invalid
	ErrInvalidOptions = errors.New("invalid clone options")
)

// CloneOptions contains configuration for template cloning
type CloneOptions struct {
	SourceURL   string
	Destination string
	Depth       int // 0 clones the full history
}

// CloneCommand builds the shell command that clones source into dest.
func CloneCommand(source, dest string, depth int) string {
	cmd := "git clone"
	if depth > 0 {
		cmd += " --depth " + strconv.Itoa(depth)
	}
	return cmd + " " + shell.Quote(source) + " " + shell.Quote(dest)
}

// Clone clones the template into opts.Destination.
func Clone(ctx context.Context, r shell.Runner, opts CloneOptions) error {
	if opts.SourceURL == "" || opts.Destination == "" {
		return apperrors.New("clone", fmt.Errorf("%w: source URL and destination must be specified", ErrInvalidOptions))
	}
	if opts.Depth < 0 {
		return apperrors.New("clone", fmt.Errorf("%w: negative depth", ErrInvalidOptions))
	}

	src, err := urlutils.ParseSource(opts.SourceURL)
	if err != nil {
		return apperrors.New("clone", fmt.Errorf("invalid source URL: %w", err))
	}

	if err := checkDestination(opts.Destination); err != nil {
		return apperrors.New("clone", err)
	}

	ok, err := r.Run(ctx, CloneCommand(src.Raw, opts.Destination, opts.Depth))
	if err != nil {
		return apperrors.New("clone", err)
	}
	if !ok {
		return apperrors.New("clone", fmt.Errorf("%w: could not clone %s", ErrCommandFailed, urlutils.Redact(src.Raw)))
	}
	return nil
}

// checkDestination allows a missing path or an empty directory.
func checkDestination(dest string) error {
	entries, err := os.ReadDir(dest)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		info, statErr := os.Stat(dest)
		if statErr == nil && !info.IsDir() {
			return fmt.Errorf("%w: %s", ErrDestinationExists, dest)
		}
		return fmt.Errorf("failed to inspect destination: %w", err)
	}
	if len(entries) > 0 {
		return fmt.Errorf("%w: %s", ErrDestinationExists, dest)
	}
	return nil
}
