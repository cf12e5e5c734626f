// Package cleanup removes template-only paths from a freshly cloned project.
//
// Every path is removed concurrently; Remove returns only after all removals
// have finished, so callers can safely write into or reinitialize the tree.
// A path that does not exist counts as removed.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/NicabarNimble/create-granity/internal/errors"
)

// Status is the outcome of removing one path.
type Status string

const (
	StatusRemoved Status = "removed"
	StatusMissing Status = "missing"
	StatusFailed  Status = "failed"
)

// ErrOutsideRoot indicates that a path resolves outside the project root.
var ErrOutsideRoot = errors.New("path escapes project root")

// Result is the outcome for a single manifest entry.
type Result struct {
	Path   string
	Status Status
	Err    error
}

// Report collects the results of one Remove call in manifest order.
type Report struct {
	Results []Result
}

// Removed returns the paths that existed and were deleted.
func (r *Report) Removed() []string {
	return r.paths(StatusRemoved)
}

// Missing returns the paths that did not exist.
func (r *Report) Missing() []string {
	return r.paths(StatusMissing)
}

// Failed returns the results that could not be removed.
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			out = append(out, res)
		}
	}
	return out
}

func (r *Report) paths(s Status) []string {
	var out []string
	for _, res := range r.Results {
		if res.Status == s {
			out = append(out, res.Path)
		}
	}
	return out
}

// removeAll is a variable so it can be replaced in tests
var removeAll = os.RemoveAll

// Remove deletes every entry of paths, resolved relative to root, and waits
// for all deletions to settle. Individual failures are recorded in the
// report; they never abort the remaining deletions.
func Remove(ctx context.Context, root string, paths []string) *Report {
	report := &Report{Results: make([]Result, len(paths))}

	var g errgroup.Group
	for i, p := range paths {
		g.Go(func() error {
			report.Results[i] = removeOne(ctx, root, p)
			return nil
		})
	}
	_ = g.Wait()

	return report
}

func removeOne(ctx context.Context, root, rel string) Result {
	res := Result{Path: rel}

	if err := ctx.Err(); err != nil {
		res.Status = StatusFailed
		res.Err = apperrors.New("remove", fmt.Errorf("%s: %w", rel, err))
		return res
	}

	target, err := resolve(root, rel)
	if err != nil {
		res.Status = StatusFailed
		res.Err = apperrors.New("remove", err)
		return res
	}

	if _, err := os.Lstat(target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			res.Status = StatusMissing
			return res
		}
		res.Status = StatusFailed
		res.Err = apperrors.New("remove", err)
		return res
	}

	if err := removeAll(target); err != nil {
		res.Status = StatusFailed
		res.Err = apperrors.New("remove", err)
		return res
	}

	res.Status = StatusRemoved
	return res
}

// resolve joins rel onto root and rejects anything that lands outside it.
func resolve(root, rel string) (string, error) {
	if rel == "" || filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, rel)
	}
	target := filepath.Join(root, rel)
	relToRoot, err := filepath.Rel(root, target)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, rel)
	}
	if relToRoot == "." || relToRoot == ".." || strings.HasPrefix(relToRoot, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, rel)
	}
	return target, nil
}
