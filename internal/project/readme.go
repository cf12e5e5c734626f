package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrReadmeTemplateMissing indicates that the template shipped no project
// readme.
var ErrReadmeTemplateMissing = errors.New("readme template not found")

// PromoteReadme copies dir/from to dir/to and then deletes dir/from.
func PromoteReadme(dir, from, to string) error {
	src := filepath.Join(dir, from)
	dst := filepath.Join(dir, to)

	data, err := os.ReadFile(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrReadmeTemplateMissing, from)
		}
		return fmt.Errorf("failed to read %s: %w", from, err)
	}

	if err := WriteFileAtomic(dst, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", to, err)
	}

	if err := os.Remove(src); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", from, err)
	}
	return nil
}
