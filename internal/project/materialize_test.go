package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialize(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.project.md"), []byte("# My game\n"), 0644))

	report := Materialize(Options{
		Dir:            dir,
		Manifest:       defaultOptions("my-game"),
		ReadmeTemplate: "README.project.md",
		ReadmeTarget:   "README.md",
	})

	assert.Empty(t, report.Problems)
	assert.True(t, report.ManifestWritten)
	assert.True(t, report.ReadmePromoted)
	assert.FileExists(t, filepath.Join(dir, "package.json"))
	assert.FileExists(t, filepath.Join(dir, "README.md"))
}

func TestMaterialize_MissingReadmeIsReported(t *testing.T) {
	dir := t.TempDir()

	report := Materialize(Options{
		Dir:            dir,
		Manifest:       defaultOptions("my-game"),
		ReadmeTemplate: "README.project.md",
		ReadmeTarget:   "README.md",
	})

	assert.True(t, report.ManifestWritten, "manifest is written even though the readme is missing")
	assert.False(t, report.ReadmePromoted)
	require.Len(t, report.Problems, 1)
	assert.ErrorIs(t, report.Problems[0], ErrReadmeTemplateMissing)
}
