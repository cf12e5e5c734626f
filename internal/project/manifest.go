// Package project writes the generated project's own package.json and
// README.md over the template's versions.
package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	ManifestFile = "package.json"

	initialVersion         = "0.1.0"
	descriptionPlaceholder = "Your game description"
	concurrentlyPackage    = "concurrently"
	concurrentlyVersion    = "^7.6.0"
)

// Scripts holds the convenience aliases of the generated manifest.
type Scripts struct {
	Server string `json:"server"`
	App    string `json:"app"`
	Dev    string `json:"dev"`
}

// Manifest is the generated package.json. Field order is the output order.
type Manifest struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Description     string            `json:"description"`
	Private         bool              `json:"private"`
	Scripts         Scripts           `json:"scripts"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// ManifestOptions describes the project layout the manifest scripts target.
type ManifestOptions struct {
	Name           string
	PackageManager string
	ClientDir      string
	ServerDir      string
}

// NewManifest builds the manifest for a project.
func NewManifest(opts ManifestOptions) Manifest {
	pm := opts.PackageManager
	if pm == "" {
		pm = "npm"
	}
	return Manifest{
		Name:        opts.Name,
		Version:     initialVersion,
		Description: descriptionPlaceholder,
		Private:     true,
		Scripts: Scripts{
			Server: fmt.Sprintf("cd %s && %s start", opts.ServerDir, pm),
			App:    fmt.Sprintf("cd %s && %s start", opts.ClientDir, pm),
			Dev:    fmt.Sprintf("%s \"%s run server\" \"%s run app\"", concurrentlyPackage, pm, pm),
		},
		DevDependencies: map[string]string{
			concurrentlyPackage: concurrentlyVersion,
		},
	}
}

// Encode renders the manifest with two-space indentation and a trailing
// newline, leaving shell operators unescaped.
func (m Manifest) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteManifest writes m to dir/package.json, replacing any existing file.
func WriteManifest(dir string, m Manifest) error {
	data, err := m.Encode()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, ManifestFile)
	if err := WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", ManifestFile, err)
	}
	return nil
}

// WriteFileAtomic writes data to path through a temp file in the same
// directory and a rename. On failure the original file is left untouched.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".create-granity-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}

	success = true
	return nil
}
