package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ConfigName is the file name FindConfig looks for.
const ConfigName = "jopa.toml"

// boundaryMarkers end the upward search. A fixture tree nested in a
// repository never picks up a jopa.toml from outside that repository.
var boundaryMarkers = []string{".git", ".hg"}

// FindConfig walks up from startDir to the nearest jopa.toml. The walk
// stops after the first directory holding a repository marker.
func FindConfig(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigName)
		found, err := exists(candidate)
		if err != nil {
			return "", false, err
		}
		if found {
			return candidate, true, nil
		}
		boundary, err := isBoundary(dir)
		if err != nil {
			return "", false, err
		}
		parent := filepath.Dir(dir)
		if boundary || parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// FindProjectRoot returns the directory containing jopa.toml, if any.
func FindProjectRoot(startDir string) (root string, ok bool, err error) {
	configPath, ok, err := FindConfig(startDir)
	if err != nil || !ok {
		return "", ok, err
	}
	return filepath.Dir(configPath), true, nil
}

func isBoundary(dir string) (bool, error) {
	for _, marker := range boundaryMarkers {
		found, err := exists(filepath.Join(dir, marker))
		if err != nil || found {
			return found, err
		}
	}
	return false, nil
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("failed to stat %q: %w", path, err)
	}
}
