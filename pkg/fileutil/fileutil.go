// Package fileutil provides utility functions for file and directory checks.
package fileutil

import (
	"os"
	"path/filepath"
)

// FileExists checks if a file exists and is not a directory.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists checks if a directory exists.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// ExpandPaths resolves a list of paths to cleaned absolute paths, relative to
// the current working directory. Duplicate paths are removed while preserving
// first-seen order.
func ExpandPaths(paths []string) ([]string, error) {
	seen := make(map[string]bool, len(paths))
	var result []string
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		abs = filepath.Clean(abs)
		if seen[abs] {
			continue
		}
		seen[abs] = true
		result = append(result, abs)
	}
	return result, nil
}
