package paths

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var ErrPackagePathRequired = errors.New("package path is required")

// NormalizePackagePath resolves a package directory to an absolute, cleaned
// path so state files and journal entries agree on its identity.
func NormalizePackagePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", ErrPackagePathRequired
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve package path: %w", err)
	}

	return absPath, nil
}

// NormalizePackagePaths normalizes every path, keeping order.
func NormalizePackagePaths(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, path := range paths {
		normalized, err := NormalizePackagePath(path)
		if err != nil {
			return nil, err
		}
		out = append(out, normalized)
	}
	return out, nil
}
