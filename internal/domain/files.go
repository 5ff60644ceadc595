package domain

import (
	"fmt"
	"path/filepath"
)

const (
	ManifestFileName       = "Move.toml"
	ManifestBackupFileName = "Move.toml.backup"
)

func ManifestPath(packagePath string) string {
	return filepath.Join(packagePath, ManifestFileName)
}

func ManifestBackupPath(packagePath string) string {
	return filepath.Join(packagePath, ManifestBackupFileName)
}

// NetworkManifestPath is the snapshot written after a successful publish.
func NetworkManifestPath(packagePath string, network Network) string {
	return filepath.Join(packagePath, fmt.Sprintf("Move.%s.toml", network))
}

func StatePath(packagePath string, network Network) string {
	return filepath.Join(packagePath, fmt.Sprintf("publish-result.%s.json", network))
}
