// Package config resolves application settings from flags, files and
// FINSHARE_ environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// AppName names the per-user data and config directories.
const AppName = "finshare"

// ExpandPath replaces a leading ~ with the home directory and then expands
// $VAR references. Paths are returned unchanged when the home directory is
// unknown.
func ExpandPath(path string) string {
	if rest, ok := strings.CutPrefix(path, "~"); ok && (rest == "" || rest[0] == '/' || rest[0] == filepath.Separator) {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, rest)
		}
	}
	return os.ExpandEnv(path)
}

// ConfigDir is where finshare looks for config.yaml and keeps certificates.
func ConfigDir() string {
	return ExpandPath(filepath.Join("~", ".config", AppName))
}

// DataDir holds the SQLite database.
func DataDir() string {
	return ExpandPath(filepath.Join("~", ".local", "share", AppName))
}
