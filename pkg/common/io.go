package common

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

func FileExists(filePath string) (bool, error) {
	info, err := os.Stat(filePath)
	if err == nil {
		return !info.IsDir(), nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Checks if the given package name matches at least one of the given patterns.
// Patterns use glob syntax, so "symfony/*" matches all symfony packages.
func PackageMatchesPattern(packageName string, patterns ...string) (bool, error) {
	for _, pattern := range patterns {
		isMatch, err := doublestar.Match(pattern, packageName)
		if err != nil {
			return false, err
		}
		if isMatch {
			return true, nil
		}
	}
	return false, nil
}

// Resolves the directory for the cache file, preferring an explicit directory
// and falling back to the user cache directory.
func ResolveCacheDir(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	baseDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(baseDir, "pkgstale"), nil
}
