package common

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var packageNameRegex = regexp.MustCompile(`^[a-z0-9]([_.-]?[a-z0-9]+)*/[a-z0-9](([_.]|-{1,2})?[a-z0-9]+)*$`)

// This type represents a single installed package for which the age should be determined.
type PackageQuery struct {
	// The full name of the package in the form "vendor/name".
	Name string
	// The currently installed version of the package (unprocessed, eg. "v2.3.1").
	CurrentVersion string
	// A flag that indicates if the package is a dev dependency.
	IsDev bool
}

// This type contains the release information for a package as fetched from the registry.
type ReleaseInfo struct {
	// The full name of the package.
	PackageName string `json:"packageName"`
	// The release time of the currently installed version. Zero if the registry had no parseable date for it.
	ReleaseDate time.Time `json:"releaseDate,omitzero"`
	// The latest stable version of the package known to the registry.
	LatestVersion string `json:"latestVersion,omitempty"`
	// The release time of the latest stable version.
	LatestReleaseDate time.Time `json:"latestReleaseDate,omitzero"`
}

// A single entry of the release cache, as stored on disk.
type CacheEntry struct {
	// The cached release information.
	Release *ReleaseInfo `json:"release"`
	// The wall-clock time the entry was written.
	FetchedAt time.Time `json:"fetchedAt"`
}

func (q *PackageQuery) String() string {
	parts := []string{fmt.Sprintf("name: %s", q.Name)}
	if q.CurrentVersion != "" {
		parts = append(parts, fmt.Sprintf("version: %s", q.CurrentVersion))
	}
	if q.IsDev {
		parts = append(parts, "dev")
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
}

// Validates that the name is a lower-case "vendor/name" pair. This is checked once
// when the queries are built, downstream components rely on it without re-validating.
func ValidatePackageName(name string) error {
	if name == "" {
		return fmt.Errorf("empty package name")
	}
	if !packageNameRegex.MatchString(name) {
		return fmt.Errorf("invalid package name '%s': must be a lower-case vendor/name pair", name)
	}
	return nil
}
