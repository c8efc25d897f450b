package registry

import (
	"regexp"
	"strings"
	"time"

	"github.com/pkgstale/pkgstale/pkg/common"
	"github.com/roemer/gover"
)

var composerVersionRegex = regexp.MustCompile(common.VERSIONING_COMPOSER)

// The relevant part of a Packagist metadata (p2) response.
type packagistResponse struct {
	Packages map[string][]*packagistVersion `json:"packages"`
}

type packagistVersion struct {
	Version           string    `json:"version"`
	VersionNormalized string    `json:"version_normalized"`
	Time              time.Time `json:"time"`
}

type parsedVersion struct {
	entry   *packagistVersion
	version *gover.Version
}

// Converts the raw version list of a package into the release information for the
// given query: the release date of the installed version plus the latest stable
// version the registry knows about.
func buildReleaseInfo(query *common.PackageQuery, versions []*packagistVersion) *common.ReleaseInfo {
	releaseInfo := &common.ReleaseInfo{
		PackageName: query.Name,
	}

	// Find the entry for the installed version
	for _, entry := range versions {
		if versionMatches(query.CurrentVersion, entry) {
			releaseInfo.ReleaseDate = entry.Time
			break
		}
	}

	// Parse all versions and find the latest stable one
	parsedVersions := []*parsedVersion{}
	for _, entry := range versions {
		version, err := gover.ParseVersionFromRegex(entry.VersionNormalized, composerVersionRegex)
		if err != nil {
			// Branch aliases like "dev-master" do not parse, skip them
			continue
		}
		parsedVersions = append(parsedVersions, &parsedVersion{entry: entry, version: version})
	}
	latest := gover.FindMaxGeneric(parsedVersions, func(x *parsedVersion) *gover.Version { return x.version }, gover.EmptyVersion, true)
	if latest != nil {
		releaseInfo.LatestVersion = latest.entry.Version
		releaseInfo.LatestReleaseDate = latest.entry.Time
	}

	return releaseInfo
}

func versionMatches(currentVersion string, entry *packagistVersion) bool {
	normalized := strings.ToLower(strings.TrimPrefix(currentVersion, "v"))
	if strings.ToLower(strings.TrimPrefix(entry.Version, "v")) == normalized {
		return true
	}
	return strings.ToLower(entry.VersionNormalized) == normalized
}
