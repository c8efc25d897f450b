package registry

import (
	"testing"
	"time"

	"github.com/pkgstale/pkgstale/pkg/common"
	"github.com/stretchr/testify/assert"
)

func version(version string, normalized string, releaseDate time.Time) *packagistVersion {
	return &packagistVersion{Version: version, VersionNormalized: normalized, Time: releaseDate}
}

func TestBuildReleaseInfo(t *testing.T) {
	assert := assert.New(t)

	installedDate := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	latestDate := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	versions := []*packagistVersion{
		version("v2.1.0", "2.1.0.0", latestDate),
		version("v1.4.2", "1.4.2.0", installedDate),
		version("v3.0.0-RC1", "3.0.0.0-RC1", latestDate.AddDate(0, 1, 0)),
		version("dev-main", "dev-main", time.Time{}),
	}

	query := &common.PackageQuery{Name: "acme/widget", CurrentVersion: "v1.4.2"}
	releaseInfo := buildReleaseInfo(query, versions)

	assert.Equal("acme/widget", releaseInfo.PackageName)
	assert.True(releaseInfo.ReleaseDate.Equal(installedDate))
	assert.Equal("v2.1.0", releaseInfo.LatestVersion)
	assert.True(releaseInfo.LatestReleaseDate.Equal(latestDate))
}

func TestBuildReleaseInfoUnknownInstalledVersion(t *testing.T) {
	assert := assert.New(t)

	versions := []*packagistVersion{
		version("v2.1.0", "2.1.0.0", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
	}
	query := &common.PackageQuery{Name: "acme/widget", CurrentVersion: "v9.9.9"}
	releaseInfo := buildReleaseInfo(query, versions)

	// No release date for the installed version, but the latest is still known
	assert.True(releaseInfo.ReleaseDate.IsZero())
	assert.Equal("v2.1.0", releaseInfo.LatestVersion)
}

func TestVersionMatches(t *testing.T) {
	assert := assert.New(t)

	entry := version("v1.4.2", "1.4.2.0", time.Time{})
	assert.True(versionMatches("v1.4.2", entry))
	assert.True(versionMatches("1.4.2", entry))
	assert.True(versionMatches("1.4.2.0", entry))
	assert.False(versionMatches("1.4.3", entry))

	unprefixed := version("1.4.2", "1.4.2.0", time.Time{})
	assert.True(versionMatches("v1.4.2", unprefixed))
}
