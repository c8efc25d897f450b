package cache

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkgstale/pkgstale/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	assert := assert.New(t)

	cacheFilePath := filepath.Join(t.TempDir(), "packages.json")
	releaseDate := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	fetchedAt := time.Date(2024, 7, 1, 8, 30, 0, 0, time.UTC)

	// Write an entry
	firstCache := NewReleaseCache(cacheFilePath, slog.Default())
	err := firstCache.Put("acme/widget", &common.ReleaseInfo{
		PackageName:       "acme/widget",
		ReleaseDate:       releaseDate,
		LatestVersion:     "v2.0.0",
		LatestReleaseDate: releaseDate.AddDate(0, 3, 0),
	}, fetchedAt)
	require.NoError(t, err)

	// Reload the store from disk and check the entry
	secondCache := NewReleaseCache(cacheFilePath, slog.Default())
	entry, ok := secondCache.Get("acme/widget")
	require.True(t, ok)
	assert.Equal("acme/widget", entry.Release.PackageName)
	assert.True(entry.Release.ReleaseDate.Equal(releaseDate))
	assert.Equal("v2.0.0", entry.Release.LatestVersion)
	assert.True(entry.FetchedAt.Equal(fetchedAt))
}

func TestGetMissing(t *testing.T) {
	assert := assert.New(t)

	releaseCache := NewReleaseCache(filepath.Join(t.TempDir(), "packages.json"), slog.Default())
	entry, ok := releaseCache.Get("acme/widget")
	assert.False(ok)
	assert.Nil(entry)
}

func TestCorruptFileLoadsEmpty(t *testing.T) {
	assert := assert.New(t)

	cacheFilePath := filepath.Join(t.TempDir(), "packages.json")
	require.NoError(t, os.WriteFile(cacheFilePath, []byte("{not json"), 0644))

	releaseCache := NewReleaseCache(cacheFilePath, slog.Default())
	_, ok := releaseCache.Get("acme/widget")
	assert.False(ok)

	// The store still works after the corrupt load
	err := releaseCache.Put("acme/widget", &common.ReleaseInfo{PackageName: "acme/widget"}, time.Now())
	assert.NoError(err)
	_, ok = releaseCache.Get("acme/widget")
	assert.True(ok)
}

func TestSchemaVersionMismatchLoadsEmpty(t *testing.T) {
	assert := assert.New(t)

	cacheFilePath := filepath.Join(t.TempDir(), "packages.json")
	content := `{"schemaVersion": 99, "packages": {"acme/widget": {"release": {"packageName": "acme/widget"}, "fetchedAt": "2024-01-01T00:00:00Z"}}}`
	require.NoError(t, os.WriteFile(cacheFilePath, []byte(content), 0644))

	releaseCache := NewReleaseCache(cacheFilePath, slog.Default())
	_, ok := releaseCache.Get("acme/widget")
	assert.False(ok)
}

func TestIsFresh(t *testing.T) {
	assert := assert.New(t)

	ttl := 1 * time.Hour
	fetchedAt := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	entry := &common.CacheEntry{FetchedAt: fetchedAt}

	assert.True(IsFresh(entry, ttl, fetchedAt.Add(ttl-time.Second)))
	assert.False(IsFresh(entry, ttl, fetchedAt.Add(ttl)))
	assert.False(IsFresh(entry, ttl, fetchedAt.Add(ttl+time.Second)))
	assert.False(IsFresh(nil, ttl, fetchedAt))
}

func TestPutOverwrites(t *testing.T) {
	assert := assert.New(t)

	cacheFilePath := filepath.Join(t.TempDir(), "packages.json")
	releaseCache := NewReleaseCache(cacheFilePath, slog.Default())

	require.NoError(t, releaseCache.Put("acme/widget", &common.ReleaseInfo{PackageName: "acme/widget", LatestVersion: "v1.0.0"}, time.Now()))
	require.NoError(t, releaseCache.Put("acme/widget", &common.ReleaseInfo{PackageName: "acme/widget", LatestVersion: "v1.1.0"}, time.Now()))

	reloaded := NewReleaseCache(cacheFilePath, slog.Default())
	entry, ok := reloaded.Get("acme/widget")
	assert.True(ok)
	assert.Equal("v1.1.0", entry.Release.LatestVersion)
}
