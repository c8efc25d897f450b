package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pkgstale/pkgstale/pkg/common"
)

// A file backed store for fetched release information. The whole store lives in
// a single JSON file which is loaded once at construction and rewritten in full
// (via a temporary file and a rename) after every mutation. A missing or corrupt
// file is treated as an empty store, the analysis never fails on cache problems.
type ReleaseCache struct {
	filePath string
	logger   *slog.Logger
	entries  map[string]*common.CacheEntry
}

func NewReleaseCache(filePath string, logger *slog.Logger) *ReleaseCache {
	if logger == nil {
		logger = slog.Default()
	}
	cache := &ReleaseCache{
		filePath: filePath,
		logger:   logger,
		entries:  map[string]*common.CacheEntry{},
	}
	cache.load()
	return cache
}

func (c *ReleaseCache) Get(packageName string) (*common.CacheEntry, bool) {
	entry, ok := c.entries[packageName]
	return entry, ok
}

func (c *ReleaseCache) Put(packageName string, release *common.ReleaseInfo, now time.Time) error {
	c.entries[packageName] = &common.CacheEntry{
		Release:   release,
		FetchedAt: now,
	}
	return c.persist()
}

// Checks if the given entry is still fresh according to the ttl.
func IsFresh(entry *common.CacheEntry, ttl time.Duration, now time.Time) bool {
	if entry == nil {
		return false
	}
	return now.Sub(entry.FetchedAt) < ttl
}

////////////////////////////////////////////////////////////
// Internal
////////////////////////////////////////////////////////////

func (c *ReleaseCache) load() {
	fileDescriptor, err := os.Open(c.filePath)
	if errors.Is(err, os.ErrNotExist) {
		// File does not exist yet, start empty
		return
	} else if err != nil {
		c.logger.Warn(fmt.Sprintf("Ignoring unreadable cache file '%s': %v", c.filePath, err))
		return
	}
	defer fileDescriptor.Close()
	var dataObject cacheFile
	if err := json.NewDecoder(fileDescriptor).Decode(&dataObject); err != nil {
		c.logger.Warn(fmt.Sprintf("Ignoring corrupt cache file '%s': %v", c.filePath, err))
		return
	}
	if dataObject.SchemaVersion != cacheSchemaVersion {
		c.logger.Warn(fmt.Sprintf("Ignoring cache file '%s' with schema version %d", c.filePath, dataObject.SchemaVersion))
		return
	}
	if dataObject.Packages != nil {
		c.entries = dataObject.Packages
	}
}

func (c *ReleaseCache) persist() error {
	if err := os.MkdirAll(filepath.Dir(c.filePath), os.ModePerm); err != nil {
		return fmt.Errorf("error creating the cache directory for file '%s': %w", c.filePath, err)
	}
	dataObject := cacheFile{
		SchemaVersion: cacheSchemaVersion,
		Packages:      c.entries,
	}
	// Write to a temporary file first and rename it over the real file so that
	// a crash mid-write never leaves a half-written cache behind.
	tempFile, err := os.CreateTemp(filepath.Dir(c.filePath), filepath.Base(c.filePath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("error creating the temporary cache file: %w", err)
	}
	tempPath := tempFile.Name()
	encoder := json.NewEncoder(tempFile)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(&dataObject); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return fmt.Errorf("error writing the cache file '%s': %w", c.filePath, err)
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("error closing the temporary cache file: %w", err)
	}
	if err := os.Rename(tempPath, c.filePath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("error replacing the cache file '%s': %w", c.filePath, err)
	}
	return nil
}
