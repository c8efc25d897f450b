package common

import (
	"context"
	"time"
)

// This is the interface that needs to be implemented by registry clients.
type IRegistryClient interface {
	// Fetches the release information for a single package.
	FetchOne(ctx context.Context, query *PackageQuery) (*ReleaseInfo, error)
	// Fetches the release information for many packages in batches. Packages that
	// could not be resolved map to "nil", the batch as a whole never fails.
	FetchMany(ctx context.Context, queries []*PackageQuery) map[string]*ReleaseInfo
}

// This is the interface for the release cache.
type IReleaseCache interface {
	// Gets the raw cached entry for the given package name, if any. Freshness is
	// not checked here, that is up to the caller.
	Get(packageName string) (*CacheEntry, bool)
	// Sets the cached entry for the given package name and persists the store.
	Put(packageName string, release *ReleaseInfo, now time.Time) error
}
