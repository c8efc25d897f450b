package cache

import (
	"github.com/pkgstale/pkgstale/pkg/common"
)

// The current schema version of the cache file. Files with a different
// version are discarded and the store starts empty.
const cacheSchemaVersion = 1

// The on-disk layout of the cache file.
type cacheFile struct {
	SchemaVersion int                           `json:"schemaVersion"`
	Packages      map[string]*common.CacheEntry `json:"packages"`
}
