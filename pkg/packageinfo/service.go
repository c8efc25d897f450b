package packageinfo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkgstale/pkgstale/pkg/cache"
	"github.com/pkgstale/pkgstale/pkg/common"
)

// The default time after which a cached entry is considered stale.
const DefaultTtl = 7 * 24 * time.Hour

type ServiceSettings struct {
	// The logger to use for the service.
	Logger *slog.Logger
	// The registry client used for packages that miss the cache.
	Client common.IRegistryClient
	// The release cache. May be nil, which behaves like NoCache.
	Cache common.IReleaseCache
	// The time-to-live for cache entries. Defaults to one week.
	Ttl time.Duration
	// Skip the cache entirely, every query goes to the registry.
	NoCache bool
	// Never touch the registry, use only cached entries (fresh or not).
	Offline bool
	// The clock to use. Defaults to time.Now.
	Now func() time.Time
}

// Resolves package queries into release information, using the cache to avoid
// redundant registry calls. Packages that cannot be resolved map to "nil" and
// are reported as unknown downstream, they never fail the overall analysis.
type Service struct {
	settings *ServiceSettings
	logger   *slog.Logger
}

func NewService(settings *ServiceSettings) *Service {
	if settings.Logger == nil {
		settings.Logger = slog.Default()
	}
	if settings.Ttl <= 0 {
		settings.Ttl = DefaultTtl
	}
	if settings.Now == nil {
		settings.Now = time.Now
	}
	return &Service{
		settings: settings,
		logger:   settings.Logger,
	}
}

func (s *Service) Resolve(ctx context.Context, queries []*common.PackageQuery) map[string]*common.ReleaseInfo {
	results := make(map[string]*common.ReleaseInfo, len(queries))
	misses := []*common.PackageQuery{}
	now := s.settings.Now()

	// First pass: serve what the cache can answer
	for _, query := range queries {
		if s.useCache() {
			if entry, ok := s.settings.Cache.Get(query.Name); ok {
				// In offline mode even a stale entry beats no entry at all
				if s.settings.Offline || cache.IsFresh(entry, s.settings.Ttl, now) {
					results[query.Name] = entry.Release
					continue
				}
			}
		}
		misses = append(misses, query)
	}
	s.logger.Debug(fmt.Sprintf("Resolved %d of %s from the cache", len(results), common.CountString(queries, "package")))

	if len(misses) == 0 {
		return results
	}

	if s.settings.Offline {
		// No network in offline mode, the misses stay unknown
		s.logger.Debug(fmt.Sprintf("Offline mode, %s stay unresolved", common.CountString(misses, "package")))
		for _, query := range misses {
			results[query.Name] = nil
		}
		return results
	}

	// Second pass: fetch the misses from the registry and fill the cache
	fetched := s.settings.Client.FetchMany(ctx, misses)
	for _, query := range misses {
		releaseInfo := fetched[query.Name]
		results[query.Name] = releaseInfo
		if releaseInfo != nil && s.useCache() {
			if err := s.settings.Cache.Put(query.Name, releaseInfo, now); err != nil {
				// A broken cache must never break the analysis
				s.logger.Warn(fmt.Sprintf("Failed caching '%s': %v", query.Name, err))
			}
		}
	}
	return results
}

func (s *Service) useCache() bool {
	return !s.settings.NoCache && s.settings.Cache != nil
}
